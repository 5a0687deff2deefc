package store

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cragbook/cragbook-server/internal/domain"
	apperrors "github.com/cragbook/cragbook-server/internal/errors"
)

func TestCreateLocation(t *testing.T) {
	s, cleanup := setupTestStore(t)
	defer cleanup()

	ctx := context.Background()

	l := &domain.Location{
		Name:        "Sokoliki",
		Description: "Granite towers in the Rudawy Janowickie",
		Coordinates: &domain.Coordinates{Lat: 50.876, Lng: 15.876},
		Approach:    "20 min walk from the parking lot",
		Markers: []domain.MapMarker{
			{Label: "parking", Lat: 50.87, Lng: 15.87},
		},
		Attributes: []string{"granite", "trad"},
	}
	require.NoError(t, s.CreateLocation(ctx, l))

	got, err := s.GetLocation(ctx, "Sokoliki")
	require.NoError(t, err)
	assert.Equal(t, "Sokoliki", got.Name)
	require.NotNil(t, got.Coordinates)
	assert.Equal(t, 50.876, got.Coordinates.Lat)
	assert.Len(t, got.Markers, 1)
	assert.Equal(t, []string{"granite", "trad"}, got.Attributes)
}

func TestCreateLocation_Duplicate(t *testing.T) {
	s, cleanup := setupTestStore(t)
	defer cleanup()

	ctx := context.Background()
	mustCreateLocation(t, s, "Sokoliki")

	err := s.CreateLocation(ctx, &domain.Location{Name: "Sokoliki"})
	assert.ErrorIs(t, err, apperrors.ErrAlreadyExists)
}

func TestSetLocationAttributes(t *testing.T) {
	s, cleanup := setupTestStore(t)
	defer cleanup()

	ctx := context.Background()
	require.NoError(t, s.CreateLocation(ctx, &domain.Location{
		Name:       "Sokoliki",
		Attributes: []string{"granite", "trad"},
	}))

	require.NoError(t, s.SetLocationAttributes(ctx, "Sokoliki", []string{"trad", "kid-friendly"}))

	got, err := s.GetLocation(ctx, "Sokoliki")
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"trad", "kid-friendly"}, got.Attributes)

	byOld, err := s.ListLocationsByAttribute(ctx, "granite")
	require.NoError(t, err)
	assert.Empty(t, byOld)

	byNew, err := s.ListLocationsByAttribute(ctx, "kid-friendly")
	require.NoError(t, err)
	require.Len(t, byNew, 1)
	assert.Equal(t, "Sokoliki", byNew[0].Name)

	all, err := s.AllAttributes(ctx)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"granite", "trad", "kid-friendly"}, all)
}

func TestRenameLocation_RewritesAlbums(t *testing.T) {
	s, cleanup := setupTestStore(t)
	defer cleanup()

	ctx := context.Background()
	require.NoError(t, s.CreateLocation(ctx, &domain.Location{
		Name:       "Sokoliki",
		Attributes: []string{"granite"},
	}))
	require.NoError(t, s.CreateAlbum(ctx, &domain.Album{
		URL: "https://photos/a1", Location: "Sokoliki",
	}))
	mustCreateUser(t, s, "user_1", domain.RoleUser)
	require.NoError(t, s.AddOwner(ctx, domain.KindLocation, "Sokoliki", "user_1"))

	require.NoError(t, s.RenameLocation(ctx, "Sokoliki", "Góry Sokole"))

	_, err := s.GetLocation(ctx, "Sokoliki")
	assert.ErrorIs(t, err, apperrors.ErrNotFound)

	got, err := s.GetLocation(ctx, "Góry Sokole")
	require.NoError(t, err)
	assert.Equal(t, []string{"granite"}, got.Attributes)

	// Albums carry the new canonical name.
	album, err := s.GetAlbum(ctx, "https://photos/a1")
	require.NoError(t, err)
	assert.Equal(t, "Góry Sokole", album.Location)

	albums, err := s.ListAlbumsByLocation(ctx, "Góry Sokole")
	require.NoError(t, err)
	assert.Len(t, albums, 1)

	owners, err := s.Owners(ctx, domain.KindLocation, "Góry Sokole")
	require.NoError(t, err)
	assert.Equal(t, []string{"user_1"}, owners)
}

func TestRenameLocation_RoundTrip(t *testing.T) {
	s, cleanup := setupTestStore(t)
	defer cleanup()

	ctx := context.Background()
	require.NoError(t, s.CreateLocation(ctx, &domain.Location{
		Name:       "Sokoliki",
		Attributes: []string{"granite", "slabs"},
	}))
	require.NoError(t, s.CreateAlbum(ctx, &domain.Album{
		URL: "https://photos/a1", Location: "Sokoliki",
	}))
	mustCreateUser(t, s, "user_1", domain.RoleUser)
	require.NoError(t, s.AddOwner(ctx, domain.KindLocation, "Sokoliki", "user_1"))

	require.NoError(t, s.RenameLocation(ctx, "Sokoliki", "Góry Sokole"))
	require.NoError(t, s.RenameLocation(ctx, "Góry Sokole", "Sokoliki"))

	got, err := s.GetLocation(ctx, "Sokoliki")
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"granite", "slabs"}, got.Attributes)

	// Albums and the location index are back on the original name.
	album, err := s.GetAlbum(ctx, "https://photos/a1")
	require.NoError(t, err)
	assert.Equal(t, "Sokoliki", album.Location)

	albums, err := s.ListAlbumsByLocation(ctx, "Sokoliki")
	require.NoError(t, err)
	assert.Len(t, albums, 1)
	albums, err = s.ListAlbumsByLocation(ctx, "Góry Sokole")
	require.NoError(t, err)
	assert.Empty(t, albums)

	byAttr, err := s.ListLocationsByAttribute(ctx, "granite")
	require.NoError(t, err)
	require.Len(t, byAttr, 1)
	assert.Equal(t, "Sokoliki", byAttr[0].Name)

	owners, err := s.Owners(ctx, domain.KindLocation, "Sokoliki")
	require.NoError(t, err)
	assert.Equal(t, []string{"user_1"}, owners)
	owners, err = s.Owners(ctx, domain.KindLocation, "Góry Sokole")
	require.NoError(t, err)
	assert.Empty(t, owners)
}

func TestRenameLocation_TargetExists(t *testing.T) {
	s, cleanup := setupTestStore(t)
	defer cleanup()

	ctx := context.Background()
	mustCreateLocation(t, s, "Sokoliki")
	mustCreateLocation(t, s, "Jura")

	err := s.RenameLocation(ctx, "Sokoliki", "Jura")
	assert.ErrorIs(t, err, apperrors.ErrConflict)
}

func TestDeleteLocation_ClearsAlbumReferences(t *testing.T) {
	s, cleanup := setupTestStore(t)
	defer cleanup()

	ctx := context.Background()
	mustCreateLocation(t, s, "Sokoliki")
	require.NoError(t, s.CreateAlbum(ctx, &domain.Album{
		URL: "https://photos/a1", Location: "Sokoliki",
	}))

	require.NoError(t, s.DeleteLocation(ctx, "Sokoliki"))

	_, err := s.GetLocation(ctx, "Sokoliki")
	assert.ErrorIs(t, err, apperrors.ErrNotFound)

	// Album survives without the reference.
	album, err := s.GetAlbum(ctx, "https://photos/a1")
	require.NoError(t, err)
	assert.Empty(t, album.Location)
}

func TestListLocations_Sorted(t *testing.T) {
	s, cleanup := setupTestStore(t)
	defer cleanup()

	ctx := context.Background()
	mustCreateLocation(t, s, "Rudawy")
	mustCreateLocation(t, s, "Jura")

	locations, err := s.ListLocations(ctx)
	require.NoError(t, err)
	require.Len(t, locations, 2)
	assert.Equal(t, "Jura", locations[0].Name)
	assert.Equal(t, "Rudawy", locations[1].Name)
}
