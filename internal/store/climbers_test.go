package store

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cragbook/cragbook-server/internal/domain"
	apperrors "github.com/cragbook/cragbook-server/internal/errors"
)

func TestCreateClimber(t *testing.T) {
	s, cleanup := setupTestStore(t)
	defer cleanup()

	ctx := context.Background()

	c := &domain.Climber{
		Name:      "Maja Kowalska",
		Locations: []string{"Sokoliki", "Rudawy"},
		Skills:    []string{"bouldering", "trad"},
		Tags:      []string{"crusher"},
	}
	require.NoError(t, s.CreateClimber(ctx, c))

	got, err := s.GetClimber(ctx, "Maja Kowalska")
	require.NoError(t, err)
	assert.Equal(t, "Maja Kowalska", got.Name)
	assert.Equal(t, []string{"Sokoliki", "Rudawy"}, got.Locations)
	assert.Equal(t, []string{"bouldering", "trad"}, got.Skills)
	assert.Equal(t, []string{"crusher"}, got.Tags)
	assert.Empty(t, got.Achievements)
	assert.Equal(t, 0, got.Climbs)
	assert.False(t, got.CreatedAt.IsZero())
}

func TestCreateClimber_Duplicate(t *testing.T) {
	s, cleanup := setupTestStore(t)
	defer cleanup()

	ctx := context.Background()
	mustCreateClimber(t, s, "Maja")

	err := s.CreateClimber(ctx, &domain.Climber{Name: "Maja"})
	assert.ErrorIs(t, err, apperrors.ErrAlreadyExists)
}

func TestGetClimber_NotFound(t *testing.T) {
	s, cleanup := setupTestStore(t)
	defer cleanup()

	_, err := s.GetClimber(context.Background(), "nobody")
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestGetClimber_DerivedLevel(t *testing.T) {
	s, cleanup := setupTestStore(t)
	defer cleanup()

	ctx := context.Background()
	require.NoError(t, s.CreateClimber(ctx, &domain.Climber{
		Name:         "Maja",
		Skills:       []string{"bouldering", "trad"},
		Achievements: []string{"first ascent"},
	}))
	mustCreateLocation(t, s, "Sokoliki")
	mustCreateLocation(t, s, "Rudawy")

	require.NoError(t, s.CreateAlbum(ctx, &domain.Album{
		URL: "https://photos/a1", Location: "Sokoliki", Crew: []string{"Maja"},
	}))
	require.NoError(t, s.CreateAlbum(ctx, &domain.Album{
		URL: "https://photos/a2", Location: "Rudawy", Crew: []string{"Maja"},
	}))
	require.NoError(t, s.CreateAlbum(ctx, &domain.Album{
		URL: "https://photos/a3", Location: "Sokoliki", Crew: []string{"Maja"},
	}))

	got, err := s.GetClimber(ctx, "Maja")
	require.NoError(t, err)
	assert.Equal(t, 3, got.Climbs)

	// 1 base + 2 skills + 1 started block of five climbs + 1 achievement
	// + 2 distinct visited locations.
	assert.Equal(t, 7, got.Level.Level)
	assert.Equal(t, 2, got.Level.Skills)
	assert.Equal(t, 1, got.Level.ClimbPoints)
	assert.Equal(t, 1, got.Level.Achievements)
	assert.Equal(t, 2, got.Level.Locations)
}

func TestUpdateClimber(t *testing.T) {
	s, cleanup := setupTestStore(t)
	defer cleanup()

	ctx := context.Background()
	mustCreateClimber(t, s, "Maja")

	locs := []string{"Jura"}
	face := "Maja.jpg"
	require.NoError(t, s.UpdateClimber(ctx, "Maja", ClimberPatch{
		Locations: &locs,
		FaceImage: &face,
	}))

	got, err := s.GetClimber(ctx, "Maja")
	require.NoError(t, err)
	assert.Equal(t, []string{"Jura"}, got.Locations)
	assert.Equal(t, "Maja.jpg", got.FaceImage)

	// Nil fields stay untouched.
	require.NoError(t, s.UpdateClimber(ctx, "Maja", ClimberPatch{}))
	got, err = s.GetClimber(ctx, "Maja")
	require.NoError(t, err)
	assert.Equal(t, []string{"Jura"}, got.Locations)
}

func TestSetClimberSkills_Diff(t *testing.T) {
	s, cleanup := setupTestStore(t)
	defer cleanup()

	ctx := context.Background()
	require.NoError(t, s.CreateClimber(ctx, &domain.Climber{
		Name:   "Maja",
		Skills: []string{"bouldering", "trad"},
	}))

	require.NoError(t, s.SetClimberSkills(ctx, "Maja", []string{"trad", "crack"}))

	got, err := s.GetClimber(ctx, "Maja")
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"trad", "crack"}, got.Skills)

	// Reverse index follows the diff.
	byOld, err := s.ListClimbersBySkill(ctx, "bouldering")
	require.NoError(t, err)
	assert.Empty(t, byOld)

	byNew, err := s.ListClimbersBySkill(ctx, "crack")
	require.NoError(t, err)
	require.Len(t, byNew, 1)
	assert.Equal(t, "Maja", byNew[0].Name)

	// Global index keeps every value ever used.
	all, err := s.AllSkills(ctx)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"bouldering", "trad", "crack"}, all)
}

func TestSetClimberSkills_NotFound(t *testing.T) {
	s, cleanup := setupTestStore(t)
	defer cleanup()

	err := s.SetClimberSkills(context.Background(), "nobody", []string{"trad"})
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestRenameClimber(t *testing.T) {
	s, cleanup := setupTestStore(t)
	defer cleanup()

	ctx := context.Background()
	require.NoError(t, s.CreateClimber(ctx, &domain.Climber{
		Name:   "Maja",
		Skills: []string{"trad"},
		Tags:   []string{"crusher"},
	}))
	mustCreateUser(t, s, "user_1", domain.RoleUser)
	require.NoError(t, s.AddOwner(ctx, domain.KindClimber, "Maja", "user_1"))

	require.NoError(t, s.CreateAlbum(ctx, &domain.Album{
		URL: "https://photos/a1", Crew: []string{"Maja"},
	}))

	require.NoError(t, s.RenameClimber(ctx, "Maja", "Maja Kowalska"))

	_, err := s.GetClimber(ctx, "Maja")
	assert.ErrorIs(t, err, apperrors.ErrNotFound)

	got, err := s.GetClimber(ctx, "Maja Kowalska")
	require.NoError(t, err)
	assert.Equal(t, []string{"trad"}, got.Skills)
	assert.Equal(t, []string{"crusher"}, got.Tags)
	assert.Equal(t, 1, got.Climbs)

	// Album crew follows the rename.
	album, err := s.GetAlbum(ctx, "https://photos/a1")
	require.NoError(t, err)
	assert.Equal(t, []string{"Maja Kowalska"}, album.Crew)

	albums, err := s.ListAlbumsByCrewMember(ctx, "Maja Kowalska")
	require.NoError(t, err)
	assert.Len(t, albums, 1)

	// Ownership follows the key.
	owners, err := s.Owners(ctx, domain.KindClimber, "Maja Kowalska")
	require.NoError(t, err)
	assert.Equal(t, []string{"user_1"}, owners)

	// Reverse indexes point at the new name.
	byTag, err := s.ListClimbersByTag(ctx, "crusher")
	require.NoError(t, err)
	require.Len(t, byTag, 1)
	assert.Equal(t, "Maja Kowalska", byTag[0].Name)
}

func TestRenameClimber_UpdatesFaceImageRef(t *testing.T) {
	s, cleanup := setupTestStore(t)
	defer cleanup()

	ctx := context.Background()
	require.NoError(t, s.CreateClimber(ctx, &domain.Climber{
		Name:      "Maja Kowalska",
		FaceImage: domain.FaceImageRef("Maja Kowalska"),
	}))

	require.NoError(t, s.RenameClimber(ctx, "Maja Kowalska", "Maja Nowak"))

	got, err := s.GetClimber(ctx, "Maja Nowak")
	require.NoError(t, err)
	assert.Equal(t, "Maja_Nowak.jpg", got.FaceImage)
}

func TestRenameClimber_RoundTrip(t *testing.T) {
	s, cleanup := setupTestStore(t)
	defer cleanup()

	ctx := context.Background()
	require.NoError(t, s.CreateClimber(ctx, &domain.Climber{
		Name:         "Maja",
		Skills:       []string{"bouldering", "trad"},
		Tags:         []string{"crusher"},
		Achievements: []string{"first ascent"},
		FaceImage:    domain.FaceImageRef("Maja"),
	}))
	mustCreateUser(t, s, "user_1", domain.RoleUser)
	require.NoError(t, s.AddOwner(ctx, domain.KindClimber, "Maja", "user_1"))
	require.NoError(t, s.CreateAlbum(ctx, &domain.Album{
		URL: "https://photos/a1", Crew: []string{"Maja"},
	}))

	require.NoError(t, s.RenameClimber(ctx, "Maja", "Tymczasowa"))
	require.NoError(t, s.RenameClimber(ctx, "Tymczasowa", "Maja"))

	got, err := s.GetClimber(ctx, "Maja")
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"bouldering", "trad"}, got.Skills)
	assert.ElementsMatch(t, []string{"crusher"}, got.Tags)
	assert.ElementsMatch(t, []string{"first ascent"}, got.Achievements)
	assert.Equal(t, 1, got.Climbs)
	assert.Equal(t, "Maja.jpg", got.FaceImage)

	// Album crew and its reverse index are back on the original name.
	album, err := s.GetAlbum(ctx, "https://photos/a1")
	require.NoError(t, err)
	assert.Equal(t, []string{"Maja"}, album.Crew)

	albums, err := s.ListAlbumsByCrewMember(ctx, "Maja")
	require.NoError(t, err)
	assert.Len(t, albums, 1)
	albums, err = s.ListAlbumsByCrewMember(ctx, "Tymczasowa")
	require.NoError(t, err)
	assert.Empty(t, albums)

	// Reverse indexes carry no trace of the intermediate name.
	bySkill, err := s.ListClimbersBySkill(ctx, "trad")
	require.NoError(t, err)
	require.Len(t, bySkill, 1)
	assert.Equal(t, "Maja", bySkill[0].Name)

	// Ownership is restored both ways.
	owners, err := s.Owners(ctx, domain.KindClimber, "Maja")
	require.NoError(t, err)
	assert.Equal(t, []string{"user_1"}, owners)
	owners, err = s.Owners(ctx, domain.KindClimber, "Tymczasowa")
	require.NoError(t, err)
	assert.Empty(t, owners)

	owned, err := s.ResourcesOwnedBy(ctx, "user_1", domain.KindClimber)
	require.NoError(t, err)
	assert.Equal(t, []string{"Maja"}, owned)
}

func TestRenameClimber_TargetExists(t *testing.T) {
	s, cleanup := setupTestStore(t)
	defer cleanup()

	ctx := context.Background()
	mustCreateClimber(t, s, "Maja")
	mustCreateClimber(t, s, "Tomek")

	err := s.RenameClimber(ctx, "Maja", "Tomek")
	assert.ErrorIs(t, err, apperrors.ErrConflict)

	err = s.RenameClimber(ctx, "Maja", "Maja")
	assert.ErrorIs(t, err, apperrors.ErrConflict)
}

func TestDeleteClimber_StripsCrewMembership(t *testing.T) {
	s, cleanup := setupTestStore(t)
	defer cleanup()

	ctx := context.Background()
	mustCreateClimber(t, s, "Maja")
	mustCreateClimber(t, s, "Tomek")
	require.NoError(t, s.CreateAlbum(ctx, &domain.Album{
		URL: "https://photos/a1", Crew: []string{"Maja", "Tomek"},
	}))

	require.NoError(t, s.DeleteClimber(ctx, "Maja"))

	_, err := s.GetClimber(ctx, "Maja")
	assert.ErrorIs(t, err, apperrors.ErrNotFound)

	// Album survives with the remaining crew.
	album, err := s.GetAlbum(ctx, "https://photos/a1")
	require.NoError(t, err)
	assert.Equal(t, []string{"Tomek"}, album.Crew)
}

func TestListClimbers_SortedByName(t *testing.T) {
	s, cleanup := setupTestStore(t)
	defer cleanup()

	ctx := context.Background()
	mustCreateClimber(t, s, "Tomek")
	mustCreateClimber(t, s, "Ania")
	mustCreateClimber(t, s, "Maja")

	climbers, err := s.ListClimbers(ctx)
	require.NoError(t, err)
	require.Len(t, climbers, 3)
	assert.Equal(t, "Ania", climbers[0].Name)
	assert.Equal(t, "Maja", climbers[1].Name)
	assert.Equal(t, "Tomek", climbers[2].Name)
}

func TestCountClimbers(t *testing.T) {
	s, cleanup := setupTestStore(t)
	defer cleanup()

	ctx := context.Background()
	n, err := s.CountClimbers(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, n)

	mustCreateClimber(t, s, "Maja")
	mustCreateClimber(t, s, "Tomek")

	n, err = s.CountClimbers(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, n)
}
