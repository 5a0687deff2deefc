package store

import (
	"context"
	"testing"

	"github.com/dgraph-io/badger/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cragbook/cragbook-server/internal/domain"
)

// seedRaw writes an arbitrary JSON record, bypassing the store API, to
// simulate data written by older releases.
func seedRaw(t *testing.T, s *Store, key string, value map[string]any) {
	t.Helper()
	err := s.db.Update(func(txn *badger.Txn) error {
		return setJSONTxn(txn, key, value)
	})
	require.NoError(t, err)
}

func TestMigrateInlineSets_Climbers(t *testing.T) {
	s, cleanup := setupTestStore(t)
	defer cleanup()

	ctx := context.Background()

	seedRaw(t, s, climberPrefix+"Maja", map[string]any{
		"name":   "Maja",
		"climbs": 0,
		"skills": []any{"bouldering", "trad"},
		"tags":   []any{"crusher"},
	})

	report, err := s.MigrateInlineSets(ctx, nil)
	require.NoError(t, err)
	assert.Equal(t, 1, report.Examined)
	assert.Equal(t, 1, report.Changed)
	assert.Equal(t, 0, report.Failed)
	assert.NotEmpty(t, report.RunID)

	got, err := s.GetClimber(ctx, "Maja")
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"bouldering", "trad"}, got.Skills)
	assert.Equal(t, []string{"crusher"}, got.Tags)

	// The reverse index is live after conversion.
	bySkill, err := s.ListClimbersBySkill(ctx, "trad")
	require.NoError(t, err)
	require.Len(t, bySkill, 1)
	assert.Equal(t, "Maja", bySkill[0].Name)

	// Second run finds nothing left to convert.
	report, err = s.MigrateInlineSets(ctx, nil)
	require.NoError(t, err)
	assert.Equal(t, 0, report.Changed)
}

func TestMigrateInlineSets_AlbumCrewThenRecalculate(t *testing.T) {
	s, cleanup := setupTestStore(t)
	defer cleanup()

	ctx := context.Background()
	mustCreateClimber(t, s, "Maja")

	seedRaw(t, s, albumPrefix+"https://photos/a1", map[string]any{
		"url":  "https://photos/a1",
		"crew": []any{"Maja"},
	})

	report, err := s.MigrateInlineSets(ctx, nil)
	require.NoError(t, err)
	assert.Equal(t, 1, report.Changed)

	album, err := s.GetAlbum(ctx, "https://photos/a1")
	require.NoError(t, err)
	assert.Equal(t, []string{"Maja"}, album.Crew)

	// Crew conversion leaves counts to the settle pass.
	report, err = s.RecalculateClimbs(ctx, nil)
	require.NoError(t, err)
	assert.Equal(t, 1, report.Changed)

	got, err := s.GetClimber(ctx, "Maja")
	require.NoError(t, err)
	assert.Equal(t, 1, got.Climbs)

	// Settled counts need no further changes.
	report, err = s.RecalculateClimbs(ctx, nil)
	require.NoError(t, err)
	assert.Equal(t, 0, report.Changed)
}

func TestMigrateInlineSets_LocationAttributes(t *testing.T) {
	s, cleanup := setupTestStore(t)
	defer cleanup()

	ctx := context.Background()

	seedRaw(t, s, locationPrefix+"Sokoliki", map[string]any{
		"name":       "Sokoliki",
		"attributes": []any{"granite", "trad"},
	})

	report, err := s.MigrateInlineSets(ctx, nil)
	require.NoError(t, err)
	assert.Equal(t, 1, report.Changed)

	got, err := s.GetLocation(ctx, "Sokoliki")
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"granite", "trad"}, got.Attributes)

	byAttr, err := s.ListLocationsByAttribute(ctx, "granite")
	require.NoError(t, err)
	assert.Len(t, byAttr, 1)
}

func TestMigrateInlineSets_SkipsMalformedRecord(t *testing.T) {
	s, cleanup := setupTestStore(t)
	defer cleanup()

	ctx := context.Background()
	mustCreateClimber(t, s, "Tomek")

	// Not JSON at all; the routine logs, counts, and moves on.
	err := s.db.Update(func(txn *badger.Txn) error {
		return txn.Set([]byte(climberPrefix+"Broken"), []byte("not json"))
	})
	require.NoError(t, err)

	report, err := s.MigrateInlineSets(ctx, nil)
	require.NoError(t, err)
	assert.Equal(t, 2, report.Examined)
	assert.Equal(t, 1, report.Failed)
}

func TestMigrateStoredLevels(t *testing.T) {
	s, cleanup := setupTestStore(t)
	defer cleanup()

	ctx := context.Background()

	seedRaw(t, s, climberPrefix+"Maja", map[string]any{
		"name":   "Maja",
		"climbs": 7,
		"level":  99,
	})

	report, err := s.MigrateStoredLevels(ctx, nil)
	require.NoError(t, err)
	assert.Equal(t, 1, report.Changed)

	// The derived level wins over whatever was stored.
	got, err := s.GetClimber(ctx, "Maja")
	require.NoError(t, err)
	assert.Equal(t, domain.ComputeLevel(0, 7, 0, 0).Level, got.Level.Level)

	report, err = s.MigrateStoredLevels(ctx, nil)
	require.NoError(t, err)
	assert.Equal(t, 0, report.Changed)
}

func TestMigrateOwnershipSets(t *testing.T) {
	s, cleanup := setupTestStore(t)
	defer cleanup()

	ctx := context.Background()
	require.NoError(t, s.CreateAlbum(ctx, &domain.Album{URL: "https://photos/a:1"}))

	// Legacy single-value form: own:{kind}:{key} → userID. The album key
	// itself contains colons; only the kind tag is colon-free.
	err := s.db.Update(func(txn *badger.Txn) error {
		return txn.Set([]byte("own:album:https://photos/a:1"), []byte("user_1"))
	})
	require.NoError(t, err)

	report, err := s.MigrateOwnershipSets(ctx, nil)
	require.NoError(t, err)
	assert.Equal(t, 1, report.Examined)
	assert.Equal(t, 1, report.Changed)

	owners, err := s.Owners(ctx, domain.KindAlbum, "https://photos/a:1")
	require.NoError(t, err)
	assert.Equal(t, []string{"user_1"}, owners)

	owned, err := s.ResourcesOwnedBy(ctx, "user_1", domain.KindAlbum)
	require.NoError(t, err)
	assert.Equal(t, []string{"https://photos/a:1"}, owned)

	report, err = s.MigrateOwnershipSets(ctx, nil)
	require.NoError(t, err)
	assert.Equal(t, 0, report.Examined)
}

func TestAssignUnownedResources(t *testing.T) {
	s, cleanup := setupTestStore(t)
	defer cleanup()

	ctx := context.Background()
	mustCreateUser(t, s, "admin_1", domain.RoleAdmin)
	mustCreateUser(t, s, "user_1", domain.RoleUser)
	require.NoError(t, s.CreateAlbum(ctx, &domain.Album{URL: "https://photos/a1"}))
	require.NoError(t, s.CreateAlbum(ctx, &domain.Album{URL: "https://photos/a2"}))
	require.NoError(t, s.AddOwner(ctx, domain.KindAlbum, "https://photos/a2", "user_1"))

	report, err := s.AssignUnownedResources(ctx, domain.KindAlbum, "admin_1", nil)
	require.NoError(t, err)
	assert.Equal(t, 1, report.Changed)

	owners, err := s.Owners(ctx, domain.KindAlbum, "https://photos/a1")
	require.NoError(t, err)
	assert.Equal(t, []string{"admin_1"}, owners)

	// Owned resources keep their owner.
	owners, err = s.Owners(ctx, domain.KindAlbum, "https://photos/a2")
	require.NoError(t, err)
	assert.Equal(t, []string{"user_1"}, owners)

	// Re-running finds nothing unowned.
	report, err = s.AssignUnownedResources(ctx, domain.KindAlbum, "admin_1", nil)
	require.NoError(t, err)
	assert.Equal(t, 0, report.Examined)
}

func TestAssignUnownedResources_AdminMissing(t *testing.T) {
	s, cleanup := setupTestStore(t)
	defer cleanup()

	_, err := s.AssignUnownedResources(context.Background(), domain.KindAlbum, "nobody", nil)
	assert.Error(t, err)
}
