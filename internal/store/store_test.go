package store

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cragbook/cragbook-server/internal/domain"
)

func setupTestStore(t *testing.T) (*Store, func()) {
	t.Helper()

	tmpDir, err := os.MkdirTemp("", "store-test-*")
	require.NoError(t, err)

	dbPath := filepath.Join(tmpDir, "test.db")
	s, err := New(dbPath, nil)
	require.NoError(t, err)

	cleanup := func() {
		_ = s.Close()
		_ = os.RemoveAll(tmpDir)
	}

	return s, cleanup
}

// mustCreateClimber seeds a bare climber for tests that need crew members.
func mustCreateClimber(t *testing.T, s *Store, name string) {
	t.Helper()
	require.NoError(t, s.CreateClimber(context.Background(), &domain.Climber{Name: name}))
}

// mustCreateLocation seeds a bare location.
func mustCreateLocation(t *testing.T, s *Store, name string) {
	t.Helper()
	require.NoError(t, s.CreateLocation(context.Background(), &domain.Location{Name: name}))
}

// mustCreateUser seeds a user account.
func mustCreateUser(t *testing.T, s *Store, id string, role domain.Role) {
	t.Helper()
	require.NoError(t, s.CreateUser(context.Background(), &domain.User{
		ID:    id,
		Email: id + "@example.com",
		Role:  role,
	}))
}

func TestHealth(t *testing.T) {
	s, cleanup := setupTestStore(t)
	defer cleanup()

	ctx := context.Background()

	mustCreateClimber(t, s, "Maja")
	mustCreateClimber(t, s, "Tomek")
	mustCreateLocation(t, s, "Sokoliki")
	mustCreateUser(t, s, "user_1", domain.RoleAdmin)

	status, err := s.Health(ctx)
	require.NoError(t, err)
	assert.True(t, status.OK)
	assert.Equal(t, 2, status.Climbers)
	assert.Equal(t, 0, status.Albums)
	assert.Equal(t, 1, status.Locations)
	assert.Equal(t, 0, status.Memes)
	assert.Equal(t, 1, status.Users)
}

func TestDiffMembers(t *testing.T) {
	added, removed := diffMembers(
		[]string{"bouldering", "trad", "slab"},
		[]string{"trad", "crack", "slab"},
	)
	assert.Equal(t, []string{"crack"}, added)
	assert.Equal(t, []string{"bouldering"}, removed)

	added, removed = diffMembers(nil, []string{"a"})
	assert.Equal(t, []string{"a"}, added)
	assert.Empty(t, removed)

	added, removed = diffMembers([]string{"a"}, nil)
	assert.Empty(t, added)
	assert.Equal(t, []string{"a"}, removed)
}
