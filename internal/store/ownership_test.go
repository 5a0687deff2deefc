package store

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cragbook/cragbook-server/internal/domain"
	apperrors "github.com/cragbook/cragbook-server/internal/errors"
)

func TestAddOwner(t *testing.T) {
	s, cleanup := setupTestStore(t)
	defer cleanup()

	ctx := context.Background()
	mustCreateClimber(t, s, "Maja")
	mustCreateUser(t, s, "user_1", domain.RoleUser)

	require.NoError(t, s.AddOwner(ctx, domain.KindClimber, "Maja", "user_1"))

	owns, err := s.IsOwner(ctx, domain.KindClimber, "Maja", "user_1")
	require.NoError(t, err)
	assert.True(t, owns)

	owned, err := s.ResourcesOwnedBy(ctx, "user_1", domain.KindClimber)
	require.NoError(t, err)
	assert.Equal(t, []string{"Maja"}, owned)

	// Idempotent.
	require.NoError(t, s.AddOwner(ctx, domain.KindClimber, "Maja", "user_1"))
	owners, err := s.Owners(ctx, domain.KindClimber, "Maja")
	require.NoError(t, err)
	assert.Equal(t, []string{"user_1"}, owners)
}

func TestAddOwner_ResourceMissing(t *testing.T) {
	s, cleanup := setupTestStore(t)
	defer cleanup()

	err := s.AddOwner(context.Background(), domain.KindClimber, "nobody", "user_1")
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestAddOwner_InvalidKind(t *testing.T) {
	s, cleanup := setupTestStore(t)
	defer cleanup()

	err := s.AddOwner(context.Background(), domain.ResourceKind("banana"), "x", "user_1")
	assert.ErrorIs(t, err, apperrors.ErrValidation)
}

func TestRemoveOwner_LastOwnerRules(t *testing.T) {
	s, cleanup := setupTestStore(t)
	defer cleanup()

	ctx := context.Background()
	mustCreateClimber(t, s, "Maja")
	require.NoError(t, s.CreateAlbum(ctx, &domain.Album{URL: "https://photos/a1"}))
	mustCreateUser(t, s, "user_1", domain.RoleUser)

	// Albums must keep at least one owner.
	require.NoError(t, s.AddOwner(ctx, domain.KindAlbum, "https://photos/a1", "user_1"))
	err := s.RemoveOwner(ctx, domain.KindAlbum, "https://photos/a1", "user_1")
	assert.ErrorIs(t, err, apperrors.ErrConflict)

	// Climbers are community records and may be unowned.
	require.NoError(t, s.AddOwner(ctx, domain.KindClimber, "Maja", "user_1"))
	require.NoError(t, s.RemoveOwner(ctx, domain.KindClimber, "Maja", "user_1"))

	owners, err := s.Owners(ctx, domain.KindClimber, "Maja")
	require.NoError(t, err)
	assert.Empty(t, owners)
}

func TestRemoveOwner_NotAnOwner(t *testing.T) {
	s, cleanup := setupTestStore(t)
	defer cleanup()

	ctx := context.Background()
	mustCreateClimber(t, s, "Maja")

	err := s.RemoveOwner(ctx, domain.KindClimber, "Maja", "user_1")
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestRemoveOwner_SecondOwnerOfAlbum(t *testing.T) {
	s, cleanup := setupTestStore(t)
	defer cleanup()

	ctx := context.Background()
	require.NoError(t, s.CreateAlbum(ctx, &domain.Album{URL: "https://photos/a1"}))
	require.NoError(t, s.AddOwner(ctx, domain.KindAlbum, "https://photos/a1", "user_1"))
	require.NoError(t, s.AddOwner(ctx, domain.KindAlbum, "https://photos/a1", "user_2"))

	require.NoError(t, s.RemoveOwner(ctx, domain.KindAlbum, "https://photos/a1", "user_1"))

	owners, err := s.Owners(ctx, domain.KindAlbum, "https://photos/a1")
	require.NoError(t, err)
	assert.Equal(t, []string{"user_2"}, owners)
}

func TestTransferOwnership(t *testing.T) {
	s, cleanup := setupTestStore(t)
	defer cleanup()

	ctx := context.Background()
	require.NoError(t, s.CreateAlbum(ctx, &domain.Album{URL: "https://photos/a1"}))
	require.NoError(t, s.AddOwner(ctx, domain.KindAlbum, "https://photos/a1", "user_1"))

	require.NoError(t, s.TransferOwnership(ctx, domain.KindAlbum, "https://photos/a1", "user_1", "user_2"))

	owners, err := s.Owners(ctx, domain.KindAlbum, "https://photos/a1")
	require.NoError(t, err)
	assert.Equal(t, []string{"user_2"}, owners)

	// Reverse direction followed.
	owned, err := s.ResourcesOwnedBy(ctx, "user_1", domain.KindAlbum)
	require.NoError(t, err)
	assert.Empty(t, owned)
}

func TestTransferOwnership_FromNotOwner(t *testing.T) {
	s, cleanup := setupTestStore(t)
	defer cleanup()

	ctx := context.Background()
	require.NoError(t, s.CreateAlbum(ctx, &domain.Album{URL: "https://photos/a1"}))

	err := s.TransferOwnership(ctx, domain.KindAlbum, "https://photos/a1", "user_1", "user_2")
	assert.ErrorIs(t, err, apperrors.ErrConflict)
}

func TestUnownedResources(t *testing.T) {
	s, cleanup := setupTestStore(t)
	defer cleanup()

	ctx := context.Background()
	mustCreateClimber(t, s, "Maja")
	mustCreateClimber(t, s, "Tomek")
	mustCreateUser(t, s, "user_1", domain.RoleUser)
	require.NoError(t, s.AddOwner(ctx, domain.KindClimber, "Maja", "user_1"))

	unowned, err := s.UnownedResources(ctx, domain.KindClimber)
	require.NoError(t, err)
	assert.Equal(t, []string{"Tomek"}, unowned)
}

func TestDeleteUser_OrphansOwnedResources(t *testing.T) {
	s, cleanup := setupTestStore(t)
	defer cleanup()

	ctx := context.Background()
	mustCreateClimber(t, s, "Maja")
	mustCreateUser(t, s, "user_1", domain.RoleUser)
	require.NoError(t, s.AddOwner(ctx, domain.KindClimber, "Maja", "user_1"))

	require.NoError(t, s.DeleteUser(ctx, "user_1"))

	owners, err := s.Owners(ctx, domain.KindClimber, "Maja")
	require.NoError(t, err)
	assert.Empty(t, owners)

	unowned, err := s.UnownedResources(ctx, domain.KindClimber)
	require.NoError(t, err)
	assert.Equal(t, []string{"Maja"}, unowned)
}
