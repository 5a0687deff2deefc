package service

import (
	"context"
	"log/slog"

	"github.com/cragbook/cragbook-server/internal/domain"
	"github.com/cragbook/cragbook-server/internal/store"
	"github.com/cragbook/cragbook-server/internal/validation"
)

// OwnershipService exposes the ownership ledger: who owns which
// resources, and the admin workflows around transfer and reassignment.
type OwnershipService struct {
	store  *store.Store
	logger *slog.Logger
}

// NewOwnershipService creates a new ownership service.
func NewOwnershipService(store *store.Store, logger *slog.Logger) *OwnershipService {
	return &OwnershipService{
		store:  store,
		logger: logger,
	}
}

// resourceKey normalizes a resource key for kinds whose keys are human
// names. Album URLs and meme IDs pass through untouched.
func resourceKey(kind domain.ResourceKind, key string) string {
	switch kind {
	case domain.KindClimber, domain.KindLocation:
		return validation.NormalizeName(key)
	default:
		return key
	}
}

// AddOwner records userID as an owner of the resource.
func (s *OwnershipService) AddOwner(ctx context.Context, kind domain.ResourceKind, key, userID string) error {
	key = resourceKey(kind, key)
	if err := s.store.AddOwner(ctx, kind, key, userID); err != nil {
		return err
	}
	s.logger.Info("owner added", "kind", kind.String(), "key", key, "user_id", userID)
	return nil
}

// RemoveOwner drops userID from the resource's owner set. Removing the
// last owner of a kind that must stay owned is rejected.
func (s *OwnershipService) RemoveOwner(ctx context.Context, kind domain.ResourceKind, key, userID string) error {
	key = resourceKey(kind, key)
	if err := s.store.RemoveOwner(ctx, kind, key, userID); err != nil {
		return err
	}
	s.logger.Info("owner removed", "kind", kind.String(), "key", key, "user_id", userID)
	return nil
}

// Owners returns the user IDs owning the resource, sorted.
func (s *OwnershipService) Owners(ctx context.Context, kind domain.ResourceKind, key string) ([]string, error) {
	return s.store.Owners(ctx, kind, resourceKey(kind, key))
}

// IsOwner reports whether userID owns the resource.
func (s *OwnershipService) IsOwner(ctx context.Context, kind domain.ResourceKind, key, userID string) (bool, error) {
	return s.store.IsOwner(ctx, kind, resourceKey(kind, key), userID)
}

// ResourcesOwnedBy returns the keys of the user's resources of a kind.
func (s *OwnershipService) ResourcesOwnedBy(ctx context.Context, userID string, kind domain.ResourceKind) ([]string, error) {
	return s.store.ResourcesOwnedBy(ctx, userID, kind)
}

// Transfer moves ownership of a resource from one user to another in a
// single atomic step. The source must currently be an owner.
func (s *OwnershipService) Transfer(ctx context.Context, kind domain.ResourceKind, key, from, to string) error {
	key = resourceKey(kind, key)

	// The recipient must be a real account.
	if _, err := s.store.GetUser(ctx, to); err != nil {
		return err
	}

	if err := s.store.TransferOwnership(ctx, kind, key, from, to); err != nil {
		return err
	}

	s.logger.Info("ownership transferred", "kind", kind.String(), "key", key, "from", from, "to", to)
	return nil
}

// Unowned returns the keys of resources of a kind with no owner.
func (s *OwnershipService) Unowned(ctx context.Context, kind domain.ResourceKind) ([]string, error) {
	return s.store.UnownedResources(ctx, kind)
}
