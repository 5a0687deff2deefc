package service

import (
	"context"
	"log/slog"

	"github.com/cragbook/cragbook-server/internal/domain"
	apperrors "github.com/cragbook/cragbook-server/internal/errors"
	"github.com/cragbook/cragbook-server/internal/store"
	"github.com/cragbook/cragbook-server/internal/validation"
)

// UserService orchestrates account management. New accounts start in
// the pending role and stay read-only until an admin approves them.
type UserService struct {
	store     *store.Store
	logger    *slog.Logger
	validator *validation.Validator
}

// NewUserService creates a new user service.
func NewUserService(store *store.Store, logger *slog.Logger) *UserService {
	return &UserService{
		store:     store,
		logger:    logger,
		validator: validation.New(),
	}
}

// RegisterUserRequest contains fields for registering an account.
// The ID is the stable subject from the external identity provider.
type RegisterUserRequest struct {
	ID          string `json:"id" validate:"required,store_key"`
	Email       string `json:"email" validate:"required,email"`
	DisplayName string `json:"display_name,omitempty" validate:"max=200"`
}

// RegisterUser creates a pending account. The first account ever
// registered becomes admin so the instance is administrable.
func (s *UserService) RegisterUser(ctx context.Context, req RegisterUserRequest) (*domain.User, error) {
	req.Email = validation.NormalizeEmail(req.Email)
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}

	role := domain.RolePending
	count, err := s.store.CountUsers(ctx)
	if err != nil {
		return nil, err
	}
	if count == 0 {
		role = domain.RoleAdmin
	}

	u := &domain.User{
		ID:          req.ID,
		Email:       req.Email,
		DisplayName: req.DisplayName,
		Role:        role,
	}
	u.InitTimestamps()

	if err := s.store.CreateUser(ctx, u); err != nil {
		return nil, err
	}

	s.logger.Info("user registered", "id", u.ID, "role", string(u.Role))
	return u, nil
}

// GetUser returns an account by ID.
func (s *UserService) GetUser(ctx context.Context, id string) (*domain.User, error) {
	return s.store.GetUser(ctx, id)
}

// GetUserByEmail returns an account by its normalized email address.
func (s *UserService) GetUserByEmail(ctx context.Context, email string) (*domain.User, error) {
	return s.store.GetUserByEmail(ctx, validation.NormalizeEmail(email))
}

// UpdateUserRequest contains updatable profile fields.
type UpdateUserRequest struct {
	Email       *string `json:"email,omitempty"`
	DisplayName *string `json:"display_name,omitempty"`
}

// UpdateUser updates an account's profile fields. Email changes move
// the email index entry and fail on a taken address.
func (s *UserService) UpdateUser(ctx context.Context, id string, req UpdateUserRequest) (*domain.User, error) {
	if req.Email != nil {
		normalized := validation.NormalizeEmail(*req.Email)
		req.Email = &normalized
	}

	patch := store.UserPatch{
		Email:       req.Email,
		DisplayName: req.DisplayName,
	}
	if err := s.store.UpdateUser(ctx, id, patch); err != nil {
		return nil, err
	}
	return s.store.GetUser(ctx, id)
}

// ApproveUser moves a pending account to the standard role. Approving
// an already-active account is a no-op.
func (s *UserService) ApproveUser(ctx context.Context, adminID, id string) (*domain.User, error) {
	if err := s.requireAdmin(ctx, adminID); err != nil {
		return nil, err
	}

	u, err := s.store.GetUser(ctx, id)
	if err != nil {
		return nil, err
	}
	if !u.IsPending() {
		return u, nil
	}

	role := domain.RoleUser
	if err := s.store.UpdateUser(ctx, id, store.UserPatch{Role: &role}); err != nil {
		return nil, err
	}

	s.logger.Info("user approved", "id", id, "admin_id", adminID)
	return s.store.GetUser(ctx, id)
}

// SetRole changes an account's role directly. Admin only.
func (s *UserService) SetRole(ctx context.Context, adminID, id string, role domain.Role) (*domain.User, error) {
	if err := s.requireAdmin(ctx, adminID); err != nil {
		return nil, err
	}

	switch role {
	case domain.RoleAdmin, domain.RoleUser, domain.RolePending:
	default:
		return nil, apperrors.Validationf("unknown role %q", string(role))
	}

	if err := s.store.UpdateUser(ctx, id, store.UserPatch{Role: &role}); err != nil {
		return nil, err
	}
	return s.store.GetUser(ctx, id)
}

// DeleteUser removes an account and its ownership records. Resources
// the user owned stay in place; sole-owned resources become unowned and
// show up in the unowned report for reassignment.
func (s *UserService) DeleteUser(ctx context.Context, adminID, id string) error {
	if err := s.requireAdmin(ctx, adminID); err != nil {
		return err
	}

	if err := s.store.DeleteUser(ctx, id); err != nil {
		return err
	}

	s.logger.Info("user deleted", "id", id, "admin_id", adminID)
	return nil
}

// ListUsers returns all accounts sorted by ID.
func (s *UserService) ListUsers(ctx context.Context) ([]*domain.User, error) {
	return s.store.ListUsers(ctx)
}

// requireAdmin verifies the acting user holds the admin role.
func (s *UserService) requireAdmin(ctx context.Context, adminID string) error {
	admin, err := s.store.GetUser(ctx, adminID)
	if err != nil {
		return err
	}
	if !admin.IsAdmin() {
		return apperrors.Forbidden("admin role required")
	}
	return nil
}
