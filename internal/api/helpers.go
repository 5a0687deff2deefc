package api

import (
	"context"

	"github.com/cragbook/cragbook-server/internal/domain"
	apperrors "github.com/cragbook/cragbook-server/internal/errors"
)

// MessageResponse contains a simple status message.
type MessageResponse struct {
	Message string `json:"message" doc:"Status message"`
}

// MessageOutput wraps a message response for Huma.
type MessageOutput struct {
	Body MessageResponse
}

// requireOwnerOrAdmin checks that userID owns the resource or holds the
// admin role.
func (s *Server) requireOwnerOrAdmin(ctx context.Context, kind domain.ResourceKind, key, userID string) error {
	owns, err := s.services.Ownership.IsOwner(ctx, kind, key, userID)
	if err != nil {
		return err
	}
	if owns {
		return nil
	}

	u, err := s.services.User.GetUser(ctx, userID)
	if err != nil {
		return err
	}
	if !u.IsAdmin() {
		return apperrors.Forbidden("resource owner or admin role required")
	}
	return nil
}

// requireUser resolves the X-User-ID identity header to an active
// account. Authentication itself happens upstream (reverse proxy /
// identity provider); this layer only checks the account exists and has
// been approved.
func (s *Server) requireUser(ctx context.Context, userID string) (string, error) {
	if userID == "" {
		return "", apperrors.Forbidden("identity header required")
	}
	u, err := s.services.User.GetUser(ctx, userID)
	if err != nil {
		return "", err
	}
	if u.IsPending() {
		return "", apperrors.Forbidden("account is awaiting approval")
	}
	return u.ID, nil
}
