package api

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/cragbook/cragbook-server/internal/domain"
	apperrors "github.com/cragbook/cragbook-server/internal/errors"
)

func (s *Server) registerOwnershipRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "getOwners",
		Method:      http.MethodGet,
		Path:        "/api/v1/ownership/{kind}/owners",
		Summary:     "Get owners",
		Description: "Returns the user IDs owning a resource",
		Tags:        []string{"Ownership"},
	}, s.handleGetOwners)

	huma.Register(s.api, huma.Operation{
		OperationID: "addOwner",
		Method:      http.MethodPost,
		Path:        "/api/v1/ownership/{kind}/owners",
		Summary:     "Add owner",
		Description: "Adds a user to a resource's owner set",
		Tags:        []string{"Ownership"},
	}, s.handleAddOwner)

	huma.Register(s.api, huma.Operation{
		OperationID: "removeOwner",
		Method:      http.MethodDelete,
		Path:        "/api/v1/ownership/{kind}/owners",
		Summary:     "Remove owner",
		Description: "Removes a user from a resource's owner set",
		Tags:        []string{"Ownership"},
	}, s.handleRemoveOwner)

	huma.Register(s.api, huma.Operation{
		OperationID: "transferOwnership",
		Method:      http.MethodPost,
		Path:        "/api/v1/ownership/{kind}/transfer",
		Summary:     "Transfer ownership",
		Description: "Atomically moves ownership of a resource between users",
		Tags:        []string{"Ownership"},
	}, s.handleTransferOwnership)

	huma.Register(s.api, huma.Operation{
		OperationID: "listOwnedResources",
		Method:      http.MethodGet,
		Path:        "/api/v1/ownership/{kind}/by-user/{userID}",
		Summary:     "List owned resources",
		Description: "Returns the resource keys a user owns, per kind",
		Tags:        []string{"Ownership"},
	}, s.handleListOwnedResources)

	huma.Register(s.api, huma.Operation{
		OperationID: "listUnownedResources",
		Method:      http.MethodGet,
		Path:        "/api/v1/ownership/{kind}/unowned",
		Summary:     "List unowned resources",
		Description: "Returns resource keys with no owner (admin report)",
		Tags:        []string{"Ownership"},
	}, s.handleListUnownedResources)
}

// parseKind validates a resource kind path parameter.
func parseKind(raw string) (domain.ResourceKind, error) {
	kind := domain.ResourceKind(raw)
	if !kind.Valid() {
		return "", apperrors.Validationf("unknown resource kind %q", raw)
	}
	return kind, nil
}

// === DTOs ===

// OwnersResponse contains a resource's owner set.
type OwnersResponse struct {
	Owners []string `json:"owners" doc:"User IDs owning the resource, sorted"`
}

// OwnersOutput wraps the owners response for Huma.
type OwnersOutput struct {
	Body OwnersResponse
}

// GetOwnersInput contains parameters for reading a resource's owners.
type GetOwnersInput struct {
	Kind string `path:"kind" doc:"Resource kind (climber, album, location, meme)"`
	Key  string `query:"key" required:"true" doc:"Resource key"`
}

// OwnerEditRequest is the request body for owner set edits.
type OwnerEditRequest struct {
	UserID string `json:"user_id" validate:"required" doc:"Target user ID"`
}

// OwnerEditInput wraps an owner edit for Huma.
type OwnerEditInput struct {
	ActingUserID string `header:"X-User-ID" doc:"Acting user"`
	Kind         string `path:"kind" doc:"Resource kind"`
	Key          string `query:"key" required:"true" doc:"Resource key"`
	Body         OwnerEditRequest
}

// TransferRequest is the request body for ownership transfer.
type TransferRequest struct {
	From string `json:"from" validate:"required" doc:"Current owner user ID"`
	To   string `json:"to" validate:"required" doc:"Recipient user ID"`
}

// TransferInput wraps a transfer request for Huma.
type TransferInput struct {
	ActingUserID string `header:"X-User-ID" doc:"Acting user"`
	Kind         string `path:"kind" doc:"Resource kind"`
	Key          string `query:"key" required:"true" doc:"Resource key"`
	Body         TransferRequest
}

// OwnedResourcesInput contains parameters for listing a user's resources.
type OwnedResourcesInput struct {
	Kind   string `path:"kind" doc:"Resource kind"`
	UserID string `path:"userID" doc:"Owner user ID"`
}

// UnownedResourcesInput contains parameters for the unowned report.
type UnownedResourcesInput struct {
	ActingUserID string `header:"X-User-ID" doc:"Acting user"`
	Kind         string `path:"kind" doc:"Resource kind"`
}

// ResourceKeysResponse contains resource keys.
type ResourceKeysResponse struct {
	Keys []string `json:"keys" doc:"Resource keys, sorted"`
}

// ResourceKeysOutput wraps the resource keys response for Huma.
type ResourceKeysOutput struct {
	Body ResourceKeysResponse
}

// === Handlers ===

func (s *Server) handleGetOwners(ctx context.Context, input *GetOwnersInput) (*OwnersOutput, error) {
	kind, err := parseKind(input.Kind)
	if err != nil {
		return nil, err
	}

	owners, err := s.services.Ownership.Owners(ctx, kind, input.Key)
	if err != nil {
		return nil, err
	}
	return &OwnersOutput{Body: OwnersResponse{Owners: owners}}, nil
}

func (s *Server) handleAddOwner(ctx context.Context, input *OwnerEditInput) (*OwnersOutput, error) {
	kind, err := parseKind(input.Kind)
	if err != nil {
		return nil, err
	}

	userID, err := s.requireUser(ctx, input.ActingUserID)
	if err != nil {
		return nil, err
	}
	if err := s.requireOwnerOrAdmin(ctx, kind, input.Key, userID); err != nil {
		return nil, err
	}

	if err := s.services.Ownership.AddOwner(ctx, kind, input.Key, input.Body.UserID); err != nil {
		return nil, err
	}

	owners, err := s.services.Ownership.Owners(ctx, kind, input.Key)
	if err != nil {
		return nil, err
	}
	return &OwnersOutput{Body: OwnersResponse{Owners: owners}}, nil
}

func (s *Server) handleRemoveOwner(ctx context.Context, input *OwnerEditInput) (*OwnersOutput, error) {
	kind, err := parseKind(input.Kind)
	if err != nil {
		return nil, err
	}

	userID, err := s.requireUser(ctx, input.ActingUserID)
	if err != nil {
		return nil, err
	}
	if err := s.requireOwnerOrAdmin(ctx, kind, input.Key, userID); err != nil {
		return nil, err
	}

	if err := s.services.Ownership.RemoveOwner(ctx, kind, input.Key, input.Body.UserID); err != nil {
		return nil, err
	}

	owners, err := s.services.Ownership.Owners(ctx, kind, input.Key)
	if err != nil {
		return nil, err
	}
	return &OwnersOutput{Body: OwnersResponse{Owners: owners}}, nil
}

func (s *Server) handleTransferOwnership(ctx context.Context, input *TransferInput) (*OwnersOutput, error) {
	kind, err := parseKind(input.Kind)
	if err != nil {
		return nil, err
	}

	userID, err := s.requireUser(ctx, input.ActingUserID)
	if err != nil {
		return nil, err
	}
	if err := s.requireOwnerOrAdmin(ctx, kind, input.Key, userID); err != nil {
		return nil, err
	}

	if err := s.services.Ownership.Transfer(ctx, kind, input.Key, input.Body.From, input.Body.To); err != nil {
		return nil, err
	}

	owners, err := s.services.Ownership.Owners(ctx, kind, input.Key)
	if err != nil {
		return nil, err
	}
	return &OwnersOutput{Body: OwnersResponse{Owners: owners}}, nil
}

func (s *Server) handleListOwnedResources(ctx context.Context, input *OwnedResourcesInput) (*ResourceKeysOutput, error) {
	kind, err := parseKind(input.Kind)
	if err != nil {
		return nil, err
	}

	keys, err := s.services.Ownership.ResourcesOwnedBy(ctx, input.UserID, kind)
	if err != nil {
		return nil, err
	}
	return &ResourceKeysOutput{Body: ResourceKeysResponse{Keys: keys}}, nil
}

func (s *Server) handleListUnownedResources(ctx context.Context, input *UnownedResourcesInput) (*ResourceKeysOutput, error) {
	kind, err := parseKind(input.Kind)
	if err != nil {
		return nil, err
	}

	userID, err := s.requireUser(ctx, input.ActingUserID)
	if err != nil {
		return nil, err
	}
	u, err := s.services.User.GetUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	if !u.IsAdmin() {
		return nil, apperrors.Forbidden("admin role required")
	}

	keys, err := s.services.Ownership.Unowned(ctx, kind)
	if err != nil {
		return nil, err
	}
	return &ResourceKeysOutput{Body: ResourceKeysResponse{Keys: keys}}, nil
}
