package api

import (
	"context"
	"net/http"
	"time"

	"github.com/danielgtaylor/huma/v2"

	"github.com/cragbook/cragbook-server/internal/domain"
	"github.com/cragbook/cragbook-server/internal/service"
)

func (s *Server) registerUserRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "registerUser",
		Method:      http.MethodPost,
		Path:        "/api/v1/users",
		Summary:     "Register user",
		Description: "Creates a pending account; the first account becomes admin",
		Tags:        []string{"Users"},
	}, s.handleRegisterUser)

	huma.Register(s.api, huma.Operation{
		OperationID: "listUsers",
		Method:      http.MethodGet,
		Path:        "/api/v1/users",
		Summary:     "List users",
		Description: "Returns all accounts",
		Tags:        []string{"Users"},
	}, s.handleListUsers)

	huma.Register(s.api, huma.Operation{
		OperationID: "getCurrentUser",
		Method:      http.MethodGet,
		Path:        "/api/v1/users/me",
		Summary:     "Get current user",
		Description: "Returns the acting user's account",
		Tags:        []string{"Users"},
	}, s.handleGetCurrentUser)

	huma.Register(s.api, huma.Operation{
		OperationID: "getUser",
		Method:      http.MethodGet,
		Path:        "/api/v1/users/{id}",
		Summary:     "Get user",
		Description: "Returns an account by ID",
		Tags:        []string{"Users"},
	}, s.handleGetUser)

	huma.Register(s.api, huma.Operation{
		OperationID: "updateUser",
		Method:      http.MethodPatch,
		Path:        "/api/v1/users/{id}",
		Summary:     "Update user",
		Description: "Updates an account's profile fields",
		Tags:        []string{"Users"},
	}, s.handleUpdateUser)

	huma.Register(s.api, huma.Operation{
		OperationID: "approveUser",
		Method:      http.MethodPost,
		Path:        "/api/v1/users/{id}/approve",
		Summary:     "Approve user",
		Description: "Moves a pending account to the standard role (admin only)",
		Tags:        []string{"Users"},
	}, s.handleApproveUser)

	huma.Register(s.api, huma.Operation{
		OperationID: "deleteUser",
		Method:      http.MethodDelete,
		Path:        "/api/v1/users/{id}",
		Summary:     "Delete user",
		Description: "Deletes an account and its ownership records (admin only)",
		Tags:        []string{"Users"},
	}, s.handleDeleteUser)
}

// === DTOs ===

// UserResponse contains account data in API responses.
type UserResponse struct {
	ID          string         `json:"id" doc:"User ID"`
	Email       string         `json:"email" doc:"Email address"`
	DisplayName string         `json:"display_name,omitempty" doc:"Display name"`
	Role        string         `json:"role" doc:"Account role"`
	Created     map[string]int `json:"created,omitempty" doc:"Resources created, per kind"`
	CreatedAt   time.Time      `json:"created_at" doc:"Registration time"`
	UpdatedAt   time.Time      `json:"updated_at" doc:"Last update time"`
}

func userResponse(u *domain.User) UserResponse {
	var created map[string]int
	if len(u.Created) > 0 {
		created = make(map[string]int, len(u.Created))
		for kind, n := range u.Created {
			created[kind.String()] = n
		}
	}
	return UserResponse{
		ID:          u.ID,
		Email:       u.Email,
		DisplayName: u.DisplayName,
		Role:        string(u.Role),
		Created:     created,
		CreatedAt:   u.CreatedAt,
		UpdatedAt:   u.UpdatedAt,
	}
}

// UserOutput wraps a single user response for Huma.
type UserOutput struct {
	Body UserResponse
}

// UserListResponse contains a list of accounts.
type UserListResponse struct {
	Users []UserResponse `json:"users" doc:"List of accounts"`
}

// UserListOutput wraps the user list response for Huma.
type UserListOutput struct {
	Body UserListResponse
}

// RegisterUserInput wraps the registration request for Huma.
type RegisterUserInput struct {
	Body service.RegisterUserRequest
}

// CurrentUserInput identifies the acting user.
type CurrentUserInput struct {
	UserID string `header:"X-User-ID" doc:"Acting user"`
}

// GetUserInput contains parameters for getting an account.
type GetUserInput struct {
	ID string `path:"id" doc:"User ID"`
}

// UpdateUserInput wraps the profile update request for Huma.
type UpdateUserInput struct {
	UserID string `header:"X-User-ID" doc:"Acting user"`
	ID     string `path:"id" doc:"User ID"`
	Body   service.UpdateUserRequest
}

// AdminUserActionInput contains parameters for admin account actions.
type AdminUserActionInput struct {
	UserID string `header:"X-User-ID" doc:"Acting admin"`
	ID     string `path:"id" doc:"Target user ID"`
}

// === Handlers ===

func (s *Server) handleRegisterUser(ctx context.Context, input *RegisterUserInput) (*UserOutput, error) {
	u, err := s.services.User.RegisterUser(ctx, input.Body)
	if err != nil {
		return nil, err
	}
	return &UserOutput{Body: userResponse(u)}, nil
}

func (s *Server) handleListUsers(ctx context.Context, input *CurrentUserInput) (*UserListOutput, error) {
	if _, err := s.requireUser(ctx, input.UserID); err != nil {
		return nil, err
	}

	users, err := s.services.User.ListUsers(ctx)
	if err != nil {
		return nil, err
	}

	resp := make([]UserResponse, len(users))
	for i, u := range users {
		resp[i] = userResponse(u)
	}
	return &UserListOutput{Body: UserListResponse{Users: resp}}, nil
}

func (s *Server) handleGetCurrentUser(ctx context.Context, input *CurrentUserInput) (*UserOutput, error) {
	// Pending accounts may still see themselves.
	u, err := s.services.User.GetUser(ctx, input.UserID)
	if err != nil {
		return nil, err
	}
	return &UserOutput{Body: userResponse(u)}, nil
}

func (s *Server) handleGetUser(ctx context.Context, input *GetUserInput) (*UserOutput, error) {
	u, err := s.services.User.GetUser(ctx, input.ID)
	if err != nil {
		return nil, err
	}
	return &UserOutput{Body: userResponse(u)}, nil
}

func (s *Server) handleUpdateUser(ctx context.Context, input *UpdateUserInput) (*UserOutput, error) {
	if _, err := s.requireUser(ctx, input.UserID); err != nil {
		return nil, err
	}

	u, err := s.services.User.UpdateUser(ctx, input.ID, input.Body)
	if err != nil {
		return nil, err
	}
	return &UserOutput{Body: userResponse(u)}, nil
}

func (s *Server) handleApproveUser(ctx context.Context, input *AdminUserActionInput) (*UserOutput, error) {
	u, err := s.services.User.ApproveUser(ctx, input.UserID, input.ID)
	if err != nil {
		return nil, err
	}
	return &UserOutput{Body: userResponse(u)}, nil
}

func (s *Server) handleDeleteUser(ctx context.Context, input *AdminUserActionInput) (*MessageOutput, error) {
	if err := s.services.User.DeleteUser(ctx, input.UserID, input.ID); err != nil {
		return nil, err
	}
	return &MessageOutput{Body: MessageResponse{Message: "User deleted"}}, nil
}
