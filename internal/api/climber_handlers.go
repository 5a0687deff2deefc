package api

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/danielgtaylor/huma/v2"
	"github.com/go-chi/chi/v5"

	"github.com/cragbook/cragbook-server/internal/domain"
	"github.com/cragbook/cragbook-server/internal/service"
)

func (s *Server) registerClimberRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "listClimbers",
		Method:      http.MethodGet,
		Path:        "/api/v1/climbers",
		Summary:     "List climbers",
		Description: "Returns all climbers with resolved relationships and levels",
		Tags:        []string{"Climbers"},
	}, s.handleListClimbers)

	huma.Register(s.api, huma.Operation{
		OperationID: "createClimber",
		Method:      http.MethodPost,
		Path:        "/api/v1/climbers",
		Summary:     "Create climber",
		Description: "Adds a climber; the caller becomes an owner",
		Tags:        []string{"Climbers"},
	}, s.handleCreateClimber)

	huma.Register(s.api, huma.Operation{
		OperationID: "getClimber",
		Method:      http.MethodGet,
		Path:        "/api/v1/climbers/{name}",
		Summary:     "Get climber",
		Description: "Returns a climber by name",
		Tags:        []string{"Climbers"},
	}, s.handleGetClimber)

	huma.Register(s.api, huma.Operation{
		OperationID: "updateClimber",
		Method:      http.MethodPatch,
		Path:        "/api/v1/climbers/{name}",
		Summary:     "Update climber",
		Description: "Updates a climber's scalar fields",
		Tags:        []string{"Climbers"},
	}, s.handleUpdateClimber)

	huma.Register(s.api, huma.Operation{
		OperationID: "deleteClimber",
		Method:      http.MethodDelete,
		Path:        "/api/v1/climbers/{name}",
		Summary:     "Delete climber",
		Description: "Deletes a climber and strips them from album crews",
		Tags:        []string{"Climbers"},
	}, s.handleDeleteClimber)

	huma.Register(s.api, huma.Operation{
		OperationID: "renameClimber",
		Method:      http.MethodPost,
		Path:        "/api/v1/climbers/{name}/rename",
		Summary:     "Rename climber",
		Description: "Changes a climber's name, carrying all references along",
		Tags:        []string{"Climbers"},
	}, s.handleRenameClimber)

	huma.Register(s.api, huma.Operation{
		OperationID: "setClimberSkills",
		Method:      http.MethodPut,
		Path:        "/api/v1/climbers/{name}/skills",
		Summary:     "Set climber skills",
		Description: "Replaces the climber's skill set",
		Tags:        []string{"Climbers"},
	}, s.handleSetClimberSkills)

	huma.Register(s.api, huma.Operation{
		OperationID: "setClimberTags",
		Method:      http.MethodPut,
		Path:        "/api/v1/climbers/{name}/tags",
		Summary:     "Set climber tags",
		Description: "Replaces the climber's tag set",
		Tags:        []string{"Climbers"},
	}, s.handleSetClimberTags)

	huma.Register(s.api, huma.Operation{
		OperationID: "setClimberAchievements",
		Method:      http.MethodPut,
		Path:        "/api/v1/climbers/{name}/achievements",
		Summary:     "Set climber achievements",
		Description: "Replaces the climber's achievement set",
		Tags:        []string{"Climbers"},
	}, s.handleSetClimberAchievements)

	huma.Register(s.api, huma.Operation{
		OperationID: "setClimberFace",
		Method:      http.MethodPut,
		Path:        "/api/v1/climbers/{name}/face",
		Summary:     "Upload face image",
		Description: "Stores a face image and points the climber record at it",
		Tags:        []string{"Climbers"},
	}, s.handleSetClimberFace)

	huma.Register(s.api, huma.Operation{
		OperationID: "getClimberFaceBlurHash",
		Method:      http.MethodGet,
		Path:        "/api/v1/climbers/{name}/face/blurhash",
		Summary:     "Get face placeholder hash",
		Description: "Returns the BlurHash placeholder for the climber's face image",
		Tags:        []string{"Climbers"},
	}, s.handleClimberFaceBlurHash)

	huma.Register(s.api, huma.Operation{
		OperationID: "listNewcomers",
		Method:      http.MethodGet,
		Path:        "/api/v1/climbers/newcomers",
		Summary:     "List newcomers",
		Description: "Returns climbers whose first album appearance is recent",
		Tags:        []string{"Climbers"},
	}, s.handleListNewcomers)

	huma.Register(s.api, huma.Operation{
		OperationID: "listSkills",
		Method:      http.MethodGet,
		Path:        "/api/v1/skills",
		Summary:     "List skills",
		Description: "Returns every skill value in use",
		Tags:        []string{"Catalog"},
	}, s.handleListSkills)

	huma.Register(s.api, huma.Operation{
		OperationID: "listTags",
		Method:      http.MethodGet,
		Path:        "/api/v1/tags",
		Summary:     "List tags",
		Description: "Returns every tag value in use",
		Tags:        []string{"Catalog"},
	}, s.handleListTags)

	huma.Register(s.api, huma.Operation{
		OperationID: "listAchievements",
		Method:      http.MethodGet,
		Path:        "/api/v1/achievements",
		Summary:     "List achievements",
		Description: "Returns every achievement value in use",
		Tags:        []string{"Catalog"},
	}, s.handleListAchievements)

	// Direct chi route for image streaming.
	s.router.Get("/faces/{name}", s.handleServeFace)
}

// === DTOs ===

// ClimberResponse contains climber data in API responses.
type ClimberResponse struct {
	Name         string                `json:"name" doc:"Climber name"`
	Locations    []string              `json:"locations,omitempty" doc:"Home areas, primary first"`
	Climbs       int                   `json:"climbs" doc:"Number of albums the climber appears on"`
	FaceImage    string                `json:"face_image,omitempty" doc:"Stored face image reference"`
	Skills       []string              `json:"skills" doc:"Skill set"`
	Tags         []string              `json:"tags" doc:"Tag set"`
	Achievements []string              `json:"achievements" doc:"Achievement set"`
	Level        domain.LevelBreakdown `json:"level" doc:"Derived level with per-source breakdown"`
	IsNew        bool                  `json:"is_new,omitempty" doc:"Recent first appearance"`
	CreatedAt    time.Time             `json:"created_at" doc:"Creation time"`
	UpdatedAt    time.Time             `json:"updated_at" doc:"Last update time"`
}

func climberResponse(c *domain.Climber) ClimberResponse {
	return ClimberResponse{
		Name:         c.Name,
		Locations:    c.Locations,
		Climbs:       c.Climbs,
		FaceImage:    c.FaceImage,
		Skills:       c.Skills,
		Tags:         c.Tags,
		Achievements: c.Achievements,
		Level:        c.Level,
		IsNew:        c.IsNew,
		CreatedAt:    c.CreatedAt,
		UpdatedAt:    c.UpdatedAt,
	}
}

// ClimberOutput wraps a single climber response for Huma.
type ClimberOutput struct {
	Body ClimberResponse
}

// ClimberListResponse contains a list of climbers.
type ClimberListResponse struct {
	Climbers []ClimberResponse `json:"climbers" doc:"List of climbers"`
}

// ClimberListOutput wraps the climber list response for Huma.
type ClimberListOutput struct {
	Body ClimberListResponse
}

func climberListOutput(climbers []*domain.Climber) *ClimberListOutput {
	resp := make([]ClimberResponse, len(climbers))
	for i, c := range climbers {
		resp[i] = climberResponse(c)
	}
	return &ClimberListOutput{Body: ClimberListResponse{Climbers: resp}}
}

// ListClimbersInput contains parameters for listing climbers.
type ListClimbersInput struct {
	Skill       string `query:"skill" doc:"Filter by skill"`
	Tag         string `query:"tag" doc:"Filter by tag"`
	Achievement string `query:"achievement" doc:"Filter by achievement"`
}

// CreateClimberInput wraps the create climber request for Huma.
type CreateClimberInput struct {
	UserID string `header:"X-User-ID" doc:"Acting user"`
	Body   service.CreateClimberRequest
}

// GetClimberInput contains parameters for getting a climber.
type GetClimberInput struct {
	Name string `path:"name" doc:"Climber name"`
}

// UpdateClimberInput wraps the update climber request for Huma.
type UpdateClimberInput struct {
	UserID string `header:"X-User-ID" doc:"Acting user"`
	Name   string `path:"name" doc:"Climber name"`
	Body   service.UpdateClimberRequest
}

// DeleteClimberInput contains parameters for deleting a climber.
type DeleteClimberInput struct {
	UserID string `header:"X-User-ID" doc:"Acting user"`
	Name   string `path:"name" doc:"Climber name"`
}

// RenameClimberInput wraps the rename request for Huma.
type RenameClimberInput struct {
	UserID string `header:"X-User-ID" doc:"Acting user"`
	Name   string `path:"name" doc:"Current climber name"`
	Body   service.RenameClimberRequest
}

// SetMembersRequest is the request body for replacing a set-valued field.
type SetMembersRequest struct {
	Values []string `json:"values" doc:"Replacement member list"`
}

// SetClimberMembersInput wraps a set replacement request for Huma.
type SetClimberMembersInput struct {
	UserID string `header:"X-User-ID" doc:"Acting user"`
	Name   string `path:"name" doc:"Climber name"`
	Body   SetMembersRequest
}

// SetClimberFaceInput wraps a raw face image upload for Huma.
type SetClimberFaceInput struct {
	UserID  string `header:"X-User-ID" doc:"Acting user"`
	Name    string `path:"name" doc:"Climber name"`
	RawBody []byte
}

// BlurHashResponse contains an image placeholder hash.
type BlurHashResponse struct {
	BlurHash string `json:"blurhash" doc:"BlurHash placeholder string"`
}

// BlurHashOutput wraps a placeholder hash response for Huma.
type BlurHashOutput struct {
	Body BlurHashResponse
}

// ValuesResponse contains a catalog of set member values.
type ValuesResponse struct {
	Values []string `json:"values" doc:"All values in use, sorted"`
}

// ValuesOutput wraps a values response for Huma.
type ValuesOutput struct {
	Body ValuesResponse
}

// === Handlers ===

func (s *Server) handleListClimbers(ctx context.Context, input *ListClimbersInput) (*ClimberListOutput, error) {
	var (
		climbers []*domain.Climber
		err      error
	)
	switch {
	case input.Skill != "":
		climbers, err = s.services.Climber.ListBySkill(ctx, input.Skill)
	case input.Tag != "":
		climbers, err = s.services.Climber.ListByTag(ctx, input.Tag)
	case input.Achievement != "":
		climbers, err = s.services.Climber.ListByAchievement(ctx, input.Achievement)
	default:
		climbers, err = s.services.Climber.ListClimbers(ctx)
	}
	if err != nil {
		return nil, err
	}
	return climberListOutput(climbers), nil
}

func (s *Server) handleCreateClimber(ctx context.Context, input *CreateClimberInput) (*ClimberOutput, error) {
	userID, err := s.requireUser(ctx, input.UserID)
	if err != nil {
		return nil, err
	}

	c, err := s.services.Climber.CreateClimber(ctx, userID, input.Body)
	if err != nil {
		return nil, err
	}
	return &ClimberOutput{Body: climberResponse(c)}, nil
}

func (s *Server) handleGetClimber(ctx context.Context, input *GetClimberInput) (*ClimberOutput, error) {
	c, err := s.services.Climber.GetClimber(ctx, input.Name)
	if err != nil {
		return nil, err
	}
	return &ClimberOutput{Body: climberResponse(c)}, nil
}

func (s *Server) handleUpdateClimber(ctx context.Context, input *UpdateClimberInput) (*ClimberOutput, error) {
	if _, err := s.requireUser(ctx, input.UserID); err != nil {
		return nil, err
	}

	c, err := s.services.Climber.UpdateClimber(ctx, input.Name, input.Body)
	if err != nil {
		return nil, err
	}
	return &ClimberOutput{Body: climberResponse(c)}, nil
}

func (s *Server) handleDeleteClimber(ctx context.Context, input *DeleteClimberInput) (*MessageOutput, error) {
	if _, err := s.requireUser(ctx, input.UserID); err != nil {
		return nil, err
	}

	if err := s.services.Climber.DeleteClimber(ctx, input.Name); err != nil {
		return nil, err
	}
	return &MessageOutput{Body: MessageResponse{Message: "Climber deleted"}}, nil
}

func (s *Server) handleRenameClimber(ctx context.Context, input *RenameClimberInput) (*ClimberOutput, error) {
	if _, err := s.requireUser(ctx, input.UserID); err != nil {
		return nil, err
	}

	c, err := s.services.Climber.RenameClimber(ctx, input.Name, input.Body)
	if err != nil {
		return nil, err
	}
	return &ClimberOutput{Body: climberResponse(c)}, nil
}

func (s *Server) handleSetClimberSkills(ctx context.Context, input *SetClimberMembersInput) (*ClimberOutput, error) {
	if _, err := s.requireUser(ctx, input.UserID); err != nil {
		return nil, err
	}

	c, err := s.services.Climber.SetSkills(ctx, input.Name, input.Body.Values)
	if err != nil {
		return nil, err
	}
	return &ClimberOutput{Body: climberResponse(c)}, nil
}

func (s *Server) handleSetClimberTags(ctx context.Context, input *SetClimberMembersInput) (*ClimberOutput, error) {
	if _, err := s.requireUser(ctx, input.UserID); err != nil {
		return nil, err
	}

	c, err := s.services.Climber.SetTags(ctx, input.Name, input.Body.Values)
	if err != nil {
		return nil, err
	}
	return &ClimberOutput{Body: climberResponse(c)}, nil
}

func (s *Server) handleSetClimberAchievements(ctx context.Context, input *SetClimberMembersInput) (*ClimberOutput, error) {
	if _, err := s.requireUser(ctx, input.UserID); err != nil {
		return nil, err
	}

	c, err := s.services.Climber.SetAchievements(ctx, input.Name, input.Body.Values)
	if err != nil {
		return nil, err
	}
	return &ClimberOutput{Body: climberResponse(c)}, nil
}

func (s *Server) handleSetClimberFace(ctx context.Context, input *SetClimberFaceInput) (*ClimberOutput, error) {
	if _, err := s.requireUser(ctx, input.UserID); err != nil {
		return nil, err
	}

	c, err := s.services.Climber.SetFaceImage(ctx, input.Name, input.RawBody)
	if err != nil {
		return nil, err
	}
	return &ClimberOutput{Body: climberResponse(c)}, nil
}

func (s *Server) handleClimberFaceBlurHash(ctx context.Context, input *GetClimberInput) (*BlurHashOutput, error) {
	hash, err := s.services.Climber.FaceImageBlurHash(ctx, input.Name)
	if err != nil {
		return nil, err
	}
	return &BlurHashOutput{Body: BlurHashResponse{BlurHash: hash}}, nil
}

func (s *Server) handleServeFace(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	if name == "" {
		http.Error(w, "name required", http.StatusBadRequest)
		return
	}

	// Remove .jpg extension if present.
	if len(name) > 4 && name[len(name)-4:] == ".jpg" {
		name = name[:len(name)-4]
	}

	data, err := s.services.Climber.FaceImage(r.Context(), name)
	if err != nil {
		http.Error(w, "face image not found", http.StatusNotFound)
		return
	}

	w.Header().Set("Content-Type", "image/jpeg")
	w.Header().Set("Cache-Control", "public, max-age=86400")
	w.Header().Set("Content-Length", fmt.Sprintf("%d", len(data)))
	w.Write(data)
}

func (s *Server) handleListNewcomers(ctx context.Context, _ *struct{}) (*ClimberListOutput, error) {
	climbers, err := s.services.Climber.Newcomers(ctx, time.Now())
	if err != nil {
		return nil, err
	}
	return climberListOutput(climbers), nil
}

func (s *Server) handleListSkills(ctx context.Context, _ *struct{}) (*ValuesOutput, error) {
	values, err := s.services.Climber.AllSkills(ctx)
	if err != nil {
		return nil, err
	}
	return &ValuesOutput{Body: ValuesResponse{Values: values}}, nil
}

func (s *Server) handleListTags(ctx context.Context, _ *struct{}) (*ValuesOutput, error) {
	values, err := s.services.Climber.AllTags(ctx)
	if err != nil {
		return nil, err
	}
	return &ValuesOutput{Body: ValuesResponse{Values: values}}, nil
}

func (s *Server) handleListAchievements(ctx context.Context, _ *struct{}) (*ValuesOutput, error) {
	values, err := s.services.Climber.AllAchievements(ctx)
	if err != nil {
		return nil, err
	}
	return &ValuesOutput{Body: ValuesResponse{Values: values}}, nil
}
