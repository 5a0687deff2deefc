package api

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/danielgtaylor/huma/v2"
	"github.com/go-chi/chi/v5"

	"github.com/cragbook/cragbook-server/internal/domain"
)

func (s *Server) registerMemeRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "listMemes",
		Method:      http.MethodGet,
		Path:        "/api/v1/memes",
		Summary:     "List memes",
		Description: "Returns all memes",
		Tags:        []string{"Memes"},
	}, s.handleListMemes)

	huma.Register(s.api, huma.Operation{
		OperationID: "uploadMeme",
		Method:      http.MethodPost,
		Path:        "/api/v1/memes",
		Summary:     "Upload meme",
		Description: "Stores a meme image and creates its record, owned by the uploader",
		Tags:        []string{"Memes"},
	}, s.handleUploadMeme)

	huma.Register(s.api, huma.Operation{
		OperationID: "getMeme",
		Method:      http.MethodGet,
		Path:        "/api/v1/memes/{id}",
		Summary:     "Get meme",
		Description: "Returns a meme by ID",
		Tags:        []string{"Memes"},
	}, s.handleGetMeme)

	huma.Register(s.api, huma.Operation{
		OperationID: "getMemeBlurHash",
		Method:      http.MethodGet,
		Path:        "/api/v1/memes/{id}/blurhash",
		Summary:     "Get meme placeholder hash",
		Description: "Returns the BlurHash placeholder for the meme's stored image",
		Tags:        []string{"Memes"},
	}, s.handleMemeBlurHash)

	huma.Register(s.api, huma.Operation{
		OperationID: "deleteMeme",
		Method:      http.MethodDelete,
		Path:        "/api/v1/memes/{id}",
		Summary:     "Delete meme",
		Description: "Deletes a meme and its stored image",
		Tags:        []string{"Memes"},
	}, s.handleDeleteMeme)

	// Direct chi route for image streaming.
	s.router.Get("/memes/{id}", s.handleServeMeme)
}

// === DTOs ===

// MemeResponse contains meme data in API responses.
type MemeResponse struct {
	ID        string    `json:"id" doc:"Meme ID"`
	Creator   string    `json:"creator" doc:"Uploader user ID"`
	Image     string    `json:"image" doc:"Stored image reference"`
	CreatedAt time.Time `json:"created_at" doc:"Upload time"`
	UpdatedAt time.Time `json:"updated_at" doc:"Last update time"`
}

func memeResponse(m *domain.Meme) MemeResponse {
	return MemeResponse{
		ID:        m.ID,
		Creator:   m.Creator,
		Image:     m.Image,
		CreatedAt: m.CreatedAt,
		UpdatedAt: m.UpdatedAt,
	}
}

// MemeOutput wraps a single meme response for Huma.
type MemeOutput struct {
	Body MemeResponse
}

// MemeListResponse contains a list of memes.
type MemeListResponse struct {
	Memes []MemeResponse `json:"memes" doc:"List of memes"`
}

// MemeListOutput wraps the meme list response for Huma.
type MemeListOutput struct {
	Body MemeListResponse
}

// UploadMemeInput wraps a raw image upload for Huma.
type UploadMemeInput struct {
	UserID  string `header:"X-User-ID" doc:"Acting user"`
	RawBody []byte
}

// GetMemeInput contains parameters for getting a meme.
type GetMemeInput struct {
	ID string `path:"id" doc:"Meme ID"`
}

// DeleteMemeInput contains parameters for deleting a meme.
type DeleteMemeInput struct {
	UserID string `header:"X-User-ID" doc:"Acting user"`
	ID     string `path:"id" doc:"Meme ID"`
}

// === Handlers ===

func (s *Server) handleListMemes(ctx context.Context, _ *struct{}) (*MemeListOutput, error) {
	memes, err := s.services.Meme.ListMemes(ctx)
	if err != nil {
		return nil, err
	}

	resp := make([]MemeResponse, len(memes))
	for i, m := range memes {
		resp[i] = memeResponse(m)
	}
	return &MemeListOutput{Body: MemeListResponse{Memes: resp}}, nil
}

func (s *Server) handleUploadMeme(ctx context.Context, input *UploadMemeInput) (*MemeOutput, error) {
	userID, err := s.requireUser(ctx, input.UserID)
	if err != nil {
		return nil, err
	}

	m, err := s.services.Meme.UploadMeme(ctx, userID, input.RawBody)
	if err != nil {
		return nil, err
	}
	return &MemeOutput{Body: memeResponse(m)}, nil
}

func (s *Server) handleGetMeme(ctx context.Context, input *GetMemeInput) (*MemeOutput, error) {
	m, err := s.services.Meme.GetMeme(ctx, input.ID)
	if err != nil {
		return nil, err
	}
	return &MemeOutput{Body: memeResponse(m)}, nil
}

func (s *Server) handleMemeBlurHash(ctx context.Context, input *GetMemeInput) (*BlurHashOutput, error) {
	hash, err := s.services.Meme.MemeBlurHash(ctx, input.ID)
	if err != nil {
		return nil, err
	}
	return &BlurHashOutput{Body: BlurHashResponse{BlurHash: hash}}, nil
}

func (s *Server) handleDeleteMeme(ctx context.Context, input *DeleteMemeInput) (*MessageOutput, error) {
	userID, err := s.requireUser(ctx, input.UserID)
	if err != nil {
		return nil, err
	}

	// Only an owner or an admin may delete a meme.
	if err := s.requireOwnerOrAdmin(ctx, domain.KindMeme, input.ID, userID); err != nil {
		return nil, err
	}

	if err := s.services.Meme.DeleteMeme(ctx, input.ID); err != nil {
		return nil, err
	}
	return &MessageOutput{Body: MessageResponse{Message: "Meme deleted"}}, nil
}

func (s *Server) handleServeMeme(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		http.Error(w, "id required", http.StatusBadRequest)
		return
	}

	// Remove .jpg extension if present.
	if len(id) > 4 && id[len(id)-4:] == ".jpg" {
		id = id[:len(id)-4]
	}

	data, err := s.services.Meme.MemeImage(r.Context(), id)
	if err != nil {
		http.Error(w, "meme not found", http.StatusNotFound)
		return
	}

	w.Header().Set("Content-Type", "image/jpeg")
	w.Header().Set("Cache-Control", "public, max-age=86400")
	w.Header().Set("Content-Length", fmt.Sprintf("%d", len(data)))
	w.Write(data)
}
