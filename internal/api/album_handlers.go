package api

import (
	"context"
	"net/http"
	"time"

	"github.com/danielgtaylor/huma/v2"

	"github.com/cragbook/cragbook-server/internal/domain"
	"github.com/cragbook/cragbook-server/internal/service"
)

// Album keys are full URLs, which cannot ride in a path segment.
// Album routes take the URL as a query parameter instead.

func (s *Server) registerAlbumRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "listAlbums",
		Method:      http.MethodGet,
		Path:        "/api/v1/albums",
		Summary:     "List albums",
		Description: "Returns all albums, optionally filtered by crew member or location",
		Tags:        []string{"Albums"},
	}, s.handleListAlbums)

	huma.Register(s.api, huma.Operation{
		OperationID: "createAlbum",
		Method:      http.MethodPost,
		Path:        "/api/v1/albums",
		Summary:     "Create album",
		Description: "Registers a shared album; the caller becomes an owner",
		Tags:        []string{"Albums"},
	}, s.handleCreateAlbum)

	huma.Register(s.api, huma.Operation{
		OperationID: "getAlbum",
		Method:      http.MethodGet,
		Path:        "/api/v1/album",
		Summary:     "Get album",
		Description: "Returns an album by URL",
		Tags:        []string{"Albums"},
	}, s.handleGetAlbum)

	huma.Register(s.api, huma.Operation{
		OperationID: "updateAlbum",
		Method:      http.MethodPatch,
		Path:        "/api/v1/album",
		Summary:     "Update album",
		Description: "Updates an album's scalar fields",
		Tags:        []string{"Albums"},
	}, s.handleUpdateAlbum)

	huma.Register(s.api, huma.Operation{
		OperationID: "deleteAlbum",
		Method:      http.MethodDelete,
		Path:        "/api/v1/album",
		Summary:     "Delete album",
		Description: "Deletes an album and settles crew climb counts",
		Tags:        []string{"Albums"},
	}, s.handleDeleteAlbum)

	huma.Register(s.api, huma.Operation{
		OperationID: "setAlbumCrew",
		Method:      http.MethodPut,
		Path:        "/api/v1/album/crew",
		Summary:     "Set album crew",
		Description: "Replaces the album's crew, adjusting climb counts",
		Tags:        []string{"Albums"},
	}, s.handleSetAlbumCrew)
}

// === DTOs ===

// AlbumResponse contains album data in API responses.
type AlbumResponse struct {
	URL         string    `json:"url" doc:"External album URL, the album key"`
	Title       string    `json:"title,omitempty" doc:"Album title"`
	Description string    `json:"description,omitempty" doc:"Album description"`
	Date        string    `json:"date,omitempty" doc:"Free-text album date"`
	CoverImage  string    `json:"cover_image,omitempty" doc:"Cover image reference"`
	Location    string    `json:"location,omitempty" doc:"Location name"`
	Crew        []string  `json:"crew" doc:"Climbers on this album"`
	CreatedAt   time.Time `json:"created_at" doc:"Creation time"`
	UpdatedAt   time.Time `json:"updated_at" doc:"Last update time"`
}

func albumResponse(a *domain.Album) AlbumResponse {
	return AlbumResponse{
		URL:         a.URL,
		Title:       a.Title,
		Description: a.Description,
		Date:        a.Date,
		CoverImage:  a.CoverImage,
		Location:    a.Location,
		Crew:        a.Crew,
		CreatedAt:   a.CreatedAt,
		UpdatedAt:   a.UpdatedAt,
	}
}

// AlbumOutput wraps a single album response for Huma.
type AlbumOutput struct {
	Body AlbumResponse
}

// AlbumListResponse contains a list of albums.
type AlbumListResponse struct {
	Albums []AlbumResponse `json:"albums" doc:"List of albums"`
}

// AlbumListOutput wraps the album list response for Huma.
type AlbumListOutput struct {
	Body AlbumListResponse
}

// ListAlbumsInput contains parameters for listing albums.
type ListAlbumsInput struct {
	Crew     string `query:"crew" doc:"Filter by crew member name"`
	Location string `query:"location" doc:"Filter by location name"`
}

// CreateAlbumInput wraps the create album request for Huma.
type CreateAlbumInput struct {
	UserID string `header:"X-User-ID" doc:"Acting user"`
	Body   service.CreateAlbumRequest
}

// GetAlbumInput contains parameters for getting an album.
type GetAlbumInput struct {
	URL string `query:"url" required:"true" doc:"Album URL"`
}

// UpdateAlbumInput wraps the update album request for Huma.
type UpdateAlbumInput struct {
	UserID string `header:"X-User-ID" doc:"Acting user"`
	URL    string `query:"url" required:"true" doc:"Album URL"`
	Body   service.UpdateAlbumRequest
}

// DeleteAlbumInput contains parameters for deleting an album.
type DeleteAlbumInput struct {
	UserID string `header:"X-User-ID" doc:"Acting user"`
	URL    string `query:"url" required:"true" doc:"Album URL"`
}

// SetAlbumCrewInput wraps the crew replacement request for Huma.
type SetAlbumCrewInput struct {
	UserID string `header:"X-User-ID" doc:"Acting user"`
	URL    string `query:"url" required:"true" doc:"Album URL"`
	Body   SetMembersRequest
}

// === Handlers ===

func (s *Server) handleListAlbums(ctx context.Context, input *ListAlbumsInput) (*AlbumListOutput, error) {
	var (
		albums []*domain.Album
		err    error
	)
	switch {
	case input.Crew != "":
		albums, err = s.services.Album.ListByCrewMember(ctx, input.Crew)
	case input.Location != "":
		albums, err = s.services.Album.ListByLocation(ctx, input.Location)
	default:
		albums, err = s.services.Album.ListAlbums(ctx)
	}
	if err != nil {
		return nil, err
	}

	resp := make([]AlbumResponse, len(albums))
	for i, a := range albums {
		resp[i] = albumResponse(a)
	}
	return &AlbumListOutput{Body: AlbumListResponse{Albums: resp}}, nil
}

func (s *Server) handleCreateAlbum(ctx context.Context, input *CreateAlbumInput) (*AlbumOutput, error) {
	userID, err := s.requireUser(ctx, input.UserID)
	if err != nil {
		return nil, err
	}

	a, err := s.services.Album.CreateAlbum(ctx, userID, input.Body)
	if err != nil {
		return nil, err
	}
	return &AlbumOutput{Body: albumResponse(a)}, nil
}

func (s *Server) handleGetAlbum(ctx context.Context, input *GetAlbumInput) (*AlbumOutput, error) {
	a, err := s.services.Album.GetAlbum(ctx, input.URL)
	if err != nil {
		return nil, err
	}
	return &AlbumOutput{Body: albumResponse(a)}, nil
}

func (s *Server) handleUpdateAlbum(ctx context.Context, input *UpdateAlbumInput) (*AlbumOutput, error) {
	if _, err := s.requireUser(ctx, input.UserID); err != nil {
		return nil, err
	}

	a, err := s.services.Album.UpdateAlbum(ctx, input.URL, input.Body)
	if err != nil {
		return nil, err
	}
	return &AlbumOutput{Body: albumResponse(a)}, nil
}

func (s *Server) handleDeleteAlbum(ctx context.Context, input *DeleteAlbumInput) (*MessageOutput, error) {
	if _, err := s.requireUser(ctx, input.UserID); err != nil {
		return nil, err
	}

	if err := s.services.Album.DeleteAlbum(ctx, input.URL); err != nil {
		return nil, err
	}
	return &MessageOutput{Body: MessageResponse{Message: "Album deleted"}}, nil
}

func (s *Server) handleSetAlbumCrew(ctx context.Context, input *SetAlbumCrewInput) (*AlbumOutput, error) {
	if _, err := s.requireUser(ctx, input.UserID); err != nil {
		return nil, err
	}

	a, err := s.services.Album.SetCrew(ctx, input.URL, input.Body.Values)
	if err != nil {
		return nil, err
	}
	return &AlbumOutput{Body: albumResponse(a)}, nil
}
