package service

import (
	"context"
	"log/slog"

	"github.com/cragbook/cragbook-server/internal/domain"
	"github.com/cragbook/cragbook-server/internal/store"
	"github.com/cragbook/cragbook-server/internal/validation"
)

// AlbumService orchestrates album operations.
type AlbumService struct {
	store     *store.Store
	logger    *slog.Logger
	validator *validation.Validator
}

// NewAlbumService creates a new album service.
func NewAlbumService(store *store.Store, logger *slog.Logger) *AlbumService {
	return &AlbumService{
		store:     store,
		logger:    logger,
		validator: validation.New(),
	}
}

// CreateAlbumRequest contains fields for registering an album.
type CreateAlbumRequest struct {
	URL         string   `json:"url" validate:"required,album_url"`
	Title       string   `json:"title,omitempty" validate:"max=300"`
	Description string   `json:"description,omitempty"`
	Date        string   `json:"date,omitempty" validate:"max=100"`
	CoverImage  string   `json:"cover_image,omitempty"`
	Location    string   `json:"location,omitempty"`
	Crew        []string `json:"crew,omitempty"`
}

// CreateAlbum registers an album, seeds its crew, and records the
// creator as owner. Every crew member must already exist as a climber;
// the referenced location, if any, must exist too.
func (s *AlbumService) CreateAlbum(ctx context.Context, userID string, req CreateAlbumRequest) (*domain.Album, error) {
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}

	crew := make([]string, 0, len(req.Crew))
	for _, name := range req.Crew {
		if n := validation.NormalizeName(name); n != "" {
			crew = append(crew, n)
		}
	}

	a := &domain.Album{
		URL:         req.URL,
		Title:       req.Title,
		Description: req.Description,
		Date:        req.Date,
		CoverImage:  req.CoverImage,
		Location:    validation.NormalizeName(req.Location),
		Crew:        crew,
	}
	a.InitTimestamps()

	if err := s.store.CreateAlbum(ctx, a); err != nil {
		return nil, err
	}

	if userID != "" {
		if err := s.store.AddOwner(ctx, domain.KindAlbum, a.URL, userID); err != nil {
			s.logger.Warn("could not record album owner", "url", a.URL, "user_id", userID, "error", err)
		}
		if err := s.store.RecordUserCreated(ctx, userID, domain.KindAlbum); err != nil {
			s.logger.Warn("could not bump creation counter", "user_id", userID, "error", err)
		}
	}

	s.logger.Info("album created", "url", a.URL, "crew", len(crew), "user_id", userID)
	return s.store.GetAlbum(ctx, a.URL)
}

// GetAlbum returns an album with its resolved crew.
func (s *AlbumService) GetAlbum(ctx context.Context, url string) (*domain.Album, error) {
	return s.store.GetAlbum(ctx, url)
}

// UpdateAlbumRequest contains updatable scalar fields.
type UpdateAlbumRequest struct {
	Title       *string `json:"title,omitempty"`
	Description *string `json:"description,omitempty"`
	Date        *string `json:"date,omitempty"`
	CoverImage  *string `json:"cover_image,omitempty"`
	Location    *string `json:"location,omitempty"`
}

// UpdateAlbum updates an album's scalar fields. Changing the location
// re-points the location index entry.
func (s *AlbumService) UpdateAlbum(ctx context.Context, url string, req UpdateAlbumRequest) (*domain.Album, error) {
	if req.Location != nil {
		normalized := validation.NormalizeName(*req.Location)
		req.Location = &normalized
	}

	patch := store.AlbumPatch{
		Title:       req.Title,
		Description: req.Description,
		Date:        req.Date,
		CoverImage:  req.CoverImage,
		Location:    req.Location,
	}
	if err := s.store.UpdateAlbum(ctx, url, patch); err != nil {
		return nil, err
	}
	return s.store.GetAlbum(ctx, url)
}

// SetCrew replaces an album's crew, adjusting each affected climber's
// climb count in the same transaction.
func (s *AlbumService) SetCrew(ctx context.Context, url string, crew []string) (*domain.Album, error) {
	normalized := make([]string, 0, len(crew))
	seen := make(map[string]bool, len(crew))
	for _, name := range crew {
		n := validation.NormalizeName(name)
		if n == "" || seen[n] {
			continue
		}
		seen[n] = true
		normalized = append(normalized, n)
	}

	if err := s.store.SetAlbumCrew(ctx, url, normalized); err != nil {
		return nil, err
	}
	return s.store.GetAlbum(ctx, url)
}

// DeleteAlbum removes an album, decrementing every crew member's climb
// count and clearing ownership.
func (s *AlbumService) DeleteAlbum(ctx context.Context, url string) error {
	if err := s.store.DeleteAlbum(ctx, url); err != nil {
		return err
	}
	s.logger.Info("album deleted", "url", url)
	return nil
}

// ListAlbums returns all albums sorted by URL.
func (s *AlbumService) ListAlbums(ctx context.Context) ([]*domain.Album, error) {
	return s.store.ListAlbums(ctx)
}

// ListByCrewMember returns the albums a climber appears on.
func (s *AlbumService) ListByCrewMember(ctx context.Context, name string) ([]*domain.Album, error) {
	return s.store.ListAlbumsByCrewMember(ctx, validation.NormalizeName(name))
}

// ListByLocation returns the albums shot at a location.
func (s *AlbumService) ListByLocation(ctx context.Context, location string) ([]*domain.Album, error) {
	return s.store.ListAlbumsByLocation(ctx, validation.NormalizeName(location))
}
