package service

import (
	"context"
	"log/slog"

	"github.com/cragbook/cragbook-server/internal/domain"
	"github.com/cragbook/cragbook-server/internal/store"
	"github.com/cragbook/cragbook-server/internal/validation"
)

// LocationService orchestrates location operations.
type LocationService struct {
	store     *store.Store
	logger    *slog.Logger
	validator *validation.Validator
}

// NewLocationService creates a new location service.
func NewLocationService(store *store.Store, logger *slog.Logger) *LocationService {
	return &LocationService{
		store:     store,
		logger:    logger,
		validator: validation.New(),
	}
}

// CreateLocationRequest contains fields for adding a location.
type CreateLocationRequest struct {
	Name        string              `json:"name" validate:"required,min=1,max=200,store_key"`
	Description string              `json:"description,omitempty"`
	Coordinates *domain.Coordinates `json:"coordinates,omitempty"`
	Approach    string              `json:"approach,omitempty"`
	Markers     []domain.MapMarker  `json:"markers,omitempty"`
	Attributes  []string            `json:"attributes,omitempty"`
}

// CreateLocation adds a location and records the creator as owner.
func (s *LocationService) CreateLocation(ctx context.Context, userID string, req CreateLocationRequest) (*domain.Location, error) {
	req.Name = validation.NormalizeName(req.Name)
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}
	if err := validation.CheckMembers("attributes", req.Attributes); err != nil {
		return nil, err
	}

	l := &domain.Location{
		Name:        req.Name,
		Description: req.Description,
		Coordinates: req.Coordinates,
		Approach:    req.Approach,
		Markers:     req.Markers,
		Attributes:  validation.NormalizeValues(req.Attributes),
	}
	l.InitTimestamps()

	if err := s.store.CreateLocation(ctx, l); err != nil {
		return nil, err
	}

	if userID != "" {
		if err := s.store.AddOwner(ctx, domain.KindLocation, l.Name, userID); err != nil {
			s.logger.Warn("could not record location owner", "name", l.Name, "user_id", userID, "error", err)
		}
		if err := s.store.RecordUserCreated(ctx, userID, domain.KindLocation); err != nil {
			s.logger.Warn("could not bump creation counter", "user_id", userID, "error", err)
		}
	}

	s.logger.Info("location created", "name", l.Name, "user_id", userID)
	return s.store.GetLocation(ctx, l.Name)
}

// GetLocation returns a location with resolved attributes.
func (s *LocationService) GetLocation(ctx context.Context, name string) (*domain.Location, error) {
	return s.store.GetLocation(ctx, validation.NormalizeName(name))
}

// UpdateLocationRequest contains updatable scalar fields.
type UpdateLocationRequest struct {
	Description *string             `json:"description,omitempty"`
	Coordinates *domain.Coordinates `json:"coordinates,omitempty"`
	Approach    *string             `json:"approach,omitempty"`
	Markers     *[]domain.MapMarker `json:"markers,omitempty"`
}

// UpdateLocation updates a location's scalar fields.
func (s *LocationService) UpdateLocation(ctx context.Context, name string, req UpdateLocationRequest) (*domain.Location, error) {
	name = validation.NormalizeName(name)

	patch := store.LocationPatch{
		Description: req.Description,
		Coordinates: req.Coordinates,
		Approach:    req.Approach,
		Markers:     req.Markers,
	}
	if err := s.store.UpdateLocation(ctx, name, patch); err != nil {
		return nil, err
	}
	return s.store.GetLocation(ctx, name)
}

// SetAttributes replaces a location's attribute set.
func (s *LocationService) SetAttributes(ctx context.Context, name string, attributes []string) (*domain.Location, error) {
	name = validation.NormalizeName(name)
	if err := validation.CheckMembers("attributes", attributes); err != nil {
		return nil, err
	}
	if err := s.store.SetLocationAttributes(ctx, name, validation.NormalizeValues(attributes)); err != nil {
		return nil, err
	}
	return s.store.GetLocation(ctx, name)
}

// RenameLocationRequest contains fields for renaming a location.
type RenameLocationRequest struct {
	NewName string `json:"new_name" validate:"required,min=1,max=200,store_key"`
}

// RenameLocation changes a location's key, rewriting every album that
// references it and carrying attributes and ownership along.
func (s *LocationService) RenameLocation(ctx context.Context, name string, req RenameLocationRequest) (*domain.Location, error) {
	name = validation.NormalizeName(name)
	req.NewName = validation.NormalizeName(req.NewName)
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}

	if err := s.store.RenameLocation(ctx, name, req.NewName); err != nil {
		return nil, err
	}

	s.logger.Info("location renamed", "from", name, "to", req.NewName)
	return s.store.GetLocation(ctx, req.NewName)
}

// DeleteLocation removes a location. Albums that referenced it keep
// existing with their location cleared.
func (s *LocationService) DeleteLocation(ctx context.Context, name string) error {
	name = validation.NormalizeName(name)
	if err := s.store.DeleteLocation(ctx, name); err != nil {
		return err
	}
	s.logger.Info("location deleted", "name", name)
	return nil
}

// ListLocations returns all locations sorted by name.
func (s *LocationService) ListLocations(ctx context.Context) ([]*domain.Location, error) {
	return s.store.ListLocations(ctx)
}

// ListByAttribute returns locations carrying an attribute.
func (s *LocationService) ListByAttribute(ctx context.Context, attribute string) ([]*domain.Location, error) {
	return s.store.ListLocationsByAttribute(ctx, validation.NormalizeValue(attribute))
}

// AllAttributes returns every attribute value ever used, sorted.
func (s *LocationService) AllAttributes(ctx context.Context) ([]string, error) {
	return s.store.AllAttributes(ctx)
}
