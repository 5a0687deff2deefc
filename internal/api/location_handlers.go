package api

import (
	"context"
	"net/http"
	"time"

	"github.com/danielgtaylor/huma/v2"

	"github.com/cragbook/cragbook-server/internal/domain"
	"github.com/cragbook/cragbook-server/internal/service"
)

func (s *Server) registerLocationRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "listLocations",
		Method:      http.MethodGet,
		Path:        "/api/v1/locations",
		Summary:     "List locations",
		Description: "Returns all locations, optionally filtered by attribute",
		Tags:        []string{"Locations"},
	}, s.handleListLocations)

	huma.Register(s.api, huma.Operation{
		OperationID: "createLocation",
		Method:      http.MethodPost,
		Path:        "/api/v1/locations",
		Summary:     "Create location",
		Description: "Adds a climbing area; the caller becomes an owner",
		Tags:        []string{"Locations"},
	}, s.handleCreateLocation)

	huma.Register(s.api, huma.Operation{
		OperationID: "getLocation",
		Method:      http.MethodGet,
		Path:        "/api/v1/locations/{name}",
		Summary:     "Get location",
		Description: "Returns a location by name",
		Tags:        []string{"Locations"},
	}, s.handleGetLocation)

	huma.Register(s.api, huma.Operation{
		OperationID: "updateLocation",
		Method:      http.MethodPatch,
		Path:        "/api/v1/locations/{name}",
		Summary:     "Update location",
		Description: "Updates a location's scalar fields",
		Tags:        []string{"Locations"},
	}, s.handleUpdateLocation)

	huma.Register(s.api, huma.Operation{
		OperationID: "deleteLocation",
		Method:      http.MethodDelete,
		Path:        "/api/v1/locations/{name}",
		Summary:     "Delete location",
		Description: "Deletes a location, clearing album references to it",
		Tags:        []string{"Locations"},
	}, s.handleDeleteLocation)

	huma.Register(s.api, huma.Operation{
		OperationID: "renameLocation",
		Method:      http.MethodPost,
		Path:        "/api/v1/locations/{name}/rename",
		Summary:     "Rename location",
		Description: "Changes a location's name, rewriting album references",
		Tags:        []string{"Locations"},
	}, s.handleRenameLocation)

	huma.Register(s.api, huma.Operation{
		OperationID: "setLocationAttributes",
		Method:      http.MethodPut,
		Path:        "/api/v1/locations/{name}/attributes",
		Summary:     "Set location attributes",
		Description: "Replaces the location's attribute set",
		Tags:        []string{"Locations"},
	}, s.handleSetLocationAttributes)

	huma.Register(s.api, huma.Operation{
		OperationID: "listAttributes",
		Method:      http.MethodGet,
		Path:        "/api/v1/attributes",
		Summary:     "List attributes",
		Description: "Returns every location attribute in use",
		Tags:        []string{"Catalog"},
	}, s.handleListAttributes)
}

// === DTOs ===

// LocationResponse contains location data in API responses.
type LocationResponse struct {
	Name        string              `json:"name" doc:"Location name"`
	Description string              `json:"description,omitempty" doc:"Location description"`
	Coordinates *domain.Coordinates `json:"coordinates,omitempty" doc:"Lat/lng pair"`
	Approach    string              `json:"approach,omitempty" doc:"Approach notes"`
	Markers     []domain.MapMarker  `json:"markers,omitempty" doc:"Custom map markers"`
	Attributes  []string            `json:"attributes" doc:"Attribute set"`
	CreatedAt   time.Time           `json:"created_at" doc:"Creation time"`
	UpdatedAt   time.Time           `json:"updated_at" doc:"Last update time"`
}

func locationResponse(l *domain.Location) LocationResponse {
	return LocationResponse{
		Name:        l.Name,
		Description: l.Description,
		Coordinates: l.Coordinates,
		Approach:    l.Approach,
		Markers:     l.Markers,
		Attributes:  l.Attributes,
		CreatedAt:   l.CreatedAt,
		UpdatedAt:   l.UpdatedAt,
	}
}

// LocationOutput wraps a single location response for Huma.
type LocationOutput struct {
	Body LocationResponse
}

// LocationListResponse contains a list of locations.
type LocationListResponse struct {
	Locations []LocationResponse `json:"locations" doc:"List of locations"`
}

// LocationListOutput wraps the location list response for Huma.
type LocationListOutput struct {
	Body LocationListResponse
}

// ListLocationsInput contains parameters for listing locations.
type ListLocationsInput struct {
	Attribute string `query:"attribute" doc:"Filter by attribute"`
}

// CreateLocationInput wraps the create location request for Huma.
type CreateLocationInput struct {
	UserID string `header:"X-User-ID" doc:"Acting user"`
	Body   service.CreateLocationRequest
}

// GetLocationInput contains parameters for getting a location.
type GetLocationInput struct {
	Name string `path:"name" doc:"Location name"`
}

// UpdateLocationInput wraps the update location request for Huma.
type UpdateLocationInput struct {
	UserID string `header:"X-User-ID" doc:"Acting user"`
	Name   string `path:"name" doc:"Location name"`
	Body   service.UpdateLocationRequest
}

// DeleteLocationInput contains parameters for deleting a location.
type DeleteLocationInput struct {
	UserID string `header:"X-User-ID" doc:"Acting user"`
	Name   string `path:"name" doc:"Location name"`
}

// RenameLocationInput wraps the rename request for Huma.
type RenameLocationInput struct {
	UserID string `header:"X-User-ID" doc:"Acting user"`
	Name   string `path:"name" doc:"Current location name"`
	Body   service.RenameLocationRequest
}

// SetLocationAttributesInput wraps the attribute replacement request.
type SetLocationAttributesInput struct {
	UserID string `header:"X-User-ID" doc:"Acting user"`
	Name   string `path:"name" doc:"Location name"`
	Body   SetMembersRequest
}

// === Handlers ===

func (s *Server) handleListLocations(ctx context.Context, input *ListLocationsInput) (*LocationListOutput, error) {
	var (
		locations []*domain.Location
		err       error
	)
	if input.Attribute != "" {
		locations, err = s.services.Location.ListByAttribute(ctx, input.Attribute)
	} else {
		locations, err = s.services.Location.ListLocations(ctx)
	}
	if err != nil {
		return nil, err
	}

	resp := make([]LocationResponse, len(locations))
	for i, l := range locations {
		resp[i] = locationResponse(l)
	}
	return &LocationListOutput{Body: LocationListResponse{Locations: resp}}, nil
}

func (s *Server) handleCreateLocation(ctx context.Context, input *CreateLocationInput) (*LocationOutput, error) {
	userID, err := s.requireUser(ctx, input.UserID)
	if err != nil {
		return nil, err
	}

	l, err := s.services.Location.CreateLocation(ctx, userID, input.Body)
	if err != nil {
		return nil, err
	}
	return &LocationOutput{Body: locationResponse(l)}, nil
}

func (s *Server) handleGetLocation(ctx context.Context, input *GetLocationInput) (*LocationOutput, error) {
	l, err := s.services.Location.GetLocation(ctx, input.Name)
	if err != nil {
		return nil, err
	}
	return &LocationOutput{Body: locationResponse(l)}, nil
}

func (s *Server) handleUpdateLocation(ctx context.Context, input *UpdateLocationInput) (*LocationOutput, error) {
	if _, err := s.requireUser(ctx, input.UserID); err != nil {
		return nil, err
	}

	l, err := s.services.Location.UpdateLocation(ctx, input.Name, input.Body)
	if err != nil {
		return nil, err
	}
	return &LocationOutput{Body: locationResponse(l)}, nil
}

func (s *Server) handleDeleteLocation(ctx context.Context, input *DeleteLocationInput) (*MessageOutput, error) {
	if _, err := s.requireUser(ctx, input.UserID); err != nil {
		return nil, err
	}

	if err := s.services.Location.DeleteLocation(ctx, input.Name); err != nil {
		return nil, err
	}
	return &MessageOutput{Body: MessageResponse{Message: "Location deleted"}}, nil
}

func (s *Server) handleRenameLocation(ctx context.Context, input *RenameLocationInput) (*LocationOutput, error) {
	if _, err := s.requireUser(ctx, input.UserID); err != nil {
		return nil, err
	}

	l, err := s.services.Location.RenameLocation(ctx, input.Name, input.Body)
	if err != nil {
		return nil, err
	}
	return &LocationOutput{Body: locationResponse(l)}, nil
}

func (s *Server) handleSetLocationAttributes(ctx context.Context, input *SetLocationAttributesInput) (*LocationOutput, error) {
	if _, err := s.requireUser(ctx, input.UserID); err != nil {
		return nil, err
	}

	l, err := s.services.Location.SetAttributes(ctx, input.Name, input.Body.Values)
	if err != nil {
		return nil, err
	}
	return &LocationOutput{Body: locationResponse(l)}, nil
}

func (s *Server) handleListAttributes(ctx context.Context, _ *struct{}) (*ValuesOutput, error) {
	values, err := s.services.Location.AllAttributes(ctx)
	if err != nil {
		return nil, err
	}
	return &ValuesOutput{Body: ValuesResponse{Values: values}}, nil
}
