package api

import (
	"context"
	"net/http"
	"time"

	"github.com/danielgtaylor/huma/v2"
)

func (s *Server) registerHealthRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "healthCheck",
		Method:      http.MethodGet,
		Path:        "/health",
		Summary:     "Health check",
		Description: "Returns store connectivity and approximate record counts",
		Tags:        []string{"Health"},
	}, s.handleHealthCheck)
}

// HealthResponse contains health check data in API responses.
type HealthResponse struct {
	Status  string         `json:"status" doc:"Overall status: healthy or unhealthy"`
	Latency string         `json:"latency,omitempty" doc:"Store probe latency"`
	Counts  map[string]int `json:"counts,omitempty" doc:"Approximate record counts per kind"`
}

// HealthOutput wraps the health response for Huma.
type HealthOutput struct {
	Body HealthResponse
}

func (s *Server) handleHealthCheck(ctx context.Context, _ *struct{}) (*HealthOutput, error) {
	if s.store == nil {
		return &HealthOutput{Body: HealthResponse{Status: "unhealthy"}}, nil
	}

	start := time.Now()
	status, err := s.store.Health(ctx)
	latency := time.Since(start)

	if err != nil || !status.OK {
		s.logger.Error("health probe failed", "error", err)
		return &HealthOutput{Body: HealthResponse{
			Status:  "unhealthy",
			Latency: latency.String(),
		}}, nil
	}

	return &HealthOutput{Body: HealthResponse{
		Status:  "healthy",
		Latency: latency.String(),
		Counts: map[string]int{
			"climbers":  status.Climbers,
			"albums":    status.Albums,
			"locations": status.Locations,
			"memes":     status.Memes,
			"users":     status.Users,
		},
	}}, nil
}
