package api

import (
	"github.com/cragbook/cragbook-server/internal/service"
)

// Services groups all business logic services used by the API server.
// This reduces the parameter count for NewServer and improves testability.
type Services struct {
	Climber   *service.ClimberService
	Album     *service.AlbumService
	Location  *service.LocationService
	Meme      *service.MemeService
	User      *service.UserService
	Ownership *service.OwnershipService
}
