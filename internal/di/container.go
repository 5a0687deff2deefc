// Package di provides dependency injection configuration for the Cragbook server.
package di

import (
	"github.com/samber/do/v2"

	"github.com/cragbook/cragbook-server/internal/config"
	"github.com/cragbook/cragbook-server/internal/di/providers"
	"github.com/cragbook/cragbook-server/internal/logger"
	"github.com/cragbook/cragbook-server/internal/service"
)

// NewContainer creates and configures the DI container with all providers.
func NewContainer() *do.RootScope {
	injector := do.New()

	// Core infrastructure
	do.Provide(injector, providers.ProvideConfig)
	do.Provide(injector, providers.ProvideLogger)

	// Database layer
	do.Provide(injector, providers.ProvideStore)

	// Storage layer
	do.Provide(injector, providers.ProvideImageStorages)

	// Business services
	do.Provide(injector, providers.ProvideClimberService)
	do.Provide(injector, providers.ProvideAlbumService)
	do.Provide(injector, providers.ProvideLocationService)
	do.Provide(injector, providers.ProvideMemeService)
	do.Provide(injector, providers.ProvideUserService)
	do.Provide(injector, providers.ProvideOwnershipService)

	// Server
	do.Provide(injector, providers.ProvideHTTPServer)

	return injector
}

// Bootstrap initializes all services and returns handles for lifecycle management.
// This triggers lazy initialization of all core services.
func Bootstrap(injector *do.RootScope) error {
	// Invoke core services to trigger initialization
	_ = do.MustInvoke[*config.Config](injector)
	_ = do.MustInvoke[*logger.Logger](injector)
	_ = do.MustInvoke[*providers.StoreHandle](injector)
	_ = do.MustInvoke[*providers.ImageStorages](injector)

	// Business services
	_ = do.MustInvoke[*service.ClimberService](injector)
	_ = do.MustInvoke[*service.AlbumService](injector)
	_ = do.MustInvoke[*service.LocationService](injector)
	_ = do.MustInvoke[*service.MemeService](injector)
	_ = do.MustInvoke[*service.UserService](injector)
	_ = do.MustInvoke[*service.OwnershipService](injector)

	// Server
	_ = do.MustInvoke[*providers.HTTPServerHandle](injector)

	return nil
}
