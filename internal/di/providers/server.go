package providers

import (
	"context"
	"net/http"

	"github.com/samber/do/v2"

	"github.com/cragbook/cragbook-server/internal/api"
	"github.com/cragbook/cragbook-server/internal/config"
	"github.com/cragbook/cragbook-server/internal/logger"
	"github.com/cragbook/cragbook-server/internal/service"
)

// HTTPServerHandle wraps http.Server with Shutdownable.
type HTTPServerHandle struct {
	*http.Server
}

// Shutdown implements do.Shutdownable.
func (h *HTTPServerHandle) Shutdown() error {
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return h.Server.Shutdown(ctx)
}

// ProvideHTTPServer provides the HTTP server.
func ProvideHTTPServer(i do.Injector) (*HTTPServerHandle, error) {
	cfg := do.MustInvoke[*config.Config](i)
	storeHandle := do.MustInvoke[*StoreHandle](i)
	log := do.MustInvoke[*logger.Logger](i)

	climberService := do.MustInvoke[*service.ClimberService](i)
	albumService := do.MustInvoke[*service.AlbumService](i)
	locationService := do.MustInvoke[*service.LocationService](i)
	memeService := do.MustInvoke[*service.MemeService](i)
	userService := do.MustInvoke[*service.UserService](i)
	ownershipService := do.MustInvoke[*service.OwnershipService](i)

	services := &api.Services{
		Climber:   climberService,
		Album:     albumService,
		Location:  locationService,
		Meme:      memeService,
		User:      userService,
		Ownership: ownershipService,
	}

	handler := api.NewServer(storeHandle.Store, services, log.Logger)

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      handler,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	// Start in background
	go func() {
		log.Info("HTTP server starting", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("HTTP server error", "error", err)
		}
	}()

	log.Info("Server running", "addr", srv.Addr)

	return &HTTPServerHandle{Server: srv}, nil
}
