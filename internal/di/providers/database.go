package providers

import (
	"github.com/samber/do/v2"

	"github.com/cragbook/cragbook-server/internal/config"
	"github.com/cragbook/cragbook-server/internal/logger"
	"github.com/cragbook/cragbook-server/internal/store"
)

// StoreHandle wraps the store with shutdown capability.
type StoreHandle struct {
	*store.Store
}

// Shutdown implements do.Shutdownable.
func (h *StoreHandle) Shutdown() error {
	return h.Close()
}

// ProvideStore provides the record store.
func ProvideStore(i do.Injector) (*StoreHandle, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)

	dbPath := cfg.DBPath()
	db, err := store.New(dbPath, log.Logger)
	if err != nil {
		return nil, err
	}

	log.Info("Record store initialized", "path", dbPath)

	return &StoreHandle{Store: db}, nil
}
