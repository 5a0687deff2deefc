package providers

import (
	"github.com/samber/do/v2"

	"github.com/cragbook/cragbook-server/internal/logger"
	"github.com/cragbook/cragbook-server/internal/service"
)

// ProvideClimberService provides the climber service.
func ProvideClimberService(i do.Injector) (*service.ClimberService, error) {
	storeHandle := do.MustInvoke[*StoreHandle](i)
	storages := do.MustInvoke[*ImageStorages](i)
	log := do.MustInvoke[*logger.Logger](i)

	return service.NewClimberService(storeHandle.Store, storages.Faces, log.Logger), nil
}

// ProvideAlbumService provides the album service.
func ProvideAlbumService(i do.Injector) (*service.AlbumService, error) {
	storeHandle := do.MustInvoke[*StoreHandle](i)
	log := do.MustInvoke[*logger.Logger](i)

	return service.NewAlbumService(storeHandle.Store, log.Logger), nil
}

// ProvideLocationService provides the location service.
func ProvideLocationService(i do.Injector) (*service.LocationService, error) {
	storeHandle := do.MustInvoke[*StoreHandle](i)
	log := do.MustInvoke[*logger.Logger](i)

	return service.NewLocationService(storeHandle.Store, log.Logger), nil
}

// ProvideMemeService provides the meme service.
func ProvideMemeService(i do.Injector) (*service.MemeService, error) {
	storeHandle := do.MustInvoke[*StoreHandle](i)
	storages := do.MustInvoke[*ImageStorages](i)
	log := do.MustInvoke[*logger.Logger](i)

	return service.NewMemeService(storeHandle.Store, storages.Memes, log.Logger), nil
}

// ProvideUserService provides the user service.
func ProvideUserService(i do.Injector) (*service.UserService, error) {
	storeHandle := do.MustInvoke[*StoreHandle](i)
	log := do.MustInvoke[*logger.Logger](i)

	return service.NewUserService(storeHandle.Store, log.Logger), nil
}

// ProvideOwnershipService provides the ownership service.
func ProvideOwnershipService(i do.Injector) (*service.OwnershipService, error) {
	storeHandle := do.MustInvoke[*StoreHandle](i)
	log := do.MustInvoke[*logger.Logger](i)

	return service.NewOwnershipService(storeHandle.Store, log.Logger), nil
}
