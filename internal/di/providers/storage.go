package providers

import (
	"fmt"

	"github.com/samber/do/v2"

	"github.com/cragbook/cragbook-server/internal/config"
	"github.com/cragbook/cragbook-server/internal/logger"
	"github.com/cragbook/cragbook-server/internal/media/images"
)

// ImageStorages groups all image storage services.
type ImageStorages struct {
	Faces *images.Storage
	Memes *images.Storage
}

// ProvideImageStorages provides all image storage services.
func ProvideImageStorages(i do.Injector) (*ImageStorages, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)

	faces, err := images.NewFaceStorage(cfg.Media.BasePath)
	if err != nil {
		return nil, fmt.Errorf("face storage: %w", err)
	}

	memes, err := images.NewMemeStorage(cfg.Media.BasePath)
	if err != nil {
		return nil, fmt.Errorf("meme storage: %w", err)
	}

	log.Info("Image storages initialized", "path", cfg.Media.BasePath)

	return &ImageStorages{
		Faces: faces,
		Memes: memes,
	}, nil
}
