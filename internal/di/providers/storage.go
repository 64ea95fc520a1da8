package providers

import (
	"fmt"

	"github.com/samber/do/v2"

	"github.com/ebookhub/ebookhub-server/internal/config"
	"github.com/ebookhub/ebookhub-server/internal/logger"
	"github.com/ebookhub/ebookhub-server/internal/media/images"
)

// MediaStorages groups the on-disk media stores.
type MediaStorages struct {
	Covers  *images.Storage
	Sources *images.Storage
}

// ProvideMediaStorages provides the cover and source file storages.
func ProvideMediaStorages(i do.Injector) (*MediaStorages, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)

	covers, err := images.NewCoverStorage(cfg.Metadata.BasePath)
	if err != nil {
		return nil, fmt.Errorf("cover storage: %w", err)
	}

	sources, err := images.NewSourceStorage(cfg.Metadata.BasePath)
	if err != nil {
		return nil, fmt.Errorf("source storage: %w", err)
	}

	log.Info("Media storages initialized", "base_path", cfg.Metadata.BasePath)

	return &MediaStorages{
		Covers:  covers,
		Sources: sources,
	}, nil
}
