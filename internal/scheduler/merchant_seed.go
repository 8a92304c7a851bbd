package scheduler

import (
	"context"
	"fmt"

	"github.com/MrSnakeDoc/nearby/internal/logger"
	"github.com/MrSnakeDoc/nearby/internal/persist"
)

// MerchantSeeder writes the catalog's default merchants to the store on
// startup when no directory is persisted yet. An existing directory, even
// an empty one, is left alone.
type MerchantSeeder struct {
	merchants *persist.Merchants
	logger    logger.Logger
}

func NewMerchantSeeder(m *persist.Merchants, log logger.Logger) *MerchantSeeder {
	return &MerchantSeeder{merchants: m, logger: log}
}

// Seed reports whether it wrote anything.
func (ms *MerchantSeeder) Seed(ctx context.Context) (bool, error) {
	stored, err := ms.merchants.Stored(ctx)
	if err != nil {
		return false, fmt.Errorf("check merchant directory: %w", err)
	}
	if stored {
		ms.logger.Debug("merchant directory already present")
		return false, nil
	}

	// List falls back to the catalog defaults when nothing usable is stored.
	list, err := ms.merchants.List(ctx)
	if err != nil {
		return false, err
	}
	if err := ms.merchants.Save(ctx, list); err != nil {
		return false, err
	}

	ms.logger.Info("seeded merchant directory", logger.Int("count", len(list)))
	return true, nil
}
