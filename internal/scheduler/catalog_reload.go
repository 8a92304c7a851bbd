package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/MrSnakeDoc/nearby/internal/logger"
	"github.com/MrSnakeDoc/nearby/internal/metrics"
	"github.com/MrSnakeDoc/nearby/internal/sources/catalog"
)

// CatalogReloader periodically re-reads catalog.yaml into the holder.
type CatalogReloader struct {
	loader        *catalog.Loader
	holder        *catalog.Holder
	logger        logger.Logger
	interval      time.Duration
	stopCh        chan struct{}
	manualTrigger chan struct{}
}

func NewCatalogReloader(
	catalogFile string,
	holder *catalog.Holder,
	log logger.Logger,
	interval time.Duration,
	manualTrigger chan struct{},
) *CatalogReloader {
	return &CatalogReloader{
		loader:        catalog.NewLoader(catalogFile),
		holder:        holder,
		logger:        log,
		interval:      interval,
		stopCh:        make(chan struct{}),
		manualTrigger: manualTrigger,
	}
}

// Start loads once, then reloads on every tick or manual trigger. A
// missing or broken file keeps whatever catalog is already published.
func (cr *CatalogReloader) Start(ctx context.Context) error {
	if err := cr.Reload(ctx); err != nil {
		cr.logger.Warn("initial catalog load failed, using built-in catalog",
			logger.String("file", cr.loader.Path()),
			logger.Error(err))
	}

	ticker := time.NewTicker(cr.interval)
	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				if err := cr.Reload(ctx); err != nil {
					cr.logger.Error("failed to reload catalog", logger.Error(err))
				}
			case <-cr.manualTrigger:
				cr.logger.Info("manual catalog reload triggered")
				if err := cr.Reload(ctx); err != nil {
					cr.logger.Error("failed to reload catalog", logger.Error(err))
				}
			case <-cr.stopCh:
				return
			case <-ctx.Done():
				return
			}
		}
	}()

	return nil
}

func (cr *CatalogReloader) Stop() {
	close(cr.stopCh)
}

// Reload reads, validates and publishes the catalog.
func (cr *CatalogReloader) Reload(_ context.Context) error {
	cr.logger.Debug("reloading catalog", logger.String("file", cr.loader.Path()))

	f, err := cr.loader.Load()
	if err != nil {
		metrics.CatalogReloads.WithLabelValues("error").Inc()
		return fmt.Errorf("failed to load catalog: %w", err)
	}

	c, err := catalog.Map(f)
	if err != nil {
		metrics.CatalogReloads.WithLabelValues("error").Inc()
		return fmt.Errorf("failed to map catalog: %w", err)
	}

	cr.holder.Set(c)
	metrics.CatalogReloads.WithLabelValues("ok").Inc()

	cr.logger.Info("catalog loaded",
		logger.Int("categories", len(c.Categories)),
		logger.Int("suggestions", len(c.Suggestions)),
		logger.Int("languages", len(c.Languages)),
		logger.Int("merchants", len(c.Merchants)))
	return nil
}
