package persist

import (
	"context"
	"fmt"
	"strings"

	"github.com/MrSnakeDoc/nearby/internal/domain"
	"github.com/MrSnakeDoc/nearby/internal/logger"
	"github.com/MrSnakeDoc/nearby/internal/store"
)

// Insights keeps the platform usage counters. Increments are
// read-modify-write, so concurrent bumps may be lost.
type Insights struct{ base }

func NewInsights(st store.Store, log logger.Logger) *Insights {
	return &Insights{newBase(st, log)}
}

func emptyInsights() domain.UsageInsights {
	return domain.UsageInsights{Categories: map[string]int64{}}
}

func (i *Insights) Get(ctx context.Context) (domain.UsageInsights, error) {
	u, err := load(ctx, i.base, store.KeyInsights, insightsSchema, emptyInsights)
	if u.Categories == nil {
		u.Categories = map[string]int64{}
	}
	return u, err
}

func (i *Insights) RecordSearch(ctx context.Context) error {
	return i.update(ctx, func(u *domain.UsageInsights) { u.Searches++ })
}

func (i *Insights) RecordPlaceView(ctx context.Context) error {
	return i.update(ctx, func(u *domain.UsageInsights) { u.PlaceViews++ })
}

func (i *Insights) RecordCategory(ctx context.Context, categoryID string) error {
	id := strings.ToLower(strings.TrimSpace(categoryID))
	return i.update(ctx, func(u *domain.UsageInsights) {
		u.CategoryClicks++
		if id != "" {
			u.Categories[id]++
		}
	})
}

func (i *Insights) update(ctx context.Context, fn func(*domain.UsageInsights)) error {
	u, err := i.Get(ctx)
	if err != nil {
		return err
	}
	fn(&u)
	if err := i.store.Set(ctx, store.KeyInsights, u); err != nil {
		return fmt.Errorf("save insights: %w", err)
	}
	return nil
}
