package persist

import (
	"github.com/MrSnakeDoc/nearby/internal/domain"
	"github.com/MrSnakeDoc/nearby/internal/logger"
	"github.com/MrSnakeDoc/nearby/internal/store"
)

// Repositories bundles every repository over one store. It is created once
// at startup and shared.
type Repositories struct {
	Recent      *RecentPlaces
	Favorites   *Favorites
	Merchants   *Merchants
	Reviews     *Reviews
	Reports     *Reports
	Insights    *Insights
	Preferences *Preferences
}

// Sources are the catalog-backed inputs some repositories fall back on.
type Sources struct {
	DefaultMerchants   func() []domain.MerchantRequest
	SupportedLanguages func() []string
}

func New(st store.Store, log logger.Logger, src Sources) *Repositories {
	return &Repositories{
		Recent:      NewRecentPlaces(st, log),
		Favorites:   NewFavorites(st, log),
		Merchants:   NewMerchants(st, log, src.DefaultMerchants),
		Reviews:     NewReviews(st, log),
		Reports:     NewReports(st, log),
		Insights:    NewInsights(st, log),
		Preferences: NewPreferences(st, log, src.SupportedLanguages),
	}
}
