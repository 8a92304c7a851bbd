package routes

import (
	"github.com/go-chi/chi/v5"

	"github.com/MrSnakeDoc/nearby/internal/httpserver/deps"
	"github.com/MrSnakeDoc/nearby/internal/httpserver/handlers"
	"github.com/MrSnakeDoc/nearby/internal/httpserver/mw"
)

func init() { Register(registerSearch) }

func registerSearch(r chi.Router, d deps.Deps) {
	limited := r.With(mw.EnforceHost(d.AllowedHosts, d.Logger), mw.RateLimit(mw.RateLimitConfig{
		Name:              "search",
		Burst:             d.RateLimitBurst,
		RefillPerIPPerMin: d.RateLimitPerMin,
		MaxEntries:        10000,
		TrustProxy:        d.TrustProxy,
	}))
	limited.Get("/api/search", handlers.Search(d))
	limited.Get("/api/categories/{id}/search", handlers.CategorySearch(d))

	r.Get("/api/categories", handlers.Categories(d))
	r.Get("/api/suggestions", handlers.Suggestions(d))
	r.Post("/api/map", handlers.Map(d))
}
