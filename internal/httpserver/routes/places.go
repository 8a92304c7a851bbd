package routes

import (
	"github.com/go-chi/chi/v5"

	"github.com/MrSnakeDoc/nearby/internal/httpserver/deps"
	"github.com/MrSnakeDoc/nearby/internal/httpserver/handlers"
)

func init() { Register(registerPlaces) }

func registerPlaces(r chi.Router, d deps.Deps) {
	r.Get("/api/recent", handlers.RecentList(d))
	r.Post("/api/recent", handlers.RecentView(d))
	r.Delete("/api/recent", handlers.RecentClear(d))

	r.Get("/api/favorites", handlers.FavoritesList(d))
	r.Post("/api/favorites/toggle", handlers.FavoritesToggle(d))
	r.Delete("/api/favorites", handlers.FavoritesRemove(d))

	r.Get("/api/reviews", handlers.ReviewsList(d))
	r.Post("/api/reviews", handlers.ReviewsAdd(d))
	r.Post("/api/reports", handlers.ReportsAdd(d))

	r.Get("/api/preferences", handlers.PreferencesGet(d))
	r.Put("/api/preferences", handlers.PreferencesPut(d))
}
