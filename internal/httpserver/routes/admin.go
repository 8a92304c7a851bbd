package routes

import (
	"github.com/go-chi/chi/v5"

	"github.com/MrSnakeDoc/nearby/internal/httpserver/deps"
	"github.com/MrSnakeDoc/nearby/internal/httpserver/handlers"
	"github.com/MrSnakeDoc/nearby/internal/httpserver/mw"
)

func init() { Register(registerAdmin) }

func registerAdmin(r chi.Router, d deps.Deps) {
	r.Route("/api/admin", func(r chi.Router) {
		r.Use(mw.EnforceHost(d.AllowedHosts, d.Logger))
		r.Use(mw.RequirePasskey(d.AdminPasskey, d.TrustProxy, d.Logger))

		r.Get("/merchants", handlers.AdminMerchants(d))
		r.Post("/merchants", handlers.AdminAddMerchant(d))
		r.Post("/merchants/{id}/approve", handlers.AdminApprove(d))
		r.Delete("/merchants/{id}", handlers.AdminDelete(d))
		r.Get("/applications", handlers.AdminApplications(d))
		r.Get("/stats", handlers.AdminStats(d))
		r.Get("/reports", handlers.AdminReports(d))
		r.Post("/reports/{id}/resolve", handlers.AdminResolveReport(d))
		r.Get("/insights", handlers.AdminInsights(d))
	})
}
