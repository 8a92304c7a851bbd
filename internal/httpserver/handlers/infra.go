package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/MrSnakeDoc/nearby/internal/httpserver/deps"
)

type componentStatus struct {
	OK               bool   `json:"ok"`
	CategoriesLoaded *int   `json:"categories_loaded,omitempty"`
	SessionsOpen     *int   `json:"sessions_open,omitempty"`
	LastReload       string `json:"last_reload,omitempty"`
	Mode             string `json:"mode,omitempty"`
	Impact           string `json:"impact,omitempty"`
	Error            string `json:"error,omitempty"`
}

type infraResponse struct {
	ServiceMode string                     `json:"service_mode"`
	Components  map[string]componentStatus `json:"components"`
}

func Infra(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")

		categories := len(d.Catalog.Categories())
		lastReload := d.Catalog.LastReload()
		lastReloadStr := "builtin"
		if !lastReload.IsZero() {
			lastReloadStr = lastReload.Format(time.DateTime)
		}

		components := map[string]componentStatus{
			"catalog": {
				OK:               categories > 0,
				CategoriesLoaded: &categories,
				LastReload:       lastReloadStr,
			},
			"store": checkStore(r.Context(), d),
		}
		if d.Voice != nil {
			open := d.Voice.Count()
			components["voice"] = componentStatus{OK: true, SessionsOpen: &open}
		}

		response := infraResponse{
			ServiceMode: determineServiceMode(components),
			Components:  components,
		}

		w.WriteHeader(http.StatusOK)
		_ = json.NewEncoder(w).Encode(response)
	}
}

func determineServiceMode(components map[string]componentStatus) string {
	if st, exists := components["store"]; exists && !st.OK {
		return "critical" // nothing can be persisted
	}
	if st := components["store"]; st.Mode == "memory" {
		return "degraded" // state is lost on restart
	}
	return "optimal"
}

func checkStore(parent context.Context, d deps.Deps) componentStatus {
	ctx, cancel := context.WithTimeout(parent, 2*time.Second)
	defer cancel()

	backend := d.Store.Backend()
	if err := d.Store.Ping(ctx); err != nil {
		return componentStatus{
			OK:     false,
			Mode:   backend,
			Impact: "persistence-disabled",
			Error:  "timeout",
		}
	}

	if d.RedisClient == nil {
		return componentStatus{
			OK:     true,
			Mode:   backend,
			Impact: "state-not-durable",
		}
	}
	return componentStatus{
		OK:     true,
		Mode:   backend,
		Impact: "state-durable",
	}
}
