package handlers

import (
	"net/http"

	"github.com/MrSnakeDoc/nearby/internal/domain"
	"github.com/MrSnakeDoc/nearby/internal/httpserver/deps"
	"github.com/MrSnakeDoc/nearby/internal/mapview"
)

type mapRequest struct {
	Places   []domain.PlaceResult `json:"places"`
	User     *domain.Location     `json:"user,omitempty"`
	Previous []mapview.Marker     `json:"previous,omitempty"`
}

type mapResponse struct {
	mapview.Render
	Diff mapview.Diff `json:"diff"`
}

// Map answers POST /api/map with the markers for a result set and the
// changes relative to what the client currently shows.
func Map(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req mapRequest
		if err := decodeJSON(w, r, &req); err != nil {
			fail(w, d, err)
			return
		}
		for i := range req.Places {
			req.Places[i].Normalize()
		}

		render := mapview.Build(req.Places, req.User)
		writeJSON(w, http.StatusOK, mapResponse{
			Render: render,
			Diff:   mapview.DiffMarkers(req.Previous, render.Markers),
		})
	}
}
