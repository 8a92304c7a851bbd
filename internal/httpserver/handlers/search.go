package handlers

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/MrSnakeDoc/nearby/internal/geo"
	"github.com/MrSnakeDoc/nearby/internal/httpserver/deps"
	"github.com/MrSnakeDoc/nearby/internal/logger"
	"github.com/MrSnakeDoc/nearby/internal/search"
)

type searchResponse struct {
	search.Result
	LocationStatus geo.Status `json:"locationStatus"`
}

// Search answers GET /api/search. An empty query is rejected before any
// backend call; everything else gets a well-formed response, including
// backend failures (text carries the apology, error the detail).
func Search(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		query := strings.TrimSpace(r.URL.Query().Get("q"))
		if query == "" {
			d.Logger.Debug("empty query, ignoring")
			fail(w, d, search.ErrEmptyQuery)
			return
		}

		pos := locate(r, d, queryLocation(r))
		fields := []logger.Field{
			logger.Text("query", query),
			logger.String("location", string(pos.Status)),
		}
		if pos.Granted() {
			fields = append(fields, logger.Coarse("near", pos.Location.Latitude, pos.Location.Longitude))
		}
		d.Logger.Info("search request", fields...)

		res, err := d.Search.Search(r.Context(), search.Query{
			Text:    query,
			User:    pos.Location,
			Session: searchSession(w, r),
			Seq:     seqOf(r),
		})
		if err != nil {
			fail(w, d, err)
			return
		}
		writeJSON(w, http.StatusOK, searchResponse{Result: res, LocationStatus: pos.Status})
	}
}

// CategorySearch answers GET /api/categories/{id}/search.
func CategorySearch(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "id")
		pos := locate(r, d, queryLocation(r))

		res, err := d.Search.Category(r.Context(), id, search.Query{
			User:    pos.Location,
			Session: searchSession(w, r),
			Seq:     seqOf(r),
		})
		if err != nil {
			fail(w, d, err)
			return
		}
		writeJSON(w, http.StatusOK, searchResponse{Result: res, LocationStatus: pos.Status})
	}
}

func Categories(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, d.Catalog.Categories())
	}
}

func Suggestions(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, d.Catalog.Suggestions())
	}
}
