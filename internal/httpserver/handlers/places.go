package handlers

import (
	"net/http"
	"strings"

	"github.com/MrSnakeDoc/nearby/internal/domain"
	"github.com/MrSnakeDoc/nearby/internal/httpserver/deps"
	"github.com/MrSnakeDoc/nearby/internal/logger"
	"github.com/MrSnakeDoc/nearby/internal/persist"
)

func RecentList(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		list, err := d.Repos.Recent.List(r.Context())
		if err != nil {
			fail(w, d, err)
			return
		}
		writeJSON(w, http.StatusOK, list)
	}
}

// RecentView records that the user opened a place.
func RecentView(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var p domain.PlaceResult
		if err := decodeJSON(w, r, &p); err != nil {
			fail(w, d, err)
			return
		}
		p, err := placeOf(p)
		if err != nil {
			fail(w, d, err)
			return
		}

		list, err := d.Repos.Recent.View(r.Context(), p)
		if err != nil {
			fail(w, d, err)
			return
		}
		if err := d.Repos.Insights.RecordPlaceView(r.Context()); err != nil {
			d.Logger.Warn("failed to record place view", logger.Error(err))
		}
		writeJSON(w, http.StatusOK, list)
	}
}

func RecentClear(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := d.Repos.Recent.Clear(r.Context()); err != nil {
			fail(w, d, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

func FavoritesList(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		list, err := d.Repos.Favorites.List(r.Context())
		if err != nil {
			fail(w, d, err)
			return
		}
		writeJSON(w, http.StatusOK, list)
	}
}

type toggleResponse struct {
	Saved     bool                 `json:"saved"`
	Favorites []domain.PlaceResult `json:"favorites"`
}

func FavoritesToggle(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var p domain.PlaceResult
		if err := decodeJSON(w, r, &p); err != nil {
			fail(w, d, err)
			return
		}
		p, err := placeOf(p)
		if err != nil {
			fail(w, d, err)
			return
		}

		saved, list, err := d.Repos.Favorites.Toggle(r.Context(), p)
		if err != nil {
			fail(w, d, err)
			return
		}
		writeJSON(w, http.StatusOK, toggleResponse{Saved: saved, Favorites: list})
	}
}

func FavoritesRemove(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		uri := strings.TrimSpace(r.URL.Query().Get("uri"))
		if uri == "" {
			fail(w, d, persist.ErrMissingPlace)
			return
		}
		list, err := d.Repos.Favorites.Remove(r.Context(), uri)
		if err != nil {
			fail(w, d, err)
			return
		}
		writeJSON(w, http.StatusOK, list)
	}
}

type reviewsResponse struct {
	Reviews []domain.Review `json:"reviews"`
	Average float64         `json:"average"`
	Count   int             `json:"count"`
}

func ReviewsList(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		uri := strings.TrimSpace(r.URL.Query().Get("uri"))
		if uri == "" {
			fail(w, d, persist.ErrMissingPlace)
			return
		}

		list, err := d.Repos.Reviews.List(r.Context(), uri)
		if err != nil {
			fail(w, d, err)
			return
		}
		avg, n, err := d.Repos.Reviews.Average(r.Context(), uri)
		if err != nil {
			fail(w, d, err)
			return
		}
		writeJSON(w, http.StatusOK, reviewsResponse{Reviews: list, Average: avg, Count: n})
	}
}

func ReviewsAdd(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var rv domain.Review
		if err := decodeJSON(w, r, &rv); err != nil {
			fail(w, d, err)
			return
		}
		uri := strings.TrimSpace(r.URL.Query().Get("uri"))
		if uri == "" {
			uri = strings.TrimSpace(rv.PlaceURI)
		}

		saved, err := d.Repos.Reviews.Add(r.Context(), uri, rv)
		if err != nil {
			fail(w, d, err)
			return
		}
		writeJSON(w, http.StatusCreated, saved)
	}
}

func ReportsAdd(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var rp domain.Report
		if err := decodeJSON(w, r, &rp); err != nil {
			fail(w, d, err)
			return
		}
		saved, err := d.Repos.Reports.Add(r.Context(), rp)
		if err != nil {
			fail(w, d, err)
			return
		}
		d.Logger.Info("integrity report filed",
			logger.String("id", saved.ID),
			logger.String("place", saved.PlaceURI),
			logger.String("reason", saved.Reason))
		writeJSON(w, http.StatusCreated, saved)
	}
}

func PreferencesGet(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		p, err := d.Repos.Preferences.Get(r.Context())
		if err != nil {
			fail(w, d, err)
			return
		}
		writeJSON(w, http.StatusOK, p)
	}
}

type preferencesUpdate struct {
	Language *string `json:"language,omitempty"`
	Theme    *string `json:"theme,omitempty"`
}

// PreferencesPut updates whichever fields are present.
func PreferencesPut(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req preferencesUpdate
		if err := decodeJSON(w, r, &req); err != nil {
			fail(w, d, err)
			return
		}

		if req.Language != nil {
			if _, err := d.Repos.Preferences.SetLanguage(r.Context(), *req.Language); err != nil {
				fail(w, d, err)
				return
			}
		}
		if req.Theme != nil {
			if _, err := d.Repos.Preferences.SetTheme(r.Context(), *req.Theme); err != nil {
				fail(w, d, err)
				return
			}
		}

		p, err := d.Repos.Preferences.Get(r.Context())
		if err != nil {
			fail(w, d, err)
			return
		}
		writeJSON(w, http.StatusOK, p)
	}
}
