package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/MrSnakeDoc/nearby/internal/admin"
	"github.com/MrSnakeDoc/nearby/internal/httpserver/deps"
)

func AdminMerchants(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		list, err := d.Admin.Merchants(r.Context(), r.URL.Query().Get("q"))
		if err != nil {
			fail(w, d, err)
			return
		}
		writeJSON(w, http.StatusOK, list)
	}
}

func AdminAddMerchant(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var in admin.NewMerchant
		if err := decodeJSON(w, r, &in); err != nil {
			fail(w, d, err)
			return
		}
		m, err := d.Admin.AddMerchant(r.Context(), in)
		if err != nil {
			fail(w, d, err)
			return
		}
		writeJSON(w, http.StatusCreated, m)
	}
}

func AdminApprove(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		m, err := d.Admin.Approve(r.Context(), chi.URLParam(r, "id"))
		if err != nil {
			fail(w, d, err)
			return
		}
		writeJSON(w, http.StatusOK, m)
	}
}

func AdminDelete(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := d.Admin.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
			fail(w, d, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

func AdminApplications(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		list, err := d.Admin.Applications(r.Context())
		if err != nil {
			fail(w, d, err)
			return
		}
		writeJSON(w, http.StatusOK, list)
	}
}

func AdminStats(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		st, err := d.Admin.Stats(r.Context())
		if err != nil {
			fail(w, d, err)
			return
		}
		writeJSON(w, http.StatusOK, st)
	}
}

func AdminReports(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		list, err := d.Admin.Reports(r.Context())
		if err != nil {
			fail(w, d, err)
			return
		}
		writeJSON(w, http.StatusOK, list)
	}
}

func AdminResolveReport(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		rp, err := d.Admin.ResolveReport(r.Context(), chi.URLParam(r, "id"))
		if err != nil {
			fail(w, d, err)
			return
		}
		writeJSON(w, http.StatusOK, rp)
	}
}

func AdminInsights(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ins, err := d.Admin.Insights(r.Context())
		if err != nil {
			fail(w, d, err)
			return
		}
		writeJSON(w, http.StatusOK, ins)
	}
}
