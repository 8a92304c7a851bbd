package httpserver

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MrSnakeDoc/nearby/internal/httpserver/deps"
	"github.com/MrSnakeDoc/nearby/internal/logger"
	"github.com/MrSnakeDoc/nearby/internal/sources/catalog"
	"github.com/MrSnakeDoc/nearby/internal/store/memory"
)

func newRouter(t *testing.T) http.Handler {
	t.Helper()
	log := logger.New("error", false)
	return NewRouter(time.Second, log, deps.Deps{
		Logger:        log,
		StartTime:     time.Now(),
		Store:         memory.NewStore(),
		Catalog:       catalog.NewHolder(),
		AdminPasskey:  "s3cret",
		ReloadTrigger: make(chan struct{}, 1),
	})
}

func TestRouterServesHealthAndCatalog(t *testing.T) {
	r := newRouter(t)

	for _, path := range []string{"/healthz", "/readyz", "/api/categories", "/api/suggestions", "/api/chat/greeting"} {
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
		assert.Equal(t, http.StatusOK, rec.Code, path)
	}
}

func TestRouterUnknownRouteIsJSON(t *testing.T) {
	rec := httptest.NewRecorder()
	newRouter(t).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/nope", nil))

	require.Equal(t, http.StatusNotFound, rec.Code)
	assert.JSONEq(t, `{"error":"Not Found"}`, rec.Body.String())
}

func TestAdminRequiresPasskey(t *testing.T) {
	rec := httptest.NewRecorder()
	newRouter(t).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/admin/stats", nil))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}
