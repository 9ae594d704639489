package metrics_test

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"foodgram/pkg/lib/metrics"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func scrape(t *testing.T, m *metrics.Metrics) string {
	t.Helper()
	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	body, err := io.ReadAll(rec.Body)
	require.NoError(t, err)
	return string(body)
}

func TestMiddleware_UsesRoutePattern(t *testing.T) {
	m := metrics.New()

	r := chi.NewRouter()
	r.Use(m.Middleware)
	r.Get("/api/recipes/{id}", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	})

	for _, path := range []string{"/api/recipes/1", "/api/recipes/2"} {
		r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, path, nil))
	}

	out := scrape(t, m)
	assert.Contains(t, out, `foodgram_http_requests_total{method="GET",route="/api/recipes/{id}",status="418"} 2`)
}

func TestDomainCounters(t *testing.T) {
	m := metrics.New()
	m.ShortCodeRetry()
	m.ShoppingListDownload("empty")
	m.ShoppingListDownload("ok")
	m.ShoppingListDownload("ok")

	out := scrape(t, m)
	assert.Contains(t, out, "foodgram_recipe_short_code_retries_total 1")
	assert.Contains(t, out, `foodgram_shopping_list_downloads_total{outcome="ok"} 2`)
	assert.True(t, strings.Contains(out, `foodgram_shopping_list_downloads_total{outcome="empty"} 1`))
}

func TestNilMetricsIsNoop(t *testing.T) {
	var m *metrics.Metrics

	assert.NotPanics(t, func() {
		m.ShortCodeRetry()
		m.ShoppingListDownload("ok")
		h := m.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
		h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))
	})
}
