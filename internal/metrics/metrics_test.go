package metrics

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMiddleware_LabelsByRoutePattern(t *testing.T) {
	m, err := New(prometheus.NewRegistry())
	require.NoError(t, err)

	r := chi.NewRouter()
	r.Use(m.Middleware)
	r.Get("/items/{id}", func(w http.ResponseWriter, _ *http.Request) { w.WriteHeader(http.StatusTeapot) })

	for _, id := range []string{"a", "b", "c"} {
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/items/"+id, nil))
		require.Equal(t, http.StatusTeapot, rec.Code)
	}

	assert.Equal(t, 3.0, testutil.ToFloat64(m.httpRequestsTotal.WithLabelValues("GET", "/items/{id}", "418")))
}

func TestCounters(t *testing.T) {
	m, err := New(nil)
	require.NoError(t, err)

	m.TokenIssued("authorization_code")
	m.TokenIssued("authorization_code")
	m.TokenError("invalid_grant")
	m.Purged("codes", 0)
	m.Purged("sessions", 4)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.tokensIssued.WithLabelValues("authorization_code")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.tokenErrors.WithLabelValues("invalid_grant")))
	assert.Equal(t, 4.0, testutil.ToFloat64(m.cleanupPurged.WithLabelValues("sessions")))

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.True(t, strings.Contains(rec.Body.String(), "oauth_tokens_issued_total"))
}

func TestNilMetricsIsNoop(t *testing.T) {
	var m *Metrics
	m.TokenIssued("x")
	m.TokenError("x")
	m.Purged("x", 1)
	m.RateLimited("x")

	h := m.Middleware(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {}))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
}
