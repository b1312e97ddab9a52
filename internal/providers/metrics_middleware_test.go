package providers

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

type mockMetrics struct {
	requestEndpoint string
	requestStatus   int
	requestCalls    int
	durationCalls   int
}

func (m *mockMetrics) IncRequestsTotal(endpoint string, status int) {
	m.requestEndpoint = endpoint
	m.requestStatus = status
	m.requestCalls++
}
func (m *mockMetrics) ObserveRequestDuration(_ string, _ time.Duration) { m.durationCalls++ }
func (m *mockMetrics) IncCacheHits()                                    {}
func (m *mockMetrics) IncCacheMisses()                                  {}
func (m *mockMetrics) IncMessages(_ string)                             {}
func (m *mockMetrics) IncMessageErrors(_ string)                        {}
func (m *mockMetrics) IncPositions(_ string)                            {}
func (m *mockMetrics) IncReconnects()                                   {}
func (m *mockMetrics) SetStreamConnected(_ bool)                        {}
func (m *mockMetrics) ObserveStoreWriteDuration(_ time.Duration)        {}
func (m *mockMetrics) SetRecordsTotal(_ string, _ int64)                {}

func TestMetricsMiddleware_CapturesStatusAndEndpoint(t *testing.T) {
	metrics := &mockMetrics{}

	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/geofence", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusCreated)
	})

	mw := MetricsMiddleware(metrics, mux)

	req := httptest.NewRequest(http.MethodPost, "/api/geofence", nil)
	rr := httptest.NewRecorder()
	mw.ServeHTTP(rr, req)

	assert.Equal(t, 1, metrics.requestCalls)
	assert.Equal(t, "POST /api/geofence", metrics.requestEndpoint)
	assert.Equal(t, http.StatusCreated, metrics.requestStatus)
	assert.Equal(t, 1, metrics.durationCalls)
}

func TestMetricsMiddleware_UnmatchedPathsShareOneLabel(t *testing.T) {
	metrics := &mockMetrics{}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/positions", func(w http.ResponseWriter, r *http.Request) {})

	mw := MetricsMiddleware(metrics, mux)

	for _, path := range []string{"/wp-login.php", "/.env", "/api/positions/extra"} {
		rr := httptest.NewRecorder()
		mw.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, path, nil))

		assert.Equal(t, UnmatchedEndpoint, metrics.requestEndpoint, path)
	}
	assert.Equal(t, 3, metrics.requestCalls)
}

func TestMetricsMiddleware_BareHandlerIsUnmatched(t *testing.T) {
	metrics := &mockMetrics{}

	mw := MetricsMiddleware(metrics, http.NotFoundHandler())
	mw.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/api/positions", nil))

	assert.Equal(t, UnmatchedEndpoint, metrics.requestEndpoint)
	assert.Equal(t, http.StatusNotFound, metrics.requestStatus)
}

func TestMetricsMiddleware_DefaultStatus200(t *testing.T) {
	metrics := &mockMetrics{}

	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("ok"))
	})

	mw := MetricsMiddleware(metrics, handler)

	req := httptest.NewRequest(http.MethodGet, "/test", nil)
	rr := httptest.NewRecorder()
	mw.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusOK, metrics.requestStatus)
}

func TestStatusWriter_WriteHeader(t *testing.T) {
	rr := httptest.NewRecorder()
	sw := &statusWriter{ResponseWriter: rr, status: http.StatusOK}

	sw.WriteHeader(http.StatusNotFound)
	assert.Equal(t, http.StatusNotFound, sw.status)
	assert.Equal(t, http.StatusNotFound, rr.Code)
}

func TestMetricsMiddleware_UsesMuxPattern(t *testing.T) {
	metrics := &mockMetrics{}

	mux := http.NewServeMux()
	mux.HandleFunc("/api/route/{id}", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	mw := MetricsMiddleware(metrics, mux)

	req := httptest.NewRequest(http.MethodGet, "/api/route/211000000", nil)
	rr := httptest.NewRecorder()
	mw.ServeHTTP(rr, req)

	assert.Equal(t, "/api/route/{id}", metrics.requestEndpoint)
}
