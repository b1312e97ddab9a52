package internal

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"aisd/internal/controllers"
	"aisd/internal/geo"
	"aisd/internal/models"
	"aisd/internal/providers"
	"aisd/internal/structures"
)

// --- minimal mocks for routes test ---

type routeTestLogger struct{}

func (m *routeTestLogger) Errorf(_ providers.TypeEnum, _ string, _ ...interface{}) {}
func (m *routeTestLogger) Warnf(_ providers.TypeEnum, _ string, _ ...interface{})  {}
func (m *routeTestLogger) Debugf(_ providers.TypeEnum, _ string, _ ...interface{}) {}
func (m *routeTestLogger) Infof(_ providers.TypeEnum, _ string, _ ...interface{})  {}
func (m *routeTestLogger) Fatalf(_ providers.TypeEnum, _ string, _ ...interface{}) {}
func (m *routeTestLogger) Close()                                                  {}

type routeTestCache struct{}

func (m *routeTestCache) Get(_ string) ([]byte, bool) { return nil, false }
func (m *routeTestCache) Set(_ string, _ []byte)      {}

type routeTestMockService struct {
	routeID int64
}

func (m *routeTestMockService) LookbackWindow(_ context.Context, _ int) (time.Time, time.Time, bool, error) {
	return time.Time{}, time.Time{}, false, nil
}
func (m *routeTestMockService) RecentTrails(_ context.Context, _, _ time.Time, _ geo.BoundingBox, _ string) ([]models.TrailResult, error) {
	return nil, nil
}
func (m *routeTestMockService) GeofencedTrails(_ context.Context, _, _ time.Time, _ string, _ []models.Zone) ([]models.GeofenceTrail, error) {
	return nil, nil
}
func (m *routeTestMockService) Route(_ context.Context, id int64) ([]models.Coordinate, error) {
	m.routeID = id
	return []models.Coordinate{{1, 2}}, nil
}
func (m *routeTestMockService) Vessel(_ context.Context, _ int64) (*models.Vessel, error) {
	return nil, nil
}

func newRouteTestMux(svc *routeTestMockService) (*http.ServeMux, []structures.Route) {
	conf := &structures.Config{Query: structures.QueryConfig{DefaultHours: 24}}
	ac := controllers.NewApiController(conf, &routeTestLogger{}, svc, &routeTestCache{})
	routes := InitRoutes(ac).GetRoutes()

	mux := http.NewServeMux()
	for _, r := range routes {
		mux.Handle(r.Url, r.Handler)
	}
	return mux, routes
}

func TestInitRoutes_RegistersFourRoutes(t *testing.T) {
	_, routes := newRouteTestMux(&routeTestMockService{})
	require.Len(t, routes, 4)

	urls := make([]string, len(routes))
	for i, r := range routes {
		urls[i] = r.Url
	}

	assert.Contains(t, urls, "/api/positions")
	assert.Contains(t, urls, "/api/geofence")
	assert.Contains(t, urls, "/api/route/{id}")
	assert.Contains(t, urls, "/api/vessels/{id}")
}

func TestInitRoutes_MethodEnforcement(t *testing.T) {
	mux, _ := newRouteTestMux(&routeTestMockService{})

	req := httptest.NewRequest(http.MethodPost, "/api/positions", nil)
	rr := httptest.NewRecorder()
	mux.ServeHTTP(rr, req)
	assert.Equal(t, http.StatusMethodNotAllowed, rr.Code)

	req = httptest.NewRequest(http.MethodGet, "/api/geofence", nil)
	rr = httptest.NewRecorder()
	mux.ServeHTTP(rr, req)
	assert.Equal(t, http.StatusMethodNotAllowed, rr.Code)
}

func TestInitRoutes_PathValues(t *testing.T) {
	svc := &routeTestMockService{}
	mux, _ := newRouteTestMux(svc)

	rr := httptest.NewRecorder()
	mux.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/api/route/244000001", nil))
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, int64(244000001), svc.routeID)

	rr = httptest.NewRecorder()
	mux.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/api/route/abc", nil))
	assert.Equal(t, http.StatusBadRequest, rr.Code)

	rr = httptest.NewRecorder()
	mux.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/api/vessels/9", nil))
	assert.Equal(t, http.StatusNotFound, rr.Code)
}

func TestInitRoutes_GeofenceEmptyStore(t *testing.T) {
	mux, _ := newRouteTestMux(&routeTestMockService{})

	rr := httptest.NewRecorder()
	mux.ServeHTTP(rr, httptest.NewRequest(http.MethodPost, "/api/geofence", strings.NewReader(`{"hours":1}`)))
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "[]", rr.Body.String())
}
