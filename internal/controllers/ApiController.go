package controllers

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/go-playground/validator/v10"
	json "github.com/goccy/go-json"
	"github.com/spf13/cast"

	"aisd/internal/geo"
	"aisd/internal/models"
	"aisd/internal/providers"
	"aisd/internal/services"
	"aisd/internal/structures"
)

const (
	maxRequestBodySize = 1 << 20 // 1 MB
	maxCacheKeySize    = 4096
)

var errNotFound = errors.New("not found")

type zoneRequest struct {
	Bounds []float64 `json:"bounds" validate:"len=4"`
}

type geofenceRequest struct {
	Hours     int           `json:"hours" validate:"gte=0"`
	Search    string        `json:"search" validate:"max=128"`
	Whitelist []zoneRequest `json:"whitelist" validate:"max=32,dive"`
	Blacklist []zoneRequest `json:"blacklist" validate:"max=32,dive"`
}

type ApiController struct {
	logger   providers.Logger
	service  services.QueryServiceInterface
	cache    providers.CacheProviderInterface
	validate *validator.Validate
	query    structures.QueryConfig
}

func NewApiController(conf *structures.Config, logger providers.Logger, service services.QueryServiceInterface, cache providers.CacheProviderInterface) *ApiController {
	return &ApiController{
		logger:   logger,
		service:  service,
		cache:    cache,
		validate: validator.New(validator.WithRequiredStructEnabled()),
		query:    conf.Query,
	}
}

// serveFromCacheOrCompute answers from the cache when possible. An empty
// cacheKey bypasses the cache.
func (ac *ApiController) serveFromCacheOrCompute(w http.ResponseWriter, r *http.Request, cacheKey string, compute func(ctx context.Context) (any, error)) {
	if cacheKey != "" {
		if data, ok := ac.cache.Get(cacheKey); ok {
			providers.WriteJSON(w, http.StatusOK, data)
			return
		}
	}

	result, err := compute(r.Context())
	if errors.Is(err, errNotFound) {
		providers.WriteError(w, http.StatusNotFound, "Not Found")
		return
	}
	if err != nil {
		ac.logger.Errorf(providers.GetLogTypeByRequestType(r.Method), "%s %s [%s]: %v",
			r.Method, r.URL.Path, providers.RequestIDFromContext(r.Context()), err)
		providers.WriteError(w, http.StatusInternalServerError, "Internal Server Error")
		return
	}

	gson, err := json.Marshal(result)
	if err != nil {
		providers.WriteError(w, http.StatusInternalServerError, "Internal Server Error")
		return
	}

	if cacheKey != "" {
		ac.cache.Set(cacheKey, gson)
	}
	providers.WriteJSON(w, http.StatusOK, gson)
}

// parseDecimal reads a base-10 integer. cast on its own would read "010"
// as octal and "0x10" as hex.
func parseDecimal(raw string) (int64, error) {
	raw = strings.TrimSpace(raw)
	sign, digits := "", raw
	if strings.HasPrefix(raw, "-") || strings.HasPrefix(raw, "+") {
		sign, digits = raw[:1], raw[1:]
	}
	if digits == "" || strings.TrimLeft(digits, "0123456789") != "" {
		return 0, fmt.Errorf("%q is not a decimal integer", raw)
	}
	digits = strings.TrimLeft(digits, "0")
	if digits == "" {
		return 0, nil
	}
	return cast.ToInt64E(sign + digits)
}

// hours returns the look-back window, falling back to the configured default.
func (ac *ApiController) hours(h int64) (int, error) {
	if h == 0 {
		h = int64(ac.query.DefaultHours)
	}
	if h < 1 {
		return 0, fmt.Errorf("hours must be positive")
	}
	if ac.query.MaxHours > 0 && h > int64(ac.query.MaxHours) {
		return 0, fmt.Errorf("hours must not exceed %d", ac.query.MaxHours)
	}
	return int(min(h, int64(services.MaxLookbackHours))), nil
}

func (ac *ApiController) GetPositions(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	bounds, err := parseBounds(q.Get("bounds"))
	if err != nil {
		providers.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}
	var rawHours int64
	if raw := q.Get("hours"); raw != "" {
		if rawHours, err = parseDecimal(raw); err != nil {
			providers.WriteError(w, http.StatusBadRequest, "hours must be an integer")
			return
		}
	}
	hours, err := ac.hours(rawHours)
	if err != nil {
		providers.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}
	search := strings.TrimSpace(q.Get("search"))

	key := fmt.Sprintf("pos:%g,%g,%g,%g:%d:%s", bounds.SouthWestLat, bounds.SouthWestLon, bounds.NorthEastLat, bounds.NorthEastLon, hours, search)
	ac.serveFromCacheOrCompute(w, r, key, func(ctx context.Context) (any, error) {
		start, end, ok, err := ac.service.LookbackWindow(ctx, hours)
		if err != nil {
			return nil, err
		}
		if !ok {
			return []models.TrailResult{}, nil
		}
		return ac.service.RecentTrails(ctx, start, end, bounds, search)
	})
}

func (ac *ApiController) PostGeofence(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxRequestBodySize)
	var req geofenceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		providers.WriteError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if err := ac.validate.Struct(req); err != nil {
		providers.WriteError(w, http.StatusBadRequest, validationMessage(err))
		return
	}
	hours, err := ac.hours(int64(req.Hours))
	if err != nil {
		providers.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}
	req.Hours = hours
	req.Search = strings.TrimSpace(req.Search)

	zones := make([]models.Zone, 0, len(req.Whitelist)+len(req.Blacklist))
	for _, z := range req.Whitelist {
		b, _ := geo.NewBoundingBox(z.Bounds)
		zones = append(zones, models.Zone{Kind: models.ZoneWhitelist, Bounds: b})
	}
	for _, z := range req.Blacklist {
		b, _ := geo.NewBoundingBox(z.Bounds)
		zones = append(zones, models.Zone{Kind: models.ZoneBlacklist, Bounds: b})
	}

	key := ""
	if canonical, err := json.Marshal(req); err == nil && len(canonical) < maxCacheKeySize {
		key = "geo:" + string(canonical)
	}
	ac.serveFromCacheOrCompute(w, r, key, func(ctx context.Context) (any, error) {
		start, end, ok, err := ac.service.LookbackWindow(ctx, hours)
		if err != nil {
			return nil, err
		}
		if !ok {
			return []models.GeofenceTrail{}, nil
		}
		return ac.service.GeofencedTrails(ctx, start, end, req.Search, zones)
	})
}

func pathID(r *http.Request) (int64, error) {
	id, err := parseDecimal(r.PathValue("id"))
	if err != nil || id < 0 {
		return 0, fmt.Errorf("vessel id must be numeric")
	}
	return id, nil
}

func (ac *ApiController) GetRoute(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		providers.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}
	ac.serveFromCacheOrCompute(w, r, fmt.Sprintf("route:%d", id), func(ctx context.Context) (any, error) {
		return ac.service.Route(ctx, id)
	})
}

func (ac *ApiController) GetVessel(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		providers.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}
	ac.serveFromCacheOrCompute(w, r, fmt.Sprintf("vessel:%d", id), func(ctx context.Context) (any, error) {
		v, err := ac.service.Vessel(ctx, id)
		if err != nil {
			return nil, err
		}
		if v == nil {
			return nil, errNotFound
		}
		return v, nil
	})
}

func validationMessage(err error) string {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		fe := verrs[0]
		return fmt.Sprintf("field %s failed %s validation", fe.Namespace(), fe.Tag())
	}
	return "invalid request"
}

