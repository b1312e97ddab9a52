package services

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/RoaringBitmap/roaring/v2/roaring64"

	"aisd/internal/geo"
	"aisd/internal/models"
	"aisd/internal/providers"
	"aisd/internal/storage"
	"aisd/internal/textmatch"
)

// TrailLimit is the number of recent points returned per vessel by RecentTrails.
const TrailLimit = 10

// MaxLookbackHours is the longest window a time.Duration can express.
const MaxLookbackHours = int(math.MaxInt64 / int64(time.Hour))

var ErrInvalidZone = errors.New("invalid zone kind")

type QueryServiceInterface interface {
	// LookbackWindow ends at the newest stored report; ok is false when the
	// store holds no reports at all.
	LookbackWindow(ctx context.Context, hours int) (start, end time.Time, ok bool, err error)
	RecentTrails(ctx context.Context, start, end time.Time, bounds geo.BoundingBox, search string) ([]models.TrailResult, error)
	GeofencedTrails(ctx context.Context, start, end time.Time, search string, zones []models.Zone) ([]models.GeofenceTrail, error)
	Route(ctx context.Context, id int64) ([]models.Coordinate, error)
	Vessel(ctx context.Context, id int64) (*models.Vessel, error)
}

type QueryService struct {
	store  storage.Reader
	logger providers.Logger
}

func NewQueryService(store storage.Store, logger providers.Logger) QueryServiceInterface {
	return &QueryService{store: store, logger: logger}
}

func (qs *QueryService) LookbackWindow(ctx context.Context, hours int) (time.Time, time.Time, bool, error) {
	end, ok, err := qs.store.LatestReportTime(ctx)
	if err != nil || !ok {
		return time.Time{}, time.Time{}, false, err
	}
	hours = min(max(hours, 0), MaxLookbackHours)
	return end.Add(-time.Duration(hours) * time.Hour), end, true, nil
}

// RecentTrails returns every vessel whose latest fix in [start, end] lies in
// bounds and matches search, with up to TrailLimit points ending at end.
func (qs *QueryService) RecentTrails(ctx context.Context, start, end time.Time, bounds geo.BoundingBox, search string) ([]models.TrailResult, error) {
	results := make([]models.TrailResult, 0)
	if bounds.Empty() {
		return results, nil
	}

	latest, err := qs.store.LatestPositionsInWindow(ctx, start, end, bounds)
	if err != nil {
		return nil, err
	}

	matcher := textmatch.NewMatcher(search)
	kept := latest[:0]
	for _, p := range latest {
		if matcher.Matches(p.MMSI, p.Name) {
			kept = append(kept, p)
		}
	}
	if len(kept) == 0 {
		return results, nil
	}

	ids := make([]int64, len(kept))
	for i, p := range kept {
		ids[i] = p.MMSI
	}
	trails, err := qs.store.RecentTrails(ctx, ids, end, TrailLimit)
	if err != nil {
		return nil, err
	}

	for _, p := range kept {
		points := trails[p.MMSI]
		results = append(results, models.TrailResult{
			ID:        p.MMSI,
			Name:      optionalName(p.Name),
			Lat:       p.Latitude,
			Lon:       p.Longitude,
			Timestamp: p.Timestamp.Format(time.RFC3339Nano),
			Heading:   heading(points),
			Trail:     coordinates(points),
		})
	}
	qs.logger.Debugf(providers.TypeGet, "Recent trails: %d of %d vessels in window matched", len(results), len(latest))
	return results, nil
}

// GeofencedTrails filters vessels by all-time presence in the given zones:
// a vessel must have visited every whitelist zone and no blacklist zone.
// Survivors get their full trail within [start, end].
func (qs *QueryService) GeofencedTrails(ctx context.Context, start, end time.Time, search string, zones []models.Zone) ([]models.GeofenceTrail, error) {
	results := make([]models.GeofenceTrail, 0)

	var whitelist *roaring64.Bitmap
	blacklist := roaring64.New()
	for _, z := range zones {
		ids, err := qs.store.VesselIDsInZone(ctx, z.Bounds)
		if err != nil {
			return nil, err
		}
		members := bitmapOf(ids)

		switch z.Kind {
		case models.ZoneWhitelist:
			if whitelist == nil {
				whitelist = members
			} else {
				whitelist.And(members)
			}
		case models.ZoneBlacklist:
			blacklist.Or(members)
		default:
			return nil, fmt.Errorf("%w: %q", ErrInvalidZone, z.Kind)
		}
	}

	eligible := whitelist
	if eligible == nil {
		all, err := qs.store.AllVesselIDs(ctx)
		if err != nil {
			return nil, err
		}
		eligible = bitmapOf(all)
	}
	eligible.AndNot(blacklist)
	if eligible.IsEmpty() {
		return results, nil
	}

	candidates := make([]int64, 0, eligible.GetCardinality())
	it := eligible.Iterator()
	for it.HasNext() {
		candidates = append(candidates, int64(it.Next()))
	}

	names, err := qs.store.VesselNames(ctx, candidates)
	if err != nil {
		return nil, err
	}

	matcher := textmatch.NewMatcher(search)
	ids := candidates[:0]
	for _, id := range candidates {
		if matcher.Matches(id, names[id]) {
			ids = append(ids, id)
		}
	}
	if len(ids) == 0 {
		return results, nil
	}

	trails, err := qs.store.TrailsInWindow(ctx, ids, start, end)
	if err != nil {
		return nil, err
	}
	for _, id := range ids {
		points, ok := trails[id]
		if !ok {
			continue
		}
		results = append(results, models.GeofenceTrail{
			ID:    id,
			Name:  optionalName(names[id]),
			Trail: coordinates(points),
		})
	}
	qs.logger.Debugf(providers.TypePost, "Geofence: %d zones, %d eligible, %d with trails", len(zones), len(candidates), len(results))
	return results, nil
}

func (qs *QueryService) Route(ctx context.Context, id int64) ([]models.Coordinate, error) {
	return qs.store.Route(ctx, id)
}

// Vessel returns nil for an unknown id.
func (qs *QueryService) Vessel(ctx context.Context, id int64) (*models.Vessel, error) {
	return qs.store.Vessel(ctx, id)
}

func heading(points []models.TrailPoint) float64 {
	if len(points) < 2 {
		return 0
	}
	prev, last := points[len(points)-2], points[len(points)-1]
	return geo.Bearing(prev.Latitude, prev.Longitude, last.Latitude, last.Longitude)
}

func coordinates(points []models.TrailPoint) []models.Coordinate {
	out := make([]models.Coordinate, len(points))
	for i, p := range points {
		out[i] = p.Coordinate()
	}
	return out
}

func optionalName(name string) *string {
	if name == "" {
		return nil
	}
	return &name
}

func bitmapOf(ids []int64) *roaring64.Bitmap {
	bm := roaring64.New()
	for _, id := range ids {
		bm.Add(uint64(id))
	}
	return bm
}
