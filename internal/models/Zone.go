package models

import "aisd/internal/geo"

type ZoneKind string

const (
	ZoneWhitelist ZoneKind = "whitelist"
	ZoneBlacklist ZoneKind = "blacklist"
)

// Zone is a per-query geofence; it is never persisted.
type Zone struct {
	Kind   ZoneKind
	Bounds geo.BoundingBox
}
