package models

// TrailResult describes where a vessel is now and where it just came from.
type TrailResult struct {
	ID        int64        `json:"id"`
	Name      *string      `json:"name"`
	Lat       float64      `json:"lat"`
	Lon       float64      `json:"lon"`
	Timestamp string       `json:"ts"`
	Heading   float64      `json:"heading"`
	Trail     []Coordinate `json:"trail"`
}

// GeofenceTrail is a vessel's full track inside the query window.
type GeofenceTrail struct {
	ID    int64        `json:"id"`
	Name  *string      `json:"name"`
	Trail []Coordinate `json:"trail"`
}
