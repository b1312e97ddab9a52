package geo

import "fmt"

// BoundingBox is an axis-aligned lat/lon rectangle given by its south-west
// and north-east corners. Boxes crossing the antimeridian are not supported;
// such a box (SouthWestLon > NorthEastLon) contains nothing.
type BoundingBox struct {
	SouthWestLat float64 `json:"sw_lat"`
	SouthWestLon float64 `json:"sw_lon"`
	NorthEastLat float64 `json:"ne_lat"`
	NorthEastLon float64 `json:"ne_lon"`
}

// NewBoundingBox builds a box from the wire order swLat, swLon, neLat, neLon.
func NewBoundingBox(values []float64) (BoundingBox, error) {
	if len(values) != 4 {
		return BoundingBox{}, fmt.Errorf("bounding box needs 4 values, got %d", len(values))
	}
	return BoundingBox{
		SouthWestLat: values[0],
		SouthWestLon: values[1],
		NorthEastLat: values[2],
		NorthEastLon: values[3],
	}, nil
}

// Empty reports whether the box can contain no point at all.
func (b BoundingBox) Empty() bool {
	return b.SouthWestLat > b.NorthEastLat || b.SouthWestLon > b.NorthEastLon
}

// Contains is inclusive on every edge, matching SQL BETWEEN.
func (b BoundingBox) Contains(lat, lon float64) bool {
	return lat >= b.SouthWestLat && lat <= b.NorthEastLat &&
		lon >= b.SouthWestLon && lon <= b.NorthEastLon
}
