package models

import "time"

// PositionReport is one timestamped fix for a vessel. (MMSI, Timestamp) is unique.
type PositionReport struct {
	MMSI      int64     `json:"id"`
	Timestamp time.Time `json:"ts"`
	Latitude  float64   `json:"lat"`
	Longitude float64   `json:"lon"`
}

// Coordinate is serialized as [lat, lon].
type Coordinate [2]float64

func NewCoordinate(lat, lon float64) Coordinate {
	return Coordinate{lat, lon}
}

func (c Coordinate) Lat() float64 { return c[0] }
func (c Coordinate) Lon() float64 { return c[1] }

// TrailPoint is a stored fix without its owner.
type TrailPoint struct {
	Latitude  float64
	Longitude float64
	Timestamp time.Time
}

func (p TrailPoint) Coordinate() Coordinate {
	return NewCoordinate(p.Latitude, p.Longitude)
}

// VesselPosition is a vessel's latest fix joined with its name.
type VesselPosition struct {
	MMSI      int64
	Name      string
	Latitude  float64
	Longitude float64
	Timestamp time.Time
}
