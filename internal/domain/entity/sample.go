// Package entity contains the core business objects of the project.
package entity

import (
	"time"

	"github.com/paulmach/orb"
)

// CoordinateSample is a single positioning reading. It is immutable once
// constructed; the geo-sample filter produces new samples rather than
// mutating accepted ones.
type CoordinateSample struct {
	Latitude       float64   `json:"latitude"`        // The geographic latitude in degrees.
	Longitude      float64   `json:"longitude"`       // The geographic longitude in degrees.
	AccuracyMeters float64   `json:"accuracy_meters"` // Radius of the accuracy circle; smaller is more precise.
	HeadingDegrees *float64  `json:"heading_degrees,omitempty"` // Compass heading in [0,360), if known.
	SpeedMps       *float64  `json:"speed_mps,omitempty"`       // Ground speed in meters per second, if known.
	CapturedAt     time.Time `json:"captured_at"`     // When the platform captured this reading.
}

// Point returns the sample position as an orb.Point (lon/lat order).
func (s CoordinateSample) Point() orb.Point {
	return orb.Point{s.Longitude, s.Latitude}
}
