package entity

import "github.com/paulmach/orb"

// Route is a walking route between two points. A navigation session owns
// exactly one route at a time; recalculation replaces it wholesale and never
// mutates it in place.
type Route struct {
	Coordinates     []orb.Point `json:"coordinates"`      // Ordered polyline in lon/lat order.
	DistanceMeters  float64     `json:"distance_meters"`
	DurationSeconds float64     `json:"duration_seconds"`
	Instructions    []string    `json:"instructions"`     // Ordered step instructions.
	IsRealRoute     bool        `json:"is_real_route"`    // False when synthesized as a straight-line fallback.
}
