// Package geo provides the spherical geometry helpers shared by the
// positioning and navigation services.
package geo

import (
	"math"

	"github.com/paulmach/orb"
)

const earthRadiusMeters = 6371000.0

// Distance returns the great-circle distance between two points in meters,
// using the haversine formula on a spherical Earth.
func Distance(a, b orb.Point) float64 {
	lat1 := a.Lat() * math.Pi / 180
	lat2 := b.Lat() * math.Pi / 180
	deltaLat := (b.Lat() - a.Lat()) * math.Pi / 180
	deltaLng := (b.Lon() - a.Lon()) * math.Pi / 180

	h := math.Sin(deltaLat/2)*math.Sin(deltaLat/2) +
		math.Cos(lat1)*math.Cos(lat2)*
			math.Sin(deltaLng/2)*math.Sin(deltaLng/2)
	c := 2 * math.Atan2(math.Sqrt(h), math.Sqrt(1-h))

	return earthRadiusMeters * c
}

// Bearing returns the initial compass bearing from a to b in degrees [0,360).
func Bearing(a, b orb.Point) float64 {
	lat1 := a.Lat() * math.Pi / 180
	lat2 := b.Lat() * math.Pi / 180
	deltaLng := (b.Lon() - a.Lon()) * math.Pi / 180

	y := math.Sin(deltaLng) * math.Cos(lat2)
	x := math.Cos(lat1)*math.Sin(lat2) - math.Sin(lat1)*math.Cos(lat2)*math.Cos(deltaLng)

	bearing := math.Atan2(y, x) * 180 / math.Pi

	return math.Mod(bearing+360, 360)
}

// ClosestVertexDistance returns the minimum distance in meters from p to any
// vertex of the polyline. It returns +Inf for an empty polyline.
func ClosestVertexDistance(p orb.Point, line []orb.Point) float64 {
	minDist := math.Inf(1)
	for _, vertex := range line {
		if d := Distance(p, vertex); d < minDist {
			minDist = d
		}
	}

	return minDist
}
