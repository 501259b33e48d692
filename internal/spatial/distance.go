package spatial

import "github.com/golang/geo/s2"

// EarthRadiusMeters is the mean Earth radius
const EarthRadiusMeters = 6371000.0

const metersPerMile = 1609.344

// HaversineMiles calculates the great-circle distance between two points
// in miles using the Haversine formula
func HaversineMiles(lat1, lon1, lat2, lon2 float64) float64 {
	p1 := s2.LatLngFromDegrees(lat1, lon1)
	p2 := s2.LatLngFromDegrees(lat2, lon2)
	return p1.Distance(p2).Radians() * EarthRadiusMeters / metersPerMile
}
