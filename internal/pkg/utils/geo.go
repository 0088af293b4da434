package utils

import (
	"math"

	"github.com/attendly/attendance-backend-go/internal/domain/policy"
)

// DefaultOfficeRadiusMeters applies when an office has no radius configured.
const DefaultOfficeRadiusMeters = 500.0

// CalculateHaversineDistance returns the great-circle distance between two
// coordinates in meters.
func CalculateHaversineDistance(lat1, lon1, lat2, lon2 float64) float64 {
	const earthRadius = 6371000 // mean Earth radius in meters

	dLat := (lat2 - lat1) * (math.Pi / 180.0)
	dLon := (lon2 - lon1) * (math.Pi / 180.0)

	lat1Rad := lat1 * (math.Pi / 180.0)
	lat2Rad := lat2 * (math.Pi / 180.0)

	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Sin(dLon/2)*math.Sin(dLon/2)*math.Cos(lat1Rad)*math.Cos(lat2Rad)

	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))

	return earthRadius * c
}

// WithinAnyOffice reports whether the point falls inside at least one office
// geofence. The boundary itself counts as inside. An empty office list returns
// false; callers decide whether that means "skip the check" (fail-open on a
// configuration gap) and are responsible for logging it.
func WithinAnyOffice(lat, lng float64, offices []policy.OfficeLocation) bool {
	for _, office := range offices {
		radius := office.RadiusMeters
		if radius <= 0 {
			radius = DefaultOfficeRadiusMeters
		}
		distance := CalculateHaversineDistance(lat, lng, office.Latitude, office.Longitude)
		if distance <= radius {
			return true
		}
	}
	return false
}
