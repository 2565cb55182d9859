package matching

import (
	"math"

	"parttime-match/internal/domain/profile"
)

const earthRadiusKm = 6371.0088

// DistanceKm returns the great-circle distance between two points (haversine).
func DistanceKm(a, b profile.Coordinates) float64 {
	lat1 := toRadians(a.Latitude)
	lat2 := toRadians(b.Latitude)
	dLat := lat2 - lat1
	dLon := toRadians(b.Longitude - a.Longitude)

	h := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(lat1)*math.Cos(lat2)*math.Sin(dLon/2)*math.Sin(dLon/2)
	h = clampFloat(h, 0, 1)
	return 2 * earthRadiusKm * math.Asin(math.Sqrt(h))
}

func toRadians(deg float64) float64 {
	return deg * math.Pi / 180
}
