package pipeline

import (
	"fmt"
	"math"

	"github.com/MrSnakeDoc/nearby/internal/domain"
)

// KmPerDegree converts degrees to kilometres at the equator.
const KmPerDegree = 111.0

// ApproxDistanceKm is the planar distance between a and b: the Euclidean
// distance in degrees times 111. It ignores longitude convergence and the
// curvature of the earth, so it is only meaningful within a metro area.
func ApproxDistanceKm(a, b domain.Location) float64 {
	dLat := a.Latitude - b.Latitude
	dLng := a.Longitude - b.Longitude
	return math.Sqrt(dLat*dLat+dLng*dLng) * KmPerDegree
}

// FormatDistance renders a distance with one decimal, e.g. "2.4 km".
func FormatDistance(km float64) string {
	return fmt.Sprintf("%.1f km", km)
}
