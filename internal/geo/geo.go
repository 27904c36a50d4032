// Package geo ranks facilities by great-circle distance from a reference
// point. Pure functions, no I/O.
package geo

import (
	"fmt"
	"math"
	"sort"

	"github.com/toiletmap/internal/model"
)

const earthRadiusKm = 6371.0

// Point is a WGS84 coordinate in degrees.
type Point struct {
	Latitude  float64
	Longitude float64
}

// DefaultLocation is substituted for facilities without a coordinate and for
// users whose location could not be resolved.
var DefaultLocation = Point{Latitude: 18.5204, Longitude: 73.8567}

// DefaultLocationLabel is the display address for DefaultLocation.
const DefaultLocationLabel = "Pune City Center"

// Distance returns the haversine great-circle distance in kilometers.
func Distance(lat1, lon1, lat2, lon2 float64) float64 {
	dLat := radians(lat2 - lat1)
	dLon := radians(lon2 - lon1)

	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(radians(lat1))*math.Cos(radians(lat2))*
			math.Sin(dLon/2)*math.Sin(dLon/2)

	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))
	return earthRadiusKm * c
}

func radians(deg float64) float64 {
	return deg * math.Pi / 180.0
}

// FormatDistance renders a distance for display: integer meters below 1 km,
// otherwise kilometers with one decimal. Zero distance reads "0 m".
func FormatDistance(km float64) string {
	if km < 1 {
		return fmt.Sprintf("%d m", int(math.Round(km*1000)))
	}
	return fmt.Sprintf("%.1f km", km)
}

// Rank computes a distance for every facility and returns the list sorted
// ascending by distance. A non-finite origin and facilities without a
// coordinate (or with a non-finite one) are replaced by DefaultLocation, so
// NaN never reaches the sort. The input slice is not modified; ties keep
// their input order.
func Rank(origin Point, facilities []model.Facility) []model.RankedFacility {
	if !finite(origin.Latitude) || !finite(origin.Longitude) {
		origin = DefaultLocation
	}
	ranked := make([]model.RankedFacility, 0, len(facilities))
	for _, f := range facilities {
		lat, lon := facilityCoords(f)
		d := Distance(origin.Latitude, origin.Longitude, lat, lon)
		ranked = append(ranked, model.RankedFacility{
			Facility:      f,
			DistanceKm:    d,
			DistanceLabel: FormatDistance(d),
		})
	}
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].DistanceKm < ranked[j].DistanceKm
	})
	return ranked
}

func facilityCoords(f model.Facility) (float64, float64) {
	if f.Latitude == nil || f.Longitude == nil ||
		!finite(*f.Latitude) || !finite(*f.Longitude) {
		return DefaultLocation.Latitude, DefaultLocation.Longitude
	}
	return *f.Latitude, *f.Longitude
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
