package geo

import (
	"math"
	"sort"

	"github.com/vaxxnz/vaxx-web/internal/models"
)

const earthRadiusKm = 6371.0

// DistanceKm is the great-circle distance between two coordinates.
func DistanceKm(from, to models.Coordinate) float64 {
	lat1 := toRadians(from.Lat)
	lat2 := toRadians(to.Lat)
	dLat := lat2 - lat1
	dLng := toRadians(to.Lng - from.Lng)

	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(lat1)*math.Cos(lat2)*math.Sin(dLng/2)*math.Sin(dLng/2)
	return earthRadiusKm * 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))
}

func toRadians(deg float64) float64 {
	return deg * math.Pi / 180
}

// Nearby keeps the pairs within radiusKm of origin, closest first.
// A non-positive radius keeps everything.
func Nearby(pairs []models.LocationSlotsPair, origin models.Coordinate, radiusKm int) []models.LocationSlotsPair {
	type ranked struct {
		pair     models.LocationSlotsPair
		distance float64
	}

	kept := make([]ranked, 0, len(pairs))
	for _, pair := range pairs {
		d := DistanceKm(origin, pair.Location.Location)
		if radiusKm > 0 && d > float64(radiusKm) {
			continue
		}
		kept = append(kept, ranked{pair: pair, distance: d})
	}
	sort.SliceStable(kept, func(i, j int) bool {
		return kept[i].distance < kept[j].distance
	})

	out := make([]models.LocationSlotsPair, 0, len(kept))
	for _, r := range kept {
		out = append(out, r.pair)
	}
	return out
}
