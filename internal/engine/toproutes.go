package engine

import (
	"context"
	"sort"

	"github.com/nycmobility/taxi-analytics-go/internal/models"
	"github.com/nycmobility/taxi-analytics-go/internal/spatial"
)

type routeKey struct {
	pickup  int
	dropoff int
}

type routeAcc struct {
	count   int64
	fareSum float64
	distSum float64
}

// TopRoutes groups the population by the ordered (pickup, dropoff) zone
// pair and ranks pairs descending by trip count, ties broken by
// ascending pickup then dropoff zone id. Ranking is computed over the
// full population before truncation, so the returned prefix is stable
// under limit changes. limit <= 0 returns the full ranking.
func (e *Engine) TopRoutes(ctx context.Context, pop *Population, limit int) ([]models.RouteStats, error) {
	routes := make(map[routeKey]*routeAcc)

	err := pop.Each(ctx, func(t *models.Trip) error {
		key := routeKey{pickup: t.PickupZoneID, dropoff: t.DropoffZoneID}
		acc := routes[key]
		if acc == nil {
			acc = &routeAcc{}
			routes[key] = acc
		}
		acc.count++
		acc.fareSum += t.FareAmount
		acc.distSum += t.TripDistance
		return nil
	})
	if err != nil {
		return nil, err
	}

	ranked := make([]models.RouteStats, 0, len(routes))
	for key, acc := range routes {
		pz := e.zones.Lookup(key.pickup)
		dz := e.zones.Lookup(key.dropoff)
		r := models.RouteStats{
			PickupZoneID:  key.pickup,
			DropoffZoneID: key.dropoff,
			PickupZone:    pz.ZoneName,
			DropoffZone:   dz.ZoneName,
			TripCount:     acc.count,
			AvgFare:       acc.fareSum / float64(acc.count),
			AvgDistance:   acc.distSum / float64(acc.count),
		}
		if lat1, lon1, ok := e.zones.Centroid(key.pickup); ok {
			if lat2, lon2, ok := e.zones.Centroid(key.dropoff); ok {
				d := spatial.HaversineMiles(lat1, lon1, lat2, lon2)
				r.DirectDistance = &d
			}
		}
		ranked = append(ranked, r)
	}

	sort.Slice(ranked, func(i, j int) bool {
		if ranked[i].TripCount != ranked[j].TripCount {
			return ranked[i].TripCount > ranked[j].TripCount
		}
		if ranked[i].PickupZoneID != ranked[j].PickupZoneID {
			return ranked[i].PickupZoneID < ranked[j].PickupZoneID
		}
		return ranked[i].DropoffZoneID < ranked[j].DropoffZoneID
	})

	if limit > 0 && len(ranked) > limit {
		ranked = ranked[:limit]
	}
	return ranked, nil
}
