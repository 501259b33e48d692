package engine

import (
	"context"
	"sort"

	"github.com/nycmobility/taxi-analytics-go/internal/models"
)

// ZoneBreakdown groups the population by pickup zone with fare
// information, for the grouped statistics view. Ranked descending by
// trip count, ties by zone name.
func (e *Engine) ZoneBreakdown(ctx context.Context, pop *Population) ([]models.ZoneBucket, error) {
	type zoneAcc struct {
		count   int64
		fareSum float64
	}
	groups := make(map[int]*zoneAcc)

	err := pop.Each(ctx, func(t *models.Trip) error {
		acc := groups[t.PickupZoneID]
		if acc == nil {
			acc = &zoneAcc{}
			groups[t.PickupZoneID] = acc
		}
		acc.count++
		acc.fareSum += t.FareAmount
		return nil
	})
	if err != nil {
		return nil, err
	}

	buckets := make([]models.ZoneBucket, 0, len(groups))
	for id, acc := range groups {
		z := e.zones.Lookup(id)
		buckets = append(buckets, models.ZoneBucket{
			ZoneName:  z.ZoneName,
			Borough:   z.Borough,
			TripCount: acc.count,
			AvgFare:   acc.fareSum / float64(acc.count),
		})
	}

	sort.Slice(buckets, func(i, j int) bool {
		if buckets[i].TripCount != buckets[j].TripCount {
			return buckets[i].TripCount > buckets[j].TripCount
		}
		return buckets[i].ZoneName < buckets[j].ZoneName
	})
	return buckets, nil
}

// PaymentBreakdown groups the population by payment type, ordered by
// payment type code for determinism
func (e *Engine) PaymentBreakdown(ctx context.Context, pop *Population) ([]models.PaymentBucket, error) {
	type payAcc struct {
		count   int64
		fareSum float64
	}
	groups := make(map[int]*payAcc)

	err := pop.Each(ctx, func(t *models.Trip) error {
		acc := groups[t.PaymentType]
		if acc == nil {
			acc = &payAcc{}
			groups[t.PaymentType] = acc
		}
		acc.count++
		acc.fareSum += t.FareAmount
		return nil
	})
	if err != nil {
		return nil, err
	}

	codes := make([]int, 0, len(groups))
	for code := range groups {
		codes = append(codes, code)
	}
	sort.Ints(codes)

	buckets := make([]models.PaymentBucket, 0, len(codes))
	for _, code := range codes {
		acc := groups[code]
		buckets = append(buckets, models.PaymentBucket{
			PaymentType: models.PaymentTypeName(code),
			TripCount:   acc.count,
			AvgFare:     acc.fareSum / float64(acc.count),
		})
	}
	return buckets, nil
}
