package engine

import (
	"context"

	"github.com/nycmobility/taxi-analytics-go/internal/models"
)

// Statistics computes scalar summary statistics in a single pass.
// The speed mean only counts trips with strictly positive duration;
// such trips still count toward totals, revenue and the other means —
// the denominators differ and must not be conflated.
func (e *Engine) Statistics(ctx context.Context, pop *Population) (*models.OverallStats, error) {
	var (
		count      int64
		fareSum    float64
		distSum    float64
		durSum     float64
		speedSum   float64
		speedCount int64
	)

	err := pop.Each(ctx, func(t *models.Trip) error {
		count++
		fareSum += t.FareAmount
		distSum += t.TripDistance
		durSum += float64(t.DurationSeconds())
		if speed, ok := t.SpeedMPH(); ok {
			speedSum += speed
			speedCount++
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	stats := &models.OverallStats{
		TotalTrips:   count,
		TotalRevenue: fareSum,
	}
	// An empty population is a valid zero result, not an error
	if count > 0 {
		stats.AvgFare = fareSum / float64(count)
		stats.AvgDistance = distSum / float64(count)
		stats.AvgDuration = durSum / float64(count)
	}
	if speedCount > 0 {
		stats.AvgSpeed = speedSum / float64(speedCount)
	}

	return stats, nil
}
