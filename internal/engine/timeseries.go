package engine

import (
	"context"
	"fmt"
	"sort"

	"github.com/nycmobility/taxi-analytics-go/internal/models"
)

// Time-series granularities
const (
	IntervalDay  = "day"
	IntervalHour = "hour"
)

type bucketAcc struct {
	count      int64
	fareSum    float64
	speedSum   float64
	speedCount int64
	revenue    float64
}

func (b *bucketAcc) add(t *models.Trip) {
	b.count++
	b.fareSum += t.FareAmount
	b.revenue += t.FareAmount
	if speed, ok := t.SpeedMPH(); ok {
		b.speedSum += speed
		b.speedCount++
	}
}

func (b *bucketAcc) fill(out *models.TimeBucket) {
	out.TripCount = b.count
	out.TotalRevenue = b.revenue
	if b.count > 0 {
		out.AvgFare = b.fareSum / float64(b.count)
	}
	if b.speedCount > 0 {
		out.AvgSpeed = b.speedSum / float64(b.speedCount)
	}
}

// TimeSeries buckets the population by the pickup time truncated to the
// requested granularity. Day buckets form a sparse calendar timeline:
// only days with at least one trip are emitted, ascending by date. Hour
// buckets collapse all matching days onto a dense 24-slot cycle with
// every hour present, zero-filled, so hourly charts have no gaps. The
// asymmetry is intentional and relied upon by chart consumers.
func (e *Engine) TimeSeries(ctx context.Context, pop *Population, interval string) ([]models.TimeBucket, error) {
	switch interval {
	case IntervalDay:
		return e.daySeries(ctx, pop)
	case IntervalHour:
		return e.hourSeries(ctx, pop)
	default:
		return nil, fmt.Errorf("unsupported interval: %s", interval)
	}
}

func (e *Engine) daySeries(ctx context.Context, pop *Population) ([]models.TimeBucket, error) {
	days := make(map[string]*bucketAcc)

	err := pop.Each(ctx, func(t *models.Trip) error {
		key := t.Pickup().Format("2006-01-02")
		acc := days[key]
		if acc == nil {
			acc = &bucketAcc{}
			days[key] = acc
		}
		acc.add(t)
		return nil
	})
	if err != nil {
		return nil, err
	}

	keys := make([]string, 0, len(days))
	for k := range days {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	series := make([]models.TimeBucket, 0, len(keys))
	for _, k := range keys {
		b := models.TimeBucket{Date: k}
		days[k].fill(&b)
		series = append(series, b)
	}
	return series, nil
}

func (e *Engine) hourSeries(ctx context.Context, pop *Population) ([]models.TimeBucket, error) {
	var hours [24]bucketAcc

	err := pop.Each(ctx, func(t *models.Trip) error {
		hours[t.Pickup().Hour()].add(t)
		return nil
	})
	if err != nil {
		return nil, err
	}

	series := make([]models.TimeBucket, 24)
	for h := range hours {
		series[h].Hour = h
		hours[h].fill(&series[h])
	}
	return series, nil
}
