package engine

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/nycmobility/taxi-analytics-go/internal/models"
	"github.com/nycmobility/taxi-analytics-go/internal/stats"
)

// Metric fields the anomaly detector understands
const (
	FieldFare     = "fare_amount"
	FieldDistance = "trip_distance"
	FieldDuration = "trip_duration"
	FieldSpeed    = "trip_speed"
)

// defaultAnomalyFields are checked when no explicit field is requested
var defaultAnomalyFields = []string{FieldFare, FieldDistance, FieldDuration}

var validAnomalyFields = map[string]bool{
	FieldFare:     true,
	FieldDistance: true,
	FieldDuration: true,
	FieldSpeed:    true,
}

func metricValue(t *models.Trip, field string) (float64, bool) {
	switch field {
	case FieldFare:
		return t.FareAmount, true
	case FieldDistance:
		return t.TripDistance, true
	case FieldDuration:
		return float64(t.DurationSeconds()), true
	case FieldSpeed:
		return t.SpeedMPH()
	}
	return 0, false
}

// Anomalies flags trips whose metric value deviates from the population
// mean by more than threshold standard deviations. This is the only
// two-pass sub-aggregation: the first pass accumulates mean and variance
// with Welford's algorithm, the second re-scans the same population to
// test each trip against the now-known thresholds. field narrows
// detection to one metric; empty checks fare, distance and duration and
// reports each trip once under its worst-deviating metric. threshold <=
// 0 selects the configured default. Fields with zero variance report no
// anomalies.
func (e *Engine) Anomalies(ctx context.Context, pop *Population, field string, threshold float64) (*models.AnomalyReport, error) {
	if threshold <= 0 {
		threshold = e.anomalyThreshold
	}

	fields := defaultAnomalyFields
	if field != "" {
		if !validAnomalyFields[field] {
			return nil, fmt.Errorf("unsupported anomaly field: %s", field)
		}
		fields = []string{field}
	}

	// First pass: population mean and variance per metric
	accs := make(map[string]*stats.Welford, len(fields))
	for _, f := range fields {
		accs[f] = &stats.Welford{}
	}
	err := pop.Each(ctx, func(t *models.Trip) error {
		for _, f := range fields {
			if v, ok := metricValue(t, f); ok {
				accs[f].Add(v)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	type fieldStats struct {
		mean float64
		std  float64
	}
	thresholds := make(map[string]fieldStats, len(fields))
	for f, acc := range accs {
		thresholds[f] = fieldStats{mean: acc.Mean(), std: acc.StdDev()}
	}

	// Second pass: score every trip against the thresholds
	report := &models.AnomalyReport{
		Anomalies: []models.Anomaly{},
		Field:     field,
		Threshold: threshold,
	}
	err = pop.Each(ctx, func(t *models.Trip) error {
		var worst *models.Anomaly
		for _, f := range fields {
			v, ok := metricValue(t, f)
			if !ok {
				continue
			}
			fs := thresholds[f]
			if fs.std == 0 {
				continue
			}
			score := math.Abs(stats.ZScore(v, fs.mean, fs.std))
			if score <= threshold {
				continue
			}
			if worst == nil || score > worst.Score {
				worst = &models.Anomaly{Field: f, Value: v, Score: score}
			}
		}
		if worst != nil {
			worst.TripID = t.ID
			worst.PickupDatetime = t.Pickup().Format(time.RFC3339)
			worst.PickupZoneID = t.PickupZoneID
			worst.DropoffZoneID = t.DropoffZoneID
			worst.FareAmount = t.FareAmount
			worst.TripDistance = t.TripDistance
			worst.TripDuration = t.DurationSeconds()
			report.Anomalies = append(report.Anomalies, *worst)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return report, nil
}
