// Package engine implements the aggregation engine: five independent
// sub-aggregations (statistics, time-series, heatmap, top-routes,
// anomalies) computed over one canonical filtered population.
package engine

import (
	"context"

	"github.com/nycmobility/taxi-analytics-go/internal/models"
	"github.com/nycmobility/taxi-analytics-go/internal/zones"
)

// DefaultAnomalyThreshold is the z-score cutoff used when none is
// configured or requested
const DefaultAnomalyThreshold = 3.0

// TripSource streams the trips matching a filter in a stable order.
// Implemented by repository.TripRepository; tests substitute a
// slice-backed stub.
type TripSource interface {
	ScanTrips(ctx context.Context, f models.TripFilter, fn func(*models.Trip) error) error
}

// Population is one request's filtered trip population: a lazy
// composition of source and filter. Each sub-aggregation streams the
// same predicate independently instead of re-filtering or materializing
// the whole set, and scans of the same population against an unchanged
// source are deterministic.
type Population struct {
	src    TripSource
	filter models.TripFilter
}

// NewPopulation binds a filter to a trip source
func NewPopulation(src TripSource, f models.TripFilter) *Population {
	return &Population{src: src, filter: f}
}

// Each streams every trip in the population through fn
func (p *Population) Each(ctx context.Context, fn func(*models.Trip) error) error {
	return p.src.ScanTrips(ctx, p.filter, fn)
}

// Engine computes aggregate views over filtered populations. It holds
// no per-request state, so one instance is safely shared by concurrent
// requests.
type Engine struct {
	zones            *zones.Resolver
	anomalyThreshold float64
}

// New creates an aggregation engine. threshold <= 0 selects the default
// anomaly z-score cutoff.
func New(resolver *zones.Resolver, threshold float64) *Engine {
	if threshold <= 0 {
		threshold = DefaultAnomalyThreshold
	}
	return &Engine{zones: resolver, anomalyThreshold: threshold}
}
