package service

import (
	"context"
	"log"
	"sync"

	"github.com/nycmobility/taxi-analytics-go/internal/engine"
	"github.com/nycmobility/taxi-analytics-go/internal/models"
)

// AnalyticsService orchestrates the aggregation engine over the trip
// store. Each request gets its own population; no state is shared
// across requests beyond the read-only engine and source.
type AnalyticsService struct {
	engine *engine.Engine
	src    engine.TripSource
}

// NewAnalyticsService creates a new analytics service
func NewAnalyticsService(eng *engine.Engine, src engine.TripSource) *AnalyticsService {
	return &AnalyticsService{engine: eng, src: src}
}

func (s *AnalyticsService) population(f models.TripFilter) *engine.Population {
	return engine.NewPopulation(s.src, f)
}

// Statistics computes scalar summary statistics for the filtered population
func (s *AnalyticsService) Statistics(ctx context.Context, f models.TripFilter) (*models.OverallStats, error) {
	return s.engine.Statistics(ctx, s.population(f))
}

// TimeSeries computes the bucketed series at the requested granularity
func (s *AnalyticsService) TimeSeries(ctx context.Context, f models.TripFilter, interval string) ([]models.TimeBucket, error) {
	return s.engine.TimeSeries(ctx, s.population(f), interval)
}

// Heatmap computes the ranked pickup/dropoff zone counts
func (s *AnalyticsService) Heatmap(ctx context.Context, f models.TripFilter) (*models.HeatmapView, error) {
	return s.engine.Heatmap(ctx, s.population(f))
}

// TopRoutes computes the ranked (pickup, dropoff) pairs
func (s *AnalyticsService) TopRoutes(ctx context.Context, f models.TripFilter, limit int) ([]models.RouteStats, error) {
	return s.engine.TopRoutes(ctx, s.population(f), limit)
}

// Anomalies runs z-score outlier detection over the filtered population
func (s *AnalyticsService) Anomalies(ctx context.Context, f models.TripFilter, field string, threshold float64) (*models.AnomalyReport, error) {
	return s.engine.Anomalies(ctx, s.population(f), field, threshold)
}

// ZoneBreakdown computes the grouped statistics view by pickup zone
func (s *AnalyticsService) ZoneBreakdown(ctx context.Context, f models.TripFilter) ([]models.ZoneBucket, error) {
	return s.engine.ZoneBreakdown(ctx, s.population(f))
}

// PaymentBreakdown computes the grouped statistics view by payment type
func (s *AnalyticsService) PaymentBreakdown(ctx context.Context, f models.TripFilter) ([]models.PaymentBucket, error) {
	return s.engine.PaymentBreakdown(ctx, s.population(f))
}

// Dashboard holds all five aggregate views of one filtered population.
// A view that failed is left nil and recorded in Failed; the other
// views are still returned (graceful degradation per view).
type Dashboard struct {
	Overall    *models.OverallStats
	TimeSeries []models.TimeBucket
	Heatmap    *models.HeatmapView
	TopRoutes  []models.RouteStats
	Anomalies  *models.AnomalyReport
	Failed     map[string]string
}

// Dashboard computes the five sub-aggregations in parallel over the
// same filtered population and joins the results. The sub-aggregations
// are independent pure functions of the population, so the fan-out is
// safe by construction.
func (s *AnalyticsService) Dashboard(ctx context.Context, f models.TripFilter, interval string, routeLimit int) *Dashboard {
	d := &Dashboard{Failed: make(map[string]string)}

	var (
		wg sync.WaitGroup
		mu sync.Mutex
	)
	fail := func(view string, err error) {
		log.Printf("dashboard view %s failed: %v", view, err)
		mu.Lock()
		d.Failed[view] = err.Error()
		mu.Unlock()
	}

	wg.Add(5)
	go func() {
		defer wg.Done()
		v, err := s.Statistics(ctx, f)
		if err != nil {
			fail("statistics", err)
			return
		}
		d.Overall = v
	}()
	go func() {
		defer wg.Done()
		v, err := s.TimeSeries(ctx, f, interval)
		if err != nil {
			fail("time_series", err)
			return
		}
		d.TimeSeries = v
	}()
	go func() {
		defer wg.Done()
		v, err := s.Heatmap(ctx, f)
		if err != nil {
			fail("heatmap", err)
			return
		}
		d.Heatmap = v
	}()
	go func() {
		defer wg.Done()
		v, err := s.TopRoutes(ctx, f, routeLimit)
		if err != nil {
			fail("top_routes", err)
			return
		}
		d.TopRoutes = v
	}()
	go func() {
		defer wg.Done()
		v, err := s.Anomalies(ctx, f, "", 0)
		if err != nil {
			fail("anomalies", err)
			return
		}
		d.Anomalies = v
	}()
	wg.Wait()

	return d
}
