package engine

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nycmobility/taxi-analytics-go/internal/models"
	"github.com/nycmobility/taxi-analytics-go/internal/zones"
)

// sliceSource is a slice-backed TripSource applying the same canonical
// predicate semantics as the repository scan, in stable id order.
type sliceSource struct {
	trips []models.Trip
	err   error
}

func (s *sliceSource) ScanTrips(ctx context.Context, f models.TripFilter, fn func(*models.Trip) error) error {
	if s.err != nil {
		return s.err
	}
	if f.Unsatisfiable() {
		return nil
	}
	for i := range s.trips {
		t := s.trips[i]
		if !matches(&t, f) {
			continue
		}
		if err := fn(&t); err != nil {
			return err
		}
	}
	return nil
}

func matches(t *models.Trip, f models.TripFilter) bool {
	if t.DropoffTime < t.PickupTime {
		return false
	}
	if f.StartDate != nil && t.PickupTime < f.StartDate.Unix() {
		return false
	}
	if f.EndDate != nil && t.PickupTime > f.EndDate.Unix() {
		return false
	}
	if f.MinFare != nil && t.FareAmount < *f.MinFare {
		return false
	}
	if f.MaxFare != nil && t.FareAmount > *f.MaxFare {
		return false
	}
	if f.MinDistance != nil && t.TripDistance < *f.MinDistance {
		return false
	}
	if f.MaxDistance != nil && t.TripDistance > *f.MaxDistance {
		return false
	}
	if f.PickupZoneID != nil && t.PickupZoneID != *f.PickupZoneID {
		return false
	}
	if f.DropoffZoneID != nil && t.DropoffZoneID != *f.DropoffZoneID {
		return false
	}
	if f.PassengerCount != nil && t.PassengerCount != *f.PassengerCount {
		return false
	}
	return true
}

type stubZoneStore struct {
	zones []models.Zone
}

func (s *stubZoneStore) LoadZones(ctx context.Context) ([]models.Zone, error) {
	return s.zones, nil
}

func ptr(v float64) *float64 { return &v }

func testResolver(t *testing.T) *zones.Resolver {
	t.Helper()
	r := zones.NewResolver()
	store := &stubZoneStore{zones: []models.Zone{
		{ZoneID: 1, ZoneName: "Midtown Center", Borough: "Manhattan", CentroidLat: ptr(40.7549), CentroidLon: ptr(-73.9797)},
		{ZoneID: 2, ZoneName: "JFK Airport", Borough: "Queens", CentroidLat: ptr(40.6413), CentroidLon: ptr(-73.7781)},
		{ZoneID: 3, ZoneName: "Union Sq", Borough: "Manhattan"},
	}}
	require.NoError(t, r.Load(context.Background(), store))
	return r
}

func at(day, hour int) int64 {
	return time.Date(2024, 1, day, hour, 0, 0, 0, time.UTC).Unix()
}

// The three-trip scenario: fares 10/20/30, distances 2/4/6, durations
// 600s/1200s/0s.
func scenarioTrips() []models.Trip {
	return []models.Trip{
		{ID: 1, PickupTime: at(1, 10), DropoffTime: at(1, 10) + 600, PickupZoneID: 1, DropoffZoneID: 2, PassengerCount: 1, TripDistance: 2, FareAmount: 10, PaymentType: models.PaymentCreditCard},
		{ID: 2, PickupTime: at(2, 11), DropoffTime: at(2, 11) + 1200, PickupZoneID: 1, DropoffZoneID: 2, PassengerCount: 2, TripDistance: 4, FareAmount: 20, PaymentType: models.PaymentCash},
		{ID: 3, PickupTime: at(2, 23), DropoffTime: at(2, 23), PickupZoneID: 2, DropoffZoneID: 1, PassengerCount: 1, TripDistance: 6, FareAmount: 30, PaymentType: models.PaymentCreditCard},
	}
}

func newTestEngine(t *testing.T, trips []models.Trip) (*Engine, *Population) {
	t.Helper()
	eng := New(testResolver(t), 0)
	pop := NewPopulation(&sliceSource{trips: trips}, models.TripFilter{})
	return eng, pop
}

func TestStatisticsScenario(t *testing.T) {
	eng, pop := newTestEngine(t, scenarioTrips())

	stats, err := eng.Statistics(context.Background(), pop)
	require.NoError(t, err)

	assert.Equal(t, int64(3), stats.TotalTrips)
	assert.InDelta(t, 20.0, stats.AvgFare, 1e-9)
	assert.InDelta(t, 4.0, stats.AvgDistance, 1e-9)
	assert.InDelta(t, 60.0, stats.TotalRevenue, 1e-9)
	assert.InDelta(t, 600.0, stats.AvgDuration, 1e-9)
	// Speed mean only covers the two trips with positive duration
	// (12 mph and 12 mph); the zero-duration trip still counts above.
	assert.InDelta(t, 12.0, stats.AvgSpeed, 1e-9)
}

func TestStatisticsMinFareFilter(t *testing.T) {
	eng := New(testResolver(t), 0)
	pop := NewPopulation(&sliceSource{trips: scenarioTrips()}, models.TripFilter{MinFare: ptr(25)})

	stats, err := eng.Statistics(context.Background(), pop)
	require.NoError(t, err)

	assert.Equal(t, int64(1), stats.TotalTrips)
	assert.InDelta(t, 30.0, stats.TotalRevenue, 1e-9)
}

func TestStatisticsEmptyPopulation(t *testing.T) {
	eng, _ := newTestEngine(t, nil)
	pop := NewPopulation(&sliceSource{}, models.TripFilter{})

	stats, err := eng.Statistics(context.Background(), pop)
	require.NoError(t, err)

	assert.Equal(t, int64(0), stats.TotalTrips)
	assert.Equal(t, 0.0, stats.AvgFare)
	assert.Equal(t, 0.0, stats.AvgDistance)
	assert.Equal(t, 0.0, stats.AvgSpeed)
	assert.Equal(t, 0.0, stats.AvgDuration)
	assert.Equal(t, 0.0, stats.TotalRevenue)
}

func TestStatisticsExcludesNegativeDurationTrips(t *testing.T) {
	trips := scenarioTrips()
	trips = append(trips, models.Trip{
		ID: 4, PickupTime: at(3, 8), DropoffTime: at(3, 8) - 60,
		PickupZoneID: 1, DropoffZoneID: 2, TripDistance: 1, FareAmount: 100,
	})
	eng, pop := newTestEngine(t, trips)

	stats, err := eng.Statistics(context.Background(), pop)
	require.NoError(t, err)

	// The record with dropoff before pickup is excluded by the guard
	assert.Equal(t, int64(3), stats.TotalTrips)
	assert.InDelta(t, 60.0, stats.TotalRevenue, 1e-9)
}

func TestDaySeriesIsSparse(t *testing.T) {
	eng, pop := newTestEngine(t, scenarioTrips())

	series, err := eng.TimeSeries(context.Background(), pop, IntervalDay)
	require.NoError(t, err)

	// Only days with at least one trip, ascending by date
	require.Len(t, series, 2)
	assert.Equal(t, "2024-01-01", series[0].Date)
	assert.Equal(t, int64(1), series[0].TripCount)
	assert.Equal(t, "2024-01-02", series[1].Date)
	assert.Equal(t, int64(2), series[1].TripCount)
}

func TestHourSeriesIsDense24(t *testing.T) {
	eng, pop := newTestEngine(t, scenarioTrips())

	series, err := eng.TimeSeries(context.Background(), pop, IntervalHour)
	require.NoError(t, err)

	require.Len(t, series, 24)
	for h, b := range series {
		assert.Equal(t, h, b.Hour)
	}
	assert.Equal(t, int64(1), series[10].TripCount)
	assert.Equal(t, int64(1), series[11].TripCount)
	assert.Equal(t, int64(1), series[23].TripCount)
	// Hours without trips are still emitted, zero-filled
	assert.Equal(t, int64(0), series[0].TripCount)
	assert.Equal(t, 0.0, series[0].AvgFare)
}

func TestHourSeriesDense24OnEmptyPopulation(t *testing.T) {
	eng, _ := newTestEngine(t, nil)
	pop := NewPopulation(&sliceSource{}, models.TripFilter{})

	series, err := eng.TimeSeries(context.Background(), pop, IntervalHour)
	require.NoError(t, err)
	require.Len(t, series, 24)
}

func TestTimeSeriesRejectsUnknownInterval(t *testing.T) {
	eng, pop := newTestEngine(t, scenarioTrips())
	_, err := eng.TimeSeries(context.Background(), pop, "week")
	assert.Error(t, err)
}

func TestHeatmapRankingAndLabels(t *testing.T) {
	eng, pop := newTestEngine(t, scenarioTrips())

	view, err := eng.Heatmap(context.Background(), pop)
	require.NoError(t, err)

	require.Len(t, view.Pickup, 2)
	assert.Equal(t, 1, view.Pickup[0].ZoneID)
	assert.Equal(t, "Midtown Center", view.Pickup[0].ZoneName)
	assert.Equal(t, "Manhattan", view.Pickup[0].Borough)
	assert.Equal(t, int64(2), view.Pickup[0].Count)
	assert.Equal(t, 2, view.Pickup[1].ZoneID)
	assert.Equal(t, int64(1), view.Pickup[1].Count)

	require.Len(t, view.Dropoff, 2)
	assert.Equal(t, 2, view.Dropoff[0].ZoneID)
	assert.Equal(t, int64(2), view.Dropoff[0].Count)
}

func TestHeatmapTieBreaksByZoneID(t *testing.T) {
	trips := []models.Trip{
		{ID: 1, PickupTime: at(1, 9), DropoffTime: at(1, 9) + 60, PickupZoneID: 3, DropoffZoneID: 1},
		{ID: 2, PickupTime: at(1, 9), DropoffTime: at(1, 9) + 60, PickupZoneID: 1, DropoffZoneID: 3},
	}
	eng, pop := newTestEngine(t, trips)

	view, err := eng.Heatmap(context.Background(), pop)
	require.NoError(t, err)

	require.Len(t, view.Pickup, 2)
	assert.Equal(t, 1, view.Pickup[0].ZoneID)
	assert.Equal(t, 3, view.Pickup[1].ZoneID)
}

func TestHeatmapUnknownZoneGetsFallbackLabel(t *testing.T) {
	trips := []models.Trip{
		{ID: 1, PickupTime: at(1, 9), DropoffTime: at(1, 9) + 60, PickupZoneID: 999, DropoffZoneID: 1},
	}
	eng, pop := newTestEngine(t, trips)

	view, err := eng.Heatmap(context.Background(), pop)
	require.NoError(t, err)

	require.Len(t, view.Pickup, 1)
	assert.Equal(t, 999, view.Pickup[0].ZoneID)
	assert.Equal(t, zones.FallbackLabel, view.Pickup[0].ZoneName)
	assert.Equal(t, zones.FallbackLabel, view.Pickup[0].Borough)
}

func TestTopRoutesGroupingAndRanking(t *testing.T) {
	eng, pop := newTestEngine(t, scenarioTrips())

	routes, err := eng.TopRoutes(context.Background(), pop, 0)
	require.NoError(t, err)

	require.Len(t, routes, 2)
	assert.Equal(t, 1, routes[0].PickupZoneID)
	assert.Equal(t, 2, routes[0].DropoffZoneID)
	assert.Equal(t, "Midtown Center", routes[0].PickupZone)
	assert.Equal(t, "JFK Airport", routes[0].DropoffZone)
	assert.Equal(t, int64(2), routes[0].TripCount)
	assert.InDelta(t, 15.0, routes[0].AvgFare, 1e-9)
	assert.InDelta(t, 3.0, routes[0].AvgDistance, 1e-9)

	// Both endpoint zones carry centroids, so the crow-flight distance
	// is attached (Midtown to JFK is roughly 13 miles)
	require.NotNil(t, routes[0].DirectDistance)
	assert.InDelta(t, 13.2, *routes[0].DirectDistance, 0.5)

	assert.Equal(t, int64(1), routes[1].TripCount)
}

func TestTopRoutesPrefixStableUnderLimit(t *testing.T) {
	trips := make([]models.Trip, 0, 20)
	id := int64(1)
	for pz := 1; pz <= 4; pz++ {
		for n := 0; n < pz; n++ {
			trips = append(trips, models.Trip{
				ID: id, PickupTime: at(1, 9), DropoffTime: at(1, 9) + 300,
				PickupZoneID: pz, DropoffZoneID: 1, TripDistance: 1, FareAmount: 10,
			})
			id++
		}
	}
	eng, _ := newTestEngine(t, trips)
	src := &sliceSource{trips: trips}
	ctx := context.Background()

	top3, err := eng.TopRoutes(ctx, NewPopulation(src, models.TripFilter{}), 3)
	require.NoError(t, err)
	top10, err := eng.TopRoutes(ctx, NewPopulation(src, models.TripFilter{}), 10)
	require.NoError(t, err)

	require.Len(t, top3, 3)
	require.Len(t, top10, 4)
	assert.Equal(t, top10[:3], top3)
}

func TestTopRoutesMissingCentroidOmitsDirectDistance(t *testing.T) {
	trips := []models.Trip{
		{ID: 1, PickupTime: at(1, 9), DropoffTime: at(1, 9) + 300, PickupZoneID: 1, DropoffZoneID: 3, TripDistance: 2, FareAmount: 9},
	}
	eng, pop := newTestEngine(t, trips)

	routes, err := eng.TopRoutes(context.Background(), pop, 0)
	require.NoError(t, err)
	require.Len(t, routes, 1)
	assert.Nil(t, routes[0].DirectDistance)
}

func TestViewsAgreeOnPopulationCounts(t *testing.T) {
	trips := scenarioTrips()
	trips = append(trips,
		models.Trip{ID: 4, PickupTime: at(5, 7), DropoffTime: at(5, 7) + 900, PickupZoneID: 3, DropoffZoneID: 3, TripDistance: 1.2, FareAmount: 8.5},
		models.Trip{ID: 5, PickupTime: at(5, 19), DropoffTime: at(5, 19) + 1800, PickupZoneID: 2, DropoffZoneID: 3, TripDistance: 7.1, FareAmount: 33},
	)
	eng, _ := newTestEngine(t, trips)
	src := &sliceSource{trips: trips}
	ctx := context.Background()
	f := models.TripFilter{}

	stats, err := eng.Statistics(ctx, NewPopulation(src, f))
	require.NoError(t, err)
	days, err := eng.TimeSeries(ctx, NewPopulation(src, f), IntervalDay)
	require.NoError(t, err)
	heat, err := eng.Heatmap(ctx, NewPopulation(src, f))
	require.NoError(t, err)
	routes, err := eng.TopRoutes(ctx, NewPopulation(src, f), 0)
	require.NoError(t, err)

	var dayTotal, pickupTotal, routeTotal int64
	for _, b := range days {
		dayTotal += b.TripCount
	}
	for _, e := range heat.Pickup {
		pickupTotal += e.Count
	}
	for _, r := range routes {
		routeTotal += r.TripCount
	}

	assert.Equal(t, stats.TotalTrips, dayTotal)
	assert.Equal(t, stats.TotalTrips, pickupTotal)
	assert.Equal(t, stats.TotalTrips, routeTotal)
}

func TestAggregationIsIdempotent(t *testing.T) {
	eng, _ := newTestEngine(t, scenarioTrips())
	src := &sliceSource{trips: scenarioTrips()}
	ctx := context.Background()
	f := models.TripFilter{MinFare: ptr(5)}

	first, err := eng.Statistics(ctx, NewPopulation(src, f))
	require.NoError(t, err)
	second, err := eng.Statistics(ctx, NewPopulation(src, f))
	require.NoError(t, err)
	assert.Equal(t, first, second)

	routes1, err := eng.TopRoutes(ctx, NewPopulation(src, f), 0)
	require.NoError(t, err)
	routes2, err := eng.TopRoutes(ctx, NewPopulation(src, f), 0)
	require.NoError(t, err)
	assert.Equal(t, routes1, routes2)
}

func TestAnomaliesFlagsOutlier(t *testing.T) {
	trips := make([]models.Trip, 0, 21)
	for i := 0; i < 20; i++ {
		trips = append(trips, models.Trip{
			ID: int64(i + 1), PickupTime: at(1, 9), DropoffTime: at(1, 9) + 600,
			PickupZoneID: 1, DropoffZoneID: 2, TripDistance: 2 + float64(i%3)*0.1,
			FareAmount: 10 + float64(i%5)*0.2,
		})
	}
	trips = append(trips, models.Trip{
		ID: 21, PickupTime: at(1, 12), DropoffTime: at(1, 12) + 600,
		PickupZoneID: 1, DropoffZoneID: 2, TripDistance: 2, FareAmount: 500,
	})
	eng, pop := newTestEngine(t, trips)

	report, err := eng.Anomalies(context.Background(), pop, FieldFare, 3.0)
	require.NoError(t, err)

	require.Len(t, report.Anomalies, 1)
	a := report.Anomalies[0]
	assert.Equal(t, int64(21), a.TripID)
	assert.Equal(t, FieldFare, a.Field)
	assert.Equal(t, 500.0, a.Value)
	assert.Greater(t, a.Score, 3.0)
	assert.Equal(t, 3.0, report.Threshold)
}

func TestAnomaliesConstantPopulationReportsNone(t *testing.T) {
	trips := make([]models.Trip, 0, 10)
	for i := 0; i < 10; i++ {
		trips = append(trips, models.Trip{
			ID: int64(i + 1), PickupTime: at(1, 9), DropoffTime: at(1, 9) + 600,
			PickupZoneID: 1, DropoffZoneID: 2, TripDistance: 2, FareAmount: 10,
		})
	}
	eng, pop := newTestEngine(t, trips)

	report, err := eng.Anomalies(context.Background(), pop, "", 0)
	require.NoError(t, err)
	assert.Empty(t, report.Anomalies)
}

func TestAnomaliesEmptyPopulation(t *testing.T) {
	eng, _ := newTestEngine(t, nil)
	pop := NewPopulation(&sliceSource{}, models.TripFilter{})

	report, err := eng.Anomalies(context.Background(), pop, "", 0)
	require.NoError(t, err)
	assert.Empty(t, report.Anomalies)
}

func TestAnomaliesRejectsUnknownField(t *testing.T) {
	eng, pop := newTestEngine(t, scenarioTrips())
	_, err := eng.Anomalies(context.Background(), pop, "tip_amount", 0)
	assert.Error(t, err)
}

func TestAnomaliesPropagatesSourceError(t *testing.T) {
	eng, _ := newTestEngine(t, nil)
	pop := NewPopulation(&sliceSource{err: errors.New("store down")}, models.TripFilter{})

	_, err := eng.Anomalies(context.Background(), pop, "", 0)
	assert.Error(t, err)
}

func TestPaymentBreakdown(t *testing.T) {
	eng, pop := newTestEngine(t, scenarioTrips())

	buckets, err := eng.PaymentBreakdown(context.Background(), pop)
	require.NoError(t, err)

	require.Len(t, buckets, 2)
	assert.Equal(t, "Credit card", buckets[0].PaymentType)
	assert.Equal(t, int64(2), buckets[0].TripCount)
	assert.InDelta(t, 20.0, buckets[0].AvgFare, 1e-9)
	assert.Equal(t, "Cash", buckets[1].PaymentType)
	assert.Equal(t, int64(1), buckets[1].TripCount)
}

func TestZoneBreakdown(t *testing.T) {
	eng, pop := newTestEngine(t, scenarioTrips())

	buckets, err := eng.ZoneBreakdown(context.Background(), pop)
	require.NoError(t, err)

	require.Len(t, buckets, 2)
	assert.Equal(t, "Midtown Center", buckets[0].ZoneName)
	assert.Equal(t, int64(2), buckets[0].TripCount)
	assert.InDelta(t, 15.0, buckets[0].AvgFare, 1e-9)
}
