package models

// OverallStats holds scalar summary statistics for a filtered population.
// Values are kept at full precision; rounding happens at the response
// formatting boundary.
type OverallStats struct {
	TotalTrips   int64
	AvgFare      float64
	AvgDistance  float64
	AvgSpeed     float64 // mean over trips with positive duration only
	AvgDuration  float64 // seconds
	TotalRevenue float64 // sum of fare amounts
}

// TimeBucket is one entry of a time-series aggregation. Day buckets carry
// a calendar date key; hour buckets carry an hour-of-day key (0-23) that
// collapses all matching days onto a single 24-slot cycle.
type TimeBucket struct {
	Date         string // "YYYY-MM-DD", day granularity only
	Hour         int    // 0-23, hour granularity only
	TripCount    int64
	AvgFare      float64
	AvgSpeed     float64
	TotalRevenue float64
}

// HeatmapEntry is a zone-level trip count with labels resolved
type HeatmapEntry struct {
	ZoneID   int
	ZoneName string
	Borough  string
	Count    int64
}

// HeatmapView groups the population by pickup and dropoff zone. Both
// sides hold the full ranked set; truncation is a presentation concern.
type HeatmapView struct {
	Pickup  []HeatmapEntry
	Dropoff []HeatmapEntry
}

// RouteStats aggregates trips sharing an ordered (pickup, dropoff)
// zone pair. DirectDistance is the crow-flight distance between zone
// centroids in miles, nil when either centroid is unknown.
type RouteStats struct {
	PickupZoneID   int
	DropoffZoneID  int
	PickupZone     string
	DropoffZone    string
	TripCount      int64
	AvgFare        float64
	AvgDistance    float64
	DirectDistance *float64
}

// ZoneBucket is a pickup-zone grouping with fare information, used by
// the grouped statistics view
type ZoneBucket struct {
	ZoneName  string
	Borough   string
	TripCount int64
	AvgFare   float64
}

// PaymentBucket is a payment-type grouping used by the grouped
// statistics view
type PaymentBucket struct {
	PaymentType string
	TripCount   int64
	AvgFare     float64
}

// Anomaly flags a single trip whose metric deviates from the population
// mean by more than the z-score threshold
type Anomaly struct {
	TripID         int64
	PickupDatetime string
	PickupZoneID   int
	DropoffZoneID  int
	FareAmount     float64
	TripDistance   float64
	TripDuration   int64
	Field          string  // metric that tripped the threshold
	Value          float64 // the offending metric value
	Score          float64 // absolute z-score
}

// AnomalyReport is the full anomaly detection result before the
// formatter applies any limit
type AnomalyReport struct {
	Anomalies []Anomaly
	Field     string // requested field, empty when all metrics were checked
	Threshold float64
}
