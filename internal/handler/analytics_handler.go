package handler

import (
	"math"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/nycmobility/taxi-analytics-go/internal/filter"
	"github.com/nycmobility/taxi-analytics-go/internal/models"
	"github.com/nycmobility/taxi-analytics-go/internal/service"
	"github.com/nycmobility/taxi-analytics-go/internal/zones"
	"github.com/nycmobility/taxi-analytics-go/pkg/response"
)

// Presentation defaults. Truncation happens here, never in the engine.
const (
	defaultHeatmapLimit = 10
	defaultRouteLimit   = 10
	defaultAnomalyLimit = 100
	zoneBreakdownLimit  = 20
)

// AnalyticsHandler handles HTTP requests for the aggregate views
type AnalyticsHandler struct {
	analytics *service.AnalyticsService
	zones     *zones.Resolver
}

// NewAnalyticsHandler creates a new analytics handler
func NewAnalyticsHandler(analytics *service.AnalyticsService, resolver *zones.Resolver) *AnalyticsHandler {
	return &AnalyticsHandler{analytics: analytics, zones: resolver}
}

// round2 rounds to two decimal places. The engine keeps full precision;
// rounding is applied only at this formatting boundary.
func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

// queryInt parses an integer query parameter, falling back to def on
// absent or malformed values
func queryInt(c *gin.Context, name string, def int) int {
	v, err := strconv.Atoi(c.Query(name))
	if err != nil {
		return def
	}
	return v
}

func formatOverall(s *models.OverallStats) gin.H {
	return gin.H{
		"total_trips":   s.TotalTrips,
		"avg_fare":      round2(s.AvgFare),
		"avg_distance":  round2(s.AvgDistance),
		"avg_speed":     round2(s.AvgSpeed),
		"avg_duration":  round2(s.AvgDuration),
		"total_revenue": round2(s.TotalRevenue),
	}
}

func formatTimeSeries(buckets []models.TimeBucket, interval string) []gin.H {
	out := make([]gin.H, 0, len(buckets))
	for _, b := range buckets {
		entry := gin.H{
			"trip_count":    b.TripCount,
			"avg_fare":      round2(b.AvgFare),
			"avg_speed":     round2(b.AvgSpeed),
			"total_revenue": round2(b.TotalRevenue),
		}
		if interval == "hour" {
			entry["hour"] = b.Hour
		} else {
			entry["date"] = b.Date
		}
		out = append(out, entry)
	}
	return out
}

func formatHeatmapSide(entries []models.HeatmapEntry, limit int) []gin.H {
	if limit > 0 && len(entries) > limit {
		entries = entries[:limit]
	}
	out := make([]gin.H, 0, len(entries))
	for _, e := range entries {
		out = append(out, gin.H{
			"zone_id":   e.ZoneID,
			"zone_name": e.ZoneName,
			"borough":   e.Borough,
			"count":     e.Count,
		})
	}
	return out
}

func formatRoutes(routes []models.RouteStats) []gin.H {
	out := make([]gin.H, 0, len(routes))
	for _, r := range routes {
		entry := gin.H{
			"pickup_zone_id":  r.PickupZoneID,
			"dropoff_zone_id": r.DropoffZoneID,
			"pickup_zone":     r.PickupZone,
			"dropoff_zone":    r.DropoffZone,
			"trip_count":      r.TripCount,
			"avg_fare":        round2(r.AvgFare),
			"avg_distance":    round2(r.AvgDistance),
		}
		if r.DirectDistance != nil {
			entry["direct_distance"] = round2(*r.DirectDistance)
		}
		out = append(out, entry)
	}
	return out
}

func (h *AnalyticsHandler) formatAnomalies(anomalies []models.Anomaly, limit int) []gin.H {
	if limit > 0 && len(anomalies) > limit {
		anomalies = anomalies[:limit]
	}
	out := make([]gin.H, 0, len(anomalies))
	for _, a := range anomalies {
		out = append(out, gin.H{
			"trip_id":         a.TripID,
			"pickup_datetime": a.PickupDatetime,
			"pickup_zone":     h.zones.Lookup(a.PickupZoneID).ZoneName,
			"dropoff_zone":    h.zones.Lookup(a.DropoffZoneID).ZoneName,
			"fare_amount":     round2(a.FareAmount),
			"trip_distance":   round2(a.TripDistance),
			"trip_duration":   a.TripDuration,
			"anomaly_field":   a.Field,
			"anomaly_value":   round2(a.Value),
			"anomaly_score":   round2(a.Score),
		})
	}
	return out
}

// GetStatistics handles GET /api/statistics
func (h *AnalyticsHandler) GetStatistics(c *gin.Context) {
	f := filter.Parse(c.Request.URL.Query())
	ctx := c.Request.Context()

	stats, err := h.analytics.Statistics(ctx, f)
	if err != nil {
		response.ServiceUnavailable(c, "failed to compute statistics")
		return
	}

	grouped := []gin.H{}
	switch c.Query("group_by") {
	case "hour":
		buckets, err := h.analytics.TimeSeries(ctx, f, "hour")
		if err != nil {
			response.ServiceUnavailable(c, "failed to compute hourly breakdown")
			return
		}
		for _, b := range buckets {
			grouped = append(grouped, gin.H{
				"hour":       b.Hour,
				"trip_count": b.TripCount,
				"avg_fare":   round2(b.AvgFare),
				"avg_speed":  round2(b.AvgSpeed),
			})
		}
	case "zone":
		buckets, err := h.analytics.ZoneBreakdown(ctx, f)
		if err != nil {
			response.ServiceUnavailable(c, "failed to compute zone breakdown")
			return
		}
		if len(buckets) > zoneBreakdownLimit {
			buckets = buckets[:zoneBreakdownLimit]
		}
		for _, b := range buckets {
			grouped = append(grouped, gin.H{
				"zone_name":  b.ZoneName,
				"borough":    b.Borough,
				"trip_count": b.TripCount,
				"avg_fare":   round2(b.AvgFare),
			})
		}
	case "payment_type":
		buckets, err := h.analytics.PaymentBreakdown(ctx, f)
		if err != nil {
			response.ServiceUnavailable(c, "failed to compute payment breakdown")
			return
		}
		for _, b := range buckets {
			grouped = append(grouped, gin.H{
				"payment_type": b.PaymentType,
				"trip_count":   b.TripCount,
				"avg_fare":     round2(b.AvgFare),
			})
		}
	}

	c.JSON(http.StatusOK, gin.H{
		"overall": formatOverall(stats),
		"grouped": grouped,
	})
}

// GetTimeSeries handles GET /api/time-series
func (h *AnalyticsHandler) GetTimeSeries(c *gin.Context) {
	f := filter.Parse(c.Request.URL.Query())
	interval := c.DefaultQuery("interval", "hour")
	if interval != "day" && interval != "hour" {
		response.BadRequest(c, "interval must be 'day' or 'hour'")
		return
	}

	buckets, err := h.analytics.TimeSeries(c.Request.Context(), f, interval)
	if err != nil {
		response.ServiceUnavailable(c, "failed to compute time series")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"time_series": formatTimeSeries(buckets, interval),
	})
}

// GetHeatmap handles GET /api/heatmap
func (h *AnalyticsHandler) GetHeatmap(c *gin.Context) {
	f := filter.Parse(c.Request.URL.Query())
	limit := queryInt(c, "limit", defaultHeatmapLimit)

	view, err := h.analytics.Heatmap(c.Request.Context(), f)
	if err != nil {
		response.ServiceUnavailable(c, "failed to compute heatmap")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"pickup":  formatHeatmapSide(view.Pickup, limit),
		"dropoff": formatHeatmapSide(view.Dropoff, limit),
	})
}

// GetTopRoutes handles GET /api/top-routes
func (h *AnalyticsHandler) GetTopRoutes(c *gin.Context) {
	f := filter.Parse(c.Request.URL.Query())
	limit := queryInt(c, "limit", defaultRouteLimit)

	routes, err := h.analytics.TopRoutes(c.Request.Context(), f, limit)
	if err != nil {
		response.ServiceUnavailable(c, "failed to compute top routes")
		return
	}

	c.JSON(http.StatusOK, gin.H{"routes": formatRoutes(routes)})
}

// GetZones handles GET /api/zones
func (h *AnalyticsHandler) GetZones(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"zones": h.zones.Zones()})
}

// GetAnomalies handles GET /api/anomalies
func (h *AnalyticsHandler) GetAnomalies(c *gin.Context) {
	f := filter.Parse(c.Request.URL.Query())
	field := c.Query("field")
	limit := queryInt(c, "limit", defaultAnomalyLimit)

	threshold, err := strconv.ParseFloat(c.Query("threshold"), 64)
	if err != nil {
		threshold = 0 // engine default
	}

	report, err := h.analytics.Anomalies(c.Request.Context(), f, field, threshold)
	if err != nil {
		if field != "" {
			response.BadRequest(c, err.Error())
			return
		}
		response.ServiceUnavailable(c, "failed to detect anomalies")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"anomalies":       h.formatAnomalies(report.Anomalies, limit),
		"total_anomalies": len(report.Anomalies),
		"field":           report.Field,
		"threshold":       report.Threshold,
	})
}

// GetDashboard handles GET /api/dashboard: all five views of the same
// filtered population in one call. Views that failed are null and
// listed under "degraded"; the rest are still returned.
func (h *AnalyticsHandler) GetDashboard(c *gin.Context) {
	f := filter.Parse(c.Request.URL.Query())
	interval := c.DefaultQuery("interval", "day")
	if interval != "day" && interval != "hour" {
		response.BadRequest(c, "interval must be 'day' or 'hour'")
		return
	}
	limit := queryInt(c, "limit", defaultRouteLimit)

	d := h.analytics.Dashboard(c.Request.Context(), f, interval, limit)

	body := gin.H{}
	if d.Overall != nil {
		body["overall"] = formatOverall(d.Overall)
	}
	if d.TimeSeries != nil {
		body["time_series"] = formatTimeSeries(d.TimeSeries, interval)
	}
	if d.Heatmap != nil {
		body["heatmap"] = gin.H{
			"pickup":  formatHeatmapSide(d.Heatmap.Pickup, defaultHeatmapLimit),
			"dropoff": formatHeatmapSide(d.Heatmap.Dropoff, defaultHeatmapLimit),
		}
	}
	if d.TopRoutes != nil {
		body["routes"] = formatRoutes(d.TopRoutes)
	}
	if d.Anomalies != nil {
		body["anomalies"] = h.formatAnomalies(d.Anomalies.Anomalies, defaultAnomalyLimit)
	}
	if len(d.Failed) > 0 {
		body["degraded"] = d.Failed
	}

	c.JSON(http.StatusOK, body)
}
