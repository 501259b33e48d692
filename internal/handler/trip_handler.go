package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/nycmobility/taxi-analytics-go/internal/filter"
	"github.com/nycmobility/taxi-analytics-go/internal/models"
	"github.com/nycmobility/taxi-analytics-go/internal/service"
	"github.com/nycmobility/taxi-analytics-go/internal/zones"
	"github.com/nycmobility/taxi-analytics-go/pkg/response"
)

// TripHandler handles HTTP requests for trip listings
type TripHandler struct {
	trips *service.TripService
	zones *zones.Resolver
}

// NewTripHandler creates a new trip handler
func NewTripHandler(trips *service.TripService, resolver *zones.Resolver) *TripHandler {
	return &TripHandler{trips: trips, zones: resolver}
}

func (h *TripHandler) tripView(t *models.Trip) models.TripView {
	speed, _ := t.SpeedMPH()
	return models.TripView{
		TripID:          t.ID,
		PickupDatetime:  t.Pickup().Format(time.RFC3339),
		DropoffDatetime: t.Dropoff().Format(time.RFC3339),
		PickupZone:      h.zones.Lookup(t.PickupZoneID).ZoneName,
		DropoffZone:     h.zones.Lookup(t.DropoffZoneID).ZoneName,
		PassengerCount:  t.PassengerCount,
		TripDistance:    round2(t.TripDistance),
		TripDuration:    t.DurationSeconds(),
		FareAmount:      round2(t.FareAmount),
		TotalAmount:     round2(t.TotalAmount),
		TripSpeed:       round2(speed),
		PaymentType:     models.PaymentTypeName(t.PaymentType),
	}
}

// Client-facing sort keys that differ from column names
var sortAliases = map[string]string{
	"pickup_datetime":  "pickup_time",
	"dropoff_datetime": "dropoff_time",
}

// GetTrips handles GET /api/trips
func (h *TripHandler) GetTrips(c *gin.Context) {
	f := filter.Parse(c.Request.URL.Query())
	sortBy := c.DefaultQuery("sort_by", "pickup_time")
	if alias, ok := sortAliases[sortBy]; ok {
		sortBy = alias
	}
	opts := models.ListOptions{
		SortBy:    sortBy,
		SortOrder: c.DefaultQuery("sort_order", "desc"),
		Limit:     queryInt(c, "limit", 100),
		Offset:    queryInt(c, "offset", 0),
	}

	trips, total, err := h.trips.List(c.Request.Context(), f, opts)
	if err != nil {
		response.ServiceUnavailable(c, "failed to list trips")
		return
	}

	views := make([]models.TripView, 0, len(trips))
	for i := range trips {
		views = append(views, h.tripView(&trips[i]))
	}

	c.JSON(http.StatusOK, gin.H{
		"trips":       views,
		"total_count": total,
		"limit":       opts.Limit,
		"offset":      opts.Offset,
	})
}

// GetHealth handles GET /health
func (h *TripHandler) GetHealth(c *gin.Context) {
	count, err := h.trips.Count(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"status": "unhealthy",
			"error":  err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status":     "healthy",
		"database":   "connected",
		"trip_count": count,
	})
}
