package api

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/nycmobility/taxi-analytics-go/internal/config"
	"github.com/nycmobility/taxi-analytics-go/internal/handler"
	"github.com/nycmobility/taxi-analytics-go/internal/middleware"
)

// SetupRouter wires the HTTP routes
func SetupRouter(cfg *config.Config, analytics *handler.AnalyticsHandler, trips *handler.TripHandler) *gin.Engine {
	r := gin.New()
	r.Use(middleware.Logger())
	r.Use(gin.Recovery())
	r.Use(middleware.Metrics())

	// CORS middleware
	r.Use(func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "GET, OPTIONS")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	})

	r.GET("/health", trips.GetHealth)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	api := r.Group("/api")
	api.Use(middleware.RateLimit(cfg.RateLimit, time.Duration(cfg.RateWindowSeconds)*time.Second))
	{
		api.GET("/trips", trips.GetTrips)
		api.GET("/statistics", analytics.GetStatistics)
		api.GET("/time-series", analytics.GetTimeSeries)
		api.GET("/heatmap", analytics.GetHeatmap)
		api.GET("/top-routes", analytics.GetTopRoutes)
		api.GET("/zones", analytics.GetZones)
		api.GET("/anomalies", analytics.GetAnomalies)
		api.GET("/dashboard", analytics.GetDashboard)
	}

	return r
}
