package main

import (
	"context"
	"log"

	"github.com/nycmobility/taxi-analytics-go/internal/api"
	"github.com/nycmobility/taxi-analytics-go/internal/config"
	"github.com/nycmobility/taxi-analytics-go/internal/database"
	"github.com/nycmobility/taxi-analytics-go/internal/engine"
	"github.com/nycmobility/taxi-analytics-go/internal/handler"
	"github.com/nycmobility/taxi-analytics-go/internal/repository"
	"github.com/nycmobility/taxi-analytics-go/internal/service"
	"github.com/nycmobility/taxi-analytics-go/internal/zones"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal("Failed to load configuration: ", err)
	}

	db, err := database.Open(database.Config{
		Driver: cfg.DBDriver,
		Path:   cfg.DBPath,
		DSN:    cfg.PostgresDSN,
	})
	if err != nil {
		log.Fatal("Failed to initialize database: ", err)
	}
	defer db.Close()

	if err := database.Migrate(db); err != nil {
		log.Fatal("Failed to run migrations: ", err)
	}

	tripRepo := repository.NewTripRepository(db, cfg.ScanBatchSize)
	zoneRepo := repository.NewZoneRepository(db)

	// Zone lookup table is loaded once and read-only thereafter
	resolver := zones.NewResolver()
	if err := resolver.Load(context.Background(), zoneRepo); err != nil {
		log.Fatal("Failed to load zone table: ", err)
	}

	eng := engine.New(resolver, cfg.AnomalyThreshold)
	analyticsService := service.NewAnalyticsService(eng, tripRepo)
	tripService := service.NewTripService(tripRepo)

	analyticsHandler := handler.NewAnalyticsHandler(analyticsService, resolver)
	tripHandler := handler.NewTripHandler(tripService, resolver)

	router := api.SetupRouter(cfg, analyticsHandler, tripHandler)

	log.Printf("Server starting on port %s", cfg.Port)
	if err := router.Run(cfg.Port); err != nil {
		log.Fatal("Failed to start server: ", err)
	}
}
