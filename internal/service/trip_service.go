package service

import (
	"context"
	"fmt"

	"github.com/nycmobility/taxi-analytics-go/internal/models"
)

// TripLister lists and counts stored trips
type TripLister interface {
	ListTrips(ctx context.Context, f models.TripFilter, opts models.ListOptions) ([]models.Trip, int64, error)
	CountTrips(ctx context.Context) (int64, error)
}

// TripService handles business logic for trip listings
type TripService struct {
	repo TripLister
}

// NewTripService creates a new trip service
func NewTripService(repo TripLister) *TripService {
	return &TripService{repo: repo}
}

// List retrieves trips with filtering, sorting and pagination
func (s *TripService) List(ctx context.Context, f models.TripFilter, opts models.ListOptions) ([]models.Trip, int64, error) {
	trips, total, err := s.repo.ListTrips(ctx, f, opts)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list trips: %w", err)
	}
	return trips, total, nil
}

// Count returns the total number of stored trips
func (s *TripService) Count(ctx context.Context) (int64, error) {
	return s.repo.CountTrips(ctx)
}
