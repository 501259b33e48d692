package repository

import (
	"context"
	"fmt"
	"strings"

	"github.com/nycmobility/taxi-analytics-go/internal/database"
	"github.com/nycmobility/taxi-analytics-go/internal/models"
)

const defaultBatchSize = 1000

const tripColumns = `id, pickup_time, dropoff_time, pickup_zone_id, dropoff_zone_id,
	passenger_count, trip_distance, fare_amount, tip_amount, total_amount, payment_type`

// Columns that trip listings may sort by
var sortableColumns = map[string]bool{
	"pickup_time":     true,
	"dropoff_time":    true,
	"trip_distance":   true,
	"fare_amount":     true,
	"total_amount":    true,
	"passenger_count": true,
}

// TripRepository handles database operations for trips
type TripRepository struct {
	db        *database.DB
	batchSize int
}

// NewTripRepository creates a new trip repository. batchSize controls
// how often a streaming scan checks for context cancellation; zero
// selects the default.
func NewTripRepository(db *database.DB, batchSize int) *TripRepository {
	if batchSize <= 0 {
		batchSize = defaultBatchSize
	}
	return &TripRepository{db: db, batchSize: batchSize}
}

// buildConditions translates a TripFilter into WHERE conditions and
// arguments. The data-quality guard excluding trips with a dropoff
// before their pickup is always applied, so every scan sees the same
// canonical population for a given filter.
func buildConditions(f models.TripFilter) ([]string, []interface{}) {
	conditions := []string{"dropoff_time >= pickup_time"}
	var args []interface{}

	if f.Unsatisfiable() {
		// A range with min above max selects the empty population
		return []string{"1 = 0"}, nil
	}

	if f.StartDate != nil {
		conditions = append(conditions, "pickup_time >= ?")
		args = append(args, f.StartDate.Unix())
	}
	if f.EndDate != nil {
		conditions = append(conditions, "pickup_time <= ?")
		args = append(args, f.EndDate.Unix())
	}
	if f.MinFare != nil {
		conditions = append(conditions, "fare_amount >= ?")
		args = append(args, *f.MinFare)
	}
	if f.MaxFare != nil {
		conditions = append(conditions, "fare_amount <= ?")
		args = append(args, *f.MaxFare)
	}
	if f.MinDistance != nil {
		conditions = append(conditions, "trip_distance >= ?")
		args = append(args, *f.MinDistance)
	}
	if f.MaxDistance != nil {
		conditions = append(conditions, "trip_distance <= ?")
		args = append(args, *f.MaxDistance)
	}
	if f.PickupZoneID != nil {
		conditions = append(conditions, "pickup_zone_id = ?")
		args = append(args, *f.PickupZoneID)
	}
	if f.DropoffZoneID != nil {
		conditions = append(conditions, "dropoff_zone_id = ?")
		args = append(args, *f.DropoffZoneID)
	}
	if f.PassengerCount != nil {
		conditions = append(conditions, "passenger_count = ?")
		args = append(args, *f.PassengerCount)
	}

	return conditions, args
}

// ScanTrips streams the filtered population in id order, invoking fn for
// every matching trip. Cancellation is cooperative: the context is
// checked between row batches, so an abandoned request stops the scan
// without waiting for it to finish.
func (r *TripRepository) ScanTrips(ctx context.Context, f models.TripFilter, fn func(*models.Trip) error) error {
	conditions, args := buildConditions(f)

	query := "SELECT " + tripColumns + " FROM trips WHERE " +
		strings.Join(conditions, " AND ") + " ORDER BY id"

	rows, err := r.db.QueryContext(ctx, r.db.Rebind(query), args...)
	if err != nil {
		return fmt.Errorf("failed to scan trips: %w", err)
	}
	defer rows.Close()

	n := 0
	for rows.Next() {
		var t models.Trip
		if err := rows.Scan(
			&t.ID, &t.PickupTime, &t.DropoffTime, &t.PickupZoneID, &t.DropoffZoneID,
			&t.PassengerCount, &t.TripDistance, &t.FareAmount, &t.TipAmount,
			&t.TotalAmount, &t.PaymentType,
		); err != nil {
			return fmt.Errorf("failed to scan trip row: %w", err)
		}

		if err := fn(&t); err != nil {
			return err
		}

		n++
		if n%r.batchSize == 0 {
			if err := ctx.Err(); err != nil {
				return err
			}
		}
	}

	return rows.Err()
}

// ListTrips retrieves trips with filtering, sorting and pagination
func (r *TripRepository) ListTrips(ctx context.Context, f models.TripFilter, opts models.ListOptions) ([]models.Trip, int64, error) {
	conditions, args := buildConditions(f)
	where := " WHERE " + strings.Join(conditions, " AND ")

	// Get total count
	var total int64
	countQuery := r.db.Rebind("SELECT COUNT(*) FROM trips" + where)
	if err := r.db.QueryRowContext(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count trips: %w", err)
	}

	sortBy := opts.SortBy
	if !sortableColumns[sortBy] {
		sortBy = "pickup_time"
	}
	order := "DESC"
	if strings.EqualFold(opts.SortOrder, "asc") {
		order = "ASC"
	}

	limit := opts.Limit
	if limit < 1 {
		limit = 100
	}
	if limit > 1000 {
		limit = 1000
	}
	offset := opts.Offset
	if offset < 0 {
		offset = 0
	}

	query := "SELECT " + tripColumns + " FROM trips" + where +
		fmt.Sprintf(" ORDER BY %s %s, id LIMIT ? OFFSET ?", sortBy, order)
	args = append(args, limit, offset)

	rows, err := r.db.QueryContext(ctx, r.db.Rebind(query), args...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to query trips: %w", err)
	}
	defer rows.Close()

	var trips []models.Trip
	for rows.Next() {
		var t models.Trip
		if err := rows.Scan(
			&t.ID, &t.PickupTime, &t.DropoffTime, &t.PickupZoneID, &t.DropoffZoneID,
			&t.PassengerCount, &t.TripDistance, &t.FareAmount, &t.TipAmount,
			&t.TotalAmount, &t.PaymentType,
		); err != nil {
			return nil, 0, fmt.Errorf("failed to scan trip row: %w", err)
		}
		trips = append(trips, t)
	}

	return trips, total, rows.Err()
}

// CountTrips returns the total number of stored trips
func (r *TripRepository) CountTrips(ctx context.Context) (int64, error) {
	var total int64
	if err := r.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM trips").Scan(&total); err != nil {
		return 0, fmt.Errorf("failed to count trips: %w", err)
	}
	return total, nil
}

// InsertTrips stores a batch of trips within a single transaction
func (r *TripRepository) InsertTrips(ctx context.Context, trips []models.Trip) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	query := r.db.Rebind(`INSERT INTO trips (pickup_time, dropoff_time,
		pickup_zone_id, dropoff_zone_id, passenger_count, trip_distance,
		fare_amount, tip_amount, total_amount, payment_type)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)

	stmt, err := tx.PrepareContext(ctx, query)
	if err != nil {
		return fmt.Errorf("failed to prepare insert: %w", err)
	}
	defer stmt.Close()

	for i := range trips {
		t := &trips[i]
		if _, err := stmt.ExecContext(ctx,
			t.PickupTime, t.DropoffTime, t.PickupZoneID, t.DropoffZoneID,
			t.PassengerCount, t.TripDistance, t.FareAmount, t.TipAmount,
			t.TotalAmount, t.PaymentType,
		); err != nil {
			return fmt.Errorf("failed to insert trip: %w", err)
		}
	}

	return tx.Commit()
}
