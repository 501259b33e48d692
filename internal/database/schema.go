package database

import "fmt"

// Migrate creates the trips and zones tables and their indexes. The
// statements are idempotent, so startup can run them unconditionally.
func Migrate(db *DB) error {
	tripPK := "INTEGER PRIMARY KEY AUTOINCREMENT"
	if db.Driver == DriverPostgres {
		tripPK = "BIGSERIAL PRIMARY KEY"
	}

	stmts := []string{
		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS trips (
			id %s,
			pickup_time BIGINT NOT NULL,
			dropoff_time BIGINT NOT NULL,
			pickup_zone_id INTEGER NOT NULL,
			dropoff_zone_id INTEGER NOT NULL,
			passenger_count INTEGER NOT NULL DEFAULT 1,
			trip_distance DOUBLE PRECISION NOT NULL DEFAULT 0,
			fare_amount DOUBLE PRECISION NOT NULL DEFAULT 0,
			tip_amount DOUBLE PRECISION NOT NULL DEFAULT 0,
			total_amount DOUBLE PRECISION NOT NULL DEFAULT 0,
			payment_type INTEGER NOT NULL DEFAULT 5
		)`, tripPK),
		`CREATE TABLE IF NOT EXISTS zones (
			zone_id INTEGER PRIMARY KEY,
			zone_name TEXT NOT NULL,
			borough TEXT NOT NULL,
			service_zone TEXT NOT NULL DEFAULT '',
			centroid_lat DOUBLE PRECISION,
			centroid_lon DOUBLE PRECISION
		)`,
		`CREATE INDEX IF NOT EXISTS idx_trips_pickup_time ON trips (pickup_time)`,
		`CREATE INDEX IF NOT EXISTS idx_trips_pickup_zone ON trips (pickup_zone_id)`,
		`CREATE INDEX IF NOT EXISTS idx_trips_dropoff_zone ON trips (dropoff_zone_id)`,
		`CREATE INDEX IF NOT EXISTS idx_trips_fare ON trips (fare_amount)`,
		`CREATE INDEX IF NOT EXISTS idx_trips_distance ON trips (trip_distance)`,
	}

	for _, stmt := range stmts {
		if _, err := db.Exec(stmt); err != nil {
			return fmt.Errorf("failed to run migration: %w", err)
		}
	}
	return nil
}
