package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/nycmobility/taxi-analytics-go/internal/database"
	"github.com/nycmobility/taxi-analytics-go/internal/models"
)

// ZoneRepository handles database operations for the zone lookup table
type ZoneRepository struct {
	db *database.DB
}

// NewZoneRepository creates a new zone repository
func NewZoneRepository(db *database.DB) *ZoneRepository {
	return &ZoneRepository{db: db}
}

// LoadZones retrieves the full zone table
func (r *ZoneRepository) LoadZones(ctx context.Context) ([]models.Zone, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT zone_id, zone_name, borough, service_zone, centroid_lat, centroid_lon
		FROM zones ORDER BY zone_id`)
	if err != nil {
		return nil, fmt.Errorf("failed to query zones: %w", err)
	}
	defer rows.Close()

	var zones []models.Zone
	for rows.Next() {
		var z models.Zone
		var lat, lon sql.NullFloat64
		if err := rows.Scan(&z.ZoneID, &z.ZoneName, &z.Borough, &z.ServiceZone, &lat, &lon); err != nil {
			return nil, fmt.Errorf("failed to scan zone row: %w", err)
		}
		if lat.Valid {
			z.CentroidLat = &lat.Float64
		}
		if lon.Valid {
			z.CentroidLon = &lon.Float64
		}
		zones = append(zones, z)
	}

	return zones, rows.Err()
}

// InsertZones stores zone lookup entries, replacing existing ids
func (r *ZoneRepository) InsertZones(ctx context.Context, zones []models.Zone) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	query := r.db.Rebind(`INSERT INTO zones
		(zone_id, zone_name, borough, service_zone, centroid_lat, centroid_lon)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT (zone_id) DO UPDATE SET
			zone_name = excluded.zone_name,
			borough = excluded.borough,
			service_zone = excluded.service_zone,
			centroid_lat = excluded.centroid_lat,
			centroid_lon = excluded.centroid_lon`)

	stmt, err := tx.PrepareContext(ctx, query)
	if err != nil {
		return fmt.Errorf("failed to prepare insert: %w", err)
	}
	defer stmt.Close()

	for _, z := range zones {
		var lat, lon interface{}
		if z.CentroidLat != nil {
			lat = *z.CentroidLat
		}
		if z.CentroidLon != nil {
			lon = *z.CentroidLon
		}
		if _, err := stmt.ExecContext(ctx, z.ZoneID, z.ZoneName, z.Borough, z.ServiceZone, lat, lon); err != nil {
			return fmt.Errorf("failed to insert zone %d: %w", z.ZoneID, err)
		}
	}

	return tx.Commit()
}
