package models

// Zone represents a taxi zone lookup entry. Zones are static reference
// data loaded once at process start and never mutated by the engine.
type Zone struct {
	ZoneID      int    `json:"zone_id" db:"zone_id"`
	ZoneName    string `json:"zone_name" db:"zone_name"`
	Borough     string `json:"borough" db:"borough"`
	ServiceZone string `json:"service_zone,omitempty" db:"service_zone"`

	// Optional centroid, used for crow-flight route distances
	CentroidLat *float64 `json:"-" db:"centroid_lat"`
	CentroidLon *float64 `json:"-" db:"centroid_lon"`
}

// HasCentroid reports whether both centroid coordinates are present
func (z Zone) HasCentroid() bool {
	return z.CentroidLat != nil && z.CentroidLon != nil
}
