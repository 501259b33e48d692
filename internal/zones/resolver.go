// Package zones provides the read-only zone lookup table used to label
// aggregation output. The table is loaded once at process start and can
// be reloaded after a data refresh; it is never mutated by the engine.
package zones

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/nycmobility/taxi-analytics-go/internal/models"
)

// FallbackLabel is used when a trip references a zone id missing from
// the lookup table. Partial labeling beats failing the whole response.
const FallbackLabel = "Unknown"

// Store loads zone entries from the backing table
type Store interface {
	LoadZones(ctx context.Context) ([]models.Zone, error)
}

// Resolver is a concurrency-safe zone lookup table
type Resolver struct {
	mu      sync.RWMutex
	byID    map[int]models.Zone
	ordered []models.Zone // sorted by borough, then zone name
}

// NewResolver creates an empty resolver. Call Load before serving.
func NewResolver() *Resolver {
	return &Resolver{byID: make(map[int]models.Zone)}
}

// Load replaces the lookup table with the store contents. Safe to call
// again after a data refresh; readers see either the old or new table,
// never a partial one.
func (r *Resolver) Load(ctx context.Context, store Store) error {
	zones, err := store.LoadZones(ctx)
	if err != nil {
		return fmt.Errorf("failed to load zones: %w", err)
	}

	byID := make(map[int]models.Zone, len(zones))
	for _, z := range zones {
		byID[z.ZoneID] = z
	}

	ordered := make([]models.Zone, len(zones))
	copy(ordered, zones)
	sort.Slice(ordered, func(i, j int) bool {
		if ordered[i].Borough != ordered[j].Borough {
			return ordered[i].Borough < ordered[j].Borough
		}
		return ordered[i].ZoneName < ordered[j].ZoneName
	})

	r.mu.Lock()
	r.byID = byID
	r.ordered = ordered
	r.mu.Unlock()
	return nil
}

// Lookup returns the zone for an id. Unknown ids resolve to a fallback
// entry carrying the requested id.
func (r *Resolver) Lookup(id int) models.Zone {
	r.mu.RLock()
	z, ok := r.byID[id]
	r.mu.RUnlock()
	if !ok {
		return models.Zone{ZoneID: id, ZoneName: FallbackLabel, Borough: FallbackLabel}
	}
	return z
}

// Zones returns all zones sorted by borough and zone name
func (r *Resolver) Zones() []models.Zone {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]models.Zone, len(r.ordered))
	copy(out, r.ordered)
	return out
}

// Centroid returns the centroid coordinates for a zone id, if known
func (r *Resolver) Centroid(id int) (lat, lon float64, ok bool) {
	r.mu.RLock()
	z, found := r.byID[id]
	r.mu.RUnlock()
	if !found || !z.HasCentroid() {
		return 0, 0, false
	}
	return *z.CentroidLat, *z.CentroidLon, true
}
