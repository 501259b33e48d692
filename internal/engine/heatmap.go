package engine

import (
	"context"
	"sort"

	"github.com/nycmobility/taxi-analytics-go/internal/models"
)

// Heatmap groups the population by pickup zone and, separately, by
// dropoff zone. Both sides are returned fully ranked (descending by
// count, ties broken by ascending zone id); the top-N cut is applied by
// the response formatter so it can change independently.
func (e *Engine) Heatmap(ctx context.Context, pop *Population) (*models.HeatmapView, error) {
	pickups := make(map[int]int64)
	dropoffs := make(map[int]int64)

	err := pop.Each(ctx, func(t *models.Trip) error {
		pickups[t.PickupZoneID]++
		dropoffs[t.DropoffZoneID]++
		return nil
	})
	if err != nil {
		return nil, err
	}

	return &models.HeatmapView{
		Pickup:  e.rankZoneCounts(pickups),
		Dropoff: e.rankZoneCounts(dropoffs),
	}, nil
}

func (e *Engine) rankZoneCounts(counts map[int]int64) []models.HeatmapEntry {
	entries := make([]models.HeatmapEntry, 0, len(counts))
	for id, count := range counts {
		z := e.zones.Lookup(id)
		entries = append(entries, models.HeatmapEntry{
			ZoneID:   id,
			ZoneName: z.ZoneName,
			Borough:  z.Borough,
			Count:    count,
		})
	}

	sort.Slice(entries, func(i, j int) bool {
		if entries[i].Count != entries[j].Count {
			return entries[i].Count > entries[j].Count
		}
		return entries[i].ZoneID < entries[j].ZoneID
	})
	return entries
}
