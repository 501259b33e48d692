package zones

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nycmobility/taxi-analytics-go/internal/models"
)

type stubStore struct {
	zones []models.Zone
	err   error
}

func (s *stubStore) LoadZones(ctx context.Context) ([]models.Zone, error) {
	return s.zones, s.err
}

func ptr(v float64) *float64 { return &v }

func TestLookupKnownAndUnknown(t *testing.T) {
	r := NewResolver()
	store := &stubStore{zones: []models.Zone{
		{ZoneID: 161, ZoneName: "Midtown Center", Borough: "Manhattan"},
	}}
	require.NoError(t, r.Load(context.Background(), store))

	z := r.Lookup(161)
	assert.Equal(t, "Midtown Center", z.ZoneName)
	assert.Equal(t, "Manhattan", z.Borough)

	missing := r.Lookup(999)
	assert.Equal(t, 999, missing.ZoneID)
	assert.Equal(t, FallbackLabel, missing.ZoneName)
	assert.Equal(t, FallbackLabel, missing.Borough)
}

func TestZonesOrderedByBoroughThenName(t *testing.T) {
	r := NewResolver()
	store := &stubStore{zones: []models.Zone{
		{ZoneID: 234, ZoneName: "Union Sq", Borough: "Manhattan"},
		{ZoneID: 132, ZoneName: "JFK Airport", Borough: "Queens"},
		{ZoneID: 161, ZoneName: "Midtown Center", Borough: "Manhattan"},
		{ZoneID: 17, ZoneName: "Bedford", Borough: "Brooklyn"},
	}}
	require.NoError(t, r.Load(context.Background(), store))

	zones := r.Zones()
	require.Len(t, zones, 4)
	assert.Equal(t, "Bedford", zones[0].ZoneName)
	assert.Equal(t, "Midtown Center", zones[1].ZoneName)
	assert.Equal(t, "Union Sq", zones[2].ZoneName)
	assert.Equal(t, "JFK Airport", zones[3].ZoneName)
}

func TestCentroid(t *testing.T) {
	r := NewResolver()
	store := &stubStore{zones: []models.Zone{
		{ZoneID: 1, ZoneName: "A", Borough: "B", CentroidLat: ptr(40.75), CentroidLon: ptr(-73.98)},
		{ZoneID: 2, ZoneName: "C", Borough: "B"},
	}}
	require.NoError(t, r.Load(context.Background(), store))

	lat, lon, ok := r.Centroid(1)
	assert.True(t, ok)
	assert.Equal(t, 40.75, lat)
	assert.Equal(t, -73.98, lon)

	_, _, ok = r.Centroid(2)
	assert.False(t, ok)
	_, _, ok = r.Centroid(999)
	assert.False(t, ok)
}

func TestLoadErrorKeepsOldTable(t *testing.T) {
	r := NewResolver()
	require.NoError(t, r.Load(context.Background(), &stubStore{zones: []models.Zone{
		{ZoneID: 1, ZoneName: "A", Borough: "B"},
	}}))

	err := r.Load(context.Background(), &stubStore{err: errors.New("db gone")})
	assert.Error(t, err)
	assert.Equal(t, "A", r.Lookup(1).ZoneName)
}

func TestReloadReplacesTable(t *testing.T) {
	r := NewResolver()
	require.NoError(t, r.Load(context.Background(), &stubStore{zones: []models.Zone{
		{ZoneID: 1, ZoneName: "Old", Borough: "B"},
	}}))
	require.NoError(t, r.Load(context.Background(), &stubStore{zones: []models.Zone{
		{ZoneID: 1, ZoneName: "New", Borough: "B"},
		{ZoneID: 2, ZoneName: "Added", Borough: "B"},
	}}))

	assert.Equal(t, "New", r.Lookup(1).ZoneName)
	require.Len(t, r.Zones(), 2)
}
