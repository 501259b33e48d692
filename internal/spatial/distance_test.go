package spatial

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHaversineMiles(t *testing.T) {
	// Midtown Center to JFK Airport
	d := HaversineMiles(40.7549, -73.9797, 40.6413, -73.7781)
	assert.InDelta(t, 13.2, d, 0.3)

	// Same point
	assert.InDelta(t, 0, HaversineMiles(40.75, -73.98, 40.75, -73.98), 1e-9)
}

func TestHaversineSymmetric(t *testing.T) {
	a := HaversineMiles(40.7549, -73.9797, 40.7769, -73.8740)
	b := HaversineMiles(40.7769, -73.8740, 40.7549, -73.9797)
	assert.InDelta(t, a, b, 1e-9)
}
