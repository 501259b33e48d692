// Package filter translates raw, untrusted query parameters into a
// TripFilter. Coercion is lenient and per-field: a value that fails to
// parse is treated as an absent constraint rather than an error, so a
// malformed min_fare never invalidates a well-formed start_date.
package filter

import (
	"net/url"
	"strconv"
	"time"

	"github.com/nycmobility/taxi-analytics-go/internal/models"
)

const dateLayout = "2006-01-02"

// Parse builds a TripFilter from query parameters. Two parses of the
// same values yield identical filters, which keeps the filtered
// population deterministic across sub-aggregations.
func Parse(values url.Values) models.TripFilter {
	var f models.TripFilter

	if t, ok := parseDate(values.Get("start_date")); ok {
		f.StartDate = &t
	}
	if t, ok := parseDate(values.Get("end_date")); ok {
		// Inclusive end: extend to the last second of the day
		end := t.Add(23*time.Hour + 59*time.Minute + 59*time.Second)
		f.EndDate = &end
	}

	f.MinFare = parseFloat(values.Get("min_fare"))
	f.MaxFare = parseFloat(values.Get("max_fare"))
	f.MinDistance = parseFloat(values.Get("min_distance"))
	f.MaxDistance = parseFloat(values.Get("max_distance"))
	f.PickupZoneID = parseInt(values.Get("pickup_zone_id"))
	f.DropoffZoneID = parseInt(values.Get("dropoff_zone_id"))
	f.PassengerCount = parseInt(values.Get("passenger_count"))

	return f
}

func parseDate(s string) (time.Time, bool) {
	if s == "" {
		return time.Time{}, false
	}
	t, err := time.ParseInLocation(dateLayout, s, time.UTC)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}

func parseFloat(s string) *float64 {
	if s == "" {
		return nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return nil
	}
	return &v
}

func parseInt(s string) *int {
	if s == "" {
		return nil
	}
	v, err := strconv.Atoi(s)
	if err != nil {
		return nil
	}
	return &v
}
