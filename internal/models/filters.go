package models

import "time"

// TripFilter represents a parsed filter specification. A nil field means
// no constraint on that dimension.
type TripFilter struct {
	StartDate      *time.Time // inclusive, compared against pickup time
	EndDate        *time.Time // inclusive (extended to end of day by the parser)
	MinFare        *float64
	MaxFare        *float64
	MinDistance    *float64
	MaxDistance    *float64
	PickupZoneID   *int
	DropoffZoneID  *int
	PassengerCount *int
}

// Unsatisfiable reports whether the filter can never match any trip,
// i.e. some range has its lower bound above its upper bound. Such a
// filter selects the empty population rather than raising an error.
func (f TripFilter) Unsatisfiable() bool {
	if f.StartDate != nil && f.EndDate != nil && f.StartDate.After(*f.EndDate) {
		return true
	}
	if f.MinFare != nil && f.MaxFare != nil && *f.MinFare > *f.MaxFare {
		return true
	}
	if f.MinDistance != nil && f.MaxDistance != nil && *f.MinDistance > *f.MaxDistance {
		return true
	}
	return false
}

// ListOptions controls sorting and pagination for trip listings
type ListOptions struct {
	SortBy    string
	SortOrder string // "asc" or "desc"
	Limit     int
	Offset    int
}
