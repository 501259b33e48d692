package models

import "time"

// Payment type codes follow the TLC trip record data dictionary
const (
	PaymentCreditCard = 1
	PaymentCash       = 2
	PaymentNoCharge   = 3
	PaymentDispute    = 4
	PaymentUnknown    = 5
	PaymentVoided     = 6
)

var paymentNames = map[int]string{
	PaymentCreditCard: "Credit card",
	PaymentCash:       "Cash",
	PaymentNoCharge:   "No charge",
	PaymentDispute:    "Dispute",
	PaymentUnknown:    "Unknown",
	PaymentVoided:     "Voided trip",
}

// PaymentTypeName returns the display name for a payment type code
func PaymentTypeName(code int) string {
	if name, ok := paymentNames[code]; ok {
		return name
	}
	return "Unknown"
}

// Trip represents a single taxi trip record
type Trip struct {
	ID int64 `json:"trip_id" db:"id"`

	// Temporal info (Unix timestamps, UTC)
	PickupTime  int64 `json:"pickup_time" db:"pickup_time"`
	DropoffTime int64 `json:"dropoff_time" db:"dropoff_time"`

	// Pickup and dropoff zones
	PickupZoneID  int `json:"pickup_zone_id" db:"pickup_zone_id"`
	DropoffZoneID int `json:"dropoff_zone_id" db:"dropoff_zone_id"`

	// Trip metrics
	PassengerCount int     `json:"passenger_count" db:"passenger_count"`
	TripDistance   float64 `json:"trip_distance" db:"trip_distance"` // miles

	// Fare information
	FareAmount  float64 `json:"fare_amount" db:"fare_amount"`
	TipAmount   float64 `json:"tip_amount" db:"tip_amount"`
	TotalAmount float64 `json:"total_amount" db:"total_amount"`
	PaymentType int     `json:"payment_type" db:"payment_type"`
}

// DurationSeconds returns the trip duration derived from the timestamps
func (t *Trip) DurationSeconds() int64 {
	return t.DropoffTime - t.PickupTime
}

// SpeedMPH returns the average trip speed in miles per hour. The second
// return value is false when the duration is not strictly positive, in
// which case the speed is undefined.
func (t *Trip) SpeedMPH() (float64, bool) {
	d := t.DurationSeconds()
	if d <= 0 {
		return 0, false
	}
	return t.TripDistance / (float64(d) / 3600.0), true
}

// Pickup returns the pickup time as UTC wall-clock time
func (t *Trip) Pickup() time.Time {
	return time.Unix(t.PickupTime, 0).UTC()
}

// Dropoff returns the dropoff time as UTC wall-clock time
func (t *Trip) Dropoff() time.Time {
	return time.Unix(t.DropoffTime, 0).UTC()
}

// TripView is the API representation of a trip with zone labels and
// derived fields resolved
type TripView struct {
	TripID          int64   `json:"trip_id"`
	PickupDatetime  string  `json:"pickup_datetime"`
	DropoffDatetime string  `json:"dropoff_datetime"`
	PickupZone      string  `json:"pickup_zone"`
	DropoffZone     string  `json:"dropoff_zone"`
	PassengerCount  int     `json:"passenger_count"`
	TripDistance    float64 `json:"trip_distance"`
	TripDuration    int64   `json:"trip_duration"`
	FareAmount      float64 `json:"fare_amount"`
	TotalAmount     float64 `json:"total_amount"`
	TripSpeed       float64 `json:"trip_speed"`
	PaymentType     string  `json:"payment_type"`
}
