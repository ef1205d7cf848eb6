package models

import (
	"time"

	"github.com/Temutjin2k/fleet-ops-system/internal/domain/types"
)

// Location is a named place with coordinates and an optional free-text note.
type Location struct {
	Name    string  `json:"name"`
	Address string  `json:"address"`
	Lat     float64 `json:"lat"`
	Lng     float64 `json:"lng"`
	Note    string  `json:"note,omitempty"`
}

// Trip is a single transport job. Status and the actual pickup/dropoff
// timestamps are mutated only through the lifecycle functions in
// internal/service/trips.
type Trip struct {
	ID        string `json:"id"`
	CompanyID string `json:"company_id"`

	// Empty string means unassigned.
	VehicleID string `json:"vehicle_id"`
	DriverID  string `json:"driver_id"`

	// Company-scoped, human-facing sequence (TRP-0001).
	TripNumber string `json:"trip_number"`

	Pickup  Location `json:"pickup"`
	Dropoff Location `json:"dropoff"`

	ScheduledPickupTime  time.Time `json:"scheduled_pickup_time"`
	ScheduledDropoffTime time.Time `json:"scheduled_dropoff_time"`

	// Set when the trip actually starts / ends.
	ActualPickupTime  *time.Time `json:"actual_pickup_time,omitempty"`
	ActualDropoffTime *time.Time `json:"actual_dropoff_time,omitempty"`

	Status types.TripStatus `json:"status"`

	PassengerCount int      `json:"passenger_count"`
	Notes          string   `json:"notes,omitempty"`
	Fare           *float64 `json:"fare,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
