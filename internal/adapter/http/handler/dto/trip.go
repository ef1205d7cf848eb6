package dto

import (
	"errors"
	"time"

	"github.com/Temutjin2k/fleet-ops-system/internal/domain/models"
)

type LocationRequest struct {
	Name    string  `json:"name"`
	Address string  `json:"address"`
	Lat     float64 `json:"lat"`
	Lng     float64 `json:"lng"`
	Note    string  `json:"note,omitempty"`
}

type CreateTripRequest struct {
	Pickup               LocationRequest `json:"pickup"`
	Dropoff              LocationRequest `json:"dropoff"`
	ScheduledPickupTime  time.Time       `json:"scheduled_pickup_time"`
	ScheduledDropoffTime time.Time       `json:"scheduled_dropoff_time"`
	PassengerCount       int             `json:"passenger_count"`
	Notes                string          `json:"notes,omitempty"`
	Fare                 *float64        `json:"fare,omitempty"`
}

func (r *CreateTripRequest) Validate() error {
	if r.Pickup.Name == "" || r.Dropoff.Name == "" {
		return errors.New("pickup and dropoff are required")
	}
	if r.ScheduledPickupTime.IsZero() {
		return errors.New("scheduled_pickup_time is required")
	}
	if r.PassengerCount < 1 {
		return errors.New("passenger_count must be at least 1")
	}
	if r.Fare != nil && *r.Fare < 0 {
		return errors.New("fare must not be negative")
	}
	return nil
}

func (r *CreateTripRequest) ToModel(companyID string) *models.Trip {
	return &models.Trip{
		CompanyID:            companyID,
		Pickup:               models.Location(r.Pickup),
		Dropoff:              models.Location(r.Dropoff),
		ScheduledPickupTime:  r.ScheduledPickupTime,
		ScheduledDropoffTime: r.ScheduledDropoffTime,
		PassengerCount:       r.PassengerCount,
		Notes:                r.Notes,
		Fare:                 r.Fare,
	}
}

type AssignTripRequest struct {
	VehicleID string `json:"vehicle_id"`
	DriverID  string `json:"driver_id"`
}
