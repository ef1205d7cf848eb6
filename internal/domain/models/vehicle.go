package models

import (
	"time"

	"github.com/Temutjin2k/fleet-ops-system/internal/domain/types"
)

// Vehicle carries two independently tracked expiry dates; edits to either
// retrigger the reminder scheduler.
type Vehicle struct {
	ID          string            `json:"id"`
	CompanyID   string            `json:"company_id"`
	PlateNumber string            `json:"plate_number"`
	Model       string            `json:"model"`
	Capacity    int               `json:"capacity"`
	VehicleType types.VehicleType `json:"vehicle_type"`

	InsuranceExpiryDate  time.Time `json:"insurance_expiry_date"`
	InspectionExpiryDate time.Time `json:"inspection_expiry_date"`

	IsActive bool `json:"is_active"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
