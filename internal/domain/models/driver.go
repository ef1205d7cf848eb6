package models

import "time"

type Driver struct {
	ID        string `json:"id"`
	CompanyID string `json:"company_id"`
	FullName  string `json:"full_name"`

	// Secondary lookup key for OTP-authenticated callers.
	PhoneNumber string `json:"phone_number"`

	LicenseNumber string `json:"license_number"`

	AssignedVehicleID string `json:"assigned_vehicle_id,omitempty"`
	IsActive          bool   `json:"is_active"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
