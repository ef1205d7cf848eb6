package dto

import (
	"errors"

	"github.com/Temutjin2k/fleet-ops-system/internal/domain/models"
)

type DriverRequest struct {
	FullName          string `json:"full_name"`
	PhoneNumber       string `json:"phone_number"`
	LicenseNumber     string `json:"license_number"`
	AssignedVehicleID string `json:"assigned_vehicle_id,omitempty"`
	IsActive          bool   `json:"is_active"`
}

func (r *DriverRequest) Validate() error {
	if r.FullName == "" {
		return errors.New("full_name is required")
	}
	if r.PhoneNumber == "" {
		return errors.New("phone_number is required")
	}
	return nil
}

func (r *DriverRequest) ToModel(companyID string) *models.Driver {
	return &models.Driver{
		CompanyID:         companyID,
		FullName:          r.FullName,
		PhoneNumber:       r.PhoneNumber,
		LicenseNumber:     r.LicenseNumber,
		AssignedVehicleID: r.AssignedVehicleID,
		IsActive:          r.IsActive,
	}
}
