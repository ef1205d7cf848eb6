package dto

import (
	"errors"
	"time"

	"github.com/Temutjin2k/fleet-ops-system/internal/domain/models"
	"github.com/Temutjin2k/fleet-ops-system/internal/domain/types"
)

type VehicleRequest struct {
	PlateNumber          string    `json:"plate_number"`
	Model                string    `json:"model"`
	Capacity             int       `json:"capacity"`
	VehicleType          string    `json:"vehicle_type"`
	InsuranceExpiryDate  time.Time `json:"insurance_expiry_date"`
	InspectionExpiryDate time.Time `json:"inspection_expiry_date"`
	IsActive             bool      `json:"is_active"`
}

func (r *VehicleRequest) Validate() error {
	if r.PlateNumber == "" {
		return errors.New("plate_number is required")
	}
	if r.Capacity < 1 {
		return errors.New("capacity must be at least 1")
	}
	return nil
}

func (r *VehicleRequest) ToModel(companyID string) *models.Vehicle {
	return &models.Vehicle{
		CompanyID:            companyID,
		PlateNumber:          r.PlateNumber,
		Model:                r.Model,
		Capacity:             r.Capacity,
		VehicleType:          types.VehicleType(r.VehicleType),
		InsuranceExpiryDate:  r.InsuranceExpiryDate,
		InspectionExpiryDate: r.InspectionExpiryDate,
		IsActive:             r.IsActive,
	}
}
