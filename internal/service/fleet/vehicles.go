// Package fleet manages the vehicle and driver collections of a company.
package fleet

import (
	"context"
	"fmt"
	"time"

	"github.com/Temutjin2k/fleet-ops-system/internal/docstore"
	"github.com/Temutjin2k/fleet-ops-system/internal/domain/models"
	"github.com/Temutjin2k/fleet-ops-system/internal/domain/types"
	"github.com/Temutjin2k/fleet-ops-system/internal/reminder"
	"github.com/Temutjin2k/fleet-ops-system/internal/stats"
	"github.com/Temutjin2k/fleet-ops-system/pkg/logger"
	wrap "github.com/Temutjin2k/fleet-ops-system/pkg/logger/wrapper"
	"github.com/Temutjin2k/fleet-ops-system/pkg/uuid"
)

type Service struct {
	store     docstore.Store
	scheduler *reminder.Scheduler
	log       logger.Logger
	now       func() time.Time
}

func NewService(store docstore.Store, scheduler *reminder.Scheduler, log logger.Logger) *Service {
	return &Service{
		store:     store,
		scheduler: scheduler,
		log:       log,
		now:       time.Now,
	}
}

// CreateVehicle stores a new vehicle and schedules its expiry reminders.
// Reminder failures do not fail the create; the alerts can be rescheduled.
func (s *Service) CreateVehicle(ctx context.Context, vehicle *models.Vehicle) (*models.Vehicle, error) {
	ctx = wrap.WithAction(wrap.WithCompanyID(ctx, vehicle.CompanyID), "create_vehicle")

	id, err := uuid.New()
	if err != nil {
		return nil, wrap.Error(ctx, fmt.Errorf("could not generate vehicle id: %w", err))
	}

	now := s.now()
	vehicle.ID = id.String()
	vehicle.CreatedAt = now
	vehicle.UpdatedAt = now

	if err := s.store.Write(ctx, types.CollectionVehicles, vehicle.ID, vehicle); err != nil {
		return nil, wrap.Error(ctx, fmt.Errorf("could not store vehicle: %w", err))
	}

	if err := s.scheduler.ScheduleVehicle(ctx, vehicle); err != nil {
		s.log.Warn(ctx, "failed to schedule some expiry reminders",
			"vehicle_id", vehicle.ID,
			"err", err.Error(),
		)
	}

	return vehicle, nil
}

// UpdateVehicle overwrites a vehicle's mutable fields and reschedules its
// expiry reminders. The deterministic reminder keys make this safe to
// repeat: unchanged dates reproduce the same alert set.
func (s *Service) UpdateVehicle(ctx context.Context, companyID string, vehicle *models.Vehicle) (*models.Vehicle, error) {
	ctx = wrap.WithAction(wrap.WithCompanyID(ctx, companyID), "update_vehicle")

	existing, err := s.GetVehicle(ctx, companyID, vehicle.ID)
	if err != nil {
		return nil, wrap.Error(ctx, err)
	}

	vehicle.CompanyID = existing.CompanyID
	vehicle.CreatedAt = existing.CreatedAt
	vehicle.UpdatedAt = s.now()

	if err := s.store.Write(ctx, types.CollectionVehicles, vehicle.ID, vehicle); err != nil {
		return nil, wrap.Error(ctx, fmt.Errorf("could not store vehicle: %w", err))
	}

	if err := s.scheduler.ScheduleVehicle(ctx, vehicle); err != nil {
		s.log.Warn(ctx, "failed to schedule some expiry reminders",
			"vehicle_id", vehicle.ID,
			"err", err.Error(),
		)
	}

	return vehicle, nil
}

// GetVehicle returns a vehicle by id, scoped to the caller's company.
func (s *Service) GetVehicle(ctx context.Context, companyID, vehicleID string) (*models.Vehicle, error) {
	docs, err := s.store.Query(ctx, types.CollectionVehicles, []docstore.Filter{docstore.Eq("id", vehicleID)})
	if err != nil {
		return nil, fmt.Errorf("could not load vehicle: %w", err)
	}

	vehicles, _ := stats.DecodeVehicles(docs)
	for i := range vehicles {
		if vehicles[i].ID == vehicleID && vehicles[i].CompanyID == companyID {
			return &vehicles[i], nil
		}
	}

	return nil, types.ErrVehicleNotFound
}

// ListVehicles returns every vehicle of a company.
func (s *Service) ListVehicles(ctx context.Context, companyID string) ([]models.Vehicle, error) {
	docs, err := s.store.Query(ctx, types.CollectionVehicles, []docstore.Filter{docstore.Eq("company_id", companyID)})
	if err != nil {
		return nil, fmt.Errorf("could not list vehicles: %w", err)
	}

	vehicles, _ := stats.DecodeVehicles(docs)
	return vehicles, nil
}
