// Package ops is the caller-facing facade over the live operational core:
// statistics sessions, trip lifecycle operations, and reminder
// rescheduling.
package ops

import (
	"context"
	"sync"
	"time"

	"github.com/Temutjin2k/fleet-ops-system/internal/docstore"
	"github.com/Temutjin2k/fleet-ops-system/internal/domain/models"
	"github.com/Temutjin2k/fleet-ops-system/internal/domain/types"
	"github.com/Temutjin2k/fleet-ops-system/internal/feed"
	"github.com/Temutjin2k/fleet-ops-system/internal/reminder"
	"github.com/Temutjin2k/fleet-ops-system/internal/service/fleet"
	"github.com/Temutjin2k/fleet-ops-system/internal/service/trips"
	"github.com/Temutjin2k/fleet-ops-system/internal/stats"
	"github.com/Temutjin2k/fleet-ops-system/pkg/logger"
	wrap "github.com/Temutjin2k/fleet-ops-system/pkg/logger/wrapper"
	"github.com/Temutjin2k/fleet-ops-system/pkg/metrics"
)

// Subscription keys, one per watched collection.
const (
	KeyVehicles      = "vehicles-for-company"
	KeyActiveDrivers = "active-drivers-for-company"
	KeyTrips         = "trips-for-company"
)

type Service struct {
	store     docstore.Store
	trips     *trips.Service
	fleet     *fleet.Service
	scheduler *reminder.Scheduler
	log       logger.Logger
	now       func() time.Time

	mu      sync.Mutex
	session *feed.Session
}

func NewService(
	store docstore.Store,
	tripService *trips.Service,
	fleetService *fleet.Service,
	scheduler *reminder.Scheduler,
	log logger.Logger,
) *Service {
	return &Service{
		store:     store,
		trips:     tripService,
		fleet:     fleetService,
		scheduler: scheduler,
		log:       log,
		now:       time.Now,
	}
}

// Watch opens an independent statistics session over a company's data.
// onUpdate (may be nil) receives a copy of the counters after every applied
// snapshot. The caller owns the session and must Close it.
func (s *Service) Watch(ctx context.Context, companyID string, onUpdate func(models.CompanyStatistics)) *feed.Session {
	ctx = wrap.WithCompanyID(ctx, companyID)

	set := feed.NewListenerSet(s.store, s.log, onUpdate)

	// A failed key records its error in the session status and does not
	// stop the other keys.
	if err := set.Start(ctx, KeyVehicles, s.vehiclesSpec(companyID)); err != nil {
		s.log.Warn(ctx, "vehicles subscription failed", "err", err.Error())
	}
	if err := set.Start(ctx, KeyActiveDrivers, s.driversSpec(companyID)); err != nil {
		s.log.Warn(ctx, "drivers subscription failed", "err", err.Error())
	}
	if err := set.Start(ctx, KeyTrips, s.tripsSpec(companyID)); err != nil {
		s.log.Warn(ctx, "trips subscription failed", "err", err.Error())
	}

	return feed.NewSession(companyID, set)
}

// StartStatistics opens (or replaces) the service-held statistics session
// for a company. The previous session, if any, is closed first.
func (s *Service) StartStatistics(ctx context.Context, companyID string) *feed.Session {
	session := s.Watch(ctx, companyID, nil)

	s.mu.Lock()
	old := s.session
	s.session = session
	s.mu.Unlock()

	if old != nil {
		old.Close()
	}

	return session
}

// StopStatistics closes the service-held session. Idempotent.
func (s *Service) StopStatistics() {
	s.mu.Lock()
	old := s.session
	s.session = nil
	s.mu.Unlock()

	if old != nil {
		old.Close()
	}
}

// AssignTrip sets the vehicle/driver pair on a trip.
func (s *Service) AssignTrip(ctx context.Context, companyID, tripID, vehicleID, driverID string) (*models.Trip, error) {
	return s.trips.Assign(ctx, companyID, tripID, vehicleID, driverID)
}

// StartTrip moves a trip to IN_PROGRESS.
func (s *Service) StartTrip(ctx context.Context, companyID, tripID string) (*models.Trip, error) {
	return s.trips.Start(ctx, companyID, tripID)
}

// CompleteTrip moves a trip to COMPLETED.
func (s *Service) CompleteTrip(ctx context.Context, companyID, tripID string) (*models.Trip, error) {
	return s.trips.Complete(ctx, companyID, tripID)
}

// CancelTrip moves a non-terminal trip to CANCELLED.
func (s *Service) CancelTrip(ctx context.Context, companyID, tripID string) (*models.Trip, error) {
	return s.trips.Cancel(ctx, companyID, tripID)
}

// CreateTrip stores a new SCHEDULED trip.
func (s *Service) CreateTrip(ctx context.Context, trip *models.Trip) (*models.Trip, error) {
	return s.trips.Create(ctx, trip)
}

// ListTrips returns every trip for a company.
func (s *Service) ListTrips(ctx context.Context, companyID string) ([]models.Trip, error) {
	return s.trips.List(ctx, companyID)
}

// CreateVehicle stores a new vehicle and schedules its expiry reminders.
func (s *Service) CreateVehicle(ctx context.Context, vehicle *models.Vehicle) (*models.Vehicle, error) {
	return s.fleet.CreateVehicle(ctx, vehicle)
}

// UpdateVehicle overwrites a vehicle and reschedules its expiry reminders.
func (s *Service) UpdateVehicle(ctx context.Context, companyID string, vehicle *models.Vehicle) (*models.Vehicle, error) {
	return s.fleet.UpdateVehicle(ctx, companyID, vehicle)
}

// ListVehicles returns every vehicle of a company.
func (s *Service) ListVehicles(ctx context.Context, companyID string) ([]models.Vehicle, error) {
	return s.fleet.ListVehicles(ctx, companyID)
}

// CreateDriver stores a new driver.
func (s *Service) CreateDriver(ctx context.Context, driver *models.Driver) (*models.Driver, error) {
	return s.fleet.CreateDriver(ctx, driver)
}

// ListDrivers returns every driver of a company.
func (s *Service) ListDrivers(ctx context.Context, companyID string) ([]models.Driver, error) {
	return s.fleet.ListDrivers(ctx, companyID)
}

// FindDriverByPhone resolves a driver by phone number.
func (s *Service) FindDriverByPhone(ctx context.Context, companyID, phone string) (*models.Driver, error) {
	return s.fleet.FindDriverByPhone(ctx, companyID, phone)
}

// RescheduleVehicleReminders recomputes and reschedules both expiry kinds
// for a vehicle.
func (s *Service) RescheduleVehicleReminders(ctx context.Context, companyID, vehicleID string) error {
	vehicle, err := s.fleet.GetVehicle(ctx, companyID, vehicleID)
	if err != nil {
		return err
	}
	return s.scheduler.ScheduleVehicle(ctx, vehicle)
}

// --- per-key subscription specs ---

func (s *Service) vehiclesSpec(companyID string) feed.Spec {
	return feed.Spec{
		Collection: types.CollectionVehicles,
		Filters:    []docstore.Filter{docstore.Eq("company_id", companyID)},
		Apply: func(snap docstore.Snapshot, st *models.CompanyStatistics) {
			vehicles, skipped := stats.DecodeVehicles(snap.Docs)
			s.countSkipped(types.CollectionVehicles, skipped)
			st.TotalVehicles = stats.CountVehicles(vehicles)
		},
	}
}

func (s *Service) driversSpec(companyID string) feed.Spec {
	return feed.Spec{
		Collection: types.CollectionDrivers,
		Filters:    []docstore.Filter{docstore.Eq("company_id", companyID)},
		Apply: func(snap docstore.Snapshot, st *models.CompanyStatistics) {
			drivers, skipped := stats.DecodeDrivers(snap.Docs)
			s.countSkipped(types.CollectionDrivers, skipped)
			st.ActiveDrivers = stats.CountActiveDrivers(drivers)
		},
	}
}

func (s *Service) tripsSpec(companyID string) feed.Spec {
	return feed.Spec{
		Collection: types.CollectionTrips,
		Filters:    []docstore.Filter{docstore.Eq("company_id", companyID)},
		Apply: func(snap docstore.Snapshot, st *models.CompanyStatistics) {
			tripRecords, skipped := stats.DecodeTrips(snap.Docs)
			s.countSkipped(types.CollectionTrips, skipped)
			st.TodaysTrips = stats.CountTodaysTrips(tripRecords, s.now())
			st.CompletedTrips = stats.CountCompletedTrips(tripRecords)
		},
	}
}

func (s *Service) countSkipped(collection string, skipped int) {
	if skipped == 0 {
		return
	}
	metrics.DecodeSkipsTotal.WithLabelValues(types.ServiceName, collection).Add(float64(skipped))
	s.log.Warn(wrap.WithAction(context.Background(), "decode_documents"), "skipped undecodable documents",
		"collection", collection,
		"skipped", skipped,
	)
}
