package trips

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Temutjin2k/fleet-ops-system/internal/docstore"
	"github.com/Temutjin2k/fleet-ops-system/internal/domain/models"
	"github.com/Temutjin2k/fleet-ops-system/internal/domain/types"
	"github.com/Temutjin2k/fleet-ops-system/internal/stats"
	"github.com/Temutjin2k/fleet-ops-system/pkg/logger"
	wrap "github.com/Temutjin2k/fleet-ops-system/pkg/logger/wrapper"
	"github.com/Temutjin2k/fleet-ops-system/pkg/metrics"
	"github.com/Temutjin2k/fleet-ops-system/pkg/uuid"
)

var ErrInvalidPassengerCount = errors.New("passenger count must be at least 1")

// Service applies lifecycle transitions to trips stored in the document
// store: load, transition, write back. The write is observed again by any
// live listeners, closing the loop.
type Service struct {
	store docstore.Store
	log   logger.Logger
	now   func() time.Time
}

func NewService(store docstore.Store, log logger.Logger) *Service {
	return &Service{
		store: store,
		log:   log,
		now:   time.Now,
	}
}

// Create stores a new SCHEDULED trip with a company-scoped trip number.
func (s *Service) Create(ctx context.Context, trip *models.Trip) (*models.Trip, error) {
	ctx = wrap.WithAction(wrap.WithCompanyID(ctx, trip.CompanyID), "create_trip")

	if trip.PassengerCount < 1 {
		return nil, wrap.Error(ctx, ErrInvalidPassengerCount)
	}
	if trip.Fare != nil && *trip.Fare < 0 {
		return nil, wrap.Error(ctx, errors.New("fare must not be negative"))
	}

	id, err := uuid.New()
	if err != nil {
		return nil, wrap.Error(ctx, fmt.Errorf("could not generate trip id: %w", err))
	}

	number, err := s.nextTripNumber(ctx, trip.CompanyID)
	if err != nil {
		return nil, wrap.Error(ctx, fmt.Errorf("could not generate trip number: %w", err))
	}

	now := s.now()
	trip.ID = id.String()
	trip.TripNumber = number
	trip.Status = types.TripScheduled
	trip.VehicleID = ""
	trip.DriverID = ""
	trip.ActualPickupTime = nil
	trip.ActualDropoffTime = nil
	trip.CreatedAt = now
	trip.UpdatedAt = now

	if err := s.store.Write(ctx, types.CollectionTrips, trip.ID, trip); err != nil {
		return nil, wrap.Error(ctx, fmt.Errorf("could not store trip: %w", err))
	}

	metrics.TripTransitionsTotal.WithLabelValues(types.ServiceName, types.TripScheduled.String()).Inc()

	return trip, nil
}

// Get returns a trip by id, scoped to the caller's company.
func (s *Service) Get(ctx context.Context, companyID, tripID string) (*models.Trip, error) {
	docs, err := s.store.Query(ctx, types.CollectionTrips, []docstore.Filter{docstore.Eq("id", tripID)})
	if err != nil {
		return nil, fmt.Errorf("could not load trip: %w", err)
	}

	trips, _ := stats.DecodeTrips(docs)
	for i := range trips {
		if trips[i].ID == tripID && trips[i].CompanyID == companyID {
			return &trips[i], nil
		}
	}

	return nil, types.ErrTripNotFound
}

// List returns every trip for a company.
func (s *Service) List(ctx context.Context, companyID string) ([]models.Trip, error) {
	docs, err := s.store.Query(ctx, types.CollectionTrips, []docstore.Filter{docstore.Eq("company_id", companyID)})
	if err != nil {
		return nil, fmt.Errorf("could not list trips: %w", err)
	}

	trips, _ := stats.DecodeTrips(docs)
	return trips, nil
}

// Assign sets the vehicle/driver pair on a trip.
func (s *Service) Assign(ctx context.Context, companyID, tripID, vehicleID, driverID string) (*models.Trip, error) {
	ctx = wrap.WithAction(wrap.WithTripID(ctx, tripID), "assign_trip")

	return s.transition(ctx, companyID, tripID, func(trip *models.Trip) error {
		return Assign(trip, vehicleID, driverID, s.now())
	})
}

// Start moves a trip to IN_PROGRESS.
func (s *Service) Start(ctx context.Context, companyID, tripID string) (*models.Trip, error) {
	ctx = wrap.WithAction(wrap.WithTripID(ctx, tripID), "start_trip")

	return s.transition(ctx, companyID, tripID, func(trip *models.Trip) error {
		return Start(trip, s.now())
	})
}

// Complete moves a trip to COMPLETED.
func (s *Service) Complete(ctx context.Context, companyID, tripID string) (*models.Trip, error) {
	ctx = wrap.WithAction(wrap.WithTripID(ctx, tripID), "complete_trip")

	return s.transition(ctx, companyID, tripID, func(trip *models.Trip) error {
		return Complete(trip, s.now())
	})
}

// Cancel moves a non-terminal trip to CANCELLED.
func (s *Service) Cancel(ctx context.Context, companyID, tripID string) (*models.Trip, error) {
	ctx = wrap.WithAction(wrap.WithTripID(ctx, tripID), "cancel_trip")

	return s.transition(ctx, companyID, tripID, func(trip *models.Trip) error {
		return Cancel(trip, s.now())
	})
}

// transition loads a trip, applies fn, and writes the result back. A
// rejected transition reaches the caller unchanged and nothing is written.
func (s *Service) transition(ctx context.Context, companyID, tripID string, fn func(*models.Trip) error) (*models.Trip, error) {
	trip, err := s.Get(ctx, companyID, tripID)
	if err != nil {
		return nil, wrap.Error(ctx, err)
	}

	if err := fn(trip); err != nil {
		metrics.TripTransitionRejectionsTotal.WithLabelValues(types.ServiceName).Inc()
		return nil, wrap.Error(ctx, err)
	}

	if err := s.store.Write(ctx, types.CollectionTrips, trip.ID, trip); err != nil {
		return nil, wrap.Error(ctx, fmt.Errorf("could not store trip: %w", err))
	}

	metrics.TripTransitionsTotal.WithLabelValues(types.ServiceName, trip.Status.String()).Inc()

	return trip, nil
}

// nextTripNumber produces the next human-facing number in the company's
// sequence.
func (s *Service) nextTripNumber(ctx context.Context, companyID string) (string, error) {
	docs, err := s.store.Query(ctx, types.CollectionTrips, []docstore.Filter{docstore.Eq("company_id", companyID)})
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("TRP-%04d", len(docs)+1), nil
}
