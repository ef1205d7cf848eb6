// Trip lifecycle state machine.
//
// Allowed edges:
//
//	SCHEDULED -> ASSIGNED -> IN_PROGRESS -> COMPLETED
//	SCHEDULED, ASSIGNED, IN_PROGRESS -> CANCELLED
//
// COMPLETED and CANCELLED are terminal. A failed transition leaves the trip
// untouched; a successful one additionally sets UpdatedAt and nothing else.
package trips

import (
	"fmt"
	"time"

	"github.com/Temutjin2k/fleet-ops-system/internal/domain/models"
	"github.com/Temutjin2k/fleet-ops-system/internal/domain/types"
)

// Assign sets or clears the vehicle/driver pair. Permitted only while the
// trip is SCHEDULED or ASSIGNED. Both ids empty clears the assignment and
// the trip stays SCHEDULED; both set moves it to ASSIGNED; exactly one
// empty is rejected, a half-assignment is never stored.
func Assign(trip *models.Trip, vehicleID, driverID string, now time.Time) error {
	if trip.Status != types.TripScheduled && trip.Status != types.TripAssigned {
		return fmt.Errorf("%w: cannot assign while %s", types.ErrInvalidTransition, trip.Status)
	}

	if (vehicleID == "") != (driverID == "") {
		return types.ErrInvalidAssignment
	}

	trip.VehicleID = vehicleID
	trip.DriverID = driverID

	if vehicleID != "" && driverID != "" {
		trip.Status = types.TripAssigned
	} else {
		trip.Status = types.TripScheduled
	}

	trip.UpdatedAt = now

	return nil
}

// Start moves an ASSIGNED trip to IN_PROGRESS and records the actual pickup
// time.
func Start(trip *models.Trip, now time.Time) error {
	if trip.Status != types.TripAssigned {
		return fmt.Errorf("%w: cannot start from %s", types.ErrInvalidTransition, trip.Status)
	}

	pickup := now
	trip.Status = types.TripInProgress
	trip.ActualPickupTime = &pickup
	trip.UpdatedAt = now

	return nil
}

// Complete moves an IN_PROGRESS trip to COMPLETED and records the actual
// dropoff time.
func Complete(trip *models.Trip, now time.Time) error {
	if trip.Status != types.TripInProgress {
		return fmt.Errorf("%w: cannot complete from %s", types.ErrInvalidTransition, trip.Status)
	}

	dropoff := now
	trip.Status = types.TripCompleted
	trip.ActualDropoffTime = &dropoff
	trip.UpdatedAt = now

	return nil
}

// Cancel moves a non-terminal trip to CANCELLED. An already-recorded actual
// pickup time is kept.
func Cancel(trip *models.Trip, now time.Time) error {
	if trip.Status.IsTerminal() {
		return fmt.Errorf("%w: cannot cancel from %s", types.ErrInvalidTransition, trip.Status)
	}

	trip.Status = types.TripCancelled
	trip.UpdatedAt = now

	return nil
}

// IsOverdue reports whether the scheduled pickup has passed without the trip
// completing. Recomputed on demand, never stored.
func IsOverdue(trip *models.Trip, now time.Time) bool {
	return trip.ScheduledPickupTime.Before(now) && trip.Status != types.TripCompleted
}

// IsUpcoming reports whether a SCHEDULED trip picks up within the next hour.
func IsUpcoming(trip *models.Trip, now time.Time) bool {
	if trip.Status != types.TripScheduled {
		return false
	}
	pickup := trip.ScheduledPickupTime
	return now.Before(pickup) && pickup.Before(now.Add(time.Hour))
}
