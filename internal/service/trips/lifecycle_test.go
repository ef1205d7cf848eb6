package trips

import (
	"errors"
	"testing"
	"time"

	"github.com/Temutjin2k/fleet-ops-system/internal/domain/models"
	"github.com/Temutjin2k/fleet-ops-system/internal/domain/types"
)

var testNow = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

func scheduledTrip() *models.Trip {
	return &models.Trip{
		ID:                  "trip-1",
		CompanyID:           "company-1",
		TripNumber:          "TRP-0001",
		Status:              types.TripScheduled,
		ScheduledPickupTime: testNow.Add(2 * time.Hour),
		PassengerCount:      2,
		CreatedAt:           testNow.Add(-time.Hour),
		UpdatedAt:           testNow.Add(-time.Hour),
	}
}

func tripInStatus(status types.TripStatus) *models.Trip {
	trip := scheduledTrip()
	trip.Status = status
	if status == types.TripAssigned || status == types.TripInProgress {
		trip.VehicleID = "veh-1"
		trip.DriverID = "drv-1"
	}
	if status == types.TripInProgress {
		pickup := testNow.Add(-10 * time.Minute)
		trip.ActualPickupTime = &pickup
	}
	return trip
}

func TestAssign(t *testing.T) {
	t.Run("from scheduled with both ids", func(t *testing.T) {
		trip := scheduledTrip()

		if err := Assign(trip, "veh-1", "drv-1", testNow); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if trip.Status != types.TripAssigned {
			t.Fatalf("expected status %s, got %s", types.TripAssigned, trip.Status)
		}
		if trip.VehicleID != "veh-1" || trip.DriverID != "drv-1" {
			t.Fatalf("assignment not stored: vehicle=%q driver=%q", trip.VehicleID, trip.DriverID)
		}
		if !trip.UpdatedAt.Equal(testNow) {
			t.Fatalf("expected UpdatedAt %v, got %v", testNow, trip.UpdatedAt)
		}
	})

	t.Run("reassign while assigned", func(t *testing.T) {
		trip := tripInStatus(types.TripAssigned)

		if err := Assign(trip, "veh-2", "drv-2", testNow); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if trip.VehicleID != "veh-2" || trip.DriverID != "drv-2" {
			t.Fatalf("reassignment not stored: vehicle=%q driver=%q", trip.VehicleID, trip.DriverID)
		}
		if trip.Status != types.TripAssigned {
			t.Fatalf("expected status %s, got %s", types.TripAssigned, trip.Status)
		}
	})

	t.Run("both empty clears assignment", func(t *testing.T) {
		trip := tripInStatus(types.TripAssigned)

		if err := Assign(trip, "", "", testNow); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if trip.Status != types.TripScheduled {
			t.Fatalf("expected status %s, got %s", types.TripScheduled, trip.Status)
		}
		if trip.VehicleID != "" || trip.DriverID != "" {
			t.Fatalf("assignment not cleared: vehicle=%q driver=%q", trip.VehicleID, trip.DriverID)
		}
	})

	t.Run("exactly one id empty is rejected", func(t *testing.T) {
		for _, pair := range [][2]string{{"veh-1", ""}, {"", "drv-1"}} {
			trip := scheduledTrip()
			before := *trip

			err := Assign(trip, pair[0], pair[1], testNow)
			if !errors.Is(err, types.ErrInvalidAssignment) {
				t.Fatalf("expected ErrInvalidAssignment, got %v", err)
			}
			if *trip != before {
				t.Fatalf("trip mutated by rejected assignment")
			}
		}
	})

	t.Run("rejected from later states", func(t *testing.T) {
		for _, status := range []types.TripStatus{types.TripInProgress, types.TripCompleted, types.TripCancelled} {
			trip := tripInStatus(status)
			before := *trip

			err := Assign(trip, "veh-9", "drv-9", testNow)
			if !errors.Is(err, types.ErrInvalidTransition) {
				t.Fatalf("status %s: expected ErrInvalidTransition, got %v", status, err)
			}
			if *trip != before {
				t.Fatalf("status %s: trip mutated by rejected assignment", status)
			}
		}
	})
}

func TestStart(t *testing.T) {
	t.Run("from assigned", func(t *testing.T) {
		trip := tripInStatus(types.TripAssigned)

		if err := Start(trip, testNow); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if trip.Status != types.TripInProgress {
			t.Fatalf("expected status %s, got %s", types.TripInProgress, trip.Status)
		}
		if trip.ActualPickupTime == nil || !trip.ActualPickupTime.Equal(testNow) {
			t.Fatalf("expected actual pickup time %v, got %v", testNow, trip.ActualPickupTime)
		}
	})

	t.Run("rejected from other states", func(t *testing.T) {
		for _, status := range []types.TripStatus{types.TripScheduled, types.TripInProgress, types.TripCompleted, types.TripCancelled} {
			trip := tripInStatus(status)
			before := *trip

			err := Start(trip, testNow)
			if !errors.Is(err, types.ErrInvalidTransition) {
				t.Fatalf("status %s: expected ErrInvalidTransition, got %v", status, err)
			}
			if *trip != before {
				t.Fatalf("status %s: trip mutated by rejected start", status)
			}
		}
	})
}

func TestComplete(t *testing.T) {
	t.Run("from in progress", func(t *testing.T) {
		trip := tripInStatus(types.TripInProgress)
		pickupBefore := *trip.ActualPickupTime

		if err := Complete(trip, testNow); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if trip.Status != types.TripCompleted {
			t.Fatalf("expected status %s, got %s", types.TripCompleted, trip.Status)
		}
		if trip.ActualDropoffTime == nil || !trip.ActualDropoffTime.Equal(testNow) {
			t.Fatalf("expected actual dropoff time %v, got %v", testNow, trip.ActualDropoffTime)
		}
		if !trip.ActualPickupTime.Equal(pickupBefore) {
			t.Fatalf("actual pickup time changed on complete")
		}
	})

	t.Run("rejected from other states", func(t *testing.T) {
		for _, status := range []types.TripStatus{types.TripScheduled, types.TripAssigned, types.TripCompleted, types.TripCancelled} {
			trip := tripInStatus(status)
			before := *trip

			err := Complete(trip, testNow)
			if !errors.Is(err, types.ErrInvalidTransition) {
				t.Fatalf("status %s: expected ErrInvalidTransition, got %v", status, err)
			}
			if *trip != before {
				t.Fatalf("status %s: trip mutated by rejected complete", status)
			}
		}
	})
}

func TestCancel(t *testing.T) {
	t.Run("from non-terminal states", func(t *testing.T) {
		for _, status := range []types.TripStatus{types.TripScheduled, types.TripAssigned, types.TripInProgress} {
			trip := tripInStatus(status)

			if err := Cancel(trip, testNow); err != nil {
				t.Fatalf("status %s: unexpected error: %v", status, err)
			}
			if trip.Status != types.TripCancelled {
				t.Fatalf("status %s: expected %s, got %s", status, types.TripCancelled, trip.Status)
			}
		}
	})

	t.Run("keeps actual pickup time", func(t *testing.T) {
		trip := tripInStatus(types.TripInProgress)
		pickupBefore := *trip.ActualPickupTime

		if err := Cancel(trip, testNow); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if trip.ActualPickupTime == nil || !trip.ActualPickupTime.Equal(pickupBefore) {
			t.Fatalf("actual pickup time lost on cancel")
		}
	})

	t.Run("rejected from terminal states", func(t *testing.T) {
		for _, status := range []types.TripStatus{types.TripCompleted, types.TripCancelled} {
			trip := tripInStatus(status)
			before := *trip

			err := Cancel(trip, testNow)
			if !errors.Is(err, types.ErrInvalidTransition) {
				t.Fatalf("status %s: expected ErrInvalidTransition, got %v", status, err)
			}
			if *trip != before {
				t.Fatalf("status %s: trip mutated by rejected cancel", status)
			}
		}
	})
}

func TestIsOverdue(t *testing.T) {
	tests := []struct {
		name   string
		pickup time.Time
		status types.TripStatus
		want   bool
	}{
		{"pickup passed, scheduled", testNow.Add(-time.Hour), types.TripScheduled, true},
		{"pickup passed, in progress", testNow.Add(-time.Hour), types.TripInProgress, true},
		{"pickup passed, completed", testNow.Add(-time.Hour), types.TripCompleted, false},
		{"pickup in future", testNow.Add(time.Hour), types.TripScheduled, false},
	}

	for _, tt := range tests {
		trip := tripInStatus(tt.status)
		trip.ScheduledPickupTime = tt.pickup

		if got := IsOverdue(trip, testNow); got != tt.want {
			t.Errorf("%s: IsOverdue = %v, want %v", tt.name, got, tt.want)
		}
	}
}

func TestIsUpcoming(t *testing.T) {
	tests := []struct {
		name   string
		pickup time.Time
		status types.TripStatus
		want   bool
	}{
		{"within the hour", testNow.Add(30 * time.Minute), types.TripScheduled, true},
		{"more than an hour away", testNow.Add(2 * time.Hour), types.TripScheduled, false},
		{"already passed", testNow.Add(-time.Minute), types.TripScheduled, false},
		{"within the hour but assigned", testNow.Add(30 * time.Minute), types.TripAssigned, false},
	}

	for _, tt := range tests {
		trip := tripInStatus(tt.status)
		trip.ScheduledPickupTime = tt.pickup

		if got := IsUpcoming(trip, testNow); got != tt.want {
			t.Errorf("%s: IsUpcoming = %v, want %v", tt.name, got, tt.want)
		}
	}
}
