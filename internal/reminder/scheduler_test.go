package reminder

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/Temutjin2k/fleet-ops-system/internal/domain/models"
	"github.com/Temutjin2k/fleet-ops-system/pkg/logger"
)

type fakeSink struct {
	mu        sync.Mutex
	scheduled map[string]time.Time
	immediate []string
	cancelled []string

	// keys containing this substring fail to schedule
	failSubstring string
}

func newFakeSink() *fakeSink {
	return &fakeSink{scheduled: make(map[string]time.Time)}
}

func (s *fakeSink) Schedule(_ context.Context, key string, deliverAt time.Time, _, _ string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.failSubstring != "" && strings.Contains(key, s.failSubstring) {
		return errors.New("sink unavailable")
	}
	s.scheduled[key] = deliverAt
	return nil
}

func (s *fakeSink) ScheduleImmediate(_ context.Context, key, _, _ string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.failSubstring != "" && strings.Contains(key, s.failSubstring) {
		return errors.New("sink unavailable")
	}
	s.immediate = append(s.immediate, key)
	return nil
}

func (s *fakeSink) Cancel(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cancelled = append(s.cancelled, key)
	return nil
}

func (s *fakeSink) scheduledKeys() map[string]time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make(map[string]time.Time, len(s.scheduled))
	for k, v := range s.scheduled {
		out[k] = v
	}
	return out
}

func (s *fakeSink) cancelledKeys() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.cancelled...)
}

func newTestScheduler(sink Sink) *Scheduler {
	s := NewScheduler(sink, logger.InitLogger("test", logger.LevelError))
	s.now = func() time.Time { return planNow }
	return s
}

func testVehicle() *models.Vehicle {
	return &models.Vehicle{
		ID:                   "veh-1",
		CompanyID:            "company-1",
		PlateNumber:          "AB 123 CD",
		InsuranceExpiryDate:  time.Date(2026, 4, 15, 0, 0, 0, 0, time.UTC),
		InspectionExpiryDate: time.Date(2026, 5, 1, 0, 0, 0, 0, time.UTC),
	}
}

func TestScheduleVehicleBothKinds(t *testing.T) {
	sink := newFakeSink()
	s := newTestScheduler(sink)

	if err := s.ScheduleVehicle(context.Background(), testVehicle()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	scheduled := sink.scheduledKeys()
	if len(scheduled) != 2*len(Offsets) {
		t.Fatalf("expected %d scheduled reminders, got %d", 2*len(Offsets), len(scheduled))
	}
	for _, key := range []string{"veh-1:insurance:30d", "veh-1:inspection:0d"} {
		if _, ok := scheduled[key]; !ok {
			t.Errorf("expected key %q to be scheduled", key)
		}
	}

	// The expired keys were not emitted, so they must have been cancelled.
	cancelled := sink.cancelledKeys()
	for _, key := range []string{"veh-1:insurance:expired", "veh-1:inspection:expired"} {
		if !containsKey(cancelled, key) {
			t.Errorf("expected stale key %q to be cancelled", key)
		}
	}
}

func TestScheduleVehicleIsIdempotent(t *testing.T) {
	sink := newFakeSink()
	s := newTestScheduler(sink)
	ctx := context.Background()

	if err := s.ScheduleVehicle(ctx, testVehicle()); err != nil {
		t.Fatalf("first schedule: %v", err)
	}
	first := sink.scheduledKeys()

	if err := s.ScheduleVehicle(ctx, testVehicle()); err != nil {
		t.Fatalf("second schedule: %v", err)
	}
	second := sink.scheduledKeys()

	if len(first) != len(second) {
		t.Fatalf("key set changed between identical schedules: %d vs %d", len(first), len(second))
	}
	for key, deliverAt := range first {
		if !second[key].Equal(deliverAt) {
			t.Errorf("key %q: delivery changed from %v to %v", key, deliverAt, second[key])
		}
	}
}

func TestScheduleVehicleKindIsolation(t *testing.T) {
	sink := newFakeSink()
	sink.failSubstring = "insurance"
	s := newTestScheduler(sink)

	err := s.ScheduleVehicle(context.Background(), testVehicle())
	if err == nil {
		t.Fatal("expected an error from the failing insurance kind")
	}

	// Inspection must have gone through regardless.
	scheduled := sink.scheduledKeys()
	for _, offset := range Offsets {
		key := Key("veh-1", KindInspection, offset)
		if _, ok := scheduled[key]; !ok {
			t.Errorf("expected inspection key %q despite insurance failure", key)
		}
	}
}

func TestScheduleVehicleExpiryEditCancelsStaleKeys(t *testing.T) {
	sink := newFakeSink()
	s := newTestScheduler(sink)
	ctx := context.Background()

	vehicle := testVehicle()
	if err := s.ScheduleVehicle(ctx, vehicle); err != nil {
		t.Fatalf("first schedule: %v", err)
	}

	// Move insurance expiry to tomorrow: only the day-of slot survives.
	vehicle.InsuranceExpiryDate = planNow.AddDate(0, 0, 1)
	if err := s.ScheduleVehicle(ctx, vehicle); err != nil {
		t.Fatalf("second schedule: %v", err)
	}

	cancelled := sink.cancelledKeys()
	for _, key := range []string{"veh-1:insurance:30d", "veh-1:insurance:7d", "veh-1:insurance:1d"} {
		if !containsKey(cancelled, key) {
			t.Errorf("expected stale key %q to be cancelled after expiry edit", key)
		}
	}
}

func TestScheduleVehicleZeroExpiryClearsEverything(t *testing.T) {
	sink := newFakeSink()
	s := newTestScheduler(sink)

	vehicle := testVehicle()
	vehicle.InsuranceExpiryDate = time.Time{}

	if err := s.ScheduleVehicle(context.Background(), vehicle); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	cancelled := sink.cancelledKeys()
	for _, key := range CandidateKeys("veh-1", KindInsurance) {
		if !containsKey(cancelled, key) {
			t.Errorf("expected candidate key %q to be cancelled for untracked expiry", key)
		}
	}

	for key := range sink.scheduledKeys() {
		if strings.Contains(key, "insurance") {
			t.Errorf("unexpected insurance key %q scheduled", key)
		}
	}
}

func TestScheduleVehicleExpiredFiresImmediately(t *testing.T) {
	sink := newFakeSink()
	s := newTestScheduler(sink)

	vehicle := testVehicle()
	vehicle.InsuranceExpiryDate = planNow.AddDate(0, 0, -10)

	if err := s.ScheduleVehicle(context.Background(), vehicle); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := ExpiredKey("veh-1", KindInsurance)
	if !containsKey(sink.immediate, want) {
		t.Fatalf("expected immediate alert %q, got %v", want, sink.immediate)
	}
}

func containsKey(keys []string, want string) bool {
	for _, k := range keys {
		if k == want {
			return true
		}
	}
	return false
}
