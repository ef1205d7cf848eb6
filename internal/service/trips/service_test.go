package trips

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/Temutjin2k/fleet-ops-system/internal/docstore"
	"github.com/Temutjin2k/fleet-ops-system/internal/domain/types"
	"github.com/Temutjin2k/fleet-ops-system/pkg/logger"
)

// memStore is an in-memory document store good enough for service tests:
// equality filters over the JSON representation, no live queries.
type memStore struct {
	mu     sync.Mutex
	docs   map[string]map[string][]byte
	writes int
}

func newMemStore() *memStore {
	return &memStore{docs: make(map[string]map[string][]byte)}
}

func (s *memStore) Query(_ context.Context, collection string, filters []docstore.Filter) ([]docstore.Document, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var out []docstore.Document
	for id, data := range s.docs[collection] {
		var fields map[string]any
		if err := json.Unmarshal(data, &fields); err != nil {
			return nil, err
		}

		match := true
		for _, f := range filters {
			if fmt.Sprint(fields[f.Field]) != fmt.Sprint(f.Value) {
				match = false
				break
			}
		}
		if match {
			out = append(out, docstore.Document{ID: id, Data: data})
		}
	}
	return out, nil
}

func (s *memStore) Live(context.Context, string, []docstore.Filter) (docstore.LiveHandle, error) {
	return nil, errors.New("live queries not supported")
}

func (s *memStore) Write(_ context.Context, collection, id string, record any) error {
	data, err := json.Marshal(record)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.docs[collection] == nil {
		s.docs[collection] = make(map[string][]byte)
	}
	s.docs[collection][id] = data
	s.writes++
	return nil
}

func (s *memStore) Delete(_ context.Context, collection, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.docs[collection], id)
	return nil
}

func (s *memStore) writeCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.writes
}

func newTestService(store *memStore) *Service {
	svc := NewService(store, logger.InitLogger("test", logger.LevelError))
	svc.now = func() time.Time { return testNow }
	return svc
}

func TestServiceCreate(t *testing.T) {
	store := newMemStore()
	svc := newTestService(store)
	ctx := context.Background()

	trip := scheduledTrip()
	trip.ID = ""
	trip.TripNumber = ""

	created, err := svc.Create(ctx, trip)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if created.ID == "" {
		t.Fatal("expected generated trip id")
	}
	if created.TripNumber != "TRP-0001" {
		t.Fatalf("expected trip number TRP-0001, got %s", created.TripNumber)
	}
	if created.Status != types.TripScheduled {
		t.Fatalf("expected status %s, got %s", types.TripScheduled, created.Status)
	}

	second, err := svc.Create(ctx, scheduledTrip())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if second.TripNumber != "TRP-0002" {
		t.Fatalf("expected trip number TRP-0002, got %s", second.TripNumber)
	}
}

func TestServiceCreateInvalidPassengerCount(t *testing.T) {
	svc := newTestService(newMemStore())

	trip := scheduledTrip()
	trip.PassengerCount = 0

	if _, err := svc.Create(context.Background(), trip); !errors.Is(err, ErrInvalidPassengerCount) {
		t.Fatalf("expected ErrInvalidPassengerCount, got %v", err)
	}
}

func TestServiceLifecycleFlow(t *testing.T) {
	store := newMemStore()
	svc := newTestService(store)
	ctx := context.Background()

	created, err := svc.Create(ctx, scheduledTrip())
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	assigned, err := svc.Assign(ctx, created.CompanyID, created.ID, "veh-1", "drv-1")
	if err != nil {
		t.Fatalf("assign: %v", err)
	}
	if assigned.Status != types.TripAssigned {
		t.Fatalf("expected %s, got %s", types.TripAssigned, assigned.Status)
	}

	started, err := svc.Start(ctx, created.CompanyID, created.ID)
	if err != nil {
		t.Fatalf("start: %v", err)
	}
	if started.ActualPickupTime == nil {
		t.Fatal("expected actual pickup time to be set")
	}

	completed, err := svc.Complete(ctx, created.CompanyID, created.ID)
	if err != nil {
		t.Fatalf("complete: %v", err)
	}
	if completed.Status != types.TripCompleted {
		t.Fatalf("expected %s, got %s", types.TripCompleted, completed.Status)
	}

	// The store must hold the final state.
	stored, err := svc.Get(ctx, created.CompanyID, created.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if stored.Status != types.TripCompleted {
		t.Fatalf("stored status %s, expected %s", stored.Status, types.TripCompleted)
	}
}

func TestServiceRejectedTransitionWritesNothing(t *testing.T) {
	store := newMemStore()
	svc := newTestService(store)
	ctx := context.Background()

	created, err := svc.Create(ctx, scheduledTrip())
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	writesBefore := store.writeCount()

	// SCHEDULED trips cannot start.
	if _, err := svc.Start(ctx, created.CompanyID, created.ID); !errors.Is(err, types.ErrInvalidTransition) {
		t.Fatalf("expected ErrInvalidTransition, got %v", err)
	}

	if got := store.writeCount(); got != writesBefore {
		t.Fatalf("rejected transition wrote to the store: %d writes, expected %d", got, writesBefore)
	}

	stored, err := svc.Get(ctx, created.CompanyID, created.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if stored.Status != types.TripScheduled {
		t.Fatalf("stored status %s, expected %s", stored.Status, types.TripScheduled)
	}
}

func TestServiceCompanyScope(t *testing.T) {
	store := newMemStore()
	svc := newTestService(store)
	ctx := context.Background()

	created, err := svc.Create(ctx, scheduledTrip())
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	if _, err := svc.Get(ctx, "other-company", created.ID); !errors.Is(err, types.ErrTripNotFound) {
		t.Fatalf("expected ErrTripNotFound for foreign company, got %v", err)
	}
	if _, err := svc.Cancel(ctx, "other-company", created.ID); !errors.Is(err, types.ErrTripNotFound) {
		t.Fatalf("expected ErrTripNotFound for foreign company cancel, got %v", err)
	}
}
