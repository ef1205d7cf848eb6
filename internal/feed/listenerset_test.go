package feed

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/Temutjin2k/fleet-ops-system/internal/docstore"
	"github.com/Temutjin2k/fleet-ops-system/internal/domain/models"
	"github.com/Temutjin2k/fleet-ops-system/pkg/logger"
)

type fakeHandle struct {
	snaps chan docstore.Snapshot
	errs  chan error

	mu     sync.Mutex
	closed int
}

func newFakeHandle() *fakeHandle {
	return &fakeHandle{
		snaps: make(chan docstore.Snapshot, 4),
		errs:  make(chan error, 4),
	}
}

func (h *fakeHandle) Snapshots() <-chan docstore.Snapshot { return h.snaps }
func (h *fakeHandle) Err() <-chan error                   { return h.errs }

func (h *fakeHandle) Close() {
	h.mu.Lock()
	h.closed++
	h.mu.Unlock()
}

func (h *fakeHandle) closeCount() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.closed
}

type fakeStore struct {
	mu      sync.Mutex
	handles []*fakeHandle
	liveErr error
}

func (s *fakeStore) Query(context.Context, string, []docstore.Filter) ([]docstore.Document, error) {
	return nil, nil
}

func (s *fakeStore) Live(context.Context, string, []docstore.Filter) (docstore.LiveHandle, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.liveErr != nil {
		return nil, s.liveErr
	}
	h := newFakeHandle()
	s.handles = append(s.handles, h)
	return h, nil
}

func (s *fakeStore) Write(context.Context, string, string, any) error { return nil }
func (s *fakeStore) Delete(context.Context, string, string) error     { return nil }

func (s *fakeStore) handle(i int) *fakeHandle {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.handles[i]
}

func snapshotOfSize(n int) docstore.Snapshot {
	docs := make([]docstore.Document, n)
	for i := range docs {
		docs[i] = docstore.Document{ID: "doc", Data: []byte("{}")}
	}
	return docstore.Snapshot{Docs: docs}
}

// countDocs folds the snapshot size into TotalVehicles.
func countDocs(snap docstore.Snapshot, stats *models.CompanyStatistics) {
	stats.TotalVehicles = len(snap.Docs)
}

func testLog() logger.Logger {
	return logger.InitLogger("test", logger.LevelError)
}

func waitUpdate(t *testing.T, updates <-chan models.CompanyStatistics) models.CompanyStatistics {
	t.Helper()
	select {
	case st := <-updates:
		return st
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for a statistics update")
		return models.CompanyStatistics{}
	}
}

func TestListenerSetAppliesSnapshots(t *testing.T) {
	store := &fakeStore{}
	updates := make(chan models.CompanyStatistics, 4)
	ls := NewListenerSet(store, testLog(), func(st models.CompanyStatistics) { updates <- st })
	defer ls.Close()

	if err := ls.Start(context.Background(), "vehicles", Spec{Collection: "vehicles", Apply: countDocs}); err != nil {
		t.Fatalf("start: %v", err)
	}

	store.handle(0).snaps <- snapshotOfSize(3)

	got := waitUpdate(t, updates)
	if got.TotalVehicles != 3 {
		t.Fatalf("TotalVehicles = %d, want 3", got.TotalVehicles)
	}
	if snap := ls.Snapshot(); snap.TotalVehicles != 3 {
		t.Fatalf("Snapshot().TotalVehicles = %d, want 3", snap.TotalVehicles)
	}
}

func TestListenerSetStartReplacesExistingKey(t *testing.T) {
	store := &fakeStore{}
	updates := make(chan models.CompanyStatistics, 4)
	ls := NewListenerSet(store, testLog(), func(st models.CompanyStatistics) { updates <- st })
	defer ls.Close()

	ctx := context.Background()
	if err := ls.Start(ctx, "vehicles", Spec{Collection: "vehicles", Apply: countDocs}); err != nil {
		t.Fatalf("first start: %v", err)
	}
	if err := ls.Start(ctx, "vehicles", Spec{Collection: "vehicles", Apply: countDocs}); err != nil {
		t.Fatalf("second start: %v", err)
	}

	// The replaced subscription is detached exactly once, the live one not
	// at all.
	if got := store.handle(0).closeCount(); got != 1 {
		t.Fatalf("replaced handle closed %d times, want 1", got)
	}
	if got := store.handle(1).closeCount(); got != 0 {
		t.Fatalf("live handle closed %d times, want 0", got)
	}

	// Snapshots from the replaced subscription must not mutate counters.
	store.handle(0).snaps <- snapshotOfSize(99)
	store.handle(1).snaps <- snapshotOfSize(2)

	got := waitUpdate(t, updates)
	if got.TotalVehicles != 2 {
		t.Fatalf("TotalVehicles = %d, want 2 (stale snapshot applied)", got.TotalVehicles)
	}
	if snap := ls.Snapshot(); snap.TotalVehicles != 2 {
		t.Fatalf("Snapshot().TotalVehicles = %d, want 2", snap.TotalVehicles)
	}
}

func TestListenerSetStaleEventIsDropped(t *testing.T) {
	store := &fakeStore{}
	updates := make(chan models.CompanyStatistics, 4)
	ls := NewListenerSet(store, testLog(), func(st models.CompanyStatistics) { updates <- st })
	defer ls.Close()

	ctx := context.Background()
	if err := ls.Start(ctx, "vehicles", Spec{Collection: "vehicles", Apply: countDocs}); err != nil {
		t.Fatalf("start: %v", err)
	}

	store.handle(0).snaps <- snapshotOfSize(1)
	waitUpdate(t, updates)

	ls.mu.Lock()
	liveGen := ls.subs["vehicles"].gen
	ls.mu.Unlock()

	// A synthetic event from a previous generation must be ignored even
	// though the key is live.
	ls.events <- event{key: "vehicles", gen: liveGen - 1, snap: snapshotOfSize(42)}
	store.handle(0).snaps <- snapshotOfSize(5)

	got := waitUpdate(t, updates)
	if got.TotalVehicles != 5 {
		t.Fatalf("TotalVehicles = %d, want 5 (stale event applied)", got.TotalVehicles)
	}
}

func TestListenerSetStopIsIdempotent(t *testing.T) {
	store := &fakeStore{}
	ls := NewListenerSet(store, testLog(), nil)
	defer ls.Close()

	if err := ls.Start(context.Background(), "vehicles", Spec{Collection: "vehicles", Apply: countDocs}); err != nil {
		t.Fatalf("start: %v", err)
	}

	ls.Stop("vehicles")
	ls.Stop("vehicles")
	ls.Stop("never-started")

	if got := store.handle(0).closeCount(); got != 1 {
		t.Fatalf("handle closed %d times, want 1", got)
	}
}

func TestListenerSetStopAllFreezesCounters(t *testing.T) {
	store := &fakeStore{}
	updates := make(chan models.CompanyStatistics, 4)
	ls := NewListenerSet(store, testLog(), func(st models.CompanyStatistics) { updates <- st })
	defer ls.Close()

	if err := ls.Start(context.Background(), "vehicles", Spec{Collection: "vehicles", Apply: countDocs}); err != nil {
		t.Fatalf("start: %v", err)
	}

	store.handle(0).snaps <- snapshotOfSize(4)
	waitUpdate(t, updates)

	ls.StopAll()

	// Events that were already in flight when StopAll returned must not
	// change the published counters.
	ls.events <- event{key: "vehicles", gen: 1, snap: snapshotOfSize(77)}

	time.Sleep(50 * time.Millisecond)
	if snap := ls.Snapshot(); snap.TotalVehicles != 4 {
		t.Fatalf("TotalVehicles = %d after StopAll, want 4", snap.TotalVehicles)
	}
}

func TestListenerSetErrorIsolation(t *testing.T) {
	store := &fakeStore{}
	updates := make(chan models.CompanyStatistics, 4)
	ls := NewListenerSet(store, testLog(), func(st models.CompanyStatistics) { updates <- st })
	defer ls.Close()

	ctx := context.Background()
	countDrivers := func(snap docstore.Snapshot, stats *models.CompanyStatistics) {
		stats.ActiveDrivers = len(snap.Docs)
	}

	if err := ls.Start(ctx, "vehicles", Spec{Collection: "vehicles", Apply: countDocs}); err != nil {
		t.Fatalf("start vehicles: %v", err)
	}
	if err := ls.Start(ctx, "drivers", Spec{Collection: "drivers", Apply: countDrivers}); err != nil {
		t.Fatalf("start drivers: %v", err)
	}

	store.handle(0).snaps <- snapshotOfSize(3)
	waitUpdate(t, updates)

	// vehicles fails; drivers keeps flowing.
	subErr := errors.New("permission revoked")
	store.handle(0).errs <- subErr
	store.handle(1).snaps <- snapshotOfSize(2)

	got := waitUpdate(t, updates)
	if got.ActiveDrivers != 2 {
		t.Fatalf("ActiveDrivers = %d, want 2", got.ActiveDrivers)
	}

	// Last-known vehicle counters stay visible alongside the error status.
	if got.TotalVehicles != 3 {
		t.Fatalf("TotalVehicles = %d, want 3 (stale-but-present)", got.TotalVehicles)
	}

	deadline := time.Now().Add(2 * time.Second)
	for {
		if err, ok := ls.Status()["vehicles"]; ok {
			if !errors.Is(err, subErr) {
				t.Fatalf("Status()[vehicles] = %v, want %v", err, subErr)
			}
			break
		}
		if time.Now().After(deadline) {
			t.Fatal("timed out waiting for the error status")
		}
		time.Sleep(5 * time.Millisecond)
	}
}

func TestListenerSetStartFailureIsRecorded(t *testing.T) {
	store := &fakeStore{liveErr: errors.New("store offline")}
	ls := NewListenerSet(store, testLog(), nil)
	defer ls.Close()

	err := ls.Start(context.Background(), "vehicles", Spec{Collection: "vehicles", Apply: countDocs})
	if err == nil {
		t.Fatal("expected an error from a failing live query")
	}

	if status := ls.Status()["vehicles"]; status == nil {
		t.Fatal("expected the failure to be recorded in Status()")
	}
}

func TestListenerSetStartAfterClose(t *testing.T) {
	ls := NewListenerSet(&fakeStore{}, testLog(), nil)
	ls.Close()
	ls.Close() // safe to repeat

	err := ls.Start(context.Background(), "vehicles", Spec{Collection: "vehicles", Apply: countDocs})
	if err == nil {
		t.Fatal("expected an error starting on a closed set")
	}
}

func TestSessionCloseIsIdempotent(t *testing.T) {
	store := &fakeStore{}
	ls := NewListenerSet(store, testLog(), nil)

	if err := ls.Start(context.Background(), "vehicles", Spec{Collection: "vehicles", Apply: countDocs}); err != nil {
		t.Fatalf("start: %v", err)
	}

	session := NewSession("company-1", ls)
	session.Close()
	session.Close()

	if got := store.handle(0).closeCount(); got != 1 {
		t.Fatalf("handle closed %d times, want 1", got)
	}
}
