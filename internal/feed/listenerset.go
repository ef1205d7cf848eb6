// Package feed keeps a set of live change-feed subscriptions alive and folds
// their snapshots into derived statistics. All counter mutation happens on a
// single apply goroutine; listener callbacks never touch shared state
// directly.
package feed

import (
	"context"
	"fmt"
	"sync"

	"github.com/Temutjin2k/fleet-ops-system/internal/docstore"
	"github.com/Temutjin2k/fleet-ops-system/internal/domain/models"
	"github.com/Temutjin2k/fleet-ops-system/internal/domain/types"
	"github.com/Temutjin2k/fleet-ops-system/pkg/logger"
	wrap "github.com/Temutjin2k/fleet-ops-system/pkg/logger/wrapper"
	"github.com/Temutjin2k/fleet-ops-system/pkg/metrics"
)

// Apply folds one snapshot into the statistics. It runs only on the apply
// goroutine, never concurrently with itself or another key's Apply.
type Apply func(snap docstore.Snapshot, stats *models.CompanyStatistics)

// Spec describes one logical subscription.
type Spec struct {
	Collection string
	Filters    []docstore.Filter
	Apply      Apply
}

type event struct {
	key  string
	gen  uint64
	snap docstore.Snapshot
	err  error
}

type subscription struct {
	key    string
	gen    uint64
	spec   Spec
	handle docstore.LiveHandle
	cancel context.CancelFunc
	done   chan struct{}
}

// ListenerSet owns zero or more live subscriptions keyed by logical name.
// At most one subscription is live per key at any time; Start replaces,
// Stop and StopAll are idempotent.
type ListenerSet struct {
	store docstore.Store
	log   logger.Logger

	mu     sync.Mutex
	subs   map[string]*subscription
	genSeq uint64
	closed bool

	events  chan event
	stopCh  chan struct{}
	runDone chan struct{}

	stateMu  sync.RWMutex
	stats    models.CompanyStatistics
	statuses map[string]error

	// onUpdate receives a copy of the statistics after every applied
	// snapshot. May be nil.
	onUpdate func(models.CompanyStatistics)
}

func NewListenerSet(store docstore.Store, log logger.Logger, onUpdate func(models.CompanyStatistics)) *ListenerSet {
	ls := &ListenerSet{
		store:    store,
		log:      log,
		subs:     make(map[string]*subscription),
		events:   make(chan event, 16),
		stopCh:   make(chan struct{}),
		runDone:  make(chan struct{}),
		statuses: make(map[string]error),
		onUpdate: onUpdate,
	}

	go ls.run()

	return ls
}

// Start opens a live subscription under key. An existing subscription under
// the same key is cancelled first; its in-flight events are discarded.
func (ls *ListenerSet) Start(ctx context.Context, key string, spec Spec) error {
	ls.mu.Lock()
	defer ls.mu.Unlock()

	if ls.closed {
		return types.ErrListenerSetClosed
	}

	if old, ok := ls.subs[key]; ok {
		ls.detachLocked(old)
	}

	handle, err := ls.store.Live(ctx, spec.Collection, spec.Filters)
	if err != nil {
		ls.recordError(key, err)
		metrics.SubscriptionErrorsTotal.WithLabelValues(types.ServiceName, key).Inc()
		return fmt.Errorf("failed to start subscription %q: %w", key, err)
	}

	ls.genSeq++

	subCtx, cancel := context.WithCancel(context.Background())
	sub := &subscription{
		key:    key,
		gen:    ls.genSeq,
		spec:   spec,
		handle: handle,
		cancel: cancel,
		done:   make(chan struct{}),
	}
	ls.subs[key] = sub

	go ls.pump(subCtx, sub)

	metrics.ActiveSubscriptionsGauge.WithLabelValues(types.ServiceName).Inc()
	ls.log.Debug(wrap.WithAction(ctx, types.ActionSubscriptionStarted), "subscription started",
		"key", key,
		"collection", spec.Collection,
	)

	return nil
}

// Stop cancels and removes the subscription under key. No-op when absent;
// safe to call repeatedly.
func (ls *ListenerSet) Stop(key string) {
	ls.mu.Lock()
	defer ls.mu.Unlock()

	if sub, ok := ls.subs[key]; ok {
		ls.detachLocked(sub)
	}
}

// StopAll cancels every active subscription.
func (ls *ListenerSet) StopAll() {
	ls.mu.Lock()
	defer ls.mu.Unlock()

	for _, sub := range ls.subs {
		ls.detachLocked(sub)
	}
}

// Close stops every subscription and shuts down the apply goroutine. The
// set cannot be restarted afterwards.
func (ls *ListenerSet) Close() {
	ls.mu.Lock()
	if ls.closed {
		ls.mu.Unlock()
		return
	}
	ls.closed = true
	for _, sub := range ls.subs {
		ls.detachLocked(sub)
	}
	ls.mu.Unlock()

	close(ls.stopCh)
	<-ls.runDone
}

// Snapshot returns a copy of the current counters.
func (ls *ListenerSet) Snapshot() models.CompanyStatistics {
	ls.stateMu.RLock()
	defer ls.stateMu.RUnlock()
	return ls.stats
}

// Status returns the last error per key, for keys currently in error. A key
// in error keeps its last-known counters until a re-Start succeeds.
func (ls *ListenerSet) Status() map[string]error {
	ls.stateMu.RLock()
	defer ls.stateMu.RUnlock()

	statuses := make(map[string]error, len(ls.statuses))
	for key, err := range ls.statuses {
		statuses[key] = err
	}
	return statuses
}

// detachLocked cancels a subscription and synchronously detaches its store
// handle. Events already queued from it are dropped by the generation check.
func (ls *ListenerSet) detachLocked(sub *subscription) {
	sub.cancel()
	sub.handle.Close()
	delete(ls.subs, sub.key)
	metrics.ActiveSubscriptionsGauge.WithLabelValues(types.ServiceName).Dec()

	ls.log.Debug(wrap.WithAction(context.Background(), types.ActionSubscriptionStopped), "subscription stopped",
		"key", sub.key,
	)
}

// pump forwards one subscription's snapshots and errors to the shared event
// channel, tagging them with the subscription generation.
func (ls *ListenerSet) pump(ctx context.Context, sub *subscription) {
	defer close(sub.done)

	for {
		select {
		case snap, ok := <-sub.handle.Snapshots():
			if !ok {
				return
			}
			select {
			case ls.events <- event{key: sub.key, gen: sub.gen, snap: snap}:
			case <-ctx.Done():
				return
			}
		case err, ok := <-sub.handle.Err():
			if !ok {
				return
			}
			select {
			case ls.events <- event{key: sub.key, gen: sub.gen, err: err}:
			case <-ctx.Done():
				return
			}
		case <-ctx.Done():
			return
		}
	}
}

// run is the single serialized execution context for counter mutation.
func (ls *ListenerSet) run() {
	defer close(ls.runDone)

	for {
		select {
		case ev := <-ls.events:
			ls.apply(ev)
		case <-ls.stopCh:
			return
		}
	}
}

func (ls *ListenerSet) apply(ev event) {
	ls.mu.Lock()
	sub, ok := ls.subs[ev.key]
	current := ok && sub.gen == ev.gen
	var spec Spec
	if ok {
		spec = sub.spec
	}
	ls.mu.Unlock()

	// Events from a replaced or stopped subscription must not mutate
	// published counters.
	if !current {
		return
	}

	if ev.err != nil {
		ls.recordError(ev.key, ev.err)
		metrics.SubscriptionErrorsTotal.WithLabelValues(types.ServiceName, ev.key).Inc()
		ls.log.Warn(wrap.WithAction(context.Background(), types.ActionSubscriptionFailed), "subscription error, counters retained",
			"key", ev.key,
			"err", ev.err.Error(),
		)
		return
	}

	ls.stateMu.Lock()
	spec.Apply(ev.snap, &ls.stats)
	delete(ls.statuses, ev.key)
	snapshot := ls.stats
	ls.stateMu.Unlock()

	metrics.SnapshotsProcessedTotal.WithLabelValues(types.ServiceName, ev.key).Inc()

	if ls.onUpdate != nil {
		ls.onUpdate(snapshot)
	}
}

func (ls *ListenerSet) recordError(key string, err error) {
	ls.stateMu.Lock()
	ls.statuses[key] = err
	ls.stateMu.Unlock()
}
