package docstore

import (
	"context"
	"time"

	"github.com/Temutjin2k/fleet-ops-system/internal/docstore"
	wrap "github.com/Temutjin2k/fleet-ops-system/pkg/logger/wrapper"
	"github.com/jackc/pgx/v5"
)

// retryBackoff is how long a live query waits after a transport error before
// listening again.
const retryBackoff = 2 * time.Second

// liveQuery implements docstore.LiveHandle. A dedicated connection LISTENs
// for collection notifications; snapshots are produced by re-running the
// query on the shared pool.
type liveQuery struct {
	store      *Postgres
	collection string
	filters    []docstore.Filter

	conn   *pgx.Conn
	snapCh chan docstore.Snapshot
	errCh  chan error

	cancel context.CancelFunc
	done   chan struct{}
}

func (s *Postgres) Live(ctx context.Context, collection string, filters []docstore.Filter) (docstore.LiveHandle, error) {
	poolConn, err := s.pool.Acquire(ctx)
	if err != nil {
		return nil, err
	}

	// The listening connection is taken out of the pool for the lifetime of
	// the handle. Snapshots still run on the pool.
	conn := poolConn.Hijack()

	if _, err := conn.Exec(ctx, "LISTEN "+notifyChannel); err != nil {
		conn.Close(ctx)
		return nil, err
	}

	runCtx, cancel := context.WithCancel(context.Background())

	lq := &liveQuery{
		store:      s,
		collection: collection,
		filters:    filters,
		conn:       conn,
		snapCh:     make(chan docstore.Snapshot, 1),
		errCh:      make(chan error, 1),
		cancel:     cancel,
		done:       make(chan struct{}),
	}

	go lq.run(runCtx)

	return lq, nil
}

func (lq *liveQuery) Snapshots() <-chan docstore.Snapshot {
	return lq.snapCh
}

func (lq *liveQuery) Err() <-chan error {
	return lq.errCh
}

// Close synchronously detaches the live query. After it returns no further
// snapshots or errors are delivered.
func (lq *liveQuery) Close() {
	lq.cancel()
	<-lq.done
}

func (lq *liveQuery) run(ctx context.Context) {
	defer close(lq.done)
	defer lq.conn.Close(context.Background())

	// Initial snapshot, then one per change notification.
	lq.emitSnapshot(ctx)

	for {
		notification, err := lq.conn.WaitForNotification(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			lq.emitError(ctx, err)

			select {
			case <-time.After(retryBackoff):
			case <-ctx.Done():
				return
			}
			continue
		}

		if notification.Payload != lq.collection {
			continue
		}

		lq.emitSnapshot(ctx)
	}
}

func (lq *liveQuery) emitSnapshot(ctx context.Context) {
	docs, err := lq.store.Query(ctx, lq.collection, lq.filters)
	if err != nil {
		if ctx.Err() == nil {
			lq.emitError(ctx, err)
		}
		return
	}

	snap := docstore.Snapshot{Docs: docs}

	// Coalesce: if the consumer has not taken the previous snapshot yet,
	// replace it with the newer one.
	for {
		select {
		case lq.snapCh <- snap:
			return
		case <-ctx.Done():
			return
		default:
		}

		select {
		case <-lq.snapCh:
		default:
		}
	}
}

func (lq *liveQuery) emitError(ctx context.Context, err error) {
	lctx := wrap.WithAction(context.Background(), "live_query_error")
	lq.store.log.Warn(lctx, "live query transport error",
		"collection", lq.collection,
		"err", err.Error(),
	)

	select {
	case lq.errCh <- err:
	default:
		// A previous error is still pending; the newest state of the
		// subscription is what matters, drop the older one.
		select {
		case <-lq.errCh:
		default:
		}
		select {
		case lq.errCh <- err:
		default:
		}
	}
}

var _ docstore.LiveHandle = (*liveQuery)(nil)
