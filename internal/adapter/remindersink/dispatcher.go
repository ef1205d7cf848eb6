package remindersink

import (
	"context"
	"fmt"
	"time"

	"github.com/Temutjin2k/fleet-ops-system/internal/domain/models"
	"github.com/Temutjin2k/fleet-ops-system/internal/domain/types"
	"github.com/Temutjin2k/fleet-ops-system/pkg/logger"
	wrap "github.com/Temutjin2k/fleet-ops-system/pkg/logger/wrapper"
	"github.com/Temutjin2k/fleet-ops-system/pkg/metrics"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// dispatchBatchSize bounds how many due reminders one tick publishes.
const dispatchBatchSize = 100

// Dispatcher periodically publishes due outbox rows to the reminders
// exchange and removes them. Rows are locked with SKIP LOCKED so multiple
// instances never double-deliver.
type Dispatcher struct {
	pool     *pgxpool.Pool
	producer *Producer
	interval time.Duration
	log      logger.Logger
}

func NewDispatcher(pool *pgxpool.Pool, producer *Producer, interval time.Duration, log logger.Logger) *Dispatcher {
	return &Dispatcher{
		pool:     pool,
		producer: producer,
		interval: interval,
		log:      log,
	}
}

// Run blocks until ctx is cancelled, dispatching due reminders every
// interval.
func (d *Dispatcher) Run(ctx context.Context) {
	ticker := time.NewTicker(d.interval)
	defer ticker.Stop()

	lctx := wrap.WithAction(ctx, types.ActionReminderDispatch)
	d.log.Info(lctx, "reminder dispatcher started", "interval", d.interval.String())

	for {
		select {
		case <-ticker.C:
			if err := d.dispatchDue(ctx); err != nil {
				d.log.Error(lctx, "failed to dispatch due reminders", err)
			}
		case <-ctx.Done():
			d.log.Info(lctx, "reminder dispatcher stopped")
			return
		}
	}
}

// dispatchDue publishes one batch of due reminders inside a transaction.
func (d *Dispatcher) dispatchDue(ctx context.Context) error {
	tx, err := d.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return fmt.Errorf("failed to begin dispatch tx: %w", err)
	}
	defer tx.Rollback(ctx)

	const selectDue = `
		SELECT key, deliver_at, title, body
		FROM reminder_outbox
		WHERE deliver_at <= now()
		ORDER BY deliver_at
		LIMIT $1
		FOR UPDATE SKIP LOCKED`

	rows, err := tx.Query(ctx, selectDue, dispatchBatchSize)
	if err != nil {
		return fmt.Errorf("failed to select due reminders: %w", err)
	}

	var due []models.ReminderMessage
	for rows.Next() {
		var msg models.ReminderMessage
		if err := rows.Scan(&msg.Key, &msg.DeliverAt, &msg.Title, &msg.Body); err != nil {
			rows.Close()
			return fmt.Errorf("failed to scan due reminder: %w", err)
		}
		due = append(due, msg)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return fmt.Errorf("failed to read due reminders: %w", err)
	}

	if len(due) == 0 {
		return nil
	}

	published := make([]string, 0, len(due))
	for _, msg := range due {
		if err := d.producer.Publish(ctx, msg); err != nil {
			// Leave unpublished rows in place; they are retried next
			// tick.
			d.log.Warn(ctx, "failed to publish due reminder",
				"key", msg.Key,
				"err", err.Error(),
			)
			continue
		}
		published = append(published, msg.Key)
	}

	if len(published) > 0 {
		if _, err := tx.Exec(ctx, `DELETE FROM reminder_outbox WHERE key = ANY($1)`, published); err != nil {
			return fmt.Errorf("failed to delete dispatched reminders: %w", err)
		}
		metrics.RemindersDispatchedTotal.WithLabelValues(types.ServiceName).Add(float64(len(published)))
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit dispatch tx: %w", err)
	}

	return nil
}
