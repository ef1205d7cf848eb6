// Package remindersink realizes the "deliver at time T, identified by key K"
// primitive on Postgres and RabbitMQ: pending reminders live in an outbox
// table keyed by reminder key, and a dispatcher publishes due rows to the
// reminders exchange.
package remindersink

import (
	"context"
	"fmt"
	"time"

	"github.com/Temutjin2k/fleet-ops-system/internal/domain/models"
	"github.com/Temutjin2k/fleet-ops-system/pkg/logger"
	"github.com/jackc/pgx/v5/pgxpool"
)

const schema = `
CREATE TABLE IF NOT EXISTS reminder_outbox (
	key         TEXT        PRIMARY KEY,
	deliver_at  TIMESTAMPTZ NOT NULL,
	title       TEXT        NOT NULL,
	body        TEXT        NOT NULL,
	updated_at  TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE INDEX IF NOT EXISTS reminder_outbox_deliver_at_idx
	ON reminder_outbox (deliver_at);
`

// Outbox implements reminder.Sink. Schedule is an upsert on the reminder
// key, which is exactly the overwrite-by-key contract the scheduler needs
// for idempotent rescheduling.
type Outbox struct {
	pool     *pgxpool.Pool
	producer *Producer
	log      logger.Logger
}

func NewOutbox(pool *pgxpool.Pool, producer *Producer, log logger.Logger) *Outbox {
	return &Outbox{
		pool:     pool,
		producer: producer,
		log:      log,
	}
}

// EnsureSchema creates the outbox table if it does not exist.
func (o *Outbox) EnsureSchema(ctx context.Context) error {
	if _, err := o.pool.Exec(ctx, schema); err != nil {
		return fmt.Errorf("failed to ensure reminder outbox schema: %w", err)
	}
	return nil
}

// Schedule stores or overwrites the pending reminder under key.
func (o *Outbox) Schedule(ctx context.Context, key string, deliverAt time.Time, title, body string) error {
	const upsert = `
		INSERT INTO reminder_outbox (key, deliver_at, title, body, updated_at)
		VALUES ($1, $2, $3, $4, now())
		ON CONFLICT (key)
		DO UPDATE SET deliver_at = EXCLUDED.deliver_at,
		              title      = EXCLUDED.title,
		              body       = EXCLUDED.body,
		              updated_at = now()`

	if _, err := o.pool.Exec(ctx, upsert, key, deliverAt, title, body); err != nil {
		return fmt.Errorf("failed to schedule reminder %s: %w", key, err)
	}

	return nil
}

// ScheduleImmediate bypasses the outbox and publishes right away. Any
// pending row under the same key is removed so the alert is not delivered a
// second time later.
func (o *Outbox) ScheduleImmediate(ctx context.Context, key, title, body string) error {
	if err := o.Cancel(ctx, key); err != nil {
		return err
	}

	msg := models.ReminderMessage{
		Key:       key,
		Title:     title,
		Body:      body,
		DeliverAt: time.Now(),
		Immediate: true,
	}

	if err := o.producer.Publish(ctx, msg); err != nil {
		return fmt.Errorf("failed to publish immediate reminder %s: %w", key, err)
	}

	return nil
}

// Cancel removes the pending reminder under key. No-op when absent.
func (o *Outbox) Cancel(ctx context.Context, key string) error {
	if _, err := o.pool.Exec(ctx, `DELETE FROM reminder_outbox WHERE key = $1`, key); err != nil {
		return fmt.Errorf("failed to cancel reminder %s: %w", key, err)
	}
	return nil
}
