package remindersink

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/Temutjin2k/fleet-ops-system/internal/domain/models"
	wrap "github.com/Temutjin2k/fleet-ops-system/pkg/logger/wrapper"
	"github.com/Temutjin2k/fleet-ops-system/pkg/rabbit"
	"github.com/rabbitmq/amqp091-go"
)

const (
	remindersExchange = "fleet.reminders"
	exchangeKind      = "topic"
)

// Producer publishes due reminders to the reminders exchange. Delivery past
// this point (push, SMS, whatever consumes the exchange) is external.
type Producer struct {
	client *rabbit.RabbitMQ
}

func NewProducer(ctx context.Context, client *rabbit.RabbitMQ) (*Producer, error) {
	if err := client.Channel.ExchangeDeclare(
		remindersExchange,
		exchangeKind,
		true,  // durable
		false, // auto-delete
		false, // internal
		false, // no-wait
		nil,
	); err != nil {
		return nil, fmt.Errorf("failed to declare reminders exchange: %w", err)
	}

	return &Producer{client: client}, nil
}

// Publish sends one reminder message, routed by its key.
func (p *Producer) Publish(ctx context.Context, msg models.ReminderMessage) error {
	const op = "Producer.Publish"

	body, err := json.Marshal(msg)
	if err != nil {
		ctx = wrap.WithAction(ctx, "marshal_reminder")
		return wrap.Error(ctx, fmt.Errorf("%s: failed to marshal message: %w", op, err))
	}

	key := fmt.Sprintf("reminder.%s", msg.Key)

	if err := p.client.Channel.PublishWithContext(
		ctx,
		remindersExchange, // exchange
		key,               // routing key
		false,             // mandatory
		false,             // immediate
		amqp091.Publishing{
			ContentType: "application/json",
			Body:        body,
			Timestamp:   time.Now(),
		},
	); err != nil {
		ctx = wrap.WithAction(ctx, "publish_reminder")
		return wrap.Error(ctx, fmt.Errorf("%s: failed to publish with context: %w", op, err))
	}

	return nil
}
