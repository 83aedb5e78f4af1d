package kafka

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/greystone/lending-api/pkg/events"
	pkgkafka "github.com/greystone/lending-api/pkg/kafka"
)

// producer is satisfied by *pkgkafka.Producer.
type producer interface {
	Publish(ctx context.Context, topic string, messages ...pkgkafka.Message) error
}

// OutboxPublisher implements events.Publisher by writing outbox entries to
// Kafka, keyed by aggregate so one aggregate's events stay ordered.
type OutboxPublisher struct {
	producer producer
	logger   *slog.Logger
}

var _ events.Publisher = (*OutboxPublisher)(nil)

// NewOutboxPublisher creates a publisher on top of the given producer.
func NewOutboxPublisher(p producer, logger *slog.Logger) *OutboxPublisher {
	return &OutboxPublisher{producer: p, logger: logger}
}

// Publish sends entries to topic in order.
func (p *OutboxPublisher) Publish(ctx context.Context, topic string, entries ...events.OutboxEntry) error {
	if len(entries) == 0 {
		return nil
	}

	messages := make([]pkgkafka.Message, 0, len(entries))
	for _, e := range entries {
		p.logger.DebugContext(ctx, "publishing domain event",
			"event_type", e.EventType,
			"aggregate_id", e.AggregateID,
			"topic", topic,
			"payload_size", len(e.Payload),
		)
		messages = append(messages, ToMessage(e))
	}

	if err := p.producer.Publish(ctx, topic, messages...); err != nil {
		return fmt.Errorf("publish %d events to topic %s: %w", len(messages), topic, err)
	}
	return nil
}

// ToMessage maps an outbox entry onto a Kafka message.
func ToMessage(e events.OutboxEntry) pkgkafka.Message {
	return pkgkafka.Message{
		Key:   []byte(e.AggregateID.String()),
		Value: e.Payload,
		Headers: map[string]string{
			"event_type":     e.EventType,
			"event_id":       e.ID.String(),
			"aggregate_type": e.AggregateType,
		},
	}
}
