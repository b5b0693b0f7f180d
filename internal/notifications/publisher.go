// Package notifications carries booking events from the reservation engine to the
// people involved. The engine publishes events to Kafka after commit; a separate
// consumer renders them into messages and hands them to a Deliverer.
package notifications

import (
	"context"
	"fmt"

	"hallbook/pkg/kafka"
	"hallbook/pkg/logger"
	"hallbook/pkg/middleware"
	"hallbook/pkg/model"
)

const (
	SchemaVersion = "1"
	Source        = "bookings"
)

// EventPublisher is satisfied by *kafka.Producer.
type EventPublisher interface {
	Publish(ctx context.Context, msg kafka.Message) error
}

// Publisher turns booking events into Kafka messages keyed by resource, so every
// event for one resource lands on the same partition in commit order.
type Publisher struct {
	producer EventPublisher
	log      *logger.Logger
}

func NewPublisher(producer EventPublisher, log *logger.Logger) *Publisher {
	return &Publisher{
		producer: producer,
		log:      log.Component("notifications"),
	}
}

func (p *Publisher) Notify(ctx context.Context, event model.BookingEvent) error {
	msg, err := kafka.NewMessage().
		WithKey(event.ResourceID).
		WithValue(event).
		WithEventType(event.EventType).
		WithSchemaVersion(SchemaVersion).
		WithSource(Source).
		WithCorrelationID(middleware.RequestIDFromContext(ctx)).
		WithTimestamp(event.OccurredAt).
		Build()
	if err != nil {
		return fmt.Errorf("failed to build booking event: %w", err)
	}

	if err := p.producer.Publish(ctx, msg); err != nil {
		return fmt.Errorf("failed to publish %s for booking %s: %w", event.EventType, event.BookingID, err)
	}

	p.log.Debug("Booking event published",
		"event_type", event.EventType,
		"booking_id", event.BookingID,
		"event_id", msg.GetEventID(),
	)
	return nil
}
