// Package events publishes booking lifecycle events.
package events

import (
	"context"
	"time"

	"classbook/pkg/kafka"
	"classbook/pkg/logger"
	"classbook/pkg/middleware"
	"classbook/pkg/model"
)

const (
	BookingCreated  = "booking.created"
	BookingApproved = "booking.approved"
	BookingDenied   = "booking.denied"

	SchemaVersion = "1"
)

// BookingEvent is the payload written to the booking topic.
type BookingEvent struct {
	Type       string         `json:"type"`
	Booking    *model.Booking `json:"booking"`
	OccurredAt time.Time      `json:"occurred_at"`
}

// Publisher emits booking events. Implementations never fail the caller:
// the booking is already committed when an event is published.
type Publisher interface {
	Publish(ctx context.Context, eventType string, booking *model.Booking)
	Close() error
}

// MessageProducer is satisfied by *kafka.Producer.
type MessageProducer interface {
	Publish(ctx context.Context, msg kafka.Message) error
	Close() error
}

type kafkaPublisher struct {
	producer MessageProducer
	source   string
	log      *logger.Logger
}

func NewKafkaPublisher(producer MessageProducer, source string, log *logger.Logger) Publisher {
	return &kafkaPublisher{producer: producer, source: source, log: log}
}

func (p *kafkaPublisher) Publish(ctx context.Context, eventType string, booking *model.Booking) {
	msg := kafka.NewMessage().
		WithKey(booking.RoomID).
		WithValue(BookingEvent{Type: eventType, Booking: booking, OccurredAt: time.Now().UTC()}).
		WithEventType(eventType).
		WithSchemaVersion(SchemaVersion).
		WithSource(p.source).
		WithCorrelationID(middleware.RequestIDFromContext(ctx)).
		Build()

	if err := p.producer.Publish(ctx, msg); err != nil {
		p.log.Warn("Failed to publish booking event",
			"event_type", eventType,
			"booking_id", booking.ID,
			"room_id", booking.RoomID,
			"error", err,
		)
	}
}

func (p *kafkaPublisher) Close() error {
	return p.producer.Close()
}

type noopPublisher struct{}

// NewNoopPublisher drops every event. Used when Kafka is disabled.
func NewNoopPublisher() Publisher {
	return noopPublisher{}
}

func (noopPublisher) Publish(context.Context, string, *model.Booking) {}

func (noopPublisher) Close() error { return nil }
