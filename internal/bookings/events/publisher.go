// Package events publishes booking transitions to the bookings topic.
package events

import (
	"context"

	"billboards/pkg/kafka"
	"billboards/pkg/middleware"
	"billboards/pkg/model"
)

// MessagePublisher is satisfied by *kafka.Producer.
type MessagePublisher interface {
	Publish(ctx context.Context, msg kafka.Message) error
}

type KafkaPublisher struct {
	producer MessagePublisher
	source   string
}

func NewKafkaPublisher(producer MessagePublisher, source string) *KafkaPublisher {
	return &KafkaPublisher{
		producer: producer,
		source:   source,
	}
}

// Publish keys the record by booking id so every transition of a booking
// lands on the same partition in order.
func (p *KafkaPublisher) Publish(ctx context.Context, event model.BookingEvent) error {
	msg, err := kafka.NewMessage().
		WithKey(event.BookingID).
		WithValue(event).
		WithEventType(model.EventTypeFor(event.Status)).
		WithSource(p.source).
		WithCorrelationID(middleware.GetRequestID(ctx)).
		Build()
	if err != nil {
		return err
	}
	return p.producer.Publish(ctx, msg)
}
