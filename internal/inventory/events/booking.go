// Package events feeds booking lifecycle events from Kafka into the inventory.
package events

import (
	"context"

	"billboards/internal/inventory/service"
	apperrors "billboards/pkg/errors"
	"billboards/pkg/kafka"
	"billboards/pkg/logger"
	"billboards/pkg/model"
)

// NewBookingEventHandler returns the consumer handler for the bookings topic.
// Undecodable payloads are permanent failures. Version conflicts and
// infrastructure errors are left to the consumer retry policy.
func NewBookingEventHandler(svc service.BillboardService, log *logger.Logger) kafka.MessageHandler {
	return func(ctx context.Context, msg kafka.Message) error {
		switch msg.GetEventType() {
		case model.EventBookingApproved, model.EventBookingConfirmed:
		default:
			log.Debug("Ignoring booking event", "event_type", msg.GetEventType(), "key", msg.Key)
			return nil
		}

		var event model.BookingEvent
		if err := msg.DecodeValue(&event); err != nil {
			return kafka.NewPermanentError("failed to decode booking event", err)
		}
		if event.BookingID == "" {
			return kafka.NewPermanentError("booking event without booking id", nil)
		}

		err := svc.ApplyBookingEvent(ctx, &event)
		if err == nil {
			return nil
		}
		if apperrors.HasCode(err, apperrors.CodeConflict) || apperrors.HasCode(err, apperrors.CodeInternal) {
			return kafka.NewTransientError("failed to apply booking event", err)
		}
		return kafka.NewPermanentError("booking event rejected", err)
	}
}
