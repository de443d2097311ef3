package events

import (
	"context"
	"errors"
	"testing"

	"billboards/internal/inventory/service"
	apperrors "billboards/pkg/errors"
	"billboards/pkg/kafka"
	"billboards/pkg/logger"
	"billboards/pkg/model"
)

type stubService struct {
	service.BillboardService
	applied []*model.BookingEvent
	err     error
}

func (s *stubService) ApplyBookingEvent(ctx context.Context, event *model.BookingEvent) error {
	s.applied = append(s.applied, event)
	return s.err
}

func buildMessage(t *testing.T, eventType string, value any) kafka.Message {
	t.Helper()
	msg, err := kafka.NewMessage().WithKey("bk-1").WithValue(value).WithEventType(eventType).Build()
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	return msg
}

func TestBookingEventHandler(t *testing.T) {
	event := model.BookingEvent{BookingID: "bk-1", Status: model.BookingApproved}

	tests := []struct {
		name        string
		msg         func(t *testing.T) kafka.Message
		serviceErr  error
		wantApplied int
		wantType    kafka.ErrorType
	}{
		{
			name:        "approved is applied",
			msg:         func(t *testing.T) kafka.Message { return buildMessage(t, model.EventBookingApproved, event) },
			wantApplied: 1,
		},
		{
			name:        "created is ignored",
			msg:         func(t *testing.T) kafka.Message { return buildMessage(t, model.EventBookingCreated, event) },
			wantApplied: 0,
		},
		{
			name: "garbage payload is permanent",
			msg: func(t *testing.T) kafka.Message {
				msg := buildMessage(t, model.EventBookingConfirmed, event)
				msg.Value = []byte("{not json")
				return msg
			},
			wantType: kafka.ErrorTypePermanent,
		},
		{
			name:        "conflict is transient",
			msg:         func(t *testing.T) kafka.Message { return buildMessage(t, model.EventBookingApproved, event) },
			serviceErr:  apperrors.Conflict("busy"),
			wantApplied: 1,
			wantType:    kafka.ErrorTypeTransient,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := &stubService{err: tt.serviceErr}
			handler := NewBookingEventHandler(svc, logger.Discard())

			err := handler(context.Background(), tt.msg(t))
			if len(svc.applied) != tt.wantApplied {
				t.Errorf("expected %d applications, got %d", tt.wantApplied, len(svc.applied))
			}
			if tt.wantType == kafka.ErrorTypeUnknown {
				if err != nil {
					t.Errorf("unexpected error: %v", err)
				}
				return
			}
			var kerr *kafka.KafkaError
			if !errors.As(err, &kerr) || kerr.Type != tt.wantType {
				t.Errorf("expected error type %v, got %v", tt.wantType, err)
			}
		})
	}
}
