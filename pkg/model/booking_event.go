package model

import "time"

const (
	EventBookingCreated   = "booking.created"
	EventBookingApproved  = "booking.approved"
	EventBookingRejected  = "booking.rejected"
	EventBookingConfirmed = "booking.confirmed"
)

type BookingEventItem struct {
	ResourceID string        `json:"resource_id"`
	Kind       BillboardKind `json:"kind"`
}

// BookingEvent is published on every booking status transition.
type BookingEvent struct {
	BookingID  string             `json:"booking_id"`
	Status     BookingStatus      `json:"status"`
	CartID     string             `json:"cart_id"`
	OwnerIDs   []string           `json:"owner_ids"`
	Items      []BookingEventItem `json:"items"`
	OccurredAt time.Time          `json:"occurred_at"`
}

// EventTypeFor maps a booking status to the event announcing it.
func EventTypeFor(status BookingStatus) string {
	switch status {
	case BookingApproved:
		return EventBookingApproved
	case BookingRejected:
		return EventBookingRejected
	case BookingConfirmed:
		return EventBookingConfirmed
	default:
		return EventBookingCreated
	}
}

func NewBookingEvent(b *Booking, at time.Time) BookingEvent {
	items := make([]BookingEventItem, 0, len(b.Items))
	for _, it := range b.Items {
		items = append(items, BookingEventItem{ResourceID: it.ResourceID, Kind: it.Kind})
	}
	return BookingEvent{
		BookingID:  b.ID,
		Status:     b.Status,
		CartID:     b.CartID,
		OwnerIDs:   append([]string(nil), b.OwnerIDs...),
		Items:      items,
		OccurredAt: at.UTC(),
	}
}
