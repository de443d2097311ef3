// Package lifecycle holds the booking state machine. Functions never mutate
// their input and return the next booking value.
package lifecycle

import (
	"fmt"
	"slices"
	"strings"
	"time"

	bookingserrors "billboards/internal/bookings/errors"
	"billboards/pkg/model"
)

var transitions = map[model.BookingStatus][]model.BookingStatus{
	model.BookingPending:  {model.BookingApproved, model.BookingRejected},
	model.BookingApproved: {model.BookingConfirmed},
}

func CanTransition(from, to model.BookingStatus) bool {
	return slices.Contains(transitions[from], to)
}

// NewFromCart snapshots cart into a pending booking. contact is expected to be
// sanitized already.
func NewFromCart(cart *model.Cart, contact model.Contact, dateRange model.DateRange, message string, at time.Time) (*model.Booking, error) {
	if cart == nil || cart.IsEmpty() {
		return nil, bookingserrors.ErrEmptyCart
	}
	if strings.TrimSpace(contact.Name) == "" || strings.TrimSpace(contact.Email) == "" || strings.TrimSpace(contact.Phone) == "" {
		return nil, bookingserrors.ErrIncompleteContact
	}
	if dateRange.Start.IsZero() || dateRange.End.IsZero() {
		return nil, fmt.Errorf("%w: start and end are required", bookingserrors.ErrDateRangeInvalid)
	}
	if dateRange.Start.After(dateRange.End) {
		return nil, fmt.Errorf("%w: %s > %s", bookingserrors.ErrDateRangeInvalid,
			dateRange.Start.Format(time.RFC3339), dateRange.End.Format(time.RFC3339))
	}

	snapshot := *cart
	snapshot.Items = slices.Clone(cart.Items)
	snapshot.Recompute()

	items := make([]model.BookingItem, 0, len(snapshot.Items))
	var owners []string
	for _, it := range snapshot.Items {
		items = append(items, model.BookingItem{
			ResourceID:   it.Resource.ID,
			ResourceName: it.Resource.Name,
			OwnerID:      it.Resource.OwnerID,
			Kind:         it.Resource.Kind,
			Modality:     it.Modality,
			Quantity:     it.Quantity,
			UnitPrice:    it.UnitPrice,
			Subtotal:     it.Subtotal,
		})
		if it.Resource.OwnerID != "" {
			owners = append(owners, it.Resource.OwnerID)
		}
	}
	slices.Sort(owners)

	return &model.Booking{
		BookingRequest: model.BookingRequest{
			Contact:   contact,
			DateRange: dateRange,
			Items:     items,
			Total:     snapshot.Total,
			Message:   message,
		},
		CartID:    cart.ID,
		OwnerIDs:  slices.Compact(owners),
		Status:    model.BookingPending,
		CreatedAt: at.UTC(),
	}, nil
}

// Decide records an owner's approval or rejection of a pending booking.
func Decide(b *model.Booking, ownerID string, decision model.BookingStatus, response string, at time.Time) (*model.Booking, error) {
	if decision != model.BookingApproved && decision != model.BookingRejected {
		return nil, fmt.Errorf("%w: %q is not a decision", bookingserrors.ErrInvalidTransition, decision)
	}
	if !slices.Contains(b.OwnerIDs, ownerID) {
		return nil, bookingserrors.ErrNotOwner
	}
	next, err := transition(b, decision)
	if err != nil {
		return nil, err
	}

	responded := at.UTC()
	next.ResponseDate = &responded
	next.OwnerResponse = response
	return next, nil
}

func Confirm(b *model.Booking) (*model.Booking, error) {
	return transition(b, model.BookingConfirmed)
}

func transition(b *model.Booking, to model.BookingStatus) (*model.Booking, error) {
	if !CanTransition(b.Status, to) {
		return nil, fmt.Errorf("%w: %s -> %s", bookingserrors.ErrInvalidTransition, b.Status, to)
	}
	next := *b
	next.Items = slices.Clone(b.Items)
	next.OwnerIDs = slices.Clone(b.OwnerIDs)
	next.Status = to
	return &next, nil
}
