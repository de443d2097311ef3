package lifecycle

import (
	"errors"
	"testing"
	"time"

	bookingserrors "billboards/internal/bookings/errors"
	"billboards/pkg/model"
)

var now = time.Date(2026, 2, 10, 12, 0, 0, 0, time.UTC)

func testCart() *model.Cart {
	cart := &model.Cart{
		ID:        "cart-1",
		SessionID: "sess-1",
		Items: []model.CartItem{
			{ID: "i-1", Resource: model.Billboard{ID: "b-1", Name: "North", OwnerID: "owner-b", Kind: model.KindFixed}, Modality: model.ModalityMonthly, UnitPrice: 1000, Quantity: 1},
			{ID: "i-2", Resource: model.Billboard{ID: "b-2", Name: "Screen", OwnerID: "owner-a", Kind: model.KindDigital}, Modality: model.ModalityDay, UnitPrice: 300, Quantity: 2},
			{ID: "i-3", Resource: model.Billboard{ID: "b-3", Name: "South", OwnerID: "owner-b", Kind: model.KindFixed}, Modality: model.ModalityMonthly, UnitPrice: 500, Quantity: 1},
		},
	}
	return cart
}

func testContact() model.Contact {
	return model.Contact{Name: "Ana Lopez", Email: "ana@example.com", Phone: "+525512345678"}
}

func testRange() model.DateRange {
	return model.DateRange{Start: now, End: now.AddDate(0, 1, 0)}
}

func TestNewFromCart(t *testing.T) {
	cart := testCart()
	cart.Total = 1 // stale aggregate must not leak into the booking

	b, err := NewFromCart(cart, testContact(), testRange(), "hello", now)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if b.Status != model.BookingPending {
		t.Errorf("expected pending, got %s", b.Status)
	}
	if b.Total != 2100 {
		t.Errorf("expected total 2100, got %d", b.Total)
	}
	if len(b.Items) != 3 || b.Items[1].Subtotal != 600 {
		t.Errorf("unexpected items: %+v", b.Items)
	}
	if len(b.OwnerIDs) != 2 || b.OwnerIDs[0] != "owner-a" || b.OwnerIDs[1] != "owner-b" {
		t.Errorf("expected sorted distinct owners, got %v", b.OwnerIDs)
	}
	if b.CartID != "cart-1" {
		t.Errorf("expected cart id, got %q", b.CartID)
	}
	if cart.Items[1].Subtotal != 0 {
		t.Errorf("input cart must not be mutated")
	}
}

func TestNewFromCart_Rejections(t *testing.T) {
	tests := []struct {
		name    string
		cart    *model.Cart
		contact func(c *model.Contact)
		dates   model.DateRange
		want    error
	}{
		{"nil cart", nil, nil, testRange(), bookingserrors.ErrEmptyCart},
		{"empty cart", &model.Cart{ID: "c"}, nil, testRange(), bookingserrors.ErrEmptyCart},
		{"no name", testCart(), func(c *model.Contact) { c.Name = " " }, testRange(), bookingserrors.ErrIncompleteContact},
		{"no email", testCart(), func(c *model.Contact) { c.Email = "" }, testRange(), bookingserrors.ErrIncompleteContact},
		{"no phone", testCart(), func(c *model.Contact) { c.Phone = "" }, testRange(), bookingserrors.ErrIncompleteContact},
		{"reversed dates", testCart(), nil, model.DateRange{Start: now.AddDate(0, 0, 1), End: now}, bookingserrors.ErrDateRangeInvalid},
		{"missing end", testCart(), nil, model.DateRange{Start: now}, bookingserrors.ErrDateRangeInvalid},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			contact := testContact()
			if tt.contact != nil {
				tt.contact(&contact)
			}
			_, err := NewFromCart(tt.cart, contact, tt.dates, "", now)
			if !errors.Is(err, tt.want) {
				t.Errorf("expected %v, got %v", tt.want, err)
			}
		})
	}
}

func TestNewFromCart_SameDayRange(t *testing.T) {
	if _, err := NewFromCart(testCart(), testContact(), model.DateRange{Start: now, End: now}, "", now); err != nil {
		t.Errorf("start == end must be accepted, got %v", err)
	}
}

func TestDecideThenConfirm(t *testing.T) {
	b, _ := NewFromCart(testCart(), testContact(), testRange(), "", now)

	approved, err := Decide(b, "owner-a", model.BookingApproved, "see you", now.Add(time.Hour))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if approved.Status != model.BookingApproved || approved.OwnerResponse != "see you" {
		t.Errorf("unexpected booking: %+v", approved)
	}
	if approved.ResponseDate == nil || !approved.ResponseDate.Equal(now.Add(time.Hour)) {
		t.Errorf("response date not set: %v", approved.ResponseDate)
	}
	if b.Status != model.BookingPending {
		t.Errorf("input booking must not be mutated")
	}

	confirmed, err := Confirm(approved)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if confirmed.Status != model.BookingConfirmed {
		t.Errorf("expected confirmed, got %s", confirmed.Status)
	}
}

func TestTransitions(t *testing.T) {
	statuses := []model.BookingStatus{
		model.BookingPending, model.BookingApproved, model.BookingRejected, model.BookingConfirmed,
	}
	allowed := map[[2]model.BookingStatus]bool{
		{model.BookingPending, model.BookingApproved}:   true,
		{model.BookingPending, model.BookingRejected}:   true,
		{model.BookingApproved, model.BookingConfirmed}: true,
	}

	for _, from := range statuses {
		for _, to := range statuses {
			want := allowed[[2]model.BookingStatus{from, to}]
			if got := CanTransition(from, to); got != want {
				t.Errorf("CanTransition(%s, %s) = %v, want %v", from, to, got, want)
			}
		}
	}
}

func TestConfirmRequiresApproval(t *testing.T) {
	b, _ := NewFromCart(testCart(), testContact(), testRange(), "", now)

	if _, err := Confirm(b); !errors.Is(err, bookingserrors.ErrInvalidTransition) {
		t.Errorf("pending -> confirmed: expected invalid transition, got %v", err)
	}

	rejected, err := Decide(b, "owner-b", model.BookingRejected, "", now)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := Confirm(rejected); !errors.Is(err, bookingserrors.ErrInvalidTransition) {
		t.Errorf("rejected -> confirmed: expected invalid transition, got %v", err)
	}
	if _, err := Decide(rejected, "owner-b", model.BookingApproved, "", now); !errors.Is(err, bookingserrors.ErrInvalidTransition) {
		t.Errorf("rejected -> approved: expected invalid transition, got %v", err)
	}
}

func TestDecide_Rejections(t *testing.T) {
	b, _ := NewFromCart(testCart(), testContact(), testRange(), "", now)

	if _, err := Decide(b, "stranger", model.BookingApproved, "", now); !errors.Is(err, bookingserrors.ErrNotOwner) {
		t.Errorf("expected not owner, got %v", err)
	}
	if _, err := Decide(b, "owner-a", model.BookingConfirmed, "", now); !errors.Is(err, bookingserrors.ErrInvalidTransition) {
		t.Errorf("confirmed is not a decision, got %v", err)
	}
}
