package model

import "time"

type BookingStatus string

const (
	BookingPending   BookingStatus = "pending"
	BookingApproved  BookingStatus = "approved"
	BookingRejected  BookingStatus = "rejected"
	BookingConfirmed BookingStatus = "confirmed"
)

func (s BookingStatus) Terminal() bool {
	return s == BookingRejected || s == BookingConfirmed
}

type Contact struct {
	Name    string `json:"name" bson:"name" validate:"required,min=2,max=120"`
	Email   string `json:"email" bson:"email" validate:"required,email"`
	Phone   string `json:"phone" bson:"phone" validate:"required,e164"`
	Company string `json:"company,omitempty" bson:"company,omitempty" validate:"omitempty,max=120"`
}

type DateRange struct {
	Start time.Time `json:"start" bson:"start"`
	End   time.Time `json:"end" bson:"end"`
}

type BookingItem struct {
	ResourceID   string        `json:"resource_id" bson:"resource_id"`
	ResourceName string        `json:"resource_name" bson:"resource_name"`
	OwnerID      string        `json:"owner_id" bson:"owner_id"`
	Kind         BillboardKind `json:"kind" bson:"kind"`
	Modality     Modality      `json:"modality" bson:"modality"`
	Quantity     int           `json:"quantity" bson:"quantity"`
	UnitPrice    int64         `json:"unit_price" bson:"unit_price"`
	Subtotal     int64         `json:"subtotal" bson:"subtotal"`
}

type BookingRequest struct {
	Contact   Contact       `json:"contact" bson:"contact"`
	DateRange DateRange     `json:"date_range" bson:"date_range"`
	Items     []BookingItem `json:"items" bson:"items"`
	Total     int64         `json:"total" bson:"total"`
	Message   string        `json:"message,omitempty" bson:"message,omitempty" validate:"max=2000"`
}

type Booking struct {
	ID             string        `json:"id,omitempty" bson:"_id,omitempty"`
	BookingRequest `bson:",inline"`
	CartID         string        `json:"cart_id" bson:"cart_id"`
	OwnerIDs       []string      `json:"owner_ids" bson:"owner_ids"`
	Status         BookingStatus `json:"status" bson:"status"`
	CreatedAt      time.Time     `json:"created_at" bson:"created_at"`
	ResponseDate   *time.Time    `json:"response_date,omitempty" bson:"response_date,omitempty"`
	OwnerResponse  string        `json:"owner_response,omitempty" bson:"owner_response,omitempty"`
}

// CheckoutRequest turns a cart into a booking request.
type CheckoutRequest struct {
	CartID    string    `json:"cart_id" validate:"required"`
	Contact   Contact   `json:"contact" validate:"-"`
	DateRange DateRange `json:"date_range"`
	Message   string    `json:"message,omitempty"`
}

type BookingDecision struct {
	Decision BookingStatus `json:"decision" validate:"required,oneof=approved rejected"`
	Response string        `json:"response,omitempty" validate:"max=2000"`
}
