package model

import "time"

type BillboardKind string

const (
	KindFixed   BillboardKind = "fixed"
	KindDigital BillboardKind = "digital"
)

type BillboardStatus string

const (
	StatusAvailable   BillboardStatus = "available"
	StatusReserved    BillboardStatus = "reserved"
	StatusConfirmed   BillboardStatus = "confirmed"
	StatusOccupied    BillboardStatus = "occupied"
	StatusMaintenance BillboardStatus = "maintenance"
)

// IsManual reports whether the status is one an owner can pin as an override.
// occupied and available are always derived from capacity.
func (s BillboardStatus) IsManual() bool {
	switch s {
	case StatusReserved, StatusConfirmed, StatusMaintenance:
		return true
	}
	return false
}

type Location struct {
	Address   string  `json:"address" bson:"address" validate:"required,min=2,max=200"`
	City      string  `json:"city" bson:"city" validate:"required,min=2,max=100"`
	Latitude  float64 `json:"latitude" bson:"latitude" validate:"min=-90,max=90"`
	Longitude float64 `json:"longitude" bson:"longitude" validate:"min=-180,max=180"`
}

type Size struct {
	Width  float64 `json:"width" bson:"width" validate:"gt=0"`
	Height float64 `json:"height" bson:"height" validate:"gt=0"`
	Unit   string  `json:"unit" bson:"unit" validate:"required,oneof=m px"`
}

// Billboard is a bookable advertising resource. Exactly one of Fixed or
// Digital is populated and it always matches Kind.
type Billboard struct {
	ID           string           `json:"id,omitempty" bson:"_id,omitempty"`
	OwnerID      string           `json:"owner_id" bson:"owner_id" validate:"required"`
	Name         string           `json:"name" bson:"name" validate:"required,min=2,max=120"`
	Kind         BillboardKind    `json:"kind" bson:"kind" validate:"required,oneof=fixed digital"`
	Location     Location         `json:"location" bson:"location"`
	Size         Size             `json:"size" bson:"size"`
	Faces        int              `json:"faces" bson:"faces" validate:"min=1,max=8"`
	Status       BillboardStatus  `json:"status" bson:"status"`
	ManualStatus *BillboardStatus `json:"manual_status,omitempty" bson:"manual_status,omitempty"`
	Fixed        *FixedDetails    `json:"fixed,omitempty" bson:"fixed,omitempty"`
	Digital      *DigitalDetails  `json:"digital,omitempty" bson:"digital,omitempty"`
	Version      int64            `json:"version" bson:"version"`
	CreatedAt    time.Time        `json:"created_at" bson:"created_at"`
	UpdatedAt    time.Time        `json:"updated_at" bson:"updated_at"`
}

type FixedDetails struct {
	Client         *Client `json:"client,omitempty" bson:"client,omitempty"`
	MonthlyPrice   int64   `json:"monthly_price" bson:"monthly_price" validate:"gt=0"`
	ContractMonths int     `json:"contract_months" bson:"contract_months" validate:"min=1,max=120"`
}

type DigitalDetails struct {
	MaxClients     int             `json:"max_clients" bson:"max_clients" validate:"min=1,max=100"`
	CurrentClients []DigitalClient `json:"current_clients" bson:"current_clients"`
	Prices         DigitalPrices   `json:"prices" bson:"prices"`
	AvailableSlots int             `json:"available_slots" bson:"available_slots"`
}

// DigitalPrices holds the published price per sale unit. A nil entry means the
// unit is not sold on this screen.
type DigitalPrices struct {
	Spot       *int64 `json:"spot,omitempty" bson:"spot,omitempty" validate:"omitempty,gt=0"`
	Hour       *int64 `json:"hour,omitempty" bson:"hour,omitempty" validate:"omitempty,gt=0"`
	Day        *int64 `json:"day,omitempty" bson:"day,omitempty" validate:"omitempty,gt=0"`
	Week       *int64 `json:"week,omitempty" bson:"week,omitempty" validate:"omitempty,gt=0"`
	Month      *int64 `json:"month,omitempty" bson:"month,omitempty" validate:"omitempty,gt=0"`
	Impression *int64 `json:"impression,omitempty" bson:"impression,omitempty" validate:"omitempty,gt=0"`
}

// ForUnit returns the price published for the given sale unit, if any.
func (p DigitalPrices) ForUnit(unit SaleUnit) (int64, bool) {
	var price *int64
	switch unit {
	case SaleUnitSpot:
		price = p.Spot
	case SaleUnitHour:
		price = p.Hour
	case SaleUnitDay:
		price = p.Day
	case SaleUnitWeek:
		price = p.Week
	case SaleUnitMonth:
		price = p.Month
	}
	if price == nil {
		return 0, false
	}
	return *price, true
}

// Recompute derives AvailableSlots from the occupant list.
func (d *DigitalDetails) Recompute() {
	d.AvailableSlots = max(0, d.MaxClients-len(d.CurrentClients))
}

// DerivedStatus is the status implied by occupancy alone.
func (b *Billboard) DerivedStatus() BillboardStatus {
	switch b.Kind {
	case KindDigital:
		if b.Digital != nil && b.Digital.AvailableSlots == 0 {
			return StatusOccupied
		}
	case KindFixed:
		if b.Fixed != nil && b.Fixed.Client != nil {
			return StatusOccupied
		}
	}
	return StatusAvailable
}

// RefreshStatus recomputes slot math and the effective status. A manual status
// set by the owner always takes precedence.
func (b *Billboard) RefreshStatus() {
	if b.Kind == KindDigital && b.Digital != nil {
		b.Digital.Recompute()
	}
	if b.ManualStatus != nil {
		b.Status = *b.ManualStatus
		return
	}
	b.Status = b.DerivedStatus()
}

// Clone returns a deep copy suitable for use as an immutable snapshot.
func (b *Billboard) Clone() *Billboard {
	if b == nil {
		return nil
	}
	c := *b
	if b.ManualStatus != nil {
		s := *b.ManualStatus
		c.ManualStatus = &s
	}
	if b.Fixed != nil {
		f := *b.Fixed
		if b.Fixed.Client != nil {
			cl := *b.Fixed.Client
			f.Client = &cl
		}
		c.Fixed = &f
	}
	if b.Digital != nil {
		d := *b.Digital
		d.CurrentClients = append([]DigitalClient(nil), b.Digital.CurrentClients...)
		d.Prices = b.Digital.Prices.clone()
		c.Digital = &d
	}
	return &c
}

func (p DigitalPrices) clone() DigitalPrices {
	cp := func(v *int64) *int64 {
		if v == nil {
			return nil
		}
		n := *v
		return &n
	}
	return DigitalPrices{
		Spot:       cp(p.Spot),
		Hour:       cp(p.Hour),
		Day:        cp(p.Day),
		Week:       cp(p.Week),
		Month:      cp(p.Month),
		Impression: cp(p.Impression),
	}
}

type BillboardStatusUpdate struct {
	Status BillboardStatus `json:"status" validate:"required,oneof=reserved confirmed maintenance"`
}

// Price is a small helper for building optional prices in literals.
func Price(v int64) *int64 {
	return &v
}
