package model

import "time"

type Modality string

const (
	ModalityMonthly     Modality = "monthly"
	ModalityBiweekly    Modality = "biweekly"
	ModalityWeekly      Modality = "weekly"
	ModalitySpot        Modality = "spot"
	ModalityHour        Modality = "hour"
	ModalityDay         Modality = "day"
	ModalityImpressions Modality = "impressions"
)

func (m Modality) Valid() bool {
	switch m {
	case ModalityMonthly, ModalityBiweekly, ModalityWeekly, ModalitySpot,
		ModalityHour, ModalityDay, ModalityImpressions:
		return true
	}
	return false
}

type CreativeDelivery struct {
	Format          string `json:"format,omitempty" bson:"format,omitempty"`
	DurationSeconds int    `json:"duration_seconds,omitempty" bson:"duration_seconds,omitempty"`
}

// ItemConfig carries the modality-specific parameters of a cart line. Only the
// count field belonging to the line's modality may be set.
type ItemConfig struct {
	Months      int               `json:"months,omitempty" bson:"months,omitempty"`
	Fortnights  int               `json:"fortnights,omitempty" bson:"fortnights,omitempty"`
	Weeks       int               `json:"weeks,omitempty" bson:"weeks,omitempty"`
	Days        int               `json:"days,omitempty" bson:"days,omitempty"`
	HoursPerDay int               `json:"hours_per_day,omitempty" bson:"hours_per_day,omitempty"`
	SpotsPerDay int               `json:"spots_per_day,omitempty" bson:"spots_per_day,omitempty"`
	Impressions int64             `json:"impressions,omitempty" bson:"impressions,omitempty"`
	StartDate   *time.Time        `json:"start_date,omitempty" bson:"start_date,omitempty"`
	EndDate     *time.Time        `json:"end_date,omitempty" bson:"end_date,omitempty"`
	Creative    *CreativeDelivery `json:"creative,omitempty" bson:"creative,omitempty"`
}

type CartItem struct {
	ID        string     `json:"id" bson:"id"`
	Resource  Billboard  `json:"resource" bson:"resource"`
	Modality  Modality   `json:"modality" bson:"modality"`
	Config    ItemConfig `json:"config" bson:"config"`
	UnitPrice int64      `json:"unit_price" bson:"unit_price"`
	Quantity  int        `json:"quantity" bson:"quantity"`
	Subtotal  int64      `json:"subtotal" bson:"subtotal"`
	AddedAt   time.Time  `json:"added_at" bson:"added_at"`
}

// Cart is a client session's in-progress selection. Total and ItemCount are
// written only by Recompute.
type Cart struct {
	ID         string     `json:"id,omitempty" bson:"_id,omitempty"`
	SessionID  string     `json:"session_id" bson:"session_id"`
	Items      []CartItem `json:"items" bson:"items"`
	Total      int64      `json:"total" bson:"total"`
	ItemCount  int        `json:"item_count" bson:"item_count"`
	CampaignID string     `json:"campaign_id,omitempty" bson:"campaign_id,omitempty"`
	BookingID  string     `json:"booking_id,omitempty" bson:"booking_id,omitempty"`
	CreatedAt  time.Time  `json:"created_at" bson:"created_at"`
	UpdatedAt  time.Time  `json:"updated_at" bson:"updated_at"`
}

// Recompute rebuilds every subtotal and the cart aggregates from Items.
func (c *Cart) Recompute() {
	var total int64
	var count int
	for i := range c.Items {
		c.Items[i].Subtotal = c.Items[i].UnitPrice * int64(c.Items[i].Quantity)
		total += c.Items[i].Subtotal
		count += c.Items[i].Quantity
	}
	c.Total = total
	c.ItemCount = count
}

func (c *Cart) IsEmpty() bool {
	return len(c.Items) == 0
}

// CheckedOut reports whether a booking was already created from this cart.
func (c *Cart) CheckedOut() bool {
	return c.BookingID != ""
}

type AddToCartRequest struct {
	ResourceID string     `json:"resource_id" validate:"required"`
	Modality   Modality   `json:"modality" validate:"required,oneof=monthly biweekly weekly spot hour day impressions"`
	Config     ItemConfig `json:"config"`
	Quantity   int        `json:"quantity" validate:"min=0,max=1000"`
}

type CartItemUpdate struct {
	Quantity int `json:"quantity" validate:"required,min=1,max=1000"`
}

// LegacyCartLine is the minimal cart line shape still sent by older clients.
type LegacyCartLine struct {
	ID         string     `json:"id" validate:"required"`
	Name       string     `json:"name" validate:"required"`
	Type       string     `json:"type" validate:"required,oneof=fixed digital"`
	Dimensions string     `json:"dimensions"`
	Price      int64      `json:"price" validate:"min=0"`
	StartDate  *time.Time `json:"start_date"`
	EndDate    *time.Time `json:"end_date"`
	OwnerID    string     `json:"owner_id"`
}

type CreateCartRequest struct {
	CampaignID string `json:"campaign_id,omitempty" validate:"omitempty,max=64"`
}
