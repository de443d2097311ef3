package model

import "time"

type SalesChannel string

const (
	ChannelPlatform SalesChannel = "platform"
	ChannelDirect   SalesChannel = "direct"
)

type SaleUnit string

const (
	SaleUnitSpot  SaleUnit = "spot"
	SaleUnitHour  SaleUnit = "hour"
	SaleUnitDay   SaleUnit = "day"
	SaleUnitWeek  SaleUnit = "week"
	SaleUnitMonth SaleUnit = "month"
)

func (u SaleUnit) Valid() bool {
	switch u {
	case SaleUnitSpot, SaleUnitHour, SaleUnitDay, SaleUnitWeek, SaleUnitMonth:
		return true
	}
	return false
}

// Client is an advertiser occupying a billboard.
type Client struct {
	ID              string       `json:"id" bson:"id"`
	Name            string       `json:"name" bson:"name" validate:"required,min=2,max=120"`
	Channel         SalesChannel `json:"channel" bson:"channel" validate:"required,oneof=platform direct"`
	StartDate       time.Time    `json:"start_date" bson:"start_date" validate:"required"`
	EndDate         time.Time    `json:"end_date" bson:"end_date" validate:"required,gtefield=StartDate"`
	ContractedPrice int64        `json:"contracted_price" bson:"contracted_price" validate:"min=0"`
}

// DigitalClient is a client sharing a digital screen. SpotsPerDay is set only
// for the spot unit and HoursPerDay only for the hour unit.
type DigitalClient struct {
	Client      `bson:",inline"`
	SaleUnit    SaleUnit `json:"sale_unit" bson:"sale_unit"`
	SpotsPerDay int      `json:"spots_per_day,omitempty" bson:"spots_per_day,omitempty"`
	HoursPerDay int      `json:"hours_per_day,omitempty" bson:"hours_per_day,omitempty"`
}

// OccupancyMatchesUnit checks that exactly the per-unit field for SaleUnit is
// populated.
func (c DigitalClient) OccupancyMatchesUnit() bool {
	switch c.SaleUnit {
	case SaleUnitSpot:
		return c.SpotsPerDay > 0 && c.HoursPerDay == 0
	case SaleUnitHour:
		return c.HoursPerDay > 0 && c.SpotsPerDay == 0
	case SaleUnitDay, SaleUnitWeek, SaleUnitMonth:
		return c.SpotsPerDay == 0 && c.HoursPerDay == 0
	}
	return false
}

type SlotReservation struct {
	Client      Client   `json:"client"`
	SaleUnit    SaleUnit `json:"sale_unit" validate:"required,sale_unit"`
	SpotsPerDay int      `json:"spots_per_day,omitempty" validate:"min=0,max=1440"`
	HoursPerDay int      `json:"hours_per_day,omitempty" validate:"min=0,max=24"`
}
