// Package pricing selects unit prices and validates modality configs. Every
// function here is pure.
package pricing

import (
	"fmt"
	"time"

	cartserrors "billboards/internal/carts/errors"
	"billboards/pkg/model"
)

// UnitPrice returns the price of one unit of modality on b. Fixed billboards
// are only sold by the month. Digital screens map each modality onto the sale
// unit price they publish.
func UnitPrice(b *model.Billboard, modality model.Modality) (int64, error) {
	switch b.Kind {
	case model.KindFixed:
		if modality != model.ModalityMonthly || b.Fixed == nil || b.Fixed.MonthlyPrice <= 0 {
			return 0, fmt.Errorf("%w: %s on fixed billboard", cartserrors.ErrUnsupportedModality, modality)
		}
		return b.Fixed.MonthlyPrice, nil

	case model.KindDigital:
		if b.Digital == nil {
			return 0, fmt.Errorf("%w: digital billboard without details", cartserrors.ErrUnsupportedModality)
		}
		var price *int64
		p := b.Digital.Prices
		switch modality {
		case model.ModalitySpot:
			price = p.Spot
		case model.ModalityHour:
			price = p.Hour
		case model.ModalityDay:
			price = p.Day
		case model.ModalityWeekly:
			price = p.Week
		case model.ModalityMonthly:
			price = p.Month
		case model.ModalityImpressions:
			price = p.Impression
		}
		if price == nil {
			return 0, fmt.Errorf("%w: %s on digital billboard", cartserrors.ErrUnsupportedModality, modality)
		}
		return *price, nil
	}

	return 0, fmt.Errorf("%w: unknown billboard kind %q", cartserrors.ErrUnsupportedModality, b.Kind)
}

type rule struct {
	count      func(c model.ItemConfig) int64
	endDerived func(start time.Time, c model.ItemConfig) time.Time
}

var rules = map[model.Modality]rule{
	model.ModalityMonthly: {
		count:      func(c model.ItemConfig) int64 { return int64(c.Months) },
		endDerived: func(s time.Time, c model.ItemConfig) time.Time { return s.AddDate(0, c.Months, 0) },
	},
	model.ModalityBiweekly: {
		count:      func(c model.ItemConfig) int64 { return int64(c.Fortnights) },
		endDerived: func(s time.Time, c model.ItemConfig) time.Time { return s.AddDate(0, 0, 14*c.Fortnights) },
	},
	model.ModalityWeekly: {
		count:      func(c model.ItemConfig) int64 { return int64(c.Weeks) },
		endDerived: func(s time.Time, c model.ItemConfig) time.Time { return s.AddDate(0, 0, 7*c.Weeks) },
	},
	model.ModalityDay:         {count: func(c model.ItemConfig) int64 { return int64(c.Days) }},
	model.ModalityHour:        {count: func(c model.ItemConfig) int64 { return int64(c.HoursPerDay) }},
	model.ModalitySpot:        {count: func(c model.ItemConfig) int64 { return int64(c.SpotsPerDay) }},
	model.ModalityImpressions: {count: func(c model.ItemConfig) int64 { return c.Impressions }},
}

// ValidateConfig checks that exactly the count field belonging to modality
// is set and that the date bounds it requires are present and ordered.
func ValidateConfig(modality model.Modality, c model.ItemConfig) error {
	r, ok := rules[modality]
	if !ok {
		return fmt.Errorf("%w: unknown modality %q", cartserrors.ErrUnsupportedModality, modality)
	}

	if r.count(c) <= 0 {
		return fmt.Errorf("%w: %s requires a positive %s", cartserrors.ErrInvalidConfig, modality, countField(modality))
	}
	for other, or := range rules {
		if other != modality && or.count(c) != 0 {
			return fmt.Errorf("%w: %s cannot be set for %s", cartserrors.ErrInvalidConfig, countField(other), modality)
		}
	}

	if c.StartDate == nil {
		return fmt.Errorf("%w: start date is required", cartserrors.ErrDateRangeInvalid)
	}
	if c.EndDate == nil {
		if r.endDerived == nil {
			return fmt.Errorf("%w: end date is required for %s", cartserrors.ErrDateRangeInvalid, modality)
		}
		return nil
	}
	if c.StartDate.After(*c.EndDate) {
		return fmt.Errorf("%w: start %s is after end %s", cartserrors.ErrDateRangeInvalid,
			c.StartDate.Format(time.DateOnly), c.EndDate.Format(time.DateOnly))
	}
	return nil
}

// Normalize fills the derived end date of duration based modalities. It
// assumes c already passed ValidateConfig.
func Normalize(modality model.Modality, c model.ItemConfig) model.ItemConfig {
	r := rules[modality]
	if c.EndDate == nil && c.StartDate != nil && r.endDerived != nil {
		end := r.endDerived(*c.StartDate, c)
		c.EndDate = &end
	}
	return c
}

func countField(m model.Modality) string {
	switch m {
	case model.ModalityMonthly:
		return "months"
	case model.ModalityBiweekly:
		return "fortnights"
	case model.ModalityWeekly:
		return "weeks"
	case model.ModalityDay:
		return "days"
	case model.ModalityHour:
		return "hours_per_day"
	case model.ModalitySpot:
		return "spots_per_day"
	case model.ModalityImpressions:
		return "impressions"
	}
	return string(m)
}
