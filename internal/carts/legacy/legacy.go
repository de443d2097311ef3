// Package legacy converts the cart line shape sent by older clients into a
// CartItem. The conversion is lossy: coordinates are unknown, a single face
// is assumed and every line is sold monthly. New code builds items through
// the engine instead.
package legacy

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	cartserrors "billboards/internal/carts/errors"
	"billboards/pkg/model"
)

// FromLegacyLine builds a one unit monthly CartItem from line. Either date may
// be missing, but a start after the end is rejected.
func FromLegacyLine(line model.LegacyCartLine) (model.CartItem, error) {
	if line.StartDate != nil && line.EndDate != nil && line.StartDate.After(*line.EndDate) {
		return model.CartItem{}, fmt.Errorf("%w: start %s is after end %s", cartserrors.ErrDateRangeInvalid,
			line.StartDate.Format(time.DateOnly), line.EndDate.Format(time.DateOnly))
	}

	kind := model.BillboardKind(strings.ToLower(strings.TrimSpace(line.Type)))

	resource := model.Billboard{
		ID:      line.ID,
		OwnerID: line.OwnerID,
		Name:    strings.TrimSpace(line.Name),
		Kind:    kind,
		Size:    parseDimensions(line.Dimensions, kind),
		Faces:   1,
	}

	switch kind {
	case model.KindFixed:
		resource.Fixed = &model.FixedDetails{MonthlyPrice: line.Price, ContractMonths: 1}
	case model.KindDigital:
		resource.Digital = &model.DigitalDetails{
			Prices:         model.DigitalPrices{Month: model.Price(line.Price)},
			CurrentClients: []model.DigitalClient{},
		}
	default:
		return model.CartItem{}, fmt.Errorf("unknown legacy billboard type %q", line.Type)
	}
	resource.RefreshStatus()

	return model.CartItem{
		Resource: resource,
		Modality: model.ModalityMonthly,
		Config: model.ItemConfig{
			Months:    1,
			StartDate: line.StartDate,
			EndDate:   line.EndDate,
		},
		UnitPrice: line.Price,
		Quantity:  1,
	}, nil
}

// parseDimensions reads strings such as "12x4", "12 x 4 m" or "1920x1080px".
// Anything unreadable yields a zero size.
func parseDimensions(raw string, kind model.BillboardKind) model.Size {
	unit := "m"
	if kind == model.KindDigital {
		unit = "px"
	}

	s := strings.ToLower(strings.ReplaceAll(raw, " ", ""))
	for _, u := range []string{"px", "m"} {
		if strings.HasSuffix(s, u) {
			unit = u
			s = strings.TrimSuffix(s, u)
			break
		}
	}

	parts := strings.Split(s, "x")
	if len(parts) != 2 {
		return model.Size{Unit: unit}
	}
	w, errW := strconv.ParseFloat(parts[0], 64)
	h, errH := strconv.ParseFloat(parts[1], 64)
	if errW != nil || errH != nil {
		return model.Size{Unit: unit}
	}
	return model.Size{Width: w, Height: h, Unit: unit}
}
