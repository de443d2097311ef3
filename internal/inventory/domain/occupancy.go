// Package domain holds the pure occupancy transitions of a billboard. Every
// function works on a copy and never touches the input, so the caller can
// retry the same transition against a fresher read.
package domain

import (
	"fmt"

	inventoryerrors "billboards/internal/inventory/errors"
	"billboards/pkg/model"
)

// Reserve appends client to a digital screen.
func Reserve(b *model.Billboard, client model.DigitalClient) (*model.Billboard, error) {
	if b.Kind != model.KindDigital || b.Digital == nil {
		return nil, fmt.Errorf("%w: reserve slot on %s billboard", inventoryerrors.ErrWrongKind, b.Kind)
	}
	if b.ManualStatus != nil {
		return nil, fmt.Errorf("%w: status is %s", inventoryerrors.ErrResourceUnavailable, *b.ManualStatus)
	}
	if _, ok := b.Digital.Prices.ForUnit(client.SaleUnit); !ok {
		return nil, fmt.Errorf("%w: %s", inventoryerrors.ErrInvalidSaleUnit, client.SaleUnit)
	}
	if !client.OccupancyMatchesUnit() {
		return nil, fmt.Errorf("%w: %s", inventoryerrors.ErrInvalidOccupancy, client.SaleUnit)
	}

	next := b.Clone()
	next.Digital.Recompute()
	if next.Digital.AvailableSlots == 0 {
		return nil, inventoryerrors.ErrCapacityExceeded
	}

	next.Digital.CurrentClients = append(next.Digital.CurrentClients, client)
	next.RefreshStatus()
	return next, nil
}

// Release removes the digital client with the given ID.
func Release(b *model.Billboard, clientID string) (*model.Billboard, model.DigitalClient, error) {
	if b.Kind != model.KindDigital || b.Digital == nil {
		return nil, model.DigitalClient{}, fmt.Errorf("%w: release slot on %s billboard", inventoryerrors.ErrWrongKind, b.Kind)
	}

	idx := -1
	for i, c := range b.Digital.CurrentClients {
		if c.ID == clientID {
			idx = i
			break
		}
	}
	if idx < 0 {
		return nil, model.DigitalClient{}, fmt.Errorf("%w: %s", inventoryerrors.ErrClientNotFound, clientID)
	}

	next := b.Clone()
	removed := next.Digital.CurrentClients[idx]
	next.Digital.CurrentClients = append(next.Digital.CurrentClients[:idx], next.Digital.CurrentClients[idx+1:]...)
	next.RefreshStatus()
	return next, removed, nil
}

// AssignTenant places the single occupant of a fixed billboard.
func AssignTenant(b *model.Billboard, client model.Client) (*model.Billboard, error) {
	if b.Kind != model.KindFixed || b.Fixed == nil {
		return nil, fmt.Errorf("%w: assign tenant on %s billboard", inventoryerrors.ErrWrongKind, b.Kind)
	}
	if b.ManualStatus != nil && *b.ManualStatus == model.StatusMaintenance {
		return nil, fmt.Errorf("%w: status is %s", inventoryerrors.ErrResourceUnavailable, *b.ManualStatus)
	}
	if b.Fixed.Client != nil {
		return nil, inventoryerrors.ErrCapacityExceeded
	}

	next := b.Clone()
	next.Fixed.Client = &client
	next.RefreshStatus()
	return next, nil
}

func ReleaseTenant(b *model.Billboard, clientID string) (*model.Billboard, error) {
	if b.Kind != model.KindFixed || b.Fixed == nil {
		return nil, fmt.Errorf("%w: release tenant on %s billboard", inventoryerrors.ErrWrongKind, b.Kind)
	}
	if b.Fixed.Client == nil || b.Fixed.Client.ID != clientID {
		return nil, fmt.Errorf("%w: %s", inventoryerrors.ErrClientNotFound, clientID)
	}

	next := b.Clone()
	next.Fixed.Client = nil
	next.RefreshStatus()
	return next, nil
}

// SetManual pins status until ClearManual is called.
func SetManual(b *model.Billboard, status model.BillboardStatus) (*model.Billboard, error) {
	if !status.IsManual() {
		return nil, fmt.Errorf("%w: %s", inventoryerrors.ErrInvalidStatus, status)
	}
	next := b.Clone()
	next.ManualStatus = &status
	next.RefreshStatus()
	return next, nil
}

func ClearManual(b *model.Billboard) *model.Billboard {
	next := b.Clone()
	next.ManualStatus = nil
	next.RefreshStatus()
	return next
}

// ApplyBookingStatus projects a booking status onto a fixed billboard. It
// returns nil when the billboard should be left alone: digital screens, an
// owner override that is already in place, or statuses that carry no
// inventory meaning.
func ApplyBookingStatus(b *model.Billboard, status model.BookingStatus) *model.Billboard {
	if b.Kind != model.KindFixed {
		return nil
	}

	var target model.BillboardStatus
	switch status {
	case model.BookingApproved:
		if b.ManualStatus != nil {
			return nil
		}
		target = model.StatusReserved
	case model.BookingConfirmed:
		// reserved was set by the approval of the same pipeline
		if b.ManualStatus != nil && *b.ManualStatus != model.StatusReserved {
			return nil
		}
		target = model.StatusConfirmed
	default:
		return nil
	}

	next := b.Clone()
	next.ManualStatus = &target
	next.RefreshStatus()
	return next
}
