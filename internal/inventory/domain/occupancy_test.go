package domain

import (
	"errors"
	"fmt"
	"testing"
	"time"

	inventoryerrors "billboards/internal/inventory/errors"
	"billboards/pkg/model"
)

func digitalBillboard(maxClients int) *model.Billboard {
	b := &model.Billboard{
		ID:   "b1",
		Kind: model.KindDigital,
		Digital: &model.DigitalDetails{
			MaxClients: maxClients,
			Prices: model.DigitalPrices{
				Spot: model.Price(50),
				Day:  model.Price(900),
			},
		},
	}
	b.RefreshStatus()
	return b
}

func fixedBillboard() *model.Billboard {
	b := &model.Billboard{
		ID:    "f1",
		Kind:  model.KindFixed,
		Fixed: &model.FixedDetails{MonthlyPrice: 1000, ContractMonths: 1},
	}
	b.RefreshStatus()
	return b
}

func dayClient(id string) model.DigitalClient {
	start := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	return model.DigitalClient{
		Client: model.Client{
			ID:        id,
			Name:      "Client " + id,
			Channel:   model.ChannelPlatform,
			StartDate: start,
			EndDate:   start.AddDate(0, 0, 7),
		},
		SaleUnit: model.SaleUnitDay,
	}
}

func assertSlotInvariant(t *testing.T, b *model.Billboard) {
	t.Helper()
	d := b.Digital
	if d.AvailableSlots != d.MaxClients-len(d.CurrentClients) || d.AvailableSlots < 0 {
		t.Fatalf("slot invariant broken: max=%d clients=%d available=%d",
			d.MaxClients, len(d.CurrentClients), d.AvailableSlots)
	}
}

func TestReserve_FillsUpToCapacity(t *testing.T) {
	b := digitalBillboard(15)

	for i := 0; i < 15; i++ {
		next, err := Reserve(b, dayClient(fmt.Sprintf("c%d", i)))
		if err != nil {
			t.Fatalf("reservation %d failed: %v", i+1, err)
		}
		assertSlotInvariant(t, next)
		b = next
	}

	if b.Status != model.StatusOccupied {
		t.Errorf("expected occupied after filling all slots, got %s", b.Status)
	}
	if b.Digital.AvailableSlots != 0 {
		t.Errorf("expected 0 slots, got %d", b.Digital.AvailableSlots)
	}

	if _, err := Reserve(b, dayClient("c16")); !errors.Is(err, inventoryerrors.ErrCapacityExceeded) {
		t.Errorf("16th reservation: expected ErrCapacityExceeded, got %v", err)
	}
}

func TestReserve_DoesNotMutateInput(t *testing.T) {
	b := digitalBillboard(3)

	next, err := Reserve(b, dayClient("c1"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(b.Digital.CurrentClients) != 0 || b.Digital.AvailableSlots != 3 {
		t.Errorf("input billboard was mutated: %+v", b.Digital)
	}
	if len(next.Digital.CurrentClients) != 1 || next.Digital.AvailableSlots != 2 {
		t.Errorf("unexpected result: %+v", next.Digital)
	}
}

func TestReserve_Rejections(t *testing.T) {
	maintenance := model.StatusMaintenance

	spotWithoutCount := dayClient("c1")
	spotWithoutCount.SaleUnit = model.SaleUnitSpot

	dayWithHours := dayClient("c1")
	dayWithHours.HoursPerDay = 4

	tests := []struct {
		name    string
		b       func() *model.Billboard
		client  model.DigitalClient
		wantErr error
	}{
		{
			name:    "fixed billboard",
			b:       fixedBillboard,
			client:  dayClient("c1"),
			wantErr: inventoryerrors.ErrWrongKind,
		},
		{
			name: "manual status blocks reservations",
			b: func() *model.Billboard {
				b := digitalBillboard(5)
				b.ManualStatus = &maintenance
				b.RefreshStatus()
				return b
			},
			client:  dayClient("c1"),
			wantErr: inventoryerrors.ErrResourceUnavailable,
		},
		{
			name: "unpublished sale unit",
			b:    func() *model.Billboard { return digitalBillboard(5) },
			client: func() model.DigitalClient {
				c := dayClient("c1")
				c.SaleUnit = model.SaleUnitHour
				c.HoursPerDay = 2
				return c
			}(),
			wantErr: inventoryerrors.ErrInvalidSaleUnit,
		},
		{
			name:    "spot unit without spots per day",
			b:       func() *model.Billboard { return digitalBillboard(5) },
			client:  spotWithoutCount,
			wantErr: inventoryerrors.ErrInvalidOccupancy,
		},
		{
			name:    "day unit with hours per day",
			b:       func() *model.Billboard { return digitalBillboard(5) },
			client:  dayWithHours,
			wantErr: inventoryerrors.ErrInvalidOccupancy,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Reserve(tt.b(), tt.client)
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("expected %v, got %v", tt.wantErr, err)
			}
		})
	}
}

func TestRelease(t *testing.T) {
	b := digitalBillboard(1)
	b, err := Reserve(b, dayClient("c1"))
	if err != nil {
		t.Fatalf("reserve: %v", err)
	}
	if b.Status != model.StatusOccupied {
		t.Fatalf("expected occupied, got %s", b.Status)
	}

	released, removed, err := Release(b, "c1")
	if err != nil {
		t.Fatalf("release: %v", err)
	}
	if removed.ID != "c1" {
		t.Errorf("removed wrong client: %s", removed.ID)
	}
	assertSlotInvariant(t, released)
	if released.Status != model.StatusAvailable {
		t.Errorf("expected available after release, got %s", released.Status)
	}

	if _, _, err := Release(released, "c1"); !errors.Is(err, inventoryerrors.ErrClientNotFound) {
		t.Errorf("second release: expected ErrClientNotFound, got %v", err)
	}
}

func TestTenantLifecycle(t *testing.T) {
	b := fixedBillboard()
	tenant := dayClient("t1").Client

	b, err := AssignTenant(b, tenant)
	if err != nil {
		t.Fatalf("assign: %v", err)
	}
	if b.Status != model.StatusOccupied {
		t.Errorf("expected occupied, got %s", b.Status)
	}

	if _, err := AssignTenant(b, dayClient("t2").Client); !errors.Is(err, inventoryerrors.ErrCapacityExceeded) {
		t.Errorf("expected ErrCapacityExceeded, got %v", err)
	}
	if _, err := ReleaseTenant(b, "t2"); !errors.Is(err, inventoryerrors.ErrClientNotFound) {
		t.Errorf("expected ErrClientNotFound, got %v", err)
	}

	b, err = ReleaseTenant(b, "t1")
	if err != nil {
		t.Fatalf("release: %v", err)
	}
	if b.Status != model.StatusAvailable || b.Fixed.Client != nil {
		t.Errorf("tenant not released: status=%s", b.Status)
	}
}

func TestManualStatusIsSticky(t *testing.T) {
	b := digitalBillboard(2)

	b, err := SetManual(b, model.StatusMaintenance)
	if err != nil {
		t.Fatalf("set manual: %v", err)
	}
	if b.Status != model.StatusMaintenance {
		t.Fatalf("expected maintenance, got %s", b.Status)
	}

	if _, err := SetManual(b, model.StatusOccupied); !errors.Is(err, inventoryerrors.ErrInvalidStatus) {
		t.Errorf("occupied is derived only, got %v", err)
	}

	b = ClearManual(b)
	if b.Status != model.StatusAvailable || b.ManualStatus != nil {
		t.Errorf("expected derived available after clear, got %s", b.Status)
	}
}

func TestApplyBookingStatus(t *testing.T) {
	maintenance := model.StatusMaintenance

	tests := []struct {
		name       string
		b          func() *model.Billboard
		status     model.BookingStatus
		wantStatus model.BillboardStatus
		wantNoop   bool
	}{
		{
			name:       "approved reserves fixed billboard",
			b:          fixedBillboard,
			status:     model.BookingApproved,
			wantStatus: model.StatusReserved,
		},
		{
			name: "confirmed upgrades reserved",
			b: func() *model.Billboard {
				b, _ := SetManual(fixedBillboard(), model.StatusReserved)
				return b
			},
			status:     model.BookingConfirmed,
			wantStatus: model.StatusConfirmed,
		},
		{
			name: "owner maintenance wins",
			b: func() *model.Billboard {
				b := fixedBillboard()
				b.ManualStatus = &maintenance
				return b
			},
			status:   model.BookingApproved,
			wantNoop: true,
		},
		{
			name:     "digital screens are untouched",
			b:        func() *model.Billboard { return digitalBillboard(3) },
			status:   model.BookingApproved,
			wantNoop: true,
		},
		{
			name:     "rejected is ignored",
			b:        fixedBillboard,
			status:   model.BookingRejected,
			wantNoop: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			next := ApplyBookingStatus(tt.b(), tt.status)
			if tt.wantNoop {
				if next != nil {
					t.Errorf("expected no change, got status %s", next.Status)
				}
				return
			}
			if next == nil || next.Status != tt.wantStatus {
				t.Errorf("expected %s, got %+v", tt.wantStatus, next)
			}
		})
	}
}
