package engine

import (
	"errors"
	"testing"
	"time"

	cartserrors "billboards/internal/carts/errors"
	"billboards/pkg/model"
)

func start() *time.Time {
	t := time.Date(2026, 5, 1, 0, 0, 0, 0, time.UTC)
	return &t
}

func fixed(price int64) *model.Billboard {
	b := &model.Billboard{
		ID:    "f1",
		Kind:  model.KindFixed,
		Fixed: &model.FixedDetails{MonthlyPrice: price, ContractMonths: 1},
	}
	b.RefreshStatus()
	return b
}

func digital() *model.Billboard {
	b := &model.Billboard{
		ID:   "d1",
		Kind: model.KindDigital,
		Digital: &model.DigitalDetails{
			MaxClients: 15,
			Prices:     model.DigitalPrices{Day: model.Price(300), Spot: model.Price(5)},
		},
	}
	b.RefreshStatus()
	return b
}

func assertTotals(t *testing.T, c *model.Cart) {
	t.Helper()
	var total int64
	var count int
	for _, it := range c.Items {
		if it.Subtotal != it.UnitPrice*int64(it.Quantity) {
			t.Fatalf("item %s subtotal drifted: %d != %d x %d", it.ID, it.Subtotal, it.UnitPrice, it.Quantity)
		}
		total += it.Subtotal
		count += it.Quantity
	}
	if c.Total != total || c.ItemCount != count {
		t.Fatalf("cart aggregates drifted: total=%d want %d, count=%d want %d", c.Total, total, c.ItemCount, count)
	}
}

func TestAddToCart_FixedMonthly(t *testing.T) {
	cart := &model.Cart{}

	item, err := AddToCart(cart, fixed(1000), model.ModalityMonthly, model.ItemConfig{Months: 1, StartDate: start()}, 1)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if item.Subtotal != 1000 {
		t.Errorf("expected subtotal 1000, got %d", item.Subtotal)
	}
	if cart.Total != 1000 || cart.ItemCount != 1 {
		t.Errorf("expected total 1000 and 1 item, got %d and %d", cart.Total, cart.ItemCount)
	}
	if item.Config.EndDate == nil || !item.Config.EndDate.Equal(start().AddDate(0, 1, 0)) {
		t.Errorf("end date should be derived from months, got %v", item.Config.EndDate)
	}
	assertTotals(t, cart)
}

func TestAddToCart_SnapshotsResource(t *testing.T) {
	cart := &model.Cart{}
	b := fixed(1000)

	if _, err := AddToCart(cart, b, model.ModalityMonthly, model.ItemConfig{Months: 1, StartDate: start()}, 1); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	b.Fixed.MonthlyPrice = 5000
	if cart.Items[0].Resource.Fixed.MonthlyPrice != 1000 || cart.Items[0].UnitPrice != 1000 {
		t.Errorf("cart item must not follow later resource changes")
	}
	if b.Status != model.StatusAvailable || b.Fixed.Client != nil {
		t.Errorf("adding to cart must not reserve the resource")
	}
}

func TestAddToCart_Errors(t *testing.T) {
	end := start().AddDate(0, 0, -1)

	tests := []struct {
		name     string
		resource *model.Billboard
		modality model.Modality
		config   model.ItemConfig
		quantity int
		wantErr  error
	}{
		{"fixed weekly", fixed(1000), model.ModalityWeekly, model.ItemConfig{Weeks: 1, StartDate: start()}, 1, cartserrors.ErrUnsupportedModality},
		{"digital without hour price", digital(), model.ModalityHour, model.ItemConfig{HoursPerDay: 2, StartDate: start(), EndDate: start()}, 1, cartserrors.ErrUnsupportedModality},
		{"reversed dates", digital(), model.ModalityDay, model.ItemConfig{Days: 1, StartDate: start(), EndDate: &end}, 1, cartserrors.ErrDateRangeInvalid},
		{"mismatched config", digital(), model.ModalityDay, model.ItemConfig{Days: 1, SpotsPerDay: 3, StartDate: start(), EndDate: start()}, 1, cartserrors.ErrInvalidConfig},
		{"zero quantity", fixed(1000), model.ModalityMonthly, model.ItemConfig{Months: 1, StartDate: start()}, 0, cartserrors.ErrInvalidQuantity},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cart := &model.Cart{}
			_, err := AddToCart(cart, tt.resource, tt.modality, tt.config, tt.quantity)
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("expected %v, got %v", tt.wantErr, err)
			}
			if len(cart.Items) != 0 || cart.Total != 0 {
				t.Errorf("failed add must leave the cart untouched")
			}
		})
	}
}

func TestMutations_KeepTotalsConsistent(t *testing.T) {
	cart := &model.Cart{}
	dayEnd := start().AddDate(0, 0, 6)

	first, err := AddToCart(cart, fixed(1000), model.ModalityMonthly, model.ItemConfig{Months: 1, StartDate: start()}, 2)
	if err != nil {
		t.Fatalf("add fixed: %v", err)
	}
	firstID := first.ID
	assertTotals(t, cart)

	second, err := AddToCart(cart, digital(), model.ModalityDay, model.ItemConfig{Days: 7, StartDate: start(), EndDate: &dayEnd}, 7)
	if err != nil {
		t.Fatalf("add digital: %v", err)
	}
	secondID := second.ID
	assertTotals(t, cart)
	if cart.Total != 2*1000+7*300 || cart.ItemCount != 9 {
		t.Fatalf("unexpected totals: %d / %d", cart.Total, cart.ItemCount)
	}

	if err := UpdateQuantity(cart, secondID, 3); err != nil {
		t.Fatalf("update: %v", err)
	}
	assertTotals(t, cart)
	if cart.Total != 2000+900 {
		t.Errorf("expected 2900, got %d", cart.Total)
	}

	if err := UpdateQuantity(cart, secondID, 0); !errors.Is(err, cartserrors.ErrInvalidQuantity) {
		t.Errorf("expected ErrInvalidQuantity, got %v", err)
	}
	if err := UpdateQuantity(cart, "missing", 1); !errors.Is(err, cartserrors.ErrItemNotFound) {
		t.Errorf("expected ErrItemNotFound, got %v", err)
	}

	if err := RemoveItem(cart, firstID); err != nil {
		t.Fatalf("remove: %v", err)
	}
	assertTotals(t, cart)
	if cart.Total != 900 || cart.ItemCount != 3 {
		t.Errorf("expected 900 / 3 after remove, got %d / %d", cart.Total, cart.ItemCount)
	}
	if err := RemoveItem(cart, firstID); !errors.Is(err, cartserrors.ErrItemNotFound) {
		t.Errorf("second remove: expected ErrItemNotFound, got %v", err)
	}

	Clear(cart)
	assertTotals(t, cart)
	if !cart.IsEmpty() || cart.Total != 0 || cart.ItemCount != 0 {
		t.Errorf("expected empty cart, got %+v", cart)
	}
}

func TestInsert_Defaults(t *testing.T) {
	cart := &model.Cart{}
	if err := Insert(cart, model.CartItem{UnitPrice: 10, Quantity: 1}); err != nil {
		t.Fatalf("insert: %v", err)
	}
	if cart.Items[0].ID == "" || cart.Items[0].AddedAt.IsZero() {
		t.Errorf("insert should assign an id and timestamp")
	}
	if err := Insert(cart, model.CartItem{UnitPrice: 10}); !errors.Is(err, cartserrors.ErrInvalidQuantity) {
		t.Errorf("expected ErrInvalidQuantity, got %v", err)
	}
}
