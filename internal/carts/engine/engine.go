// Package engine applies cart mutations. Every mutator validates before it
// touches the cart and always finishes with a full Recompute.
package engine

import (
	"fmt"
	"time"

	cartserrors "billboards/internal/carts/errors"
	"billboards/internal/carts/pricing"
	"billboards/pkg/model"

	"github.com/google/uuid"
)

// AddToCart prices resource for modality and appends a new line. The
// resource is snapshotted, never mutated, and no capacity is held.
func AddToCart(cart *model.Cart, resource *model.Billboard, modality model.Modality, config model.ItemConfig, quantity int) (*model.CartItem, error) {
	if quantity < 1 {
		return nil, fmt.Errorf("%w: got %d", cartserrors.ErrInvalidQuantity, quantity)
	}

	unitPrice, err := pricing.UnitPrice(resource, modality)
	if err != nil {
		return nil, err
	}
	if err := pricing.ValidateConfig(modality, config); err != nil {
		return nil, err
	}

	item := model.CartItem{
		ID:        uuid.NewString(),
		Resource:  *resource.Clone(),
		Modality:  modality,
		Config:    pricing.Normalize(modality, config),
		UnitPrice: unitPrice,
		Quantity:  quantity,
	}
	if err := Insert(cart, item); err != nil {
		return nil, err
	}
	return &cart.Items[len(cart.Items)-1], nil
}

// Insert appends an already priced item. Used by AddToCart and by the legacy
// adapter, which builds items without a live resource.
func Insert(cart *model.Cart, item model.CartItem) error {
	if item.Quantity < 1 {
		return fmt.Errorf("%w: got %d", cartserrors.ErrInvalidQuantity, item.Quantity)
	}
	if item.ID == "" {
		item.ID = uuid.NewString()
	}
	if item.AddedAt.IsZero() {
		item.AddedAt = time.Now().UTC().Truncate(time.Millisecond)
	}

	cart.Items = append(cart.Items, item)
	cart.Recompute()
	return nil
}

func RemoveItem(cart *model.Cart, itemID string) error {
	idx := indexOf(cart, itemID)
	if idx < 0 {
		return fmt.Errorf("%w: %s", cartserrors.ErrItemNotFound, itemID)
	}
	cart.Items = append(cart.Items[:idx], cart.Items[idx+1:]...)
	cart.Recompute()
	return nil
}

func UpdateQuantity(cart *model.Cart, itemID string, quantity int) error {
	if quantity < 1 {
		return fmt.Errorf("%w: got %d", cartserrors.ErrInvalidQuantity, quantity)
	}
	idx := indexOf(cart, itemID)
	if idx < 0 {
		return fmt.Errorf("%w: %s", cartserrors.ErrItemNotFound, itemID)
	}
	cart.Items[idx].Quantity = quantity
	cart.Recompute()
	return nil
}

func Clear(cart *model.Cart) {
	cart.Items = []model.CartItem{}
	cart.Recompute()
}

func indexOf(cart *model.Cart, itemID string) int {
	for i := range cart.Items {
		if cart.Items[i].ID == itemID {
			return i
		}
	}
	return -1
}
