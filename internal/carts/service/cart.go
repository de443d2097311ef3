package service

import (
	"context"
	"errors"

	"billboards/internal/carts/engine"
	cartserrors "billboards/internal/carts/errors"
	"billboards/internal/carts/legacy"
	"billboards/internal/carts/repository"
	"billboards/internal/carts/validator"
	"billboards/pkg/config"
	apperrors "billboards/pkg/errors"
	"billboards/pkg/model"
)

// BillboardSource supplies live billboards to price against.
type BillboardSource interface {
	GetBillboard(ctx context.Context, id string) (*model.Billboard, error)
}

type CartService interface {
	Create(ctx context.Context, sessionID string, req *model.CreateCartRequest) (*model.Cart, error)
	Get(ctx context.Context, sessionID string, cartID string) (*model.Cart, error)
	ListBySession(ctx context.Context, sessionID string) ([]*model.Cart, error)

	AddItem(ctx context.Context, sessionID string, cartID string, req *model.AddToCartRequest) (*model.Cart, error)
	AddLegacyLine(ctx context.Context, sessionID string, cartID string, line *model.LegacyCartLine) (*model.Cart, error)
	RemoveItem(ctx context.Context, sessionID string, cartID string, itemID string) (*model.Cart, error)
	UpdateQuantity(ctx context.Context, sessionID string, cartID string, itemID string, quantity int) (*model.Cart, error)
	Clear(ctx context.Context, sessionID string, cartID string) (*model.Cart, error)
}

type cartService struct {
	repo       repository.CartRepository
	billboards BillboardSource
	validator  *validator.CartValidator
	cfg        *config.Config
}

func NewCartService(
	repo repository.CartRepository,
	billboards BillboardSource,
	validator *validator.CartValidator,
	cfg *config.Config,
) CartService {
	return &cartService{
		repo:       repo,
		billboards: billboards,
		validator:  validator,
		cfg:        cfg,
	}
}

func (s *cartService) Create(ctx context.Context, sessionID string, req *model.CreateCartRequest) (*model.Cart, error) {
	if req == nil {
		req = &model.CreateCartRequest{}
	}
	if err := s.validator.Validate(req); err != nil {
		return nil, apperrors.Validation("Cart validation failed", map[string]any{"error": err.Error()})
	}

	cart := &model.Cart{
		SessionID:  sessionID,
		CampaignID: req.CampaignID,
		Items:      []model.CartItem{},
	}
	if err := s.repo.Create(ctx, cart); err != nil {
		s.cfg.Log.Error("Failed to create cart",
			"session_id", sessionID,
			"error", err,
		)
		return nil, apperrors.Internal("Failed to create cart", err)
	}

	s.cfg.Log.Info("Cart created successfully",
		"cart_id", cart.ID,
		"session_id", sessionID,
	)
	return cart, nil
}

func (s *cartService) Get(ctx context.Context, sessionID string, cartID string) (*model.Cart, error) {
	return s.load(ctx, sessionID, cartID)
}

func (s *cartService) ListBySession(ctx context.Context, sessionID string) ([]*model.Cart, error) {
	carts, err := s.repo.FindBySession(ctx, sessionID)
	if err != nil {
		s.cfg.Log.Error("Failed to list carts",
			"session_id", sessionID,
			"error", err,
		)
		return nil, apperrors.Internal("Failed to retrieve carts", err)
	}
	return carts, nil
}

func (s *cartService) AddItem(ctx context.Context, sessionID string, cartID string, req *model.AddToCartRequest) (*model.Cart, error) {
	if req == nil {
		return nil, apperrors.InvalidInput("Cart item cannot be empty")
	}
	if err := s.validator.Validate(req); err != nil {
		s.cfg.Log.Warn("Cart item validation failed",
			"cart_id", cartID,
			"resource_id", req.ResourceID,
			"error", err,
		)
		return nil, apperrors.Validation("Cart item validation failed", map[string]any{"error": err.Error()})
	}
	if req.Quantity == 0 {
		req.Quantity = 1
	}

	cart, err := s.loadEditable(ctx, sessionID, cartID)
	if err != nil {
		return nil, err
	}

	resource, err := s.billboards.GetBillboard(ctx, req.ResourceID)
	if err != nil {
		s.cfg.Log.Warn("Failed to fetch billboard for cart",
			"cart_id", cartID,
			"resource_id", req.ResourceID,
			"error", err,
		)
		if apperrors.IsAppError(err) {
			return nil, err
		}
		return nil, apperrors.Internal("Failed to fetch billboard", err)
	}

	item, err := engine.AddToCart(cart, resource, req.Modality, req.Config, req.Quantity)
	if err != nil {
		return nil, s.engineError(cartID, err)
	}

	if err := s.save(ctx, cart); err != nil {
		return nil, err
	}

	s.cfg.Log.Info("Item added to cart",
		"cart_id", cartID,
		"item_id", item.ID,
		"resource_id", req.ResourceID,
		"modality", req.Modality,
		"unit_price", item.UnitPrice,
		"total", cart.Total,
	)
	return cart, nil
}

func (s *cartService) AddLegacyLine(ctx context.Context, sessionID string, cartID string, line *model.LegacyCartLine) (*model.Cart, error) {
	if line == nil {
		return nil, apperrors.InvalidInput("Cart line cannot be empty")
	}
	if err := s.validator.ValidateLegacyLine(line); err != nil {
		s.cfg.Log.Warn("Legacy cart line validation failed",
			"cart_id", cartID,
			"resource_id", line.ID,
			"error", err,
		)
		return nil, apperrors.Validation("Cart line validation failed", map[string]any{"error": err.Error()})
	}

	item, err := legacy.FromLegacyLine(*line)
	if errors.Is(err, cartserrors.ErrDateRangeInvalid) {
		return nil, s.engineError(cartID, err)
	}
	if err != nil {
		return nil, apperrors.InvalidInput(err.Error())
	}

	cart, err := s.loadEditable(ctx, sessionID, cartID)
	if err != nil {
		return nil, err
	}
	if err := engine.Insert(cart, item); err != nil {
		return nil, s.engineError(cartID, err)
	}
	if err := s.save(ctx, cart); err != nil {
		return nil, err
	}

	s.cfg.Log.Info("Legacy line added to cart",
		"cart_id", cartID,
		"resource_id", line.ID,
		"total", cart.Total,
	)
	return cart, nil
}

func (s *cartService) RemoveItem(ctx context.Context, sessionID string, cartID string, itemID string) (*model.Cart, error) {
	return s.mutate(ctx, sessionID, cartID, "remove_item", func(cart *model.Cart) error {
		return engine.RemoveItem(cart, itemID)
	})
}

func (s *cartService) UpdateQuantity(ctx context.Context, sessionID string, cartID string, itemID string, quantity int) (*model.Cart, error) {
	return s.mutate(ctx, sessionID, cartID, "update_quantity", func(cart *model.Cart) error {
		return engine.UpdateQuantity(cart, itemID, quantity)
	})
}

func (s *cartService) Clear(ctx context.Context, sessionID string, cartID string) (*model.Cart, error) {
	return s.mutate(ctx, sessionID, cartID, "clear", func(cart *model.Cart) error {
		engine.Clear(cart)
		return nil
	})
}

func (s *cartService) mutate(ctx context.Context, sessionID string, cartID string, operation string, fn func(cart *model.Cart) error) (*model.Cart, error) {
	cart, err := s.loadEditable(ctx, sessionID, cartID)
	if err != nil {
		return nil, err
	}
	if err := fn(cart); err != nil {
		return nil, s.engineError(cartID, err)
	}
	if err := s.save(ctx, cart); err != nil {
		return nil, err
	}

	s.cfg.Log.Info("Cart updated successfully",
		"cart_id", cartID,
		"operation", operation,
		"total", cart.Total,
		"item_count", cart.ItemCount,
	)
	return cart, nil
}

// load fetches a cart owned by sessionID that can still be edited. Reads are
// allowed on checked out carts.
func (s *cartService) load(ctx context.Context, sessionID string, cartID string) (*model.Cart, error) {
	if cartID == "" {
		return nil, apperrors.InvalidInput("Cart ID cannot be empty")
	}

	cart, err := s.repo.FindByID(ctx, cartID)
	if err != nil {
		if errors.Is(err, cartserrors.ErrNotFound) {
			return nil, apperrors.NotFoundWithID("Cart", cartID)
		}
		if errors.Is(err, cartserrors.ErrInvalidID) {
			return nil, apperrors.InvalidInput("Invalid cart ID format")
		}
		s.cfg.Log.Error("Failed to get cart",
			"cart_id", cartID,
			"error", err,
		)
		return nil, apperrors.Internal("Failed to retrieve cart", err)
	}

	if cart.SessionID != sessionID {
		return nil, apperrors.Forbidden("Cart belongs to another session")
	}
	return cart, nil
}

func (s *cartService) loadEditable(ctx context.Context, sessionID string, cartID string) (*model.Cart, error) {
	cart, err := s.load(ctx, sessionID, cartID)
	if err != nil {
		return nil, err
	}
	if cart.CheckedOut() {
		return nil, apperrors.Conflict("Cart has already been checked out").WithDetail("booking_id", cart.BookingID)
	}
	return cart, nil
}

func (s *cartService) save(ctx context.Context, cart *model.Cart) error {
	if err := s.repo.Update(ctx, cart); err != nil {
		if errors.Is(err, cartserrors.ErrCheckedOut) {
			return apperrors.Conflict("Cart has already been checked out")
		}
		if errors.Is(err, cartserrors.ErrNotFound) {
			return apperrors.NotFoundWithID("Cart", cart.ID)
		}
		s.cfg.Log.Error("Failed to update cart",
			"cart_id", cart.ID,
			"error", err,
		)
		return apperrors.Internal("Failed to update cart", err)
	}
	return nil
}

func (s *cartService) engineError(cartID string, err error) error {
	s.cfg.Log.Warn("Cart change rejected",
		"cart_id", cartID,
		"error", err,
	)

	switch {
	case errors.Is(err, cartserrors.ErrUnsupportedModality):
		return apperrors.UnsupportedModality("Billboard is not sold with this modality", err)
	case errors.Is(err, cartserrors.ErrInvalidConfig):
		return apperrors.InvalidConfig("Item config does not match the modality", err)
	case errors.Is(err, cartserrors.ErrDateRangeInvalid):
		return apperrors.DateRangeInvalid("Invalid date range", err)
	case errors.Is(err, cartserrors.ErrInvalidQuantity):
		return apperrors.InvalidQuantity("Quantity must be at least 1", err)
	case errors.Is(err, cartserrors.ErrItemNotFound):
		return apperrors.NotFound("Cart item")
	}
	return apperrors.Internal("Failed to update cart", err)
}
