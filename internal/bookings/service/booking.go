package service

import (
	"context"
	"errors"
	"sync"
	"time"

	bookingserrors "billboards/internal/bookings/errors"
	"billboards/internal/bookings/lifecycle"
	"billboards/internal/bookings/repository"
	"billboards/internal/bookings/validator"
	cartserrors "billboards/internal/carts/errors"
	cartsrepository "billboards/internal/carts/repository"
	"billboards/pkg/config"
	apperrors "billboards/pkg/errors"
	"billboards/pkg/model"
	"billboards/pkg/sanitizer"

	"go.mongodb.org/mongo-driver/mongo"
)

// EventPublisher announces booking transitions to other services.
type EventPublisher interface {
	Publish(ctx context.Context, event model.BookingEvent) error
}

type BookingService interface {
	CreateBooking(ctx context.Context, sessionID string, req *model.CheckoutRequest) (*model.Booking, error)
	Decide(ctx context.Context, id string, ownerID string, decision *model.BookingDecision) (*model.Booking, error)
	Confirm(ctx context.Context, id string) (*model.Booking, error)
	GetByID(ctx context.Context, id string) (*model.Booking, error)
	GetAll(ctx context.Context, limit int, offset int64) ([]*model.Booking, int64, error)
	ListByOwner(ctx context.Context, ownerID string, limit int, offset int64) ([]*model.Booking, int64, error)
}

type bookingService struct {
	repo      repository.BookingRepository
	carts     cartsrepository.CartRepository
	publisher EventPublisher
	validator *validator.BookingValidator
	cfg       *config.Config
}

func NewBookingService(
	repo repository.BookingRepository,
	carts cartsrepository.CartRepository,
	publisher EventPublisher,
	validator *validator.BookingValidator,
	cfg *config.Config,
) BookingService {
	return &bookingService{
		repo:      repo,
		carts:     carts,
		publisher: publisher,
		validator: validator,
		cfg:       cfg,
	}
}

func (s *bookingService) CreateBooking(ctx context.Context, sessionID string, req *model.CheckoutRequest) (*model.Booking, error) {
	if req == nil {
		return nil, apperrors.InvalidInput("Checkout request cannot be empty")
	}
	if err := s.validator.ValidateCheckout(req); err != nil {
		return nil, apperrors.Validation("Checkout validation failed", map[string]any{"error": err.Error()})
	}

	cart, err := s.carts.FindByID(ctx, req.CartID)
	if err != nil {
		return nil, s.cartLookupError(req.CartID, err)
	}
	if cart.SessionID != sessionID {
		return nil, apperrors.Forbidden("Cart belongs to another session")
	}
	if cart.CheckedOut() {
		return nil, apperrors.Conflict("Cart has already been checked out").WithDetail("booking_id", cart.BookingID)
	}

	contact := req.Contact
	sanitizer.SanitizeContact(&contact)

	booking, err := lifecycle.NewFromCart(cart, contact, req.DateRange, sanitizer.SanitizeMessage(req.Message), time.Now())
	if err != nil {
		s.cfg.Log.Warn("Booking request rejected",
			"cart_id", req.CartID,
			"error", err,
		)
		return nil, s.lifecycleError(err)
	}
	if err := s.validator.ValidateBooking(booking); err != nil {
		s.cfg.Log.Warn("Booking validation failed",
			"cart_id", req.CartID,
			"error", err,
		)
		return nil, apperrors.Validation("Booking validation failed", map[string]any{"error": err.Error()})
	}

	err = s.repo.ExecuteTransaction(ctx, func(sessCtx mongo.SessionContext) error {
		// a retried transaction must insert with a fresh id
		booking.ID = ""
		if err := s.repo.Create(sessCtx, booking); err != nil {
			return apperrors.Internal("Failed to create booking", err)
		}
		if err := s.carts.LinkBooking(sessCtx, cart.ID, booking.ID); err != nil {
			if errors.Is(err, cartserrors.ErrCheckedOut) {
				return apperrors.Conflict("Cart has already been checked out")
			}
			if errors.Is(err, cartserrors.ErrNotFound) {
				return apperrors.NotFoundWithID("Cart", cart.ID)
			}
			return apperrors.Internal("Failed to link booking to cart", err)
		}
		return nil
	})
	if err != nil {
		s.cfg.Log.Error("Failed to create booking",
			"cart_id", cart.ID,
			"error", err,
		)
		if apperrors.IsAppError(err) {
			return nil, err
		}
		return nil, apperrors.Internal("Failed to create booking", err)
	}

	s.cfg.Log.Info("Booking created successfully",
		"booking_id", booking.ID,
		"cart_id", cart.ID,
		"total", booking.Total,
		"owners", len(booking.OwnerIDs),
	)
	s.publish(ctx, booking)
	return booking, nil
}

func (s *bookingService) Decide(ctx context.Context, id string, ownerID string, decision *model.BookingDecision) (*model.Booking, error) {
	if decision == nil {
		return nil, apperrors.InvalidInput("Decision cannot be empty")
	}
	if err := s.validator.ValidateDecision(decision); err != nil {
		return nil, apperrors.Validation("Decision validation failed", map[string]any{"error": err.Error()})
	}

	response := sanitizer.SanitizeMessage(decision.Response)
	return s.transition(ctx, id, "decide", func(b *model.Booking) (*model.Booking, error) {
		return lifecycle.Decide(b, ownerID, decision.Decision, response, time.Now())
	})
}

func (s *bookingService) Confirm(ctx context.Context, id string) (*model.Booking, error) {
	return s.transition(ctx, id, "confirm", lifecycle.Confirm)
}

func (s *bookingService) transition(ctx context.Context, id string, operation string, fn func(b *model.Booking) (*model.Booking, error)) (*model.Booking, error) {
	current, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	next, err := fn(current)
	if err != nil {
		s.cfg.Log.Warn("Booking transition rejected",
			"booking_id", id,
			"operation", operation,
			"status", current.Status,
			"error", err,
		)
		return nil, s.lifecycleError(err)
	}

	if err := s.repo.UpdateStatus(ctx, next, current.Status); err != nil {
		if errors.Is(err, bookingserrors.ErrStatusChanged) {
			return nil, apperrors.InvalidTransition("Booking status changed, reload and retry", err)
		}
		if errors.Is(err, bookingserrors.ErrNotFound) {
			return nil, apperrors.NotFoundWithID("Booking", id)
		}
		s.cfg.Log.Error("Failed to update booking status",
			"booking_id", id,
			"operation", operation,
			"error", err,
		)
		return nil, apperrors.Internal("Failed to update booking", err)
	}

	s.cfg.Log.Info("Booking status updated",
		"booking_id", id,
		"from", current.Status,
		"to", next.Status,
	)
	s.publish(ctx, next)
	return next, nil
}

func (s *bookingService) GetByID(ctx context.Context, id string) (*model.Booking, error) {
	if id == "" {
		return nil, apperrors.InvalidInput("Booking ID cannot be empty")
	}

	booking, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, bookingserrors.ErrNotFound) {
			return nil, apperrors.NotFoundWithID("Booking", id)
		}
		if errors.Is(err, bookingserrors.ErrInvalidID) {
			return nil, apperrors.InvalidInput("Invalid booking ID format")
		}
		s.cfg.Log.Error("Failed to get booking",
			"booking_id", id,
			"error", err,
		)
		return nil, apperrors.Internal("Failed to retrieve booking", err)
	}

	return booking, nil
}

func (s *bookingService) GetAll(ctx context.Context, limit int, offset int64) ([]*model.Booking, int64, error) {
	return s.list(ctx, limit, offset, s.repo.Count, s.repo.FindAll)
}

func (s *bookingService) ListByOwner(ctx context.Context, ownerID string, limit int, offset int64) ([]*model.Booking, int64, error) {
	count := func(ctx context.Context) (int64, error) {
		return s.repo.CountByOwner(ctx, ownerID)
	}
	find := func(ctx context.Context, limit int, offset int64) ([]*model.Booking, error) {
		return s.repo.FindByOwner(ctx, ownerID, limit, offset)
	}
	return s.list(ctx, limit, offset, count, find)
}

func (s *bookingService) list(
	ctx context.Context,
	limit int,
	offset int64,
	countFn func(ctx context.Context) (int64, error),
	findFn func(ctx context.Context, limit int, offset int64) ([]*model.Booking, error),
) ([]*model.Booking, int64, error) {
	limit = config.NormalizePaginationLimit(limit)
	offset = config.NormalizeOffset(offset)

	var count int64
	var bookings []*model.Booking
	var errCount, errFind error
	var wg sync.WaitGroup
	wg.Add(2)

	go func() {
		defer wg.Done()
		count, errCount = countFn(ctx)
		if errCount != nil {
			s.cfg.Log.Error("Failed to count bookings", "error", errCount)
			errCount = apperrors.Internal("Failed to count bookings", errCount)
		}
	}()

	go func() {
		defer wg.Done()
		bookings, errFind = findFn(ctx, limit, offset)
		if errFind != nil {
			s.cfg.Log.Error("Failed to list bookings", "error", errFind)
			errFind = apperrors.Internal("Failed to retrieve bookings", errFind)
		}
	}()

	wg.Wait()
	if errCount != nil {
		return nil, 0, errCount
	}
	if errFind != nil {
		return nil, 0, errFind
	}
	if bookings == nil {
		bookings = []*model.Booking{}
	}

	return bookings, count, nil
}

// publish never fails the caller; a lost event is logged for replay.
func (s *bookingService) publish(ctx context.Context, booking *model.Booking) {
	if s.publisher == nil {
		return
	}

	event := model.NewBookingEvent(booking, time.Now())
	if err := s.publisher.Publish(ctx, event); err != nil {
		s.cfg.Log.Error("Failed to publish booking event",
			"booking_id", booking.ID,
			"event_type", model.EventTypeFor(booking.Status),
			"error", err,
		)
	}
}

func (s *bookingService) cartLookupError(cartID string, err error) error {
	if errors.Is(err, cartserrors.ErrNotFound) {
		return apperrors.NotFoundWithID("Cart", cartID)
	}
	if errors.Is(err, cartserrors.ErrInvalidID) {
		return apperrors.InvalidInput("Invalid cart ID format")
	}
	s.cfg.Log.Error("Failed to load cart for booking",
		"cart_id", cartID,
		"error", err,
	)
	return apperrors.Internal("Failed to retrieve cart", err)
}

func (s *bookingService) lifecycleError(err error) error {
	switch {
	case errors.Is(err, bookingserrors.ErrEmptyCart):
		return apperrors.EmptyCart("Cart has no items", err)
	case errors.Is(err, bookingserrors.ErrIncompleteContact):
		return apperrors.IncompleteContact("Contact name, email and phone are required", err)
	case errors.Is(err, bookingserrors.ErrDateRangeInvalid):
		return apperrors.DateRangeInvalid("Start date must not be after end date", err)
	case errors.Is(err, bookingserrors.ErrNotOwner):
		return apperrors.Forbidden("Only an owner of a booked billboard can decide")
	case errors.Is(err, bookingserrors.ErrInvalidTransition):
		return apperrors.InvalidTransition("Booking cannot move to the requested status", err)
	}
	return apperrors.Internal("Failed to process booking", err)
}
