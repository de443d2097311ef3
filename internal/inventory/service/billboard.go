package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"billboards/internal/inventory/domain"
	inventoryerrors "billboards/internal/inventory/errors"
	"billboards/internal/inventory/repository"
	"billboards/internal/inventory/validator"
	"billboards/pkg/config"
	apperrors "billboards/pkg/errors"
	"billboards/pkg/model"
	"billboards/pkg/sanitizer"

	"github.com/google/uuid"
)

type BillboardService interface {
	Create(ctx context.Context, b *model.Billboard) error
	GetByID(ctx context.Context, id string) (*model.Billboard, error)
	GetAll(ctx context.Context, limit int, offset int64) ([]*model.Billboard, int64, error)
	Search(ctx context.Context, cities []string, kind model.BillboardKind) ([]*model.Billboard, error)

	ReserveSlot(ctx context.Context, id string, req *model.SlotReservation) (*model.DigitalClient, error)
	ReleaseSlot(ctx context.Context, id string, clientID string) error
	AssignTenant(ctx context.Context, id string, client *model.Client) (*model.Client, error)
	ReleaseTenant(ctx context.Context, id string, clientID string) error

	SetManualStatus(ctx context.Context, id string, ownerID string, status model.BillboardStatus) (*model.Billboard, error)
	ClearManualStatus(ctx context.Context, id string, ownerID string) (*model.Billboard, error)

	ApplyBookingEvent(ctx context.Context, event *model.BookingEvent) error
}

type billboardService struct {
	repo      repository.BillboardRepository
	validator *validator.BillboardValidator
	cfg       *config.Config
}

func NewBillboardService(
	repo repository.BillboardRepository,
	validator *validator.BillboardValidator,
	cfg *config.Config,
) BillboardService {
	return &billboardService{
		repo:      repo,
		validator: validator,
		cfg:       cfg,
	}
}

func (s *billboardService) Create(ctx context.Context, b *model.Billboard) error {
	sanitizer.SanitizeBillboard(b)
	s.applyDefaults(b)

	if err := s.validator.Validate(b); err != nil {
		s.cfg.Log.Warn("Billboard validation failed",
			"name", b.Name,
			"owner_id", b.OwnerID,
			"error", err,
		)
		return apperrors.Validation("Billboard validation failed", map[string]any{
			"error": err.Error(),
		})
	}

	if err := s.repo.Create(ctx, b); err != nil {
		s.cfg.Log.Error("Failed to create billboard",
			"name", b.Name,
			"owner_id", b.OwnerID,
			"error", err,
		)
		return apperrors.Internal("Failed to create billboard", err)
	}

	s.cfg.Log.Info("Billboard created successfully",
		"billboard_id", b.ID,
		"kind", b.Kind,
		"city", b.Location.City,
		"status", b.Status,
	)
	return nil
}

func (s *billboardService) applyDefaults(b *model.Billboard) {
	b.ID = ""
	if b.Faces == 0 {
		b.Faces = 1
	}
	if b.Kind == model.KindDigital && b.Digital != nil {
		if b.Digital.MaxClients == 0 {
			b.Digital.MaxClients = s.cfg.DefaultMaxClients
		}
		if b.Digital.CurrentClients == nil {
			b.Digital.CurrentClients = []model.DigitalClient{}
		}
	}
	// status is never trusted from the request
	b.Status = ""
	if b.ManualStatus != nil && !b.ManualStatus.IsManual() {
		b.ManualStatus = nil
	}
	b.RefreshStatus()
}

func (s *billboardService) GetByID(ctx context.Context, id string) (*model.Billboard, error) {
	if id == "" {
		return nil, apperrors.InvalidInput("Billboard ID cannot be empty")
	}

	b, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, s.lookupError(id, err)
	}
	return b, nil
}

func (s *billboardService) lookupError(id string, err error) error {
	if errors.Is(err, inventoryerrors.ErrNotFound) {
		return apperrors.NotFoundWithID("Billboard", id)
	}
	if errors.Is(err, inventoryerrors.ErrInvalidID) {
		return apperrors.InvalidInput("Invalid billboard ID format")
	}
	s.cfg.Log.Error("Failed to get billboard by ID",
		"billboard_id", id,
		"error", err,
	)
	return apperrors.Internal("Failed to retrieve billboard", err)
}

func (s *billboardService) GetAll(ctx context.Context, limit int, offset int64) ([]*model.Billboard, int64, error) {
	limit = config.NormalizePaginationLimit(limit)
	offset = config.NormalizeOffset(offset)

	var count int64
	var billboards []*model.Billboard
	var errCount, errFind error
	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		var err error
		count, err = s.repo.Count(ctx)
		if err != nil {
			s.cfg.Log.Error("Failed to count billboards", "error", err)
			errCount = apperrors.Internal("Failed to count billboards", err)
		}
	}()

	go func() {
		defer wg.Done()
		var err error
		billboards, err = s.repo.FindAll(ctx, limit, offset)
		if err != nil {
			s.cfg.Log.Error("Failed to get all billboards",
				"limit", limit,
				"offset", offset,
				"error", err,
			)
			errFind = apperrors.Internal("Failed to retrieve billboards", err)
		}
	}()
	wg.Wait()

	if errCount != nil {
		return nil, 0, errCount
	}
	if errFind != nil {
		return nil, 0, errFind
	}

	return billboards, count, nil
}

func (s *billboardService) Search(ctx context.Context, cities []string, kind model.BillboardKind) ([]*model.Billboard, error) {
	cities = sanitizer.NormalizeCities(cities)
	if kind != "" && kind != model.KindFixed && kind != model.KindDigital {
		return nil, apperrors.InvalidInput(fmt.Sprintf("unknown billboard kind: %s", kind))
	}

	results, err := s.repo.Search(ctx, cities, kind, config.DefaultPaginationLimit)
	if err != nil {
		s.cfg.Log.Error("Failed to search billboards",
			"cities", cities,
			"kind", kind,
			"error", err,
		)
		return nil, apperrors.Internal("Failed to search billboards", err)
	}
	return results, nil
}

func (s *billboardService) ReserveSlot(ctx context.Context, id string, req *model.SlotReservation) (*model.DigitalClient, error) {
	if req == nil {
		return nil, apperrors.InvalidInput("Reservation cannot be empty")
	}
	req.Client.Name = sanitizer.NormalizeName(req.Client.Name)
	if err := s.validator.ValidateReservation(req); err != nil {
		s.cfg.Log.Warn("Slot reservation validation failed",
			"billboard_id", id,
			"error", err,
		)
		return nil, apperrors.Validation("Slot reservation validation failed", map[string]any{
			"error": err.Error(),
		})
	}

	client := model.DigitalClient{
		Client:      req.Client,
		SaleUnit:    req.SaleUnit,
		SpotsPerDay: req.SpotsPerDay,
		HoursPerDay: req.HoursPerDay,
	}
	client.ID = uuid.NewString()

	updated, err := s.mutate(ctx, id, "reserve_slot", func(b *model.Billboard) (*model.Billboard, error) {
		return domain.Reserve(b, client)
	})
	if err != nil {
		return nil, err
	}

	s.cfg.Log.Info("Slot reserved successfully",
		"billboard_id", id,
		"client_id", client.ID,
		"sale_unit", client.SaleUnit,
		"available_slots", updated.Digital.AvailableSlots,
		"status", updated.Status,
	)
	return &client, nil
}

func (s *billboardService) ReleaseSlot(ctx context.Context, id string, clientID string) error {
	if strings.TrimSpace(clientID) == "" {
		return apperrors.InvalidInput("Client ID cannot be empty")
	}

	updated, err := s.mutate(ctx, id, "release_slot", func(b *model.Billboard) (*model.Billboard, error) {
		next, _, err := domain.Release(b, clientID)
		return next, err
	})
	if err != nil {
		return err
	}

	s.cfg.Log.Info("Slot released successfully",
		"billboard_id", id,
		"client_id", clientID,
		"available_slots", updated.Digital.AvailableSlots,
		"status", updated.Status,
	)
	return nil
}

func (s *billboardService) AssignTenant(ctx context.Context, id string, client *model.Client) (*model.Client, error) {
	if client == nil {
		return nil, apperrors.InvalidInput("Client cannot be empty")
	}
	client.Name = sanitizer.NormalizeName(client.Name)
	if err := s.validator.ValidateClient(client); err != nil {
		s.cfg.Log.Warn("Tenant validation failed",
			"billboard_id", id,
			"error", err,
		)
		return nil, apperrors.Validation("Tenant validation failed", map[string]any{
			"error": err.Error(),
		})
	}

	tenant := *client
	tenant.ID = uuid.NewString()

	if _, err := s.mutate(ctx, id, "assign_tenant", func(b *model.Billboard) (*model.Billboard, error) {
		return domain.AssignTenant(b, tenant)
	}); err != nil {
		return nil, err
	}

	s.cfg.Log.Info("Tenant assigned successfully",
		"billboard_id", id,
		"client_id", tenant.ID,
	)
	return &tenant, nil
}

func (s *billboardService) ReleaseTenant(ctx context.Context, id string, clientID string) error {
	if strings.TrimSpace(clientID) == "" {
		return apperrors.InvalidInput("Client ID cannot be empty")
	}

	if _, err := s.mutate(ctx, id, "release_tenant", func(b *model.Billboard) (*model.Billboard, error) {
		return domain.ReleaseTenant(b, clientID)
	}); err != nil {
		return err
	}

	s.cfg.Log.Info("Tenant released successfully",
		"billboard_id", id,
		"client_id", clientID,
	)
	return nil
}

func (s *billboardService) SetManualStatus(ctx context.Context, id string, ownerID string, status model.BillboardStatus) (*model.Billboard, error) {
	updated, err := s.mutate(ctx, id, "set_manual_status", func(b *model.Billboard) (*model.Billboard, error) {
		if b.OwnerID != ownerID {
			return nil, apperrors.Forbidden("Only the billboard owner can change its status")
		}
		return domain.SetManual(b, status)
	})
	if err != nil {
		return nil, err
	}

	s.cfg.Log.Info("Billboard manual status set",
		"billboard_id", id,
		"status", status,
	)
	return updated, nil
}

func (s *billboardService) ClearManualStatus(ctx context.Context, id string, ownerID string) (*model.Billboard, error) {
	updated, err := s.mutate(ctx, id, "clear_manual_status", func(b *model.Billboard) (*model.Billboard, error) {
		if b.OwnerID != ownerID {
			return nil, apperrors.Forbidden("Only the billboard owner can change its status")
		}
		if b.ManualStatus == nil {
			return nil, nil
		}
		return domain.ClearManual(b), nil
	})
	if err != nil {
		return nil, err
	}

	s.cfg.Log.Info("Billboard manual status cleared",
		"billboard_id", id,
		"status", updated.Status,
	)
	return updated, nil
}

// ApplyBookingEvent projects booking transitions onto fixed billboards.
// Resources that no longer exist are skipped.
func (s *billboardService) ApplyBookingEvent(ctx context.Context, event *model.BookingEvent) error {
	for _, item := range event.Items {
		if item.Kind != model.KindFixed {
			continue
		}

		updated, err := s.mutate(ctx, item.ResourceID, "apply_booking_event", func(b *model.Billboard) (*model.Billboard, error) {
			return domain.ApplyBookingStatus(b, event.Status), nil
		})
		if err != nil {
			if apperrors.HasCode(err, apperrors.CodeNotFound) || apperrors.HasCode(err, apperrors.CodeInvalidInput) {
				s.cfg.Log.Warn("Skipping booking event for unknown billboard",
					"booking_id", event.BookingID,
					"billboard_id", item.ResourceID,
				)
				continue
			}
			return err
		}

		s.cfg.Log.Info("Booking event applied to billboard",
			"booking_id", event.BookingID,
			"billboard_id", item.ResourceID,
			"booking_status", event.Status,
			"status", updated.Status,
		)
	}
	return nil
}

// mutate runs the read, transition, compare-and-swap cycle. A lost race
// re-reads and re-applies fn against the fresh document. fn returning a nil
// billboard with a nil error means there is nothing to write.
func (s *billboardService) mutate(
	ctx context.Context,
	id string,
	operation string,
	fn func(b *model.Billboard) (*model.Billboard, error),
) (*model.Billboard, error) {
	if id == "" {
		return nil, apperrors.InvalidInput("Billboard ID cannot be empty")
	}

	for attempt := 1; attempt <= s.cfg.CASMaxRetries; attempt++ {
		current, err := s.repo.FindByID(ctx, id)
		if err != nil {
			return nil, s.lookupError(id, err)
		}

		next, err := fn(current)
		if err != nil {
			return nil, s.transitionError(id, operation, err)
		}
		if next == nil {
			return current, nil
		}

		err = s.repo.CompareAndSwap(ctx, next, current.Version)
		if err == nil {
			return next, nil
		}
		if !errors.Is(err, inventoryerrors.ErrVersionConflict) {
			s.cfg.Log.Error("Failed to write billboard",
				"billboard_id", id,
				"operation", operation,
				"error", err,
			)
			return nil, apperrors.Internal("Failed to update billboard", err)
		}

		s.cfg.Log.Debug("Billboard version conflict, retrying",
			"billboard_id", id,
			"operation", operation,
			"attempt", attempt,
		)
		if ctx.Err() != nil {
			return nil, apperrors.Timeout("Billboard update cancelled")
		}
		backoff(attempt)
	}

	s.cfg.Log.Warn("Billboard update gave up after repeated conflicts",
		"billboard_id", id,
		"operation", operation,
		"attempts", s.cfg.CASMaxRetries,
	)
	return nil, apperrors.Conflict("Billboard is being modified concurrently, try again")
}

func backoff(attempt int) {
	time.Sleep(time.Duration(attempt) * time.Millisecond)
}

func (s *billboardService) transitionError(id string, operation string, err error) error {
	if apperrors.IsAppError(err) {
		return err
	}

	s.cfg.Log.Warn("Billboard transition rejected",
		"billboard_id", id,
		"operation", operation,
		"error", err,
	)

	switch {
	case errors.Is(err, inventoryerrors.ErrCapacityExceeded):
		return apperrors.CapacityExceeded("Billboard has no available capacity", err).WithDetail("billboard_id", id)
	case errors.Is(err, inventoryerrors.ErrInvalidSaleUnit):
		return apperrors.InvalidSaleUnit("Billboard does not publish a price for this sale unit", err)
	case errors.Is(err, inventoryerrors.ErrInvalidOccupancy):
		return apperrors.InvalidConfig("Occupancy fields do not match the sale unit", err)
	case errors.Is(err, inventoryerrors.ErrResourceUnavailable):
		return apperrors.ResourceUnavailable("Billboard is not accepting occupants", err)
	case errors.Is(err, inventoryerrors.ErrClientNotFound):
		return apperrors.NotFoundWithID("Billboard occupant", id)
	case errors.Is(err, inventoryerrors.ErrWrongKind):
		return apperrors.InvalidInput(err.Error())
	case errors.Is(err, inventoryerrors.ErrInvalidStatus):
		return apperrors.Validation("Status cannot be set manually", map[string]any{"error": err.Error()})
	}
	return apperrors.Internal("Failed to apply billboard change", err)
}
