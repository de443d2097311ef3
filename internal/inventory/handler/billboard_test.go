package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"reflect"
	"strings"
	"testing"

	apperrors "billboards/pkg/errors"
	httputil "billboards/pkg/http"
	"billboards/pkg/logger"
	"billboards/pkg/model"

	"github.com/julienschmidt/httprouter"
)

type mockBillboardService struct {
	createFunc      func(ctx context.Context, b *model.Billboard) error
	getByIDFunc     func(ctx context.Context, id string) (*model.Billboard, error)
	getAllFunc      func(ctx context.Context, limit int, offset int64) ([]*model.Billboard, int64, error)
	searchFunc      func(ctx context.Context, cities []string, kind model.BillboardKind) ([]*model.Billboard, error)
	reserveSlotFunc func(ctx context.Context, id string, req *model.SlotReservation) (*model.DigitalClient, error)
	releaseSlotFunc func(ctx context.Context, id string, clientID string) error
	setStatusFunc   func(ctx context.Context, id string, ownerID string, status model.BillboardStatus) (*model.Billboard, error)
}

func (m *mockBillboardService) Create(ctx context.Context, b *model.Billboard) error {
	if m.createFunc != nil {
		return m.createFunc(ctx, b)
	}
	return nil
}

func (m *mockBillboardService) GetByID(ctx context.Context, id string) (*model.Billboard, error) {
	if m.getByIDFunc != nil {
		return m.getByIDFunc(ctx, id)
	}
	return &model.Billboard{ID: id}, nil
}

func (m *mockBillboardService) GetAll(ctx context.Context, limit int, offset int64) ([]*model.Billboard, int64, error) {
	if m.getAllFunc != nil {
		return m.getAllFunc(ctx, limit, offset)
	}
	return []*model.Billboard{}, 0, nil
}

func (m *mockBillboardService) Search(ctx context.Context, cities []string, kind model.BillboardKind) ([]*model.Billboard, error) {
	if m.searchFunc != nil {
		return m.searchFunc(ctx, cities, kind)
	}
	return []*model.Billboard{}, nil
}

func (m *mockBillboardService) ReserveSlot(ctx context.Context, id string, req *model.SlotReservation) (*model.DigitalClient, error) {
	if m.reserveSlotFunc != nil {
		return m.reserveSlotFunc(ctx, id, req)
	}
	return &model.DigitalClient{}, nil
}

func (m *mockBillboardService) ReleaseSlot(ctx context.Context, id string, clientID string) error {
	if m.releaseSlotFunc != nil {
		return m.releaseSlotFunc(ctx, id, clientID)
	}
	return nil
}

func (m *mockBillboardService) AssignTenant(ctx context.Context, id string, client *model.Client) (*model.Client, error) {
	return client, nil
}

func (m *mockBillboardService) ReleaseTenant(ctx context.Context, id string, clientID string) error {
	return nil
}

func (m *mockBillboardService) SetManualStatus(ctx context.Context, id string, ownerID string, status model.BillboardStatus) (*model.Billboard, error) {
	if m.setStatusFunc != nil {
		return m.setStatusFunc(ctx, id, ownerID, status)
	}
	return &model.Billboard{ID: id, Status: status}, nil
}

func (m *mockBillboardService) ClearManualStatus(ctx context.Context, id string, ownerID string) (*model.Billboard, error) {
	return &model.Billboard{ID: id}, nil
}

func (m *mockBillboardService) ApplyBookingEvent(ctx context.Context, event *model.BookingEvent) error {
	return nil
}

func newRouter(svc *mockBillboardService) *httprouter.Router {
	router := httprouter.New()
	NewBillboardHandler(svc, logger.Discard()).RegisterRoutes(router)
	return router
}

func TestCreate_UsesOwnerHeader(t *testing.T) {
	var received *model.Billboard
	router := newRouter(&mockBillboardService{
		createFunc: func(ctx context.Context, b *model.Billboard) error {
			received = b
			b.ID = "new-id"
			return nil
		},
	})

	body := `{"name":"Screen","kind":"digital","owner_id":"spoofed"}`

	req := httptest.NewRequest(http.MethodPost, "/api/v1/billboards", strings.NewReader(body))
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("missing owner header: expected 401, got %d", w.Code)
	}

	req = httptest.NewRequest(http.MethodPost, "/api/v1/billboards", strings.NewReader(body))
	req.Header.Set(httputil.OwnerIDHeader, "owner-7")
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", w.Code, w.Body.String())
	}
	if received == nil || received.OwnerID != "owner-7" {
		t.Errorf("owner must come from the header, got %+v", received)
	}
}

func TestReserveSlot_ErrorMapping(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantCode   string
	}{
		{"success", nil, http.StatusCreated, ""},
		{"capacity", apperrors.CapacityExceeded("full", nil), http.StatusConflict, apperrors.CodeCapacityExceeded},
		{"sale unit", apperrors.InvalidSaleUnit("no price", nil), http.StatusUnprocessableEntity, apperrors.CodeInvalidSaleUnit},
		{"not found", apperrors.NotFoundWithID("Billboard", "x"), http.StatusNotFound, apperrors.CodeNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var gotID string
			router := newRouter(&mockBillboardService{
				reserveSlotFunc: func(ctx context.Context, id string, req *model.SlotReservation) (*model.DigitalClient, error) {
					gotID = id
					if tt.err != nil {
						return nil, tt.err
					}
					return &model.DigitalClient{SaleUnit: req.SaleUnit}, nil
				},
			})

			req := httptest.NewRequest(http.MethodPost, "/api/v1/billboards/id/b-42/slots",
				strings.NewReader(`{"client":{"name":"Acme"},"sale_unit":"day"}`))
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)

			if w.Code != tt.wantStatus {
				t.Fatalf("expected %d, got %d: %s", tt.wantStatus, w.Code, w.Body.String())
			}
			if gotID != "b-42" {
				t.Errorf("expected id b-42, got %q", gotID)
			}
			if tt.wantCode != "" {
				var resp httputil.ErrorResponse
				if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
					t.Fatalf("decode: %v", err)
				}
				if resp.Code != tt.wantCode {
					t.Errorf("expected code %s, got %s", tt.wantCode, resp.Code)
				}
			}
		})
	}
}

func TestReserveSlot_RejectsUnknownFields(t *testing.T) {
	router := newRouter(&mockBillboardService{})

	req := httptest.NewRequest(http.MethodPost, "/api/v1/billboards/id/b-1/slots",
		strings.NewReader(`{"sale_unit":"day","surprise":true}`))
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", w.Code)
	}
}

func TestReleaseSlot(t *testing.T) {
	var gotClient string
	router := newRouter(&mockBillboardService{
		releaseSlotFunc: func(ctx context.Context, id string, clientID string) error {
			gotClient = clientID
			return nil
		},
	})

	req := httptest.NewRequest(http.MethodDelete, "/api/v1/billboards/id/b-1/slots/c-9", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusNoContent {
		t.Errorf("expected 204, got %d", w.Code)
	}
	if gotClient != "c-9" {
		t.Errorf("expected client c-9, got %q", gotClient)
	}
}

func TestGetAll_Pagination(t *testing.T) {
	tests := []struct {
		name       string
		query      string
		wantStatus int
		wantLimit  int
		wantOffset int64
	}{
		{"defaults", "", http.StatusOK, 10, 0},
		{"clamped", "?limit=1000&offset=-4", http.StatusOK, 100, 0},
		{"explicit", "?limit=5&offset=20", http.StatusOK, 5, 20},
		{"invalid limit", "?limit=abc", http.StatusBadRequest, 0, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var gotLimit int
			var gotOffset int64
			router := newRouter(&mockBillboardService{
				getAllFunc: func(ctx context.Context, limit int, offset int64) ([]*model.Billboard, int64, error) {
					gotLimit, gotOffset = limit, offset
					return []*model.Billboard{}, 0, nil
				},
			})

			req := httptest.NewRequest(http.MethodGet, "/api/v1/billboards"+tt.query, nil)
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)

			if w.Code != tt.wantStatus {
				t.Fatalf("expected %d, got %d", tt.wantStatus, w.Code)
			}
			if tt.wantStatus == http.StatusOK && (gotLimit != tt.wantLimit || gotOffset != tt.wantOffset) {
				t.Errorf("expected limit=%d offset=%d, got %d/%d", tt.wantLimit, tt.wantOffset, gotLimit, gotOffset)
			}
		})
	}
}

func TestSetStatus(t *testing.T) {
	var gotOwner string
	router := newRouter(&mockBillboardService{
		setStatusFunc: func(ctx context.Context, id string, ownerID string, status model.BillboardStatus) (*model.Billboard, error) {
			gotOwner = ownerID
			return &model.Billboard{ID: id, Status: status}, nil
		},
	})

	req := httptest.NewRequest(http.MethodPut, "/api/v1/billboards/id/b-1/status", strings.NewReader(`{"status":"maintenance"}`))
	req.Header.Set(httputil.OwnerIDHeader, "owner-1")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	if gotOwner != "owner-1" {
		t.Errorf("expected owner-1, got %q", gotOwner)
	}
}

func TestSearch_ParsesCities(t *testing.T) {
	tests := []struct {
		name       string
		query      string
		wantCities []string
		wantKind   model.BillboardKind
	}{
		{"no filter", "", nil, ""},
		{"single", "?city=cdmx&kind=Digital", []string{"cdmx"}, model.KindDigital},
		{"repeated and comma separated", "?city=cdmx,monterrey&city=puebla", []string{"cdmx", "monterrey", "puebla"}, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var gotCities []string
			var gotKind model.BillboardKind
			router := newRouter(&mockBillboardService{
				searchFunc: func(ctx context.Context, cities []string, kind model.BillboardKind) ([]*model.Billboard, error) {
					gotCities, gotKind = cities, kind
					return []*model.Billboard{}, nil
				},
			})

			req := httptest.NewRequest(http.MethodGet, "/api/v1/billboards/search"+tt.query, nil)
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)

			if w.Code != http.StatusOK {
				t.Fatalf("expected 200, got %d", w.Code)
			}
			if !reflect.DeepEqual(gotCities, tt.wantCities) || gotKind != tt.wantKind {
				t.Errorf("got cities=%v kind=%q, want %v %q", gotCities, gotKind, tt.wantCities, tt.wantKind)
			}
		})
	}
}
