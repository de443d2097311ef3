package handler

import (
	"net/http"
	"strings"

	"billboards/internal/inventory/service"
	httputil "billboards/pkg/http"
	"billboards/pkg/logger"
	"billboards/pkg/model"

	"github.com/julienschmidt/httprouter"
)

type BillboardHandler struct {
	service service.BillboardService
	log     *logger.Logger
}

func NewBillboardHandler(service service.BillboardService, log *logger.Logger) *BillboardHandler {
	return &BillboardHandler{
		service: service,
		log:     log,
	}
}

func (h *BillboardHandler) Create(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	ownerID, err := httputil.OwnerID(r)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	var b model.Billboard
	if err := httputil.DecodeBody(r, &b); err != nil {
		httputil.WriteError(w, err)
		return
	}
	b.OwnerID = ownerID

	if err := h.service.Create(r.Context(), &b); err != nil {
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteCreated(w, b)
}

func (h *BillboardHandler) GetByID(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	b, err := h.service.GetByID(r.Context(), ps.ByName("id"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteSuccess(w, b)
}

func (h *BillboardHandler) GetAll(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	limit, offset, err := httputil.ExtractLimitOffset(r)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	billboards, total, err := h.service.GetAll(r.Context(), limit, offset)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	httputil.WritePaginated(w, billboards, total, limit, offset)
}

// Search accepts city repeated or comma separated: ?city=cdmx,monterrey&city=puebla
func (h *BillboardHandler) Search(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	query := r.URL.Query()
	var cities []string
	for _, v := range query["city"] {
		cities = append(cities, strings.Split(v, ",")...)
	}
	kind := model.BillboardKind(strings.ToLower(strings.TrimSpace(query.Get("kind"))))

	results, err := h.service.Search(r.Context(), cities, kind)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteSuccess(w, results)
}

func (h *BillboardHandler) ReserveSlot(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	var req model.SlotReservation
	if err := httputil.DecodeBody(r, &req); err != nil {
		httputil.WriteError(w, err)
		return
	}

	client, err := h.service.ReserveSlot(r.Context(), ps.ByName("id"), &req)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteCreated(w, client)
}

func (h *BillboardHandler) ReleaseSlot(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	if err := h.service.ReleaseSlot(r.Context(), ps.ByName("id"), ps.ByName("client_id")); err != nil {
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteNoContent(w)
}

func (h *BillboardHandler) AssignTenant(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	var client model.Client
	if err := httputil.DecodeBody(r, &client); err != nil {
		httputil.WriteError(w, err)
		return
	}

	tenant, err := h.service.AssignTenant(r.Context(), ps.ByName("id"), &client)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteCreated(w, tenant)
}

func (h *BillboardHandler) ReleaseTenant(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	if err := h.service.ReleaseTenant(r.Context(), ps.ByName("id"), ps.ByName("client_id")); err != nil {
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteNoContent(w)
}

func (h *BillboardHandler) SetStatus(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	ownerID, err := httputil.OwnerID(r)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	var update model.BillboardStatusUpdate
	if err := httputil.DecodeBody(r, &update); err != nil {
		httputil.WriteError(w, err)
		return
	}

	b, err := h.service.SetManualStatus(r.Context(), ps.ByName("id"), ownerID, update.Status)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteSuccess(w, b)
}

func (h *BillboardHandler) ClearStatus(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	ownerID, err := httputil.OwnerID(r)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	b, err := h.service.ClearManualStatus(r.Context(), ps.ByName("id"), ownerID)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteSuccess(w, b)
}

func (h *BillboardHandler) RegisterRoutes(router *httprouter.Router) {
	router.POST("/api/v1/billboards", h.Create)
	router.GET("/api/v1/billboards", h.GetAll)
	router.GET("/api/v1/billboards/search", h.Search)
	router.GET("/api/v1/billboards/id/:id", h.GetByID)

	router.POST("/api/v1/billboards/id/:id/slots", h.ReserveSlot)
	router.DELETE("/api/v1/billboards/id/:id/slots/:client_id", h.ReleaseSlot)
	router.POST("/api/v1/billboards/id/:id/tenant", h.AssignTenant)
	router.DELETE("/api/v1/billboards/id/:id/tenant/:client_id", h.ReleaseTenant)

	router.PUT("/api/v1/billboards/id/:id/status", h.SetStatus)
	router.DELETE("/api/v1/billboards/id/:id/status", h.ClearStatus)
}
