package handler

import (
	"net/http"

	"billboards/internal/carts/service"
	httputil "billboards/pkg/http"
	"billboards/pkg/logger"
	"billboards/pkg/model"

	"github.com/julienschmidt/httprouter"
)

type CartHandler struct {
	service service.CartService
	log     *logger.Logger
}

func NewCartHandler(service service.CartService, log *logger.Logger) *CartHandler {
	return &CartHandler{
		service: service,
		log:     log,
	}
}

// sessionHandle resolves the caller session before running next.
type sessionHandle func(w http.ResponseWriter, r *http.Request, ps httprouter.Params, sessionID string)

func withSession(next sessionHandle) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
		sessionID, err := httputil.SessionID(r)
		if err != nil {
			httputil.WriteError(w, err)
			return
		}
		next(w, r, ps, sessionID)
	}
}

func (h *CartHandler) Create(w http.ResponseWriter, r *http.Request, _ httprouter.Params, sessionID string) {
	var req model.CreateCartRequest
	if r.ContentLength > 0 {
		if err := httputil.DecodeBody(r, &req); err != nil {
			httputil.WriteError(w, err)
			return
		}
	}

	cart, err := h.service.Create(r.Context(), sessionID, &req)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteCreated(w, cart)
}

func (h *CartHandler) List(w http.ResponseWriter, r *http.Request, _ httprouter.Params, sessionID string) {
	carts, err := h.service.ListBySession(r.Context(), sessionID)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteSuccess(w, carts)
}

func (h *CartHandler) Get(w http.ResponseWriter, r *http.Request, ps httprouter.Params, sessionID string) {
	cart, err := h.service.Get(r.Context(), sessionID, ps.ByName("id"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteSuccess(w, cart)
}

func (h *CartHandler) AddItem(w http.ResponseWriter, r *http.Request, ps httprouter.Params, sessionID string) {
	var req model.AddToCartRequest
	if err := httputil.DecodeBody(r, &req); err != nil {
		httputil.WriteError(w, err)
		return
	}

	cart, err := h.service.AddItem(r.Context(), sessionID, ps.ByName("id"), &req)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteCreated(w, cart)
}

func (h *CartHandler) AddLegacyLine(w http.ResponseWriter, r *http.Request, ps httprouter.Params, sessionID string) {
	var line model.LegacyCartLine
	if err := httputil.DecodeBody(r, &line); err != nil {
		httputil.WriteError(w, err)
		return
	}

	cart, err := h.service.AddLegacyLine(r.Context(), sessionID, ps.ByName("id"), &line)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteCreated(w, cart)
}

func (h *CartHandler) UpdateQuantity(w http.ResponseWriter, r *http.Request, ps httprouter.Params, sessionID string) {
	var update model.CartItemUpdate
	if err := httputil.DecodeBody(r, &update); err != nil {
		httputil.WriteError(w, err)
		return
	}

	cart, err := h.service.UpdateQuantity(r.Context(), sessionID, ps.ByName("id"), ps.ByName("item_id"), update.Quantity)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteSuccess(w, cart)
}

func (h *CartHandler) RemoveItem(w http.ResponseWriter, r *http.Request, ps httprouter.Params, sessionID string) {
	cart, err := h.service.RemoveItem(r.Context(), sessionID, ps.ByName("id"), ps.ByName("item_id"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteSuccess(w, cart)
}

func (h *CartHandler) Clear(w http.ResponseWriter, r *http.Request, ps httprouter.Params, sessionID string) {
	cart, err := h.service.Clear(r.Context(), sessionID, ps.ByName("id"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteSuccess(w, cart)
}

func (h *CartHandler) RegisterRoutes(router *httprouter.Router) {
	router.POST("/api/v1/carts", withSession(h.Create))
	router.GET("/api/v1/carts", withSession(h.List))
	router.GET("/api/v1/carts/id/:id", withSession(h.Get))

	router.POST("/api/v1/carts/id/:id/items", withSession(h.AddItem))
	router.POST("/api/v1/carts/id/:id/legacy", withSession(h.AddLegacyLine))
	router.PATCH("/api/v1/carts/id/:id/items/:item_id", withSession(h.UpdateQuantity))
	router.DELETE("/api/v1/carts/id/:id/items/:item_id", withSession(h.RemoveItem))
	router.DELETE("/api/v1/carts/id/:id/items", withSession(h.Clear))
}
