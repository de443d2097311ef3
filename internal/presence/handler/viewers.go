package handler

import (
	"context"
	"net/http"
	"slices"
	"time"

	"billboards/internal/presence"
	httputil "billboards/pkg/http"
	"billboards/pkg/logger"
	"billboards/pkg/model"

	"github.com/gorilla/websocket"
	"github.com/julienschmidt/httprouter"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = (pongWait * 9) / 10
)

// Presence is what the handler needs from the aggregator.
type Presence interface {
	Join(ctx context.Context, billboardID string) *presence.Session
	Count(ctx context.Context, billboardID string) model.ViewerCount
}

type ViewersHandler struct {
	presence Presence
	upgrader websocket.Upgrader
	log      *logger.Logger
}

func NewViewersHandler(p Presence, allowedOrigins []string, log *logger.Logger) *ViewersHandler {
	return &ViewersHandler{
		presence: p,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     checkOrigin(allowedOrigins),
		},
		log: log,
	}
}

func checkOrigin(allowed []string) func(r *http.Request) bool {
	return func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		if origin == "" || slices.Contains(allowed, "*") {
			return true
		}
		return slices.Contains(allowed, origin)
	}
}

func (h *ViewersHandler) Count(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	httputil.WriteSuccess(w, h.presence.Count(r.Context(), ps.ByName("id")))
}

// Stream joins the caller as a viewer for as long as the socket stays open and
// pushes every count change to it.
func (h *ViewersHandler) Stream(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	billboardID := ps.ByName("id")

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.Warn("WebSocket upgrade failed", "billboard_id", billboardID, "error", err)
		return
	}
	defer conn.Close()

	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()

	session := h.presence.Join(ctx, billboardID)
	defer session.Leave()

	go h.readLoop(conn, cancel)

	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case count, ok := <-session.Updates():
			if !ok {
				return
			}
			_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteJSON(count); err != nil {
				h.log.Debug("Viewer socket write failed", "billboard_id", billboardID, "error", err)
				return
			}
		case <-ticker.C:
			_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// readLoop discards client frames and cancels the stream once the peer goes
// away or stops answering pings.
func (h *ViewersHandler) readLoop(conn *websocket.Conn, cancel context.CancelFunc) {
	defer cancel()

	_ = conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(pongWait))
	})
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			return
		}
	}
}

func (h *ViewersHandler) RegisterRoutes(router *httprouter.Router) {
	router.GET("/api/v1/billboards/:id/viewers", h.Count)
	router.GET("/api/v1/billboards/:id/viewers/ws", h.Stream)
}
