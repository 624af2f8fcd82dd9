package ws

import (
	"net/http"

	"github.com/gorilla/websocket"

	"github.com/okian/matchboard/pkg/logger"
)

// Handler upgrades requests and attaches the connection to the hub.
type Handler struct {
	hub      *Hub
	upgrader websocket.Upgrader
}

// NewHandler creates a handler. checkOrigin may be nil to accept any origin.
func NewHandler(hub *Hub, checkOrigin func(*http.Request) bool) *Handler {
	if checkOrigin == nil {
		checkOrigin = func(*http.Request) bool { return true }
	}
	return &Handler{
		hub: hub,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     checkOrigin,
		},
	}
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.hub.log.Warn(r.Context(), "websocket upgrade failed", logger.Error(err))
		return
	}
	c := newClient(h.hub, conn)
	if !h.hub.Register(c) {
		_ = conn.Close()
		return
	}
	go c.writePump()
	go c.readPump()
}
