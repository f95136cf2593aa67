package websocket

import (
	"net/http"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
)

// panelUpgrader is the WebSocket upgrader for panel connections
var panelUpgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// PanelHandler handles WebSocket upgrade requests from agent panels
type PanelHandler struct {
	hub    *PanelHub
	logger zerolog.Logger
}

// NewPanelHandler creates a new PanelHandler
func NewPanelHandler(hub *PanelHub, logger zerolog.Logger) *PanelHandler {
	return &PanelHandler{
		hub:    hub,
		logger: logger,
	}
}

// ServeHTTP handles WebSocket upgrade requests from panels
func (h *PanelHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := panelUpgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Error().Err(err).Msg("failed to upgrade panel connection")
		return
	}

	client := NewPanelClient(h.hub, conn, h.logger)

	// The client joins the hub map only once its register message
	// names the login.
	client.Start()
}
