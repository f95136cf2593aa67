package websocket

import (
	"net/http"

	"github.com/callvox/painel/backend/internal/auth"
	"github.com/callvox/painel/backend/internal/config"
	"github.com/callvox/painel/backend/internal/metrics"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		// Origin is enforced by the CORS middleware in front of the
		// upgrade, and the auth middleware already validated the token.
		return true
	},
}

// Handler handles WebSocket upgrade requests from dashboards
type Handler struct {
	hub    *Hub
	config *config.Config
	logger zerolog.Logger
}

// NewHandler creates a new WebSocket handler
func NewHandler(hub *Hub, cfg *config.Config, logger zerolog.Logger) *Handler {
	return &Handler{
		hub:    hub,
		config: cfg,
		logger: logger,
	}
}

// ServeHTTP handles WebSocket upgrade requests
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	claims, _ := auth.GetUserFromContext(r.Context())

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Error().Err(err).Msg("failed to upgrade connection")
		metrics.Get().RecordWebSocketError()
		return
	}

	client := NewClient(h.hub, conn, h.config, h.logger, claims)

	h.hub.register <- client
	metrics.Get().RecordWebSocketConnect()

	client.Start()
}
