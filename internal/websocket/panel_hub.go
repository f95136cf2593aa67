package websocket

import (
	"context"
	"sync"

	"github.com/callvox/painel/backend/internal/directory"
	"github.com/callvox/painel/backend/internal/metrics"
	"github.com/callvox/painel/backend/internal/types"
	"github.com/rs/zerolog"
)

// panelRegistration pairs a register message with the connection it
// arrived on, so the hub can key the client by login.
type panelRegistration struct {
	client *PanelClient
	msg    *types.PanelRegister
}

// PanelHub maintains the set of active panel (agent-side) WebSocket
// connections and feeds the presence directory.
type PanelHub struct {
	// Registered panel clients, keyed by login
	panels map[string]*PanelClient

	// Register requests carrying the panel's login
	register chan *panelRegistration

	// Unregister requests from panel clients
	unregister chan *PanelClient

	// Presence messages from panels
	heartbeat chan *types.PanelHeartbeat
	logout    chan *types.PanelLogout

	// Mutex to protect panels map
	mu sync.RWMutex

	// Logger
	logger zerolog.Logger

	// Presence directory updated from panel messages
	directory *directory.Store
}

// NewPanelHub creates a new PanelHub
func NewPanelHub(dir *directory.Store, logger zerolog.Logger) *PanelHub {
	return &PanelHub{
		panels:     make(map[string]*PanelClient),
		register:   make(chan *panelRegistration, 100),
		unregister: make(chan *PanelClient),
		heartbeat:  make(chan *types.PanelHeartbeat, 1000),
		logout:     make(chan *types.PanelLogout, 100),
		logger:     logger,
		directory:  dir,
	}
}

// Run starts the hub's main loop
func (h *PanelHub) Run(ctx context.Context) {
	m := metrics.Get()

	for {
		select {
		case <-ctx.Done():
			return

		case reg := <-h.register:
			h.mu.Lock()
			// Replace an existing session for the same login
			if existing, ok := h.panels[reg.msg.Login]; ok && existing != reg.client {
				existing.Close()
			}
			h.panels[reg.msg.Login] = reg.client
			total := len(h.panels)
			h.mu.Unlock()

			entry := types.DirectoryEntry{
				Login:      reg.msg.Login,
				InternalID: reg.msg.InternalID,
				Ramal:      reg.msg.Ramal,
				Status:     reg.msg.Status,
				Reason:     reg.msg.Reason,
			}
			if err := h.directory.SetOnline(ctx, entry); err != nil {
				h.logger.Error().Err(err).Str("login", reg.msg.Login).Msg("failed to register panel session")
				continue
			}
			m.RecordPresenceRegister()

			h.logger.Debug().
				Str("login", reg.msg.Login).
				Int("total_panels", total).
				Msg("panel registered")

		case client := <-h.unregister:
			if client.login == "" {
				// Connection dropped before it ever registered
				client.Close()
				continue
			}

			h.mu.Lock()
			existing, ok := h.panels[client.login]
			if ok && existing == client {
				delete(h.panels, client.login)
			}
			total := len(h.panels)
			h.mu.Unlock()

			client.Close()
			if ok && existing == client {
				h.directory.SetOffline(ctx, client.login)
				m.RecordPresenceLogout()

				h.logger.Debug().
					Str("login", client.login).
					Int("total_panels", total).
					Msg("panel disconnected")
			}

		case hb := <-h.heartbeat:
			h.directory.Heartbeat(ctx, hb.Login)

		case lo := <-h.logout:
			h.directory.SetOffline(ctx, lo.Login)
			m.RecordPresenceLogout()
		}
	}
}

// PanelCount returns the number of connected panels
func (h *PanelHub) PanelCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.panels)
}

// Disconnect closes the panel connection for a login, if any.
func (h *PanelHub) Disconnect(login string) bool {
	h.mu.Lock()
	client, ok := h.panels[login]
	if ok {
		delete(h.panels, login)
		client.Close()
		h.logger.Info().Str("login", login).Msg("panel force-disconnected")
	}
	h.mu.Unlock()
	return ok
}
