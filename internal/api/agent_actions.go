package api

import (
	"encoding/json"
	"net/http"

	"github.com/callvox/painel/backend/internal/aggregator"
	"github.com/callvox/painel/backend/internal/ami"
	"github.com/callvox/painel/backend/internal/types"
	"github.com/callvox/painel/backend/internal/websocket"
	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
)

// AgentActionsHandler provides REST endpoints for supervisor actions on
// agents: pausing through the PBX and forcing panel logout.
type AgentActionsHandler struct {
	amiClient *ami.Client
	agg       *aggregator.Aggregator
	panelHub  *websocket.PanelHub
	logger    zerolog.Logger
}

// NewAgentActionsHandler creates a new AgentActionsHandler
func NewAgentActionsHandler(amiClient *ami.Client, agg *aggregator.Aggregator, panelHub *websocket.PanelHub, logger zerolog.Logger) *AgentActionsHandler {
	return &AgentActionsHandler{
		amiClient: amiClient,
		agg:       agg,
		panelHub:  panelHub,
		logger:    logger.With().Str("component", "agent_actions").Logger(),
	}
}

// Pause handles POST /api/agents/{login}/pause
// Body: {"paused": true, "reason": "Almoço", "queue": "100"}
// When queue is omitted the pause applies to all of the agent's queues.
func (h *AgentActionsHandler) Pause(w http.ResponseWriter, r *http.Request) {
	login := chi.URLParam(r, "login")
	if login == "" {
		http.Error(w, "login is required", http.StatusBadRequest)
		return
	}

	var req struct {
		Paused bool   `json:"paused"`
		Reason string `json:"reason,omitempty"`
		Queue  string `json:"queue,omitempty"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}

	agent, ok := h.findAgent(login)
	if !ok {
		http.Error(w, "agent not found", http.StatusNotFound)
		return
	}

	iface := "SIP/" + agent.Ramal
	if agent.RealRamal != "" {
		iface = "SIP/" + agent.RealRamal
	}

	queues := []string{req.Queue}
	if req.Queue == "" {
		queues = queues[:0]
		for _, ref := range agent.Queues {
			queues = append(queues, ref.ID)
		}
	}

	for _, queue := range queues {
		if err := h.amiClient.QueuePause(iface, queue, req.Reason, req.Paused); err != nil {
			h.logger.Error().Err(err).
				Str("login", login).
				Str("queue", queue).
				Msg("failed to send queue pause")
			http.Error(w, "failed to reach PBX", http.StatusBadGateway)
			return
		}
	}

	h.logger.Info().
		Str("login", login).
		Str("interface", iface).
		Bool("paused", req.Paused).
		Str("reason", req.Reason).
		Msg("queue pause sent via API")

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{
		"message": "pause request sent",
		"login":   login,
		"paused":  req.Paused,
		"queues":  queues,
	})
}

// Logout handles POST /api/agents/{login}/logout. Closes the agent's
// panel session; the next snapshot drops them from the dashboard.
func (h *AgentActionsHandler) Logout(w http.ResponseWriter, r *http.Request) {
	login := chi.URLParam(r, "login")
	if login == "" {
		http.Error(w, "login is required", http.StatusBadRequest)
		return
	}

	if !h.panelHub.Disconnect(login) {
		http.Error(w, "agent panel not connected", http.StatusNotFound)
		return
	}

	h.logger.Info().
		Str("login", login).
		Msg("panel force-disconnected via API")

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{
		"message": "agent logged out",
		"login":   login,
	})
}

// findAgent locates the agent by login in the latest snapshot.
func (h *AgentActionsHandler) findAgent(login string) (types.AgentView, bool) {
	for _, agent := range h.agg.LastSnapshot().Agents {
		if agent.Login == login {
			return agent, true
		}
	}
	return types.AgentView{}, false
}
