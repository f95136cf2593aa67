package api

import (
	"encoding/json"
	"net/http"

	"github.com/callvox/painel/backend/internal/aggregator"
	"github.com/callvox/painel/backend/internal/auth"
	"github.com/callvox/painel/backend/internal/metadata"
	"github.com/callvox/painel/backend/internal/pipeline"
	"github.com/callvox/painel/backend/internal/types"
	"github.com/rs/zerolog"
)

// DashboardHandler serves REST reads over the latest aggregated
// snapshot, for clients that poll instead of holding a WebSocket.
type DashboardHandler struct {
	agg    *aggregator.Aggregator
	pipe   *pipeline.Pipeline
	meta   *metadata.Store
	logger zerolog.Logger
}

// NewDashboardHandler creates a new DashboardHandler
func NewDashboardHandler(agg *aggregator.Aggregator, pipe *pipeline.Pipeline, meta *metadata.Store, logger zerolog.Logger) *DashboardHandler {
	return &DashboardHandler{
		agg:    agg,
		pipe:   pipe,
		meta:   meta,
		logger: logger.With().Str("component", "dashboard_handler").Logger(),
	}
}

// GetAgents returns the agents of the latest snapshot. With ?all=1 the
// full roster is returned, including agents without a panel session.
// GET /api/agents
func (h *DashboardHandler) GetAgents(w http.ResponseWriter, r *http.Request) {
	claims, _ := auth.GetUserFromContext(r.Context())

	var agents []types.AgentView
	if r.URL.Query().Get("all") == "1" {
		agents = h.pipe.AllAgents(h.meta.Queues())
	} else {
		agents = h.agg.LastSnapshot().Agents
	}
	agents = filterAgents(agents, claims)

	if agents == nil {
		agents = []types.AgentView{}
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(agents)
}

// GetStats returns the dashboard KPIs of the latest snapshot.
// GET /api/stats
func (h *DashboardHandler) GetStats(w http.ResponseWriter, r *http.Request) {
	claims, _ := auth.GetUserFromContext(r.Context())
	snap := h.agg.LastSnapshot()

	stats := snap.Stats
	if claims != nil && claims.AllowedQueues != nil {
		agents := filterAgents(snap.Agents, claims)
		queues := filterQueues(snap.Queues, claims)
		stats = pipeline.ComputeStats(agents, queues)
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(stats)
}

// GetQueues returns the per-queue rollups of the latest snapshot.
// GET /api/queues
func (h *DashboardHandler) GetQueues(w http.ResponseWriter, r *http.Request) {
	claims, _ := auth.GetUserFromContext(r.Context())

	queues := filterQueues(h.agg.LastSnapshot().Queues, claims)
	if queues == nil {
		queues = []types.TransformedQueue{}
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(queues)
}

func filterAgents(agents []types.AgentView, claims *auth.Claims) []types.AgentView {
	if claims == nil || claims.AllowedQueues == nil {
		return agents
	}
	filtered := make([]types.AgentView, 0, len(agents))
	for _, agent := range agents {
		for _, ref := range agent.Queues {
			if claims.IsQueueAllowed(ref.ID) {
				filtered = append(filtered, agent)
				break
			}
		}
	}
	return filtered
}

func filterQueues(queues []types.TransformedQueue, claims *auth.Claims) []types.TransformedQueue {
	if claims == nil || claims.AllowedQueues == nil {
		return queues
	}
	filtered := make([]types.TransformedQueue, 0, len(queues))
	for _, q := range queues {
		if claims.IsQueueAllowed(q.ID) {
			filtered = append(filtered, q)
		}
	}
	return filtered
}
