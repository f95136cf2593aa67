package api

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/callvox/painel/backend/internal/storage"
	"github.com/callvox/painel/backend/internal/types"
	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
)

// AgentHistoryHandler provides REST endpoints for status transition
// history.
type AgentHistoryHandler struct {
	store  storage.Store
	logger zerolog.Logger
}

// NewAgentHistoryHandler creates a new AgentHistoryHandler
func NewAgentHistoryHandler(store storage.Store, logger zerolog.Logger) *AgentHistoryHandler {
	return &AgentHistoryHandler{
		store:  store,
		logger: logger.With().Str("component", "agent_history_handler").Logger(),
	}
}

// GetHistory returns the agent's status transitions for one day
// GET /api/agents/{login}/history?date=YYYY-MM-DD (defaults to today)
func (h *AgentHistoryHandler) GetHistory(w http.ResponseWriter, r *http.Request) {
	login := chi.URLParam(r, "login")
	if login == "" {
		http.Error(w, "login is required", http.StatusBadRequest)
		return
	}

	date := r.URL.Query().Get("date")
	if date == "" {
		date = time.Now().Format("2006-01-02")
	} else if _, err := time.Parse("2006-01-02", date); err != nil {
		http.Error(w, "date must be YYYY-MM-DD", http.StatusBadRequest)
		return
	}

	transitions, err := h.store.GetAgentTransitions(login, date)
	if err != nil {
		h.logger.Error().Err(err).
			Str("login", login).
			Str("date", date).
			Msg("failed to get agent transitions")
		http.Error(w, "failed to retrieve history", http.StatusInternalServerError)
		return
	}

	if transitions == nil {
		transitions = []types.StatusTransition{}
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(transitions)
}

// GetDayTransitions returns every transition recorded on one day
// GET /api/transitions?date=YYYY-MM-DD (defaults to today)
func (h *AgentHistoryHandler) GetDayTransitions(w http.ResponseWriter, r *http.Request) {
	date := r.URL.Query().Get("date")
	if date == "" {
		date = time.Now().Format("2006-01-02")
	} else if _, err := time.Parse("2006-01-02", date); err != nil {
		http.Error(w, "date must be YYYY-MM-DD", http.StatusBadRequest)
		return
	}

	transitions, err := h.store.GetTransitionsByDate(date)
	if err != nil {
		h.logger.Error().Err(err).Str("date", date).Msg("failed to get transitions")
		http.Error(w, "failed to retrieve transitions", http.StatusInternalServerError)
		return
	}

	if transitions == nil {
		transitions = []types.StatusTransition{}
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(transitions)
}
