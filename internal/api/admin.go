package api

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/callvox/painel/backend/internal/auth"
	"github.com/callvox/painel/backend/internal/storage"
	"github.com/rs/zerolog"
)

// AdminHandler handles destructive maintenance endpoints
type AdminHandler struct {
	store  storage.Store
	logger zerolog.Logger
}

// NewAdminHandler creates a new AdminHandler
func NewAdminHandler(store storage.Store, logger zerolog.Logger) *AdminHandler {
	return &AdminHandler{
		store:  store,
		logger: logger,
	}
}

// RequireAdmin middleware — only admin role allowed
func RequireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		claims, ok := auth.GetUserFromContext(r.Context())
		if !ok || !auth.HasRole(claims, "admin") {
			w.Header().Set("Content-Type", "application/json")
			http.Error(w, `{"error":"admin role required"}`, http.StatusForbidden)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// RequireSupervisorOrAdmin middleware — supervisor or admin role allowed
func RequireSupervisorOrAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		claims, ok := auth.GetUserFromContext(r.Context())
		if !ok || (claims.Role != "admin" && claims.Role != "supervisor") {
			w.Header().Set("Content-Type", "application/json")
			http.Error(w, `{"error":"supervisor or admin role required"}`, http.StatusForbidden)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// WipeHistory truncates the transition history table
// POST /api/admin/history/wipe
func (h *AdminHandler) WipeHistory(w http.ResponseWriter, r *http.Request) {
	if err := h.store.TruncateAll(); err != nil {
		h.logger.Error().Err(err).Msg("failed to truncate history tables")
		http.Error(w, fmt.Sprintf(`{"error":"failed to truncate: %s"}`, err), http.StatusInternalServerError)
		return
	}

	h.logger.Info().Msg("transition history truncated")

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{
		"message": "transition history truncated",
	})
}
