package api

import (
	"encoding/json"
	"net/http"

	"github.com/callvox/painel/backend/internal/ami"
	"github.com/callvox/painel/backend/internal/metadata"
	"github.com/rs/zerolog"
)

// QueueAdminHandler reloads queue metadata and re-primes the PBX feed.
type QueueAdminHandler struct {
	meta      *metadata.Store
	amiClient *ami.Client
	logger    zerolog.Logger
}

// NewQueueAdminHandler creates a new QueueAdminHandler
func NewQueueAdminHandler(meta *metadata.Store, amiClient *ami.Client, logger zerolog.Logger) *QueueAdminHandler {
	return &QueueAdminHandler{
		meta:      meta,
		amiClient: amiClient,
		logger:    logger.With().Str("component", "queue_admin").Logger(),
	}
}

// Refresh handles POST /api/queues/refresh. Reloads queue metadata from
// the database and asks the PBX for a full queue status dump so the
// next snapshot reflects the new registrations.
func (h *QueueAdminHandler) Refresh(w http.ResponseWriter, r *http.Request) {
	h.meta.Refresh(r.Context())
	if errMsg := h.meta.Err(); errMsg != "" {
		h.logger.Warn().Str("error", errMsg).Msg("queue metadata refresh failed, serving previous list")
	}

	if err := h.amiClient.RequestQueueStatus(); err != nil {
		h.logger.Error().Err(err).Msg("failed to request queue status from PBX")
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{
		"message": "queue metadata refreshed",
		"queues":  len(h.meta.Queues()),
		"error":   h.meta.Err(),
	})
}
