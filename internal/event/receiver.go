package event

import (
	"encoding/json"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/callvox/painel/backend/internal/feed"
	"github.com/rs/zerolog"
)

// Receiver accepts queue event frames over HTTP and feeds them into the
// pipeline, bypassing the PBX link. Used by integration tooling to
// replay captured event streams against a running backend.
type Receiver struct {
	handler        *feed.Handler
	logger         zerolog.Logger
	eventsReceived int64
	lastReceived   time.Time
	mu             sync.RWMutex
}

// NewReceiver creates a new event receiver
func NewReceiver(handler *feed.Handler, logger zerolog.Logger) *Receiver {
	return &Receiver{
		handler: handler,
		logger:  logger,
	}
}

// HandleEvent receives one event frame as a flat JSON object, with the
// same keys an AMI frame would carry ("Event", "Queue", "Interface"...).
func (r *Receiver) HandleEvent(w http.ResponseWriter, req *http.Request) {
	if req.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var event map[string]string
	if err := json.NewDecoder(req.Body).Decode(&event); err != nil {
		r.logger.Error().Err(err).Msg("failed to decode event")
		http.Error(w, "invalid event", http.StatusBadRequest)
		return
	}
	if event["Event"] == "" {
		http.Error(w, "missing Event field", http.StatusBadRequest)
		return
	}

	r.handler.HandleEvent(event)

	atomic.AddInt64(&r.eventsReceived, 1)
	r.mu.Lock()
	r.lastReceived = time.Now()
	r.mu.Unlock()

	count := atomic.LoadInt64(&r.eventsReceived)
	if count%1000 == 0 {
		r.logger.Info().
			Int64("total_received", count).
			Msg("events received")
	}

	w.WriteHeader(http.StatusOK)
}

// GetStats returns receiver statistics
func (r *Receiver) GetStats(w http.ResponseWriter, req *http.Request) {
	r.mu.RLock()
	lastReceived := r.lastReceived
	r.mu.RUnlock()

	stats := map[string]interface{}{
		"events_received": atomic.LoadInt64(&r.eventsReceived),
		"last_received":   lastReceived,
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(stats)
}
