package aggregator

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/callvox/painel/backend/internal/alerts"
	"github.com/callvox/painel/backend/internal/directory"
	"github.com/callvox/painel/backend/internal/events"
	"github.com/callvox/painel/backend/internal/metadata"
	"github.com/callvox/painel/backend/internal/metrics"
	"github.com/callvox/painel/backend/internal/pipeline"
	"github.com/callvox/painel/backend/internal/storage"
	"github.com/callvox/painel/backend/internal/types"
	"github.com/callvox/painel/backend/internal/websocket"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// Aggregator runs the recompute loop: every tick it refreshes the
// panel directory, recomputes the dashboard snapshot, detects status
// transitions and broadcasts the result to connected clients.
type Aggregator struct {
	pipe      *pipeline.Pipeline
	directory *directory.Store
	metadata  *metadata.Store
	hub       *websocket.Hub
	store     storage.Store
	publisher *events.Publisher
	interval  time.Duration
	logger    zerolog.Logger

	mu         sync.RWMutex
	last       types.Snapshot
	lastStatus map[string]string // agent key -> status code
}

// New creates an aggregator. publisher may be nil when Kafka is disabled.
func New(
	pipe *pipeline.Pipeline,
	dir *directory.Store,
	meta *metadata.Store,
	hub *websocket.Hub,
	store storage.Store,
	publisher *events.Publisher,
	interval time.Duration,
	logger zerolog.Logger,
) *Aggregator {
	return &Aggregator{
		pipe:       pipe,
		directory:  dir,
		metadata:   meta,
		hub:        hub,
		store:      store,
		publisher:  publisher,
		interval:   interval,
		logger:     logger,
		lastStatus: make(map[string]string),
	}
}

// Start begins the recompute loop. Blocks until ctx is cancelled.
func (a *Aggregator) Start(ctx context.Context) {
	ticker := time.NewTicker(a.interval)
	defer ticker.Stop()

	m := metrics.Get()
	a.logger.Info().Dur("interval", a.interval).Msg("aggregator started")

	for {
		select {
		case <-ctx.Done():
			a.logger.Info().Msg("aggregator stopped")
			return

		case <-ticker.C:
			cycleStart := time.Now()

			expired := a.directory.ExpireStale()
			if expired > 0 {
				a.logger.Debug().Int("expired", expired).Msg("stale panel sessions removed")
			}
			a.pipe.SetDirectory(a.directory.Snapshot())

			meta := a.metadata.Queues()
			snap := a.pipe.Recompute(meta)
			alerts.CheckAgentAlerts(snap.Agents, snap.Timestamp)

			a.detectTransitions(meta, snap.Timestamp)
			m.UpdateAgentStats(snap)

			a.mu.Lock()
			a.last = snap
			a.mu.Unlock()

			broadcast := false
			if a.hub.ClientCount() > 0 {
				data, err := json.Marshal(snap)
				if err != nil {
					a.logger.Error().Err(err).Msg("failed to marshal snapshot")
					m.RecordAggregationError()
				} else {
					a.hub.Broadcast(data)
					broadcast = true
				}
			}

			m.RecordAggregationCycle(time.Since(cycleStart), broadcast)

			a.logger.Debug().
				Int("queues", len(snap.Queues)).
				Int("agents", len(snap.Agents)).
				Int("clients", a.hub.ClientCount()).
				Msg("snapshot recomputed")
		}
	}
}

// LastSnapshot returns the most recently computed snapshot.
func (a *Aggregator) LastSnapshot() types.Snapshot {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.last
}

// detectTransitions compares the full agent roster against the previous
// tick and persists every status change. The full roster is used rather
// than the snapshot so agents not logged into the panel still get
// history.
func (a *Aggregator) detectTransitions(meta []types.QueueMeta, now time.Time) {
	m := metrics.Get()
	agents := a.pipe.AllAgents(meta)

	seen := make(map[string]string, len(agents))
	for _, agent := range agents {
		seen[agent.Key] = agent.StatusCode

		prev, ok := a.lastStatus[agent.Key]
		if !ok || prev == agent.StatusCode {
			continue
		}

		queues := make([]string, 0, len(agent.Queues))
		for _, q := range agent.Queues {
			queues = append(queues, q.ID)
		}

		t := types.StatusTransition{
			DateKey:      now.Format("2006-01-02"),
			TransitionID: now.Format(time.RFC3339Nano) + "#" + uuid.New().String(),
			Key:          agent.Key,
			Login:        agent.Login,
			Ramal:        agent.Ramal,
			FromStatus:   prev,
			ToStatus:     agent.StatusCode,
			FromLabel:    statusLabel(prev),
			ToLabel:      agent.StatusLabel,
			Queues:       queues,
			Timestamp:    now,
		}

		if err := a.store.SaveStatusTransition(t); err != nil {
			a.logger.Error().Err(err).Str("agent", agent.Key).Msg("failed to persist transition")
			m.RecordAggregationError()
		}
		if err := a.publisher.PublishTransition(t); err != nil {
			a.logger.Error().Err(err).Str("agent", agent.Key).Msg("failed to publish transition")
			m.RecordAggregationError()
		}
		m.RecordTransition()

		a.logger.Debug().
			Str("agent", agent.Key).
			Str("from", prev).
			Str("to", agent.StatusCode).
			Msg("status transition")
	}

	a.lastStatus = seen
}

func statusLabel(code string) string {
	if info, ok := types.LookupStatus(code); ok {
		return info.Label
	}
	return code
}
