package pipeline

import (
	"sync"
	"time"

	"github.com/callvox/painel/backend/internal/types"
	"github.com/rs/zerolog"
)

// Pipeline owns the locally cached state of the three live feeds and the
// stable display order, and derives the dashboard view model from them.
//
// Ingestion (Apply*/Remove*/SetDirectory) and derivation (Recompute) are
// separate: feed callbacks only mutate the cached maps, and every
// recomputation joins whatever each feed last delivered. No cross-feed
// snapshot consistency is attempted; stale joins default missing fields
// instead of blocking.
type Pipeline struct {
	mu        sync.Mutex
	buckets   map[string]types.StatusBucket
	totals    map[string]types.QueueTotals
	directory map[string]types.DirectoryEntry
	order     []string

	opts   CombineOptions
	logger zerolog.Logger
}

// New creates an empty pipeline.
func New(opts CombineOptions, logger zerolog.Logger) *Pipeline {
	return &Pipeline{
		buckets:   make(map[string]types.StatusBucket),
		totals:    make(map[string]types.QueueTotals),
		directory: make(map[string]types.DirectoryEntry),
		opts:      opts,
		logger:    logger.With().Str("component", "pipeline").Logger(),
	}
}

// ApplyStatusBucket upserts one keyed record of the queue-status feed.
func (p *Pipeline) ApplyStatusBucket(key string, bucket types.StatusBucket) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.buckets[key] = bucket
}

// RemoveStatusBucket drops a keyed status record (member left the queue).
func (p *Pipeline) RemoveStatusBucket(key string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	delete(p.buckets, key)
}

// StatusBucket returns the current record under a feed key, if any.
func (p *Pipeline) StatusBucket(key string) (types.StatusBucket, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	b, ok := p.buckets[key]
	return b, ok
}

// ApplyTotals upserts one queue's traffic totals.
func (p *Pipeline) ApplyTotals(queue string, totals types.QueueTotals) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.totals[queue] = totals
}

// RemoveTotals drops a queue from the totals feed state.
func (p *Pipeline) RemoveTotals(queue string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	delete(p.totals, queue)
}

// SetDirectory replaces the panel presence index with a full snapshot.
func (p *Pipeline) SetDirectory(entries []types.DirectoryEntry) {
	index := make(map[string]types.DirectoryEntry, len(entries))
	for _, e := range entries {
		index[e.Login] = e
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	p.directory = index
}

// Recompute joins the cached feed states into a display snapshot and
// advances the stable order cell.
func (p *Pipeline) Recompute(meta []types.QueueMeta) types.Snapshot {
	return p.recomputeAt(time.Now(), meta)
}

func (p *Pipeline) recomputeAt(now time.Time, meta []types.QueueMeta) types.Snapshot {
	p.mu.Lock()
	defer p.mu.Unlock()

	status := ReduceStatus(p.buckets)
	combined := Combine(status, p.totals, p.opts)
	queues := TransformQueues(combined, meta)
	visible := VisibleQueues(queues, meta)
	flat := Flatten(queues, p.directory)

	p.order = StableOrder(p.order, flat.Keys)

	agents := make([]types.AgentView, 0, len(flat.Agents))
	for _, key := range p.order {
		view, ok := flat.Agents[key]
		if !ok || !view.LoggedIn {
			continue
		}
		out := *view
		if !out.EventTime.IsZero() {
			out.Elapsed = FormatElapsed(now.Sub(out.EventTime))
		}
		agents = append(agents, out)
	}

	return types.Snapshot{
		Type:      "snapshot",
		Timestamp: now,
		Queues:    visible,
		Agents:    agents,
		Stats:     ComputeStats(agents, visible),
	}
}

// AllAgents returns the full flattened agent map, including agents not
// signed into the panel. Used by the REST surface for supervisor views.
func (p *Pipeline) AllAgents(meta []types.QueueMeta) []types.AgentView {
	p.mu.Lock()
	defer p.mu.Unlock()

	status := ReduceStatus(p.buckets)
	combined := Combine(status, p.totals, p.opts)
	queues := TransformQueues(combined, meta)
	flat := Flatten(queues, p.directory)

	order := StableOrder(p.order, flat.Keys)
	out := make([]types.AgentView, 0, len(flat.Agents))
	for _, key := range order {
		if view, ok := flat.Agents[key]; ok {
			out = append(out, *view)
		}
	}
	return out
}
