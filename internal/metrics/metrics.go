package metrics

import (
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/callvox/painel/backend/internal/types"
)

// Metrics holds all application metrics
type Metrics struct {
	mu sync.RWMutex

	// Feed metrics
	FeedEventsTotal     int64
	FeedReconnectsTotal int64

	// WebSocket metrics
	WebSocketConnectionsTotal    int64
	WebSocketDisconnectionsTotal int64
	WebSocketErrorsTotal         int64
	activeConnections            int64

	// Presence metrics
	PresenceRegistersTotal int64
	PresenceLogoutsTotal   int64

	// Aggregation metrics
	AggregationCyclesTotal  int64
	SnapshotsBroadcastTotal int64
	AggregationErrorsTotal  int64
	TransitionsTotal        int64
	lastAggregationDuration time.Duration

	// Agent metrics
	agentsByLabel map[string]int
	totalAgents   int
	totalQueues   int

	// Timing
	startTime time.Time
}

// Global metrics instance
var instance *Metrics
var once sync.Once

// Get returns the singleton metrics instance
func Get() *Metrics {
	once.Do(func() {
		instance = &Metrics{
			agentsByLabel: make(map[string]int),
			startTime:     time.Now(),
		}
	})
	return instance
}

// RecordFeedEvent increments the feed event counter
func (m *Metrics) RecordFeedEvent() {
	m.mu.Lock()
	m.FeedEventsTotal++
	m.mu.Unlock()
}

// RecordFeedReconnect increments the feed reconnect counter
func (m *Metrics) RecordFeedReconnect() {
	m.mu.Lock()
	m.FeedReconnectsTotal++
	m.mu.Unlock()
}

// RecordWebSocketConnect increments connection counters
func (m *Metrics) RecordWebSocketConnect() {
	m.mu.Lock()
	m.WebSocketConnectionsTotal++
	m.activeConnections++
	m.mu.Unlock()
}

// RecordWebSocketDisconnect increments disconnection counter
func (m *Metrics) RecordWebSocketDisconnect() {
	m.mu.Lock()
	m.WebSocketDisconnectionsTotal++
	m.activeConnections--
	m.mu.Unlock()
}

// RecordWebSocketError increments WebSocket error counter
func (m *Metrics) RecordWebSocketError() {
	m.mu.Lock()
	m.WebSocketErrorsTotal++
	m.mu.Unlock()
}

// RecordPresenceRegister increments the panel sign-in counter
func (m *Metrics) RecordPresenceRegister() {
	m.mu.Lock()
	m.PresenceRegistersTotal++
	m.mu.Unlock()
}

// RecordPresenceLogout increments the panel sign-out counter
func (m *Metrics) RecordPresenceLogout() {
	m.mu.Lock()
	m.PresenceLogoutsTotal++
	m.mu.Unlock()
}

// RecordAggregationCycle records one recompute/broadcast cycle
func (m *Metrics) RecordAggregationCycle(duration time.Duration, broadcast bool) {
	m.mu.Lock()
	m.AggregationCyclesTotal++
	if broadcast {
		m.SnapshotsBroadcastTotal++
	}
	m.lastAggregationDuration = duration
	m.mu.Unlock()
}

// RecordAggregationError increments aggregation error counter
func (m *Metrics) RecordAggregationError() {
	m.mu.Lock()
	m.AggregationErrorsTotal++
	m.mu.Unlock()
}

// RecordTransition increments the persisted status-transition counter
func (m *Metrics) RecordTransition() {
	m.mu.Lock()
	m.TransitionsTotal++
	m.mu.Unlock()
}

// UpdateAgentStats updates the agent distribution gauges from a snapshot
func (m *Metrics) UpdateAgentStats(snap types.Snapshot) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.agentsByLabel = make(map[string]int)
	m.totalAgents = len(snap.Agents)
	m.totalQueues = len(snap.Queues)

	for _, agent := range snap.Agents {
		m.agentsByLabel[agent.StatusLabel]++
	}
}

// GetActiveConnections returns current WebSocket connections
func (m *Metrics) GetActiveConnections() int64 {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.activeConnections
}

// Handler returns an HTTP handler for the /metrics endpoint
func (m *Metrics) Handler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		m.mu.RLock()
		defer m.mu.RUnlock()

		w.Header().Set("Content-Type", "text/plain; charset=utf-8")

		write := func(name string, value interface{}, labels ...string) {
			labelStr := ""
			if len(labels) > 0 {
				labelStr = "{"
				for i := 0; i < len(labels); i += 2 {
					if i > 0 {
						labelStr += ","
					}
					labelStr += labels[i] + "=\"" + labels[i+1] + "\""
				}
				labelStr += "}"
			}

			switch v := value.(type) {
			case int:
				w.Write([]byte(name + labelStr + " " + strconv.Itoa(v) + "\n"))
			case int64:
				w.Write([]byte(name + labelStr + " " + strconv.FormatInt(v, 10) + "\n"))
			case float64:
				w.Write([]byte(name + labelStr + " " + strconv.FormatFloat(v, 'f', 6, 64) + "\n"))
			}
		}

		// System metrics
		write("painel_uptime_seconds", time.Since(m.startTime).Seconds())

		// Feed metrics
		write("painel_feed_events_total", m.FeedEventsTotal)
		write("painel_feed_reconnects_total", m.FeedReconnectsTotal)

		uptimeSeconds := time.Since(m.startTime).Seconds()
		if uptimeSeconds > 0 {
			write("painel_feed_events_per_second", float64(m.FeedEventsTotal)/uptimeSeconds)
		}

		// WebSocket metrics
		write("painel_websocket_connections_total", m.WebSocketConnectionsTotal)
		write("painel_websocket_disconnections_total", m.WebSocketDisconnectionsTotal)
		write("painel_websocket_active_connections", m.activeConnections)
		write("painel_websocket_errors_total", m.WebSocketErrorsTotal)

		// Presence metrics
		write("painel_presence_registers_total", m.PresenceRegistersTotal)
		write("painel_presence_logouts_total", m.PresenceLogoutsTotal)

		// Aggregation metrics
		write("painel_aggregation_cycles_total", m.AggregationCyclesTotal)
		write("painel_snapshots_broadcast_total", m.SnapshotsBroadcastTotal)
		write("painel_aggregation_errors_total", m.AggregationErrorsTotal)
		write("painel_transitions_total", m.TransitionsTotal)
		write("painel_aggregation_duration_seconds", m.lastAggregationDuration.Seconds())

		// Agent metrics
		write("painel_agents_total", m.totalAgents)
		write("painel_queues_visible", m.totalQueues)

		for label, count := range m.agentsByLabel {
			write("painel_agents_by_status", count, "status", label)
		}
	}
}
