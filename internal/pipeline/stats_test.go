package pipeline

import (
	"testing"
	"time"

	"github.com/callvox/painel/backend/internal/types"
)

func TestComputeStats(t *testing.T) {
	agents := []types.AgentView{
		{StatusCode: types.StatusAvailable},
		{StatusCode: types.StatusAvailable},
		{StatusCode: types.StatusInUse},
		{StatusCode: types.StatusRinging},
		{StatusCode: types.StatusWaiting},
		{StatusCode: types.StatusPaused},
		{StatusCode: types.StatusUnavailable},
		{StatusCode: "42"}, // unrecognized: counted in total only
	}
	queues := []types.TransformedQueue{
		{ID: "10", QueueSize: 3},
		{ID: "20", QueueSize: 2},
	}

	stats := ComputeStats(agents, queues)

	if stats.TotalAgents != 8 {
		t.Errorf("total = %d, want 8", stats.TotalAgents)
	}
	if stats.Available != 2 || stats.Busy != 1 || stats.Ringing != 1 || stats.Waiting != 1 {
		t.Errorf("unexpected counts: %+v", stats)
	}
	if stats.Paused != 1 || stats.Unavailable != 1 {
		t.Errorf("unexpected pause/unavailable counts: %+v", stats)
	}
	if stats.TotalQueueSize != 5 {
		t.Errorf("totalQueueSize = %d, want 5", stats.TotalQueueSize)
	}
}

func TestComputeStatsEmpty(t *testing.T) {
	stats := ComputeStats(nil, nil)
	if stats != (types.Stats{}) {
		t.Errorf("empty inputs must yield all zeros, got %+v", stats)
	}
}

func TestFormatElapsed(t *testing.T) {
	tests := []struct {
		d    time.Duration
		want string
	}{
		{0, "00:00:00"},
		{95 * time.Second, "00:01:35"},
		{3*time.Hour + 4*time.Minute + 5*time.Second, "03:04:05"},
		{-time.Minute, "00:00:00"},
	}

	for _, tt := range tests {
		if got := FormatElapsed(tt.d); got != tt.want {
			t.Errorf("FormatElapsed(%v) = %q, want %q", tt.d, got, tt.want)
		}
	}
}
