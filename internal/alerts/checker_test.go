package alerts

import (
	"testing"
	"time"

	"github.com/callvox/painel/backend/internal/types"
)

func TestCheckAgentAlerts(t *testing.T) {
	now := time.Date(2026, 8, 30, 12, 0, 0, 0, time.UTC)

	agents := []types.AgentView{
		{Login: "ana", StatusCode: types.StatusPaused, EventTime: now.Add(-12 * time.Minute)},
		{Login: "bruno", StatusCode: types.StatusPaused, EventTime: now.Add(-25 * time.Minute)},
		{Login: "carla", StatusCode: types.StatusPaused, EventTime: now.Add(-2 * time.Minute)},
		{Login: "davi", StatusCode: types.StatusRinging, EventTime: now.Add(-1 * time.Minute)},
		{Login: "edu", StatusCode: types.StatusAvailable, EventTime: now.Add(-3 * time.Hour)},
		{Login: "fabi", StatusCode: types.StatusPaused}, // zero EventTime
	}

	CheckAgentAlerts(agents, now)

	if len(agents[0].Alerts) != 1 || agents[0].Alerts[0].Severity != types.SeverityWarning {
		t.Errorf("ana: expected one warning alert, got %+v", agents[0].Alerts)
	}
	if agents[0].Alerts[0].Rule != "pause_long" {
		t.Errorf("ana: expected pause_long rule, got %s", agents[0].Alerts[0].Rule)
	}
	if len(agents[1].Alerts) != 1 || agents[1].Alerts[0].Severity != types.SeverityCritical {
		t.Errorf("bruno: expected one critical alert, got %+v", agents[1].Alerts)
	}
	if len(agents[2].Alerts) != 0 {
		t.Errorf("carla: expected no alerts, got %+v", agents[2].Alerts)
	}
	if len(agents[3].Alerts) != 1 || agents[3].Alerts[0].Rule != "ringing_long" {
		t.Errorf("davi: expected ringing_long alert, got %+v", agents[3].Alerts)
	}
	if len(agents[4].Alerts) != 0 {
		t.Errorf("edu: available agent should have no alerts, got %+v", agents[4].Alerts)
	}
	if len(agents[5].Alerts) != 0 {
		t.Errorf("fabi: zero event time should produce no alerts, got %+v", agents[5].Alerts)
	}
}

func TestCheckAgentAlertsClearsStale(t *testing.T) {
	now := time.Date(2026, 8, 30, 12, 0, 0, 0, time.UTC)

	agents := []types.AgentView{
		{
			Login:      "ana",
			StatusCode: types.StatusAvailable,
			EventTime:  now.Add(-time.Minute),
			Alerts:     []types.AgentAlert{{Rule: "pause_long", Severity: types.SeverityWarning}},
		},
	}

	CheckAgentAlerts(agents, now)

	if len(agents[0].Alerts) != 0 {
		t.Errorf("expected stale alerts cleared, got %+v", agents[0].Alerts)
	}
}

func TestFormatDuration(t *testing.T) {
	tests := []struct {
		d    time.Duration
		want string
	}{
		{45 * time.Second, "0m45s"},
		{12*time.Minute + 30*time.Second, "12m30s"},
		{90 * time.Minute, "1h30m"},
	}
	for _, tt := range tests {
		if got := formatDuration(tt.d); got != tt.want {
			t.Errorf("formatDuration(%v) = %s, want %s", tt.d, got, tt.want)
		}
	}
}
