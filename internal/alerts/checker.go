package alerts

import (
	"fmt"
	"time"

	"github.com/callvox/painel/backend/internal/types"
)

// Thresholds for how long an agent may stay in a state before the
// dashboard flags it.
const (
	pauseWarning  = 10 * time.Minute
	pauseCritical = 20 * time.Minute
	ringingLong   = 45 * time.Second
)

// CheckAgentAlerts evaluates alert rules for a slice of agents,
// mutating each agent's Alerts field in place.
func CheckAgentAlerts(agents []types.AgentView, now time.Time) {
	for i := range agents {
		agents[i].Alerts = nil

		if agents[i].EventTime.IsZero() {
			continue
		}
		dur := now.Sub(agents[i].EventTime)
		if dur < 0 {
			continue
		}

		switch agents[i].StatusCode {
		case types.StatusPaused:
			if dur > pauseCritical {
				agents[i].Alerts = append(agents[i].Alerts, types.AgentAlert{
					Rule:     "pause_long",
					Severity: types.SeverityCritical,
					Message:  fmt.Sprintf("Em pausa há %s", formatDuration(dur)),
				})
			} else if dur > pauseWarning {
				agents[i].Alerts = append(agents[i].Alerts, types.AgentAlert{
					Rule:     "pause_long",
					Severity: types.SeverityWarning,
					Message:  fmt.Sprintf("Em pausa há %s", formatDuration(dur)),
				})
			}

		case types.StatusRinging:
			if dur > ringingLong {
				agents[i].Alerts = append(agents[i].Alerts, types.AgentAlert{
					Rule:     "ringing_long",
					Severity: types.SeverityWarning,
					Message:  fmt.Sprintf("Tocando há %s", formatDuration(dur)),
				})
			}
		}
	}
}

func formatDuration(d time.Duration) string {
	mins := int(d.Minutes())
	secs := int(d.Seconds()) % 60
	if mins >= 60 {
		hours := mins / 60
		mins = mins % 60
		return fmt.Sprintf("%dh%dm", hours, mins)
	}
	return fmt.Sprintf("%dm%ds", mins, secs)
}
