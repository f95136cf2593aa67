package pipeline

import (
	"fmt"
	"time"

	"github.com/callvox/painel/backend/internal/types"
)

// ComputeStats derives the scalar dashboard KPIs from the final ordered
// agent list and the queue rollups. One linear pass per input; an empty
// agent list yields all zeros.
func ComputeStats(agents []types.AgentView, queues []types.TransformedQueue) types.Stats {
	stats := types.Stats{TotalAgents: len(agents)}

	for _, agent := range agents {
		switch agent.StatusCode {
		case types.StatusRinging:
			stats.Ringing++
		case types.StatusWaiting:
			stats.Waiting++
		default:
			info, known := types.LookupStatus(agent.StatusCode)
			if !known {
				continue
			}
			switch info.Category {
			case types.CategoryAvailable:
				stats.Available++
			case types.CategoryBusy:
				stats.Busy++
			case types.CategoryPaused:
				stats.Paused++
			case types.CategoryUnavailable:
				stats.Unavailable++
			}
		}
	}

	for _, queue := range queues {
		stats.TotalQueueSize += queue.QueueSize
	}

	return stats
}

// FormatElapsed renders a duration as hh:mm:ss for the status timer
// column. Negative durations (clock skew between feed and server) render
// as zero.
func FormatElapsed(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	total := int(d.Seconds())
	return fmt.Sprintf("%02d:%02d:%02d", total/3600, (total%3600)/60, total%60)
}
