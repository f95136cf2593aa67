package pipeline

import (
	"math"
	"strconv"

	"github.com/callvox/painel/backend/internal/types"
)

// CombineOptions control which queues make it into the combined view.
type CombineOptions struct {
	// OnlyFromStatus excludes queues that appear in the totals feed but
	// have no status-map entry.
	OnlyFromStatus bool
	// OnlyWithAgents drops combined records whose status groups hold zero
	// members.
	OnlyWithAgents bool
}

// CombinedQueueRecord joins one queue's status groups with its traffic
// totals. Totals default to zero when the totals feed has no entry yet.
type CombinedQueueRecord struct {
	Queue  string
	Groups []types.StatusGroup
	Totals types.QueueTotals
}

// Combine joins the normalized status map with the totals feed by queue id.
// Every queue present in the status map is always emitted; queues known
// only from totals are included with empty groups unless OnlyFromStatus
// is set.
func Combine(status QueueStatusMap, totals map[string]types.QueueTotals, opts CombineOptions) map[string]CombinedQueueRecord {
	out := make(map[string]CombinedQueueRecord, len(status))

	for queue, groups := range status {
		rec := CombinedQueueRecord{Queue: queue, Groups: groups}
		if t, ok := totals[queue]; ok {
			rec.Totals = t
		} else {
			rec.Totals = types.QueueTotals{Queue: queue}
		}
		out[queue] = rec
	}

	if !opts.OnlyFromStatus {
		for queue, t := range totals {
			if _, ok := out[queue]; ok {
				continue
			}
			out[queue] = CombinedQueueRecord{Queue: queue, Totals: t}
		}
	}

	if opts.OnlyWithAgents {
		for queue, rec := range out {
			if memberCount(rec.Groups) == 0 {
				delete(out, queue)
			}
		}
	}

	return out
}

func memberCount(groups []types.StatusGroup) int {
	n := 0
	for _, g := range groups {
		n += len(g.Members)
	}
	return n
}

// ParseTotals coerces one raw totals record into typed form. Missing or
// unparseable fields become zero; NaN never reaches the output.
func ParseTotals(queue string, raw map[string]string) types.QueueTotals {
	return types.QueueTotals{
		Queue:         queue,
		AvgHandleTime: coerceFloat(raw["tma"]),
		AvgWaitTime:   coerceFloat(raw["tme"]),
		Abandoned:     coerceInt(raw["abandonadas"]),
		Answered:      coerceInt(raw["atendidas"]),
		Waiting:       coerceInt(raw["aguardando"]),
	}
}

func coerceFloat(s string) float64 {
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0
	}
	return f
}

func coerceInt(s string) int {
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0
	}
	return n
}
