package pipeline

import (
	"sort"

	"github.com/callvox/painel/backend/internal/types"
)

// TransformQueues converts combined records into display-ready queue
// summaries, joined with the authoritative queue metadata by id. A queue
// with no metadata match keeps its raw id as display name. Members in
// unrecognized statuses contribute to no category bucket, so TotalAgents
// only counts members routed to a known category.
func TransformQueues(combined map[string]CombinedQueueRecord, meta []types.QueueMeta) []types.TransformedQueue {
	names := make(map[string]string, len(meta))
	for _, m := range meta {
		names[m.ID] = m.Name
	}

	out := make([]types.TransformedQueue, 0, len(combined))
	for queue, rec := range combined {
		tq := types.TransformedQueue{
			ID:        queue,
			Name:      queue,
			QueueSize: rec.Totals.Waiting,
			Groups:    rec.Groups,
			Totals:    rec.Totals,
		}
		if name, ok := names[queue]; ok {
			tq.Name = name
		}

		for _, group := range rec.Groups {
			info, known := types.LookupStatus(group.Status)
			if !known {
				continue
			}
			n := len(group.Members)
			switch info.Category {
			case types.CategoryAvailable:
				tq.Available += n
			case types.CategoryBusy:
				tq.Busy += n
			case types.CategoryPaused:
				tq.Paused += n
			case types.CategoryUnavailable:
				tq.Unavailable += n
			}
		}
		tq.TotalAgents = tq.Available + tq.Busy + tq.Paused + tq.Unavailable

		out = append(out, tq)
	}

	sort.Slice(out, func(i, j int) bool {
		if out[i].Name != out[j].Name {
			return out[i].Name < out[j].Name
		}
		return out[i].ID < out[j].ID
	})
	return out
}

// VisibleQueues applies the consumer-side filter: only queues registered
// in the metadata store and holding at least one counted member are shown.
func VisibleQueues(queues []types.TransformedQueue, meta []types.QueueMeta) []types.TransformedQueue {
	known := make(map[string]bool, len(meta))
	for _, m := range meta {
		known[m.ID] = true
	}

	out := make([]types.TransformedQueue, 0, len(queues))
	for _, q := range queues {
		if known[q.ID] && q.TotalAgents > 0 {
			out = append(out, q)
		}
	}
	return out
}
