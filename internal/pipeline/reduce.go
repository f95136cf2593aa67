package pipeline

import (
	"sort"

	"github.com/callvox/painel/backend/internal/types"
)

// QueueStatusMap is the normalized status view: queue id to the list of
// status groups that currently have members.
type QueueStatusMap map[string][]types.StatusGroup

// ReduceStatus folds the raw keyed status buckets into a per-queue map.
//
// Rules, in order:
//   - members whose name has no "login:Name" separator are dropped;
//   - members with no queue field are dropped;
//   - an available member with the paused flag set is reclassified under
//     the synthetic paused status instead of available;
//   - queues that end up with zero members are not emitted.
//
// This is best-effort display aggregation: malformed input is skipped,
// never surfaced as an error.
func ReduceStatus(buckets map[string]types.StatusBucket) QueueStatusMap {
	grouped := make(map[string]map[string][]types.RawMemberEntry)

	for _, bucket := range buckets {
		for _, member := range bucket.Members {
			if _, ok := ParseMember(member.MemberName); !ok {
				continue
			}
			queue := member.Queue
			if queue == "" {
				continue
			}

			status := bucket.Status
			if status == types.StatusAvailable && pausedFlag(member.Paused) {
				status = types.StatusPaused
			}

			if grouped[queue] == nil {
				grouped[queue] = make(map[string][]types.RawMemberEntry)
			}
			grouped[queue][status] = append(grouped[queue][status], member)
		}
	}

	out := make(QueueStatusMap, len(grouped))
	for queue, byStatus := range grouped {
		groups := make([]types.StatusGroup, 0, len(byStatus))
		for _, code := range types.StatusOrder {
			members, ok := byStatus[code]
			if !ok {
				continue
			}
			label := code
			if info, known := types.LookupStatus(code); known {
				label = info.Label
			}
			groups = append(groups, types.StatusGroup{Status: code, Label: label, Members: members})
			delete(byStatus, code)
		}
		// Statuses outside the catalog keep their raw code as label and
		// sort after the known ones.
		rest := make([]string, 0, len(byStatus))
		for code := range byStatus {
			rest = append(rest, code)
		}
		sort.Strings(rest)
		for _, code := range rest {
			groups = append(groups, types.StatusGroup{Status: code, Label: code, Members: byStatus[code]})
		}
		if len(groups) > 0 {
			out[queue] = groups
		}
	}
	return out
}

// pausedFlag accepts both the numeric and boolean spellings the manager
// interface uses across versions.
func pausedFlag(v string) bool {
	return v == "1" || v == "true"
}
