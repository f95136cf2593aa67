package pipeline

import (
	"time"

	"github.com/callvox/painel/backend/internal/types"
)

// IdentityKey builds the deduplication key for an agent. The key is stable
// across snapshots as long as login and ramal do not change; a ramal
// change mid-session yields a new row until the stale one drops out.
func IdentityKey(login, ramal string) string {
	return login + "__" + ramal
}

// FlattenResult carries the deduplicated agent map plus the identity keys
// in first-seen computation order, which feeds the stable ordering layer.
type FlattenResult struct {
	Agents map[string]*types.AgentView
	Keys   []string
}

// Flatten explodes every (queue, status group, member) triple into one
// agent candidate, enriches it from the panel directory, and merges
// candidates sharing an identity key into a single view record.
func Flatten(queues []types.TransformedQueue, directory map[string]types.DirectoryEntry) FlattenResult {
	res := FlattenResult{Agents: make(map[string]*types.AgentView)}

	for _, queue := range queues {
		ref := types.QueueRef{ID: queue.ID, Name: queue.Name}
		for _, group := range queue.Groups {
			for _, member := range group.Members {
				parsed, ok := ParseMember(member.MemberName)
				if !ok {
					continue
				}

				candidate := newCandidate(parsed, member, group.Status, ref)
				if entry, online := directory[parsed.Login]; online {
					candidate.LoggedIn = true
					candidate.RealRamal = entry.Ramal
					candidate.Reason = entry.Reason
				}

				if existing, seen := res.Agents[candidate.Key]; seen {
					res.Agents[candidate.Key] = mergeCandidates(existing, candidate)
				} else {
					res.Agents[candidate.Key] = candidate
					res.Keys = append(res.Keys, candidate.Key)
				}
			}
		}
	}

	return res
}

func newCandidate(parsed ParsedMember, member types.RawMemberEntry, status string, queue types.QueueRef) *types.AgentView {
	ramal := ParseInterface(member.Interface)

	view := &types.AgentView{
		Key:        IdentityKey(parsed.Login, ramal),
		Login:      parsed.Login,
		Name:       parsed.DisplayName,
		Initials:   Initials(parsed.DisplayName),
		Ramal:      ramal,
		StatusCode: status,
		Queues:     []types.QueueRef{queue},
	}

	if info, known := types.LookupStatus(status); known {
		view.StatusLabel = info.Label
		view.StatusColor = info.Color
	} else {
		view.StatusLabel = status
	}

	if ts, err := time.Parse(time.RFC3339, member.EventTime); err == nil {
		view.EventTime = ts
	}

	return view
}

// mergeCandidates folds two candidates with the same identity key into
// one record. Queue memberships are unioned; the status fields follow the
// candidate with the strictly greater event timestamp; directory
// enrichment sticks once any candidate saw the agent online. The merge is
// commutative and associative over candidates with distinct timestamps,
// so grouping order does not matter.
func mergeCandidates(a, b *types.AgentView) *types.AgentView {
	winner, loser := a, b
	if b.EventTime.After(a.EventTime) {
		winner, loser = b, a
	}

	merged := *winner
	merged.Queues = unionQueues(a.Queues, b.Queues)
	merged.LoggedIn = a.LoggedIn || b.LoggedIn

	if !merged.LoggedIn {
		merged.RealRamal = ""
		merged.Reason = ""
	} else if winner.RealRamal == "" && loser.RealRamal != "" {
		merged.RealRamal = loser.RealRamal
		merged.Reason = loser.Reason
	}

	return &merged
}

func unionQueues(a, b []types.QueueRef) []types.QueueRef {
	seen := make(map[string]bool, len(a)+len(b))
	out := make([]types.QueueRef, 0, len(a)+len(b))
	for _, q := range a {
		if !seen[q.ID] {
			seen[q.ID] = true
			out = append(out, q)
		}
	}
	for _, q := range b {
		if !seen[q.ID] {
			seen[q.ID] = true
			out = append(out, q)
		}
	}
	return out
}
