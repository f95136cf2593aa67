package pipeline

import (
	"testing"

	"github.com/callvox/painel/backend/internal/types"
)

func combinedFixture() map[string]CombinedQueueRecord {
	return map[string]CombinedQueueRecord{
		"10": {
			Queue: "10",
			Groups: []types.StatusGroup{
				{Status: types.StatusAvailable, Members: []types.RawMemberEntry{
					member("10", "joao:Joao Silva", "SIP/1001", "0"),
					member("10", "ana:Ana Paula", "SIP/1002", "0"),
				}},
				{Status: types.StatusInUse, Members: []types.RawMemberEntry{
					member("10", "maria:Maria Souza", "SIP/1003", "0"),
				}},
				{Status: types.StatusPaused, Members: []types.RawMemberEntry{
					member("10", "rui:Rui Costa", "SIP/1004", "1"),
				}},
				{Status: types.StatusUnavailable, Members: []types.RawMemberEntry{
					member("10", "leo:Leo Dias", "SIP/1005", "0"),
				}},
			},
			Totals: types.QueueTotals{Queue: "10", Waiting: 4},
		},
	}
}

func TestTransformQueuesCounts(t *testing.T) {
	meta := []types.QueueMeta{{ID: "10", Name: "Suporte"}}

	out := TransformQueues(combinedFixture(), meta)
	if len(out) != 1 {
		t.Fatalf("expected 1 queue, got %d", len(out))
	}

	q := out[0]
	if q.Name != "Suporte" {
		t.Errorf("expected name Suporte, got %q", q.Name)
	}
	if q.Available != 2 || q.Busy != 1 || q.Paused != 1 || q.Unavailable != 1 {
		t.Errorf("unexpected counts: %+v", q)
	}
	if q.TotalAgents != q.Available+q.Busy+q.Paused+q.Unavailable {
		t.Errorf("total %d does not equal sum of categories", q.TotalAgents)
	}
	if q.QueueSize != 4 {
		t.Errorf("expected queueSize 4, got %d", q.QueueSize)
	}
}

func TestTransformQueuesUnknownStatusUncounted(t *testing.T) {
	combined := map[string]CombinedQueueRecord{
		"10": {
			Queue: "10",
			Groups: []types.StatusGroup{
				{Status: "42", Members: []types.RawMemberEntry{
					member("10", "joao:Joao Silva", "SIP/1001", "0"),
				}},
			},
		},
	}

	out := TransformQueues(combined, nil)
	if out[0].TotalAgents != 0 {
		t.Errorf("unrecognized status must contribute to no bucket, got total %d", out[0].TotalAgents)
	}
}

func TestTransformQueuesFallsBackToRawID(t *testing.T) {
	out := TransformQueues(combinedFixture(), nil)
	if out[0].Name != "10" {
		t.Errorf("expected raw id as name, got %q", out[0].Name)
	}
}

func TestVisibleQueues(t *testing.T) {
	meta := []types.QueueMeta{{ID: "10", Name: "Suporte"}, {ID: "30", Name: "Vendas"}}
	queues := []types.TransformedQueue{
		{ID: "10", TotalAgents: 3},
		{ID: "20", TotalAgents: 2},       // not configured
		{ID: "30", TotalAgents: 0},       // no members
	}

	out := VisibleQueues(queues, meta)
	if len(out) != 1 || out[0].ID != "10" {
		t.Errorf("expected only queue 10 visible, got %+v", out)
	}
}

// A queue that exists only in the totals feed must never reach the
// dashboard: it has zero counted members even when included by the
// combiner.
func TestTotalsOnlyQueueSuppressed(t *testing.T) {
	totals := map[string]types.QueueTotals{"20": {Queue: "20", Answered: 9}}
	combined := Combine(QueueStatusMap{}, totals, CombineOptions{})
	meta := []types.QueueMeta{{ID: "20", Name: "Retenção"}}

	out := VisibleQueues(TransformQueues(combined, meta), meta)
	if len(out) != 0 {
		t.Errorf("totals-only queue must be suppressed, got %+v", out)
	}
}
