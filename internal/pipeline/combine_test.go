package pipeline

import (
	"testing"

	"github.com/callvox/painel/backend/internal/types"
)

func TestCombineDefaultsMissingTotals(t *testing.T) {
	status := QueueStatusMap{
		"10": {{Status: types.StatusAvailable, Label: "Disponível", Members: []types.RawMemberEntry{
			member("10", "joao:Joao Silva", "SIP/1001", "0"),
		}}},
	}

	out := Combine(status, nil, CombineOptions{})

	rec, ok := out["10"]
	if !ok {
		t.Fatal("queue 10 missing from combined output")
	}
	if rec.Totals.Answered != 0 || rec.Totals.Abandoned != 0 || rec.Totals.AvgHandleTime != 0 {
		t.Errorf("missing totals must default to zero, got %+v", rec.Totals)
	}
}

func TestCombineTotalsOnlyQueue(t *testing.T) {
	totals := map[string]types.QueueTotals{
		"20": {Queue: "20", Answered: 7, Abandoned: 2},
	}

	// Default mode includes totals-only queues with empty status groups.
	out := Combine(QueueStatusMap{}, totals, CombineOptions{})
	rec, ok := out["20"]
	if !ok {
		t.Fatal("expected totals-only queue 20 in output")
	}
	if len(rec.Groups) != 0 {
		t.Errorf("expected empty groups, got %d", len(rec.Groups))
	}
	if rec.Totals.Answered != 7 {
		t.Errorf("expected answered 7, got %d", rec.Totals.Answered)
	}

	// OnlyFromStatus excludes them entirely.
	out = Combine(QueueStatusMap{}, totals, CombineOptions{OnlyFromStatus: true})
	if _, ok := out["20"]; ok {
		t.Error("OnlyFromStatus must exclude totals-only queues")
	}
}

func TestCombineOnlyWithAgents(t *testing.T) {
	status := QueueStatusMap{
		"10": {{Status: types.StatusAvailable, Members: []types.RawMemberEntry{
			member("10", "joao:Joao Silva", "SIP/1001", "0"),
		}}},
	}
	totals := map[string]types.QueueTotals{
		"20": {Queue: "20", Answered: 3},
	}

	out := Combine(status, totals, CombineOptions{OnlyWithAgents: true})
	if _, ok := out["10"]; !ok {
		t.Error("queue with agents must survive OnlyWithAgents")
	}
	if _, ok := out["20"]; ok {
		t.Error("agentless queue must be filtered by OnlyWithAgents")
	}
}

func TestParseTotalsCoercion(t *testing.T) {
	tests := []struct {
		name string
		raw  map[string]string
		want types.QueueTotals
	}{
		{
			name: "all fields present",
			raw:  map[string]string{"tma": "180.5", "tme": "22", "abandonadas": "3", "atendidas": "41", "aguardando": "2"},
			want: types.QueueTotals{Queue: "10", AvgHandleTime: 180.5, AvgWaitTime: 22, Abandoned: 3, Answered: 41, Waiting: 2},
		},
		{
			name: "garbage and missing fields become zero",
			raw:  map[string]string{"tma": "abc", "atendidas": ""},
			want: types.QueueTotals{Queue: "10"},
		},
		{
			name: "NaN and Inf literals become zero",
			raw:  map[string]string{"tma": "NaN", "tme": "+Inf", "atendidas": "7"},
			want: types.QueueTotals{Queue: "10", Answered: 7},
		},
		{
			name: "negative infinity becomes zero",
			raw:  map[string]string{"tma": "-Inf", "tme": "15.5"},
			want: types.QueueTotals{Queue: "10", AvgWaitTime: 15.5},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ParseTotals("10", tt.raw)
			if got != tt.want {
				t.Errorf("ParseTotals = %+v, want %+v", got, tt.want)
			}
		})
	}
}
