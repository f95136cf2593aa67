package pipeline

import (
	"reflect"
	"testing"
)

func TestStableOrder(t *testing.T) {
	tests := []struct {
		name     string
		previous []string
		latest   []string
		want     []string
	}{
		{
			name:     "first run takes latest order",
			previous: nil,
			latest:   []string{"a", "b", "c"},
			want:     []string{"a", "b", "c"},
		},
		{
			name:     "dropped head, appended tail",
			previous: []string{"a", "b", "c"},
			latest:   []string{"b", "c", "d"},
			want:     []string{"b", "c", "d"},
		},
		{
			name:     "relative order preserved despite latest reshuffle",
			previous: []string{"a", "b", "c"},
			latest:   []string{"c", "a", "b"},
			want:     []string{"a", "b", "c"},
		},
		{
			name:     "multiple additions keep arrival order",
			previous: []string{"b"},
			latest:   []string{"x", "b", "y"},
			want:     []string{"b", "x", "y"},
		},
		{
			name:     "everything removed",
			previous: []string{"a", "b"},
			latest:   nil,
			want:     []string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := StableOrder(tt.previous, tt.latest)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("StableOrder(%v, %v) = %v, want %v", tt.previous, tt.latest, got, tt.want)
			}
		})
	}
}

func TestStableOrderDoesNotAliasInput(t *testing.T) {
	latest := []string{"a", "b"}
	got := StableOrder(nil, latest)
	latest[0] = "mutated"
	if got[0] != "a" {
		t.Error("returned order must not alias the latest slice")
	}
}
