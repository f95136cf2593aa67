package directory

import (
	"context"
	"testing"
	"time"

	"github.com/callvox/painel/backend/internal/types"
	"github.com/rs/zerolog"
)

func newMemoryStore(ttl time.Duration) *Store {
	return NewStore(nil, ttl, zerolog.Nop())
}

func TestSetOnlineAndSnapshot(t *testing.T) {
	s := newMemoryStore(time.Minute)
	ctx := context.Background()

	if err := s.SetOnline(ctx, types.DirectoryEntry{Login: "maria", Ramal: "1002"}); err != nil {
		t.Fatalf("SetOnline: %v", err)
	}
	if err := s.SetOnline(ctx, types.DirectoryEntry{Login: "joao", Ramal: "1001", Reason: "Almoço"}); err != nil {
		t.Fatalf("SetOnline: %v", err)
	}

	snap := s.Snapshot()
	if len(snap) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(snap))
	}
	// sorted by login
	if snap[0].Login != "joao" || snap[1].Login != "maria" {
		t.Errorf("unexpected order: %v, %v", snap[0].Login, snap[1].Login)
	}
	if snap[0].Reason != "Almoço" {
		t.Errorf("expected reason preserved, got %q", snap[0].Reason)
	}
	if snap[0].LastSeen.IsZero() {
		t.Error("LastSeen must be stamped on registration")
	}
}

func TestSetOffline(t *testing.T) {
	s := newMemoryStore(time.Minute)
	ctx := context.Background()

	s.SetOnline(ctx, types.DirectoryEntry{Login: "joao"})
	s.SetOffline(ctx, "joao")

	if s.Count() != 0 {
		t.Errorf("expected empty store after logout, got %d", s.Count())
	}
}

func TestHeartbeatUnknownLoginIgnored(t *testing.T) {
	s := newMemoryStore(time.Minute)
	s.Heartbeat(context.Background(), "ghost")
	if s.Count() != 0 {
		t.Error("heartbeat for unknown login must not create an entry")
	}
}

func TestExpireStale(t *testing.T) {
	s := newMemoryStore(10 * time.Millisecond)
	ctx := context.Background()

	s.SetOnline(ctx, types.DirectoryEntry{Login: "joao"})
	time.Sleep(20 * time.Millisecond)
	s.SetOnline(ctx, types.DirectoryEntry{Login: "maria"})

	removed := s.ExpireStale()
	if removed != 1 {
		t.Errorf("expected 1 stale entry removed, got %d", removed)
	}
	if s.Count() != 1 {
		t.Errorf("expected 1 live entry, got %d", s.Count())
	}
	if s.Snapshot()[0].Login != "maria" {
		t.Error("the fresh entry must survive")
	}
}
