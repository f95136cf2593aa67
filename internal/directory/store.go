package directory

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/callvox/painel/backend/internal/types"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

const presencePrefix = "painel:presence:"

// Store is the online directory: which agents are currently signed into
// the web panel. The in-memory index is the read path for the pipeline;
// every entry is mirrored into Redis with a TTL so presence survives a
// backend restart and can be shared across instances. A nil Redis client
// degrades to memory-only operation.
type Store struct {
	mu      sync.RWMutex
	entries map[string]types.DirectoryEntry

	rdb    *redis.Client
	ttl    time.Duration
	logger zerolog.Logger
}

// NewStore creates a directory store. rdb may be nil.
func NewStore(rdb *redis.Client, ttl time.Duration, logger zerolog.Logger) *Store {
	return &Store{
		entries: make(map[string]types.DirectoryEntry),
		rdb:     rdb,
		ttl:     ttl,
		logger:  logger.With().Str("component", "directory").Logger(),
	}
}

// SetOnline registers or refreshes a signed-in agent.
func (s *Store) SetOnline(ctx context.Context, entry types.DirectoryEntry) error {
	entry.LastSeen = time.Now()

	s.mu.Lock()
	s.entries[entry.Login] = entry
	s.mu.Unlock()

	if s.rdb == nil {
		return nil
	}

	data, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("marshal presence entry: %w", err)
	}
	if err := s.rdb.Set(ctx, presencePrefix+entry.Login, data, s.ttl).Err(); err != nil {
		return fmt.Errorf("write presence entry: %w", err)
	}
	return nil
}

// Heartbeat refreshes an agent's last-seen time and Redis TTL. Unknown
// logins are ignored; the panel re-registers after a backend restart.
func (s *Store) Heartbeat(ctx context.Context, login string) {
	s.mu.Lock()
	entry, ok := s.entries[login]
	if ok {
		entry.LastSeen = time.Now()
		s.entries[login] = entry
	}
	s.mu.Unlock()

	if !ok || s.rdb == nil {
		return
	}
	if err := s.rdb.Expire(ctx, presencePrefix+login, s.ttl).Err(); err != nil {
		s.logger.Warn().Err(err).Str("login", login).Msg("failed to refresh presence ttl")
	}
}

// SetOffline removes a signed-out agent.
func (s *Store) SetOffline(ctx context.Context, login string) {
	s.mu.Lock()
	delete(s.entries, login)
	s.mu.Unlock()

	if s.rdb == nil {
		return
	}
	if err := s.rdb.Del(ctx, presencePrefix+login).Err(); err != nil {
		s.logger.Warn().Err(err).Str("login", login).Msg("failed to delete presence entry")
	}
}

// ExpireStale drops in-memory entries whose last heartbeat is older than
// the TTL. Redis handles its own expiry; this keeps the memory index from
// outliving it when a panel dies without a close frame.
func (s *Store) ExpireStale() int {
	threshold := time.Now().Add(-s.ttl)

	s.mu.Lock()
	defer s.mu.Unlock()

	removed := 0
	for login, entry := range s.entries {
		if entry.LastSeen.Before(threshold) {
			delete(s.entries, login)
			removed++
		}
	}
	return removed
}

// Snapshot returns all signed-in agents, sorted by login for stable output.
func (s *Store) Snapshot() []types.DirectoryEntry {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]types.DirectoryEntry, 0, len(s.entries))
	for _, entry := range s.entries {
		out = append(out, entry)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Login < out[j].Login })
	return out
}

// Count returns the number of signed-in agents.
func (s *Store) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entries)
}

// Warm loads surviving presence entries from Redis into the memory index,
// called once on startup.
func (s *Store) Warm(ctx context.Context) error {
	if s.rdb == nil {
		return nil
	}

	var cursor uint64
	loaded := 0
	for {
		keys, next, err := s.rdb.Scan(ctx, cursor, presencePrefix+"*", 100).Result()
		if err != nil {
			return fmt.Errorf("scan presence keys: %w", err)
		}

		for _, key := range keys {
			data, err := s.rdb.Get(ctx, key).Bytes()
			if err != nil {
				continue // expired between scan and get
			}
			var entry types.DirectoryEntry
			if err := json.Unmarshal(data, &entry); err != nil {
				s.logger.Warn().Err(err).Str("key", key).Msg("corrupt presence entry, dropping")
				s.rdb.Del(ctx, key)
				continue
			}
			if entry.Login == "" {
				entry.Login = strings.TrimPrefix(key, presencePrefix)
			}
			s.mu.Lock()
			s.entries[entry.Login] = entry
			s.mu.Unlock()
			loaded++
		}

		cursor = next
		if cursor == 0 {
			break
		}
	}

	if loaded > 0 {
		s.logger.Info().Int("entries", loaded).Msg("presence warmed from redis")
	}
	return nil
}
