package metadata

import (
	"context"
	"fmt"
	"sync"

	"github.com/callvox/painel/backend/internal/types"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
)

// Store holds the authoritative queue registrations, fetched from
// Postgres on demand. Fetch state (loading flag, last error string) is
// exposed to the UI verbatim; a failed refresh keeps the previous list so
// the dashboard degrades to stale names instead of blanking.
type Store struct {
	pool   *pgxpool.Pool
	logger zerolog.Logger

	mu      sync.RWMutex
	queues  []types.QueueMeta
	loading bool
	lastErr string
}

// NewStore creates a metadata store backed by a pgx pool.
func NewStore(pool *pgxpool.Pool, logger zerolog.Logger) *Store {
	return &Store{
		pool:   pool,
		logger: logger.With().Str("component", "metadata").Logger(),
	}
}

// Connect opens a pgx pool from a connection string and verifies it.
func Connect(ctx context.Context, url string) (*pgxpool.Pool, error) {
	pool, err := pgxpool.New(ctx, url)
	if err != nil {
		return nil, fmt.Errorf("create postgres pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}
	return pool, nil
}

// Refresh reloads the queue list. Concurrent callers are serialized by
// the loading flag; the second caller returns immediately.
func (s *Store) Refresh(ctx context.Context) {
	s.mu.Lock()
	if s.loading {
		s.mu.Unlock()
		return
	}
	s.loading = true
	s.mu.Unlock()

	queues, err := s.fetch(ctx)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.loading = false
	if err != nil {
		s.lastErr = err.Error()
		s.logger.Error().Err(err).Msg("queue metadata refresh failed")
		return
	}
	s.lastErr = ""
	s.queues = queues
	s.logger.Info().Int("queues", len(queues)).Msg("queue metadata refreshed")
}

func (s *Store) fetch(ctx context.Context) ([]types.QueueMeta, error) {
	if s.pool == nil {
		return nil, fmt.Errorf("postgres not configured")
	}
	rows, err := s.pool.Query(ctx, `
		SELECT id, name
		FROM queues
		WHERE active
		ORDER BY name
	`)
	if err != nil {
		return nil, fmt.Errorf("query queues: %w", err)
	}
	defer rows.Close()

	var queues []types.QueueMeta
	for rows.Next() {
		var q types.QueueMeta
		if err := rows.Scan(&q.ID, &q.Name); err != nil {
			return nil, fmt.Errorf("scan queue row: %w", err)
		}
		queues = append(queues, q)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate queue rows: %w", err)
	}
	return queues, nil
}

// Queues returns the last successfully fetched list.
func (s *Store) Queues() []types.QueueMeta {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]types.QueueMeta, len(s.queues))
	copy(out, s.queues)
	return out
}

// Loading reports whether a refresh is in flight.
func (s *Store) Loading() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.loading
}

// Err returns the last refresh error message, empty when the last
// refresh succeeded.
func (s *Store) Err() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.lastErr
}
