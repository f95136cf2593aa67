package storage

import "github.com/callvox/painel/backend/internal/types"

// Store persists agent status transitions for history queries.
type Store interface {
	SaveStatusTransition(t types.StatusTransition) error
	GetAgentTransitions(login, dateKey string) ([]types.StatusTransition, error)
	GetTransitionsByDate(dateKey string) ([]types.StatusTransition, error)
	TruncateAll() error
}

// NoopStore discards all writes and returns empty results. Used when
// DynamoDB is disabled.
type NoopStore struct{}

func NewNoopStore() *NoopStore {
	return &NoopStore{}
}

func (s *NoopStore) SaveStatusTransition(t types.StatusTransition) error {
	return nil
}

func (s *NoopStore) GetAgentTransitions(login, dateKey string) ([]types.StatusTransition, error) {
	return []types.StatusTransition{}, nil
}

func (s *NoopStore) GetTransitionsByDate(dateKey string) ([]types.StatusTransition, error) {
	return []types.StatusTransition{}, nil
}

func (s *NoopStore) TruncateAll() error {
	return nil
}
