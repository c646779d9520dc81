package memory

import (
	"context"
	"maps"
	"slices"
	"sync"

	"github.com/PabloGalante/studybuddy/internal/domain"
)

// StateStore keeps client state in a map. Nothing survives the process.
type StateStore struct {
	mu     sync.RWMutex
	values map[string]string
}

func NewStateStore() *StateStore {
	return &StateStore{
		values: make(map[string]string),
	}
}

func (s *StateStore) Get(_ context.Context, key string) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	v, ok := s.values[key]
	if !ok {
		return "", domain.ErrKeyNotFound
	}
	return v, nil
}

func (s *StateStore) Set(_ context.Context, key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.values[key] = value
	return nil
}

func (s *StateStore) Delete(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.values, key)
	return nil
}

func (s *StateStore) Keys(_ context.Context) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return slices.Sorted(maps.Keys(s.values)), nil
}
