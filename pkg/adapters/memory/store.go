package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/aretw0/statescript/pkg/domain"
	"gopkg.in/yaml.v3"
)

// Store implements ports.GraphStore in memory.
// Safe for concurrent use.
type Store struct {
	data map[string][]byte
	mu   sync.RWMutex
}

// NewStore creates an empty in-memory store.
func NewStore() *Store {
	return &Store{
		data: make(map[string][]byte),
	}
}

// NewLoader creates a store holding raw documents (JSON or YAML).
func NewLoader(data map[string]string) *Store {
	s := NewStore()
	for k, v := range data {
		s.data[k] = []byte(v)
	}
	return s
}

// NewFromGraphs creates a store from domain graphs, keyed by graph name.
// This handles serialization automatically, improving DX for tests.
func NewFromGraphs(graphs ...*domain.Graph) (*Store, error) {
	s := NewStore()
	for _, g := range graphs {
		if g == nil || g.Name == "" {
			return nil, fmt.Errorf("graph missing name")
		}
		data, err := yaml.Marshal(g)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal graph %s: %w", g.Name, err)
		}
		s.data[g.Name] = data
	}
	return s, nil
}

// GetGraph returns a copy of the stored document.
func (s *Store) GetGraph(_ context.Context, name string) ([]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	content, ok := s.data[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", domain.ErrGraphNotFound, name)
	}
	return append([]byte(nil), content...), nil
}

// ListGraphs returns all graph names.
func (s *Store) ListGraphs(_ context.Context) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	names := make([]string, 0, len(s.data))
	for k := range s.data {
		names = append(names, k)
	}
	sort.Strings(names) // Deterministic order
	return names, nil
}

// SaveGraph stores a copy of data.
func (s *Store) SaveGraph(_ context.Context, name string, data []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data[name] = append([]byte(nil), data...)
	return nil
}

// DeleteGraph removes a graph.
func (s *Store) DeleteGraph(_ context.Context, name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.data, name)
	return nil
}
