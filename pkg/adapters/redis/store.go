package redis

import (
	"context"
	"errors"
	"fmt"

	"github.com/aretw0/statescript/pkg/domain"
	backend "github.com/redis/go-redis/v9"
)

// Store implements ports.GraphStore using Redis. Each graph document is a
// string key; names are indexed in a sorted set so listing needs no SCAN.
type Store struct {
	client *backend.Client
	prefix string
}

type Option func(*Store)

// WithPrefix sets the key prefix for graphs.
func WithPrefix(prefix string) Option {
	return func(s *Store) {
		s.prefix = prefix
	}
}

// New creates a new Redis store with options.
func New(address, password string, db int, opts ...Option) *Store {
	rdb := backend.NewClient(&backend.Options{
		Addr:     address,
		Password: password,
		DB:       db,
	})
	return NewFromClient(rdb, opts...)
}

// NewFromClient creates a new Redis store from an existing client.
func NewFromClient(client *backend.Client, opts ...Option) *Store {
	store := &Store{
		client: client,
		prefix: "statescript:graph:",
	}
	for _, opt := range opts {
		opt(store)
	}
	return store
}

func (s *Store) key(name string) string {
	return s.prefix + name
}

func (s *Store) indexKey() string {
	return s.prefix + "index"
}

// SaveGraph stores the document and indexes its name.
func (s *Store) SaveGraph(ctx context.Context, name string, data []byte) error {
	if name == "" {
		return fmt.Errorf("graph name cannot be empty")
	}
	pipe := s.client.TxPipeline()
	pipe.Set(ctx, s.key(name), data, 0)
	// Equal scores keep the index in lexical order.
	pipe.ZAdd(ctx, s.indexKey(), backend.Z{Score: 0, Member: name})
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to save to redis: %w", err)
	}
	return nil
}

// GetGraph retrieves a document.
func (s *Store) GetGraph(ctx context.Context, name string) ([]byte, error) {
	val, err := s.client.Get(ctx, s.key(name)).Bytes()
	if err != nil {
		if errors.Is(err, backend.Nil) {
			return nil, fmt.Errorf("%w: %s", domain.ErrGraphNotFound, name)
		}
		return nil, fmt.Errorf("failed to get from redis: %w", err)
	}
	return val, nil
}

// DeleteGraph removes the document and its index entry.
func (s *Store) DeleteGraph(ctx context.Context, name string) error {
	pipe := s.client.TxPipeline()
	pipe.Del(ctx, s.key(name))
	pipe.ZRem(ctx, s.indexKey(), name)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to delete from redis: %w", err)
	}
	return nil
}

// ListGraphs returns the indexed graph names in lexical order.
func (s *Store) ListGraphs(ctx context.Context) ([]string, error) {
	names, err := s.client.ZRange(ctx, s.indexKey(), 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to list graphs: %w", err)
	}
	return names, nil
}

// Close closes the redis client.
func (s *Store) Close() error {
	return s.client.Close()
}
