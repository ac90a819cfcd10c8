// Package redis persists locale preferences in Redis.
package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/aretw0/epsilon/pkg/domain"
	backend "github.com/redis/go-redis/v9"
)

// DefaultPrefix namespaces every key written by the store.
const DefaultPrefix = "epsilon:locale:"

// Store implements ports.PreferenceStore using Redis.
type Store struct {
	client *backend.Client
	prefix string
	ttl    time.Duration
}

type Option func(*Store)

// WithTTL sets the expiration of preferences.
func WithTTL(ttl time.Duration) Option {
	return func(s *Store) {
		s.ttl = ttl
	}
}

// WithPrefix sets the key prefix.
func WithPrefix(prefix string) Option {
	return func(s *Store) {
		if prefix != "" {
			s.prefix = prefix
		}
	}
}

// New creates a new Redis store with options.
func New(address, password string, db int, opts ...Option) *Store {
	return NewFromClient(backend.NewClient(&backend.Options{
		Addr:     address,
		Password: password,
		DB:       db,
	}), opts...)
}

// NewFromClient creates a new Redis store from an existing client.
func NewFromClient(client *backend.Client, opts ...Option) *Store {
	store := &Store{
		client: client,
		prefix: DefaultPrefix,
		ttl:    0, // No expiration by default
	}

	for _, opt := range opts {
		opt(store)
	}

	return store
}

func (s *Store) key(clientID string) string {
	return s.prefix + clientID
}

func (s *Store) indexKey() string {
	return s.prefix + "index"
}

// Ping checks connectivity.
func (s *Store) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}

// Save persists the preference (SET key lang EX ttl) and indexes the client.
func (s *Store) Save(ctx context.Context, clientID, lang string) error {
	pipe := s.client.Pipeline()

	pipe.Set(ctx, s.key(clientID), lang, s.ttl)

	// Score = expiry time, used for lazy pruning in List.
	score := float64(time.Now().Add(s.ttl).Unix())
	if s.ttl == 0 {
		score = 4102444800 // 2100-01-01
	}
	pipe.ZAdd(ctx, s.indexKey(), backend.Z{
		Score:  score,
		Member: clientID,
	})

	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to save to redis: %w", err)
	}
	return nil
}

// Load retrieves the preference from Redis.
func (s *Store) Load(ctx context.Context, clientID string) (string, error) {
	val, err := s.client.Get(ctx, s.key(clientID)).Result()
	if err != nil {
		if errors.Is(err, backend.Nil) {
			return "", domain.ErrPreferenceNotFound
		}
		return "", fmt.Errorf("failed to get from redis: %w", err)
	}
	return val, nil
}

// Delete removes the preference.
func (s *Store) Delete(ctx context.Context, clientID string) error {
	pipe := s.client.Pipeline()

	pipe.Del(ctx, s.key(clientID))
	pipe.ZRem(ctx, s.indexKey(), clientID)

	_, err := pipe.Exec(ctx)
	return err
}

// List returns clients with a live preference, pruning expired index entries.
func (s *Store) List(ctx context.Context) ([]string, error) {
	now := float64(time.Now().Unix())

	err := s.client.ZRemRangeByScore(ctx, s.indexKey(), "-inf", fmt.Sprintf("%f", now)).Err()
	if err != nil {
		return nil, fmt.Errorf("failed to prune expired preferences: %w", err)
	}

	clients, err := s.client.ZRange(ctx, s.indexKey(), 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to list preferences: %w", err)
	}
	return clients, nil
}

// Close closes the redis client.
func (s *Store) Close() error {
	return s.client.Close()
}
