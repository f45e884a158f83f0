// Package redis implements SessionStore and DistributedLocker backends on
// Redis, for deployments running more than one portal instance.
package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/fewston/stile/pkg/domain"
	backend "github.com/redis/go-redis/v9"
)

// Store implements ports.SessionStore using Redis. Sessions are stored as
// JSON values with an optional TTL, plus a ZSET index scored by expiry for
// listing with lazy cleanup.
type Store[D any] struct {
	client *backend.Client
	prefix string
	ttl    time.Duration
}

// Option configures the Store.
type Option[D any] func(*Store[D])

// WithTTL sets the expiration for sessions. Zero means no expiration.
func WithTTL[D any](ttl time.Duration) Option[D] {
	return func(s *Store[D]) { s.ttl = ttl }
}

// WithPrefix sets the key prefix for sessions.
func WithPrefix[D any](prefix string) Option[D] {
	return func(s *Store[D]) { s.prefix = prefix }
}

// New creates a Redis store with its own client.
func New[D any](address, password string, db int, opts ...Option[D]) *Store[D] {
	client := backend.NewClient(&backend.Options{
		Addr:     address,
		Password: password,
		DB:       db,
	})
	return NewFromClient[D](client, opts...)
}

// NewFromClient creates a Redis store from an existing client.
func NewFromClient[D any](client *backend.Client, opts ...Option[D]) *Store[D] {
	store := &Store[D]{
		client: client,
		prefix: "stile:session:",
	}
	for _, opt := range opts {
		opt(store)
	}
	return store
}

func (s *Store[D]) key(sessionKey string) string {
	return s.prefix + sessionKey
}

func (s *Store[D]) indexKey() string {
	return s.prefix + "index"
}

// Save persists the session to Redis.
func (s *Store[D]) Save(ctx context.Context, key string, sess *domain.Session[D]) error {
	data, err := json.Marshal(sess)
	if err != nil {
		return fmt.Errorf("failed to marshal session: %w", err)
	}

	pipe := s.client.Pipeline()
	pipe.Set(ctx, s.key(key), data, s.ttl)

	// Index score is the expiry instant; sessions without TTL sort far in
	// the future so lazy pruning never touches them.
	score := float64(time.Now().Add(s.ttl).Unix())
	if s.ttl == 0 {
		score = 4102444800 // 2100-01-01
	}
	pipe.ZAdd(ctx, s.indexKey(), backend.Z{Score: score, Member: key})

	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to save to redis: %w", err)
	}
	return nil
}

// Load retrieves the session from Redis.
func (s *Store[D]) Load(ctx context.Context, key string) (*domain.Session[D], error) {
	val, err := s.client.Get(ctx, s.key(key)).Result()
	if err != nil {
		if err == backend.Nil {
			return nil, domain.ErrSessionNotFound
		}
		return nil, fmt.Errorf("failed to get from redis: %w", err)
	}

	var sess domain.Session[D]
	if err := json.Unmarshal([]byte(val), &sess); err != nil {
		return nil, fmt.Errorf("failed to unmarshal session: %w", err)
	}
	return &sess, nil
}

// Delete removes the session.
func (s *Store[D]) Delete(ctx context.Context, key string) error {
	pipe := s.client.Pipeline()
	pipe.Del(ctx, s.key(key))
	pipe.ZRem(ctx, s.indexKey(), key)

	_, err := pipe.Exec(ctx)
	return err
}

// List returns live session keys, pruning expired index entries first.
func (s *Store[D]) List(ctx context.Context) ([]string, error) {
	now := float64(time.Now().Unix())
	if err := s.client.ZRemRangeByScore(ctx, s.indexKey(), "-inf", fmt.Sprintf("%f", now)).Err(); err != nil {
		return nil, fmt.Errorf("failed to prune expired sessions: %w", err)
	}

	keys, err := s.client.ZRange(ctx, s.indexKey(), 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to list sessions: %w", err)
	}
	return keys, nil
}

// Close closes the redis client.
func (s *Store[D]) Close() error {
	return s.client.Close()
}
