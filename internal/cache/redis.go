package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/sourishdey2005/fraud--detection/internal/domain"
)

// RedisStore is a Redis-backed session store for multi-node deployments.
type RedisStore struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisStore creates a Redis session store and verifies the connection.
func NewRedisStore(cfg domain.SessionStoreConfig) (*RedisStore, error) {
	addr := cfg.RedisAddr
	if addr == "" {
		addr = "localhost:6379"
	}

	ttl := cfg.TTL
	if ttl <= 0 {
		ttl = time.Hour
	}

	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	return &RedisStore{client: client, ttl: ttl}, nil
}

// Get retrieves a session snapshot. Reading refreshes the session's TTL.
func (s *RedisStore) Get(ctx context.Context, sessionID string) (*domain.SessionState, error) {
	if sessionID == "" {
		return nil, fmt.Errorf("sessionID is required")
	}

	key := s.makeKey(sessionID)
	val, err := s.client.GetEx(ctx, key, s.ttl).Bytes()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	var state domain.SessionState
	if err := json.Unmarshal(val, &state); err != nil {
		return nil, fmt.Errorf("failed to decode session snapshot: %w", err)
	}
	return &state, nil
}

// Put stores a session snapshot with the configured TTL.
func (s *RedisStore) Put(ctx context.Context, state *domain.SessionState) error {
	if state == nil || state.ID == "" {
		return fmt.Errorf("session state with an id is required")
	}

	snapshot, err := json.Marshal(state)
	if err != nil {
		return fmt.Errorf("failed to encode session snapshot: %w", err)
	}
	return s.client.Set(ctx, s.makeKey(state.ID), snapshot, s.ttl).Err()
}

// Delete removes a session.
func (s *RedisStore) Delete(ctx context.Context, sessionID string) error {
	return s.client.Del(ctx, s.makeKey(sessionID)).Err()
}

// Ping checks Redis health.
func (s *RedisStore) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}

// Close closes the Redis connection.
func (s *RedisStore) Close() error {
	return s.client.Close()
}

func (s *RedisStore) makeKey(sessionID string) string {
	return "frauddetect:session:" + sessionID
}
