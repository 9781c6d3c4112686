package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const keyPrefix = "travelbuddy"

// RedisKV implements KV using Redis. Values are stored as JSON under
// travelbuddy:<kind>:<id> and every write refreshes the TTL.
type RedisKV[T any] struct {
	client *redis.Client
	kind   string
	ttl    time.Duration // Session TTL (time to live)
}

// NewRedisClient parses the URL and verifies the connection
func NewRedisClient(redisURL string) (*redis.Client, error) {
	opt, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse Redis URL: %w", err)
	}

	client := redis.NewClient(opt)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return client, nil
}

func NewRedisKV[T any](client *redis.Client, kind string, ttl time.Duration) *RedisKV[T] {
	return &RedisKV[T]{client: client, kind: kind, ttl: ttl}
}

// key generates the Redis key for one user
func (r *RedisKV[T]) key(id string) string {
	return fmt.Sprintf("%s:%s:%s", keyPrefix, r.kind, id)
}

func (r *RedisKV[T]) Get(ctx context.Context, id string) (T, bool, error) {
	var value T

	data, err := r.client.Get(ctx, r.key(id)).Bytes()
	if errors.Is(err, redis.Nil) {
		return value, false, nil
	}
	if err != nil {
		return value, false, fmt.Errorf("failed to load %s from Redis: %w", r.kind, err)
	}

	if err := json.Unmarshal(data, &value); err != nil {
		return value, false, fmt.Errorf("failed to parse %s data: %w", r.kind, err)
	}
	return value, true, nil
}

func (r *RedisKV[T]) Set(ctx context.Context, id string, value T) error {
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("failed to marshal %s: %w", r.kind, err)
	}

	if err := r.client.Set(ctx, r.key(id), data, r.ttl).Err(); err != nil {
		return fmt.Errorf("failed to save %s to Redis: %w", r.kind, err)
	}
	return nil
}

func (r *RedisKV[T]) Delete(ctx context.Context, id string) error {
	if err := r.client.Del(ctx, r.key(id)).Err(); err != nil {
		return fmt.Errorf("failed to clear %s: %w", r.kind, err)
	}
	return nil
}

// Count scans the keyspace for this kind. It is O(n) in the number of keys.
func (r *RedisKV[T]) Count(ctx context.Context) (int, error) {
	count := 0
	iter := r.client.Scan(ctx, 0, fmt.Sprintf("%s:%s:*", keyPrefix, r.kind), 100).Iterator()
	for iter.Next(ctx) {
		count++
	}
	if err := iter.Err(); err != nil {
		return 0, fmt.Errorf("failed to count %s keys: %w", r.kind, err)
	}
	return count, nil
}

// NewRedisBackend wires the four per-user stores to one Redis client.
func NewRedisBackend(client *redis.Client, ttl time.Duration) Backend {
	return Backend{
		Messages: NewRedisKV[[]Message](client, "session", ttl),
		Meta:     NewRedisKV[Meta](client, "meta", ttl),
		History:  NewRedisKV[[]Turn](client, "history", ttl),
		Context:  NewRedisKV[ContextMemory](client, "context", ttl),
	}
}
