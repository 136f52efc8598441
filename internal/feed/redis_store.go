package feed

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"
)

// RedisStoreConfig describes the redis-backed feed.
type RedisStoreConfig struct {
	Address  string
	Password string
	DB       int
	Key      string
	Capacity int
}

// RedisStore keeps the feed in a redis list so several daemon instances can
// share one "global live feed". LPUSH preserves newest-first order and LTRIM
// enforces the cap.
type RedisStore struct {
	client   *redis.Client
	key      string
	capacity int
}

// NewRedisStore connects to redis and seeds the feed when the list is empty.
func NewRedisStore(cfg RedisStoreConfig, seed []Entry) (*RedisStore, error) {
	if cfg.Address == "" {
		return nil, errors.New("redis address cannot be empty")
	}
	key := cfg.Key
	if key == "" {
		key = "truthchain:feed"
	}
	capacity := cfg.Capacity
	if capacity <= 0 {
		capacity = defaultCapacity
	}

	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Address,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
	ctx := context.Background()
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("connect to redis: %w", err)
	}

	store := &RedisStore{client: client, key: key, capacity: capacity}
	length, err := client.LLen(ctx, key).Result()
	if err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("inspect feed list: %w", err)
	}
	if length == 0 {
		// Seed oldest-first so the list ends up newest-first.
		for i := len(seed) - 1; i >= 0; i-- {
			if err := store.Prepend(ctx, seed[i]); err != nil {
				_ = client.Close()
				return nil, err
			}
		}
	}
	return store, nil
}

// Prepend pushes the entry to the head of the list and trims to capacity.
func (s *RedisStore) Prepend(ctx context.Context, entry Entry) error {
	payload, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("encode feed entry: %w", err)
	}
	if err := s.client.LPush(ctx, s.key, payload).Err(); err != nil {
		return fmt.Errorf("push feed entry: %w", err)
	}
	if err := s.client.LTrim(ctx, s.key, 0, int64(s.capacity-1)).Err(); err != nil {
		return fmt.Errorf("trim feed list: %w", err)
	}
	return nil
}

// List returns the feed newest first.
func (s *RedisStore) List(ctx context.Context) ([]Entry, error) {
	values, err := s.client.LRange(ctx, s.key, 0, int64(s.capacity-1)).Result()
	if err != nil {
		return nil, fmt.Errorf("read feed list: %w", err)
	}
	entries := make([]Entry, 0, len(values))
	for _, value := range values {
		var entry Entry
		if err := json.Unmarshal([]byte(value), &entry); err != nil {
			return nil, fmt.Errorf("decode feed entry: %w", err)
		}
		entries = append(entries, entry)
	}
	return entries, nil
}

// Close releases the redis connection.
func (s *RedisStore) Close() error {
	if s == nil || s.client == nil {
		return nil
	}
	return s.client.Close()
}

var _ Store = (*RedisStore)(nil)
