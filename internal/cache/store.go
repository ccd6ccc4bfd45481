package cache

import (
	"context"
	"encoding/json"
	"time"

	gocache "github.com/patrickmn/go-cache"
	"github.com/redis/go-redis/v9"
)

// Store keeps JSON-serialisable values for a fixed TTL.
type Store interface {
	Get(ctx context.Context, key string, out any) bool
	Set(ctx context.Context, key string, value any)
}

// RedisStore caches values in Redis as JSON.
type RedisStore struct {
	client *redis.Client
	ttl    time.Duration
	prefix string
}

func NewRedisStore(client *redis.Client, ttl time.Duration) *RedisStore {
	return &RedisStore{client: client, ttl: ttl, prefix: "slavemarket:"}
}

func (s *RedisStore) Get(ctx context.Context, key string, out any) bool {
	if s.client == nil || s.ttl <= 0 {
		return false
	}
	val, err := s.client.Get(ctx, s.prefix+key).Result()
	if err != nil {
		return false
	}
	return json.Unmarshal([]byte(val), out) == nil
}

func (s *RedisStore) Set(ctx context.Context, key string, value any) {
	if s.client == nil || s.ttl <= 0 {
		return
	}
	data, err := json.Marshal(value)
	if err != nil {
		return
	}
	_ = s.client.Set(ctx, s.prefix+key, data, s.ttl).Err()
}

// MemoryStore caches values in process. Values are stored encoded so callers
// never share pointers with the cache.
type MemoryStore struct {
	c *gocache.Cache
}

func NewMemoryStore(ttl time.Duration) *MemoryStore {
	return &MemoryStore{c: gocache.New(ttl, 2*ttl)}
}

func (s *MemoryStore) Get(_ context.Context, key string, out any) bool {
	val, ok := s.c.Get(key)
	if !ok {
		return false
	}
	data, ok := val.([]byte)
	if !ok {
		return false
	}
	return json.Unmarshal(data, out) == nil
}

func (s *MemoryStore) Set(_ context.Context, key string, value any) {
	data, err := json.Marshal(value)
	if err != nil {
		return
	}
	s.c.SetDefault(key, data)
}
