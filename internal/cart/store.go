package cart

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/go-redis/redis/v8"
)

const cartKeyPrefix = "kcafe:cart:"

// RedisStore keeps cart snapshots in Redis so a session survives page
// reloads and service restarts. Snapshots expire with the session TTL.
type RedisStore struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisStore(client *redis.Client, ttl time.Duration) *RedisStore {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &RedisStore{client: client, ttl: ttl}
}

func (s *RedisStore) key(sessionID string) string { return cartKeyPrefix + sessionID }

func (s *RedisStore) Load(ctx context.Context, sessionID string) (Cart, error) {
	b, err := s.client.Get(ctx, s.key(sessionID)).Bytes()
	if err == redis.Nil {
		return New(), nil
	}
	if err != nil {
		return Cart{}, fmt.Errorf("load cart: %w", err)
	}
	var c Cart
	if err := json.Unmarshal(b, &c); err != nil {
		// A corrupt snapshot is treated as an empty cart, same as the
		// original client did with unparsable local storage.
		return New(), nil
	}
	if c.Lines == nil {
		c.Lines = map[string]Line{}
	}
	return c, nil
}

func (s *RedisStore) Save(ctx context.Context, sessionID string, c Cart) error {
	b, err := json.Marshal(c)
	if err != nil {
		return err
	}
	if err := s.client.Set(ctx, s.key(sessionID), b, s.ttl).Err(); err != nil {
		return fmt.Errorf("save cart: %w", err)
	}
	return nil
}

func (s *RedisStore) Clear(ctx context.Context, sessionID string) error {
	if err := s.client.Del(ctx, s.key(sessionID)).Err(); err != nil {
		return fmt.Errorf("clear cart: %w", err)
	}
	return nil
}

// MemoryStore is the in-process Store used by tests and as a degraded mode
// when Redis is not configured.
type MemoryStore struct {
	mu    sync.Mutex
	carts map[string][]byte
}

func NewMemoryStore() *MemoryStore { return &MemoryStore{carts: map[string][]byte{}} }

func (s *MemoryStore) Load(_ context.Context, sessionID string) (Cart, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	b, ok := s.carts[sessionID]
	if !ok {
		return New(), nil
	}
	var c Cart
	if err := json.Unmarshal(b, &c); err != nil {
		return New(), nil
	}
	if c.Lines == nil {
		c.Lines = map[string]Line{}
	}
	return c, nil
}

func (s *MemoryStore) Save(_ context.Context, sessionID string, c Cart) error {
	b, err := json.Marshal(c)
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.carts[sessionID] = b
	return nil
}

func (s *MemoryStore) Clear(_ context.Context, sessionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.carts, sessionID)
	return nil
}
