package cart

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/attarhouse/attarhouse-backend/pkg/redis"
)

// sessionStore is the slice of the Redis client the cart store needs.
type sessionStore interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key string, value any, ttl time.Duration) error
	Del(ctx context.Context, keys ...string) error
	CartKey(sessionID string) string
}

// Store keeps one cart document per session in Redis, refreshed on every
// write with the configured TTL.
type Store struct {
	redis sessionStore
	ttl   time.Duration
}

// NewStore builds the session cart store.
func NewStore(client sessionStore, ttl time.Duration) (*Store, error) {
	if client == nil {
		return nil, errors.New("redis client required")
	}
	if ttl <= 0 {
		return nil, errors.New("cart ttl must be positive")
	}
	return &Store{redis: client, ttl: ttl}, nil
}

// Load returns the session's cart, or an empty cart when none is stored yet.
func (s *Store) Load(ctx context.Context, sessionID string) (*Cart, error) {
	if sessionID == "" {
		return nil, errors.New("session id required")
	}
	raw, err := s.redis.Get(ctx, s.redis.CartKey(sessionID))
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return &Cart{}, nil
		}
		return nil, fmt.Errorf("loading cart: %w", err)
	}
	var cart Cart
	if err := json.Unmarshal([]byte(raw), &cart); err != nil {
		return nil, fmt.Errorf("decoding cart: %w", err)
	}
	return &cart, nil
}

// Save writes the cart back and refreshes the session TTL.
func (s *Store) Save(ctx context.Context, sessionID string, cart *Cart) error {
	if sessionID == "" {
		return errors.New("session id required")
	}
	if cart == nil {
		return errors.New("cart required")
	}
	payload, err := json.Marshal(cart)
	if err != nil {
		return fmt.Errorf("encoding cart: %w", err)
	}
	if err := s.redis.Set(ctx, s.redis.CartKey(sessionID), payload, s.ttl); err != nil {
		return fmt.Errorf("saving cart: %w", err)
	}
	return nil
}

// Clear removes the session's cart document entirely.
func (s *Store) Clear(ctx context.Context, sessionID string) error {
	if sessionID == "" {
		return errors.New("session id required")
	}
	if err := s.redis.Del(ctx, s.redis.CartKey(sessionID)); err != nil {
		return fmt.Errorf("clearing cart: %w", err)
	}
	return nil
}
