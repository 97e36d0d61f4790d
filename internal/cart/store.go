package cart

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// ErrCartNotFound indicates no cart exists for the id, or it has expired.
var ErrCartNotFound = errors.New("cart not found")

// Store abstracts cart persistence. Carts are ephemeral; every write renews
// the TTL so an active session never expires mid-shopping.
type Store interface {
	Put(ctx context.Context, c *Cart) error
	Get(ctx context.Context, id string) (*Cart, error)
	Delete(ctx context.Context, id string) error
}

// RedisStore keeps carts as JSON blobs under a per-cart key.
type RedisStore struct {
	Client *redis.Client
	TTL    time.Duration
}

func cartKey(id string) string {
	return "cart:" + id
}

// Put writes the cart and renews its TTL.
func (s *RedisStore) Put(ctx context.Context, c *Cart) error {
	if s == nil || s.Client == nil {
		return errors.New("cart store not configured")
	}
	raw, err := json.Marshal(c)
	if err != nil {
		return fmt.Errorf("encode cart: %w", err)
	}
	if err := s.Client.Set(ctx, cartKey(c.ID), raw, s.TTL).Err(); err != nil {
		return fmt.Errorf("store cart: %w", err)
	}
	return nil
}

// Get loads one cart.
func (s *RedisStore) Get(ctx context.Context, id string) (*Cart, error) {
	if s == nil || s.Client == nil {
		return nil, errors.New("cart store not configured")
	}
	raw, err := s.Client.Get(ctx, cartKey(id)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrCartNotFound
		}
		return nil, fmt.Errorf("load cart: %w", err)
	}
	var c Cart
	if err := json.Unmarshal(raw, &c); err != nil {
		return nil, fmt.Errorf("decode cart: %w", err)
	}
	return &c, nil
}

// Delete removes a cart. Deleting a missing cart is not an error.
func (s *RedisStore) Delete(ctx context.Context, id string) error {
	if s == nil || s.Client == nil {
		return errors.New("cart store not configured")
	}
	return s.Client.Del(ctx, cartKey(id)).Err()
}
