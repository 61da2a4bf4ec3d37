package adapters

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"storefront-api/internal/core/cache"
	"storefront-api/internal/features/orders/domain"
)

const cartKeyPrefix = "cart:"

// RedisCartRepository implements ports.CartRepository on the cache adapter.
// Carts are session-scoped documents; Redis is their system of record.
type RedisCartRepository struct {
	cache cache.Cache
}

// NewRedisCartRepository creates a new RedisCartRepository.
func NewRedisCartRepository(c cache.Cache) *RedisCartRepository {
	return &RedisCartRepository{
		cache: c,
	}
}

func cartKey(cartID string) string {
	return cartKeyPrefix + cartID
}

// Get retrieves the cart, or nil when the id does not resolve.
func (r *RedisCartRepository) Get(ctx context.Context, cartID string) (*domain.Cart, error) {
	data, err := r.cache.Get(ctx, cartKey(cartID))
	if errors.Is(err, cache.ErrKeyNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get cart: %w", err)
	}

	var cart domain.Cart
	if err := json.Unmarshal(data, &cart); err != nil {
		return nil, fmt.Errorf("failed to unmarshal cart: %w", err)
	}
	return &cart, nil
}

// Save stores the cart without expiration; carts live until checkout clears them.
func (r *RedisCartRepository) Save(ctx context.Context, cart *domain.Cart) error {
	data, err := json.Marshal(cart)
	if err != nil {
		return fmt.Errorf("failed to marshal cart: %w", err)
	}

	if err := r.cache.Set(ctx, cartKey(cart.ID), data, 0); err != nil {
		return fmt.Errorf("failed to save cart: %w", err)
	}
	return nil
}

// Delete removes the cart so its id no longer resolves.
func (r *RedisCartRepository) Delete(ctx context.Context, cartID string) error {
	if err := r.cache.Delete(ctx, cartKey(cartID)); err != nil {
		return fmt.Errorf("failed to delete cart: %w", err)
	}
	return nil
}
