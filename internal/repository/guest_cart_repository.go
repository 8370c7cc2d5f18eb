package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"storefront/internal/model"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

const guestCartKeyPrefix = "cart:guest:"

type guestCartRepository struct {
	client *redis.Client
	ttl    time.Duration
	logger zerolog.Logger
}

// NewGuestCartRepository creates a Redis-backed guest cart store. Every save
// refreshes the key's TTL.
func NewGuestCartRepository(client *redis.Client, ttl time.Duration, logger zerolog.Logger) GuestCartRepository {
	return &guestCartRepository{
		client: client,
		ttl:    ttl,
		logger: logger.With().Str("repository", "guest_cart").Logger(),
	}
}

func guestCartKey(guestID string) string {
	return guestCartKeyPrefix + guestID
}

// Get returns the guest cart, or nil if it does not exist or has expired.
func (r *guestCartRepository) Get(ctx context.Context, guestID string) (*model.Cart, error) {
	data, err := r.client.Get(ctx, guestCartKey(guestID)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		r.logger.Error().Err(err).Str("guest_id", guestID).Msg("failed to get guest cart")
		return nil, fmt.Errorf("failed to get guest cart: %w", err)
	}

	var cart model.Cart
	if err := json.Unmarshal(data, &cart); err != nil {
		return nil, fmt.Errorf("failed to decode guest cart: %w", err)
	}
	if cart.Items == nil {
		cart.Items = []model.CartItem{}
	}

	return &cart, nil
}

func (r *guestCartRepository) Save(ctx context.Context, cart *model.Cart) error {
	cart.UpdatedAt = time.Now().UTC()

	data, err := json.Marshal(cart)
	if err != nil {
		return fmt.Errorf("failed to encode guest cart: %w", err)
	}

	if err := r.client.Set(ctx, guestCartKey(cart.GuestID), data, r.ttl).Err(); err != nil {
		r.logger.Error().Err(err).Str("guest_id", cart.GuestID).Msg("failed to save guest cart")
		return fmt.Errorf("failed to save guest cart: %w", err)
	}

	return nil
}

func (r *guestCartRepository) Delete(ctx context.Context, guestID string) error {
	if err := r.client.Del(ctx, guestCartKey(guestID)).Err(); err != nil {
		r.logger.Error().Err(err).Str("guest_id", guestID).Msg("failed to delete guest cart")
		return fmt.Errorf("failed to delete guest cart: %w", err)
	}
	return nil
}
