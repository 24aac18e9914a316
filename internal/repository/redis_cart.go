package repository

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"
	"github.com/sexystyle/storefront/internal/domain"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

const cartKeyPrefix = "cart:"

// RedisCartStore implements domain.CartStore. One JSON document per user,
// no TTL - the cart persists until the user clears it or checks out.
// Concurrent writers (two sessions on one account) are last-writer-wins.
type RedisCartStore struct {
	client *redis.Client
}

// NewRedisCartStore creates a new Redis-backed cart store
func NewRedisCartStore(client *redis.Client) *RedisCartStore {
	return &RedisCartStore{
		client: client,
	}
}

// Load retrieves the user's cart. A missing key yields an empty cart, not an
// error.
func (s *RedisCartStore) Load(ctx context.Context, userID string) (*domain.Cart, error) {
	tracer := otel.Tracer("redis")
	ctx, span := tracer.Start(ctx, "cart.Load",
		trace.WithAttributes(attribute.String("cart.user_id", userID)),
	)
	defer span.End()

	data, err := s.client.Get(ctx, cartKeyPrefix+userID).Bytes()
	if err != nil {
		if err == redis.Nil {
			span.SetAttributes(attribute.String("cart.result", "empty"))
			return domain.NewCart(userID), nil
		}
		span.RecordError(err)
		return nil, fmt.Errorf("failed to load cart: %w", err)
	}

	var cart domain.Cart
	if err := json.Unmarshal(data, &cart); err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("failed to unmarshal cart: %w", err)
	}
	cart.UserID = userID

	span.SetAttributes(attribute.Int("cart.size", len(cart.Items)))
	return &cart, nil
}

// Save persists the whole cart document.
func (s *RedisCartStore) Save(ctx context.Context, cart *domain.Cart) error {
	tracer := otel.Tracer("redis")
	ctx, span := tracer.Start(ctx, "cart.Save",
		trace.WithAttributes(
			attribute.String("cart.user_id", cart.UserID),
			attribute.Int("cart.size", len(cart.Items)),
		),
	)
	defer span.End()

	data, err := json.Marshal(cart)
	if err != nil {
		span.RecordError(err)
		return fmt.Errorf("failed to marshal cart: %w", err)
	}

	if err := s.client.Set(ctx, cartKeyPrefix+cart.UserID, data, 0).Err(); err != nil {
		span.RecordError(err)
		return fmt.Errorf("failed to save cart: %w", err)
	}

	return nil
}

// Delete erases the durable cart representation.
func (s *RedisCartStore) Delete(ctx context.Context, userID string) error {
	tracer := otel.Tracer("redis")
	ctx, span := tracer.Start(ctx, "cart.Delete",
		trace.WithAttributes(attribute.String("cart.user_id", userID)),
	)
	defer span.End()

	if err := s.client.Del(ctx, cartKeyPrefix+userID).Err(); err != nil {
		span.RecordError(err)
		return fmt.Errorf("failed to delete cart: %w", err)
	}

	return nil
}
