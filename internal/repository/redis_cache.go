package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sexystyle/storefront/internal/domain"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

const (
	catalogKeyPrefix   = "catalog:location:" // priced plan lists per location filter
	countriesCacheKey  = "catalog:countries"
	catalogAllLocation = "_all" // key suffix for the unfiltered catalog
)

var ErrCacheMiss = fmt.Errorf("cache miss")

// RedisCacheRepository caches normalized catalog responses so the supplier
// API is not hit on every screen load. Entries expire with a TTL; the cart
// store deliberately does not live here because carts must not expire.
type RedisCacheRepository struct {
	client *redis.Client
}

// NewRedisCacheRepository creates a new Redis cache repository
func NewRedisCacheRepository(client *redis.Client) *RedisCacheRepository {
	return &RedisCacheRepository{
		client: client,
	}
}

// SetPlans caches the priced plan list for a location filter with TTL
func (r *RedisCacheRepository) SetPlans(ctx context.Context, location string, plans []*domain.Plan, ttl time.Duration) error {
	return r.Set(ctx, planCacheKey(location), plans, ttl)
}

// GetPlans retrieves the cached plan list for a location filter
func (r *RedisCacheRepository) GetPlans(ctx context.Context, location string) ([]*domain.Plan, error) {
	var plans []*domain.Plan
	if err := r.Get(ctx, planCacheKey(location), &plans); err != nil {
		return nil, err
	}
	return plans, nil
}

// SetCountries caches the country summary list with TTL
func (r *RedisCacheRepository) SetCountries(ctx context.Context, countries []domain.CountrySummary, ttl time.Duration) error {
	return r.Set(ctx, countriesCacheKey, countries, ttl)
}

// GetCountries retrieves the cached country summary list
func (r *RedisCacheRepository) GetCountries(ctx context.Context) ([]domain.CountrySummary, error) {
	var countries []domain.CountrySummary
	if err := r.Get(ctx, countriesCacheKey, &countries); err != nil {
		return nil, err
	}
	return countries, nil
}

// InvalidateCatalog removes every cached catalog entry, used after a refresh
// or a reprice run.
func (r *RedisCacheRepository) InvalidateCatalog(ctx context.Context) error {
	if err := r.DeleteByPattern(ctx, catalogKeyPrefix+"*"); err != nil {
		return err
	}
	return r.Delete(ctx, countriesCacheKey)
}

func planCacheKey(location string) string {
	if location == "" {
		location = catalogAllLocation
	}
	return catalogKeyPrefix + location
}

// =============================================================================
// Generic Cache Operations with OpenTelemetry Tracing
// =============================================================================

// Get retrieves a value from cache by key with OTel tracing
func (r *RedisCacheRepository) Get(ctx context.Context, key string, dest interface{}) error {
	tracer := otel.Tracer("redis")
	ctx, span := tracer.Start(ctx, "redis.Get",
		trace.WithAttributes(attribute.String("cache.key", key)),
	)
	defer span.End()

	data, err := r.client.Get(ctx, key).Bytes()
	if err != nil {
		if err == redis.Nil {
			span.SetAttributes(attribute.String("cache.result", "miss"))
			return ErrCacheMiss
		}
		span.RecordError(err)
		return fmt.Errorf("redis get error: %w", err)
	}

	span.SetAttributes(attribute.String("cache.result", "hit"))
	if err := json.Unmarshal(data, dest); err != nil {
		span.RecordError(err)
		return fmt.Errorf("unmarshal error: %w", err)
	}

	return nil
}

// Set stores a value in cache with TTL and OTel tracing
func (r *RedisCacheRepository) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	tracer := otel.Tracer("redis")
	ctx, span := tracer.Start(ctx, "redis.Set",
		trace.WithAttributes(
			attribute.String("cache.key", key),
			attribute.Int64("cache.ttl_seconds", int64(ttl.Seconds())),
		),
	)
	defer span.End()

	data, err := json.Marshal(value)
	if err != nil {
		span.RecordError(err)
		return fmt.Errorf("marshal error: %w", err)
	}

	if err := r.client.Set(ctx, key, data, ttl).Err(); err != nil {
		span.RecordError(err)
		return fmt.Errorf("redis set error: %w", err)
	}

	return nil
}

// Delete removes keys from cache with OTel tracing
func (r *RedisCacheRepository) Delete(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}

	tracer := otel.Tracer("redis")
	ctx, span := tracer.Start(ctx, "redis.Delete",
		trace.WithAttributes(attribute.Int("cache.key_count", len(keys))),
	)
	defer span.End()

	if err := r.client.Del(ctx, keys...).Err(); err != nil {
		span.RecordError(err)
		return fmt.Errorf("redis delete error: %w", err)
	}

	return nil
}

// DeleteByPattern removes keys matching a pattern (use sparingly - O(N))
func (r *RedisCacheRepository) DeleteByPattern(ctx context.Context, pattern string) error {
	tracer := otel.Tracer("redis")
	ctx, span := tracer.Start(ctx, "redis.DeleteByPattern",
		trace.WithAttributes(attribute.String("cache.pattern", pattern)),
	)
	defer span.End()

	keys, err := r.client.Keys(ctx, pattern).Result()
	if err != nil {
		span.RecordError(err)
		return fmt.Errorf("redis keys error: %w", err)
	}

	if len(keys) == 0 {
		return nil
	}

	span.SetAttributes(attribute.Int("cache.matched_keys", len(keys)))
	return r.client.Del(ctx, keys...).Err()
}
