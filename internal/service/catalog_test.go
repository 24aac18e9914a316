package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/sexystyle/storefront/internal/domain"
	"github.com/sexystyle/storefront/internal/repository"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// memCatalogCache is an in-memory CatalogCache for tests.
type memCatalogCache struct {
	plans     map[string][]*domain.Plan
	countries []domain.CountrySummary
	hasCtry   bool
	readErr   error
}

func newMemCatalogCache() *memCatalogCache {
	return &memCatalogCache{plans: make(map[string][]*domain.Plan)}
}

func (c *memCatalogCache) SetPlans(_ context.Context, location string, plans []*domain.Plan, _ time.Duration) error {
	c.plans[location] = plans
	return nil
}

func (c *memCatalogCache) GetPlans(_ context.Context, location string) ([]*domain.Plan, error) {
	if c.readErr != nil {
		return nil, c.readErr
	}
	if plans, ok := c.plans[location]; ok {
		return plans, nil
	}
	return nil, repository.ErrCacheMiss
}

func (c *memCatalogCache) SetCountries(_ context.Context, countries []domain.CountrySummary, _ time.Duration) error {
	c.countries = countries
	c.hasCtry = true
	return nil
}

func (c *memCatalogCache) GetCountries(_ context.Context) ([]domain.CountrySummary, error) {
	if c.readErr != nil {
		return nil, c.readErr
	}
	if c.hasCtry {
		return c.countries, nil
	}
	return nil, repository.ErrCacheMiss
}

func (c *memCatalogCache) InvalidateCatalog(_ context.Context) error {
	c.plans = make(map[string][]*domain.Plan)
	c.countries = nil
	c.hasCtry = false
	return nil
}

// fakeSupplier serves a fixed wholesale catalog, optionally per location.
type fakeSupplier struct {
	byLocation map[string][]*domain.Plan
	calls      []string
	err        error
}

func (s *fakeSupplier) ListPackages(_ context.Context, location string) ([]*domain.Plan, error) {
	s.calls = append(s.calls, location)
	if s.err != nil {
		return nil, s.err
	}
	return s.byLocation[location], nil
}

func planPtr(p domain.Plan) *domain.Plan { return &p }

func TestCatalogPlansCacheFlow(t *testing.T) {
	ctx := context.Background()
	kz := domain.NewPlan("KZ-1GB", "Kazakhstan 1GB", "1GB", "7 days", 2.50, []string{"KZ"}, "", nil)

	repo := newMemPlanRepo(kz)
	cache := newMemCatalogCache()
	svc := NewCatalogService(&fakeSupplier{}, repo, cache, time.Minute)

	// First read misses the cache and falls through to the repository
	plans, err := svc.Plans(ctx, "KZ")
	require.NoError(t, err)
	require.Len(t, plans, 1)
	assert.Equal(t, "KZ-1GB", plans[0].ID)

	// The result was cached per location
	cached, ok := cache.plans["KZ"]
	require.True(t, ok)
	assert.Len(t, cached, 1)

	// A broken cache degrades to repository reads instead of failing
	cache.readErr = errors.New("redis down")
	plans, err = svc.Plans(ctx, "KZ")
	require.NoError(t, err)
	assert.Len(t, plans, 1)
}

func TestCatalogCountriesGrouping(t *testing.T) {
	ctx := context.Background()
	repo := newMemPlanRepo(
		domain.NewPlan("KZ-1GB", "Kazakhstan 1GB", "1GB", "7 days", 2.50, []string{"KZ"}, "", nil),
		domain.NewPlan("KZ-5GB", "Kazakhstan 5GB", "5GB", "30 days", 8.00, []string{"KZ"}, "", nil),
		domain.NewPlan("ASIA-10GB", "Asia 10GB", "10GB", "30 days", 35.00, []string{"KZ", "KR"}, "", nil),
	)
	cache := newMemCatalogCache()
	svc := NewCatalogService(&fakeSupplier{}, repo, cache, time.Minute)

	countries, err := svc.Countries(ctx)
	require.NoError(t, err)
	require.Len(t, countries, 2)

	byCode := make(map[string]domain.CountrySummary)
	for _, c := range countries {
		byCode[c.Code] = c
	}

	assert.Equal(t, 3, byCode["KZ"].PlansCount)
	assert.Equal(t, 1, byCode["KR"].PlansCount)
	// The entry price for KZ comes from the cheapest plan: 2.50 * 1.9
	assert.InDelta(t, 4.75, byCode["KZ"].StartingPrice, 0.001)

	// Second read is served from cache
	repo.plans = nil
	countries, err = svc.Countries(ctx)
	require.NoError(t, err)
	assert.Len(t, countries, 2)
}

func TestCatalogRefresh(t *testing.T) {
	ctx := context.Background()
	supplier := &fakeSupplier{
		byLocation: map[string][]*domain.Plan{
			"KZ": {planPtr(domain.NewPlan("KZ-1GB", "Kazakhstan 1GB", "1GB", "7 days", 2.50, []string{"KZ"}, "", nil))},
			"KR": {planPtr(domain.NewPlan("KR-5GB", "South Korea 5GB", "5GB", "15 days", 14.50, []string{"KR"}, "", nil))},
		},
	}

	repo := newMemPlanRepo()
	cache := newMemCatalogCache()
	cache.plans["KZ"] = []*domain.Plan{} // stale entry to be invalidated
	svc := NewCatalogService(supplier, repo, cache, time.Minute)

	count, err := svc.Refresh(ctx, []string{"KZ", "KR"})
	require.NoError(t, err)
	assert.Equal(t, 2, count)
	assert.ElementsMatch(t, []string{"KZ", "KR"}, supplier.calls)

	// Upserted plans carry retail prices derived from wholesale
	plan, err := repo.GetByID(ctx, "KR-5GB")
	require.NoError(t, err)
	assert.InDelta(t, 26.10, plan.RetailPrice, 0.001) // 14.50 * 1.8

	// Stale cache entries are gone
	_, ok := cache.plans["KZ"]
	assert.False(t, ok)
}

func TestCatalogRefreshSupplierFailure(t *testing.T) {
	ctx := context.Background()
	supplier := &fakeSupplier{err: errors.New("supplier timeout")}
	repo := newMemPlanRepo()
	svc := NewCatalogService(supplier, repo, newMemCatalogCache(), time.Minute)

	_, err := svc.Refresh(ctx, nil)
	require.Error(t, err)
	assert.Empty(t, repo.plans)
}
