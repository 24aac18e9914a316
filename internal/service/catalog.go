package service

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/sexystyle/storefront/internal/domain"
	"github.com/sexystyle/storefront/internal/repository"
	"golang.org/x/sync/errgroup"
)

// SupplierClient is the wholesale catalog collaborator. The concrete client
// lives in internal/infrastructure/esimaccess; tests substitute a fake.
type SupplierClient interface {
	ListPackages(ctx context.Context, location string) ([]*domain.Plan, error)
}

// CatalogCache is the subset of the redis cache repository the catalog
// service needs.
type CatalogCache interface {
	SetPlans(ctx context.Context, location string, plans []*domain.Plan, ttl time.Duration) error
	GetPlans(ctx context.Context, location string) ([]*domain.Plan, error)
	SetCountries(ctx context.Context, countries []domain.CountrySummary, ttl time.Duration) error
	GetCountries(ctx context.Context) ([]domain.CountrySummary, error)
	InvalidateCatalog(ctx context.Context) error
}

// CatalogService serves the priced catalog. Reads go cache -> mongo; the
// supplier is only reached by Refresh, which re-normalizes and re-prices
// the whole catalog.
type CatalogService struct {
	supplier SupplierClient
	planRepo domain.PlanRepository
	cache    CatalogCache
	cacheTTL time.Duration
}

// NewCatalogService creates a new catalog service
func NewCatalogService(supplier SupplierClient, planRepo domain.PlanRepository, cache CatalogCache, cacheTTL time.Duration) *CatalogService {
	return &CatalogService{
		supplier: supplier,
		planRepo: planRepo,
		cache:    cache,
		cacheTTL: cacheTTL,
	}
}

// Plans returns the catalog, optionally filtered by location code.
func (s *CatalogService) Plans(ctx context.Context, location string) ([]*domain.Plan, error) {
	if plans, err := s.cache.GetPlans(ctx, location); err == nil {
		return plans, nil
	} else if err != repository.ErrCacheMiss {
		log.Printf("[Catalog] Cache read failed: %v", err)
	}

	plans, err := s.planRepo.List(ctx, location)
	if err != nil {
		return nil, err
	}

	if err := s.cache.SetPlans(ctx, location, plans, s.cacheTTL); err != nil {
		log.Printf("[Catalog] Cache write failed: %v", err)
	}
	return plans, nil
}

// Plan returns a single catalog entry by ID.
func (s *CatalogService) Plan(ctx context.Context, id string) (*domain.Plan, error) {
	return s.planRepo.GetByID(ctx, id)
}

// Countries returns the catalog grouped by covered location.
func (s *CatalogService) Countries(ctx context.Context) ([]domain.CountrySummary, error) {
	if countries, err := s.cache.GetCountries(ctx); err == nil {
		return countries, nil
	} else if err != repository.ErrCacheMiss {
		log.Printf("[Catalog] Cache read failed: %v", err)
	}

	plans, err := s.planRepo.List(ctx, "")
	if err != nil {
		return nil, err
	}

	countries := domain.BuildCountrySummaries(plans)
	if err := s.cache.SetCountries(ctx, countries, s.cacheTTL); err != nil {
		log.Printf("[Catalog] Cache write failed: %v", err)
	}
	return countries, nil
}

// Refresh pulls the supplier catalog and rewrites the stored plans. With
// locations given, each is fetched concurrently; with none, one unfiltered
// fetch covers the whole catalog. The cache is invalidated afterwards so
// the next read sees fresh prices.
func (s *CatalogService) Refresh(ctx context.Context, locations []string) (int, error) {
	var fetched []*domain.Plan

	if len(locations) == 0 {
		plans, err := s.supplier.ListPackages(ctx, "")
		if err != nil {
			return 0, fmt.Errorf("supplier fetch failed: %w", err)
		}
		fetched = plans
	} else {
		results := make([][]*domain.Plan, len(locations))
		g, gctx := errgroup.WithContext(ctx)
		g.SetLimit(4)

		for i, loc := range locations {
			g.Go(func() error {
				plans, err := s.supplier.ListPackages(gctx, loc)
				if err != nil {
					return fmt.Errorf("supplier fetch failed for %s: %w", loc, err)
				}
				results[i] = plans
				return nil
			})
		}
		if err := g.Wait(); err != nil {
			return 0, err
		}

		// Plans covering several locations come back once per location;
		// the upsert by package code deduplicates them.
		for _, plans := range results {
			fetched = append(fetched, plans...)
		}
	}

	count := 0
	for _, plan := range fetched {
		if err := s.planRepo.Upsert(ctx, plan); err != nil {
			return count, err
		}
		count++
	}

	if err := s.cache.InvalidateCatalog(ctx); err != nil {
		log.Printf("[Catalog] Cache invalidation failed: %v", err)
	}

	log.Printf("[Catalog] Refreshed %d plans", count)
	return count, nil
}
