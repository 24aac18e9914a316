package handler

import (
	"errors"
	"log"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/sexystyle/storefront/internal/domain"
	"github.com/sexystyle/storefront/internal/service"
)

// CatalogHandler serves the country and plan listing screens
type CatalogHandler struct {
	catalog *service.CatalogService
}

// NewCatalogHandler creates a new CatalogHandler
func NewCatalogHandler(catalog *service.CatalogService) *CatalogHandler {
	return &CatalogHandler{catalog: catalog}
}

// ListPackages handles GET /v1/packages?location=XX
// Returns priced plans, optionally filtered by covered location.
func (h *CatalogHandler) ListPackages(c *fiber.Ctx) error {
	location := strings.ToUpper(strings.TrimSpace(c.Query("location")))

	plans, err := h.catalog.Plans(c.UserContext(), location)
	if err != nil {
		log.Printf("[ListPackages] Error fetching plans: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"success": false,
			"error":   "failed to fetch packages",
		})
	}

	// Empty catalog renders as an empty list, not null
	if plans == nil {
		plans = []*domain.Plan{}
	}

	return c.JSON(fiber.Map{
		"success": true,
		"data":    plans,
	})
}

// GetPackage handles GET /v1/packages/:id
func (h *CatalogHandler) GetPackage(c *fiber.Ctx) error {
	id := c.Params("id")
	if id == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"error":   "package id is required",
		})
	}

	plan, err := h.catalog.Plan(c.UserContext(), id)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"success": false,
				"error":   "package not found",
			})
		}
		log.Printf("[GetPackage] Error fetching plan: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"success": false,
			"error":   "failed to fetch package",
		})
	}

	return c.JSON(fiber.Map{
		"success": true,
		"data":    plan,
	})
}

// ListCountries handles GET /v1/countries
// Returns the catalog grouped by covered location with plan counts and
// starting prices, for the country list screen.
func (h *CatalogHandler) ListCountries(c *fiber.Ctx) error {
	countries, err := h.catalog.Countries(c.UserContext())
	if err != nil {
		log.Printf("[ListCountries] Error building summaries: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"success": false,
			"error":   "failed to fetch countries",
		})
	}

	if countries == nil {
		countries = []domain.CountrySummary{}
	}

	return c.JSON(fiber.Map{
		"success": true,
		"data":    countries,
	})
}
