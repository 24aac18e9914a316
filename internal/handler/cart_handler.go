package handler

import (
	"errors"
	"log"

	"github.com/gofiber/fiber/v2"
	"github.com/sexystyle/storefront/internal/domain"
	"github.com/sexystyle/storefront/internal/middleware"
	"github.com/sexystyle/storefront/internal/service"
)

// CartHandler handles the cart and checkout endpoints
type CartHandler struct {
	carts *service.CartService
}

// NewCartHandler creates a new CartHandler
func NewCartHandler(carts *service.CartService) *CartHandler {
	return &CartHandler{carts: carts}
}

// CartResponse is the cart envelope with the recomputed total
type CartResponse struct {
	Items []domain.Plan `json:"items"`
	Total float64       `json:"total"`
}

func cartResponse(cart *domain.Cart) CartResponse {
	items := cart.Items
	if items == nil {
		items = []domain.Plan{}
	}
	return CartResponse{
		Items: items,
		Total: cart.Total(),
	}
}

// GetCart handles GET /v1/cart
func (h *CartHandler) GetCart(c *fiber.Ctx) error {
	userID := c.Locals(middleware.UserIDKey).(string)

	cart, err := h.carts.Get(c.UserContext(), userID)
	if err != nil {
		log.Printf("[GetCart] Error loading cart: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"success": false,
			"error":   "failed to load cart",
		})
	}

	return c.JSON(fiber.Map{
		"success": true,
		"data":    cartResponse(cart),
	})
}

// AddItemRequest is the body for POST /v1/cart/items
type AddItemRequest struct {
	PackageID string `json:"package_id"`
}

// AddItem handles POST /v1/cart/items
// A duplicate add is not an error: the cart is returned unchanged with
// duplicate=true so the client can toast accordingly.
func (h *CartHandler) AddItem(c *fiber.Ctx) error {
	userID := c.Locals(middleware.UserIDKey).(string)

	var req AddItemRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"error":   "invalid request body",
		})
	}
	if req.PackageID == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"error":   "package_id is required",
		})
	}

	result, cart, err := h.carts.Add(c.UserContext(), userID, req.PackageID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"success": false,
				"error":   "package not found",
			})
		}
		log.Printf("[AddItem] Error adding to cart: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"success": false,
			"error":   "failed to add to cart",
		})
	}

	return c.JSON(fiber.Map{
		"success":   true,
		"duplicate": result == domain.CartDuplicate,
		"data":      cartResponse(cart),
	})
}

// RemoveItem handles DELETE /v1/cart/items/:id
// Removing an absent item succeeds and returns the unchanged cart.
func (h *CartHandler) RemoveItem(c *fiber.Ctx) error {
	userID := c.Locals(middleware.UserIDKey).(string)

	planID := c.Params("id")
	if planID == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"error":   "package id is required",
		})
	}

	cart, err := h.carts.Remove(c.UserContext(), userID, planID)
	if err != nil {
		log.Printf("[RemoveItem] Error removing from cart: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"success": false,
			"error":   "failed to remove from cart",
		})
	}

	return c.JSON(fiber.Map{
		"success": true,
		"data":    cartResponse(cart),
	})
}

// ClearCart handles DELETE /v1/cart
func (h *CartHandler) ClearCart(c *fiber.Ctx) error {
	userID := c.Locals(middleware.UserIDKey).(string)

	if err := h.carts.Clear(c.UserContext(), userID); err != nil {
		log.Printf("[ClearCart] Error clearing cart: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"success": false,
			"error":   "failed to clear cart",
		})
	}

	return c.JSON(fiber.Map{
		"success": true,
		"data":    CartResponse{Items: []domain.Plan{}},
	})
}

// CheckoutRequest is the body for POST /v1/cart/checkout
type CheckoutRequest struct {
	Asset string `json:"asset"`
}

// Checkout handles POST /v1/cart/checkout
// Hands the cart to the payment collaborator and returns the invoice URLs
// the client opens via the host bridge.
func (h *CartHandler) Checkout(c *fiber.Ctx) error {
	userID := c.Locals(middleware.UserIDKey).(string)

	var req CheckoutRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"error":   "invalid request body",
		})
	}
	if req.Asset == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"error":   "asset is required",
		})
	}

	result, err := h.carts.Checkout(c.UserContext(), userID, req.Asset)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrEmptyCart):
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"success": false,
				"error":   "cart is empty",
			})
		case errors.Is(err, domain.ErrInvalidIntent):
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"success": false,
				"error":   err.Error(),
			})
		case errors.Is(err, domain.ErrCheckoutInProgress):
			return c.Status(fiber.StatusConflict).JSON(fiber.Map{
				"success": false,
				"error":   "checkout already in progress",
			})
		default:
			log.Printf("[Checkout] Error: %v", err)
			return c.Status(fiber.StatusBadGateway).JSON(fiber.Map{
				"success": false,
				"error":   "payment service unavailable, please try again later",
			})
		}
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"success": true,
		"data":    result,
	})
}
