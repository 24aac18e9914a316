package handler

import (
	"errors"
	"log"

	"github.com/gofiber/fiber/v2"
	"github.com/sexystyle/storefront/internal/domain"
	"github.com/sexystyle/storefront/internal/middleware"
)

// OrderHandler serves order status for the profile screen
type OrderHandler struct {
	orders domain.OrderRepository
}

// NewOrderHandler creates a new OrderHandler
func NewOrderHandler(orders domain.OrderRepository) *OrderHandler {
	return &OrderHandler{orders: orders}
}

// GetOrder handles GET /v1/orders/:orderNo
func (h *OrderHandler) GetOrder(c *fiber.Ctx) error {
	userID := c.Locals(middleware.UserIDKey).(string)

	orderNo := c.Params("orderNo")
	if orderNo == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"error":   "order number is required",
		})
	}

	order, err := h.orders.GetByOrderNo(c.UserContext(), orderNo)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"success": false,
				"error":   "order not found",
			})
		}
		log.Printf("[GetOrder] Error fetching order: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"success": false,
			"error":   "failed to fetch order",
		})
	}

	// Verify ownership
	if order.UserID != userID {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
			"success": false,
			"error":   domain.ErrForbidden.Error(),
		})
	}

	return c.JSON(fiber.Map{
		"success": true,
		"data":    order,
	})
}

// ListOrders handles GET /v1/orders
func (h *OrderHandler) ListOrders(c *fiber.Ctx) error {
	userID := c.Locals(middleware.UserIDKey).(string)

	orders, err := h.orders.GetByUserID(c.UserContext(), userID)
	if err != nil {
		log.Printf("[ListOrders] Error fetching orders: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"success": false,
			"error":   "failed to fetch orders",
		})
	}

	if orders == nil {
		orders = []*domain.Order{}
	}

	return c.JSON(fiber.Map{
		"success": true,
		"data":    orders,
	})
}
