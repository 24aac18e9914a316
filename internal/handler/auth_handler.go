package handler

import (
	"log"

	"github.com/gofiber/fiber/v2"
	"github.com/sexystyle/storefront/internal/service"
)

// AuthHandler handles Mini App authentication
type AuthHandler struct {
	auth *service.AuthService
}

// NewAuthHandler creates a new AuthHandler
func NewAuthHandler(auth *service.AuthService) *AuthHandler {
	return &AuthHandler{auth: auth}
}

// LoginRequest is the body for POST /v1/auth/login
type LoginRequest struct {
	InitData string `json:"init_data"`
}

// Login handles POST /v1/auth/login
// Validates the Telegram Mini App init data and issues an access token.
func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var req LoginRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"error":   "invalid request body",
		})
	}
	if req.InitData == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"error":   "init_data is required",
		})
	}

	result, err := h.auth.Login(req.InitData)
	if err != nil {
		log.Printf("[Login] Init data rejected: %v", err)
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"success": false,
			"error":   "invalid init data",
		})
	}

	return c.JSON(fiber.Map{
		"success": true,
		"data":    result,
	})
}
