package handler

import (
	"encoding/json"
	"log"

	"github.com/gofiber/fiber/v2"
	"github.com/sexystyle/storefront/internal/domain"
	"github.com/sexystyle/storefront/internal/infrastructure/cryptopay"
)

// WebhookHandler handles payment provider callbacks
type WebhookHandler struct {
	orders        domain.OrderRepository
	providerToken string
}

// NewWebhookHandler creates a new WebhookHandler
func NewWebhookHandler(orders domain.OrderRepository, providerToken string) *WebhookHandler {
	return &WebhookHandler{
		orders:        orders,
		providerToken: providerToken,
	}
}

// cryptoPayUpdate is the provider's webhook envelope. Payload inside the
// invoice carries our transaction ID.
type cryptoPayUpdate struct {
	UpdateID   int64  `json:"update_id"`
	UpdateType string `json:"update_type"` // "invoice_paid"
	Payload    struct {
		InvoiceID int64  `json:"invoice_id"`
		Status    string `json:"status"`
		Asset     string `json:"asset"`
		Amount    string `json:"amount"`
		Payload   string `json:"payload"` // our transaction ID
	} `json:"payload"`
}

// CryptoPayWebhook handles POST /v1/payments/webhook/cryptopay
// Public endpoint; authenticity comes from the HMAC signature header.
func (h *WebhookHandler) CryptoPayWebhook(c *fiber.Ctx) error {
	ctx := c.UserContext()
	body := c.Body()

	signature := c.Get("Crypto-Pay-Api-Signature")
	if !cryptopay.VerifyWebhookSignature(h.providerToken, body, signature) {
		log.Printf("[Webhook] Signature verification failed")
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"success": false,
			"error":   "invalid signature",
		})
	}

	var update cryptoPayUpdate
	if err := json.Unmarshal(body, &update); err != nil {
		log.Printf("[Webhook] Failed to parse body: %v", err)
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"error":   "invalid request body",
		})
	}

	log.Printf("[Webhook] Received update: type=%s, invoice=%d, status=%s",
		update.UpdateType, update.Payload.InvoiceID, update.Payload.Status)

	if update.UpdateType != "invoice_paid" {
		return c.JSON(fiber.Map{
			"success": true,
			"message": "update acknowledged",
		})
	}

	transactionID := update.Payload.Payload
	if transactionID == "" {
		log.Printf("[Webhook] Paid invoice %d carries no transaction id", update.Payload.InvoiceID)
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"error":   "missing transaction id",
		})
	}

	order, err := h.orders.GetByTransactionID(ctx, transactionID)
	if err != nil {
		log.Printf("[Webhook] Order not found for transaction %s: %v", transactionID, err)
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"success": false,
			"error":   "order not found",
		})
	}

	// Prevent duplicate processing
	if order.Status == domain.OrderStatusPaid {
		log.Printf("[Webhook] Order already paid: %s", order.OrderNo)
		return c.JSON(fiber.Map{
			"success": true,
			"message": "already processed",
		})
	}

	if err := h.orders.UpdateStatus(ctx, order.OrderNo, domain.OrderStatusPaid); err != nil {
		log.Printf("[Webhook] Failed to update order status: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"success": false,
			"error":   "failed to update order",
		})
	}

	log.Printf("[Webhook] Order %s marked as paid", order.OrderNo)
	return c.JSON(fiber.Map{
		"success": true,
		"message": "order updated",
	})
}
