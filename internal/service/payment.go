package service

import (
	"context"
	"fmt"
	"log"
	"strconv"

	"github.com/sexystyle/storefront/internal/config"
	"github.com/sexystyle/storefront/internal/domain"
	"github.com/sexystyle/storefront/internal/infrastructure/cryptopay"
)

// MockPaymentProvider is a mock implementation of domain.PaymentProvider for
// development without provider credentials.
type MockPaymentProvider struct{}

// CryptoPayAdapter adapts the cryptopay.Client to domain.PaymentProvider
type CryptoPayAdapter struct {
	client *cryptopay.Client
}

// NewPaymentProvider returns the appropriate PaymentProvider based on config.
// If no provider token is configured, returns a mock for development.
func NewPaymentProvider(cfg config.CryptoPayConfig) domain.PaymentProvider {
	if cfg.Token == "" {
		log.Println("[Payment] Using mock payment provider (no credentials configured)")
		return &MockPaymentProvider{}
	}

	log.Printf("[Payment] Using Crypto Pay provider (base: %s)", cfg.BaseURL)
	client := cryptopay.NewClient(cryptopay.Config{
		Token:   cfg.Token,
		BaseURL: cfg.BaseURL,
	})

	return &CryptoPayAdapter{client: client}
}

// CreateInvoice returns deterministic fake URLs keyed by the transaction ID.
func (m *MockPaymentProvider) CreateInvoice(ctx context.Context, intent domain.PaymentIntent) (*domain.InvoiceURLs, error) {
	if err := intent.Validate(); err != nil {
		return nil, err
	}

	return &domain.InvoiceURLs{
		MiniApp: "https://t.me/MockPayBot/app?startapp=invoice-" + intent.TransactionID,
		WebApp:  "https://mock.pay/invoice/" + intent.TransactionID,
		Bot:     "https://t.me/MockPayBot?start=" + intent.TransactionID,
	}, nil
}

// CreateInvoice creates a real invoice via the Crypto Pay API.
func (a *CryptoPayAdapter) CreateInvoice(ctx context.Context, intent domain.PaymentIntent) (*domain.InvoiceURLs, error) {
	if err := intent.Validate(); err != nil {
		return nil, err
	}

	inv, err := a.client.CreateInvoice(ctx, cryptopay.CreateInvoiceRequest{
		CurrencyType: "crypto",
		Asset:        intent.Asset,
		Amount:       strconv.FormatFloat(intent.Amount, 'f', 2, 64),
		Description:  intent.Description,
		Payload:      intent.TransactionID,
		ExpiresIn:    600, // seconds; matches the wallet interaction window
	})
	if err != nil {
		log.Printf("[Payment] Crypto Pay API error: %v", err)
		return nil, fmt.Errorf("payment provider error: %w", err)
	}

	urls := &domain.InvoiceURLs{
		MiniApp: inv.MiniAppInvoiceURL,
		WebApp:  inv.WebAppInvoiceURL,
		Bot:     inv.BotInvoiceURL,
	}
	if urls.Preferred() == "" {
		return nil, fmt.Errorf("payment provider returned no usable invoice URL")
	}

	return urls, nil
}
