package domain

import (
	"context"
	"fmt"
)

// SupportedAssets lists the settlement currencies the payment collaborator
// accepts, in the order the client presents them.
var SupportedAssets = []string{"TON", "USDT", "BTC", "ETH", "LTC", "BNB", "TRX", "USDC"}

// IsSupportedAsset reports whether the asset code can be used for settlement.
func IsSupportedAsset(asset string) bool {
	for _, a := range SupportedAssets {
		if a == asset {
			return true
		}
	}
	return false
}

// PaymentIntent is one transient checkout attempt handed to the payment
// collaborator. TransactionID doubles as the collaborator-side idempotency
// key; the intent itself is never persisted.
type PaymentIntent struct {
	TransactionID string
	PlanID        string
	Amount        float64 // retail price, major units
	Asset         string
	Description   string
}

// Validate catches programmer errors before any network call is made.
func (p PaymentIntent) Validate() error {
	if p.TransactionID == "" {
		return fmt.Errorf("%w: transaction id is required", ErrInvalidIntent)
	}
	if p.PlanID == "" {
		return fmt.Errorf("%w: plan id is required", ErrInvalidIntent)
	}
	if p.Amount <= 0 {
		return fmt.Errorf("%w: amount must be positive", ErrInvalidIntent)
	}
	if !IsSupportedAsset(p.Asset) {
		return fmt.Errorf("%w: unsupported asset %q", ErrInvalidIntent, p.Asset)
	}
	return nil
}

// InvoiceURLs are the candidate settlement URLs returned by the payment
// collaborator the client tries in preference order.
type InvoiceURLs struct {
	MiniApp string `json:"mini_app_invoice_url,omitempty"`
	WebApp  string `json:"web_app_invoice_url,omitempty"`
	Bot     string `json:"bot_invoice_url,omitempty"`
}

// Preferred returns the first usable URL: the in-host mini-app invoice, then
// the generic web URL, then the bot fallback. Empty when the collaborator
// returned nothing usable.
func (u InvoiceURLs) Preferred() string {
	switch {
	case u.MiniApp != "":
		return u.MiniApp
	case u.WebApp != "":
		return u.WebApp
	default:
		return u.Bot
	}
}

// PaymentProvider is the external collaborator that turns a purchase intent
// into a payable invoice.
type PaymentProvider interface {
	CreateInvoice(ctx context.Context, intent PaymentIntent) (*InvoiceURLs, error)
}
