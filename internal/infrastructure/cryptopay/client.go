package cryptopay

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"strconv"
	"time"
)

// Config holds Crypto Pay API configuration
type Config struct {
	Token   string // App token issued by the payment provider
	BaseURL string // https://pay.crypt.bot or the testnet endpoint
}

// Client is the Crypto Pay API client
type Client struct {
	config     Config
	httpClient *http.Client
}

// NewClient creates a new Crypto Pay client
func NewClient(cfg Config) *Client {
	return &Client{
		config: cfg,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// CreateInvoiceRequest represents the request body for invoice creation
type CreateInvoiceRequest struct {
	CurrencyType   string `json:"currency_type"` // "crypto"
	Asset          string `json:"asset"`
	Amount         string `json:"amount"` // decimal string, major units
	Description    string `json:"description,omitempty"`
	Payload        string `json:"payload,omitempty"` // opaque, echoed back in webhooks
	ExpiresIn      int    `json:"expires_in,omitempty"`
	AllowComments  bool   `json:"allow_comments"`
	AllowAnonymous bool   `json:"allow_anonymous"`
}

// Invoice is the provider-side invoice record
type Invoice struct {
	InvoiceID         int64  `json:"invoice_id"`
	Hash              string `json:"hash"`
	Asset             string `json:"asset"`
	Amount            string `json:"amount"`
	Status            string `json:"status"` // active, paid, expired
	Payload           string `json:"payload"`
	BotInvoiceURL     string `json:"bot_invoice_url"`
	MiniAppInvoiceURL string `json:"mini_app_invoice_url"`
	WebAppInvoiceURL  string `json:"web_app_invoice_url"`
	CreatedAt         string `json:"created_at"`
	PaidAt            string `json:"paid_at,omitempty"`
}

// apiResponse is the {ok, result} envelope every Crypto Pay endpoint returns
type apiResponse struct {
	Ok     bool            `json:"ok"`
	Result json.RawMessage `json:"result"`
	Error  *apiError       `json:"error,omitempty"`
}

type apiError struct {
	Code int    `json:"code"`
	Name string `json:"name"`
}

// CreateInvoice creates a crypto invoice and returns the provider record with
// the candidate payment URLs.
func (c *Client) CreateInvoice(ctx context.Context, req CreateInvoiceRequest) (*Invoice, error) {
	raw, err := c.call(ctx, "createInvoice", req)
	if err != nil {
		return nil, err
	}

	var inv Invoice
	if err := json.Unmarshal(raw, &inv); err != nil {
		return nil, fmt.Errorf("failed to parse invoice: %w", err)
	}
	return &inv, nil
}

// GetInvoices fetches invoices by provider IDs, used to reconcile order
// status when a webhook was missed.
func (c *Client) GetInvoices(ctx context.Context, invoiceIDs []int64) ([]Invoice, error) {
	ids := make([]string, len(invoiceIDs))
	for i, id := range invoiceIDs {
		ids[i] = strconv.FormatInt(id, 10)
	}

	raw, err := c.call(ctx, "getInvoices", map[string]interface{}{
		"invoice_ids": ids,
	})
	if err != nil {
		return nil, err
	}

	var result struct {
		Items []Invoice `json:"items"`
	}
	if err := json.Unmarshal(raw, &result); err != nil {
		return nil, fmt.Errorf("failed to parse invoices: %w", err)
	}
	return result.Items, nil
}

// call executes one API method and unwraps the {ok, result} envelope.
func (c *Client) call(ctx context.Context, method string, body interface{}) (json.RawMessage, error) {
	url := c.config.BaseURL + "/api/" + method

	jsonBody, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, "POST", url, bytes.NewBuffer(jsonBody))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Crypto-Pay-API-Token", c.config.Token)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to execute request: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		log.Printf("[CryptoPay] %s failed: status %d, body: %s", method, resp.StatusCode, string(respBody))
		return nil, fmt.Errorf("crypto pay API error: status %d", resp.StatusCode)
	}

	var apiResp apiResponse
	if err := json.Unmarshal(respBody, &apiResp); err != nil {
		return nil, fmt.Errorf("failed to parse response: %w", err)
	}

	if !apiResp.Ok {
		if apiResp.Error != nil {
			return nil, fmt.Errorf("crypto pay API error: %d %s", apiResp.Error.Code, apiResp.Error.Name)
		}
		return nil, fmt.Errorf("crypto pay API error: not ok")
	}

	return apiResp.Result, nil
}

// VerifyWebhookSignature checks the crypto-pay-api-signature header: an
// HMAC-SHA256 of the raw body, keyed with SHA256 of the app token.
func (c *Client) VerifyWebhookSignature(body []byte, signature string) bool {
	return VerifyWebhookSignature(c.config.Token, body, signature)
}

// VerifyWebhookSignature is the token-explicit form used by the webhook
// handler, which does not hold a full client.
func VerifyWebhookSignature(token string, body []byte, signature string) bool {
	secret := sha256.Sum256([]byte(token))
	mac := hmac.New(sha256.New, secret[:])
	mac.Write(body)
	expected := hex.EncodeToString(mac.Sum(nil))
	return hmac.Equal([]byte(expected), []byte(signature))
}
