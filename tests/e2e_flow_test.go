package tests

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/sexystyle/storefront/internal/config"
	"github.com/sexystyle/storefront/internal/domain"
	"github.com/sexystyle/storefront/internal/repository"
	"github.com/sexystyle/storefront/internal/server"
	"github.com/sexystyle/storefront/internal/service"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fixedSupplier keeps Refresh functional without a supplier account.
type fixedSupplier struct {
	plans []*domain.Plan
}

func (s *fixedSupplier) ListPackages(ctx context.Context, location string) ([]*domain.Plan, error) {
	return s.plans, nil
}

func TestGoldenPath(t *testing.T) {
	// 1. Setup Infrastructure
	// MongoDB (Container)
	db, cleanupDB := SetupTestDB(t)
	defer cleanupDB()

	// Redis (Miniredis for speed/simplicity, or Container)
	mr, err := miniredis.Run()
	require.NoError(t, err)
	defer mr.Close()

	redisClient := redis.NewClient(&redis.Options{
		Addr: mr.Addr(),
	})

	// Config (Minimal)
	cfg := &config.Config{}
	cfg.JWT.Secret = "test-secret-key-123"
	cfg.JWT.AccessTokenExpiry = time.Hour
	cfg.Telegram.BotToken = "123456:TEST_BOT_TOKEN"
	cfg.Checkout.Mode = config.CheckoutModeSingle
	cfg.Checkout.IdempotencyTTL = time.Minute
	cfg.Supplier.CacheTTL = time.Minute

	// 2. Initialize App with a mock payment provider
	app := server.NewApp(server.AppDependencies{
		Config:          cfg,
		MongoDB:         db,
		RedisClient:     redisClient,
		PaymentProvider: &service.MockPaymentProvider{},
		SupplierClient:  &fixedSupplier{},
	})

	// Helper for requests
	request := func(method, path, token string, body interface{}) *http.Response {
		var bodyReader io.Reader
		if body != nil {
			jsonBytes, _ := json.Marshal(body)
			bodyReader = bytes.NewReader(jsonBytes)
		}
		req, _ := http.NewRequest(method, path, bodyReader)
		req.Header.Set("Content-Type", "application/json")
		if token != "" {
			req.Header.Set("Authorization", "Bearer "+token)
		}
		resp, err := app.Test(req, -1) // -1 disables timeout
		require.NoError(t, err)
		return resp
	}

	decode := func(resp *http.Response) map[string]interface{} {
		var data map[string]interface{}
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&data))
		return data
	}

	// ==========================================
	// STEP 1: Seed catalog
	// ==========================================
	planRepo := repository.NewMongoPlanRepository(db)
	kz := domain.NewPlan("KZ-1GB-7D", "Kazakhstan 1GB", "1GB", "7 days", 2.50, []string{"KZ"}, "Data-only eSIM", nil)
	kr := domain.NewPlan("KR-5GB-15D", "South Korea 5GB", "5GB", "15 days", 14.50, []string{"KR"}, "Data-only eSIM", nil)
	require.NoError(t, planRepo.Upsert(context.Background(), &kz))
	require.NoError(t, planRepo.Upsert(context.Background(), &kr))

	// ==========================================
	// STEP 2: Login with signed Mini App init data
	// ==========================================
	authService := service.NewAuthService(cfg.Telegram.BotToken, cfg.JWT)
	initData, err := authService.SignInitData(service.TelegramUser{ID: 42, Username: "traveller"}, time.Now())
	require.NoError(t, err)

	resp := request("POST", "/v1/auth/login", "", map[string]string{"init_data": initData})
	assert.Equal(t, 200, resp.StatusCode)

	loginData := decode(resp)["data"].(map[string]interface{})
	token := loginData["access_token"].(string)
	require.NotEmpty(t, token)

	fmt.Println("✓ Mini App user logged in")

	// Tampered init data is rejected
	resp = request("POST", "/v1/auth/login", "", map[string]string{"init_data": initData + "x"})
	assert.Equal(t, 401, resp.StatusCode)

	// ==========================================
	// STEP 3: Browse the catalog (public)
	// ==========================================
	resp = request("GET", "/v1/packages", "", nil)
	assert.Equal(t, 200, resp.StatusCode)

	packages := decode(resp)["data"].([]interface{})
	require.Len(t, packages, 2)
	// Catalog exposes derived retail prices, cheapest first
	first := packages[0].(map[string]interface{})
	assert.Equal(t, "KZ-1GB-7D", first["id"])
	assert.InDelta(t, 4.75, first["price"].(float64), 0.001) // 2.50 * 1.9

	resp = request("GET", "/v1/countries", "", nil)
	assert.Equal(t, 200, resp.StatusCode)
	countries := decode(resp)["data"].([]interface{})
	assert.Len(t, countries, 2)

	fmt.Println("✓ Catalog listed with retail prices")

	// ==========================================
	// STEP 4: Cart requires auth
	// ==========================================
	resp = request("GET", "/v1/cart", "", nil)
	assert.Equal(t, 401, resp.StatusCode)

	// ==========================================
	// STEP 5: Build the cart
	// ==========================================
	resp = request("POST", "/v1/cart/items", token, map[string]string{"package_id": "KZ-1GB-7D"})
	assert.Equal(t, 200, resp.StatusCode)
	addData := decode(resp)
	assert.Equal(t, false, addData["duplicate"])

	// Duplicate add leaves the cart unchanged
	resp = request("POST", "/v1/cart/items", token, map[string]string{"package_id": "KZ-1GB-7D"})
	assert.Equal(t, 200, resp.StatusCode)
	addData = decode(resp)
	assert.Equal(t, true, addData["duplicate"])
	cartData := addData["data"].(map[string]interface{})
	assert.Len(t, cartData["items"].([]interface{}), 1)

	// Unknown package is a 404
	resp = request("POST", "/v1/cart/items", token, map[string]string{"package_id": "NOPE"})
	assert.Equal(t, 404, resp.StatusCode)

	resp = request("POST", "/v1/cart/items", token, map[string]string{"package_id": "KR-5GB-15D"})
	assert.Equal(t, 200, resp.StatusCode)

	resp = request("GET", "/v1/cart", token, nil)
	assert.Equal(t, 200, resp.StatusCode)
	cartData = decode(resp)["data"].(map[string]interface{})
	assert.Len(t, cartData["items"].([]interface{}), 2)
	assert.InDelta(t, 30.85, cartData["total"].(float64), 0.001) // 4.75 + 26.10

	fmt.Println("✓ Cart built:", cartData["total"])

	// ==========================================
	// STEP 6: Checkout
	// ==========================================
	// Unsupported asset is rejected before any invoice is created
	resp = request("POST", "/v1/cart/checkout", token, map[string]string{"asset": "DOGE"})
	assert.Equal(t, 400, resp.StatusCode)

	resp = request("POST", "/v1/cart/checkout", token, map[string]string{"asset": "USDT"})
	assert.Equal(t, 201, resp.StatusCode)

	checkoutData := decode(resp)["data"].(map[string]interface{})
	orderNo := checkoutData["order_no"].(string)
	require.NotEmpty(t, orderNo)
	// Single mode pays the first member only
	assert.InDelta(t, 4.75, checkoutData["total"].(float64), 0.001)
	invoices := checkoutData["invoices"].([]interface{})
	require.Len(t, invoices, 1)
	assert.NotEmpty(t, invoices[0].(map[string]interface{})["mini_app_invoice_url"])

	fmt.Println("✓ Checkout created order:", orderNo)

	// The paid member left the cart, the other stays
	resp = request("GET", "/v1/cart", token, nil)
	cartData = decode(resp)["data"].(map[string]interface{})
	items := cartData["items"].([]interface{})
	require.Len(t, items, 1)
	assert.Equal(t, "KR-5GB-15D", items[0].(map[string]interface{})["id"])

	// ==========================================
	// STEP 7: Order visible and pending
	// ==========================================
	resp = request("GET", "/v1/orders/"+orderNo, token, nil)
	assert.Equal(t, 200, resp.StatusCode)
	orderData := decode(resp)["data"].(map[string]interface{})
	assert.Equal(t, "pending", orderData["status"])
	assert.Equal(t, "USDT", orderData["asset"])

	resp = request("GET", "/v1/orders", token, nil)
	assert.Equal(t, 200, resp.StatusCode)
	orders := decode(resp)["data"].([]interface{})
	assert.Len(t, orders, 1)

	fmt.Println("✓ Order recorded as pending")

	// ==========================================
	// STEP 8: Provider webhook settles the order
	// ==========================================
	txIDs := orderData["transaction_ids"].([]interface{})
	require.Len(t, txIDs, 1)

	webhookBody, _ := json.Marshal(map[string]interface{}{
		"update_id":   1,
		"update_type": "invoice_paid",
		"payload": map[string]interface{}{
			"invoice_id": 123,
			"status":     "paid",
			"asset":      "USDT",
			"amount":     "4.75",
			"payload":    txIDs[0],
		},
	})

	secret := sha256.Sum256([]byte(cfg.CryptoPay.Token))
	mac := hmac.New(sha256.New, secret[:])
	mac.Write(webhookBody)
	signature := hex.EncodeToString(mac.Sum(nil))

	// A bad signature is rejected
	req, _ := http.NewRequest("POST", "/v1/payments/webhook/cryptopay", bytes.NewReader(webhookBody))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Crypto-Pay-Api-Signature", "deadbeef")
	resp, err = app.Test(req, -1)
	require.NoError(t, err)
	assert.Equal(t, 401, resp.StatusCode)

	// The signed delivery marks the order paid
	req, _ = http.NewRequest("POST", "/v1/payments/webhook/cryptopay", bytes.NewReader(webhookBody))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Crypto-Pay-Api-Signature", signature)
	resp, err = app.Test(req, -1)
	require.NoError(t, err)
	assert.Equal(t, 200, resp.StatusCode)

	// Redelivery is idempotent
	req, _ = http.NewRequest("POST", "/v1/payments/webhook/cryptopay", bytes.NewReader(webhookBody))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Crypto-Pay-Api-Signature", signature)
	resp, err = app.Test(req, -1)
	require.NoError(t, err)
	assert.Equal(t, 200, resp.StatusCode)

	resp = request("GET", "/v1/orders/"+orderNo, token, nil)
	orderData = decode(resp)["data"].(map[string]interface{})
	assert.Equal(t, "paid", orderData["status"])

	fmt.Println("✓ Webhook settled the order")

	// ==========================================
	// STEP 9: Clear the cart
	// ==========================================
	resp = request("DELETE", "/v1/cart", token, nil)
	assert.Equal(t, 200, resp.StatusCode)

	resp = request("GET", "/v1/cart", token, nil)
	cartData = decode(resp)["data"].(map[string]interface{})
	assert.Empty(t, cartData["items"])

	fmt.Println("✓ Cart cleared")
}
