package esimaccess

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestListPackages(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/v1/open/package/list", r.URL.Path)
		assert.Equal(t, "test-access-code", r.Header.Get("RT-AccessCode"))

		var req packageListRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "KZ", req.LocationCode)
		assert.Equal(t, "BASE", req.Type)

		json.NewEncoder(w).Encode(map[string]interface{}{
			"success": true,
			"obj": map[string]interface{}{
				"packageList": []supplierPackage{
					{
						PackageCode: "KZ-1GB-7D",
						Name:        "Kazakhstan 1GB",
						Volume:      "1 GB",
						Duration:    7,
						Price:       250, // cents
						Location:    "KZ",
					},
					{
						PackageCode: "ASIA-10GB-30D",
						Name:        "Asia Regional 10GB",
						Volume:      "10 GB",
						Duration:    30,
						Price:       3500,
						Location:    " kz , KG,UZ",
					},
					{
						PackageCode: "BROKEN",
						Name:        "Broken entry",
						Price:       0, // dropped
						Location:    "KZ",
					},
				},
			},
		})
	}))
	defer server.Close()

	client := NewClient(Config{BaseURL: server.URL, AccessCode: "test-access-code"})

	plans, err := client.ListPackages(context.Background(), "KZ")
	require.NoError(t, err)
	require.Len(t, plans, 2, "non-positive price entries are dropped")

	// Cents converted to dollars before pricing: 250 cents -> $2.50 -> $4.75
	assert.InDelta(t, 2.50, plans[0].WholesalePrice, 0.001)
	assert.InDelta(t, 4.75, plans[0].RetailPrice, 0.001)
	assert.Equal(t, "7 days", plans[0].Validity)

	// Location CSV normalized to trimmed upper-case codes
	assert.Equal(t, []string{"KZ", "KG", "UZ"}, plans[1].Locations)
	// 3500 cents -> $35.00 -> 60% markup -> $56.00
	assert.InDelta(t, 56.00, plans[1].RetailPrice, 0.001)
}

func TestListPackagesSupplierError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]interface{}{
			"success":   false,
			"errorCode": "310201",
			"errorMsg":  "access code invalid",
		})
	}))
	defer server.Close()

	client := NewClient(Config{BaseURL: server.URL, AccessCode: "bad"})

	_, err := client.ListPackages(context.Background(), "")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "310201")
}

func TestListPackagesHTTPError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer server.Close()

	client := NewClient(Config{BaseURL: server.URL})

	_, err := client.ListPackages(context.Background(), "")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "status 502")
}
