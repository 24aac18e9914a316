package esimaccess

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/sexystyle/storefront/internal/domain"
)

// Config holds the wholesale supplier API configuration
type Config struct {
	BaseURL    string
	AccessCode string
}

// Client fetches the wholesale eSIM catalog. It is the normalization
// boundary: the supplier's response shape and minor-unit prices never leak
// past this package - callers only ever see priced domain.Plan values.
type Client struct {
	config     Config
	httpClient *http.Client
}

// NewClient creates a new supplier catalog client
func NewClient(cfg Config) *Client {
	return &Client{
		config: cfg,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// packageListRequest is the supplier's catalog query body
type packageListRequest struct {
	LocationCode string `json:"locationCode,omitempty"`
	Type         string `json:"type"`
}

// supplierPackage mirrors the supplier's wire format. Price is in minor
// units (cents); Location is a comma-separated code list.
type supplierPackage struct {
	PackageCode string   `json:"packageCode"`
	Name        string   `json:"name"`
	Volume      string   `json:"volume"`   // e.g. "5 GB"
	Duration    int      `json:"duration"` // days
	Price       int64    `json:"price"`    // cents
	Location    string   `json:"location"` // "KZ,KG,UZ"
	Description string   `json:"description"`
	Features    []string `json:"features"`
}

// packageListResponse is the supplier's {success, obj.packageList} envelope
type packageListResponse struct {
	Success   bool   `json:"success"`
	ErrorCode string `json:"errorCode"`
	ErrorMsg  string `json:"errorMsg"`
	Obj       struct {
		PackageList []supplierPackage `json:"packageList"`
	} `json:"obj"`
}

// ListPackages returns the priced catalog, optionally filtered by a location
// code. Wholesale prices arrive in cents and are converted to dollars here,
// before the markup calculator runs; entries with a non-positive price are
// logged and dropped.
func (c *Client) ListPackages(ctx context.Context, location string) ([]*domain.Plan, error) {
	reqBody := packageListRequest{
		LocationCode: location,
		Type:         "BASE",
	}

	jsonBody, err := json.Marshal(reqBody)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	url := c.config.BaseURL + "/api/v1/open/package/list"
	req, err := http.NewRequestWithContext(ctx, "POST", url, bytes.NewBuffer(jsonBody))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("RT-AccessCode", c.config.AccessCode)

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
		return nil, fmt.Errorf("supplier API error: status %d, body: %s", resp.StatusCode, string(respBody))
	}

	var apiResp packageListResponse
	if err := json.Unmarshal(respBody, &apiResp); err != nil {
		return nil, fmt.Errorf("failed to parse response: %w", err)
	}

	if !apiResp.Success {
		return nil, fmt.Errorf("supplier API error: %s %s", apiResp.ErrorCode, apiResp.ErrorMsg)
	}

	plans := make([]*domain.Plan, 0, len(apiResp.Obj.PackageList))
	for _, pkg := range apiResp.Obj.PackageList {
		if pkg.Price <= 0 {
			log.Printf("[Supplier] Skipping package %s: non-positive price %d", pkg.PackageCode, pkg.Price)
			continue
		}

		wholesale := float64(pkg.Price) / 100 // cents -> dollars

		plan := domain.NewPlan(
			pkg.PackageCode,
			pkg.Name,
			pkg.Volume,
			fmt.Sprintf("%d days", pkg.Duration),
			wholesale,
			splitLocations(pkg.Location),
			pkg.Description,
			pkg.Features,
		)
		plans = append(plans, &plan)
	}

	return plans, nil
}

// splitLocations normalizes the supplier's comma-separated location field
// into trimmed upper-case alpha-2 codes.
func splitLocations(raw string) []string {
	parts := strings.Split(raw, ",")
	codes := make([]string, 0, len(parts))
	for _, p := range parts {
		code := strings.ToUpper(strings.TrimSpace(p))
		if code != "" {
			codes = append(codes, code)
		}
	}
	return codes
}
