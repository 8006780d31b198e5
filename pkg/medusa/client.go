// Package medusa is a thin HTTP client for a headless Medusa commerce
// backend. Store endpoints authenticate with a publishable key, admin
// endpoints with the admin API key.
package medusa

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync/atomic"

	"github.com/hashicorp/go-retryablehttp"

	"github.com/s4trading/storefront-backend/pkg/config"
	pkgerrors "github.com/s4trading/storefront-backend/pkg/errors"
	"github.com/s4trading/storefront-backend/pkg/logger"
)

const (
	authModeAuto   = "auto"
	authModeBearer = "bearer"
	authModeBasic  = "basic"

	listLimit = 100
)

// Client talks to one Medusa deployment.
type Client struct {
	baseURL        string
	adminKey       string
	adminAuthMode  string
	publishableKey string
	regionID       string
	salesChannelID string
	countryCode    string
	httpClient     *http.Client
	logg           *logger.Logger

	// basicFallback flips to true after a bearer request is rejected so
	// subsequent calls skip the doomed first attempt. Atomic because the
	// client is shared across request handlers.
	basicFallback atomic.Bool
}

// NewClient builds a client from the Medusa section of the config. Retries
// with backoff are handled by the underlying transport.
func NewClient(cfg config.MedusaConfig, logg *logger.Logger) (*Client, error) {
	baseURL := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if baseURL == "" {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "medusa base url is required")
	}

	retry := retryablehttp.NewClient()
	retry.RetryMax = 3
	retry.Logger = nil
	retry.HTTPClient.Timeout = cfg.RequestTimeout

	mode := strings.TrimSpace(strings.ToLower(cfg.AdminAuthMode))
	if mode == "" {
		mode = authModeAuto
	}

	return &Client{
		baseURL:        baseURL,
		adminKey:       strings.TrimSpace(cfg.AdminAPIKey),
		adminAuthMode:  mode,
		publishableKey: strings.TrimSpace(cfg.PublishableKey),
		regionID:       cfg.RegionID,
		salesChannelID: cfg.SalesChannelID,
		countryCode:    cfg.CountryCode,
		httpClient:     retry.StandardClient(),
		logg:           logg,
	}, nil
}

// ListProducts fetches the store catalog with region pricing applied.
func (c *Client) ListProducts(ctx context.Context) ([]Product, error) {
	query := url.Values{}
	query.Set("limit", fmt.Sprintf("%d", listLimit))
	query.Set("fields", "*variants.calculated_price,*categories,*collection")
	if c.regionID != "" {
		query.Set("region_id", c.regionID)
	}
	if c.countryCode != "" {
		query.Set("country_code", c.countryCode)
	}

	payload, err := c.storeRequest(ctx, http.MethodGet, "/store/products?"+query.Encode(), nil)
	if err != nil {
		return nil, err
	}

	var body struct {
		Products []Product `json:"products"`
		Data     []Product `json:"data"`
	}
	if err := json.Unmarshal(payload, &body); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "decode products response")
	}
	if body.Products != nil {
		return body.Products, nil
	}
	return body.Data, nil
}

// FindCustomerByEmail returns the first admin customer matching the email,
// or nil when none exists.
func (c *Client) FindCustomerByEmail(ctx context.Context, email string) (*Customer, error) {
	path := fmt.Sprintf("/admin/customers?email=%s&limit=1", url.QueryEscape(email))
	payload, err := c.adminRequest(ctx, http.MethodGet, path, nil)
	if err != nil {
		return nil, err
	}

	customers, err := decodeCustomerList(payload)
	if err != nil {
		return nil, err
	}
	if len(customers) == 0 {
		return nil, nil
	}
	return &customers[0], nil
}

// CreateCustomer registers a new admin customer carrying the storefront user
// id in metadata.
func (c *Client) CreateCustomer(ctx context.Context, input CustomerInput) (*Customer, error) {
	firstName := input.RestaurantName
	if firstName == "" {
		firstName = "S4"
	}

	body := map[string]any{
		"email":      input.Email,
		"first_name": firstName,
		"last_name":  "Customer",
		"metadata": map[string]any{
			"supabase_user_id": input.UserID,
			"restaurant_name":  input.RestaurantName,
		},
	}
	if input.Phone != "" {
		body["phone"] = input.Phone
	}

	payload, err := c.adminRequest(ctx, http.MethodPost, "/admin/customers", body)
	if err != nil {
		return nil, err
	}
	return decodeCustomer(payload)
}

// GetOrder fetches one order through the admin API.
func (c *Client) GetOrder(ctx context.Context, orderID string) (*Order, error) {
	payload, err := c.adminRequest(ctx, http.MethodGet, "/admin/orders/"+url.PathEscape(orderID), nil)
	if err != nil {
		return nil, err
	}
	return decodeOrder(payload)
}

// ListOrdersByCustomer fetches the customer's orders, newest Medusa default
// ordering.
func (c *Client) ListOrdersByCustomer(ctx context.Context, customerID string) ([]Order, error) {
	path := fmt.Sprintf("/admin/orders?customer_id=%s&limit=%d", url.QueryEscape(customerID), listLimit)
	payload, err := c.adminRequest(ctx, http.MethodGet, path, nil)
	if err != nil {
		return nil, err
	}

	var body struct {
		Orders []Order `json:"orders"`
		Data   []Order `json:"data"`
	}
	if err := json.Unmarshal(payload, &body); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "decode orders response")
	}
	if body.Orders != nil {
		return body.Orders, nil
	}
	return body.Data, nil
}

// CreateOrder creates an order directly; when the deployment rejects direct
// order creation it falls back to a draft order completed immediately.
func (c *Client) CreateOrder(ctx context.Context, input OrderInput) (*Order, error) {
	body := map[string]any{
		"customer_id": input.CustomerID,
		"items":       input.Items,
		"metadata":    input.Metadata,
	}
	if c.regionID != "" {
		body["region_id"] = c.regionID
	}
	if c.salesChannelID != "" {
		body["sales_channel_id"] = c.salesChannelID
	}

	payload, directErr := c.adminRequest(ctx, http.MethodPost, "/admin/orders", body)
	if directErr == nil {
		return decodeOrder(payload)
	}

	if c.logg != nil {
		c.logg.Warn(ctx, "direct order creation rejected, trying draft order")
	}

	draftPayload, err := c.adminRequest(ctx, http.MethodPost, "/admin/draft-orders", body)
	if err != nil {
		return nil, directErr
	}
	draft, err := decodeOrder(draftPayload)
	if err != nil {
		return nil, err
	}

	completed, err := c.adminRequest(ctx, http.MethodPost, "/admin/draft-orders/"+url.PathEscape(draft.ID)+"/complete", nil)
	if err != nil {
		return nil, err
	}
	return decodeOrder(completed)
}

// CaptureOrder captures the order's payment collection and returns the
// refreshed order.
func (c *Client) CaptureOrder(ctx context.Context, orderID string) (*Order, error) {
	if _, err := c.adminRequest(ctx, http.MethodPost, "/admin/orders/"+url.PathEscape(orderID)+"/capture", nil); err != nil {
		return nil, err
	}
	return c.GetOrder(ctx, orderID)
}

func (c *Client) storeRequest(ctx context.Context, method, path string, body any) ([]byte, error) {
	headers := http.Header{}
	if c.publishableKey != "" {
		headers.Set("x-publishable-api-key", c.publishableKey)
	}
	return c.do(ctx, method, path, body, headers)
}

func (c *Client) adminRequest(ctx context.Context, method, path string, body any) ([]byte, error) {
	if c.adminKey == "" {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "medusa admin api key is required")
	}

	if c.adminAuthMode != authModeBasic && !c.basicFallback.Load() {
		headers := http.Header{}
		headers.Set("Authorization", "Bearer "+c.adminKey)
		headers.Set("x-medusa-access-token", c.adminKey)

		payload, err := c.do(ctx, method, path, body, headers)
		if err == nil {
			return payload, nil
		}
		if c.adminAuthMode == authModeBearer || !isAuthError(err) {
			return nil, err
		}
		c.basicFallback.Store(true)
		if c.logg != nil {
			c.logg.Warn(ctx, "medusa bearer auth rejected, falling back to basic")
		}
	}

	headers := http.Header{}
	headers.Set("Authorization", "Basic "+c.adminKey)
	return c.do(ctx, method, path, body, headers)
}

func (c *Client) do(ctx context.Context, method, path string, body any, headers http.Header) ([]byte, error) {
	var reader io.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "encode request body")
		}
		reader = bytes.NewReader(encoded)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "create request")
	}
	req.Header.Set("Content-Type", "application/json")
	for key, values := range headers {
		for _, value := range values {
			req.Header.Set(key, value)
		}
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "medusa request failed")
	}
	defer resp.Body.Close()

	payload, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "read medusa response")
	}

	switch {
	case resp.StatusCode >= http.StatusOK && resp.StatusCode < http.StatusMultipleChoices:
		return payload, nil
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, fmt.Sprintf("medusa rejected credentials (%d)", resp.StatusCode))
	case resp.StatusCode == http.StatusNotFound:
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "medusa resource not found")
	default:
		return nil, pkgerrors.New(pkgerrors.CodeDependency,
			fmt.Sprintf("medusa %s %s returned %d: %s", method, path, resp.StatusCode, truncate(payload, 200)))
	}
}

func isAuthError(err error) bool {
	return pkgerrors.HasCode(err, pkgerrors.CodeUnauthorized)
}

func decodeCustomer(payload []byte) (*Customer, error) {
	var body struct {
		Customer  *Customer  `json:"customer"`
		Customers []Customer `json:"customers"`
		Data      []Customer `json:"data"`
	}
	if err := json.Unmarshal(payload, &body); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "decode customer response")
	}
	if body.Customer != nil {
		return body.Customer, nil
	}
	if len(body.Customers) > 0 {
		return &body.Customers[0], nil
	}
	if len(body.Data) > 0 {
		return &body.Data[0], nil
	}
	return nil, pkgerrors.New(pkgerrors.CodeDependency, "customer missing from response")
}

func decodeCustomerList(payload []byte) ([]Customer, error) {
	var body struct {
		Customers []Customer `json:"customers"`
		Data      []Customer `json:"data"`
	}
	if err := json.Unmarshal(payload, &body); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "decode customers response")
	}
	if body.Customers != nil {
		return body.Customers, nil
	}
	return body.Data, nil
}

func decodeOrder(payload []byte) (*Order, error) {
	var body struct {
		Order      *Order `json:"order"`
		DraftOrder *Order `json:"draft_order"`
		Data       *struct {
			Order *Order `json:"order"`
		} `json:"data"`
	}
	if err := json.Unmarshal(payload, &body); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "decode order response")
	}
	if body.Order != nil {
		return body.Order, nil
	}
	if body.DraftOrder != nil {
		return body.DraftOrder, nil
	}
	if body.Data != nil && body.Data.Order != nil {
		return body.Data.Order, nil
	}
	return nil, pkgerrors.New(pkgerrors.CodeDependency, "order missing from response")
}

func truncate(payload []byte, max int) string {
	text := strings.TrimSpace(string(payload))
	if len(text) > max {
		return text[:max]
	}
	return text
}
