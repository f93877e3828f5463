package shopify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"regexp"
	"strconv"
	"time"

	"go.uber.org/zap"

	"github.com/shopsync/backend/internal/domain/integration"
	"github.com/shopsync/backend/internal/infrastructure/config"
)

// maxResponseSize is the maximum allowed response size from the API (10MB)
const maxResponseSize = 10 * 1024 * 1024

// linkNextRe extracts the page_info cursor from the Link response header
var linkNextRe = regexp.MustCompile(`<[^>]*[?&]page_info=([^&>]+)[^>]*>;\s*rel="next"`)

// Client implements the Platform port against the REST Admin API
type Client struct {
	baseURL    string
	token      string
	locationID string
	httpClient *http.Client
	retry      RetryPolicy
	logger     *zap.Logger
}

// NewClient creates a client from configuration
func NewClient(cfg *config.ShopifyConfig, retry RetryPolicy, logger *zap.Logger) (*Client, error) {
	if cfg.ShopDomain == "" {
		return nil, fmt.Errorf("%w: shop domain is empty", integration.ErrConfiguration)
	}
	if cfg.AccessToken == "" {
		return nil, fmt.Errorf("%w: access token is empty", integration.ErrConfiguration)
	}
	return &Client{
		baseURL:    fmt.Sprintf("https://%s/admin/api/%s", cfg.ShopDomain, cfg.APIVersion),
		token:      cfg.AccessToken,
		locationID: cfg.LocationID,
		httpClient: &http.Client{Timeout: cfg.Timeout},
		retry:      retry,
		logger:     logger,
	}, nil
}

// NewClientWithBaseURL creates a client against an explicit base URL.
// Used by tests running against a local server.
func NewClientWithBaseURL(baseURL, token string, logger *zap.Logger) *Client {
	return &Client{
		baseURL:    baseURL,
		token:      token,
		httpClient: &http.Client{Timeout: 10 * time.Second},
		retry:      RetryPolicy{MaxAttempts: 1},
		logger:     logger,
	}
}

// FetchProduct fetches one product by its numeric id
func (c *Client) FetchProduct(ctx context.Context, externalID string) (*integration.RemoteProduct, error) {
	var envelope productEnvelope
	path := fmt.Sprintf("/products/%s.json", url.PathEscape(externalID))
	if _, err := c.doJSON(ctx, http.MethodGet, path, nil, &envelope); err != nil {
		return nil, err
	}
	remote := envelope.Product.toRemote()
	return &remote, nil
}

// ListProducts fetches one page of the product listing. The next-page
// cursor comes from the Link response header.
func (c *Client) ListProducts(ctx context.Context, req integration.PageRequest) (*integration.ProductPage, error) {
	q := url.Values{}
	if req.Limit > 0 {
		q.Set("limit", strconv.Itoa(req.Limit))
	}
	if req.PageInfo != "" {
		q.Set("page_info", req.PageInfo)
	}
	path := "/products.json"
	if len(q) > 0 {
		path += "?" + q.Encode()
	}

	var envelope productsEnvelope
	header, err := c.doJSON(ctx, http.MethodGet, path, nil, &envelope)
	if err != nil {
		return nil, err
	}

	page := &integration.ProductPage{
		Products:     make([]integration.RemoteProduct, 0, len(envelope.Products)),
		NextPageInfo: parseNextPageInfo(header.Get("Link")),
	}
	for _, p := range envelope.Products {
		page.Products = append(page.Products, p.toRemote())
	}
	return page, nil
}

// CreateProduct creates the product remotely and returns the platform's
// representation carrying the minted identifiers.
func (c *Client) CreateProduct(ctx context.Context, export integration.ProductExport) (*integration.RemoteProduct, error) {
	wire, err := exportToWire(export)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", integration.ErrValidationRejected, err)
	}
	wire.ID = 0

	var envelope productEnvelope
	if _, err := c.doJSON(ctx, http.MethodPost, "/products.json", productEnvelope{Product: wire}, &envelope); err != nil {
		return nil, err
	}
	remote := envelope.Product.toRemote()
	return &remote, nil
}

// UpdateProduct updates the remote product in place
func (c *Client) UpdateProduct(ctx context.Context, export integration.ProductExport) (*integration.RemoteProduct, error) {
	if export.ExternalID == "" {
		return nil, fmt.Errorf("%w: update requires an external id", integration.ErrValidationRejected)
	}
	wire, err := exportToWire(export)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", integration.ErrValidationRejected, err)
	}

	var envelope productEnvelope
	path := fmt.Sprintf("/products/%s.json", url.PathEscape(export.ExternalID))
	if _, err := c.doJSON(ctx, http.MethodPut, path, productEnvelope{Product: wire}, &envelope); err != nil {
		return nil, err
	}
	remote := envelope.Product.toRemote()
	return &remote, nil
}

// DeleteProduct deletes the remote product
func (c *Client) DeleteProduct(ctx context.Context, externalID string) error {
	path := fmt.Sprintf("/products/%s.json", url.PathEscape(externalID))
	_, err := c.doJSON(ctx, http.MethodDelete, path, nil, nil)
	return err
}

// SetInventoryLevel sets the absolute available quantity at a location
func (c *Client) SetInventoryLevel(ctx context.Context, inventoryItemID, locationID string, quantity int64) error {
	req, err := c.inventoryRequest(inventoryItemID, locationID)
	if err != nil {
		return err
	}
	body := inventoryLevelSetRequest{
		LocationID:      req.location,
		InventoryItemID: req.item,
		Available:       quantity,
	}
	_, err = c.doJSON(ctx, http.MethodPost, "/inventory_levels/set.json", body, nil)
	return err
}

// AdjustInventoryLevel applies a signed adjustment at a location
func (c *Client) AdjustInventoryLevel(ctx context.Context, inventoryItemID, locationID string, delta int64) error {
	req, err := c.inventoryRequest(inventoryItemID, locationID)
	if err != nil {
		return err
	}
	body := inventoryLevelAdjustRequest{
		LocationID:          req.location,
		InventoryItemID:     req.item,
		AvailableAdjustment: delta,
	}
	_, err = c.doJSON(ctx, http.MethodPost, "/inventory_levels/adjust.json", body, nil)
	return err
}

// ListLocations lists the shop's stock locations
func (c *Client) ListLocations(ctx context.Context) ([]integration.Location, error) {
	var envelope locationsEnvelope
	if _, err := c.doJSON(ctx, http.MethodGet, "/locations.json", nil, &envelope); err != nil {
		return nil, err
	}
	locations := make([]integration.Location, 0, len(envelope.Locations))
	for _, l := range envelope.Locations {
		locations = append(locations, integration.Location{
			ID:     formatID(l.ID),
			Name:   l.Name,
			Active: l.Active,
		})
	}
	return locations, nil
}

type inventoryIDs struct {
	item     int64
	location int64
}

func (c *Client) inventoryRequest(inventoryItemID, locationID string) (inventoryIDs, error) {
	if locationID == "" {
		locationID = c.locationID
	}
	item, err := strconv.ParseInt(inventoryItemID, 10, 64)
	if err != nil {
		return inventoryIDs{}, fmt.Errorf("%w: bad inventory item id %q", integration.ErrValidationRejected, inventoryItemID)
	}
	location, err := strconv.ParseInt(locationID, 10, 64)
	if err != nil {
		return inventoryIDs{}, fmt.Errorf("%w: bad location id %q", integration.ErrValidationRejected, locationID)
	}
	return inventoryIDs{item: item, location: location}, nil
}

// doJSON performs a request with retry, decoding the response into out
// when out is non-nil. It returns the response header for cursor
// extraction.
func (c *Client) doJSON(ctx context.Context, method, path string, in, out interface{}) (http.Header, error) {
	var header http.Header
	err := c.retry.Do(ctx, func() error {
		h, err := c.doOnce(ctx, method, path, in, out)
		if err != nil {
			return err
		}
		header = h
		return nil
	})
	return header, err
}

func (c *Client) doOnce(ctx context.Context, method, path string, in, out interface{}) (http.Header, error) {
	var reqBody io.Reader
	if in != nil {
		encoded, err := json.Marshal(in)
		if err != nil {
			return nil, fmt.Errorf("shopify: failed to encode request: %w", err)
		}
		reqBody = bytes.NewReader(encoded)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
	if err != nil {
		return nil, fmt.Errorf("shopify: failed to create request: %w", err)
	}
	req.Header.Set("X-Shopify-Access-Token", c.token)
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", integration.ErrUnavailable, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		return nil, fmt.Errorf("shopify: failed to read response: %w", err)
	}

	if err := classifyStatus(resp.StatusCode, body); err != nil {
		c.logger.Debug("remote call failed",
			zap.String("method", method),
			zap.String("path", path),
			zap.Int("status", resp.StatusCode))
		return nil, err
	}

	if out != nil && len(body) > 0 {
		if err := json.Unmarshal(body, out); err != nil {
			return nil, fmt.Errorf("shopify: failed to decode response: %w", err)
		}
	}
	return resp.Header, nil
}

// classifyStatus maps HTTP status codes onto the remote error sentinels
func classifyStatus(status int, body []byte) error {
	switch {
	case status < 400:
		return nil
	case status == http.StatusNotFound:
		return integration.ErrRemoteNotFound
	case status == http.StatusUnauthorized || status == http.StatusForbidden:
		return integration.ErrUnauthorized
	case status == http.StatusTooManyRequests:
		return integration.ErrRateLimited
	case status == http.StatusUnprocessableEntity || status == http.StatusBadRequest:
		var envelope apiErrorEnvelope
		if json.Unmarshal(body, &envelope) == nil && envelope.Errors != nil {
			return fmt.Errorf("%w: %v", integration.ErrValidationRejected, envelope.Errors)
		}
		return integration.ErrValidationRejected
	case status >= 500:
		return fmt.Errorf("%w: HTTP %d", integration.ErrUnavailable, status)
	default:
		return fmt.Errorf("%w: HTTP %d", integration.ErrValidationRejected, status)
	}
}

// parseNextPageInfo extracts the rel="next" cursor from a Link header
func parseNextPageInfo(link string) string {
	if link == "" {
		return ""
	}
	m := linkNextRe.FindStringSubmatch(link)
	if m == nil {
		return ""
	}
	return m[1]
}

var _ integration.Platform = (*Client)(nil)
