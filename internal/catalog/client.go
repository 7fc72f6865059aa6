// Package catalog is a client for the storefront product API.
package catalog

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"storefront/internal/domain"
)

type envelope struct {
	Data  json.RawMessage `json:"data"`
	Error *string         `json:"error"`
}

type Client struct {
	BaseURL    string
	HTTPClient *http.Client
}

func NewClient(baseURL string) *Client {
	return &Client{
		BaseURL: strings.TrimRight(baseURL, "/"),
		HTTPClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

// List returns all products in catalog order.
func (c *Client) List(ctx context.Context) ([]domain.Product, error) {
	var products []domain.Product
	if err := c.get(ctx, "/api/products", &products); err != nil {
		return nil, err
	}
	if products == nil {
		products = []domain.Product{}
	}
	return products, nil
}

// Get returns one product, or domain.ErrNotFound.
func (c *Client) Get(ctx context.Context, id string) (*domain.Product, error) {
	var p domain.Product
	if err := c.get(ctx, "/api/products/"+url.PathEscape(id), &p); err != nil {
		return nil, err
	}
	return &p, nil
}

func (c *Client) get(ctx context.Context, path string, out interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.BaseURL+path, nil)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return fmt.Errorf("call catalog %s: %w", path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return domain.ErrNotFound
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, 4<<20))
	if err != nil {
		return fmt.Errorf("read catalog response: %w", err)
	}
	var env envelope
	if err := json.Unmarshal(body, &env); err != nil {
		return fmt.Errorf("catalog %s returned status %d with undecodable body: %w", path, resp.StatusCode, err)
	}
	if resp.StatusCode != http.StatusOK || env.Error != nil {
		msg := "unknown error"
		if env.Error != nil {
			msg = *env.Error
		}
		return fmt.Errorf("catalog %s returned status %d: %s", path, resp.StatusCode, msg)
	}
	if err := json.Unmarshal(env.Data, out); err != nil {
		return fmt.Errorf("decode catalog data: %w", err)
	}
	return nil
}
