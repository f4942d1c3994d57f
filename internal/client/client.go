// Package client talks to a corrlab server over its JSON API.
package client

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/san-kum/corrlab/internal/market"
)

const DefaultTimeout = 10 * time.Second

// APIError is a non-2xx response.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("api: status %d", e.StatusCode)
	}
	return fmt.Sprintf("api: status %d: %s", e.StatusCode, e.Message)
}

// Unwrap lets errors.Is match the domain sentinel a status stands for.
func (e *APIError) Unwrap() error {
	switch e.StatusCode {
	case http.StatusNotFound:
		return market.ErrAssetNotFound
	case http.StatusBadRequest:
		if strings.Contains(e.Message, "invalid range") {
			return market.ErrInvalidRange
		}
	}
	return nil
}

type Client struct {
	baseURL    string
	httpClient *http.Client
	timeout    time.Duration
}

type Option func(*Client)

func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// WithTimeout bounds every request. Zero disables the per-request bound.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) { c.timeout = d }
}

func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{},
		timeout:    DefaultTimeout,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Client) BaseURL() string {
	return c.baseURL
}

func (c *Client) Assets(ctx context.Context) ([]market.Asset, error) {
	var out []market.Asset
	if err := c.get(ctx, "/api/assets", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) Matrix(ctx context.Context, r market.Range) (*market.CorrelationMatrix, error) {
	var out market.CorrelationMatrix
	if err := c.get(ctx, "/api/correlation-matrix", url.Values{"range": {string(r)}}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) Comparison(ctx context.Context, a, b string, r market.Range) (*market.Comparison, error) {
	q := url.Values{
		"asset_a": {a},
		"asset_b": {b},
		"range":   {string(r)},
	}
	var out market.Comparison
	if err := c.get(ctx, "/api/comparison", q, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) Insights(ctx context.Context, r market.Range) (*market.Insights, error) {
	var out market.Insights
	if err := c.get(ctx, "/api/insights", url.Values{"range": {string(r)}}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) get(ctx context.Context, path string, q url.Values, out any) error {
	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	target := c.baseURL + path
	if len(q) > 0 {
		target += "?" + q.Encode()
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("get %s: %w", path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		apiErr := &APIError{StatusCode: resp.StatusCode}
		var body struct {
			Error string `json:"error"`
		}
		data, _ := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
		if json.Unmarshal(data, &body) == nil {
			apiErr.Message = body.Error
		}
		return apiErr
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode %s: %w", path, err)
	}
	return nil
}
