// internal/order/client.go
package order

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"strings"

	"github.com/dattu2507/matching-engine-project/internal/market"
	"github.com/google/uuid"
)

// Client talks to the matching engine's REST API.
type Client struct {
	httpClient *http.Client
	baseURL    string
}

type ClientOption func(*Client)

func WithHTTPClient(hc *http.Client) ClientOption {
	return func(c *Client) { c.httpClient = hc }
}

func NewClient(baseURL string, opts ...ClientOption) *Client {
	c := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: http.DefaultClient,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Submit posts an order and returns the engine's response body. The body is
// returned whatever the HTTP status, as long as it is JSON.
func (c *Client) Submit(ctx context.Context, req Request) (json.RawMessage, error) {
	body, _, err := c.do(ctx, http.MethodPost, "/order/submit", req)
	if err != nil {
		return nil, err
	}
	return rawJSON(body)
}

// Cancel deletes a resting order. Like Submit, any JSON body is returned.
func (c *Client) Cancel(ctx context.Context, symbol, orderID string) (json.RawMessage, error) {
	path := "/order/cancel/" + url.PathEscape(symbol) + "/" + url.PathEscape(orderID)
	body, _, err := c.do(ctx, http.MethodDelete, path, nil)
	if err != nil {
		return nil, err
	}
	return rawJSON(body)
}

// RecentTrades returns the engine's trade log for symbol, oldest first.
func (c *Client) RecentTrades(ctx context.Context, symbol string) ([]market.Trade, error) {
	var trades []market.Trade
	if err := c.getJSON(ctx, "/trades/"+url.PathEscape(symbol), &trades); err != nil {
		return nil, err
	}
	return trades, nil
}

// BBO returns the current top of book as served by the engine.
func (c *Client) BBO(ctx context.Context, symbol string) (json.RawMessage, error) {
	var raw json.RawMessage
	if err := c.getJSON(ctx, "/book/bbo/"+url.PathEscape(symbol), &raw); err != nil {
		return nil, err
	}
	return raw, nil
}

func (c *Client) Depth(ctx context.Context, symbol string) (market.Depth, error) {
	var d market.Depth
	if err := c.getJSON(ctx, "/book/depth/"+url.PathEscape(symbol), &d); err != nil {
		return market.Depth{}, err
	}
	return d, nil
}

func (c *Client) getJSON(ctx context.Context, path string, v any) error {
	body, status, err := c.do(ctx, http.MethodGet, path, nil)
	if err != nil {
		return err
	}
	if status != http.StatusOK {
		return fmt.Errorf("GET %s: status %d: %s", path, status, bytes.TrimSpace(body))
	}
	if err := json.Unmarshal(body, v); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

func (c *Client) do(ctx context.Context, method, path string, payload any) ([]byte, int, error) {
	var reqBody io.Reader
	if payload != nil {
		b, err := json.Marshal(payload)
		if err != nil {
			return nil, 0, fmt.Errorf("encode request: %w", err)
		}
		reqBody = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
	if err != nil {
		return nil, 0, fmt.Errorf("%s %s: %w", method, path, err)
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	reqID := uuid.New().String()
	req.Header.Set("X-Request-Id", reqID)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, 0, fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, resp.StatusCode, fmt.Errorf("%s %s: read body: %w", method, path, err)
	}
	log.Printf("%s %s -> %d (request %s)", method, path, resp.StatusCode, reqID)

	return body, resp.StatusCode, nil
}

func rawJSON(body []byte) (json.RawMessage, error) {
	body = bytes.TrimSpace(body)
	if !json.Valid(body) {
		return nil, fmt.Errorf("decode response: invalid JSON: %.64q", body)
	}
	return json.RawMessage(body), nil
}
