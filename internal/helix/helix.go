// Package helix is a thin client for HelixDB's named-query HTTP endpoint.
//
// Every query registered on the server is reachable as POST <base>/<name> with a flat JSON
// object of parameters. Responses are handed back as raw JSON; their shape belongs to the
// query definition on the server side.
package helix

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// DefaultURL points at a local HelixDB instance on its default port.
const DefaultURL = "http://localhost:6969"

// Querier invokes a named, server-defined query.
type Querier interface {
	Query(ctx context.Context, name string, params map[string]any) (json.RawMessage, error)
}

// QueryError is returned when HelixDB answers with a non-2xx status.
type QueryError struct {
	Query  string
	Status int
	Body   string
}

func (e *QueryError) Error() string {
	return fmt.Sprintf("helix query %q failed with status %d: %s", e.Query, e.Status, e.Body)
}

// Client talks to a single HelixDB instance. It is safe for concurrent use.
type Client struct {
	baseURL string
	http    *http.Client
	timeout time.Duration
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

// WithTimeout bounds every query. Zero means no timeout. A client passed through
// WithHTTPClient is copied, never modified.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) { c.timeout = d }
}

// NewClient creates a client for the HelixDB instance at baseURL.
func NewClient(baseURL string, opts ...Option) *Client {
	if baseURL == "" {
		baseURL = DefaultURL
	}
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{},
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.timeout > 0 {
		hc := *c.http
		hc.Timeout = c.timeout
		c.http = &hc
	}
	return c
}

// Query posts params to the named query and returns the response body untouched.
// A nil params map is sent as an empty object.
func (c *Client) Query(ctx context.Context, name string, params map[string]any) (json.RawMessage, error) {
	if params == nil {
		params = map[string]any{}
	}
	body, err := json.Marshal(params)
	if err != nil {
		return nil, fmt.Errorf("encode params for %s: %w", name, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/"+name, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("build request for %s: %w", name, err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("query %s: %w", name, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response for %s: %w", name, err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &QueryError{Query: name, Status: resp.StatusCode, Body: strings.TrimSpace(string(raw))}
	}
	if !json.Valid(raw) {
		return nil, fmt.Errorf("query %s: response is not valid JSON", name)
	}
	return json.RawMessage(raw), nil
}

// Scan decodes a raw query response into v.
func Scan(raw json.RawMessage, v any) error {
	if err := json.Unmarshal(raw, v); err != nil {
		return fmt.Errorf("decode helix response: %w", err)
	}
	return nil
}
