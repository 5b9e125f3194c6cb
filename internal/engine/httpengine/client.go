// Package httpengine implements engine.Port as a thin REST client against a
// running search engine speaking Elasticsearch/OpenSearch-compatible wire
// semantics (index/_doc, _count, _search, _bulk, _reindex, _aliases).
package httpengine

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// Config configures the REST client.
type Config struct {
	// BaseURL is the engine's HTTP endpoint, e.g. "http://localhost:9200".
	BaseURL string

	// Timeout bounds every individual request.
	Timeout time.Duration

	// MaxIdleConns controls the maximum number of idle (keep-alive)
	// connections across all hosts. Zero selects the default of 100.
	MaxIdleConns int

	// MaxConnsPerHost limits the total number of connections per host.
	MaxConnsPerHost int

	// IdleConnTimeout is the maximum time an idle connection stays open.
	IdleConnTimeout time.Duration
}

// DefaultConfig returns sensible defaults for a local engine.
func DefaultConfig() Config {
	return Config{
		BaseURL:         "http://localhost:9200",
		Timeout:         30 * time.Second,
		MaxIdleConns:    100,
		MaxConnsPerHost: 100,
		IdleConnTimeout: 90 * time.Second,
	}
}

// Client is the low-level REST transport shared by Engine's methods.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// NewClient builds a Client from cfg, filling in defaults for any zero
// fields.
func NewClient(cfg Config) *Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = "http://localhost:9200"
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = 30 * time.Second
	}
	if cfg.MaxIdleConns == 0 {
		cfg.MaxIdleConns = 100
	}
	if cfg.MaxConnsPerHost == 0 {
		cfg.MaxConnsPerHost = 100
	}
	if cfg.IdleConnTimeout == 0 {
		cfg.IdleConnTimeout = 90 * time.Second
	}

	transport := &http.Transport{
		MaxIdleConns:        cfg.MaxIdleConns,
		MaxIdleConnsPerHost: cfg.MaxConnsPerHost / 5,
		MaxConnsPerHost:     cfg.MaxConnsPerHost,
		IdleConnTimeout:     cfg.IdleConnTimeout,
		ForceAttemptHTTP2:   true,
	}

	return &Client{
		baseURL: cfg.BaseURL,
		httpClient: &http.Client{
			Timeout:   cfg.Timeout,
			Transport: transport,
		},
	}
}

// EngineError is the engine's JSON error envelope.
type EngineError struct {
	StatusCode int    `json:"-"`
	Type       string `json:"error"`
	Reason     string `json:"reason"`
}

func (e *EngineError) Error() string {
	return fmt.Sprintf("engine error (HTTP %d): %s: %s", e.StatusCode, e.Type, e.Reason)
}

func (c *Client) get(ctx context.Context, path string, result interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	return c.do(req, result)
}

func (c *Client) put(ctx context.Context, path string, body, result interface{}) error {
	return c.sendJSON(ctx, http.MethodPut, path, body, result)
}

func (c *Client) post(ctx context.Context, path string, body, result interface{}) error {
	return c.sendJSON(ctx, http.MethodPost, path, body, result)
}

// postRaw sends body (pre-serialized, e.g. NDJSON for the bulk API)
// verbatim with an x-ndjson content type instead of marshaling it as JSON.
func (c *Client) postRaw(ctx context.Context, path, body string, result interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader([]byte(body)))
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-ndjson")
	req.Header.Set("Accept", "application/json")
	return c.do(req, result)
}

func (c *Client) deleteReq(ctx context.Context, path string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodDelete, c.baseURL+path, nil)
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}
	return c.do(req, nil)
}

func (c *Client) sendJSON(ctx context.Context, method, path string, body, result interface{}) error {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshaling request: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	return c.do(req, result)
}

func (c *Client) do(req *http.Request, result interface{}) error {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("reading response: %w", err)
	}

	if resp.StatusCode >= 400 {
		var engErr EngineError
		engErr.StatusCode = resp.StatusCode
		if jsonErr := json.Unmarshal(data, &engErr); jsonErr != nil {
			return &EngineError{StatusCode: resp.StatusCode, Reason: string(data)}
		}
		return &engErr
	}

	if result != nil && len(data) > 0 {
		if err := json.Unmarshal(data, result); err != nil {
			return fmt.Errorf("unmarshaling response: %w", err)
		}
	}
	return nil
}
