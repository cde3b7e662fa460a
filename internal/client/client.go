package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"darkroom/internal/api"
)

// Client speaks to the darkroom daemon API.
type Client struct {
	baseURL string
	token   string
	http    *http.Client
}

// New constructs a client for the daemon at baseURL (host:port or full URL).
func New(baseURL, token string) *Client {
	trimmed := strings.TrimRight(strings.TrimSpace(baseURL), "/")
	if trimmed != "" && !strings.Contains(trimmed, "://") {
		trimmed = "http://" + trimmed
	}
	return &Client{
		baseURL: trimmed,
		token:   token,
		http:    &http.Client{Timeout: 30 * time.Second},
	}
}

// Status fetches the migration progress snapshot.
func (c *Client) Status(ctx context.Context) (*api.StatusResponse, error) {
	var resp api.StatusResponse
	if err := c.do(ctx, http.MethodGet, "/api/status", nil, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Errors fetches the failed photos.
func (c *Client) Errors(ctx context.Context) (*api.ErrorListResponse, error) {
	var resp api.ErrorListResponse
	if err := c.do(ctx, http.MethodGet, "/api/errors", nil, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Start begins or resumes the migration run.
func (c *Client) Start(ctx context.Context, req api.StartRequest) (*api.RunResponse, error) {
	var resp api.RunResponse
	if err := c.do(ctx, http.MethodPost, "/api/start", req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Pause stops the run from claiming new photos.
func (c *Client) Pause(ctx context.Context) (*api.RunResponse, error) {
	var resp api.RunResponse
	if err := c.do(ctx, http.MethodPost, "/api/pause", nil, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// RetryErrors requeues failed photos back to pending.
func (c *Client) RetryErrors(ctx context.Context) (*api.RetryResponse, error) {
	var resp api.RetryResponse
	if err := c.do(ctx, http.MethodPost, "/api/retry-errors", nil, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// AddPhoto registers a source ref as needing migration.
func (c *Client) AddPhoto(ctx context.Context, sourceRef, fileName string) (*api.EnqueueResponse, error) {
	var resp api.EnqueueResponse
	req := api.EnqueueRequest{SourceRef: sourceRef, FileName: fileName}
	if err := c.do(ctx, http.MethodPost, "/api/photos", req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Health checks daemon and ledger reachability.
func (c *Client) Health(ctx context.Context) (*api.HealthResponse, error) {
	var resp api.HealthResponse
	if err := c.do(ctx, http.MethodGet, "/api/health", nil, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (c *Client) do(ctx context.Context, method, path string, payload, out any) error {
	if c.baseURL == "" {
		return fmt.Errorf("daemon address is not configured")
	}

	var body io.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("daemon request %s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		var apiErr api.ErrorResponse
		if decodeErr := json.NewDecoder(resp.Body).Decode(&apiErr); decodeErr == nil && apiErr.Error != "" {
			return fmt.Errorf("daemon: %s (status %d)", apiErr.Error, resp.StatusCode)
		}
		return fmt.Errorf("daemon returned status %d for %s %s", resp.StatusCode, method, path)
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}
