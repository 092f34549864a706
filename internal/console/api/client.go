// Package api is the HTTP client for the agent backend. One typed method
// per endpoint; non-2xx responses become a *TransportError.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/opsdesk/vendormail/internal/domain"
)

// TransportError signals a non-success HTTP status from the backend.
// The body is kept as opaque text; the backend guarantees no structured
// error shape.
type TransportError struct {
	Status     int
	StatusText string
	Body       string
}

func (e *TransportError) Error() string {
	detail := strings.TrimSpace(e.Body)
	if detail == "" {
		return fmt.Sprintf("backend returned %d %s", e.Status, e.StatusText)
	}
	return fmt.Sprintf("backend returned %d %s: %s", e.Status, e.StatusText, detail)
}

type Client struct {
	baseURL    string
	httpClient *http.Client
}

func NewClient(baseURL string, timeout time.Duration) *Client {
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: timeout},
	}
}

func (c *Client) AgentConfig(ctx context.Context) (domain.AgentConfig, error) {
	var out domain.AgentConfig
	err := c.do(ctx, http.MethodGet, "/agent/config", nil, &out)
	return out, err
}

func (c *Client) AgentStatus(ctx context.Context) (domain.AgentStatus, error) {
	var out domain.AgentStatus
	err := c.do(ctx, http.MethodGet, "/agent/status", nil, &out)
	return out, err
}

func (c *Client) AnalyticsSummary(ctx context.Context) (domain.AnalyticsSummary, error) {
	var out domain.AnalyticsSummary
	err := c.do(ctx, http.MethodGet, "/analytics/summary", nil, &out)
	return out, err
}

func (c *Client) Logs(ctx context.Context) ([]domain.LogEntry, error) {
	var out []domain.LogEntry
	if err := c.do(ctx, http.MethodGet, "/logs", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) PollMailbox(ctx context.Context) ([]domain.QueueItem, error) {
	var out domain.PollResponse
	if err := c.do(ctx, http.MethodGet, "/gmail/poll", nil, &out); err != nil {
		return nil, err
	}
	return out.Items, nil
}

// SeedVendors posts an empty parameter list; seeding specifics are
// backend-determined.
func (c *Client) SeedVendors(ctx context.Context) error {
	return c.do(ctx, http.MethodPost, "/seed/vendors", []any{}, nil)
}

func (c *Client) IngestMockEmail(ctx context.Context, draft domain.IngestDraft) error {
	return c.do(ctx, http.MethodPost, "/ingest/mock-email", draft, nil)
}

func (c *Client) RunOnce(ctx context.Context) (bool, error) {
	var out domain.RunOnceResult
	if err := c.do(ctx, http.MethodPost, "/agent/run-once", nil, &out); err != nil {
		return false, err
	}
	return out.Processed, nil
}

func (c *Client) RunLoop(ctx context.Context, maxSteps int) (int, error) {
	var out domain.RunLoopResult
	err := c.do(ctx, http.MethodPost, "/agent/run-loop", domain.RunLoopRequest{MaxSteps: maxSteps}, &out)
	if err != nil {
		return 0, err
	}
	return out.Processed, nil
}

func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	var bodyReader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshalling request: %w", err)
		}
		bodyReader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, bodyReader)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("backend not reachable (%w)", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return &TransportError{
			Status:     resp.StatusCode,
			StatusText: http.StatusText(resp.StatusCode),
			Body:       string(raw),
		}
	}
	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decoding %s %s response: %w", method, path, err)
	}
	return nil
}
