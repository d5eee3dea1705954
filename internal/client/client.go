package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/claude/repcoach/internal/models"
)

// Client calls the repcoach daemon's REST API. It is used by the MCP bridge
// and the control CLI, which run next to the user while the daemon owns the
// speaker and the session.
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

// APIError is a non-2xx response from the daemon.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("daemon returned %d: %s", e.Status, e.Message)
}

// New creates a Client targeting baseURL. apiKey may be empty for read-only
// use; mutating calls then fail with a 401 APIError.
func New(baseURL, apiKey string) *Client {
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		apiKey:     apiKey,
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}
}

func (c *Client) do(ctx context.Context, method, path string, params url.Values, body, out any) error {
	u := c.baseURL + path
	if len(params) > 0 {
		u += "?" + params.Encode()
	}

	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("client: encode %s: %w", path, err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, u, reader)
	if err != nil {
		return fmt.Errorf("client: create request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.apiKey != "" {
		req.Header.Set("X-API-Key", c.apiKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("client: %s: %w", path, err)
	}
	defer func() { _ = resp.Body.Close() }()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("client: read body: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &APIError{Status: resp.StatusCode, Message: errorMessage(data)}
	}
	if out == nil {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("client: decode %s: %w", path, err)
	}
	return nil
}

// errorMessage pulls the "error" field out of a JSON error body and falls
// back to the raw text.
func errorMessage(body []byte) string {
	var e struct {
		Error string `json:"error"`
	}
	if err := json.Unmarshal(body, &e); err == nil && e.Error != "" {
		return e.Error
	}
	return strings.TrimSpace(string(body))
}

// Status returns the daemon's current session snapshot.
func (c *Client) Status(ctx context.Context) (models.Status, error) {
	var st models.Status
	err := c.do(ctx, http.MethodGet, "/api/v1/status", nil, nil, &st)
	return st, err
}

// Say queues a spoken or typed utterance for the command loop.
func (c *Client) Say(ctx context.Context, text string) error {
	return c.do(ctx, http.MethodPost, "/api/v1/utterances", nil, map[string]string{"text": text}, nil)
}

// Start begins a session for the named plan and returns the status right
// after the start was applied.
func (c *Client) Start(ctx context.Context, plan string) (models.Status, error) {
	var st models.Status
	err := c.do(ctx, http.MethodPost, "/api/v1/sessions", nil, map[string]string{"plan": plan}, &st)
	return st, err
}

// Plans lists the plans the daemon has loaded.
func (c *Client) Plans(ctx context.Context) ([]models.Plan, error) {
	var plans []models.Plan
	err := c.do(ctx, http.MethodGet, "/api/v1/plans", nil, nil, &plans)
	return plans, err
}

// History returns the most recent finished sessions, newest first.
func (c *Client) History(ctx context.Context, limit int) ([]models.SessionSummary, error) {
	params := url.Values{}
	if limit > 0 {
		params.Set("limit", strconv.Itoa(limit))
	}
	var sessions []models.SessionSummary
	err := c.do(ctx, http.MethodGet, "/api/v1/history", params, nil, &sessions)
	return sessions, err
}

// SessionSets returns every recorded set of one session.
func (c *Client) SessionSets(ctx context.Context, sessionID string) ([]models.SessionSetRow, error) {
	var sets []models.SessionSetRow
	err := c.do(ctx, http.MethodGet, "/api/v1/history/"+url.PathEscape(sessionID), nil, nil, &sets)
	return sets, err
}

// Stats returns history totals since the given time.
func (c *Client) Stats(ctx context.Context, since time.Time) (models.HistoryStats, error) {
	params := url.Values{}
	params.Set("since", since.Format(time.RFC3339))
	var stats models.HistoryStats
	err := c.do(ctx, http.MethodGet, "/api/v1/history/stats", params, nil, &stats)
	return stats, err
}
