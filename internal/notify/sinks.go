package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/claude/repcoach/internal/models"
	"github.com/claude/repcoach/internal/storage"
)

// HistorySink persists sets and session outcomes.
type HistorySink struct {
	store storage.History
}

// NewHistorySink writes to store.
func NewHistorySink(store storage.History) *HistorySink {
	return &HistorySink{store: store}
}

func (h *HistorySink) Name() string { return "history" }

// Handle stores set and session-end notifications. Exercise completions are
// derivable from the sets and are not stored.
func (h *HistorySink) Handle(ctx context.Context, n models.Notification) error {
	switch n.Kind {
	case models.NotifySetCompleted:
		return h.store.InsertSessionSet(ctx, models.SetRowFromNotification(n))
	case models.NotifySessionCompleted, models.NotifySessionStopped:
		return h.store.InsertSessionLog(ctx, models.LogRowFromNotification(n))
	}
	return nil
}

// XPSink awards experience points through an external webhook.
type XPSink struct {
	url        string
	apiKey     string
	httpClient *http.Client
	attempts   int
	backoff    time.Duration
}

// NewXPSink posts to url, authenticating with apiKey when set.
func NewXPSink(url, apiKey string) *XPSink {
	return &XPSink{
		url:    url,
		apiKey: apiKey,
		httpClient: &http.Client{
			Timeout: 15 * time.Second,
		},
		attempts: 3,
		backoff:  time.Second,
	}
}

func (x *XPSink) Name() string { return "xp" }

// XPEvent is the webhook body.
type XPEvent struct {
	Event      models.NotificationKind `json:"event"`
	SessionID  string                  `json:"session_id"`
	Plan       string                  `json:"plan"`
	ExerciseID string                  `json:"exercise_id,omitempty"`
	Set        int                     `json:"set,omitempty"`
	Reps       *int                    `json:"reps,omitempty"`
	WeightKg   *float64                `json:"weight_kg,omitempty"`
	Seconds    float64                 `json:"seconds,omitempty"`
	At         time.Time               `json:"at"`
}

// Handle posts completions. Skipped work and stopped sessions earn nothing.
// Retries up to 3 times with exponential backoff on failure.
func (x *XPSink) Handle(ctx context.Context, n models.Notification) error {
	if n.Skipped || n.Kind == models.NotifySessionStopped {
		return nil
	}
	data, err := json.Marshal(XPEvent{
		Event:      n.Kind,
		SessionID:  n.SessionID,
		Plan:       n.Plan,
		ExerciseID: n.ExerciseID,
		Set:        n.Set,
		Reps:       n.Reps,
		WeightKg:   n.WeightKg,
		Seconds:    n.DurationSeconds,
		At:         n.At,
	})
	if err != nil {
		return fmt.Errorf("marshaling xp event: %w", err)
	}

	var lastErr error
	for attempt := range x.attempts {
		if attempt > 0 {
			select {
			case <-time.After(x.backoff * time.Duration(1<<uint(attempt-1))):
			case <-ctx.Done():
				return ctx.Err()
			}
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodPost, x.url, bytes.NewReader(data))
		if err != nil {
			return fmt.Errorf("creating xp request: %w", err)
		}
		req.Header.Set("Content-Type", "application/json")
		if x.apiKey != "" {
			req.Header.Set("Authorization", "Bearer "+x.apiKey)
		}

		resp, err := x.httpClient.Do(req)
		if err != nil {
			lastErr = err
			continue
		}
		body, _ := io.ReadAll(resp.Body)
		resp.Body.Close()

		if resp.StatusCode >= 200 && resp.StatusCode < 300 {
			return nil
		}
		lastErr = fmt.Errorf("xp award failed (status %d): %s", resp.StatusCode, body)
		if resp.StatusCode >= 400 && resp.StatusCode < 500 {
			return lastErr
		}
	}
	return fmt.Errorf("after %d attempts: %w", x.attempts, lastErr)
}
