package announce

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// HTTPSynthesizer requests speech from a TTS service over HTTP. The service
// receives {"text": ..., "voice": ...} and answers with raw audio.
type HTTPSynthesizer struct {
	url        string
	voice      string
	httpClient *http.Client
	attempts   int
	backoff    time.Duration
}

// NewHTTPSynthesizer creates a synthesizer for the given endpoint.
func NewHTTPSynthesizer(url, voice string) *HTTPSynthesizer {
	return &HTTPSynthesizer{
		url:   url,
		voice: voice,
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
		attempts: 2,
		backoff:  250 * time.Millisecond,
	}
}

type synthesizeRequest struct {
	Text  string `json:"text"`
	Voice string `json:"voice,omitempty"`
}

// Synthesize returns the audio for text. A failed request is retried once;
// announcements are time-sensitive so there is no long backoff.
func (s *HTTPSynthesizer) Synthesize(ctx context.Context, text string) ([]byte, error) {
	data, err := json.Marshal(synthesizeRequest{Text: text, Voice: s.voice})
	if err != nil {
		return nil, fmt.Errorf("marshaling tts request: %w", err)
	}

	var lastErr error
	for attempt := range s.attempts {
		if attempt > 0 {
			select {
			case <-time.After(s.backoff):
			case <-ctx.Done():
				return nil, ctx.Err()
			}
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.url, bytes.NewReader(data))
		if err != nil {
			return nil, fmt.Errorf("creating tts request: %w", err)
		}
		req.Header.Set("Content-Type", "application/json")

		resp, err := s.httpClient.Do(req)
		if err != nil {
			lastErr = err
			continue
		}
		body, err := io.ReadAll(resp.Body)
		resp.Body.Close()
		if err != nil {
			lastErr = fmt.Errorf("reading tts response: %w", err)
			continue
		}
		if resp.StatusCode == http.StatusOK {
			return body, nil
		}
		lastErr = fmt.Errorf("tts failed (status %d): %s", resp.StatusCode, body)
	}
	return nil, fmt.Errorf("after %d attempts: %w", s.attempts, lastErr)
}
