package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/gorilla/websocket"

	"github.com/claude/repcoach/internal/models"
)

// streamURL maps the daemon base URL onto its websocket status stream.
func streamURL(server string) (string, error) {
	server = strings.TrimRight(server, "/")
	switch {
	case strings.HasPrefix(server, "https://"):
		return "wss://" + strings.TrimPrefix(server, "https://") + "/api/v1/status/stream", nil
	case strings.HasPrefix(server, "http://"):
		return "ws://" + strings.TrimPrefix(server, "http://") + "/api/v1/status/stream", nil
	default:
		return "", fmt.Errorf("server URL must start with http:// or https://: %q", server)
	}
}

// followStatus prints every status the daemon pushes until ctx is cancelled
// or the daemon closes the stream.
func followStatus(ctx context.Context, server string, w io.Writer) error {
	u, err := streamURL(server)
	if err != nil {
		return err
	}
	conn, _, err := websocket.DefaultDialer.DialContext(ctx, u, nil)
	if err != nil {
		return fmt.Errorf("connecting to status stream: %w", err)
	}
	defer conn.Close()

	go func() {
		<-ctx.Done()
		_ = conn.Close()
	}()

	for {
		var st models.Status
		if err := conn.ReadJSON(&st); err != nil {
			if ctx.Err() != nil || websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				return nil
			}
			if errors.Is(err, io.EOF) {
				return nil
			}
			return fmt.Errorf("reading status stream: %w", err)
		}
		fmt.Fprintln(w, renderStatus(st))
		fmt.Fprintln(w)
	}
}
