package coach

import (
	"bufio"
	"context"
	"io"
	"log/slog"
	"strings"
)

// FeedLines reads typed commands from r, one per line, until EOF or ctx is
// done. "start <plan>" becomes a start request; anything else is treated as
// an utterance.
func FeedLines(ctx context.Context, r io.Reader, inbox *Inbox, log *slog.Logger) error {
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		if ctx.Err() != nil {
			return nil
		}
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		if plan, ok := strings.CutPrefix(line, "start "); ok {
			go func() {
				if err := inbox.Start(ctx, strings.TrimSpace(plan)); err != nil {
					log.Warn("start failed", "plan", plan, "error", err)
				}
			}()
			continue
		}
		if err := inbox.Say(line); err != nil {
			log.Warn("dropping typed command", "text", line, "error", err)
		}
	}
	return scanner.Err()
}
