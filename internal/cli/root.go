package cli

import (
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/claude/repcoach/internal/client"
)

type options struct {
	server  string
	apiKey  string
	timeout time.Duration
}

func (o *options) client() *client.Client {
	return client.New(o.server, o.apiKey)
}

// NewRootCmd builds the repcoachctl command tree.
func NewRootCmd(version string) *cobra.Command {
	o := &options{}

	root := &cobra.Command{
		Use:   "repcoachctl",
		Short: "Control a running repcoach voice coach",
		Long: `repcoachctl talks to a repcoach daemon over its HTTP API.

It can start a plan, send the same commands you would say out loud,
show the live session and browse finished sessions.

Quick Start:
  repcoachctl plans                  # List loaded plans
  repcoachctl start "morning core"   # Start a session
  repcoachctl say ready              # Same as saying "ready"
  repcoachctl status --follow        # Watch the session live`,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.PersistentFlags().StringVar(&o.server, "server", envOr("REPCOACH_URL", "http://localhost:8080"), "daemon base URL")
	root.PersistentFlags().StringVar(&o.apiKey, "api-key", os.Getenv("REPCOACH_API_KEY"), "API key for commands that change the session")
	root.PersistentFlags().DurationVar(&o.timeout, "timeout", 10*time.Second, "request timeout")
	root.SetVersionTemplate(`{{printf "%s\n" .Version}}`)

	root.AddCommand(
		newSayCmd(o),
		newStartCmd(o),
		newStatusCmd(o),
		newPlansCmd(o),
		newHistoryCmd(o),
		newStatsCmd(o),
	)
	return root
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
