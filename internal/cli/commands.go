package cli

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"
)

func newSayCmd(o *options) *cobra.Command {
	return &cobra.Command{
		Use:   "say <words...>",
		Short: "Send a command as if spoken",
		Long: `Send an utterance to the coach. Anything the coach understands by voice
works here: ready, pause, resume, skip, stop, "20 kilos", or a rep count.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := context.WithTimeout(cmd.Context(), o.timeout)
			defer cancel()

			text := strings.Join(args, " ")
			if err := o.client().Say(ctx, text); err != nil {
				return fmt.Errorf("sending %q: %w", text, err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), mutedStyle.Render("sent: ")+text)
			return nil
		},
	}
}

func newStartCmd(o *options) *cobra.Command {
	return &cobra.Command{
		Use:   "start <plan>",
		Short: "Start a session for a plan",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := context.WithTimeout(cmd.Context(), o.timeout)
			defer cancel()

			plan := strings.Join(args, " ")
			st, err := o.client().Start(ctx, plan)
			if err != nil {
				return fmt.Errorf("starting %q: %w", plan, err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), renderStatus(st))
			return nil
		},
	}
}

func newStatusCmd(o *options) *cobra.Command {
	var follow bool
	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show the current session",
		RunE: func(cmd *cobra.Command, args []string) error {
			if follow {
				return followStatus(cmd.Context(), o.server, cmd.OutOrStdout())
			}

			ctx, cancel := context.WithTimeout(cmd.Context(), o.timeout)
			defer cancel()
			st, err := o.client().Status(ctx)
			if err != nil {
				return fmt.Errorf("fetching status: %w", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), renderStatus(st))
			return nil
		},
	}
	cmd.Flags().BoolVarP(&follow, "follow", "f", false, "keep printing the status as it changes")
	return cmd
}

func newPlansCmd(o *options) *cobra.Command {
	return &cobra.Command{
		Use:   "plans",
		Short: "List loaded plans",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := context.WithTimeout(cmd.Context(), o.timeout)
			defer cancel()

			plans, err := o.client().Plans(ctx)
			if err != nil {
				return fmt.Errorf("listing plans: %w", err)
			}
			renderPlans(cmd.OutOrStdout(), plans)
			return nil
		},
	}
}

func newHistoryCmd(o *options) *cobra.Command {
	var limit int
	cmd := &cobra.Command{
		Use:   "history [session-id]",
		Short: "List finished sessions, or the sets of one session",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := context.WithTimeout(cmd.Context(), o.timeout)
			defer cancel()
			c := o.client()

			if len(args) == 1 {
				sets, err := c.SessionSets(ctx, args[0])
				if err != nil {
					return fmt.Errorf("fetching session %s: %w", args[0], err)
				}
				renderSets(cmd.OutOrStdout(), sets)
				return nil
			}

			sessions, err := c.History(ctx, limit)
			if err != nil {
				return fmt.Errorf("fetching history: %w", err)
			}
			renderHistory(cmd.OutOrStdout(), sessions)
			return nil
		},
	}
	cmd.Flags().IntVarP(&limit, "limit", "n", 10, "number of sessions to show")
	return cmd
}

func newStatsCmd(o *options) *cobra.Command {
	var days int
	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Show training totals",
		RunE: func(cmd *cobra.Command, args []string) error {
			if days < 1 {
				return fmt.Errorf("--days must be at least 1")
			}
			ctx, cancel := context.WithTimeout(cmd.Context(), o.timeout)
			defer cancel()

			stats, err := o.client().Stats(ctx, time.Now().AddDate(0, 0, -days))
			if err != nil {
				return fmt.Errorf("fetching stats: %w", err)
			}
			renderStats(cmd.OutOrStdout(), days, stats)
			return nil
		},
	}
	cmd.Flags().IntVar(&days, "days", 30, "look back this many days")
	return cmd
}
