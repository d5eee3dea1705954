package mcp

import (
	"context"
	"time"

	"github.com/claude/repcoach/internal/client"
	"github.com/claude/repcoach/internal/models"
)

// DataSource abstracts the daemon for MCP tools. client.Client satisfies it
// over HTTP; tests substitute an in-memory fake.
type DataSource interface {
	Status(ctx context.Context) (models.Status, error)
	Say(ctx context.Context, text string) error
	Start(ctx context.Context, plan string) (models.Status, error)
	Plans(ctx context.Context) ([]models.Plan, error)
	History(ctx context.Context, limit int) ([]models.SessionSummary, error)
	SessionSets(ctx context.Context, sessionID string) ([]models.SessionSetRow, error)
	Stats(ctx context.Context, since time.Time) (models.HistoryStats, error)
}

// Compile-time check: *client.Client satisfies DataSource.
var _ DataSource = (*client.Client)(nil)
