package mcp

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/claude/repcoach/internal/client"
)

// defaultSince returns the start of the stats window, defaulting to 30 days ago.
func defaultSince(sinceStr string) (time.Time, error) {
	if sinceStr == "" {
		return time.Now().AddDate(0, 0, -30), nil
	}
	return parseFlexTime(sinceStr)
}

func parseFlexTime(s string) (time.Time, error) {
	t, err := time.Parse(time.RFC3339, s)
	if err == nil {
		return t, nil
	}
	t, err = time.Parse("2006-01-02", s)
	if err == nil {
		return t, nil
	}
	return time.Time{}, err
}

// --- Tool definitions ---

var toolGetStatus = mcp.NewTool("get_status",
	mcp.WithDescription("Current session snapshot: state (idle, pending, active, resting, paused, stopped), plan, exercise, set number, side, what input the coach is waiting for, and running timers with elapsed/remaining seconds."),
)

var toolSendCommand = mcp.NewTool("send_command",
	mcp.WithDescription("Send a command as if the user had spoken it. Recognised phrases include 'ready', 'pause', 'resume', 'skip', 'stop', a weight such as '20 kilos' or '45 pounds', and a bare number for the rep count."),
	mcp.WithString("text", mcp.Required(), mcp.Description("The utterance, e.g. 'ready' or '12'")),
)

var toolStartSession = mcp.NewTool("start_session",
	mcp.WithDescription("Start a session for a named plan. Fails if a session is already running or the plan does not exist."),
	mcp.WithString("plan", mcp.Required(), mcp.Description("Plan name (see list_plans)")),
)

var toolListPlans = mcp.NewTool("list_plans",
	mcp.WithDescription("List all loaded plans with their exercises, set counts, reps or hold durations, and rest times."),
)

var toolGetSessionHistory = mcp.NewTool("get_session_history",
	mcp.WithDescription("Finished sessions, newest first, with completed/skipped set counts, total reps and volume. When session_id is given, returns every recorded set of that session instead."),
	mcp.WithNumber("limit", mcp.Description("Number of sessions to return (1-500). Defaults to 10.")),
	mcp.WithString("session_id", mcp.Description("Return the sets of this session")),
)

var toolGetHistoryStats = mcp.NewTool("get_history_stats",
	mcp.WithDescription("Totals across stored sessions: session count, completed sessions, sets, reps and hold seconds."),
	mcp.WithString("since", mcp.Description("Start date (ISO 8601 or YYYY-MM-DD). Defaults to 30 days ago.")),
)

// --- Tool handlers ---

func (h *handlers) getStatus(ctx context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	st, err := h.ds.Status(ctx)
	if err != nil {
		return h.failed("get_status", err), nil
	}
	return jsonResult(st), nil
}

func (h *handlers) sendCommand(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	text, err := req.RequireString("text")
	if err != nil || strings.TrimSpace(text) == "" {
		return mcp.NewToolResultError("text parameter is required"), nil
	}

	if err := h.ds.Say(ctx, strings.TrimSpace(text)); err != nil {
		return h.failed("send_command", err), nil
	}
	return mcp.NewToolResultText("queued: " + strings.TrimSpace(text)), nil
}

func (h *handlers) startSession(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	plan, err := req.RequireString("plan")
	if err != nil || plan == "" {
		return mcp.NewToolResultError("plan parameter is required"), nil
	}

	st, err := h.ds.Start(ctx, plan)
	if err != nil {
		return h.failed("start_session", err), nil
	}
	return jsonResult(st), nil
}

func (h *handlers) listPlans(ctx context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	plans, err := h.ds.Plans(ctx)
	if err != nil {
		return h.failed("list_plans", err), nil
	}
	return jsonResult(plans), nil
}

func (h *handlers) getSessionHistory(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	if id := req.GetString("session_id", ""); id != "" {
		sets, err := h.ds.SessionSets(ctx, id)
		if err != nil {
			return h.failed("get_session_history", err), nil
		}
		return jsonResult(sets), nil
	}

	limit := req.GetInt("limit", 10)
	if limit < 1 || limit > 500 {
		return mcp.NewToolResultError("limit must be between 1 and 500"), nil
	}
	sessions, err := h.ds.History(ctx, limit)
	if err != nil {
		return h.failed("get_session_history", err), nil
	}
	return jsonResult(sessions), nil
}

func (h *handlers) getHistoryStats(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	since, err := defaultSince(req.GetString("since", ""))
	if err != nil {
		return mcp.NewToolResultError("invalid date format: " + err.Error()), nil
	}

	stats, err := h.ds.Stats(ctx, since)
	if err != nil {
		return h.failed("get_history_stats", err), nil
	}
	return jsonResult(stats), nil
}

// failed turns a daemon error into a tool error. Rejections the daemon
// explains (unknown plan, session already running) are passed through as-is.
func (h *handlers) failed(tool string, err error) *mcp.CallToolResult {
	var apiErr *client.APIError
	if errors.As(err, &apiErr) {
		return mcp.NewToolResultError(apiErr.Message)
	}
	h.log.Error("mcp "+tool, "error", err)
	return mcp.NewToolResultError("daemon unreachable: " + err.Error())
}

func jsonResult(v any) *mcp.CallToolResult {
	result, err := mcp.NewToolResultJSON(v)
	if err != nil {
		return mcp.NewToolResultError("serialization failed")
	}
	return result
}
