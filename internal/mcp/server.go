package mcp

import (
	"log/slog"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

// New creates an MCP server with all tools and resources registered.
func New(ds DataSource, version string, log *slog.Logger) *server.MCPServer {
	s := server.NewMCPServer("repcoach", version,
		server.WithToolCapabilities(false),
		server.WithResourceCapabilities(false, false),
		server.WithInstructions("repcoach voice coach. Read the live session status, send spoken-style commands (ready, pause, resume, skip, stop, a weight or a rep count), start a plan, and look up finished sessions."),
	)

	h := &handlers{ds: ds, log: log}

	// Tools
	s.AddTools(
		server.ServerTool{Tool: toolGetStatus, Handler: h.getStatus},
		server.ServerTool{Tool: toolSendCommand, Handler: h.sendCommand},
		server.ServerTool{Tool: toolStartSession, Handler: h.startSession},
		server.ServerTool{Tool: toolListPlans, Handler: h.listPlans},
		server.ServerTool{Tool: toolGetSessionHistory, Handler: h.getSessionHistory},
		server.ServerTool{Tool: toolGetHistoryStats, Handler: h.getHistoryStats},
	)

	// Resources
	s.AddResources(
		server.ServerResource{Resource: resPlans, Handler: h.plans},
		server.ServerResource{Resource: resStatus, Handler: h.status},
	)

	return s
}

// handlers holds dependencies for MCP tool/resource handlers.
type handlers struct {
	ds  DataSource
	log *slog.Logger
}

// --- Resource definitions ---

var resPlans = mcp.NewResource(
	"repcoach://plans",
	"Plans",
	mcp.WithResourceDescription("Every workout and routine plan the coach has loaded, with exercises, sets and rests"),
	mcp.WithMIMEType("application/json"),
)

var resStatus = mcp.NewResource(
	"repcoach://status",
	"Session Status",
	mcp.WithResourceDescription("Current session state, exercise, set and running timers"),
	mcp.WithMIMEType("application/json"),
)
