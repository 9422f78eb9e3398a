package mcp

import (
	"context"
	"log/slog"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

type contextKey int

const userIDKey contextKey = iota

// DefaultUserID is used when the transport layer supplies no identity.
const DefaultUserID = "local"

// UserIDFromContext extracts the user ID injected by the transport layer.
func UserIDFromContext(ctx context.Context) string {
	if id, ok := ctx.Value(userIDKey).(string); ok && id != "" {
		return id
	}
	return DefaultUserID
}

// WithUserID returns a context with the given user ID.
func WithUserID(ctx context.Context, userID string) context.Context {
	return context.WithValue(ctx, userIDKey, userID)
}

// New creates an MCP server with all tools and resources registered.
func New(ds DataSource, version string, log *slog.Logger) *server.MCPServer {
	s := server.NewMCPServer("LiftWise", version,
		server.WithToolCapabilities(false),
		server.WithResourceCapabilities(false, false),
		server.WithInstructions("LiftWise personal training server. Inspect user profiles and weekly workout plans, apply natural-language feedback to a plan, and review safety rules. Plan adjustments are validated for feasibility, safety, and goal coherence before they are applied."),
	)

	h := &handlers{ds: ds, log: log}

	// Tools
	s.AddTools(
		server.ServerTool{Tool: toolGetProfile, Handler: h.getProfile},
		server.ServerTool{Tool: toolListPlans, Handler: h.listPlans},
		server.ServerTool{Tool: toolGetPlan, Handler: h.getPlan},
		server.ServerTool{Tool: toolAdjustPlan, Handler: h.adjustPlan},
		server.ServerTool{Tool: toolListContraindications, Handler: h.listContraindications},
		server.ServerTool{Tool: toolRecentAdjustments, Handler: h.recentAdjustments},
	)

	// Resources
	s.AddResources(
		server.ServerResource{Resource: resCurrentPlan, Handler: h.currentPlan},
		server.ServerResource{Resource: resProfile, Handler: h.profile},
		server.ServerResource{Resource: resSafetyRules, Handler: h.safetyRules},
	)

	return s
}

// handlers holds dependencies for MCP tool/resource handlers.
type handlers struct {
	ds  DataSource
	log *slog.Logger
}

// --- Resource definitions ---

var resCurrentPlan = mcp.NewResource(
	"liftwise://current_plan",
	"Current Plan",
	mcp.WithResourceDescription("The most recently created workout plan for the authenticated user, including its full weekly schedule and adjustment history"),
	mcp.WithMIMEType("application/json"),
)

var resProfile = mcp.NewResource(
	"liftwise://profile",
	"User Profile",
	mcp.WithResourceDescription("The authenticated user's goals, fitness level, medical conditions, and preferences"),
	mcp.WithMIMEType("application/json"),
)

var resSafetyRules = mcp.NewResource(
	"liftwise://safety_rules",
	"Safety Rules",
	mcp.WithResourceDescription("All contraindication rules mapping medical conditions to exercises to avoid"),
	mcp.WithMIMEType("application/json"),
)
