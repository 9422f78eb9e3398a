package mcp

import (
	"context"
	"errors"
	"strconv"

	"github.com/google/uuid"
	"github.com/mark3labs/mcp-go/mcp"

	"github.com/claude/liftwise/internal/storage"
)

// --- Tool definitions ---

var toolGetProfile = mcp.NewTool("get_profile",
	mcp.WithDescription("Retrieve a user's training profile: goals, fitness level, medical conditions, and scheduling preferences."),
	mcp.WithString("user_id", mcp.Description("User ID. Defaults to the authenticated user.")),
)

var toolListPlans = mcp.NewTool("list_plans",
	mcp.WithDescription("List a user's workout plans, newest first. Returns plan IDs, names, and adjustment timestamps."),
	mcp.WithString("user_id", mcp.Description("User ID. Defaults to the authenticated user.")),
)

var toolGetPlan = mcp.NewTool("get_plan",
	mcp.WithDescription("Retrieve a workout plan by ID, including its full 7-day schedule, archived sessions, and adjustment history."),
	mcp.WithString("plan_id", mcp.Required(), mcp.Description("Plan UUID")),
)

var toolAdjustPlan = mcp.NewTool("adjust_plan",
	mcp.WithDescription("Apply natural-language feedback to a workout plan (e.g. 'replace squats with lunges, my knees hurt'). Each requested change is checked for feasibility, safety, and goal coherence; the result reports what was applied and what was skipped with reasons."),
	mcp.WithString("plan_id", mcp.Required(), mcp.Description("Plan UUID")),
	mcp.WithString("feedback", mcp.Required(), mcp.Description("Free-text feedback describing the desired changes")),
)

var toolListContraindications = mcp.NewTool("list_contraindications",
	mcp.WithDescription("List all contraindication rules: medical conditions and the exercises they rule out."),
)

var toolRecentAdjustments = mcp.NewTool("get_recent_adjustments",
	mcp.WithDescription("Recall a user's recent plan adjustments, newest first. Only available when running against the database directly."),
	mcp.WithString("user_id", mcp.Description("User ID. Defaults to the authenticated user.")),
	mcp.WithString("limit", mcp.Description("Maximum entries to return. Defaults to 10.")),
)

// --- Tool handlers ---

func (h *handlers) userID(ctx context.Context, req mcp.CallToolRequest) string {
	if id := req.GetString("user_id", ""); id != "" {
		return id
	}
	return UserIDFromContext(ctx)
}

func requirePlanID(req mcp.CallToolRequest) (uuid.UUID, *mcp.CallToolResult) {
	raw, err := req.RequireString("plan_id")
	if err != nil {
		return uuid.Nil, mcp.NewToolResultError("plan_id parameter is required")
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, mcp.NewToolResultError("invalid plan_id: " + err.Error())
	}
	return id, nil
}

func (h *handlers) getProfile(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	uid := h.userID(ctx, req)

	profile, err := h.ds.GetProfile(ctx, uid)
	if errors.Is(err, storage.ErrNotFound) {
		return mcp.NewToolResultError("no profile for user " + uid), nil
	}
	if err != nil {
		h.log.Error("mcp get_profile", "error", err)
		return mcp.NewToolResultError("query failed: " + err.Error()), nil
	}

	result, err := mcp.NewToolResultJSON(profile)
	if err != nil {
		return mcp.NewToolResultError("serialization failed"), nil
	}
	return result, nil
}

func (h *handlers) listPlans(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	uid := h.userID(ctx, req)

	plans, err := h.ds.ListPlans(ctx, uid)
	if err != nil {
		h.log.Error("mcp list_plans", "error", err)
		return mcp.NewToolResultError("query failed: " + err.Error()), nil
	}

	result, err := mcp.NewToolResultJSON(plans)
	if err != nil {
		return mcp.NewToolResultError("serialization failed"), nil
	}
	return result, nil
}

func (h *handlers) getPlan(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, errResult := requirePlanID(req)
	if errResult != nil {
		return errResult, nil
	}

	rec, err := h.ds.GetPlan(ctx, id)
	if errors.Is(err, storage.ErrNotFound) {
		return mcp.NewToolResultError("plan not found"), nil
	}
	if err != nil {
		h.log.Error("mcp get_plan", "error", err)
		return mcp.NewToolResultError("query failed: " + err.Error()), nil
	}

	result, err := mcp.NewToolResultJSON(rec)
	if err != nil {
		return mcp.NewToolResultError("serialization failed"), nil
	}
	return result, nil
}

func (h *handlers) adjustPlan(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, errResult := requirePlanID(req)
	if errResult != nil {
		return errResult, nil
	}

	text, err := req.RequireString("feedback")
	if err != nil {
		return mcp.NewToolResultError("feedback parameter is required"), nil
	}

	adjustment, err := h.ds.AdjustPlan(ctx, id, text)
	if errors.Is(err, storage.ErrNotFound) {
		return mcp.NewToolResultError("plan not found"), nil
	}
	if err != nil {
		h.log.Error("mcp adjust_plan", "plan", id, "error", err)
		return mcp.NewToolResultError("adjustment failed: " + err.Error()), nil
	}

	result, err := mcp.NewToolResultJSON(adjustment)
	if err != nil {
		return mcp.NewToolResultError("serialization failed"), nil
	}
	return result, nil
}

func (h *handlers) listContraindications(ctx context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	rules, err := h.ds.ListContraindications(ctx)
	if err != nil {
		h.log.Error("mcp list_contraindications", "error", err)
		return mcp.NewToolResultError("query failed: " + err.Error()), nil
	}

	result, err := mcp.NewToolResultJSON(rules)
	if err != nil {
		return mcp.NewToolResultError("serialization failed"), nil
	}
	return result, nil
}

func (h *handlers) recentAdjustments(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	uid := h.userID(ctx, req)

	limit := 10
	if raw := req.GetString("limit", ""); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			return mcp.NewToolResultError("limit must be a positive integer"), nil
		}
		limit = n
	}

	entries, err := h.ds.RecentAdjustments(ctx, uid, limit)
	if errors.Is(err, ErrRemoteUnsupported) {
		return mcp.NewToolResultError("recent adjustments are only available in local mode"), nil
	}
	if err != nil {
		h.log.Error("mcp get_recent_adjustments", "error", err)
		return mcp.NewToolResultError("query failed: " + err.Error()), nil
	}

	result, err := mcp.NewToolResultJSON(entries)
	if err != nil {
		return mcp.NewToolResultError("serialization failed"), nil
	}
	return result, nil
}
