package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/claude/liftwise/internal/storage"
)

func jsonContents(uri string, v any) ([]mcp.ResourceContents, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      uri,
			MIMEType: "application/json",
			Text:     string(data),
		},
	}, nil
}

func (h *handlers) currentPlan(ctx context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	uid := UserIDFromContext(ctx)

	plans, err := h.ds.ListPlans(ctx, uid)
	if err != nil {
		return nil, err
	}
	if len(plans) == 0 {
		return nil, fmt.Errorf("no plans for user %s", uid)
	}

	// ListPlans returns newest first.
	rec, err := h.ds.GetPlan(ctx, plans[0].PlanID)
	if err != nil {
		return nil, err
	}

	return jsonContents(req.Params.URI, rec)
}

func (h *handlers) profile(ctx context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	uid := UserIDFromContext(ctx)

	profile, err := h.ds.GetProfile(ctx, uid)
	if errors.Is(err, storage.ErrNotFound) {
		return nil, fmt.Errorf("no profile for user %s", uid)
	}
	if err != nil {
		return nil, err
	}

	return jsonContents(req.Params.URI, profile)
}

func (h *handlers) safetyRules(ctx context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	rules, err := h.ds.ListContraindications(ctx)
	if err != nil {
		return nil, err
	}

	return jsonContents(req.Params.URI, rules)
}
