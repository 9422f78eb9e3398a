package mcp

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/claude/liftwise/internal/agent"
	"github.com/claude/liftwise/internal/memory"
	"github.com/claude/liftwise/internal/models"
	"github.com/claude/liftwise/internal/storage"
)

// HTTPClient implements DataSource by calling the LiftWise REST API.
// Used for remote MCP mode where the binary runs locally (stdio) but
// data lives on the remote server (accessed over Tailscale).
type HTTPClient struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

// Compile-time check: HTTPClient satisfies DataSource.
var _ DataSource = (*HTTPClient)(nil)

// NewHTTPClient creates an HTTPClient targeting the given base URL. The API
// key is sent on write requests; it may be empty for read-only use.
func NewHTTPClient(baseURL, apiKey string) *HTTPClient {
	return &HTTPClient{
		baseURL:    strings.TrimRight(baseURL, "/"),
		apiKey:     apiKey,
		httpClient: &http.Client{Timeout: 60 * time.Second},
	}
}

func (c *HTTPClient) do(ctx context.Context, method, path string, params url.Values, payload any) ([]byte, error) {
	u := c.baseURL + path
	if len(params) > 0 {
		u += "?" + params.Encode()
	}

	var body io.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return nil, fmt.Errorf("httpclient: encode payload: %w", err)
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, u, body)
	if err != nil {
		return nil, fmt.Errorf("httpclient: create request: %w", err)
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if method != http.MethodGet && c.apiKey != "" {
		req.Header.Set("X-API-Key", c.apiKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("httpclient: %s: %w", path, err)
	}
	defer func() { _ = resp.Body.Close() }()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("httpclient: read body: %w", err)
	}

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		return nil, fmt.Errorf("httpclient: %s returned %d: %s", path, resp.StatusCode, data)
	}

	return data, nil
}

func (c *HTTPClient) get(ctx context.Context, path string) ([]byte, error) {
	return c.do(ctx, http.MethodGet, path, nil, nil)
}

func (c *HTTPClient) GetProfile(ctx context.Context, userID string) (*models.UserProfile, error) {
	body, err := c.get(ctx, "/api/v1/users/"+url.PathEscape(userID)+"/profile")
	if err != nil {
		return nil, err
	}

	var profile models.UserProfile
	if err := json.Unmarshal(body, &profile); err != nil {
		return nil, fmt.Errorf("httpclient: decode profile: %w", err)
	}
	return &profile, nil
}

func (c *HTTPClient) ListPlans(ctx context.Context, userID string) ([]storage.PlanSummary, error) {
	body, err := c.get(ctx, "/api/v1/users/"+url.PathEscape(userID)+"/plans")
	if err != nil {
		return nil, err
	}

	var plans []storage.PlanSummary
	if err := json.Unmarshal(body, &plans); err != nil {
		return nil, fmt.Errorf("httpclient: decode plans: %w", err)
	}
	return plans, nil
}

func (c *HTTPClient) GetPlan(ctx context.Context, id uuid.UUID) (*storage.PlanRecord, error) {
	body, err := c.get(ctx, "/api/v1/plans/"+id.String())
	if err != nil {
		return nil, err
	}

	var rec storage.PlanRecord
	if err := json.Unmarshal(body, &rec); err != nil {
		return nil, fmt.Errorf("httpclient: decode plan: %w", err)
	}
	return &rec, nil
}

func (c *HTTPClient) AdjustPlan(ctx context.Context, planID uuid.UUID, feedbackText string) (*agent.Adjustment, error) {
	body, err := c.do(ctx, http.MethodPost, "/api/v1/plans/"+planID.String()+"/adjust", nil,
		map[string]string{"feedback": feedbackText})
	if err != nil {
		return nil, err
	}

	var adjustment agent.Adjustment
	if err := json.Unmarshal(body, &adjustment); err != nil {
		return nil, fmt.Errorf("httpclient: decode adjustment: %w", err)
	}
	return &adjustment, nil
}

func (c *HTTPClient) ListContraindications(ctx context.Context) ([]models.ContraindicationRule, error) {
	body, err := c.get(ctx, "/api/v1/contraindications")
	if err != nil {
		return nil, err
	}

	var rules []models.ContraindicationRule
	if err := json.Unmarshal(body, &rules); err != nil {
		return nil, fmt.Errorf("httpclient: decode contraindications: %w", err)
	}
	return rules, nil
}

// RecentAdjustments has no REST endpoint; the per-user memory store only
// exists on the server host.
func (c *HTTPClient) RecentAdjustments(ctx context.Context, userID string, limit int) ([]memory.Entry, error) {
	return nil, fmt.Errorf("recent adjustments: %w", ErrRemoteUnsupported)
}
