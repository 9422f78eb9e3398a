package mcp

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/claude/liftwise/internal/agent"
	"github.com/claude/liftwise/internal/memory"
	"github.com/claude/liftwise/internal/models"
	"github.com/claude/liftwise/internal/storage"
)

// DataSource abstracts the data layer for MCP tools. LocalSource (direct
// Postgres access) and HTTPClient (remote via REST API) both satisfy it.
type DataSource interface {
	GetProfile(ctx context.Context, userID string) (*models.UserProfile, error)
	ListPlans(ctx context.Context, userID string) ([]storage.PlanSummary, error)
	GetPlan(ctx context.Context, id uuid.UUID) (*storage.PlanRecord, error)
	AdjustPlan(ctx context.Context, planID uuid.UUID, feedbackText string) (*agent.Adjustment, error)
	ListContraindications(ctx context.Context) ([]models.ContraindicationRule, error)
	RecentAdjustments(ctx context.Context, userID string, limit int) ([]memory.Entry, error)
}

// ErrRemoteUnsupported marks operations that have no REST endpoint.
var ErrRemoteUnsupported = errors.New("not available in remote mode")

// LocalSource serves MCP tools directly from the database, running the
// adjustment pipeline in-process.
type LocalSource struct {
	db       *storage.DB
	adjuster *agent.Adjuster
	state    *memory.StateDB
	log      *slog.Logger
}

var _ DataSource = (*LocalSource)(nil)

// NewLocalSource wires a local data source. state may be nil, in which case
// recent-adjustment recall returns nothing.
func NewLocalSource(db *storage.DB, adjuster *agent.Adjuster, state *memory.StateDB, log *slog.Logger) *LocalSource {
	return &LocalSource{db: db, adjuster: adjuster, state: state, log: log}
}

func (s *LocalSource) GetProfile(ctx context.Context, userID string) (*models.UserProfile, error) {
	return s.db.GetProfile(ctx, userID)
}

func (s *LocalSource) ListPlans(ctx context.Context, userID string) ([]storage.PlanSummary, error) {
	return s.db.ListPlans(ctx, userID)
}

func (s *LocalSource) GetPlan(ctx context.Context, id uuid.UUID) (*storage.PlanRecord, error) {
	return s.db.GetPlan(ctx, id)
}

func (s *LocalSource) ListContraindications(ctx context.Context) ([]models.ContraindicationRule, error) {
	return s.db.ListContraindications(ctx)
}

// AdjustPlan runs the full feedback pipeline against a stored plan and
// persists the result when anything was applied.
func (s *LocalSource) AdjustPlan(ctx context.Context, planID uuid.UUID, feedbackText string) (*agent.Adjustment, error) {
	rec, err := s.db.GetPlan(ctx, planID)
	if err != nil {
		return nil, fmt.Errorf("loading plan: %w", err)
	}

	profile, err := s.db.GetProfile(ctx, rec.UserID)
	if err != nil {
		return nil, fmt.Errorf("loading profile: %w", err)
	}

	adjustment, err := s.adjuster.AdjustPlan(ctx, rec.UserID, rec.Plan, profile, feedbackText)
	if err != nil {
		return nil, err
	}

	out := adjustment.AdjustedPlan
	if len(adjustment.Applied) > 0 {
		if err := s.db.UpdatePlan(ctx, out); err != nil {
			return nil, fmt.Errorf("saving adjusted plan: %w", err)
		}
	}
	if n := len(out.AdjustmentHistory); n > 0 && len(adjustment.Applied)+len(adjustment.Skipped) > 0 {
		if err := s.db.InsertAdjustment(ctx, out.PlanID, out.AdjustmentHistory[n-1]); err != nil {
			s.log.Warn("adjustment history insert failed", "plan", planID, "error", err)
		}
	}

	return adjustment, nil
}

func (s *LocalSource) RecentAdjustments(ctx context.Context, userID string, limit int) ([]memory.Entry, error) {
	if s.state == nil {
		return nil, nil
	}
	return s.state.RecentAdjustments(userID, limit)
}
