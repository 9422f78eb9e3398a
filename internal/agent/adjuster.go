package agent

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/claude/liftwise/internal/adjust"
	"github.com/claude/liftwise/internal/feedback"
	"github.com/claude/liftwise/internal/models"
)

// Adjustment is the full outcome of one feedback cycle: the mutated plan
// clone plus everything the user needs to understand what happened and why.
type Adjustment struct {
	AdjustedPlan   *models.WorkoutPlan    `json:"adjustedPlan"`
	Applied        []adjust.Change        `json:"appliedChanges"`
	Skipped        []adjust.SkippedChange `json:"skippedChanges"`
	Warnings       []adjust.Warning       `json:"warnings"`
	Explanations   []string               `json:"explanations"`
	ChangesSummary string                 `json:"changesSummary"`
	Reasoning      string                 `json:"reasoning"`
	Source         feedback.Source        `json:"parseSource"`
	Validation     *adjust.PlanValidation `json:"validation,omitempty"`
}

// Recorder persists a short per-user adjustment summary outside the main
// database, for recall by the assistant tooling.
type Recorder interface {
	RecordAdjustment(userID string, planID uuid.UUID, summary string) error
}

// Adjuster runs the parse, validate, apply, re-validate pipeline.
type Adjuster struct {
	parser    *feedback.Parser
	validator *adjust.Validator
	modifier  *adjust.Modifier
	recorder  Recorder
	log       *slog.Logger
}

// NewAdjuster wires the pipeline stages together.
func NewAdjuster(parser *feedback.Parser, validator *adjust.Validator, modifier *adjust.Modifier, log *slog.Logger) *Adjuster {
	return &Adjuster{parser: parser, validator: validator, modifier: modifier, log: log}
}

// SetRecorder attaches an optional adjustment memory. A failing recorder is
// logged and never blocks the adjustment.
func (a *Adjuster) SetRecorder(r Recorder) {
	a.recorder = r
}

// AdjustPlan applies free-text feedback to a plan. The returned plan is a
// clone; the input is never mutated. The call succeeds even when every
// individual intent is skipped, so the user always gets an explanation.
func (a *Adjuster) AdjustPlan(ctx context.Context, userID string, plan *models.WorkoutPlan, profile *models.UserProfile, text string) (*Adjustment, error) {
	res := a.parser.Parse(ctx, text)

	if res.Intents.Count() == 0 {
		out := plan.Clone()
		out.WeeklySchedule.Normalize()
		a.log.Info("no actionable intents in feedback", "user", userID, "plan", plan.PlanID)
		return &Adjustment{
			AdjustedPlan:   out,
			ChangesSummary: "No changes applied",
			Reasoning:      "No actionable requests were found in the feedback, so the plan is unchanged.",
			Source:         res.Source,
		}, nil
	}

	feas := a.validator.AnalyzeFeasibility(plan, &res.Intents, profile)
	safety := a.validator.CheckSafety(ctx, &res.Intents, profile)
	coherence := a.validator.VerifyCoherence(plan, &res.Intents, profile)

	applied := a.modifier.Apply(plan, &res.Intents, feas, safety, coherence)
	out := applied.ModifiedPlan

	validation := a.validator.ValidateAdjustedPlan(ctx, out, profile)

	now := time.Now().UTC()
	appliedDescs := make([]string, 0, len(applied.Applied))
	for _, c := range applied.Applied {
		appliedDescs = append(appliedDescs, c.Description)
	}
	skippedDescs := make([]string, 0, len(applied.Skipped))
	for _, s := range applied.Skipped {
		skippedDescs = append(skippedDescs, fmt.Sprintf("%s (%s)", s.Description, s.Reason))
	}

	if len(applied.Applied) > 0 {
		out.LastAdjusted = &now
		out.AppliedChanges = append(out.AppliedChanges, appliedDescs...)
	}
	out.AdjustmentHistory = append(out.AdjustmentHistory, models.AdjustmentRecord{
		ID:        uuid.New(),
		Feedback:  text,
		Source:    string(res.Source),
		Applied:   appliedDescs,
		Skipped:   skippedDescs,
		CreatedAt: now,
	})

	adjustment := &Adjustment{
		AdjustedPlan:   out,
		Applied:        applied.Applied,
		Skipped:        applied.Skipped,
		Warnings:       safety.Warnings,
		Explanations:   explanations(applied, safety),
		ChangesSummary: fmt.Sprintf("Applied %d of %d requested changes", len(applied.Applied), res.Intents.Count()),
		Reasoning:      buildReasoning(res, applied, validation),
		Source:         res.Source,
		Validation:     validation,
	}

	a.log.Info("plan adjusted",
		"user", userID,
		"plan", plan.PlanID,
		"applied", len(applied.Applied),
		"skipped", len(applied.Skipped),
		"valid", validation.IsValid)

	if a.recorder != nil {
		if err := a.recorder.RecordAdjustment(userID, out.PlanID, adjustment.ChangesSummary); err != nil {
			a.log.Warn("recording adjustment memory failed", "error", err)
		}
	}

	return adjustment, nil
}

func explanations(applied *adjust.ApplyResult, safety *adjust.SafetyResult) []string {
	var out []string
	for _, c := range applied.Applied {
		out = append(out, c.Description)
	}
	for _, s := range applied.Skipped {
		out = append(out, fmt.Sprintf("Skipped %s: %s", s.Description, s.Reason))
	}
	for _, w := range safety.Warnings {
		out = append(out, "Warning: "+w.Message)
	}
	return out
}

func buildReasoning(res *feedback.Result, applied *adjust.ApplyResult, validation *adjust.PlanValidation) string {
	var b strings.Builder

	switch res.Source {
	case feedback.SourceModel:
		b.WriteString("The feedback was parsed by the language model. ")
	default:
		b.WriteString("The feedback was parsed by the rule-based fallback. ")
	}

	fmt.Fprintf(&b, "%d request(s) were identified", res.Intents.Count())
	if n := len(res.Categorized.HighPriority); n > 0 {
		fmt.Fprintf(&b, ", %d of them high priority", n)
	}
	b.WriteString(". ")

	fmt.Fprintf(&b, "%d change(s) were applied and %d skipped. ", len(applied.Applied), len(applied.Skipped))

	if validation != nil {
		b.WriteString(validation.Summary)
		b.WriteString(".")
	}
	return b.String()
}
