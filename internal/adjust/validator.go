package adjust

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/claude/liftwise/internal/feedback"
	"github.com/claude/liftwise/internal/models"
)

// RuleSource provides contraindication rules for a set of medical conditions.
// Condition matching is case-insensitive on the store side.
type RuleSource interface {
	ContraindicationsFor(ctx context.Context, conditions []string) ([]models.ContraindicationRule, error)
}

// Validator gates every intent through feasibility, safety, and coherence
// judgments, and re-validates the mutated plan as a whole.
type Validator struct {
	rules RuleSource
	log   *slog.Logger
}

// NewValidator creates a validator. rules may be nil, in which case safety
// checks run with an empty rule set.
func NewValidator(rules RuleSource, log *slog.Logger) *Validator {
	return &Validator{rules: rules, log: log}
}

// AnalyzeFeasibility judges whether each intent references entities that
// exist in the plan.
func (v *Validator) AnalyzeFeasibility(plan *models.WorkoutPlan, in *feedback.Intents, profile *models.UserProfile) *FeasibilityResult {
	res := &FeasibilityResult{}
	ws := plan.WeeklySchedule

	pass := func(ref feedback.Ref) {
		res.Feasible = append(res.Feasible, Assessment{Ref: ref})
	}
	fail := func(ref feedback.Ref, detail string) {
		res.Infeasible = append(res.Infeasible, Assessment{Ref: ref, Detail: detail})
	}

	for i, s := range in.Substitutions {
		ref := feedback.Ref{Kind: feedback.KindSubstitution, Index: i}
		if ws.HasExercise(s.From) {
			pass(ref)
		} else {
			fail(ref, fmt.Sprintf("exercise %q is not in the current plan", s.From))
		}
	}

	for i, adj := range in.VolumeAdjustments {
		ref := feedback.Ref{Kind: feedback.KindVolume, Index: i}
		if strings.EqualFold(adj.Exercise, "all") || ws.HasExercise(adj.Exercise) {
			pass(ref)
		} else {
			fail(ref, fmt.Sprintf("exercise %q is not in the current plan", adj.Exercise))
		}
	}

	for i, adj := range in.IntensityAdjustments {
		ref := feedback.Ref{Kind: feedback.KindIntensity, Index: i}
		if strings.EqualFold(adj.Exercise, "all") || ws.HasExercise(adj.Exercise) {
			pass(ref)
		} else {
			fail(ref, fmt.Sprintf("exercise %q is not in the current plan", adj.Exercise))
		}
	}

	for i, c := range in.ScheduleChanges {
		ref := feedback.Ref{Kind: feedback.KindSchedule, Index: i}
		if detail := scheduleFeasibility(ws, c); detail != "" {
			fail(ref, detail)
		} else {
			pass(ref)
		}
	}

	workoutDays := len(ws.WorkoutDays())
	for i := range in.RestPeriodChanges {
		ref := feedback.Ref{Kind: feedback.KindRestPeriod, Index: i}
		if workoutDays == 0 {
			fail(ref, "plan has no workout days to adjust rest for")
		} else {
			pass(ref)
		}
	}

	for i, e := range in.EquipmentLimitations {
		ref := feedback.Ref{Kind: feedback.KindEquipment, Index: i}
		if planMentionsEquipment(ws, e.Equipment) {
			pass(ref)
		} else {
			fail(ref, fmt.Sprintf("no exercise in the plan uses %s", e.Equipment))
		}
	}

	// Pain concerns are always actionable: a named exercise gets a note, a
	// general concern is acknowledged without mutation.
	for i := range in.PainConcerns {
		pass(feedback.Ref{Kind: feedback.KindPain, Index: i})
	}

	return res
}

func scheduleFeasibility(ws models.WeeklySchedule, c feedback.ScheduleChange) string {
	switch c.Type {
	case feedback.ScheduleMove:
		if !models.IsWeekday(c.From) || !models.IsWeekday(c.To) {
			return fmt.Sprintf("unknown day in move %q -> %q", c.From, c.To)
		}
		if ws[c.From].Rest() {
			return fmt.Sprintf("%s has no session to move", c.From)
		}
		if !ws[c.To].Rest() {
			return fmt.Sprintf("%s already has a session", c.To)
		}
		return ""
	case feedback.ScheduleCombine:
		if !models.IsWeekday(c.From) || !models.IsWeekday(c.To) {
			return fmt.Sprintf("unknown day in combine %q & %q", c.From, c.To)
		}
		if ws[c.From].Rest() || ws[c.To].Rest() {
			return "combine requires two workout days"
		}
		return ""
	case feedback.ScheduleSplit, feedback.ScheduleAddDay, feedback.ScheduleRemoveDay:
		// Feasible to attempt; the modifier reports these as unsupported.
		return ""
	default:
		return fmt.Sprintf("unknown schedule change type %q", c.Type)
	}
}

func planMentionsEquipment(ws models.WeeklySchedule, equipment string) bool {
	for _, day := range models.Weekdays {
		sess := ws[day].Session
		if sess == nil {
			continue
		}
		for _, ex := range sess.Exercises {
			if containsFold(ex.Exercise, equipment) {
				return true
			}
		}
	}
	return false
}

// CheckSafety flags intents that contradict stored contraindication rules.
// A rule-store failure is logged and treated as an empty rule set: fail-open
// on the fetch, fail-closed on any recorded contraindication.
func (v *Validator) CheckSafety(ctx context.Context, in *feedback.Intents, profile *models.UserProfile) *SafetyResult {
	res := &SafetyResult{}

	var rules []models.ContraindicationRule
	if v.rules != nil && len(profile.MedicalConditions) > 0 {
		var err error
		rules, err = v.rules.ContraindicationsFor(ctx, profile.MedicalConditions)
		if err != nil {
			v.log.Warn("contraindication lookup failed, proceeding without rules", "error", err)
			rules = nil
		}
	}

	safe := func(ref feedback.Ref) {
		res.Safe = append(res.Safe, Assessment{Ref: ref})
	}
	warn := func(ref feedback.Ref, format string, args ...any) {
		res.Warnings = append(res.Warnings, Warning{Ref: ref, Message: fmt.Sprintf(format, args...)})
	}

	kneeIssue := hasKneeCondition(profile.MedicalConditions)

	for i, s := range in.Substitutions {
		ref := feedback.Ref{Kind: feedback.KindSubstitution, Index: i}
		if condition, avoided := contraindicated(s.To, rules); avoided != "" {
			res.Unsafe = append(res.Unsafe, Assessment{
				Ref:    ref,
				Detail: fmt.Sprintf("%q is contraindicated for %s", s.To, condition),
			})
			continue
		}
		if kneeIssue && IsPlyometric(s.To) {
			warn(ref, "%q is a jumping movement; monitor the knee closely", s.To)
		}
		safe(ref)
	}

	for i, adj := range in.VolumeAdjustments {
		ref := feedback.Ref{Kind: feedback.KindVolume, Index: i}
		if adj.Direction == "increase" {
			warn(ref, "volume increase on %s: apply progression cautiously", adj.Exercise)
		}
		safe(ref)
	}

	for i, adj := range in.IntensityAdjustments {
		ref := feedback.Ref{Kind: feedback.KindIntensity, Index: i}
		if adj.Direction == "increase" {
			warn(ref, "intensity increase on %s: apply progression cautiously", adj.Exercise)
		}
		safe(ref)
	}

	for i := range in.ScheduleChanges {
		safe(feedback.Ref{Kind: feedback.KindSchedule, Index: i})
	}
	for i := range in.RestPeriodChanges {
		safe(feedback.Ref{Kind: feedback.KindRestPeriod, Index: i})
	}
	for i := range in.EquipmentLimitations {
		safe(feedback.Ref{Kind: feedback.KindEquipment, Index: i})
	}

	for i, p := range in.PainConcerns {
		ref := feedback.Ref{Kind: feedback.KindPain, Index: i}
		warn(ref, "reported %s pain: review exercises loading the %s", p.Area, p.Area)
		safe(ref)
	}

	return res
}

// contraindicated returns the matching condition and avoided exercise name
// when the exercise appears in any rule's avoid list.
func contraindicated(exercise string, rules []models.ContraindicationRule) (condition, avoided string) {
	for _, rule := range rules {
		for _, avoid := range rule.ExercisesToAvoid {
			if containsFold(exercise, avoid) || containsFold(avoid, exercise) {
				return rule.Condition, avoid
			}
		}
	}
	return "", ""
}

// VerifyCoherence judges whether intents work against the stated goals.
// Everything defaults to coherent; only clear contradictions are blocked.
func (v *Validator) VerifyCoherence(plan *models.WorkoutPlan, in *feedback.Intents, profile *models.UserProfile) *CoherenceResult {
	res := &CoherenceResult{}

	coherent := func(ref feedback.Ref) {
		res.Coherent = append(res.Coherent, Assessment{Ref: ref})
	}

	wantsStrength := profile.HasGoal("strength")
	wantsMuscle := profile.HasGoal("muscle_gain")

	for i, s := range in.Substitutions {
		ref := feedback.Ref{Kind: feedback.KindSubstitution, Index: i}
		if wantsStrength && IsCompound(s.From) && IsIsolation(s.To) && !IsCompound(s.To) {
			res.Incoherent = append(res.Incoherent, Assessment{
				Ref:    ref,
				Detail: fmt.Sprintf("replacing compound %q with isolation %q conflicts with the strength goal", s.From, s.To),
			})
			continue
		}
		coherent(ref)
	}

	for i, adj := range in.VolumeAdjustments {
		ref := feedback.Ref{Kind: feedback.KindVolume, Index: i}
		if wantsMuscle && adj.Direction == "decrease" && strings.EqualFold(adj.Exercise, "all") {
			res.Incoherent = append(res.Incoherent, Assessment{
				Ref:    ref,
				Detail: "decreasing volume across the plan conflicts with the muscle_gain goal",
			})
			continue
		}
		coherent(ref)
	}

	for _, ref := range in.Refs() {
		if ref.Kind == feedback.KindSubstitution || ref.Kind == feedback.KindVolume {
			continue
		}
		coherent(ref)
	}

	return res
}
