package adjust

import (
	"context"
	"fmt"

	"github.com/claude/liftwise/internal/models"
)

// Issue types reported by ValidateAdjustedPlan.
const (
	IssueStructure = "structure"
	IssueCoherence = "coherence"
	IssueSafety    = "safety"
)

// Issue is one final-validation finding. All issues are hard failures.
type Issue struct {
	Type    string `json:"type"`
	Message string `json:"message"`
}

// PlanValidation is the whole-plan judgment after mutation.
type PlanValidation struct {
	IsValid bool    `json:"isValid"`
	Issues  []Issue `json:"issues"`
	Summary string  `json:"summary"`
}

// Non-advanced users are capped at this many workout days per week at final
// validation. Intermediate users are deliberately treated like beginners here.
const maxWorkoutDaysNonAdvanced = 5

// ValidateAdjustedPlan runs structural, coherence, and safety checks on a
// mutated plan. Unlike the per-intent safety pass, every finding here blocks:
// the caller decides the repair policy.
func (v *Validator) ValidateAdjustedPlan(ctx context.Context, plan *models.WorkoutPlan, profile *models.UserProfile) *PlanValidation {
	res := &PlanValidation{}

	add := func(typ, format string, args ...any) {
		res.Issues = append(res.Issues, Issue{Type: typ, Message: fmt.Sprintf(format, args...)})
	}

	ws := plan.WeeklySchedule
	if ws == nil {
		add(IssueStructure, "plan has no weekly schedule")
		res.Summary = summarize(res.Issues)
		return res
	}

	if len(ws) != len(models.Weekdays) {
		add(IssueStructure, "schedule has %d days, want %d", len(ws), len(models.Weekdays))
	}
	for _, day := range models.Weekdays {
		d, ok := ws[day]
		if !ok {
			add(IssueStructure, "schedule is missing %s", day)
			continue
		}
		sess := d.Session
		if sess == nil {
			continue
		}
		if sess.SessionName == "" {
			add(IssueStructure, "%s session has no name", day)
		}
		if len(sess.Exercises) == 0 {
			add(IssueStructure, "%s session has no exercises", day)
		}
		for i, ex := range sess.Exercises {
			if ex.Sets < 1 {
				add(IssueStructure, "%s exercise %d (%s) has non-positive sets", day, i, ex.Exercise)
			}
			if ex.RepsOrDuration == "" {
				add(IssueStructure, "%s exercise %d (%s) has empty repsOrDuration", day, i, ex.Exercise)
			}
		}
	}

	workoutDays := len(ws.WorkoutDays())

	if freq := profile.Preferences.WorkoutFrequency; freq > 0 && workoutDays != freq {
		add(IssueCoherence, "plan has %d workout days but the user prefers %d per week", workoutDays, freq)
	}

	if workoutDays > maxWorkoutDaysNonAdvanced && profile.FitnessLevel != models.LevelAdvanced {
		add(IssueSafety, "%d workout days per week is too many for a %s user", workoutDays, profile.FitnessLevel)
	}

	for _, issue := range v.contraindicatedExercises(ctx, ws, profile) {
		res.Issues = append(res.Issues, issue)
	}

	res.IsValid = len(res.Issues) == 0
	res.Summary = summarize(res.Issues)
	return res
}

func (v *Validator) contraindicatedExercises(ctx context.Context, ws models.WeeklySchedule, profile *models.UserProfile) []Issue {
	if v.rules == nil || len(profile.MedicalConditions) == 0 {
		return nil
	}
	rules, err := v.rules.ContraindicationsFor(ctx, profile.MedicalConditions)
	if err != nil {
		v.log.Warn("contraindication lookup failed during final validation", "error", err)
		return nil
	}

	var issues []Issue
	for _, day := range models.Weekdays {
		sess := ws[day].Session
		if sess == nil {
			continue
		}
		for _, ex := range sess.Exercises {
			if condition, _ := contraindicated(ex.Exercise, rules); condition != "" {
				issues = append(issues, Issue{
					Type:    IssueSafety,
					Message: fmt.Sprintf("%s on %s is contraindicated for %s", ex.Exercise, day, condition),
				})
			}
		}
	}
	return issues
}

func summarize(issues []Issue) string {
	if len(issues) == 0 {
		return "plan passed structural, coherence, and safety validation"
	}
	return fmt.Sprintf("%d validation issues found", len(issues))
}
