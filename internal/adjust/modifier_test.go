package adjust

import (
	"context"
	"strings"
	"testing"

	"github.com/claude/liftwise/internal/feedback"
	"github.com/claude/liftwise/internal/models"
)

// TestApplySubstitution checks the happy path: the exercise is renamed in
// place, provenance lands in its notes, and the input plan is untouched.
func TestApplySubstitution(t *testing.T) {
	m := NewModifier(testLogger())
	plan := samplePlan()
	in := &feedback.Intents{
		Substitutions: []feedback.Substitution{{From: "Squats", To: "Lunges", Reason: "knee discomfort"}},
	}

	res := m.Apply(plan, in, nil, nil, nil)

	if got := len(res.Applied); got != 1 {
		t.Fatalf("len(Applied) = %d, want 1", got)
	}
	if got := len(res.Skipped); got != 0 {
		t.Fatalf("len(Skipped) = %d, want 0", got)
	}

	ex := res.ModifiedPlan.WeeklySchedule["Wednesday"].Session.Exercises[0]
	if ex.Exercise != "Lunges" {
		t.Errorf("exercise = %q, want Lunges", ex.Exercise)
	}
	if !strings.Contains(ex.Notes, "Substituted from Squats") {
		t.Errorf("Notes = %q, want provenance note", ex.Notes)
	}
	if !strings.Contains(ex.Notes, "knee discomfort") {
		t.Errorf("Notes = %q, want the substitution reason", ex.Notes)
	}

	if got := plan.WeeklySchedule["Wednesday"].Session.Exercises[0].Exercise; got != "Squats" {
		t.Errorf("input plan mutated: exercise = %q, want Squats", got)
	}
}

// TestApplyAbsentSubstitution checks that a substitution whose source is not
// in the plan is skipped with a reason and changes nothing.
func TestApplyAbsentSubstitution(t *testing.T) {
	m := NewModifier(testLogger())
	in := &feedback.Intents{
		Substitutions: []feedback.Substitution{{From: "Deadlifts", To: "Hip Thrusts"}},
	}

	res := m.Apply(samplePlan(), in, nil, nil, nil)

	if got := len(res.Applied); got != 0 {
		t.Fatalf("len(Applied) = %d, want 0", got)
	}
	if got := len(res.Skipped); got != 1 {
		t.Fatalf("len(Skipped) = %d, want 1", got)
	}
	if !strings.Contains(res.Skipped[0].Reason, "not found") {
		t.Errorf("Reason = %q, want a not-found reason", res.Skipped[0].Reason)
	}
}

// TestApplyGates checks that intents missing from the feasibility or safety
// pass are skipped before any mutation is attempted.
func TestApplyGates(t *testing.T) {
	m := NewModifier(testLogger())
	ref := feedback.Ref{Kind: feedback.KindSubstitution, Index: 0}
	in := &feedback.Intents{
		Substitutions: []feedback.Substitution{{From: "Squats", To: "Lunges"}},
	}

	feas := &FeasibilityResult{Infeasible: []Assessment{{Ref: ref, Detail: "exercise gone"}}}
	res := m.Apply(samplePlan(), in, feas, nil, nil)
	if got := len(res.Skipped); got != 1 {
		t.Fatalf("len(Skipped) = %d, want 1", got)
	}
	if want := "Infeasible: exercise gone"; res.Skipped[0].Reason != want {
		t.Errorf("Reason = %q, want %q", res.Skipped[0].Reason, want)
	}

	safety := &SafetyResult{Unsafe: []Assessment{{Ref: ref, Detail: "contraindicated"}}}
	feas = &FeasibilityResult{Feasible: []Assessment{{Ref: ref}}}
	res = m.Apply(samplePlan(), in, feas, safety, nil)
	if got := len(res.Skipped); got != 1 {
		t.Fatalf("len(Skipped) = %d, want 1", got)
	}
	if want := "Unsafe: contraindicated"; res.Skipped[0].Reason != want {
		t.Errorf("Reason = %q, want %q", res.Skipped[0].Reason, want)
	}
	if got := res.ModifiedPlan.WeeklySchedule["Wednesday"].Session.Exercises[0].Exercise; got != "Squats" {
		t.Errorf("gated intent mutated the plan: exercise = %q", got)
	}

	coherence := &CoherenceResult{Incoherent: []Assessment{{Ref: ref, Detail: "isolation swap"}}}
	res = m.Apply(samplePlan(), in, feas, nil, coherence)
	if got := len(res.Skipped); got != 1 {
		t.Fatalf("len(Skipped) = %d, want 1", got)
	}
	if want := "Conflicts with goals: isolation swap"; res.Skipped[0].Reason != want {
		t.Errorf("Reason = %q, want %q", res.Skipped[0].Reason, want)
	}
}

// TestApplyVolume checks sets arithmetic with the floor of one set, and
// reps-range shifting.
func TestApplyVolume(t *testing.T) {
	m := NewModifier(testLogger())

	plan := samplePlan()
	plan.WeeklySchedule["Wednesday"].Session.Exercises[0].Sets = 1
	in := &feedback.Intents{
		VolumeAdjustments: []feedback.VolumeAdjustment{
			{Exercise: "Squats", Parameter: "sets", Direction: "decrease"},
		},
	}
	res := m.Apply(plan, in, nil, nil, nil)
	if got := res.ModifiedPlan.WeeklySchedule["Wednesday"].Session.Exercises[0].Sets; got != 1 {
		t.Errorf("sets after decrease from 1 = %d, want 1 (floor)", got)
	}

	in = &feedback.Intents{
		VolumeAdjustments: []feedback.VolumeAdjustment{
			{Exercise: "Bench Press", Parameter: "reps", Direction: "increase"},
		},
	}
	res = m.Apply(samplePlan(), in, nil, nil, nil)
	if got := res.ModifiedPlan.WeeklySchedule["Monday"].Session.Exercises[0].RepsOrDuration; got != "8-10" {
		t.Errorf("reps after increase = %q, want 8-10", got)
	}
}

// TestApplyVolumeAll checks that "all" targets every exercise and leaves
// non-numeric reps values alone.
func TestApplyVolumeAll(t *testing.T) {
	m := NewModifier(testLogger())
	in := &feedback.Intents{
		VolumeAdjustments: []feedback.VolumeAdjustment{
			{Exercise: "all", Parameter: "sets", Direction: "increase"},
		},
	}
	res := m.Apply(samplePlan(), in, nil, nil, nil)

	ws := res.ModifiedPlan.WeeklySchedule
	if got := ws["Monday"].Session.Exercises[0].Sets; got != 4 {
		t.Errorf("Bench Press sets = %d, want 4", got)
	}
	if got := ws["Wednesday"].Session.Exercises[0].Sets; got != 5 {
		t.Errorf("Squats sets = %d, want 5", got)
	}
	if got := ws["Wednesday"].Session.Exercises[1].RepsOrDuration; got != "30 second hold" {
		t.Errorf("Plank reps = %q, want unchanged hold", got)
	}
}

// TestApplyRestBetweenSets checks the 30-second step and the 15-second floor.
func TestApplyRestBetweenSets(t *testing.T) {
	m := NewModifier(testLogger())
	plan := samplePlan()
	plan.WeeklySchedule["Monday"].Session.Exercises[1].Rest = "30 seconds"

	in := &feedback.Intents{
		RestPeriodChanges: []feedback.RestPeriodChange{
			{Scope: feedback.RestBetweenSets, Direction: "decrease"},
		},
	}
	res := m.Apply(plan, in, nil, nil, nil)

	ws := res.ModifiedPlan.WeeklySchedule
	if got := ws["Monday"].Session.Exercises[0].Rest; got != "60 seconds" {
		t.Errorf("rest = %q, want 60 seconds", got)
	}
	if got := ws["Monday"].Session.Exercises[1].Rest; got != "15 seconds" {
		t.Errorf("rest = %q, want the 15 second floor", got)
	}
}

// TestApplyScheduleMove checks a move onto a rest day and that a move onto
// an occupied day never mutates the plan.
func TestApplyScheduleMove(t *testing.T) {
	m := NewModifier(testLogger())

	in := &feedback.Intents{
		ScheduleChanges: []feedback.ScheduleChange{
			{Type: feedback.ScheduleMove, From: "Monday", To: "Tuesday"},
		},
	}
	res := m.Apply(samplePlan(), in, nil, nil, nil)
	ws := res.ModifiedPlan.WeeklySchedule
	if !ws["Monday"].Rest() {
		t.Error("Monday still has a session after the move")
	}
	if ws["Tuesday"].Rest() || ws["Tuesday"].Session.SessionName != "Upper Body A" {
		t.Errorf("Tuesday = %+v, want the moved Upper Body A session", ws["Tuesday"])
	}

	in = &feedback.Intents{
		ScheduleChanges: []feedback.ScheduleChange{
			{Type: feedback.ScheduleMove, From: "Monday", To: "Wednesday"},
		},
	}
	res = m.Apply(samplePlan(), in, nil, nil, nil)
	if got := len(res.Skipped); got != 1 {
		t.Fatalf("len(Skipped) = %d, want 1", got)
	}
	ws = res.ModifiedPlan.WeeklySchedule
	if ws["Monday"].Rest() || ws["Wednesday"].Session.SessionName != "Lower Body A" {
		t.Error("failed move mutated the plan")
	}
}

// TestApplyScheduleCombine checks that two days merge onto the first and the
// second becomes Rest.
func TestApplyScheduleCombine(t *testing.T) {
	m := NewModifier(testLogger())
	in := &feedback.Intents{
		ScheduleChanges: []feedback.ScheduleChange{
			{Type: feedback.ScheduleCombine, From: "Monday", To: "Wednesday"},
		},
	}
	res := m.Apply(samplePlan(), in, nil, nil, nil)

	ws := res.ModifiedPlan.WeeklySchedule
	if !ws["Wednesday"].Rest() {
		t.Error("Wednesday still has a session after the combine")
	}
	combined := ws["Monday"].Session
	if combined == nil {
		t.Fatal("Monday lost its session")
	}
	if got := len(combined.Exercises); got != 4 {
		t.Errorf("combined exercises = %d, want 4", got)
	}
	if !strings.Contains(combined.SessionName, "Upper Body A") || !strings.Contains(combined.SessionName, "Lower Body A") {
		t.Errorf("SessionName = %q, want both source names", combined.SessionName)
	}
}

// TestApplyScheduleSplitUnsupported checks that a split request is reported
// rather than silently dropped.
func TestApplyScheduleSplitUnsupported(t *testing.T) {
	m := NewModifier(testLogger())
	in := &feedback.Intents{
		ScheduleChanges: []feedback.ScheduleChange{
			{Type: feedback.ScheduleSplit, From: "Monday"},
		},
	}
	res := m.Apply(samplePlan(), in, nil, nil, nil)
	if got := len(res.Skipped); got != 1 {
		t.Fatalf("len(Skipped) = %d, want 1", got)
	}
	if !strings.Contains(res.Skipped[0].Reason, "not yet supported") {
		t.Errorf("Reason = %q, want not-yet-supported", res.Skipped[0].Reason)
	}
}

// TestApplyRestBetweenWorkouts checks the archive/restore cycle: increasing
// rest days archives the last workout day and decreasing restores it.
func TestApplyRestBetweenWorkouts(t *testing.T) {
	m := NewModifier(testLogger())

	in := &feedback.Intents{
		RestPeriodChanges: []feedback.RestPeriodChange{
			{Scope: feedback.RestBetweenWorkouts, Direction: "increase"},
		},
	}
	res := m.Apply(samplePlan(), in, nil, nil, nil)
	plan := res.ModifiedPlan
	if !plan.WeeklySchedule["Wednesday"].Rest() {
		t.Fatal("last workout day was not converted to rest")
	}
	if plan.ArchivedSessions["Wednesday"] == nil {
		t.Fatal("archived session missing")
	}

	in = &feedback.Intents{
		RestPeriodChanges: []feedback.RestPeriodChange{
			{Scope: feedback.RestBetweenWorkouts, Direction: "decrease"},
		},
	}
	res = m.Apply(plan, in, nil, nil, nil)
	restored := res.ModifiedPlan.WeeklySchedule["Wednesday"].Session
	if restored == nil || restored.SessionName != "Lower Body A" {
		t.Fatalf("Wednesday = %+v, want the restored Lower Body A session", restored)
	}
	if len(res.ModifiedPlan.ArchivedSessions) != 0 {
		t.Error("archive not cleared after restore")
	}
}

// TestApplyDecreaseRestDaysFull checks the refusal when every day already
// holds a workout.
func TestApplyDecreaseRestDaysFull(t *testing.T) {
	m := NewModifier(testLogger())
	plan := samplePlan()
	for _, day := range models.Weekdays {
		if plan.WeeklySchedule[day].Rest() {
			plan.WeeklySchedule[day] = models.WorkoutDay(&models.Session{
				SessionName: "Filler",
				Exercises:   []models.Exercise{{Exercise: "Walking", Sets: 1, RepsOrDuration: "30 minutes"}},
			})
		}
	}

	in := &feedback.Intents{
		RestPeriodChanges: []feedback.RestPeriodChange{
			{Scope: feedback.RestBetweenWorkouts, Direction: "decrease"},
		},
	}
	res := m.Apply(plan, in, nil, nil, nil)
	if got := len(res.Skipped); got != 1 {
		t.Fatalf("len(Skipped) = %d, want 1", got)
	}
	if !strings.Contains(res.Skipped[0].Reason, "Cannot decrease rest days") {
		t.Errorf("Reason = %q, want a cannot-decrease reason", res.Skipped[0].Reason)
	}
}

// TestApplyRefRecoversPanic checks that a panic inside a mutation routine is
// converted into an error with an application-error reason instead of
// crashing the batch.
func TestApplyRefRecoversPanic(t *testing.T) {
	m := NewModifier(testLogger())
	plan := samplePlan()

	_, err := m.applyRef(plan, &feedback.Intents{}, feedback.Ref{Kind: feedback.KindPain, Index: 3})
	if err == nil {
		t.Fatal("expected an error from the recovered panic")
	}
	if !strings.HasPrefix(err.Error(), "Application error:") {
		t.Errorf("err = %q, want an Application error prefix", err)
	}
}

// TestApplyPainConcern checks that a named exercise gets a caution note and
// a general concern is acknowledged without touching the plan.
func TestApplyPainConcern(t *testing.T) {
	m := NewModifier(testLogger())

	in := &feedback.Intents{
		PainConcerns: []feedback.PainConcern{{Area: "knee", Exercise: "Squats"}},
	}
	res := m.Apply(samplePlan(), in, nil, nil, nil)
	ex := res.ModifiedPlan.WeeklySchedule["Wednesday"].Session.Exercises[0]
	if !strings.Contains(ex.Notes, "knee pain") {
		t.Errorf("Notes = %q, want a knee pain caution", ex.Notes)
	}

	original := samplePlan()
	in = &feedback.Intents{
		PainConcerns: []feedback.PainConcern{{Area: "lower back", Exercise: "general"}},
	}
	res = m.Apply(original, in, nil, nil, nil)
	if got := len(res.Applied); got != 1 {
		t.Fatalf("len(Applied) = %d, want 1", got)
	}
	if !strings.Contains(res.Applied[0].Description, "Acknowledged") {
		t.Errorf("Description = %q, want an acknowledgement", res.Applied[0].Description)
	}
	for _, day := range models.Weekdays {
		sess := res.ModifiedPlan.WeeklySchedule[day].Session
		if sess == nil {
			continue
		}
		for _, ex := range sess.Exercises {
			if ex.Notes != "" {
				t.Errorf("general pain concern added a note to %s: %q", ex.Exercise, ex.Notes)
			}
		}
	}
}

// TestApplyEquipmentLimitation checks name substitution from the alternatives
// table and the warning fallback when no substitute exists.
func TestApplyEquipmentLimitation(t *testing.T) {
	m := NewModifier(testLogger())

	in := &feedback.Intents{
		EquipmentLimitations: []feedback.EquipmentLimitation{{Equipment: "barbell"}},
	}
	res := m.Apply(samplePlan(), in, nil, nil, nil)
	ex := res.ModifiedPlan.WeeklySchedule["Monday"].Session.Exercises[1]
	if ex.Exercise != "Dumbbell Row" {
		t.Errorf("exercise = %q, want Dumbbell Row", ex.Exercise)
	}
	if !strings.Contains(ex.Notes, "Substituted from Barbell Row") {
		t.Errorf("Notes = %q, want provenance note", ex.Notes)
	}

	in = &feedback.Intents{
		EquipmentLimitations: []feedback.EquipmentLimitation{{Equipment: "plank"}},
	}
	m.SetAlternatives(map[string]string{"nothing": "nothing"})
	res = m.Apply(samplePlan(), in, nil, nil, nil)
	ex = res.ModifiedPlan.WeeklySchedule["Wednesday"].Session.Exercises[1]
	if !strings.Contains(ex.Notes, "Warning: requires plank") {
		t.Errorf("Notes = %q, want an unavailability warning", ex.Notes)
	}
}

// TestApplyExplicitAlternative checks that an intent-supplied alternative
// wins over the built-in table.
func TestApplyExplicitAlternative(t *testing.T) {
	m := NewModifier(testLogger())
	in := &feedback.Intents{
		EquipmentLimitations: []feedback.EquipmentLimitation{
			{Equipment: "barbell", Alternative: "Seated Cable Row"},
		},
	}
	res := m.Apply(samplePlan(), in, nil, nil, nil)
	if got := res.ModifiedPlan.WeeklySchedule["Monday"].Session.Exercises[1].Exercise; got != "Seated Cable Row" {
		t.Errorf("exercise = %q, want Seated Cable Row", got)
	}
}

// TestApplySevenDayInvariant checks that a mixed batch leaves exactly seven
// named days in the schedule.
func TestApplySevenDayInvariant(t *testing.T) {
	m := NewModifier(testLogger())
	in := &feedback.Intents{
		Substitutions:     []feedback.Substitution{{From: "Squats", To: "Lunges"}},
		ScheduleChanges:   []feedback.ScheduleChange{{Type: feedback.ScheduleMove, From: "Monday", To: "Friday"}},
		RestPeriodChanges: []feedback.RestPeriodChange{{Scope: feedback.RestBetweenWorkouts, Direction: "increase"}},
	}
	res := m.Apply(samplePlan(), in, nil, nil, nil)

	ws := res.ModifiedPlan.WeeklySchedule
	if got := len(ws); got != 7 {
		t.Fatalf("len(schedule) = %d, want 7", got)
	}
	for _, day := range models.Weekdays {
		if _, ok := ws[day]; !ok {
			t.Errorf("schedule is missing %s", day)
		}
	}
}

// TestApplyOrder checks that pain concerns are processed before everything
// else in the batch.
func TestApplyOrder(t *testing.T) {
	m := NewModifier(testLogger())
	in := &feedback.Intents{
		VolumeAdjustments: []feedback.VolumeAdjustment{
			{Exercise: "Squats", Parameter: "sets", Direction: "decrease"},
		},
		PainConcerns: []feedback.PainConcern{{Area: "knee", Exercise: "Squats"}},
	}
	res := m.Apply(samplePlan(), in, nil, nil, nil)

	if got := len(res.Applied); got != 2 {
		t.Fatalf("len(Applied) = %d, want 2", got)
	}
	if res.Applied[0].Ref.Kind != feedback.KindPain {
		t.Errorf("first applied kind = %q, want %q", res.Applied[0].Ref.Kind, feedback.KindPain)
	}
}

// TestApplyWithValidatorGates runs the full gate pipeline over a mixed batch
// and checks the partition into applied and skipped.
func TestApplyWithValidatorGates(t *testing.T) {
	v := NewValidator(nil, testLogger())
	m := NewModifier(testLogger())
	plan := samplePlan()
	profile := sampleProfile()
	in := &feedback.Intents{
		Substitutions: []feedback.Substitution{
			{From: "Squats", To: "Lunges"},
			{From: "Deadlifts", To: "Hip Thrusts"},
		},
	}

	feas := v.AnalyzeFeasibility(plan, in, profile)
	safety := v.CheckSafety(context.Background(), in, profile)
	res := m.Apply(plan, in, feas, safety, nil)

	if got := len(res.Applied); got != 1 {
		t.Fatalf("len(Applied) = %d, want 1", got)
	}
	if got := len(res.Skipped); got != 1 {
		t.Fatalf("len(Skipped) = %d, want 1", got)
	}
	if !strings.Contains(res.Skipped[0].Reason, "Infeasible") {
		t.Errorf("Reason = %q, want an infeasibility reason", res.Skipped[0].Reason)
	}
}
