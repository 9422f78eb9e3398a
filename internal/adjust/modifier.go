package adjust

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/claude/liftwise/internal/feedback"
	"github.com/claude/liftwise/internal/models"
)

// Change records one applied mutation.
type Change struct {
	Ref         feedback.Ref `json:"ref"`
	Description string       `json:"description"`
}

// SkippedChange records an intent that was not applied, and why.
type SkippedChange struct {
	Ref         feedback.Ref `json:"ref"`
	Description string       `json:"description"`
	Reason      string       `json:"reason"`
}

// ApplyResult is the outcome of one Apply call. ModifiedPlan is a deep clone;
// the caller's plan is never touched.
type ApplyResult struct {
	ModifiedPlan *models.WorkoutPlan `json:"modifiedPlan"`
	Applied      []Change            `json:"appliedChanges"`
	Skipped      []SkippedChange     `json:"skippedChanges"`
}

// Modifier applies validated intents to a plan clone in fixed priority
// order, recording every outcome.
type Modifier struct {
	log          *slog.Logger
	alternatives map[string]string
}

// NewModifier creates a modifier with the built-in equipment alternatives.
func NewModifier(log *slog.Logger) *Modifier {
	return &Modifier{log: log, alternatives: DefaultAlternatives()}
}

// SetAlternatives replaces the equipment substitution table, typically with
// rows loaded from the database.
func (m *Modifier) SetAlternatives(alts map[string]string) {
	if len(alts) > 0 {
		m.alternatives = alts
	}
}

// Apply mutates a clone of the plan with every intent that passed the gates.
// Intents absent from the feasibility, safety, or coherence pass are skipped,
// never attempted. A panic inside one mutation is caught and recorded as a
// skipped change; the rest of the batch still runs. Nil gate results disable
// that gate (used by tests and trusted callers).
func (m *Modifier) Apply(plan *models.WorkoutPlan, in *feedback.Intents, feas *FeasibilityResult, safety *SafetyResult, coherence *CoherenceResult) *ApplyResult {
	out := plan.Clone()
	out.WeeklySchedule.Normalize()
	res := &ApplyResult{ModifiedPlan: out}

	for _, ref := range applyOrder(in) {
		desc := in.Describe(ref)

		if feas != nil && !feas.IsFeasible(ref) {
			res.Skipped = append(res.Skipped, SkippedChange{
				Ref: ref, Description: desc, Reason: skipReason("Infeasible", feas.Detail(ref)),
			})
			continue
		}
		if safety != nil && !safety.IsSafe(ref) {
			res.Skipped = append(res.Skipped, SkippedChange{
				Ref: ref, Description: desc, Reason: skipReason("Unsafe", safety.Detail(ref)),
			})
			continue
		}
		if coherence != nil && !coherence.IsCoherent(ref) {
			res.Skipped = append(res.Skipped, SkippedChange{
				Ref: ref, Description: desc, Reason: skipReason("Conflicts with goals", coherence.Detail(ref)),
			})
			continue
		}

		changes, err := m.applyRef(out, in, ref)
		if err != nil {
			m.log.Warn("adjustment not applied", "intent", desc, "error", err)
			res.Skipped = append(res.Skipped, SkippedChange{Ref: ref, Description: desc, Reason: err.Error()})
			continue
		}
		res.Applied = append(res.Applied, changes...)
	}

	return res
}

func skipReason(label, detail string) string {
	if detail == "" {
		return label
	}
	return label + ": " + detail
}

// applyOrder fixes the processing priority: pain concerns, safety-motivated
// substitutions, equipment limitations, remaining substitutions, volume,
// intensity, schedule, rest periods.
func applyOrder(in *feedback.Intents) []feedback.Ref {
	cat := feedback.Categorize(in)

	var order []feedback.Ref
	seen := make(map[feedback.Ref]bool)
	add := func(ref feedback.Ref) {
		if !seen[ref] {
			seen[ref] = true
			order = append(order, ref)
		}
	}

	for i := range in.PainConcerns {
		add(feedback.Ref{Kind: feedback.KindPain, Index: i})
	}
	for _, ref := range cat.ByType.Safety {
		if ref.Kind == feedback.KindSubstitution {
			add(ref)
		}
	}
	for i := range in.EquipmentLimitations {
		add(feedback.Ref{Kind: feedback.KindEquipment, Index: i})
	}
	for i := range in.Substitutions {
		add(feedback.Ref{Kind: feedback.KindSubstitution, Index: i})
	}
	for i := range in.VolumeAdjustments {
		add(feedback.Ref{Kind: feedback.KindVolume, Index: i})
	}
	for i := range in.IntensityAdjustments {
		add(feedback.Ref{Kind: feedback.KindIntensity, Index: i})
	}
	for i := range in.ScheduleChanges {
		add(feedback.Ref{Kind: feedback.KindSchedule, Index: i})
	}
	for i := range in.RestPeriodChanges {
		add(feedback.Ref{Kind: feedback.KindRestPeriod, Index: i})
	}
	return order
}

func (m *Modifier) applyRef(plan *models.WorkoutPlan, in *feedback.Intents, ref feedback.Ref) (changes []Change, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("Application error: %v", r)
		}
	}()

	switch ref.Kind {
	case feedback.KindPain:
		return m.handlePainConcern(plan, in.PainConcerns[ref.Index], ref)
	case feedback.KindEquipment:
		return m.handleEquipmentLimitation(plan, in.EquipmentLimitations[ref.Index], ref)
	case feedback.KindSubstitution:
		return m.substituteExercise(plan, in.Substitutions[ref.Index], ref)
	case feedback.KindVolume:
		return m.adjustVolume(plan, in.VolumeAdjustments[ref.Index], ref)
	case feedback.KindIntensity:
		return m.adjustIntensity(plan, in.IntensityAdjustments[ref.Index], ref)
	case feedback.KindSchedule:
		return m.modifySchedule(plan, in.ScheduleChanges[ref.Index], ref)
	case feedback.KindRestPeriod:
		return m.adjustRestPeriods(plan, in.RestPeriodChanges[ref.Index], ref)
	default:
		return nil, fmt.Errorf("unknown intent kind %q", ref.Kind)
	}
}

// substituteExercise renames the first matching exercise and records its
// provenance in the exercise notes.
func (m *Modifier) substituteExercise(plan *models.WorkoutPlan, s feedback.Substitution, ref feedback.Ref) ([]Change, error) {
	ws := plan.WeeklySchedule

	days := models.Weekdays
	if models.IsWeekday(s.Day) {
		days = []string{s.Day}
	}

	for _, day := range days {
		sess := ws[day].Session
		if sess == nil {
			continue
		}
		for i := range sess.Exercises {
			ex := &sess.Exercises[i]
			if !strings.EqualFold(ex.Exercise, s.From) {
				continue
			}
			note := fmt.Sprintf("Substituted from %s", ex.Exercise)
			if s.Reason != "" {
				note += fmt.Sprintf(" (%s)", s.Reason)
			}
			ex.Exercise = s.To
			appendExerciseNote(ex, note)
			return []Change{{
				Ref:         ref,
				Description: fmt.Sprintf("Replaced %q with %q on %s", s.From, s.To, day),
			}}, nil
		}
	}
	return nil, fmt.Errorf("exercise %q not found in the plan", s.From)
}

// adjustVolume changes sets or reps on the target exercise(s). Non-numeric
// reps values (AMRAP, timed holds) are left untouched.
func (m *Modifier) adjustVolume(plan *models.WorkoutPlan, v feedback.VolumeAdjustment, ref feedback.Ref) ([]Change, error) {
	targets, err := targetExercises(plan.WeeklySchedule, v.Exercise)
	if err != nil {
		return nil, err
	}

	delta := 1
	repsDelta := 2
	if v.Direction == "decrease" {
		delta, repsDelta = -1, -2
	}
	explicit, hasExplicit := parseIntValue(v.Value)

	adjusted := 0
	switch v.Parameter {
	case "sets":
		for _, ex := range targets {
			old := ex.Sets
			if hasExplicit {
				ex.Sets = clampMin(explicit, 1)
			} else {
				ex.Sets = clampMin(ex.Sets+delta, 1)
			}
			if ex.Sets != old {
				adjusted++
			}
		}
	case "reps":
		for _, ex := range targets {
			if out, changed := adjustRepsString(ex.RepsOrDuration, repsDelta); changed {
				ex.RepsOrDuration = out
				adjusted++
			}
		}
	default:
		return nil, fmt.Errorf("unknown volume parameter %q", v.Parameter)
	}

	desc := fmt.Sprintf("%s %s on %s", capitalize(v.Direction+"d"), v.Parameter, v.Exercise)
	if adjusted == 0 {
		desc += " (no numeric fields to adjust)"
	} else if len(targets) > 1 {
		desc += fmt.Sprintf(" (%d exercises)", adjusted)
	}
	return []Change{{Ref: ref, Description: desc}}, nil
}

// adjustIntensity is purely annotative: intensity (load, tempo, RPE) is not
// a typed field in the plan schema, so the guidance lands in notes.
func (m *Modifier) adjustIntensity(plan *models.WorkoutPlan, v feedback.IntensityAdjustment, ref feedback.Ref) ([]Change, error) {
	targets, err := targetExercises(plan.WeeklySchedule, v.Exercise)
	if err != nil {
		return nil, err
	}

	note := fmt.Sprintf("%s %s", capitalize(v.Direction), v.Parameter)
	if v.Value != "" {
		note += " to " + v.Value
	}
	if v.Reason != "" {
		note += fmt.Sprintf(" (%s)", v.Reason)
	}
	for _, ex := range targets {
		appendExerciseNote(ex, note)
	}

	return []Change{{
		Ref:         ref,
		Description: fmt.Sprintf("Annotated %s %s on %s", v.Parameter, v.Direction, v.Exercise),
	}}, nil
}

// modifySchedule moves or merges workout days. Split and add/remove day are
// not yet supported and report as such.
func (m *Modifier) modifySchedule(plan *models.WorkoutPlan, c feedback.ScheduleChange, ref feedback.Ref) ([]Change, error) {
	ws := plan.WeeklySchedule

	switch c.Type {
	case feedback.ScheduleMove:
		if !models.IsWeekday(c.From) || !models.IsWeekday(c.To) {
			return nil, fmt.Errorf("unknown day in move %q -> %q", c.From, c.To)
		}
		sess := ws[c.From].Session
		if sess == nil {
			return nil, fmt.Errorf("no session on %s to move", c.From)
		}
		if !ws[c.To].Rest() {
			return nil, fmt.Errorf("cannot move onto %s: it already has a session", c.To)
		}
		ws[c.To] = models.WorkoutDay(sess)
		ws[c.From] = models.RestDay
		return []Change{{
			Ref:         ref,
			Description: fmt.Sprintf("Moved %q from %s to %s", sess.SessionName, c.From, c.To),
		}}, nil

	case feedback.ScheduleCombine:
		if !models.IsWeekday(c.From) || !models.IsWeekday(c.To) {
			return nil, fmt.Errorf("unknown day in combine %q & %q", c.From, c.To)
		}
		first, second := ws[c.From].Session, ws[c.To].Session
		if first == nil || second == nil {
			return nil, fmt.Errorf("combine requires two workout days, got %s and %s", c.From, c.To)
		}
		combined := &models.Session{
			SessionName: fmt.Sprintf("Combined: %s & %s", first.SessionName, second.SessionName),
			Exercises:   append(append([]models.Exercise{}, first.Exercises...), second.Exercises...),
			Notes:       append(append([]string{}, first.Notes...), second.Notes...),
		}
		ws[c.From] = models.WorkoutDay(combined)
		ws[c.To] = models.RestDay
		return []Change{{
			Ref:         ref,
			Description: fmt.Sprintf("Combined %s and %s onto %s", c.From, c.To, c.From),
		}}, nil

	case feedback.ScheduleSplit, feedback.ScheduleAddDay, feedback.ScheduleRemoveDay:
		return nil, fmt.Errorf("schedule change %q is not yet supported", c.Type)

	default:
		return nil, fmt.Errorf("unknown schedule change type %q", c.Type)
	}
}

// adjustRestPeriods rewrites per-exercise rest fields (between_sets) or
// converts days to/from Rest (between_workouts).
func (m *Modifier) adjustRestPeriods(plan *models.WorkoutPlan, c feedback.RestPeriodChange, ref feedback.Ref) ([]Change, error) {
	switch c.Scope {
	case feedback.RestBetweenSets:
		return m.adjustRestBetweenSets(plan, c, ref)
	case feedback.RestBetweenWorkouts:
		return m.adjustRestBetweenWorkouts(plan, c, ref)
	default:
		return nil, fmt.Errorf("unknown rest period scope %q", c.Scope)
	}
}

func (m *Modifier) adjustRestBetweenSets(plan *models.WorkoutPlan, c feedback.RestPeriodChange, ref feedback.Ref) ([]Change, error) {
	ws := plan.WeeklySchedule
	delta := 30
	if c.Direction == "decrease" {
		delta = -30
	}
	explicit, hasExplicit := parseRestSeconds(c.Value)

	adjusted := 0
	for _, day := range models.Weekdays {
		sess := ws[day].Session
		if sess == nil {
			continue
		}
		for i := range sess.Exercises {
			ex := &sess.Exercises[i]
			cur, ok := parseRestSeconds(ex.Rest)
			if !ok {
				continue
			}
			if hasExplicit {
				ex.Rest = formatRest(clampMin(explicit, minRestSeconds))
			} else {
				ex.Rest = formatRest(clampMin(cur+delta, minRestSeconds))
			}
			adjusted++
		}
	}

	if adjusted == 0 {
		// No exercise carries a parsed rest field; leave guidance at the
		// session level instead.
		note := fmt.Sprintf("Rest between sets: %s", c.Direction)
		if c.Value != "" {
			note += " to " + c.Value
		}
		for _, day := range ws.WorkoutDays() {
			sess := ws[day].Session
			sess.Notes = append(sess.Notes, note)
		}
		return []Change{{Ref: ref, Description: "Added rest guidance note to each session"}}, nil
	}

	return []Change{{
		Ref:         ref,
		Description: fmt.Sprintf("%s rest between sets on %d exercises", capitalize(c.Direction+"d"), adjusted),
	}}, nil
}

func (m *Modifier) adjustRestBetweenWorkouts(plan *models.WorkoutPlan, c feedback.RestPeriodChange, ref feedback.Ref) ([]Change, error) {
	ws := plan.WeeklySchedule

	switch c.Direction {
	case "increase":
		workoutDays := ws.WorkoutDays()
		if len(workoutDays) <= 1 {
			return nil, fmt.Errorf("cannot increase rest days: only one workout day left")
		}
		last := workoutDays[len(workoutDays)-1]
		if plan.ArchivedSessions == nil {
			plan.ArchivedSessions = make(map[string]*models.Session)
		}
		plan.ArchivedSessions[last] = ws[last].Session
		ws[last] = models.RestDay
		return []Change{{
			Ref:         ref,
			Description: fmt.Sprintf("Converted %s to a rest day (session archived)", last),
		}}, nil

	case "decrease":
		restDays := ws.RestDays()
		if len(restDays) == 0 {
			return nil, fmt.Errorf("Cannot decrease rest days: every day already has a workout")
		}

		// Prefer restoring a previously archived session over inventing one.
		for _, day := range restDays {
			if sess, ok := plan.ArchivedSessions[day]; ok {
				ws[day] = models.WorkoutDay(sess)
				delete(plan.ArchivedSessions, day)
				return []Change{{
					Ref:         ref,
					Description: fmt.Sprintf("Restored archived session %q on %s", sess.SessionName, day),
				}}, nil
			}
		}

		day := restDays[0]
		ws[day] = models.WorkoutDay(&models.Session{
			SessionName: "Additional Training Day",
			Exercises: []models.Exercise{
				{Exercise: "Full-Body Circuit", Sets: 3, RepsOrDuration: "10-12", Rest: "60 seconds"},
			},
		})
		return []Change{{
			Ref:         ref,
			Description: fmt.Sprintf("Added a training day on %s", day),
		}}, nil

	default:
		return nil, fmt.Errorf("unknown rest period direction %q", c.Direction)
	}
}

// handlePainConcern annotates a named exercise. A general concern (or one
// naming an exercise absent from the plan) never guesses which exercise is
// the culprit: it is acknowledged without mutation.
func (m *Modifier) handlePainConcern(plan *models.WorkoutPlan, p feedback.PainConcern, ref feedback.Ref) ([]Change, error) {
	general := p.Exercise == "" || strings.EqualFold(p.Exercise, "general")

	var refs []models.ExerciseRef
	if !general {
		refs = plan.WeeklySchedule.FindExercise(p.Exercise)
	}
	if len(refs) == 0 {
		return []Change{{
			Ref:         ref,
			Description: fmt.Sprintf("Acknowledged %s pain; no exercise-specific notes added", p.Area),
		}}, nil
	}

	note := fmt.Sprintf("Caution: reported %s pain during this exercise; reduce load or range if it recurs", p.Area)
	for _, loc := range refs {
		sess := plan.WeeklySchedule[loc.Day].Session
		appendExerciseNote(&sess.Exercises[loc.Index], note)
	}
	return []Change{{
		Ref:         ref,
		Description: fmt.Sprintf("Added caution notes for %s pain on %q", p.Area, p.Exercise),
	}}, nil
}

// handleEquipmentLimitation substitutes or annotates every exercise using
// the unavailable equipment. Exercises with no known alternative are kept
// and flagged rather than removed: the plan must stay runnable.
func (m *Modifier) handleEquipmentLimitation(plan *models.WorkoutPlan, e feedback.EquipmentLimitation, ref feedback.Ref) ([]Change, error) {
	ws := plan.WeeklySchedule
	substituted, flagged := 0, 0

	for _, day := range models.Weekdays {
		sess := ws[day].Session
		if sess == nil {
			continue
		}
		for i := range sess.Exercises {
			ex := &sess.Exercises[i]
			if !containsFold(ex.Exercise, e.Equipment) {
				continue
			}

			if e.Alternative != "" {
				old := ex.Exercise
				ex.Exercise = e.Alternative
				appendExerciseNote(ex, fmt.Sprintf("Substituted from %s (no %s available)", old, e.Equipment))
				substituted++
				continue
			}

			if alt, ok := m.alternatives[strings.ToLower(e.Equipment)]; ok {
				if newName, swapped := substituteEquipment(ex.Exercise, e.Equipment, alt); swapped {
					old := ex.Exercise
					ex.Exercise = newName
					appendExerciseNote(ex, fmt.Sprintf("Substituted from %s (no %s available)", old, e.Equipment))
					substituted++
					continue
				}
			}

			appendExerciseNote(ex, fmt.Sprintf("Warning: requires %s, which is unavailable", e.Equipment))
			flagged++
		}
	}

	if substituted == 0 && flagged == 0 {
		return nil, fmt.Errorf("no exercise in the plan uses %s", e.Equipment)
	}

	desc := fmt.Sprintf("Handled %s limitation: %d substituted", e.Equipment, substituted)
	if flagged > 0 {
		desc += fmt.Sprintf(", %d flagged without a substitute", flagged)
	}
	return []Change{{Ref: ref, Description: desc}}, nil
}

// targetExercises resolves "all" or a named exercise into mutable pointers.
func targetExercises(ws models.WeeklySchedule, name string) ([]*models.Exercise, error) {
	var targets []*models.Exercise
	all := strings.EqualFold(name, "all")
	for _, day := range models.Weekdays {
		sess := ws[day].Session
		if sess == nil {
			continue
		}
		for i := range sess.Exercises {
			if all || strings.EqualFold(sess.Exercises[i].Exercise, name) {
				targets = append(targets, &sess.Exercises[i])
			}
		}
	}
	if len(targets) == 0 {
		return nil, fmt.Errorf("exercise %q not found in the plan", name)
	}
	return targets, nil
}

func appendExerciseNote(ex *models.Exercise, note string) {
	if ex.Notes == "" {
		ex.Notes = note
		return
	}
	ex.Notes += "; " + note
}

func parseIntValue(s string) (int, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, false
	}
	n := 0
	for _, r := range s {
		if r < '0' || r > '9' {
			return 0, false
		}
		n = n*10 + int(r-'0')
	}
	return n, true
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
