package agent

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"

	"github.com/claude/liftwise/internal/ai"
	"github.com/claude/liftwise/internal/models"
)

const researchSystem = `You are an exercise science researcher. Given a user's
training profile, summarize in a short paragraph the programming principles
that best fit them: split style, weekly frequency, rep ranges, and movements
to emphasize or avoid. Plain text only.`

const generateSystem = `You are a personal trainer. Produce a one-week workout
plan as a JSON object with exactly these keys:
  "planName": string
  "weeklySchedule": object with the keys "Monday" through "Sunday". Each value
  is either the string "Rest" or an object:
    {"sessionName": string,
     "exercises": [{"exercise": string, "sets": int,
                    "repsOrDuration": string, "rest": string}]}
Every workout day needs at least one exercise with sets >= 1. Respond with the
JSON object only.`

// Completer is the completion surface the generator needs.
type Completer interface {
	Complete(ctx context.Context, system, user string, opts ai.Options) (string, error)
}

// Generator produces a fresh weekly plan for a profile: a research pass for
// programming guidance, a generation pass for the schedule itself, and a
// deterministic template when the model is unavailable or returns junk.
type Generator struct {
	completer Completer
	log       *slog.Logger
}

// NewGenerator creates a plan generator. completer may be nil, in which case
// every plan comes from the built-in templates.
func NewGenerator(completer Completer, log *slog.Logger) *Generator {
	return &Generator{completer: completer, log: log}
}

// GeneratePlan always returns a usable plan. Model failures degrade to the
// template path rather than surfacing as errors.
func (g *Generator) GeneratePlan(ctx context.Context, profile *models.UserProfile) *models.WorkoutPlan {
	if g.completer == nil {
		return g.templatePlan(profile)
	}

	guidance, err := g.completer.Complete(ctx, researchSystem, profileSummary(profile), ai.Options{Temperature: 0.4})
	if err != nil {
		g.log.Warn("research pass failed", "error", err)
		guidance = ""
	}

	user := profileSummary(profile)
	if guidance != "" {
		user += "\n\nProgramming guidance:\n" + guidance
	}
	raw, err := g.completer.Complete(ctx, generateSystem, user, ai.Options{Temperature: 0.3, JSONMode: true})
	if err != nil {
		g.log.Warn("generation pass failed, using template plan", "error", err)
		return g.templatePlan(profile)
	}

	plan, err := decodePlan(raw)
	if err != nil {
		g.log.Warn("generated plan rejected, using template plan", "error", err)
		return g.templatePlan(profile)
	}
	return plan
}

func profileSummary(p *models.UserProfile) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Fitness level: %s\n", p.FitnessLevel)
	fmt.Fprintf(&b, "Goals: %s\n", strings.Join(p.Goals, ", "))
	fmt.Fprintf(&b, "Preferred workouts per week: %d\n", p.Preferences.WorkoutFrequency)
	if len(p.MedicalConditions) > 0 {
		fmt.Fprintf(&b, "Medical conditions: %s\n", strings.Join(p.MedicalConditions, ", "))
	}
	return b.String()
}

// decodePlan parses and structurally checks a model-produced plan.
func decodePlan(raw string) (*models.WorkoutPlan, error) {
	raw = extractJSONObject(raw)
	if raw == "" {
		return nil, fmt.Errorf("no JSON object in response")
	}

	var parsed struct {
		PlanName       string                `json:"planName"`
		WeeklySchedule models.WeeklySchedule `json:"weeklySchedule"`
	}
	if err := json.Unmarshal([]byte(raw), &parsed); err != nil {
		return nil, fmt.Errorf("decoding plan: %w", err)
	}
	if parsed.WeeklySchedule == nil {
		return nil, fmt.Errorf("plan has no weekly schedule")
	}
	for day := range parsed.WeeklySchedule {
		if !models.IsWeekday(day) {
			return nil, fmt.Errorf("unknown day %q in schedule", day)
		}
	}
	parsed.WeeklySchedule.Normalize()

	workouts := 0
	for _, day := range models.Weekdays {
		sess := parsed.WeeklySchedule[day].Session
		if sess == nil {
			continue
		}
		workouts++
		if len(sess.Exercises) == 0 {
			return nil, fmt.Errorf("%s session has no exercises", day)
		}
		for _, ex := range sess.Exercises {
			if ex.Exercise == "" || ex.Sets < 1 || ex.RepsOrDuration == "" {
				return nil, fmt.Errorf("%s session has an incomplete exercise", day)
			}
		}
	}
	if workouts == 0 {
		return nil, fmt.Errorf("plan has no workout days")
	}

	name := parsed.PlanName
	if name == "" {
		name = "Weekly Training Plan"
	}
	return &models.WorkoutPlan{
		PlanID:         uuid.New(),
		PlanName:       name,
		WeeklySchedule: parsed.WeeklySchedule,
	}, nil
}

func extractJSONObject(content string) string {
	start := strings.Index(content, "{")
	end := strings.LastIndex(content, "}")
	if start < 0 || end <= start {
		return ""
	}
	return content[start : end+1]
}

// Days used for each weekly frequency, spread for recovery.
var frequencyDays = map[int][]string{
	1: {"Monday"},
	2: {"Monday", "Thursday"},
	3: {"Monday", "Wednesday", "Friday"},
	4: {"Monday", "Tuesday", "Thursday", "Friday"},
	5: {"Monday", "Tuesday", "Wednesday", "Thursday", "Friday"},
	6: {"Monday", "Tuesday", "Wednesday", "Thursday", "Friday", "Saturday"},
}

// templatePlan builds a deterministic plan from the profile alone.
func (g *Generator) templatePlan(profile *models.UserProfile) *models.WorkoutPlan {
	freq := profile.Preferences.WorkoutFrequency
	if freq < 1 {
		freq = 3
	}
	if freq > 6 {
		freq = 6
	}
	if freq > 5 && profile.FitnessLevel != models.LevelAdvanced {
		freq = 5
	}

	sessions := templateSessions(profile)
	ws := models.NewWeeklySchedule()
	for i, day := range frequencyDays[freq] {
		ws[day] = models.WorkoutDay(sessions[i%len(sessions)].Clone())
	}

	return &models.WorkoutPlan{
		PlanID:         uuid.New(),
		PlanName:       fmt.Sprintf("%s %d-Day Plan", capitalizeLevel(profile.FitnessLevel), freq),
		WeeklySchedule: ws,
	}
}

func templateSessions(profile *models.UserProfile) []*models.Session {
	reps := "8-12"
	if profile.HasGoal("strength") {
		reps = "4-6"
	}
	if profile.HasGoal("endurance") {
		reps = "12-15"
	}

	switch profile.FitnessLevel {
	case models.LevelAdvanced:
		return []*models.Session{
			{SessionName: "Push", Exercises: []models.Exercise{
				{Exercise: "Barbell Bench Press", Sets: 4, RepsOrDuration: reps, Rest: "120 seconds"},
				{Exercise: "Overhead Press", Sets: 3, RepsOrDuration: reps, Rest: "90 seconds"},
				{Exercise: "Dips", Sets: 3, RepsOrDuration: "8-12", Rest: "90 seconds"},
			}},
			{SessionName: "Pull", Exercises: []models.Exercise{
				{Exercise: "Deadlifts", Sets: 4, RepsOrDuration: reps, Rest: "150 seconds"},
				{Exercise: "Pull-Ups", Sets: 4, RepsOrDuration: "6-10", Rest: "90 seconds"},
				{Exercise: "Barbell Row", Sets: 3, RepsOrDuration: reps, Rest: "90 seconds"},
			}},
			{SessionName: "Legs", Exercises: []models.Exercise{
				{Exercise: "Barbell Squats", Sets: 4, RepsOrDuration: reps, Rest: "150 seconds"},
				{Exercise: "Romanian Deadlifts", Sets: 3, RepsOrDuration: reps, Rest: "120 seconds"},
				{Exercise: "Walking Lunges", Sets: 3, RepsOrDuration: "10-12", Rest: "90 seconds"},
			}},
		}
	case models.LevelIntermediate:
		return []*models.Session{
			{SessionName: "Upper Body", Exercises: []models.Exercise{
				{Exercise: "Barbell Bench Press", Sets: 3, RepsOrDuration: reps, Rest: "90 seconds"},
				{Exercise: "Barbell Row", Sets: 3, RepsOrDuration: reps, Rest: "90 seconds"},
				{Exercise: "Overhead Press", Sets: 3, RepsOrDuration: reps, Rest: "90 seconds"},
			}},
			{SessionName: "Lower Body", Exercises: []models.Exercise{
				{Exercise: "Barbell Squats", Sets: 3, RepsOrDuration: reps, Rest: "120 seconds"},
				{Exercise: "Romanian Deadlifts", Sets: 3, RepsOrDuration: reps, Rest: "120 seconds"},
				{Exercise: "Plank", Sets: 3, RepsOrDuration: "45 second hold", Rest: "60 seconds"},
			}},
		}
	default:
		return []*models.Session{
			{SessionName: "Full Body", Exercises: []models.Exercise{
				{Exercise: "Goblet Squats", Sets: 3, RepsOrDuration: "10-12", Rest: "90 seconds"},
				{Exercise: "Push-Ups", Sets: 3, RepsOrDuration: "8-12", Rest: "60 seconds"},
				{Exercise: "Dumbbell Row", Sets: 3, RepsOrDuration: "10-12", Rest: "60 seconds"},
				{Exercise: "Plank", Sets: 3, RepsOrDuration: "30 second hold", Rest: "60 seconds"},
			}},
		}
	}
}

func capitalizeLevel(level string) string {
	if level == "" {
		return "Beginner"
	}
	return strings.ToUpper(level[:1]) + level[1:]
}
