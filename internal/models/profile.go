package models

// Preferences are optional user scheduling preferences.
type Preferences struct {
	WorkoutFrequency int `json:"workoutFrequency,omitempty"`
}

// Fitness levels as stored on a profile.
const (
	LevelBeginner     = "beginner"
	LevelIntermediate = "intermediate"
	LevelAdvanced     = "advanced"
)

// UserProfile is the trainee's profile. Read-only to the adjustment subsystem.
type UserProfile struct {
	UserID            string      `json:"user_id"`
	Goals             []string    `json:"goals"`
	FitnessLevel      string      `json:"fitnessLevel"`
	MedicalConditions []string    `json:"medical_conditions"`
	Preferences       Preferences `json:"preferences,omitempty"`
}

// HasGoal reports whether the profile lists the given goal.
func (p *UserProfile) HasGoal(goal string) bool {
	for _, g := range p.Goals {
		if g == goal {
			return true
		}
	}
	return false
}

// ContraindicationRule maps a medical condition to exercises to avoid.
// Condition matching is case-insensitive.
type ContraindicationRule struct {
	Condition        string   `json:"condition"`
	ExercisesToAvoid []string `json:"exercises_to_avoid"`
}
