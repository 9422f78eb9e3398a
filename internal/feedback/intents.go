package feedback

import "fmt"

// Kind identifies an intent category.
type Kind string

const (
	KindSubstitution Kind = "substitution"
	KindVolume       Kind = "volume"
	KindIntensity    Kind = "intensity"
	KindSchedule     Kind = "schedule"
	KindRestPeriod   Kind = "rest_period"
	KindEquipment    Kind = "equipment"
	KindPain         Kind = "pain"
)

// Substitution asks to swap one exercise for another.
type Substitution struct {
	From   string `json:"from"`
	To     string `json:"to"`
	Reason string `json:"reason,omitempty"`
	Day    string `json:"day,omitempty"`
}

// VolumeAdjustment changes sets or reps on one exercise or on "all".
type VolumeAdjustment struct {
	Exercise  string `json:"exercise"`
	Parameter string `json:"parameter"` // "sets" or "reps"
	Direction string `json:"direction"` // "increase" or "decrease"
	Value     string `json:"value,omitempty"`
	Reason    string `json:"reason,omitempty"`
}

// IntensityAdjustment changes an untracked intensity parameter (weight,
// tempo, RPE). Applied as an annotation, never as a numeric mutation.
type IntensityAdjustment struct {
	Exercise  string `json:"exercise"`
	Parameter string `json:"parameter"`
	Direction string `json:"direction"`
	Value     string `json:"value,omitempty"`
	Reason    string `json:"reason,omitempty"`
}

// Schedule change types.
const (
	ScheduleMove      = "move"
	ScheduleCombine   = "combine"
	ScheduleSplit     = "split"
	ScheduleAddDay    = "add_day"
	ScheduleRemoveDay = "remove_day"
)

// ScheduleChange moves or merges workout days.
type ScheduleChange struct {
	Type   string `json:"type"`
	From   string `json:"from,omitempty"`
	To     string `json:"to,omitempty"`
	Reason string `json:"reason,omitempty"`
}

// Rest-period scopes.
const (
	RestBetweenSets     = "between_sets"
	RestBetweenWorkouts = "between_workouts"
)

// RestPeriodChange adjusts rest between sets or between workout days.
type RestPeriodChange struct {
	Scope     string `json:"scope"`
	Direction string `json:"direction"`
	Value     string `json:"value,omitempty"`
	Reason    string `json:"reason,omitempty"`
}

// EquipmentLimitation reports equipment the user cannot use.
type EquipmentLimitation struct {
	Equipment   string `json:"equipment"`
	Alternative string `json:"alternative,omitempty"`
	Reason      string `json:"reason,omitempty"`
}

// PainConcern reports pain in a body area, optionally tied to an exercise.
// Exercise is "general" (or empty) when no specific exercise is implicated.
type PainConcern struct {
	Area     string `json:"area"`
	Exercise string `json:"exercise,omitempty"`
	Severity string `json:"severity,omitempty"`
}

// Intents is the structured form of one piece of user feedback. All slices
// are non-nil after normalization so consumers never branch on missing keys.
type Intents struct {
	Substitutions        []Substitution        `json:"substitutions"`
	VolumeAdjustments    []VolumeAdjustment    `json:"volumeAdjustments"`
	IntensityAdjustments []IntensityAdjustment `json:"intensityAdjustments"`
	ScheduleChanges      []ScheduleChange      `json:"scheduleChanges"`
	RestPeriodChanges    []RestPeriodChange    `json:"restPeriodChanges"`
	EquipmentLimitations []EquipmentLimitation `json:"equipmentLimitations"`
	PainConcerns         []PainConcern         `json:"painConcerns"`
	GeneralFeedback      string                `json:"generalFeedback"`
}

// normalize guarantees every list is non-nil and GeneralFeedback carries the
// raw feedback text verbatim.
func (in *Intents) normalize(raw string) {
	if in.Substitutions == nil {
		in.Substitutions = []Substitution{}
	}
	if in.VolumeAdjustments == nil {
		in.VolumeAdjustments = []VolumeAdjustment{}
	}
	if in.IntensityAdjustments == nil {
		in.IntensityAdjustments = []IntensityAdjustment{}
	}
	if in.ScheduleChanges == nil {
		in.ScheduleChanges = []ScheduleChange{}
	}
	if in.RestPeriodChanges == nil {
		in.RestPeriodChanges = []RestPeriodChange{}
	}
	if in.EquipmentLimitations == nil {
		in.EquipmentLimitations = []EquipmentLimitation{}
	}
	if in.PainConcerns == nil {
		in.PainConcerns = []PainConcern{}
	}
	in.GeneralFeedback = raw
}

// Count returns the total number of individual intent items.
func (in *Intents) Count() int {
	return len(in.Substitutions) + len(in.VolumeAdjustments) +
		len(in.IntensityAdjustments) + len(in.ScheduleChanges) +
		len(in.RestPeriodChanges) + len(in.EquipmentLimitations) +
		len(in.PainConcerns)
}

// Ref addresses one intent item by category and position. Validator and
// modifier use refs to agree on item identity without sharing pointers.
type Ref struct {
	Kind  Kind `json:"kind"`
	Index int  `json:"index"`
}

// Refs returns a ref for every item, grouped by category.
func (in *Intents) Refs() []Ref {
	var refs []Ref
	add := func(kind Kind, n int) {
		for i := 0; i < n; i++ {
			refs = append(refs, Ref{Kind: kind, Index: i})
		}
	}
	add(KindSubstitution, len(in.Substitutions))
	add(KindVolume, len(in.VolumeAdjustments))
	add(KindIntensity, len(in.IntensityAdjustments))
	add(KindSchedule, len(in.ScheduleChanges))
	add(KindRestPeriod, len(in.RestPeriodChanges))
	add(KindEquipment, len(in.EquipmentLimitations))
	add(KindPain, len(in.PainConcerns))
	return refs
}

// Describe returns a short human-readable summary of the referenced item,
// used in changelogs and skip reasons.
func (in *Intents) Describe(r Ref) string {
	switch r.Kind {
	case KindSubstitution:
		if r.Index < len(in.Substitutions) {
			s := in.Substitutions[r.Index]
			return fmt.Sprintf("replace %s with %s", s.From, s.To)
		}
	case KindVolume:
		if r.Index < len(in.VolumeAdjustments) {
			v := in.VolumeAdjustments[r.Index]
			return fmt.Sprintf("%s %s for %s", v.Direction, v.Parameter, v.Exercise)
		}
	case KindIntensity:
		if r.Index < len(in.IntensityAdjustments) {
			v := in.IntensityAdjustments[r.Index]
			return fmt.Sprintf("%s %s for %s", v.Direction, v.Parameter, v.Exercise)
		}
	case KindSchedule:
		if r.Index < len(in.ScheduleChanges) {
			c := in.ScheduleChanges[r.Index]
			return fmt.Sprintf("%s %s to %s", c.Type, c.From, c.To)
		}
	case KindRestPeriod:
		if r.Index < len(in.RestPeriodChanges) {
			c := in.RestPeriodChanges[r.Index]
			return fmt.Sprintf("%s rest %s", c.Direction, c.Scope)
		}
	case KindEquipment:
		if r.Index < len(in.EquipmentLimitations) {
			return fmt.Sprintf("no access to %s", in.EquipmentLimitations[r.Index].Equipment)
		}
	case KindPain:
		if r.Index < len(in.PainConcerns) {
			p := in.PainConcerns[r.Index]
			return fmt.Sprintf("pain concern: %s", p.Area)
		}
	}
	return fmt.Sprintf("%s[%d]", r.Kind, r.Index)
}
