package feedback

import "strings"

// painWords mark a substitution reason as pain-motivated.
var painWords = []string{"pain", "hurt", "hurts", "hurting", "sore", "ache", "aching", "injury", "injured"}

func mentionsPain(s string) bool {
	s = strings.ToLower(s)
	for _, w := range painWords {
		if strings.Contains(s, w) {
			return true
		}
	}
	return false
}

// Categorized buckets intent refs by priority and, cross-indexed, by type.
type Categorized struct {
	HighPriority   []Ref `json:"highPriority"`
	MediumPriority []Ref `json:"mediumPriority"`
	LowPriority    []Ref `json:"lowPriority"`
	ByType         Types `json:"byType"`
}

// Types indexes the same refs by what drives them.
type Types struct {
	Safety      []Ref `json:"safety"`
	Convenience []Ref `json:"convenience"`
	Preference  []Ref `json:"preference"`
}

// Categorize buckets every intent item. Pain concerns, equipment limits, and
// pain-motivated substitutions are high priority; preference substitutions
// and volume/intensity changes are medium; schedule and rest-period changes
// are low.
func Categorize(in *Intents) Categorized {
	var c Categorized

	for i, s := range in.Substitutions {
		ref := Ref{Kind: KindSubstitution, Index: i}
		if mentionsPain(s.Reason) {
			c.HighPriority = append(c.HighPriority, ref)
			c.ByType.Safety = append(c.ByType.Safety, ref)
		} else {
			c.MediumPriority = append(c.MediumPriority, ref)
			c.ByType.Preference = append(c.ByType.Preference, ref)
		}
	}
	for i := range in.VolumeAdjustments {
		ref := Ref{Kind: KindVolume, Index: i}
		c.MediumPriority = append(c.MediumPriority, ref)
		c.ByType.Preference = append(c.ByType.Preference, ref)
	}
	for i := range in.IntensityAdjustments {
		ref := Ref{Kind: KindIntensity, Index: i}
		c.MediumPriority = append(c.MediumPriority, ref)
		c.ByType.Preference = append(c.ByType.Preference, ref)
	}
	for i := range in.ScheduleChanges {
		ref := Ref{Kind: KindSchedule, Index: i}
		c.LowPriority = append(c.LowPriority, ref)
		c.ByType.Convenience = append(c.ByType.Convenience, ref)
	}
	for i := range in.RestPeriodChanges {
		ref := Ref{Kind: KindRestPeriod, Index: i}
		c.LowPriority = append(c.LowPriority, ref)
		c.ByType.Preference = append(c.ByType.Preference, ref)
	}
	for i := range in.EquipmentLimitations {
		ref := Ref{Kind: KindEquipment, Index: i}
		c.HighPriority = append(c.HighPriority, ref)
		c.ByType.Convenience = append(c.ByType.Convenience, ref)
	}
	for i := range in.PainConcerns {
		ref := Ref{Kind: KindPain, Index: i}
		c.HighPriority = append(c.HighPriority, ref)
		c.ByType.Safety = append(c.ByType.Safety, ref)
	}
	return c
}

// Specifics are flattened, de-duplicated mentions for fast lookup by
// summary and UI code.
type Specifics struct {
	Exercises        []string `json:"exercises"`
	Parameters       []string `json:"parameters"`
	PainAreas        []string `json:"painAreas"`
	LimitedEquipment []string `json:"limitedEquipment"`
	ScheduleDays     []string `json:"scheduleDays"`
}

// ExtractSpecifics flattens every mentioned exercise, parameter, pain area,
// equipment item, and schedule day.
func ExtractSpecifics(in *Intents) Specifics {
	var sp Specifics
	exercises := newStringSet()
	parameters := newStringSet()
	painAreas := newStringSet()
	equipment := newStringSet()
	days := newStringSet()

	for _, s := range in.Substitutions {
		exercises.add(s.From)
		exercises.add(s.To)
		days.add(s.Day)
	}
	for _, v := range in.VolumeAdjustments {
		if !strings.EqualFold(v.Exercise, "all") {
			exercises.add(v.Exercise)
		}
		parameters.add(v.Parameter)
	}
	for _, v := range in.IntensityAdjustments {
		if !strings.EqualFold(v.Exercise, "all") {
			exercises.add(v.Exercise)
		}
		parameters.add(v.Parameter)
	}
	for _, c := range in.ScheduleChanges {
		days.add(c.From)
		days.add(c.To)
	}
	for _, e := range in.EquipmentLimitations {
		equipment.add(e.Equipment)
		exercises.add(e.Alternative)
	}
	for _, p := range in.PainConcerns {
		painAreas.add(p.Area)
		if p.Exercise != "" && !strings.EqualFold(p.Exercise, "general") {
			exercises.add(p.Exercise)
		}
	}

	sp.Exercises = exercises.values()
	sp.Parameters = parameters.values()
	sp.PainAreas = painAreas.values()
	sp.LimitedEquipment = equipment.values()
	sp.ScheduleDays = days.values()
	return sp
}

// stringSet preserves first-seen order.
type stringSet struct {
	seen  map[string]bool
	order []string
}

func newStringSet() *stringSet {
	return &stringSet{seen: make(map[string]bool)}
}

func (s *stringSet) add(v string) {
	v = strings.TrimSpace(v)
	if v == "" {
		return
	}
	key := strings.ToLower(v)
	if s.seen[key] {
		return
	}
	s.seen[key] = true
	s.order = append(s.order, v)
}

func (s *stringSet) values() []string {
	if s.order == nil {
		return []string{}
	}
	return s.order
}
