package adjust

import (
	"regexp"
	"strings"
)

// defaultAlternatives maps an unavailable equipment keyword to the keyword
// substituted into affected exercise names ("Barbell Bench Press" becomes
// "Dumbbell Bench Press"). This is data, not logic: deployments override it
// with rows from the equipment_alternatives table.
var defaultAlternatives = map[string]string{
	"barbell":     "Dumbbell",
	"dumbbell":    "Resistance Band",
	"kettlebell":  "Dumbbell",
	"cable":       "Resistance Band",
	"machine":     "Resistance Band",
	"bench":       "Floor",
	"pull-up bar": "Inverted Row",
	"band":        "Bodyweight",
}

// DefaultAlternatives returns a copy of the built-in equipment substitution
// table.
func DefaultAlternatives() map[string]string {
	out := make(map[string]string, len(defaultAlternatives))
	for k, v := range defaultAlternatives {
		out[k] = v
	}
	return out
}

// substituteEquipment rewrites the equipment keyword inside an exercise name
// with the replacement, preserving the rest of the name. ok is false when the
// name does not mention the keyword.
func substituteEquipment(name, equipment, replacement string) (string, bool) {
	re, err := regexp.Compile(`(?i)` + regexp.QuoteMeta(equipment))
	if err != nil || !re.MatchString(name) {
		return name, false
	}
	out := re.ReplaceAllString(name, replacement)
	return strings.Join(strings.Fields(out), " "), true
}
