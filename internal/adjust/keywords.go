package adjust

import "strings"

// Movement-pattern keyword tables. Kept as named, unit-testable data so they
// can be extended or swapped for a real exercise taxonomy without touching
// the validator's control flow.

// compoundKeywords identify multi-joint strength movements.
var compoundKeywords = []string{
	"squat", "deadlift", "press", "row", "pull-up", "pullup", "chin-up",
	"chinup", "dip", "lunge", "clean", "snatch", "thruster",
}

// isolationKeywords identify single-joint accessory movements.
var isolationKeywords = []string{
	"curl", "extension", "raise", "fly", "flye", "pushdown", "pulldown",
	"kickback", "shrug", "crunch",
}

// plyometricKeywords identify jumping and other high-impact movements.
var plyometricKeywords = []string{
	"jump", "jumping", "plyo", "bound", "hop", "burpee", "box jump",
}

// kneeConditionKeywords identify medical condition strings that implicate
// the knee.
var kneeConditionKeywords = []string{"knee", "patella", "acl", "mcl", "meniscus"}

func matchesAny(name string, keywords []string) bool {
	name = strings.ToLower(name)
	for _, kw := range keywords {
		if strings.Contains(name, kw) {
			return true
		}
	}
	return false
}

// IsCompound reports whether the exercise name matches a compound keyword.
func IsCompound(name string) bool { return matchesAny(name, compoundKeywords) }

// IsIsolation reports whether the exercise name matches an isolation keyword.
func IsIsolation(name string) bool { return matchesAny(name, isolationKeywords) }

// IsPlyometric reports whether the exercise name matches a plyometric keyword.
func IsPlyometric(name string) bool { return matchesAny(name, plyometricKeywords) }

func hasKneeCondition(conditions []string) bool {
	for _, c := range conditions {
		if matchesAny(c, kneeConditionKeywords) {
			return true
		}
	}
	return false
}

func containsFold(haystack, needle string) bool {
	return strings.Contains(strings.ToLower(haystack), strings.ToLower(needle))
}
