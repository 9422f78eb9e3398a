package feedback

import (
	"regexp"
	"strings"
)

// The heuristic parser only records what it can confidently extract; the
// rest of the structure stays at defaults and the raw text survives in
// GeneralFeedback.

var (
	// "replace squats with lunges", "swap bench press for push-ups",
	// "substitute rows with pull-ups"
	substitutionRe = regexp.MustCompile(
		`(?i)\b(?:replace|swap|substitute|switch)\s+(?:the\s+)?([a-z][a-z\s\-]*?)\s+(?:with|for|to)\s+(?:the\s+)?([a-z][a-z\s\-]*?)(?:\s*(?:[.,;!]|because|since|$))`)

	// "more sets", "fewer sets", "add a set"
	setsRe = regexp.MustCompile(`(?i)\b(more|extra|additional|fewer|less)\s+sets?\b`)

	// "more reps", "less reps"
	repsRe = regexp.MustCompile(`(?i)\b(more|higher|fewer|less|lower)\s+reps\b`)

	// "during squats", "when doing lunges", "when I do deadlifts"
	painExerciseRe = regexp.MustCompile(
		`(?i)\b(?:during|while doing|when doing|when i do|doing)\s+(?:the\s+)?([a-z][a-z\s\-]*?)(?:\s*(?:[.,;!]|$))`)

	// "no barbell", "don't have dumbbells", "without a cable machine"
	equipmentRe = regexp.MustCompile(
		`(?i)\b(?:no|don'?t have|do not have|without)\s+(?:a\s+|an\s+|any\s+|access to\s+(?:a\s+)?)?(barbell|dumbbell|kettlebell|cable|machine|bench|pull-?up bar|band|rack)s?\b`)
)

// bodyParts are the areas the pain heuristic recognizes. Multi-word parts
// come first so "lower back" wins over "back".
var bodyParts = []string{
	"lower back", "upper back", "knee", "shoulder", "back", "elbow",
	"wrist", "hip", "ankle", "neck", "hamstring", "quad", "calf",
}

// fallbackParse is the deterministic local parser used when the completion
// call fails or returns malformed output.
func fallbackParse(text string) Intents {
	var in Intents
	lower := strings.ToLower(text)

	for _, m := range substitutionRe.FindAllStringSubmatch(text, -1) {
		from := strings.TrimSpace(m[1])
		to := strings.TrimSpace(m[2])
		if from == "" || to == "" {
			continue
		}
		in.Substitutions = append(in.Substitutions, Substitution{From: from, To: to})
	}

	if m := setsRe.FindStringSubmatch(text); m != nil {
		in.VolumeAdjustments = append(in.VolumeAdjustments, VolumeAdjustment{
			Exercise:  "all",
			Parameter: "sets",
			Direction: heuristicDirection(m[1]),
		})
	}
	if m := repsRe.FindStringSubmatch(text); m != nil {
		in.VolumeAdjustments = append(in.VolumeAdjustments, VolumeAdjustment{
			Exercise:  "all",
			Parameter: "reps",
			Direction: heuristicDirection(m[1]),
		})
	}

	if mentionsPain(lower) {
		for _, part := range bodyParts {
			if !strings.Contains(lower, part) {
				continue
			}
			concern := PainConcern{Area: part, Exercise: "general"}
			if m := painExerciseRe.FindStringSubmatch(text); m != nil {
				concern.Exercise = strings.TrimSpace(m[1])
			}
			in.PainConcerns = append(in.PainConcerns, concern)
			break
		}
	}

	for _, m := range equipmentRe.FindAllStringSubmatch(text, -1) {
		in.EquipmentLimitations = append(in.EquipmentLimitations, EquipmentLimitation{
			Equipment: strings.ToLower(strings.TrimSpace(m[1])),
		})
	}

	return in
}

func heuristicDirection(word string) string {
	switch strings.ToLower(word) {
	case "more", "extra", "additional", "higher":
		return "increase"
	default:
		return "decrease"
	}
}
