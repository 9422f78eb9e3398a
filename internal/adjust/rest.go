package adjust

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// Rest fields are strings of the form "90 seconds" or "90s". Rest between
// sets never drops below this floor.
const minRestSeconds = 15

var restRe = regexp.MustCompile(`^\s*(\d+)\s*(?:s|sec|secs|seconds)?\s*$`)

// parseRestSeconds extracts the seconds from a rest string. ok is false for
// anything that does not encode a plain number of seconds.
func parseRestSeconds(s string) (int, bool) {
	m := restRe.FindStringSubmatch(s)
	if m == nil {
		return 0, false
	}
	n, err := strconv.Atoi(m[1])
	if err != nil {
		return 0, false
	}
	return n, true
}

func formatRest(seconds int) string {
	return fmt.Sprintf("%d seconds", seconds)
}

// adjustRepsString adjusts a repsOrDuration value by delta reps. Single
// integers and "a-b" ranges are adjusted (floor 1, ranges keep a < b);
// anything else ("AMRAP", timed durations) is returned unchanged with
// changed=false.
func adjustRepsString(reps string, delta int) (out string, changed bool) {
	trimmed := strings.TrimSpace(reps)

	if n, err := strconv.Atoi(trimmed); err == nil {
		return strconv.Itoa(clampMin(n+delta, 1)), true
	}

	parts := strings.SplitN(trimmed, "-", 2)
	if len(parts) == 2 {
		lo, errLo := strconv.Atoi(strings.TrimSpace(parts[0]))
		hi, errHi := strconv.Atoi(strings.TrimSpace(parts[1]))
		if errLo == nil && errHi == nil {
			lo = clampMin(lo+delta, 1)
			hi = clampMin(hi+delta, 1)
			if hi <= lo {
				hi = lo + 1
			}
			return fmt.Sprintf("%d-%d", lo, hi), true
		}
	}

	return reps, false
}

func clampMin(n, floor int) int {
	if n < floor {
		return floor
	}
	return n
}
