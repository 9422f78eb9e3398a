package adjust

import "github.com/claude/liftwise/internal/feedback"

// Assessment is one validator judgment about one intent item.
type Assessment struct {
	Ref    feedback.Ref `json:"ref"`
	Detail string       `json:"detail,omitempty"`
}

// FeasibilityResult partitions intents by whether they reference entities
// that actually exist in the plan.
type FeasibilityResult struct {
	Feasible   []Assessment `json:"feasible"`
	Infeasible []Assessment `json:"infeasible"`
}

// IsFeasible reports whether the ref was judged feasible. Refs the validator
// never assessed are not feasible: the modifier only applies what passed.
func (r *FeasibilityResult) IsFeasible(ref feedback.Ref) bool {
	for _, a := range r.Feasible {
		if a.Ref == ref {
			return true
		}
	}
	return false
}

// Detail returns the infeasibility detail for the ref, if recorded.
func (r *FeasibilityResult) Detail(ref feedback.Ref) string {
	for _, a := range r.Infeasible {
		if a.Ref == ref {
			return a.Detail
		}
	}
	return ""
}

// Warning annotates an intent without blocking it.
type Warning struct {
	Ref     feedback.Ref `json:"ref"`
	Message string       `json:"message"`
}

// SafetyResult partitions intents by contraindication safety. Warnings never
// block application; unsafe entries do.
type SafetyResult struct {
	Safe     []Assessment `json:"safe"`
	Unsafe   []Assessment `json:"unsafe"`
	Warnings []Warning    `json:"warnings"`
}

// IsSafe reports whether the ref was judged safe.
func (r *SafetyResult) IsSafe(ref feedback.Ref) bool {
	for _, a := range r.Safe {
		if a.Ref == ref {
			return true
		}
	}
	return false
}

// Detail returns the unsafety detail for the ref, if recorded.
func (r *SafetyResult) Detail(ref feedback.Ref) string {
	for _, a := range r.Unsafe {
		if a.Ref == ref {
			return a.Detail
		}
	}
	return ""
}

// CoherenceResult partitions intents by goal alignment. The checker is
// permissive: only clear contradictions land in Incoherent.
type CoherenceResult struct {
	Coherent   []Assessment `json:"coherent"`
	Incoherent []Assessment `json:"incoherent"`
}

// IsCoherent reports whether the ref was judged coherent.
func (r *CoherenceResult) IsCoherent(ref feedback.Ref) bool {
	for _, a := range r.Coherent {
		if a.Ref == ref {
			return true
		}
	}
	return false
}

// Detail returns the incoherence detail for the ref, if recorded.
func (r *CoherenceResult) Detail(ref feedback.Ref) string {
	for _, a := range r.Incoherent {
		if a.Ref == ref {
			return a.Detail
		}
	}
	return ""
}
