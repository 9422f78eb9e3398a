package feedback

import (
	"context"
	"encoding/json"
	"log/slog"
	"strings"

	"github.com/claude/liftwise/internal/ai"
)

// parseTemperature is fixed low to favor deterministic extraction.
const parseTemperature = 0.2

const systemPrompt = `You are a fitness feedback parser. Convert the user's free-text workout feedback into a JSON object with exactly these keys:
  "substitutions": [{"from": "...", "to": "...", "reason": "...", "day": "..."}],
  "volumeAdjustments": [{"exercise": "... or all", "parameter": "sets|reps", "direction": "increase|decrease", "value": "...", "reason": "..."}],
  "intensityAdjustments": [{"exercise": "...", "parameter": "weight|tempo|rpe", "direction": "increase|decrease", "value": "...", "reason": "..."}],
  "scheduleChanges": [{"type": "move|combine|split|add_day|remove_day", "from": "Monday..Sunday", "to": "Monday..Sunday", "reason": "..."}],
  "restPeriodChanges": [{"scope": "between_sets|between_workouts", "direction": "increase|decrease", "value": "...", "reason": "..."}],
  "equipmentLimitations": [{"equipment": "...", "alternative": "...", "reason": "..."}],
  "painConcerns": [{"area": "...", "exercise": "... or general", "severity": "..."}],
  "generalFeedback": "..."
Omit nothing: every key must be present, with an empty array or empty string when the feedback says nothing about it. Respond with the JSON object only.`

// Source reports which path produced a parse result.
type Source string

const (
	// SourceModel means the external completion call produced the intents.
	SourceModel Source = "model"
	// SourceFallback means the local heuristic parser produced the intents.
	SourceFallback Source = "fallback"
)

// Result is a fully parsed piece of feedback.
type Result struct {
	Intents     Intents     `json:"intents"`
	Source      Source      `json:"source"`
	Categorized Categorized `json:"categorized"`
	Specifics   Specifics   `json:"specifics"`
}

// Completer is the completion surface the parser needs.
type Completer interface {
	Complete(ctx context.Context, system, user string, opts ai.Options) (string, error)
}

// Parser turns free-text feedback into structured intents. A failed or
// malformed completion never surfaces as an error; the deterministic
// heuristic parser takes over instead.
type Parser struct {
	completer Completer
	log       *slog.Logger
}

// NewParser creates a feedback parser.
func NewParser(completer Completer, log *slog.Logger) *Parser {
	return &Parser{completer: completer, log: log}
}

// Parse extracts intents from feedback text. It does not return an error for
// any expected input: completion failures fall back to heuristics, and the
// result records which path ran.
func (p *Parser) Parse(ctx context.Context, text string) *Result {
	intents, source := p.parseIntents(ctx, text)
	intents.normalize(text)
	return &Result{
		Intents:     intents,
		Source:      source,
		Categorized: Categorize(&intents),
		Specifics:   ExtractSpecifics(&intents),
	}
}

func (p *Parser) parseIntents(ctx context.Context, text string) (Intents, Source) {
	if p.completer == nil {
		return fallbackParse(text), SourceFallback
	}

	content, err := p.completer.Complete(ctx, systemPrompt, text, ai.Options{
		Temperature: parseTemperature,
		JSONMode:    true,
	})
	if err != nil {
		p.log.Warn("feedback completion failed, using heuristic parser", "error", err)
		return fallbackParse(text), SourceFallback
	}

	var intents Intents
	if err := json.Unmarshal([]byte(extractJSONObject(content)), &intents); err != nil {
		p.log.Warn("feedback completion was not valid JSON, using heuristic parser", "error", err)
		return fallbackParse(text), SourceFallback
	}
	return intents, SourceModel
}

// extractJSONObject strips markdown code fences and anything outside the
// outermost braces. Models occasionally wrap JSON despite json_object mode.
func extractJSONObject(content string) string {
	content = strings.TrimSpace(content)
	start := strings.Index(content, "{")
	end := strings.LastIndex(content, "}")
	if start >= 0 && end > start {
		return content[start : end+1]
	}
	return content
}
