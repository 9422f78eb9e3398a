package feedback

import (
	"context"
	"errors"
	"log/slog"
	"reflect"
	"testing"

	"github.com/claude/liftwise/internal/ai"
)

type fakeCompleter struct {
	content string
	err     error
	gotOpts ai.Options
}

func (f *fakeCompleter) Complete(_ context.Context, _, _ string, opts ai.Options) (string, error) {
	f.gotOpts = opts
	return f.content, f.err
}

func testLogger() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}

// TestParseModelPath verifies a well-formed completion produces model-sourced
// intents with every list non-nil and the raw text preserved.
func TestParseModelPath(t *testing.T) {
	fake := &fakeCompleter{content: `{"substitutions":[{"from":"Bench Press","to":"Incline Press","reason":"shoulder pain"}]}`}
	p := NewParser(fake, testLogger())

	res := p.Parse(context.Background(), "my shoulder hurts on bench press, switch to incline")

	if res.Source != SourceModel {
		t.Fatalf("source = %q, want %q", res.Source, SourceModel)
	}
	if len(res.Intents.Substitutions) != 1 {
		t.Fatalf("substitutions = %d, want 1", len(res.Intents.Substitutions))
	}
	if res.Intents.GeneralFeedback != "my shoulder hurts on bench press, switch to incline" {
		t.Errorf("generalFeedback = %q, want raw text", res.Intents.GeneralFeedback)
	}
	if res.Intents.VolumeAdjustments == nil || res.Intents.PainConcerns == nil {
		t.Error("missing keys must default to empty slices, not nil")
	}
	if !fake.gotOpts.JSONMode {
		t.Error("parser must request json_object response mode")
	}
	if fake.gotOpts.Temperature != parseTemperature {
		t.Errorf("temperature = %v, want %v", fake.gotOpts.Temperature, parseTemperature)
	}
}

// TestParseFallbackOnError verifies a failed completion call recovers via the
// heuristic parser and reports the fallback source.
func TestParseFallbackOnError(t *testing.T) {
	fake := &fakeCompleter{err: errors.New("upstream 503")}
	p := NewParser(fake, testLogger())

	res := p.Parse(context.Background(), "replace squats with lunges")

	if res.Source != SourceFallback {
		t.Fatalf("source = %q, want %q", res.Source, SourceFallback)
	}
	if len(res.Intents.Substitutions) != 1 {
		t.Fatalf("substitutions = %d, want 1", len(res.Intents.Substitutions))
	}
}

// TestParseFallbackOnMalformed verifies non-JSON completion content recovers
// via the heuristic parser.
func TestParseFallbackOnMalformed(t *testing.T) {
	fake := &fakeCompleter{content: "Sure! Here are the changes you asked for."}
	p := NewParser(fake, testLogger())

	res := p.Parse(context.Background(), "replace squats with lunges")

	if res.Source != SourceFallback {
		t.Errorf("source = %q, want %q", res.Source, SourceFallback)
	}
}

// TestParsePathAgreement verifies the model path and fallback path yield the
// same substitution intent for canonical phrasing.
func TestParsePathAgreement(t *testing.T) {
	text := "replace squats with lunges"

	model := NewParser(&fakeCompleter{content: `{"substitutions":[{"from":"squats","to":"lunges"}]}`}, testLogger())
	fallback := NewParser(&fakeCompleter{err: errors.New("down")}, testLogger())

	got := model.Parse(context.Background(), text).Intents.Substitutions
	want := fallback.Parse(context.Background(), text).Intents.Substitutions

	if !reflect.DeepEqual(got, want) {
		t.Errorf("model path %+v, fallback path %+v; paths must agree", got, want)
	}
}

// TestParseFencedJSON verifies a code-fenced completion still parses on the
// model path.
func TestParseFencedJSON(t *testing.T) {
	fake := &fakeCompleter{content: "```json\n{\"painConcerns\":[{\"area\":\"knee\",\"exercise\":\"Squats\"}]}\n```"}
	p := NewParser(fake, testLogger())

	res := p.Parse(context.Background(), "knee pain during squats")

	if res.Source != SourceModel {
		t.Fatalf("source = %q, want %q", res.Source, SourceModel)
	}
	if len(res.Intents.PainConcerns) != 1 {
		t.Fatalf("pain concerns = %d, want 1", len(res.Intents.PainConcerns))
	}
}

// TestParseNilCompleter verifies the parser works fully offline.
func TestParseNilCompleter(t *testing.T) {
	p := NewParser(nil, testLogger())

	res := p.Parse(context.Background(), "replace squats with lunges")

	if res.Source != SourceFallback {
		t.Errorf("source = %q, want %q", res.Source, SourceFallback)
	}
}
