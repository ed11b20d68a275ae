package analyzer

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/sondelabs/querywatch/internal/logger"
)

type stubAnalyzer struct {
	kind     string
	findings []Finding
	err      error
	panics   bool
}

func (s stubAnalyzer) Kind() string { return s.kind }

func (s stubAnalyzer) Analyze(context.Context, *Context) ([]Finding, error) {
	if s.panics {
		panic("broken detector")
	}
	return s.findings, s.err
}

func TestPipelineConcatenatesInOrder(t *testing.T) {
	p := NewPipeline(logger.NewNop())
	p.Register(stubAnalyzer{kind: "a", findings: []Finding{{Kind: "a"}}})
	p.Register(stubAnalyzer{kind: "b", findings: []Finding{{Kind: "b"}, {Kind: "b"}}})

	findings, notes, err := p.Run(context.Background(), NewContext(nil, nil))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(notes) != 0 {
		t.Fatalf("unexpected failure notes: %v", notes)
	}
	kinds := make([]string, len(findings))
	for i, f := range findings {
		kinds[i] = f.Kind
	}
	if got := strings.Join(kinds, ","); got != "a,b,b" {
		t.Errorf("findings order = %s, want a,b,b", got)
	}
}

func TestPipelineIsolatesFailures(t *testing.T) {
	boom := errors.New("boom")

	p := NewPipeline(logger.NewNop())
	p.Register(stubAnalyzer{kind: "good", findings: []Finding{{Kind: "good"}}})
	p.Register(stubAnalyzer{kind: "bad", err: boom})
	p.Register(stubAnalyzer{kind: "also_good", findings: []Finding{{Kind: "also_good"}}})

	findings, notes, err := p.Run(context.Background(), NewContext(nil, nil))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(findings) != 2 {
		t.Fatalf("healthy analyzers must still report, got %d findings", len(findings))
	}
	if len(notes) != 1 || notes[0].Kind != "bad" {
		t.Fatalf("want one failure note for kind bad, got %v", notes)
	}
	if !errors.Is(notes[0].Err, boom) {
		t.Errorf("note error = %v, want wrapped boom", notes[0].Err)
	}
}

func TestPipelineRecoversPanics(t *testing.T) {
	p := NewPipeline(logger.NewNop())
	p.Register(stubAnalyzer{kind: "panicky", panics: true})
	p.Register(stubAnalyzer{kind: "steady", findings: []Finding{{Kind: "steady"}}})

	findings, notes, err := p.Run(context.Background(), NewContext(nil, nil))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(findings) != 1 || findings[0].Kind != "steady" {
		t.Fatalf("pipeline must survive a panicking analyzer, got %v", findings)
	}
	if len(notes) != 1 || !strings.Contains(notes[0].Err.Error(), "broken detector") {
		t.Fatalf("panic must surface as a failure note, got %v", notes)
	}
}

func TestPipelineCancellationAbortsWithoutPartials(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	p := NewPipeline(logger.NewNop())
	p.Register(stubAnalyzer{kind: "a", findings: []Finding{{Kind: "a"}}})

	findings, notes, err := p.Run(ctx, NewContext(nil, nil))
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	if findings != nil || notes != nil {
		t.Fatalf("cancelled pass must return nothing, got %v / %v", findings, notes)
	}
}

func TestBuiltInKindsAreDistinct(t *testing.T) {
	seen := map[string]bool{}
	for _, a := range BuiltIn() {
		if seen[a.Kind()] {
			t.Errorf("duplicate analyzer kind %s", a.Kind())
		}
		seen[a.Kind()] = true
	}
	if len(seen) != 6 {
		t.Errorf("built-in analyzers = %d, want 6", len(seen))
	}
}
