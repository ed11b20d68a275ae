package analyzer

import (
	"context"
	"fmt"

	"github.com/sondelabs/querywatch/internal/logger"
)

// FailureNote records an analyzer that failed during a pass. Notes are
// diagnostic only: they never appear in the issue list.
type FailureNote struct {
	Kind string
	Err  error
}

func (n FailureNote) String() string {
	return fmt.Sprintf("analyzer %s failed: %v", n.Kind, n.Err)
}

// Pipeline holds the ordered analyzer registry for one engine instance.
type Pipeline struct {
	analyzers []Analyzer
	log       *logger.Logger
}

// NewPipeline creates an empty pipeline. A nil logger disables
// diagnostic logging.
func NewPipeline(log *logger.Logger) *Pipeline {
	return &Pipeline{log: log}
}

// Register appends an analyzer to the pipeline. Registration order is
// execution order.
func (p *Pipeline) Register(a Analyzer) {
	p.analyzers = append(p.analyzers, a)
}

// Analyzers returns the registered analyzers in execution order.
func (p *Pipeline) Analyzers() []Analyzer {
	return p.analyzers
}

// Run executes every registered analyzer exactly once against the pass
// context and concatenates their findings.
//
// Failures are isolated: an analyzer that returns an error or panics is
// recorded as a failure note and skipped, never aborting the rest of
// the pipeline. Cancellation is the one exception — when ctx is done
// the pass aborts with no findings at all, so the host never sees a
// partial result.
func (p *Pipeline) Run(ctx context.Context, pass *Context) ([]Finding, []FailureNote, error) {
	var findings []Finding
	var notes []FailureNote

	for _, a := range p.analyzers {
		if err := ctx.Err(); err != nil {
			return nil, nil, fmt.Errorf("analysis pass cancelled: %w", err)
		}

		results, err := p.runOne(ctx, a, pass)
		if err != nil {
			notes = append(notes, FailureNote{Kind: a.Kind(), Err: err})
			if p.log != nil {
				p.log.WithAnalyzer(a.Kind()).Warnf("analyzer failed, skipping: %v", err)
			}
			continue
		}
		findings = append(findings, results...)
	}

	return findings, notes, nil
}

// runOne invokes a single analyzer, converting panics into errors so a
// broken detector cannot take down the pass.
func (p *Pipeline) runOne(ctx context.Context, a Analyzer, pass *Context) (results []Finding, err error) {
	defer func() {
		if r := recover(); r != nil {
			results = nil
			err = fmt.Errorf("panic: %v", r)
		}
	}()
	return a.Analyze(ctx, pass)
}
