// Package engine orchestrates one analysis pass: ingest the captured
// records, run the analyzer pipeline, assemble the issue list, and
// attach suggestions.
package engine

import (
	"context"

	"github.com/sondelabs/querywatch/internal/analyzer"
	"github.com/sondelabs/querywatch/internal/config"
	"github.com/sondelabs/querywatch/internal/diag"
	"github.com/sondelabs/querywatch/internal/issue"
	"github.com/sondelabs/querywatch/internal/logger"
	"github.com/sondelabs/querywatch/internal/metacache"
	"github.com/sondelabs/querywatch/internal/source"
	"github.com/sondelabs/querywatch/internal/suggest"
	"github.com/sondelabs/querywatch/internal/trace"
)

// Engine runs analysis passes. One engine serves many passes; the plan
// cache carries over between them.
type Engine struct {
	cfg       *config.Config
	log       *logger.Logger
	pipeline  *analyzer.Pipeline
	explainer diag.Explainer
	cache     *metacache.Cache
}

// New builds an engine with the built-in analyzers that the
// configuration enables. A nil logger disables diagnostic logging.
func New(cfg *config.Config, log *logger.Logger) *Engine {
	if log == nil {
		log = logger.NewNop()
	}

	e := &Engine{
		cfg:   cfg,
		log:   log,
		cache: metacache.New(),
	}

	e.pipeline = analyzer.NewPipeline(log)
	for _, a := range analyzer.BuiltIn() {
		if cfg.IsEnabled(a.Kind()) {
			e.pipeline.Register(a)
		}
	}
	return e
}

// SetExplainer injects the plan capability. Without one the plan-based
// analyzer stays silent.
func (e *Engine) SetExplainer(x diag.Explainer) {
	e.explainer = x
}

// InvalidateCache discards cached plans, forcing the next pass to
// explain every shape again. Call it after schema changes.
func (e *Engine) InvalidateCache() {
	e.cache.Invalidate()
}

// Run executes one analysis pass over the captured records and source
// fragments.
//
// Records that fail validation are dropped with a warning; they never
// poison the pass. Cancellation aborts the whole pass with an error and
// no report, so callers always see either a complete issue list or
// nothing.
func (e *Engine) Run(ctx context.Context, records []trace.RawRecord, fragments []*source.Fragment) (*issue.Report, error) {
	traces, invalid := trace.Ingest(records)
	for _, verr := range invalid {
		e.log.Warnf("dropping invalid record: %v", verr)
	}

	pass := analyzer.NewContext(traces, e.cfg.ThresholdOverrides())
	pass.Fragments = fragments
	pass.Explainer = e.explainer
	pass.Cache = e.cache
	pass.SensitiveFields = e.cfg.SensitiveFields

	findings, notes, err := e.pipeline.Run(ctx, pass)
	if err != nil {
		return nil, err
	}

	issues := issue.NewAssembler(e.cfg.ThresholdOverrides()).Assemble(findings)
	for i := range issues {
		if s, ok := suggest.For(issues[i].Kind, issues[i].Params); ok {
			issues[i].Suggestion = &issue.Suggestion{
				Code:        s.Code,
				Description: s.Description,
			}
		}
	}

	report := &issue.Report{
		Issues:  issues,
		Traces:  len(traces),
		Dropped: len(invalid),
	}
	for _, n := range notes {
		report.Failures = append(report.Failures, n.String())
	}
	return report, nil
}
