// Package analyzer contains the detection pipeline: a registry of
// analyzers run once per pass over the ingested trace set (and, for the
// source category, over parsed code fragments), each producing raw
// findings for the assembler.
package analyzer

import (
	"context"

	"github.com/sondelabs/querywatch/internal/diag"
	"github.com/sondelabs/querywatch/internal/fingerprint"
	"github.com/sondelabs/querywatch/internal/metacache"
	"github.com/sondelabs/querywatch/internal/severity"
	"github.com/sondelabs/querywatch/internal/source"
	"github.com/sondelabs/querywatch/internal/trace"
)

// Finding is an analyzer's raw output, produced and consumed within one
// pipeline pass.
type Finding struct {
	// Kind is the stable issue-kind identifier, e.g. "n_plus_one".
	Kind string

	// Title is a one-line description of the finding.
	Title string

	// Narrative explains what was observed and why it matters.
	Narrative string

	// Metrics carries the numeric measurements severity policy runs on.
	Metrics severity.Metrics

	// Operations are the traces that evidence the finding.
	Operations []*trace.OperationTrace

	// Origin points at the code that produced the pattern, when known.
	Origin *trace.Frame

	// Params feeds the suggestion templates (table names, samples...).
	Params map[string]string
}

// Analyzer is the contract every detector implements. New detectors are
// added by registering an implementation with the pipeline; the pipeline
// itself never changes.
type Analyzer interface {
	// Kind returns the issue kind this analyzer produces.
	Kind() string

	// Analyze inspects the pass context and returns zero or more
	// findings. Returning an error (or panicking) marks this analyzer
	// as failed for the pass without affecting the others.
	Analyze(ctx context.Context, pass *Context) ([]Finding, error)
}

// Context is the read-only view of one analysis pass handed to every
// analyzer.
type Context struct {
	// Traces is the ingested operation set. Analyzers must not mutate it.
	Traces []*trace.OperationTrace

	// Fragments are the parsed code units for source-category analyzers.
	Fragments []*source.Fragment

	// Explainer is the injected plan capability; nil when the host did
	// not provide one.
	Explainer diag.Explainer

	// Cache survives across passes; nil disables cross-pass reuse.
	Cache *metacache.Cache

	// SensitiveFields is the configured vocabulary for the source
	// category.
	SensitiveFields []string

	// overrides holds configured threshold overrides per kind.
	overrides map[string]map[string]float64

	// fps caches the fingerprint of each trace, index-aligned.
	fps []string
}

// NewContext builds a pass context. Threshold overrides map issue kind
// to the configured values layered over the documented defaults.
func NewContext(traces []*trace.OperationTrace, overrides map[string]map[string]float64) *Context {
	return &Context{
		Traces:    traces,
		overrides: overrides,
	}
}

// Thresholds resolves the effective tier and detection thresholds for a
// kind.
func (c *Context) Thresholds(kind string) severity.Thresholds {
	return severity.Resolve(kind, c.overrides[kind])
}

// Fingerprint returns the fingerprint of the i-th trace, computed once
// per pass.
func (c *Context) Fingerprint(i int) string {
	if c.fps == nil {
		c.fps = make([]string, len(c.Traces))
		for j, t := range c.Traces {
			c.fps[j] = fingerprint.Fingerprint(t.Text)
		}
	}
	return c.fps[i]
}
