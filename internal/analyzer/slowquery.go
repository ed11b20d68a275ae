package analyzer

import (
	"context"
	"fmt"

	"github.com/sondelabs/querywatch/internal/severity"
	"github.com/sondelabs/querywatch/internal/trace"
)

// SlowQuery flags individual operations whose duration exceeds the
// detection threshold. Operations sharing a shape are reported as one
// finding keyed on the slowest instance.
type SlowQuery struct{}

func (SlowQuery) Kind() string { return severity.KindSlowQuery }

func (SlowQuery) Analyze(_ context.Context, pass *Context) ([]Finding, error) {
	th := pass.Thresholds(severity.KindSlowQuery)
	detect := th["detect_duration_ms"]

	groups := make(map[string][]*trace.OperationTrace)
	var order []string
	for i, op := range pass.Traces {
		if op.DurationMs < detect {
			continue
		}
		fp := pass.Fingerprint(i)
		if _, seen := groups[fp]; !seen {
			order = append(order, fp)
		}
		groups[fp] = append(groups[fp], op)
	}

	var findings []Finding
	for _, fp := range order {
		ops := groups[fp]
		slowest := ops[0]
		for _, op := range ops[1:] {
			if op.DurationMs > slowest.DurationMs {
				slowest = op
			}
		}

		findings = append(findings, Finding{
			Kind:  severity.KindSlowQuery,
			Title: fmt.Sprintf("Slow query (%.1fms)", slowest.DurationMs),
			Narrative: fmt.Sprintf(
				"An operation took %.1fms, above the %.0fms detection threshold. Query: %s",
				slowest.DurationMs, detect, slowest.Text,
			),
			Metrics: severity.Metrics{
				"duration_ms": slowest.DurationMs,
			},
			Operations: ops,
			Origin:     slowest.TopFrame(),
			Params: map[string]string{
				"query":       slowest.Text,
				"duration_ms": fmt.Sprintf("%.1f", slowest.DurationMs),
			},
		})
	}

	return findings, nil
}
