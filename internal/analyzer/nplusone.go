package analyzer

import (
	"context"
	"fmt"

	"github.com/sondelabs/querywatch/internal/severity"
	"github.com/sondelabs/querywatch/internal/trace"
)

// NPlusOne detects repeated-shape clusters: the same statement shape
// executed many times with different literal values within one unit of
// work, the classic symptom of loading a collection and then querying
// once per element.
type NPlusOne struct{}

func (NPlusOne) Kind() string { return severity.KindNPlusOne }

func (NPlusOne) Analyze(_ context.Context, pass *Context) ([]Finding, error) {
	th := pass.Thresholds(severity.KindNPlusOne)
	detect := th["detect_count"]

	// Cluster by fingerprint, preserving first-seen order.
	groups := make(map[string][]*trace.OperationTrace)
	var order []string
	for i, op := range pass.Traces {
		fp := pass.Fingerprint(i)
		if _, seen := groups[fp]; !seen {
			order = append(order, fp)
		}
		groups[fp] = append(groups[fp], op)
	}

	var findings []Finding
	for _, fp := range order {
		ops := groups[fp]
		if float64(len(ops)) <= detect {
			continue
		}

		var totalMs float64
		for _, op := range ops {
			totalMs += op.DurationMs
		}

		sample := ops[0]
		findings = append(findings, Finding{
			Kind:  severity.KindNPlusOne,
			Title: fmt.Sprintf("Query shape executed %d times", len(ops)),
			Narrative: fmt.Sprintf(
				"The same statement shape ran %d times in this unit of work (%.1fms total). "+
					"This usually means a query is issued once per element of a collection. "+
					"Sample: %s",
				len(ops), totalMs, sample.Text,
			),
			Metrics: severity.Metrics{
				"count":             float64(len(ops)),
				"total_duration_ms": totalMs,
			},
			Operations: ops,
			Origin:     sample.TopFrame(),
			Params: map[string]string{
				"query": sample.Text,
				"count": fmt.Sprintf("%d", len(ops)),
			},
		})
	}

	return findings, nil
}
