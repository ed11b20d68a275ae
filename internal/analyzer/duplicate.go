package analyzer

import (
	"context"
	"fmt"

	"github.com/sondelabs/querywatch/internal/severity"
	"github.com/sondelabs/querywatch/internal/trace"
)

// DuplicateQuery flags byte-identical statements executed repeatedly
// in one unit of work. Unlike the repeated-shape check this matches
// on the raw text, including literal values, so it catches the case
// where the exact same row is fetched over and over.
type DuplicateQuery struct{}

func (DuplicateQuery) Kind() string { return severity.KindDuplicateQuery }

func (DuplicateQuery) Analyze(_ context.Context, pass *Context) ([]Finding, error) {
	th := pass.Thresholds(severity.KindDuplicateQuery)
	detect := th["detect_count"]

	groups := make(map[string][]*trace.OperationTrace)
	var order []string
	for _, op := range pass.Traces {
		if _, seen := groups[op.Text]; !seen {
			order = append(order, op.Text)
		}
		groups[op.Text] = append(groups[op.Text], op)
	}

	var findings []Finding
	for _, text := range order {
		ops := groups[text]
		if float64(len(ops)) <= detect {
			continue
		}

		var totalMs float64
		for _, op := range ops {
			totalMs += op.DurationMs
		}

		findings = append(findings, Finding{
			Kind:  severity.KindDuplicateQuery,
			Title: fmt.Sprintf("Identical query executed %d times", len(ops)),
			Narrative: fmt.Sprintf(
				"The exact same statement, literals included, ran %d times (%.1fms total). "+
					"The first result could be reused or cached. Query: %s",
				len(ops), totalMs, text,
			),
			Metrics: severity.Metrics{
				"count":             float64(len(ops)),
				"total_duration_ms": totalMs,
			},
			Operations: ops,
			Origin:     ops[0].TopFrame(),
			Params: map[string]string{
				"query": text,
				"count": fmt.Sprintf("%d", len(ops)),
			},
		})
	}

	return findings, nil
}
