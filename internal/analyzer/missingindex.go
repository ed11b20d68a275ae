package analyzer

import (
	"context"
	"fmt"
	"strings"

	"github.com/sondelabs/querywatch/internal/severity"
	"github.com/sondelabs/querywatch/internal/trace"
)

// MissingIndex asks the database for an execution plan of each
// distinct SELECT shape and flags full-table scans over large row
// estimates. It is the only analyzer with an external capability
// requirement; when no plan source is configured it reports nothing.
type MissingIndex struct{}

func (MissingIndex) Kind() string { return severity.KindMissingIndex }

func (MissingIndex) Analyze(ctx context.Context, pass *Context) ([]Finding, error) {
	if pass.Explainer == nil {
		return nil, nil
	}

	th := pass.Thresholds(severity.KindMissingIndex)
	detect := th["detect_rows"]

	// One plan per distinct shape; the first instance represents it.
	reps := make(map[string]*trace.OperationTrace)
	var order []string
	for i, op := range pass.Traces {
		fp := pass.Fingerprint(i)
		if !strings.HasPrefix(fp, "SELECT ") {
			continue
		}
		if _, seen := reps[fp]; seen {
			continue
		}
		reps[fp] = op
		order = append(order, fp)
	}

	var findings []Finding
	for _, fp := range order {
		op := reps[fp]

		plan, ok := pass.Cache.Get(fp)
		if !ok {
			var err error
			plan, err = pass.Explainer.ExplainPlan(ctx, op.Text)
			if err != nil {
				return nil, fmt.Errorf("explain %q: %w", fp, err)
			}
			pass.Cache.Put(fp, plan)
		}

		if plan == nil || !plan.FullScan {
			continue
		}
		if float64(plan.Rows) < detect {
			continue
		}

		findings = append(findings, Finding{
			Kind:  severity.KindMissingIndex,
			Title: fmt.Sprintf("Full scan over ~%d rows", plan.Rows),
			Narrative: fmt.Sprintf(
				"The execution plan reads the whole table (~%d rows) instead of using an index. "+
					"Plan: %s. Query: %s",
				plan.Rows, plan.Summary, op.Text,
			),
			Metrics: severity.Metrics{
				"rows": float64(plan.Rows),
			},
			Operations: []*trace.OperationTrace{op},
			Origin:     op.TopFrame(),
			Params: map[string]string{
				"query": op.Text,
				"table": plan.Relation,
			},
		})
	}

	return findings, nil
}
