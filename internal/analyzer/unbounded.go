package analyzer

import (
	"context"
	"fmt"
	"strings"

	"github.com/sondelabs/querywatch/internal/severity"
)

// UnboundedResult flags SELECT statements without a LIMIT clause that
// returned more rows than the detection threshold. Operations whose
// row count is unknown are skipped; absence of evidence is not
// evidence of an unbounded read.
type UnboundedResult struct{}

func (UnboundedResult) Kind() string { return severity.KindUnboundedResult }

func (UnboundedResult) Analyze(_ context.Context, pass *Context) ([]Finding, error) {
	th := pass.Thresholds(severity.KindUnboundedResult)
	detect := th["detect_rows"]

	var findings []Finding
	for i, op := range pass.Traces {
		if op.RowCount == nil {
			continue
		}
		fp := pass.Fingerprint(i)
		if !isUnboundedSelect(fp) {
			continue
		}
		rows := *op.RowCount
		if float64(rows) <= detect {
			continue
		}

		findings = append(findings, Finding{
			Kind:  severity.KindUnboundedResult,
			Title: fmt.Sprintf("Unbounded query returned %d rows", rows),
			Narrative: fmt.Sprintf(
				"A SELECT without a LIMIT clause returned %d rows. "+
					"Result sets of this size should be paginated or bounded explicitly. Query: %s",
				rows, op.Text,
			),
			Metrics: severity.Metrics{
				"rows": float64(rows),
			},
			Operations: pass.Traces[i : i+1],
			Origin:     op.TopFrame(),
			Params: map[string]string{
				"query": op.Text,
				"rows":  fmt.Sprintf("%d", rows),
			},
		})
	}

	return findings, nil
}

// isUnboundedSelect inspects the normalized shape, so literal values
// and casing never affect the decision.
func isUnboundedSelect(fp string) bool {
	if !strings.HasPrefix(fp, "SELECT ") {
		return false
	}
	return !strings.Contains(fp, " LIMIT ")
}
