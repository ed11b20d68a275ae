package analyzer

import (
	"context"
	"fmt"
	"strings"

	"github.com/sondelabs/querywatch/internal/severity"
	"github.com/sondelabs/querywatch/internal/source"
	"github.com/sondelabs/querywatch/internal/trace"
)

// SensitiveFields walks the captured source fragments looking for
// places where fields from the configured vocabulary are exposed, via
// serialization map keys, accessor calls, or direct field reads.
type SensitiveFields struct{}

func (SensitiveFields) Kind() string { return severity.KindSensitiveField }

func (SensitiveFields) Analyze(_ context.Context, pass *Context) ([]Finding, error) {
	if len(pass.Fragments) == 0 || len(pass.SensitiveFields) == 0 {
		return nil, nil
	}

	visitor := source.NewSensitiveFieldVisitor(pass.SensitiveFields)

	var findings []Finding
	for _, frag := range pass.Fragments {
		before := len(visitor.Matches())
		visitor.Walk(frag)
		matches := visitor.Matches()[before:]
		if len(matches) == 0 {
			continue
		}

		fields := make([]string, len(matches))
		for i, m := range matches {
			fields[i] = m.Field
		}

		findings = append(findings, Finding{
			Kind:  severity.KindSensitiveField,
			Title: fmt.Sprintf("Sensitive fields exposed: %s", strings.Join(fields, ", ")),
			Narrative: fmt.Sprintf(
				"%s exposes %d sensitive field(s): %s. "+
					"These values reach serialization or accessor paths and may leak into responses or logs.",
				frag.Path, len(matches), strings.Join(fields, ", "),
			),
			Metrics: severity.Metrics{
				"fields": float64(len(matches)),
			},
			Origin: &trace.Frame{File: matches[0].File, Line: matches[0].Line},
			Params: map[string]string{
				"file":   frag.Path,
				"fields": strings.Join(fields, ", "),
			},
		})
	}

	return findings, nil
}
