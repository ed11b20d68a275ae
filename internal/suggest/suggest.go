// Package suggest maps issue kinds to actionable remediations. It is a
// pure boundary: detection never depends on it, and a kind without a
// registered template simply gets no suggestion.
package suggest

import "fmt"

// Suggestion is a remediation attached to an issue: an optional code
// sketch plus a description of what to change.
type Suggestion struct {
	Code        string `json:"code,omitempty"`
	Description string `json:"description"`
}

// template renders a suggestion from an issue's parameters.
type template func(params map[string]string) Suggestion

// templates maps issue kind to its remediation template. Adding a
// suggestion for a new kind means adding one entry here.
var templates = map[string]template{
	"n_plus_one":      repeatedShape,
	"duplicate_query": duplicateQuery,
	"slow_query":      slowQuery,
	"unbounded_result": func(p map[string]string) Suggestion {
		return Suggestion{
			Code: "SELECT ... LIMIT 100 OFFSET 0",
			Description: "Bound the result set with a LIMIT clause or paginate it. " +
				"If the caller truly needs every row, stream the results instead of materializing them.",
		}
	},
	"missing_index":            missingIndex,
	"sensitive_field_exposure": sensitiveFields,
}

// For returns the suggestion for an issue kind, rendered with the
// issue's parameters. ok is false when no template is registered.
func For(kind string, params map[string]string) (Suggestion, bool) {
	tmpl, ok := templates[kind]
	if !ok {
		return Suggestion{}, false
	}
	return tmpl(params), true
}

func repeatedShape(p map[string]string) Suggestion {
	return Suggestion{
		Code: "SELECT ... WHERE id IN (?, ?, ?)",
		Description: fmt.Sprintf(
			"The shape %s ran %s times with varying values. "+
				"Batch the lookups into a single IN query, or eager-load the association "+
				"before iterating the collection.",
			p["query"], orUnknown(p["count"]),
		),
	}
}

func duplicateQuery(p map[string]string) Suggestion {
	return Suggestion{
		Description: fmt.Sprintf(
			"The exact statement %s ran %s times. Keep the first result in a local "+
				"variable or a request-scoped cache instead of re-querying.",
			p["query"], orUnknown(p["count"]),
		),
	}
}

func slowQuery(p map[string]string) Suggestion {
	took := "longer than the configured threshold"
	if ms := p["duration_ms"]; ms != "" {
		took = ms + "ms"
	}
	return Suggestion{
		Description: fmt.Sprintf(
			"This query took %s. Check its execution plan, add or adjust indexes "+
				"on the filtered columns, and select only the columns you need.",
			took,
		),
	}
}

func missingIndex(p map[string]string) Suggestion {
	table := p["table"]
	if table == "" {
		table = "the scanned table"
	}
	return Suggestion{
		Code: fmt.Sprintf("CREATE INDEX idx_%s_col ON %s (col)", table, table),
		Description: fmt.Sprintf(
			"The plan reads %s in full. Create an index covering the columns in the "+
				"WHERE clause so the database can seek instead of scan.",
			table,
		),
	}
}

func sensitiveFields(p map[string]string) Suggestion {
	return Suggestion{
		Description: fmt.Sprintf(
			"Fields exposed: %s. Strip them before serialization, move them to a "+
				"dedicated response type, or mark them as never-serialized on the model.",
			orUnknown(p["fields"]),
		),
	}
}

func orUnknown(s string) string {
	if s == "" {
		return "an unknown number of"
	}
	return s
}
