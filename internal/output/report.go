package output

import (
	"fmt"
	"strings"

	"github.com/sondelabs/querywatch/internal/issue"
	"github.com/sondelabs/querywatch/internal/severity"
)

// Section prints a styled section header with a horizontal rule.
func Section(title string) string {
	header := StyleHeader.Render(title)
	rule := StyleMuted.Render(strings.Repeat("─", 66))
	return fmt.Sprintf("\n %s\n %s", header, rule)
}

// Badge renders a severity label.
func Badge(s severity.Severity) string {
	return SeverityStyle(s).Render(strings.ToUpper(s.String()))
}

// RenderReport formats a full report for the terminal.
func RenderReport(r *issue.Report) string {
	var sb strings.Builder

	sb.WriteString(Section("Analysis Report"))
	sb.WriteString("\n")
	sb.WriteString(fmt.Sprintf(" %d operation(s) analyzed", r.Traces))
	if r.Dropped > 0 {
		sb.WriteString(StyleMuted.Render(fmt.Sprintf(", %d record(s) dropped", r.Dropped)))
	}
	sb.WriteString("\n")

	if len(r.Issues) == 0 {
		sb.WriteString(StyleInfo.Render("\n No issues found.\n"))
		return sb.String()
	}

	summary := NewTable("SEVERITY", "COUNT")
	for _, s := range []severity.Severity{severity.Critical, severity.Warning, severity.Info} {
		if n := r.Count(s); n > 0 {
			summary.AddRow(Badge(s), fmt.Sprintf("%d", n))
		}
	}
	sb.WriteString("\n")
	sb.WriteString(summary.Render())

	for i, is := range r.Issues {
		sb.WriteString(Section(fmt.Sprintf("Issue %d/%d  %s  %s", i+1, len(r.Issues), Badge(is.Severity), is.Title)))
		sb.WriteString("\n ")
		sb.WriteString(is.Narrative)
		sb.WriteString("\n")

		if is.Origin != nil {
			sb.WriteString(StyleMuted.Render(fmt.Sprintf(" at %s", is.Origin)))
			sb.WriteString("\n")
		}

		if len(is.Occurrences) > 0 {
			tbl := NewTable("COUNT", "DURATION", "QUERY")
			for _, occ := range is.Occurrences {
				tbl.AddRow(
					fmt.Sprintf("%d", occ.Count),
					fmt.Sprintf("%.1fms", occ.DurationMs),
					truncate(occ.Query, 60),
				)
			}
			sb.WriteString("\n")
			sb.WriteString(tbl.Render())
		}

		if is.Suggestion != nil {
			sb.WriteString("\n ")
			sb.WriteString(StyleBold.Render("Suggestion: "))
			sb.WriteString(is.Suggestion.Description)
			sb.WriteString("\n")
			if is.Suggestion.Code != "" {
				sb.WriteString(StyleMuted.Render("   " + is.Suggestion.Code))
				sb.WriteString("\n")
			}
		}
	}

	if len(r.Failures) > 0 {
		sb.WriteString(Section("Analyzer Failures"))
		sb.WriteString("\n")
		for _, f := range r.Failures {
			sb.WriteString(StyleWarning.Render(" " + f))
			sb.WriteString("\n")
		}
	}

	return sb.String()
}

// truncate shortens a string to at most n runes, appending an ellipsis.
func truncate(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n-1]) + "…"
}
