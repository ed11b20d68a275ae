package output

import (
	"strings"
	"testing"

	"github.com/sondelabs/querywatch/internal/issue"
	"github.com/sondelabs/querywatch/internal/severity"
)

func TestVisualLen_PlainText(t *testing.T) {
	tests := []struct {
		input string
		want  int
	}{
		{"hello", 5},
		{"", 0},
		{"abc def", 7},
	}

	for _, tc := range tests {
		got := visualLen(tc.input)
		if got != tc.want {
			t.Errorf("visualLen(%q) = %d, want %d", tc.input, got, tc.want)
		}
	}
}

func TestVisualLen_StripsANSI(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  int
	}{
		{name: "bold", input: "\x1b[1mhello\x1b[0m", want: 5},
		{name: "color", input: "\x1b[31mred\x1b[0m", want: 3},
		{name: "multiple sequences", input: "\x1b[1m\x1b[34mblue bold\x1b[0m", want: 9},
		{name: "no ansi", input: "plain text", want: 10},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := visualLen(tc.input); got != tc.want {
				t.Errorf("visualLen() = %d, want %d", got, tc.want)
			}
		})
	}
}

func TestTableRenderAlignsColumns(t *testing.T) {
	SetNoColor(true)

	tbl := NewTable("KIND", "COUNT")
	tbl.AddRow("n_plus_one", "6")
	tbl.AddRow("slow_query", "12")

	out := tbl.Render()
	lines := strings.Split(strings.TrimRight(out, "\n"), "\n")
	if len(lines) != 4 {
		t.Fatalf("expected header, separator, 2 rows; got %d lines", len(lines))
	}
	if !strings.HasPrefix(lines[2], "n_plus_one  ") {
		t.Errorf("row not aligned: %q", lines[2])
	}
}

func TestTableEmptyHeaders(t *testing.T) {
	tbl := &Table{}
	if got := tbl.Render(); got != "" {
		t.Errorf("empty table should render nothing, got %q", got)
	}
}

func TestRenderReportNoIssues(t *testing.T) {
	SetNoColor(true)

	out := RenderReport(&issue.Report{Traces: 4})
	if !strings.Contains(out, "No issues found") {
		t.Errorf("empty report should say so, got %q", out)
	}
	if !strings.Contains(out, "4 operation(s) analyzed") {
		t.Errorf("report should carry the trace count, got %q", out)
	}
}

func TestRenderReportIssueDetails(t *testing.T) {
	SetNoColor(true)

	r := &issue.Report{
		Traces: 10,
		Issues: []issue.Issue{{
			ID:        "x",
			Kind:      severity.KindNPlusOne,
			Title:     "Query shape executed 6 times",
			Narrative: "the same shape ran repeatedly",
			Severity:  severity.Warning,
			Occurrences: []issue.Occurrence{
				{Fingerprint: "SELECT ?", Query: "SELECT 1", Count: 6, DurationMs: 3},
			},
			Suggestion: &issue.Suggestion{Description: "batch the lookups"},
		}},
		Failures: []string{"analyzer missing_index failed: unavailable"},
	}

	out := RenderReport(r)
	for _, want := range []string{
		"WARNING",
		"Query shape executed 6 times",
		"batch the lookups",
		"Analyzer Failures",
		"missing_index",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("report missing %q:\n%s", want, out)
		}
	}
}

func TestTruncate(t *testing.T) {
	if got := truncate("short", 10); got != "short" {
		t.Errorf("truncate(short) = %q", got)
	}
	if got := truncate("0123456789", 5); got != "0123…" {
		t.Errorf("truncate = %q, want 0123…", got)
	}
}
