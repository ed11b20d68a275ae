// Package issue turns the pipeline's raw findings into the final,
// deduplicated issue list a host consumes.
package issue

import (
	"github.com/google/uuid"
	"github.com/sondelabs/querywatch/internal/severity"
	"github.com/sondelabs/querywatch/internal/trace"
)

// Occurrence is one distinct operation shape evidencing an issue,
// represented by its first-seen instance and an execution count.
type Occurrence struct {
	// Fingerprint is the normalized shape of the operation.
	Fingerprint string `json:"fingerprint"`

	// Query is the raw text of the first instance of this shape.
	Query string `json:"query"`

	// Count is how many trace operations shared this shape.
	Count int `json:"count"`

	// DurationMs sums the durations of all operations of this shape.
	DurationMs float64 `json:"duration_ms"`

	// Origin is the capture site of the first instance, when known.
	Origin *trace.Frame `json:"origin,omitempty"`
}

// Suggestion is an actionable remediation attached to an issue.
type Suggestion struct {
	Code        string `json:"code,omitempty"`
	Description string `json:"description"`
}

// Issue is one reported problem: a merged, severity-rated finding with
// its evidence and, when available, a remediation suggestion.
type Issue struct {
	ID          string            `json:"id"`
	Kind        string            `json:"kind"`
	Title       string            `json:"title"`
	Narrative   string            `json:"narrative"`
	Severity    severity.Severity `json:"severity"`
	Metrics     severity.Metrics  `json:"metrics"`
	Occurrences []Occurrence      `json:"occurrences,omitempty"`
	Origin      *trace.Frame      `json:"origin,omitempty"`
	Suggestion  *Suggestion       `json:"suggestion,omitempty"`

	// Params carries the representative finding's parameters for
	// suggestion rendering. They never serialize.
	Params map[string]string `json:"-"`
}

// NewID returns a fresh issue identifier.
func NewID() string {
	return uuid.NewString()
}
