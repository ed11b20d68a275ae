package issue

import "github.com/sondelabs/querywatch/internal/severity"

// Report is the serializable result of one analysis pass.
type Report struct {
	// Issues is the ordered issue list, most severe first.
	Issues []Issue `json:"issues"`

	// Traces is how many operations were analyzed after validation.
	Traces int `json:"traces"`

	// Dropped is how many captured records failed validation.
	Dropped int `json:"dropped,omitempty"`

	// Failures names analyzers that could not complete, with reasons.
	Failures []string `json:"failures,omitempty"`
}

// Count returns how many issues carry the given severity.
func (r *Report) Count(s severity.Severity) int {
	n := 0
	for _, is := range r.Issues {
		if is.Severity == s {
			n++
		}
	}
	return n
}

// HasCritical reports whether any issue is critical.
func (r *Report) HasCritical() bool {
	return r.Count(severity.Critical) > 0
}
