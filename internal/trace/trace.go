// Package trace defines the normalized model of one executed database
// operation and the ingestion boundary that builds it from raw capture
// records.
package trace

import (
	"fmt"

	"github.com/elliotchance/orderedmap/v2"
)

// Frame is one origin stack frame, most-recent-first in a trace's Origin.
type Frame struct {
	File string `json:"file"`
	Line int    `json:"line"`
}

func (f Frame) String() string {
	return fmt.Sprintf("%s:%d", f.File, f.Line)
}

// OperationTrace is the normalized record of one executed database
// operation. It is constructed once at ingestion time and never mutated
// afterwards; analyzers receive it read-only.
type OperationTrace struct {
	// Text is the executed statement. Never empty.
	Text string

	// Params holds the values bound at execution, keyed by position or
	// name in bind order.
	Params *orderedmap.OrderedMap[string, any]

	// DurationMs is the execution time in milliseconds. Never negative.
	DurationMs float64

	// RowCount is the number of rows returned or affected, when the
	// host reported it.
	RowCount *int64

	// Origin is the captured call stack, most-recent-first. Empty when
	// the host did not enable origin capture.
	Origin []Frame
}

// TopFrame returns the most recent origin frame, or nil when origin
// capture was disabled.
func (t *OperationTrace) TopFrame() *Frame {
	if len(t.Origin) == 0 {
		return nil
	}
	f := t.Origin[0]
	return &f
}
