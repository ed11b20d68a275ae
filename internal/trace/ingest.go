package trace

import (
	"fmt"

	"github.com/elliotchance/orderedmap/v2"
)

// ValidationError describes one malformed capture record. The record it
// refers to is dropped from the ingested set; the error is surfaced to
// the caller so the host can warn about it.
type ValidationError struct {
	Index   int
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("record %d: %s: %s", e.Index, e.Field, e.Message)
}

// RawRecord is the wire form of one captured operation as supplied by
// the host. Two historic capture formats are accepted: the current one
// reports duration_ms and row_count, the legacy one reports time (in
// seconds) and rows.
type RawRecord struct {
	Query    string  `json:"query"`
	Bindings []any   `json:"bindings,omitempty"`
	Duration float64 `json:"duration_ms,omitempty"`
	Time     float64 `json:"time,omitempty"`
	RowCount *int64  `json:"row_count,omitempty"`
	Rows     *int64  `json:"rows,omitempty"`
	Origin   []Frame `json:"origin,omitempty"`
}

// New validates and normalizes one raw record into an OperationTrace.
// Normalization happens before validation: the legacy rows key is folded
// into row_count, and a positive legacy time value below 1 is taken to
// be seconds and scaled to milliseconds. Values reported through
// duration_ms are already in milliseconds and are never rescaled; a
// 0.5ms operation stays 0.5ms.
func New(index int, rec RawRecord) (*OperationTrace, error) {
	duration := rec.Duration
	if duration == 0 && rec.Time != 0 {
		duration = rec.Time
		if duration > 0 && duration < 1 {
			duration *= 1000
		}
	}

	rowCount := rec.RowCount
	if rowCount == nil {
		rowCount = rec.Rows
	}

	if rec.Query == "" {
		return nil, &ValidationError{Index: index, Field: "query", Message: "statement text must not be empty"}
	}
	if duration < 0 {
		return nil, &ValidationError{Index: index, Field: "duration_ms", Message: fmt.Sprintf("duration must not be negative, got %v", duration)}
	}
	if rowCount != nil && *rowCount < 0 {
		return nil, &ValidationError{Index: index, Field: "row_count", Message: fmt.Sprintf("row count must not be negative, got %d", *rowCount)}
	}

	params := orderedmap.NewOrderedMap[string, any]()
	for i, v := range rec.Bindings {
		params.Set(fmt.Sprintf("%d", i+1), v)
	}

	var rc *int64
	if rowCount != nil {
		v := *rowCount
		rc = &v
	}

	return &OperationTrace{
		Text:       rec.Query,
		Params:     params,
		DurationMs: duration,
		RowCount:   rc,
		Origin:     append([]Frame(nil), rec.Origin...),
	}, nil
}

// Ingest converts a capture batch into operation traces. Malformed
// records are dropped and reported in the returned error slice; they
// never abort the rest of the batch.
func Ingest(records []RawRecord) ([]*OperationTrace, []*ValidationError) {
	traces := make([]*OperationTrace, 0, len(records))
	var dropped []*ValidationError

	for i, rec := range records {
		t, err := New(i, rec)
		if err != nil {
			var verr *ValidationError
			if e, ok := err.(*ValidationError); ok {
				verr = e
			} else {
				verr = &ValidationError{Index: i, Field: "record", Message: err.Error()}
			}
			dropped = append(dropped, verr)
			continue
		}
		traces = append(traces, t)
	}

	return traces, dropped
}
