// Package diag provides the injected diagnostic capability used by
// in-depth analyzers: obtaining an execution plan for a statement from a
// live connection. Failures here are analyzer-local by contract; the
// pipeline never aborts because a capability is unreachable.
package diag

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"
)

// ErrUnavailable is the typed failure returned when the diagnostic
// capability cannot be reached (no connection, timeout, query failure).
var ErrUnavailable = errors.New("diagnostic capability unavailable")

// Plan is the structured summary of one execution plan.
type Plan struct {
	// NodeType is the access method reported by the database
	// (e.g. "ALL", "ref", "SCAN TABLE").
	NodeType string

	// Relation is the table or index the plan node touches.
	Relation string

	// Rows is the planner's row estimate for the node. Zero when the
	// database did not report one.
	Rows int64

	// FullScan reports whether the node reads the whole relation.
	FullScan bool

	// Summary is a human-readable one-line description of the plan.
	Summary string
}

// Explainer obtains an execution plan for a statement. Implementations
// must respect context cancellation and apply their own bounded timeout.
type Explainer interface {
	ExplainPlan(ctx context.Context, query string, args ...any) (*Plan, error)
}

// SQLExplainer implements Explainer over database/sql. It understands
// the tabular EXPLAIN output of MySQL and the step list of SQLite's
// EXPLAIN QUERY PLAN; other engines fall back to a textual summary.
type SQLExplainer struct {
	db      *sql.DB
	driver  string
	timeout time.Duration
}

// NewSQLExplainer wraps a connection. The driver name selects the
// statement form the engine answers with a plan: SQLite needs EXPLAIN
// QUERY PLAN (plain EXPLAIN yields the opcode listing), everything
// else gets plain EXPLAIN. The timeout bounds every plan lookup; a
// non-positive value falls back to two seconds.
func NewSQLExplainer(db *sql.DB, driver string, timeout time.Duration) *SQLExplainer {
	if timeout <= 0 {
		timeout = 2 * time.Second
	}
	return &SQLExplainer{db: db, driver: driver, timeout: timeout}
}

// statement prepends the driver's plan-request form to a query.
func (e *SQLExplainer) statement(query string) string {
	if e.driver == "sqlite" || e.driver == "sqlite3" {
		return "EXPLAIN QUERY PLAN " + query
	}
	return "EXPLAIN " + query
}

// ExplainPlan requests the execution plan for the statement and
// summarizes the first plan node. All failure modes wrap
// ErrUnavailable.
func (e *SQLExplainer) ExplainPlan(ctx context.Context, query string, args ...any) (*Plan, error) {
	if e.db == nil {
		return nil, fmt.Errorf("no connection configured: %w", ErrUnavailable)
	}

	ctx, cancel := context.WithTimeout(ctx, e.timeout)
	defer cancel()

	rows, err := e.db.QueryContext(ctx, e.statement(query), args...)
	if err != nil {
		return nil, fmt.Errorf("explain failed: %v: %w", err, ErrUnavailable)
	}
	defer func() { _ = rows.Close() }()

	cols, err := rows.Columns()
	if err != nil {
		return nil, fmt.Errorf("reading plan columns: %v: %w", err, ErrUnavailable)
	}

	if !rows.Next() {
		if err := rows.Err(); err != nil {
			return nil, fmt.Errorf("reading plan: %v: %w", err, ErrUnavailable)
		}
		return nil, fmt.Errorf("empty plan: %w", ErrUnavailable)
	}

	// Scan the first row generically; EXPLAIN column sets differ by
	// engine and version.
	values := make([]any, len(cols))
	ptrs := make([]any, len(cols))
	for i := range values {
		ptrs[i] = &values[i]
	}
	if err := rows.Scan(ptrs...); err != nil {
		return nil, fmt.Errorf("scanning plan row: %v: %w", err, ErrUnavailable)
	}

	byName := make(map[string]any, len(cols))
	for i, col := range cols {
		v := values[i]
		if b, ok := v.([]byte); ok {
			v = string(b)
		}
		byName[strings.ToLower(col)] = v
	}

	return summarize(byName), nil
}

// summarize builds a Plan from one EXPLAIN row keyed by lowered column
// name.
func summarize(row map[string]any) *Plan {
	plan := &Plan{}

	// MySQL tabular EXPLAIN: type, table, rows, key.
	if access, ok := asString(row["type"]); ok {
		plan.NodeType = access
		plan.FullScan = strings.EqualFold(access, "ALL")
		if table, ok := asString(row["table"]); ok {
			plan.Relation = table
		}
		plan.Rows = asInt64(row["rows"])
		if key, ok := asString(row["key"]); ok && key != "" {
			plan.Summary = fmt.Sprintf("%s access on %s using %s (~%d rows)", plan.NodeType, plan.Relation, key, plan.Rows)
		} else {
			plan.Summary = fmt.Sprintf("%s access on %s, no index (~%d rows)", plan.NodeType, plan.Relation, plan.Rows)
		}
		return plan
	}

	// SQLite EXPLAIN QUERY PLAN: a detail column like
	// "SCAN users" or "SEARCH users USING INDEX idx_users_email".
	if detail, ok := asString(row["detail"]); ok {
		plan.Summary = detail
		plan.FullScan = strings.HasPrefix(detail, "SCAN")
		fields := strings.Fields(detail)
		if len(fields) > 0 {
			plan.NodeType = fields[0]
		}
		if len(fields) > 1 {
			plan.Relation = strings.TrimPrefix(fields[1], "TABLE")
			if plan.Relation == "" && len(fields) > 2 {
				plan.Relation = fields[2]
			}
		}
		return plan
	}

	// Unknown engine: join whatever text we got.
	var parts []string
	for _, v := range row {
		if s, ok := asString(v); ok && s != "" {
			parts = append(parts, s)
		}
	}
	plan.Summary = strings.Join(parts, " ")
	plan.FullScan = strings.Contains(strings.ToLower(plan.Summary), "full scan") ||
		strings.Contains(strings.ToLower(plan.Summary), "seq scan")
	return plan
}

func asString(v any) (string, bool) {
	switch s := v.(type) {
	case string:
		return s, true
	case []byte:
		return string(s), true
	}
	return "", false
}

func asInt64(v any) int64 {
	switch n := v.(type) {
	case int64:
		return n
	case int:
		return int64(n)
	case float64:
		return int64(n)
	case []byte:
		return parseInt(string(n))
	case string:
		return parseInt(n)
	}
	return 0
}

func parseInt(s string) int64 {
	var n int64
	for _, r := range s {
		if r < '0' || r > '9' {
			return 0
		}
		n = n*10 + int64(r-'0')
	}
	return n
}
