package diag

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
)

func TestExplainPlan_MySQLFullScan(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("failed to create mock: %v", err)
	}
	defer func() { _ = db.Close() }()

	cols := []string{"id", "select_type", "table", "type", "possible_keys", "key", "rows", "Extra"}
	mock.ExpectQuery("EXPLAIN SELECT \\* FROM users WHERE email = \\?").
		WithArgs("a@b.c").
		WillReturnRows(sqlmock.NewRows(cols).
			AddRow(1, "SIMPLE", "users", "ALL", nil, "", 54321, "Using where"))

	e := NewSQLExplainer(db, "mysql", time.Second)
	plan, err := e.ExplainPlan(context.Background(), "SELECT * FROM users WHERE email = ?", "a@b.c")
	if err != nil {
		t.Fatalf("ExplainPlan failed: %v", err)
	}

	if !plan.FullScan {
		t.Error("access type ALL should be reported as a full scan")
	}
	if plan.Relation != "users" {
		t.Errorf("expected relation users, got %q", plan.Relation)
	}
	if plan.Rows != 54321 {
		t.Errorf("expected 54321 estimated rows, got %d", plan.Rows)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}

func TestExplainPlan_MySQLIndexedAccess(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("failed to create mock: %v", err)
	}
	defer func() { _ = db.Close() }()

	cols := []string{"id", "select_type", "table", "type", "possible_keys", "key", "rows", "Extra"}
	mock.ExpectQuery("EXPLAIN SELECT").
		WillReturnRows(sqlmock.NewRows(cols).
			AddRow(1, "SIMPLE", "users", "ref", "idx_email", "idx_email", 1, ""))

	e := NewSQLExplainer(db, "mysql", time.Second)
	plan, err := e.ExplainPlan(context.Background(), "SELECT * FROM users WHERE email = ?", "a@b.c")
	if err != nil {
		t.Fatalf("ExplainPlan failed: %v", err)
	}
	if plan.FullScan {
		t.Error("ref access is not a full scan")
	}
	if plan.Rows != 1 {
		t.Errorf("expected 1 row, got %d", plan.Rows)
	}
}

func TestExplainPlan_SQLiteDetail(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("failed to create mock: %v", err)
	}
	defer func() { _ = db.Close() }()

	// SQLite answers with the id/parent/notused/detail step list only
	// for EXPLAIN QUERY PLAN; plain EXPLAIN returns an opcode listing.
	cols := []string{"id", "parent", "notused", "detail"}
	mock.ExpectQuery("EXPLAIN QUERY PLAN SELECT").
		WillReturnRows(sqlmock.NewRows(cols).AddRow(2, 0, 0, "SCAN users"))

	e := NewSQLExplainer(db, "sqlite", time.Second)
	plan, err := e.ExplainPlan(context.Background(), "SELECT * FROM users")
	if err != nil {
		t.Fatalf("ExplainPlan failed: %v", err)
	}
	if !plan.FullScan {
		t.Errorf("SCAN step should be a full scan, summary %q", plan.Summary)
	}
	if plan.Relation != "users" {
		t.Errorf("expected relation users, got %q", plan.Relation)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}

func TestExplainPlan_SQLiteIndexedSearch(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("failed to create mock: %v", err)
	}
	defer func() { _ = db.Close() }()

	cols := []string{"id", "parent", "notused", "detail"}
	mock.ExpectQuery("EXPLAIN QUERY PLAN SELECT").
		WillReturnRows(sqlmock.NewRows(cols).
			AddRow(3, 0, 0, "SEARCH users USING INDEX idx_users_email (email=?)"))

	e := NewSQLExplainer(db, "sqlite", time.Second)
	plan, err := e.ExplainPlan(context.Background(), "SELECT * FROM users WHERE email = ?", "a@b.c")
	if err != nil {
		t.Fatalf("ExplainPlan failed: %v", err)
	}
	if plan.FullScan {
		t.Errorf("SEARCH step is not a full scan, summary %q", plan.Summary)
	}
}

func TestStatementFormByDriver(t *testing.T) {
	tests := []struct {
		driver string
		want   string
	}{
		{"mysql", "EXPLAIN SELECT 1"},
		{"sqlite", "EXPLAIN QUERY PLAN SELECT 1"},
		{"sqlite3", "EXPLAIN QUERY PLAN SELECT 1"},
		{"", "EXPLAIN SELECT 1"},
	}
	for _, tt := range tests {
		e := NewSQLExplainer(nil, tt.driver, time.Second)
		if got := e.statement("SELECT 1"); got != tt.want {
			t.Errorf("driver %q: statement = %q, want %q", tt.driver, got, tt.want)
		}
	}
}

func TestExplainPlan_QueryErrorWrapsUnavailable(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("failed to create mock: %v", err)
	}
	defer func() { _ = db.Close() }()

	mock.ExpectQuery("EXPLAIN SELECT").WillReturnError(errors.New("connection reset"))

	e := NewSQLExplainer(db, "mysql", time.Second)
	_, err = e.ExplainPlan(context.Background(), "SELECT 1")
	if !errors.Is(err, ErrUnavailable) {
		t.Fatalf("expected ErrUnavailable, got %v", err)
	}
}

func TestExplainPlan_NilConnection(t *testing.T) {
	e := NewSQLExplainer(nil, "mysql", time.Second)
	_, err := e.ExplainPlan(context.Background(), "SELECT 1")
	if !errors.Is(err, ErrUnavailable) {
		t.Fatalf("expected ErrUnavailable, got %v", err)
	}
}

func TestExplainPlan_EmptyPlan(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("failed to create mock: %v", err)
	}
	defer func() { _ = db.Close() }()

	mock.ExpectQuery("EXPLAIN SELECT").
		WillReturnRows(sqlmock.NewRows([]string{"id", "detail"}))

	e := NewSQLExplainer(db, "mysql", time.Second)
	_, err = e.ExplainPlan(context.Background(), "SELECT 1")
	if !errors.Is(err, ErrUnavailable) {
		t.Fatalf("expected ErrUnavailable for empty plan, got %v", err)
	}
}
