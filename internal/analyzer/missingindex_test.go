package analyzer

import (
	"context"
	"errors"
	"testing"

	"github.com/sondelabs/querywatch/internal/diag"
	"github.com/sondelabs/querywatch/internal/metacache"
	"github.com/sondelabs/querywatch/internal/trace"
)

type fakeExplainer struct {
	plans map[string]*diag.Plan
	err   error
	calls int
}

func (f *fakeExplainer) ExplainPlan(_ context.Context, query string, _ ...any) (*diag.Plan, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	if p, ok := f.plans[query]; ok {
		return p, nil
	}
	return &diag.Plan{}, nil
}

func TestMissingIndexFlagsFullScan(t *testing.T) {
	query := "SELECT * FROM orders WHERE customer_id = 42"
	exp := &fakeExplainer{plans: map[string]*diag.Plan{
		query: {Relation: "orders", Rows: 50000, FullScan: true, Summary: "full table scan on orders"},
	}}

	pass := NewContext([]*trace.OperationTrace{op(query, 3)}, nil)
	pass.Explainer = exp
	pass.Cache = metacache.New()

	findings, err := MissingIndex{}.Analyze(context.Background(), pass)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(findings) != 1 {
		t.Fatalf("expected 1 finding, got %d", len(findings))
	}
	f := findings[0]
	if f.Metrics["rows"] != 50000 {
		t.Errorf("rows = %v, want 50000", f.Metrics["rows"])
	}
	if f.Params["table"] != "orders" {
		t.Errorf("table = %q, want orders", f.Params["table"])
	}
}

func TestMissingIndexIndexedPlanIgnored(t *testing.T) {
	query := "SELECT * FROM orders WHERE id = 1"
	exp := &fakeExplainer{plans: map[string]*diag.Plan{
		query: {Relation: "orders", Rows: 1, FullScan: false},
	}}

	pass := NewContext([]*trace.OperationTrace{op(query, 1)}, nil)
	pass.Explainer = exp
	pass.Cache = metacache.New()

	findings, err := MissingIndex{}.Analyze(context.Background(), pass)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(findings) != 0 {
		t.Fatalf("indexed access must not be flagged, got %d findings", len(findings))
	}
}

func TestMissingIndexNoExplainerReportsNothing(t *testing.T) {
	pass := NewContext([]*trace.OperationTrace{op("SELECT * FROM t", 1)}, nil)

	findings, err := MissingIndex{}.Analyze(context.Background(), pass)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if findings != nil {
		t.Fatalf("no plan source configured, want no findings, got %d", len(findings))
	}
}

func TestMissingIndexCapabilityFailurePropagates(t *testing.T) {
	exp := &fakeExplainer{err: diag.ErrUnavailable}

	pass := NewContext([]*trace.OperationTrace{op("SELECT * FROM t WHERE x = 1", 1)}, nil)
	pass.Explainer = exp
	pass.Cache = metacache.New()

	_, err := MissingIndex{}.Analyze(context.Background(), pass)
	if !errors.Is(err, diag.ErrUnavailable) {
		t.Fatalf("expected ErrUnavailable, got %v", err)
	}
}

func TestMissingIndexOnePlanPerShapeAndCacheReuse(t *testing.T) {
	exp := &fakeExplainer{plans: map[string]*diag.Plan{}}
	cache := metacache.New()

	traces := []*trace.OperationTrace{
		op("SELECT * FROM orders WHERE customer_id = 1", 1),
		op("SELECT * FROM orders WHERE customer_id = 2", 1),
		op("SELECT * FROM orders WHERE customer_id = 3", 1),
	}

	pass := NewContext(traces, nil)
	pass.Explainer = exp
	pass.Cache = cache
	if _, err := (MissingIndex{}).Analyze(context.Background(), pass); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if exp.calls != 1 {
		t.Fatalf("same shape must be explained once, got %d calls", exp.calls)
	}

	// A later pass over the same shape reuses the cached plan.
	pass2 := NewContext(traces[:1], nil)
	pass2.Explainer = exp
	pass2.Cache = cache
	if _, err := (MissingIndex{}).Analyze(context.Background(), pass2); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if exp.calls != 1 {
		t.Fatalf("cached shape must not be re-explained, got %d calls", exp.calls)
	}
}

func TestMissingIndexNonSelectSkipped(t *testing.T) {
	exp := &fakeExplainer{plans: map[string]*diag.Plan{}}

	pass := NewContext([]*trace.OperationTrace{op("DELETE FROM t WHERE x = 1", 1)}, nil)
	pass.Explainer = exp
	pass.Cache = metacache.New()

	if _, err := (MissingIndex{}).Analyze(context.Background(), pass); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if exp.calls != 0 {
		t.Fatalf("non-SELECT must not be explained, got %d calls", exp.calls)
	}
}
