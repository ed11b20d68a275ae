package analyzer

import (
	"context"
	"testing"

	"github.com/sondelabs/querywatch/internal/source"
)

const exposedHandler = `package api

func (u *User) Profile() map[string]any {
	return map[string]any{
		"name":     u.Name,
		"password": u.Password,
	}
}
`

const cleanHandler = `package api

func (u *User) Profile() map[string]any {
	return map[string]any{"name": u.Name}
}
`

func mustParse(t *testing.T, src string) *source.Fragment {
	t.Helper()
	frag, err := source.Parse("handler.go", []byte(src))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	return frag
}

func TestSensitiveFieldsFindingPerFragment(t *testing.T) {
	pass := NewContext(nil, nil)
	pass.Fragments = []*source.Fragment{mustParse(t, exposedHandler)}
	pass.SensitiveFields = []string{"password", "ssn"}

	findings, err := SensitiveFields{}.Analyze(context.Background(), pass)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(findings) != 1 {
		t.Fatalf("expected 1 finding, got %d", len(findings))
	}
	f := findings[0]
	if f.Metrics["fields"] != 1 {
		t.Errorf("fields = %v, want 1", f.Metrics["fields"])
	}
	if f.Origin == nil || f.Origin.File != "handler.go" {
		t.Errorf("origin = %v, want handler.go", f.Origin)
	}
}

func TestSensitiveFieldsCleanFragmentSilent(t *testing.T) {
	pass := NewContext(nil, nil)
	pass.Fragments = []*source.Fragment{mustParse(t, cleanHandler)}
	pass.SensitiveFields = []string{"password"}

	findings, err := SensitiveFields{}.Analyze(context.Background(), pass)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(findings) != 0 {
		t.Fatalf("expected no findings, got %d", len(findings))
	}
}

func TestSensitiveFieldsEmptyVocabularySilent(t *testing.T) {
	pass := NewContext(nil, nil)
	pass.Fragments = []*source.Fragment{mustParse(t, exposedHandler)}

	findings, err := SensitiveFields{}.Analyze(context.Background(), pass)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(findings) != 0 {
		t.Fatalf("expected no findings without a vocabulary, got %d", len(findings))
	}
}
