package source

import (
	"go/ast"
	"go/token"
	"strings"
	"unicode"
	"unicode/utf8"
)

// Match is one sensitive-field exposure found in a fragment.
type Match struct {
	// Field is the resolved field name in its configured (decapitalized)
	// form, regardless of which pattern family produced it.
	Field string `json:"field"`
	File  string `json:"file"`
	Line  int    `json:"line"`
}

// SensitiveFieldVisitor walks a fragment once and accumulates exposures
// of configured sensitive field names. Three independent pattern
// families are recognized:
//
//  1. a map-literal entry whose string key equals a configured name,
//  2. an accessor call on the enclosing method's receiver whose name is
//     Get<Name> with <Name> decapitalizing to a configured name,
//  3. a direct field read on the receiver whose name decapitalizes to a
//     configured name.
//
// The visitor only reads the tree; matches are deduplicated by field
// name within one fragment.
type SensitiveFieldVisitor struct {
	vocabulary map[string]bool
	matches    []Match
	seen       map[string]bool
	recv       string
	frag       *Fragment
}

// NewSensitiveFieldVisitor builds a visitor for the given vocabulary of
// sensitive names (expected in decapitalized form, e.g. "password").
func NewSensitiveFieldVisitor(names []string) *SensitiveFieldVisitor {
	vocab := make(map[string]bool, len(names))
	for _, n := range names {
		vocab[n] = true
	}
	return &SensitiveFieldVisitor{
		vocabulary: vocab,
		seen:       make(map[string]bool),
	}
}

// Walk inspects one fragment. It may be called for multiple fragments;
// deduplication applies per fragment.
func (v *SensitiveFieldVisitor) Walk(frag *Fragment) {
	v.frag = frag
	v.seen = make(map[string]bool)

	for _, decl := range frag.decls() {
		fn, ok := decl.(*ast.FuncDecl)
		if ok {
			v.recv = receiverName(fn)
			if fn.Body != nil {
				ast.Inspect(fn.Body, v.inspect)
			}
			v.recv = ""
			continue
		}
		ast.Inspect(decl, v.inspect)
	}
}

// Matches returns the accumulated matches in first-seen order.
func (v *SensitiveFieldVisitor) Matches() []Match {
	return v.matches
}

// MatchedFields returns just the resolved field names, first-seen order.
func (v *SensitiveFieldVisitor) MatchedFields() []string {
	fields := make([]string, len(v.matches))
	for i, m := range v.matches {
		fields[i] = m.Field
	}
	return fields
}

// HasMatches reports whether any exposure was found.
func (v *SensitiveFieldVisitor) HasMatches() bool {
	return len(v.matches) > 0
}

func (v *SensitiveFieldVisitor) inspect(node ast.Node) bool {
	switch n := node.(type) {
	case *ast.KeyValueExpr:
		// Family 1: map-literal entry with a string key.
		if lit, ok := n.Key.(*ast.BasicLit); ok && lit.Kind == token.STRING {
			key := strings.Trim(lit.Value, `"`+"`")
			if v.vocabulary[key] {
				v.record(key, lit.Pos())
			}
		}

	case *ast.CallExpr:
		// Family 2: receiver accessor call Get<Name>().
		if sel, ok := n.Fun.(*ast.SelectorExpr); ok && v.isReceiver(sel.X) {
			if name, ok := accessorField(sel.Sel.Name); ok && v.vocabulary[name] {
				v.record(name, sel.Sel.Pos())
			}
		}

	case *ast.SelectorExpr:
		// Family 3: direct field read on the receiver. Accessor calls
		// are handled above; their selector resolves to a get-prefixed
		// name and falls out of the vocabulary here.
		if v.isReceiver(n.X) {
			if name := decapitalize(n.Sel.Name); v.vocabulary[name] {
				v.record(name, n.Sel.Pos())
			}
		}
	}
	return true
}

func (v *SensitiveFieldVisitor) record(field string, pos token.Pos) {
	if v.seen[field] {
		return
	}
	v.seen[field] = true
	p := v.frag.position(pos)
	v.matches = append(v.matches, Match{Field: field, File: p.Filename, Line: p.Line})
}

func (v *SensitiveFieldVisitor) isReceiver(expr ast.Expr) bool {
	if v.recv == "" {
		return false
	}
	ident, ok := expr.(*ast.Ident)
	return ok && ident.Name == v.recv
}

// receiverName extracts the receiver identifier of a method, or "" for
// plain functions and unnamed receivers.
func receiverName(fn *ast.FuncDecl) string {
	if fn.Recv == nil || len(fn.Recv.List) == 0 || len(fn.Recv.List[0].Names) == 0 {
		return ""
	}
	return fn.Recv.List[0].Names[0].Name
}

// accessorField maps an accessor name following the Get<Name> convention
// to its decapitalized field name. Returns false for names that do not
// follow the convention.
func accessorField(method string) (string, bool) {
	rest, ok := strings.CutPrefix(method, "Get")
	if !ok || rest == "" {
		return "", false
	}
	first, _ := utf8.DecodeRuneInString(rest)
	if !unicode.IsUpper(first) {
		return "", false
	}
	return decapitalize(rest), true
}

// decapitalize lowers the initial rune of a name.
func decapitalize(s string) string {
	if s == "" {
		return s
	}
	r, size := utf8.DecodeRuneInString(s)
	return string(unicode.ToLower(r)) + s[size:]
}
