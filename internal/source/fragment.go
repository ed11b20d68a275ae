// Package source inspects parsed Go fragments for structural patterns
// that leak sensitive data. It operates on the syntax tree rather than
// raw text so that comments, unrelated string literals, and formatting
// differences cannot produce false matches.
package source

import (
	"fmt"
	"go/ast"
	"go/parser"
	"go/token"
	"os"
	"path/filepath"
	"strings"
)

// Fragment is one parsed code unit.
type Fragment struct {
	// Path identifies the fragment in findings; usually a file path.
	Path string

	file *ast.File
	fset *token.FileSet
}

// Parse parses a code fragment. The source must be a complete file
// (package clause included); fragments are standalone snippets, so they
// are parsed directly instead of being loaded as part of a build.
func Parse(path string, src []byte) (*Fragment, error) {
	fset := token.NewFileSet()
	file, err := parser.ParseFile(fset, path, src, parser.SkipObjectResolution)
	if err != nil {
		return nil, fmt.Errorf("parsing fragment %s: %w", path, err)
	}
	return &Fragment{Path: path, file: file, fset: fset}, nil
}

// LoadDir parses every .go file under dir, skipping test files. Parse
// failures are returned alongside the fragments that did parse.
func LoadDir(dir string) ([]*Fragment, []error) {
	var fragments []*Fragment
	var errs []error

	walkErr := filepath.WalkDir(dir, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || !strings.HasSuffix(path, ".go") || strings.HasSuffix(path, "_test.go") {
			return nil
		}
		src, readErr := os.ReadFile(path)
		if readErr != nil {
			errs = append(errs, readErr)
			return nil
		}
		frag, parseErr := Parse(path, src)
		if parseErr != nil {
			errs = append(errs, parseErr)
			return nil
		}
		fragments = append(fragments, frag)
		return nil
	})
	if walkErr != nil {
		errs = append(errs, walkErr)
	}

	return fragments, errs
}

// position resolves a token position within the fragment.
func (f *Fragment) position(pos token.Pos) token.Position {
	return f.fset.Position(pos)
}

// decls returns the top-level declarations of the fragment.
func (f *Fragment) decls() []ast.Decl {
	return f.file.Decls
}
