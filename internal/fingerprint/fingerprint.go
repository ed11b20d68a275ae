// Package fingerprint derives literal-invariant signatures from SQL text.
//
// Two statements that differ only in literal values or incidental
// whitespace produce the same fingerprint, which makes the fingerprint
// usable both for repeated-shape clustering and for collapsing duplicate
// operations inside a single issue.
package fingerprint

import (
	"strings"
	"unicode"
)

// placeholder is the canonical token that replaces every literal value
// and bound-parameter marker.
const placeholder = "?"

// keywords is the set of reserved words folded to upper case during
// normalization. Identifiers keep their original case.
var keywords = map[string]bool{
	"select": true, "insert": true, "update": true, "delete": true,
	"from": true, "into": true, "values": true, "set": true,
	"where": true, "and": true, "or": true, "not": true, "in": true,
	"is": true, "null": true, "like": true, "between": true,
	"join": true, "inner": true, "left": true, "right": true,
	"outer": true, "cross": true, "on": true, "as": true,
	"group": true, "by": true, "having": true, "order": true,
	"asc": true, "desc": true, "limit": true, "offset": true,
	"union": true, "all": true, "distinct": true, "exists": true,
	"case": true, "when": true, "then": true, "else": true, "end": true,
	"count": true, "sum": true, "avg": true, "min": true, "max": true,
	"explain": true, "returning": true, "for": true, "lock": true,
	"share": true, "begin": true, "commit": true, "rollback": true,
}

// Fingerprint reduces a statement to its shape: literal numbers, quoted
// strings, and bound-parameter markers collapse to a single placeholder,
// runs of whitespace collapse to single spaces, and reserved keywords are
// folded to upper case. The function is pure and total; malformed input
// (for example an unterminated string) still produces a deterministic
// result. Applying it to its own output returns the output unchanged.
func Fingerprint(text string) string {
	var tokens []string
	runes := []rune(text)
	i := 0
	n := len(runes)

	for i < n {
		r := runes[i]
		switch {
		case unicode.IsSpace(r):
			i++

		case r == '\'' || r == '"' || r == '`':
			quote := r
			j := i + 1
			for j < n {
				if runes[j] == '\\' && j+1 < n {
					j += 2
					continue
				}
				if runes[j] == quote {
					// Doubled quote is an escape inside the literal.
					if j+1 < n && runes[j+1] == quote {
						j += 2
						continue
					}
					break
				}
				j++
			}
			if quote == '`' {
				// Backticks quote identifiers, not values; keep the
				// name. The unwrapped name gets the same keyword
				// folding as a bare word, so reapplying the function
				// to its own output changes nothing.
				var name string
				if j < n {
					name = string(runes[i+1 : j])
					i = j + 1
				} else {
					name = string(runes[i+1:])
					i = n
				}
				if keywords[strings.ToLower(name)] {
					name = strings.ToUpper(name)
				}
				tokens = append(tokens, name)
			} else {
				tokens = append(tokens, placeholder)
				if j < n {
					i = j + 1
				} else {
					i = n
				}
			}

		case unicode.IsDigit(r), r == '.' && i+1 < n && unicode.IsDigit(runes[i+1]):
			j := i
			for j < n && (unicode.IsDigit(runes[j]) || runes[j] == '.' ||
				runes[j] == 'e' || runes[j] == 'E' ||
				((runes[j] == '+' || runes[j] == '-') && j > i && (runes[j-1] == 'e' || runes[j-1] == 'E'))) {
				j++
			}
			tokens = append(tokens, placeholder)
			i = j

		case r == '?':
			tokens = append(tokens, placeholder)
			i++

		case (r == '$' || r == '@') && i+1 < n && isWordRune(runes[i+1]):
			// Positional ($1) and named (@name) parameter markers.
			j := i + 1
			for j < n && isWordRune(runes[j]) {
				j++
			}
			tokens = append(tokens, placeholder)
			i = j

		case r == ':' && i+1 < n && isWordStart(runes[i+1]):
			j := i + 1
			for j < n && isWordRune(runes[j]) {
				j++
			}
			tokens = append(tokens, placeholder)
			i = j

		case isWordStart(r):
			j := i
			for j < n && isWordRune(runes[j]) {
				j++
			}
			word := string(runes[i:j])
			if keywords[strings.ToLower(word)] {
				word = strings.ToUpper(word)
			}
			tokens = append(tokens, word)
			i = j

		default:
			tokens = append(tokens, string(r))
			i++
		}
	}

	return strings.Join(tokens, " ")
}

func isWordStart(r rune) bool {
	return unicode.IsLetter(r) || r == '_'
}

func isWordRune(r rune) bool {
	return unicode.IsLetter(r) || unicode.IsDigit(r) || r == '_'
}
