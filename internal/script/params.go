package script

import (
	"regexp"
	"sort"
)

// identifierRe matches bare identifier tokens. It is applied after
// stripping comments and string/template literals, so what remains is
// either a real identifier reference or a property name following a dot
// (which identifierRe also matches but callers filter via precededByDot).
var identifierRe = regexp.MustCompile(`[A-Za-z_$][A-Za-z0-9_$]*`)

// reservedWords are ECMAScript keywords and literals that can never be a
// free parameter reference.
var reservedWords = map[string]bool{
	"break": true, "case": true, "catch": true, "class": true, "const": true,
	"continue": true, "debugger": true, "default": true, "delete": true,
	"do": true, "else": true, "export": true, "extends": true, "finally": true,
	"for": true, "function": true, "if": true, "import": true, "in": true,
	"instanceof": true, "let": true, "new": true, "return": true, "super": true,
	"switch": true, "this": true, "throw": true, "try": true, "typeof": true,
	"var": true, "void": true, "while": true, "with": true, "yield": true,
	"true": true, "false": true, "null": true, "undefined": true, "NaN": true,
	"Infinity": true, "async": true, "await": true, "static": true, "get": true,
	"set": true, "of": true,
}

// builtinGlobals are names available in every goja runtime that should
// never be reported as a caller-supplied parameter.
var builtinGlobals = map[string]bool{
	"Object": true, "Array": true, "Function": true, "String": true,
	"Number": true, "Boolean": true, "Math": true, "JSON": true, "Date": true,
	"RegExp": true, "Error": true, "TypeError": true, "RangeError": true,
	"console": true, "parseInt": true, "parseFloat": true, "isNaN": true,
	"isFinite": true, "Symbol": true, "Map": true, "Set": true, "Promise": true,
}

// stripNoise removes line comments, block comments, and quoted string
// literals, replacing each with spaces of equal length so that reported
// identifier positions within the *original* source still line up (not
// used by callers today, but keeps the scanner future-proof for
// position-aware diagnostics).
func stripNoise(src string) string {
	out := []byte(src)
	n := len(out)
	i := 0
	for i < n {
		c := out[i]
		switch {
		case c == '/' && i+1 < n && out[i+1] == '/':
			for i < n && out[i] != '\n' {
				out[i] = ' '
				i++
			}
		case c == '/' && i+1 < n && out[i+1] == '*':
			out[i], out[i+1] = ' ', ' '
			i += 2
			for i+1 < n && !(out[i] == '*' && out[i+1] == '/') {
				if out[i] != '\n' {
					out[i] = ' '
				}
				i++
			}
			if i+1 < n {
				out[i], out[i+1] = ' ', ' '
				i += 2
			}
		case c == '\'' || c == '"' || c == '`':
			quote := c
			out[i] = ' '
			i++
			for i < n && out[i] != quote {
				if out[i] == '\\' && i+1 < n {
					out[i] = ' '
					i++
				}
				if i < n && out[i] != '\n' {
					out[i] = ' '
				}
				i++
			}
			if i < n {
				out[i] = ' '
				i++
			}
		default:
			i++
		}
	}
	return string(out)
}

// GetParams returns the free identifiers referenced in source that are not
// already bound in the namespace (from import_code/from_import_code and the
// kernel functions) and are not reserved words, builtin globals, or a
// property name following a dot. The result is the set of names a caller
// must supply as kwargs to eval the expression — this module's equivalent
// of the original's ast.walk-based free-variable scan, implemented as a
// lexical pass since goja's AST node layout is not something this module
// can assume without being able to verify it against the library directly.
func GetParams(source string, bound map[string]bool) []string {
	clean := stripNoise(source)
	seen := map[string]bool{}
	var out []string

	matches := identifierRe.FindAllStringIndex(clean, -1)
	for _, m := range matches {
		start, end := m[0], m[1]
		name := clean[start:end]

		if precededByDot(clean, start) {
			continue
		}
		if start > 0 && clean[start-1] >= '0' && clean[start-1] <= '9' {
			continue // tail of a numeric literal such as 1e3 or 0xff
		}
		if reservedWords[name] || builtinGlobals[name] || bound[name] {
			continue
		}
		if seen[name] {
			continue
		}
		seen[name] = true
		out = append(out, name)
	}

	sort.Strings(out)
	return out
}

// precededByDot reports whether the identifier starting at start is a
// property access (e.g. the "code" in "x.code"), which is never a free
// variable reference in its own right.
func precededByDot(src string, start int) bool {
	i := start - 1
	for i >= 0 && (src[i] == ' ' || src[i] == '\t' || src[i] == '\n') {
		i--
	}
	return i >= 0 && src[i] == '.'
}

