package converter

import (
	"math"
	"regexp"
	"strconv"
)

// decimalNumber is the JavaScript decimal literal form. Go-only syntax such
// as hex floats or digit separators does not match.
var decimalNumber = regexp.MustCompile(`^[+-]?(\d+\.?\d*|\.\d+)([eE][+-]?\d+)?$`)

// WrapValue turns a raw DSL argument into a JavaScript literal:
//
//  1. already quoted ('…' or "…") → unchanged
//  2. a finite number → unchanged
//  3. exactly true or false → unchanged
//  4. anything else → single-quoted
//
// Embedded single quotes are not escaped, so a value such as it's produces
// an invalid literal. Lint reports those lines.
func WrapValue(raw string) string {
	if isQuoted(raw) {
		return raw
	}
	if isFiniteNumber(raw) {
		return raw
	}
	if raw == "true" || raw == "false" {
		return raw
	}
	return "'" + raw + "'"
}

func isQuoted(s string) bool {
	if len(s) < 2 {
		return false
	}
	first, last := s[0], s[len(s)-1]
	return (first == '"' || first == '\'') && first == last
}

func isFiniteNumber(s string) bool {
	if !decimalNumber.MatchString(s) {
		return false
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return false
	}
	return !math.IsInf(f, 0) && !math.IsNaN(f)
}

func wrapAll(raw []string) []string {
	out := make([]string, len(raw))
	for i, r := range raw {
		out[i] = WrapValue(r)
	}
	return out
}
