package variables

import (
	"context"
	"fmt"
	"sort"
	"strings"
)

// Substitute replaces every standalone occurrence of a variable name in text
// with its value. Names are matched case-sensitively, longest first, so a
// variable "user" never cuts into "username". An occurrence is standalone
// when neither neighbor is a letter, digit, underscore or dash.
//
// Each variable is applied in turn to the result of the previous one, so a
// value that contains another variable's name is substituted again.
func Substitute(text string, vars []Variable) string {
	sorted := make([]Variable, len(vars))
	copy(sorted, vars)
	sort.SliceStable(sorted, func(i, j int) bool {
		return len(sorted[i].Name) > len(sorted[j].Name)
	})

	for _, v := range sorted {
		if v.Name == "" {
			continue
		}
		text = replaceStandalone(text, v.Name, v.Value)
	}
	return text
}

// SubstituteFrom loads the variables from store and substitutes them.
func SubstituteFrom(ctx context.Context, store Store, text string) (string, error) {
	vars, err := store.GetAll(ctx)
	if err != nil {
		return text, fmt.Errorf("loading variables: %w", err)
	}
	return Substitute(text, vars), nil
}

func replaceStandalone(text, name, value string) string {
	var b strings.Builder
	rest := text
	offset := 0
	for {
		i := strings.Index(rest, name)
		if i < 0 {
			break
		}
		start := offset + i
		end := start + len(name)
		if (start == 0 || !isNameByte(text[start-1])) && (end == len(text) || !isNameByte(text[end])) {
			b.WriteString(text[offset:start])
			b.WriteString(value)
			offset = end
		} else {
			// Overlapping occurrences may still stand alone.
			b.WriteString(text[offset : start+1])
			offset = start + 1
		}
		rest = text[offset:]
	}
	if offset == 0 {
		return text
	}
	b.WriteString(rest)
	return b.String()
}

func isNameByte(c byte) bool {
	return c == '_' || c == '-' ||
		('a' <= c && c <= 'z') || ('A' <= c && c <= 'Z') || ('0' <= c && c <= '9')
}
