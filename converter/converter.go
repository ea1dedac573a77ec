// Package converter turns hatchtest scripts into Cypress test code.
//
// A script is a sequence of lines. Each line is matched against an ordered
// rule table (first match wins), then against the call form
// name(arg, arg, ...). Matched lines become tokens, which the emitter renders
// inside it-blocks:
//
//	it logs in
//	  go to https://example.test/login
//	  type admin into #user
//	  click #submit
//	  url should include /dashboard
//	end
//
// Lines that match nothing do not stop the conversion. They are listed in a
// trailing warning block that starts with WarningHeader.
package converter

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrEmptyInput is returned for empty or whitespace-only input.
	ErrEmptyInput = errors.New("input is empty")
	// ErrNoRecognizedCommands is returned when no line produced a token.
	ErrNoRecognizedCommands = errors.New("no valid commands found in the input, please check your syntax")
)

const (
	// WarningMarker prefixes every line of the warning block.
	WarningMarker = "❌"
	// WarningHeader opens the warning block.
	WarningHeader = WarningMarker + " Warning: The following commands were not recognized:"
)

// Result holds the output of a conversion.
type Result struct {
	// Code is the generated Cypress code, including the warning block.
	Code         string
	Tokens       []Token
	Unrecognized []Unrecognized
}

// HasWarnings reports whether the conversion skipped any line.
func (r *Result) HasWarnings() bool { return len(r.Unrecognized) > 0 }

// Convert converts a script and returns the generated code.
func Convert(input string) (string, error) {
	res, err := ConvertResult(input)
	if err != nil {
		return "", err
	}
	return res.Code, nil
}

// ConvertResult converts a script and returns the code together with the
// tokens and unrecognized lines it was built from.
func ConvertResult(input string) (*Result, error) {
	if strings.TrimSpace(input) == "" {
		return nil, ErrEmptyInput
	}

	tokens, unrecognized := Tokenize(input)
	if len(tokens) == 0 {
		return nil, ErrNoRecognizedCommands
	}

	e := &emitter{}
	for _, tok := range tokens {
		e.emit(tok)
	}
	e.finish()

	if len(unrecognized) > 0 {
		e.w.Blank()
		e.w.Raw(WarningHeader + "\n")
		for _, u := range unrecognized {
			e.w.Raw(fmt.Sprintf("%s Line %d: \"%s\"\n", WarningMarker, u.LineNumber, u.Text))
		}
	}

	return &Result{
		Code:         strings.TrimSpace(e.w.String()),
		Tokens:       tokens,
		Unrecognized: unrecognized,
	}, nil
}

// Tokenize splits input into lines and tokenizes each one. Lines that produce
// no token and are neither blank nor comment-marked are returned as
// unrecognized.
func Tokenize(input string) ([]Token, []Unrecognized) {
	var tokens []Token
	var unrecognized []Unrecognized
	for i, line := range strings.Split(input, "\n") {
		if tok := TokenizeLine(line); tok != nil {
			tok.LineNumber = i + 1
			tokens = append(tokens, *tok)
			continue
		}
		if !isSilent(line) {
			unrecognized = append(unrecognized, Unrecognized{LineNumber: i + 1, Text: strings.TrimSpace(line)})
		}
	}
	return tokens, unrecognized
}

// HasWarnings reports whether converted output carries a warning block.
func HasWarnings(output string) bool {
	return strings.Contains(output, WarningHeader)
}
