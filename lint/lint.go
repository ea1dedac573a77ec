// Package lint checks hatchtest scripts before conversion.
//
// Errors describe lines the converter would turn into broken Cypress code.
// Warnings describe lines it would skip, comment out, or render with
// missing arguments. Hints describe lenient behavior worth knowing about.
package lint

import (
	"fmt"
	"strings"

	"github.com/askvallejos/hatchtest/converter"
	"github.com/askvallejos/hatchtest/scanner"
)

// Severity indicates how serious a diagnostic is.
type Severity int

const (
	SeverityError Severity = iota
	SeverityWarning
	SeverityHint
)

func (s Severity) String() string {
	switch s {
	case SeverityError:
		return "error"
	case SeverityWarning:
		return "warning"
	default:
		return "hint"
	}
}

// Symbol is the single-character marker used in terminal output.
func (s Severity) Symbol() string {
	switch s {
	case SeverityError:
		return "✗"
	case SeverityWarning:
		return "⚠"
	default:
		return "·"
	}
}

// Diagnostic codes.
const (
	CodeUnclosedParen     = "L101"
	CodeUnexpectedParen   = "L102"
	CodeUnterminatedQuote = "L103"
	CodeTypeWithoutInto   = "L104"
	CodeClickNoSelector   = "L105"
	CodeGoToNoURL         = "L106"

	CodeUnrecognized     = "W201"
	CodeUnknownAssertion = "W202"
	CodeStrayQuote       = "W203"
	CodeArgumentCount    = "W204"
	CodeQuotedComma      = "W205"
	CodeUnknownCommand   = "W206"

	CodeEndOutsideBlock = "H301"
	CodeImplicitClose   = "H302"
)

// Diagnostic is a single finding on one script line.
type Diagnostic struct {
	Line       int // 1-based
	Severity   Severity
	Code       string
	Message    string
	Suggestion string // e.g. `did you mean "click"?` (optional)
}

// Format returns a single-line representation without color.
func (d Diagnostic) Format() string {
	return fmt.Sprintf("line %d: %s [%s]", d.Line, d.Message, d.Code)
}

// Diagnostics is the ordered result of Check.
type Diagnostics []Diagnostic

// HasErrors reports whether any diagnostic is an error.
func (ds Diagnostics) HasErrors() bool { return ds.count(SeverityError) > 0 }

// HasWarnings reports whether any diagnostic is a warning.
func (ds Diagnostics) HasWarnings() bool { return ds.count(SeverityWarning) > 0 }

// Errors returns only the error diagnostics.
func (ds Diagnostics) Errors() Diagnostics { return ds.filter(SeverityError) }

// Warnings returns only the warning diagnostics.
func (ds Diagnostics) Warnings() Diagnostics { return ds.filter(SeverityWarning) }

func (ds Diagnostics) count(s Severity) int {
	return len(ds.filter(s))
}

func (ds Diagnostics) filter(s Severity) Diagnostics {
	var out Diagnostics
	for _, d := range ds {
		if d.Severity == s {
			out = append(out, d)
		}
	}
	return out
}

// Format returns a human-friendly multiline string of all diagnostics.
func (ds Diagnostics) Format() string {
	var b strings.Builder
	for i, d := range ds {
		if i > 0 {
			b.WriteString("\n")
		}
		fmt.Fprintf(&b, "%s %s", d.Severity.Symbol(), d.Format())
		if d.Suggestion != "" {
			fmt.Fprintf(&b, "\n  suggestion: %s", d.Suggestion)
		}
	}
	return b.String()
}

// Check lints every non-blank, non-comment line of src.
func Check(src string) Diagnostics {
	c := &checker{}
	for i, raw := range strings.Split(src, "\n") {
		line := strings.TrimSpace(raw)
		if line == "" || converter.IsComment(line) {
			continue
		}
		c.line = i + 1
		c.checkSyntax(line)
		c.checkCommand(line)
	}
	return c.diags
}

type checker struct {
	diags   Diagnostics
	line    int
	inBlock bool
}

func (c *checker) add(sev Severity, code, suggestion, format string, args ...interface{}) {
	c.diags = append(c.diags, Diagnostic{
		Line:       c.line,
		Severity:   sev,
		Code:       code,
		Message:    fmt.Sprintf(format, args...),
		Suggestion: suggestion,
	})
}

// checkSyntax reports problems that produce invalid JavaScript regardless of
// which command the line turns into.
func (c *checker) checkSyntax(line string) {
	sum := scanner.Scan(line)
	if sum.Depth > 0 {
		c.add(SeverityError, CodeUnclosedParen, "", "unclosed parentheses")
	}
	if sum.Underflow {
		c.add(SeverityError, CodeUnexpectedParen, "", "unexpected ')' without matching '('")
	}
	switch sum.Unterminated {
	case '"':
		c.add(SeverityError, CodeUnterminatedQuote, "", "unclosed quotes starting at column %d", sum.OpenedAt+1)
	case '\'':
		c.add(SeverityError, CodeUnterminatedQuote, "", "unclosed single quotes starting at column %d", sum.OpenedAt+1)
	}
	if len(sum.Strays) > 0 && sum.Unterminated == 0 {
		c.add(SeverityWarning, CodeStrayQuote,
			"wrap the whole value in double quotes",
			"quote at column %d is not escaped in the generated string literal", sum.Strays[0]+1)
	}

	fields := strings.Fields(strings.ToLower(line))
	switch {
	case fields[0] == "type" && scanner.IndexTopLevel(line, " into ") < 0:
		c.add(SeverityError, CodeTypeWithoutInto, `type hello into #input`, `"type" command requires "into"`)
	case len(fields) == 1 && fields[0] == "click":
		c.add(SeverityError, CodeClickNoSelector, `click #submit`, `"click" command requires a selector`)
	case len(fields) == 2 && fields[0] == "go" && fields[1] == "to":
		c.add(SeverityError, CodeGoToNoURL, `go to https://example.com`, `"go to" command requires a URL`)
	}
}

// checkCommand reports what the converter will do with the line.
func (c *checker) checkCommand(line string) {
	tok := converter.TokenizeLine(line)
	if tok == nil {
		c.add(SeverityWarning, CodeUnrecognized, didYouMean(converter.Suggest(line)),
			"unrecognized command %q will be listed as a warning", line)
		return
	}

	switch tok.Command {
	case converter.CommandUnknown:
		if strings.HasPrefix(tok.Name, "should be ") {
			c.add(SeverityWarning, CodeUnknownAssertion, didYouMean(converter.Suggest(line)),
				"unknown assertion %q will be emitted as a comment", tok.Name)
			return
		}
		c.add(SeverityWarning, CodeUnknownCommand, didYouMean(converter.Suggest(tok.Name)),
			"unknown command %q will be emitted as a comment", tok.Name)
		return
	case converter.CommandIt:
		if c.inBlock {
			c.add(SeverityHint, CodeImplicitClose, "", "previous it block is closed automatically")
		}
		c.inBlock = true
	case converter.CommandEnd:
		if !c.inBlock {
			c.add(SeverityHint, CodeEndOutsideBlock, "", "end without an open it block is ignored")
		}
		c.inBlock = false
	}

	if want := tok.Command.Def().Arity(); len(tok.Args) < want {
		c.add(SeverityWarning, CodeArgumentCount, tok.Command.Def().Usage,
			"%q expects %d argument(s), got %d; missing ones render as undefined", tok.Name, want, len(tok.Args))
	} else if len(tok.Args) > want {
		c.add(SeverityWarning, CodeArgumentCount, tok.Command.Def().Usage,
			"%q expects %d argument(s), got %d; extra ones are dropped", tok.Name, want, len(tok.Args))
	}

	if _, body, ok := converter.SplitCall(line); ok && strings.TrimSpace(body) != "" {
		if len(scanner.SplitTopLevel(body, ',')) != strings.Count(body, ",")+1 {
			c.add(SeverityWarning, CodeQuotedComma, "", "commas inside quoted arguments are treated as separators")
		}
	}
}

func didYouMean(kw string) string {
	if kw == "" {
		return ""
	}
	return fmt.Sprintf("did you mean %q?", kw)
}
