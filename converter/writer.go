package converter

import (
	"fmt"
	"strings"
)

// indentUnit is one nesting level of generated code.
const indentUnit = "  "

// codeWriter manages indented output for the emitter. Only the first line of
// a multi-line statement receives the indent; continuation lines are written
// as the emission function produced them.
type codeWriter struct {
	sb     strings.Builder
	indent int
}

// Linef writes an indented, formatted line with a trailing newline.
func (w *codeWriter) Linef(format string, args ...interface{}) {
	w.sb.WriteString(strings.Repeat(indentUnit, w.indent))
	fmt.Fprintf(&w.sb, format, args...)
	w.sb.WriteByte('\n')
}

// Blank writes an empty separator line.
func (w *codeWriter) Blank() { w.sb.WriteByte('\n') }

// Raw writes unindented text directly to the buffer.
func (w *codeWriter) Raw(s string) { w.sb.WriteString(s) }

// SetIndent sets the indentation level.
func (w *codeWriter) SetIndent(level int) { w.indent = level }

// String returns the accumulated output.
func (w *codeWriter) String() string { return w.sb.String() }
