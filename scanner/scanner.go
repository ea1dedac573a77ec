// Package scanner provides quote- and paren-aware scanning of hatchtest
// script lines. It tracks single- and double-quoted literals, escape
// sequences inside them and parenthesis depth, so checks over a line do not
// have to re-implement that logic.
//
// A quote only opens a literal at the start of a word: at the beginning of
// the text, or after whitespace, '(' or ','. A quote inside a word, such as
// the apostrophe in it's, is a stray quote and does not change the state.
package scanner

import "strings"

// closingKind tracks which type of quote was just closed.
type closingKind byte

const (
	noClosing     closingKind = iota
	closingDouble             // just closed a "..." literal
	closingSingle             // just closed a '...' literal
)

// LineScanner iterates byte-by-byte over script text. Callers check
// InString() instead of maintaining their own quote and escape flags.
//
// InString() returns true for the entire literal span including both
// quotes.
type LineScanner struct {
	src     string
	pos     int
	inDbl   bool
	inSgl   bool
	escaped bool
	closing closingKind
	depth   int
	minimum int
	strays  []int
	opened  int
}

// New creates a LineScanner for the given text.
// Call Next() to advance to the first byte.
func New(src string) *LineScanner {
	return &LineScanner{src: src, pos: -1, opened: -1}
}

// Next advances to the next byte, updating quote, escape and depth state.
// Returns the byte and true, or (0, false) at end of input.
func (s *LineScanner) Next() (byte, bool) {
	s.closing = noClosing
	s.pos++
	if s.pos >= len(s.src) {
		return 0, false
	}
	ch := s.src[s.pos]

	if s.escaped {
		s.escaped = false
		return ch, true
	}
	if ch == '\\' && (s.inDbl || s.inSgl) {
		s.escaped = true
		return ch, true
	}

	switch {
	case ch == '"' && s.inDbl:
		s.inDbl = false
		s.closing = closingDouble
	case ch == '\'' && s.inSgl:
		s.inSgl = false
		s.closing = closingSingle
	case (ch == '"' || ch == '\'') && !s.inDbl && !s.inSgl:
		if !s.atWordStart() {
			s.strays = append(s.strays, s.pos)
			break
		}
		s.inDbl = ch == '"'
		s.inSgl = ch == '\''
		s.opened = s.pos
	case ch == '(' && s.InCode():
		s.depth++
	case ch == ')' && s.InCode():
		s.depth--
		if s.depth < s.minimum {
			s.minimum = s.depth
		}
	}

	return ch, true
}

func (s *LineScanner) atWordStart() bool {
	if s.pos == 0 {
		return true
	}
	prev := s.src[s.pos-1]
	return prev == ' ' || prev == '\t' || prev == '\n' || prev == '(' || prev == ','
}

// InString reports whether the current position is inside a quoted literal,
// including both quotes.
func (s *LineScanner) InString() bool {
	return s.inDbl || s.inSgl || s.closing != noClosing
}

// InCode reports whether the current position is outside all literals.
func (s *LineScanner) InCode() bool { return !s.InString() }

// Pos returns the current byte offset (the position of the last byte
// returned by Next). Returns -1 before the first call to Next.
func (s *LineScanner) Pos() int { return s.pos }

// Depth returns the parenthesis depth after the current byte.
func (s *LineScanner) Depth() int { return s.depth }

// Summary describes a fully scanned text.
type Summary struct {
	// Depth is the parenthesis depth at the end; positive means unclosed.
	Depth int
	// Underflow is true when a ')' appeared without a matching '('.
	Underflow bool
	// Unterminated is the quote byte of a literal left open at the end, or 0.
	Unterminated byte
	// OpenedAt is the offset of the unterminated literal's opening quote.
	OpenedAt int
	// Strays lists the offsets of quotes found inside words.
	Strays []int
}

// Scan runs a scanner over src to the end and summarizes its state.
func Scan(src string) Summary {
	sc := New(src)
	for _, ok := sc.Next(); ok; _, ok = sc.Next() {
	}
	sum := Summary{
		Depth:     sc.depth,
		Underflow: sc.minimum < 0,
		OpenedAt:  -1,
		Strays:    sc.strays,
	}
	switch {
	case sc.inDbl:
		sum.Unterminated = '"'
		sum.OpenedAt = sc.opened
	case sc.inSgl:
		sum.Unterminated = '\''
		sum.OpenedAt = sc.opened
	}
	return sum
}

// IndexTopLevel returns the offset of the first occurrence of substr in s
// that starts outside every quoted literal, or -1.
func IndexTopLevel(s, substr string) int {
	sc := New(s)
	for _, ok := sc.Next(); ok; _, ok = sc.Next() {
		if sc.InCode() && strings.HasPrefix(s[sc.Pos():], substr) {
			return sc.Pos()
		}
	}
	return -1
}

// SplitTopLevel splits s on sep bytes found outside quoted literals and
// parentheses nested below the first level.
func SplitTopLevel(s string, sep byte) []string {
	var parts []string
	start := 0
	sc := New(s)
	for ch, ok := sc.Next(); ok; ch, ok = sc.Next() {
		if ch == sep && sc.InCode() && sc.Depth() == 0 {
			parts = append(parts, s[start:sc.Pos()])
			start = sc.Pos() + 1
		}
	}
	return append(parts, s[start:])
}
