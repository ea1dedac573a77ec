package cmd

import (
	"io"
	"os"

	"github.com/askvallejos/hatchtest/config"
	"github.com/askvallejos/hatchtest/lint"
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
	"golang.org/x/term"
)

// styles colors terminal output. The zero value renders plain text.
type styles struct {
	enabled bool
	err     lipgloss.Style
	warn    lipgloss.Style
	hint    lipgloss.Style
	ok      lipgloss.Style
	muted   lipgloss.Style
}

func newStyles(w io.Writer, enabled bool) styles {
	if !enabled {
		return styles{}
	}
	r := lipgloss.NewRenderer(w)
	r.SetColorProfile(termenv.ANSI)
	return styles{
		enabled: true,
		err:     r.NewStyle().Foreground(lipgloss.Color("1")).Bold(true),
		warn:    r.NewStyle().Foreground(lipgloss.Color("3")),
		hint:    r.NewStyle().Foreground(lipgloss.Color("6")),
		ok:      r.NewStyle().Foreground(lipgloss.Color("2")),
		muted:   r.NewStyle().Faint(true),
	}
}

func (s styles) render(st lipgloss.Style, text string) string {
	if !s.enabled {
		return text
	}
	return st.Render(text)
}

func (s styles) Error(text string) string   { return s.render(s.err, text) }
func (s styles) Warning(text string) string { return s.render(s.warn, text) }
func (s styles) Success(text string) string { return s.render(s.ok, text) }
func (s styles) Muted(text string) string   { return s.render(s.muted, text) }

// Severity colors text by diagnostic severity.
func (s styles) Severity(sev lint.Severity, text string) string {
	switch sev {
	case lint.SeverityError:
		return s.render(s.err, text)
	case lint.SeverityWarning:
		return s.render(s.warn, text)
	default:
		return s.render(s.hint, text)
	}
}

// colorEnabled resolves the color mode for w. Auto colors only terminals and
// honors NO_COLOR.
func colorEnabled(mode string, w io.Writer) bool {
	switch mode {
	case config.ColorAlways:
		return true
	case config.ColorNever:
		return false
	}
	if os.Getenv("NO_COLOR") != "" {
		return false
	}
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}
