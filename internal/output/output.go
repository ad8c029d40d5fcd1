package output

import (
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-isatty"
)

// Printer writes user-facing messages. Info and success lines go to the
// out stream and are silenced by quiet; warnings and errors always go to
// the err stream.
type Printer struct {
	out   io.Writer
	err   io.Writer
	quiet bool
	color bool

	info    lipgloss.Style
	success lipgloss.Style
	warn    lipgloss.Style
	fail    lipgloss.Style
	dim     lipgloss.Style
	bold    lipgloss.Style
}

// Option configures a Printer.
type Option func(*Printer)

// WithQuiet suppresses info, success and plain output.
func WithQuiet(quiet bool) Option {
	return func(p *Printer) {
		p.quiet = quiet
	}
}

// WithColor forces colour on or off.
func WithColor(color bool) Option {
	return func(p *Printer) {
		p.color = color
	}
}

// New creates a Printer. Colour defaults to ColorEnabled(out, false).
func New(out, errw io.Writer, opts ...Option) *Printer {
	if out == nil {
		out = os.Stdout
	}
	if errw == nil {
		errw = os.Stderr
	}

	p := &Printer{out: out, err: errw, color: ColorEnabled(out, false)}
	for _, opt := range opts {
		opt(p)
	}
	p.initStyles()
	return p
}

// Discard returns a Printer that writes nothing.
func Discard() *Printer {
	return New(io.Discard, io.Discard, WithColor(false))
}

// ColorEnabled reports whether w should receive ANSI colour: it must be a
// terminal, and neither noColor nor NO_COLOR may be set.
func ColorEnabled(w io.Writer, noColor bool) bool {
	if noColor || os.Getenv("NO_COLOR") != "" {
		return false
	}
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

func (p *Printer) initStyles() {
	style := func(color string, bold bool) lipgloss.Style {
		s := lipgloss.NewStyle()
		if !p.color {
			return s
		}
		return s.Foreground(lipgloss.Color(color)).Bold(bold)
	}
	p.info = style("39", false)
	p.success = style("42", false)
	p.warn = style("214", true)
	p.fail = style("196", true)
	p.dim = style("241", false)
	p.bold = lipgloss.NewStyle().Bold(p.color)
}

func (p *Printer) Out() io.Writer { return p.out }
func (p *Printer) Err() io.Writer { return p.err }
func (p *Printer) Quiet() bool    { return p.quiet }
func (p *Printer) Color() bool    { return p.color }

// Info prints "ℹ msg" to out.
func (p *Printer) Info(format string, args ...any) {
	p.line(p.out, p.info.Render("ℹ"), format, args...)
}

// Success prints "✓ msg" to out.
func (p *Printer) Success(format string, args ...any) {
	p.line(p.out, p.success.Render("✓"), format, args...)
}

// Warn prints "⚠ msg" to err, even when quiet.
func (p *Printer) Warn(format string, args ...any) {
	fmt.Fprintf(p.err, "%s %s\n", p.warn.Render("⚠"), fmt.Sprintf(format, args...))
}

// Error prints "✗ msg" to err, even when quiet.
func (p *Printer) Error(format string, args ...any) {
	fmt.Fprintf(p.err, "%s %s\n", p.fail.Render("✗"), fmt.Sprintf(format, args...))
}

// DryRun prints an action that was not performed.
func (p *Printer) DryRun(format string, args ...any) {
	p.line(p.out, p.dim.Render("[dry-run]"), format, args...)
}

// Println prints a bare line to out unless quiet.
func (p *Printer) Println(format string, args ...any) {
	if p.quiet {
		return
	}
	fmt.Fprintf(p.out, format+"\n", args...)
}

// Raw prints a bare line to out regardless of quiet. Machine-readable
// output uses it.
func (p *Printer) Raw(format string, args ...any) {
	fmt.Fprintf(p.out, format+"\n", args...)
}

// Notef prints a bare line to err regardless of quiet.
func (p *Printer) Notef(format string, args ...any) {
	fmt.Fprintf(p.err, format+"\n", args...)
}

func (p *Printer) line(w io.Writer, prefix, format string, args ...any) {
	if p.quiet {
		return
	}
	fmt.Fprintf(w, "%s %s\n", prefix, fmt.Sprintf(format, args...))
}

// Dim renders s in the muted style.
func (p *Printer) Dim(s string) string { return p.dim.Render(s) }

// Bold renders s in bold.
func (p *Printer) Bold(s string) string { return p.bold.Render(s) }

// WarnText renders s in the warning colour without a prefix.
func (p *Printer) WarnText(s string) string { return p.warn.Render(s) }
