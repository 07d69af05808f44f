package format

import (
	"fmt"
	"io"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"

	"github.com/dhamidi/classcheck/classfile"
)

// DiagnosticPrinter is a classfile.Reporter that writes one line per
// diagnostic, optionally styled by severity.
type DiagnosticPrinter struct {
	w      io.Writer
	name   string
	fatal  lipgloss.Style
	warn   lipgloss.Style
	code   lipgloss.Style
	styled bool
}

func NewDiagnosticPrinter(w io.Writer, color bool) *DiagnosticPrinter {
	p := &DiagnosticPrinter{w: w, styled: color}
	if color {
		r := lipgloss.NewRenderer(w)
		r.SetColorProfile(termenv.ANSI)
		p.fatal = r.NewStyle().Foreground(lipgloss.Color("9")).Bold(true)
		p.warn = r.NewStyle().Foreground(lipgloss.Color("11"))
		p.code = r.NewStyle().Faint(true)
	}
	return p
}

// SetName sets the file name that prefixes each line.
func (p *DiagnosticPrinter) SetName(name string) {
	p.name = name
}

func (p *DiagnosticPrinter) Report(d classfile.Diagnostic) {
	severity := d.Severity.String()
	code := "[" + string(d.Code) + "]"
	if p.styled {
		if d.Severity == classfile.Fatal {
			severity = p.fatal.Render(severity)
		} else {
			severity = p.warn.Render(severity)
		}
		code = p.code.Render(code)
	}
	if p.name != "" {
		fmt.Fprintf(p.w, "%s:%#x: %s %s %s\n", p.name, d.Offset, severity, code, d.Message)
		return
	}
	fmt.Fprintf(p.w, "%#x: %s %s %s\n", d.Offset, severity, code, d.Message)
}
