package format

import (
	"fmt"
	"io"
	"strings"
	"unicode/utf8"

	"github.com/dhamidi/classcheck/classfile"
)

const (
	DefaultWidth = 110

	indentUnit   = "  "
	continuation = "+ "
	// splitWindow is how far back from the width a wrapped line looks for a
	// split character.
	splitWindow = 20
	splitChars  = " );/"
	commentMark = " ; "
)

// IndentPrinter writes the trace one line at a time, indenting two spaces per
// level and wrapping long lines onto "+ " continuation lines.
type IndentPrinter struct {
	out   *output
	level int
}

type output struct {
	w            io.Writer
	width        int
	omitComments bool
	err          error
}

type Option func(*output)

// WithWidth sets the column at which lines wrap. Zero disables wrapping.
func WithWidth(width int) Option {
	return func(o *output) { o.width = width }
}

// OmitComments drops the " ; ..." trailer from every line.
func OmitComments() Option {
	return func(o *output) { o.omitComments = true }
}

func NewIndentPrinter(w io.Writer, opts ...Option) *IndentPrinter {
	o := &output{w: w, width: DefaultWidth}
	for _, opt := range opts {
		opt(o)
	}
	return &IndentPrinter{out: o}
}

func (p *IndentPrinter) Linef(format string, args ...any) {
	line := fmt.Sprintf(format, args...)
	if p.out.omitComments {
		if i := strings.LastIndex(line, commentMark); i >= 0 {
			line = strings.TrimRight(line[:i], " ")
		}
	}
	prefix := strings.Repeat(indentUnit, p.level)
	for i, part := range wrap(line, p.out.width, len(prefix)) {
		if i > 0 {
			part = continuation + part
		}
		p.write(prefix + part + "\n")
	}
}

func (p *IndentPrinter) Shift() classfile.Printer {
	return &IndentPrinter{out: p.out, level: p.level + 1}
}

// Err returns the first write error.
func (p *IndentPrinter) Err() error {
	return p.out.err
}

func (p *IndentPrinter) write(s string) {
	if p.out.err != nil {
		return
	}
	_, p.out.err = io.WriteString(p.out.w, s)
}

// wrap splits line into pieces that fit width once indented. Continuation
// pieces are measured with the "+ " prefix they will carry.
func wrap(line string, width, indent int) []string {
	if width <= 0 {
		return []string{line}
	}
	var parts []string
	room := width - indent
	for len(line) > room && room > splitWindow {
		cut := splitPoint(line, room)
		parts = append(parts, strings.TrimRight(line[:cut], " "))
		line = strings.TrimLeft(line[cut:], " ")
		room = width - indent - len(continuation)
	}
	if line != "" || len(parts) == 0 {
		parts = append(parts, line)
	}
	return parts
}

// splitPoint picks the cut for a line longer than room: just after the last
// split character in the final splitWindow columns, else at room.
func splitPoint(line string, room int) int {
	for i := room; i > room-splitWindow; i-- {
		if strings.IndexByte(splitChars, line[i-1]) >= 0 {
			return i
		}
	}
	cut := room
	for cut > 0 && !utf8.RuneStart(line[cut]) {
		cut--
	}
	return cut
}
