package format

import (
	"fmt"
	"io"
	"strings"

	"github.com/dhamidi/classcheck/classfile"
)

// LineEncoder writes a tab separated summary: one line for the class, then
// one per field, method and record component, then one per diagnostic.
type LineEncoder struct {
	w      io.Writer
	report *Report
}

func NewLineEncoder(w io.Writer) *LineEncoder {
	return &LineEncoder{w: w}
}

func (e *LineEncoder) Encode(report *Report) error {
	e.report = report
	text, err := e.MarshalText()
	if err != nil {
		return err
	}
	_, err = e.w.Write(text)
	return err
}

func (e *LineEncoder) MarshalText() ([]byte, error) {
	var sb strings.Builder
	r := e.report

	if c := r.Class; c != nil {
		fmt.Fprintf(&sb, "%s\t%s\t%s\t%s\n", classKind(c), orDash(c.ThisClass), c.Version, modifiersStr(c.Flags))

		for _, f := range c.Fields {
			fmt.Fprintf(&sb, "field\t%s\t%s\t%s\n", f.Name, orDash(f.Type), modifiersStr(f.Flags))
		}
		for _, m := range c.Methods {
			fmt.Fprintf(&sb, "method\t%s\t%s\t%s\n", m.Name, orDash(m.Type), modifiersStr(m.Flags))
		}
		if rec := c.GetAttribute("Record"); rec != nil {
			for _, rc := range rec.Components {
				fmt.Fprintf(&sb, "component\t%s\t%s\n", rc.Name, orDash(rc.Type))
			}
		}
	}

	for _, d := range r.Diagnostics {
		fmt.Fprintf(&sb, "%s\t%s\t%#x\t%s\n", d.Severity, d.Code, d.Offset, d.Message)
	}
	if r.Error != "" && len(r.Diagnostics) == 0 {
		fmt.Fprintf(&sb, "error\t%s\n", r.Error)
	}
	return []byte(sb.String()), nil
}

func classKind(c *classfile.ClassFile) string {
	switch {
	case c.IsModule():
		return "module"
	case hasFlag(c.Flags, "annotation"):
		return "annotation"
	case hasFlag(c.Flags, "enum"):
		return "enum"
	case c.IsInterface():
		return "interface"
	case c.GetAttribute("Record") != nil:
		return "record"
	default:
		return "class"
	}
}

func hasFlag(flags []string, name string) bool {
	for _, f := range flags {
		if f == name {
			return true
		}
	}
	return false
}

func modifiersStr(flags []string) string {
	if len(flags) == 0 {
		return "-"
	}
	return strings.Join(flags, ",")
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
