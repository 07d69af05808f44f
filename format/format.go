package format

import (
	"encoding"

	"github.com/dhamidi/classcheck/classfile"
)

// Report is the outcome of checking one class file.
type Report struct {
	Name        string                 `json:"name"`
	Class       *classfile.ClassFile   `json:"class,omitempty"`
	Diagnostics []classfile.Diagnostic `json:"diagnostics"`
	Error       string                 `json:"error,omitempty"`
}

// NewReport builds a report from the results of classfile.Check.
func NewReport(name string, cf *classfile.ClassFile, diags *classfile.Diagnostics, err error) *Report {
	r := &Report{Name: name, Class: cf, Diagnostics: diags.Items()}
	if r.Diagnostics == nil {
		r.Diagnostics = []classfile.Diagnostic{}
	}
	if err != nil {
		r.Error = err.Error()
	}
	return r
}

type Encoder interface {
	encoding.TextMarshaler
	Encode(report *Report) error
}
