package format

import (
	"bytes"
	"strings"
	"testing"
)

func TestIndentPrinter(t *testing.T) {
	var buf bytes.Buffer
	p := NewIndentPrinter(&buf)
	p.Linef("CLASS %s", "A")
	inner := p.Shift()
	inner.Linef("SUPER %s", "java/lang/Object")
	inner.Shift().Linef("deep")
	p.Linef("END")

	want := "CLASS A\n  SUPER java/lang/Object\n    deep\nEND\n"
	if got := buf.String(); got != want {
		t.Errorf("output = %q, want %q", got, want)
	}
	if err := p.Err(); err != nil {
		t.Errorf("Err() = %v, want nil", err)
	}
}

func TestIndentPrinterOmitComments(t *testing.T) {
	var buf bytes.Buffer
	p := NewIndentPrinter(&buf, OmitComments())
	p.Linef("VERSION 52.0 ; Java 8")
	p.Linef("no comment here")
	p.Linef("%5d:  ldc %q ; start = %#x", 3, "a ; b", 0x20)

	want := "VERSION 52.0\nno comment here\n    3:  ldc \"a ; b\"\n"
	if got := buf.String(); got != want {
		t.Errorf("output = %q, want %q", got, want)
	}
}

func TestWrap(t *testing.T) {
	tests := []struct {
		name   string
		line   string
		width  int
		indent int
		want   []string
	}{
		{
			name:  "fits",
			line:  "short line",
			width: 40,
			want:  []string{"short line"},
		},
		{
			name:  "split at space",
			line:  "aaaaaaaaaa bbbbbbbbbb cccccccccc dddddddddd",
			width: 25,
			want:  []string{"aaaaaaaaaa bbbbbbbbbb", "cccccccccc dddddddddd"},
		},
		{
			name:  "split after slash",
			line:  "java/lang/invoke/LambdaMetafactory",
			width: 24,
			want:  []string{"java/lang/invoke/", "LambdaMetafactory"},
		},
		{
			name:  "no split character",
			line:  strings.Repeat("x", 30),
			width: 25,
			want:  []string{strings.Repeat("x", 25), strings.Repeat("x", 5)},
		},
		{
			name:  "disabled",
			line:  strings.Repeat("x", 300),
			width: 0,
			want:  []string{strings.Repeat("x", 300)},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := wrap(tt.line, tt.width, tt.indent)
			if strings.Join(got, "|") != strings.Join(tt.want, "|") {
				t.Errorf("wrap() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestIndentPrinterWrapsWithContinuation(t *testing.T) {
	var buf bytes.Buffer
	p := NewIndentPrinter(&buf, WithWidth(30))
	p.Shift().Linef("%s %s", strings.Repeat("a", 20), strings.Repeat("b", 20))

	want := "  " + strings.Repeat("a", 20) + "\n  + " + strings.Repeat("b", 20) + "\n"
	if got := buf.String(); got != want {
		t.Errorf("output = %q, want %q", got, want)
	}
	for _, line := range strings.Split(strings.TrimSuffix(buf.String(), "\n"), "\n") {
		if len(line) > 30 {
			t.Errorf("line %q is longer than 30 columns", line)
		}
	}
}
