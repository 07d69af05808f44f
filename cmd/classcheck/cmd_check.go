package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/dhamidi/classcheck/classfile"
	"github.com/dhamidi/classcheck/format"
)

type checkOptions struct {
	detail       bool
	omitComments bool
	format       string
	color        string
}

func newCheckCmd() *cobra.Command {
	var opts checkOptions

	cmd := &cobra.Command{
		Use:   "check <file>...",
		Short: "Decode and validate class files, printing a structural trace",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			failed := 0
			for _, name := range args {
				data, err := os.ReadFile(name)
				if err != nil {
					return fmt.Errorf("read %s: %w", name, err)
				}
				ok, err := opts.run(cmd.OutOrStdout(), cmd.ErrOrStderr(), name, data)
				if err != nil {
					return err
				}
				if !ok {
					failed++
				}
			}
			if failed > 0 {
				return fmt.Errorf("%d of %d class files could not be checked", failed, len(args))
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&opts.detail, "detail", false, "list every constant pool entry and bootstrap method")
	cmd.Flags().BoolVar(&opts.omitComments, "omit-comments", false, "drop the ' ; ...' trailer from trace lines")
	cmd.Flags().StringVarP(&opts.format, "format", "f", "line", "output format (line, json, summary)")
	cmd.Flags().StringVar(&opts.color, "color", "auto", "color diagnostics (auto, always, never)")

	return cmd
}

// run checks one class file and writes its trace or report. It returns false
// when a fatal violation stopped the check.
func (o *checkOptions) run(stdout, stderr io.Writer, name string, data []byte) (bool, error) {
	diags := &classfile.Diagnostics{}
	reporters := classfile.MultiReporter{diags}
	if verbose > 0 {
		reporters = append(reporters, classfile.LogReporter{Log: log})
	}

	var printer *format.IndentPrinter
	switch o.format {
	case "line":
		var popts []format.Option
		if o.omitComments {
			popts = append(popts, format.OmitComments())
		}
		printer = format.NewIndentPrinter(stdout, popts...)
		dp := format.NewDiagnosticPrinter(stderr, useColor(o.color, stderr))
		dp.SetName(name)
		reporters = append(reporters, dp)
	case "json", "summary":
	default:
		return false, fmt.Errorf("unknown format: %s (expected line, json, or summary)", o.format)
	}

	opts := classfile.Options{Reporter: reporters, Detail: o.detail, Name: name}
	if printer != nil {
		opts.Printer = printer
	}
	cf, checkErr := classfile.Check(data, opts)

	var enc format.Encoder
	switch o.format {
	case "json":
		enc = format.NewJSONEncoder(stdout)
	case "summary":
		enc = format.NewLineEncoder(stdout)
	}
	if enc != nil {
		if err := enc.Encode(format.NewReport(name, cf, diags, checkErr)); err != nil {
			return false, fmt.Errorf("encode %s: %w", o.format, err)
		}
	} else if err := printer.Err(); err != nil {
		return false, fmt.Errorf("write trace: %w", err)
	}
	return checkErr == nil, nil
}

func useColor(mode string, w io.Writer) bool {
	switch mode {
	case "always":
		return true
	case "never":
		return false
	}
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}
