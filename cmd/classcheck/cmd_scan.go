package main

import (
	"archive/zip"
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/dhamidi/classcheck/classfile"
	"github.com/dhamidi/classcheck/format"
)

type scanner struct {
	out     io.Writer
	diags   *format.DiagnosticPrinter
	detail  bool
	quiet   bool
	timeout time.Duration

	files    int
	clean    int
	warned   int
	failures []string
}

func newScanCmd() *cobra.Command {
	var (
		timeout time.Duration
		detail  bool
		quiet   bool
	)

	cmd := &cobra.Command{
		Use:   "scan <path>",
		Short: "Check every class file in a directory, jar, or zip file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s := &scanner{
				out:     cmd.OutOrStdout(),
				diags:   format.NewDiagnosticPrinter(cmd.ErrOrStderr(), false),
				detail:  detail,
				quiet:   quiet,
				timeout: timeout,
			}
			return s.run(args[0])
		},
	}

	cmd.Flags().DurationVarP(&timeout, "timeout", "t", 10*time.Second, "timeout per file")
	cmd.Flags().BoolVar(&detail, "detail", false, "print the full trace of every class file")
	cmd.Flags().BoolVarP(&quiet, "quiet", "q", false, "only report files with diagnostics")

	return cmd
}

func (s *scanner) run(path string) error {
	info, err := os.Stat(path)
	if err != nil {
		return fmt.Errorf("stat %s: %w", path, err)
	}

	switch {
	case info.IsDir():
		s.scanDirectory(path)
	case isArchive(path):
		r, err := zip.OpenReader(path)
		if err != nil {
			return fmt.Errorf("open zip: %w", err)
		}
		defer r.Close()
		s.scanZip(&r.Reader, path, 0)
	case filepath.Ext(path) == ".class":
		s.scanFile(path)
	default:
		return fmt.Errorf("unsupported file type: %s", filepath.Ext(path))
	}

	fmt.Fprintf(s.out, "\n=== SCAN COMPLETE ===\n")
	fmt.Fprintf(s.out, "Class files: %d\n", s.files)
	fmt.Fprintf(s.out, "Clean: %d\n", s.clean)
	fmt.Fprintf(s.out, "With warnings: %d\n", s.warned)
	fmt.Fprintf(s.out, "Failed: %d\n", len(s.failures))
	for _, f := range s.failures {
		fmt.Fprintf(s.out, "  - %s\n", f)
	}
	if len(s.failures) > 0 {
		return fmt.Errorf("%d class files failed", len(s.failures))
	}
	return nil
}

func isArchive(name string) bool {
	ext := filepath.Ext(name)
	return ext == ".jar" || ext == ".zip"
}

func (s *scanner) scanDirectory(root string) {
	var files []string
	err := filepath.Walk(root, func(p string, info os.FileInfo, err error) error {
		if err != nil {
			s.failures = append(s.failures, fmt.Sprintf("walk %s: %v", p, err))
			return nil
		}
		if !info.IsDir() && filepath.Ext(p) == ".class" {
			files = append(files, p)
		}
		return nil
	})
	if err != nil {
		s.failures = append(s.failures, fmt.Sprintf("walk %s: %v", root, err))
	}

	if !s.quiet {
		fmt.Fprintf(s.out, "Found %d class files to scan\n", len(files))
	}
	for _, file := range files {
		s.scanFile(file)
	}
}

func (s *scanner) scanFile(path string) {
	data, err := os.ReadFile(path)
	if err != nil {
		s.files++
		s.fail(path, fmt.Sprintf("read: %v", err))
		return
	}
	s.check(path, data)
}

// maxArchiveDepth bounds how many jars deep scanZip descends.
const maxArchiveDepth = 8

// scanZip checks the class files of an archive, descending into jars nested
// inside it. Entry names are reported as archive!entry.
func (s *scanner) scanZip(r *zip.Reader, prefix string, depth int) {
	for _, f := range r.File {
		if f.FileInfo().IsDir() {
			continue
		}
		name := prefix + "!" + f.Name
		ext := filepath.Ext(f.Name)
		if ext != ".class" && ext != ".jar" {
			continue
		}
		data, err := readZipEntry(f)
		if err != nil {
			s.files++
			s.fail(name, err.Error())
			continue
		}
		if ext == ".class" {
			s.check(name, data)
			continue
		}
		if depth >= maxArchiveDepth {
			s.failures = append(s.failures, fmt.Sprintf("skip nested jar %s: deeper than %d", name, maxArchiveDepth))
			continue
		}
		nested, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
		if err != nil {
			s.failures = append(s.failures, fmt.Sprintf("open nested jar %s: %v", name, err))
			continue
		}
		s.scanZip(nested, name, depth+1)
	}
}

func readZipEntry(f *zip.File) ([]byte, error) {
	rc, err := f.Open()
	if err != nil {
		return nil, fmt.Errorf("open: %w", err)
	}
	defer rc.Close()
	data, err := io.ReadAll(rc)
	if err != nil {
		return nil, fmt.Errorf("read: %w", err)
	}
	return data, nil
}

type scanResult struct {
	diags *classfile.Diagnostics
	trace bytes.Buffer
	err   error
}

// check runs one class file under the scan timeout. A check that times out is
// abandoned and left to finish in the background.
func (s *scanner) check(name string, data []byte) {
	s.files++

	ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
	defer cancel()

	done := make(chan struct{})
	res := &scanResult{diags: &classfile.Diagnostics{}}
	go func() {
		defer close(done)
		opts := classfile.Options{Reporter: res.diags, Detail: s.detail, Name: name}
		if s.detail {
			opts.Printer = format.NewIndentPrinter(&res.trace)
		}
		_, res.err = classfile.Check(data, opts)
	}()

	select {
	case <-done:
	case <-ctx.Done():
		fmt.Fprintf(s.out, "[TIMEOUT] %s\n", name)
		s.failures = append(s.failures, fmt.Sprintf("timeout checking %s", name))
		return
	}

	if s.detail {
		s.out.Write(res.trace.Bytes())
	}
	s.diags.SetName(name)
	for _, d := range res.diags.Items() {
		s.diags.Report(d)
	}

	switch {
	case res.err != nil:
		s.fail(name, res.err.Error())
	case res.diags.Len() > 0:
		s.warned++
		fmt.Fprintf(s.out, "[WARN] %s (%d diagnostics)\n", name, res.diags.Len())
	default:
		s.clean++
		if !s.quiet {
			fmt.Fprintf(s.out, "[OK] %s\n", name)
		}
	}
}

func (s *scanner) fail(name, reason string) {
	fmt.Fprintf(s.out, "[ERROR] %s: %s\n", name, reason)
	s.failures = append(s.failures, fmt.Sprintf("%s: %s", name, reason))
}
