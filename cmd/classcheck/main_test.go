package main

import (
	"archive/zip"
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/dhamidi/classcheck/format"
)

var emptyClass = []byte{
	0xca, 0xfe, 0xba, 0xbe, 0, 0, 0, 55,
	0, 1,
	0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0,
}

var badMagic = []byte{0xca, 0xfe, 0xba, 0xbf, 0, 0, 0, 52}

func TestCheckRun(t *testing.T) {
	tests := []struct {
		name   string
		format string
		data   []byte
		ok     bool
		want   string
	}{
		{"line trace", "line", emptyClass, true, "VERSION 55.0 ; Java 11"},
		{"json report", "json", emptyClass, true, `"diagnostics": []`},
		{"summary", "summary", badMagic, false, "fatal\tbad-magic\t0x0\t"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var stdout, stderr bytes.Buffer
			opts := &checkOptions{format: tt.format, color: "never"}
			ok, err := opts.run(&stdout, &stderr, "A.class", tt.data)
			require.NoError(t, err)
			if ok != tt.ok {
				t.Errorf("run() ok = %v, want %v", ok, tt.ok)
			}
			require.Contains(t, stdout.String(), tt.want)
		})
	}
}

func TestCheckRunDiagnosticsToStderr(t *testing.T) {
	var stdout, stderr bytes.Buffer
	opts := &checkOptions{format: "line", color: "never"}
	ok, err := opts.run(&stdout, &stderr, "A.class", badMagic)
	require.NoError(t, err)
	require.False(t, ok)
	require.True(t, strings.HasPrefix(stderr.String(), "A.class:0x0: fatal [bad-magic]"), stderr.String())
}

func TestCheckRunUnknownFormat(t *testing.T) {
	opts := &checkOptions{format: "xml"}
	_, err := opts.run(&bytes.Buffer{}, &bytes.Buffer{}, "A.class", emptyClass)
	require.Error(t, err)
}

func TestScanArchive(t *testing.T) {
	var inner bytes.Buffer
	zw := zip.NewWriter(&inner)
	w, err := zw.Create("b/Bad.class")
	require.NoError(t, err)
	_, err = w.Write(badMagic)
	require.NoError(t, err)
	require.NoError(t, zw.Close())

	var outer bytes.Buffer
	zw = zip.NewWriter(&outer)
	for name, data := range map[string][]byte{
		"a/A.class":      emptyClass,
		"lib/inner.jar":  inner.Bytes(),
		"META-INF/x.txt": []byte("skip"),
	} {
		w, err := zw.Create(name)
		require.NoError(t, err)
		_, err = w.Write(data)
		require.NoError(t, err)
	}
	require.NoError(t, zw.Close())

	path := filepath.Join(t.TempDir(), "app.jar")
	require.NoError(t, os.WriteFile(path, outer.Bytes(), 0o644))

	var stdout, stderr bytes.Buffer
	s := &scanner{out: &stdout, diags: format.NewDiagnosticPrinter(&stderr, false), timeout: time.Second}
	err = s.run(path)
	require.Error(t, err)
	require.Equal(t, 2, s.files)
	require.Equal(t, 1, s.clean)
	require.Len(t, s.failures, 1)
	require.Contains(t, stdout.String(), "[OK] "+path+"!a/A.class")
	require.Contains(t, stdout.String(), "[ERROR] "+path+"!lib/inner.jar!b/Bad.class")
	require.Contains(t, stderr.String(), "[bad-magic]")
}

func zipOf(t *testing.T, name string, data []byte) []byte {
	t.Helper()
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	w, err := zw.Create(name)
	require.NoError(t, err)
	_, err = w.Write(data)
	require.NoError(t, err)
	require.NoError(t, zw.Close())
	return buf.Bytes()
}

func TestScanNestedDepth(t *testing.T) {
	jar := zipOf(t, "A.class", emptyClass)
	for i := 0; i < maxArchiveDepth+2; i++ {
		jar = zipOf(t, "n.jar", jar)
	}
	path := filepath.Join(t.TempDir(), "deep.jar")
	require.NoError(t, os.WriteFile(path, jar, 0o644))

	var stdout bytes.Buffer
	s := &scanner{out: &stdout, timeout: time.Second}
	require.Error(t, s.run(path))
	require.Zero(t, s.files)
	require.Len(t, s.failures, 1)
	require.Contains(t, s.failures[0], "deeper than 8")
}

func TestScanUnsupported(t *testing.T) {
	path := filepath.Join(t.TempDir(), "notes.txt")
	require.NoError(t, os.WriteFile(path, nil, 0o644))
	s := &scanner{out: &bytes.Buffer{}, timeout: time.Second}
	require.Error(t, s.run(path))
}
