package lsp

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"github.com/tliron/commonlog"
	"github.com/tliron/glsp"
	protocol "github.com/tliron/glsp/protocol_3_16"
	"github.com/tliron/glsp/server"

	_ "github.com/tliron/commonlog/simple"

	"github.com/dhamidi/classcheck/classfile"
)

const lsName = "classcheck"

var log = commonlog.GetLogger("classcheck.lsp")

// Server publishes class-file diagnostics for .class documents as they are
// opened and saved.
type Server struct {
	handler protocol.Handler
	server  *server.Server
	version string
}

func NewServer(version string) *Server {
	ls := &Server{
		version: version,
	}

	ls.handler = protocol.Handler{
		Initialize:           ls.initialize,
		Initialized:          ls.initialized,
		Shutdown:             ls.shutdown,
		SetTrace:             ls.setTrace,
		TextDocumentDidOpen:  ls.textDocumentDidOpen,
		TextDocumentDidClose: ls.textDocumentDidClose,
		TextDocumentDidSave:  ls.textDocumentDidSave,
	}

	ls.server = server.NewServer(&ls.handler, lsName, false)

	return ls
}

func (ls *Server) RunStdio() error {
	return ls.server.RunStdio()
}

func (ls *Server) initialize(ctx *glsp.Context, params *protocol.InitializeParams) (any, error) {
	capabilities := ls.handler.CreateServerCapabilities()

	capabilities.TextDocumentSync = &protocol.TextDocumentSyncOptions{
		OpenClose: boolPtr(true),
		Change:    syncKindPtr(protocol.TextDocumentSyncKindNone),
		Save: &protocol.SaveOptions{
			IncludeText: boolPtr(false),
		},
	}

	return protocol.InitializeResult{
		Capabilities: capabilities,
		ServerInfo: &protocol.InitializeResultServerInfo{
			Name:    lsName,
			Version: &ls.version,
		},
	}, nil
}

func (ls *Server) initialized(ctx *glsp.Context, params *protocol.InitializedParams) error {
	return nil
}

func (ls *Server) shutdown(ctx *glsp.Context) error {
	return nil
}

func (ls *Server) setTrace(ctx *glsp.Context, params *protocol.SetTraceParams) error {
	protocol.SetTraceValue(params.Value)
	return nil
}

func (ls *Server) textDocumentDidOpen(ctx *glsp.Context, params *protocol.DidOpenTextDocumentParams) error {
	ls.publish(ctx, params.TextDocument.URI)
	return nil
}

func (ls *Server) textDocumentDidSave(ctx *glsp.Context, params *protocol.DidSaveTextDocumentParams) error {
	ls.publish(ctx, params.TextDocument.URI)
	return nil
}

func (ls *Server) textDocumentDidClose(ctx *glsp.Context, params *protocol.DidCloseTextDocumentParams) error {
	ctx.Notify(protocol.ServerTextDocumentPublishDiagnostics, protocol.PublishDiagnosticsParams{
		URI:         params.TextDocument.URI,
		Diagnostics: []protocol.Diagnostic{},
	})
	return nil
}

func (ls *Server) publish(ctx *glsp.Context, uri protocol.DocumentUri) {
	path, err := uriToPath(uri)
	if err != nil || filepath.Ext(path) != ".class" {
		return
	}
	diags, err := Diagnose(path)
	if err != nil {
		log.Errorf("%s", err)
		return
	}
	log.Infof("%s: %d diagnostics", path, len(diags))
	ctx.Notify(protocol.ServerTextDocumentPublishDiagnostics, protocol.PublishDiagnosticsParams{
		URI:         uri,
		Diagnostics: diags,
	})
}

// Diagnose checks the class file at path. Class files are read from disk,
// since editors do not hold binary documents as text.
func Diagnose(path string) ([]protocol.Diagnostic, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	collected := &classfile.Diagnostics{}
	classfile.Check(data, classfile.Options{Reporter: collected})

	diags := make([]protocol.Diagnostic, 0, collected.Len())
	for _, d := range collected.Items() {
		diags = append(diags, toProtocol(d))
	}
	return diags, nil
}

// toProtocol places a diagnostic on line 0 at its byte offset.
func toProtocol(d classfile.Diagnostic) protocol.Diagnostic {
	severity := protocol.DiagnosticSeverityWarning
	if d.Severity == classfile.Fatal {
		severity = protocol.DiagnosticSeverityError
	}
	source := lsName
	at := protocol.Position{Line: 0, Character: protocol.UInteger(d.Offset)}
	return protocol.Diagnostic{
		Range:    protocol.Range{Start: at, End: at},
		Severity: &severity,
		Code:     &protocol.IntegerOrString{Value: string(d.Code)},
		Source:   &source,
		Message:  d.Message,
	}
}

func uriToPath(uri string) (string, error) {
	if strings.HasPrefix(uri, "file://") {
		parsed, err := url.Parse(uri)
		if err != nil {
			return "", err
		}
		return filepath.Clean(parsed.Path), nil
	}
	return uri, nil
}

func boolPtr(b bool) *bool {
	return &b
}

func syncKindPtr(k protocol.TextDocumentSyncKind) *protocol.TextDocumentSyncKind {
	return &k
}
