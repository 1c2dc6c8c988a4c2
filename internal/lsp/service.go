package lsp

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"net/url"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/LembergThe/apidocs"
	"github.com/LembergThe/apidocs/internal/transformer"
	"github.com/sourcegraph/go-lsp"
)

// shadowExt is the extension of generated preview files, used to recognize
// them during cleanup.
const shadowExt = ".preview.md"

type DocumentServiceOptions struct {
	PreviewTransformerOpts transformer.TransformOptions

	// Root directory for preview shadow files
	ShadowRoot string
}

var DefaultDocumentServiceOptions = DocumentServiceOptions{
	ShadowRoot: filepath.Join(os.TempDir(), "apidocs-workspace"),
	PreviewTransformerOpts: transformer.TransformOptions{
		WriterMode: apidocs.ModeMarkdown,
		NoBackup:   true,
		NoHeader:   true,
	},
}

func (o DocumentServiceOptions) Validate() error {
	if o.ShadowRoot == "" {
		return fmt.Errorf("shadow root directory is required")
	}

	return nil
}

// DocumentService owns page expansion on behalf of the language server: it
// produces diagnostics for broken directives and maintains expanded preview
// files in a shadow workspace.
//
// Shadow files mirror the source file structure:
//
//	shadow   = /tmp/apidocs-workspace/Users/me/docs/dev_fetch_api_key.api.md.preview.md
//	original = file:///Users/me/docs/dev_fetch_api_key.api.md
type DocumentService struct {
	// Maps shadow URIs to original URIs
	shadowMap map[string]string
	// The root directory for shadow files, eg /tmp/apidocs-workspace
	shadowRoot string

	parser             *apidocs.Parser
	expander           *apidocs.Expander
	previewTransformer *transformer.Transformer
}

func NewDocumentService(expander *apidocs.Expander, opts DocumentServiceOptions) (*DocumentService, error) {
	if err := opts.Validate(); err != nil {
		return nil, fmt.Errorf("invalid document service options: %w", err)
	}

	d := &DocumentService{
		shadowMap:          make(map[string]string),
		shadowRoot:         opts.ShadowRoot,
		parser:             apidocs.NewParser(),
		expander:           expander,
		previewTransformer: transformer.NewTransformer(expander, opts.PreviewTransformerOpts),
	}

	// Cleanup shadow files on GC finalization
	runtime.SetFinalizer(d, func(d *DocumentService) {
		if err := d.CleanupShadowFiles(); err != nil {
			slog.Error("failed to cleanup shadow files", "error", err)
		}
	})

	return d, nil
}

// Diagnose parses and expands the page content and converts any failure
// into LSP diagnostics at the offending directive. An empty slice means the
// page expands cleanly.
func (s *DocumentService) Diagnose(text string, documentURI lsp.DocumentURI) []lsp.Diagnostic {
	fsPath, err := s.URIToPath(documentURI)
	if err != nil {
		slog.Warn("invalid document URI", "uri", documentURI, "error", err)
		return nil
	}

	doc, err := s.parser.ParsePage(strings.NewReader(text), apidocs.MetaData{
		Source:    fsPath,
		AbsSource: fsPath,
	})
	if err != nil {
		return []lsp.Diagnostic{toDiagnostic(err)}
	}

	if _, err := s.expander.Expand(doc); err != nil {
		return []lsp.Diagnostic{toDiagnostic(err)}
	}

	return nil
}

// toDiagnostic maps an expansion failure onto the source range of the
// directive that caused it. Failures with no position information land on
// the first line.
func toDiagnostic(err error) lsp.Diagnostic {
	d := lsp.Diagnostic{
		Severity: lsp.Error,
		Source:   "apidocs",
		Message:  err.Error(),
	}

	var dirErr *apidocs.DirectiveError
	if errors.As(err, &dirErr) {
		start := lsp.Position{Line: dirErr.Pos.Line - 1, Character: dirErr.Pos.Col - 1}
		d.Range = lsp.Range{
			Start: start,
			End:   lsp.Position{Line: start.Line, Character: start.Character + len(dirErr.Raw)},
		}
	}

	return d
}

// TransformPreviewDoc expands the document into its shadow preview file and
// returns the shadow URI.
func (s *DocumentService) TransformPreviewDoc(text string, documentURI lsp.DocumentURI) (shadowURI string, err error) {
	fsPath, err := s.URIToPath(documentURI)
	if err != nil {
		return "", fmt.Errorf("invalid document URI: %w", err)
	}

	// Mirror the original file path under the shadow root
	shadowPath := filepath.Join(s.shadowRoot, fsPath+shadowExt)
	if err := os.MkdirAll(filepath.Dir(shadowPath), 0755); err != nil {
		return "", err
	}

	source := transformer.PageSource{
		Content: strings.NewReader(text),
		Metadata: apidocs.MetaData{
			Source:    fsPath,
			AbsSource: fsPath,
		},
	}

	transformedPath, err := s.previewTransformer.TransformToPath(source, shadowPath)
	if err != nil {
		return "", fmt.Errorf("transform error: %w", err)
	}

	shadowURI = s.PathToURI(transformedPath)
	originalURI := string(documentURI)
	s.shadowMap[shadowURI] = originalURI

	slog.Debug("transformed document",
		"original", originalURI,
		"transformed", transformedPath,
		"shadow", shadowURI,
	)

	return shadowURI, nil
}

// ShadowRoot returns the root directory for shadow files
func (s *DocumentService) ShadowRoot() string {
	return s.shadowRoot
}

// OriginalURI returns the original document URI for a shadow file
func (s *DocumentService) OriginalURI(shadowURI string) (string, bool) {
	uri, exists := s.shadowMap[shadowURI]
	return uri, exists
}

// URIToPath converts an LSP URI to a filesystem path
func (s *DocumentService) URIToPath(uri lsp.DocumentURI) (string, error) {
	u, err := url.Parse(string(uri))
	if err != nil {
		return "", err
	}
	return u.Path, nil
}

// PathToURI converts a filesystem path to an LSP URI
func (s *DocumentService) PathToURI(path string) string {
	return "file://" + path
}

// CleanupShadowFiles removes all shadow files
func (s *DocumentService) CleanupShadowFiles() error {
	if s.shadowRoot != DefaultDocumentServiceOptions.ShadowRoot {
		slog.Info("skipping shadow file cleanup due to user specified", "path", s.shadowRoot)
		return nil
	}

	return filepath.WalkDir(s.shadowRoot, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			slog.Warn("error accessing path", "path", path, "error", err)
			return nil
		}

		if !d.IsDir() && strings.HasSuffix(d.Name(), shadowExt) {
			if err := os.Remove(path); err != nil {
				slog.Warn("failed to remove shadow file", "path", path, "error", err)
			} else {
				slog.Debug("removed shadow file", "path", path)
			}
		}
		return nil
	})
}
