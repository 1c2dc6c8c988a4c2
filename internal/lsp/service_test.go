package lsp

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/LembergThe/apidocs"
	"github.com/sourcegraph/go-lsp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSpecYAML = `
paths:
  /dev_fetch_api_key:
    post:
      description: Fetch a development API key.
      parameters:
        - name: username
          in: query
          description: The email address for the user that owns the API key.
          required: true
          schema:
            type: string
`

func newTestService(t *testing.T) *DocumentService {
	t.Helper()

	spec, err := apidocs.ParseAPISpec([]byte(testSpecYAML))
	require.NoError(t, err)

	expander := apidocs.NewExpander(spec, apidocs.NewFixtureStore(t.TempDir()))

	opts := DefaultDocumentServiceOptions
	opts.ShadowRoot = t.TempDir()

	svc, err := NewDocumentService(expander, opts)
	require.NoError(t, err)
	return svc
}

func TestDocumentServiceOptionsValidate(t *testing.T) {
	require.NoError(t, DefaultDocumentServiceOptions.Validate())

	var empty DocumentServiceOptions
	require.Error(t, empty.Validate())
}

func TestDiagnoseCleanPage(t *testing.T) {
	svc := newTestService(t)

	page := "# Title\n\n{generate_api_description(/dev_fetch_api_key:post)}\n"
	diags := svc.Diagnose(page, lsp.DocumentURI("file:///docs/page.api.md"))
	require.Empty(t, diags)
}

func TestDiagnoseReportsDirectivePosition(t *testing.T) {
	tests := []struct {
		name        string
		page        string
		wantLine    int
		wantMessage string
	}{
		{
			name:        "unknown endpoint",
			page:        "# Title\n\n{generate_api_description(/nonexistent:post)}\n",
			wantLine:    2, // zero-indexed LSP line for source line 3
			wantMessage: "unknown endpoint",
		},
		{
			name:        "unknown directive",
			page:        "{generate_frobnicator}\n",
			wantLine:    0,
			wantMessage: "unknown directive",
		},
		{
			name:        "unterminated directive",
			page:        "{generate_api_description(/dev_fetch_api_key:post)\n",
			wantLine:    0,
			wantMessage: "malformed directive",
		},
		{
			name:        "unbalanced tabs",
			page:        "{start_tabs}\n{tab|python}\n",
			wantLine:    0,
			wantMessage: "unbalanced tab block",
		},
	}

	svc := newTestService(t)
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			diags := svc.Diagnose(tc.page, lsp.DocumentURI("file:///docs/page.api.md"))
			require.Len(t, diags, 1)

			d := diags[0]
			assert.Equal(t, lsp.Error, d.Severity)
			assert.Equal(t, "apidocs", d.Source)
			assert.Equal(t, tc.wantLine, d.Range.Start.Line)
			assert.Contains(t, d.Message, tc.wantMessage)
			assert.Greater(t, d.Range.End.Character, d.Range.Start.Character)
		})
	}
}

func TestTransformPreviewDoc(t *testing.T) {
	svc := newTestService(t)

	srcDir := t.TempDir()
	srcPath := filepath.Join(srcDir, "page.api.md")
	originalURI := lsp.DocumentURI("file://" + srcPath)

	page := "# Title\n\n{generate_api_description(/dev_fetch_api_key:post)}\n"
	shadowURI, err := svc.TransformPreviewDoc(page, originalURI)
	require.NoError(t, err)
	require.True(t, strings.HasPrefix(shadowURI, "file://"))
	require.True(t, strings.HasSuffix(shadowURI, shadowExt))

	// shadow file mirrors the source path under the shadow root
	shadowPath, err := svc.URIToPath(lsp.DocumentURI(shadowURI))
	require.NoError(t, err)
	require.True(t, strings.HasPrefix(shadowPath, svc.ShadowRoot()))

	content, err := os.ReadFile(shadowPath)
	require.NoError(t, err)
	require.Contains(t, string(content), "Fetch a development API key.")

	// the shadow mapping resolves back to the original document
	got, ok := svc.OriginalURI(shadowURI)
	require.True(t, ok)
	require.Equal(t, string(originalURI), got)
}

func TestTransformPreviewDocBrokenPage(t *testing.T) {
	svc := newTestService(t)

	_, err := svc.TransformPreviewDoc("{generate_frobnicator}\n", lsp.DocumentURI("file:///docs/page.api.md"))
	require.Error(t, err)
}
