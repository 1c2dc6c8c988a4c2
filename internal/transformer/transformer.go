package transformer

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/LembergThe/apidocs"
)

type TransformOptions struct {
	// The output mode for the writer instance
	WriterMode apidocs.WriteMode
	// If true, no backup will be created
	NoBackup bool
	// If true, the generated-file banner is omitted (used for previews)
	NoHeader bool
	// If true, the output pragma is required, otherwise transform will error
	RequirePragmaOutput bool
}

func (t *TransformOptions) Pretty() string {
	return fmt.Sprintf("mode=%s backup=%s require_output_pragma=%s",
		writerModeToString(t.WriterMode),
		boolToText(!t.NoBackup),
		boolToText(t.RequirePragmaOutput))
}

func writerModeToString(mode apidocs.WriteMode) string {
	switch mode {
	case apidocs.ModeMarkdown:
		return "Markdown"
	case apidocs.ModeHTML:
		return "HTML"
	default:
		return fmt.Sprintf("Mode(%d)", mode)
	}
}

func boolToText(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}

// Transformer runs the full parse -> expand -> write pipeline for a single
// documentation page.
type Transformer struct {
	parser   *apidocs.Parser
	expander *apidocs.Expander
	backup   *apidocs.BackupManager

	opts TransformOptions
}

// NewTransformer creates a new Transformer instance with the specified
// options [TransformOptions]. The expander carries the API spec and fixture
// store every page is resolved against.
func NewTransformer(expander *apidocs.Expander, opts TransformOptions) *Transformer {
	return &Transformer{
		parser:   apidocs.NewParser(),
		expander: expander,
		backup:   apidocs.NewBackupManager(),
		opts:     opts,
	}
}

type PageSource struct {
	Content  io.Reader
	Metadata apidocs.MetaData
}

// Transform handles standard transformation (using pragmas/default paths)
// and returns the absolute path of the rendered page.
func (t *Transformer) Transform(input PageSource) (string, error) {
	return t.transform(input, "")
}

// TransformToPath forces output to a specific path (for preview shadow
// files).
func (t *Transformer) TransformToPath(input PageSource, outputPath string) (string, error) {
	if outputPath == "" {
		return "", fmt.Errorf("output path is required for shadow transformation")
	}
	return t.transform(input, outputPath)
}

func (t *Transformer) transform(input PageSource, forcedPath string) (string, error) {
	slog.Debug("transforming page", "path", input.Metadata.AbsSource)
	if input.Metadata.AbsSource == "" {
		return "", fmt.Errorf("abs source metadata is required for transformation")
	}

	doc, err := t.parser.ParsePage(input.Content, input.Metadata)
	if err != nil {
		return "", fmt.Errorf("parse error: %w", err)
	}

	expanded, err := t.expander.Expand(doc)
	if err != nil {
		return "", fmt.Errorf("expand error: %w", err)
	}

	var absOutPath string
	if forcedPath != "" {
		absOutPath = forcedPath
	} else if t.opts.RequirePragmaOutput {
		if doc.Pragmas.Output == "" {
			return "", fmt.Errorf("pragma key 'output' is required for transformation")
		}
		absOutPath = filepath.Join(filepath.Dir(input.Metadata.AbsSource), doc.Pragmas.Output)
		if filepath.Clean(absOutPath) == filepath.Clean(input.Metadata.AbsSource) {
			return "", fmt.Errorf("output pragma %q would overwrite the source page", doc.Pragmas.Output)
		}
	} else {
		absOutPath, err = apidocs.ResolveOutputPath(input.Metadata.AbsSource, doc.Pragmas)
		if err != nil {
			return "", fmt.Errorf("resolve output path error: %w", err)
		}
	}

	var bkPath string
	if !t.opts.NoBackup {
		bkPath, err = t.backup.CreateBackupOf(absOutPath)
		if err != nil {
			return "", fmt.Errorf("backup error: %w", err)
		}
	}

	if bkPath != "" {
		slog.Info("file already existed. Created backup", "backup", bkPath, "original", input.Metadata.AbsSource)
	}

	if err := os.MkdirAll(filepath.Dir(absOutPath), 0755); err != nil {
		return "", fmt.Errorf("failed to create output directory: %w", err)
	}

	out, err := os.Create(absOutPath)
	if err != nil {
		return "", fmt.Errorf("failed to create output file: %w", err)
	}
	defer out.Close()

	// The format pragma lets a page override the configured output mode.
	mode := t.opts.WriterMode
	switch doc.Pragmas.Format {
	case "html":
		mode = apidocs.ModeHTML
	case "markdown":
		mode = apidocs.ModeMarkdown
	}
	writer := apidocs.NewWriter(mode)

	if !t.opts.NoHeader {
		metadata := apidocs.WriterMetadata{
			Version:   apidocs.VERSION,
			AbsSource: input.Metadata.AbsSource,
			Generated: time.Now().Format(time.RFC3339),
		}
		if err := writer.WriteHeader(out, metadata); err != nil {
			return "", fmt.Errorf("write header error: %w", err)
		}
	}

	if err := writer.WriteContent(out, expanded); err != nil {
		return "", fmt.Errorf("write error: %w", err)
	}

	return absOutPath, nil
}
