package apidocs

import (
	"bytes"
	"fmt"
	"io"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/renderer/html"
)

type WriteMode int

const (
	// ModeMarkdown emits the expanded page as markdown
	ModeMarkdown WriteMode = iota
	// ModeHTML renders the expanded markdown to an HTML fragment
	ModeHTML
)

// WriterMetadata is recorded in the header of generated files so readers
// can trace a rendered page back to its source.
type WriterMetadata struct {
	Version   string
	AbsSource string
	Generated string
}

// Writer writes expanded page content in the configured output mode.
type Writer struct {
	mode WriteMode
	gm   goldmark.Markdown
}

func NewWriter(mode WriteMode) *Writer {
	return &Writer{
		mode: mode,
		// GFM for the generated argument tables, unsafe rendering so the
		// tab-section HTML comments survive conversion
		gm: goldmark.New(
			goldmark.WithExtensions(extension.GFM),
			goldmark.WithRendererOptions(html.WithUnsafe()),
		),
	}
}

// WriteHeader writes a generated-file banner ahead of the page content.
func (w *Writer) WriteHeader(out io.Writer, md WriterMetadata) error {
	_, err := fmt.Fprintf(out, "<!-- Generated by apidocs %s from %s at %s. DO NOT EDIT. -->\n\n",
		md.Version, md.AbsSource, md.Generated)
	return err
}

// WriteContent writes the expanded page, converting to HTML when the writer
// is in [ModeHTML].
func (w *Writer) WriteContent(out io.Writer, expanded string) error {
	if w.mode == ModeMarkdown {
		_, err := io.WriteString(out, expanded)
		return err
	}

	var buf bytes.Buffer
	if err := w.gm.Convert([]byte(expanded), &buf); err != nil {
		return fmt.Errorf("rendering html: %w", err)
	}
	_, err := out.Write(buf.Bytes())
	return err
}
