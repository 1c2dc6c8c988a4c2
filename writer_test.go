package apidocs

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestWriterMarkdownPassthrough(t *testing.T) {
	w := NewWriter(ModeMarkdown)

	var buf bytes.Buffer
	content := "# Title\n\n| a | b |\n| --- | --- |\n| 1 | 2 |\n"
	require.NoError(t, w.WriteContent(&buf, content))
	require.Equal(t, content, buf.String())
}

func TestWriterHTMLRendering(t *testing.T) {
	w := NewWriter(ModeHTML)

	var buf bytes.Buffer
	content := "# Fetch a development API key\n\n" +
		"<!-- tabs:start -->\n\n#### **python**\n\n<!-- tabs:end -->\n\n" +
		"| Argument | Type |\n| --- | --- |\n| `username` | string |\n"
	require.NoError(t, w.WriteContent(&buf, content))

	out := buf.String()
	require.Contains(t, out, "<h1")
	// GFM tables must survive the conversion
	require.Contains(t, out, "<table>")
	require.Contains(t, out, "<code>username</code>")
	// raw tab-section markers pass through for downstream tooling
	require.Contains(t, out, "<!-- tabs:start -->")
}

func TestWriterHeader(t *testing.T) {
	w := NewWriter(ModeMarkdown)

	var buf bytes.Buffer
	require.NoError(t, w.WriteHeader(&buf, WriterMetadata{
		Version:   "0.1.0",
		AbsSource: "/docs/dev_fetch_api_key.api.md",
		Generated: "2024-01-01T00:00:00Z",
	}))

	require.Equal(t,
		"<!-- Generated by apidocs 0.1.0 from /docs/dev_fetch_api_key.api.md at 2024-01-01T00:00:00Z. DO NOT EDIT. -->\n\n",
		buf.String())
}
