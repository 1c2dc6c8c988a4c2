package apidocs

import (
	"bytes"
	"os"
	"testing"

	"github.com/stretchr/testify/require"
	"gotest.tools/v3/golden"
)

func TestCanRenderFullPages(t *testing.T) {
	tests := []struct {
		name   string
		inFile string
	}{
		{
			name:   "dev_fetch_api_key page",
			inFile: "dev_fetch_api_key",
		},
	}

	spec, err := LoadAPISpec("testdata/spec/zulip.yaml")
	require.NoError(t, err)

	expander := NewExpander(spec, NewFixtureStore("testdata/fixtures"))

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			source := "testdata/pages/" + tt.inFile + ".api.md"
			input, err := os.ReadFile(source)
			require.NoError(t, err)

			parser := NewParser()
			doc, err := parser.ParsePage(bytes.NewReader(input), MetaData{Source: source})
			require.NoError(t, err)

			expanded, err := expander.Expand(doc)
			require.NoError(t, err)

			var buf bytes.Buffer
			writer := NewWriter(ModeMarkdown)
			err = writer.WriteHeader(&buf, WriterMetadata{
				Version:   VERSION,
				AbsSource: source,
				Generated: "2024-01-01T00:00:00Z",
			})
			require.NoError(t, err)
			err = writer.WriteContent(&buf, expanded)
			require.NoError(t, err)

			golden.Assert(t, buf.String(), "expand/"+tt.inFile+".golden.md")
		})
	}
}
