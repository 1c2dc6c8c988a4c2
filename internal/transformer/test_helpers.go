package transformer

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/LembergThe/apidocs"
	"github.com/stretchr/testify/require"
)

type testDir struct {
	path string
	t    *testing.T
}

func newTestDir(t *testing.T) *testDir {
	t.Helper()

	return &testDir{
		path: t.TempDir(),
		t:    t,
	}
}

func (td *testDir) createFile(name, content string) string {
	td.t.Helper()

	path := filepath.Join(td.path, name)
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		td.t.Fatalf("failed to create test dir: %v", err)
	}
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		td.t.Fatalf("failed to create test file: %v", err)
	}
	return path
}

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

// newTestExpander builds an expander over an inline spec and a fixture
// store rooted in the test directory.
func newTestExpander(t *testing.T, td *testDir) *apidocs.Expander {
	t.Helper()

	spec, err := apidocs.ParseAPISpec([]byte(testSpecYAML))
	require.NoError(t, err)
	spec.Source = filepath.Join(td.path, "zulip.yaml")

	td.createFile(filepath.Join("fixtures", "dev_fetch_api_key", "post", "200.json"),
		`{"result":"success","api_key":"abc123"}`)

	return apidocs.NewExpander(spec, apidocs.NewFixtureStore(filepath.Join(td.path, "fixtures")))
}
