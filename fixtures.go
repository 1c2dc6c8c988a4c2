package apidocs

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
)

// FixtureStore serves stored example API responses, keyed by endpoint
// reference and HTTP status code.
//
// Fixtures live on disk as one JSON file per response:
//
//	<root>/dev_fetch_api_key/post/200.json
//
// where the directory is the endpoint path with its leading '/' stripped.
// Loaded fixtures are cached for further use. A FixtureStore is safe for
// concurrent use.
type FixtureStore struct {
	root string

	mu    sync.Mutex
	cache map[string]string
}

func NewFixtureStore(root string) *FixtureStore {
	return &FixtureStore{
		root:  root,
		cache: make(map[string]string),
	}
}

// Fixture returns the example JSON response for (endpoint reference,
// status), re-indented deterministically. Fails with [ErrFixtureNotFound]
// when no fixture file exists for the pair.
func (fs *FixtureStore) Fixture(ref string, status int) (string, error) {
	fs.mu.Lock()
	defer fs.mu.Unlock()

	key := fmt.Sprintf("%s#%d", ref, status)
	if v, ok := fs.cache[key]; ok {
		return v, nil
	}

	path, err := fs.fixturePath(ref, status)
	if err != nil {
		return "", err
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return "", fmt.Errorf("%w: no fixture for %s status %d (looked in %s)",
				ErrFixtureNotFound, ref, status, path)
		}
		return "", fmt.Errorf("reading fixture: %w", err)
	}

	rendered, err := indentJSON(data)
	if err != nil {
		return "", fmt.Errorf("fixture %s is not valid JSON: %w", path, err)
	}

	fs.cache[key] = rendered
	return rendered, nil
}

func (fs *FixtureStore) fixturePath(ref string, status int) (string, error) {
	endpoint, method, ok := strings.Cut(ref, ":")
	if !ok {
		return "", fmt.Errorf("%w: malformed endpoint reference %q", ErrFixtureNotFound, ref)
	}
	endpoint = strings.TrimPrefix(endpoint, "/")

	return filepath.Join(fs.root, filepath.FromSlash(endpoint), method, fmt.Sprintf("%d.json", status)), nil
}

// indentJSON normalizes fixture content so rendered pages do not depend on
// how the fixture file happened to be formatted.
func indentJSON(data []byte) (string, error) {
	var buf bytes.Buffer
	if err := json.Indent(&buf, bytes.TrimSpace(data), "", "    "); err != nil {
		return "", err
	}
	return buf.String(), nil
}
