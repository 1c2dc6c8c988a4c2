package apidocs

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestFixtureStore(t *testing.T) {
	fs := NewFixtureStore("testdata/fixtures")

	got, err := fs.Fixture("/dev_fetch_api_key:post", 200)
	require.NoError(t, err)

	want := "{\n" +
		"    \"result\": \"success\",\n" +
		"    \"msg\": \"\",\n" +
		"    \"api_key\": \"abc123\",\n" +
		"    \"email\": \"iago@zulip.com\"\n" +
		"}"
	require.Equal(t, want, got)

	// second lookup is served from cache and stays identical
	again, err := fs.Fixture("/dev_fetch_api_key:post", 200)
	require.NoError(t, err)
	require.Equal(t, got, again)
}

func TestFixtureStoreErrorResponse(t *testing.T) {
	fs := NewFixtureStore("testdata/fixtures")

	got, err := fs.Fixture("/dev_fetch_api_key:post", 400)
	require.NoError(t, err)
	require.Contains(t, got, "\"result\": \"error\"")
}

func TestFixtureNotFound(t *testing.T) {
	fs := NewFixtureStore("testdata/fixtures")

	tests := []struct {
		name   string
		ref    string
		status int
	}{
		{name: "unknown status", ref: "/dev_fetch_api_key:post", status: 503},
		{name: "unknown endpoint", ref: "/nonexistent:post", status: 200},
		{name: "malformed reference", ref: "dev_fetch_api_key", status: 200},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := fs.Fixture(tc.ref, tc.status)
			require.Error(t, err)
			require.ErrorIs(t, err, ErrFixtureNotFound)
		})
	}
}

func TestFixtureRejectsInvalidJSON(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "broken", "post")
	require.NoError(t, os.MkdirAll(path, 0755))
	require.NoError(t, os.WriteFile(filepath.Join(path, "200.json"), []byte("not json"), 0644))

	fs := NewFixtureStore(dir)
	_, err := fs.Fixture("/broken:post", 200)
	require.Error(t, err)
	require.NotErrorIs(t, err, ErrFixtureNotFound)
}
