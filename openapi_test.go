package apidocs

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLoadAPISpec(t *testing.T) {
	spec, err := LoadAPISpec("testdata/spec/zulip.yaml")
	require.NoError(t, err)
	require.Equal(t, "testdata/spec/zulip.yaml", spec.Source)

	op, err := spec.Operation("/dev_fetch_api_key:post")
	require.NoError(t, err)
	require.Equal(t, "/dev_fetch_api_key", op.Endpoint)
	require.Equal(t, "post", op.Method)
	require.Equal(t, "Fetch a development API key", op.Summary)
	require.Contains(t, op.Description, "development servers")

	require.Len(t, op.Parameters, 1)
	require.Equal(t, Parameter{
		Name:        "username",
		Type:        "string",
		Required:    true,
		Description: "The email address for the user that owns the API key.",
	}, op.Parameters[0])
}

func TestLoadAPISpecMissingFile(t *testing.T) {
	_, err := LoadAPISpec("testdata/spec/nope.yaml")
	require.Error(t, err)
	require.ErrorIs(t, err, ErrSpecFileNotFound)
}

func TestOperationUnknownEndpoint(t *testing.T) {
	spec, err := LoadAPISpec("testdata/spec/zulip.yaml")
	require.NoError(t, err)

	_, err = spec.Operation("/nonexistent:post")
	require.Error(t, err)
	require.ErrorIs(t, err, ErrUnknownEndpoint)
}

func TestEndpointsAreSorted(t *testing.T) {
	spec, err := LoadAPISpec("testdata/spec/zulip.yaml")
	require.NoError(t, err)

	require.Equal(t, []string{
		"/dev_fetch_api_key:post",
		"/get_stream_id:get",
		"/server_settings:get",
	}, spec.Endpoints())
}

func TestParseAPISpecRejectsBadYAML(t *testing.T) {
	_, err := ParseAPISpec([]byte("paths: [not: a: mapping"))
	require.Error(t, err)
}
