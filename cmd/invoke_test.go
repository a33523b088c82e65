package cmd

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/aws/aws-lambda-go/events"
	"github.com/isometry/wsgi-lambda/internal/config"
	"github.com/isometry/wsgi-lambda/internal/echoapp"
	"github.com/isometry/wsgi-lambda/internal/helpers"
	"github.com/isometry/wsgi-lambda/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testEvent = `{
	"httpMethod": "GET",
	"path": "/echo",
	"headers": {"Host": "api.example.com", "X-Forwarded-Proto": "https"},
	"queryStringParameters": {"q": "1"},
	"body": null,
	"requestContext": {"identity": {"sourceIp": "1.2.3.4"}}
}`

const testConfig = `
gateway:
  bodyMode: all
  environ:
    SCRIPT_NAME: /prod
service:
  eventPath: /__event__
`

func loadTestConfig(t *testing.T, content string) {
	t.Helper()
	logger = helpers.NewNoopLogger()

	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	require.NoError(t, config.LoadFromFile(path))
	require.NoError(t, config.SetDefaults())
}

func TestInvoke(t *testing.T) {
	loadTestConfig(t, testConfig)

	testCases := []struct {
		Name  string
		Args  []string
		Stdin string
	}{
		{Name: "stdin", Stdin: testEvent},
		{Name: "stdin_dash", Args: []string{"-"}, Stdin: testEvent},
		{Name: "file", Args: []string{writePayload(t, testEvent)}},
	}

	for _, tc := range testCases {
		t.Run(tc.Name, func(t *testing.T) {
			var out bytes.Buffer
			cmd := cmdInvoke()
			cmd.SetIn(strings.NewReader(tc.Stdin))
			cmd.SetOut(&out)
			cmd.SetArgs(tc.Args)

			require.NoError(t, cmd.ExecuteContext(context.Background()))

			var resp events.APIGatewayProxyResponse
			require.NoError(t, json.Unmarshal(out.Bytes(), &resp))
			assert.Equal(t, http.StatusOK, resp.StatusCode)

			var echo echoapp.Echo
			require.NoError(t, json.Unmarshal([]byte(resp.Body), &echo))
			assert.Equal(t, "/echo", echo.Path)
			assert.Equal(t, "q=1", echo.Query)
			assert.Equal(t, "/prod", echo.ScriptName)
			assert.Equal(t, "api.example.com:443", echo.Environ["HOST"])
			assert.Equal(t, "https", echo.Environ["wsgi.url_scheme"])
		})
	}
}

func TestInvoke_Direct(t *testing.T) {
	loadTestConfig(t, testConfig)

	var out bytes.Buffer
	cmd := cmdInvoke()
	cmd.SetIn(strings.NewReader(`{"REQUEST_METHOD":"GET","PATH_INFO":"/healthz","SERVER_PROTOCOL":"HTTP/1.1"}`))
	cmd.SetOut(&out)
	cmd.SetArgs(nil)

	require.NoError(t, cmd.ExecuteContext(context.Background()))

	var resp models.DirectResponse
	require.NoError(t, json.Unmarshal(out.Bytes(), &resp))
	assert.Equal(t, http.StatusOK, resp.Status)
	assert.Equal(t, []string{`{"status":"ok"}`}, resp.Chunks)
}

func TestInvoke_Errors(t *testing.T) {
	testCases := []struct {
		Name   string
		Config string
		Args   []string
		Stdin  string
	}{
		{Name: "missing_file", Config: testConfig, Args: []string{filepath.Join(t.TempDir(), "missing.json")}},
		{Name: "malformed_event", Config: testConfig, Stdin: `{"httpMethod":"GET"}`},
		{Name: "bad_body_mode", Config: "gateway:\n  bodyMode: stream\n", Stdin: testEvent},
		{Name: "archive_without_bucket", Config: "archive:\n  enabled: true\n", Stdin: testEvent},
	}

	for _, tc := range testCases {
		t.Run(tc.Name, func(t *testing.T) {
			loadTestConfig(t, tc.Config)
			t.Setenv("AWS_REGION", "us-east-1")
			t.Setenv("AWS_EC2_METADATA_DISABLED", "true")

			cmd := cmdInvoke()
			cmd.SetIn(strings.NewReader(tc.Stdin))
			cmd.SetOut(&bytes.Buffer{})
			cmd.SetErr(&bytes.Buffer{})
			cmd.SetArgs(tc.Args)

			assert.Error(t, cmd.ExecuteContext(context.Background()))
		})
	}
}

func TestService(t *testing.T) {
	loadTestConfig(t, testConfig)

	rt, err := setup(context.Background())
	require.NoError(t, err)

	mux := http.NewServeMux()
	mux.Handle(config.Service.Path, rt)
	mux.Handle(config.Service.EventPath, rt)
	srv := httptest.NewServer(mux)
	defer srv.Close()

	t.Run("direct", func(t *testing.T) {
		resp, err := http.Get(srv.URL + "/echo/a?b=c")
		require.NoError(t, err)
		defer func() { _ = resp.Body.Close() }()

		assert.Equal(t, http.StatusOK, resp.StatusCode)
		var echo echoapp.Echo
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&echo))
		assert.Equal(t, "/echo/a", echo.Path)
		assert.Equal(t, "b=c", echo.Query)
	})

	t.Run("event", func(t *testing.T) {
		resp, err := http.Post(srv.URL+"/__event__", "application/json", strings.NewReader(testEvent))
		require.NoError(t, err)
		defer func() { _ = resp.Body.Close() }()

		assert.Equal(t, http.StatusOK, resp.StatusCode)
		var proxy events.APIGatewayProxyResponse
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&proxy))
		assert.Equal(t, http.StatusOK, proxy.StatusCode)
		assert.Contains(t, proxy.Body, `"path":"/echo"`)
	})

	t.Run("event_method_not_allowed", func(t *testing.T) {
		resp, err := http.Get(srv.URL + "/__event__")
		require.NoError(t, err)
		defer func() { _ = resp.Body.Close() }()
		assert.Equal(t, http.StatusMethodNotAllowed, resp.StatusCode)
	})
}

func writePayload(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "event.json")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}
