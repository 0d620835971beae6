package server_test

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/devantler-tech/msail/pkg/scoring"
	"github.com/devantler-tech/msail/pkg/scoring/server"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const echoScript = `function run(input) return input end`

func TestNew_InvalidConfig(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name        string
		config      server.Config
		expectedErr error
	}{
		{
			name:        "auth without primary key",
			config:      server.Config{AuthEnabled: true},
			expectedErr: server.ErrPrimaryKeyRequired,
		},
		{
			name:        "cert without key",
			config:      server.Config{TLSCertFile: "cert.pem"},
			expectedErr: server.ErrTLSFilesIncomplete,
		},
		{
			name:        "key without cert",
			config:      server.Config{TLSKeyFile: "key.pem"},
			expectedErr: server.ErrTLSFilesIncomplete,
		},
		{
			name:        "runtime without model",
			config:      server.Config{ScriptPath: "score.lua"},
			expectedErr: scoring.ErrModelPathEmpty,
		},
	}

	for _, testCase := range tests {
		t.Run(testCase.name, func(t *testing.T) {
			t.Parallel()

			_, err := server.New(testCase.config, testLogger())

			require.ErrorIs(t, err, testCase.expectedErr)
		})
	}
}

func TestNew_BrokenScript(t *testing.T) {
	t.Parallel()

	config := server.Config{
		ModelPath:  writeFile(t, "model.bin", "weights"),
		ScriptPath: writeFile(t, "score.lua", `function init() error("no model") end function run(input) end`),
	}

	_, err := server.New(config, testLogger())

	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to initialize scoring runtime")
}

func TestScore(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name         string
		script       string
		input        string
		expectedBody string
	}{
		{
			name:         "prediction passes through",
			script:       `function run(input) return '{"y":[1]}' end`,
			input:        `{"x":[2]}`,
			expectedBody: `{"y":[1]}`,
		},
		{
			name:         "echoed input",
			script:       echoScript,
			input:        `{"x":[2]}`,
			expectedBody: `{"x":[2]}`,
		},
		{
			name:         "script failure answers 200 with error payload",
			script:       `function run(input) error("boom") end`,
			input:        `{}`,
			expectedBody: `"error"`,
		},
	}

	for _, testCase := range tests {
		t.Run(testCase.name, func(t *testing.T) {
			t.Parallel()

			endpoint := newTestServer(t, server.Config{}, testCase.script)

			response, err := http.Post(endpoint+"/score", "application/json", strings.NewReader(testCase.input))
			require.NoError(t, err)

			defer func() { _ = response.Body.Close() }()

			body, err := io.ReadAll(response.Body)
			require.NoError(t, err)

			assert.Equal(t, http.StatusOK, response.StatusCode)
			assert.Equal(t, "application/json", response.Header.Get("Content-Type"))
			assert.Contains(t, string(body), testCase.expectedBody)
		})
	}
}

func TestScore_MethodNotAllowed(t *testing.T) {
	t.Parallel()

	endpoint := newTestServer(t, server.Config{}, echoScript)

	response, err := http.Get(endpoint + "/score")
	require.NoError(t, err)

	defer func() { _ = response.Body.Close() }()

	assert.Equal(t, http.StatusMethodNotAllowed, response.StatusCode)
}

func TestHealth(t *testing.T) {
	t.Parallel()

	endpoint := newTestServer(t, server.Config{AuthEnabled: true, PrimaryKey: "key"}, echoScript)

	response, err := http.Get(endpoint + "/health")
	require.NoError(t, err)

	defer func() { _ = response.Body.Close() }()

	body, err := io.ReadAll(response.Body)
	require.NoError(t, err)

	assert.Equal(t, http.StatusOK, response.StatusCode)
	assert.JSONEq(t, `{"status":"healthy"}`, string(body))
}

func TestScore_Auth(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name           string
		config         server.Config
		authorization  string
		expectedStatus int
	}{
		{
			name:           "primary key accepted",
			config:         server.Config{AuthEnabled: true, PrimaryKey: "primary", SecondaryKey: "secondary"},
			authorization:  "Bearer primary",
			expectedStatus: http.StatusOK,
		},
		{
			name:           "secondary key accepted",
			config:         server.Config{AuthEnabled: true, PrimaryKey: "primary", SecondaryKey: "secondary"},
			authorization:  "Bearer secondary",
			expectedStatus: http.StatusOK,
		},
		{
			name:           "wrong key rejected",
			config:         server.Config{AuthEnabled: true, PrimaryKey: "primary"},
			authorization:  "Bearer guess",
			expectedStatus: http.StatusUnauthorized,
		},
		{
			name:           "missing header rejected",
			config:         server.Config{AuthEnabled: true, PrimaryKey: "primary"},
			expectedStatus: http.StatusUnauthorized,
		},
		{
			name:           "empty bearer key rejected",
			config:         server.Config{AuthEnabled: true, PrimaryKey: "primary"},
			authorization:  "Bearer ",
			expectedStatus: http.StatusUnauthorized,
		},
		{
			name:           "auth disabled accepts anonymous requests",
			config:         server.Config{},
			expectedStatus: http.StatusOK,
		},
	}

	for _, testCase := range tests {
		t.Run(testCase.name, func(t *testing.T) {
			t.Parallel()

			endpoint := newTestServer(t, testCase.config, echoScript)

			request, err := http.NewRequestWithContext(
				t.Context(), http.MethodPost, endpoint+"/score", strings.NewReader(`{}`),
			)
			require.NoError(t, err)

			if testCase.authorization != "" {
				request.Header.Set("Authorization", testCase.authorization)
			}

			response, err := http.DefaultClient.Do(request)
			require.NoError(t, err)

			defer func() { _ = response.Body.Close() }()

			assert.Equal(t, testCase.expectedStatus, response.StatusCode)
		})
	}
}

func TestServe_StopsOnContextCancel(t *testing.T) {
	t.Parallel()

	config := server.Config{
		ModelPath:  writeFile(t, "model.bin", "weights"),
		ScriptPath: writeFile(t, "score.lua", echoScript),
	}

	srv, err := server.New(config, testLogger())
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(t.Context())
	serveDone := make(chan error, 1)

	go func() {
		serveDone <- srv.Serve(ctx)
	}()

	cancel()

	select {
	case err := <-serveDone:
		require.NoError(t, err)
	case <-time.After(10 * time.Second):
		t.Fatal("serve did not stop after context cancellation")
	}
}

func TestLoadConfig(t *testing.T) {
	t.Setenv("MSAIL_PORT", "9090")
	t.Setenv("MSAIL_MODEL", "/var/msail/model.bin")
	t.Setenv("MSAIL_SCRIPT", "/var/msail/score.lua")
	t.Setenv("MSAIL_AUTH_ENABLED", "true")
	t.Setenv("MSAIL_PRIMARY_KEY", "primary")
	t.Setenv("MSAIL_SECONDARY_KEY", "secondary")

	config, err := server.LoadConfig()

	require.NoError(t, err)
	assert.Equal(t, 9090, config.Port)
	assert.Equal(t, "/var/msail/model.bin", config.ModelPath)
	assert.Equal(t, "/var/msail/score.lua", config.ScriptPath)
	assert.True(t, config.AuthEnabled)
	assert.Equal(t, "primary", config.PrimaryKey)
	assert.Equal(t, "secondary", config.SecondaryKey)
	assert.False(t, config.TLSEnabled())
}

func TestLoadConfig_Defaults(t *testing.T) {
	// t.Setenv isolates the variables; unsetting afterwards leaves them absent
	// for the parse while restore-on-cleanup still applies.
	for _, key := range []string{"MSAIL_PORT", "MSAIL_AUTH_ENABLED", "MSAIL_PRIMARY_KEY"} {
		t.Setenv(key, "placeholder")
		require.NoError(t, os.Unsetenv(key))
	}

	config, err := server.LoadConfig()

	require.NoError(t, err)
	assert.Equal(t, 8080, config.Port)
	assert.False(t, config.AuthEnabled)
}

func TestLoadConfig_AuthWithoutKey(t *testing.T) {
	t.Setenv("MSAIL_AUTH_ENABLED", "true")
	t.Setenv("MSAIL_PRIMARY_KEY", "")

	_, err := server.LoadConfig()

	require.ErrorIs(t, err, server.ErrPrimaryKeyRequired)
}

// newTestServer starts a scoring server for the script and returns its base URL.
func newTestServer(t *testing.T, config server.Config, script string) string {
	t.Helper()

	config.ModelPath = writeFile(t, "model.bin", "weights")
	config.ScriptPath = writeFile(t, "score.lua", script)

	srv, err := server.New(config, testLogger())
	require.NoError(t, err)

	testServer := httptest.NewServer(srv.Handler())
	t.Cleanup(testServer.Close)

	return testServer.URL
}

func testLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(io.Discard)

	return logger
}

func writeFile(t *testing.T, name, content string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	return path
}
