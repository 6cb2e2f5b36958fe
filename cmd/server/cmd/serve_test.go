package cmd

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/thaivisachecklist/server/internal/config"
)

func TestServeCommandHelp(t *testing.T) {
	cmd := newServeCommand()
	buf := new(bytes.Buffer)
	cmd.SetOut(buf)
	cmd.SetErr(buf)
	cmd.SetArgs([]string{"--help"})

	if err := cmd.Execute(); err != nil {
		t.Fatalf("serve command --help failed: %v", err)
	}

	output := buf.String()

	expectedStrings := []string{
		"Start the HTTP server",
		"--host",
		"--port",
		"server host address",
		"server port",
	}

	for _, expected := range expectedStrings {
		if !strings.Contains(output, expected) {
			t.Errorf("expected help text to contain %q, got:\n%s", expected, output)
		}
	}
}

func TestServeCommandFlagParsing(t *testing.T) {
	tests := []struct {
		name        string
		args        []string
		expectError bool
	}{
		{
			name: "valid host flag",
			args: []string{"--host", "127.0.0.1"},
		},
		{
			name: "valid port flag",
			args: []string{"--port", "9090"},
		},
		{
			name: "valid host and port",
			args: []string{"--host", "0.0.0.0", "--port", "8080"},
		},
		{
			name:        "invalid port value",
			args:        []string{"--port", "invalid"},
			expectError: true,
		},
		{
			name:        "unknown flag",
			args:        []string{"--unknown"},
			expectError: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cmd := newServeCommand()

			err := cmd.ParseFlags(tt.args)

			if tt.expectError && err == nil {
				t.Errorf("expected error but got none")
			}
			if !tt.expectError && err != nil {
				t.Errorf("unexpected error: %v", err)
			}
		})
	}
}

func TestServeCommandGlobalFlags(t *testing.T) {
	root := newRootCommand()

	buf := new(bytes.Buffer)
	root.SetOut(buf)
	root.SetErr(buf)
	root.SetArgs([]string{"serve", "--help"})

	if err := root.Execute(); err != nil {
		t.Fatalf("serve command with global flags failed: %v", err)
	}

	output := buf.String()

	globalFlags := []string{"--config", "--log-level", "--log-format"}
	for _, flag := range globalFlags {
		if !strings.Contains(output, flag) {
			t.Errorf("expected help text to contain global flag %q, got:\n%s", flag, output)
		}
	}
}

func TestLoadConfigDefaults(t *testing.T) {
	t.Setenv("ENVIRONMENT", "development")

	cfg, err := loadConfig()
	if err != nil {
		t.Fatalf("loadConfig should succeed without any env vars: %v", err)
	}

	if cfg.Server.Host != "0.0.0.0" {
		t.Errorf("expected default host 0.0.0.0, got %s", cfg.Server.Host)
	}
	if cfg.Server.Port != 8080 {
		t.Errorf("expected default port 8080, got %d", cfg.Server.Port)
	}
}

func TestLoadConfigFlagOverrides(t *testing.T) {
	t.Setenv("ENVIRONMENT", "development")

	logLevel = "debug"
	logFormat = "console"
	defer func() {
		logLevel = ""
		logFormat = ""
	}()

	cfg, err := loadConfig()
	if err != nil {
		t.Fatalf("loadConfig failed: %v", err)
	}

	if cfg.Logging.Level != "debug" {
		t.Errorf("expected log level 'debug', got %s", cfg.Logging.Level)
	}
	if cfg.Logging.Format != "console" {
		t.Errorf("expected log format 'console', got %s", cfg.Logging.Format)
	}
}

func TestLoadConfigFile(t *testing.T) {
	t.Setenv("ENVIRONMENT", "")

	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("server:\n  port: 9191\nenvironment: staging\n"), 0o600))

	configPath = path
	defer func() { configPath = "" }()

	cfg, err := loadConfig()
	require.NoError(t, err)
	assert.Equal(t, 9191, cfg.Server.Port)
	assert.Equal(t, "staging", cfg.Environment)
}

func TestLoadConfigProductionRequiresOrigins(t *testing.T) {
	t.Setenv("ENVIRONMENT", "production")
	t.Setenv("CORS_ALLOWED_ORIGINS", "")

	_, err := loadConfig()
	assert.Error(t, err)
}

func TestBuildRouter(t *testing.T) {
	cfg := config.Defaults()
	cfg.Environment = "test"
	cfg.Security.CSRFKey = strings.Repeat("k", 32)
	cfg.Security.CookieHashKey = strings.Repeat("h", 32)

	router, err := buildRouter(cfg, zerolog.Nop())
	require.NoError(t, err)
	defer router.Close()

	rec := httptest.NewRecorder()
	router.Handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/version", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"version":"`+Version+`"`)
}
