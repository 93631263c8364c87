package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfigIsValid(t *testing.T) {
	require.NoError(t, DefaultConfig().Validate())
}

func TestLoad_MissingFileUsesDefaults(t *testing.T) {
	t.Setenv("CAREER_API_URL", "")
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)
	assert.Equal(t, "http://localhost:5050/api", cfg.API.BaseURL)
	assert.Equal(t, 800*time.Millisecond, cfg.Quiz.AdvanceDelay)
}

func TestLoad_FileThenEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	data := []byte(`
api:
  base_url: https://career.example.com/api
  login_path: /login
  timeout: 5s
quiz:
  default_mode: hsc
`)
	require.NoError(t, os.WriteFile(path, data, 0o600))

	t.Setenv("CAREER_API_URL", "")
	t.Setenv("CAREER_LOG_LEVEL", "debug")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "https://career.example.com/api", cfg.API.BaseURL)
	assert.Equal(t, "/login", cfg.API.LoginPath)
	assert.Equal(t, 5*time.Second, cfg.API.Timeout)
	assert.Equal(t, "hsc", cfg.Quiz.DefaultMode)
	assert.Equal(t, "debug", cfg.Logging.Level)

	t.Setenv("CAREER_API_URL", "http://127.0.0.1:9999/api")
	cfg, err = Load(path)
	require.NoError(t, err)
	assert.Equal(t, "http://127.0.0.1:9999/api", cfg.API.BaseURL)
}

func TestLoad_BadYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("api: [unclosed"), 0o600))
	_, err := Load(path)
	require.Error(t, err)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{"defaults", func(*Config) {}, false},
		{"relative url", func(c *Config) { c.API.BaseURL = "/api" }, true},
		{"login path without slash", func(c *Config) { c.API.LoginPath = "login" }, true},
		{"zero timeout", func(c *Config) { c.API.Timeout = 0 }, true},
		{"provider without key", func(c *Config) { c.Auth.ProviderURL = "https://x.supabase.co" }, true},
		{"provider with key", func(c *Config) {
			c.Auth.ProviderURL = "https://x.supabase.co"
			c.Auth.AnonKey = "anon"
		}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}
