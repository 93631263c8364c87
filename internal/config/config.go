package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds client configuration. Values are layered: defaults, then the
// optional YAML file, then environment variables, then command-line flags.
type Config struct {
	API     APIConfig     `yaml:"api"`
	Auth    AuthConfig    `yaml:"auth"`
	Storage StorageConfig `yaml:"storage"`
	Logging LoggingConfig `yaml:"logging"`
	Quiz    QuizConfig    `yaml:"quiz"`
}

// APIConfig configures the remote career API.
type APIConfig struct {
	// BaseURL is the API root, including any path prefix such as /api.
	BaseURL string `yaml:"base_url"`

	// LoginPath selects the login endpoint. Older deployments expose
	// /login instead of /auth/login.
	LoginPath string `yaml:"login_path"`

	// Timeout bounds a single request.
	Timeout time.Duration `yaml:"timeout"`

	// AnalyzeTimeout bounds the detached answer analysis call.
	AnalyzeTimeout time.Duration `yaml:"analyze_timeout"`
}

// AuthConfig configures the external identity provider handoff.
type AuthConfig struct {
	ProviderURL string `yaml:"provider_url"`
	AnonKey     string `yaml:"anon_key"`
	Provider    string `yaml:"provider"`
	// CallbackAddr is the loopback address the callback listener binds.
	CallbackAddr string `yaml:"callback_addr"`
}

// StorageConfig configures local persistence.
type StorageConfig struct {
	DBPath string `yaml:"db_path"`
}

// LoggingConfig configures the structured log file.
type LoggingConfig struct {
	Level string `yaml:"level"`
	File  string `yaml:"file"`
}

// QuizConfig holds quiz presentation timings.
type QuizConfig struct {
	AdvanceDelay time.Duration `yaml:"advance_delay"`
	SplashDelay  time.Duration `yaml:"splash_delay"`
	QuoteDelay   time.Duration `yaml:"quote_delay"`
	DefaultMode  string        `yaml:"default_mode"`
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() Config {
	return Config{
		API: APIConfig{
			BaseURL:        "http://localhost:5050/api",
			LoginPath:      "/auth/login",
			Timeout:        15 * time.Second,
			AnalyzeTimeout: 10 * time.Second,
		},
		Auth: AuthConfig{
			Provider:     "google",
			CallbackAddr: "127.0.0.1:5173",
		},
		Logging: LoggingConfig{
			Level: "info",
		},
		Quiz: QuizConfig{
			AdvanceDelay: 800 * time.Millisecond,
			SplashDelay:  2 * time.Second,
			QuoteDelay:   3 * time.Second,
			DefaultMode:  "ssc",
		},
	}
}

// Load builds a Config from defaults, the YAML file at path (skipped when
// path is empty or the file does not exist) and the environment.
func Load(path string) (Config, error) {
	cfg := DefaultConfig()
	if path != "" {
		if err := cfg.mergeFile(path); err != nil {
			return Config{}, err
		}
	}
	cfg.applyEnv()
	return cfg, nil
}

func (c *Config) mergeFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("read config %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("parse config %s: %w", path, err)
	}
	return nil
}

func (c *Config) applyEnv() {
	if v := os.Getenv("CAREER_API_URL"); v != "" {
		c.API.BaseURL = v
	}
	if v := os.Getenv("CAREER_LOGIN_PATH"); v != "" {
		c.API.LoginPath = v
	}
	if v := os.Getenv("CAREER_API_TIMEOUT"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			c.API.Timeout = d
		}
	}
	if v := os.Getenv("CAREER_AUTH_URL"); v != "" {
		c.Auth.ProviderURL = v
	}
	if v := os.Getenv("CAREER_AUTH_ANON_KEY"); v != "" {
		c.Auth.AnonKey = v
	}
	if v := os.Getenv("CAREER_DB"); v != "" {
		c.Storage.DBPath = v
	}
	if v := os.Getenv("CAREER_LOG_LEVEL"); v != "" {
		c.Logging.Level = v
	}
	if v := os.Getenv("CAREER_LOG_FILE"); v != "" {
		c.Logging.File = v
	}
}

// Validate checks the fields the client cannot run without.
func (c Config) Validate() error {
	u, err := url.Parse(c.API.BaseURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("api.base_url %q is not an absolute URL", c.API.BaseURL)
	}
	if !strings.HasPrefix(c.API.LoginPath, "/") {
		return fmt.Errorf("api.login_path %q must start with /", c.API.LoginPath)
	}
	if c.API.Timeout <= 0 {
		return fmt.Errorf("api.timeout must be positive")
	}
	if c.Auth.ProviderURL != "" && c.Auth.AnonKey == "" {
		return fmt.Errorf("auth.anon_key is required when auth.provider_url is set")
	}
	return nil
}

// OAuthEnabled reports whether the identity provider handoff is configured.
func (c Config) OAuthEnabled() bool {
	return c.Auth.ProviderURL != ""
}

// DataDir resolves the application data directory in priority order:
// 1. $XDG_DATA_HOME/careerguider
// 2. ~/.local/share/careerguider
func DataDir() (string, error) {
	dataHome := os.Getenv("XDG_DATA_HOME")
	if dataHome == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home dir: %w", err)
		}
		dataHome = filepath.Join(home, ".local", "share")
	}
	return filepath.Join(dataHome, "careerguider"), nil
}

// DefaultConfigPath returns $XDG_CONFIG_HOME/careerguider/config.yaml.
func DefaultConfigPath() string {
	cfgHome := os.Getenv("XDG_CONFIG_HOME")
	if cfgHome == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return ""
		}
		cfgHome = filepath.Join(home, ".config")
	}
	return filepath.Join(cfgHome, "careerguider", "config.yaml")
}
