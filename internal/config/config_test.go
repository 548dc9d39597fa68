package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

const testYAML = `client:
  base_url: "https://api.example.com/api/v1"
  timeout: "15s"
cache:
  fresh_for: "45s"
session:
  state_file: "data/session.json"
  redirect_delay: "2s"
log:
  level: "info"
  format: "json"
mockapi:
  server:
    host: "127.0.0.1"
    port: 3000
    mode: "release"
  database:
    path: "data/test.db"
    pool:
      max_idle_conns: 5
      max_open_conns: 50
      conn_max_lifetime: "30m"
  auth:
    jwt_secret: "0123456789abcdef0123456789abcdef"
    token_expiry: "45m"
    seed:
      username: "root"
      password: "changeit-now"
      name: "Root Operator"
      email: "root@example.com"
      role: "admin"
      location_id: "loc-1"
`

func writeTestConfig(t *testing.T, content string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}
	return path
}

func TestLoad_FullYAML(t *testing.T) {
	path := writeTestConfig(t, testYAML)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}

	// Client
	if cfg.Client.BaseURL != "https://api.example.com/api/v1" {
		t.Errorf("Client.BaseURL = %q, want %q", cfg.Client.BaseURL, "https://api.example.com/api/v1")
	}
	if cfg.Client.Timeout != "15s" {
		t.Errorf("Client.Timeout = %q, want %q", cfg.Client.Timeout, "15s")
	}

	// Cache / Session
	if cfg.Cache.FreshFor != "45s" {
		t.Errorf("Cache.FreshFor = %q, want %q", cfg.Cache.FreshFor, "45s")
	}
	if cfg.Session.StateFile != "data/session.json" {
		t.Errorf("Session.StateFile = %q, want %q", cfg.Session.StateFile, "data/session.json")
	}
	if cfg.Session.RedirectDelay != "2s" {
		t.Errorf("Session.RedirectDelay = %q, want %q", cfg.Session.RedirectDelay, "2s")
	}

	// Mock API server
	if cfg.MockAPI.Server.Host != "127.0.0.1" {
		t.Errorf("Server.Host = %q, want %q", cfg.MockAPI.Server.Host, "127.0.0.1")
	}
	if cfg.MockAPI.Server.Port != 3000 {
		t.Errorf("Server.Port = %d, want %d", cfg.MockAPI.Server.Port, 3000)
	}
	if cfg.MockAPI.Server.Mode != "release" {
		t.Errorf("Server.Mode = %q, want %q", cfg.MockAPI.Server.Mode, "release")
	}

	// Database
	if cfg.MockAPI.Database.Path != "data/test.db" {
		t.Errorf("Database.Path = %q, want %q", cfg.MockAPI.Database.Path, "data/test.db")
	}
	if cfg.MockAPI.Database.Pool.MaxIdleConns != 5 {
		t.Errorf("Pool.MaxIdleConns = %d, want %d", cfg.MockAPI.Database.Pool.MaxIdleConns, 5)
	}
	if cfg.MockAPI.Database.Pool.MaxOpenConns != 50 {
		t.Errorf("Pool.MaxOpenConns = %d, want %d", cfg.MockAPI.Database.Pool.MaxOpenConns, 50)
	}
	if cfg.MockAPI.Database.Pool.ConnMaxLifetime != "30m" {
		t.Errorf("Pool.ConnMaxLifetime = %q, want %q", cfg.MockAPI.Database.Pool.ConnMaxLifetime, "30m")
	}

	// Auth
	if cfg.MockAPI.Auth.JWTSecret != "0123456789abcdef0123456789abcdef" {
		t.Errorf("Auth.JWTSecret = %q, want the yaml value", cfg.MockAPI.Auth.JWTSecret)
	}
	if cfg.MockAPI.Auth.TokenExpiry != "45m" {
		t.Errorf("Auth.TokenExpiry = %q, want %q", cfg.MockAPI.Auth.TokenExpiry, "45m")
	}
	if cfg.MockAPI.Auth.Seed.Username != "root" {
		t.Errorf("Seed.Username = %q, want %q", cfg.MockAPI.Auth.Seed.Username, "root")
	}
	if cfg.MockAPI.Auth.Seed.LocationID != "loc-1" {
		t.Errorf("Seed.LocationID = %q, want %q", cfg.MockAPI.Auth.Seed.LocationID, "loc-1")
	}

	// Log
	if cfg.Log.Level != "info" {
		t.Errorf("Log.Level = %q, want %q", cfg.Log.Level, "info")
	}
	if cfg.Log.Format != "json" {
		t.Errorf("Log.Format = %q, want %q", cfg.Log.Format, "json")
	}
}

func TestLoad_EnvOverride(t *testing.T) {
	path := writeTestConfig(t, testYAML)

	t.Setenv("APP__MOCKAPI__SERVER__PORT", "9090")
	t.Setenv("APP__CLIENT__BASE_URL", "https://staging.example.com")
	t.Setenv("APP__LOG__LEVEL", "error")

	// Keys containing a single underscore must survive the __ separator
	// mapping (base_url, conn_max_lifetime).
	t.Setenv("APP__MOCKAPI__DATABASE__POOL__CONN_MAX_LIFETIME", "2h")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}

	if cfg.MockAPI.Server.Port != 9090 {
		t.Errorf("Server.Port = %d, want 9090 (env override)", cfg.MockAPI.Server.Port)
	}
	if cfg.Client.BaseURL != "https://staging.example.com" {
		t.Errorf("Client.BaseURL = %q, want env override", cfg.Client.BaseURL)
	}
	if cfg.Log.Level != "error" {
		t.Errorf("Log.Level = %q, want %q (env override)", cfg.Log.Level, "error")
	}
	if cfg.MockAPI.Database.Pool.ConnMaxLifetime != "2h" {
		t.Errorf("Pool.ConnMaxLifetime = %q, want %q (env override)", cfg.MockAPI.Database.Pool.ConnMaxLifetime, "2h")
	}
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "no-such.yaml"))
	if err == nil {
		t.Fatal("Load() expected error for missing file, got nil")
	}
}

func TestLoad_InvalidYAML(t *testing.T) {
	path := writeTestConfig(t, "client: [not: valid: yaml")
	if _, err := Load(path); err == nil {
		t.Fatal("Load() expected error for invalid yaml, got nil")
	}
}

func validTestConfig() *Config {
	return &Config{
		Client: ClientConfig{BaseURL: "https://api.example.com", Timeout: "10s"},
		Log:    LogConfig{Level: "info", Format: "text"},
		MockAPI: MockAPIConfig{
			Server: ServerConfig{Host: "localhost", Port: 8080, Mode: "test"},
			Database: DatabaseConfig{
				Path: "data/app.db",
			},
			Auth: AuthConfig{
				JWTSecret: "0123456789abcdef0123456789abcdef",
			},
		},
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{
			name:   "valid config",
			mutate: func(c *Config) {},
		},
		{
			name:    "missing base_url",
			mutate:  func(c *Config) { c.Client.BaseURL = "  " },
			wantErr: "client.base_url is required",
		},
		{
			name:    "relative base_url",
			mutate:  func(c *Config) { c.Client.BaseURL = "/api/v1" },
			wantErr: "must be an absolute URL",
		},
		{
			name:    "invalid client timeout",
			mutate:  func(c *Config) { c.Client.Timeout = "soon" },
			wantErr: "invalid client.timeout",
		},
		{
			name:    "negative cache fresh_for",
			mutate:  func(c *Config) { c.Cache.FreshFor = "-30s" },
			wantErr: "must be greater than 0",
		},
		{
			name:    "invalid redirect delay",
			mutate:  func(c *Config) { c.Session.RedirectDelay = "2 seconds" },
			wantErr: "invalid session.redirect_delay",
		},
		{
			name:    "invalid server mode",
			mutate:  func(c *Config) { c.MockAPI.Server.Mode = "production" },
			wantErr: "invalid mockapi.server.mode",
		},
		{
			name:    "port too low",
			mutate:  func(c *Config) { c.MockAPI.Server.Port = 0 },
			wantErr: "invalid mockapi.server.port",
		},
		{
			name:    "port too high",
			mutate:  func(c *Config) { c.MockAPI.Server.Port = 70000 },
			wantErr: "invalid mockapi.server.port",
		},
		{
			name:    "missing host",
			mutate:  func(c *Config) { c.MockAPI.Server.Host = "" },
			wantErr: "mockapi.server.host is required",
		},
		{
			name:    "missing database path",
			mutate:  func(c *Config) { c.MockAPI.Database.Path = "" },
			wantErr: "mockapi.database.path is required",
		},
		{
			name:    "missing jwt secret",
			mutate:  func(c *Config) { c.MockAPI.Auth.JWTSecret = "" },
			wantErr: "mockapi.auth.jwt_secret is required",
		},
		{
			name:    "short jwt secret",
			mutate:  func(c *Config) { c.MockAPI.Auth.JWTSecret = "too-short" },
			wantErr: "at least 32 characters",
		},
		{
			name: "placeholder secret in release mode",
			mutate: func(c *Config) {
				c.MockAPI.Server.Mode = "release"
				c.MockAPI.Auth.JWTSecret = "change-me-to-a-random-secret-value"
			},
			wantErr: "non-placeholder value in release mode",
		},
		{
			name: "placeholder secret allowed in debug mode",
			mutate: func(c *Config) {
				c.MockAPI.Server.Mode = "debug"
				c.MockAPI.Auth.JWTSecret = "change-me-to-a-random-secret-value"
			},
		},
		{
			name:    "invalid token expiry",
			mutate:  func(c *Config) { c.MockAPI.Auth.TokenExpiry = "later" },
			wantErr: "invalid mockapi.auth.token_expiry",
		},
		{
			name:    "zero token expiry",
			mutate:  func(c *Config) { c.MockAPI.Auth.TokenExpiry = "0s" },
			wantErr: "must be greater than 0",
		},
		{
			name: "seed with short password",
			mutate: func(c *Config) {
				c.MockAPI.Auth.Seed.Username = "root"
				c.MockAPI.Auth.Seed.Password = "short"
			},
			wantErr: "at least 8 characters",
		},
		{
			name: "seed absent skips password check",
			mutate: func(c *Config) {
				c.MockAPI.Auth.Seed.Username = ""
				c.MockAPI.Auth.Seed.Password = ""
			},
		},
		{
			name:    "invalid log level",
			mutate:  func(c *Config) { c.Log.Level = "verbose" },
			wantErr: "invalid log.level",
		},
		{
			name:    "invalid log format",
			mutate:  func(c *Config) { c.Log.Format = "xml" },
			wantErr: "invalid log.format",
		},
		{
			name:   "empty log fields are fine",
			mutate: func(c *Config) { c.Log.Level, c.Log.Format = "", "" },
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validTestConfig()
			tt.mutate(cfg)

			err := cfg.Validate()
			if tt.wantErr == "" {
				if err != nil {
					t.Fatalf("Validate() error = %v, want nil", err)
				}
				return
			}
			if err == nil {
				t.Fatalf("Validate() = nil, want error containing %q", tt.wantErr)
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("Validate() error = %v, want containing %q", err, tt.wantErr)
			}
		})
	}
}

func TestValidate_TrimsFields(t *testing.T) {
	cfg := validTestConfig()
	cfg.Client.BaseURL = "  https://api.example.com  "
	cfg.MockAPI.Server.Host = " localhost "
	cfg.MockAPI.Server.Mode = " test "
	cfg.MockAPI.Database.Path = " data/app.db "

	if err := cfg.Validate(); err != nil {
		t.Fatalf("Validate() error = %v", err)
	}

	if cfg.Client.BaseURL != "https://api.example.com" {
		t.Errorf("BaseURL not trimmed: %q", cfg.Client.BaseURL)
	}
	if cfg.MockAPI.Server.Host != "localhost" {
		t.Errorf("Host not trimmed: %q", cfg.MockAPI.Server.Host)
	}
	if cfg.MockAPI.Server.Mode != "test" {
		t.Errorf("Mode not trimmed: %q", cfg.MockAPI.Server.Mode)
	}
	if cfg.MockAPI.Database.Path != "data/app.db" {
		t.Errorf("Database.Path not trimmed: %q", cfg.MockAPI.Database.Path)
	}
}

func TestDurationHelpers(t *testing.T) {
	cfg := validTestConfig()
	cfg.Client.Timeout = "15s"
	cfg.Cache.FreshFor = ""
	cfg.Session.RedirectDelay = "bogus"
	cfg.MockAPI.Auth.TokenExpiry = "45m"

	if got := cfg.ClientTimeout(10 * time.Second); got != 15*time.Second {
		t.Errorf("ClientTimeout() = %v, want 15s", got)
	}
	if got := cfg.CacheFreshFor(30 * time.Second); got != 30*time.Second {
		t.Errorf("CacheFreshFor() = %v, want fallback 30s", got)
	}
	if got := cfg.SessionRedirectDelay(time.Second); got != time.Second {
		t.Errorf("SessionRedirectDelay() = %v, want fallback 1s for unparsable value", got)
	}
	if got := cfg.MockAPI.TokenExpiry(30 * time.Minute); got != 45*time.Minute {
		t.Errorf("TokenExpiry() = %v, want 45m", got)
	}
}
