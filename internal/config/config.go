package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// Config is the top-level configuration, covering the console client side
// and the embedded mock admin API.
type Config struct {
	Client  ClientConfig  `koanf:"client"`
	Cache   CacheConfig   `koanf:"cache"`
	Session SessionConfig `koanf:"session"`
	Log     LogConfig     `koanf:"log"`
	MockAPI MockAPIConfig `koanf:"mockapi"`
}

// ClientConfig holds the API client settings.
type ClientConfig struct {
	BaseURL string `koanf:"base_url"`
	Timeout string `koanf:"timeout"`
}

// CacheConfig holds the remote cache settings.
type CacheConfig struct {
	FreshFor string `koanf:"fresh_for"`
}

// SessionConfig holds session persistence and redirect settings.
type SessionConfig struct {
	StateFile     string `koanf:"state_file"`
	RedirectDelay string `koanf:"redirect_delay"`
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level           string `koanf:"level"`
	Format          string `koanf:"format"`
	Color           *bool  `koanf:"color"`
	FilePath        string `koanf:"file_path"`
	MaxSizeMB       int    `koanf:"max_size_mb"`
	RetentionDays   int    `koanf:"retention_days"`
	MaxBackups      int    `koanf:"max_backups"`
	CompressRotated *bool  `koanf:"compress_rotated"`
}

// MockAPIConfig holds the embedded mock admin API settings.
type MockAPIConfig struct {
	Server   ServerConfig   `koanf:"server"`
	Database DatabaseConfig `koanf:"database"`
	Auth     AuthConfig     `koanf:"auth"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Host string     `koanf:"host"`
	Port int        `koanf:"port"`
	Mode string     `koanf:"mode"`
	CORS CORSConfig `koanf:"cors"`
}

// CORSConfig holds CORS middleware settings.
type CORSConfig struct {
	AllowOrigins     []string `koanf:"allow_origins"`
	AllowMethods     []string `koanf:"allow_methods"`
	AllowHeaders     []string `koanf:"allow_headers"`
	AllowCredentials bool     `koanf:"allow_credentials"`
	MaxAge           string   `koanf:"max_age"`
}

// DatabaseConfig holds SQLite database settings.
type DatabaseConfig struct {
	Path string     `koanf:"path"`
	Pool PoolConfig `koanf:"pool"`
}

// PoolConfig holds database connection pool settings.
type PoolConfig struct {
	MaxIdleConns    int    `koanf:"max_idle_conns"`
	MaxOpenConns    int    `koanf:"max_open_conns"`
	ConnMaxLifetime string `koanf:"conn_max_lifetime"`
}

// AuthConfig holds token signing and seed account settings.
type AuthConfig struct {
	JWTSecret   string     `koanf:"jwt_secret"`
	TokenExpiry string     `koanf:"token_expiry"`
	Seed        SeedConfig `koanf:"seed"`
}

// SeedConfig describes the operator account created on first start.
type SeedConfig struct {
	Username   string `koanf:"username"`
	Password   string `koanf:"password"`
	Name       string `koanf:"name"`
	Email      string `koanf:"email"`
	Role       string `koanf:"role"`
	LocationID string `koanf:"location_id"`
}

// Load reads configuration from a YAML file and overlays environment variables.
// Environment variables use the prefix "APP__" and double-underscore as the
// hierarchy separator. Single underscores are preserved as part of the key name.
// For example, APP__MOCKAPI__SERVER__PORT=9090 overrides mockapi.server.port
// and APP__CLIENT__BASE_URL overrides client.base_url.
func Load(configPath string) (*Config, error) {
	k := koanf.New(".")

	// Load YAML config file.
	if err := k.Load(file.Provider(configPath), yaml.Parser()); err != nil {
		return nil, fmt.Errorf("failed to load config file %s: %w", configPath, err)
	}

	// Overlay environment variables with prefix APP__.
	if err := k.Load(env.Provider("APP__", ".", func(s string) string {
		key := strings.TrimPrefix(s, "APP__")
		key = strings.ToLower(key)
		key = strings.ReplaceAll(key, "__", ".")
		return key
	}), nil); err != nil {
		return nil, fmt.Errorf("failed to load env variables: %w", err)
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Validate checks cross-field constraints and supported values.
func (c *Config) Validate() error {
	// Validate client.base_url.
	baseURL := strings.TrimSpace(c.Client.BaseURL)
	if baseURL == "" {
		return fmt.Errorf("client.base_url is required")
	}
	u, err := url.Parse(baseURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("invalid client.base_url %q: must be an absolute URL", c.Client.BaseURL)
	}
	c.Client.BaseURL = baseURL

	// Validate optional duration fields: whitespace-only means unset.
	c.Client.Timeout = strings.TrimSpace(c.Client.Timeout)
	c.Cache.FreshFor = strings.TrimSpace(c.Cache.FreshFor)
	c.Session.RedirectDelay = strings.TrimSpace(c.Session.RedirectDelay)
	c.MockAPI.Server.CORS.MaxAge = strings.TrimSpace(c.MockAPI.Server.CORS.MaxAge)
	c.MockAPI.Database.Pool.ConnMaxLifetime = strings.TrimSpace(c.MockAPI.Database.Pool.ConnMaxLifetime)

	for _, d := range []struct {
		key   string
		value string
	}{
		{"client.timeout", c.Client.Timeout},
		{"cache.fresh_for", c.Cache.FreshFor},
		{"session.redirect_delay", c.Session.RedirectDelay},
		{"mockapi.server.cors.max_age", c.MockAPI.Server.CORS.MaxAge},
		{"mockapi.database.pool.conn_max_lifetime", c.MockAPI.Database.Pool.ConnMaxLifetime},
	} {
		if d.value == "" {
			continue
		}
		parsed, err := time.ParseDuration(d.value)
		if err != nil {
			return fmt.Errorf("invalid %s %q: %w", d.key, d.value, err)
		}
		if parsed <= 0 {
			return fmt.Errorf("invalid %s %q: must be greater than 0", d.key, d.value)
		}
	}

	// Validate mockapi.server.mode.
	mode := strings.TrimSpace(c.MockAPI.Server.Mode)
	switch mode {
	case gin.DebugMode, gin.ReleaseMode, gin.TestMode:
		c.MockAPI.Server.Mode = mode
	default:
		return fmt.Errorf("invalid mockapi.server.mode %q: must be one of %q, %q, %q", c.MockAPI.Server.Mode, gin.DebugMode, gin.ReleaseMode, gin.TestMode)
	}

	// Validate mockapi.server.port range.
	if c.MockAPI.Server.Port < 1 || c.MockAPI.Server.Port > 65535 {
		return fmt.Errorf("invalid mockapi.server.port %d: must be between 1 and 65535", c.MockAPI.Server.Port)
	}

	// Validate mockapi.server.host.
	host := strings.TrimSpace(c.MockAPI.Server.Host)
	if host == "" {
		return fmt.Errorf("mockapi.server.host is required")
	}
	c.MockAPI.Server.Host = host

	// Validate mockapi.database.path.
	dbPath := strings.TrimSpace(c.MockAPI.Database.Path)
	if dbPath == "" {
		return fmt.Errorf("mockapi.database.path is required")
	}
	c.MockAPI.Database.Path = dbPath

	// Validate mockapi.auth.
	jwtSecret := strings.TrimSpace(c.MockAPI.Auth.JWTSecret)
	if jwtSecret == "" {
		return fmt.Errorf("mockapi.auth.jwt_secret is required")
	}
	if len(jwtSecret) < 32 {
		return fmt.Errorf("invalid mockapi.auth.jwt_secret: must be at least 32 characters")
	}
	if c.MockAPI.Server.Mode == gin.ReleaseMode && isPlaceholderSecret(jwtSecret) {
		return fmt.Errorf("mockapi.auth.jwt_secret must be a non-placeholder value in release mode")
	}
	c.MockAPI.Auth.JWTSecret = jwtSecret

	tokenExpiry := strings.TrimSpace(c.MockAPI.Auth.TokenExpiry)
	if tokenExpiry != "" {
		d, err := time.ParseDuration(tokenExpiry)
		if err != nil {
			return fmt.Errorf("invalid mockapi.auth.token_expiry %q: %w", c.MockAPI.Auth.TokenExpiry, err)
		}
		if d <= 0 {
			return fmt.Errorf("invalid mockapi.auth.token_expiry %q: must be greater than 0", c.MockAPI.Auth.TokenExpiry)
		}
	}
	c.MockAPI.Auth.TokenExpiry = tokenExpiry

	if seed := &c.MockAPI.Auth.Seed; seed.Username != "" {
		if len(seed.Password) < 8 {
			return fmt.Errorf("invalid mockapi.auth.seed.password: must be at least 8 characters")
		}
	}

	// Validate log.level.
	switch strings.ToLower(strings.TrimSpace(c.Log.Level)) {
	case "", "debug", "info", "warn", "error":
		// ok
	default:
		return fmt.Errorf("invalid log.level %q: must be one of %q, %q, %q, %q", c.Log.Level, "debug", "info", "warn", "error")
	}

	// Validate log.format.
	switch strings.ToLower(strings.TrimSpace(c.Log.Format)) {
	case "", "text", "json", "custom":
		// ok
	default:
		return fmt.Errorf("invalid log.format %q: must be one of %q, %q, %q", c.Log.Format, "text", "json", "custom")
	}

	return nil
}

func isPlaceholderSecret(secret string) bool {
	switch strings.ToLower(secret) {
	case "change-me-to-a-random-secret-value", "change-me-in-env-change-me-in-env":
		return true
	default:
		return false
	}
}

// ClientTimeout returns the parsed client timeout, or fallback when unset.
func (c *Config) ClientTimeout(fallback time.Duration) time.Duration {
	return parseDurationOr(c.Client.Timeout, fallback)
}

// CacheFreshFor returns the parsed cache freshness window, or fallback when unset.
func (c *Config) CacheFreshFor(fallback time.Duration) time.Duration {
	return parseDurationOr(c.Cache.FreshFor, fallback)
}

// SessionRedirectDelay returns the parsed login redirect delay, or fallback when unset.
func (c *Config) SessionRedirectDelay(fallback time.Duration) time.Duration {
	return parseDurationOr(c.Session.RedirectDelay, fallback)
}

// TokenExpiry returns the parsed token lifetime, or fallback when unset.
func (c *MockAPIConfig) TokenExpiry(fallback time.Duration) time.Duration {
	return parseDurationOr(c.Auth.TokenExpiry, fallback)
}

func parseDurationOr(raw string, fallback time.Duration) time.Duration {
	if raw == "" {
		return fallback
	}
	d, err := time.ParseDuration(raw)
	if err != nil || d <= 0 {
		return fallback
	}
	return d
}
