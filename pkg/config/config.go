package config

import (
	"fmt"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

// Config holds all configuration for ekaya-discovery.
// Configuration can come from YAML file (config.yaml) or environment variables.
// Environment variables always override YAML values for fields that support both.
// Secrets (passwords, keys) must only come from environment variables.
type Config struct {
	// Server configuration
	BindAddr string `yaml:"bind_addr" env:"BIND_ADDR" env-default:"127.0.0.1"`
	Port     string `yaml:"port" env:"PORT" env-default:"3480"`
	Env      string `yaml:"env" env:"ENVIRONMENT" env-default:"local"`
	BaseURL  string `yaml:"base_url" env:"BASE_URL" env-default:""` // Auto-derived from Port if empty
	Version  string `yaml:"-"`                                      // Set at load time, not from config

	// TLS configuration (optional - if both provided, server uses HTTPS)
	TLSCertPath string `yaml:"tls_cert_path" env:"TLS_CERT_PATH" env-default:""`
	TLSKeyPath  string `yaml:"tls_key_path" env:"TLS_KEY_PATH" env-default:""`

	// CookieDomain is the domain for the admin session cookie (optional).
	CookieDomain string `yaml:"cookie_domain" env:"COOKIE_DOMAIN" env-default:""`

	Auth      AuthConfig      `yaml:"auth"`
	Database  DatabaseConfig  `yaml:"database"`
	Redis     RedisConfig     `yaml:"redis"`
	Drafts    DraftsConfig    `yaml:"drafts"`
	Narration NarrationConfig `yaml:"narration"`
	Renderer  RendererConfig  `yaml:"renderer"`
	Sessions  SessionsConfig  `yaml:"sessions"`
}

// AuthConfig holds admin authentication settings.
type AuthConfig struct {
	// JWTSecret signs admin session tokens (HS256).
	JWTSecret string `yaml:"-" env:"JWT_SECRET"` // Secret - not in YAML
	// SessionSecret keys the admin session cookie store.
	SessionSecret string `yaml:"-" env:"SESSION_SECRET"` // Secret - not in YAML

	TokenTTL time.Duration `yaml:"token_ttl" env:"AUTH_TOKEN_TTL" env-default:"12h"`

	// Bootstrap admin created (or re-hashed) at startup when both are set.
	AdminEmail    string `yaml:"admin_email" env:"ADMIN_EMAIL" env-default:""`
	AdminPassword string `yaml:"-" env:"ADMIN_PASSWORD"` // Secret - not in YAML
}

// DatabaseConfig holds PostgreSQL database configuration.
type DatabaseConfig struct {
	Host           string `yaml:"host" env:"PGHOST" env-default:"localhost"`
	Port           int    `yaml:"port" env:"PGPORT" env-default:"5432"`
	User           string `yaml:"user" env:"PGUSER" env-default:"ekaya"`
	Password       string `yaml:"-" env:"PGPASSWORD"` // Secret - not in YAML
	Database       string `yaml:"database" env:"PGDATABASE" env-default:"ekaya_discovery"`
	MaxConnections int32  `yaml:"max_connections" env:"PGMAX_CONNECTIONS" env-default:"25"`
	MaxIdleConns   int32  `yaml:"max_idle_conns" env:"PGMAX_IDLE_CONNS" env-default:"5"`
	SSLMode        string `yaml:"ssl_mode" env:"PGSSLMODE" env-default:"disable"`
}

// RedisConfig holds Redis configuration. An empty host disables Redis.
type RedisConfig struct {
	Host     string `yaml:"host" env:"REDIS_HOST" env-default:""`
	Port     int    `yaml:"port" env:"REDIS_PORT" env-default:"6379"`
	Password string `yaml:"-" env:"REDIS_PASSWORD"` // Secret - not in YAML
	DB       int    `yaml:"db" env:"REDIS_DB" env-default:"0"`
}

// Draft mirror backends.
const (
	DraftsBackendNone   = "none"
	DraftsBackendRedis  = "redis"
	DraftsBackendBadger = "badger"
)

// DraftsConfig selects where in-progress records are mirrored.
type DraftsConfig struct {
	Backend string        `yaml:"backend" env:"DRAFTS_BACKEND" env-default:"none"`
	Path    string        `yaml:"path" env:"DRAFTS_PATH" env-default:"./data/drafts"`
	TTL     time.Duration `yaml:"ttl" env:"DRAFTS_TTL" env-default:"168h"`
}

// Narration providers.
const (
	NarrationProviderNone      = ""
	NarrationProviderOpenAI    = "openai"
	NarrationProviderAnthropic = "anthropic"
)

// NarrationConfig configures the text generation service used for field
// suggestions and record reviews.
type NarrationConfig struct {
	Provider string        `yaml:"provider" env:"NARRATION_PROVIDER" env-default:""`
	Endpoint string        `yaml:"endpoint" env:"NARRATION_ENDPOINT" env-default:""`
	Model    string        `yaml:"model" env:"NARRATION_MODEL" env-default:""`
	APIKey   string        `yaml:"-" env:"LLM_API_KEY"` // Secret - not in YAML
	Language string        `yaml:"language" env:"NARRATION_LANGUAGE" env-default:"Spanish"`
	Timeout  time.Duration `yaml:"timeout" env:"NARRATION_TIMEOUT" env-default:"60s"`
}

// IsConfigured returns true if a provider is selected.
func (c *NarrationConfig) IsConfigured() bool {
	return c.Provider != NarrationProviderNone
}

// RendererConfig points at a Kroki-compatible diagram renderer.
type RendererConfig struct {
	URL     string        `yaml:"url" env:"RENDERER_URL" env-default:"https://kroki.io"`
	Timeout time.Duration `yaml:"timeout" env:"RENDERER_TIMEOUT" env-default:"15s"`
}

// SessionsConfig bounds the wizard and review sessions held in memory.
// A session idle for longer than IdleTTL is evicted; its draft can still be
// resumed from the mirror.
type SessionsConfig struct {
	IdleTTL     time.Duration `yaml:"idle_ttl" env:"SESSION_IDLE_TTL" env-default:"2h"`
	MaxSessions int           `yaml:"max_sessions" env:"MAX_SESSIONS" env-default:"1000"`
}

// DefaultSessionsConfig matches the env-default tags of SessionsConfig.
func DefaultSessionsConfig() *SessionsConfig {
	return &SessionsConfig{IdleTTL: 2 * time.Hour, MaxSessions: 1000}
}

// Load reads configuration from config.yaml with environment variable overrides.
// The version parameter is injected at build time and set on the returned Config.
// Secrets (PGPASSWORD, JWT_SECRET, SESSION_SECRET, LLM_API_KEY, ADMIN_PASSWORD)
// must come from environment variables (yaml:"-" fields).
func Load(version string) (*Config, error) {
	cfg := &Config{
		Version: version,
	}

	if err := cleanenv.ReadConfig("config.yaml", cfg); err != nil {
		return nil, fmt.Errorf("failed to read config.yaml: %w", err)
	}

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	if err := cfg.validateTLS(); err != nil {
		return nil, fmt.Errorf("invalid TLS configuration: %w", err)
	}

	// Auto-derive BaseURL from Port if not explicitly set
	if cfg.BaseURL == "" {
		scheme := "http"
		if cfg.TLSCertPath != "" {
			scheme = "https"
		}
		cfg.BaseURL = (&url.URL{
			Scheme: scheme,
			Host:   "localhost:" + cfg.Port,
		}).String()
	}

	return cfg, nil
}

func (c *Config) validate() error {
	c.Drafts.Backend = strings.ToLower(strings.TrimSpace(c.Drafts.Backend))
	switch c.Drafts.Backend {
	case "", DraftsBackendNone:
		c.Drafts.Backend = DraftsBackendNone
	case DraftsBackendBadger:
	case DraftsBackendRedis:
		if c.Redis.Host == "" {
			return fmt.Errorf("drafts backend %q requires redis.host", c.Drafts.Backend)
		}
	default:
		return fmt.Errorf("unknown drafts backend %q", c.Drafts.Backend)
	}

	c.Narration.Provider = strings.ToLower(strings.TrimSpace(c.Narration.Provider))
	switch c.Narration.Provider {
	case NarrationProviderNone, NarrationProviderOpenAI, NarrationProviderAnthropic:
	default:
		return fmt.Errorf("unknown narration provider %q", c.Narration.Provider)
	}
	if c.Narration.IsConfigured() && c.Narration.Model == "" {
		return fmt.Errorf("narration provider %q requires narration.model", c.Narration.Provider)
	}

	if c.Sessions.IdleTTL <= 0 {
		return fmt.Errorf("sessions.idle_ttl must be positive, got %s", c.Sessions.IdleTTL)
	}
	if c.Sessions.MaxSessions <= 0 {
		return fmt.Errorf("sessions.max_sessions must be positive, got %d", c.Sessions.MaxSessions)
	}

	return nil
}

// validateTLS ensures TLS configuration is valid if provided.
// Both cert and key must be provided together, and files must exist.
func (c *Config) validateTLS() error {
	certSet := c.TLSCertPath != ""
	keySet := c.TLSKeyPath != ""

	if certSet != keySet {
		return fmt.Errorf("both tls_cert_path and tls_key_path must be provided together")
	}

	if certSet {
		if _, err := os.Stat(c.TLSCertPath); err != nil {
			return fmt.Errorf("TLS cert file does not exist: %w", err)
		}
		if _, err := os.Stat(c.TLSKeyPath); err != nil {
			return fmt.Errorf("TLS key file does not exist: %w", err)
		}
	}

	return nil
}

// IsLocal reports whether the server runs in local development mode.
func (c *Config) IsLocal() bool {
	return c.Env == "local"
}

// ConnectionString returns a PostgreSQL connection string.
func (c *DatabaseConfig) ConnectionString() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.Database, c.SSLMode,
	)
}

// Addr returns the host:port of the Redis server.
func (c *RedisConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}
