package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Default values for the service configuration.
const (
	DefaultHTTPPort          = 8080
	DefaultBroadcastInterval = 5 * time.Second
	DefaultAuditTTL          = time.Hour
	DefaultLogLevel          = "info"
)

// Config holds the full service configuration parsed from config.yaml.
type Config struct {
	Server      ServerConfig      `yaml:"server"`
	Log         LogConfig         `yaml:"log"`
	Credentials CredentialsConfig `yaml:"credentials"`
}

// ServerConfig holds the HTTP service settings.
type ServerConfig struct {
	// HTTPPort is the port the REST API and WebSocket hub listen on (default 8080).
	HTTPPort int `yaml:"http_port"`

	// BroadcastInterval is how often the WebSocket hub pushes the current
	// audit list to connected clients. Default: 5s.
	BroadcastInterval time.Duration `yaml:"broadcast_interval"`

	// Audits controls in-memory result retention.
	Audits AuditsConfig `yaml:"audits"`
}

// AuditsConfig controls in-memory audit result retention.
type AuditsConfig struct {
	// TTL is how long a completed audit stays in the store before eviction.
	// Default: 1h.
	TTL time.Duration `yaml:"ttl"`
}

// LogConfig controls structured logging.
type LogConfig struct {
	// Level is one of: debug | info | warn | error. Default: info.
	// Reloadable at runtime through the config watcher.
	Level string `yaml:"level"`
}

// CredentialsConfig names the environment variables that hold upstream API
// credentials. Both are optional; the sources work unauthenticated with
// lower rate limits.
type CredentialsConfig struct {
	// PSIKeyEnv is the env var holding a Google PageSpeed Insights API key.
	PSIKeyEnv string `yaml:"psi_key_env"`

	// GitHubTokenEnv is the env var holding a GitHub API token.
	GitHubTokenEnv string `yaml:"github_token_env"`
}

// PSIKey returns the PageSpeed API key resolved from the environment.
func (c CredentialsConfig) PSIKey() string {
	if c.PSIKeyEnv == "" {
		return ""
	}
	return os.Getenv(c.PSIKeyEnv)
}

// GitHubToken returns the GitHub token resolved from the environment.
func (c CredentialsConfig) GitHubToken() string {
	if c.GitHubTokenEnv == "" {
		return ""
	}
	return os.Getenv(c.GitHubTokenEnv)
}

// Load reads and parses the config file at path. Missing fields are filled
// with sensible defaults before validation.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: read %q: %w", path, err)
	}

	cfg := defaults()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("config: parse yaml: %w", err)
	}

	if err := validate(cfg); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}

	return cfg, nil
}

// defaults returns a Config pre-populated with default values.
func defaults() *Config {
	return &Config{
		Server: ServerConfig{
			HTTPPort:          DefaultHTTPPort,
			BroadcastInterval: DefaultBroadcastInterval,
			Audits: AuditsConfig{
				TTL: DefaultAuditTTL,
			},
		},
		Log: LogConfig{
			Level: DefaultLogLevel,
		},
	}
}

// validate checks structural constraints on the parsed configuration.
func validate(cfg *Config) error {
	if cfg.Server.HTTPPort <= 0 || cfg.Server.HTTPPort > 65535 {
		return fmt.Errorf("server.http_port %d is out of range [1, 65535]", cfg.Server.HTTPPort)
	}
	if cfg.Server.BroadcastInterval <= 0 {
		return fmt.Errorf("server.broadcast_interval must be positive")
	}
	if cfg.Server.Audits.TTL < 0 {
		return fmt.Errorf("server.audits.ttl must not be negative")
	}
	switch cfg.Log.Level {
	case "debug", "info", "warn", "error", "":
	default:
		return fmt.Errorf("log.level %q unknown: want debug|info|warn|error", cfg.Log.Level)
	}
	return nil
}
