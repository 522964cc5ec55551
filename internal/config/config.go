// ABOUTME: Configuration loading and parsing for restlab
// ABOUTME: Supports YAML files with environment variable expansion and duration parsing

package config

import (
	"fmt"
	"os"
	"regexp"
	"time"

	"gopkg.in/yaml.v3"
)

// DefaultTokenLifetime applies when auth.token_lifetime is not set.
const DefaultTokenLifetime = 24 * time.Hour

// minSecretLength mirrors the auth package's requirement so misconfiguration
// is caught at load time rather than at first login.
const minSecretLength = 32

// Config represents the complete restlab configuration
type Config struct {
	Server  ServerConfig  `yaml:"server"`
	Auth    AuthConfig    `yaml:"auth"`
	Store   StoreConfig   `yaml:"store"`
	Logging LoggingConfig `yaml:"logging"`
}

// ServerConfig holds server address configuration
type ServerConfig struct {
	HTTPAddr string `yaml:"http_addr"`
}

// AuthConfig holds authentication configuration
type AuthConfig struct {
	JWTSecret     string        `yaml:"jwt_secret"`
	TokenLifetime time.Duration `yaml:"-"`
	Users         []Credential  `yaml:"users"`

	// Raw string value for YAML unmarshaling
	TokenLifetimeRaw string `yaml:"token_lifetime"`
}

// Credential is a single entry in the fixed login credential set.
type Credential struct {
	Username     string `yaml:"username"`
	PasswordHash string `yaml:"password_hash"`
}

// StoreConfig holds user store configuration
type StoreConfig struct {
	// SeedDemo populates the store with the Alice/Bob demo entries at startup.
	SeedDemo bool `yaml:"seed_demo"`
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// Load reads a configuration file from the given path and returns a parsed Config.
// Environment variables in the format ${VAR_NAME} are expanded.
// Duration strings are parsed into time.Duration values.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	// Expand environment variables in the raw YAML content
	expandedData := expandEnvVars(string(data))

	var cfg Config
	if err := yaml.Unmarshal([]byte(expandedData), &cfg); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}

	// Parse duration fields
	if err := parseDurations(&cfg); err != nil {
		return nil, fmt.Errorf("parsing durations: %w", err)
	}

	// Validate required fields
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	return &cfg, nil
}

// expandEnvVars replaces ${VAR_NAME} patterns with the corresponding environment variable values.
// If the environment variable is not set, it is replaced with an empty string.
func expandEnvVars(s string) string {
	// Match ${VAR_NAME} pattern
	re := regexp.MustCompile(`\$\{([^}]+)\}`)

	return re.ReplaceAllStringFunc(s, func(match string) string {
		// Extract variable name from ${VAR_NAME}
		varName := re.FindStringSubmatch(match)[1]
		return os.Getenv(varName)
	})
}

// Validate checks that all required configuration fields are present and valid.
// Returns an error describing the first validation failure encountered.
func (c *Config) Validate() error {
	if c.Server.HTTPAddr == "" {
		return fmt.Errorf("server.http_addr is required")
	}

	if c.Auth.JWTSecret == "" {
		return fmt.Errorf("auth.jwt_secret is required")
	}
	if len(c.Auth.JWTSecret) < minSecretLength {
		return fmt.Errorf("auth.jwt_secret must be at least %d bytes, got %d", minSecretLength, len(c.Auth.JWTSecret))
	}

	if len(c.Auth.Users) == 0 {
		return fmt.Errorf("auth.users must list at least one credential")
	}
	for i, u := range c.Auth.Users {
		if u.Username == "" {
			return fmt.Errorf("auth.users[%d].username is required", i)
		}
		if u.PasswordHash == "" {
			return fmt.Errorf("auth.users[%d].password_hash is required", i)
		}
	}

	return nil
}

// CredentialMap returns the configured users as a username-to-hash map.
func (c *Config) CredentialMap() map[string]string {
	creds := make(map[string]string, len(c.Auth.Users))
	for _, u := range c.Auth.Users {
		creds[u.Username] = u.PasswordHash
	}
	return creds
}

// parseDurations converts the raw duration strings into time.Duration values
func parseDurations(cfg *Config) error {
	cfg.Auth.TokenLifetime = DefaultTokenLifetime

	if cfg.Auth.TokenLifetimeRaw != "" {
		lifetime, err := time.ParseDuration(cfg.Auth.TokenLifetimeRaw)
		if err != nil {
			return fmt.Errorf("parsing token_lifetime %q: %w", cfg.Auth.TokenLifetimeRaw, err)
		}
		if lifetime <= 0 {
			return fmt.Errorf("token_lifetime must be positive, got %q", cfg.Auth.TokenLifetimeRaw)
		}
		cfg.Auth.TokenLifetime = lifetime
	}

	return nil
}
