// Package config loads mq's server/CLI configuration with viper: a config
// file layered under environment variable overrides.
package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

// Config is the query server's runtime configuration.
type Config struct {
	Server ServerConfig `mapstructure:"server"`
	Auth   AuthConfig   `mapstructure:"auth"`
	Cache  CacheConfig  `mapstructure:"cache"`
	Audit  AuditConfig  `mapstructure:"audit"`
}

// ServerConfig controls the HTTP listener.
type ServerConfig struct {
	Port      int    `mapstructure:"port"`
	Host      string `mapstructure:"host"`
	APIPrefix string `mapstructure:"api_prefix"`
}

// AuthConfig controls JWT-based bearer auth on the query server. APIKeyHash
// is a bcrypt hash of the shared API key clients exchange for a JWT via
// POST /auth/token; it is never the plaintext key itself.
type AuthConfig struct {
	JWTSecret  string `mapstructure:"jwt_secret"`
	APIKeyHash string `mapstructure:"api_key_hash"`
	Disabled   bool   `mapstructure:"disabled"`
}

// CacheConfig controls the Redis-backed per-query hit counter.
type CacheConfig struct {
	RedisURL string `mapstructure:"redis_url"`
	TTLSecs  int    `mapstructure:"ttl_seconds"`
}

// AuditConfig controls the Postgres/SQLite audit log.
type AuditConfig struct {
	DatabaseURL string `mapstructure:"database_url"`
}

// Load reads mq.yml (or mq.yaml) from the current directory, falling back to
// defaults and MQ_-prefixed environment variables when no file is present.
func Load() (*Config, error) {
	v := viper.New()

	v.SetDefault("server.port", 8080)
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.api_prefix", "/v1")
	v.SetDefault("auth.disabled", false)
	v.SetDefault("cache.redis_url", "redis://localhost:6379/0")
	v.SetDefault("cache.ttl_seconds", 300)
	v.SetDefault("audit.database_url", "sqlite://mq-audit.db")

	v.SetConfigName("mq")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	v.SetEnvPrefix("MQ")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	if err := validate(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func validate(cfg *Config) error {
	if cfg.Server.APIPrefix != "" && !strings.HasPrefix(cfg.Server.APIPrefix, "/") {
		return fmt.Errorf("server.api_prefix must start with '/', got: %s", cfg.Server.APIPrefix)
	}
	if !cfg.Auth.Disabled && cfg.Auth.JWTSecret == "" {
		return fmt.Errorf("auth.jwt_secret is required unless auth.disabled is true")
	}
	if !cfg.Auth.Disabled && cfg.Auth.APIKeyHash == "" {
		return fmt.Errorf("auth.api_key_hash is required unless auth.disabled is true")
	}
	return nil
}
