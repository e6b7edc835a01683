package config

import (
	"fmt"
	"os"
	"regexp"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the top-level configuration structure.
type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Engine   EngineConfig   `yaml:"engine"`
	Gateway  GatewayConfig  `yaml:"gateway"`
	Database DatabaseConfig `yaml:"database"`
}

type ServerConfig struct {
	Port     int    `yaml:"port"`
	LogLevel string `yaml:"log_level"`
}

// EngineConfig configures the command engine.
type EngineConfig struct {
	// CommandPrefix is the word prefixed aliases hang off, e.g. "cp".
	CommandPrefix string `yaml:"command_prefix"`
	// ConfirmExpiry is the default confirmation window for queued
	// commands, in time.ParseDuration syntax.
	ConfirmExpiry string `yaml:"confirm_expiry"`
}

// ConfirmExpiryDuration parses the confirmation window, defaulting to 30s.
func (e EngineConfig) ConfirmExpiryDuration() (time.Duration, error) {
	if e.ConfirmExpiry == "" {
		return 30 * time.Second, nil
	}
	d, err := time.ParseDuration(e.ConfirmExpiry)
	if err != nil {
		return 0, fmt.Errorf("parse confirm_expiry: %w", err)
	}
	return d, nil
}

type GatewayConfig struct {
	Slack   SlackGatewayConfig   `yaml:"slack"`
	Discord DiscordGatewayConfig `yaml:"discord"`
}

type SlackGatewayConfig struct {
	Enabled  bool   `yaml:"enabled"`
	BotToken string `yaml:"bot_token"`
	AppToken string `yaml:"app_token"`
}

type DiscordGatewayConfig struct {
	Enabled  bool   `yaml:"enabled"`
	BotToken string `yaml:"bot_token"`
}

type DatabaseConfig struct {
	Postgres PostgresConfig `yaml:"postgres"`
}

type PostgresConfig struct {
	DSN string `yaml:"dsn"`
}

// envVarRe matches ${VAR} and ${VAR:default} patterns.
var envVarRe = regexp.MustCompile(`\$\{(\w+)(?::([^}]*))?\}`)

// Load reads a YAML config file and substitutes environment variable
// references.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}

	// Substitute ${VAR} and ${VAR:default} with environment values.
	resolved := envVarRe.ReplaceAllStringFunc(string(data), func(match string) string {
		parts := envVarRe.FindStringSubmatch(match)
		name := parts[1]
		defaultVal := parts[2]
		if v := os.Getenv(name); v != "" {
			return v
		}
		return defaultVal
	})

	var cfg Config
	if err := yaml.Unmarshal([]byte(resolved), &cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}
	if cfg.Engine.CommandPrefix == "" {
		cfg.Engine.CommandPrefix = "cp"
	}
	return &cfg, nil
}
