// Package config handles application configuration and environment loading.
package config

import (
	"bufio"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// Config holds settings for the CLI and the HTTP server.
type Config struct {
	// Databricks workspace connection.
	Host        string // workspace URL
	Token       string // personal access token; empty means keyring lookup
	WarehouseID string // SQL warehouse ID or HTTP path
	Catalog     string // default catalog for statement execution
	Schema      string // default schema for statement execution

	// RequestsPerSecond caps outbound workspace API calls (default 10).
	RequestsPerSecond float64

	HistoryDBPath string // path to the SQLite run history file
	ListenAddr    string // HTTP listen address (default ":8080")
	LogLevel      string // log level: debug, info, warn, error (default "info")
	Env           string // environment: "development" (default) or "production"

	// CORS
	CORSAllowedOrigins []string // allowed origins for CORS (default: ["*"])

	// Warnings collects non-fatal warnings generated during config loading.
	// These are logged by the caller after the logger is initialised.
	Warnings []string
}

// SlogLevel maps the LogLevel string to an slog.Level.
func (c *Config) SlogLevel() slog.Level {
	switch strings.ToLower(c.LogLevel) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// IsProduction returns true when the server is running in production mode.
func (c *Config) IsProduction() bool {
	return strings.EqualFold(c.Env, "production")
}

// profile is the on-disk YAML shape of ~/.starspread.yaml.
type profile struct {
	Host        string `yaml:"host"`
	WarehouseID string `yaml:"warehouse_id"`
	Catalog     string `yaml:"catalog"`
	Schema      string `yaml:"schema"`
	HistoryDB   string `yaml:"history_db"`
	LogLevel    string `yaml:"log_level"`
}

// DefaultProfilePath is where Load looks for the YAML profile.
func DefaultProfilePath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".starspread.yaml")
}

// Load builds the configuration as profile file < environment. profilePath
// may be empty to skip the file, or point at a YAML profile; a missing file
// is not an error. Tokens never come from the profile file.
func Load(profilePath string) (*Config, error) {
	cfg := &Config{}

	if profilePath != "" {
		if err := cfg.applyProfile(profilePath); err != nil {
			return nil, err
		}
	}

	applyEnv(cfg)
	cfg.applyDefaults()

	if cfg.IsProduction() {
		if len(cfg.CORSAllowedOrigins) == 1 && cfg.CORSAllowedOrigins[0] == "*" {
			return nil, fmt.Errorf("CORS wildcard (*) is not allowed in production (ENV=production)")
		}
	}

	return cfg, nil
}

// LoadFromEnv loads configuration from environment variables and the default
// profile file.
func LoadFromEnv() (*Config, error) {
	return Load(DefaultProfilePath())
}

func (c *Config) applyProfile(path string) error {
	data, err := os.ReadFile(path) //nolint:gosec // path is caller-controlled
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("read profile %s: %w", path, err)
	}

	var p profile
	if err := yaml.Unmarshal(data, &p); err != nil {
		return fmt.Errorf("parse profile %s: %w", path, err)
	}

	c.Host = p.Host
	c.WarehouseID = p.WarehouseID
	c.Catalog = p.Catalog
	c.Schema = p.Schema
	c.HistoryDBPath = p.HistoryDB
	c.LogLevel = p.LogLevel
	return nil
}

func applyEnv(cfg *Config) {
	setIfEnv(&cfg.Host, "DATABRICKS_HOST")
	setIfEnv(&cfg.Token, "DATABRICKS_TOKEN")
	setIfEnv(&cfg.WarehouseID, "DATABRICKS_WAREHOUSE_ID")
	setIfEnv(&cfg.WarehouseID, "DATABRICKS_HTTP_PATH")
	setIfEnv(&cfg.Catalog, "DATABRICKS_CATALOG")
	setIfEnv(&cfg.Schema, "DATABRICKS_SCHEMA")
	setIfEnv(&cfg.HistoryDBPath, "HISTORY_DB_PATH")
	setIfEnv(&cfg.ListenAddr, "LISTEN_ADDR")
	setIfEnv(&cfg.LogLevel, "LOG_LEVEL")
	setIfEnv(&cfg.Env, "ENV")

	if v := os.Getenv("DATABRICKS_RPS"); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			cfg.RequestsPerSecond = f
		} else {
			cfg.Warnings = append(cfg.Warnings, fmt.Sprintf("ignoring DATABRICKS_RPS=%q: not a number", v))
		}
	}

	if v := os.Getenv("CORS_ALLOWED_ORIGINS"); v != "" {
		origins := strings.Split(v, ",")
		for i := range origins {
			origins[i] = strings.TrimSpace(origins[i])
		}
		cfg.CORSAllowedOrigins = origins
	}
}

func setIfEnv(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

func (c *Config) applyDefaults() {
	if c.HistoryDBPath == "" {
		c.HistoryDBPath = "starspread_history.sqlite"
	}
	if c.ListenAddr == "" {
		c.ListenAddr = ":8080"
	}
	if c.LogLevel == "" {
		c.LogLevel = "info"
	}
	if c.RequestsPerSecond == 0 {
		c.RequestsPerSecond = 10
	}
	if len(c.CORSAllowedOrigins) == 0 {
		c.CORSAllowedOrigins = []string{"*"}
	}
	if c.Host == "" {
		c.Warnings = append(c.Warnings, "DATABRICKS_HOST is not set; workspace calls will fail until it is")
	}
}

// LoadDotEnv reads a .env file and sets any variables not already in the environment.
// Lines must be in KEY=VALUE format. Comments (#) and blank lines are skipped.
func LoadDotEnv(path string) error {
	f, err := os.Open(path) //nolint:gosec // path is caller-controlled
	if err != nil {
		if os.IsNotExist(err) {
			return nil // .env not found is not an error
		}
		return fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close() //nolint:errcheck

	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		key, value, ok := strings.Cut(line, "=")
		if !ok {
			continue
		}
		key = strings.TrimSpace(key)
		value = strings.TrimSpace(value)
		value = stripQuotes(value)
		// Only set if not already in the environment (env vars take precedence)
		if os.Getenv(key) == "" {
			if err := os.Setenv(key, value); err != nil {
				return fmt.Errorf("setenv %s: %w", key, err)
			}
		}
	}
	return scanner.Err()
}

// stripQuotes removes surrounding double or single quotes from a value.
// Only strips if both the first and last characters are matching quotes.
func stripQuotes(s string) string {
	if len(s) >= 2 {
		if (s[0] == '"' && s[len(s)-1] == '"') || (s[0] == '\'' && s[len(s)-1] == '\'') {
			return s[1 : len(s)-1]
		}
	}
	return s
}
