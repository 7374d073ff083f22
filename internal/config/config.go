package config

import (
	"fmt"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Database  DatabaseConfig  `yaml:"database"`
	Auth      AuthConfig      `yaml:"auth"`
	Tailscale TailscaleConfig `yaml:"tailscale"`
	Records   RecordsConfig   `yaml:"records"`
}

type ServerConfig struct {
	Host string `yaml:"host"`
	Port int    `yaml:"port"`
}

type DatabaseConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	Name     string `yaml:"name"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	SSLMode  string `yaml:"sslmode"`
	MaxConns int    `yaml:"max_conns"`
}

type AuthConfig struct {
	APIKey string `yaml:"api_key"`
}

type TailscaleConfig struct {
	Enabled  bool   `yaml:"enabled"`
	Hostname string `yaml:"hostname"`
	StateDir string `yaml:"state_dir"`
}

// RecordsConfig tunes record recomputation. A zero window uses the default.
type RecordsConfig struct {
	Window int `yaml:"window"`
}

// DSN returns a PostgreSQL connection string.
func (d DatabaseConfig) DSN() string {
	sslmode := d.SSLMode
	if sslmode == "" {
		sslmode = "disable"
	}
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=%s",
		d.User, d.Password, d.Host, d.Port, d.Name, sslmode)
}

// Load reads config from a YAML file, then applies environment variable overrides.
// Env vars use the prefix GYMDIR_ and underscore-separated paths:
//
//	GYMDIR_SERVER_HOST, GYMDIR_SERVER_PORT,
//	GYMDIR_DB_HOST, GYMDIR_DB_PORT, GYMDIR_DB_NAME,
//	GYMDIR_DB_USER, GYMDIR_DB_PASSWORD, GYMDIR_DB_SSLMODE, GYMDIR_DB_MAX_CONNS,
//	GYMDIR_AUTH_API_KEY,
//	GYMDIR_TAILSCALE_ENABLED, GYMDIR_TAILSCALE_HOSTNAME, GYMDIR_TAILSCALE_STATE_DIR,
//	GYMDIR_RECORDS_WINDOW
func Load(path string) (*Config, error) {
	cfg := &Config{}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}

	applyEnvOverrides(cfg)

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("config validation: %w", err)
	}

	return cfg, nil
}

func applyEnvOverrides(cfg *Config) {
	setString(&cfg.Server.Host, "GYMDIR_SERVER_HOST")
	setInt(&cfg.Server.Port, "GYMDIR_SERVER_PORT")

	setString(&cfg.Database.Host, "GYMDIR_DB_HOST")
	setInt(&cfg.Database.Port, "GYMDIR_DB_PORT")
	setString(&cfg.Database.Name, "GYMDIR_DB_NAME")
	setString(&cfg.Database.User, "GYMDIR_DB_USER")
	setString(&cfg.Database.Password, "GYMDIR_DB_PASSWORD")
	setString(&cfg.Database.SSLMode, "GYMDIR_DB_SSLMODE")
	setInt(&cfg.Database.MaxConns, "GYMDIR_DB_MAX_CONNS")

	setString(&cfg.Auth.APIKey, "GYMDIR_AUTH_API_KEY")

	if v := os.Getenv("GYMDIR_TAILSCALE_ENABLED"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			cfg.Tailscale.Enabled = b
		}
	}
	setString(&cfg.Tailscale.Hostname, "GYMDIR_TAILSCALE_HOSTNAME")
	setString(&cfg.Tailscale.StateDir, "GYMDIR_TAILSCALE_STATE_DIR")

	setInt(&cfg.Records.Window, "GYMDIR_RECORDS_WINDOW")
}

func setString(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

func setInt(dst *int, key string) {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			*dst = n
		}
	}
}

func (c *Config) validate() error {
	if c.Server.Port == 0 && !c.Tailscale.Enabled {
		return fmt.Errorf("server.port is required")
	}
	if c.Database.Host == "" {
		return fmt.Errorf("database.host is required")
	}
	if c.Database.Port == 0 {
		return fmt.Errorf("database.port is required")
	}
	if c.Database.Name == "" {
		return fmt.Errorf("database.name is required")
	}
	if c.Database.User == "" {
		return fmt.Errorf("database.user is required")
	}
	if c.Database.MaxConns < 0 {
		return fmt.Errorf("database.max_conns must not be negative")
	}
	if c.Auth.APIKey == "" {
		return fmt.Errorf("auth.api_key is required")
	}
	if c.Tailscale.Enabled && c.Tailscale.Hostname == "" {
		return fmt.Errorf("tailscale.hostname is required when tailscale is enabled")
	}
	if c.Records.Window < 0 {
		return fmt.Errorf("records.window must not be negative")
	}
	return nil
}

// Dev returns a configuration for the in-memory development mode: no
// database, loopback listener, a fixed API key. Environment overrides
// still apply.
func Dev() *Config {
	cfg := &Config{
		Server: ServerConfig{Host: "127.0.0.1", Port: 8080},
		Auth:   AuthConfig{APIKey: "dev"},
	}
	applyEnvOverrides(cfg)
	return cfg
}
