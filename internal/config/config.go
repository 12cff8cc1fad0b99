package config

import (
	"fmt"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Database DatabaseConfig `yaml:"database"`
	Auth     AuthConfig     `yaml:"auth"`
	Scoring  ScoringConfig  `yaml:"scoring"`
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
}

type AuthConfig struct {
	APIKey string `yaml:"api_key"`
}

// ScoringConfig tunes the readiness and weekly-trend heuristics. Zero values
// fall back to the engines' built-in defaults.
type ScoringConfig struct {
	SleepTargetMin    int `yaml:"sleep_target_min"`     // readiness nightly target
	WeeklySleepGoal   int `yaml:"weekly_sleep_goal"`    // weekly-average goal in minutes
	MinDaysForOK      int `yaml:"min_days_for_ok"`      // synced days for an ok weekly status
	MinDaysForCompare int `yaml:"min_days_for_compare"` // populated days per window to compare
	IngestTimeoutSec  int `yaml:"ingest_timeout_sec"`   // wall-clock budget per ingest batch
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

// IngestTimeoutSecOrDefault returns the configured ingest budget, defaulting to
// 60 seconds so a huge export cannot hold the handler indefinitely.
func (s ScoringConfig) IngestTimeoutSecOrDefault() int {
	if s.IngestTimeoutSec <= 0 {
		return 60
	}
	return s.IngestTimeoutSec
}

// Load reads config from a YAML file, then applies environment variable overrides.
// Env vars use the prefix DAYPULSE_ and underscore-separated paths:
//
//	DAYPULSE_SERVER_HOST, DAYPULSE_SERVER_PORT,
//	DAYPULSE_DB_HOST, DAYPULSE_DB_PORT, DAYPULSE_DB_NAME,
//	DAYPULSE_DB_USER, DAYPULSE_DB_PASSWORD, DAYPULSE_DB_SSLMODE,
//	DAYPULSE_AUTH_API_KEY
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
	if v := os.Getenv("DAYPULSE_SERVER_HOST"); v != "" {
		cfg.Server.Host = v
	}
	if v := os.Getenv("DAYPULSE_SERVER_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			cfg.Server.Port = port
		}
	}
	if v := os.Getenv("DAYPULSE_DB_HOST"); v != "" {
		cfg.Database.Host = v
	}
	if v := os.Getenv("DAYPULSE_DB_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			cfg.Database.Port = port
		}
	}
	if v := os.Getenv("DAYPULSE_DB_NAME"); v != "" {
		cfg.Database.Name = v
	}
	if v := os.Getenv("DAYPULSE_DB_USER"); v != "" {
		cfg.Database.User = v
	}
	if v := os.Getenv("DAYPULSE_DB_PASSWORD"); v != "" {
		cfg.Database.Password = v
	}
	if v := os.Getenv("DAYPULSE_DB_SSLMODE"); v != "" {
		cfg.Database.SSLMode = v
	}
	if v := os.Getenv("DAYPULSE_AUTH_API_KEY"); v != "" {
		cfg.Auth.APIKey = v
	}
}

func (c *Config) validate() error {
	if c.Server.Port == 0 {
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
	if c.Auth.APIKey == "" {
		return fmt.Errorf("auth.api_key is required")
	}
	return nil
}
