// Package config loads the YAML configuration shared by the gymviz binaries.
package config

import (
	"fmt"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"

	"github.com/cabinz/gym-track-visualizer/internal/chart"
	"github.com/cabinz/gym-track-visualizer/internal/metrics"
)

type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Database  DatabaseConfig  `yaml:"database"`
	Auth      AuthConfig      `yaml:"auth"`
	Tailscale TailscaleConfig `yaml:"tailscale"`
	Metrics   MetricsConfig   `yaml:"metrics"`
	Chart     chart.Options   `yaml:"chart"`
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

type TailscaleConfig struct {
	Enabled  bool   `yaml:"enabled"`
	Hostname string `yaml:"hostname"`
	StateDir string `yaml:"state_dir"`
}

// MetricsConfig is the metric engine configuration plus the worker count used
// for large tables.
type MetricsConfig struct {
	metrics.Config `yaml:",inline"`
	Workers        int `yaml:"workers"`
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

func defaults() *Config {
	return &Config{
		Tailscale: TailscaleConfig{Hostname: "gymviz", StateDir: "tsnet-state"},
		Metrics:   MetricsConfig{Config: metrics.DefaultConfig()},
		Chart:     chart.DefaultOptions(),
	}
}

// Load reads config from a YAML file, applies environment variable overrides
// and validates everything the server needs. Env vars use the prefix GYMVIZ_:
//
//	GYMVIZ_SERVER_HOST, GYMVIZ_SERVER_PORT,
//	GYMVIZ_DB_HOST, GYMVIZ_DB_PORT, GYMVIZ_DB_NAME,
//	GYMVIZ_DB_USER, GYMVIZ_DB_PASSWORD, GYMVIZ_DB_SSLMODE,
//	GYMVIZ_AUTH_API_KEY,
//	GYMVIZ_PASS_REPS, GYMVIZ_FULL_REPS, GYMVIZ_SET_RANGE (e.g. "1-4")
func Load(path string) (*Config, error) {
	cfg, err := read(path)
	if err != nil {
		return nil, err
	}
	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("config validation: %w", err)
	}
	return cfg, nil
}

// LoadAnalysis is Load for the offline tools: only the metrics and chart
// sections are validated. An empty path yields the defaults plus env
// overrides.
func LoadAnalysis(path string) (*Config, error) {
	cfg := defaults()
	if path != "" {
		var err error
		if cfg, err = read(path); err != nil {
			return nil, err
		}
	} else if err := applyEnvOverrides(cfg); err != nil {
		return nil, err
	}
	if err := cfg.validateAnalysis(); err != nil {
		return nil, fmt.Errorf("config validation: %w", err)
	}
	return cfg, nil
}

func read(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}
	cfg := defaults()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}
	if err := applyEnvOverrides(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func applyEnvOverrides(cfg *Config) error {
	setString(&cfg.Server.Host, "GYMVIZ_SERVER_HOST")
	setInt(&cfg.Server.Port, "GYMVIZ_SERVER_PORT")
	setString(&cfg.Database.Host, "GYMVIZ_DB_HOST")
	setInt(&cfg.Database.Port, "GYMVIZ_DB_PORT")
	setString(&cfg.Database.Name, "GYMVIZ_DB_NAME")
	setString(&cfg.Database.User, "GYMVIZ_DB_USER")
	setString(&cfg.Database.Password, "GYMVIZ_DB_PASSWORD")
	setString(&cfg.Database.SSLMode, "GYMVIZ_DB_SSLMODE")
	setString(&cfg.Auth.APIKey, "GYMVIZ_AUTH_API_KEY")
	setInt(&cfg.Metrics.PassReps, "GYMVIZ_PASS_REPS")
	setInt(&cfg.Metrics.FullReps, "GYMVIZ_FULL_REPS")
	if v := os.Getenv("GYMVIZ_SET_RANGE"); v != "" {
		r, err := metrics.ParseSetRange(v)
		if err != nil {
			return fmt.Errorf("GYMVIZ_SET_RANGE: %w", err)
		}
		cfg.Metrics.SetRange = r
	}
	return nil
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
	if c.Tailscale.Enabled && c.Tailscale.Hostname == "" {
		return fmt.Errorf("tailscale.hostname is required when tailscale is enabled")
	}
	return c.validateAnalysis()
}

func (c *Config) validateAnalysis() error {
	if err := c.Metrics.Validate(); err != nil {
		return err
	}
	if c.Metrics.Workers < 0 {
		return fmt.Errorf("metrics.workers must be >= 0")
	}
	if _, err := chart.TickLabels(nil, c.Chart.TickMode); err != nil {
		return fmt.Errorf("chart.tick_mode: %w", err)
	}
	if c.Chart.BarWidth < 0 || c.Chart.BarWidth > 1 {
		return fmt.Errorf("chart.bar_width must be within [0, 1]")
	}
	return nil
}
