package config

import (
	"fmt"
	"os"
	"strings"

	"go.yaml.in/yaml/v4"
)

type OIDCProviderConfig struct {
	Id           string   `yaml:"id"`
	Name         string   `yaml:"name"`
	ClientID     string   `yaml:"client_id"`
	ClientSecret string   `yaml:"client_secret"`
	IssuerURL    string   `yaml:"issuer_url"`
	RedirectURL  string   `yaml:"redirect_url"`
	Scopes       []string `yaml:"scopes"`
}

type StorageConfig struct {
	// Backend is one of bolt, sqlite, postgres or fixture.
	Backend string `yaml:"backend"`
	// Path is the database file for bolt and sqlite.
	Path string `yaml:"path"`
	// DSN is the postgres connection string.
	DSN         string `yaml:"dsn"`
	FixtureUser string `yaml:"fixture_user"`
}

type LogConfig struct {
	Format string `yaml:"format"`
	Level  string `yaml:"level"`
}

type NudgeConfig struct {
	// Schedule is a cron expression; empty disables in-server nudges.
	Schedule       string `yaml:"schedule"`
	Email          string `yaml:"email"`
	From           string `yaml:"from"`
	ResendAPIKey   string `yaml:"resend_api_key"`
	ThresholdHours int    `yaml:"threshold_hours"`
	UserID         string `yaml:"user_id"`
}

type Config struct {
	APIBaseURL      string               `yaml:"api_base_url"`
	APIToken        string               `yaml:"api_token"`
	ListenAddr      string               `yaml:"listen_addr"`
	AuthEnabled     bool                 `yaml:"auth_enabled"`
	OIDCProviders   []OIDCProviderConfig `yaml:"oidc_providers"`
	Storage         StorageConfig        `yaml:"storage"`
	DefaultTimezone string               `yaml:"default_timezone"`
	Log             LogConfig            `yaml:"log"`
	Nudge           NudgeConfig          `yaml:"nudge"`
}

// Path returns the config file location, HABITS_CONFIG or config.yaml.
func Path() string {
	return getenv("HABITS_CONFIG", "config.yaml")
}

func Load() (*Config, error) {
	return LoadFile(Path())
}

func LoadFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}

	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}
	cfg.applyEnv()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func Default() *Config {
	return &Config{
		APIBaseURL: "http://localhost:8080",
		ListenAddr: ":8080",
		Storage: StorageConfig{
			Backend:     "bolt",
			Path:        "habits.db",
			FixtureUser: "anonymous",
		},
		Log: LogConfig{Format: "text", Level: "info"},
		Nudge: NudgeConfig{
			From:           "Habits <nudge@habits.local>",
			ThresholdHours: 4,
			UserID:         "anonymous",
		},
	}
}

func (c *Config) applyEnv() {
	c.APIBaseURL = getenv("HABITS_API_BASE", c.APIBaseURL)
	c.APIToken = getenv("HABITS_API_TOKEN", c.APIToken)
	c.Storage.Path = getenv("HABITS_DB_PATH", c.Storage.Path)
	c.DefaultTimezone = getenv("HABITS_DEFAULT_TIMEZONE", c.DefaultTimezone)
	c.Nudge.ResendAPIKey = getenv("HABITS_RESEND_API_KEY", c.Nudge.ResendAPIKey)
	c.Nudge.Email = getenv("HABITS_NOTIFY_EMAIL", c.Nudge.Email)
}

func (c *Config) Validate() error {
	switch strings.ToLower(c.Storage.Backend) {
	case "bolt", "sqlite", "fixture":
	case "postgres":
		if c.Storage.DSN == "" {
			return fmt.Errorf("storage.dsn is required for the postgres backend")
		}
	default:
		return fmt.Errorf("unknown storage backend %q", c.Storage.Backend)
	}
	for _, p := range c.OIDCProviders {
		if p.Id == "" || p.IssuerURL == "" || p.ClientID == "" {
			return fmt.Errorf("oidc provider %q: id, issuer_url and client_id are required", p.Name)
		}
	}
	return nil
}

func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}
