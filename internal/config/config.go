// Package config loads and saves kasplan settings from a TOML file.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"
)

// Config holds all kasplan configuration.
type Config struct {
	General    GeneralConfig    `toml:"general"`
	Forecast   ForecastConfig   `toml:"forecast"`
	Alerts     AlertsConfig     `toml:"alerts"`
	Daemon     DaemonConfig     `toml:"daemon"`
	Appearance AppearanceConfig `toml:"appearance"`
}

// GeneralConfig holds general preferences.
type GeneralConfig struct {
	DBPath   string `toml:"db_path,omitempty"`
	LogLevel string `toml:"log_level"`
}

// ForecastConfig holds forecast defaults.
type ForecastConfig struct {
	HorizonDays int             `toml:"horizon_days"`
	Threshold   decimal.Decimal `toml:"threshold"` // written as a string, e.g. "10000"
	Currency    string          `toml:"currency"`
}

// AlertsConfig holds breach notification settings.
type AlertsConfig struct {
	EmailEnabled bool     `toml:"email_enabled"`
	To           []string `toml:"to,omitempty"`
	From         string   `toml:"from,omitempty"`
	SMTPHost     string   `toml:"smtp_host,omitempty"`
	SMTPPort     int      `toml:"smtp_port,omitempty"`
	SMTPUser     string   `toml:"smtp_user,omitempty"`
	SMTPPassword string   `toml:"smtp_password,omitempty"`
}

// DaemonConfig holds settings for `kasplan daemon`.
type DaemonConfig struct {
	Addr        string `toml:"addr"`
	Schedule    string `toml:"schedule"` // cron spec for breach checks
	CacheTTLSec int    `toml:"cache_ttl_sec"`
}

// AppearanceConfig holds theme settings.
type AppearanceConfig struct {
	Theme string `toml:"theme"`
}

// DefaultConfig returns the default configuration.
func DefaultConfig() Config {
	return Config{
		General: GeneralConfig{
			LogLevel: "info",
		},
		Forecast: ForecastConfig{
			HorizonDays: 90,
			Threshold:   decimal.NewFromInt(10000),
			Currency:    "EUR",
		},
		Alerts: AlertsConfig{
			SMTPPort: 587,
		},
		Daemon: DaemonConfig{
			Addr:        "127.0.0.1:8788",
			Schedule:    "0 7 * * *",
			CacheTTLSec: 60,
		},
		Appearance: AppearanceConfig{
			Theme: "flexoki-dark",
		},
	}
}

// ConfigDir returns the XDG-compliant config directory.
func ConfigDir() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "kasplan")
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".config", "kasplan")
}

// ConfigPath returns the full path to the config file.
func ConfigPath() string {
	return filepath.Join(ConfigDir(), "config.toml")
}

// DataDir returns the XDG-compliant data directory holding the database.
func DataDir() string {
	if xdg := os.Getenv("XDG_DATA_HOME"); xdg != "" {
		return filepath.Join(xdg, "kasplan")
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".local", "share", "kasplan")
}

// DBPath returns the configured database path or the default one.
func DBPath(cfg Config) string {
	if cfg.General.DBPath != "" {
		return cfg.General.DBPath
	}
	return filepath.Join(DataDir(), "kasplan.db")
}

// Load reads the config file, returning defaults if it doesn't exist.
func Load() (Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(ConfigPath())
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("reading config: %w", err)
	}

	if err := toml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parsing config: %w", err)
	}
	if cfg.Forecast.HorizonDays <= 0 {
		return cfg, fmt.Errorf("parsing config: forecast.horizon_days must be positive, got %d", cfg.Forecast.HorizonDays)
	}

	return cfg, nil
}

// Save writes the config to disk.
func Save(cfg Config) error {
	dir := ConfigDir()
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating config dir: %w", err)
	}

	f, err := os.OpenFile(ConfigPath(), os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o600)
	if err != nil {
		return fmt.Errorf("creating config file: %w", err)
	}
	defer f.Close()

	enc := toml.NewEncoder(f)
	return enc.Encode(cfg)
}

// Exists returns true if a config file exists on disk.
func Exists() bool {
	_, err := os.Stat(ConfigPath())
	return err == nil
}

// LoadDotEnv loads .env files from the working directory and the config
// directory. Variables already set in the environment win.
func LoadDotEnv() error {
	for _, p := range []string{".env", filepath.Join(ConfigDir(), ".env")} {
		if err := godotenv.Load(p); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("loading %s: %w", p, err)
		}
	}
	return nil
}

// GetSMTPPassword returns the SMTP password from env var or config, in that order.
func GetSMTPPassword(cfg Config) string {
	if pw := os.Getenv("KASPLAN_SMTP_PASSWORD"); pw != "" {
		return pw
	}
	return cfg.Alerts.SMTPPassword
}

// GetLogLevel returns the log level from env var or config, in that order.
func GetLogLevel(cfg Config) string {
	if lvl := os.Getenv("KASPLAN_LOG_LEVEL"); lvl != "" {
		return lvl
	}
	return cfg.General.LogLevel
}
