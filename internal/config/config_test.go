package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/shopspring/decimal"
)

func useTempConfigDir(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", dir)
	return filepath.Join(dir, "kasplan")
}

func TestLoad_DefaultsWhenMissing(t *testing.T) {
	useTempConfigDir(t)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Forecast.HorizonDays != 90 {
		t.Errorf("HorizonDays = %d, want 90", cfg.Forecast.HorizonDays)
	}
	if !cfg.Forecast.Threshold.Equal(decimal.NewFromInt(10000)) {
		t.Errorf("Threshold = %s, want 10000", cfg.Forecast.Threshold)
	}
	if Exists() {
		t.Error("Exists() = true with no config file")
	}
}

func TestSaveLoad_RoundTrip(t *testing.T) {
	useTempConfigDir(t)

	cfg := DefaultConfig()
	cfg.Forecast.HorizonDays = 60
	cfg.Forecast.Threshold = decimal.RequireFromString("2500.75")
	cfg.Alerts.EmailEnabled = true
	cfg.Alerts.To = []string{"owner@example.com"}

	if err := Save(cfg); err != nil {
		t.Fatalf("Save: %v", err)
	}
	if !Exists() {
		t.Fatal("Exists() = false after Save")
	}

	got, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if got.Forecast.HorizonDays != 60 {
		t.Errorf("HorizonDays = %d, want 60", got.Forecast.HorizonDays)
	}
	if !got.Forecast.Threshold.Equal(cfg.Forecast.Threshold) {
		t.Errorf("Threshold = %s, want 2500.75", got.Forecast.Threshold)
	}
	if !got.Alerts.EmailEnabled || len(got.Alerts.To) != 1 || got.Alerts.To[0] != "owner@example.com" {
		t.Errorf("Alerts = %+v", got.Alerts)
	}
}

func TestLoad_HandWrittenFile(t *testing.T) {
	dir := useTempConfigDir(t)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatal(err)
	}
	content := `
[forecast]
horizon_days = 30
threshold = "500"

[daemon]
schedule = "*/15 * * * *"
`
	if err := os.WriteFile(filepath.Join(dir, "config.toml"), []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Forecast.HorizonDays != 30 || !cfg.Forecast.Threshold.Equal(decimal.NewFromInt(500)) {
		t.Errorf("Forecast = %+v", cfg.Forecast)
	}
	if cfg.Daemon.Schedule != "*/15 * * * *" {
		t.Errorf("Schedule = %q", cfg.Daemon.Schedule)
	}
	// Unset keys keep their defaults.
	if cfg.Forecast.Currency != "EUR" || cfg.Daemon.Addr != "127.0.0.1:8788" {
		t.Errorf("defaults lost: currency=%q addr=%q", cfg.Forecast.Currency, cfg.Daemon.Addr)
	}
}

func TestLoad_RejectsNonPositiveHorizon(t *testing.T) {
	dir := useTempConfigDir(t)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "config.toml"), []byte("[forecast]\nhorizon_days = 0\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(); err == nil {
		t.Fatal("expected error for horizon_days = 0")
	}
}

func TestGetSMTPPassword_EnvWins(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Alerts.SMTPPassword = "from-file"

	t.Setenv("KASPLAN_SMTP_PASSWORD", "")
	if got := GetSMTPPassword(cfg); got != "from-file" {
		t.Errorf("GetSMTPPassword = %q, want from-file", got)
	}
	t.Setenv("KASPLAN_SMTP_PASSWORD", "from-env")
	if got := GetSMTPPassword(cfg); got != "from-env" {
		t.Errorf("GetSMTPPassword = %q, want from-env", got)
	}
}

func TestLoadDotEnv(t *testing.T) {
	dir := useTempConfigDir(t)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, ".env"), []byte("KASPLAN_LOG_LEVEL=debug\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	t.Chdir(t.TempDir())
	t.Setenv("KASPLAN_LOG_LEVEL", "")
	os.Unsetenv("KASPLAN_LOG_LEVEL")

	if err := LoadDotEnv(); err != nil {
		t.Fatalf("LoadDotEnv: %v", err)
	}
	if got := GetLogLevel(DefaultConfig()); got != "debug" {
		t.Errorf("GetLogLevel = %q, want debug", got)
	}
}
