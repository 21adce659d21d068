// Package cmd implements the kasplan CLI commands.
package cmd

import (
	"fmt"
	"strings"

	"github.com/kasplanner/kasplan/internal/config"

	"github.com/spf13/cobra"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Show current configuration",
	RunE:  runConfig,
}

func init() {
	rootCmd.AddCommand(configCmd)
}

func runConfig(_ *cobra.Command, _ []string) error {
	fmt.Printf("  Config file: %s\n", config.ConfigPath())
	if config.Exists() {
		fmt.Println("  Status: loaded")
	} else {
		fmt.Println("  Status: using defaults (no config file)")
	}
	fmt.Println()

	fmt.Println("  [General]")
	fmt.Printf("    Database:  %s\n", dbPath())
	fmt.Printf("    Log level: %s\n", config.GetLogLevel(cfg))
	fmt.Println()

	fmt.Println("  [Forecast]")
	fmt.Printf("    Horizon:   %d days\n", cfg.Forecast.HorizonDays)
	fmt.Printf("    Threshold: %s\n", formatMoney(cfg.Forecast.Threshold))
	fmt.Printf("    Currency:  %s\n", cfg.Forecast.Currency)
	fmt.Println()

	fmt.Println("  [Alerts]")
	if cfg.Alerts.EmailEnabled {
		fmt.Printf("    Email:     enabled, to %s\n", strings.Join(cfg.Alerts.To, ", "))
		fmt.Printf("    SMTP:      %s:%d\n", cfg.Alerts.SMTPHost, cfg.Alerts.SMTPPort)
		if cfg.Alerts.SMTPUser != "" {
			fmt.Printf("    SMTP user: %s\n", cfg.Alerts.SMTPUser)
		}
		if pw := config.GetSMTPPassword(cfg); pw != "" {
			fmt.Printf("    Password:  %s\n", maskSecret(pw))
		} else {
			fmt.Println("    Password:  not configured")
		}
	} else {
		fmt.Println("    Email:     disabled")
	}
	fmt.Println()

	fmt.Println("  [Daemon]")
	fmt.Printf("    Address:   http://%s\n", cfg.Daemon.Addr)
	fmt.Printf("    Schedule:  %s\n", cfg.Daemon.Schedule)
	fmt.Printf("    Cache TTL: %ds\n", cfg.Daemon.CacheTTLSec)
	fmt.Println()

	fmt.Println("  [Appearance]")
	fmt.Printf("    Theme: %s\n", cfg.Appearance.Theme)
	fmt.Println()

	fmt.Println("  Run `kasplan setup` to reconfigure.")
	return nil
}
