package cmd

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/kasplanner/kasplan/internal/config"
	"github.com/kasplanner/kasplan/internal/tui/theme"

	"github.com/charmbracelet/huh"
	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"
)

var setupCmd = &cobra.Command{
	Use:   "setup",
	Short: "First-time setup wizard",
	RunE:  runSetup,
}

func init() {
	rootCmd.AddCommand(setupCmd)
}

func runSetup(_ *cobra.Command, _ []string) error {
	c := cfg

	horizon := strconv.Itoa(c.Forecast.HorizonDays)
	threshold := c.Forecast.Threshold.String()
	currency := c.Forecast.Currency
	themeName := c.Appearance.Theme
	emailEnabled := c.Alerts.EmailEnabled
	to := strings.Join(c.Alerts.To, ", ")
	smtpHost := c.Alerts.SMTPHost
	smtpPort := strconv.Itoa(c.Alerts.SMTPPort)
	smtpUser := c.Alerts.SMTPUser

	themeOpts := make([]huh.Option[string], 0, len(theme.All))
	for _, name := range theme.Names() {
		themeOpts = append(themeOpts, huh.NewOption(name, name))
	}

	form := huh.NewForm(
		huh.NewGroup(
			huh.NewNote().
				Title("Welcome to kasplan").
				Description(fmt.Sprintf("Settings are saved to %s", config.ConfigPath())),
			huh.NewSelect[string]().
				Title("Default forecast horizon").
				Options(
					huh.NewOption("30 days", "30"),
					huh.NewOption("60 days", "60"),
					huh.NewOption("90 days", "90"),
				).
				Value(&horizon),
			huh.NewInput().
				Title("Alert threshold").
				Description("Days with a projected balance below this amount are flagged").
				Value(&threshold).
				Validate(validateAmount),
			huh.NewInput().
				Title("Currency code").
				Value(&currency),
			huh.NewSelect[string]().
				Title("Color theme").
				Options(themeOpts...).
				Value(&themeName),
		),
		huh.NewGroup(
			huh.NewConfirm().
				Title("Email breach alerts?").
				Value(&emailEnabled),
		),
		huh.NewGroup(
			huh.NewInput().
				Title("Send alerts to").
				Description("Comma-separated addresses").
				Value(&to),
			huh.NewInput().
				Title("SMTP host").
				Value(&smtpHost),
			huh.NewInput().
				Title("SMTP port").
				Value(&smtpPort).
				Validate(validatePort),
			huh.NewInput().
				Title("SMTP user").
				Description("The password is read from KASPLAN_SMTP_PASSWORD").
				Value(&smtpUser),
		).WithHideFunc(func() bool { return !emailEnabled }),
	)

	if err := form.Run(); err != nil {
		if errors.Is(err, huh.ErrUserAborted) {
			fmt.Println("  Setup canceled, nothing saved.")
			return nil
		}
		return err
	}

	c.Forecast.HorizonDays, _ = strconv.Atoi(horizon)
	c.Forecast.Threshold, _ = decimal.NewFromString(strings.TrimSpace(threshold))
	c.Forecast.Currency = strings.ToUpper(strings.TrimSpace(currency))
	c.Appearance.Theme = themeName
	c.Alerts.EmailEnabled = emailEnabled
	if emailEnabled {
		c.Alerts.To = splitAddresses(to)
		c.Alerts.SMTPHost = strings.TrimSpace(smtpHost)
		c.Alerts.SMTPPort, _ = strconv.Atoi(smtpPort)
		c.Alerts.SMTPUser = strings.TrimSpace(smtpUser)
	}

	if err := config.Save(c); err != nil {
		return fmt.Errorf("saving config: %w", err)
	}

	fmt.Println()
	fmt.Printf("  Saved to %s\n", config.ConfigPath())
	fmt.Println("  Run `kasplan setup` anytime to reconfigure.")
	fmt.Println()
	return nil
}

func validateAmount(s string) error {
	if _, err := decimal.NewFromString(strings.TrimSpace(s)); err != nil {
		return errors.New("enter a number, e.g. 10000")
	}
	return nil
}

func validatePort(s string) error {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil || n <= 0 || n > 65535 {
		return errors.New("enter a port between 1 and 65535")
	}
	return nil
}

func splitAddresses(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func maskSecret(key string) string {
	if len(key) > 16 {
		return key[:4] + "..." + key[len(key)-4:]
	}
	return "****"
}
