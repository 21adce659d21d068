package cmd

import (
	"errors"
	"fmt"
	"os"

	"github.com/kasplanner/kasplan/internal/cli"
	"github.com/kasplanner/kasplan/internal/forecast"
	"github.com/kasplanner/kasplan/internal/model"
	"github.com/kasplanner/kasplan/internal/notify"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"
)

var (
	flagAlertsThreshold string
	flagAlertsScenario  string
	flagAlertsEmail     bool
	flagAlertsAll       bool
)

var alertsCmd = &cobra.Command{
	Use:   "alerts",
	Short: "Days whose projected balance falls below the threshold",
	RunE:  runAlerts,
}

func init() {
	alertsCmd.Flags().StringVarP(&flagAlertsThreshold, "threshold", "t", "", "Override the configured threshold")
	alertsCmd.Flags().StringVarP(&flagAlertsScenario, "scenario", "s", "", "Apply a scenario by ID")
	alertsCmd.Flags().BoolVar(&flagAlertsEmail, "email", false, "Email the alert using the [alerts] settings")
	alertsCmd.Flags().BoolVar(&flagAlertsAll, "all", false, "List every breached day")
	rootCmd.AddCommand(alertsCmd)
}

func runAlerts(_ *cobra.Command, _ []string) error {
	threshold := cfg.Forecast.Threshold
	if flagAlertsThreshold != "" {
		t, err := decimal.NewFromString(flagAlertsThreshold)
		if err != nil {
			return fmt.Errorf("--threshold %q: %w", flagAlertsThreshold, forecast.ErrInvalidArgument)
		}
		threshold = t
	}

	run, err := loadForecast(flagAlertsScenario)
	if err != nil {
		return err
	}
	breaches := forecast.BreachedDays(run.Window, threshold)

	fmt.Println()
	fmt.Println(cli.RenderTitle(fmt.Sprintf("ALERTS  below %s  %dd from %s",
		formatMoney(threshold), len(run.Window), model.DayKey(run.Today))))
	fmt.Println()

	if len(breaches) == 0 {
		fmt.Println("  " + cli.RenderOK("Balance stays at or above the threshold for the whole window."))
		return nil
	}

	shown := breaches
	if !flagAlertsAll && len(shown) > notify.MaxListedDays {
		shown = shown[:notify.MaxListedDays]
	}
	rows := make([][]string, 0, len(shown)+1)
	for _, d := range shown {
		rows = append(rows, []string{
			cli.FormatDate(d.Date),
			formatMoney(d.Cumulative),
			formatMoney(d.Cumulative.Sub(threshold)),
		})
	}
	if extra := len(breaches) - len(shown); extra > 0 {
		rows = append(rows, []string{fmt.Sprintf("+%d more", extra)})
	}
	fmt.Print(cli.RenderTable(cli.Table{
		Headers: []string{"Date", "Balance", "Shortfall"},
		Rows:    rows,
	}))
	fmt.Println()
	fmt.Println("  " + cli.RenderWarning(fmt.Sprintf("%d of %d days below threshold", len(breaches), len(run.Window))))

	if !flagAlertsEmail {
		return nil
	}
	sender := notify.NewSender(cfg, logger)
	if !sender.Enabled() {
		return errors.New("email alerts are not configured (see `kasplan setup` or the [alerts] section)")
	}
	if err := sender.SendBreachAlert(breaches, threshold); err != nil {
		return err
	}
	if !flagQuiet {
		fmt.Fprintf(os.Stderr, "  Alert emailed to %d recipient(s)\n", len(cfg.Alerts.To))
	}
	return nil
}
