package cmd

import (
	"fmt"

	"github.com/kasplanner/kasplan/internal/cli"
	"github.com/kasplanner/kasplan/internal/forecast"
	"github.com/kasplanner/kasplan/internal/model"

	"github.com/spf13/cobra"
)

var (
	flagForecastScenario string
	flagForecastAll      bool
)

var forecastCmd = &cobra.Command{
	Use:   "forecast",
	Short: "Day-by-day projected balance",
	RunE:  runForecast,
}

func init() {
	for _, c := range []*cobra.Command{rootCmd, forecastCmd} {
		c.Flags().StringVarP(&flagForecastScenario, "scenario", "s", "", "Apply a scenario by ID")
		c.Flags().BoolVarP(&flagForecastAll, "all", "a", false, "Show every day, not only days with movement")
	}
	rootCmd.AddCommand(forecastCmd)
}

func runForecast(_ *cobra.Command, _ []string) error {
	run, err := loadForecast(flagForecastScenario)
	if err != nil {
		return err
	}
	window := run.Window

	title := fmt.Sprintf("FORECAST  %dd from %s", len(window), model.DayKey(run.Today))
	if run.Scenario != nil {
		title += "  [" + run.Scenario.Name + "]"
	}
	fmt.Println()
	fmt.Println(cli.RenderTitle(title))
	fmt.Println()

	if run.Entries == 0 {
		fmt.Println("  No expected entries. Add some with `kasplan entries import` or `kasplan entries add`.")
		return nil
	}

	rows := make([][]string, 0, len(window))
	for i, d := range window {
		last := i == len(window)-1
		if !flagForecastAll && d.Net.IsZero() && i != 0 && !last {
			continue
		}
		rows = append(rows, []string{
			cli.FormatDate(d.Date),
			formatMoney(d.Income),
			formatMoney(d.Expense.Neg()),
			cli.FormatSignedMoney(d.Net, cfg.Forecast.Currency),
			formatMoney(d.Cumulative),
		})
	}

	fmt.Print(cli.RenderTable(cli.Table{
		Headers: []string{"Date", "Income", "Expense", "Net", "Balance"},
		Rows:    rows,
	}))

	values := make([]float64, len(window))
	for i, d := range window {
		values[i] = d.Cumulative.InexactFloat64()
	}
	fmt.Println()
	fmt.Printf("  Balance  %s\n", cli.RenderSparkline(values))
	fmt.Printf("  Low point  %s\n", formatMoney(cli.DisplayLowPoint(forecast.WorstPoint(window))))
	fmt.Printf("  End of window  %s\n", formatMoney(window[len(window)-1].Cumulative))

	if breaches := forecast.BreachedDays(window, cfg.Forecast.Threshold); len(breaches) > 0 {
		fmt.Println()
		fmt.Println("  " + cli.RenderWarning(fmt.Sprintf("%d days below %s, first on %s (run `kasplan alerts`)",
			len(breaches), formatMoney(cfg.Forecast.Threshold), cli.FormatDate(breaches[0].Date))))
	}
	return nil
}
