package cmd

import (
	"fmt"

	"github.com/kasplanner/kasplan/internal/cli"
	"github.com/kasplanner/kasplan/internal/forecast"
	"github.com/kasplanner/kasplan/internal/model"

	"github.com/spf13/cobra"
)

var flagSummaryScenario string

var summaryCmd = &cobra.Command{
	Use:   "summary",
	Short: "30/60/90 day totals and weekly balances",
	RunE:  runSummary,
}

func init() {
	summaryCmd.Flags().StringVarP(&flagSummaryScenario, "scenario", "s", "", "Apply a scenario by ID")
	rootCmd.AddCommand(summaryCmd)
}

func runSummary(_ *cobra.Command, _ []string) error {
	run, err := loadForecast(flagSummaryScenario)
	if err != nil {
		return err
	}
	window := run.Window

	var periods []int
	for _, p := range forecast.DefaultPeriods {
		if p <= len(window) {
			periods = append(periods, p)
		}
	}
	if len(periods) == 0 {
		periods = []int{len(window)}
	}
	summaries, err := forecast.Summarize(window, periods...)
	if err != nil {
		return err
	}

	title := fmt.Sprintf("CASHFLOW SUMMARY  from %s", model.DayKey(run.Today))
	if run.Scenario != nil {
		title += "  [" + run.Scenario.Name + "]"
	}
	fmt.Println()
	fmt.Println(cli.RenderTitle(title))
	fmt.Println()

	rows := make([][]string, 0, len(summaries)+3)
	for _, s := range summaries {
		rows = append(rows, []string{
			fmt.Sprintf("Next %d days", s.Days),
			formatMoney(s.Income),
			formatMoney(s.Expense.Neg()),
			cli.FormatSignedMoney(s.Net, cfg.Forecast.Currency),
		})
	}
	rows = append(rows, []string{"---"})
	rows = append(rows, []string{"Low point", "", "", formatMoney(cli.DisplayLowPoint(forecast.WorstPoint(window)))})
	rows = append(rows, []string{"Entries", "", "", cli.FormatNumber(int64(run.Entries))})

	fmt.Print(cli.RenderTable(cli.Table{
		Headers: []string{"Period", "Income", "Expense", "Net"},
		Rows:    rows,
	}))
	fmt.Println()

	weeks := forecast.Weekly(window)
	balances := make([]float64, len(weeks))
	weekRows := make([][]string, 0, len(weeks))
	for i, w := range weeks {
		balances[i] = w.Cumulative.InexactFloat64()
		weekRows = append(weekRows, []string{
			fmt.Sprintf("W%d", w.Index+1),
			w.Start.Format(model.DateLayout),
			formatMoney(w.Income),
			formatMoney(w.Expense.Neg()),
			formatMoney(w.Cumulative),
		})
	}
	fmt.Print(cli.RenderTable(cli.Table{
		Title:   "Weekly",
		Headers: []string{"Week", "Start", "Income", "Expense", "Balance"},
		Rows:    weekRows,
	}))
	fmt.Printf("\n  Weekly balance  %s\n", cli.RenderSparkline(balances))

	return nil
}
