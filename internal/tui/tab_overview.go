package tui

import (
	"fmt"
	"strings"

	"github.com/kasplanner/kasplan/internal/cli"
	"github.com/kasplanner/kasplan/internal/forecast"
	"github.com/kasplanner/kasplan/internal/tui/components"

	"github.com/charmbracelet/lipgloss"
)

func (a App) renderOverviewTab(cw int) string {
	cur := a.opts.Currency
	window := a.active

	end := window[len(window)-1].Cumulative
	worst := forecast.WorstPoint(window)
	low := cli.DisplayLowPoint(worst)

	firstBreach := "none"
	if len(a.breaches) > 0 {
		firstBreach = cli.FormatDate(a.breaches[0].Date)
	}

	var b strings.Builder

	metrics := []components.Metric{
		{Label: fmt.Sprintf("Balance after %dd", len(window)), Value: cli.FormatMoney(end, cur), Negative: end.IsNegative()},
		{Label: "Lowest point", Value: cli.FormatMoney(low, cur), Negative: low.IsNegative()},
		{Label: "Days below threshold", Value: fmt.Sprintf("%d", len(a.breaches)), Delta: "first: " + firstBreach,
			Negative: len(a.breaches) > 0},
		{Label: "Open entries", Value: fmt.Sprintf("%d", len(a.entries)), Delta: a.scenarioName()},
	}
	b.WriteString(components.MetricCardRow(metrics, cw))
	b.WriteString("\n")

	// Period summaries
	var periodCards []components.Metric
	for _, p := range a.periods {
		periodCards = append(periodCards, components.Metric{
			Label:    fmt.Sprintf("Next %d days", p.Days),
			Value:    cli.FormatSignedMoney(p.Net, cur),
			Delta:    "in " + cli.FormatMoney(p.Income, cur) + " · out " + cli.FormatMoney(p.Expense, cur),
			Negative: p.Net.IsNegative(),
		})
	}
	if len(periodCards) > 0 {
		b.WriteString(components.MetricCardRow(periodCards, cw))
		b.WriteString("\n")
	}

	// Cumulative balance chart
	values := make([]float64, len(window))
	for i, d := range window {
		values[i] = d.Cumulative.InexactFloat64()
	}
	var labels []string
	for i, d := range window {
		if i%7 == 0 {
			labels = append(labels, d.Date.Format("01-02"))
		} else {
			labels = append(labels, "")
		}
	}
	chart := components.BalanceChart(values, labels, components.CardInnerWidth(cw), 10)
	b.WriteString(components.ContentCard("Cumulative balance", chart, cw))
	b.WriteString("\n")

	barW := max(components.CardInnerWidth(cw)-30, 10)
	headroom := components.HeadroomBar("Headroom", worst.InexactFloat64(),
		a.opts.Threshold.InexactFloat64(), 10, barW)
	b.WriteString(components.ContentCard("Lowest balance vs threshold "+cli.FormatMoney(a.opts.Threshold, cur),
		headroom, cw))

	return lipgloss.NewStyle().MaxWidth(cw).Render(b.String())
}
