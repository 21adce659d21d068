package tui

import (
	"fmt"
	"strings"

	"github.com/kasplanner/kasplan/internal/cli"
	"github.com/kasplanner/kasplan/internal/forecast"
	"github.com/kasplanner/kasplan/internal/tui/components"
	"github.com/kasplanner/kasplan/internal/tui/theme"

	"github.com/charmbracelet/lipgloss"
)

func (a App) renderWeeksTab(cw int) string {
	t := theme.Active
	cur := a.opts.Currency

	headerStyle := lipgloss.NewStyle().Foreground(t.Accent).Bold(true)
	rowStyle := lipgloss.NewStyle().Foreground(t.TextPrimary)
	negStyle := lipgloss.NewStyle().Foreground(t.Negative)
	dimStyle := lipgloss.NewStyle().Foreground(t.TextDim)

	weeks := forecast.Weekly(a.active)
	compare := a.scenarioIdx >= 0

	maxAbs := 0.0
	for _, w := range weeks {
		v := w.Cumulative.Abs().InexactFloat64()
		maxAbs = max(maxAbs, v)
	}

	const colW = 14
	var b strings.Builder
	header := fmt.Sprintf("%-5s %-11s %*s %*s %*s", "Week", "Start", colW, "In", colW, "Out", colW, "Balance")
	if compare {
		header += fmt.Sprintf(" %*s", colW, "vs baseline")
	}
	b.WriteString(headerStyle.Render(header))
	b.WriteString("\n")

	barW := max(components.CardInnerWidth(cw)-lipgloss.Width(header)-2, 5)
	for i, w := range weeks {
		line := fmt.Sprintf("W%-4d %-11s %*s %*s ", w.Index+1, w.Start.Format("2006-01-02"),
			colW, cli.FormatMoney(w.Income, cur), colW, cli.FormatMoney(w.Expense, cur))
		bal := fmt.Sprintf("%*s", colW, cli.FormatMoney(w.Cumulative, cur))
		if w.Cumulative.IsNegative() {
			bal = negStyle.Render(bal)
		} else {
			bal = rowStyle.Render(bal)
		}
		line = rowStyle.Render(line) + bal
		if compare && i < len(a.comparisons) {
			d := a.comparisons[i].Delta
			delta := fmt.Sprintf(" %*s", colW, cli.FormatSignedMoney(d, cur))
			if d.IsNegative() {
				line += negStyle.Render(delta)
			} else {
				line += dimStyle.Render(delta)
			}
		}
		line += "  " + cli.RenderBalanceBar(w.Cumulative.InexactFloat64(), maxAbs, barW)
		b.WriteString(line)
		b.WriteString("\n")
	}

	title := "Weekly balance"
	if compare {
		title += " · " + a.scenarioName() + " vs baseline"
	}
	return components.ContentCard(title, strings.TrimRight(b.String(), "\n"), cw)
}
