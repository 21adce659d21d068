package tui

import (
	"fmt"

	"github.com/kasplanner/kasplan/internal/cli"
	"github.com/kasplanner/kasplan/internal/model"
	"github.com/kasplanner/kasplan/internal/tui/components"
	"github.com/kasplanner/kasplan/internal/tui/theme"

	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/lipgloss"
)

func alertColumns() []table.Column {
	return []table.Column{
		{Title: "Date", Width: 16},
		{Title: "In", Width: 14},
		{Title: "Out", Width: 14},
		{Title: "Balance", Width: 16},
	}
}

func alertRows(days []model.ForecastDay, currency string) []table.Row {
	rows := make([]table.Row, len(days))
	for i, d := range days {
		rows[i] = table.Row{
			cli.FormatDate(d.Date),
			cli.FormatMoney(d.Income, currency),
			cli.FormatMoney(d.Expense, currency),
			cli.FormatMoney(d.Cumulative, currency),
		}
	}
	return rows
}

func entryColumns() []table.Column {
	return []table.Column{
		{Title: "Date", Width: 16},
		{Title: "Type", Width: 8},
		{Title: "Amount", Width: 14},
		{Title: "Source", Width: 12},
		{Title: "ID", Width: 14},
		{Title: "Description", Width: 30},
	}
}

func entryRows(entries []model.CashEntry, currency string) []table.Row {
	rows := make([]table.Row, len(entries))
	for i, e := range entries {
		rows[i] = table.Row{
			cli.FormatDate(e.ExpectedDate),
			e.Kind.String(),
			cli.FormatMoney(e.Amount, currency),
			e.Source.String(),
			truncStr(e.ID, 14),
			truncStr(e.Description, 30),
		}
	}
	return rows
}

func (a App) renderAlertsTab(cw int) string {
	t := theme.Active
	title := fmt.Sprintf("Days below %s · %s", cli.FormatMoney(a.opts.Threshold, a.opts.Currency), a.scenarioName())
	if len(a.breaches) == 0 {
		ok := lipgloss.NewStyle().Foreground(t.Positive).
			Render(fmt.Sprintf("The balance stays at or above the threshold for all %d days.", len(a.active)))
		return components.ContentCard(title, ok, cw)
	}
	return components.ContentCard(fmt.Sprintf("%s · %d days", title, len(a.breaches)), a.alertsTable.View(), cw)
}

func (a App) renderEntriesTab(cw int) string {
	title := fmt.Sprintf("Expected entries · %d", len(a.entries))
	return components.ContentCard(title, a.entriesTable.View(), cw)
}
