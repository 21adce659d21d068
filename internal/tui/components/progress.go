package components

import (
	"fmt"

	"github.com/kasplanner/kasplan/internal/tui/theme"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/lipgloss"
)

// ColorForHeadroom returns red/orange/yellow/green for how far the lowest
// balance sits above the alert threshold. ratio is low point / threshold.
func ColorForHeadroom(ratio float64) string {
	t := theme.Active
	switch {
	case ratio < 1:
		return string(t.Negative)
	case ratio < 1.25:
		return string(t.Warning)
	case ratio < 2:
		return string(t.Caution)
	default:
		return string(t.Positive)
	}
}

// HeadroomBar renders a labeled bar comparing the window's lowest balance
// with the alert threshold. The bar is full at twice the threshold.
func HeadroomBar(label string, low, threshold float64, labelW, barWidth int) string {
	t := theme.Active

	ratio := 0.0
	switch {
	case threshold > 0:
		ratio = low / threshold
	case low >= threshold:
		ratio = 2
	}
	pct := max(0, min(ratio/2, 1))

	bar := progress.New(
		progress.WithSolidFill(ColorForHeadroom(ratio)),
		progress.WithWidth(barWidth),
		progress.WithoutPercentage(),
	)
	bar.EmptyColor = string(t.TextDim)

	labelStyle := lipgloss.NewStyle().Foreground(t.TextMuted).Width(labelW)
	pctStyle := lipgloss.NewStyle().Foreground(lipgloss.Color(ColorForHeadroom(ratio))).Bold(true)

	return labelStyle.Render(label) + " " + bar.ViewAs(pct) + " " +
		pctStyle.Render(fmt.Sprintf("%3.0f%%", ratio*100))
}
