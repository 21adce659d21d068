package components

import (
	"fmt"
	"math"
	"strings"

	"github.com/kasplanner/kasplan/internal/tui/theme"

	"github.com/charmbracelet/lipgloss"
)

// Sparkline renders a unicode sparkline scaled between the series minimum
// and maximum, so negative balances sit at the bottom.
func Sparkline(values []float64, color lipgloss.Color) string {
	if len(values) == 0 {
		return ""
	}
	t := theme.Active

	blocks := []rune{'▁', '▂', '▃', '▄', '▅', '▆', '▇', '█'}

	lo, hi := values[0], values[0]
	for _, v := range values[1:] {
		lo = min(lo, v)
		hi = max(hi, v)
	}
	span := hi - lo
	if span == 0 {
		span = 1
	}

	style := lipgloss.NewStyle().Foreground(color).Background(t.Surface)

	var buf strings.Builder
	buf.Grow(len(values) * 4) // UTF-8 block chars are up to 3 bytes
	for _, v := range values {
		idx := int((v - lo) / span * float64(len(blocks)-1))
		idx = max(0, min(idx, len(blocks)-1))
		buf.WriteRune(blocks[idx]) //nolint:gosec // bounds checked above
	}

	return style.Render(buf.String())
}

// BalanceChart renders a column chart of balances around a zero axis.
// Positive columns grow up in the accent color, negative ones grow down in
// red. height is the number of rows above plus below the axis.
func BalanceChart(values []float64, labels []string, width, height int) string {
	if len(values) == 0 {
		return ""
	}
	t := theme.Active
	if width < 15 || height < 3 {
		return Sparkline(values, t.Accent)
	}

	maxPos, maxNeg := 0.0, 0.0
	for _, v := range values {
		maxPos = max(maxPos, v)
		maxNeg = max(maxNeg, -v)
	}
	total := maxPos + maxNeg
	if total == 0 {
		total = 1
		maxPos = 1
	}

	// Split rows between the halves in proportion to their extent.
	upRows := int(math.Round(float64(height) * maxPos / total))
	downRows := height - upRows
	if maxNeg > 0 && downRows < 1 {
		downRows, upRows = 1, height-1
	}
	if maxPos > 0 && upRows < 1 {
		upRows, downRows = 1, height-1
	}

	yLabelW := max(len(formatChartLabel(maxPos)), len(formatChartLabel(-maxNeg))) + 1
	chartW := max(width-yLabelW-1, 5)

	n := len(values)
	gap := 1
	if n <= 1 {
		gap = 0
	}
	barW := chartW
	if n > 1 {
		barW = (chartW - (n - 1)) / n
	}
	if barW < 1 {
		// Too many columns: sample down to what fits.
		maxN := max((chartW+1)/2, 2)
		sampled := make([]float64, maxN)
		var sampledLabels []string
		if len(labels) == n {
			sampledLabels = make([]string, maxN)
		}
		for i := range sampled {
			srcIdx := i * (n - 1) / (maxN - 1)
			sampled[i] = values[srcIdx]
			if sampledLabels != nil {
				sampledLabels[i] = labels[srcIdx]
			}
		}
		values, labels, n, barW = sampled, sampledLabels, maxN, 1
	}
	barW = min(barW, 6)

	axisStyle := lipgloss.NewStyle().Foreground(t.TextDim).Background(t.Surface)
	upStyle := lipgloss.NewStyle().Foreground(t.Accent).Background(t.Surface)
	downStyle := lipgloss.NewStyle().Foreground(t.Negative).Background(t.Surface)
	blank := lipgloss.NewStyle().Background(t.Surface)

	var b strings.Builder
	writeRow := func(label string, cell func(v float64) (string, lipgloss.Style)) {
		b.WriteString(axisStyle.Render(fmt.Sprintf("%*s", yLabelW, label)))
		b.WriteString(axisStyle.Render("│"))
		for i, v := range values {
			if i > 0 && gap > 0 {
				b.WriteString(blank.Render(strings.Repeat(" ", gap)))
			}
			ch, st := cell(v)
			b.WriteString(st.Render(strings.Repeat(ch, barW)))
		}
		b.WriteString("\n")
	}

	for row := upRows; row >= 1; row-- {
		rowBottom := maxPos * float64(row-1) / float64(upRows)
		label := ""
		if row == upRows {
			label = formatChartLabel(maxPos)
		}
		writeRow(label, func(v float64) (string, lipgloss.Style) {
			if v > rowBottom {
				return "█", upStyle
			}
			return " ", blank
		})
	}

	axisLen := n*barW + max(0, n-1)*gap
	b.WriteString(axisStyle.Render(fmt.Sprintf("%*s", yLabelW, "0")))
	b.WriteString(axisStyle.Render("┼" + strings.Repeat("─", axisLen)))
	b.WriteString("\n")

	for row := 1; row <= downRows && maxNeg > 0; row++ {
		rowTop := -maxNeg * float64(row-1) / float64(downRows)
		label := ""
		if row == downRows {
			label = formatChartLabel(-maxNeg)
		}
		writeRow(label, func(v float64) (string, lipgloss.Style) {
			if v < rowTop {
				return "█", downStyle
			}
			return " ", blank
		})
	}

	if len(labels) == n && n > 0 {
		buf := []byte(strings.Repeat(" ", axisLen))
		lastEnd := -1
		for i := 0; i < n; i++ {
			pos := i * (barW + gap)
			lbl := labels[i]
			end := min(pos+len(lbl), axisLen)
			if pos <= lastEnd || end-pos < len(lbl) {
				continue
			}
			copy(buf[pos:end], lbl)
			lastEnd = end
		}
		labelStyle := lipgloss.NewStyle().Foreground(t.TextDim).Background(t.Surface)
		b.WriteString(blank.Render(strings.Repeat(" ", yLabelW+1)))
		b.WriteString(labelStyle.Render(strings.TrimRight(string(buf), " ")))
	}

	return strings.TrimRight(b.String(), "\n")
}

func formatChartLabel(v float64) string {
	if v < 0 {
		return "-" + formatChartLabel(-v)
	}
	switch {
	case v >= 1e6:
		if v == math.Trunc(v/1e6)*1e6 {
			return fmt.Sprintf("%.0fM", v/1e6)
		}
		return fmt.Sprintf("%.1fM", v/1e6)
	case v >= 1e3:
		if v == math.Trunc(v/1e3)*1e3 {
			return fmt.Sprintf("%.0fk", v/1e3)
		}
		return fmt.Sprintf("%.1fk", v/1e3)
	default:
		return fmt.Sprintf("%.0f", v)
	}
}
