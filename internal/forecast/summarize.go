package forecast

import (
	"github.com/kasplanner/kasplan/internal/model"

	"github.com/shopspring/decimal"
)

// DefaultPeriods are the sub-horizons shown on the dashboard.
var DefaultPeriods = []int{30, 60, 90}

// Summarize returns income, expense and net totals over the first N days
// of the window for each requested N. Every N must be in 1..len(window).
func Summarize(window model.ForecastWindow, subHorizons ...int) ([]model.PeriodSummary, error) {
	for _, n := range subHorizons {
		if n <= 0 || n > len(window) {
			return nil, invalidArgument("sub-horizon %d outside window of %d days", n, len(window))
		}
	}

	out := make([]model.PeriodSummary, 0, len(subHorizons))
	for _, n := range subHorizons {
		out = append(out, totals(window[:n]))
	}
	return out, nil
}

// Totals sums the whole window.
func Totals(window model.ForecastWindow) model.PeriodSummary {
	return totals(window)
}

func totals(days model.ForecastWindow) model.PeriodSummary {
	s := model.PeriodSummary{Days: len(days), Income: decimal.Zero, Expense: decimal.Zero}
	for _, d := range days {
		s.Income = s.Income.Add(d.Income)
		s.Expense = s.Expense.Add(d.Expense)
	}
	s.Net = s.Income.Sub(s.Expense)
	return s
}

// BreachedDays returns the days whose cumulative balance is strictly
// below threshold, in window order.
func BreachedDays(window model.ForecastWindow, threshold decimal.Decimal) []model.ForecastDay {
	var out []model.ForecastDay
	for _, d := range window {
		if d.Cumulative.LessThan(threshold) {
			out = append(out, d)
		}
	}
	return out
}

// WorstPoint returns the lowest cumulative balance in the window, or zero
// for an empty window. The value is not clamped.
func WorstPoint(window model.ForecastWindow) decimal.Decimal {
	if len(window) == 0 {
		return decimal.Zero
	}
	worst := window[0].Cumulative
	for _, d := range window[1:] {
		if d.Cumulative.LessThan(worst) {
			worst = d.Cumulative
		}
	}
	return worst
}

// Weekly groups the window into consecutive 7-day weeks counted from the
// first day. The last week may be shorter.
func Weekly(window model.ForecastWindow) []model.WeekSummary {
	var weeks []model.WeekSummary
	for i, d := range window {
		idx := i / 7
		if idx == len(weeks) {
			weeks = append(weeks, model.WeekSummary{
				Index:   idx,
				Start:   d.Date,
				Income:  decimal.Zero,
				Expense: decimal.Zero,
			})
		}
		w := &weeks[idx]
		w.Income = w.Income.Add(d.Income)
		w.Expense = w.Expense.Add(d.Expense)
		w.Cumulative = d.Cumulative
	}
	return weeks
}

// CompareWeekly lines up the weekly cumulative balances of a baseline
// and a scenario forecast over the same window.
func CompareWeekly(base, scenario model.ForecastWindow) ([]model.WeekComparison, error) {
	if len(base) != len(scenario) {
		return nil, invalidArgument("window lengths differ: %d vs %d", len(base), len(scenario))
	}
	bw, sw := Weekly(base), Weekly(scenario)
	out := make([]model.WeekComparison, len(bw))
	for i := range bw {
		out[i] = model.WeekComparison{
			Index:    i,
			Start:    bw[i].Start,
			Base:     bw[i].Cumulative,
			Scenario: sw[i].Cumulative,
			Delta:    sw[i].Cumulative.Sub(bw[i].Cumulative),
		}
	}
	return out, nil
}
