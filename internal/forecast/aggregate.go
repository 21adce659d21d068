package forecast

import (
	"sort"

	"github.com/kasplanner/kasplan/internal/model"

	"github.com/shopspring/decimal"
)

// Aggregate turns daily buckets into a forecast window in ascending date
// order, carrying a running cumulative balance that starts at zero.
func Aggregate(buckets map[string]Bucket) model.ForecastWindow {
	days := make([]Bucket, 0, len(buckets))
	for _, b := range buckets {
		days = append(days, b)
	}
	sort.Slice(days, func(i, j int) bool {
		return days[i].Date.Before(days[j].Date)
	})

	window := make(model.ForecastWindow, 0, len(days))
	cumulative := decimal.Zero
	for _, b := range days {
		net := b.Income.Sub(b.Expense)
		cumulative = cumulative.Add(net)
		window = append(window, model.ForecastDay{
			Date:       b.Date,
			Income:     b.Income,
			Expense:    b.Expense,
			Net:        net,
			Cumulative: cumulative,
		})
	}
	return window
}
