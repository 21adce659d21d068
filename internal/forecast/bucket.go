package forecast

import (
	"time"

	"github.com/kasplanner/kasplan/internal/model"

	"github.com/shopspring/decimal"
)

// Bucket holds the income and expense totals for one calendar day.
type Bucket struct {
	Date    time.Time
	Income  decimal.Decimal
	Expense decimal.Decimal
}

// Bucketize allocates entries into horizonDays daily buckets starting at
// windowStart, keyed by YYYY-MM-DD. Every day of the window gets a bucket,
// even when no entry falls on it. Entries dated outside
// [windowStart, windowStart+horizonDays) are left out.
func Bucketize(entries []model.CashEntry, windowStart time.Time, horizonDays int) (map[string]Bucket, error) {
	if horizonDays <= 0 {
		return nil, invalidArgument("horizon must be positive, got %d", horizonDays)
	}

	start := model.Date(windowStart)
	buckets := make(map[string]Bucket, horizonDays)
	for i := 0; i < horizonDays; i++ {
		day := start.AddDate(0, 0, i)
		buckets[model.DayKey(day)] = Bucket{Date: day, Income: decimal.Zero, Expense: decimal.Zero}
	}

	for _, e := range entries {
		key := model.DayKey(model.Date(e.ExpectedDate))
		b, ok := buckets[key]
		if !ok {
			continue
		}
		if e.Kind == model.Income {
			b.Income = b.Income.Add(e.Amount)
		} else {
			b.Expense = b.Expense.Add(e.Amount)
		}
		buckets[key] = b
	}

	return buckets, nil
}
