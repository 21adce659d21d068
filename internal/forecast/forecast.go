// Package forecast projects a daily cash balance from expected entries and
// applies what-if scenario adjustments to them.
//
// Everything here is a pure function of its arguments. The reference
// date is always passed in; nothing in this package reads the clock,
// touches storage, or keeps state between calls, so functions are safe
// to call concurrently on disjoint inputs.
package forecast

import (
	"time"

	"github.com/kasplanner/kasplan/internal/model"
)

// Generate applies adjustments to entries and projects horizonDays days
// starting at today (inclusive).
func Generate(entries []model.CashEntry, adjustments []model.ScenarioAdjustment, today time.Time, horizonDays int) (model.ForecastWindow, error) {
	if horizonDays <= 0 {
		return nil, invalidArgument("horizon must be positive, got %d", horizonDays)
	}

	adjusted, err := Apply(entries, adjustments)
	if err != nil {
		return nil, err
	}

	buckets, err := Bucketize(adjusted, today, horizonDays)
	if err != nil {
		return nil, err
	}

	return Aggregate(buckets), nil
}

// FilterExpected returns the entries still awaiting payment. Forecast
// callers use it before Generate; the engine itself does not filter.
func FilterExpected(entries []model.CashEntry) []model.CashEntry {
	var out []model.CashEntry
	for _, e := range entries {
		if e.Status == model.StatusExpected {
			out = append(out, e)
		}
	}
	return out
}
