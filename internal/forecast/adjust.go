package forecast

import (
	"math"

	"github.com/kasplanner/kasplan/internal/model"

	"github.com/shopspring/decimal"
)

var maxDelayDays = decimal.NewFromInt(math.MaxInt32)

// Apply returns the entry set produced by applying adjustments to base.
// base is never modified; every returned entry is a copy.
//
// Adjustments targeting the same entry are folded in list order, each
// one transforming the result of the previous. A Remove ends the fold
// for its entry, so later adjustments to the same id have nothing to act
// on. Adjustments whose EntryID matches no entry are ignored.
//
// The output keeps input order, but callers should treat it as unordered.
func Apply(base []model.CashEntry, adjustments []model.ScenarioAdjustment) ([]model.CashEntry, error) {
	for _, adj := range adjustments {
		if err := ValidateAdjustment(adj); err != nil {
			return nil, err
		}
	}

	byEntry := make(map[string][]model.ScenarioAdjustment)
	for _, adj := range adjustments {
		byEntry[adj.EntryID] = append(byEntry[adj.EntryID], adj)
	}

	out := make([]model.CashEntry, 0, len(base))
	for _, e := range base {
		adjusted, keep := fold(e, byEntry[e.ID])
		if keep {
			out = append(out, adjusted)
		}
	}
	return out, nil
}

// fold applies the chain to a copy of e. It reports false once the entry is removed.
func fold(e model.CashEntry, chain []model.ScenarioAdjustment) (model.CashEntry, bool) {
	for _, adj := range chain {
		switch adj.Kind {
		case model.AdjustDelay:
			e.ExpectedDate = e.ExpectedDate.AddDate(0, 0, int(adj.Value.IntPart()))
		case model.AdjustOverride:
			e.Amount = adj.Value
		case model.AdjustRemove:
			return model.CashEntry{}, false
		}
	}
	return e, true
}

// ValidateAdjustment checks an adjustment's kind and payload.
func ValidateAdjustment(adj model.ScenarioAdjustment) error {
	switch adj.Kind {
	case model.AdjustDelay:
		switch {
		case adj.Value.IsNegative():
			return &ValidationError{ID: adj.EntryID, Field: "delay", Value: adj.Value.String(), Reason: "negative"}
		case !adj.Value.IsInteger():
			return &ValidationError{ID: adj.EntryID, Field: "delay", Value: adj.Value.String(), Reason: "not a whole number of days"}
		case adj.Value.GreaterThan(maxDelayDays):
			return &ValidationError{ID: adj.EntryID, Field: "delay", Value: adj.Value.String(), Reason: "too large"}
		}
	case model.AdjustOverride:
		if adj.Value.IsNegative() {
			return &ValidationError{ID: adj.EntryID, Field: "amount", Value: adj.Value.String(), Reason: "negative"}
		}
	case model.AdjustRemove:
	default:
		return &ValidationError{ID: adj.EntryID, Field: "adjustment kind", Value: adj.Kind.String(), Reason: "unknown value"}
	}
	return nil
}
