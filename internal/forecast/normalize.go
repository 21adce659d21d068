package forecast

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/kasplanner/kasplan/internal/model"

	"github.com/shopspring/decimal"
)

// Normalize validates a raw record and converts it into a CashEntry.
// Invalid input is rejected, never coerced: a negative amount stays an
// error rather than being flipped with abs.
func Normalize(raw model.RawEntry) (model.CashEntry, error) {
	id := strings.TrimSpace(raw.ID)
	if id == "" {
		return model.CashEntry{}, &ValidationError{Field: "id", Reason: "missing"}
	}

	kind, err := model.ParseEntryKind(raw.Kind)
	if err != nil {
		return model.CashEntry{}, &ValidationError{ID: id, Field: "type", Value: raw.Kind, Reason: "unknown value"}
	}
	source, err := model.ParseEntrySource(raw.Source)
	if err != nil {
		return model.CashEntry{}, &ValidationError{ID: id, Field: "source", Value: raw.Source, Reason: "unknown value"}
	}
	status, err := model.ParseEntryStatus(raw.Status)
	if err != nil {
		return model.CashEntry{}, &ValidationError{ID: id, Field: "status", Value: raw.Status, Reason: "unknown value"}
	}

	amount, err := ParseAmount(raw.Amount)
	if err != nil {
		return model.CashEntry{}, &ValidationError{ID: id, Field: "amount", Value: raw.Amount, Reason: err.Error()}
	}

	date, err := ParseDate(raw.ExpectedDate)
	if err != nil {
		return model.CashEntry{}, &ValidationError{ID: id, Field: "expected_date", Value: raw.ExpectedDate, Reason: err.Error()}
	}

	return model.CashEntry{
		ID:           id,
		Kind:         kind,
		Source:       source,
		Amount:       amount,
		ExpectedDate: date,
		Status:       status,
		Description:  strings.TrimSpace(raw.Description),
	}, nil
}

// NormalizeAll normalizes every record, stopping at the first failure.
// A partial entry set would produce a misleading forecast.
func NormalizeAll(raws []model.RawEntry) ([]model.CashEntry, error) {
	entries := make([]model.CashEntry, 0, len(raws))
	for i, raw := range raws {
		e, err := Normalize(raw)
		if err != nil {
			return nil, fmt.Errorf("record %d: %w", i, err)
		}
		entries = append(entries, e)
	}
	return entries, nil
}

// ParseAmount parses a non-negative decimal amount.
func ParseAmount(s string) (decimal.Decimal, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return decimal.Zero, errors.New("missing")
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, errors.New("not a number")
	}
	if d.IsNegative() {
		return decimal.Zero, errors.New("negative")
	}
	return d, nil
}

// ParseDate parses a YYYY-MM-DD calendar date into midnight UTC.
func ParseDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, errors.New("missing")
	}
	t, err := time.Parse(model.DateLayout, s)
	if err != nil {
		return time.Time{}, errors.New("not a YYYY-MM-DD date")
	}
	return t, nil
}
