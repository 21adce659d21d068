// Package model defines domain types for kasplan entries, scenarios and forecasts.
package model

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// DateLayout is the calendar-date format used for entry dates and bucket keys.
const DateLayout = "2006-01-02"

// EntryKind is the sign convention of a cash entry.
type EntryKind int

const (
	Income EntryKind = iota
	Expense
)

func (k EntryKind) String() string {
	switch k {
	case Income:
		return "income"
	case Expense:
		return "expense"
	}
	return fmt.Sprintf("EntryKind(%d)", int(k))
}

// ParseEntryKind accepts the English names and the Dutch labels used by stored data.
func ParseEntryKind(s string) (EntryKind, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "income", "inkomst":
		return Income, nil
	case "expense", "uitgave":
		return Expense, nil
	}
	return 0, fmt.Errorf("unknown entry kind %q", s)
}

// EntrySource is the provenance tag of an entry. It never affects computation.
type EntrySource int

const (
	SourceManual EntrySource = iota
	SourceMoneybird
	SourceEboekhouden
)

func (s EntrySource) String() string {
	switch s {
	case SourceManual:
		return "manual"
	case SourceMoneybird:
		return "moneybird"
	case SourceEboekhouden:
		return "eboekhouden"
	}
	return fmt.Sprintf("EntrySource(%d)", int(s))
}

// ParseEntrySource parses a provenance tag. Blank means manual.
func ParseEntrySource(s string) (EntrySource, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "manual", "handmatig", "csv":
		return SourceManual, nil
	case "moneybird":
		return SourceMoneybird, nil
	case "eboekhouden", "e-boekhouden":
		return SourceEboekhouden, nil
	}
	return 0, fmt.Errorf("unknown entry source %q", s)
}

// EntryStatus tracks whether the money has moved yet.
type EntryStatus int

const (
	StatusExpected EntryStatus = iota
	StatusReceived
	StatusPaid
)

func (s EntryStatus) String() string {
	switch s {
	case StatusExpected:
		return "expected"
	case StatusReceived:
		return "received"
	case StatusPaid:
		return "paid"
	}
	return fmt.Sprintf("EntryStatus(%d)", int(s))
}

// ParseEntryStatus parses a status. Blank means expected.
func ParseEntryStatus(s string) (EntryStatus, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "expected", "verwacht":
		return StatusExpected, nil
	case "received", "ontvangen":
		return StatusReceived, nil
	case "paid", "betaald":
		return StatusPaid, nil
	}
	return 0, fmt.Errorf("unknown entry status %q", s)
}

// CashEntry is one expected future cash movement.
// Amount is a magnitude; the sign comes from Kind.
type CashEntry struct {
	ID           string
	Kind         EntryKind
	Source       EntrySource
	Amount       decimal.Decimal
	ExpectedDate time.Time // midnight UTC
	Status       EntryStatus
	Description  string
}

// RawEntry is an entry-like record before validation, as read from CSV,
// a form or a provider import.
type RawEntry struct {
	ID           string `json:"id"`
	Kind         string `json:"type"`
	Source       string `json:"source,omitempty"`
	Amount       string `json:"amount"`
	ExpectedDate string `json:"expected_date"`
	Status       string `json:"status,omitempty"`
	Description  string `json:"description,omitempty"`
}

// Date truncates t to its calendar date at midnight UTC.
func Date(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// DayKey formats t as a YYYY-MM-DD key.
func DayKey(t time.Time) string {
	return t.Format(DateLayout)
}
