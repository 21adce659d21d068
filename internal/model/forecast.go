package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// ForecastDay holds the projected movements and running balance for one calendar day.
type ForecastDay struct {
	Date       time.Time       `json:"date"`
	Income     decimal.Decimal `json:"income"`
	Expense    decimal.Decimal `json:"expense"`
	Net        decimal.Decimal `json:"net"`
	Cumulative decimal.Decimal `json:"cumulative"`
}

// ForecastWindow is one ForecastDay per calendar day, in date order, with no gaps.
type ForecastWindow []ForecastDay

// PeriodSummary holds totals over the first Days days of a window.
type PeriodSummary struct {
	Days    int             `json:"days"`
	Income  decimal.Decimal `json:"income"`
	Expense decimal.Decimal `json:"expense"`
	Net     decimal.Decimal `json:"net"`
}

// WeekSummary groups seven consecutive window days.
type WeekSummary struct {
	Index      int             `json:"index"` // 0-based; displayed as W1, W2, ...
	Start      time.Time       `json:"start"`
	Income     decimal.Decimal `json:"income"`
	Expense    decimal.Decimal `json:"expense"`
	Cumulative decimal.Decimal `json:"cumulative"` // cumulative of the week's last day
}

// WeekComparison pairs a baseline week with the same week under a scenario.
type WeekComparison struct {
	Index    int
	Start    time.Time
	Base     decimal.Decimal
	Scenario decimal.Decimal
	Delta    decimal.Decimal
}
