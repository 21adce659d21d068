// Package cli provides formatting and rendering utilities for terminal output.
package cli

import (
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

var currencySymbols = map[string]string{
	"EUR": "€",
	"USD": "$",
	"GBP": "£",
}

// FormatMoney formats an amount with two decimals, thousands separators
// and the currency symbol. Unknown currency codes are appended instead.
// e.g., 1234.5 EUR -> "€1,234.50", -400 EUR -> "-€400.00"
func FormatMoney(d decimal.Decimal, currency string) string {
	neg := d.IsNegative()
	s := d.Abs().StringFixed(2)
	intPart, frac, _ := strings.Cut(s, ".")
	n, err := strconv.ParseInt(intPart, 10, 64)
	if err == nil {
		intPart = FormatNumber(n)
	}
	body := intPart + "." + frac

	sign := ""
	if neg {
		sign = "-"
	}
	sym, ok := currencySymbols[strings.ToUpper(currency)]
	switch {
	case ok:
		return sign + sym + body
	case currency == "":
		return sign + body
	default:
		return sign + body + " " + strings.ToUpper(currency)
	}
}

// FormatSignedMoney is FormatMoney with an explicit "+" for non-negative values.
func FormatSignedMoney(d decimal.Decimal, currency string) string {
	if d.IsNegative() {
		return FormatMoney(d, currency)
	}
	return "+" + FormatMoney(d, currency)
}

// FormatNumber adds comma separators to an integer.
// e.g., 1234567 -> "1,234,567"
func FormatNumber(n int64) string {
	if n < 0 {
		return "-" + FormatNumber(-n)
	}

	s := strconv.FormatInt(n, 10)
	if len(s) <= 3 {
		return s
	}

	var result strings.Builder
	remainder := len(s) % 3
	if remainder > 0 {
		result.WriteString(s[:remainder])
	}
	for i := remainder; i < len(s); i += 3 {
		if result.Len() > 0 {
			result.WriteByte(',')
		}
		result.WriteString(s[i : i+3])
	}
	return result.String()
}

// FormatDate renders a forecast day as "Mon 2025-06-02".
func FormatDate(t time.Time) string {
	return FormatDayOfWeek(int(t.Weekday())) + " " + t.Format("2006-01-02")
}

// FormatDayOfWeek returns a 3-letter day abbreviation from a weekday number.
func FormatDayOfWeek(weekday int) string {
	days := []string{"Sun", "Mon", "Tue", "Wed", "Thu", "Fri", "Sat"}
	if weekday >= 0 && weekday < 7 {
		return days[weekday]
	}
	return "???"
}

// DisplayLowPoint clamps a window's worst cumulative balance to zero for
// display: a window that never dips below zero reports a low point of 0.
func DisplayLowPoint(worst decimal.Decimal) decimal.Decimal {
	return decimal.Min(worst, decimal.Zero)
}
