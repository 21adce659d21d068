package cli

import (
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
)

func TestFormatMoney(t *testing.T) {
	tests := []struct {
		amount   string
		currency string
		want     string
	}{
		{"0", "EUR", "€0.00"},
		{"1234.5", "EUR", "€1,234.50"},
		{"-400", "EUR", "-€400.00"},
		{"1234567.891", "USD", "$1,234,567.89"},
		{"12", "CHF", "12.00 CHF"},
		{"12", "", "12.00"},
	}
	for _, tt := range tests {
		t.Run(tt.amount+tt.currency, func(t *testing.T) {
			got := FormatMoney(decimal.RequireFromString(tt.amount), tt.currency)
			if got != tt.want {
				t.Errorf("FormatMoney(%s, %q) = %q, want %q", tt.amount, tt.currency, got, tt.want)
			}
		})
	}
}

func TestFormatSignedMoney(t *testing.T) {
	if got := FormatSignedMoney(decimal.NewFromInt(5), "EUR"); got != "+€5.00" {
		t.Errorf("got %q", got)
	}
	if got := FormatSignedMoney(decimal.NewFromInt(-5), "EUR"); got != "-€5.00" {
		t.Errorf("got %q", got)
	}
}

func TestFormatNumber(t *testing.T) {
	tests := []struct {
		n    int64
		want string
	}{
		{0, "0"},
		{999, "999"},
		{1000, "1,000"},
		{1234567, "1,234,567"},
		{-1234, "-1,234"},
	}
	for _, tt := range tests {
		if got := FormatNumber(tt.n); got != tt.want {
			t.Errorf("FormatNumber(%d) = %q, want %q", tt.n, got, tt.want)
		}
	}
}

func TestFormatDate(t *testing.T) {
	d := time.Date(2025, 6, 2, 0, 0, 0, 0, time.UTC)
	if got := FormatDate(d); got != "Mon 2025-06-02" {
		t.Errorf("FormatDate = %q", got)
	}
}

func TestDisplayLowPoint(t *testing.T) {
	if got := DisplayLowPoint(decimal.NewFromInt(600)); !got.IsZero() {
		t.Errorf("DisplayLowPoint(600) = %s, want 0", got)
	}
	if got := DisplayLowPoint(decimal.NewFromInt(-400)); !got.Equal(decimal.NewFromInt(-400)) {
		t.Errorf("DisplayLowPoint(-400) = %s, want -400", got)
	}
}

func TestRenderSparkline(t *testing.T) {
	got := []rune(RenderSparkline([]float64{-400, 0, 600}))
	if len(got) != 3 || got[0] != '▁' || got[2] != '█' {
		t.Errorf("RenderSparkline = %q", string(got))
	}
	if RenderSparkline(nil) != "" {
		t.Error("RenderSparkline(nil) should be empty")
	}
	flat := []rune(RenderSparkline([]float64{5, 5}))
	if flat[0] != '▁' || flat[1] != '▁' {
		t.Errorf("flat series = %q", string(flat))
	}
}

func TestRenderTable_ContainsCells(t *testing.T) {
	out := RenderTable(Table{
		Headers: []string{"Date", "Balance"},
		Rows:    [][]string{{"2025-06-01", "€1,000.00"}, {"---"}, {"2025-06-02", "-€5.00"}},
	})
	for _, want := range []string{"Date", "Balance", "€1,000.00", "-€5.00"} {
		if !strings.Contains(out, want) {
			t.Errorf("table missing %q:\n%s", want, out)
		}
	}
}
