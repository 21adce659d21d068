package forecast

import (
	"errors"
	"testing"

	"github.com/kasplanner/kasplan/internal/model"
)

func byID(entries []model.CashEntry) map[string]model.CashEntry {
	m := make(map[string]model.CashEntry, len(entries))
	for _, e := range entries {
		m[e.ID] = e
	}
	return m
}

func TestApply_Identity(t *testing.T) {
	today := mustDate(t, "2025-06-01")
	base := sampleEntries(t, today)

	got, err := Apply(base, nil)
	if err != nil {
		t.Fatalf("Apply: %v", err)
	}
	if len(got) != len(base) {
		t.Fatalf("len = %d, want %d", len(got), len(base))
	}
	m := byID(got)
	for _, e := range base {
		g, ok := m[e.ID]
		if !ok {
			t.Fatalf("entry %s missing", e.ID)
		}
		if !g.Amount.Equal(e.Amount) || !g.ExpectedDate.Equal(e.ExpectedDate) || g.Kind != e.Kind {
			t.Errorf("entry %s changed: %+v", e.ID, g)
		}
	}

	// Results are copies.
	got[0].Amount = dec("1")
	got[0].ExpectedDate = today.AddDate(1, 0, 0)
	if !base[0].Amount.Equal(dec("1000")) || !base[0].ExpectedDate.Equal(today) {
		t.Errorf("mutating result changed base entry: %+v", base[0])
	}
}

func TestApply_Purity(t *testing.T) {
	today := mustDate(t, "2025-06-01")
	base := sampleEntries(t, today)
	snapshot := append([]model.CashEntry(nil), base...)

	adjustments := []model.ScenarioAdjustment{
		{EntryID: "entry0", Kind: model.AdjustDelay, Value: dec("7")},
		{EntryID: "entry1", Kind: model.AdjustOverride, Value: dec("250")},
	}

	first, err := Apply(base, adjustments)
	if err != nil {
		t.Fatalf("Apply: %v", err)
	}
	second, err := Apply(base, adjustments)
	if err != nil {
		t.Fatalf("Apply: %v", err)
	}

	for i := range base {
		if base[i].ID != snapshot[i].ID || !base[i].Amount.Equal(snapshot[i].Amount) ||
			!base[i].ExpectedDate.Equal(snapshot[i].ExpectedDate) {
			t.Fatalf("base[%d] mutated: %+v", i, base[i])
		}
	}

	a, b := byID(first), byID(second)
	if len(a) != len(b) {
		t.Fatalf("result sizes differ: %d vs %d", len(a), len(b))
	}
	for id, e := range a {
		o := b[id]
		if !e.Amount.Equal(o.Amount) || !e.ExpectedDate.Equal(o.ExpectedDate) {
			t.Errorf("entry %s differs between calls: %+v vs %+v", id, e, o)
		}
	}
	if !a["entry0"].ExpectedDate.Equal(today.AddDate(0, 0, 7)) {
		t.Errorf("entry0 date = %s, want +7d", model.DayKey(a["entry0"].ExpectedDate))
	}
	if !a["entry1"].Amount.Equal(dec("250")) {
		t.Errorf("entry1 amount = %s, want 250", a["entry1"].Amount)
	}
}

func TestApply_DelayCrossesBoundaries(t *testing.T) {
	tests := []struct {
		name  string
		date  string
		delay string
		want  string
	}{
		{"month end", "2025-01-30", "3", "2025-02-02"},
		{"year end", "2025-12-30", "3", "2026-01-02"},
		{"leap day", "2024-02-28", "1", "2024-02-29"},
		{"non-leap", "2025-02-28", "1", "2025-03-01"},
		{"zero delay", "2025-06-15", "0", "2025-06-15"},
		{"long delay", "2025-06-15", "365", "2026-06-15"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			base := []model.CashEntry{entry("x", model.Income, "1", mustDate(t, tt.date))}
			got, err := Apply(base, []model.ScenarioAdjustment{
				{EntryID: "x", Kind: model.AdjustDelay, Value: dec(tt.delay)},
			})
			if err != nil {
				t.Fatalf("Apply: %v", err)
			}
			if d := model.DayKey(got[0].ExpectedDate); d != tt.want {
				t.Errorf("date = %s, want %s", d, tt.want)
			}
		})
	}
}

func TestApply_ChainsInListOrder(t *testing.T) {
	d := mustDate(t, "2025-06-01")
	base := []model.CashEntry{
		entry("a", model.Income, "100", d),
		entry("b", model.Expense, "50", d),
	}
	adjustments := []model.ScenarioAdjustment{
		{EntryID: "a", Kind: model.AdjustDelay, Value: dec("2")},
		{EntryID: "b", Kind: model.AdjustOverride, Value: dec("10")},
		{EntryID: "a", Kind: model.AdjustDelay, Value: dec("3")},
		{EntryID: "b", Kind: model.AdjustOverride, Value: dec("20")},
		{EntryID: "a", Kind: model.AdjustOverride, Value: dec("0")},
	}

	got, err := Apply(base, adjustments)
	if err != nil {
		t.Fatalf("Apply: %v", err)
	}
	m := byID(got)
	if !m["a"].ExpectedDate.Equal(d.AddDate(0, 0, 5)) {
		t.Errorf("a date = %s, want +5d", model.DayKey(m["a"].ExpectedDate))
	}
	if !m["a"].Amount.IsZero() {
		t.Errorf("a amount = %s, want 0", m["a"].Amount)
	}
	if !m["b"].Amount.Equal(dec("20")) {
		t.Errorf("b amount = %s, want 20 (last override wins)", m["b"].Amount)
	}
}

func TestApply_RemoveIsFinal(t *testing.T) {
	today := mustDate(t, "2025-06-01")
	base := sampleEntries(t, today)
	adjustments := []model.ScenarioAdjustment{
		{EntryID: "entry0", Kind: model.AdjustRemove},
		{EntryID: "entry0", Kind: model.AdjustDelay, Value: dec("1")},
		{EntryID: "entry0", Kind: model.AdjustOverride, Value: dec("999")},
	}

	got, err := Apply(base, adjustments)
	if err != nil {
		t.Fatalf("Apply: %v", err)
	}
	if _, ok := byID(got)["entry0"]; ok {
		t.Fatal("removed entry still present")
	}

	window, err := Generate(base, adjustments, today, 5)
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if total := Totals(window); !total.Income.IsZero() {
		t.Errorf("income = %s, want 0 after remove", total.Income)
	}
}

func TestApply_UnknownEntryIsNoop(t *testing.T) {
	today := mustDate(t, "2025-06-01")
	base := sampleEntries(t, today)
	got, err := Apply(base, []model.ScenarioAdjustment{
		{EntryID: "deleted-long-ago", Kind: model.AdjustRemove},
		{EntryID: "deleted-long-ago", Kind: model.AdjustDelay, Value: dec("4")},
	})
	if err != nil {
		t.Fatalf("Apply: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("len = %d, want 2", len(got))
	}
}

func TestApply_RejectsInvalidAdjustments(t *testing.T) {
	today := mustDate(t, "2025-06-01")
	tests := []struct {
		name string
		adj  model.ScenarioAdjustment
	}{
		{"negative delay", model.ScenarioAdjustment{EntryID: "entry0", Kind: model.AdjustDelay, Value: dec("-1")}},
		{"fractional delay", model.ScenarioAdjustment{EntryID: "entry0", Kind: model.AdjustDelay, Value: dec("1.5")}},
		{"huge delay", model.ScenarioAdjustment{EntryID: "entry0", Kind: model.AdjustDelay, Value: dec("1e12")}},
		{"negative override", model.ScenarioAdjustment{EntryID: "entry1", Kind: model.AdjustOverride, Value: dec("-0.01")}},
		{"unknown kind", model.ScenarioAdjustment{EntryID: "entry1", Kind: model.AdjustmentKind(9)}},
		{"invalid on unknown entry", model.ScenarioAdjustment{EntryID: "nope", Kind: model.AdjustDelay, Value: dec("-3")}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Apply(sampleEntries(t, today), []model.ScenarioAdjustment{tt.adj})
			var ve *ValidationError
			if !errors.As(err, &ve) {
				t.Fatalf("err = %v, want *ValidationError", err)
			}
		})
	}
}
