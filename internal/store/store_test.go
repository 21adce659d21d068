package store

import (
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/kasplanner/kasplan/internal/model"

	"github.com/shopspring/decimal"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "sub", "test.db"))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func mustDate(t *testing.T, s string) time.Time {
	t.Helper()
	d, err := time.Parse(model.DateLayout, s)
	if err != nil {
		t.Fatal(err)
	}
	return d
}

func TestEntries_SaveListDelete(t *testing.T) {
	s := openTestStore(t)

	entries := []model.CashEntry{
		{ID: "b", Kind: model.Expense, Source: model.SourceManual, Amount: decimal.RequireFromString("300.10"),
			ExpectedDate: mustDate(t, "2025-06-05"), Status: model.StatusExpected, Description: "Rent"},
		{ID: "a", Kind: model.Income, Source: model.SourceMoneybird, Amount: decimal.NewFromInt(1000),
			ExpectedDate: mustDate(t, "2025-06-02"), Status: model.StatusExpected},
		{ID: "c", Kind: model.Income, Source: model.SourceEboekhouden, Amount: decimal.NewFromInt(50),
			ExpectedDate: mustDate(t, "2025-06-01"), Status: model.StatusReceived},
	}
	if err := s.SaveEntries(entries); err != nil {
		t.Fatalf("SaveEntries: %v", err)
	}

	all, err := s.ListEntries(false)
	if err != nil {
		t.Fatalf("ListEntries: %v", err)
	}
	if len(all) != 3 || all[0].ID != "c" || all[1].ID != "a" || all[2].ID != "b" {
		t.Fatalf("order = %v, want c a b", ids(all))
	}
	if !all[2].Amount.Equal(decimal.RequireFromString("300.1")) || all[2].Description != "Rent" {
		t.Errorf("entry b = %+v", all[2])
	}
	if all[1].Source != model.SourceMoneybird || !all[1].ExpectedDate.Equal(mustDate(t, "2025-06-02")) {
		t.Errorf("entry a = %+v", all[1])
	}

	expected, err := s.ListEntries(true)
	if err != nil {
		t.Fatal(err)
	}
	if len(expected) != 2 {
		t.Errorf("expected-only = %v, want a b", ids(expected))
	}

	// Re-import replaces by id.
	entries[0].Amount = decimal.NewFromInt(350)
	if err := s.SaveEntries(entries[:1]); err != nil {
		t.Fatal(err)
	}
	if n, _ := s.EntryCount(); n != 3 {
		t.Errorf("EntryCount = %d, want 3", n)
	}

	ok, err := s.DeleteEntry("a")
	if err != nil || !ok {
		t.Fatalf("DeleteEntry(a) = %v, %v", ok, err)
	}
	ok, err = s.DeleteEntry("a")
	if err != nil || ok {
		t.Errorf("second DeleteEntry(a) = %v, %v", ok, err)
	}
}

func TestScenarios_AdjustmentsKeepOrder(t *testing.T) {
	s := openTestStore(t)

	sc, err := s.CreateScenario("  late customer ")
	if err != nil {
		t.Fatalf("CreateScenario: %v", err)
	}
	if sc.Name != "late customer" || sc.ID == "" {
		t.Errorf("scenario = %+v", sc)
	}

	adjs := []model.ScenarioAdjustment{
		{EntryID: "a", Kind: model.AdjustDelay, Value: decimal.NewFromInt(10)},
		{EntryID: "a", Kind: model.AdjustOverride, Value: decimal.RequireFromString("12.5")},
		{EntryID: "b", Kind: model.AdjustRemove},
	}
	for _, a := range adjs {
		if err := s.AddAdjustment(sc.ID, a); err != nil {
			t.Fatalf("AddAdjustment: %v", err)
		}
	}

	got, err := s.GetScenario(sc.ID)
	if err != nil {
		t.Fatalf("GetScenario: %v", err)
	}
	if len(got.Adjustments) != 3 {
		t.Fatalf("got %d adjustments, want 3", len(got.Adjustments))
	}
	for i, want := range adjs {
		g := got.Adjustments[i]
		if g.EntryID != want.EntryID || g.Kind != want.Kind || !g.Value.Equal(want.Value) {
			t.Errorf("adjustment %d = %+v, want %+v", i, g, want)
		}
	}

	list, err := s.ListScenarios()
	if err != nil {
		t.Fatal(err)
	}
	if len(list) != 1 || len(list[0].Adjustments) != 3 {
		t.Errorf("ListScenarios = %+v", list)
	}

	ok, err := s.DeleteScenario(sc.ID)
	if err != nil || !ok {
		t.Fatalf("DeleteScenario = %v, %v", ok, err)
	}
	if _, err := s.GetScenario(sc.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("GetScenario after delete err = %v, want ErrNotFound", err)
	}
}

func TestScenarios_Errors(t *testing.T) {
	s := openTestStore(t)

	if _, err := s.CreateScenario("   "); err == nil {
		t.Error("expected error for blank name")
	}
	err := s.AddAdjustment("missing", model.ScenarioAdjustment{EntryID: "a", Kind: model.AdjustRemove})
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("AddAdjustment(missing) err = %v, want ErrNotFound", err)
	}
}

func TestRevision_IncreasesOnEveryChange(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "rev.db")
	s, err := Open(dbPath)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { _ = s.Close() })

	rev := func() int64 {
		t.Helper()
		r, err := s.Revision()
		if err != nil {
			t.Fatalf("Revision: %v", err)
		}
		return r
	}

	last := rev()
	steps := []struct {
		name string
		do   func() error
	}{
		{"save", func() error {
			return s.SaveEntries([]model.CashEntry{{ID: "a", Amount: decimal.NewFromInt(5), ExpectedDate: mustDate(t, "2025-06-01")}})
		}},
		{"replace", func() error {
			return s.SaveEntries([]model.CashEntry{{ID: "a", Amount: decimal.NewFromInt(6), ExpectedDate: mustDate(t, "2025-06-01")}})
		}},
		{"delete entry", func() error {
			_, err := s.DeleteEntry("a")
			return err
		}},
		{"create scenario", func() error {
			sc, err := s.CreateScenario("late")
			if err != nil {
				return err
			}
			return s.AddAdjustment(sc.ID, model.ScenarioAdjustment{EntryID: "a", Kind: model.AdjustRemove})
		}},
	}
	for _, st := range steps {
		if err := st.do(); err != nil {
			t.Fatalf("%s: %v", st.name, err)
		}
		if r := rev(); r <= last {
			t.Errorf("after %s: revision %d, want > %d", st.name, r, last)
		} else {
			last = r
		}
	}

	// A second connection, as another process would open, sees the same counter.
	other, err := Open(dbPath)
	if err != nil {
		t.Fatalf("Open second: %v", err)
	}
	defer func() { _ = other.Close() }()
	if err := other.SaveEntries([]model.CashEntry{{ID: "b", Amount: decimal.NewFromInt(1), ExpectedDate: mustDate(t, "2025-06-02")}}); err != nil {
		t.Fatal(err)
	}
	if r := rev(); r <= last {
		t.Errorf("change from another connection not visible: revision %d, want > %d", r, last)
	}
}

func ids(entries []model.CashEntry) []string {
	out := make([]string, len(entries))
	for i, e := range entries {
		out[i] = e.ID
	}
	return out
}
