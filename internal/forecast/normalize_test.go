package forecast

import (
	"errors"
	"testing"

	"github.com/kasplanner/kasplan/internal/model"
)

func TestNormalize_Valid(t *testing.T) {
	got, err := Normalize(model.RawEntry{
		ID:           " inv-42 ",
		Kind:         "inkomst",
		Source:       "moneybird",
		Amount:       "1250.50",
		ExpectedDate: "2025-07-15",
		Status:       "verwacht",
		Description:  " Invoice 42 ",
	})
	if err != nil {
		t.Fatalf("Normalize: %v", err)
	}
	if got.ID != "inv-42" {
		t.Errorf("ID = %q, want inv-42", got.ID)
	}
	if got.Kind != model.Income || got.Source != model.SourceMoneybird || got.Status != model.StatusExpected {
		t.Errorf("enums = %s/%s/%s", got.Kind, got.Source, got.Status)
	}
	if !got.Amount.Equal(dec("1250.5")) {
		t.Errorf("Amount = %s, want 1250.50", got.Amount)
	}
	if !got.ExpectedDate.Equal(mustDate(t, "2025-07-15")) {
		t.Errorf("ExpectedDate = %s", got.ExpectedDate)
	}
	if got.Description != "Invoice 42" {
		t.Errorf("Description = %q", got.Description)
	}
}

func TestNormalize_Defaults(t *testing.T) {
	got, err := Normalize(model.RawEntry{ID: "x", Kind: "Expense", Amount: "0", ExpectedDate: "2025-01-01"})
	if err != nil {
		t.Fatalf("Normalize: %v", err)
	}
	if got.Source != model.SourceManual || got.Status != model.StatusExpected {
		t.Errorf("defaults = %s/%s, want manual/expected", got.Source, got.Status)
	}
	if !got.Amount.IsZero() {
		t.Errorf("Amount = %s, want 0", got.Amount)
	}
}

func TestNormalize_Rejects(t *testing.T) {
	valid := model.RawEntry{ID: "x", Kind: "income", Amount: "10", ExpectedDate: "2025-01-01"}

	tests := []struct {
		name   string
		mutate func(r *model.RawEntry)
		field  string
	}{
		{"missing id", func(r *model.RawEntry) { r.ID = "  " }, "id"},
		{"unknown kind", func(r *model.RawEntry) { r.Kind = "transfer" }, "type"},
		{"unknown source", func(r *model.RawEntry) { r.Source = "exact" }, "source"},
		{"unknown status", func(r *model.RawEntry) { r.Status = "cancelled" }, "status"},
		{"missing amount", func(r *model.RawEntry) { r.Amount = "" }, "amount"},
		{"negative amount", func(r *model.RawEntry) { r.Amount = "-10" }, "amount"},
		{"non-numeric amount", func(r *model.RawEntry) { r.Amount = "ten" }, "amount"},
		{"NaN amount", func(r *model.RawEntry) { r.Amount = "NaN" }, "amount"},
		{"infinite amount", func(r *model.RawEntry) { r.Amount = "Inf" }, "amount"},
		{"missing date", func(r *model.RawEntry) { r.ExpectedDate = "" }, "expected_date"},
		{"bad month", func(r *model.RawEntry) { r.ExpectedDate = "2025-13-01" }, "expected_date"},
		{"day first", func(r *model.RawEntry) { r.ExpectedDate = "01-02-2025" }, "expected_date"},
		{"timestamp", func(r *model.RawEntry) { r.ExpectedDate = "2025-01-01T10:00:00Z" }, "expected_date"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			raw := valid
			tt.mutate(&raw)
			_, err := Normalize(raw)
			var ve *ValidationError
			if !errors.As(err, &ve) {
				t.Fatalf("err = %v, want *ValidationError", err)
			}
			if ve.Field != tt.field {
				t.Errorf("Field = %q, want %q", ve.Field, tt.field)
			}
		})
	}
}

func TestNormalizeAll_StopsAtFirstFailure(t *testing.T) {
	raws := []model.RawEntry{
		{ID: "a", Kind: "income", Amount: "1", ExpectedDate: "2025-01-01"},
		{ID: "b", Kind: "income", Amount: "-1", ExpectedDate: "2025-01-01"},
		{ID: "c", Kind: "income", Amount: "1", ExpectedDate: "2025-01-01"},
	}
	entries, err := NormalizeAll(raws)
	if err == nil {
		t.Fatal("expected error")
	}
	if entries != nil {
		t.Errorf("entries = %v, want nil", entries)
	}
	var ve *ValidationError
	if !errors.As(err, &ve) || ve.ID != "b" {
		t.Errorf("err = %v, want validation error for b", err)
	}
}

// FuzzParseAmount checks that amount parsing never panics and never
// accepts a negative value.
func FuzzParseAmount(f *testing.F) {
	f.Add("0")
	f.Add("1250.50")
	f.Add("-1")
	f.Add("1e3")
	f.Add("NaN")
	f.Add("")
	f.Add("  42  ")
	f.Add("1.2.3")

	f.Fuzz(func(t *testing.T, s string) {
		d, err := ParseAmount(s)
		if err == nil && d.IsNegative() {
			t.Errorf("ParseAmount(%q) = %s, negative accepted", s, d)
		}
	})
}
