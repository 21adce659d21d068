// Package source reads cash entries from CSV and JSONL export files.
package source

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"regexp"
	"strings"

	"github.com/kasplanner/kasplan/internal/forecast"
	"github.com/kasplanner/kasplan/internal/model"

	"github.com/google/uuid"
)

// Header aliases, matched case-insensitively after trimming.
var columnAliases = map[string]string{
	"id":            "id",
	"type":          "type",
	"kind":          "type",
	"soort":         "type",
	"source":        "source",
	"bron":          "source",
	"amount":        "amount",
	"bedrag":        "amount",
	"expected_date": "expected_date",
	"date":          "expected_date",
	"verwacht_op":   "expected_date",
	"datum":         "expected_date",
	"status":        "status",
	"description":   "description",
	"omschrijving":  "description",
}

var requiredColumns = []string{"type", "amount", "expected_date"}

// ReadCSV parses a CSV export with a header row into normalized entries.
// Rows without an id get a generated one. The first invalid row aborts
// the import and the error names its line.
func ReadCSV(r io.Reader) (ImportResult, error) {
	cr := csv.NewReader(r)
	cr.TrimLeadingSpace = true
	cr.FieldsPerRecord = -1

	header, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return ImportResult{}, nil
	}
	if err != nil {
		return ImportResult{}, fmt.Errorf("reading header: %w", err)
	}
	if len(header) > 0 {
		header[0] = strings.TrimPrefix(header[0], "\ufeff")
	}

	cols := make(map[string]int, len(header))
	for i, h := range header {
		if name, ok := columnAliases[strings.ToLower(strings.TrimSpace(h))]; ok {
			if _, dup := cols[name]; !dup {
				cols[name] = i
			}
		}
	}
	for _, name := range requiredColumns {
		if _, ok := cols[name]; !ok {
			return ImportResult{}, fmt.Errorf("header: missing column %q", name)
		}
	}

	field := func(rec []string, name string) string {
		i, ok := cols[name]
		if !ok || i >= len(rec) {
			return ""
		}
		return strings.TrimSpace(rec[i])
	}

	var result ImportResult
	for {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return ImportResult{}, err
		}
		line, _ := cr.FieldPos(0)
		if blankRecord(rec) {
			continue
		}

		raw := model.RawEntry{
			ID:           field(rec, "id"),
			Kind:         field(rec, "type"),
			Source:       field(rec, "source"),
			Amount:       normalizeDecimal(field(rec, "amount")),
			ExpectedDate: field(rec, "expected_date"),
			Status:       field(rec, "status"),
			Description:  field(rec, "description"),
		}
		if raw.ID == "" {
			raw.ID = uuid.NewString()
			result.AssignedIDs++
		}

		entry, err := forecast.Normalize(raw)
		if err != nil {
			return ImportResult{}, fmt.Errorf("line %d: %w", line, err)
		}
		result.Entries = append(result.Entries, entry)
	}
	return result, nil
}

// europeanDecimal matches "99,5", "1234,56" and "1.234,56".
var europeanDecimal = regexp.MustCompile(`^\d+,\d+$|^\d{1,3}(\.\d{3})+,\d+$`)

// normalizeDecimal rewrites European notation to a plain decimal. Anything
// else, including "1,234.56", passes through unchanged and is rejected by
// amount parsing.
func normalizeDecimal(s string) string {
	t := strings.TrimSpace(s)
	if !europeanDecimal.MatchString(t) {
		return s
	}
	t = strings.ReplaceAll(t, ".", "")
	return strings.Replace(t, ",", ".", 1)
}

func blankRecord(rec []string) bool {
	for _, f := range rec {
		if strings.TrimSpace(f) != "" {
			return false
		}
	}
	return true
}
