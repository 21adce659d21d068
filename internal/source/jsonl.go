package source

import (
	"bufio"
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/kasplanner/kasplan/internal/forecast"
	"github.com/kasplanner/kasplan/internal/model"

	"github.com/google/uuid"
)

// ReadJSONL parses one JSON object per line. Blank lines are skipped.
// Amounts may be JSON strings or numbers.
func ReadJSONL(r io.Reader) (ImportResult, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	var result ImportResult
	line := 0
	for scanner.Scan() {
		line++
		b := bytes.TrimSpace(scanner.Bytes())
		if len(b) == 0 {
			continue
		}

		var rec jsonRecord
		dec := json.NewDecoder(bytes.NewReader(b))
		dec.UseNumber()
		if err := dec.Decode(&rec); err != nil {
			return ImportResult{}, fmt.Errorf("line %d: %w", line, err)
		}

		raw := rec.raw()
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
	if err := scanner.Err(); err != nil {
		return ImportResult{}, err
	}
	return result, nil
}

// jsonRecord mirrors model.RawEntry but tolerates a numeric amount.
type jsonRecord struct {
	model.RawEntry
	Amount any `json:"amount"`
}

func (r jsonRecord) raw() model.RawEntry {
	raw := r.RawEntry
	switch v := r.Amount.(type) {
	case string:
		raw.Amount = v
	case json.Number:
		raw.Amount = v.String()
	case nil:
		raw.Amount = ""
	default:
		raw.Amount = fmt.Sprint(v)
	}
	return raw
}

// ReadFile opens an import file and parses it according to its format.
func ReadFile(f ImportFile) (ImportResult, error) {
	fh, err := os.Open(f.Path)
	if err != nil {
		return ImportResult{}, err
	}
	defer func() { _ = fh.Close() }()

	var result ImportResult
	switch f.Format {
	case FormatJSONL:
		result, err = ReadJSONL(fh)
	default:
		result, err = ReadCSV(fh)
	}
	if err != nil {
		return ImportResult{}, fmt.Errorf("%s: %w", f.Path, err)
	}
	result.Path = f.Path
	return result, nil
}
