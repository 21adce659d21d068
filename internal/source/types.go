package source

import "github.com/kasplanner/kasplan/internal/model"

// Format identifies an import file layout.
type Format int

const (
	FormatCSV Format = iota
	FormatJSONL
)

func (f Format) String() string {
	switch f {
	case FormatJSONL:
		return "jsonl"
	default:
		return "csv"
	}
}

// ImportFile represents an import file found during directory scanning.
type ImportFile struct {
	Path   string
	Format Format
}

// ImportResult holds the normalized entries read from one file.
type ImportResult struct {
	Path        string
	Entries     []model.CashEntry
	AssignedIDs int // rows that arrived without an id
}
