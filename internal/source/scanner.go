package source

import (
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// ScanDir walks dir and returns every CSV and JSONL file beneath it,
// sorted by path. A missing directory yields no files and no error.
func ScanDir(dir string) ([]ImportFile, error) {
	info, err := os.Stat(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}
	if !info.IsDir() {
		f, ok := classify(dir)
		if !ok {
			return nil, nil
		}
		return []ImportFile{f}, nil
	}

	var files []ImportFile
	err = filepath.WalkDir(dir, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return nil //nolint:nilerr // intentionally skip unreadable entries
		}
		if d.IsDir() {
			// Skip hidden directories such as .git
			if path != dir && strings.HasPrefix(d.Name(), ".") {
				return filepath.SkipDir
			}
			return nil
		}
		if f, ok := classify(path); ok {
			files = append(files, f)
		}
		return nil
	})

	sort.Slice(files, func(i, j int) bool { return files[i].Path < files[j].Path })
	return files, err
}

// FormatFor returns the import format implied by a file extension.
func FormatFor(path string) (Format, bool) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv":
		return FormatCSV, true
	case ".jsonl", ".ndjson":
		return FormatJSONL, true
	}
	return FormatCSV, false
}

func classify(path string) (ImportFile, bool) {
	format, ok := FormatFor(path)
	if !ok {
		return ImportFile{}, false
	}
	return ImportFile{Path: path, Format: format}, true
}
