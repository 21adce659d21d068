// Package pipeline loads entries from many import files in parallel.
package pipeline

import (
	"fmt"
	"runtime"
	"sync"
	"sync/atomic"

	"github.com/kasplanner/kasplan/internal/model"
	"github.com/kasplanner/kasplan/internal/source"
)

// LoadResult holds the output of the import pipeline.
type LoadResult struct {
	Entries     []model.CashEntry
	Files       []source.ImportResult
	TotalFiles  int
	AssignedIDs int
	Duplicates  int // ids seen more than once; the later file wins
}

// ProgressFunc is called during loading to report progress.
// current is the number of files processed so far, total is the total count.
type ProgressFunc func(current, total int)

// Load discovers every import file under paths and reads them with a
// bounded worker pool. Any unreadable file fails the whole load, reporting
// the first failure in path order, so callers never store a partial set.
func Load(paths []string, progressFn ProgressFunc) (*LoadResult, error) {
	var files []source.ImportFile
	for _, p := range paths {
		found, err := source.ScanDir(p)
		if err != nil {
			return nil, fmt.Errorf("scanning %s: %w", p, err)
		}
		if len(found) == 0 {
			return nil, fmt.Errorf("%s: no .csv or .jsonl files found", p)
		}
		files = append(files, found...)
	}
	return LoadFiles(files, progressFn)
}

// LoadFiles reads an explicit file list. Entries keep file order and,
// within a file, row order.
func LoadFiles(files []source.ImportFile, progressFn ProgressFunc) (*LoadResult, error) {
	result := &LoadResult{TotalFiles: len(files)}
	if len(files) == 0 {
		return result, nil
	}

	numWorkers := runtime.GOMAXPROCS(0)
	if numWorkers < 1 {
		numWorkers = 4
	}
	if numWorkers > len(files) {
		numWorkers = len(files)
	}

	work := make(chan int, len(files))
	results := make([]source.ImportResult, len(files))
	errs := make([]error, len(files))
	var wg sync.WaitGroup
	var processed atomic.Int64

	for i := range files {
		work <- i
	}
	close(work)

	wg.Add(numWorkers)
	for w := 0; w < numWorkers; w++ {
		go func() {
			defer wg.Done()
			for idx := range work {
				results[idx], errs[idx] = source.ReadFile(files[idx])
				n := processed.Add(1)
				if progressFn != nil {
					progressFn(int(n), len(files))
				}
			}
		}()
	}

	wg.Wait()

	for _, err := range errs {
		if err != nil {
			return nil, err
		}
	}

	seen := make(map[string]bool)
	for _, r := range results {
		result.Files = append(result.Files, r)
		result.AssignedIDs += r.AssignedIDs
		for _, e := range r.Entries {
			if seen[e.ID] {
				result.Duplicates++
			}
			seen[e.ID] = true
			result.Entries = append(result.Entries, e)
		}
	}

	return result, nil
}
