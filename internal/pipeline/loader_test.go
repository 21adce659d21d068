package pipeline

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"
)

func writeFile(t testing.TB, dir, name, content string) string {
	t.Helper()
	p := filepath.Join(dir, name)
	if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(p, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}
	return p
}

func TestLoad_OrderAndDuplicates(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "a.csv", "id,type,amount,expected_date\n"+
		"x,income,100,2025-06-01\n"+
		"y,expense,40,2025-06-02\n")
	writeFile(t, dir, "b/c.jsonl", `{"id":"x","type":"income","amount":"150","expected_date":"2025-06-03"}`+"\n"+
		`{"type":"expense","amount":12.5,"expected_date":"2025-06-04"}`+"\n")
	writeFile(t, dir, "notes.txt", "ignored")

	var calls atomic.Int64
	res, err := Load([]string{dir}, func(current, total int) {
		calls.Add(1)
		if total != 2 || current < 1 || current > total {
			t.Errorf("progress(%d, %d)", current, total)
		}
	})
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if res.TotalFiles != 2 || calls.Load() != 2 {
		t.Errorf("files = %d, progress calls = %d", res.TotalFiles, calls.Load())
	}
	if len(res.Entries) != 4 {
		t.Fatalf("entries = %d, want 4", len(res.Entries))
	}
	ids := []string{res.Entries[0].ID, res.Entries[1].ID, res.Entries[2].ID}
	if strings.Join(ids, ",") != "x,y,x" {
		t.Errorf("entry order = %v, want file then row order", ids)
	}
	if res.Duplicates != 1 || res.AssignedIDs != 1 {
		t.Errorf("duplicates = %d, assigned = %d", res.Duplicates, res.AssignedIDs)
	}
}

func TestLoad_BadFileFailsWholeLoad(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "1-good.csv", "type,amount,expected_date\nincome,10,2025-06-01\n")
	writeFile(t, dir, "2-bad.csv", "type,amount,expected_date\nincome,-10,2025-06-01\n")

	res, err := Load([]string{dir}, nil)
	if err == nil {
		t.Fatalf("Load succeeded with %d entries, want error", len(res.Entries))
	}
	if !strings.Contains(err.Error(), "2-bad.csv") {
		t.Errorf("error %q does not name the bad file", err)
	}
}

func TestLoad_EmptyPath(t *testing.T) {
	if _, err := Load([]string{filepath.Join(t.TempDir(), "missing")}, nil); err == nil {
		t.Error("expected error for a path with no import files")
	}
}

func BenchmarkLoadFiles(b *testing.B) {
	dir := b.TempDir()
	var sb strings.Builder
	sb.WriteString("id,type,amount,expected_date\n")
	for i := 0; i < 2000; i++ {
		fmt.Fprintf(&sb, "e%d,expense,%d.25,2025-06-%02d\n", i, i%500+1, i%28+1)
	}
	for i := 0; i < 8; i++ {
		writeFile(b, dir, fmt.Sprintf("f%d.csv", i), sb.String())
	}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := Load([]string{dir}, nil); err != nil {
			b.Fatal(err)
		}
	}
}
