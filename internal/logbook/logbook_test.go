package logbook

import (
	"path/filepath"
	"strings"
	"testing"
)

func TestTailReturnsRecentLines(t *testing.T) {
	dir := t.TempDir()
	book, err := New(filepath.Join(dir, "bachadmin.log"))
	if err != nil {
		t.Fatalf("new logbook: %v", err)
	}
	for i := 0; i < 5; i++ {
		book.Info("entry-%d", i)
	}
	lines := book.Tail(3)
	if len(lines) != 3 {
		t.Fatalf("len(lines) = %d, want 3", len(lines))
	}
	for idx, want := range []string{"entry-2", "entry-3", "entry-4"} {
		if !strings.Contains(lines[idx], want) {
			t.Fatalf("line %d = %q, missing %s", idx, lines[idx], want)
		}
	}
}

func TestScopedPrefixesComponent(t *testing.T) {
	dir := t.TempDir()
	book, err := New(filepath.Join(dir, "bachadmin.log"))
	if err != nil {
		t.Fatalf("new logbook: %v", err)
	}
	book.Scoped("api").Warn("timeout talking to backend")
	lines := book.Tail(1)
	if len(lines) != 1 {
		t.Fatalf("expected one line, got %d", len(lines))
	}
	if !strings.Contains(lines[0], "api · timeout") {
		t.Fatalf("scoped prefix missing: %q", lines[0])
	}
	if !strings.Contains(lines[0], "WARN") {
		t.Fatalf("level missing: %q", lines[0])
	}
}

func TestNilLogbookIsSafe(t *testing.T) {
	var book *Logbook
	book.Info("ignored")
	book.Scoped("api").Error("ignored")
	if lines := book.Tail(5); lines != nil {
		t.Fatalf("nil logbook tail should be nil, got %v", lines)
	}
}
