package logbook

import (
	"path/filepath"
	"strings"
	"testing"
)

func TestTailReturnsRecentLinesAndTotal(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "journal.log")
	book, err := New(path)
	if err != nil {
		t.Fatalf("new logbook: %v", err)
	}
	for i := 0; i < 5; i++ {
		book.Info("entry-%d", i)
	}
	lines, total := book.Tail(3)
	if total != 5 {
		t.Fatalf("total lines = %d, want 5", total)
	}
	if len(lines) != 3 {
		t.Fatalf("len(lines) = %d, want 3", len(lines))
	}
	for idx, want := range []string{"entry-2", "entry-3", "entry-4"} {
		if !strings.Contains(lines[idx], want) {
			t.Fatalf("line %d = %q, missing %s", idx, lines[idx], want)
		}
	}
}

func TestAppendPrefixesSourceAndFlattensMessage(t *testing.T) {
	book, err := New(filepath.Join(t.TempDir(), "logs", "journal.log"))
	if err != nil {
		t.Fatalf("new logbook: %v", err)
	}
	book.Warn("Chests Anywhere", "uses a\n deprecated   API")
	book.Error("", "host failure")
	lines, total := book.Tail(10)
	if total != 2 {
		t.Fatalf("total = %d, want 2", total)
	}
	if !strings.Contains(lines[0], "WARN  [Chests Anywhere] uses a deprecated API") {
		t.Fatalf("unexpected warn line %q", lines[0])
	}
	if !strings.Contains(lines[1], "ERROR host failure") {
		t.Fatalf("unexpected error line %q", lines[1])
	}
}

func TestTailOnMissingOrNil(t *testing.T) {
	book, err := New(filepath.Join(t.TempDir(), "journal.log"))
	if err != nil {
		t.Fatalf("new logbook: %v", err)
	}
	if lines, total := book.Tail(5); lines != nil || total != 0 {
		t.Fatalf("expected empty tail, got %v/%d", lines, total)
	}
	var nilBook *Logbook
	nilBook.Info("ignored")
	if nilBook.Path() != "" {
		t.Fatalf("nil logbook path should be empty")
	}
}
