package logging

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestNewWritesUnderHostDir(t *testing.T) {
	dir := t.TempDir()
	logger, err := New(dir)
	if err != nil {
		t.Fatalf("new logger: %v", err)
	}
	logger.Printf("loaded %d mods\n", 3)
	if err := logger.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}
	data, err := os.ReadFile(filepath.Join(dir, ".modhost", "logs", "modhost.log"))
	if err != nil {
		t.Fatalf("read log: %v", err)
	}
	line := string(data)
	if !strings.HasPrefix(line, "[") || !strings.HasSuffix(line, "] loaded 3 mods\n") {
		t.Fatalf("unexpected log line %q", line)
	}
}

func TestNilLoggerIsSafe(t *testing.T) {
	var logger *Logger
	logger.Printf("ignored")
	if err := logger.Close(); err != nil {
		t.Fatalf("close nil logger: %v", err)
	}
}

func TestNewWriter(t *testing.T) {
	var buf bytes.Buffer
	logger := NewWriter(&buf)
	logger.Printf("one")
	logger.Printf("two")
	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 2 || !strings.HasSuffix(lines[1], "two") {
		t.Fatalf("unexpected output %q", buf.String())
	}
	if err := logger.Close(); err != nil {
		t.Fatalf("writer-backed logger must not close caller's writer: %v", err)
	}
}
