package utils

import (
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
)

func resetDebug(t *testing.T) {
	t.Helper()
	mu.Lock()
	if debugFile != nil {
		debugFile.Close()
	}
	debugFile = nil
	debugOnce = sync.Once{}
	logsDir = ""
	mu.Unlock()
	root.Store(nil)
	t.Cleanup(func() {
		mu.Lock()
		if debugFile != nil {
			debugFile.Close()
		}
		debugFile = nil
		debugOnce = sync.Once{}
		logsDir = ""
		mu.Unlock()
		root.Store(nil)
	})
}

func TestDebug_NoDirWritesNothing(t *testing.T) {
	resetDebug(t)
	Debug("hello %d", 1)
	if Logger() != &nop {
		t.Error("expected the discard logger without a directory")
	}
}

func TestDebug_WritesJSONLine(t *testing.T) {
	resetDebug(t)
	dir := t.TempDir()
	ConfigureDebug(dir)

	Debug("cleaned %d chars", 42)

	matches, err := filepath.Glob(filepath.Join(dir, "debug-*.log"))
	if err != nil || len(matches) != 1 {
		t.Fatalf("expected one log file, got %v (%v)", matches, err)
	}
	data, err := os.ReadFile(matches[0])
	if err != nil {
		t.Fatal(err)
	}
	line := string(data)
	if !strings.Contains(line, `"message":"cleaned 42 chars"`) {
		t.Errorf("log line missing message: %s", line)
	}
	if !strings.Contains(line, `"level":"debug"`) {
		t.Errorf("log line missing level: %s", line)
	}
}

func TestCleanupLogs(t *testing.T) {
	resetDebug(t)
	dir := t.TempDir()
	ConfigureDebug(dir)

	names := []string{
		"debug-20240101-000000.log",
		"debug-20240102-000000.log",
		"debug-20240103-000000.log",
		"debug-20240104-000000.log",
		"other.txt",
	}
	for _, n := range names {
		if err := os.WriteFile(filepath.Join(dir, n), []byte("x"), 0o644); err != nil {
			t.Fatal(err)
		}
	}

	if err := CleanupLogs(2); err != nil {
		t.Fatal(err)
	}

	for i, n := range names {
		_, err := os.Stat(filepath.Join(dir, n))
		exists := err == nil
		want := i >= 2
		if exists != want {
			t.Errorf("%s exists=%v, want %v", n, exists, want)
		}
	}
}

func TestParseLevel(t *testing.T) {
	tests := map[string]string{
		"info":    "info",
		"WARN":    "warn",
		"warning": "warn",
		"error":   "error",
		"bogus":   "debug",
		"":        "debug",
	}
	for in, want := range tests {
		if got := parseLevel(in).String(); got != want {
			t.Errorf("parseLevel(%q) = %s, want %s", in, got, want)
		}
	}
}
