package logging

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want slog.Level
	}{
		{"debug", slog.LevelDebug},
		{" INFO ", slog.LevelInfo},
		{"warn", slog.LevelWarn},
		{"warning", slog.LevelWarn},
		{"error", slog.LevelError},
		{"", slog.LevelInfo},
		{"loud", slog.LevelInfo},
	}

	for _, tt := range tests {
		if got := ParseLevel(tt.in); got != tt.want {
			t.Errorf("ParseLevel(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestNew_ConsoleOnly(t *testing.T) {
	var buf bytes.Buffer
	logger, closer, err := New(&buf, "warn", "")
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	defer closer.Close()

	logger.Info("hidden")
	logger.Warn("shown", "session", "abc")

	out := buf.String()
	if strings.Contains(out, "hidden") {
		t.Error("info record should be filtered at warn level")
	}
	if !strings.Contains(out, "shown") || !strings.Contains(out, "abc") {
		t.Errorf("warn record missing from console output: %q", out)
	}
}

func TestNew_FanoutToFile(t *testing.T) {
	var buf bytes.Buffer
	path := filepath.Join(t.TempDir(), "signsync.json")

	logger, closer, err := New(&buf, "info", path)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	logger.Info("sign confirmed", "token", "HELLO")
	if err := closer.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}

	if !strings.Contains(buf.String(), "sign confirmed") {
		t.Error("console should receive the record")
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read log file: %v", err)
	}
	var rec map[string]any
	if err := json.Unmarshal(bytes.TrimSpace(data), &rec); err != nil {
		t.Fatalf("log file should hold a JSON line: %v (%q)", err, data)
	}
	if rec["msg"] != "sign confirmed" || rec["token"] != "HELLO" {
		t.Errorf("unexpected JSON record: %v", rec)
	}
}

func TestNew_BadFile(t *testing.T) {
	var buf bytes.Buffer
	path := filepath.Join(t.TempDir(), "missing-dir", "log.json")

	if _, _, err := New(&buf, "info", path); err == nil {
		t.Error("expected error for unwritable log path")
	}
}
