package logger

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/ogurasousui/hrms-lite/internal/platform/config"
)

func TestNew_JSON(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	log, err := New(config.LogConfig{Level: "warn", Format: "json"}, &buf)
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}

	log.Info().Msg("dropped")
	log.Warn().Str("k", "v").Msg("kept")

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 1 {
		t.Fatalf("expected 1 line, got %d: %q", len(lines), buf.String())
	}

	var entry map[string]any
	if err := json.Unmarshal([]byte(lines[0]), &entry); err != nil {
		t.Fatalf("log line is not JSON: %v", err)
	}
	if entry["message"] != "kept" || entry["k"] != "v" || entry["service"] != "hrms" {
		t.Fatalf("unexpected entry %v", entry)
	}
	if _, ok := entry["time"]; !ok {
		t.Fatalf("expected timestamp field")
	}
}

func TestNew_Console(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	log, err := New(config.LogConfig{Level: "debug", Format: "console"}, &buf)
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}

	log.Debug().Msg("hello console")
	if !strings.Contains(buf.String(), "hello console") {
		t.Fatalf("expected console output, got %q", buf.String())
	}
	if json.Valid(bytes.TrimSpace(buf.Bytes())) {
		t.Fatalf("expected human readable output, got JSON")
	}
}

func TestNew_Errors(t *testing.T) {
	t.Parallel()

	if _, err := New(config.LogConfig{Level: "loud"}, nil); err == nil {
		t.Fatalf("expected error for unknown level")
	}
	if _, err := New(config.LogConfig{Level: "info", Format: "xml"}, nil); err == nil {
		t.Fatalf("expected error for unknown format")
	}
}
