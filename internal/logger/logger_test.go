package logger

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"testing"
)

// SetupがJSON形式でログを出力することを検証
func TestSetup_OutputsJSON(t *testing.T) {
	var buf bytes.Buffer
	log := Setup(&buf)

	log.Info("test message", slog.String("key", "value"))

	var entry map[string]any
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("output is not valid JSON: %v", err)
	}
	if entry["msg"] != "test message" {
		t.Errorf("expected msg 'test message', got %v", entry["msg"])
	}
	if entry["key"] != "value" {
		t.Errorf("expected key 'value', got %v", entry["key"])
	}
}

// 既定レベルがinfoでありdebugが抑制されることを検証
func TestSetup_DefaultLevelSuppressesDebug(t *testing.T) {
	var buf bytes.Buffer
	log := Setup(&buf)

	log.Debug("should not appear")
	if buf.Len() != 0 {
		t.Errorf("expected debug log to be suppressed, got %q", buf.String())
	}
}

// LOG_LEVEL=debugでdebugログが出力されることを検証
func TestSetup_DebugLevelFromEnv(t *testing.T) {
	t.Setenv("LOG_LEVEL", "debug")

	var buf bytes.Buffer
	log := Setup(&buf)

	log.Debug("debug line")
	if buf.Len() == 0 {
		t.Error("expected debug log to be emitted with LOG_LEVEL=debug")
	}
}
