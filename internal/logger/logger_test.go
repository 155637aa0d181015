package logger

import (
	"bytes"
	"log/slog"
	"strings"
	"testing"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		input    string
		expected slog.Level
	}{
		{"debug", slog.LevelDebug},
		{"DEBUG", slog.LevelDebug},
		{"info", slog.LevelInfo},
		{"warning", slog.LevelWarn},
		{"warn", slog.LevelWarn},
		{"error", slog.LevelError},
		{"invalid", slog.LevelInfo},
		{"", slog.LevelInfo},
	}

	for _, tt := range tests {
		if got := parseLevel(tt.input); got != tt.expected {
			t.Errorf("parseLevel(%q) = %v, want %v", tt.input, got, tt.expected)
		}
	}
}

func TestLevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	logger = slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelInfo}))

	Info("kept message", "key", "value")
	Debug("dropped message")

	output := buf.String()
	if !strings.Contains(output, "kept message") {
		t.Errorf("INFO message missing: %s", output)
	}
	if !strings.Contains(output, "key=value") {
		t.Errorf("structured field missing: %s", output)
	}
	if strings.Contains(output, "dropped message") {
		t.Errorf("DEBUG message leaked at INFO level: %s", output)
	}
}

func TestAuditBypassesLevel(t *testing.T) {
	var buf bytes.Buffer
	logger = slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{
		Level: slog.LevelError,
		ReplaceAttr: func(groups []string, a slog.Attr) slog.Attr {
			if a.Key == slog.LevelKey {
				if lv, ok := a.Value.Any().(slog.Level); ok && lv == LevelAudit {
					a.Value = slog.StringValue("AUDIT")
				}
			}
			return a
		},
	}))

	Info("filtered")
	Audit("login attempt", "username", "alice")

	output := buf.String()
	if strings.Contains(output, "filtered") {
		t.Error("INFO appeared at ERROR level")
	}
	if !strings.Contains(output, "login attempt") {
		t.Error("audit record filtered out")
	}
	if !strings.Contains(output, "level=AUDIT") {
		t.Errorf("audit level not renamed: %s", output)
	}
}

func TestMultiHandlerFansOut(t *testing.T) {
	var buf1, buf2 bytes.Buffer
	h1 := slog.NewTextHandler(&buf1, &slog.HandlerOptions{Level: slog.LevelInfo})
	h2 := slog.NewTextHandler(&buf2, &slog.HandlerOptions{Level: slog.LevelInfo})
	logger = slog.New(newMultiHandler(h1, h2))

	Info("fan out", "field", "value")

	for i, out := range []string{buf1.String(), buf2.String()} {
		if !strings.Contains(out, "fan out") {
			t.Errorf("handler %d did not receive the record", i+1)
		}
	}
}

func TestNilLoggerDoesNotPanic(t *testing.T) {
	logger = nil
	defer func() {
		if r := recover(); r != nil {
			t.Errorf("nil logger panicked: %v", r)
		}
	}()

	Debug("debug")
	Info("info")
	Warning("warning")
	Error("error")
	Errorf("error %d", 1)
	Audit("audit")
}
