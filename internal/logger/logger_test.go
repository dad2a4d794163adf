package logger

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"testing"
)

func TestNewLogger(t *testing.T) {
	tests := []struct {
		name      string
		config    Config
		logFunc   func(l *slog.Logger)
		checkFunc func(t *testing.T, output string)
	}{
		{
			name:    "Text Logger Info Level",
			config:  Config{Level: "info", Format: "text", Output: "stdout"},
			logFunc: func(l *slog.Logger) { l.Info("test message", "run_id", 42) },
			checkFunc: func(t *testing.T, output string) {
				if !bytes.Contains([]byte(output), []byte("level=INFO")) ||
					!bytes.Contains([]byte(output), []byte("msg=\"test message\"")) {
					t.Errorf("Expected text log output with info level and message, got: %s", output)
				}
			},
		},
		{
			name:    "JSON Logger Debug Level",
			config:  Config{Level: "debug", Format: "json", Output: "stdout"},
			logFunc: func(l *slog.Logger) { l.Debug("test message") },
			checkFunc: func(t *testing.T, output string) {
				var logEntry map[string]interface{}
				if err := json.Unmarshal([]byte(output), &logEntry); err != nil {
					t.Fatalf("Failed to unmarshal JSON log: %v, output: %s", err, output)
				}
				if logEntry["level"] != "DEBUG" || logEntry["msg"] != "test message" {
					t.Errorf("Expected JSON log output with debug level and message, got: %v", logEntry)
				}
			},
		},
		{
			name:    "Invalid level defaults to info",
			config:  Config{Level: "noisy", Format: "text", Output: "stdout"},
			logFunc: func(l *slog.Logger) { l.Debug("hidden"); l.Info("visible") },
			checkFunc: func(t *testing.T, output string) {
				if bytes.Contains([]byte(output), []byte("hidden")) {
					t.Errorf("Debug output should be suppressed at default level, got: %s", output)
				}
				if !bytes.Contains([]byte(output), []byte("visible")) {
					t.Errorf("Info output missing, got: %s", output)
				}
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			logger := NewLogger(tt.config, &buf)
			tt.logFunc(logger)
			tt.checkFunc(t, buf.String())
		})
	}
}
