package main

import (
	"os"
	"path/filepath"
	"testing"

	"go.uber.org/zap/zapcore"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		level string
		want  zapcore.Level
	}{
		{"debug", zapcore.DebugLevel},
		{"warn", zapcore.WarnLevel},
		{"", zapcore.InfoLevel},
		{"loud", zapcore.InfoLevel},
	}

	for _, tt := range tests {
		if got := parseLevel(tt.level); got != tt.want {
			t.Errorf("parseLevel(%q) = %v, want %v", tt.level, got, tt.want)
		}
	}
}

func TestInitFileLogger(t *testing.T) {
	logFile := filepath.Join(t.TempDir(), "tibr.log")

	l, err := initFileLogger(logFile, "info")
	if err != nil {
		t.Fatalf("initFileLogger() error = %v", err)
	}
	l.Info("Playing channel")
	_ = l.Sync()

	data, err := os.ReadFile(logFile)
	if err != nil {
		t.Fatalf("log file not written: %v", err)
	}
	if len(data) == 0 {
		t.Error("log file is empty")
	}

	if _, err := initFileLogger("", "info"); err == nil {
		t.Error("initFileLogger(\"\") expected error")
	}
}
