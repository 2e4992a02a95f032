package logger

import (
	"testing"

	"go.uber.org/zap/zapcore"
)

func TestParseLevel(t *testing.T) {
	tests := map[string]zapcore.Level{
		"debug":   zapcore.DebugLevel,
		"info":    zapcore.InfoLevel,
		"warn":    zapcore.WarnLevel,
		"error":   zapcore.ErrorLevel,
		"":        zapcore.InfoLevel,
		"verbose": zapcore.InfoLevel,
	}
	for in, want := range tests {
		if got := parseLevel(in); got != want {
			t.Errorf("parseLevel(%q) = %v, want %v", in, got, want)
		}
	}
}

func TestNewRespectsLevel(t *testing.T) {
	for _, format := range []string{"json", "console"} {
		log, err := New("warn", format, "food-distribution-backend")
		if err != nil {
			t.Fatalf("New(%s) failed: %v", format, err)
		}
		if log.Core().Enabled(zapcore.InfoLevel) {
			t.Errorf("%s logger should not enable info at warn level", format)
		}
		if !log.Core().Enabled(zapcore.ErrorLevel) {
			t.Errorf("%s logger should enable error at warn level", format)
		}
	}
}
