package logger

import (
	"testing"

	"go.uber.org/zap/zapcore"
)

func TestNewParsesLevel(t *testing.T) {
	l, err := New("debug")
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if !l.Core().Enabled(zapcore.DebugLevel) {
		t.Fatalf("debug level should be enabled")
	}

	if _, err := New("loud"); err == nil {
		t.Fatalf("expected error for unknown level")
	}
}
