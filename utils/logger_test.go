package utils

import (
	"bytes"
	"strings"
	"testing"
	"time"
)

func TestLoggerLevels(t *testing.T) {
	var buf bytes.Buffer
	l := NewLoggerTo(&buf, "warn")

	l.Debug("debug %d", 1)
	l.Info("info %d", 2)
	l.Warn("warn %d", 3)
	l.Error("error %d", 4)

	out := buf.String()
	for _, hidden := range []string{"debug 1", "info 2"} {
		if strings.Contains(out, hidden) {
			t.Errorf("%q should be filtered at warn level:\n%s", hidden, out)
		}
	}
	for _, shown := range []string{"warn 3", "error 4"} {
		if !strings.Contains(out, shown) {
			t.Errorf("%q missing from output:\n%s", shown, out)
		}
	}
}

func TestLoggerStage(t *testing.T) {
	var buf bytes.Buffer
	NewLoggerTo(&buf, "info").Stage("filter", 12, 3*time.Millisecond)

	out := buf.String()
	if !strings.Contains(out, "stage=filter") || !strings.Contains(out, "rows=12") {
		t.Errorf("stage fields missing:\n%s", out)
	}
}
