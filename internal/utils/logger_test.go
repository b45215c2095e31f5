package utils

import (
	"bytes"
	"strings"
	"sync"
	"testing"
)

// =============================================================================
// Logger Tests
// =============================================================================

func resetLogger(t *testing.T) *bytes.Buffer {
	t.Helper()
	once = sync.Once{}
	loggerInstance = nil

	var buf bytes.Buffer
	SetOutput(&buf)
	t.Cleanup(func() {
		once = sync.Once{}
		loggerInstance = nil
	})
	return &buf
}

// TestGetLogger verifies singleton pattern - same instance returned
func TestGetLogger(t *testing.T) {
	logger1 := GetLogger()
	logger2 := GetLogger()

	if logger1 != logger2 {
		t.Error("GetLogger() should return same singleton instance")
	}
}

// TestLoggerDefaultVerboseMode verifies verbose is false by default
func TestLoggerDefaultVerboseMode(t *testing.T) {
	resetLogger(t)

	if GetLogger().IsVerbose() {
		t.Error("Logger should have verbose=false by default")
	}
}

// TestDebugHiddenUnlessVerbose verifies Debug output depends on verbose mode
func TestDebugHiddenUnlessVerbose(t *testing.T) {
	buf := resetLogger(t)

	Debugf("hidden %d", 1)
	if buf.Len() != 0 {
		t.Errorf("Debug should not print when verbose=false, got %q", buf.String())
	}

	SetVerboseMode(true)
	Debugf("shown %d", 2)
	if !strings.Contains(buf.String(), "[DEBUG] shown 2") {
		t.Errorf("expected debug line, got %q", buf.String())
	}
}

// TestLevelPrefixes verifies Info/Warn/Error prefixes
func TestLevelPrefixes(t *testing.T) {
	buf := resetLogger(t)

	Infof("saved %s", "tasks.json")
	Warnf("skipped %d record(s)", 2)
	Errorf("boom")

	out := buf.String()
	for _, want := range []string{"[INFO] saved tasks.json", "[WARN] skipped 2 record(s)", "[ERROR] boom"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}

// TestMessageWithoutArgs verifies percent signs are kept when no args are passed
func TestMessageWithoutArgs(t *testing.T) {
	buf := resetLogger(t)

	msg := "100% done"
	GetLogger().Info(msg)
	if !strings.Contains(buf.String(), "100% done") {
		t.Errorf("expected literal message, got %q", buf.String())
	}
}
