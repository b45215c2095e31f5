package analytics

import (
	"database/sql"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"supertask/internal/utils"
)

// =============================================================================
// Analytics Tracker Tests
// =============================================================================

func newTestTracker(t *testing.T, enabled bool) *Tracker {
	t.Helper()
	tracker, err := NewTracker(filepath.Join(t.TempDir(), "analytics.db"), enabled)
	if err != nil {
		t.Fatalf("NewTracker() error = %v", err)
	}
	t.Cleanup(func() { _ = tracker.Close() })
	return tracker
}

// TestTracker_TrackCommand verifies a successful command is recorded synchronously
func TestTracker_TrackCommand(t *testing.T) {
	tracker := newTestTracker(t, true)

	base := time.Date(2025, 1, 2, 10, 0, 0, 0, time.UTC)
	calls := 0
	tracker.now = func() time.Time {
		calls++
		return base.Add(time.Duration(calls-1) * 25 * time.Millisecond)
	}

	err := tracker.TrackCommand("add", []string{"--priority", "--deadline"}, func() error { return nil })
	if err != nil {
		t.Fatalf("TrackCommand() error = %v", err)
	}

	events, err := tracker.QueryEvents("SELECT * FROM events WHERE command = 'add'")
	if err != nil {
		t.Fatalf("QueryEvents() error = %v", err)
	}
	if len(events) != 1 {
		t.Fatalf("expected 1 event, got %d", len(events))
	}

	event := events[0]
	if !event.Success {
		t.Error("expected success = true")
	}
	if event.Surface != "cli" {
		t.Errorf("expected surface = 'cli', got %q", event.Surface)
	}
	if event.DurationMs != 25 {
		t.Errorf("expected duration 25ms, got %d", event.DurationMs)
	}
	if event.Timestamp != base.Unix() {
		t.Errorf("expected timestamp %d, got %d", base.Unix(), event.Timestamp)
	}
	if event.Flags != `["--priority","--deadline"]` {
		t.Errorf("unexpected flags %q", event.Flags)
	}
}

// TestTracker_TrackCommandError verifies failures are recorded and categorized
func TestTracker_TrackCommandError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{"validation", utils.NewEmptyTitleError(), "validation"},
		{"persistence", &utils.PersistenceError{Op: "save", Path: "/x", Err: errors.New("disk full")}, "persistence"},
		{"permission", errors.New("open /x: permission denied"), "permission"},
		{"other", errors.New("boom"), "unknown"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tracker := newTestTracker(t, true)

			err := tracker.TrackCommand("complete", nil, func() error { return tt.err })
			if err != tt.err {
				t.Fatalf("TrackCommand() should return fn's error unchanged, got %v", err)
			}

			events, err := tracker.QueryEvents("SELECT * FROM events")
			if err != nil {
				t.Fatalf("QueryEvents() error = %v", err)
			}
			if len(events) != 1 {
				t.Fatalf("expected 1 event, got %d", len(events))
			}
			if events[0].Success {
				t.Error("expected success = false")
			}
			if events[0].ErrorType != tt.want {
				t.Errorf("ErrorType = %q, want %q", events[0].ErrorType, tt.want)
			}
		})
	}
}

// TestTracker_Summary verifies per-command aggregation
func TestTracker_Summary(t *testing.T) {
	tracker := newTestTracker(t, true)
	tracker.SetSurface("menu")

	for i := 0; i < 3; i++ {
		_ = tracker.TrackCommand("list", nil, func() error { return nil })
	}
	_ = tracker.TrackCommand("add", nil, func() error { return nil })
	_ = tracker.TrackCommand("add", nil, func() error { return utils.NewEmptyTitleError() })

	summary, err := tracker.Summary()
	if err != nil {
		t.Fatalf("Summary() error = %v", err)
	}
	if len(summary) != 2 {
		t.Fatalf("expected 2 commands, got %+v", summary)
	}
	if summary[0].Command != "list" || summary[0].Count != 3 || summary[0].Failures != 0 {
		t.Errorf("unexpected first row %+v", summary[0])
	}
	if summary[1].Command != "add" || summary[1].Count != 2 || summary[1].Failures != 1 {
		t.Errorf("unexpected second row %+v", summary[1])
	}

	events, _ := tracker.QueryEvents("SELECT * FROM events")
	for _, e := range events {
		if e.Surface != "menu" {
			t.Errorf("expected surface 'menu', got %q", e.Surface)
		}
	}
}

// TestTracker_Cleanup verifies retention cleanup
func TestTracker_Cleanup(t *testing.T) {
	tracker := newTestTracker(t, true)

	oldTimestamp := time.Now().Unix() - (10 * 86400)
	if _, err := tracker.db.Exec(`INSERT INTO events (timestamp, command, success, duration_ms) VALUES (?, 'old_command', 1, 5)`, oldTimestamp); err != nil {
		t.Fatalf("failed to insert old event: %v", err)
	}
	recentTimestamp := time.Now().Unix() - (2 * 86400)
	if _, err := tracker.db.Exec(`INSERT INTO events (timestamp, command, success, duration_ms) VALUES (?, 'recent_command', 1, 5)`, recentTimestamp); err != nil {
		t.Fatalf("failed to insert recent event: %v", err)
	}

	deleted, err := tracker.Cleanup(7)
	if err != nil {
		t.Fatalf("Cleanup() error = %v", err)
	}
	if deleted != 1 {
		t.Errorf("expected 1 event deleted, got %d", deleted)
	}

	events, err := tracker.QueryEvents("SELECT * FROM events")
	if err != nil {
		t.Fatalf("QueryEvents() error = %v", err)
	}
	if len(events) != 1 || events[0].Command != "recent_command" {
		t.Errorf("expected only the recent event to remain, got %+v", events)
	}
}

// TestAnalytics_Disabled verifies nothing is recorded when disabled
func TestAnalytics_Disabled(t *testing.T) {
	tracker := newTestTracker(t, false)

	ran := false
	err := tracker.TrackCommand("add", nil, func() error {
		ran = true
		return nil
	})
	if err != nil {
		t.Fatalf("TrackCommand() error = %v", err)
	}
	if !ran {
		t.Error("command should run even when analytics is disabled")
	}

	events, err := tracker.QueryEvents("SELECT * FROM events")
	if err != nil {
		t.Fatalf("QueryEvents() error = %v", err)
	}
	if len(events) != 0 {
		t.Errorf("expected no events when disabled, got %d", len(events))
	}
}

// TestAnalytics_NilTracker verifies a nil tracker is a pass-through
func TestAnalytics_NilTracker(t *testing.T) {
	var tracker *Tracker
	if tracker.Enabled() {
		t.Error("nil tracker must report disabled")
	}
}

// TestAnalytics_EnvironmentOverride verifies the environment variable wins over config
func TestAnalytics_EnvironmentOverride(t *testing.T) {
	t.Run("env disables", func(t *testing.T) {
		t.Setenv(EnvEnabled, "false")
		if IsEnabledFromEnv(true) {
			t.Error("expected analytics disabled by environment")
		}
	})

	t.Run("env enables", func(t *testing.T) {
		t.Setenv(EnvEnabled, "1")
		if !IsEnabledFromEnv(false) {
			t.Error("expected analytics enabled by environment")
		}
	})

	t.Run("env unset uses config", func(t *testing.T) {
		t.Setenv(EnvEnabled, "")
		if IsEnabledFromEnv(false) || !IsEnabledFromEnv(true) {
			t.Error("expected config value when env is unset")
		}
	})
}

// TestTracker_DatabaseCreation verifies the directory and file are created
func TestTracker_DatabaseCreation(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "nested", "dir", "analytics.db")

	tracker, err := NewTracker(dbPath, true)
	if err != nil {
		t.Fatalf("NewTracker() error = %v", err)
	}
	defer func() { _ = tracker.Close() }()

	if _, err := os.Stat(dbPath); err != nil {
		t.Errorf("expected database file to exist: %v", err)
	}
}

// QueryEvents reads raw events for assertions
func (t *Tracker) QueryEvents(query string) ([]Event, error) {
	rows, err := t.db.Query(query)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var events []Event
	for rows.Next() {
		var e Event
		var surface, errorType, flags sql.NullString
		var duration sql.NullInt64

		if err := rows.Scan(&e.ID, &e.Timestamp, &e.Command, &surface, &e.Success, &duration, &errorType, &flags); err != nil {
			return nil, err
		}
		e.Surface = surface.String
		e.DurationMs = duration.Int64
		e.ErrorType = errorType.String
		e.Flags = flags.String
		events = append(events, e)
	}

	return events, rows.Err()
}
