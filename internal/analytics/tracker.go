package analytics

import (
	"database/sql"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"supertask/internal/utils"
)

// Tracker records command invocations
type Tracker struct {
	db      *sql.DB
	enabled bool
	surface string
	now     func() time.Time
}

// NewTracker opens the analytics database at dbPath. When enabled is false
// commands still run but nothing is recorded.
func NewTracker(dbPath string, enabled bool) (*Tracker, error) {
	db, err := openDB(dbPath)
	if err != nil {
		return nil, err
	}

	return &Tracker{
		db:      db,
		enabled: enabled,
		surface: "cli",
		now:     time.Now,
	}, nil
}

// SetSurface tags subsequent events with the interface that produced them
func (t *Tracker) SetSurface(surface string) {
	t.surface = surface
}

// Enabled reports whether events are being recorded
func (t *Tracker) Enabled() bool {
	return t != nil && t.enabled
}

// Close closes the database connection
func (t *Tracker) Close() error {
	if t.db != nil {
		return t.db.Close()
	}
	return nil
}

// TrackCommand runs fn and records its outcome. fn always runs; the event is
// written before TrackCommand returns. Recording failures are logged and
// never change fn's result.
func (t *Tracker) TrackCommand(cmd string, flags []string, fn func() error) error {
	if !t.Enabled() {
		return fn()
	}

	start := t.now()
	err := fn()

	event := Event{
		Timestamp:  start.Unix(),
		Command:    cmd,
		Surface:    t.surface,
		Success:    err == nil,
		DurationMs: t.now().Sub(start).Milliseconds(),
		ErrorType:  categorizeError(err),
	}
	if len(flags) > 0 {
		flagsJSON, _ := json.Marshal(flags)
		event.Flags = string(flagsJSON)
	}

	if logErr := t.logEvent(event); logErr != nil {
		utils.Debugf("analytics: failed to record %s: %v", cmd, logErr)
	}
	return err
}

func (t *Tracker) logEvent(event Event) error {
	_, err := t.db.Exec(`
		INSERT INTO events (timestamp, command, surface, success, duration_ms, error_type, flags)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`, event.Timestamp, event.Command, nullString(event.Surface),
		boolToInt(event.Success), event.DurationMs, nullString(event.ErrorType), nullString(event.Flags))
	return err
}

// Summary returns per-command counts, most used first
func (t *Tracker) Summary() ([]CommandSummary, error) {
	rows, err := t.db.Query(`
		SELECT command, COUNT(*), SUM(CASE WHEN success = 0 THEN 1 ELSE 0 END), AVG(duration_ms)
		FROM events
		GROUP BY command
		ORDER BY COUNT(*) DESC, command ASC
	`)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var summaries []CommandSummary
	for rows.Next() {
		var s CommandSummary
		var avg sql.NullFloat64
		if err := rows.Scan(&s.Command, &s.Count, &s.Failures, &avg); err != nil {
			return nil, err
		}
		s.AvgDurationMs = avg.Float64
		summaries = append(summaries, s)
	}
	return summaries, rows.Err()
}

// Cleanup removes events older than retentionDays and returns how many were deleted
func (t *Tracker) Cleanup(retentionDays int) (int64, error) {
	cutoff := t.now().Unix() - int64(retentionDays*86400)

	result, err := t.db.Exec("DELETE FROM events WHERE timestamp < ?", cutoff)
	if err != nil {
		return 0, err
	}

	deleted, err := result.RowsAffected()
	if err != nil {
		return 0, err
	}

	_, _ = t.db.Exec("VACUUM")

	return deleted, nil
}

// categorizeError maps an error to a coarse category
func categorizeError(err error) string {
	if err == nil {
		return ""
	}
	if utils.IsValidation(err) {
		return "validation"
	}
	if utils.IsPersistence(err) {
		return "persistence"
	}

	var timeoutErr interface{ Timeout() bool }
	if errors.As(err, &timeoutErr) && timeoutErr.Timeout() {
		return "timeout"
	}

	errStr := strings.ToLower(err.Error())
	switch {
	case strings.Contains(errStr, "permission denied"):
		return "permission"
	case strings.Contains(errStr, "not found") || strings.Contains(errStr, "no such file"):
		return "not_found"
	case strings.Contains(errStr, "invalid"):
		return "validation"
	default:
		return "unknown"
	}
}

func nullString(s string) interface{} {
	if s == "" {
		return nil
	}
	return s
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
