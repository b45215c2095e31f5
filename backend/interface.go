package backend

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// DateFormat is the on-disk and input format for deadlines
const DateFormat = "2006-01-02"

// Task represents a todo item
type Task struct {
	Title     string
	Completed bool
	Priority  Priority
	Deadline  *time.Time // Calendar date at midnight UTC, nil means no deadline
}

// Priority is the enumeration key of a priority level ("1", "2", "3")
type Priority string

const (
	PriorityHigh   Priority = "1"
	PriorityMedium Priority = "2"
	PriorityLow    Priority = "3"

	// DefaultPriority is used when no priority is supplied and for unknown stored keys
	DefaultPriority = PriorityMedium
)

// PriorityLevel describes how a priority key is displayed
type PriorityLevel struct {
	Key   Priority
	Name  string
	Color string
}

// PriorityTable is the ordered set of known priority levels, highest first
type PriorityTable []PriorityLevel

// DefaultPriorities returns the built-in High/Medium/Low table
func DefaultPriorities() PriorityTable {
	return PriorityTable{
		{Key: PriorityHigh, Name: "High", Color: "9"},
		{Key: PriorityMedium, Name: "Medium", Color: "11"},
		{Key: PriorityLow, Name: "Low", Color: "10"},
	}
}

// Has reports whether key is one of the table's levels
func (pt PriorityTable) Has(key Priority) bool {
	for _, l := range pt {
		if l.Key == key {
			return true
		}
	}
	return false
}

// Lookup returns the level for key, falling back to the default priority
// when the key is unknown or empty.
func (pt PriorityTable) Lookup(key Priority) PriorityLevel {
	for _, l := range pt {
		if l.Key == key {
			return l
		}
	}
	for _, l := range pt {
		if l.Key == DefaultPriority {
			return l
		}
	}
	return PriorityLevel{Key: DefaultPriority, Name: "Medium"}
}

// Rank returns the sort position of key (0 is highest). Unknown keys rank as
// the default priority.
func (pt PriorityTable) Rank(key Priority) int {
	lookupKey := pt.Lookup(key).Key
	for i, l := range pt {
		if l.Key == lookupKey {
			return i
		}
	}
	return len(pt)
}

// Keys returns the priority keys in display order
func (pt PriorityTable) Keys() []Priority {
	keys := make([]Priority, 0, len(pt))
	for _, l := range pt {
		keys = append(keys, l.Key)
	}
	return keys
}

// ResolvePriority maps user input to a priority key. It accepts the key itself
// or a level name (case-insensitive). Empty input resolves to the default.
func (pt PriorityTable) ResolvePriority(input string) (Priority, bool) {
	if input == "" {
		return DefaultPriority, true
	}
	for _, l := range pt {
		if string(l.Key) == input || strings.EqualFold(l.Name, input) {
			return l.Key, true
		}
	}
	switch strings.ToLower(input) {
	case "high":
		return PriorityHigh, pt.Has(PriorityHigh)
	case "medium":
		return PriorityMedium, pt.Has(PriorityMedium)
	case "low":
		return PriorityLow, pt.Has(PriorityLow)
	}
	return "", false
}

// Storage defines the interface for the durable task store
type Storage interface {
	// Load reads all tasks in stored order. A missing store yields an empty slice.
	Load() ([]Task, error)
	// Save replaces the stored tasks, taking a backup of the previous state first.
	Save(tasks []Task) error
	// Path returns the location of the primary storage file
	Path() string
}

// ParseDate parses a YYYY-MM-DD string into a calendar date at midnight UTC.
func ParseDate(s string) (time.Time, error) {
	return time.ParseInLocation(DateFormat, s, time.UTC)
}

// FormatDate formats a calendar date as YYYY-MM-DD
func FormatDate(t time.Time) string {
	return t.Format(DateFormat)
}

// DateOf truncates a wall-clock time to its calendar date at midnight UTC,
// keeping the year, month and day as seen in t's own location.
func DateOf(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// DaysBetween returns the whole number of days from `from` to `to`.
func DaysBetween(from, to time.Time) int {
	return int(DateOf(to).Sub(DateOf(from)).Hours() / 24)
}

// GenerateID generates a unique identifier using UUID v4.
func GenerateID() string {
	return uuid.New().String()
}
