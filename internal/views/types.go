package views

import (
	"strings"

	"supertask/backend"
	"supertask/internal/utils"
)

// FilterMode selects which tasks a listing shows
type FilterMode string

const (
	FilterAll       FilterMode = "all"
	FilterCompleted FilterMode = "completed"
	FilterPending   FilterMode = "pending"
)

// ParseFilterMode converts user input to a FilterMode. Empty input means all.
func ParseFilterMode(s string) (FilterMode, error) {
	switch FilterMode(strings.ToLower(strings.TrimSpace(s))) {
	case "", FilterAll:
		return FilterAll, nil
	case FilterCompleted, "done":
		return FilterCompleted, nil
	case FilterPending, "todo":
		return FilterPending, nil
	default:
		return "", utils.ErrInvalidFilter(s)
	}
}

// DeadlineKind classifies a deadline relative to a reference date
type DeadlineKind string

const (
	DeadlineNone     DeadlineKind = "none"
	DeadlineOverdue  DeadlineKind = "overdue"
	DeadlineDueToday DeadlineKind = "due_today"
	DeadlineUpcoming DeadlineKind = "upcoming"
)

// DeadlineStatus is the derived deadline classification of a task.
// DaysLeft is negative for overdue tasks and zero when there is no deadline.
type DeadlineStatus struct {
	Kind     DeadlineKind
	DaysLeft int
}

// Engine filters, searches and orders tasks for display
type Engine struct {
	priorities backend.PriorityTable
}

// NewEngine creates a query engine for the given priority table. An empty
// table falls back to backend.DefaultPriorities.
func NewEngine(priorities backend.PriorityTable) *Engine {
	if len(priorities) == 0 {
		priorities = backend.DefaultPriorities()
	}
	return &Engine{priorities: priorities}
}

// Priorities returns the engine's priority table
func (e *Engine) Priorities() backend.PriorityTable {
	return e.priorities
}
