package views

import (
	"sort"
	"strings"
	"time"

	"supertask/backend"
)

// Filter returns the tasks matching mode, in input order. The result is a
// new slice; the caller's tasks are never shared.
func (e *Engine) Filter(tasks []backend.Task, mode FilterMode) []backend.Task {
	return pick(tasks, e.FilterPositions(tasks, mode))
}

// FilterPositions returns the 0-based positions of tasks matching mode
func (e *Engine) FilterPositions(tasks []backend.Task, mode FilterMode) []int {
	positions := make([]int, 0, len(tasks))
	for i, t := range tasks {
		switch mode {
		case FilterCompleted:
			if !t.Completed {
				continue
			}
		case FilterPending:
			if t.Completed {
				continue
			}
		}
		positions = append(positions, i)
	}
	return positions
}

// Search returns tasks whose title contains term, ignoring case. An empty
// term matches everything. Input order is kept; search results are never
// sorted for display.
func (e *Engine) Search(tasks []backend.Task, term string) []backend.Task {
	return pick(tasks, e.SearchPositions(tasks, term))
}

// SearchPositions returns the 0-based positions of tasks matching term
func (e *Engine) SearchPositions(tasks []backend.Task, term string) []int {
	needle := strings.ToLower(term)
	positions := make([]int, 0, len(tasks))
	for i, t := range tasks {
		if strings.Contains(strings.ToLower(t.Title), needle) {
			positions = append(positions, i)
		}
	}
	return positions
}

// SortForDisplay orders tasks by priority rank (High first), then by deadline
// ascending with undated tasks last. The sort is stable, so ties keep their
// store order.
func (e *Engine) SortForDisplay(tasks []backend.Task) []backend.Task {
	positions := make([]int, len(tasks))
	for i := range tasks {
		positions[i] = i
	}
	return pick(tasks, e.SortPositions(tasks, positions))
}

// SortPositions reorders positions (indexes into tasks) for display without
// touching tasks. The returned slice is new.
func (e *Engine) SortPositions(tasks []backend.Task, positions []int) []int {
	sorted := append([]int(nil), positions...)
	sort.SliceStable(sorted, func(i, j int) bool {
		a, b := tasks[sorted[i]], tasks[sorted[j]]
		ra, rb := e.priorities.Rank(a.Priority), e.priorities.Rank(b.Priority)
		if ra != rb {
			return ra < rb
		}
		return deadlineBefore(a.Deadline, b.Deadline)
	})
	return sorted
}

// deadlineBefore treats a missing deadline as later than any real date
func deadlineBefore(a, b *time.Time) bool {
	switch {
	case a == nil:
		return false
	case b == nil:
		return true
	default:
		return backend.DateOf(*a).Before(backend.DateOf(*b))
	}
}

// DeadlineStatus classifies task's deadline against today
func (e *Engine) DeadlineStatus(task backend.Task, today time.Time) DeadlineStatus {
	if task.Deadline == nil {
		return DeadlineStatus{Kind: DeadlineNone}
	}

	days := backend.DaysBetween(today, *task.Deadline)
	switch {
	case days < 0:
		return DeadlineStatus{Kind: DeadlineOverdue, DaysLeft: days}
	case days == 0:
		return DeadlineStatus{Kind: DeadlineDueToday}
	default:
		return DeadlineStatus{Kind: DeadlineUpcoming, DaysLeft: days}
	}
}

// pick copies the tasks at positions into a new slice
func pick(tasks []backend.Task, positions []int) []backend.Task {
	result := make([]backend.Task, 0, len(positions))
	for _, p := range positions {
		result = append(result, CopyTask(tasks[p]))
	}
	return result
}

// CopyTask detaches the deadline pointer so views never alias store tasks
func CopyTask(t backend.Task) backend.Task {
	if t.Deadline != nil {
		d := *t.Deadline
		t.Deadline = &d
	}
	return t
}
