// Package markdown renders tasks as a markdown checklist grouped by priority,
// in the "- [x] Title !1 @2025-01-01" line format.
package markdown

import (
	"fmt"
	"io"
	"strings"

	"supertask/backend"
)

// FormatStatusChar converts completion to a markdown checkbox character.
func FormatStatusChar(completed bool) string {
	if completed {
		return "x"
	}
	return " "
}

// FormatTaskText formats a task as "Title !key @YYYY-MM-DD".
func FormatTaskText(task backend.Task, table backend.PriorityTable) string {
	parts := []string{task.Title}
	parts = append(parts, "!"+string(table.Lookup(task.Priority).Key))
	if task.Deadline != nil {
		parts = append(parts, "@"+backend.FormatDate(*task.Deadline))
	}
	return strings.Join(parts, " ")
}

// FormatTaskLine formats one checklist line without the trailing newline.
func FormatTaskLine(task backend.Task, table backend.PriorityTable) string {
	return fmt.Sprintf("- [%s] %s", FormatStatusChar(task.Completed), FormatTaskText(task, table))
}

// GroupByPriority buckets tasks by priority level, keeping store order inside
// each bucket. Unknown keys go to the level Lookup falls back to.
func GroupByPriority(tasks []backend.Task, table backend.PriorityTable) map[backend.Priority][]backend.Task {
	groups := make(map[backend.Priority][]backend.Task)
	for _, t := range tasks {
		key := table.Lookup(t.Priority).Key
		groups[key] = append(groups[key], t)
	}
	return groups
}

// Export writes title as a level one heading followed by one section per
// non-empty priority level, in table order.
func Export(w io.Writer, title string, tasks []backend.Task, table backend.PriorityTable) error {
	if len(table) == 0 {
		table = backend.DefaultPriorities()
	}

	var sb strings.Builder
	sb.WriteString("# " + title + "\n")

	if len(tasks) == 0 {
		sb.WriteString("\nNo tasks.\n")
	}

	groups := GroupByPriority(tasks, table)
	for _, level := range table {
		group := groups[level.Key]
		if len(group) == 0 {
			continue
		}
		sb.WriteString("\n## " + level.Name + "\n\n")
		for _, t := range group {
			sb.WriteString(FormatTaskLine(t, table))
			sb.WriteString("\n")
		}
	}

	_, err := io.WriteString(w, sb.String())
	return err
}
