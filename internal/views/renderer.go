package views

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"supertask/backend"
)

// Line is one numbered row of a task listing
type Line struct {
	Number int
	Task   backend.Task
	Status DeadlineStatus
}

// Renderer formats task listings as text, optionally colored
type Renderer struct {
	priorities backend.PriorityTable
	color      bool

	doneStyle     lipgloss.Style
	pendingStyle  lipgloss.Style
	deadlineStyle lipgloss.Style
	overdueStyle  lipgloss.Style
	todayStyle    lipgloss.Style
}

// NewRenderer creates a renderer. When color is false no escape codes are emitted.
func NewRenderer(priorities backend.PriorityTable, color bool) *Renderer {
	if len(priorities) == 0 {
		priorities = backend.DefaultPriorities()
	}
	return &Renderer{
		priorities:    priorities,
		color:         color,
		doneStyle:     lipgloss.NewStyle().Foreground(lipgloss.Color("10")),
		pendingStyle:  lipgloss.NewStyle().Foreground(lipgloss.Color("9")),
		deadlineStyle: lipgloss.NewStyle().Foreground(lipgloss.Color("12")),
		overdueStyle:  lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("9")),
		todayStyle:    lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("11")),
	}
}

func (r *Renderer) paint(style lipgloss.Style, s string) string {
	if !r.color {
		return s
	}
	return style.Render(s)
}

// PriorityLabel returns "[Name]" for the task's priority, falling back to
// the default level for unknown keys.
func (r *Renderer) PriorityLabel(p backend.Priority) string {
	level := r.priorities.Lookup(p)
	label := "[" + level.Name + "]"
	if level.Color == "" {
		return label
	}
	return r.paint(lipgloss.NewStyle().Foreground(lipgloss.Color(level.Color)), label)
}

// CheckBox returns the completion marker for a task
func (r *Renderer) CheckBox(completed bool) string {
	if completed {
		return r.paint(r.doneStyle, "[✓]")
	}
	return r.paint(r.pendingStyle, "[ ]")
}

// DeadlineSuffix returns " (Deadline: YYYY-MM-DD ...)" or "" when there is none
func (r *Renderer) DeadlineSuffix(task backend.Task, status DeadlineStatus) string {
	if task.Deadline == nil {
		return ""
	}

	var b strings.Builder
	b.WriteString(r.paint(r.deadlineStyle, " (Deadline: "+backend.FormatDate(*task.Deadline)))
	switch status.Kind {
	case DeadlineOverdue:
		b.WriteString(" " + r.paint(r.overdueStyle, "[OVERDUE]"))
	case DeadlineDueToday:
		b.WriteString(" " + r.paint(r.todayStyle, "[TODAY]"))
	case DeadlineUpcoming:
		b.WriteString(fmt.Sprintf(", %dd", status.DaysLeft))
	}
	b.WriteString(r.paint(r.deadlineStyle, ")"))
	return b.String()
}

// FormatLine renders "N. [ ] [High] Title (Deadline: ...)"
func (r *Renderer) FormatLine(l Line) string {
	return fmt.Sprintf("%d. %s %s %s%s",
		l.Number,
		r.CheckBox(l.Task.Completed),
		r.PriorityLabel(l.Task.Priority),
		l.Task.Title,
		r.DeadlineSuffix(l.Task, l.Status),
	)
}

// Render writes each line followed by a newline
func (r *Renderer) Render(w io.Writer, lines []Line) {
	for _, l := range lines {
		_, _ = fmt.Fprintln(w, r.FormatLine(l))
	}
}
