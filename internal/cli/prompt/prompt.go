// Package prompt implements the interactive question flows shared by the
// menu and the add command: collecting a new task's fields and asking for a
// task number.
package prompt

import (
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"supertask/backend"
	"supertask/internal/utils"
)

// ErrNoPromptMode is returned when prompting is not allowed
var ErrNoPromptMode = errors.New("interactive prompts disabled")

// AddFields holds the values collected during interactive add
type AddFields struct {
	Title    string
	Priority backend.Priority
	Deadline *time.Time
	// DeadlineRejected is set when a deadline was typed but could not be
	// parsed; the task is then added without one.
	DeadlineRejected string
}

// InteractiveAdder asks for title, priority and an optional deadline
type InteractiveAdder struct {
	Prompter   *utils.Prompter
	Writer     io.Writer
	Priorities backend.PriorityTable
	NoPrompt   bool
}

// Run executes the add prompts. An empty title is a validation error. A blank
// priority means the default; unknown priorities are asked again. A malformed
// deadline is reported and dropped rather than failing the add.
func (a *InteractiveAdder) Run() (*AddFields, error) {
	if a.NoPrompt {
		return nil, ErrNoPromptMode
	}

	writer := a.Writer
	if writer == nil {
		writer = io.Discard
	}
	table := a.Priorities
	if len(table) == 0 {
		table = backend.DefaultPriorities()
	}

	fields := &AddFields{}

	title, err := a.Prompter.ReadString("Task title: ")
	if err != nil {
		return nil, err
	}
	if title == "" {
		return nil, utils.NewEmptyTitleError()
	}
	fields.Title = title

	for {
		input, err := a.Prompter.ReadString(fmt.Sprintf("Priority (%s): ", priorityHint(table)))
		if err != nil {
			return nil, err
		}
		p, err := utils.ParsePriority(input, table)
		if err != nil {
			_, _ = fmt.Fprintf(writer, "Invalid priority %q.\n", input)
			continue
		}
		fields.Priority = p
		break
	}

	wantDeadline, err := a.Prompter.ReadYesNo("Add deadline?")
	if err != nil {
		return nil, err
	}
	if wantDeadline {
		input, err := a.Prompter.ReadString("Date (YYYY-MM-DD): ")
		if err != nil {
			return nil, err
		}
		deadline, err := utils.ParseDateFlag(input)
		if err != nil {
			_, _ = fmt.Fprintln(writer, "Invalid date format! The task will be added without a deadline.")
			fields.DeadlineRejected = input
		} else {
			fields.Deadline = deadline
		}
	}

	return fields, nil
}

// priorityHint renders "1-High, 2-Medium, 3-Low"
func priorityHint(table backend.PriorityTable) string {
	parts := make([]string, 0, len(table))
	for _, l := range table {
		parts = append(parts, string(l.Key)+"-"+l.Name)
	}
	return strings.Join(parts, ", ")
}

// NumberPrompt asks for a task number for an action such as "complete"
type NumberPrompt struct {
	Prompter *utils.Prompter
	Action   string
	NoPrompt bool
}

// Run reads one number. Non-numeric input is a validation error wrapping
// utils.ErrNotANumber; the range is checked by the command handler.
func (p *NumberPrompt) Run() (int, error) {
	if p.NoPrompt {
		return 0, ErrNoPromptMode
	}

	input, err := p.Prompter.ReadString(fmt.Sprintf("Task number to %s: ", p.Action))
	if err != nil {
		return 0, err
	}
	return utils.ParseIndex(input)
}
