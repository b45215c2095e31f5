// Package menu runs the numbered interactive menu on top of the command
// handlers. Each choice runs one handler and returns to the menu; nothing
// short of exit or end of input leaves the loop.
package menu

import (
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/charmbracelet/lipgloss"

	"supertask/internal/cli/prompt"
	"supertask/internal/manager"
	"supertask/internal/utils"
	"supertask/internal/views"
)

// Menu is one interactive session
type Menu struct {
	mgr      *manager.Manager
	prompter *utils.Prompter
	out      io.Writer
	renderer *views.Renderer
	clock    func() time.Time
	color    bool

	titleStyle   lipgloss.Style
	successStyle lipgloss.Style
	warnStyle    lipgloss.Style
	errorStyle   lipgloss.Style
}

// Option configures a Menu
type Option func(*Menu)

// WithClock sets the source of "today" for deadline status
func WithClock(clock func() time.Time) Option {
	return func(m *Menu) {
		m.clock = clock
	}
}

// WithColor enables ANSI colors in menu output
func WithColor(color bool) Option {
	return func(m *Menu) {
		m.color = color
	}
}

// New creates a menu reading answers from in and writing to out
func New(mgr *manager.Manager, in io.Reader, out io.Writer, opts ...Option) *Menu {
	m := &Menu{
		mgr:          mgr,
		prompter:     utils.NewPrompter(in, out),
		out:          out,
		clock:        time.Now,
		titleStyle:   lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12")),
		successStyle: lipgloss.NewStyle().Foreground(lipgloss.Color("10")),
		warnStyle:    lipgloss.NewStyle().Foreground(lipgloss.Color("11")),
		errorStyle:   lipgloss.NewStyle().Foreground(lipgloss.Color("9")),
	}
	for _, opt := range opts {
		opt(m)
	}
	m.renderer = views.NewRenderer(mgr.Engine().Priorities(), m.color)
	return m
}

func (m *Menu) paint(style lipgloss.Style, s string) string {
	if !m.color {
		return s
	}
	return style.Render(s)
}

func (m *Menu) println(style lipgloss.Style, format string, args ...interface{}) {
	_, _ = fmt.Fprintln(m.out, m.paint(style, fmt.Sprintf(format, args...)))
}

const menuText = `1. Add task
2. List all
3. List completed
4. List pending
5. Search tasks
6. Complete task
7. Remove task
8. Statistics
9. Exit`

// Run shows the menu until the user exits or input ends
func (m *Menu) Run() error {
	if err := m.mgr.LoadErr(); err != nil {
		m.println(m.errorStyle, "Error loading tasks: %v", err)
	}

	for {
		_, _ = fmt.Fprintln(m.out)
		m.println(m.titleStyle, "--- SUPER TASK MANAGER ---")
		_, _ = fmt.Fprintln(m.out, menuText)

		choice, err := m.prompter.ReadString("Choice: ")
		if err != nil {
			return endOfInput(err)
		}

		switch choice {
		case "1":
			err = m.add()
		case "2":
			m.list(views.FilterAll)
		case "3":
			m.list(views.FilterCompleted)
		case "4":
			m.list(views.FilterPending)
		case "5":
			err = m.search()
		case "6":
			err = m.manage("complete")
		case "7":
			err = m.manage("remove")
		case "8":
			m.stats()
		case "9":
			m.println(m.titleStyle, "Goodbye! 👋")
			return nil
		default:
			m.println(m.errorStyle, "Invalid option!")
		}

		if err != nil {
			return endOfInput(err)
		}
	}
}

// endOfInput turns an exhausted reader into a clean exit
func endOfInput(err error) error {
	if errors.Is(err, utils.ErrNoInput) {
		return nil
	}
	return err
}

// reportSave warns when a mutation could not be written
func (m *Menu) reportSave(res manager.Result) {
	if res.SaveErr != nil {
		m.println(m.errorStyle, "Error saving tasks: %v", res.SaveErr)
	}
}

func (m *Menu) add() error {
	adder := &prompt.InteractiveAdder{
		Prompter:   m.prompter,
		Writer:     m.out,
		Priorities: m.mgr.Engine().Priorities(),
	}
	fields, err := adder.Run()
	if err != nil {
		if utils.IsValidation(err) {
			m.println(m.warnStyle, "Title cannot be empty!")
			return nil
		}
		return err
	}

	res, err := m.mgr.Add(fields.Title, fields.Priority, fields.Deadline)
	if err != nil {
		m.println(m.warnStyle, "%v", err)
		return nil
	}
	m.reportSave(res)
	m.println(m.successStyle, "✓ Task added!")
	return nil
}

func (m *Menu) render(items []manager.Item) {
	if len(items) == 0 {
		m.println(m.warnStyle, "No tasks found.")
		return
	}
	m.renderer.Render(m.out, manager.Lines(items))
}

func (m *Menu) list(mode views.FilterMode) {
	m.render(m.mgr.List(mode, m.clock()))
}

func (m *Menu) search() error {
	term, err := m.prompter.ReadString("Search term: ")
	if err != nil {
		return err
	}
	m.render(m.mgr.Search(term, m.clock()))
	return nil
}

// manage shows the store in store order and applies action to the chosen task
func (m *Menu) manage(action string) error {
	m.render(m.mgr.Items(m.clock()))

	number := &prompt.NumberPrompt{Prompter: m.prompter, Action: action}
	index, err := number.Run()
	if err != nil {
		if utils.IsValidation(err) {
			m.println(m.errorStyle, "Please enter a valid number.")
			return nil
		}
		return err
	}

	var res manager.Result
	if action == "complete" {
		res, err = m.mgr.Complete(index)
	} else {
		res, err = m.mgr.Remove(index)
	}
	if err != nil {
		m.println(m.warnStyle, "Invalid number.")
		return nil
	}

	m.reportSave(res)
	if action == "complete" {
		m.println(m.successStyle, "✓ Task completed!")
	} else {
		m.println(m.successStyle, "✗ Task '%s' removed!", res.Task.Title)
	}
	return nil
}

func (m *Menu) stats() {
	s := m.mgr.Stats()

	_, _ = fmt.Fprintln(m.out)
	m.println(m.titleStyle, "📊 Statistics:")
	_, _ = fmt.Fprintf(m.out, "• Total: %d tasks\n", s.Total)
	m.println(m.successStyle, "• Completed: %d", s.Completed)
	m.println(m.errorStyle, "• Pending: %d", s.Pending)
	for _, level := range m.mgr.Engine().Priorities() {
		style := lipgloss.NewStyle().Foreground(lipgloss.Color(level.Color))
		m.println(style, "• %s: %d", level.Name, s.ByPriority[level.Key])
	}
}
