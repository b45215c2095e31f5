// Package tui provides a terminal user interface for task management.
package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"supertask/backend"
	"supertask/internal/manager"
	"supertask/internal/utils"
	"supertask/internal/views"
)

// Mode indicates the current input mode
type Mode int

const (
	ModeNormal Mode = iota
	ModeAddTitle
	ModeAddPriority
	ModeAddDeadline
	ModeSearch
	ModeHelp
	ModeConfirmDelete
)

// filterCycle is the order the f key steps through
var filterCycle = []views.FilterMode{views.FilterAll, views.FilterPending, views.FilterCompleted}

// Model represents the TUI state
type Model struct {
	mgr      *manager.Manager
	clock    func() time.Time
	renderer *views.Renderer

	// Data
	items  []manager.Item
	filter views.FilterMode
	search string

	cursor int

	// Mode and input
	mode      Mode
	textInput textinput.Model
	draft     backend.Task
	status    string

	// UI dimensions
	width  int
	height int

	// Styles
	paneStyle      lipgloss.Style
	selectedStyle  lipgloss.Style
	completedStyle lipgloss.Style
	helpStyle      lipgloss.Style
	dialogStyle    lipgloss.Style
	statusBarStyle lipgloss.Style
	errorStyle     lipgloss.Style
}

// New creates a new TUI model over mgr. clock supplies "today"; nil means time.Now.
func New(mgr *manager.Manager, clock func() time.Time) *Model {
	if clock == nil {
		clock = time.Now
	}

	ti := textinput.New()
	ti.Placeholder = "Enter text..."
	ti.CharLimit = 256

	m := &Model{
		mgr:       mgr,
		clock:     clock,
		renderer:  views.NewRenderer(mgr.Engine().Priorities(), true),
		filter:    views.FilterAll,
		textInput: ti,
		mode:      ModeNormal,
		paneStyle: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("240")).
			Padding(0, 1),
		selectedStyle: lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("212")),
		completedStyle: lipgloss.NewStyle().
			Strikethrough(true).
			Foreground(lipgloss.Color("240")),
		helpStyle: lipgloss.NewStyle().
			Foreground(lipgloss.Color("241")),
		dialogStyle: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("62")).
			Padding(1, 2),
		statusBarStyle: lipgloss.NewStyle().
			Background(lipgloss.Color("236")).
			Foreground(lipgloss.Color("252")).
			Padding(0, 1),
		errorStyle: lipgloss.NewStyle().
			Foreground(lipgloss.Color("9")),
	}
	if err := mgr.LoadErr(); err != nil {
		m.status = "Error loading tasks: " + err.Error()
	}
	m.refresh()
	return m
}

// ReloadMsg asks the model to reread the task file, typically because it
// changed on disk
type ReloadMsg struct{}

// Init initializes the TUI
func (m *Model) Init() tea.Cmd {
	return nil
}

// refresh rebuilds the visible items from the manager
func (m *Model) refresh() {
	m.items = m.mgr.Query(m.filter, m.search, m.clock())
	if m.cursor >= len(m.items) {
		m.cursor = len(m.items) - 1
	}
	if m.cursor < 0 {
		m.cursor = 0
	}
}

// selected returns the item under the cursor
func (m *Model) selected() (manager.Item, bool) {
	if len(m.items) == 0 || m.cursor >= len(m.items) {
		return manager.Item{}, false
	}
	return m.items[m.cursor], true
}

// report sets the status line from a mutation outcome
func (m *Model) report(done string, res manager.Result, err error) {
	switch {
	case err != nil:
		m.status = firstLine(err.Error())
	case res.SaveErr != nil:
		m.status = "Not saved: " + res.SaveErr.Error()
	default:
		m.status = done
	}
}

// firstLine drops the suggestion part of utils.ErrorWithSuggestion messages
func firstLine(s string) string {
	if i := strings.Index(s, "\n"); i >= 0 {
		return s[:i]
	}
	return s
}

func (m *Model) startInput(mode Mode, placeholder, value string) tea.Cmd {
	m.mode = mode
	m.textInput.Reset()
	m.textInput.Placeholder = placeholder
	m.textInput.SetValue(value)
	m.textInput.Focus()
	return textinput.Blink
}

// Update handles a message
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case ReloadMsg:
		if err := m.mgr.Reload(); err != nil {
			m.status = "Reload failed: " + firstLine(err.Error())
			return m, nil
		}
		m.refresh()
		return m, nil

	case tea.KeyMsg:
		switch m.mode {
		case ModeAddTitle, ModeAddPriority, ModeAddDeadline:
			return m.handleAddMode(msg)
		case ModeSearch:
			return m.handleSearchMode(msg)
		case ModeHelp:
			m.mode = ModeNormal
			return m, nil
		case ModeConfirmDelete:
			return m.handleConfirmDeleteMode(msg)
		}

		switch msg.String() {
		case "q", "ctrl+c":
			return m, tea.Quit

		case "up", "k":
			if m.cursor > 0 {
				m.cursor--
			}
			return m, nil

		case "down", "j":
			if m.cursor < len(m.items)-1 {
				m.cursor++
			}
			return m, nil

		case "a":
			m.draft = backend.Task{}
			m.status = ""
			return m, m.startInput(ModeAddTitle, "New task title...", "")

		case "c":
			if item, ok := m.selected(); ok {
				res, err := m.mgr.Complete(item.Number)
				done := "Completed: " + res.Task.Title
				if res.AlreadyCompleted {
					done = "Already completed: " + res.Task.Title
				}
				m.report(done, res, err)
				m.refresh()
			}
			return m, nil

		case "d":
			if _, ok := m.selected(); ok {
				m.mode = ModeConfirmDelete
			}
			return m, nil

		case "f":
			m.filter = nextFilter(m.filter)
			m.cursor = 0
			m.refresh()
			return m, nil

		case "/":
			return m, m.startInput(ModeSearch, "Search...", m.search)

		case "?":
			m.mode = ModeHelp
			return m, nil
		}
	}

	if m.mode == ModeAddTitle || m.mode == ModeAddPriority || m.mode == ModeAddDeadline || m.mode == ModeSearch {
		var cmd tea.Cmd
		m.textInput, cmd = m.textInput.Update(msg)
		return m, cmd
	}

	return m, nil
}

func nextFilter(current views.FilterMode) views.FilterMode {
	for i, f := range filterCycle {
		if f == current {
			return filterCycle[(i+1)%len(filterCycle)]
		}
	}
	return views.FilterAll
}

// handleAddMode steps through title, priority and deadline
func (m *Model) handleAddMode(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEsc:
		m.mode = ModeNormal
		m.status = "Add cancelled"
		return m, nil

	case tea.KeyEnter:
		value := strings.TrimSpace(m.textInput.Value())
		switch m.mode {
		case ModeAddTitle:
			if value == "" {
				m.mode = ModeNormal
				m.status = "Title cannot be empty"
				return m, nil
			}
			m.draft.Title = value
			return m, m.startInput(ModeAddPriority, "1, 2 or 3 (Enter for 2)", "")

		case ModeAddPriority:
			p, err := utils.ParsePriority(value, m.mgr.Engine().Priorities())
			if err != nil {
				m.status = firstLine(err.Error())
				m.textInput.Reset()
				return m, nil
			}
			m.draft.Priority = p
			return m, m.startInput(ModeAddDeadline, "YYYY-MM-DD (Enter for none)", "")

		case ModeAddDeadline:
			deadline, err := utils.ParseDateFlag(value)
			if err != nil {
				m.status = firstLine(err.Error())
				m.textInput.Reset()
				return m, nil
			}
			m.mode = ModeNormal
			res, err := m.mgr.Add(m.draft.Title, m.draft.Priority, deadline)
			m.report("Added: "+res.Task.Title, res, err)
			m.refresh()
			return m, nil
		}
	}

	var cmd tea.Cmd
	m.textInput, cmd = m.textInput.Update(msg)
	return m, cmd
}

func (m *Model) handleSearchMode(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEnter:
		m.search = strings.TrimSpace(m.textInput.Value())
		m.mode = ModeNormal
		m.cursor = 0
		m.refresh()
		return m, nil

	case tea.KeyEsc:
		m.search = ""
		m.mode = ModeNormal
		m.refresh()
		return m, nil
	}

	var cmd tea.Cmd
	m.textInput, cmd = m.textInput.Update(msg)
	return m, cmd
}

func (m *Model) handleConfirmDeleteMode(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "y", "Y":
		if item, ok := m.selected(); ok {
			res, err := m.mgr.Remove(item.Number)
			m.report("Removed: "+res.Task.Title, res, err)
			m.refresh()
		}
		m.mode = ModeNormal
		return m, nil

	case "n", "N", "esc":
		m.mode = ModeNormal
		return m, nil
	}

	return m, nil
}

// View renders the TUI
func (m *Model) View() string {
	if m.width == 0 || m.height == 0 {
		m.width = 80
		m.height = 24
	}

	switch m.mode {
	case ModeAddTitle, ModeAddPriority, ModeAddDeadline:
		return m.renderAddDialog()
	case ModeSearch:
		return m.renderSearchDialog()
	case ModeHelp:
		return m.renderHelpDialog()
	case ModeConfirmDelete:
		return m.renderConfirmDeleteDialog()
	}

	pane := m.paneStyle.Width(m.width - 2).Height(m.height - 4).Render(m.renderTaskPane(m.width - 6))
	return pane + "\n" + m.renderStatusBar()
}

func (m *Model) renderTaskPane(width int) string {
	var b strings.Builder
	b.WriteString("Tasks (" + string(m.filter) + ")\n")
	if width > 0 {
		b.WriteString(strings.Repeat("─", width))
	}
	b.WriteString("\n")

	if len(m.items) == 0 {
		b.WriteString("No tasks\n")
		return b.String()
	}

	for i, it := range m.items {
		cursor := " "
		title := it.Task.Title
		switch {
		case it.Task.Completed:
			title = m.completedStyle.Render(title)
		case i == m.cursor:
			title = m.selectedStyle.Render(title)
		}
		if i == m.cursor {
			cursor = ">"
		}

		_, _ = fmt.Fprintf(&b, "%s %d. %s %s %s%s\n",
			cursor,
			it.Number,
			m.renderer.CheckBox(it.Task.Completed),
			m.renderer.PriorityLabel(it.Task.Priority),
			title,
			m.renderer.DeadlineSuffix(it.Task, it.Status),
		)
	}

	return b.String()
}

func (m *Model) renderStatusBar() string {
	left := m.status
	right := "q:quit  ?:help"
	if m.search != "" {
		right = "Search: " + m.search + "  " + right
	}

	padding := m.width - lipgloss.Width(left) - lipgloss.Width(right) - 2
	if padding < 1 {
		padding = 1
	}

	return m.statusBarStyle.Width(m.width).Render(left + strings.Repeat(" ", padding) + right)
}

func (m *Model) renderAddDialog() string {
	var step string
	switch m.mode {
	case ModeAddTitle:
		step = "Title"
	case ModeAddPriority:
		step = "Priority for: " + m.draft.Title
	case ModeAddDeadline:
		step = "Deadline for: " + m.draft.Title
	}

	body := "Add New Task\n" + step + "\n\n" + m.textInput.View() + "\n\n"
	if m.status != "" && m.mode != ModeAddTitle {
		body += m.errorStyle.Render(m.status) + "\n"
	}
	body += m.helpStyle.Render("Enter: confirm  Esc: cancel")
	return m.centerDialog(m.dialogStyle.Render(body))
}

func (m *Model) renderSearchDialog() string {
	dialog := m.dialogStyle.Render(
		"Search Tasks\n\n" +
			m.textInput.View() + "\n\n" +
			m.helpStyle.Render("Enter: search  Esc: clear"),
	)
	return m.centerDialog(dialog)
}

func (m *Model) renderHelpDialog() string {
	help := `Help - Key Bindings

Navigation:
  j/↓    Move down
  k/↑    Move up

Actions:
  a      Add new task
  c      Complete task
  d      Remove task (with confirm)
  f      Cycle filter: all, pending, completed
  /      Search tasks

General:
  ?      Show this help
  q      Quit

Press any key to close`

	return m.centerDialog(m.dialogStyle.Render(help))
}

func (m *Model) renderConfirmDeleteDialog() string {
	title := "Remove selected task?"
	if item, ok := m.selected(); ok {
		title = "Remove '" + item.Task.Title + "'?"
	}
	dialog := m.dialogStyle.Render(
		title + "\n\n" +
			m.helpStyle.Render("y: yes  n: no"),
	)
	return m.centerDialog(dialog)
}

func (m *Model) centerDialog(dialog string) string {
	return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, dialog)
}
