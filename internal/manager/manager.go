// Package manager holds the in-memory task store and the command handlers
// that mutate it. Every mutation is validated first, applied in memory, then
// persisted; a failed save is reported but never rolled back.
package manager

import (
	"strings"
	"time"

	"supertask/backend"
	"supertask/internal/utils"
	"supertask/internal/views"
)

// Tracker records command invocations. *analytics.Tracker satisfies it.
type Tracker interface {
	TrackCommand(cmd string, flags []string, fn func() error) error
}

// Item is a task as shown in a listing. Number is the task's 1-based position
// in the store, which is what Complete and Remove accept.
type Item struct {
	Number int
	Task   backend.Task
	Status views.DeadlineStatus
}

// Result describes a successful mutation
type Result struct {
	Number           int
	Task             backend.Task
	AlreadyCompleted bool
	SaveErr          error // Non-nil when the change is only in memory
}

// Saved reports whether the mutation reached the task file
func (r Result) Saved() bool {
	return r.SaveErr == nil
}

// Stats summarizes the store
type Stats struct {
	Total      int
	Completed  int
	Pending    int
	ByPriority map[backend.Priority]int
}

// Option configures a Manager
type Option func(*Manager)

// WithTracker records every handler invocation through t
func WithTracker(t Tracker) Option {
	return func(m *Manager) {
		m.tracker = t
	}
}

// Manager owns the task store
type Manager struct {
	storage backend.Storage
	engine  *views.Engine
	tracker Tracker
	tasks   []backend.Task
	loadErr error
}

// New creates a manager and loads the store. A load failure leaves the store
// empty and is available from LoadErr; it never fails construction.
func New(storage backend.Storage, engine *views.Engine, opts ...Option) *Manager {
	if engine == nil {
		engine = views.NewEngine(nil)
	}
	m := &Manager{
		storage: storage,
		engine:  engine,
	}
	for _, opt := range opts {
		opt(m)
	}

	tasks, err := storage.Load()
	if err != nil {
		utils.Debugf("load %s failed, starting empty: %v", storage.Path(), err)
		m.loadErr = err
		tasks = []backend.Task{}
	}
	m.tasks = tasks
	return m
}

// LoadErr returns the error from the initial load, if any
func (m *Manager) LoadErr() error {
	return m.loadErr
}

// Reload replaces the in-memory tasks with what is currently stored. On
// failure the current tasks are kept.
func (m *Manager) Reload() error {
	tasks, err := m.storage.Load()
	if err != nil {
		utils.Debugf("reload %s failed, keeping %d task(s): %v", m.storage.Path(), len(m.tasks), err)
		return err
	}
	m.tasks = tasks
	m.loadErr = nil
	return nil
}

// Engine returns the query engine used for listings
func (m *Manager) Engine() *views.Engine {
	return m.engine
}

// Storage returns the backing store
func (m *Manager) Storage() backend.Storage {
	return m.storage
}

// Tasks returns a copy of the store in store order
func (m *Manager) Tasks() []backend.Task {
	return m.engine.Filter(m.tasks, views.FilterAll)
}

// Len returns the number of stored tasks
func (m *Manager) Len() int {
	return len(m.tasks)
}

func (m *Manager) track(cmd string, flags []string, fn func() error) error {
	if m.tracker == nil {
		return fn()
	}
	return m.tracker.TrackCommand(cmd, flags, fn)
}

// persist saves the store. Failures are logged and returned for the Result.
func (m *Manager) persist() error {
	if err := m.storage.Save(m.tasks); err != nil {
		utils.Debugf("save failed: %v", err)
		return err
	}
	return nil
}

// =============================================================================
// Mutations
// =============================================================================

// Add appends a task and saves. The title is trimmed and must not be empty;
// an empty priority means the default. deadline may be nil.
func (m *Manager) Add(title string, priority backend.Priority, deadline *time.Time) (Result, error) {
	var res Result
	err := m.track("add", addFlags(priority, deadline), func() error {
		title = strings.TrimSpace(title)
		if title == "" {
			return utils.NewEmptyTitleError()
		}
		if priority == "" {
			priority = backend.DefaultPriority
		}
		if !m.engine.Priorities().Has(priority) {
			return utils.ErrInvalidPriority(string(priority), priorityChoices(m.engine.Priorities()))
		}

		task := backend.Task{Title: title, Priority: priority}
		if deadline != nil {
			d := backend.DateOf(*deadline)
			task.Deadline = &d
		}

		m.tasks = append(m.tasks, task)
		res = Result{Number: len(m.tasks), Task: task}
		res.SaveErr = m.persist()
		return res.SaveErr
	})
	return res, validationOnly(err)
}

// Complete marks the task at the 1-based store position index as completed
// and saves. Completing an already completed task is not an error; it is
// saved again and flagged in the result.
func (m *Manager) Complete(index int) (Result, error) {
	var res Result
	err := m.track("complete", nil, func() error {
		if err := m.checkIndex(index); err != nil {
			return err
		}

		task := &m.tasks[index-1]
		res.AlreadyCompleted = task.Completed
		task.Completed = true
		res.Number = index
		res.Task = *task
		res.SaveErr = m.persist()
		return res.SaveErr
	})
	return res, validationOnly(err)
}

// Remove deletes the task at the 1-based store position index and saves.
// Later tasks shift down by one.
func (m *Manager) Remove(index int) (Result, error) {
	var res Result
	err := m.track("remove", nil, func() error {
		if err := m.checkIndex(index); err != nil {
			return err
		}

		removed := m.tasks[index-1]
		m.tasks = append(m.tasks[:index-1], m.tasks[index:]...)
		res.Number = index
		res.Task = removed
		res.SaveErr = m.persist()
		return res.SaveErr
	})
	return res, validationOnly(err)
}

func (m *Manager) checkIndex(index int) error {
	if index < 1 || index > len(m.tasks) {
		return utils.NewIndexOutOfRangeError(index, len(m.tasks))
	}
	return nil
}

// validationOnly drops persistence errors, which are carried in Result.SaveErr
func validationOnly(err error) error {
	if err == nil || utils.IsPersistence(err) {
		return nil
	}
	return err
}

// =============================================================================
// Queries
// =============================================================================

// List returns the tasks matching mode, sorted for display, with their
// deadline status relative to today.
func (m *Manager) List(mode views.FilterMode, today time.Time) []Item {
	var items []Item
	_ = m.track("list", []string{string(mode)}, func() error {
		positions := m.engine.SortPositions(m.tasks, m.engine.FilterPositions(m.tasks, mode))
		items = m.items(positions, today)
		return nil
	})
	return items
}

// Search returns tasks whose title contains term, in store order
func (m *Manager) Search(term string, today time.Time) []Item {
	var items []Item
	_ = m.track("search", nil, func() error {
		items = m.items(m.engine.SearchPositions(m.tasks, term), today)
		return nil
	})
	return items
}

// Query returns what an interactive view shows without recording usage.
// With a term it returns matches in store order limited to mode; otherwise
// it returns the listing for mode in display order.
func (m *Manager) Query(mode views.FilterMode, term string, today time.Time) []Item {
	if term == "" {
		return m.items(m.engine.SortPositions(m.tasks, m.engine.FilterPositions(m.tasks, mode)), today)
	}
	var positions []int
	for _, p := range m.engine.SearchPositions(m.tasks, term) {
		switch {
		case mode == views.FilterCompleted && !m.tasks[p].Completed:
		case mode == views.FilterPending && m.tasks[p].Completed:
		default:
			positions = append(positions, p)
		}
	}
	return m.items(positions, today)
}

// Stats counts tasks in total, by completion and by priority. Every priority
// in the table has an entry; stored keys outside the table are not counted
// under any priority.
func (m *Manager) Stats() Stats {
	var s Stats
	_ = m.track("stats", nil, func() error {
		s = Stats{ByPriority: make(map[backend.Priority]int)}
		for _, key := range m.engine.Priorities().Keys() {
			s.ByPriority[key] = 0
		}
		for _, t := range m.tasks {
			s.Total++
			if t.Completed {
				s.Completed++
			}
			if _, ok := s.ByPriority[t.Priority]; ok {
				s.ByPriority[t.Priority]++
			}
		}
		s.Pending = s.Total - s.Completed
		return nil
	})
	return s
}

// Items returns every task in store order. It is not tracked as a command.
func (m *Manager) Items(today time.Time) []Item {
	positions := make([]int, len(m.tasks))
	for i := range positions {
		positions[i] = i
	}
	return m.items(positions, today)
}

func (m *Manager) items(positions []int, today time.Time) []Item {
	items := make([]Item, 0, len(positions))
	for _, p := range positions {
		task := views.CopyTask(m.tasks[p])
		items = append(items, Item{
			Number: p + 1,
			Task:   task,
			Status: m.engine.DeadlineStatus(task, today),
		})
	}
	return items
}

// Lines converts items to renderer lines
func Lines(items []Item) []views.Line {
	lines := make([]views.Line, len(items))
	for i, it := range items {
		lines[i] = views.Line{Number: it.Number, Task: it.Task, Status: it.Status}
	}
	return lines
}

// ParseIndex parses a task number typed by the user
func ParseIndex(input string) (int, error) {
	return utils.ParseIndex(input)
}

// addFlags lists which optional add arguments were supplied
func addFlags(priority backend.Priority, deadline *time.Time) []string {
	var flags []string
	if priority != "" {
		flags = append(flags, "priority")
	}
	if deadline != nil {
		flags = append(flags, "deadline")
	}
	return flags
}

func priorityChoices(table backend.PriorityTable) []string {
	choices := make([]string, 0, len(table))
	for _, l := range table {
		choices = append(choices, string(l.Key)+" ("+l.Name+")")
	}
	return choices
}
