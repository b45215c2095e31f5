package cmd

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"supertask/backend"
	"supertask/backend/file"
	"supertask/internal/analytics"
	"supertask/internal/cli/prompt"
	"supertask/internal/config"
	"supertask/internal/manager"
	"supertask/internal/markdown"
	"supertask/internal/menu"
	"supertask/internal/shutdown"
	"supertask/internal/tui"
	"supertask/internal/utils"
	"supertask/internal/views"
	"supertask/internal/watcher"
)

// Version is set at build time
var Version = "dev"

// Result codes for JSON output
const (
	ResultActionCompleted = "ACTION_COMPLETED"
	ResultInfoOnly        = "INFO_ONLY"
	ResultError           = "ERROR"
)

// Config holds process-level settings that are not read from the config file
type Config struct {
	NoPrompt   bool             // Never read answers from stdin
	ConfigPath string           // Config file (default: XDG path); --config wins
	TaskFile   string           // Task file override; --file wins
	Stdin      io.Reader        // Input for the menu and interactive add (default os.Stdin)
	Now        func() time.Time // Clock for deadlines and backup names (default time.Now)
}

// Execute runs the CLI with the given arguments and IO writers
func Execute(args []string, stdout, stderr io.Writer, cfg *Config) int {
	rootCmd := NewSuperTask(stdout, stderr, cfg)

	rootCmd.SetArgs(args)
	rootCmd.SetOut(stdout)
	rootCmd.SetErr(stderr)
	if cfg != nil && cfg.Stdin != nil {
		rootCmd.SetIn(cfg.Stdin)
	}

	if err := rootCmd.Execute(); err != nil {
		if containsJSONFlag(args) {
			outputErrorJSON(err, stdout)
		} else {
			_, _ = fmt.Fprintln(stderr, "Error:", err)
		}
		return 1
	}
	return 0
}

// containsJSONFlag checks if args contain --json flag
func containsJSONFlag(args []string) bool {
	for _, arg := range args {
		if arg == "--json" {
			return true
		}
	}
	return false
}

// NewSuperTask creates the root command with injectable IO
func NewSuperTask(stdout, stderr io.Writer, cfg *Config) *cobra.Command {
	if cfg == nil {
		cfg = &Config{}
	}

	cmd := &cobra.Command{
		Use:     "supertask",
		Short:   "A personal task tracker",
		Long:    "supertask keeps a prioritized task list with deadlines in a local JSON file.\nRun without a command for the interactive menu.",
		Version: Version,
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := setup(cmd, cfg, stderr)
			if err != nil {
				return err
			}
			defer a.close()

			a.setSurface("menu")
			stop := a.cleanup.HandleSignals(func(os.Signal) {
				_, _ = fmt.Fprintln(stdout)
				os.Exit(130)
			}, os.Interrupt, syscall.SIGTERM)
			defer stop()

			m := menu.New(a.mgr, cmd.InOrStdin(), stdout, menu.WithClock(a.now), menu.WithColor(a.color))
			return m.Run()
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.PersistentFlags().String("config", "", "Path to config file")
	cmd.PersistentFlags().StringP("file", "f", "", "Task file (overrides storage.file)")
	cmd.PersistentFlags().String("backup-dir", "", "Backup directory (overrides storage.backup_dir)")
	cmd.PersistentFlags().BoolP("verbose", "V", false, "Enable verbose/debug output")
	cmd.PersistentFlags().Bool("json", false, "Output in JSON format")
	cmd.PersistentFlags().Bool("no-color", false, "Disable colored output")

	cmd.AddCommand(newAddCmd(stdout, stderr, cfg))
	cmd.AddCommand(newListCmd(stdout, stderr, cfg))
	cmd.AddCommand(newSearchCmd(stdout, stderr, cfg))
	cmd.AddCommand(newCompleteCmd(stdout, stderr, cfg))
	cmd.AddCommand(newRemoveCmd(stdout, stderr, cfg))
	cmd.AddCommand(newStatsCmd(stdout, stderr, cfg))
	cmd.AddCommand(newBackupsCmd(stdout, stderr, cfg))
	cmd.AddCommand(newExportCmd(stdout, stderr, cfg))
	cmd.AddCommand(newAnalyticsCmd(stdout, stderr, cfg))
	cmd.AddCommand(newTUICmd(stdout, stderr, cfg))
	cmd.AddCommand(newVersionCmd(stdout))

	return cmd
}

// =============================================================================
// Application wiring
// =============================================================================

// app is everything a command needs, built from config and flags
type app struct {
	settings *config.Config
	storage  *file.Backend
	mgr      *manager.Manager
	tracker  *analytics.Tracker
	cleanup  *shutdown.Manager
	renderer *views.Renderer
	color    bool
	json     bool
	now      func() time.Time
}

func (a *app) close() {
	if err := a.cleanup.Close(); err != nil {
		utils.Debugf("cleanup: %v", err)
	}
}

func (a *app) setSurface(surface string) {
	if a.tracker != nil {
		a.tracker.SetSurface(surface)
	}
}

// setup loads configuration, opens the task file and builds the manager.
// Load problems are reported on stderr and never stop the command.
func setup(cmd *cobra.Command, cfg *Config, stderr io.Writer) (*app, error) {
	configPath, _ := cmd.Flags().GetString("config")
	if configPath == "" {
		configPath = cfg.ConfigPath
	}
	filePath, _ := cmd.Flags().GetString("file")
	if filePath == "" {
		filePath = cfg.TaskFile
	}
	backupDir, _ := cmd.Flags().GetString("backup-dir")
	verbose, _ := cmd.Flags().GetBool("verbose")
	noColor, _ := cmd.Flags().GetBool("no-color")
	jsonOutput, _ := cmd.Flags().GetBool("json")

	settings, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}
	settings.ApplyFlags(filePath, backupDir, verbose, noColor)
	if err := settings.Validate(); err != nil {
		return nil, utils.WrapWithSuggestion(err, "Fix the config file at "+displayConfigPath(configPath))
	}

	utils.SetOutput(stderr)
	utils.SetVerboseMode(settings.Logging.Verbose)

	now := cfg.Now
	if now == nil {
		now = time.Now
	}

	storage, err := file.New(file.Config{
		FilePath:  settings.Storage.File,
		BackupDir: settings.Storage.BackupDir,
		Clock:     now,
	})
	if err != nil {
		return nil, err
	}

	a := &app{
		settings: settings,
		storage:  storage,
		cleanup:  shutdown.NewManager(),
		json:     jsonOutput,
		now:      now,
		color:    useColor(settings.UI.Color, cmd.OutOrStdout()),
	}

	var opts []manager.Option
	if analytics.IsEnabledFromEnv(settings.IsAnalyticsEnabled()) {
		tracker, err := analytics.NewTracker(settings.Analytics.Path, true)
		if err != nil {
			utils.Debugf("analytics disabled: %v", err)
		} else {
			if _, err := tracker.Cleanup(settings.GetAnalyticsRetentionDays()); err != nil {
				utils.Debugf("analytics cleanup failed: %v", err)
			}
			a.tracker = tracker
			a.cleanup.RegisterCleanup("analytics", func(context.Context) error {
				return tracker.Close()
			})
			opts = append(opts, manager.WithTracker(tracker))
		}
	}

	engine := views.NewEngine(settings.PriorityTable())
	a.mgr = manager.New(storage, engine, opts...)
	a.renderer = views.NewRenderer(engine.Priorities(), a.color)

	if err := a.mgr.LoadErr(); err != nil {
		_, _ = fmt.Fprintf(stderr, "Warning: could not load tasks, starting with an empty list: %v\n", err)
	}
	for _, skipped := range storage.LastLoadReport().Skipped {
		_, _ = fmt.Fprintf(stderr, "Warning: skipped task #%d in %s: %s\n", skipped.Position, storage.Path(), skipped.Reason)
	}

	return a, nil
}

func displayConfigPath(path string) string {
	if path == "" {
		return config.DefaultPath()
	}
	return path
}

// useColor resolves ui.color against the output writer
func useColor(mode string, out io.Writer) bool {
	switch mode {
	case config.ColorAlways:
		return true
	case config.ColorNever:
		return false
	}
	if os.Getenv("NO_COLOR") != "" {
		return false
	}
	f, ok := out.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

// warnSave reports a save failure; the change stays applied in memory only
func warnSave(stderr io.Writer, res manager.Result) {
	if res.SaveErr != nil {
		_, _ = fmt.Fprintf(stderr, "Warning: change not saved: %v\n", res.SaveErr)
	}
}

// =============================================================================
// Commands
// =============================================================================

func newAddCmd(stdout, stderr io.Writer, cfg *Config) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "add [title]",
		Short: "Add a task",
		Long:  "Add a task. Without a title the fields are asked for interactively.",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := setup(cmd, cfg, stderr)
			if err != nil {
				return err
			}
			defer a.close()

			priorityFlag, _ := cmd.Flags().GetString("priority")
			deadlineFlag, _ := cmd.Flags().GetString("deadline")

			var title string
			var priority backend.Priority
			var deadline *time.Time

			if len(args) == 0 {
				adder := &prompt.InteractiveAdder{
					Prompter:   utils.NewPrompter(cmd.InOrStdin(), stdout),
					Writer:     stdout,
					Priorities: a.mgr.Engine().Priorities(),
					NoPrompt:   cfg.NoPrompt || a.json,
				}
				fields, err := adder.Run()
				if errors.Is(err, prompt.ErrNoPromptMode) || errors.Is(err, utils.ErrNoInput) {
					return utils.NewEmptyTitleError()
				}
				if err != nil {
					return err
				}
				title, priority, deadline = fields.Title, fields.Priority, fields.Deadline
			} else {
				title = strings.Join(args, " ")
				priority, err = utils.ParsePriority(priorityFlag, a.mgr.Engine().Priorities())
				if err != nil {
					return err
				}
				deadline, err = utils.ParseDateFlag(deadlineFlag)
				if err != nil {
					return err
				}
			}

			res, err := a.mgr.Add(title, priority, deadline)
			if err != nil {
				return err
			}
			warnSave(stderr, res)

			if a.json {
				return outputActionJSON("add", res, a, stdout)
			}
			_, _ = fmt.Fprintf(stdout, "✓ Task added: %s (#%d)\n", res.Task.Title, res.Number)
			return nil
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.Flags().StringP("priority", "p", "", "Priority: 1, 2, 3 or a level name such as high (default 2)")
	cmd.Flags().StringP("deadline", "d", "", "Deadline in YYYY-MM-DD format")
	return cmd
}

func newListCmd(stdout, stderr io.Writer, cfg *Config) *cobra.Command {
	return &cobra.Command{
		Use:       "list [all|completed|pending]",
		Short:     "List tasks by priority and deadline",
		Args:      cobra.MaximumNArgs(1),
		ValidArgs: []string{"all", "completed", "pending"},
		RunE: func(cmd *cobra.Command, args []string) error {
			mode := views.FilterAll
			if len(args) == 1 {
				var err error
				mode, err = views.ParseFilterMode(args[0])
				if err != nil {
					return err
				}
			}

			a, err := setup(cmd, cfg, stderr)
			if err != nil {
				return err
			}
			defer a.close()

			items := a.mgr.List(mode, a.now())
			if a.json {
				return outputItemsJSON(items, string(mode), "", a, stdout)
			}
			printItems(items, a, stdout)
			return nil
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}
}

func newSearchCmd(stdout, stderr io.Writer, cfg *Config) *cobra.Command {
	return &cobra.Command{
		Use:   "search <term>",
		Short: "Find tasks whose title contains term",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := setup(cmd, cfg, stderr)
			if err != nil {
				return err
			}
			defer a.close()

			term := strings.Join(args, " ")
			items := a.mgr.Search(term, a.now())
			if a.json {
				return outputItemsJSON(items, "", term, a, stdout)
			}
			printItems(items, a, stdout)
			return nil
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}
}

func newCompleteCmd(stdout, stderr io.Writer, cfg *Config) *cobra.Command {
	return &cobra.Command{
		Use:   "complete <number>",
		Short: "Mark a task as completed",
		Long:  "Mark a task as completed. The number is the one shown by list and search.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			index, err := manager.ParseIndex(args[0])
			if err != nil {
				return err
			}

			a, err := setup(cmd, cfg, stderr)
			if err != nil {
				return err
			}
			defer a.close()

			res, err := a.mgr.Complete(index)
			if err != nil {
				return err
			}
			warnSave(stderr, res)

			if a.json {
				return outputActionJSON("complete", res, a, stdout)
			}
			if res.AlreadyCompleted {
				_, _ = fmt.Fprintf(stdout, "Task already completed: %s\n", res.Task.Title)
			} else {
				_, _ = fmt.Fprintf(stdout, "✓ Task completed: %s\n", res.Task.Title)
			}
			return nil
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}
}

func newRemoveCmd(stdout, stderr io.Writer, cfg *Config) *cobra.Command {
	return &cobra.Command{
		Use:     "remove <number>",
		Aliases: []string{"rm"},
		Short:   "Remove a task",
		Long:    "Remove a task. The number is the one shown by list and search; later tasks move up by one.",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			index, err := manager.ParseIndex(args[0])
			if err != nil {
				return err
			}

			a, err := setup(cmd, cfg, stderr)
			if err != nil {
				return err
			}
			defer a.close()

			res, err := a.mgr.Remove(index)
			if err != nil {
				return err
			}
			warnSave(stderr, res)

			if a.json {
				return outputActionJSON("remove", res, a, stdout)
			}
			_, _ = fmt.Fprintf(stdout, "✗ Task '%s' removed\n", res.Task.Title)
			return nil
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}
}

func newStatsCmd(stdout, stderr io.Writer, cfg *Config) *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Show task statistics",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := setup(cmd, cfg, stderr)
			if err != nil {
				return err
			}
			defer a.close()

			s := a.mgr.Stats()
			table := a.mgr.Engine().Priorities()
			if a.json {
				return outputStatsJSON(s, table, stdout)
			}

			_, _ = fmt.Fprintf(stdout, "Total: %d\n", s.Total)
			_, _ = fmt.Fprintf(stdout, "Completed: %d\n", s.Completed)
			_, _ = fmt.Fprintf(stdout, "Pending: %d\n", s.Pending)
			for _, level := range table {
				_, _ = fmt.Fprintf(stdout, "%s: %d\n", level.Name, s.ByPriority[level.Key])
			}
			return nil
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}
}

func newBackupsCmd(stdout, stderr io.Writer, cfg *Config) *cobra.Command {
	return &cobra.Command{
		Use:   "backups",
		Short: "List backups of the task file, oldest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := setup(cmd, cfg, stderr)
			if err != nil {
				return err
			}
			defer a.close()

			backups, err := a.storage.Backups()
			if err != nil {
				return err
			}
			if a.json {
				if backups == nil {
					backups = []string{}
				}
				return writeJSON(stdout, backupsResponse{
					Dir:     a.storage.BackupDir(),
					Backups: backups,
					Count:   len(backups),
					Result:  ResultInfoOnly,
				})
			}
			if len(backups) == 0 {
				_, _ = fmt.Fprintf(stdout, "No backups in %s\n", a.storage.BackupDir())
				return nil
			}
			for _, b := range backups {
				_, _ = fmt.Fprintln(stdout, b)
			}
			return nil
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}
}

func newExportCmd(stdout, stderr io.Writer, cfg *Config) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export tasks as a markdown checklist",
		Long:  "Export tasks as a markdown checklist grouped by priority, one \"- [x] Title !1 @YYYY-MM-DD\" line per task.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := setup(cmd, cfg, stderr)
			if err != nil {
				return err
			}
			defer a.close()

			output, _ := cmd.Flags().GetString("output")
			title, _ := cmd.Flags().GetString("title")
			tasks := a.mgr.Tasks()
			table := a.mgr.Engine().Priorities()

			if output == "" {
				return markdown.Export(stdout, title, tasks, table)
			}

			var sb strings.Builder
			if err := markdown.Export(&sb, title, tasks, table); err != nil {
				return err
			}
			output = config.ExpandPath(output)
			if err := os.MkdirAll(filepath.Dir(output), 0755); err != nil {
				return fmt.Errorf("failed to create directory: %w", err)
			}
			if err := os.WriteFile(output, []byte(sb.String()), 0644); err != nil {
				return fmt.Errorf("failed to write export: %w", err)
			}
			_, _ = fmt.Fprintf(stdout, "Exported %d task(s) to %s\n", len(tasks), output)
			return nil
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.Flags().StringP("output", "o", "", "Write to file instead of stdout")
	cmd.Flags().String("title", "Tasks", "Heading of the exported document")
	return cmd
}

func newAnalyticsCmd(stdout, stderr io.Writer, cfg *Config) *cobra.Command {
	return &cobra.Command{
		Use:   "analytics",
		Short: "Show local command usage statistics",
		Long:  "Show per-command usage recorded when analytics.enabled is true (or SUPERTASK_ANALYTICS_ENABLED=1).",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := setup(cmd, cfg, stderr)
			if err != nil {
				return err
			}
			defer a.close()

			if a.tracker == nil {
				return utils.WrapWithSuggestion(
					errors.New("analytics is disabled"),
					"Set analytics.enabled: true in the config file or SUPERTASK_ANALYTICS_ENABLED=1",
				)
			}

			summary, err := a.tracker.Summary()
			if err != nil {
				return err
			}
			if a.json {
				if summary == nil {
					summary = []analytics.CommandSummary{}
				}
				return writeJSON(stdout, analyticsResponse{Commands: summary, Result: ResultInfoOnly})
			}
			if len(summary) == 0 {
				_, _ = fmt.Fprintln(stdout, "No usage recorded yet.")
				return nil
			}
			for _, s := range summary {
				_, _ = fmt.Fprintf(stdout, "%-10s %5d runs  %3d failed  %6.1fms avg\n", s.Command, s.Count, s.Failures, s.AvgDurationMs)
			}
			return nil
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}
}

func newTUICmd(stdout, stderr io.Writer, cfg *Config) *cobra.Command {
	return &cobra.Command{
		Use:   "tui",
		Short: "Open the full-screen terminal interface",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := setup(cmd, cfg, stderr)
			if err != nil {
				return err
			}
			defer a.close()

			a.setSurface("tui")
			opts := []tea.ProgramOption{tea.WithInput(cmd.InOrStdin()), tea.WithOutput(stdout)}
			if f, ok := stdout.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
				opts = append(opts, tea.WithAltScreen())
			}
			p := tea.NewProgram(tui.New(a.mgr, a.now), opts...)

			w, err := watcher.New(watcher.Config{
				Path:     a.storage.Path(),
				OnChange: func() { p.Send(tui.ReloadMsg{}) },
			})
			if err == nil {
				err = w.Start()
			}
			if err != nil {
				utils.Warnf("live reload disabled: %v", err)
			} else {
				a.cleanup.RegisterCleanup("watcher", func(context.Context) error {
					w.Stop()
					return nil
				})
			}

			stop := a.cleanup.HandleSignals(func(os.Signal) { p.Quit() }, syscall.SIGTERM)
			defer stop()

			_, err = p.Run()
			return err
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}
}

func newVersionCmd(stdout io.Writer) *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			_, _ = fmt.Fprintf(stdout, "supertask version %s\n", Version)
			return nil
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}
}

// =============================================================================
// Output
// =============================================================================

func printItems(items []manager.Item, a *app, stdout io.Writer) {
	if len(items) == 0 {
		_, _ = fmt.Fprintln(stdout, "No tasks found.")
		return
	}
	a.renderer.Render(stdout, manager.Lines(items))
}

// JSON output structures
type taskJSON struct {
	Number       int     `json:"number"`
	Title        string  `json:"title"`
	Completed    bool    `json:"completed"`
	Priority     string  `json:"priority"`
	PriorityName string  `json:"priority_name"`
	Deadline     *string `json:"deadline"`
	Status       string  `json:"deadline_status"`
	DaysLeft     *int    `json:"days_left,omitempty"`
}

type listTasksResponse struct {
	Tasks  []taskJSON `json:"tasks"`
	Filter string     `json:"filter,omitempty"`
	Search string     `json:"search,omitempty"`
	Count  int        `json:"count"`
	Result string     `json:"result"`
}

type actionResponse struct {
	Action string   `json:"action"`
	Task   taskJSON `json:"task"`
	Saved  bool     `json:"saved"`
	Result string   `json:"result"`
}

type statsResponse struct {
	Total      int            `json:"total"`
	Completed  int            `json:"completed"`
	Pending    int            `json:"pending"`
	ByPriority map[string]int `json:"by_priority"`
	Result     string         `json:"result"`
}

type backupsResponse struct {
	Dir     string   `json:"dir"`
	Backups []string `json:"backups"`
	Count   int      `json:"count"`
	Result  string   `json:"result"`
}

type analyticsResponse struct {
	Commands []analytics.CommandSummary `json:"commands"`
	Result   string                     `json:"result"`
}

type errorResponse struct {
	Error  string `json:"error"`
	Code   int    `json:"code"`
	Result string `json:"result"`
}

func itemToJSON(it manager.Item, table backend.PriorityTable) taskJSON {
	level := table.Lookup(it.Task.Priority)
	result := taskJSON{
		Number:       it.Number,
		Title:        it.Task.Title,
		Completed:    it.Task.Completed,
		Priority:     string(level.Key),
		PriorityName: level.Name,
		Status:       string(it.Status.Kind),
	}
	if it.Task.Deadline != nil {
		s := backend.FormatDate(*it.Task.Deadline)
		result.Deadline = &s
		days := it.Status.DaysLeft
		result.DaysLeft = &days
	}
	return result
}

func writeJSON(stdout io.Writer, v interface{}) error {
	jsonBytes, err := json.Marshal(v)
	if err != nil {
		return err
	}
	_, _ = fmt.Fprintln(stdout, string(jsonBytes))
	return nil
}

// outputItemsJSON outputs a listing in JSON format
func outputItemsJSON(items []manager.Item, filter, search string, a *app, stdout io.Writer) error {
	table := a.mgr.Engine().Priorities()
	tasks := make([]taskJSON, 0, len(items))
	for _, it := range items {
		tasks = append(tasks, itemToJSON(it, table))
	}
	return writeJSON(stdout, listTasksResponse{
		Tasks:  tasks,
		Filter: filter,
		Search: search,
		Count:  len(tasks),
		Result: ResultInfoOnly,
	})
}

// outputActionJSON outputs a mutation result in JSON format
func outputActionJSON(action string, res manager.Result, a *app, stdout io.Writer) error {
	item := manager.Item{
		Number: res.Number,
		Task:   res.Task,
		Status: a.mgr.Engine().DeadlineStatus(res.Task, a.now()),
	}
	return writeJSON(stdout, actionResponse{
		Action: action,
		Task:   itemToJSON(item, a.mgr.Engine().Priorities()),
		Saved:  res.Saved(),
		Result: ResultActionCompleted,
	})
}

// outputStatsJSON outputs statistics keyed by priority name
func outputStatsJSON(s manager.Stats, table backend.PriorityTable, stdout io.Writer) error {
	byPriority := make(map[string]int, len(table))
	for _, level := range table {
		byPriority[level.Name] = s.ByPriority[level.Key]
	}
	return writeJSON(stdout, statsResponse{
		Total:      s.Total,
		Completed:  s.Completed,
		Pending:    s.Pending,
		ByPriority: byPriority,
		Result:     ResultInfoOnly,
	})
}

// outputErrorJSON outputs error in JSON format
func outputErrorJSON(err error, stdout io.Writer) {
	response := errorResponse{
		Error:  err.Error(),
		Code:   1,
		Result: ResultError,
	}

	jsonBytes, _ := json.Marshal(response)
	_, _ = fmt.Fprintln(stdout, string(jsonBytes))
}
