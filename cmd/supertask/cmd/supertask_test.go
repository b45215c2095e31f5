package cmd_test

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"supertask/internal/analytics"
	"supertask/internal/testutil"
)

const seededTasks = `[
  {"title": "Read book", "completed": false, "priority": "3", "deadline": null},
  {"title": "Pay rent", "completed": false, "priority": "1", "deadline": "2025-01-01"},
  {"title": "Buy milk", "completed": true, "priority": "2", "deadline": null}
]`

// =============================================================================
// add
// =============================================================================

func TestAddThenList(t *testing.T) {
	cli := testutil.NewCLITest(t)

	stdout := cli.MustExecute("add", "Pay rent", "-p", "1", "-d", "2025-01-01")
	testutil.AssertContains(t, stdout, "✓ Task added: Pay rent (#1)")

	stdout = cli.MustExecute("add", "Call", "mom", "--priority", "medium")
	testutil.AssertContains(t, stdout, "✓ Task added: Call mom (#2)")

	stdout = cli.MustExecute("list")
	want := "1. [ ] [High] Pay rent (Deadline: 2025-01-01 [OVERDUE])\n2. [ ] [Medium] Call mom\n"
	if stdout != want {
		t.Errorf("list output = %q, want %q", stdout, want)
	}
}

func TestAddDefaultsToMedium(t *testing.T) {
	cli := testutil.NewCLITest(t)

	cli.MustExecute("add", "Read book")
	testutil.AssertContains(t, cli.ReadTaskFile(), `"priority": "2"`)
}

func TestAddValidationErrors(t *testing.T) {
	tests := []struct {
		name string
		args []string
		want string
	}{
		{"blank title", []string{"add", "   "}, "title cannot be empty"},
		{"unknown priority", []string{"add", "Pay rent", "-p", "7"}, "invalid priority"},
		{"bad date", []string{"add", "Pay rent", "-d", "2025-02-30"}, "invalid date"},
		{"no title without prompts", []string{"add"}, "title cannot be empty"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cli := testutil.NewCLITest(t)

			stdout, stderr := cli.ExecuteAndFail(tt.args...)
			testutil.AssertContains(t, stderr, tt.want)
			testutil.AssertNotContains(t, stdout, "Task added")
			if cli.ReadTaskFile() != "" {
				t.Error("a rejected add must not write the task file")
			}
		})
	}
}

func TestAddInteractive(t *testing.T) {
	cli := testutil.NewCLITest(t)
	cli.SetStdin("Dentist\n9\n1\ny\n2025-01-05\n")

	stdout := cli.MustExecute("add")
	testutil.AssertContains(t, stdout, "Task title: ")
	testutil.AssertContains(t, stdout, `Invalid priority "9".`)
	testutil.AssertContains(t, stdout, "✓ Task added: Dentist (#1)")

	cli.Config().NoPrompt = true
	stdout = cli.MustExecute("list")
	testutil.AssertContains(t, stdout, "1. [ ] [High] Dentist (Deadline: 2025-01-05, 3d)")
}

func TestAddCustomPriorityNames(t *testing.T) {
	cli := testutil.NewCLITest(t)
	cli.SetFullConfig(`storage:
  file: %DIR%/tasks.json
ui:
  color: never
priorities:
  - {key: "1", name: Alta}
  - {key: "2", name: Média}
  - {key: "3", name: Baixa}
`)

	cli.MustExecute("add", "Pagar aluguel", "-p", "alta")
	stdout := cli.MustExecute("list")
	testutil.AssertContains(t, stdout, "1. [ ] [Alta] Pagar aluguel")

	_, stderr := cli.ExecuteAndFail("add", "x", "-p", "urgent")
	testutil.AssertContains(t, stderr, "Baixa")
}

// =============================================================================
// complete / remove
// =============================================================================

func TestCompleteIsIdempotent(t *testing.T) {
	cli := testutil.NewCLITest(t)
	cli.SeedTasks(seededTasks)

	stdout := cli.MustExecute("complete", "2")
	testutil.AssertContains(t, stdout, "✓ Task completed: Pay rent")

	stdout = cli.MustExecute("complete", "2")
	testutil.AssertContains(t, stdout, "Task already completed: Pay rent")

	stdout = cli.MustExecute("list", "completed")
	testutil.AssertContains(t, stdout, "2. [✓] [High] Pay rent")
	testutil.AssertContains(t, stdout, "3. [✓] [Medium] Buy milk")
}

func TestIndexErrors(t *testing.T) {
	tests := []struct {
		name string
		args []string
		want string
	}{
		{"complete not a number", []string{"complete", "abc"}, "not a number"},
		{"complete zero", []string{"complete", "0"}, "index out of range"},
		{"complete past end", []string{"complete", "4"}, "Choose a number between 1 and 3"},
		{"remove negative", []string{"remove", "--", "-1"}, "index out of range"},
		{"remove past end", []string{"rm", "9"}, "index out of range"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cli := testutil.NewCLITest(t)
			cli.SeedTasks(seededTasks)

			_, stderr := cli.ExecuteAndFail(tt.args...)
			testutil.AssertContains(t, stderr, tt.want)
			if cli.ReadTaskFile() != seededTasks {
				t.Error("a rejected command must not rewrite the task file")
			}
		})
	}
}

func TestRemoveShiftsNumbers(t *testing.T) {
	cli := testutil.NewCLITest(t)
	cli.SeedTasks(seededTasks)

	stdout := cli.MustExecute("remove", "1")
	testutil.AssertContains(t, stdout, "✗ Task 'Read book' removed")

	stdout = cli.MustExecute("list")
	want := "1. [ ] [High] Pay rent (Deadline: 2025-01-01 [OVERDUE])\n2. [✓] [Medium] Buy milk\n"
	if stdout != want {
		t.Errorf("list output = %q, want %q", stdout, want)
	}
}

// =============================================================================
// list / search / stats
// =============================================================================

func TestListNumbersAreStorePositions(t *testing.T) {
	cli := testutil.NewCLITest(t)
	cli.SeedTasks(seededTasks)

	stdout := cli.MustExecute("list", "pending")
	want := "2. [ ] [High] Pay rent (Deadline: 2025-01-01 [OVERDUE])\n1. [ ] [Low] Read book\n"
	if stdout != want {
		t.Errorf("list pending = %q, want %q", stdout, want)
	}

	// The number shown is the one complete accepts
	cli.MustExecute("complete", "2")
	stdout = cli.MustExecute("list", "pending")
	if stdout != "1. [ ] [Low] Read book\n" {
		t.Errorf("unexpected pending list after complete: %q", stdout)
	}
}

func TestListEmptyAndInvalidFilter(t *testing.T) {
	cli := testutil.NewCLITest(t)

	stdout := cli.MustExecute("list")
	testutil.AssertContains(t, stdout, "No tasks found.")

	_, stderr := cli.ExecuteAndFail("list", "someday")
	testutil.AssertContains(t, stderr, "invalid filter")
	testutil.AssertContains(t, stderr, "all, completed, pending")
}

func TestSearch(t *testing.T) {
	cli := testutil.NewCLITest(t)
	cli.SeedTasks(seededTasks)

	stdout := cli.MustExecute("search", "PAY")
	if stdout != "2. [ ] [High] Pay rent (Deadline: 2025-01-01 [OVERDUE])\n" {
		t.Errorf("search output = %q", stdout)
	}

	stdout = cli.MustExecute("search", "nothing here")
	testutil.AssertContains(t, stdout, "No tasks found.")

	cli.ExecuteAndFail("search")
}

func TestStats(t *testing.T) {
	cli := testutil.NewCLITest(t)
	cli.SeedTasks(seededTasks)

	stdout := cli.MustExecute("stats")
	want := "Total: 3\nCompleted: 1\nPending: 2\nHigh: 1\nMedium: 1\nLow: 1\n"
	if stdout != want {
		t.Errorf("stats output = %q, want %q", stdout, want)
	}
}

// =============================================================================
// JSON output
// =============================================================================

func TestListJSON(t *testing.T) {
	cli := testutil.NewCLITest(t)
	cli.SeedTasks(seededTasks)

	stdout := cli.MustExecute("list", "--json")
	testutil.AssertResultCode(t, stdout, "INFO_ONLY")

	var resp struct {
		Tasks []struct {
			Number       int     `json:"number"`
			Title        string  `json:"title"`
			Priority     string  `json:"priority"`
			PriorityName string  `json:"priority_name"`
			Deadline     *string `json:"deadline"`
			Status       string  `json:"deadline_status"`
			DaysLeft     *int    `json:"days_left"`
		} `json:"tasks"`
		Count int `json:"count"`
	}
	if err := json.Unmarshal([]byte(stdout), &resp); err != nil {
		t.Fatalf("invalid JSON: %v\n%s", err, stdout)
	}
	if resp.Count != 3 || len(resp.Tasks) != 3 {
		t.Fatalf("expected 3 tasks, got %+v", resp)
	}

	first := resp.Tasks[0]
	if first.Number != 2 || first.Title != "Pay rent" || first.PriorityName != "High" {
		t.Errorf("unexpected first task %+v", first)
	}
	if first.Deadline == nil || *first.Deadline != "2025-01-01" || first.Status != "overdue" {
		t.Errorf("unexpected deadline fields %+v", first)
	}
	if first.DaysLeft == nil || *first.DaysLeft != -1 {
		t.Errorf("expected days_left -1, got %v", first.DaysLeft)
	}
	if resp.Tasks[2].Deadline != nil {
		t.Errorf("task without deadline should have null deadline")
	}
}

func TestActionAndErrorJSON(t *testing.T) {
	cli := testutil.NewCLITest(t)

	stdout := cli.MustExecute("add", "Pay rent", "-p", "1", "--json")
	testutil.AssertResultCode(t, stdout, "ACTION_COMPLETED")

	var resp struct {
		Action string `json:"action"`
		Saved  bool   `json:"saved"`
		Task   struct {
			Number int    `json:"number"`
			Title  string `json:"title"`
		} `json:"task"`
	}
	if err := json.Unmarshal([]byte(stdout), &resp); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}
	if resp.Action != "add" || !resp.Saved || resp.Task.Number != 1 || resp.Task.Title != "Pay rent" {
		t.Errorf("unexpected action response %+v", resp)
	}

	stdout, _ = cli.ExecuteAndFail("complete", "5", "--json")
	testutil.AssertResultCode(t, stdout, "ERROR")
	testutil.AssertContains(t, stdout, "index out of range")
}

func TestStatsJSON(t *testing.T) {
	cli := testutil.NewCLITest(t)
	cli.SeedTasks(seededTasks)

	stdout := cli.MustExecute("stats", "--json")
	var resp struct {
		Total      int            `json:"total"`
		Pending    int            `json:"pending"`
		ByPriority map[string]int `json:"by_priority"`
	}
	if err := json.Unmarshal([]byte(stdout), &resp); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}
	if resp.Total != 3 || resp.Pending != 2 || resp.ByPriority["Low"] != 1 {
		t.Errorf("unexpected stats %+v", resp)
	}
}

// =============================================================================
// Persistence and backups
// =============================================================================

func TestBackupsCommand(t *testing.T) {
	cli := testutil.NewCLITest(t)

	stdout := cli.MustExecute("backups")
	testutil.AssertContains(t, stdout, "No backups in")

	cli.MustExecute("add", "first")
	cli.MustExecute("add", "second")

	stdout = cli.MustExecute("backups")
	lines := strings.Split(strings.TrimSpace(stdout), "\n")
	if len(lines) != 1 {
		t.Fatalf("expected one backup after two saves, got %q", stdout)
	}
	if filepath.Base(lines[0]) != "tasks_backup_20250102_100000.json" {
		t.Errorf("unexpected backup name %s", lines[0])
	}

	data, err := os.ReadFile(lines[0])
	if err != nil {
		t.Fatalf("failed to read backup: %v", err)
	}
	testutil.AssertContains(t, string(data), "first")
	testutil.AssertNotContains(t, string(data), "second")
}

func TestSaveFailureIsAWarning(t *testing.T) {
	cli := testutil.NewCLITest(t)
	cli.SeedTasks(seededTasks)

	// A regular file where the backup directory should be
	if err := os.WriteFile(cli.BackupDir(), []byte("x"), 0644); err != nil {
		t.Fatal(err)
	}

	stdout, stderr, exitCode := cli.Execute("add", "Dentist")
	testutil.AssertExitCode(t, exitCode, 0)
	testutil.AssertContains(t, stdout, "✓ Task added: Dentist (#4)")
	testutil.AssertContains(t, stderr, "Warning: change not saved")

	if cli.ReadTaskFile() != seededTasks {
		t.Error("task file must be left untouched when the backup fails")
	}
}

func TestCorruptTaskFile(t *testing.T) {
	cli := testutil.NewCLITest(t)
	cli.SeedTasks(`[{"title": "broken",`)

	stdout, stderr, exitCode := cli.Execute("list")
	testutil.AssertExitCode(t, exitCode, 0)
	testutil.AssertContains(t, stdout, "No tasks found.")
	testutil.AssertContains(t, stderr, "could not load tasks")

	if cli.ReadTaskFile() != `[{"title": "broken",` {
		t.Error("loading must not modify a corrupt file")
	}
}

func TestSkippedRecordsAreReported(t *testing.T) {
	cli := testutil.NewCLITest(t)
	cli.SeedTasks(`[
  {"title": "Good", "priority": "1"},
  {"title": "Bad date", "priority": "2", "deadline": "01/02/2025"}
]`)

	stdout, stderr, _ := cli.Execute("list")
	testutil.AssertContains(t, stdout, "1. [ ] [High] Good")
	testutil.AssertContains(t, stderr, "skipped task #2")
}

func TestFileFlagOverridesConfig(t *testing.T) {
	cli := testutil.NewCLITest(t)
	other := filepath.Join(cli.TmpDir(), "work", "todo.json")

	cli.MustExecute("--file", other, "add", "Ship release")

	if cli.ReadTaskFile() != "" {
		t.Error("configured task file should not be written when --file is given")
	}
	data, err := os.ReadFile(other)
	if err != nil {
		t.Fatalf("expected task file at %s: %v", other, err)
	}
	testutil.AssertContains(t, string(data), "Ship release")
}

func TestExportMarkdown(t *testing.T) {
	cli := testutil.NewCLITest(t)
	cli.SeedTasks(seededTasks)

	stdout := cli.MustExecute("export")
	want := `# Tasks

## High

- [ ] Pay rent !1 @2025-01-01

## Medium

- [x] Buy milk !2

## Low

- [ ] Read book !3
`
	if stdout != want {
		t.Errorf("export output = %q, want %q", stdout, want)
	}

	target := filepath.Join(cli.TmpDir(), "out", "tasks.md")
	stdout = cli.MustExecute("export", "-o", target, "--title", "Home")
	testutil.AssertContains(t, stdout, "Exported 3 task(s)")

	data, err := os.ReadFile(target)
	if err != nil {
		t.Fatalf("expected export file: %v", err)
	}
	if !strings.HasPrefix(string(data), "# Home\n") {
		t.Errorf("unexpected export heading: %q", data)
	}
}

// =============================================================================
// Menu, analytics and misc
// =============================================================================

func TestRootRunsMenu(t *testing.T) {
	cli := testutil.NewCLITest(t)
	cli.SeedTasks(seededTasks)
	cli.SetStdin("4\n9\n")

	stdout := cli.MustExecute()
	testutil.AssertContains(t, stdout, "--- SUPER TASK MANAGER ---")
	testutil.AssertContains(t, stdout, "2. [ ] [High] Pay rent (Deadline: 2025-01-01 [OVERDUE])")
	testutil.AssertNotContains(t, stdout, "Buy milk")
	testutil.AssertContains(t, stdout, "Goodbye!")
}

func TestAnalyticsRecordsCommands(t *testing.T) {
	t.Setenv(analytics.EnvEnabled, "")
	cli := testutil.NewCLITest(t)
	cli.SetFullConfig(`storage:
  file: %DIR%/tasks.json
ui:
  color: never
analytics:
  enabled: true
  path: %DIR%/analytics.db
`)

	cli.MustExecute("add", "Pay rent")
	cli.MustExecute("list")
	cli.ExecuteAndFail("complete", "9")

	if n := cli.CountEvents("add"); n != 1 {
		t.Errorf("expected 1 add event, got %d", n)
	}
	if n := cli.CountEvents("complete"); n != 1 {
		t.Errorf("failed commands should be recorded too, got %d complete events", n)
	}

	stdout := cli.MustExecute("analytics")
	testutil.AssertContains(t, stdout, "add")
	testutil.AssertContains(t, stdout, "list")
}

func TestAnalyticsDisabled(t *testing.T) {
	t.Setenv(analytics.EnvEnabled, "")
	cli := testutil.NewCLITest(t)

	_, stderr := cli.ExecuteAndFail("analytics")
	testutil.AssertContains(t, stderr, "analytics is disabled")

	if _, err := os.Stat(cli.AnalyticsPath()); !os.IsNotExist(err) {
		t.Error("no analytics database should be created while disabled")
	}
}

func TestInvalidConfig(t *testing.T) {
	cli := testutil.NewCLITest(t)
	cli.SetFullConfig("ui:\n  color: sometimes\n")

	_, stderr := cli.ExecuteAndFail("list")
	testutil.AssertContains(t, stderr, "invalid ui.color")
	testutil.AssertContains(t, stderr, "Suggestion: Fix the config file")
}

func TestVersion(t *testing.T) {
	cli := testutil.NewCLITest(t)

	stdout := cli.MustExecute("version")
	testutil.AssertContains(t, stdout, "supertask version")
}
