// Package testutil provides shared test utilities for CLI testing across packages.
package testutil

import (
	"bytes"
	"database/sql"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	_ "modernc.org/sqlite"

	"supertask/cmd/supertask/cmd"
)

// Today is the fixed clock used by CLI tests
var Today = time.Date(2025, 1, 2, 10, 0, 0, 0, time.Local)

// defaultTestConfig keeps every path inside the test directory
const defaultTestConfig = `# test config
storage:
  file: %DIR%/tasks.json
  backup_dir: %DIR%/backups
ui:
  color: never
analytics:
  enabled: false
  path: %DIR%/analytics.db
`

// CLITest provides a test helper for running CLI commands in isolation.
type CLITest struct {
	t          *testing.T
	cfg        *cmd.Config
	tmpDir     string
	configPath string
}

// NewCLITest creates a new CLI test helper with its own config, task file and clock.
func NewCLITest(t *testing.T) *CLITest {
	t.Helper()

	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")

	c := &CLITest{
		t:      t,
		tmpDir: tmpDir,
		cfg: &cmd.Config{
			NoPrompt:   true,
			ConfigPath: configPath,
			Now:        func() time.Time { return Today },
		},
		configPath: configPath,
	}
	c.SetFullConfig(defaultTestConfig)
	return c
}

// Config returns the test configuration.
func (c *CLITest) Config() *cmd.Config {
	return c.cfg
}

// TmpDir returns the temporary directory for the test.
func (c *CLITest) TmpDir() string {
	return c.tmpDir
}

// ConfigPath returns the path to the config file.
func (c *CLITest) ConfigPath() string {
	return c.configPath
}

// TaskFile returns the path of the task file used by the default test config.
func (c *CLITest) TaskFile() string {
	return filepath.Join(c.tmpDir, "tasks.json")
}

// BackupDir returns the backup directory used by the default test config.
func (c *CLITest) BackupDir() string {
	return filepath.Join(c.tmpDir, "backups")
}

// AnalyticsPath returns the analytics database used by the default test config.
func (c *CLITest) AnalyticsPath() string {
	return filepath.Join(c.tmpDir, "analytics.db")
}

// SetFullConfig replaces the config file. %DIR% expands to the test directory.
func (c *CLITest) SetFullConfig(yamlContent string) {
	c.t.Helper()

	content := strings.ReplaceAll(yamlContent, "%DIR%", filepath.ToSlash(c.tmpDir))
	if err := os.WriteFile(c.configPath, []byte(content), 0644); err != nil {
		c.t.Fatalf("failed to write config file: %v", err)
	}
}

// SetStdin feeds input to the menu and to interactive add, and turns prompting on.
func (c *CLITest) SetStdin(input string) {
	c.cfg.Stdin = strings.NewReader(input)
	c.cfg.NoPrompt = false
}

// SeedTasks writes raw JSON to the task file.
func (c *CLITest) SeedTasks(content string) {
	c.t.Helper()

	if err := os.WriteFile(c.TaskFile(), []byte(content), 0644); err != nil {
		c.t.Fatalf("failed to seed task file: %v", err)
	}
}

// ReadTaskFile returns the task file content, or "" when it does not exist.
func (c *CLITest) ReadTaskFile() string {
	c.t.Helper()

	data, err := os.ReadFile(c.TaskFile())
	if os.IsNotExist(err) {
		return ""
	}
	if err != nil {
		c.t.Fatalf("failed to read task file: %v", err)
	}
	return string(data)
}

// Execute runs a CLI command with the given arguments and returns stdout, stderr, and exit code.
func (c *CLITest) Execute(args ...string) (stdout, stderr string, exitCode int) {
	c.t.Helper()

	var stdoutBuf, stderrBuf bytes.Buffer
	exitCode = cmd.Execute(args, &stdoutBuf, &stderrBuf, c.cfg)
	return stdoutBuf.String(), stderrBuf.String(), exitCode
}

// MustExecute runs a CLI command and fails the test if exit code is non-zero.
func (c *CLITest) MustExecute(args ...string) string {
	c.t.Helper()

	stdout, stderr, exitCode := c.Execute(args...)
	if exitCode != 0 {
		c.t.Fatalf("expected exit code 0, got %d: stdout=%s stderr=%s", exitCode, stdout, stderr)
	}
	return stdout
}

// ExecuteAndFail runs a CLI command and fails the test if exit code is zero.
func (c *CLITest) ExecuteAndFail(args ...string) (stdout, stderr string) {
	c.t.Helper()

	stdout, stderr, exitCode := c.Execute(args...)
	if exitCode == 0 {
		c.t.Fatalf("expected non-zero exit code, got 0: stdout=%s", stdout)
	}
	return stdout, stderr
}

// CountEvents returns how many analytics events were recorded for command.
func (c *CLITest) CountEvents(command string) int {
	c.t.Helper()

	db, err := openTestDB(c.AnalyticsPath())
	if err != nil {
		c.t.Fatalf("failed to open analytics db: %v", err)
	}
	defer func() { _ = db.Close() }()

	var n int
	if err := db.QueryRow("SELECT COUNT(*) FROM events WHERE command = ?", command).Scan(&n); err != nil {
		c.t.Fatalf("failed to count events: %v", err)
	}
	return n
}

// AssertContains fails the test if output doesn't contain expected string.
func AssertContains(t *testing.T, output, expected string) {
	t.Helper()
	if !strings.Contains(output, expected) {
		t.Errorf("expected output to contain %q, got:\n%s", expected, output)
	}
}

// AssertNotContains fails the test if output contains unexpected string.
func AssertNotContains(t *testing.T, output, unexpected string) {
	t.Helper()
	if strings.Contains(output, unexpected) {
		t.Errorf("expected output NOT to contain %q, got:\n%s", unexpected, output)
	}
}

// AssertExitCode fails the test if exit code doesn't match expected.
func AssertExitCode(t *testing.T, got, want int) {
	t.Helper()
	if got != want {
		t.Errorf("expected exit code %d, got %d", want, got)
	}
}

// AssertResultCode verifies the "result" field of a JSON response.
func AssertResultCode(t *testing.T, output, expectedCode string) {
	t.Helper()

	var resp struct {
		Result string `json:"result"`
	}
	if err := json.Unmarshal([]byte(strings.TrimSpace(output)), &resp); err != nil {
		t.Errorf("expected JSON output, got %v:\n%s", err, output)
		return
	}
	if resp.Result != expectedCode {
		t.Errorf("expected result code %q, got %q\nFull output:\n%s", expectedCode, resp.Result, output)
	}
}

func openTestDB(dbPath string) (*sql.DB, error) {
	return sql.Open("sqlite", dbPath)
}
