// Package file implements the task Storage backed by a JSON file with
// timestamped backups taken before every overwrite.
package file

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	jsonschema "github.com/santhosh-tekuri/jsonschema/v5"

	"supertask/backend"
	"supertask/internal/utils"
)

//go:embed task.schema.json
var taskSchema string

// BackupTimeFormat is embedded in backup file names
const BackupTimeFormat = "20060102_150405"

// Config holds file backend configuration
type Config struct {
	FilePath  string           // Path to task file (default tasks.json)
	BackupDir string           // Backup directory (default "backups" next to the task file)
	Clock     func() time.Time // Time source for backup names (default time.Now)
}

// SkippedRecord describes a stored record that failed validation on load
type SkippedRecord struct {
	Position int // 1-based position in the stored array
	Reason   string
}

// LoadReport summarizes the last Load call
type LoadReport struct {
	Loaded  int
	Skipped []SkippedRecord
}

// Backend implements backend.Storage for a JSON file
type Backend struct {
	filePath   string
	backupDir  string
	clock      func() time.Time
	schema     *jsonschema.Schema
	lastReport LoadReport
}

// record is the on-disk shape of a task
type record struct {
	Title     string  `json:"title"`
	Completed bool    `json:"completed"`
	Priority  string  `json:"priority,omitempty"`
	Deadline  *string `json:"deadline"`
}

// storedRecord is the decode side of record. Hand-edited files may carry a
// numeric priority such as 1 instead of "1".
type storedRecord struct {
	Title     string      `json:"title"`
	Completed bool        `json:"completed"`
	Priority  interface{} `json:"priority"`
	Deadline  *string     `json:"deadline"`
}

// New creates a new file backend
func New(cfg Config) (*Backend, error) {
	filePath := cfg.FilePath
	if filePath == "" {
		filePath = "tasks.json"
	}

	// Resolve relative paths
	if !filepath.IsAbs(filePath) {
		wd, err := os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("failed to get working directory: %w", err)
		}
		filePath = filepath.Join(wd, filePath)
	}

	backupDir := cfg.BackupDir
	if backupDir == "" {
		backupDir = filepath.Join(filepath.Dir(filePath), "backups")
	} else if !filepath.IsAbs(backupDir) {
		backupDir = filepath.Join(filepath.Dir(filePath), backupDir)
	}

	clock := cfg.Clock
	if clock == nil {
		clock = time.Now
	}

	schema, err := compileSchema()
	if err != nil {
		return nil, err
	}

	return &Backend{
		filePath:  filePath,
		backupDir: backupDir,
		clock:     clock,
		schema:    schema,
	}, nil
}

func compileSchema() (*jsonschema.Schema, error) {
	compiler := jsonschema.NewCompiler()
	compiler.AssertFormat = true
	if err := compiler.AddResource("task.schema.json", strings.NewReader(taskSchema)); err != nil {
		return nil, fmt.Errorf("load task schema: %w", err)
	}
	schema, err := compiler.Compile("task.schema.json")
	if err != nil {
		return nil, fmt.Errorf("compile task schema: %w", err)
	}
	return schema, nil
}

// Path returns the resolved task file path
func (b *Backend) Path() string {
	return b.filePath
}

// BackupDir returns the resolved backup directory
func (b *Backend) BackupDir() string {
	return b.backupDir
}

// LastLoadReport returns what the most recent Load kept and skipped
func (b *Backend) LastLoadReport() LoadReport {
	return b.lastReport
}

// =============================================================================
// Load
// =============================================================================

// Load reads the task file. A missing file is an empty store. Unreadable or
// syntactically invalid files return an empty slice and a PersistenceError;
// the file itself is left untouched. Records that fail validation (for
// example a malformed deadline) are skipped and listed in LastLoadReport.
func (b *Backend) Load() ([]backend.Task, error) {
	b.lastReport = LoadReport{}

	data, err := os.ReadFile(b.filePath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			utils.Debugf("task file %s does not exist, starting empty", b.filePath)
			return []backend.Task{}, nil
		}
		return []backend.Task{}, &utils.PersistenceError{Op: "load", Path: b.filePath, Err: err}
	}

	var raw []json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return []backend.Task{}, &utils.PersistenceError{Op: "load", Path: b.filePath, Err: fmt.Errorf("parse task file: %w", err)}
	}

	tasks := make([]backend.Task, 0, len(raw))
	for i, msg := range raw {
		task, err := b.decodeRecord(msg)
		if err != nil {
			b.lastReport.Skipped = append(b.lastReport.Skipped, SkippedRecord{Position: i + 1, Reason: err.Error()})
			utils.Debugf("skipping record %d in %s: %v", i+1, b.filePath, err)
			continue
		}
		tasks = append(tasks, task)
	}
	b.lastReport.Loaded = len(tasks)

	utils.Debugf("loaded %d task(s) from %s", len(tasks), b.filePath)
	return tasks, nil
}

// decodeRecord validates a single stored record and converts it to a Task
func (b *Backend) decodeRecord(msg json.RawMessage) (backend.Task, error) {
	var doc interface{}
	if err := json.Unmarshal(msg, &doc); err != nil {
		return backend.Task{}, err
	}
	if err := b.schema.Validate(doc); err != nil {
		return backend.Task{}, schemaError(err)
	}

	var rec storedRecord
	if err := json.Unmarshal(msg, &rec); err != nil {
		return backend.Task{}, err
	}

	task := backend.Task{
		Title:     rec.Title,
		Completed: rec.Completed,
		Priority:  priorityKey(rec.Priority),
	}
	if rec.Deadline != nil && *rec.Deadline != "" {
		deadline, err := backend.ParseDate(*rec.Deadline)
		if err != nil {
			return backend.Task{}, fmt.Errorf("deadline: %w", err)
		}
		task.Deadline = &deadline
	}
	return task, nil
}

// priorityKey converts a stored priority to its key. Numbers become their
// decimal string; unknown keys are kept and fall back to Medium on display.
func priorityKey(v interface{}) backend.Priority {
	switch p := v.(type) {
	case string:
		return backend.Priority(p)
	case float64:
		return backend.Priority(strconv.FormatInt(int64(p), 10))
	default:
		return ""
	}
}

// schemaError flattens a jsonschema validation error to its most specific cause
func schemaError(err error) error {
	var ve *jsonschema.ValidationError
	if !errors.As(err, &ve) {
		return err
	}
	for len(ve.Causes) > 0 {
		ve = ve.Causes[0]
	}
	loc := strings.TrimPrefix(ve.InstanceLocation, "/")
	if loc == "" {
		return errors.New(ve.Message)
	}
	return fmt.Errorf("%s: %s", loc, ve.Message)
}

// =============================================================================
// Save
// =============================================================================

// Save copies the current task file into the backup directory (when it
// exists) and then replaces it with tasks. A failed backup aborts the save.
// The main file is written to a temporary sibling and renamed into place,
// which is best effort rather than transactional.
func (b *Backend) Save(tasks []backend.Task) error {
	if _, err := b.backup(); err != nil {
		return err
	}

	data, err := encode(tasks)
	if err != nil {
		return &utils.PersistenceError{Op: "save", Path: b.filePath, Err: err}
	}

	if err := writeFileAtomic(b.filePath, data); err != nil {
		return &utils.PersistenceError{Op: "save", Path: b.filePath, Err: err}
	}

	utils.Debugf("saved %d task(s) to %s", len(tasks), b.filePath)
	return nil
}

// encode serializes tasks as a 2-space indented JSON array
func encode(tasks []backend.Task) ([]byte, error) {
	records := make([]record, 0, len(tasks))
	for _, t := range tasks {
		rec := record{
			Title:     t.Title,
			Completed: t.Completed,
			Priority:  string(t.Priority),
		}
		if t.Deadline != nil {
			d := backend.FormatDate(*t.Deadline)
			rec.Deadline = &d
		}
		records = append(records, rec)
	}

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(records); err != nil {
		return nil, fmt.Errorf("marshal tasks: %w", err)
	}
	return buf.Bytes(), nil
}

// backup copies the task file into the backup directory. Returns the backup
// path, or "" when there was no file to back up.
func (b *Backend) backup() (string, error) {
	info, err := os.Stat(b.filePath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return "", nil
		}
		return "", &utils.PersistenceError{Op: "backup", Path: b.filePath, Err: err}
	}

	if err := os.MkdirAll(b.backupDir, 0755); err != nil {
		return "", &utils.PersistenceError{Op: "backup", Path: b.backupDir, Err: fmt.Errorf("failed to create backup directory: %w", err)}
	}

	target, err := b.backupName()
	if err != nil {
		return "", &utils.PersistenceError{Op: "backup", Path: b.backupDir, Err: err}
	}
	if err := copyFileAtomic(b.filePath, target, info.ModTime()); err != nil {
		return "", &utils.PersistenceError{Op: "backup", Path: target, Err: err}
	}

	utils.Debugf("backed up %s to %s", b.filePath, target)
	return target, nil
}

// backupName builds tasks_backup_YYYYMMDD_HHMMSS.json, adding a short random
// suffix when a backup with that second already exists. Any Stat error other
// than "not found" is returned.
func (b *Backend) backupName() (string, error) {
	base := filepath.Base(b.filePath)
	ext := filepath.Ext(base)
	stem := strings.TrimSuffix(base, ext)
	stamp := b.clock().Format(BackupTimeFormat)

	name := filepath.Join(b.backupDir, fmt.Sprintf("%s_backup_%s%s", stem, stamp, ext))
	for {
		_, err := os.Stat(name)
		if errors.Is(err, os.ErrNotExist) {
			return name, nil
		}
		if err != nil {
			return "", err
		}
		name = filepath.Join(b.backupDir, fmt.Sprintf("%s_backup_%s_%s%s", stem, stamp, backend.GenerateID()[:8], ext))
	}
}

// Backups returns existing backup files for this task file, oldest first
func (b *Backend) Backups() ([]string, error) {
	base := filepath.Base(b.filePath)
	ext := filepath.Ext(base)
	pattern := filepath.Join(b.backupDir, strings.TrimSuffix(base, ext)+"_backup_*"+ext)

	matches, err := filepath.Glob(pattern)
	if err != nil {
		return nil, err
	}
	sort.Strings(matches)
	return matches, nil
}

// =============================================================================
// File helpers
// =============================================================================

// writeFileAtomic writes data to a temp file in the target directory and
// renames it over path.
func writeFileAtomic(path string, data []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return err
	}
	tmpPath := tmp.Name()
	defer func() { _ = os.Remove(tmpPath) }()

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		return err
	}
	if err := tmp.Sync(); err != nil {
		_ = tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	if err := os.Chmod(tmpPath, 0644); err != nil {
		return err
	}
	return os.Rename(tmpPath, path)
}

// copyFileAtomic copies src to dst through a temp file so dst is either
// complete or absent. The source modification time is preserved.
func copyFileAtomic(src, dst string, modTime time.Time) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer func() { _ = in.Close() }()

	tmp, err := os.CreateTemp(filepath.Dir(dst), ".backup.*.tmp")
	if err != nil {
		return err
	}
	tmpPath := tmp.Name()
	defer func() { _ = os.Remove(tmpPath) }()

	if _, err := io.Copy(tmp, in); err != nil {
		_ = tmp.Close()
		return err
	}
	if err := tmp.Sync(); err != nil {
		_ = tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	if err := os.Chmod(tmpPath, 0644); err != nil {
		return err
	}
	_ = os.Chtimes(tmpPath, modTime, modTime)
	return os.Rename(tmpPath, dst)
}

// Verify interface compliance at compile time
var _ backend.Storage = (*Backend)(nil)
