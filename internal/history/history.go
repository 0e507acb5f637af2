// Package history keeps a ledger of deploy runs in the project state
// directory.
package history

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/cameronsjo/lambdo/internal/fileutil"
)

const (
	// RunPrefix is the prefix for run record file names.
	RunPrefix = "run-"
	// DateFormat includes nanoseconds to prevent same-second collisions.
	DateFormat = "20060102-150405.000000000"
	// MaxRuns is the number of run records retained.
	MaxRuns = 20
)

// ErrNotFound indicates a run record that does not exist.
var ErrNotFound = errors.New("run not found")

// Unit is what one run did to one function.
type Unit struct {
	Name    string `yaml:"name"`
	Action  string `yaml:"action,omitempty"`
	Size    int64  `yaml:"size,omitempty"`
	Digest  string `yaml:"sha256,omitempty"`
	Version string `yaml:"version,omitempty"`
	Alias   string `yaml:"alias,omitempty"`
}

// Run is one recorded invocation.
type Run struct {
	ID       string    `yaml:"id"`
	Started  time.Time `yaml:"started"`
	Manifest string    `yaml:"manifest"`
	Commit   string    `yaml:"commit,omitempty"`
	Branch   string    `yaml:"branch,omitempty"`
	Dirty    bool      `yaml:"dirty,omitempty"`
	Units    []Unit    `yaml:"units"`
	Error    string    `yaml:"error,omitempty"`

	// Name is the record file name. Set by List and Load.
	Name string `yaml:"-"`
}

// Failed reports whether the run ended in an error.
func (r *Run) Failed() bool {
	return r.Error != ""
}

// Dir returns the history directory inside stateDir.
func Dir(stateDir string) string {
	return filepath.Join(stateDir, "history")
}

// Record writes run to the history and prunes old records.
// Returns the record name.
func Record(stateDir string, run *Run) (string, error) {
	if run.Started.IsZero() {
		run.Started = time.Now()
	}

	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(run); err != nil {
		return "", fmt.Errorf("encode run record: %w", err)
	}
	if err := enc.Close(); err != nil {
		return "", fmt.Errorf("encode run record: %w", err)
	}

	name := RunPrefix + run.Started.UTC().Format(DateFormat) + ".yaml"
	if _, err := fileutil.WriteFileAtomic(filepath.Join(Dir(stateDir), name), &buf, 0644); err != nil {
		return "", fmt.Errorf("write run record: %w", err)
	}
	run.Name = name

	if err := Cleanup(stateDir); err != nil {
		return name, err
	}
	return name, nil
}

// List returns recorded runs sorted by start time (newest first).
// Unreadable records are skipped.
func List(stateDir string) ([]*Run, error) {
	entries, err := os.ReadDir(Dir(stateDir))
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read history directory: %w", err)
	}

	var runs []*Run
	for _, entry := range entries {
		if entry.IsDir() || !isRecord(entry.Name()) {
			continue
		}
		run, err := Load(stateDir, entry.Name())
		if err != nil {
			continue
		}
		runs = append(runs, run)
	}

	sort.Slice(runs, func(i, j int) bool {
		return runs[i].Started.After(runs[j].Started)
	})
	return runs, nil
}

// Load reads one run record by name.
func Load(stateDir, name string) (*Run, error) {
	if !isRecord(name) || filepath.Base(name) != name {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, name)
	}

	data, err := os.ReadFile(filepath.Join(Dir(stateDir), name))
	if os.IsNotExist(err) {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, name)
	}
	if err != nil {
		return nil, fmt.Errorf("read run record: %w", err)
	}

	var run Run
	if err := yaml.Unmarshal(data, &run); err != nil {
		return nil, fmt.Errorf("decode run record %s: %w", name, err)
	}
	run.Name = name
	return &run, nil
}

// Cleanup removes records beyond MaxRuns. It keeps deleting when single
// removals fail and reports all failures together.
func Cleanup(stateDir string) error {
	runs, err := List(stateDir)
	if err != nil {
		return err
	}
	if len(runs) <= MaxRuns {
		return nil
	}

	var errs []string
	for _, run := range runs[MaxRuns:] {
		if err := removeWithRetry(filepath.Join(Dir(stateDir), run.Name), 3); err != nil {
			errs = append(errs, fmt.Sprintf("%s: %v", run.Name, err))
		}
	}
	if len(errs) > 0 {
		return fmt.Errorf("failed to remove %d run record(s): %s", len(errs), strings.Join(errs, "; "))
	}
	return nil
}

func isRecord(name string) bool {
	return strings.HasPrefix(name, RunPrefix) && strings.HasSuffix(name, ".yaml")
}

// removeWithRetry retries transient failures (10ms, 20ms, 40ms).
func removeWithRetry(path string, maxRetries int) error {
	var lastErr error
	for i := 0; i < maxRetries; i++ {
		if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
			lastErr = err
			time.Sleep(time.Duration(10*(1<<i)) * time.Millisecond)
			continue
		}
		return nil
	}
	return lastErr
}
