// Package doctor provides preflight checks for bpetrain: the corpus is
// readable and non-empty, the output directory is writable and the training
// settings are usable.
package doctor

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/example/go-bpe-trainer/internal/config"
	"go.uber.org/multierr"
)

// PassMark and FailMark are the prefix symbols printed for each check result.
const (
	PassMark = "✓"
	FailMark = "✗"
)

// Config holds the inputs of each doctor check.
type Config struct {
	CorpusPath string
	OutputDir  string
	Merges     int
	Workers    int
	Format     string
}

// ConfigFrom builds a doctor Config from the loaded application config.
func ConfigFrom(cfg config.Config) Config {
	return Config{
		CorpusPath: cfg.Paths.CorpusPath,
		OutputDir:  cfg.Paths.OutputDir,
		Merges:     cfg.Training.Merges,
		Workers:    cfg.Training.Workers,
		Format:     cfg.Output.Format,
	}
}

// Result collects the outcome of all checks.
type Result struct {
	failures []error
}

// Failed returns true if any check failed.
func (r *Result) Failed() bool { return len(r.failures) > 0 }

// Failures returns the list of failure messages.
func (r *Result) Failures() []string {
	out := make([]string, len(r.failures))
	for i, err := range r.failures {
		out[i] = err.Error()
	}
	return out
}

// Err combines all failures into one error, or nil when every check passed.
func (r *Result) Err() error { return multierr.Combine(r.failures...) }

// AddFailure appends an external failure message to the result.
func (r *Result) AddFailure(msg string) { r.failures = append(r.failures, errors.New(msg)) }

func (r *Result) check(w io.Writer, name string, detail string, err error) {
	if err != nil {
		r.failures = append(r.failures, fmt.Errorf("%s: %w", name, err))
		fmt.Fprintf(w, "%s %s: %v\n", FailMark, name, err)
		return
	}
	fmt.Fprintf(w, "%s %s: %s\n", PassMark, name, detail)
}

// Run executes all checks and writes human-readable output to w.
// Each check line is prefixed with PassMark or FailMark.
func Run(cfg Config, w io.Writer) Result {
	var res Result

	lines, err := checkCorpus(cfg.CorpusPath)
	res.check(w, "corpus", fmt.Sprintf("%s (%d non-empty lines)", cfg.CorpusPath, lines), err)

	res.check(w, "output dir", cfg.OutputDir, checkWritable(cfg.OutputDir))

	var mergesErr error
	if cfg.Merges <= 0 {
		mergesErr = fmt.Errorf("must be > 0, got %d", cfg.Merges)
	}
	res.check(w, "merges", fmt.Sprint(cfg.Merges), mergesErr)

	var workersErr error
	if cfg.Workers < 1 {
		workersErr = fmt.Errorf("must be >= 1, got %d", cfg.Workers)
	}
	res.check(w, "workers", fmt.Sprint(cfg.Workers), workersErr)

	format, formatErr := config.NormalizeFormat(cfg.Format)
	res.check(w, "output format", format, formatErr)

	return res
}

// checkCorpus opens path and counts lines holding at least one word.
func checkCorpus(path string) (int, error) {
	if strings.TrimSpace(path) == "" {
		return 0, errors.New("path is empty")
	}
	f, err := os.Open(path)
	if err != nil {
		return 0, err
	}
	defer f.Close()

	n := 0
	sc := bufio.NewScanner(f)
	sc.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)
	for sc.Scan() {
		if strings.TrimSpace(sc.Text()) != "" {
			n++
		}
	}
	if err := sc.Err(); err != nil {
		return n, err
	}
	if n == 0 {
		return 0, errors.New("no words found")
	}
	return n, nil
}

// checkWritable creates dir if needed and probes it with a temporary file.
func checkWritable(dir string) error {
	if strings.TrimSpace(dir) == "" {
		return errors.New("path is empty")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	f, err := os.CreateTemp(dir, ".doctor-*")
	if err != nil {
		return err
	}
	name := f.Name()
	return multierr.Combine(f.Close(), os.Remove(filepath.Clean(name)))
}
