// Package testutil provides shared fixtures and skip helpers for tests.
//
// Typical usage:
//
//	func TestTrainIntegration(t *testing.T) {
//	    path := testutil.RequireCorpus(t)
//	    ...
//	}
package testutil

import (
	"os"
	"path/filepath"
	"testing"
)

// CorpusEnv names the environment variable pointing at a real corpus for
// integration tests.
const CorpusEnv = "BPETRAIN_TEST_CORPUS"

// SmallCorpus is the classic BPE example: five "low", three "newer", two
// "wider" and one "new".
const SmallCorpus = "Low low low low low. Newer newer newer! Wider wider? New."

// WriteCorpus writes text to a corpus.txt file in a fresh temp dir and
// returns its path.
func WriteCorpus(tb testing.TB, text string) string {
	tb.Helper()

	path := filepath.Join(tb.TempDir(), "corpus.txt")
	if err := os.WriteFile(path, []byte(text), 0o644); err != nil {
		tb.Fatalf("write corpus fixture: %v", err)
	}

	return path
}

// RequireCorpus skips the test unless CorpusEnv names a readable file, and
// returns that path.
func RequireCorpus(tb testing.TB) string {
	tb.Helper()

	p := os.Getenv(CorpusEnv)
	if p == "" {
		tb.Skipf("no integration corpus configured; set %s", CorpusEnv)
	}

	if _, err := os.Stat(p); err != nil {
		tb.Skipf("integration corpus not available at %s=%q: %v", CorpusEnv, p, err)
	}

	return p
}

// AssertFiles fails the test if any of names is missing from dir.
func AssertFiles(tb testing.TB, dir string, names ...string) {
	tb.Helper()

	for _, name := range names {
		if _, err := os.Stat(filepath.Join(dir, name)); err != nil {
			tb.Errorf("expected %s in %s: %v", name, dir, err)
		}
	}
}
