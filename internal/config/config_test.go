package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/pflag"
)

// fakeBinder wraps a pflag.FlagSet to satisfy the flagBinder interface.
type fakeBinder struct {
	fs *pflag.FlagSet
}

func (f *fakeBinder) Flags() *pflag.FlagSet { return f.fs }

// newFlagBinder creates a FlagSet with all config flags registered at their
// defaults and parses args into it.
func newFlagBinder(t *testing.T, defaults Config, args ...string) *fakeBinder {
	t.Helper()

	fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
	RegisterFlags(fs, defaults)

	if err := fs.Parse(args); err != nil {
		t.Fatalf("Parse() error = %v", err)
	}

	return &fakeBinder{fs: fs}
}

// --- DefaultConfig ---

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.Paths.CorpusPath != "data/corpus.txt" {
		t.Errorf("CorpusPath = %q; want %q", cfg.Paths.CorpusPath, "data/corpus.txt")
	}

	if cfg.Paths.OutputDir != "out" {
		t.Errorf("OutputDir = %q; want %q", cfg.Paths.OutputDir, "out")
	}

	if cfg.Training.Merges != 10000 {
		t.Errorf("Training.Merges = %d; want 10000", cfg.Training.Merges)
	}

	if cfg.Training.Workers != 1 {
		t.Errorf("Training.Workers = %d; want 1", cfg.Training.Workers)
	}

	if cfg.Training.StopEarly {
		t.Error("Training.StopEarly = true; want false")
	}

	if cfg.Output.Format != "json" {
		t.Errorf("Output.Format = %q; want %q", cfg.Output.Format, "json")
	}

	if cfg.LogLevel != "info" {
		t.Errorf("LogLevel = %q; want %q", cfg.LogLevel, "info")
	}
}

// --- NormalizeFormat ---

func TestNormalizeFormat(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    string
		wantErr bool
	}{
		{"json", "json", "json", false},
		{"yaml", "yaml", "yaml", false},
		{"yml alias", "yml", "yaml", false},
		{"uppercase", "YAML", "yaml", false},
		{"with spaces", "  json  ", "json", false},
		{"empty defaults to json", "", "json", false},
		{"invalid value", "pickle", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := NormalizeFormat(tt.input)
			if tt.wantErr {
				if err == nil {
					t.Errorf("NormalizeFormat(%q) = %q, nil; want error", tt.input, got)
				}

				return
			}

			if err != nil {
				t.Errorf("NormalizeFormat(%q) unexpected error: %v", tt.input, err)
				return
			}

			if got != tt.want {
				t.Errorf("NormalizeFormat(%q) = %q; want %q", tt.input, got, tt.want)
			}
		})
	}
}

// --- ParseLogLevel ---

func TestParseLogLevel(t *testing.T) {
	tests := []struct {
		input   string
		want    slog.Level
		wantErr bool
	}{
		{"", slog.LevelInfo, false},
		{"info", slog.LevelInfo, false},
		{"DEBUG", slog.LevelDebug, false},
		{"warning", slog.LevelWarn, false},
		{"error", slog.LevelError, false},
		{"verbose", slog.LevelInfo, true},
	}

	for _, tt := range tests {
		got, err := ParseLogLevel(tt.input)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseLogLevel(%q) error = %v; wantErr %v", tt.input, err, tt.wantErr)
		}

		if got != tt.want {
			t.Errorf("ParseLogLevel(%q) = %v; want %v", tt.input, got, tt.want)
		}
	}
}

// --- RegisterFlags ---

func TestRegisterFlags(t *testing.T) {
	defaults := DefaultConfig()
	fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
	RegisterFlags(fs, defaults)

	checks := []struct {
		flag string
		want string
	}{
		{"corpus", "data/corpus.txt"},
		{"out", "out"},
		{"merges", "10000"},
		{"workers", "1"},
		{"stop-early", "false"},
		{"min-frequency", "0"},
		{"format", "json"},
		{"log-level", "info"},
	}

	for _, c := range checks {
		f := fs.Lookup(c.flag)
		if f == nil {
			t.Errorf("flag %q not registered", c.flag)
			continue
		}

		if f.DefValue != c.want {
			t.Errorf("flag %q default = %q; want %q", c.flag, f.DefValue, c.want)
		}
	}
}

// --- Load ---

func TestLoad_Defaults(t *testing.T) {
	chdir(t, t.TempDir())

	defaults := DefaultConfig()

	cfg, err := Load(LoadOptions{
		Cmd:      newFlagBinder(t, defaults),
		Defaults: defaults,
	})
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg != defaults {
		t.Errorf("Load() = %+v; want %+v", cfg, defaults)
	}
}

func TestLoad_NilCmdUsesDefaults(t *testing.T) {
	chdir(t, t.TempDir())

	defaults := DefaultConfig()

	cfg, err := Load(LoadOptions{Defaults: defaults})
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg != defaults {
		t.Errorf("Load() = %+v; want %+v", cfg, defaults)
	}
}

func TestLoad_FlagOverride(t *testing.T) {
	chdir(t, t.TempDir())

	defaults := DefaultConfig()
	binder := newFlagBinder(t, defaults,
		"--corpus=/data/bible.txt",
		"--merges=250",
		"--workers=8",
		"--stop-early",
		"--format=yml",
		"--log-level=debug",
	)

	cfg, err := Load(LoadOptions{Cmd: binder, Defaults: defaults})
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Paths.CorpusPath != "/data/bible.txt" {
		t.Errorf("CorpusPath = %q; want %q", cfg.Paths.CorpusPath, "/data/bible.txt")
	}

	if cfg.Training.Merges != 250 {
		t.Errorf("Training.Merges = %d; want 250", cfg.Training.Merges)
	}

	if cfg.Training.Workers != 8 {
		t.Errorf("Training.Workers = %d; want 8", cfg.Training.Workers)
	}

	if !cfg.Training.StopEarly {
		t.Error("Training.StopEarly = false; want true")
	}

	if cfg.Output.Format != "yaml" {
		t.Errorf("Output.Format = %q; want %q", cfg.Output.Format, "yaml")
	}

	if cfg.LogLevel != "debug" {
		t.Errorf("LogLevel = %q; want %q", cfg.LogLevel, "debug")
	}
}

func TestLoad_EnvOverride(t *testing.T) {
	chdir(t, t.TempDir())
	t.Setenv("BPETRAIN_LOG_LEVEL", "warn")
	t.Setenv("BPETRAIN_TRAINING_MERGES", "42")
	t.Setenv("BPETRAIN_CORPUS", "/env/corpus.txt")

	defaults := DefaultConfig()

	cfg, err := Load(LoadOptions{
		Cmd:      newFlagBinder(t, defaults),
		Defaults: defaults,
	})
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.LogLevel != "warn" {
		t.Errorf("LogLevel = %q; want %q", cfg.LogLevel, "warn")
	}

	if cfg.Training.Merges != 42 {
		t.Errorf("Training.Merges = %d; want 42", cfg.Training.Merges)
	}

	if cfg.Paths.CorpusPath != "/env/corpus.txt" {
		t.Errorf("CorpusPath = %q; want %q", cfg.Paths.CorpusPath, "/env/corpus.txt")
	}
}

func TestLoad_FlagBeatsEnv(t *testing.T) {
	chdir(t, t.TempDir())
	t.Setenv("BPETRAIN_TRAINING_MERGES", "42")

	defaults := DefaultConfig()

	cfg, err := Load(LoadOptions{
		Cmd:      newFlagBinder(t, defaults, "--merges=7"),
		Defaults: defaults,
	})
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Training.Merges != 7 {
		t.Errorf("Training.Merges = %d; want 7", cfg.Training.Merges)
	}
}

func TestLoad_ConfigFile(t *testing.T) {
	dir := t.TempDir()
	chdir(t, dir)

	cfgFile := filepath.Join(dir, "custom.yaml")
	content := `
log_level: error
paths:
  corpus_path: corpora/bible.txt
  output_dir: artifacts
training:
  merges: 500
  min_frequency: 3
output:
  format: yaml
`

	err := os.WriteFile(cfgFile, []byte(content), 0o644)
	if err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	defaults := DefaultConfig()

	cfg, err := Load(LoadOptions{
		Cmd:        newFlagBinder(t, defaults, "--workers=3"),
		ConfigFile: cfgFile,
		Defaults:   defaults,
	})
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	want := Config{
		Paths:    PathsConfig{CorpusPath: "corpora/bible.txt", OutputDir: "artifacts"},
		Training: TrainingConfig{Merges: 500, Workers: 3, MinFrequency: 3},
		Output:   OutputConfig{Format: "yaml"},
		LogLevel: "error",
	}
	if cfg != want {
		t.Errorf("Load() = %+v; want %+v", cfg, want)
	}
}

func TestLoad_DiscoversConfigInWorkingDir(t *testing.T) {
	dir := t.TempDir()
	chdir(t, dir)

	err := os.WriteFile(filepath.Join(dir, "bpetrain.yaml"), []byte("training:\n  merges: 12\n"), 0o644)
	if err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	cfg, err := Load(LoadOptions{Defaults: DefaultConfig()})
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Training.Merges != 12 {
		t.Errorf("Training.Merges = %d; want 12", cfg.Training.Merges)
	}
}

func TestLoad_InvalidFormat(t *testing.T) {
	chdir(t, t.TempDir())

	defaults := DefaultConfig()

	_, err := Load(LoadOptions{
		Cmd:      newFlagBinder(t, defaults, "--format=pickle"),
		Defaults: defaults,
	})
	if err == nil {
		t.Error("Load() = nil; want error for invalid format")
	}
}

func TestLoad_InvalidConfigFile(t *testing.T) {
	dir := t.TempDir()
	cfgFile := filepath.Join(dir, "bad.yaml")

	err := os.WriteFile(cfgFile, []byte(":\t:bad yaml:::"), 0o644)
	if err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	_, err = Load(LoadOptions{
		ConfigFile: cfgFile,
		Defaults:   DefaultConfig(),
	})
	if err == nil {
		t.Error("Load() = nil; want error for invalid config file")
	}
}

func TestLoad_MissingExplicitConfigFile(t *testing.T) {
	_, err := Load(LoadOptions{
		ConfigFile: "/nonexistent/path/bpetrain.yaml",
		Defaults:   DefaultConfig(),
	})
	if err == nil {
		t.Error("Load() = nil; want error for missing explicit config file")
	}
}
