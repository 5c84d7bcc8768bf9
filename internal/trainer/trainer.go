// Package trainer runs the full BPE training pipeline: read the corpus,
// build the initial vocabulary, run the merge loop and number the tokens.
// Each stage runs under a pprof "stage" label and is timed.
package trainer

import (
	"context"
	"fmt"
	"log/slog"
	"runtime/pprof"
	"time"

	"github.com/example/go-bpe-trainer/internal/bpe"
	"github.com/example/go-bpe-trainer/internal/config"
	"github.com/example/go-bpe-trainer/internal/corpus"
	"github.com/example/go-bpe-trainer/internal/store"
)

// Options configures Run.
type Options struct {
	// CorpusPath is read when Lines is nil.
	CorpusPath string
	// Lines, if non-nil, is used as the already-normalized corpus.
	Lines []string

	Merges       int
	Workers      int
	StopEarly    bool
	MinFrequency int

	// Logger defaults to slog.Default().
	Logger *slog.Logger
}

// OptionsFromConfig maps the loaded configuration onto Options.
func OptionsFromConfig(cfg config.Config) Options {
	return Options{
		CorpusPath:   cfg.Paths.CorpusPath,
		Merges:       cfg.Training.Merges,
		Workers:      cfg.Training.Workers,
		StopEarly:    cfg.Training.StopEarly,
		MinFrequency: cfg.Training.MinFrequency,
	}
}

// Timings records the wall time of each pipeline stage.
type Timings struct {
	Read       time.Duration
	Initialize time.Duration
	Merge      time.Duration
	Assign     time.Duration
	Total      time.Duration
}

// Result is the outcome of a pipeline run.
type Result struct {
	store.Artifacts

	Lines     int  // corpus lines after sentence splitting
	Words     int  // word occurrences
	WordForms int  // distinct words
	Stopped   bool // merge loop ended before Options.Merges
	Timings   Timings
}

// Run executes the pipeline. Errors from the bpe package are wrapped and
// keep their identity for errors.Is.
func Run(ctx context.Context, opts Options) (Result, error) {
	log := opts.Logger
	if log == nil {
		log = slog.Default()
	}
	if opts.Merges < 0 {
		return Result{}, fmt.Errorf("merges must be >= 0, got %d", opts.Merges)
	}

	var out Result
	startTotal := time.Now()

	lines := opts.Lines
	var readErr error
	pprof.Do(ctx, pprof.Labels("stage", "read"), func(context.Context) {
		start := time.Now()
		if lines == nil {
			lines, readErr = corpus.ReadFile(opts.CorpusPath)
		}
		out.Timings.Read = time.Since(start)
	})
	if readErr != nil {
		return Result{}, readErr
	}
	out.Lines = len(lines)

	var vocab bpe.Vocabulary
	pprof.Do(ctx, pprof.Labels("stage", "initialize"), func(context.Context) {
		start := time.Now()
		vocab = bpe.InitializeVocabulary(lines)
		out.Timings.Initialize = time.Since(start)
	})
	out.Words = vocab.Total()
	out.WordForms = len(vocab)
	log.Info("vocabulary initialized",
		"lines", out.Lines,
		"words", out.Words,
		"word_forms", out.WordForms,
		"duration", out.Timings.Initialize,
	)

	var trained bpe.Result
	var mergeErr error
	pprof.Do(ctx, pprof.Labels("stage", "merge"), func(ctx context.Context) {
		start := time.Now()
		trained, mergeErr = bpe.Train(ctx, vocab, bpe.Options{
			Merges:       opts.Merges,
			Workers:      opts.Workers,
			StopEarly:    opts.StopEarly,
			MinFrequency: opts.MinFrequency,
			Progress: func(s bpe.Step) {
				log.Debug("merge",
					"iteration", s.Iteration+1,
					"left", s.Pair.Left,
					"right", s.Pair.Right,
					"frequency", s.Frequency,
				)
			},
		})
		out.Timings.Merge = time.Since(start)
	})
	if mergeErr != nil {
		return Result{}, fmt.Errorf("train merges: %w", mergeErr)
	}
	out.Vocab = trained.Vocab
	out.Merges = trained.Merges
	out.Stopped = trained.Stopped
	if trained.Stopped {
		log.Warn("merge loop stopped early", "applied", len(trained.Merges), "requested", opts.Merges)
	}
	log.Info("merges applied", "merges", len(trained.Merges), "duration", out.Timings.Merge)

	var assignErr error
	pprof.Do(ctx, pprof.Labels("stage", "assign"), func(context.Context) {
		start := time.Now()
		out.Tokens, assignErr = bpe.AssignTokenIDs(trained.Vocab)
		out.Timings.Assign = time.Since(start)
	})
	if assignErr != nil {
		return Result{}, fmt.Errorf("assign token ids: %w", assignErr)
	}
	log.Info("token ids assigned", "tokens", out.Tokens.Len(), "duration", out.Timings.Assign)

	out.Timings.Total = time.Since(startTotal)
	return out, nil
}
