package bpe

import (
	"context"
	"strings"
)

// Step describes one applied merge.
type Step struct {
	Iteration int // 0-based
	Pair      Pair
	Frequency int
}

// Options configures Train.
type Options struct {
	// Merges is the number of merge iterations to run.
	Merges int
	// Workers > 1 collects pair statistics concurrently.
	Workers int
	// StopEarly ends training without error once no pairs remain.
	StopEarly bool
	// MinFrequency stops training when the best pair is rarer than this.
	// Zero disables the floor.
	MinFrequency int
	// Progress, if set, is called after every applied merge.
	Progress func(Step)
}

// Result is the outcome of Train.
type Result struct {
	Vocab Vocabulary
	// Merges lists the applied pairs in selection order.
	Merges []Pair
	// Stopped is true when training ended before Options.Merges iterations.
	Stopped bool
}

// RunMerges applies n merge iterations to vocab and returns the new
// vocabulary. vocab itself is not modified.
func RunMerges(vocab Vocabulary, n int) (Vocabulary, error) {
	res, err := Train(context.Background(), vocab, Options{Merges: n})
	if err != nil {
		return nil, err
	}
	return res.Vocab, nil
}

// Train runs the merge loop. Each iteration collects pair statistics, picks
// the most frequent pair (ties to the lexicographically smallest) and fuses
// it in every word form. ctx is checked between iterations.
//
// When no pairs remain and StopEarly is unset, Train returns a
// *NoMergeableStateError.
func Train(ctx context.Context, vocab Vocabulary, opts Options) (Result, error) {
	res := Result{Vocab: vocab.Clone()}
	if opts.Merges > 0 {
		res.Merges = make([]Pair, 0, opts.Merges)
	}

	for i := 0; i < opts.Merges; i++ {
		if err := ctx.Err(); err != nil {
			return Result{}, err
		}

		stats := CollectPairStatsParallel(res.Vocab, opts.Workers)
		best, freq, ok := stats.Best()
		if !ok {
			if opts.StopEarly {
				res.Stopped = true
				return res, nil
			}
			return Result{}, &NoMergeableStateError{
				Iteration: i,
				Requested: opts.Merges,
				Empty:     len(res.Vocab) == 0,
			}
		}
		if opts.MinFrequency > 0 && freq < opts.MinFrequency {
			res.Stopped = true
			return res, nil
		}

		res.Vocab = MergePair(res.Vocab, best)
		res.Merges = append(res.Merges, best)
		if opts.Progress != nil {
			opts.Progress(Step{Iteration: i, Pair: best, Frequency: freq})
		}
	}

	return res, nil
}

// MergePair returns a new vocabulary in which every non-overlapping adjacent
// occurrence of pair, scanning left to right, is replaced by the fused
// symbol. Matches happen only on whole symbols.
func MergePair(vocab Vocabulary, pair Pair) Vocabulary {
	out := make(Vocabulary, len(vocab))
	for w, c := range vocab {
		out[mergeWord(w, pair)] += c
	}
	return out
}

func mergeWord(w WordForm, pair Pair) WordForm {
	// Fast path: a word without the bigram keeps its key.
	if !strings.Contains(string(w), pair.Left+" "+pair.Right) {
		return w
	}

	symbols := w.Symbols()
	merged := make([]string, 0, len(symbols))
	for i := 0; i < len(symbols); i++ {
		if i+1 < len(symbols) && symbols[i] == pair.Left && symbols[i+1] == pair.Right {
			merged = append(merged, pair.Merged())
			i++
			continue
		}
		merged = append(merged, symbols[i])
	}
	return NewWordForm(merged...)
}
