package bpe

import (
	"github.com/sourcegraph/conc/pool"
)

// Pair is an ordered pair of adjacent symbols.
type Pair struct {
	Left  string
	Right string
}

// Merged returns the symbol produced by fusing the pair.
func (p Pair) Merged() string { return p.Left + p.Right }

// String renders the pair as "left right", the merges.txt line format.
func (p Pair) String() string { return p.Left + " " + p.Right }

// less orders pairs lexicographically by Left, then Right.
func (p Pair) less(o Pair) bool {
	if p.Left != o.Left {
		return p.Left < o.Left
	}
	return p.Right < o.Right
}

// PairStats maps each adjacent pair to its frequency weighted by word count.
type PairStats map[Pair]int

// Best returns the most frequent pair. Ties go to the lexicographically
// smallest pair. ok is false when s is empty.
func (s PairStats) Best() (best Pair, freq int, ok bool) {
	for p, f := range s {
		if !ok || f > freq || (f == freq && p.less(best)) {
			best, freq, ok = p, f, true
		}
	}
	return best, freq, ok
}

// CollectPairStats counts every adjacent symbol pair across vocab, weighting
// each occurrence by the word form's count.
func CollectPairStats(vocab Vocabulary) PairStats {
	stats := make(PairStats)
	for w, c := range vocab {
		addPairs(stats, w, c)
	}
	return stats
}

// CollectPairStatsParallel is CollectPairStats split across up to workers
// goroutines. Each shard is counted independently and the partial tables are
// summed, so the result equals the sequential one.
func CollectPairStatsParallel(vocab Vocabulary, workers int) PairStats {
	if workers <= 1 || len(vocab) < 2*workers {
		return CollectPairStats(vocab)
	}

	type entry struct {
		word  WordForm
		count int
	}
	entries := make([]entry, 0, len(vocab))
	for w, c := range vocab {
		entries = append(entries, entry{w, c})
	}

	shard := (len(entries) + workers - 1) / workers
	p := pool.NewWithResults[PairStats]().WithMaxGoroutines(workers)
	for start := 0; start < len(entries); start += shard {
		part := entries[start:min(start+shard, len(entries))]
		p.Go(func() PairStats {
			local := make(PairStats)
			for _, e := range part {
				addPairs(local, e.word, e.count)
			}
			return local
		})
	}

	stats := make(PairStats)
	for _, local := range p.Wait() {
		for pair, f := range local {
			stats[pair] += f
		}
	}
	return stats
}

func addPairs(stats PairStats, w WordForm, count int) {
	symbols := w.Symbols()
	for i := 0; i+1 < len(symbols); i++ {
		stats[Pair{symbols[i], symbols[i+1]}] += count
	}
}
