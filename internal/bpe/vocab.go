// Package bpe trains a byte-pair-encoding subword vocabulary.
//
// Training runs in three stages: InitializeVocabulary turns normalized text
// lines into word forms, CollectPairStats counts adjacent symbol pairs, and
// RunMerges (or Train) repeatedly fuses the most frequent pair. The final
// vocabulary is then numbered by AssignTokenIDs.
package bpe

import (
	"sort"
	"strings"
)

// EndOfWord is appended to every word form so merges never cross word boundaries.
const EndOfWord = "</w>"

// WordForm is the current segmentation of one distinct word: its symbols
// joined by a single space. Symbols never contain whitespace because words
// are split on it.
type WordForm string

// NewWordForm joins symbols into a WordForm.
func NewWordForm(symbols ...string) WordForm {
	return WordForm(strings.Join(symbols, " "))
}

// Symbols returns the symbol sequence of w.
func (w WordForm) Symbols() []string {
	return strings.Fields(string(w))
}

// Surface returns the original word: all symbols concatenated with the
// end-of-word marker removed.
func (w WordForm) Surface() string {
	return strings.TrimSuffix(strings.ReplaceAll(string(w), " ", ""), EndOfWord)
}

// Vocabulary maps each word form to its occurrence count in the corpus.
type Vocabulary map[WordForm]int

// Clone returns an independent copy of v.
func (v Vocabulary) Clone() Vocabulary {
	out := make(Vocabulary, len(v))
	for w, c := range v {
		out[w] = c
	}
	return out
}

// Total returns the sum of all counts, i.e. the number of word occurrences.
func (v Vocabulary) Total() int {
	total := 0
	for _, c := range v {
		total += c
	}
	return total
}

// Keys returns the word forms of v in sorted order.
func (v Vocabulary) Keys() []WordForm {
	keys := make([]WordForm, 0, len(v))
	for w := range v {
		keys = append(keys, w)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })
	return keys
}

// InitializeVocabulary builds the initial vocabulary from text lines that the
// caller already lower-cased and whitespace-normalized. Each word becomes its
// characters plus EndOfWord; repeated words accumulate counts across lines.
func InitializeVocabulary(lines []string) Vocabulary {
	vocab := make(Vocabulary)
	for _, line := range lines {
		for _, word := range strings.Fields(line) {
			vocab[splitWord(word)]++
		}
	}
	return vocab
}

func splitWord(word string) WordForm {
	var sb strings.Builder
	sb.Grow(2*len(word) + len(EndOfWord))
	for _, r := range word {
		sb.WriteRune(r)
		sb.WriteByte(' ')
	}
	sb.WriteString(EndOfWord)
	return WordForm(sb.String())
}
