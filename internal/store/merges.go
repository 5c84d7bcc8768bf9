package store

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/example/go-bpe-trainer/internal/bpe"
)

const mergesHeader = "#version: bpetrain 1"

// writeMerges writes one "left right" pair per line in selection order,
// preceded by a version header, the layout of GPT-2 style merges.txt files.
func writeMerges(w io.Writer, merges []bpe.Pair) error {
	if _, err := fmt.Fprintln(w, mergesHeader); err != nil {
		return err
	}
	for _, p := range merges {
		if _, err := fmt.Fprintln(w, p.String()); err != nil {
			return err
		}
	}
	return nil
}

// readMerges parses a merges file. Only the first line may be a "#version"
// header; symbols themselves may start with '#'.
func readMerges(r io.Reader) ([]bpe.Pair, error) {
	var merges []bpe.Pair

	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for line := 1; sc.Scan(); line++ {
		text := sc.Text()
		if line == 1 && strings.HasPrefix(text, "#version") {
			continue
		}
		if strings.TrimSpace(text) == "" {
			continue
		}
		parts := strings.Split(text, " ")
		if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
			return nil, fmt.Errorf("merges line %d: want \"left right\", got %q", line, text)
		}
		merges = append(merges, bpe.Pair{Left: parts[0], Right: parts[1]})
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("read merges: %w", err)
	}
	return merges, nil
}
