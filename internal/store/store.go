// Package store persists trained BPE artifacts to a directory and reads them
// back. A directory holds the vocabulary, the token-ID table, the ordered
// merge list and a manifest with a sha256 checksum per file.
package store

import (
	"bufio"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/example/go-bpe-trainer/internal/bpe"
	"github.com/example/go-bpe-trainer/internal/config"
	"go.uber.org/multierr"
	"gopkg.in/yaml.v3"
)

// File names inside an artifact directory. Vocab and token files carry the
// format as extension.
const (
	MergesFile = "merges.txt"
	vocabBase  = "vocab"
	tokensBase = "tokens"
)

var (
	// ErrChecksumMismatch is returned by Load when a file differs from its manifest entry.
	ErrChecksumMismatch = errors.New("checksum mismatch")
	// ErrInvalidTokens is returned by Load when the token table is not dense.
	ErrInvalidTokens = errors.New("invalid token table")
)

// Artifacts is the output of a training run.
type Artifacts struct {
	Vocab  bpe.Vocabulary
	Merges []bpe.Pair
	Tokens *bpe.TokenTable
}

// Save writes a to dir in the given format (json or yaml), then writes the
// manifest. dir is created if needed.
func Save(dir, format string, a Artifacts) (Manifest, error) {
	format, err := config.NormalizeFormat(format)
	if err != nil {
		return Manifest{}, err
	}
	if a.Tokens == nil {
		return Manifest{}, errors.New("token table is required")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return Manifest{}, fmt.Errorf("create output dir: %w", err)
	}

	m := Manifest{
		Format:    format,
		Merges:    len(a.Merges),
		Tokens:    a.Tokens.Len(),
		Generated: time.Now().UTC().Format(time.RFC3339),
		Files:     make(map[string]FileRecord, 3),
	}

	vocab := make(map[string]int, len(a.Vocab))
	for w, c := range a.Vocab {
		vocab[string(w)] = c
	}

	writes := []struct {
		name  string
		write func(io.Writer) error
	}{
		{vocabBase + "." + format, func(w io.Writer) error { return encode(w, format, vocab) }},
		{tokensBase + "." + format, func(w io.Writer) error { return encode(w, format, a.Tokens.Map()) }},
		{MergesFile, func(w io.Writer) error { return writeMerges(w, a.Merges) }},
	}
	for _, wr := range writes {
		rec, err := writeFile(filepath.Join(dir, wr.name), wr.write)
		if err != nil {
			return Manifest{}, fmt.Errorf("write %s: %w", wr.name, err)
		}
		m.Files[wr.name] = rec
	}

	if err := writeManifest(filepath.Join(dir, ManifestFile), m); err != nil {
		return Manifest{}, err
	}
	return m, nil
}

// Load reads artifacts written by Save, verifying every file against the manifest.
func Load(dir string) (Artifacts, Manifest, error) {
	m, err := readManifest(filepath.Join(dir, ManifestFile))
	if err != nil {
		return Artifacts{}, Manifest{}, err
	}

	format, err := config.NormalizeFormat(m.Format)
	if err != nil {
		return Artifacts{}, Manifest{}, fmt.Errorf("manifest: %w", err)
	}

	names := []string{vocabBase + "." + format, tokensBase + "." + format, MergesFile}
	for _, name := range names {
		rec, ok := m.Files[name]
		if !ok {
			return Artifacts{}, Manifest{}, fmt.Errorf("manifest has no entry for %s", name)
		}
		if err := verifyFile(filepath.Join(dir, name), rec); err != nil {
			return Artifacts{}, Manifest{}, err
		}
	}

	var vocab map[string]int
	if err := decodeFile(filepath.Join(dir, names[0]), format, &vocab); err != nil {
		return Artifacts{}, Manifest{}, err
	}
	var ids map[string]int
	if err := decodeFile(filepath.Join(dir, names[1]), format, &ids); err != nil {
		return Artifacts{}, Manifest{}, err
	}

	tokens, err := tokenTableFromIDs(ids)
	if err != nil {
		return Artifacts{}, Manifest{}, err
	}

	f, err := os.Open(filepath.Join(dir, MergesFile))
	if err != nil {
		return Artifacts{}, Manifest{}, fmt.Errorf("open merges: %w", err)
	}
	defer f.Close()

	merges, err := readMerges(f)
	if err != nil {
		return Artifacts{}, Manifest{}, err
	}

	a := Artifacts{
		Vocab:  make(bpe.Vocabulary, len(vocab)),
		Merges: merges,
		Tokens: tokens,
	}
	for w, c := range vocab {
		a.Vocab[bpe.WordForm(w)] = c
	}
	return a, m, nil
}

func tokenTableFromIDs(ids map[string]int) (*bpe.TokenTable, error) {
	type entry struct {
		tok string
		id  int
	}
	entries := make([]entry, 0, len(ids))
	for tok, id := range ids {
		entries = append(entries, entry{tok, id})
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].id < entries[j].id })

	tokens := make([]string, len(entries))
	for i, e := range entries {
		if e.id != i {
			return nil, fmt.Errorf("%w: expected id %d, found %d (%q)", ErrInvalidTokens, i, e.id, e.tok)
		}
		tokens[i] = e.tok
	}

	table, err := bpe.NewTokenTable(tokens)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidTokens, err)
	}
	return table, nil
}

func encode(w io.Writer, format string, v any) error {
	switch format {
	case config.FormatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(v); err != nil {
			return err
		}
		return enc.Close()
	default:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	}
}

func decodeFile(path, format string, v any) error {
	b, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read %s: %w", filepath.Base(path), err)
	}
	switch format {
	case config.FormatYAML:
		err = yaml.Unmarshal(b, v)
	default:
		err = json.Unmarshal(b, v)
	}
	if err != nil {
		return fmt.Errorf("decode %s: %w", filepath.Base(path), err)
	}
	return nil
}

// writeFile creates path, streams fn's output through a buffer and a sha256
// hash, and records the checksum and size.
func writeFile(path string, fn func(io.Writer) error) (rec FileRecord, err error) {
	f, err := os.Create(path)
	if err != nil {
		return FileRecord{}, err
	}
	defer multierr.AppendInvoke(&err, multierr.Close(f))

	h := sha256.New()
	cw := &countingWriter{w: io.MultiWriter(f, h)}
	bw := bufio.NewWriter(cw)
	if err := fn(bw); err != nil {
		return FileRecord{}, err
	}
	if err := bw.Flush(); err != nil {
		return FileRecord{}, err
	}

	return FileRecord{SHA256: hex.EncodeToString(h.Sum(nil)), Bytes: cw.n}, nil
}

type countingWriter struct {
	w io.Writer
	n int64
}

func (c *countingWriter) Write(p []byte) (int, error) {
	n, err := c.w.Write(p)
	c.n += int64(n)
	return n, err
}
