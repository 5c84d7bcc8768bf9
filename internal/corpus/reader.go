package corpus

import (
	"errors"
	"fmt"
	"io"
	"os"
)

// ErrEmptyPath is returned when ReadFile is called with an empty path.
var ErrEmptyPath = errors.New("corpus path must not be empty")

// Read consumes r and returns normalized sentence lines ready for
// bpe.InitializeVocabulary. An empty corpus yields no lines and no error.
func Read(r io.Reader) ([]string, error) {
	raw, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read corpus: %w", err)
	}

	return SplitSentences(Normalize(string(raw))), nil
}

// ReadFile opens path and reads it with Read.
func ReadFile(path string) ([]string, error) {
	if path == "" {
		return nil, ErrEmptyPath
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open corpus %q: %w", path, err)
	}
	defer f.Close()

	return Read(f)
}
