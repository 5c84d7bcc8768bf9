package store

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"regexp"
	"strings"
)

// ManifestFile is the name of the manifest written next to the artifacts.
const ManifestFile = "manifest.json"

type Manifest struct {
	Format    string                `json:"format"`
	Merges    int                   `json:"merges"`
	Tokens    int                   `json:"tokens"`
	Generated string                `json:"generated"`
	Files     map[string]FileRecord `json:"files"`
}

type FileRecord struct {
	SHA256 string `json:"sha256"`
	Bytes  int64  `json:"bytes"`
}

var shaHexPattern = regexp.MustCompile(`(?i)^[a-f0-9]{64}$`)

func isSHA256Hex(v string) bool {
	return shaHexPattern.MatchString(v)
}

func fileSHA256(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("open file for checksum: %w", err)
	}
	defer f.Close()

	h := sha256.New()
	if _, err := io.Copy(h, f); err != nil {
		return "", fmt.Errorf("read file for checksum: %w", err)
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}

func readManifest(path string) (Manifest, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return Manifest{}, fmt.Errorf("read manifest: %w", err)
	}
	var out Manifest
	if err := json.Unmarshal(b, &out); err != nil {
		return Manifest{}, fmt.Errorf("decode manifest: %w", err)
	}
	if out.Files == nil {
		out.Files = map[string]FileRecord{}
	}
	return out, nil
}

func writeManifest(path string, m Manifest) error {
	b, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return fmt.Errorf("encode manifest: %w", err)
	}
	if err := os.WriteFile(path, b, 0o644); err != nil {
		return fmt.Errorf("write manifest: %w", err)
	}
	return nil
}

// verifyFile checks that path matches the recorded checksum.
func verifyFile(path string, rec FileRecord) error {
	expected := strings.ToLower(rec.SHA256)
	if !isSHA256Hex(expected) {
		return fmt.Errorf("manifest has invalid sha256 %q for %s", rec.SHA256, path)
	}
	actual, err := fileSHA256(path)
	if err != nil {
		return err
	}
	if actual != expected {
		return fmt.Errorf("%w for %s: expected %s got %s", ErrChecksumMismatch, path, expected, actual)
	}
	return nil
}
