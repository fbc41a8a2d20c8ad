package gallery

import (
	"crypto/md5"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// Fingerprint digests the state of every PNG and CSV file in dir into a
// change-detection token. It is a pure function of each matched file's
// (name, mtime, size) and independent of enumeration order: two directory
// states with equal fingerprints are treated as identical.
//
// md5 is plenty here; collision resistance is a change-detection concern,
// not a security one.
func Fingerprint(dir string) (string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return "", fmt.Errorf("failed to read directory %s: %w", dir, err)
	}

	var tokens []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		ext := strings.ToLower(filepath.Ext(entry.Name()))
		if ext != ".png" && ext != ".csv" {
			continue
		}

		info, err := entry.Info()
		if err != nil {
			// A file disappearing mid-listing is itself a change; let the
			// token set reflect whatever is still visible.
			continue
		}

		tokens = append(tokens, fmt.Sprintf("%s:%d:%d", entry.Name(), info.ModTime().UnixNano(), info.Size()))
	}

	// Tokens start with the filename, so sorting them sorts by name.
	sort.Strings(tokens)

	sum := md5.Sum([]byte(strings.Join(tokens, "|")))
	return fmt.Sprintf("%x", sum), nil
}
