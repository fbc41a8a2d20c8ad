package gallery

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// ValidateFilename resolves an untrusted filename against baseDir and
// returns an absolute path guaranteed to live directly inside it.
//
// Traversal attempts are rejected before any filesystem access: a
// filename containing a path separator, a ".." segment, or an absolute
// path fails without a stat ever reaching the traversal target. Failures
// return ErrInvalidPath; callers must map it to a generic forbidden
// response so the error leaks nothing about the filesystem.
func ValidateFilename(baseDir, filename string) (string, error) {
	if filename == "" {
		return "", fmt.Errorf("empty filename: %w", ErrInvalidPath)
	}

	if strings.ContainsAny(filename, `/\`) || filepath.IsAbs(filename) {
		return "", fmt.Errorf("filename %q contains path separators: %w", filename, ErrInvalidPath)
	}
	if strings.Contains(filename, "..") {
		return "", fmt.Errorf("filename %q contains traversal segment: %w", filename, ErrInvalidPath)
	}

	safe := sanitizeFilename(filename)
	if safe == "" {
		return "", fmt.Errorf("filename %q: %w", filename, ErrInvalidPath)
	}

	absBase, err := filepath.Abs(baseDir)
	if err != nil {
		return "", fmt.Errorf("resolving base directory: %w", ErrInvalidPath)
	}
	if resolved, err := filepath.EvalSymlinks(absBase); err == nil {
		absBase = resolved
	}

	candidate := filepath.Join(absBase, safe)
	absCandidate, err := filepath.Abs(candidate)
	if err != nil {
		return "", fmt.Errorf("resolving %q: %w", safe, ErrInvalidPath)
	}

	// Belt and braces: the sanitized name cannot escape, but the result
	// must still canonically live under the base directory.
	if !isWithin(absBase, absCandidate) {
		return "", fmt.Errorf("filename %q escapes base directory: %w", filename, ErrInvalidPath)
	}

	return absCandidate, nil
}

// sanitizeFilename strips anything outside a conservative character set
// for names that already passed the separator and traversal checks.
func sanitizeFilename(name string) string {
	var b strings.Builder
	b.Grow(len(name))

	for _, r := range name {
		switch {
		case r == ' ':
			b.WriteByte('_')
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			b.WriteRune(r)
		case r == '.' || r == '-' || r == '_':
			b.WriteRune(r)
		}
	}

	return strings.Trim(b.String(), "._")
}

// isWithin reports whether child is parent itself or a descendant of it.
// Plain prefix matching would let "/data-evil" pass for base "/data".
func isWithin(parent, child string) bool {
	if child == parent {
		return true
	}
	return strings.HasPrefix(child, parent+string(os.PathSeparator))
}
