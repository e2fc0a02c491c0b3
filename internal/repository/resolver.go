package repository

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"mdnotes-server/internal/domain"
)

// ResolvePath maps a user supplied note name to an absolute path inside root.
//
// Names that are empty, contain "..", a path separator or a NUL byte are
// rejected with domain.ErrInvalidName before touching the filesystem. The
// joined path is then canonicalized (symlinks included) and must stay strictly
// inside the canonical root, otherwise domain.ErrAccessDenied is returned.
func ResolvePath(root, rawName string) (string, error) {
	if rawName == "" ||
		strings.Contains(rawName, "..") ||
		strings.ContainsAny(rawName, `/\`+"\x00") ||
		strings.ContainsRune(rawName, os.PathSeparator) {
		return "", domain.ErrInvalidName
	}

	base, err := canonicalRoot(root)
	if err != nil {
		return "", err
	}

	candidate := filepath.Join(base, rawName)
	resolved, err := filepath.EvalSymlinks(candidate)
	switch {
	case err == nil:
	case errors.Is(err, fs.ErrNotExist):
		// A dangling symlink must not be written through.
		if _, lerr := os.Lstat(candidate); lerr == nil {
			return "", domain.ErrAccessDenied
		}
		resolved = candidate
	default:
		return "", fmt.Errorf("%w: %v", domain.ErrAccessDenied, err)
	}

	if !within(base, resolved) {
		return "", domain.ErrAccessDenied
	}

	return resolved, nil
}

// WithExtension appends the note extension when name lacks it.
func WithExtension(name string) string {
	if strings.HasSuffix(name, domain.NoteExtension) {
		return name
	}
	return name + domain.NoteExtension
}

func canonicalRoot(root string) (string, error) {
	abs, err := filepath.Abs(root)
	if err != nil {
		return "", &domain.IOError{Op: "resolve root", Name: root, Err: err}
	}
	if real, err := filepath.EvalSymlinks(abs); err == nil {
		return real, nil
	}
	return abs, nil
}

func within(base, path string) bool {
	rel, err := filepath.Rel(base, path)
	if err != nil {
		return false
	}
	if rel == "." || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return false
	}
	return !filepath.IsAbs(rel)
}
