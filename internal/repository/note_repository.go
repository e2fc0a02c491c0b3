package repository

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"unicode/utf8"

	"mdnotes-server/internal/domain"

	"github.com/bmatcuk/doublestar/v4"
)

const DefaultPattern = "*" + domain.NoteExtension

type NoteRepository interface {
	Init() error
	IsEmpty() (bool, error)
	List() ([]string, error)
	Read(name string) (string, error)
	Write(name, content string) (string, error)
	Delete(name string) error
}

type fileNoteRepository struct {
	root    string
	pattern string
}

// NewNoteRepository returns a NoteRepository storing one file per note
// directly under root. Only names matching pattern are listed.
func NewNoteRepository(root, pattern string) (NoteRepository, error) {
	if pattern == "" {
		pattern = DefaultPattern
	}
	if !doublestar.ValidatePattern(pattern) {
		return nil, fmt.Errorf("invalid note pattern %q", pattern)
	}

	return &fileNoteRepository{
		root:    root,
		pattern: pattern,
	}, nil
}

func (r *fileNoteRepository) Init() error {
	if err := os.MkdirAll(r.root, 0o755); err != nil {
		return &domain.IOError{Op: "create notes directory", Name: r.root, Err: err}
	}
	return nil
}

func (r *fileNoteRepository) IsEmpty() (bool, error) {
	entries, err := os.ReadDir(r.root)
	if err != nil {
		return false, &domain.IOError{Op: "read notes directory", Name: r.root, Err: err}
	}
	return len(entries) == 0, nil
}

func (r *fileNoteRepository) List() ([]string, error) {
	entries, err := os.ReadDir(r.root)
	if err != nil {
		return nil, &domain.IOError{Op: "read notes directory", Name: r.root, Err: err}
	}

	files := make([]string, 0, len(entries))
	for _, entry := range entries {
		name := entry.Name()
		if !MatchName(r.pattern, name) {
			continue
		}
		// Stat follows symlinks, so a link to a regular file counts.
		info, err := os.Stat(filepath.Join(r.root, name))
		if err != nil || !info.Mode().IsRegular() {
			continue
		}
		files = append(files, name)
	}

	return files, nil
}

func (r *fileNoteRepository) Read(name string) (string, error) {
	path, err := r.existingFile(name)
	if err != nil {
		return "", err
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return "", &domain.IOError{Op: "read", Name: name, Err: err}
	}
	if !utf8.Valid(data) {
		return "", &domain.IOError{Op: "read", Name: name, Err: errors.New("content is not valid UTF-8")}
	}

	return string(data), nil
}

func (r *fileNoteRepository) Write(name, content string) (string, error) {
	filename := WithExtension(name)

	path, err := ResolvePath(r.root, filename)
	if err != nil {
		return "", err
	}

	perm, err := writePerm(path)
	if err != nil {
		return "", &domain.IOError{Op: "write", Name: filename, Err: err}
	}

	if err := writeFileAtomic(path, []byte(content), perm); err != nil {
		return "", &domain.IOError{Op: "write", Name: filename, Err: err}
	}

	return filename, nil
}

// writePerm returns the mode a save should leave on path. An existing note
// keeps its permission bits and must be writable by its owner.
func writePerm(path string) (os.FileMode, error) {
	info, err := os.Stat(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return 0o644, nil
		}
		return 0, err
	}
	if !info.Mode().IsRegular() {
		return 0, errors.New("not a regular file")
	}
	if info.Mode().Perm()&0o200 == 0 {
		return 0, fs.ErrPermission
	}
	return info.Mode().Perm(), nil
}

func (r *fileNoteRepository) Delete(name string) error {
	path, err := r.existingFile(name)
	if err != nil {
		return err
	}

	if err := os.Remove(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return domain.ErrNotFound
		}
		return &domain.IOError{Op: "delete", Name: name, Err: err}
	}

	return nil
}

// existingFile resolves name and requires it to be a regular file.
func (r *fileNoteRepository) existingFile(name string) (string, error) {
	path, err := ResolvePath(r.root, name)
	if err != nil {
		return "", err
	}

	info, err := os.Stat(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return "", domain.ErrNotFound
		}
		return "", &domain.IOError{Op: "stat", Name: name, Err: err}
	}
	if !info.Mode().IsRegular() {
		return "", domain.ErrNotFound
	}

	return path, nil
}

// MatchName reports whether a bare file name matches the note pattern.
func MatchName(pattern, name string) bool {
	ok, err := doublestar.Match(pattern, name)
	return err == nil && ok
}
