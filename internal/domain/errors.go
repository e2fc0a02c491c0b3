package domain

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidName  = errors.New("invalid note name")
	ErrNotFound     = errors.New("note not found")
	ErrAccessDenied = errors.New("access denied")
)

// IOError reports a filesystem failure for a single note operation.
type IOError struct {
	Op   string
	Name string
	Err  error
}

func (e *IOError) Error() string {
	if e.Name == "" {
		return fmt.Sprintf("%s: %v", e.Op, e.Err)
	}
	return fmt.Sprintf("%s %s: %v", e.Op, e.Name, e.Err)
}

func (e *IOError) Unwrap() error {
	return e.Err
}
