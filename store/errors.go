// Package store provides persistence for contacts.
package store

import (
	"errors"
	"fmt"
)

// ErrNotFound is returned when no contact matches the given id.
var ErrNotFound = errors.New("contact not found")

// Error wraps a failed database call with the operation that issued it.
type Error struct {
	Op  string // e.g. "Insert", "Count"
	Err error
}

func (e *Error) Error() string {
	return fmt.Sprintf("store %s: %v", e.Op, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

func wrap(op string, err error) error {
	if err == nil {
		return nil
	}
	return &Error{Op: op, Err: err}
}
