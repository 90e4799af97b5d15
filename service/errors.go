package service

import (
	"errors"
	"fmt"
)

// ErrNotFound is returned when the referenced contact does not exist.
var ErrNotFound = errors.New("contact not found")

// Client-facing messages for storage failures. Internal detail stays in the logs.
const (
	MsgCreateFailed = "Failed to add contact"
	MsgListFailed   = "Failed to fetch contacts"
	MsgDeleteFailed = "Failed to delete contact"
)

// Messages for delete requests that name no contact.
const (
	MsgInvalidID = "Invalid contact ID"
	MsgNotFound  = "Contact not found"
)

// ValidationError reports caller-supplied data that fails a precondition.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

// StorageError reports a persistence failure. Message is safe to show to
// callers; Err carries the cause.
type StorageError struct {
	Op      string
	Message string
	Err     error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("%s: %s: %v", e.Op, e.Message, e.Err)
}

func (e *StorageError) Unwrap() error {
	return e.Err
}
