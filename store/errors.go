package store

import (
	"errors"
	"fmt"
)

// Reasons carried by ValidationError. Match them with errors.Is.
var (
	ErrNotLoaded             = errors.New("config not loaded")
	ErrUserConfigMissing     = errors.New("user config missing")
	ErrTemplateExists        = errors.New("template already exists")
	ErrTemplateMissing       = errors.New("template missing")
	ErrSourceTemplateMissing = errors.New("source template missing")
)

// ValidationError is a failed local precondition. The gateway was not contacted.
type ValidationError struct {
	Op     string
	Reason error
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Reason)
}

func (e *ValidationError) Unwrap() error { return e.Reason }

// RemoteMutationError is a command the backend rejected or answered with a
// malformed response. Message holds the backend's reason when it sent one.
type RemoteMutationError struct {
	Op      string
	Message string
	Err     error
}

func (e *RemoteMutationError) Error() string {
	switch {
	case e.Err != nil && e.Message != "":
		return fmt.Sprintf("%s failed: %s: %v", e.Op, e.Message, e.Err)
	case e.Err != nil:
		return fmt.Sprintf("%s failed: %v", e.Op, e.Err)
	default:
		return fmt.Sprintf("%s failed: %s", e.Op, e.Message)
	}
}

func (e *RemoteMutationError) Unwrap() error { return e.Err }

// PersistError means the cache holds changes the backend has not durably
// committed. Retrying Persist may clear it.
type PersistError struct {
	Err error
}

func (e *PersistError) Error() string {
	return fmt.Sprintf("save config: %v", e.Err)
}

func (e *PersistError) Unwrap() error { return e.Err }

// LoadError is a failed fetch of the configuration tree.
type LoadError struct {
	Err error
}

func (e *LoadError) Error() string {
	return fmt.Sprintf("load config: %v", e.Err)
}

func (e *LoadError) Unwrap() error { return e.Err }

func invalid(op string, reason error) error {
	return &ValidationError{Op: op, Reason: reason}
}
