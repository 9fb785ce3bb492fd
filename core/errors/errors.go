// Package errors defines the error values returned at the edges of the corpus
// tooling: dictionary and config loading, corpus file access and CLI input.
//
// Classification and extraction never fail on malformed corpus text. They
// report weak evidence through confidence or a nil unit instead, so every
// error here describes something the caller asked for that could not be
// done. Each typed error unwraps to one of the sentinels unless it carries
// its own cause.
package errors

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound: an anchor verse, corpus file or dictionary entry is absent.
	ErrNotFound = errors.New("not found")

	// ErrInvalidInput: a flag, config value, marker or dictionary entry is malformed.
	ErrInvalidInput = errors.New("invalid input")

	// ErrUnsupported: a corpus format or dictionary version this build cannot read.
	ErrUnsupported = errors.New("unsupported")
)

func causeOr(err, sentinel error) error {
	if err != nil {
		return err
	}
	return sentinel
}

// NotFoundError names a missing resource, such as an anchor verse that is
// not in a text.
type NotFoundError struct {
	Resource string // "anchor verse", "logical unit", "corpus file"
	ID       string // marker or path
	Err      error
}

// NewNotFound creates a NotFoundError.
func NewNotFound(resource, id string) *NotFoundError {
	return &NotFoundError{Resource: resource, ID: id}
}

func (e *NotFoundError) Error() string {
	if e.ID == "" {
		return e.Resource + " not found"
	}
	return fmt.Sprintf("%s %s not found", e.Resource, e.ID)
}

func (e *NotFoundError) Unwrap() error { return causeOr(e.Err, ErrNotFound) }

// ValidationError reports a value rejected by a check. Field uses the config
// key or dictionary path of the value ("extract.max_verses", "signal epic.work").
type ValidationError struct {
	Field   string
	Value   string
	Message string
	Err     error
}

// NewValidation creates a ValidationError.
func NewValidation(field, message string) *ValidationError {
	return &ValidationError{Field: field, Message: message}
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return "invalid input: " + e.Message
	}
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Message)
}

func (e *ValidationError) Unwrap() error { return causeOr(e.Err, ErrInvalidInput) }

// IOError wraps a filesystem or decompression failure on a corpus, config or
// dictionary file.
type IOError struct {
	Operation string // "open", "read", "stat", "decompress"
	Path      string
	Err       error
}

// NewIO creates an IOError.
func NewIO(operation, path string, err error) *IOError {
	return &IOError{Operation: operation, Path: path, Err: err}
}

func (e *IOError) Error() string {
	if e.Path == "" {
		return fmt.Sprintf("%s: %v", e.Operation, e.Err)
	}
	return fmt.Sprintf("%s %s: %v", e.Operation, e.Path, e.Err)
}

func (e *IOError) Unwrap() error { return e.Err }

// ParseError reports input that could not be decoded: YAML, TEI or a verse
// marker.
type ParseError struct {
	Format  string
	Path    string
	Message string
	Err     error
}

// NewParse creates a ParseError.
func NewParse(format, path, message string) *ParseError {
	return &ParseError{Format: format, Path: path, Message: message}
}

func (e *ParseError) Error() string {
	if e.Path == "" {
		return fmt.Sprintf("parse %s: %s", e.Format, e.Message)
	}
	return fmt.Sprintf("parse %s %s: %s", e.Format, e.Path, e.Message)
}

func (e *ParseError) Unwrap() error { return causeOr(e.Err, ErrInvalidInput) }

// UnsupportedError reports a readable but unhandled input, such as a nested
// .xz archive or a newer dictionary version.
type UnsupportedError struct {
	Feature string
	Reason  string
	Err     error
}

// NewUnsupported creates an UnsupportedError.
func NewUnsupported(feature, reason string) *UnsupportedError {
	return &UnsupportedError{Feature: feature, Reason: reason}
}

func (e *UnsupportedError) Error() string {
	if e.Reason == "" {
		return e.Feature + " not supported"
	}
	return fmt.Sprintf("%s not supported: %s", e.Feature, e.Reason)
}

func (e *UnsupportedError) Unwrap() error { return causeOr(e.Err, ErrUnsupported) }

// Category names the sentinel err resolves to, for logs and exit codes:
// "not_found", "invalid_input", "unsupported", "io" or "" for anything else.
func Category(err error) string {
	var ioErr *IOError
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrNotFound):
		return "not_found"
	case errors.Is(err, ErrInvalidInput):
		return "invalid_input"
	case errors.Is(err, ErrUnsupported):
		return "unsupported"
	case errors.As(err, &ioErr):
		return "io"
	}
	return ""
}

// Wrap prefixes err with message. A nil err stays nil.
func Wrap(err error, message string) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", message, err)
}

// Wrapf is Wrap with a formatted message.
func Wrapf(err error, format string, args ...any) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", fmt.Sprintf(format, args...), err)
}

// Is is errors.Is, re-exported so callers need one errors import.
func Is(err, target error) bool { return errors.Is(err, target) }

// As is errors.As, re-exported so callers need one errors import.
func As(err error, target any) bool { return errors.As(err, target) }
