package errors

import (
	stderrors "errors"
	"fmt"
	"strings"
)

type Kind string

const (
	InvalidConfig     Kind = "invalid_config"
	MissingArgument   Kind = "missing_argument"
	NotFound          Kind = "not_found"
	DestinationExists Kind = "destination_exists"
	EncodeFailure     Kind = "encode_failure"
	IOFailure         Kind = "io_failure"
	Internal          Kind = "internal"
)

type AppError struct {
	Kind Kind
	Op   string
	Path string
	Err  error
}

func (e *AppError) Error() string {
	if e.Path != "" {
		return fmt.Sprintf("%s: %s: %v", e.Op, e.Path, e.Err)
	}
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *AppError) Unwrap() error {
	return e.Err
}

func Wrap(kind Kind, op, path string, err error) error {
	if err == nil {
		return nil
	}
	return &AppError{
		Kind: kind,
		Op:   op,
		Path: path,
		Err:  err,
	}
}

// EncodeError is returned when the external encoder exits nonzero or cannot
// be started. ExitCode is -1 in the latter case.
type EncodeError struct {
	Input    string
	ExitCode int
	Stderr   string
	Err      error
}

func (e *EncodeError) Error() string {
	return fmt.Sprintf("encode %s: encoder exited with code %d", e.Input, e.ExitCode)
}

func (e *EncodeError) Unwrap() error {
	return e.Err
}

// KindOf returns the kind of the outermost AppError in the chain. A bare
// EncodeError reports EncodeFailure; anything else is Internal.
func KindOf(err error) Kind {
	var appErr *AppError
	if stderrors.As(err, &appErr) {
		return appErr.Kind
	}
	var encErr *EncodeError
	if stderrors.As(err, &encErr) {
		return EncodeFailure
	}
	return Internal
}

func Is(err error, kind Kind) bool {
	return KindOf(err) == kind
}

func UserMessage(err error) string {
	var encErr *EncodeError
	if stderrors.As(err, &encErr) {
		msg := fmt.Sprintf("Encoding failed for %s (exit code %d)", encErr.Input, encErr.ExitCode)
		if tail := lastLines(encErr.Stderr, 5); tail != "" {
			msg += "\n" + tail
		}
		return msg
	}

	var appErr *AppError
	if !stderrors.As(err, &appErr) {
		return err.Error()
	}
	switch appErr.Kind {
	case InvalidConfig:
		return fmt.Sprintf("Invalid configuration: %v", appErr.Err)
	case MissingArgument:
		return appErr.Err.Error()
	case NotFound:
		return fmt.Sprintf("Path not found: %s", appErr.Path)
	case DestinationExists:
		return fmt.Sprintf("A directory already exists at %s. Please remove or rename the existing directory before proceeding.", appErr.Path)
	case IOFailure:
		return fmt.Sprintf("I/O error: %s: %v", appErr.Path, appErr.Err)
	default:
		return fmt.Sprintf("Unexpected error: %v", appErr.Err)
	}
}

func lastLines(text string, n int) string {
	lines := strings.Split(strings.TrimRight(text, "\n"), "\n")
	if len(lines) > n {
		lines = lines[len(lines)-n:]
	}
	return strings.TrimSpace(strings.Join(lines, "\n"))
}
