// Package apperr defines the error kinds surfaced to the user.
package apperr

import (
	"errors"
	"fmt"

	"dpclient/internal/exitcode"
)

// Kind classifies an error for presentation and exit code selection.
type Kind int

const (
	Usage Kind = iota + 1
	UnknownCommand
	UnknownSetting
	UnknownTask
	DuplicateTask
	InvalidDate
	IncompleteConfig
	RemoteSubmission
	CorruptData
	IO
)

var kindNames = map[Kind]string{
	Usage:            "usage",
	UnknownCommand:   "unknown command",
	UnknownSetting:   "unknown setting",
	UnknownTask:      "unknown task",
	DuplicateTask:    "duplicate task",
	InvalidDate:      "invalid date",
	IncompleteConfig: "incomplete config",
	RemoteSubmission: "remote submission failed",
	CorruptData:      "corrupt data file",
	IO:               "i/o error",
}

func (k Kind) String() string {
	if s, ok := kindNames[k]; ok {
		return s
	}
	return fmt.Sprintf("kind(%d)", int(k))
}

// ExitCode maps the kind to a process exit code.
func (k Kind) ExitCode() int {
	switch k {
	case IncompleteConfig:
		return exitcode.ConfigError
	case RemoteSubmission:
		return exitcode.RemoteError
	case CorruptData, IO:
		return exitcode.StoreError
	default:
		return exitcode.UserError
	}
}

// Error is a classified error. Topic names the help verb to consult.
type Error struct {
	Kind  Kind
	Msg   string
	Topic string
	Err   error
}

func (e *Error) Error() string {
	msg := e.Kind.String()
	if e.Msg != "" {
		msg += ": " + e.Msg
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *Error) Unwrap() error { return e.Err }

// New returns an error of the given kind.
func New(kind Kind, format string, args ...any) *Error {
	return &Error{Kind: kind, Msg: fmt.Sprintf(format, args...)}
}

// Wrap returns an error of the given kind wrapping err.
func Wrap(kind Kind, err error, format string, args ...any) *Error {
	return &Error{Kind: kind, Msg: fmt.Sprintf(format, args...), Err: err}
}

// WithTopic sets the help topic if none is set yet and returns e.
func (e *Error) WithTopic(topic string) *Error {
	if e.Topic == "" {
		e.Topic = topic
	}
	return e
}

// As returns the first *Error in err's chain.
func As(err error) (*Error, bool) {
	var e *Error
	ok := errors.As(err, &e)
	return e, ok
}

// KindOf returns the kind of the first *Error in err's chain, or 0.
func KindOf(err error) Kind {
	if e, ok := As(err); ok {
		return e.Kind
	}
	return 0
}

// IsKind reports whether err carries the given kind.
func IsKind(err error, kind Kind) bool {
	return KindOf(err) == kind
}

// ExitCode returns the exit code for err. Unclassified errors are user errors.
func ExitCode(err error) int {
	if err == nil {
		return exitcode.Success
	}
	if k := KindOf(err); k != 0 {
		return k.ExitCode()
	}
	return exitcode.UserError
}
