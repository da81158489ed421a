package parser

import (
	"errors"
	"fmt"

	"github.com/amirbrooks/duke/internal/tasklist"
)

var (
	ErrWrongArity      = errors.New("wrong command format")
	ErrNonNumericIndex = errors.New("parameter is not a numerical value")
	ErrMissingMarker   = errors.New("missing marker (e.g. /by, /from, /to)")
	ErrEmptyParameter  = errors.New("empty parameter")
	ErrUnknownCommand  = errors.New("invalid command")

	// Re-exported so callers can match every dispatch failure from one package.
	ErrIndexOutOfRange = tasklist.ErrIndexOutOfRange
	ErrInvalidDate     = tasklist.ErrInvalidDate
)

// CommandError is returned by Dispatch for every rejected line. Err is one of
// the sentinel errors above, possibly wrapped.
type CommandError struct {
	Command string
	Token   string
	Err     error
}

func (e *CommandError) Error() string {
	if e == nil || e.Err == nil {
		return "command failed"
	}
	msg := e.Err.Error()
	if e.Command != "" {
		msg = e.Command + ": " + msg
	}
	if e.Token != "" {
		msg = fmt.Sprintf("%s (got %q)", msg, e.Token)
	}
	return msg
}

func (e *CommandError) Unwrap() error { return e.Err }

// Kind names the failure class for renderers and NDJSON output.
func Kind(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrWrongArity):
		return "wrong_arity"
	case errors.Is(err, ErrNonNumericIndex):
		return "non_numeric_index"
	case errors.Is(err, ErrMissingMarker):
		return "missing_marker"
	case errors.Is(err, ErrEmptyParameter):
		return "empty_parameter"
	case errors.Is(err, ErrIndexOutOfRange):
		return "index_out_of_range"
	case errors.Is(err, ErrInvalidDate):
		return "invalid_date"
	case errors.Is(err, ErrUnknownCommand):
		return "unknown_command"
	default:
		return "internal"
	}
}

func fail(cmd, token string, err error) error {
	return &CommandError{Command: cmd, Token: token, Err: err}
}
