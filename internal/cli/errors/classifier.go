// Package errors classifies failures for the command layer: every error
// shown to the user carries a kind from the fixed taxonomy and an
// actionable hint, never a raw stack trace.
package errors

import (
	"context"
	stderrors "errors"
	"os/exec"
	"strings"
)

type ErrorKind string

const (
	ErrorKindNotFound    ErrorKind = "not-found"
	ErrorKindToolMissing ErrorKind = "tool-missing"
	ErrorKindTimeout     ErrorKind = "timeout"
	ErrorKindMalformed   ErrorKind = "malformed-state"
	ErrorKindExec        ErrorKind = "exec-failed"
	ErrorKindUnknown     ErrorKind = "unknown"
)

// Sentinels the command layer wraps with context (the unit or skill
// name, the CLI tool) before handing the error to Classify.
var (
	ErrUnitNotFound  = stderrors.New("unit not found")
	ErrSkillNotFound = stderrors.New("skill not found")
	ErrToolMissing   = stderrors.New("required tool not found on PATH")
	ErrTimeout       = stderrors.New("operation timed out")
)

type ClassifiedError struct {
	Kind    ErrorKind `json:"kind"`
	Message string    `json:"message"`
	Hint    string    `json:"hint,omitempty"` // user-friendly next step
	Raw     error     `json:"-"`
}

func (e ClassifiedError) Error() string {
	return e.Message
}

func (e ClassifiedError) Unwrap() error {
	return e.Raw
}

// Classify maps err onto the taxonomy. Sentinel matches win; otherwise
// the message is inspected the way shell output tends to look. A nil
// error classifies to the zero value.
func Classify(err error) ClassifiedError {
	if err == nil {
		return ClassifiedError{}
	}

	switch {
	case stderrors.Is(err, ErrUnitNotFound):
		return ClassifiedError{
			Kind:    ErrorKindNotFound,
			Message: err.Error(),
			Hint:    "Run 'pmcp avail' to see available units",
			Raw:     err,
		}
	case stderrors.Is(err, ErrSkillNotFound):
		return ClassifiedError{
			Kind:    ErrorKindNotFound,
			Message: err.Error(),
			Hint:    "Run 'pskill avail' to see available skills",
			Raw:     err,
		}
	case stderrors.Is(err, ErrToolMissing), stderrors.Is(err, exec.ErrNotFound):
		return ClassifiedError{
			Kind:    ErrorKindToolMissing,
			Message: err.Error(),
			Hint:    "Install the tool and make sure it is on your PATH",
			Raw:     err,
		}
	case stderrors.Is(err, ErrTimeout), stderrors.Is(err, context.DeadlineExceeded):
		return ClassifiedError{
			Kind:    ErrorKindTimeout,
			Message: err.Error(),
			Hint:    "The external command did not finish in time; re-run to retry",
			Raw:     err,
		}
	}

	msg := strings.ToLower(err.Error())
	switch {
	case strings.Contains(msg, "executable file not found"):
		return ClassifiedError{
			Kind:    ErrorKindToolMissing,
			Message: err.Error(),
			Hint:    "Install the tool and make sure it is on your PATH",
			Raw:     err,
		}
	case strings.Contains(msg, "not found"):
		return ClassifiedError{
			Kind:    ErrorKindNotFound,
			Message: err.Error(),
			Hint:    "Check the name; 'pmcp avail' and 'pskill avail' list what exists",
			Raw:     err,
		}
	case strings.Contains(msg, "timed out") || strings.Contains(msg, "deadline exceeded"):
		return ClassifiedError{
			Kind:    ErrorKindTimeout,
			Message: err.Error(),
			Hint:    "The external command did not finish in time; re-run to retry",
			Raw:     err,
		}
	case strings.Contains(msg, "yaml") || strings.Contains(msg, "unmarshal") || strings.Contains(msg, "parse"):
		return ClassifiedError{
			Kind:    ErrorKindMalformed,
			Message: err.Error(),
			Hint:    "A config file is malformed; run 'validate-registry' to locate the entry",
			Raw:     err,
		}
	case strings.Contains(msg, "exit status") || strings.Contains(msg, "signal:"):
		return ClassifiedError{
			Kind:    ErrorKindExec,
			Message: err.Error(),
			Hint:    "An external command failed; re-run with --verbose for its output",
			Raw:     err,
		}
	default:
		return ClassifiedError{
			Kind:    ErrorKindUnknown,
			Message: err.Error(),
			Hint:    "An unexpected error occurred",
			Raw:     err,
		}
	}
}
