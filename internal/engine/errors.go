package engine

import (
	"errors"
	"fmt"
	"strings"
)

// RuntimeError is a request the engine refused to run. Nothing is
// journaled for it.
type RuntimeError struct {
	// Code identifies the error category.
	Code RuntimeErrorCode

	// Message is a human-readable description.
	Message string

	// Op is the requested operation.
	Op string

	// Session is the session the request belonged to.
	Session string
}

// RuntimeErrorCode categorizes runtime errors.
type RuntimeErrorCode string

const (
	// ErrCodeUnknownOp indicates no operation is registered under the name.
	ErrCodeUnknownOp RuntimeErrorCode = "UNKNOWN_OP"

	// ErrCodeInvalidArgs indicates missing, mistyped, unknown or
	// meaningless arguments.
	ErrCodeInvalidArgs RuntimeErrorCode = "INVALID_ARGS"

	// ErrCodeLimitExceeded indicates the session reached its invocation limit.
	ErrCodeLimitExceeded RuntimeErrorCode = "LIMIT_EXCEEDED"
)

// Error implements the error interface.
func (e *RuntimeError) Error() string {
	if e.Op != "" {
		return fmt.Sprintf("%s: %s (op=%s)", e.Code, e.Message, e.Op)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func hasCode(err error, code RuntimeErrorCode) bool {
	var re *RuntimeError
	if errors.As(err, &re) {
		return re.Code == code
	}
	return false
}

// IsUnknownOp reports whether err is an unknown-operation error.
func IsUnknownOp(err error) bool {
	return hasCode(err, ErrCodeUnknownOp)
}

// IsInvalidArgs reports whether err is an invalid-arguments error.
func IsInvalidArgs(err error) bool {
	return hasCode(err, ErrCodeInvalidArgs)
}

// IsLimitExceeded reports whether err is a session-limit error.
func IsLimitExceeded(err error) bool {
	return hasCode(err, ErrCodeLimitExceeded)
}

func newUnknownOp(op, session string) *RuntimeError {
	return &RuntimeError{
		Code:    ErrCodeUnknownOp,
		Message: "no operation registered under this name",
		Op:      op,
		Session: session,
	}
}

func newInvalidArgs(op, session string, problems []string) *RuntimeError {
	return &RuntimeError{
		Code:    ErrCodeInvalidArgs,
		Message: strings.Join(problems, "; "),
		Op:      op,
		Session: session,
	}
}
