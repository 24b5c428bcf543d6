package bits

import (
	"errors"
	"fmt"
)

// ErrorCode categorizes calculator failures.
type ErrorCode string

const (
	// CodeInvalidSymbol indicates a symbol outside the base's alphabet.
	CodeInvalidSymbol ErrorCode = "INVALID_SYMBOL"

	// CodeWidthExceeded indicates an operand longer than the allowed width.
	CodeWidthExceeded ErrorCode = "WIDTH_EXCEEDED"

	// CodeInvalidBCDDigit indicates a 4-bit group whose value exceeds 9.
	CodeInvalidBCDDigit ErrorCode = "INVALID_BCD_DIGIT"

	// CodeLengthMismatch indicates operands that must be equal length are not.
	CodeLengthMismatch ErrorCode = "LENGTH_MISMATCH"

	// CodeNegativeResult indicates an unsigned subtraction went below zero.
	CodeNegativeResult ErrorCode = "NEGATIVE_RESULT"

	// CodeEmptyInput indicates a required operand was empty.
	CodeEmptyInput ErrorCode = "EMPTY_INPUT"
)

var caseNames = map[ErrorCode]string{
	CodeInvalidSymbol:   "InvalidSymbol",
	CodeWidthExceeded:   "WidthExceeded",
	CodeInvalidBCDDigit: "InvalidBCDDigit",
	CodeLengthMismatch:  "LengthMismatch",
	CodeNegativeResult:  "NegativeResult",
	CodeEmptyInput:      "EmptyInput",
}

// Case returns the PascalCase outcome name used in journals and worksheets.
func (c ErrorCode) Case() string {
	if name, ok := caseNames[c]; ok {
		return name
	}
	return string(c)
}

// Error is a typed calculator failure.
//
// Failures are deterministic functions of the input; nothing is retried.
type Error struct {
	// Code identifies the failure kind.
	Code ErrorCode

	// Message is a human-readable description.
	Message string

	// Input is the offending operand, if any.
	Input string

	// Position is the index of the offending symbol in Input, or -1.
	Position int
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Position >= 0 && e.Input != "" {
		return fmt.Sprintf("%s: %s (input=%q, position=%d)", e.Code, e.Message, e.Input, e.Position)
	}
	if e.Input != "" {
		return fmt.Sprintf("%s: %s (input=%q)", e.Code, e.Message, e.Input)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Is reports whether target is an *Error with the same code.
// This lets callers write errors.Is(err, bits.ErrInvalidSymbol).
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Code == e.Code
}

// Sentinels for errors.Is matching. Only the Code is compared.
var (
	ErrInvalidSymbol   = &Error{Code: CodeInvalidSymbol, Message: "invalid symbol", Position: -1}
	ErrWidthExceeded   = &Error{Code: CodeWidthExceeded, Message: "width exceeded", Position: -1}
	ErrInvalidBCDDigit = &Error{Code: CodeInvalidBCDDigit, Message: "invalid BCD digit", Position: -1}
	ErrLengthMismatch  = &Error{Code: CodeLengthMismatch, Message: "length mismatch", Position: -1}
	ErrNegativeResult  = &Error{Code: CodeNegativeResult, Message: "negative result", Position: -1}
	ErrEmptyInput      = &Error{Code: CodeEmptyInput, Message: "empty input", Position: -1}
)

// CodeOf extracts the ErrorCode from err.
// Uses errors.As to handle wrapped errors.
func CodeOf(err error) (ErrorCode, bool) {
	var e *Error
	if errors.As(err, &e) {
		return e.Code, true
	}
	return "", false
}

// NewInvalidSymbol creates an error for a symbol outside base's alphabet.
func NewInvalidSymbol(input string, pos int, base Base) *Error {
	return &Error{
		Code:     CodeInvalidSymbol,
		Message:  fmt.Sprintf("symbol %q is not a %s digit", input[pos], base),
		Input:    input,
		Position: pos,
	}
}

// NewWidthExceeded creates an error for an operand longer than maxWidth.
func NewWidthExceeded(input string, maxWidth int) *Error {
	return &Error{
		Code:     CodeWidthExceeded,
		Message:  fmt.Sprintf("width %d exceeds maximum %d", len(input), maxWidth),
		Input:    input,
		Position: -1,
	}
}

// NewEmptyInput creates an error for a missing operand.
func NewEmptyInput(what string) *Error {
	return &Error{
		Code:     CodeEmptyInput,
		Message:  what + " is empty",
		Position: -1,
	}
}

// NewLengthMismatch creates an error for operands of differing length.
func NewLengthMismatch(a, b string) *Error {
	return &Error{
		Code:     CodeLengthMismatch,
		Message:  fmt.Sprintf("operands differ in length (%d != %d)", len(a), len(b)),
		Position: -1,
	}
}

// NewNegativeResult creates an error for an unsigned subtraction below zero.
func NewNegativeResult(minuend, subtrahend string) *Error {
	return &Error{
		Code:     CodeNegativeResult,
		Message:  fmt.Sprintf("%s - %s is negative", minuend, subtrahend),
		Position: -1,
	}
}
