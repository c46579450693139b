package ir

import (
	"fmt"

	"github.com/cockroachdb/errors"
)

// ResolutionError is a terminal failure of the resolution flow.
//
// Every stage reports failures as a *ResolutionError value. Callers decide
// how to surface it; UserMessage gives the text meant for end users.
type ResolutionError struct {
	// Code identifies the failure category.
	Code ErrorCode

	// Message is a human-readable description for logs and operators.
	Message string

	// Raw is the offending call-expression text (MALFORMED_EXPRESSION).
	Raw string

	// Function names the function involved, when known.
	Function string

	// Argument names the offending argument (ARGUMENT_ERROR).
	Argument string

	// Err is the underlying collaborator error (EXECUTION_ERROR).
	Err error
}

// ErrorCode categorizes resolution failures.
type ErrorCode string

const (
	// ErrCodeMalformedExpression indicates the text did not match the call grammar.
	ErrCodeMalformedExpression ErrorCode = "MALFORMED_EXPRESSION"

	// ErrCodeUnknownFunction indicates the name is not registered.
	ErrCodeUnknownFunction ErrorCode = "UNKNOWN_FUNCTION"

	// ErrCodeArgumentError indicates a missing, unexpected or malformed argument.
	ErrCodeArgumentError ErrorCode = "ARGUMENT_ERROR"

	// ErrCodeExecutionError is an opaque failure passed through from the executor.
	ErrCodeExecutionError ErrorCode = "EXECUTION_ERROR"
)

// Error implements the error interface.
func (e *ResolutionError) Error() string {
	switch {
	case e.Function != "" && e.Argument != "":
		return fmt.Sprintf("%s: %s (function=%s, argument=%s)", e.Code, e.Message, e.Function, e.Argument)
	case e.Function != "":
		return fmt.Sprintf("%s: %s (function=%s)", e.Code, e.Message, e.Function)
	default:
		return fmt.Sprintf("%s: %s", e.Code, e.Message)
	}
}

// Unwrap returns the collaborator error, if any.
func (e *ResolutionError) Unwrap() error {
	return e.Err
}

// UserMessage returns the end-user facing description of the failure.
func (e *ResolutionError) UserMessage() string {
	switch e.Code {
	case ErrCodeMalformedExpression:
		return "could not understand the request shape"
	case ErrCodeUnknownFunction:
		return "no matching analytics query"
	case ErrCodeArgumentError:
		if e.Argument != "" {
			return fmt.Sprintf("invalid argument %q: %s", e.Argument, e.Message)
		}
		return e.Message
	case ErrCodeExecutionError:
		if e.Err != nil {
			return "query failed: " + e.Err.Error()
		}
		return "query failed"
	default:
		return e.Message
	}
}

// NewMalformedExpressionError reports text that does not match `name(k=v, ...)`.
func NewMalformedExpressionError(raw, reason string) *ResolutionError {
	msg := "expression does not match name(key=value, ...)"
	if reason != "" {
		msg = msg + ": " + reason
	}
	return &ResolutionError{
		Code:    ErrCodeMalformedExpression,
		Message: msg,
		Raw:     raw,
	}
}

// NewUnknownFunctionError reports a name missing from the registry.
func NewUnknownFunctionError(name string) *ResolutionError {
	return &ResolutionError{
		Code:     ErrCodeUnknownFunction,
		Message:  fmt.Sprintf("no function registered as %q", name),
		Function: name,
	}
}

// NewArgumentError reports a problem with one named argument.
func NewArgumentError(function, argument, message string) *ResolutionError {
	return &ResolutionError{
		Code:     ErrCodeArgumentError,
		Message:  message,
		Function: function,
		Argument: argument,
	}
}

// NewExecutionError wraps an executor failure without interpreting it.
func NewExecutionError(function string, err error) *ResolutionError {
	msg := "query execution failed"
	if err != nil {
		msg = err.Error()
	}
	return &ResolutionError{
		Code:     ErrCodeExecutionError,
		Message:  msg,
		Function: function,
		Err:      err,
	}
}

// CodeOf returns the ErrorCode carried by err, or "" if err is not a
// *ResolutionError. Uses errors.As to handle wrapped errors.
func CodeOf(err error) ErrorCode {
	var re *ResolutionError
	if errors.As(err, &re) {
		return re.Code
	}
	return ""
}

// IsMalformedExpression returns true if err is a MALFORMED_EXPRESSION failure.
func IsMalformedExpression(err error) bool {
	return CodeOf(err) == ErrCodeMalformedExpression
}

// IsUnknownFunction returns true if err is an UNKNOWN_FUNCTION failure.
func IsUnknownFunction(err error) bool {
	return CodeOf(err) == ErrCodeUnknownFunction
}

// IsArgumentError returns true if err is an ARGUMENT_ERROR failure.
func IsArgumentError(err error) bool {
	return CodeOf(err) == ErrCodeArgumentError
}

// IsExecutionError returns true if err is an EXECUTION_ERROR failure.
func IsExecutionError(err error) bool {
	return CodeOf(err) == ErrCodeExecutionError
}
