package decree

import (
	"fmt"
	"sort"
	"strings"
)

// Exit codes used by Main. Usage errors follow the shell convention of
// exiting with 2, plain failures with 1.
const (
	exitOK      = 0
	exitFailure = 1
	exitUsage   = 2
)

// ExitError carries an explicit exit code out of a run function. Main
// exits with the code without printing anything; a wrapped error is
// printed first.
type ExitError struct {
	Code int
	Err  error
}

// Exit returns an ExitError with the given code.
func Exit(code int) *ExitError {
	return &ExitError{Code: code}
}

// Error implements the error interface.
func (e *ExitError) Error() string {
	if e.Err != nil {
		return e.Err.Error()
	}

	return fmt.Sprintf("exit %d", e.Code)
}

// Unwrap returns the wrapped error, if any.
func (e *ExitError) Unwrap() error { return e.Err }

// HelpError signals that a help page should be shown instead of running
// the command. It is not a failure: Main prints the page on stdout and
// exits 0.
type HelpError struct {
	// Help is the rendered help page.
	Help string
}

// Error implements the error interface.
func (e *HelpError) Error() string { return "help requested" }

// UsageError wraps an error caused by the way the command was invoked:
// a missing or invalid parameter, an unexpected token, a missing or
// unknown subcommand. Main prints the usage line and a help hint before
// the message, and exits 2.
type UsageError struct {
	// Err is the underlying error.
	Err error

	// Usage is the rendered usage line of the failing command.
	Usage string

	// Hint suggests how to reach the help page, or is empty when the
	// failing command has no help option.
	Hint string
}

// Error implements the error interface.
func (e *UsageError) Error() string { return e.Err.Error() }

// Unwrap returns the underlying error.
func (e *UsageError) Unwrap() error { return e.Err }

// BadParameterError reports a value that a parameter could not accept,
// whatever its source.
type BadParameterError struct {
	// Param is the offending parameter, when known.
	Param *Parameter

	// Err is the conversion or validation error.
	Err error
}

// Error implements the error interface.
func (e *BadParameterError) Error() string {
	if e.Param == nil {
		return fmt.Sprintf("invalid value: %s", e.Err)
	}

	return fmt.Sprintf("invalid value for %s: %s", e.Param.ErrorHint(), e.Err)
}

// Unwrap returns the conversion or validation error.
func (e *BadParameterError) Unwrap() error { return e.Err }

// MissingParameterError reports a required parameter that resolved to
// nothing: no capture, no environment variable, no configuration entry
// and no default.
type MissingParameterError struct {
	Param *Parameter
}

// Error implements the error interface.
func (e *MissingParameterError) Error() string {
	return fmt.Sprintf("missing %s %s", e.Param.kind(), e.Param.ErrorHint())
}

// UnexpectedTokenError reports a token no parameter claimed: an unknown
// flag, or a leftover value in strict parsing mode. Possibilities holds
// suggested corrections, closest first.
type UnexpectedTokenError struct {
	Token         string
	Possibilities []string
}

// Error implements the error interface.
func (e *UnexpectedTokenError) Error() string {
	msg := fmt.Sprintf("unexpected parameter: %s", e.Token)

	switch len(e.Possibilities) {
	case 0:
		return msg
	case 1:
		return fmt.Sprintf("%s. Did you mean %s?", msg, e.Possibilities[0])
	default:
		options := append([]string(nil), e.Possibilities...)
		sort.Strings(options)

		return fmt.Sprintf("%s. (Possible options: %s)", msg, strings.Join(options, ", "))
	}
}

// UnknownCommandError reports a subcommand name a group does not know.
// Possibilities holds close matches among the registered names.
type UnknownCommandError struct {
	Name          string
	Possibilities []string
}

// Error implements the error interface.
func (e *UnknownCommandError) Error() string {
	msg := fmt.Sprintf("unknown command %q", e.Name)

	switch len(e.Possibilities) {
	case 0:
		return msg
	case 1:
		return fmt.Sprintf("%s. Did you mean %q?", msg, e.Possibilities[0])
	default:
		options := append([]string(nil), e.Possibilities...)
		sort.Strings(options)

		return fmt.Sprintf("%s. (Possible options: %s)", msg, strings.Join(options, ", "))
	}
}
