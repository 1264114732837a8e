// Package rpcerr defines the closed set of RPC error codes from the wire
// protocol and their corresponding client process exit codes, plus a
// Classify function that maps internal errors to a wire code (grounded on the
// ErrClassifier interface pattern: a function from error to a short
// categorical label, used for systematic, stable analysis).
package rpcerr

import "errors"

// Code is one of the well-known RPC error codes.
type Code string

const (
	ParseError          Code = "PARSE_ERROR"
	CommandNotAvailable Code = "COMMAND_NOT_AVAILABLE"
	DaemonUnavailable   Code = "DAEMON_UNAVAILABLE"
	PermissionDenied    Code = "PERMISSION_DENIED"
	InvalidResponse     Code = "INVALID_RESPONSE"
	GeneralError        Code = "GENERAL_ERROR"
)

// ExitCode returns the client process exit code for c.
func (c Code) ExitCode() int {
	switch c {
	case ParseError, InvalidResponse:
		return 65
	case CommandNotAvailable:
		return 64
	case DaemonUnavailable:
		return 70
	case PermissionDenied:
		return 77
	default:
		return 1
	}
}

// Error is the typed error carried over the wire and surfaced verbatim by
// the client; it is never reformatted or used to synthesize advice.
type Error struct {
	Code    Code   `json:"code"`
	Message string `json:"message"`
}

func (e *Error) Error() string { return string(e.Code) + ": " + e.Message }

// New constructs an *Error.
func New(code Code, message string) *Error {
	return &Error{Code: code, Message: message}
}

// Classify maps an arbitrary internal error to a wire Code. Known
// sentinel errors are matched with errors.Is; anything unrecognized
// becomes GeneralError. Classify picks the code only: the RPC server sends
// the error's own text as the message.
func Classify(err error) Code {
	if err == nil {
		return ""
	}
	var rerr *Error
	if errors.As(err, &rerr) {
		return rerr.Code
	}
	for _, c := range classifiers {
		if errors.Is(err, c.sentinel) {
			return c.code
		}
	}
	return GeneralError
}

var classifiers []classifier

type classifier struct {
	sentinel error
	code     Code
}

// Register adds a sentinel->code mapping; called from package init()
// functions in packages that define domain sentinel errors (factstore,
// changeengine, probe), so rpcerr stays decoupled from their internals.
func Register(sentinel error, code Code) {
	classifiers = append(classifiers, classifier{sentinel: sentinel, code: code})
}
