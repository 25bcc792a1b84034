package errors

import "fmt"

const (
	// SuccessABCICode is reported for a nil error.
	SuccessABCICode = 0

	// Errors that carry no registered code are reported as internal,
	// with the message hidden outside of debug mode.
	internalABCICode uint32 = 1
	internalABCILog         = "internal error"
)

// ABCIInfo returns the code and log a host reports for err.
//
// Registered errors expose their message. Anything else is internal: code 1
// and a generic log, unless debug is set, in which case the full message and
// stack trace (when available) are returned.
func ABCIInfo(err error, debug bool) (uint32, string) {
	if isNilErr(err) {
		return SuccessABCICode, ""
	}
	code := abciCode(err)
	switch {
	case debug:
		return code, fmt.Sprintf("%+v", err)
	case code == internalABCICode:
		return code, internalABCILog
	default:
		return code, err.Error()
	}
}

type coder interface {
	ABCICode() uint32
}

// abciCode unwraps err until it finds an ABCI code. Errors without one are
// internal.
func abciCode(err error) uint32 {
	if isNilErr(err) {
		return SuccessABCICode
	}
	for {
		if c, ok := err.(coder); ok {
			return c.ABCICode()
		}
		c, ok := err.(causer)
		if !ok {
			return internalABCICode
		}
		err = c.Cause()
	}
}
