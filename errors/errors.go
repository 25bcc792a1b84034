package errors

import (
	"fmt"
	"reflect"

	"github.com/pkg/errors"
)

// Root errors shared by all packages. Extensions register their own codes,
// the stream extension for example uses 1100 and up.
var (
	ErrUnauthorized = Register(2, "unauthorized")
	ErrNotFound     = Register(3, "not found")
	ErrMsg          = Register(4, "invalid message")

	// ErrModel marks a record that cannot be persisted.
	ErrModel = Register(5, "invalid model")

	// ErrHuman marks a code path that correct code never reaches.
	ErrHuman = Register(7, "coding error")

	ErrEmpty  = Register(9, "value is empty")
	ErrState  = Register(10, "invalid state")
	ErrType   = Register(11, "invalid type")
	ErrAmount = Register(12, "invalid amount")
	ErrInput  = Register(13, "invalid input")

	// ErrOverflow is returned when a result does not fit its type.
	ErrOverflow = Register(15, "an operation cannot be completed due to value overflow")

	// ErrDatabase wraps failures of the storage layer.
	ErrDatabase = Register(16, "database")

	// ErrIteratorDone ends every iteration.
	ErrIteratorDone = Register(17, "iterator done")

	// ErrCurrency is returned for an invalid or unexpected ticker.
	ErrCurrency = Register(18, "invalid currency code")

	// ErrPanic is set by Recover.
	ErrPanic = Register(111222, "panic")
)

// codes holds every registered error. Code 1 is reserved for errors that
// carry no code.
var codes = map[uint32]*Error{
	1: {code: 1, desc: "internal"},
}

// Register declares a root error with a code unique across the program. A
// duplicate code panics, so Register belongs in package level variables.
func Register(code uint32, description string) *Error {
	if prev, ok := codes[code]; ok {
		panic(fmt.Sprintf("error code %d already registered as %q", code, prev.desc))
	}
	e := &Error{code: code, desc: description}
	codes[code] = e
	return e
}

// Error is a root error. Errors created at runtime wrap one of them, which
// gives them their ABCI code and lets callers test their kind with Is.
type Error struct {
	code uint32
	desc string
}

func (e Error) Error() string {
	return e.desc
}

// ABCICode returns the code the error is reported under.
func (e Error) ABCICode() uint32 {
	return e.code
}

// New is a shortcut for Wrap(e, description).
func (e *Error) New(description string) error {
	return Wrap(e, description)
}

// Newf is New with formatting.
func (e *Error) Newf(format string, args ...interface{}) error {
	return Wrap(e, fmt.Sprintf(format, args...))
}

// Is reports whether err wraps e. A collection matches only if all of its
// members do. A nil e matches any nil error, including typed nil pointers.
func (e *Error) Is(err error) bool {
	if e == nil {
		return isNilErr(err)
	}
	for {
		if err == e {
			return true
		}
		if u, ok := err.(unpacker); ok {
			for _, member := range u.Unpack() {
				if !e.Is(member) {
					return false
				}
			}
			return true
		}
		c, ok := err.(causer)
		if !ok {
			return false
		}
		err = c.Cause()
	}
}

// Wrap adds context to err and returns nil for a nil err. The innermost wrap
// records a stack trace. Errors that do not wrap a root error are reported
// as internal.
func Wrap(err error, description string) error {
	if err == nil {
		return nil
	}
	if stackTrace(err) == nil {
		err = errors.WithStack(err)
	}
	return &wrappedError{msg: description, parent: err}
}

// Wrapf is Wrap with formatting.
func Wrapf(err error, format string, args ...interface{}) error {
	return Wrap(err, fmt.Sprintf(format, args...))
}

type wrappedError struct {
	msg    string
	parent error
}

func (e *wrappedError) Error() string {
	return e.msg + ": " + e.parent.Error()
}

func (e *wrappedError) Cause() error  { return e.parent }
func (e *wrappedError) Unwrap() error { return e.parent }

// Format prints the stack trace of the innermost wrap with %+v.
func (e *wrappedError) Format(s fmt.State, verb rune) {
	if verb == 'v' && s.Flag('+') {
		fmt.Fprintf(s, "%s: %+v", e.msg, e.parent)
		return
	}
	fmt.Fprint(s, e.Error())
}

// Recover turns a panic into an ErrPanic assigned to *err. Call it deferred.
func Recover(err *error) {
	if r := recover(); r != nil {
		*err = Wrapf(ErrPanic, "%v", r)
	}
}

// WithType wraps err with the type name of obj.
func WithType(err error, obj interface{}) error {
	return Wrap(err, fmt.Sprintf("%T", obj))
}

type causer interface {
	Cause() error
}

type stackTracer interface {
	StackTrace() errors.StackTrace
}

// stackTrace returns the first stack trace found down the cause chain.
func stackTrace(err error) errors.StackTrace {
	for {
		if st, ok := err.(stackTracer); ok {
			return st.StackTrace()
		}
		c, ok := err.(causer)
		if !ok {
			return nil
		}
		err = c.Cause()
	}
}

// isNilErr also treats a typed nil pointer stored in the interface as nil.
func isNilErr(err error) bool {
	if err == nil {
		return true
	}
	v := reflect.ValueOf(err)
	return v.Kind() == reflect.Ptr && v.IsNil()
}
