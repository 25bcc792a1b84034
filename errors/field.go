package errors

import (
	"fmt"

	"github.com/pkg/errors"
)

// Field attaches the name of the invalid attribute to err. A nil err gives
// nil, so validation code can pass the result of a check straight through.
//
// Names follow Go naming. Nested attributes are joined with a dot (Key.Payer)
// and list elements use their index (Messages.3).
func Field(name string, err error, description string, args ...interface{}) error {
	if isNilErr(err) {
		return nil
	}
	// The stack is captured once, at the innermost wrap.
	if stackTrace(err) == nil {
		err = errors.WithStack(err)
	}
	if len(args) != 0 {
		description = fmt.Sprintf(description, args...)
	}
	return &fieldError{field: name, desc: description, parent: err}
}

// AppendField adds a field error to the errs collection. Nothing is added
// when err is nil.
func AppendField(errs error, name string, err error) error {
	return Append(errs, Field(name, err, ""))
}

type fieldError struct {
	field  string
	desc   string
	parent error
}

func (e *fieldError) Error() string {
	if e.desc != "" {
		return fmt.Sprintf("field %q: %s: %s", e.field, e.desc, e.parent)
	}
	return fmt.Sprintf("field %q: %s", e.field, e.parent)
}

func (e *fieldError) Cause() error  { return e.parent }
func (e *fieldError) Field() string { return e.field }

type fielder interface {
	Field() string
}

// FieldErrors walks the error tree of err and collects every error created
// for the given field. Once a field matches, its subtree is not searched.
func FieldErrors(err error, name string) []error {
	var found []error
	for !isNilErr(err) {
		if f, ok := err.(fielder); ok && f.Field() == name {
			return append(found, err)
		}
		if u, ok := err.(unpacker); ok {
			// Unpack covers every child, Cause would not add anything.
			for _, child := range u.Unpack() {
				found = append(found, FieldErrors(child, name)...)
			}
			return found
		}
		c, ok := err.(causer)
		if !ok {
			break
		}
		err = c.Cause()
	}
	return found
}
