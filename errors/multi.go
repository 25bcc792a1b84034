package errors

import (
	"fmt"
	"strings"
)

// Append clubs together all provided errors. Nil values are ignored.
//
// If no errors are provided or all of them are nil, nil is returned.
// A single non nil error is returned unchanged.
func Append(errs ...error) error {
	var res multiErr
	for _, err := range errs {
		if isNilErr(err) {
			continue
		}
		if m, ok := err.(multiErr); ok {
			res = append(res, m...)
		} else {
			res = append(res, err)
		}
	}
	switch len(res) {
	case 0:
		return nil
	case 1:
		return res[0]
	default:
		return res
	}
}

// multiErr is a list of errors that occurred together, usually while
// validating several fields of the same message.
type multiErr []error

func (e multiErr) Error() string {
	msgs := make([]string, len(e))
	for i, err := range e {
		msgs[i] = fmt.Sprintf("* %s", err)
	}
	return fmt.Sprintf("%d errors occurred:\n\t%s", len(e), strings.Join(msgs, "\n\t"))
}

// Unpack returns all contained errors.
func (e multiErr) Unpack() []error {
	return []error(e)
}

// ABCICode returns the code of the first contained error, following the fail
// fast approach.
func (e multiErr) ABCICode() uint32 {
	return abciCode(e[0])
}

type unpacker interface {
	Unpack() []error
}
