// Package assert holds the small set of assertions used across the tests of
// this module. Every helper stops the test on failure.
package assert

import (
	"reflect"

	"github.com/iov-one/drip/errors"
)

// Tester is the part of testing.TB the assertions rely on.
type Tester interface {
	Helper()
	Fatal(...interface{})
	Fatalf(string, ...interface{})
}

// Nil fails unless value is nil, including a typed nil pointer, map, slice
// or func stored in an interface.
func Nil(t Tester, value interface{}) {
	t.Helper()
	if !isNil(value) {
		// %+v prints the stack trace of errors that carry one.
		t.Fatalf("want nil, got %+v", value)
	}
}

func isNil(value interface{}) bool {
	if value == nil {
		return true
	}
	v := reflect.ValueOf(value)
	switch v.Kind() {
	case reflect.Chan, reflect.Func, reflect.Interface, reflect.Map, reflect.Ptr, reflect.Slice:
		return v.IsNil()
	}
	return false
}

// Equal fails unless want and got are deeply equal.
func Equal(t Tester, want, got interface{}) {
	t.Helper()
	if !reflect.DeepEqual(want, got) {
		t.Fatalf("values differ\nwant %T %v\n got %T %v", want, want, got, got)
	}
}

// Panics fails unless fn panics.
func Panics(t Tester, fn func()) {
	t.Helper()
	defer func() {
		if recover() == nil {
			t.Fatal("panic expected")
		}
	}()
	fn()
}

// IsErr fails unless got is of the same kind as want. A root error matches
// any error wrapping it.
func IsErr(t Tester, want, got error) {
	t.Helper()
	if want == got {
		return
	}
	if kind, ok := want.(interface{ Is(error) bool }); ok && kind.Is(got) {
		return
	}
	t.Fatalf("want %q, got %+v", want, got)
}

// FieldError checks the errors reported for a single field of err. With a
// nil want there must be none. Otherwise there must be exactly one and it
// must be of the want kind.
func FieldError(t Tester, err error, field string, want *errors.Error) {
	t.Helper()
	found := errors.FieldErrors(err, field)
	switch {
	case want == nil && len(found) == 0:
		return
	case want == nil:
		t.Fatalf("field %q: want no error, got %d: %v", field, len(found), found)
	case len(found) == 0:
		t.Fatalf("field %q: no error found", field)
	case len(found) > 1:
		t.Fatalf("field %q: want a single error, got %d: %v", field, len(found), found)
	case !want.Is(found[0]):
		t.Fatalf("field %q: want %q, got %q", field, want, found[0])
	}
}
