package drip

import (
	"reflect"

	"github.com/iov-one/drip/errors"
)

// Msg is message for the ledger to take an action
// (Make a state transition). It is just the request, and
// must be validated by the Handlers. All authentication
// information is in the wrapping Tx.
type Msg interface {
	// Path returns the message path.
	// This is used by the Router to locate the proper Handler.
	// Msg should be created alongside the Handler that corresponds to them.
	//
	// Multiple types may have the same value, and will end up at the
	// same Handler.
	//
	// Must be alphanumeric [0-9A-Za-z_\-/]+
	Path() string

	// Validate performs a sanity check of the message content. It does
	// not access the state.
	Validate() error
}

// Marshaller is anything that can be represented in binary
//
// Marshal may validate the data before serializing it and
// unless you previously validated the struct,
// errors should be expected.
type Marshaller interface {
	Marshal() ([]byte, error)
}

// Persistent supports Marshal and Unmarshal
//
// This is separated from Marshal, as this almost always requires
// a pointer, and functions that only need to marshal bytes can
// use the Marshaller interface to access non-pointers.
//
// As with Marshaller, this may do internal validation on the data
// and errors should be expected.
type Persistent interface {
	Marshaller
	Unmarshal([]byte) error
}

// Tx represent the data sent from the user to the ledger.
// It includes the actual message, along with information needed
// to authenticate the sender, and anything else needed to pass through
// middleware.
type Tx interface {
	// GetMsg returns the action we wish to communicate
	GetMsg() (Msg, error)
}

// GetPath returns the path of the message, or (missing) if no message
func GetPath(tx Tx) string {
	msg, err := tx.GetMsg()
	if err == nil && msg != nil {
		return msg.Path()
	}
	return "(missing)"
}

// LoadMsg extracts the message represented by given transaction into given
// destination. Before returning message validation method is called.
func LoadMsg(tx Tx, destination interface{}) error {
	msg, err := tx.GetMsg()
	if err != nil {
		return errors.Wrap(err, "cannot get message")
	}
	if msg == nil {
		return errors.Wrap(errors.ErrMsg, "no message")
	}
	if err := assign(destination, msg); err != nil {
		return err
	}
	if err := msg.Validate(); err != nil {
		return errors.Wrap(err, "invalid message")
	}
	return nil
}

// assign sets the message as the value of the destination. Destination must
// be a pointer to the message type or a pointer to the message pointer type.
func assign(destination interface{}, msg Msg) error {
	dst := reflect.ValueOf(destination)
	if dst.Kind() != reflect.Ptr || dst.IsNil() {
		return errors.Wrap(errors.ErrType, "destination must be a non nil pointer")
	}
	src := reflect.ValueOf(msg)
	elem := dst.Elem()
	switch {
	case src.Type().AssignableTo(elem.Type()):
		elem.Set(src)
	case src.Kind() == reflect.Ptr && src.Elem().Type().AssignableTo(elem.Type()):
		elem.Set(src.Elem())
	default:
		return errors.Wrapf(errors.ErrType, "cannot load %T into %T", msg, destination)
	}
	return nil
}
