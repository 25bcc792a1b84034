package weavetest

import "github.com/iov-one/drip"

// Tx represents a transaction carrying a single message.
type Tx struct {
	// Msg is the message that is to be processed by this transaction.
	Msg drip.Msg
	// Err if set is returned by any method call.
	Err error
}

var _ drip.Tx = (*Tx)(nil)

func (tx *Tx) GetMsg() (drip.Msg, error) {
	return tx.Msg, tx.Err
}

// Msg represents a message that carries no content.
type Msg struct {
	// Path returned by the path method, consumed by the router.
	RoutePath string
	// Err if set is returned by the Validate method.
	Err error
}

var _ drip.Msg = (*Msg)(nil)

func (m *Msg) Path() string {
	return m.RoutePath
}

func (m *Msg) Validate() error {
	return m.Err
}
