package batch

import (
	"fmt"

	"github.com/iov-one/drip"
	"github.com/iov-one/drip/errors"
)

const (
	PathExecuteBatchMsg = "batch/execute"

	// MaxBatchMessages is the maximum number of messages a single batch
	// can hold.
	MaxBatchMessages = 64
)

// ExecuteBatchMsg is a message that groups other messages into one
// execution unit.
type ExecuteBatchMsg struct {
	Messages []drip.Msg

	// RequireAllSucceed makes the batch atomic. When false, each message
	// is executed on its own and failures are reported per message.
	RequireAllSucceed bool
}

var _ drip.Msg = (*ExecuteBatchMsg)(nil)

func (*ExecuteBatchMsg) Path() string {
	return PathExecuteBatchMsg
}

// Validate checks the batch size and validates every message. Nested batches
// are not allowed.
func (m *ExecuteBatchMsg) Validate() error {
	switch n := len(m.Messages); {
	case n == 0:
		return errors.Wrap(errors.ErrEmpty, "messages")
	case n > MaxBatchMessages:
		return errors.Wrapf(errors.ErrInput, "transaction is too large, max: %d", MaxBatchMessages)
	}
	var err error
	for i, msg := range m.Messages {
		field := fmt.Sprintf("Messages.%d", i)
		switch msg.(type) {
		case nil:
			err = errors.AppendField(err, field, errors.ErrEmpty)
		case *ExecuteBatchMsg:
			err = errors.AppendField(err, field, errors.Wrap(errors.ErrInput, "nested batch"))
		default:
			err = errors.AppendField(err, field, msg.Validate())
		}
	}
	return err
}
