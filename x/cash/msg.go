package cash

import (
	"github.com/iov-one/drip"
	"github.com/iov-one/drip/coin"
	"github.com/iov-one/drip/errors"
)

// Ensure we implement the Msg interface
var _ drip.Msg = (*SendMsg)(nil)

const maxMemoSize int = 128

// SendMsg requests a transfer of coins from the source wallet to the
// destination wallet.
type SendMsg struct {
	Source      drip.Address `json:"source"`
	Destination drip.Address `json:"destination"`
	Amount      *coin.Coin   `json:"amount"`
	Memo        string       `json:"memo,omitempty"`
}

// Path returns the routing path for this message
func (SendMsg) Path() string {
	return "cash/send"
}

// Validate makes sure that this is sensible
func (s *SendMsg) Validate() error {
	var err error
	if coin.IsEmpty(s.Amount) || !s.Amount.IsPositive() {
		err = errors.Field("Amount", errors.ErrAmount, "non-positive amount")
	} else {
		err = errors.AppendField(err, "Amount", s.Amount.Validate())
	}
	err = errors.AppendField(err, "Source", s.Source.Validate())
	err = errors.AppendField(err, "Destination", s.Destination.Validate())
	if len(s.Memo) > maxMemoSize {
		err = errors.AppendField(err, "Memo", errors.ErrState)
	}
	return err
}
