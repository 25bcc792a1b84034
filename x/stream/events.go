package stream

import (
	"fmt"

	"github.com/holiman/uint256"
	"github.com/iov-one/drip"
	"github.com/iov-one/drip/codec"
	"github.com/iov-one/drip/errors"
	"github.com/tendermint/tendermint/libs/common"
)

// Actions reported by events.
const (
	ActionCreate        = "create"
	ActionWithdraw      = "withdraw"
	ActionPause         = "pause"
	ActionResume        = "resume"
	ActionCancel        = "cancel"
	ActionModify        = "modify"
	ActionDeposit       = "deposit"
	ActionWithdrawPayer = "withdraw_payer"
)

// Tag keys emitted with every delivered operation.
const (
	TagAction = "stream.action"
	TagID     = "stream.id"
	TagPayer  = "stream.payer"
	TagPayee  = "stream.payee"
)

// Event describes a completed ledger operation.
type Event struct {
	Action   string
	Payer    drip.Address
	Payee    drip.Address
	Rate     uint256.Int
	Start    drip.UnixTime
	End      drip.UnixTime
	StreamID string
	// PreviousID is set when a stream was replaced by a modification.
	PreviousID string
	// Amount of native tokens moved by the operation.
	Amount uint256.Int
}

func streamEvent(action string, key StreamKey, amount *uint256.Int) *Event {
	e := &Event{
		Action:   action,
		Payer:    key.Payer(),
		Payee:    key.Payee(),
		Rate:     key.Rate,
		Start:    key.Start,
		End:      key.End,
		StreamID: key.ID(),
	}
	if amount != nil {
		e.Amount.Set(amount)
	}
	return e
}

func accountEvent(action string, payer drip.Address, amount *uint256.Int) *Event {
	e := &Event{Action: action, Payer: payer}
	if amount != nil {
		e.Amount.Set(amount)
	}
	return e
}

// Tags returns the key value pairs under which the event can be indexed.
func (e *Event) Tags() []common.KVPair {
	tags := []common.KVPair{
		{Key: []byte(TagAction), Value: []byte(e.Action)},
		{Key: []byte(TagPayer), Value: []byte(e.Payer.String())},
	}
	if e.StreamID != "" {
		tags = append(tags,
			common.KVPair{Key: []byte(TagID), Value: []byte(e.StreamID)},
			common.KVPair{Key: []byte(TagPayee), Value: []byte(e.Payee.String())},
		)
	}
	return tags
}

func (e *Event) Marshal() ([]byte, error) {
	return codec.NewEncoder().
		String(1, e.Action).
		Bytes(2, e.Payer).
		Bytes(3, e.Payee).
		Bytes(4, e.Rate.Bytes()).
		Int64(5, int64(e.Start)).
		Int64(6, int64(e.End)).
		String(7, e.StreamID).
		String(8, e.PreviousID).
		Bytes(9, e.Amount.Bytes()).
		Data(), nil
}

func (e *Event) Unmarshal(raw []byte) error {
	*e = Event{}
	d := codec.NewDecoder(raw)
	for d.More() {
		field, wire, err := d.Next()
		if err != nil {
			return err
		}
		var (
			b []byte
			t int64
		)
		switch field {
		case 1:
			e.Action, err = d.String(wire)
		case 2:
			b, err = d.Bytes(wire)
			e.Payer = b
		case 3:
			b, err = d.Bytes(wire)
			e.Payee = b
		case 4, 9:
			if b, err = d.Bytes(wire); err == nil {
				if len(b) > 32 {
					return errors.Wrapf(errors.ErrOverflow, "field %d", field)
				}
				if field == 4 {
					e.Rate.SetBytes(b)
				} else {
					e.Amount.SetBytes(b)
				}
			}
		case 5:
			t, err = d.Int64(wire)
			e.Start = drip.UnixTime(t)
		case 6:
			t, err = d.Int64(wire)
			e.End = drip.UnixTime(t)
		case 7:
			e.StreamID, err = d.String(wire)
		case 8:
			e.PreviousID, err = d.String(wire)
		default:
			err = d.Skip(wire)
		}
		if err != nil {
			return errors.Wrap(err, fmt.Sprintf("field %d", field))
		}
	}
	return nil
}
