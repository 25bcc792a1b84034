package stream

import (
	"fmt"

	"github.com/holiman/uint256"
	"github.com/iov-one/drip"
	"github.com/iov-one/drip/codec"
	"github.com/iov-one/drip/errors"
	"github.com/iov-one/drip/orm"
)

const (
	// StreamBucketName is where stream records are kept under their
	// encoded key.
	StreamBucketName = "strm"

	// AccountBucketName is where payer accounts are kept under the payer
	// address.
	AccountBucketName = "sacc"
)

// Stream is the mutable state of a stream identified by a StreamKey.
//
// A non zero Cursor means the stream is active and accrues from that moment.
// A non zero PausedAt means a stream with this identity was paused and can be
// resumed. Both can be set at the same time when a paused stream was
// recreated.
type Stream struct {
	Cursor   drip.UnixTime
	PausedAt drip.UnixTime
}

var _ orm.Model = (*Stream)(nil)

// Active returns true if the stream accrues.
func (s *Stream) Active() bool {
	return s.Cursor != 0
}

// Paused returns true if the stream can be resumed.
func (s *Stream) Paused() bool {
	return s.PausedAt != 0
}

func (s *Stream) Validate() error {
	if s.Cursor < 0 || s.PausedAt < 0 {
		return errors.Wrap(errors.ErrModel, "negative time")
	}
	if s.Cursor == 0 && s.PausedAt == 0 {
		return errors.Wrap(errors.ErrModel, "neither active nor paused")
	}
	return nil
}

func (s *Stream) Marshal() ([]byte, error) {
	return codec.NewEncoder().
		Int64(1, int64(s.Cursor)).
		Int64(2, int64(s.PausedAt)).
		Data(), nil
}

func (s *Stream) Unmarshal(raw []byte) error {
	*s = Stream{}
	d := codec.NewDecoder(raw)
	for d.More() {
		field, wire, err := d.Next()
		if err != nil {
			return err
		}
		var v int64
		switch field {
		case 1:
			v, err = d.Int64(wire)
			s.Cursor = drip.UnixTime(v)
		case 2:
			v, err = d.Int64(wire)
			s.PausedAt = drip.UnixTime(v)
		default:
			err = d.Skip(wire)
		}
		if err != nil {
			return errors.Wrap(err, fmt.Sprintf("field %d", field))
		}
	}
	return nil
}

// NewStreamBucket returns a bucket of Stream records.
func NewStreamBucket() orm.ModelBucket {
	return orm.NewModelBucket(StreamBucketName, &Stream{})
}

// Account is the funding state of a single payer. All amounts are scaled.
//
// Balance and TotalRate are maintained by the pool model. TotalDeposited,
// TotalCommitted and TotalWithdrawn are maintained by the escrow model.
type Account struct {
	Balance        uint256.Int
	TotalRate      uint256.Int
	TotalDeposited uint256.Int
	TotalCommitted uint256.Int
	TotalWithdrawn uint256.Int
}

var _ orm.Model = (*Account)(nil)

// Free returns the part of the escrow deposits that is neither withdrawn nor
// committed to a stream.
func (a *Account) Free() *uint256.Int {
	free := new(uint256.Int).Sub(&a.TotalDeposited, &a.TotalWithdrawn)
	if free.Lt(&a.TotalCommitted) {
		return new(uint256.Int)
	}
	return free.Sub(free, &a.TotalCommitted)
}

func (a *Account) Validate() error {
	if a.TotalWithdrawn.Gt(&a.TotalDeposited) {
		return errors.Wrap(errors.ErrModel, "withdrawn more than deposited")
	}
	if new(uint256.Int).Sub(&a.TotalDeposited, &a.TotalWithdrawn).Lt(&a.TotalCommitted) {
		return errors.Wrap(errors.ErrModel, "commitments not covered")
	}
	return nil
}

func (a *Account) Marshal() ([]byte, error) {
	return codec.NewEncoder().
		Bytes(1, a.Balance.Bytes()).
		Bytes(2, a.TotalRate.Bytes()).
		Bytes(3, a.TotalDeposited.Bytes()).
		Bytes(4, a.TotalCommitted.Bytes()).
		Bytes(5, a.TotalWithdrawn.Bytes()).
		Data(), nil
}

func (a *Account) Unmarshal(raw []byte) error {
	*a = Account{}
	d := codec.NewDecoder(raw)
	for d.More() {
		field, wire, err := d.Next()
		if err != nil {
			return err
		}
		var dst *uint256.Int
		switch field {
		case 1:
			dst = &a.Balance
		case 2:
			dst = &a.TotalRate
		case 3:
			dst = &a.TotalDeposited
		case 4:
			dst = &a.TotalCommitted
		case 5:
			dst = &a.TotalWithdrawn
		}
		if dst == nil {
			err = d.Skip(wire)
		} else {
			var b []byte
			if b, err = d.Bytes(wire); err == nil {
				if len(b) > 32 {
					return errors.Wrapf(errors.ErrOverflow, "field %d", field)
				}
				dst.SetBytes(b)
			}
		}
		if err != nil {
			return errors.Wrap(err, fmt.Sprintf("field %d", field))
		}
	}
	return nil
}

// NewAccountBucket returns a bucket of payer accounts.
func NewAccountBucket() orm.ModelBucket {
	return orm.NewModelBucket(AccountBucketName, &Account{})
}
