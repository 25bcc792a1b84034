package stream

import (
	"fmt"

	"github.com/holiman/uint256"
	"github.com/iov-one/drip"
	"github.com/iov-one/drip/codec"
	"github.com/iov-one/drip/errors"
)

// Query paths of the values computed from the committed state. Time
// dependent values use the time of the latest committed block.
const (
	QuerySufficiency  = "streams/sufficiency"
	QueryWithdrawable = "streams/withdrawable"
)

// SufficiencyRequest is the data of a sufficiency query.
type SufficiencyRequest struct {
	Payer drip.Address
	// Streams limits the projection. All streams of the payer are
	// projected when empty.
	Streams []StreamKey
	AsOf    drip.UnixTime
}

func (r *SufficiencyRequest) Marshal() ([]byte, error) {
	enc := codec.NewEncoder().Bytes(1, r.Payer)
	for _, k := range r.Streams {
		enc.Bytes(2, k.Bytes())
	}
	return enc.Int64(3, int64(r.AsOf)).Data(), nil
}

func (r *SufficiencyRequest) Unmarshal(raw []byte) error {
	*r = SufficiencyRequest{}
	d := codec.NewDecoder(raw)
	for d.More() {
		field, wire, err := d.Next()
		if err != nil {
			return err
		}
		var b []byte
		switch field {
		case 1:
			b, err = d.Bytes(wire)
			r.Payer = b
		case 2:
			if b, err = d.Bytes(wire); err == nil {
				var key StreamKey
				if key, err = ParseStreamKey(b); err == nil {
					r.Streams = append(r.Streams, key)
				}
			}
		case 3:
			var t int64
			t, err = d.Int64(wire)
			r.AsOf = drip.UnixTime(t)
		default:
			err = d.Skip(wire)
		}
		if err != nil {
			return errors.Wrap(err, fmt.Sprintf("field %d", field))
		}
	}
	return nil
}

func (s *Sufficiency) Marshal() ([]byte, error) {
	return codec.NewEncoder().
		Bool(1, s.IsSufficient).
		Bytes(2, s.Required.Bytes()).
		Bytes(3, s.Available.Bytes()).
		Bytes(4, s.Shortfall.Bytes()).
		Bytes(5, s.ShortfallNative.Bytes()).
		Data(), nil
}

func (s *Sufficiency) Unmarshal(raw []byte) error {
	*s = Sufficiency{}
	d := codec.NewDecoder(raw)
	for d.More() {
		field, wire, err := d.Next()
		if err != nil {
			return err
		}
		switch field {
		case 1:
			s.IsSufficient, err = d.Bool(wire)
		case 2:
			err = decodeAmount(d, wire, &s.Required)
		case 3:
			err = decodeAmount(d, wire, &s.Available)
		case 4:
			err = decodeAmount(d, wire, &s.Shortfall)
		case 5:
			err = decodeAmount(d, wire, &s.ShortfallNative)
		default:
			err = d.Skip(wire)
		}
		if err != nil {
			return errors.Wrap(err, fmt.Sprintf("field %d", field))
		}
	}
	return nil
}

func (w *Withdrawal) Marshal() ([]byte, error) {
	return codec.NewEncoder().
		Bytes(1, w.Amount.Bytes()).
		Bytes(2, w.Scaled.Bytes()).
		Int64(3, int64(w.CoveredUntil)).
		Data(), nil
}

func (w *Withdrawal) Unmarshal(raw []byte) error {
	*w = Withdrawal{}
	d := codec.NewDecoder(raw)
	for d.More() {
		field, wire, err := d.Next()
		if err != nil {
			return err
		}
		switch field {
		case 1:
			err = decodeAmount(d, wire, &w.Amount)
		case 2:
			err = decodeAmount(d, wire, &w.Scaled)
		case 3:
			var t int64
			t, err = d.Int64(wire)
			w.CoveredUntil = drip.UnixTime(t)
		default:
			err = d.Skip(wire)
		}
		if err != nil {
			return errors.Wrap(err, fmt.Sprintf("field %d", field))
		}
	}
	return nil
}

func decodeAmount(d *codec.Decoder, wire int, dst *uint256.Int) error {
	b, err := d.Bytes(wire)
	if err != nil {
		return err
	}
	if len(b) > 32 {
		return errors.Wrap(errors.ErrOverflow, "amount")
	}
	dst.SetBytes(b)
	return nil
}

// sufficiencyQuery runs IsSufficientFund for an encoded SufficiencyRequest.
type sufficiencyQuery struct {
	ledger *Ledger
}

var _ drip.QueryHandler = sufficiencyQuery{}

func (q sufficiencyQuery) Query(db drip.ReadOnlyKVStore, mod string, data []byte) ([]drip.Model, error) {
	if mod != drip.KeyQueryMod {
		return nil, errors.Wrapf(errors.ErrInput, "unsupported query mod %q", mod)
	}
	var req SufficiencyRequest
	if err := req.Unmarshal(data); err != nil {
		return nil, errors.Wrap(errors.ErrInput, err.Error())
	}
	ctx, err := drip.QueryContext(db)
	if err != nil {
		return nil, err
	}
	s, err := q.ledger.IsSufficientFund(ctx, db, req.Payer, req.Streams, req.AsOf)
	if err != nil {
		return nil, err
	}
	raw, err := s.Marshal()
	if err != nil {
		return nil, err
	}
	return []drip.Model{drip.Pair(req.Payer, raw)}, nil
}

// withdrawableQuery returns what a withdraw of the stream with given key
// would pay.
type withdrawableQuery struct {
	ledger *Ledger
}

var _ drip.QueryHandler = withdrawableQuery{}

func (q withdrawableQuery) Query(db drip.ReadOnlyKVStore, mod string, data []byte) ([]drip.Model, error) {
	if mod != drip.KeyQueryMod {
		return nil, errors.Wrapf(errors.ErrInput, "unsupported query mod %q", mod)
	}
	key, err := ParseStreamKey(data)
	if err != nil {
		return nil, err
	}
	ctx, err := drip.QueryContext(db)
	if err != nil {
		return nil, err
	}
	w, err := q.ledger.Withdrawable(ctx, db, key)
	if err != nil {
		return nil, err
	}
	raw, err := w.Marshal()
	if err != nil {
		return nil, err
	}
	return []drip.Model{drip.Pair(key.Bytes(), raw)}, nil
}
