package stream

import (
	"github.com/holiman/uint256"
	"github.com/iov-one/drip"
	"github.com/iov-one/drip/errors"
)

// Sufficiency is the result of projecting a payer's streams into the future.
// Required, Available and Shortfall are scaled.
type Sufficiency struct {
	IsSufficient bool
	Required     uint256.Int
	Available    uint256.Int
	Shortfall    uint256.Int
	// ShortfallNative is the smallest native deposit that makes the
	// projection sufficient.
	ShortfallNative uint256.Int
}

// IsSufficientFund projects what the given streams of a payer will have
// accrued by asOf, and compares it with the funds of the payer. When no keys
// are given, all streams of the payer are used. Paused streams are projected
// as if they were resumed now. The projection time must be after the cursor
// of every stream that has already started.
func (l *Ledger) IsSufficientFund(ctx drip.Context, db drip.ReadOnlyKVStore, payer drip.Address, keys []StreamKey, asOf drip.UnixTime) (*Sufficiency, error) {
	if err := payer.Validate(); err != nil {
		return nil, errors.Wrap(err, "payer")
	}
	e, err := l.env(ctx, db)
	if err != nil {
		return nil, err
	}

	var entries []StreamEntry
	if len(keys) == 0 {
		if entries, err = l.Streams(db, payer); err != nil {
			return nil, err
		}
	} else {
		for i, key := range keys {
			if !key.Payer().Equals(payer) {
				return nil, errors.Wrapf(errors.ErrInput, "stream %d does not belong to the payer", i)
			}
			st, err := l.loadStream(db, key)
			if err != nil {
				return nil, err
			}
			if !st.Active() && !st.Paused() {
				return nil, errors.Wrapf(ErrInactiveStream, "stream %d", i)
			}
			entries = append(entries, StreamEntry{Key: key, Stream: *st})
		}
	}

	var s Sufficiency
	for _, en := range entries {
		cursor := en.Stream.Cursor
		if cursor == 0 {
			cursor = clamp(e.now, en.Key.Start, en.Key.End)
		}
		// A stream that has not started yet accrues nothing before its
		// start and does not restrict the projection time.
		if en.Key.Start <= e.now && asOf <= cursor {
			return nil, errors.Wrapf(ErrInvalidTimeRange, "projection time %d not after %d", asOf, cursor)
		}
		if _, overflow := s.Required.AddOverflow(&s.Required, Accrued(en.Key, cursor, asOf)); overflow {
			return nil, errors.Wrap(errors.ErrOverflow, "required")
		}
	}

	acc, err := l.loadAccount(db, payer)
	if err != nil {
		return nil, err
	}
	s.Available.Set(e.model.available(acc))
	s.IsSufficient = !s.Required.Gt(&s.Available)
	if !s.IsSufficient {
		s.Shortfall.Sub(&s.Required, &s.Available)
		s.ShortfallNative.Set(e.scaler.ToNativeCeil(&s.Shortfall))
	}
	return &s, nil
}
