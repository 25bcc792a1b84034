package stream

import (
	"github.com/holiman/uint256"
	"github.com/iov-one/drip/errors"
)

// Precision is the number of decimals used by all internal accounting.
// Rates and balances are kept with this precision so that slow streams do
// not lose value to rounding on every second.
const Precision = 20

// Scaler converts between native token units and the internal fixed point
// representation.
type Scaler struct {
	divisor uint256.Int
}

// NewScaler returns a scaler for a token with given number of decimals.
func NewScaler(decimals uint8) (Scaler, error) {
	if decimals > Precision {
		return Scaler{}, errors.Wrapf(errors.ErrInput, "token decimals %d exceed precision %d", decimals, Precision)
	}
	var s Scaler
	s.divisor.Exp(uint256.NewInt(10), uint256.NewInt(uint64(Precision-decimals)))
	return s, nil
}

// Divisor returns a copy of the conversion factor.
func (s Scaler) Divisor() *uint256.Int {
	return new(uint256.Int).Set(&s.divisor)
}

// ToScaled multiplies a native amount into the internal representation.
func (s Scaler) ToScaled(native *uint256.Int) (*uint256.Int, error) {
	scaled, overflow := new(uint256.Int).MulOverflow(native, &s.divisor)
	if overflow {
		return nil, errors.Wrapf(errors.ErrOverflow, "cannot scale %s", native.Dec())
	}
	return scaled, nil
}

// ToNative converts a scaled amount to native units. The fractional part is
// truncated.
func (s Scaler) ToNative(scaled *uint256.Int) *uint256.Int {
	return new(uint256.Int).Div(scaled, &s.divisor)
}

// ToNativeCeil converts a scaled amount to native units rounding up, so that
// the result is never less than the scaled value.
func (s Scaler) ToNativeCeil(scaled *uint256.Int) *uint256.Int {
	n := s.ToNative(scaled)
	if !new(uint256.Int).Mod(scaled, &s.divisor).IsZero() {
		n.AddUint64(n, 1)
	}
	return n
}
