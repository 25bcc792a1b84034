package coin

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strings"

	"github.com/holiman/uint256"
	"github.com/iov-one/drip/codec"
	"github.com/iov-one/drip/errors"
)

//-------------- Coin -----------------------

// IsCC is the RegExp to ensure valid currency codes
var IsCC = regexp.MustCompile(`^[A-Z]{3,5}$`).MatchString

// Coin is an amount of tokens of a single currency, expressed in the
// smallest unit of that currency. Amounts are never negative.
type Coin struct {
	Ticker string
	Amount uint256.Int
}

// NewCoin creates a new coin object
func NewCoin(amount uint64, ticker string) Coin {
	return Coin{
		Ticker: ticker,
		Amount: *uint256.NewInt(amount),
	}
}

// NewCoinp returns a pointer to a new coin.
func NewCoinp(amount uint64, ticker string) *Coin {
	c := NewCoin(amount, ticker)
	return &c
}

// FromInt creates a coin holding a copy of given amount.
func FromInt(amount *uint256.Int, ticker string) Coin {
	return Coin{Ticker: ticker, Amount: *amount}
}

// ID returns a coin ticker name.
func (c Coin) ID() string {
	return c.Ticker
}

// Int returns a copy of the coin amount.
func (c Coin) Int() *uint256.Int {
	return new(uint256.Int).Set(&c.Amount)
}

// Add combines two coins.
// Returns error if they are of different
// currencies, or if the combination would cause
// an overflow
func (c Coin) Add(o Coin) (Coin, error) {
	// If any of the coins represents no value and does not have a ticker
	// set then it has no influence on the addition result.
	if c.Ticker == "" && c.IsZero() {
		return o, nil
	}
	if o.Ticker == "" && o.IsZero() {
		return c, nil
	}
	if !c.SameType(o) {
		return Coin{}, errors.Wrapf(errors.ErrCurrency, "adding %s to %s", o.Ticker, c.Ticker)
	}
	sum, overflow := new(uint256.Int).AddOverflow(&c.Amount, &o.Amount)
	if overflow {
		return Coin{}, errors.Wrapf(errors.ErrOverflow, "%s + %s", c, o)
	}
	return FromInt(sum, c.Ticker), nil
}

// Subtract given amount. Coins cannot go below zero, so subtracting a
// larger amount returns ErrAmount.
func (c Coin) Subtract(o Coin) (Coin, error) {
	if o.IsZero() {
		return c, nil
	}
	if !c.SameType(o) {
		return Coin{}, errors.Wrapf(errors.ErrCurrency, "subtracting %s from %s", o.Ticker, c.Ticker)
	}
	diff, underflow := new(uint256.Int).SubOverflow(&c.Amount, &o.Amount)
	if underflow {
		return Coin{}, errors.Wrapf(errors.ErrAmount, "%s is less than %s", c, o)
	}
	return FromInt(diff, c.Ticker), nil
}

// Compare will check values of two coins, without
// inspecting the currency code. It is up to the caller
// to determine if they want to check this.
//
// Returns 1 if c is larger, -1 if o is larger, 0 if equal
func (c Coin) Compare(o Coin) int {
	return c.Amount.Cmp(&o.Amount)
}

// Equals returns true if all fields are identical
func (c Coin) Equals(o Coin) bool {
	return c.Ticker == o.Ticker && c.Amount.Eq(&o.Amount)
}

// IsEmpty returns true on null or zero amount
func IsEmpty(c *Coin) bool {
	return c == nil || c.IsZero()
}

// IsZero returns true amounts are 0
func (c Coin) IsZero() bool {
	return c.Amount.IsZero()
}

// IsPositive returns true if the value is greater than 0
func (c Coin) IsPositive() bool {
	return !c.Amount.IsZero()
}

// IsGTE returns true if c is same type and at least
// as large as o.
func (c Coin) IsGTE(o Coin) bool {
	return c.SameType(o) && c.Compare(o) >= 0
}

// SameType returns true if they have the same currency
func (c Coin) SameType(o Coin) bool {
	return c.Ticker == o.Ticker
}

// Clone provides an independent copy of a coin pointer
func (c *Coin) Clone() *Coin {
	if c == nil {
		return nil
	}
	cp := *c
	return &cp
}

// Validate ensures that the coin has a valid currency code.
func (c Coin) Validate() error {
	if !IsCC(c.Ticker) {
		return errors.Wrapf(errors.ErrCurrency, "invalid currency: %q", c.Ticker)
	}
	return nil
}

// String provides a human readable representation of the coin in format
// "<amount> <ticker>" that can be parsed back with ParseHumanFormat.
func (c Coin) String() string {
	if c.Ticker == "" {
		return c.Amount.Dec()
	}
	return c.Amount.Dec() + " " + c.Ticker
}

var humanCoinFormatRx = regexp.MustCompile(`^\s*(\d+)\s*([A-Z]{3,5})\s*$`)

// ParseHumanFormat parse a human readable coin representation. Accepted format
// is a string:
//   "<amount> <ticker>"
func ParseHumanFormat(h string) (Coin, error) {
	m := humanCoinFormatRx.FindStringSubmatch(h)
	if m == nil {
		return Coin{}, errors.Wrapf(errors.ErrInput, "invalid coin format %q", h)
	}
	amount, err := uint256.FromDecimal(m[1])
	if err != nil {
		return Coin{}, errors.Wrapf(errors.ErrOverflow, "amount %q: %s", m[1], err)
	}
	return FromInt(amount, m[2]), nil
}

// Set updates this coin value to what is provided. This method implements
// flag.Value interface.
func (c *Coin) Set(raw string) error {
	val, err := ParseHumanFormat(raw)
	if err != nil {
		return err
	}
	*c = val
	return nil
}

// MarshalJSON serializes the coin using the human readable format.
func (c Coin) MarshalJSON() ([]byte, error) {
	return json.Marshal(c.String())
}

// UnmarshalJSON accepts both the human readable format and an object with
// "ticker" and "amount" attributes.
func (c *Coin) UnmarshalJSON(raw []byte) error {
	var human string
	if err := json.Unmarshal(raw, &human); err == nil {
		return c.Set(human)
	}

	var obj struct {
		Ticker string `json:"ticker"`
		Amount string `json:"amount"`
	}
	if err := json.Unmarshal(raw, &obj); err != nil {
		return errors.Wrap(errors.ErrInput, err.Error())
	}
	amount := strings.TrimSpace(obj.Amount)
	if amount == "" {
		amount = "0"
	}
	val, err := uint256.FromDecimal(amount)
	if err != nil {
		return errors.Wrapf(errors.ErrInput, "amount %q: %s", obj.Amount, err)
	}
	*c = FromInt(val, obj.Ticker)
	return nil
}

// Marshal serializes the coin into protobuf wire format.
func (c *Coin) Marshal() ([]byte, error) {
	return c.encoder().Data(), nil
}

func (c *Coin) encoder() *codec.Encoder {
	return codec.NewEncoder().
		String(1, c.Ticker).
		Bytes(2, c.Amount.Bytes())
}

// Unmarshal loads the coin from its protobuf wire format.
func (c *Coin) Unmarshal(raw []byte) error {
	*c = Coin{}
	d := codec.NewDecoder(raw)
	for d.More() {
		field, wire, err := d.Next()
		if err != nil {
			return err
		}
		switch field {
		case 1:
			c.Ticker, err = d.String(wire)
		case 2:
			var b []byte
			if b, err = d.Bytes(wire); err == nil {
				if len(b) > 32 {
					return errors.Wrap(errors.ErrOverflow, "amount")
				}
				c.Amount.SetBytes(b)
			}
		default:
			err = d.Skip(wire)
		}
		if err != nil {
			return errors.Wrap(err, fmt.Sprintf("field %d", field))
		}
	}
	return nil
}
