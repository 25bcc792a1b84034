package coin

import (
	"sort"
	"strings"

	"github.com/iov-one/drip/errors"
)

// Coins represents a set of coins sorted by ticker, with at most one coin per
// currency and without zero value coins.
type Coins []*Coin

// CombineCoins creates a Coins containing all given coins.
// It will sort them and combine duplicates to produce
// a normalized form regardless of input.
func CombineCoins(cs ...Coin) (Coins, error) {
	var err error
	coins := make(Coins, 0, len(cs))
	for _, c := range cs {
		if err := c.Validate(); err != nil {
			return nil, err
		}
		coins, err = coins.Add(c)
		if err != nil {
			return nil, err
		}
	}
	return coins, nil
}

// Clone returns a copy that can be safely modified
func (cs Coins) Clone() Coins {
	if cs == nil {
		return nil
	}
	res := make([]*Coin, len(cs))
	for i, c := range cs {
		res[i] = c.Clone()
	}
	return Coins(res)
}

// Add returns a new set with the holdings increased by c. The receiver is
// not modified.
func (cs Coins) Add(c Coin) (Coins, error) {
	// We ignore zero values
	if c.IsZero() {
		return cs, nil
	}

	res := cs.Clone()
	has, i := res.findCoin(c.ID())
	if has != nil {
		sum, err := has.Add(c)
		if err != nil {
			return nil, err
		}
		res[i] = &sum
		return res, nil
	}

	res = append(res, nil)
	copy(res[i+1:], res[i:])
	res[i] = &c
	return res, nil
}

// Subtract returns a new set with the holdings decreased by c. If the set
// does not contain enough coins ErrAmount is returned. Currencies that
// reach zero are removed.
func (cs Coins) Subtract(c Coin) (Coins, error) {
	if c.IsZero() {
		return cs, nil
	}
	res := cs.Clone()
	has, i := res.findCoin(c.ID())
	if has == nil {
		return nil, errors.Wrapf(errors.ErrAmount, "no %s to subtract from", c.Ticker)
	}
	diff, err := has.Subtract(c)
	if err != nil {
		return nil, err
	}
	if diff.IsZero() {
		return append(res[:i], res[i+1:]...), nil
	}
	res[i] = &diff
	return res, nil
}

// Combine will create a new Coins adding all the coins
// of s and o together.
func (cs Coins) Combine(o Coins) (Coins, error) {
	var err error
	res := cs
	for _, c := range o {
		res, err = res.Add(*c)
		if err != nil {
			return nil, err
		}
	}
	return res, nil
}

// Contains returns true if there is at least that much
// coin in the Coins.
func (cs Coins) Contains(c Coin) bool {
	if c.IsZero() {
		return true
	}
	has, _ := cs.findCoin(c.ID())
	if has == nil {
		return false
	}
	return has.IsGTE(c)
}

// Balance returns the amount held in given currency. Zero coin is returned
// if there is none.
func (cs Coins) Balance(ticker string) Coin {
	has, _ := cs.findCoin(ticker)
	if has == nil {
		return Coin{Ticker: ticker}
	}
	return *has
}

// findCoin returns a coin and index that have this
// currency code.
//
// If there was a match, then result is non-nil, and the
// index is where it was. If there was no match, then
// result is nil, and index is where it should be
// (which may be between 0 and len(cs)).
func (cs Coins) findCoin(ticker string) (*Coin, int) {
	i := sort.Search(len(cs), func(i int) bool {
		return cs[i].Ticker >= ticker
	})
	if i < len(cs) && cs[i].Ticker == ticker {
		return cs[i], i
	}
	return nil, i
}

// IsEmpty returns true if there is no value held.
func (cs Coins) IsEmpty() bool {
	return len(cs) == 0
}

// Equals returns true if both sets hold exactly the same coins.
func (cs Coins) Equals(o Coins) bool {
	if len(cs) != len(o) {
		return false
	}
	for i := range cs {
		if !cs[i].Equals(*o[i]) {
			return false
		}
	}
	return true
}

// Validate requires that all coins are valid, sorted by ticker, unique and
// not zero.
func (cs Coins) Validate() error {
	for i, c := range cs {
		if err := c.Validate(); err != nil {
			return err
		}
		if c.IsZero() {
			return errors.Wrapf(errors.ErrAmount, "zero %s coin", c.Ticker)
		}
		if i > 0 && cs[i-1].Ticker >= c.Ticker {
			return errors.Wrap(errors.ErrState, "coins not normalized")
		}
	}
	return nil
}

func (cs Coins) String() string {
	parts := make([]string, len(cs))
	for i, c := range cs {
		parts[i] = c.String()
	}
	return strings.Join(parts, ", ")
}
