package cash

import (
	"fmt"

	"github.com/iov-one/drip"
	"github.com/iov-one/drip/codec"
	"github.com/iov-one/drip/coin"
	"github.com/iov-one/drip/errors"
	"github.com/iov-one/drip/orm"
)

// BucketName is where we store the balances
const BucketName = "cash"

// Wallet holds all coins that belong to a single address.
type Wallet struct {
	Coins coin.Coins
}

var _ orm.Model = (*Wallet)(nil)

// Validate requires that all coins are valid and in normalized form.
func (w *Wallet) Validate() error {
	return errors.Wrap(w.Coins.Validate(), "coins")
}

// Marshal encodes every coin as a repeated field 1.
func (w *Wallet) Marshal() ([]byte, error) {
	enc := codec.NewEncoder()
	for _, c := range w.Coins {
		raw, err := c.Marshal()
		if err != nil {
			return nil, errors.Wrap(err, "coin")
		}
		enc.Bytes(1, raw)
	}
	return enc.Data(), nil
}

func (w *Wallet) Unmarshal(raw []byte) error {
	*w = Wallet{}
	d := codec.NewDecoder(raw)
	for d.More() {
		field, wire, err := d.Next()
		if err != nil {
			return err
		}
		switch field {
		case 1:
			var b []byte
			if b, err = d.Bytes(wire); err == nil {
				var c coin.Coin
				if err = c.Unmarshal(b); err == nil {
					w.Coins = append(w.Coins, &c)
				}
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

// NewWalletBucket returns a bucket that stores wallets under the owner's
// address.
func NewWalletBucket() orm.ModelBucket {
	return orm.NewModelBucket(BucketName, &Wallet{})
}

// loadWallet returns the wallet of given address. A missing wallet is
// returned as an empty one.
func loadWallet(db drip.ReadOnlyKVStore, b orm.ModelBucket, addr drip.Address) (*Wallet, error) {
	var w Wallet
	switch err := b.One(db, addr, &w); {
	case err == nil:
		return &w, nil
	case errors.ErrNotFound.Is(err):
		return &Wallet{}, nil
	default:
		return nil, errors.Wrap(err, "load wallet")
	}
}

// saveWallet stores the wallet or removes it when it holds no coins.
func saveWallet(db drip.KVStore, b orm.ModelBucket, addr drip.Address, w *Wallet) error {
	if w.Coins.IsEmpty() {
		if err := b.Delete(db, addr); err != nil && !errors.ErrNotFound.Is(err) {
			return errors.Wrap(err, "delete wallet")
		}
		return nil
	}
	return errors.Wrap(b.Put(db, addr, w), "save wallet")
}
