package cash

import (
	"github.com/iov-one/drip"
	"github.com/iov-one/drip/coin"
	"github.com/iov-one/drip/errors"
)

const optKey = "cash"

// GenesisAccount is used to parse the json from genesis file. Address can be
// given in any format accepted by drip.Address (hex, bech32 or cond).
type GenesisAccount struct {
	Address drip.Address `json:"address"`
	Coins   coin.Coins   `json:"coins"`
}

// Initializer fulfils the Initializer interface to load data from
// the genesis file
type Initializer struct{}

var _ drip.Initializer = Initializer{}

// FromGenesis will parse initial account info from genesis
// and save it to the database
func (Initializer) FromGenesis(opts drip.Options, kv drip.KVStore) error {
	var accts []GenesisAccount
	if err := opts.ReadOptions(optKey, &accts); err != nil {
		return err
	}
	bucket := NewWalletBucket()
	for i, acct := range accts {
		if err := acct.Address.Validate(); err != nil {
			return errors.Wrapf(err, "account %d", i)
		}
		var coins coin.Coins
		for _, c := range acct.Coins {
			var err error
			if coins, err = coins.Add(*c); err != nil {
				return errors.Wrapf(err, "account %d", i)
			}
		}
		if err := saveWallet(kv, bucket, acct.Address, &Wallet{Coins: coins}); err != nil {
			return errors.Wrapf(err, "account %d", i)
		}
	}
	return nil
}
