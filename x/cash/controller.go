package cash

import (
	"github.com/iov-one/drip"
	"github.com/iov-one/drip/coin"
	"github.com/iov-one/drip/errors"
	"github.com/iov-one/drip/orm"
)

// CoinMover is an interface for moving coins between accounts.
type CoinMover interface {
	// MoveCoins removes funds from the source account and adds them to the
	// destination account. This operation is atomic.
	MoveCoins(db drip.KVStore, src drip.Address, dst drip.Address, amount coin.Coin) error
}

// CoinMinter is an interface to create new coins.
type CoinMinter interface {
	IssueCoins(db drip.KVStore, dst drip.Address, amount coin.Coin) error
}

// Balancer is an interface to query the amount of coins.
type Balancer interface {
	Balance(db drip.ReadOnlyKVStore, addr drip.Address) (coin.Coins, error)
}

// Controller is the functionality needed by cash.Handler and cash.Decorator.
// BaseController should work plenty fine, but you can add other logic if so
// desired
type Controller interface {
	CoinMover
	CoinMinter
	Balancer
}

// BaseController is a simple implementation of controller.
type BaseController struct {
	bucket orm.ModelBucket
}

var _ Controller = BaseController{}

// NewController returns a controller operating on the wallet bucket.
func NewController() BaseController {
	return BaseController{bucket: NewWalletBucket()}
}

// Balance returns the amount of all coins stored under given account
// address. ErrNotFound is returned if the account does not exist.
func (c BaseController) Balance(db drip.ReadOnlyKVStore, addr drip.Address) (coin.Coins, error) {
	var w Wallet
	if err := c.bucket.One(db, addr, &w); err != nil {
		return nil, errors.Wrapf(err, "wallet %s", addr)
	}
	return w.Coins, nil
}

// MoveCoins moves the given amount from src to dest.
// If src doesn't exist, or doesn't have sufficient
// coins, it fails.
func (c BaseController) MoveCoins(db drip.KVStore, src drip.Address, dst drip.Address, amount coin.Coin) error {
	if !amount.IsPositive() {
		return errors.Wrapf(errors.ErrAmount, "non-positive amount: %s", amount)
	}
	if err := amount.Validate(); err != nil {
		return errors.Wrap(err, "amount")
	}

	var sender Wallet
	if err := c.bucket.One(db, src, &sender); err != nil {
		if errors.ErrNotFound.Is(err) {
			return errors.Wrapf(errors.ErrEmpty, "empty account %s", src)
		}
		return errors.Wrap(err, "load sender")
	}
	if !sender.Coins.Contains(amount) {
		return errors.Wrapf(errors.ErrAmount, "insufficient funds: %s holds %s", src, sender.Coins.Balance(amount.Ticker))
	}
	left, err := sender.Coins.Subtract(amount)
	if err != nil {
		return errors.Wrap(err, "subtract")
	}
	sender.Coins = left
	if err := saveWallet(db, c.bucket, src, &sender); err != nil {
		return err
	}

	recipient, err := loadWallet(db, c.bucket, dst)
	if err != nil {
		return err
	}
	if recipient.Coins, err = recipient.Coins.Add(amount); err != nil {
		return errors.Wrap(err, "add")
	}
	return saveWallet(db, c.bucket, dst, recipient)
}

// IssueCoins attempts to add the given amount of coins to
// the destination address. Fails if it overflows the wallet.
func (c BaseController) IssueCoins(db drip.KVStore, dst drip.Address, amount coin.Coin) error {
	if err := amount.Validate(); err != nil {
		return errors.Wrap(err, "amount")
	}
	w, err := loadWallet(db, c.bucket, dst)
	if err != nil {
		return err
	}
	if w.Coins, err = w.Coins.Add(amount); err != nil {
		return errors.Wrap(err, "add")
	}
	return saveWallet(db, c.bucket, dst, w)
}
