package stream

import (
	"github.com/holiman/uint256"
	"github.com/iov-one/drip"
	"github.com/iov-one/drip/errors"
)

// funding is the part of the accounting that differs between funding models.
// All amounts are scaled.
type funding interface {
	// settleTime returns the latest moment, not after now, up to which the
	// payer's streams can be paid.
	settleTime(acc *Account, streams []accruing, now drip.UnixTime) drip.UnixTime
	// settle records a payout to a payee.
	settle(acc *Account, amount *uint256.Int) error
	// activate starts funding a stream that accrues from cursor.
	activate(acc *Account, key StreamKey, cursor drip.UnixTime) error
	// deactivate stops funding a stream settled up to cursor.
	deactivate(acc *Account, key StreamKey, cursor drip.UnixTime) error
	deposit(acc *Account, amount *uint256.Int) error
	// free returns how much the payer can withdraw without underfunding
	// the streams.
	free(acc *Account, streams []accruing, now drip.UnixTime) *uint256.Int
	withdraw(acc *Account, amount *uint256.Int) error
	// available returns the funds that can pay for accrual.
	available(acc *Account) *uint256.Int
}

func newFunding(model string) (funding, error) {
	switch model {
	case ModelPool:
		return poolFunding{}, nil
	case ModelEscrow:
		return escrowFunding{}, nil
	default:
		return nil, errors.Wrapf(errors.ErrState, "unknown funding model %q", model)
	}
}

// poolFunding pays all streams of a payer out of one balance. Streams keep
// accruing when the balance is gone and are paid only up to the moment the
// balance covers.
type poolFunding struct{}

var _ funding = poolFunding{}

func (poolFunding) settleTime(acc *Account, streams []accruing, now drip.UnixTime) drip.UnixTime {
	return coveredUntil(&acc.Balance, streams, now)
}

func (poolFunding) settle(acc *Account, amount *uint256.Int) error {
	if _, underflow := acc.Balance.SubOverflow(&acc.Balance, amount); underflow {
		return errors.Wrap(ErrInsufficientFunds, "balance")
	}
	return nil
}

func (poolFunding) activate(acc *Account, key StreamKey, _ drip.UnixTime) error {
	if _, overflow := acc.TotalRate.AddOverflow(&acc.TotalRate, &key.Rate); overflow {
		return errors.Wrap(errors.ErrOverflow, "total rate")
	}
	return nil
}

func (poolFunding) deactivate(acc *Account, key StreamKey, _ drip.UnixTime) error {
	if _, underflow := acc.TotalRate.SubOverflow(&acc.TotalRate, &key.Rate); underflow {
		return errors.Wrap(errors.ErrHuman, "total rate below stream rate")
	}
	return nil
}

func (poolFunding) deposit(acc *Account, amount *uint256.Int) error {
	if _, overflow := acc.Balance.AddOverflow(&acc.Balance, amount); overflow {
		return errors.Wrap(errors.ErrOverflow, "balance")
	}
	return nil
}

func (poolFunding) free(acc *Account, streams []accruing, now drip.UnixTime) *uint256.Int {
	debt := owed(streams, now)
	if debt.Gt(&acc.Balance) {
		return new(uint256.Int)
	}
	return new(uint256.Int).Sub(&acc.Balance, debt)
}

func (poolFunding) withdraw(acc *Account, amount *uint256.Int) error {
	if _, underflow := acc.Balance.SubOverflow(&acc.Balance, amount); underflow {
		return errors.Wrap(ErrInsufficientFunds, "balance")
	}
	return nil
}

func (poolFunding) available(acc *Account) *uint256.Int {
	return new(uint256.Int).Set(&acc.Balance)
}

// escrowFunding commits the unaccrued face value of every active stream, so
// that a stream can always be paid in full.
type escrowFunding struct{}

var _ funding = escrowFunding{}

func (escrowFunding) settleTime(_ *Account, _ []accruing, now drip.UnixTime) drip.UnixTime {
	return now
}

func (escrowFunding) settle(acc *Account, amount *uint256.Int) error {
	if _, underflow := acc.TotalCommitted.SubOverflow(&acc.TotalCommitted, amount); underflow {
		return errors.Wrap(errors.ErrHuman, "payout exceeds commitments")
	}
	if _, overflow := acc.TotalWithdrawn.AddOverflow(&acc.TotalWithdrawn, amount); overflow {
		return errors.Wrap(errors.ErrOverflow, "total withdrawn")
	}
	return nil
}

func (escrowFunding) activate(acc *Account, key StreamKey, cursor drip.UnixTime) error {
	commit := Remaining(key, cursor)
	if free := acc.Free(); free.Lt(commit) {
		return errors.Wrapf(ErrInsufficientFunds, "commitment %s exceeds free %s", commit.Dec(), free.Dec())
	}
	acc.TotalCommitted.Add(&acc.TotalCommitted, commit)
	return nil
}

func (escrowFunding) deactivate(acc *Account, key StreamKey, cursor drip.UnixTime) error {
	if _, underflow := acc.TotalCommitted.SubOverflow(&acc.TotalCommitted, Remaining(key, cursor)); underflow {
		return errors.Wrap(errors.ErrHuman, "release exceeds commitments")
	}
	return nil
}

func (escrowFunding) deposit(acc *Account, amount *uint256.Int) error {
	if _, overflow := acc.TotalDeposited.AddOverflow(&acc.TotalDeposited, amount); overflow {
		return errors.Wrap(errors.ErrOverflow, "total deposited")
	}
	return nil
}

func (escrowFunding) free(acc *Account, _ []accruing, _ drip.UnixTime) *uint256.Int {
	return acc.Free()
}

func (escrowFunding) withdraw(acc *Account, amount *uint256.Int) error {
	if acc.Free().Lt(amount) {
		return errors.Wrap(ErrInsufficientFunds, "free funds")
	}
	acc.TotalWithdrawn.Add(&acc.TotalWithdrawn, amount)
	return nil
}

func (escrowFunding) available(acc *Account) *uint256.Int {
	return new(uint256.Int).Sub(&acc.TotalDeposited, &acc.TotalWithdrawn)
}
