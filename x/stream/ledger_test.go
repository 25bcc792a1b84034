package stream

import (
	"testing"

	"github.com/holiman/uint256"
	"github.com/iov-one/drip"
	"github.com/iov-one/drip/errors"
	"github.com/iov-one/drip/weavetest/assert"
)

func TestWithdrawPaysAccruedAmount(t *testing.T) {
	for _, model := range []string{ModelPool, ModelEscrow} {
		t.Run(model, func(t *testing.T) {
			f := newFixture(t, model)
			f.deposit(t0, 200)
			key := f.key(1, t0, t0+100)
			f.create(t0, key)

			assert.Equal(t, uint64(50), f.paid(f.ledger.Withdraw(f.at(t0+50), f.db, key)))
			assert.Equal(t, uint64(50), f.wallet(f.payee))

			assert.Equal(t, uint64(50), f.paid(f.ledger.Withdraw(f.at(t0+150), f.db, key)))
			assert.Equal(t, uint64(100), f.wallet(f.payee))

			st, err := f.ledger.Stream(f.db, key)
			assert.Nil(t, err)
			assert.Equal(t, key.End, st.Cursor)

			// Nothing is left to accrue.
			assert.Equal(t, uint64(0), f.paid(f.ledger.Withdraw(f.at(t0+200), f.db, key)))
			assert.Equal(t, uint64(9800), f.wallet(f.payer))
			f.checkSolvency()
		})
	}
}

func TestPoolWithdrawIsClampedToBalance(t *testing.T) {
	f := newFixture(t, ModelPool)
	f.deposit(t0, 30)
	key := f.key(1, t0, t0+100)
	f.create(t0, key)

	assert.Equal(t, uint64(30), f.paid(f.ledger.Withdraw(f.at(t0+50), f.db, key)))
	st, err := f.ledger.Stream(f.db, key)
	assert.Nil(t, err)
	assert.Equal(t, t0+30, st.Cursor)
	assert.Equal(t, true, f.account().Balance.IsZero())

	w, err := f.ledger.Withdrawable(f.at(t0+60), f.db, key)
	assert.Nil(t, err)
	assert.Equal(t, uint64(0), w.Amount.Uint64())
	assert.Equal(t, t0+30, w.CoveredUntil)

	// Debt cannot be withdrawn by the payer.
	_, err = f.ledger.WithdrawPayer(f.at(t0+60), f.db, f.payer, native(1))
	assert.IsErr(t, ErrInsufficientFunds, err)

	f.deposit(t0+60, 20)
	assert.Equal(t, uint64(20), f.paid(f.ledger.Withdraw(f.at(t0+70), f.db, key)))
	st, err = f.ledger.Stream(f.db, key)
	assert.Nil(t, err)
	assert.Equal(t, t0+50, st.Cursor)
	assert.Equal(t, uint64(50), f.wallet(f.payee))
	f.checkSolvency()
}

func TestPoolSharedBalance(t *testing.T) {
	f := newFixture(t, ModelPool)
	f.deposit(t0, 90)
	a := f.key(1, t0, t0+100)
	b := NewStreamKey(f.payer, f.other, perSec(2), t0, t0+100)
	f.create(t0, a)
	f.create(t0, b)
	assert.Equal(t, *perSec(3), f.account().TotalRate)

	// Both streams together drain 3 per second, so the balance covers
	// 30 seconds.
	w, err := f.ledger.Withdrawable(f.at(t0+50), f.db, b)
	assert.Nil(t, err)
	assert.Equal(t, t0+30, w.CoveredUntil)
	assert.Equal(t, uint64(60), w.Amount.Uint64())

	assert.Equal(t, uint64(60), f.paid(f.ledger.Withdraw(f.at(t0+50), f.db, b)))
	assert.Equal(t, uint64(30), f.paid(f.ledger.Withdraw(f.at(t0+50), f.db, a)))
	assert.Equal(t, true, f.account().Balance.IsZero())
	f.checkSolvency()
}

func TestPauseAndResume(t *testing.T) {
	for _, model := range []string{ModelPool, ModelEscrow} {
		t.Run(model, func(t *testing.T) {
			f := newFixture(t, model)
			f.deposit(t0, 200)
			key := f.key(1, t0, t0+100)
			f.create(t0, key)

			assert.Equal(t, uint64(30), f.paid(f.ledger.PauseStream(f.at(t0+30), f.db, key)))
			st, err := f.ledger.Stream(f.db, key)
			assert.Nil(t, err)
			assert.Equal(t, &Stream{PausedAt: t0 + 30}, st)

			_, err = f.ledger.Withdraw(f.at(t0+35), f.db, key)
			assert.IsErr(t, ErrInactiveStream, err)
			_, err = f.ledger.PauseStream(f.at(t0+35), f.db, key)
			assert.IsErr(t, ErrInactiveStream, err)

			_, err = f.ledger.ResumeStream(f.at(t0+40), f.db, key)
			assert.Nil(t, err)
			_, err = f.ledger.ResumeStream(f.at(t0+41), f.db, key)
			assert.IsErr(t, ErrInactiveStream, err)

			assert.Equal(t, uint64(60), f.paid(f.ledger.Withdraw(f.at(t0+100), f.db, key)))
			assert.Equal(t, uint64(90), f.wallet(f.payee))

			// The stream ended, it cannot be paused anymore.
			_, err = f.ledger.PauseStream(f.at(t0+100), f.db, key)
			assert.IsErr(t, ErrInactiveStream, err)
			f.checkSolvency()
		})
	}
}

func TestInsolventPoolStopForfeitsAccrual(t *testing.T) {
	// The payer deposits 30 and streams 1 per second, so the balance runs
	// out at t0+30. The stream is stopped at t0+50 and the 20 accrued after
	// the balance was gone are never paid.
	cases := map[string]struct {
		Stop func(f *fixture, key StreamKey) (*Event, error)
		// Next is the stream that accrues after the stop, if any.
		Next     func(f *fixture) StreamKey
		WantRate *uint256.Int
		// WantLater is paid by a withdraw at t0+60 after a new deposit.
		WantLater uint64
	}{
		"pause": {
			Stop: func(f *fixture, key StreamKey) (*Event, error) {
				return f.ledger.PauseStream(f.at(t0+50), f.db, key)
			},
			WantRate: uint256.NewInt(0),
		},
		"cancel": {
			Stop: func(f *fixture, key StreamKey) (*Event, error) {
				return f.ledger.CancelStream(f.at(t0+50), f.db, key)
			},
			WantRate: uint256.NewInt(0),
		},
		"modify": {
			Stop: func(f *fixture, key StreamKey) (*Event, error) {
				return f.ledger.ModifyStream(f.at(t0+50), f.db, key, f.payee, perSec(2), t0+200)
			},
			Next: func(f *fixture) StreamKey {
				return f.key(2, t0, t0+200)
			},
			WantRate:  perSec(2),
			WantLater: 20,
		},
	}

	for testName, tc := range cases {
		t.Run(testName, func(t *testing.T) {
			f := newFixture(t, ModelPool)
			f.deposit(t0, 30)
			key := f.key(1, t0, t0+100)
			f.create(t0, key)

			assert.Equal(t, uint64(30), f.paid(tc.Stop(f, key)))
			assert.Equal(t, *tc.WantRate, f.account().TotalRate)
			assert.Equal(t, true, f.account().Balance.IsZero())

			// New funds do not revive the forfeited accrual.
			f.deposit(t0+55, 100)
			_, err := f.ledger.Withdraw(f.at(t0+60), f.db, key)
			assert.IsErr(t, ErrInactiveStream, err)
			if tc.Next != nil {
				assert.Equal(t, tc.WantLater, f.paid(f.ledger.Withdraw(f.at(t0+60), f.db, tc.Next(f))))
			}
			assert.Equal(t, 30+tc.WantLater, f.wallet(f.payee))
			f.checkSolvency()
		})
	}
}

func TestInsolventPoolResumeDoesNotPayPause(t *testing.T) {
	f := newFixture(t, ModelPool)
	f.deposit(t0, 30)
	key := f.key(1, t0, t0+100)
	f.create(t0, key)

	assert.Equal(t, uint64(30), f.paid(f.ledger.PauseStream(f.at(t0+50), f.db, key)))
	f.deposit(t0+55, 100)
	_, err := f.ledger.ResumeStream(f.at(t0+60), f.db, key)
	assert.Nil(t, err)
	assert.Equal(t, *perSec(1), f.account().TotalRate)

	assert.Equal(t, uint64(10), f.paid(f.ledger.Withdraw(f.at(t0+70), f.db, key)))
	assert.Equal(t, uint64(40), f.wallet(f.payee))
	f.checkSolvency()
}

func TestPauseResumeRoundTrip(t *testing.T) {
	f := newFixture(t, ModelEscrow)
	f.deposit(t0, 100)
	key := f.key(1, t0, t0+100)
	f.create(t0, key)

	total := f.paid(f.ledger.PauseStream(f.at(t0+25), f.db, key))
	_, err := f.ledger.ResumeStream(f.at(t0+25), f.db, key)
	assert.Nil(t, err)
	total += f.paid(f.ledger.Withdraw(f.at(t0+100), f.db, key))
	assert.Equal(t, uint64(100), total)

	acc := f.account()
	assert.Equal(t, true, acc.TotalCommitted.IsZero())
	assert.Equal(t, acc.TotalDeposited, acc.TotalWithdrawn)
}

func TestRecreatePausedStream(t *testing.T) {
	f := newFixture(t, ModelPool)
	f.deposit(t0, 500)
	key := f.key(1, t0, t0+100)
	f.create(t0, key)

	_, err := f.ledger.CreateStream(f.at(t0), f.db, key, nil)
	assert.IsErr(t, ErrDuplicateActiveStream, err)

	_, err = f.ledger.PauseStream(f.at(t0+10), f.db, key)
	assert.Nil(t, err)
	f.create(t0+20, key)
	st, err := f.ledger.Stream(f.db, key)
	assert.Nil(t, err)
	assert.Equal(t, &Stream{Cursor: t0, PausedAt: t0 + 10}, st)

	_, err = f.ledger.ResumeStream(f.at(t0+30), f.db, key)
	assert.IsErr(t, ErrDuplicateActiveStream, err)

	assert.Equal(t, uint64(40), f.paid(f.ledger.CancelStream(f.at(t0+40), f.db, key)))
	_, err = f.ledger.CancelStream(f.at(t0+40), f.db, key)
	assert.IsErr(t, ErrInactiveStream, err)

	// The paused stream survived cancellation of the recreated one.
	_, err = f.ledger.ResumeStream(f.at(t0+50), f.db, key)
	assert.Nil(t, err)
	assert.Equal(t, uint64(10), f.paid(f.ledger.CancelStream(f.at(t0+60), f.db, key)))

	_, err = f.ledger.Stream(f.db, key)
	assert.IsErr(t, errors.ErrNotFound, err)
	assert.Equal(t, true, f.account().TotalRate.IsZero())
	f.checkSolvency()
}

func TestConservation(t *testing.T) {
	f := newFixture(t, ModelPool)
	f.deposit(t0, 5000)
	key := f.key(7, t0+10, t0+500)
	f.create(t0, key)

	var total uint64
	for _, now := range []drip.UnixTime{t0 + 5, t0 + 11, t0 + 99, t0 + 100, t0 + 333, t0 + 480} {
		total += f.paid(f.ledger.Withdraw(f.at(now), f.db, key))
		st, err := f.ledger.Stream(f.db, key)
		assert.Nil(t, err)
		assert.Equal(t, 7*uint64(st.Cursor-key.Start), total)
		f.checkSolvency()
	}
	total += f.paid(f.ledger.CancelStream(f.at(t0+900), f.db, key))
	assert.Equal(t, uint64(7*490), total)
	assert.Equal(t, total, f.wallet(f.payee))
}

func TestCreateStream(t *testing.T) {
	cases := map[string]struct {
		Model   string
		Deposit uint64
		Key     func(f *fixture) StreamKey
		WantErr *errors.Error
	}{
		"pool stream needs no funds upfront": {
			Model: ModelPool,
			Key:   func(f *fixture) StreamKey { return f.key(1, t0, t0+100) },
		},
		"escrow stream funded by the deposit": {
			Model:   ModelEscrow,
			Deposit: 100,
			Key:     func(f *fixture) StreamKey { return f.key(1, t0, t0+100) },
		},
		"escrow stream not funded": {
			Model:   ModelEscrow,
			Deposit: 99,
			Key:     func(f *fixture) StreamKey { return f.key(1, t0, t0+100) },
			WantErr: ErrInsufficientFunds,
		},
		"escrow stream started in the past commits the full value": {
			Model:   ModelEscrow,
			Deposit: 50,
			Key:     func(f *fixture) StreamKey { return f.key(1, t0-50, t0+50) },
			WantErr: ErrInsufficientFunds,
		},
		"end before start": {
			Model:   ModelPool,
			Key:     func(f *fixture) StreamKey { return f.key(1, t0, t0) },
			WantErr: ErrInvalidTimeRange,
		},
		"zero start": {
			Model:   ModelPool,
			Key:     func(f *fixture) StreamKey { return f.key(1, 0, t0) },
			WantErr: ErrInvalidTimeRange,
		},
		"zero rate": {
			Model:   ModelPool,
			Key:     func(f *fixture) StreamKey { return f.key(0, t0, t0+1) },
			WantErr: errors.ErrAmount,
		},
		"deposit larger than the wallet": {
			Model:   ModelPool,
			Deposit: 10001,
			Key:     func(f *fixture) StreamKey { return f.key(1, t0, t0+100) },
			WantErr: errors.ErrAmount,
		},
	}

	for testName, tc := range cases {
		t.Run(testName, func(t *testing.T) {
			f := newFixture(t, tc.Model)
			key := tc.Key(f)
			ev, err := f.ledger.CreateStream(f.at(t0), f.db, key, native(tc.Deposit))
			if !tc.WantErr.Is(err) {
				t.Fatalf("unexpected error: %+v", err)
			}
			if tc.WantErr != nil {
				return
			}
			assert.Equal(t, ActionCreate, ev.Action)
			assert.Equal(t, key.ID(), ev.StreamID)
			assert.Equal(t, 10000-tc.Deposit, f.wallet(f.payer))
			f.checkSolvency()
		})
	}
}

func TestModifyStream(t *testing.T) {
	f := newFixture(t, ModelPool)
	f.deposit(t0, 1000)
	key := f.key(1, t0, t0+100)
	f.create(t0, key)

	ev, err := f.ledger.ModifyStream(f.at(t0+40), f.db, key, f.other, perSec(2), t0+200)
	assert.Nil(t, err)
	assert.Equal(t, uint64(40), ev.Amount.Uint64())
	assert.Equal(t, key.ID(), ev.PreviousID)
	assert.Equal(t, uint64(40), f.wallet(f.payee))

	next := NewStreamKey(f.payer, f.other, perSec(2), t0, t0+200)
	assert.Equal(t, next.ID(), ev.StreamID)
	_, err = f.ledger.Stream(f.db, key)
	assert.IsErr(t, errors.ErrNotFound, err)

	// Time before the modification is not paid again.
	assert.Equal(t, uint64(20), f.paid(f.ledger.Withdraw(f.at(t0+50), f.db, next)))
	assert.Equal(t, *perSec(2), f.account().TotalRate)

	_, err = f.ledger.ModifyStream(f.at(t0+60), f.db, key, f.other, perSec(2), t0+300)
	assert.IsErr(t, ErrInactiveStream, err)
	_, err = f.ledger.ModifyStream(f.at(t0+60), f.db, next, f.other, perSec(2), t0+60)
	assert.IsErr(t, ErrInvalidTimeRange, err)
	_, err = f.ledger.ModifyStream(f.at(t0+60), f.db, next, f.other, perSec(2), t0+200)
	assert.IsErr(t, errors.ErrInput, err)
	f.checkSolvency()
}

func TestEscrowModifyRequiresFunds(t *testing.T) {
	f := newFixture(t, ModelEscrow)
	f.deposit(t0, 150)
	key := f.key(1, t0, t0+100)
	f.create(t0, key)

	// 50 is paid, 50 released, 100 free. The new stream needs 2 * 60.
	before := *f.account()
	_, err := f.ledger.ModifyStream(f.at(t0+50), f.db, key, f.payee, perSec(2), t0+110)
	assert.IsErr(t, ErrInsufficientFunds, err)

	// The failed call changed nothing.
	st, err := f.ledger.Stream(f.db, key)
	assert.Nil(t, err)
	assert.Equal(t, Stream{Cursor: t0}, *st)
	assert.Equal(t, before, *f.account())
	assert.Equal(t, uint64(0), f.wallet(f.payee))
	assert.Equal(t, uint64(150), f.wallet(VaultAddress))
	f.checkSolvency()

	_, err = f.ledger.ModifyStream(f.at(t0+50), f.db, key, f.payee, perSec(2), t0+100)
	assert.Nil(t, err)
	acc := f.account()
	assert.Equal(t, *perSec(100), acc.TotalCommitted)
	assert.Equal(t, *perSec(50), acc.TotalWithdrawn)
	f.checkSolvency()
}

func TestFailedCreateKeepsDeposit(t *testing.T) {
	f := newFixture(t, ModelEscrow)
	key := f.key(1, t0, t0+100)

	// The deposit does not cover the face value of the stream.
	_, err := f.ledger.CreateStream(f.at(t0), f.db, key, native(50))
	assert.IsErr(t, ErrInsufficientFunds, err)

	_, err = f.ledger.Stream(f.db, key)
	assert.IsErr(t, errors.ErrNotFound, err)
	assert.Equal(t, Account{}, *f.account())
	assert.Equal(t, uint64(10000), f.wallet(f.payer))
	assert.Equal(t, uint64(0), f.wallet(VaultAddress))

	_, err = f.ledger.CreateStream(f.at(t0), f.db, key, native(100))
	assert.Nil(t, err)
	assert.Equal(t, uint64(9900), f.wallet(f.payer))
	f.checkSolvency()
}

func TestPayerWithdrawals(t *testing.T) {
	cases := map[string]struct {
		Model string
		// All scenarios deposit 100 and stream 1 per second for 100
		// seconds. Payer withdraws at t0+30.
		Amount     uint64
		WantErr    *errors.Error
		WantWallet uint64
	}{
		"pool keeps what the streams owe": {
			Model:      ModelPool,
			Amount:     70,
			WantWallet: 9970,
		},
		"pool cannot withdraw what the streams owe": {
			Model:   ModelPool,
			Amount:  71,
			WantErr: ErrInsufficientFunds,
		},
		"escrow keeps all commitments": {
			Model:   ModelEscrow,
			Amount:  1,
			WantErr: ErrInsufficientFunds,
		},
		"zero amount": {
			Model:   ModelPool,
			Amount:  0,
			WantErr: errors.ErrAmount,
		},
	}

	for testName, tc := range cases {
		t.Run(testName, func(t *testing.T) {
			f := newFixture(t, tc.Model)
			f.deposit(t0, 100)
			f.create(t0, f.key(1, t0, t0+100))

			_, err := f.ledger.WithdrawPayer(f.at(t0+30), f.db, f.payer, native(tc.Amount))
			if !tc.WantErr.Is(err) {
				t.Fatalf("unexpected error: %+v", err)
			}
			if tc.WantErr == nil {
				assert.Equal(t, tc.WantWallet, f.wallet(f.payer))
			}
			f.checkSolvency()
		})
	}
}

func TestWithdrawPayerAll(t *testing.T) {
	f := newFixture(t, ModelEscrow)
	f.deposit(t0, 150)
	key := f.key(1, t0, t0+100)
	f.create(t0, key)

	ev, err := f.ledger.WithdrawPayerAll(f.at(t0+10), f.db, f.payer)
	assert.Nil(t, err)
	assert.Equal(t, uint64(50), ev.Amount.Uint64())
	_, err = f.ledger.WithdrawPayerAll(f.at(t0+10), f.db, f.payer)
	assert.IsErr(t, ErrInsufficientFunds, err)

	assert.Equal(t, uint64(30), f.paid(f.ledger.CancelStream(f.at(t0+30), f.db, key)))
	ev, err = f.ledger.WithdrawPayerAll(f.at(t0+30), f.db, f.payer)
	assert.Nil(t, err)
	assert.Equal(t, uint64(70), ev.Amount.Uint64())
	assert.Equal(t, uint64(9970), f.wallet(f.payer))
	assert.Equal(t, uint64(0), f.wallet(VaultAddress))
	f.checkSolvency()
}

func TestStreams(t *testing.T) {
	f := newFixture(t, ModelPool)
	a := f.key(1, t0, t0+100)
	b := NewStreamKey(f.payer, f.other, perSec(3), t0, t0+10)
	f.create(t0, a)
	f.create(t0, b)
	_, err := f.ledger.PauseStream(f.at(t0+5), f.db, b)
	assert.Nil(t, err)

	foreign := NewStreamKey(f.other, f.payee, perSec(1), t0, t0+100)
	_, err = f.ledger.CreateStream(f.at(t0), f.db, foreign, nil)
	assert.Nil(t, err)

	entries, err := f.ledger.Streams(f.db, f.payer)
	assert.Nil(t, err)
	got := make(map[StreamKey]Stream)
	for _, en := range entries {
		got[en.Key] = en.Stream
	}
	want := map[StreamKey]Stream{
		a: {Cursor: t0},
		b: {PausedAt: t0 + 5},
	}
	assert.Equal(t, want, got)
}

func TestIsSufficientFund(t *testing.T) {
	f := newFixture(t, ModelPool)
	f.deposit(t0, 100)
	a := f.key(1, t0, t0+1000)
	b := NewStreamKey(f.payer, f.other, perSec(2), t0, t0+1000)
	f.create(t0, a)
	f.create(t0, b)

	s, err := f.ledger.IsSufficientFund(f.at(t0), f.db, f.payer, nil, t0+50)
	assert.Nil(t, err)
	assert.Equal(t, false, s.IsSufficient)
	assert.Equal(t, *perSec(150), s.Required)
	assert.Equal(t, *perSec(100), s.Available)
	assert.Equal(t, *perSec(50), s.Shortfall)
	assert.Equal(t, *native(50), s.ShortfallNative)

	s, err = f.ledger.IsSufficientFund(f.at(t0), f.db, f.payer, nil, t0+33)
	assert.Nil(t, err)
	assert.Equal(t, true, s.IsSufficient)
	assert.Equal(t, true, s.Shortfall.IsZero())

	// Depositing the shortfall makes the projection sufficient.
	f.deposit(t0, 50)
	s, err = f.ledger.IsSufficientFund(f.at(t0), f.db, f.payer, []StreamKey{a, b}, t0+50)
	assert.Nil(t, err)
	assert.Equal(t, true, s.IsSufficient)

	// A paused stream is projected as resumed now.
	_, err = f.ledger.PauseStream(f.at(t0+10), f.db, a)
	assert.Nil(t, err)
	s, err = f.ledger.IsSufficientFund(f.at(t0+20), f.db, f.payer, []StreamKey{a}, t0+30)
	assert.Nil(t, err)
	assert.Equal(t, *perSec(10), s.Required)

	_, err = f.ledger.IsSufficientFund(f.at(t0+20), f.db, f.payer, []StreamKey{b}, t0)
	assert.IsErr(t, ErrInvalidTimeRange, err)
	foreign := NewStreamKey(f.other, f.payee, perSec(1), t0, t0+100)
	_, err = f.ledger.IsSufficientFund(f.at(t0+20), f.db, f.payer, []StreamKey{foreign}, t0+30)
	assert.IsErr(t, errors.ErrInput, err)
	unknown := f.key(5, t0, t0+100)
	_, err = f.ledger.IsSufficientFund(f.at(t0+20), f.db, f.payer, []StreamKey{unknown}, t0+30)
	assert.IsErr(t, ErrInactiveStream, err)
}

func TestSufficiencyWithScheduledStream(t *testing.T) {
	const week = 7 * 24 * 3600
	f := newFixture(t, ModelPool)
	f.deposit(t0, 100)
	running := f.key(1, t0, t0+1000)
	scheduled := f.key(2, t0+week, t0+week+100)
	f.create(t0, running)
	f.create(t0, scheduled)

	cases := map[string]struct {
		AsOf         drip.UnixTime
		WantErr      *errors.Error
		WantRequired *uint256.Int
	}{
		"before the scheduled start": {
			AsOf:         t0 + 50,
			WantRequired: perSec(50),
		},
		"at the scheduled start": {
			AsOf:         t0 + week,
			WantRequired: perSec(1000),
		},
		"after the scheduled start": {
			AsOf:         t0 + week + 10,
			WantRequired: perSec(1000 + 20),
		},
		"not after the running stream cursor": {
			AsOf:    t0,
			WantErr: ErrInvalidTimeRange,
		},
	}

	for testName, tc := range cases {
		t.Run(testName, func(t *testing.T) {
			s, err := f.ledger.IsSufficientFund(f.at(t0+10), f.db, f.payer, nil, tc.AsOf)
			if !tc.WantErr.Is(err) {
				t.Fatalf("unexpected error: %+v", err)
			}
			if tc.WantErr != nil {
				return
			}
			assert.Equal(t, *tc.WantRequired, s.Required)
		})
	}
}

func TestShortfallIsRoundedUp(t *testing.T) {
	f := newFixture(t, ModelPool)
	f.deposit(t0, 1)
	// One and a half native unit per second.
	f.create(t0, NewStreamKey(f.payer, f.payee, uint256.NewInt(150), t0, t0+10))

	s, err := f.ledger.IsSufficientFund(f.at(t0), f.db, f.payer, nil, t0+1)
	assert.Nil(t, err)
	assert.Equal(t, false, s.IsSufficient)
	assert.Equal(t, *uint256.NewInt(50), s.Shortfall)
	assert.Equal(t, *native(1), s.ShortfallNative)
}

func TestMissingConfiguration(t *testing.T) {
	f := newFixture(t, ModelPool)
	assert.Nil(t, f.db.Delete([]byte("_c:stream")))
	_, err := f.ledger.Deposit(f.at(t0), f.db, f.payer, native(1))
	assert.IsErr(t, errors.ErrNotFound, err)
}
