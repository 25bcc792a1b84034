package stream

import (
	"testing"

	"github.com/holiman/uint256"
	"github.com/iov-one/drip"
	"github.com/iov-one/drip/coin"
	"github.com/iov-one/drip/errors"
	"github.com/iov-one/drip/gconf"
	"github.com/iov-one/drip/store"
	"github.com/iov-one/drip/weavetest"
	"github.com/iov-one/drip/weavetest/assert"
	"github.com/iov-one/drip/x/cash"
)

const (
	testTicker = "DRP"
	// With 18 decimals a single native unit is 100 scaled units.
	testDecimals = 18
	t0           = drip.UnixTime(1000000)
)

// perSec returns the scaled rate of given number of native units per second.
func perSec(native uint64) *uint256.Int {
	return uint256.NewInt(native * 100)
}

func native(n uint64) *uint256.Int {
	return uint256.NewInt(n)
}

type fixture struct {
	t      testing.TB
	db     drip.CacheableKVStore
	ledger *Ledger
	cash   cash.BaseController

	// Conditions are kept so that handler tests can sign with them.
	ownerCond drip.Condition
	payerCond drip.Condition
	payeeCond drip.Condition
	otherCond drip.Condition

	payer drip.Address
	payee drip.Address
	other drip.Address
}

func newFixture(t testing.TB, model string) *fixture {
	t.Helper()
	db := store.MemStore()
	owner := weavetest.NewCondition()
	conf := Configuration{
		Owner:    owner.Address(),
		Ticker:   testTicker,
		Decimals: testDecimals,
		Model:    model,
	}
	assert.Nil(t, gconf.Save(db, ConfigPkg, &conf))

	ctrl := cash.NewController()
	f := &fixture{
		t:         t,
		db:        db,
		ledger:    NewLedger(ctrl),
		cash:      ctrl,
		ownerCond: owner,
		payerCond: weavetest.NewCondition(),
		payeeCond: weavetest.NewCondition(),
		otherCond: weavetest.NewCondition(),
	}
	f.payer = f.payerCond.Address()
	f.payee = f.payeeCond.Address()
	f.other = f.otherCond.Address()
	assert.Nil(t, ctrl.IssueCoins(db, f.payer, coin.NewCoin(10000, testTicker)))
	return f
}

// at returns a context with the block time set to given moment.
func (f *fixture) at(now drip.UnixTime) drip.Context {
	return weavetest.UnixCtx(f.t, int64(now-t0)+1, now)
}

func (f *fixture) key(rate uint64, start, end drip.UnixTime) StreamKey {
	return NewStreamKey(f.payer, f.payee, perSec(rate), start, end)
}

// wallet returns the native balance of given address.
func (f *fixture) wallet(addr drip.Address) uint64 {
	f.t.Helper()
	coins, err := f.cash.Balance(f.db, addr)
	if errors.ErrNotFound.Is(err) {
		return 0
	}
	assert.Nil(f.t, err)
	amount := coins.Balance(testTicker).Amount
	return amount.Uint64()
}

func (f *fixture) account() *Account {
	f.t.Helper()
	acc, err := f.ledger.Account(f.db, f.payer)
	assert.Nil(f.t, err)
	return acc
}

func (f *fixture) deposit(now drip.UnixTime, amount uint64) {
	f.t.Helper()
	_, err := f.ledger.Deposit(f.at(now), f.db, f.payer, native(amount))
	assert.Nil(f.t, err)
}

func (f *fixture) create(now drip.UnixTime, key StreamKey) {
	f.t.Helper()
	_, err := f.ledger.CreateStream(f.at(now), f.db, key, nil)
	assert.Nil(f.t, err)
}

// paid runs a settling operation and returns the native amount it paid.
func (f *fixture) paid(ev *Event, err error) uint64 {
	f.t.Helper()
	assert.Nil(f.t, err)
	return ev.Amount.Uint64()
}

// checkSolvency asserts the account invariants of both funding models.
func (f *fixture) checkSolvency() {
	f.t.Helper()
	acc := f.account()
	assert.Nil(f.t, acc.Validate())
	// Every scaled unit held by the accounts is backed by the vault.
	backed := new(uint256.Int).Mul(native(f.wallet(VaultAddress)), uint256.NewInt(100))
	if held := new(uint256.Int).Add(&acc.Balance, new(uint256.Int).Sub(&acc.TotalDeposited, &acc.TotalWithdrawn)); held.Gt(backed) {
		f.t.Fatalf("account holds %s, vault backs %s", held.Dec(), backed.Dec())
	}
}
