package stream

import (
	"github.com/holiman/uint256"
	"github.com/iov-one/drip"
	"github.com/iov-one/drip/coin"
	"github.com/iov-one/drip/errors"
	"github.com/iov-one/drip/orm"
	"github.com/tendermint/tendermint/libs/log"
)

// VaultAddress holds the tokens deposited by all payers.
var VaultAddress = drip.NewCondition("stream", "vault", []byte("pool")).Address()

// CoinMover moves tokens between wallets. It is implemented by the
// cash.Controller.
type CoinMover interface {
	MoveCoins(db drip.KVStore, src, dst drip.Address, amount coin.Coin) error
}

// Ledger keeps the state of all streams and payer accounts. It does not hold
// any state on its own, the database is passed to every call.
type Ledger struct {
	streams  orm.ModelBucket
	accounts orm.ModelBucket
	mover    CoinMover
}

// NewLedger returns a ledger that moves tokens using given mover.
func NewLedger(mover CoinMover) *Ledger {
	return &Ledger{
		streams:  NewStreamBucket(),
		accounts: NewAccountBucket(),
		mover:    mover,
	}
}

// env is the per call environment of a ledger operation.
type env struct {
	conf   *Configuration
	scaler Scaler
	model  funding
	now    drip.UnixTime
	logger log.Logger
}

func (l *Ledger) env(ctx drip.Context, db drip.ReadOnlyKVStore) (*env, error) {
	conf, err := LoadConfiguration(db)
	if err != nil {
		return nil, err
	}
	scaler, err := conf.Scaler()
	if err != nil {
		return nil, errors.Wrap(err, "scaler")
	}
	model, err := newFunding(conf.Model)
	if err != nil {
		return nil, err
	}
	now, err := drip.BlockTime(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "clock")
	}
	return &env{
		conf:   conf,
		scaler: scaler,
		model:  model,
		now:    now,
		logger: drip.GetLogger(ctx).With("module", "stream"),
	}, nil
}

// CreateStream starts a stream that accrues from its start time. When
// deposit is not zero, that many native tokens are first moved from the payer
// into the payer's account.
func (l *Ledger) CreateStream(ctx drip.Context, db drip.KVStore, key StreamKey, deposit *uint256.Int) (*Event, error) {
	if err := key.Validate(); err != nil {
		return nil, errors.Wrap(err, "stream")
	}
	e, err := l.env(ctx, db)
	if err != nil {
		return nil, err
	}
	st, err := l.loadStream(db, key)
	if err != nil {
		return nil, err
	}
	if st.Active() {
		return nil, errors.Wrapf(ErrDuplicateActiveStream, "stream %s", key)
	}
	acc, err := l.loadAccount(db, key.Payer())
	if err != nil {
		return nil, err
	}
	funded := deposit != nil && !deposit.IsZero()
	if funded {
		if err := credit(e, acc, deposit); err != nil {
			return nil, errors.Wrap(err, "deposit")
		}
	}
	st.Cursor = key.Start
	if err := e.model.activate(acc, key, st.Cursor); err != nil {
		return nil, err
	}
	if funded {
		if err := l.collect(db, e, key.Payer(), deposit); err != nil {
			return nil, errors.Wrap(err, "deposit")
		}
	}
	if err := l.save(db, key, st, acc); err != nil {
		return nil, err
	}
	e.logger.Debug("stream created", "id", key.ID(), "rate", key.Rate.Dec())
	return streamEvent(ActionCreate, key, deposit), nil
}

// Withdraw pays the payee everything the stream accrued and the payer can
// cover.
func (l *Ledger) Withdraw(ctx drip.Context, db drip.KVStore, key StreamKey) (*Event, error) {
	e, st, acc, err := l.loadActive(ctx, db, key)
	if err != nil {
		return nil, err
	}
	paid, err := l.settle(db, e, acc, key, st)
	if err != nil {
		return nil, err
	}
	if err := l.pay(db, e, key, paid); err != nil {
		return nil, err
	}
	if err := l.save(db, key, st, acc); err != nil {
		return nil, err
	}
	return streamEvent(ActionWithdraw, key, paid), nil
}

// PauseStream settles and stops a stream. A paused stream can be resumed.
func (l *Ledger) PauseStream(ctx drip.Context, db drip.KVStore, key StreamKey) (*Event, error) {
	e, st, acc, err := l.loadActive(ctx, db, key)
	if err != nil {
		return nil, err
	}
	if e.now >= key.End {
		return nil, errors.Wrap(ErrInactiveStream, "stream ended")
	}
	paid, err := l.stop(db, e, acc, key, st)
	if err != nil {
		return nil, err
	}
	st.PausedAt = e.now
	if err := l.pay(db, e, key, paid); err != nil {
		return nil, err
	}
	if err := l.save(db, key, st, acc); err != nil {
		return nil, err
	}
	return streamEvent(ActionPause, key, paid), nil
}

// ResumeStream restarts a paused stream. The time it was paused for is not
// paid.
func (l *Ledger) ResumeStream(ctx drip.Context, db drip.KVStore, key StreamKey) (*Event, error) {
	e, err := l.env(ctx, db)
	if err != nil {
		return nil, err
	}
	st, err := l.loadStream(db, key)
	if err != nil {
		return nil, err
	}
	if !st.Paused() {
		return nil, errors.Wrapf(ErrInactiveStream, "stream %s not paused", key)
	}
	if st.Active() {
		return nil, errors.Wrapf(ErrDuplicateActiveStream, "stream %s", key)
	}
	acc, err := l.loadAccount(db, key.Payer())
	if err != nil {
		return nil, err
	}
	st.Cursor = clamp(e.now, key.Start, key.End)
	st.PausedAt = 0
	if err := e.model.activate(acc, key, st.Cursor); err != nil {
		return nil, err
	}
	if err := l.save(db, key, st, acc); err != nil {
		return nil, err
	}
	return streamEvent(ActionResume, key, nil), nil
}

// CancelStream settles and removes an active stream.
func (l *Ledger) CancelStream(ctx drip.Context, db drip.KVStore, key StreamKey) (*Event, error) {
	e, st, acc, err := l.loadActive(ctx, db, key)
	if err != nil {
		return nil, err
	}
	paid, err := l.stop(db, e, acc, key, st)
	if err != nil {
		return nil, err
	}
	if err := l.pay(db, e, key, paid); err != nil {
		return nil, err
	}
	if err := l.save(db, key, st, acc); err != nil {
		return nil, err
	}
	return streamEvent(ActionCancel, key, paid), nil
}

// ModifyStream replaces an active stream with one that has a different
// payee, rate or end. The old stream is settled first and the new one
// accrues from now, so no time is paid twice.
func (l *Ledger) ModifyStream(ctx drip.Context, db drip.KVStore, key StreamKey, payee drip.Address, rate *uint256.Int, end drip.UnixTime) (*Event, error) {
	next := NewStreamKey(key.Payer(), payee, rate, key.Start, end)
	if err := next.Validate(); err != nil {
		return nil, errors.Wrap(err, "modified stream")
	}
	if next == key {
		return nil, errors.Wrap(errors.ErrInput, "stream not modified")
	}
	e, st, acc, err := l.loadActive(ctx, db, key)
	if err != nil {
		return nil, err
	}
	if end <= e.now {
		return nil, errors.Wrapf(ErrInvalidTimeRange, "end %d is not in the future", end)
	}
	nst, err := l.loadStream(db, next)
	if err != nil {
		return nil, err
	}
	if nst.Active() {
		return nil, errors.Wrapf(ErrDuplicateActiveStream, "stream %s", next)
	}

	// The release of the old stream and the commitment of the new one are
	// checked together before anything is paid or written.
	paid, err := l.stop(db, e, acc, key, st)
	if err != nil {
		return nil, err
	}
	nst.Cursor = clamp(e.now, next.Start, next.End)
	if err := e.model.activate(acc, next, nst.Cursor); err != nil {
		return nil, err
	}
	if err := l.pay(db, e, key, paid); err != nil {
		return nil, err
	}
	if err := l.saveStream(db, key, st); err != nil {
		return nil, err
	}
	if err := l.save(db, next, nst, acc); err != nil {
		return nil, err
	}
	ev := streamEvent(ActionModify, next, paid)
	ev.PreviousID = key.ID()
	return ev, nil
}

// Deposit moves native tokens from the payer wallet into the payer account.
func (l *Ledger) Deposit(ctx drip.Context, db drip.KVStore, payer drip.Address, amount *uint256.Int) (*Event, error) {
	if amount == nil || amount.IsZero() {
		return nil, errors.Wrap(errors.ErrAmount, "deposit must be positive")
	}
	e, err := l.env(ctx, db)
	if err != nil {
		return nil, err
	}
	acc, err := l.loadAccount(db, payer)
	if err != nil {
		return nil, err
	}
	if err := credit(e, acc, amount); err != nil {
		return nil, err
	}
	if err := l.collect(db, e, payer, amount); err != nil {
		return nil, err
	}
	if err := l.saveAccount(db, payer, acc); err != nil {
		return nil, err
	}
	return accountEvent(ActionDeposit, payer, amount), nil
}

// WithdrawPayer returns native tokens from the payer account to the payer
// wallet. Funds needed by the streams cannot be withdrawn.
func (l *Ledger) WithdrawPayer(ctx drip.Context, db drip.KVStore, payer drip.Address, amount *uint256.Int) (*Event, error) {
	if amount == nil || amount.IsZero() {
		return nil, errors.Wrap(errors.ErrAmount, "withdrawal must be positive")
	}
	e, err := l.env(ctx, db)
	if err != nil {
		return nil, err
	}
	acc, free, err := l.payerFree(db, e, payer)
	if err != nil {
		return nil, err
	}
	scaled, err := e.scaler.ToScaled(amount)
	if err != nil {
		return nil, err
	}
	if free.Lt(scaled) {
		return nil, errors.Wrapf(ErrInsufficientFunds, "can withdraw at most %s", e.scaler.ToNative(free).Dec())
	}
	return l.withdrawPayer(db, e, acc, payer, amount, scaled)
}

// WithdrawPayerAll withdraws the largest whole native amount the payer can
// take out of the account.
func (l *Ledger) WithdrawPayerAll(ctx drip.Context, db drip.KVStore, payer drip.Address) (*Event, error) {
	e, err := l.env(ctx, db)
	if err != nil {
		return nil, err
	}
	acc, free, err := l.payerFree(db, e, payer)
	if err != nil {
		return nil, err
	}
	amount := e.scaler.ToNative(free)
	if amount.IsZero() {
		return nil, errors.Wrap(ErrInsufficientFunds, "nothing to withdraw")
	}
	scaled, err := e.scaler.ToScaled(amount)
	if err != nil {
		return nil, err
	}
	return l.withdrawPayer(db, e, acc, payer, amount, scaled)
}

func (l *Ledger) payerFree(db drip.ReadOnlyKVStore, e *env, payer drip.Address) (*Account, *uint256.Int, error) {
	acc, err := l.loadAccount(db, payer)
	if err != nil {
		return nil, nil, err
	}
	streams, err := l.accruing(db, payer)
	if err != nil {
		return nil, nil, err
	}
	return acc, e.model.free(acc, streams, e.now), nil
}

func (l *Ledger) withdrawPayer(db drip.KVStore, e *env, acc *Account, payer drip.Address, amount, scaled *uint256.Int) (*Event, error) {
	if err := e.model.withdraw(acc, scaled); err != nil {
		return nil, err
	}
	if err := l.mover.MoveCoins(db, VaultAddress, payer, coin.FromInt(amount, e.conf.Ticker)); err != nil {
		return nil, errors.Wrap(err, "move to payer")
	}
	if err := l.saveAccount(db, payer, acc); err != nil {
		return nil, err
	}
	return accountEvent(ActionWithdrawPayer, payer, amount), nil
}

// Withdrawal describes what a withdraw would pay now.
type Withdrawal struct {
	// Amount in native tokens.
	Amount uint256.Int
	// Scaled amount deducted from the payer account.
	Scaled uint256.Int
	// CoveredUntil is the moment up to which the payer can pay.
	CoveredUntil drip.UnixTime
}

// Withdrawable returns what a withdraw of given stream would pay now,
// without changing the state.
func (l *Ledger) Withdrawable(ctx drip.Context, db drip.ReadOnlyKVStore, key StreamKey) (*Withdrawal, error) {
	e, err := l.env(ctx, db)
	if err != nil {
		return nil, err
	}
	st, err := l.loadStream(db, key)
	if err != nil {
		return nil, err
	}
	if !st.Active() {
		return nil, errors.Wrapf(ErrInactiveStream, "stream %s", key)
	}
	acc, err := l.loadAccount(db, key.Payer())
	if err != nil {
		return nil, err
	}
	asOf, err := l.settleTime(db, e, acc, key.Payer())
	if err != nil {
		return nil, err
	}
	var w Withdrawal
	w.Scaled.Set(Accrued(key, st.Cursor, asOf))
	w.Amount.Set(e.scaler.ToNative(&w.Scaled))
	w.CoveredUntil = asOf
	return &w, nil
}

// Stream returns the state of given stream.
func (l *Ledger) Stream(db drip.ReadOnlyKVStore, key StreamKey) (*Stream, error) {
	var st Stream
	if err := l.streams.One(db, key.Bytes(), &st); err != nil {
		return nil, errors.Wrapf(err, "stream %s", key)
	}
	return &st, nil
}

// Account returns the account of given payer. A payer that never deposited
// has an empty account.
func (l *Ledger) Account(db drip.ReadOnlyKVStore, payer drip.Address) (*Account, error) {
	return l.loadAccount(db, payer)
}

// StreamEntry is a stream together with its identity.
type StreamEntry struct {
	Key    StreamKey
	Stream Stream
}

// Streams returns all active and paused streams of a payer.
func (l *Ledger) Streams(db drip.ReadOnlyKVStore, payer drip.Address) ([]StreamEntry, error) {
	if err := payer.Validate(); err != nil {
		return nil, errors.Wrap(err, "payer")
	}
	it, err := l.streams.PrefixScan(db, payer, false)
	if err != nil {
		return nil, err
	}
	defer it.Release()

	var entries []StreamEntry
	for {
		var st Stream
		raw, err := it.Load(&st)
		switch {
		case err == nil:
		case errors.ErrIteratorDone.Is(err):
			return entries, nil
		default:
			return nil, errors.Wrap(err, "load stream")
		}
		key, err := ParseStreamKey(raw)
		if err != nil {
			return nil, err
		}
		entries = append(entries, StreamEntry{Key: key, Stream: st})
	}
}

// loadActive returns the environment and state of an active stream.
func (l *Ledger) loadActive(ctx drip.Context, db drip.KVStore, key StreamKey) (*env, *Stream, *Account, error) {
	e, err := l.env(ctx, db)
	if err != nil {
		return nil, nil, nil, err
	}
	st, err := l.loadStream(db, key)
	if err != nil {
		return nil, nil, nil, err
	}
	if !st.Active() {
		return nil, nil, nil, errors.Wrapf(ErrInactiveStream, "stream %s", key)
	}
	acc, err := l.loadAccount(db, key.Payer())
	if err != nil {
		return nil, nil, nil, err
	}
	return e, st, acc, nil
}

// settle books what the stream accrued up to the moment the payer can cover
// and moves the cursor there. The returned native amount is owed to the
// payee and must be moved with pay.
func (l *Ledger) settle(db drip.ReadOnlyKVStore, e *env, acc *Account, key StreamKey, st *Stream) (*uint256.Int, error) {
	asOf, err := l.settleTime(db, e, acc, key.Payer())
	if err != nil {
		return nil, err
	}
	scaled := Accrued(key, st.Cursor, asOf)
	if c := clamp(asOf, key.Start, key.End); c > st.Cursor {
		st.Cursor = c
	}
	if scaled.IsZero() {
		return scaled, nil
	}
	if err := e.model.settle(acc, scaled); err != nil {
		return nil, err
	}
	paid := e.scaler.ToNative(scaled)
	e.logger.Debug("stream settled",
		"id", key.ID(),
		"until", asOf,
		"scaled", scaled.Dec(),
		"paid", paid.Dec())
	return paid, nil
}

// pay moves a settled amount from the vault to the payee.
func (l *Ledger) pay(db drip.KVStore, e *env, key StreamKey, amount *uint256.Int) error {
	if amount.IsZero() {
		return nil
	}
	return errors.Wrap(l.mover.MoveCoins(db, VaultAddress, key.Payee(), coin.FromInt(amount, e.conf.Ticker)), "move to payee")
}

// stop settles the stream and releases its funding. The stream is no longer
// active afterwards.
func (l *Ledger) stop(db drip.ReadOnlyKVStore, e *env, acc *Account, key StreamKey, st *Stream) (*uint256.Int, error) {
	paid, err := l.settle(db, e, acc, key, st)
	if err != nil {
		return nil, err
	}
	if err := e.model.deactivate(acc, key, st.Cursor); err != nil {
		return nil, err
	}
	st.Cursor = 0
	return paid, nil
}

func (l *Ledger) settleTime(db drip.ReadOnlyKVStore, e *env, acc *Account, payer drip.Address) (drip.UnixTime, error) {
	streams, err := l.accruing(db, payer)
	if err != nil {
		return 0, err
	}
	return e.model.settleTime(acc, streams, e.now), nil
}

// accruing returns all active streams of a payer.
func (l *Ledger) accruing(db drip.ReadOnlyKVStore, payer drip.Address) ([]accruing, error) {
	entries, err := l.Streams(db, payer)
	if err != nil {
		return nil, err
	}
	var streams []accruing
	for _, en := range entries {
		if en.Stream.Active() {
			streams = append(streams, accruing{key: en.Key, cursor: en.Stream.Cursor})
		}
	}
	return streams, nil
}

// credit books a deposit of native tokens on the account.
func credit(e *env, acc *Account, amount *uint256.Int) error {
	scaled, err := e.scaler.ToScaled(amount)
	if err != nil {
		return err
	}
	return e.model.deposit(acc, scaled)
}

// collect moves deposited native tokens from the payer wallet to the vault.
func (l *Ledger) collect(db drip.KVStore, e *env, payer drip.Address, amount *uint256.Int) error {
	return errors.Wrap(l.mover.MoveCoins(db, payer, VaultAddress, coin.FromInt(amount, e.conf.Ticker)), "move to vault")
}

// loadStream returns the stream state. A missing record is returned as a
// stream that is neither active nor paused.
func (l *Ledger) loadStream(db drip.ReadOnlyKVStore, key StreamKey) (*Stream, error) {
	var st Stream
	switch err := l.streams.One(db, key.Bytes(), &st); {
	case err == nil:
		return &st, nil
	case errors.ErrNotFound.Is(err):
		return &Stream{}, nil
	default:
		return nil, errors.Wrap(err, "load stream")
	}
}

func (l *Ledger) loadAccount(db drip.ReadOnlyKVStore, payer drip.Address) (*Account, error) {
	var acc Account
	switch err := l.accounts.One(db, payer, &acc); {
	case err == nil:
		return &acc, nil
	case errors.ErrNotFound.Is(err):
		return &Account{}, nil
	default:
		return nil, errors.Wrap(err, "load account")
	}
}

func (l *Ledger) save(db drip.KVStore, key StreamKey, st *Stream, acc *Account) error {
	if err := l.saveStream(db, key, st); err != nil {
		return err
	}
	return l.saveAccount(db, key.Payer(), acc)
}

// saveStream stores the stream state. A stream that is neither active nor
// paused is removed.
func (l *Ledger) saveStream(db drip.KVStore, key StreamKey, st *Stream) error {
	if !st.Active() && !st.Paused() {
		if err := l.streams.Delete(db, key.Bytes()); err != nil && !errors.ErrNotFound.Is(err) {
			return errors.Wrap(err, "delete stream")
		}
		return nil
	}
	return errors.Wrap(l.streams.Put(db, key.Bytes(), st), "save stream")
}

// saveAccount stores the account. An account holding nothing is removed.
func (l *Ledger) saveAccount(db drip.KVStore, payer drip.Address, acc *Account) error {
	if *acc == (Account{}) {
		if err := l.accounts.Delete(db, payer); err != nil && !errors.ErrNotFound.Is(err) {
			return errors.Wrap(err, "delete account")
		}
		return nil
	}
	return errors.Wrap(l.accounts.Put(db, payer, acc), "save account")
}
