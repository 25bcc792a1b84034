package stream

import (
	"encoding/json"
	"testing"

	"github.com/iov-one/drip"
	"github.com/iov-one/drip/app"
	"github.com/iov-one/drip/errors"
	"github.com/iov-one/drip/gconf"
	"github.com/iov-one/drip/store"
	"github.com/iov-one/drip/weavetest"
	"github.com/iov-one/drip/weavetest/assert"
	"github.com/iov-one/drip/x/batch"
)

// handler returns the stream routes with the batch decorator on top.
func (f *fixture) handler(auth *weavetest.CtxAuth) drip.Handler {
	r := app.NewRouter()
	RegisterRoutes(r, auth, f.ledger)
	return app.ChainDecorators(batch.NewDecorator()).WithHandler(r)
}

func TestHandlerAuthorization(t *testing.T) {
	cases := map[string]struct {
		PublicSettlement bool
		Msg              func(f *fixture, key StreamKey) drip.Msg
		Signer           func(f *fixture) drip.Condition
		WantErr          *errors.Error
		WantAction       string
	}{
		"payer creates a stream": {
			Msg: func(f *fixture, _ StreamKey) drip.Msg {
				return &CreateStreamMsg{Payer: f.payer, Payee: f.other, Rate: perSec(1), Start: t0, End: t0 + 10}
			},
			Signer:     func(f *fixture) drip.Condition { return f.payerCond },
			WantAction: ActionCreate,
		},
		"payee cannot create a stream for the payer": {
			Msg: func(f *fixture, _ StreamKey) drip.Msg {
				return &CreateStreamMsg{Payer: f.payer, Payee: f.other, Rate: perSec(1), Start: t0, End: t0 + 10}
			},
			Signer:  func(f *fixture) drip.Condition { return f.payeeCond },
			WantErr: errors.ErrUnauthorized,
		},
		"payee withdraws": {
			Msg:        func(_ *fixture, key StreamKey) drip.Msg { return &WithdrawMsg{StreamID: key.ID()} },
			Signer:     func(f *fixture) drip.Condition { return f.payeeCond },
			WantAction: ActionWithdraw,
		},
		"payer withdraws for the payee": {
			Msg:        func(_ *fixture, key StreamKey) drip.Msg { return &WithdrawMsg{StreamID: key.ID()} },
			Signer:     func(f *fixture) drip.Condition { return f.payerCond },
			WantAction: ActionWithdraw,
		},
		"stranger cannot withdraw": {
			Msg:     func(_ *fixture, key StreamKey) drip.Msg { return &WithdrawMsg{StreamID: key.ID()} },
			Signer:  func(f *fixture) drip.Condition { return f.otherCond },
			WantErr: errors.ErrUnauthorized,
		},
		"stranger withdraws with public settlement": {
			PublicSettlement: true,
			Msg:              func(_ *fixture, key StreamKey) drip.Msg { return &WithdrawMsg{StreamID: key.ID()} },
			Signer:           func(f *fixture) drip.Condition { return f.otherCond },
			WantAction:       ActionWithdraw,
		},
		"payee cannot pause": {
			Msg:     func(_ *fixture, key StreamKey) drip.Msg { return &PauseStreamMsg{StreamID: key.ID()} },
			Signer:  func(f *fixture) drip.Condition { return f.payeeCond },
			WantErr: errors.ErrUnauthorized,
		},
		"payer pauses": {
			Msg:        func(_ *fixture, key StreamKey) drip.Msg { return &PauseStreamMsg{StreamID: key.ID()} },
			Signer:     func(f *fixture) drip.Condition { return f.payerCond },
			WantAction: ActionPause,
		},
		"payee cannot cancel": {
			Msg:     func(_ *fixture, key StreamKey) drip.Msg { return &CancelStreamMsg{StreamID: key.ID()} },
			Signer:  func(f *fixture) drip.Condition { return f.payeeCond },
			WantErr: errors.ErrUnauthorized,
		},
		"payee cannot modify": {
			Msg: func(f *fixture, key StreamKey) drip.Msg {
				return &ModifyStreamMsg{StreamID: key.ID(), Payee: f.payee, Rate: perSec(5), End: t0 + 100}
			},
			Signer:  func(f *fixture) drip.Condition { return f.payeeCond },
			WantErr: errors.ErrUnauthorized,
		},
		"payer modifies": {
			Msg: func(f *fixture, key StreamKey) drip.Msg {
				return &ModifyStreamMsg{StreamID: key.ID(), Payee: f.payee, Rate: perSec(5), End: t0 + 100}
			},
			Signer:     func(f *fixture) drip.Condition { return f.payerCond },
			WantAction: ActionModify,
		},
		"stranger cannot deposit for the payer": {
			Msg:     func(f *fixture, _ StreamKey) drip.Msg { return &DepositMsg{Payer: f.payer, Amount: native(1)} },
			Signer:  func(f *fixture) drip.Condition { return f.otherCond },
			WantErr: errors.ErrUnauthorized,
		},
		"payer withdraws free funds": {
			Msg:        func(f *fixture, _ StreamKey) drip.Msg { return &WithdrawPayerMsg{Payer: f.payer, Amount: native(10)} },
			Signer:     func(f *fixture) drip.Condition { return f.payerCond },
			WantAction: ActionWithdrawPayer,
		},
		"payee cannot withdraw the payer funds": {
			Msg:     func(f *fixture, _ StreamKey) drip.Msg { return &WithdrawPayerAllMsg{Payer: f.payer} },
			Signer:  func(f *fixture) drip.Condition { return f.payeeCond },
			WantErr: errors.ErrUnauthorized,
		},
		"invalid message": {
			Msg:     func(f *fixture, _ StreamKey) drip.Msg { return &WithdrawMsg{StreamID: "1234"} },
			Signer:  func(f *fixture) drip.Condition { return f.payerCond },
			WantErr: errors.ErrInput,
		},
	}

	for testName, tc := range cases {
		t.Run(testName, func(t *testing.T) {
			f := newFixture(t, ModelPool)
			if tc.PublicSettlement {
				conf, err := LoadConfiguration(f.db)
				assert.Nil(t, err)
				conf.PublicSettlement = true
				assert.Nil(t, gconf.Save(f.db, ConfigPkg, conf))
			}
			f.deposit(t0, 100)
			key := f.key(1, t0, t0+50)
			f.create(t0, key)

			auth := &weavetest.CtxAuth{Key: "auth"}
			h := f.handler(auth)
			ctx := auth.SetConditions(f.at(t0+20), tc.Signer(f))
			tx := &weavetest.Tx{Msg: tc.Msg(f, key)}

			if _, err := h.Check(ctx, f.db, tx); !tc.WantErr.Is(err) {
				t.Fatalf("unexpected check error: %+v", err)
			}
			res, err := h.Deliver(ctx, f.db, tx)
			if !tc.WantErr.Is(err) {
				t.Fatalf("unexpected deliver error: %+v", err)
			}
			if tc.WantErr != nil {
				return
			}

			var ev Event
			assert.Nil(t, ev.Unmarshal(res.Data))
			assert.Equal(t, tc.WantAction, ev.Action)
			assert.Equal(t, f.payer, ev.Payer)
			assert.Equal(t, []byte(TagAction), res.Tags[0].Key)
			assert.Equal(t, []byte(tc.WantAction), res.Tags[0].Value)
			f.checkSolvency()
		})
	}
}

func TestBatchResumeAndCancel(t *testing.T) {
	f := newFixture(t, ModelEscrow)
	f.deposit(t0, 100)
	key := f.key(1, t0, t0+100)
	f.create(t0, key)
	_, err := f.ledger.PauseStream(f.at(t0+30), f.db, key)
	assert.Nil(t, err)

	auth := &weavetest.CtxAuth{Key: "auth"}
	h := f.handler(auth)
	tx := &weavetest.Tx{Msg: &batch.ExecuteBatchMsg{
		RequireAllSucceed: true,
		Messages: []drip.Msg{
			&ResumeStreamMsg{StreamID: key.ID()},
			&CancelStreamMsg{StreamID: key.ID()},
		},
	}}

	ctx := auth.SetConditions(f.at(t0+40), f.payerCond)
	_, err = h.Deliver(ctx, f.db, tx)
	assert.Nil(t, err)
	_, err = f.ledger.Stream(f.db, key)
	assert.IsErr(t, errors.ErrNotFound, err)
	assert.Equal(t, uint64(30), f.wallet(f.payee))

	// The stream is gone, the whole batch fails and nothing is resumed.
	ctx = auth.SetConditions(f.at(t0+50), f.payerCond)
	_, err = h.Deliver(ctx, f.db, tx)
	assert.IsErr(t, ErrInactiveStream, err)
	_, err = f.ledger.Stream(f.db, key)
	assert.IsErr(t, errors.ErrNotFound, err)
	assert.Equal(t, true, f.account().TotalCommitted.IsZero())
	f.checkSolvency()
}

func TestBatchAtomicFailureIsRolledBack(t *testing.T) {
	f := newFixture(t, ModelEscrow)
	f.deposit(t0, 100)
	key := f.key(1, t0, t0+100)
	f.create(t0, key)
	_, err := f.ledger.PauseStream(f.at(t0+30), f.db, key)
	assert.Nil(t, err)

	auth := &weavetest.CtxAuth{Key: "auth"}
	h := f.handler(auth)
	ctx := auth.SetConditions(f.at(t0+40), f.payerCond)

	// Resume succeeds, the second resume fails and takes the first one
	// down with it.
	tx := &weavetest.Tx{Msg: &batch.ExecuteBatchMsg{
		RequireAllSucceed: true,
		Messages: []drip.Msg{
			&ResumeStreamMsg{StreamID: key.ID()},
			&ResumeStreamMsg{StreamID: key.ID()},
		},
	}}
	_, err = h.Deliver(ctx, f.db, tx)
	assert.IsErr(t, ErrInactiveStream, err)
	st, err := f.ledger.Stream(f.db, key)
	assert.Nil(t, err)
	assert.Equal(t, &Stream{PausedAt: t0 + 30}, st)

	// Without the atomic requirement the first resume is kept.
	tx.Msg.(*batch.ExecuteBatchMsg).RequireAllSucceed = false
	res, err := h.Deliver(ctx, f.db, tx)
	assert.Nil(t, err)
	results, err := batch.DecodeResults(res.Data)
	assert.Nil(t, err)
	assert.Equal(t, 2, len(results))
	assert.Equal(t, false, results[0].Failed())
	assert.Equal(t, ErrInactiveStream.ABCICode(), results[1].Code)

	st, err = f.ledger.Stream(f.db, key)
	assert.Nil(t, err)
	assert.Equal(t, &Stream{Cursor: t0 + 40}, st)
	f.checkSolvency()
}

func TestUpdateConfiguration(t *testing.T) {
	f := newFixture(t, ModelPool)
	auth := &weavetest.CtxAuth{Key: "auth"}
	h := f.handler(auth)
	tx := &weavetest.Tx{Msg: &UpdateConfigurationMsg{
		Patch: &Configuration{PublicSettlement: true},
	}}

	ctx := auth.SetConditions(f.at(t0), f.payerCond)
	_, err := h.Deliver(ctx, f.db, tx)
	assert.IsErr(t, errors.ErrUnauthorized, err)

	ctx = auth.SetConditions(f.at(t0), f.ownerCond)
	_, err = h.Deliver(ctx, f.db, tx)
	assert.Nil(t, err)

	conf, err := LoadConfiguration(f.db)
	assert.Nil(t, err)
	assert.Equal(t, true, conf.PublicSettlement)
	assert.Equal(t, testTicker, conf.Ticker)
	assert.Equal(t, ModelPool, conf.Model)
}

func TestGenesis(t *testing.T) {
	const genesis = `{
		"conf": {
			"stream": {
				"ticker": "DRP",
				"decimals": 6,
				"model": "escrow",
				"public_settlement": true
			}
		}
	}`
	var opts drip.Options
	assert.Nil(t, json.Unmarshal([]byte(genesis), &opts))

	db := store.MemStore()
	assert.Nil(t, Initializer{}.FromGenesis(opts, db))

	conf, err := LoadConfiguration(db)
	assert.Nil(t, err)
	want := &Configuration{
		Ticker:           "DRP",
		Decimals:         6,
		Model:            ModelEscrow,
		PublicSettlement: true,
	}
	assert.Equal(t, want, conf)

	var bad drip.Options
	assert.Nil(t, json.Unmarshal([]byte(`{"conf": {"stream": {"ticker": "DRP", "model": "lottery"}}}`), &bad))
	err = Initializer{}.FromGenesis(bad, store.MemStore())
	assert.IsErr(t, errors.ErrInput, err)
}

func TestQueryStreams(t *testing.T) {
	f := newFixture(t, ModelPool)
	key := f.key(1, t0, t0+100)
	f.create(t0, key)

	qr := drip.NewQueryRouter()
	RegisterQuery(qr)
	res, err := qr.Query(f.db, "streams", drip.KeyQueryMod, key.Bytes())
	assert.Nil(t, err)
	assert.Equal(t, 1, len(res))

	var st Stream
	assert.Nil(t, st.Unmarshal(res[0].Value))
	assert.Equal(t, t0, st.Cursor)
}

func TestQueryComputedValues(t *testing.T) {
	f := newFixture(t, ModelPool)
	f.deposit(t0, 100)
	a := f.key(1, t0, t0+1000)
	b := NewStreamKey(f.payer, f.other, perSec(2), t0, t0+1000)
	f.create(t0, a)
	f.create(t0, b)

	qr := drip.NewQueryRouter()
	RegisterQuery(qr)

	req := SufficiencyRequest{Payer: f.payer, AsOf: t0 + 50}
	raw, err := req.Marshal()
	assert.Nil(t, err)

	// No block was recorded, so there is no clock.
	_, err = qr.Query(f.db, QuerySufficiency, drip.KeyQueryMod, raw)
	assert.IsErr(t, errors.ErrNotFound, err)

	assert.Nil(t, drip.SaveBlockTime(f.db, t0+10))
	res, err := qr.Query(f.db, QuerySufficiency, drip.KeyQueryMod, raw)
	assert.Nil(t, err)
	assert.Equal(t, 1, len(res))
	var s Sufficiency
	assert.Nil(t, s.Unmarshal(res[0].Value))
	assert.Equal(t, false, s.IsSufficient)
	assert.Equal(t, *native(50), s.ShortfallNative)

	req.Streams = []StreamKey{a}
	raw, err = req.Marshal()
	assert.Nil(t, err)
	res, err = qr.Query(f.db, QuerySufficiency, drip.KeyQueryMod, raw)
	assert.Nil(t, err)
	assert.Nil(t, s.Unmarshal(res[0].Value))
	assert.Equal(t, true, s.IsSufficient)
	assert.Equal(t, *perSec(50), s.Required)

	req.AsOf = t0
	raw, err = req.Marshal()
	assert.Nil(t, err)
	_, err = qr.Query(f.db, QuerySufficiency, drip.KeyQueryMod, raw)
	assert.IsErr(t, ErrInvalidTimeRange, err)

	res, err = qr.Query(f.db, QueryWithdrawable, drip.KeyQueryMod, b.Bytes())
	assert.Nil(t, err)
	var w Withdrawal
	assert.Nil(t, w.Unmarshal(res[0].Value))
	assert.Equal(t, *native(20), w.Amount)
	assert.Equal(t, drip.UnixTime(t0+10), w.CoveredUntil)

	_, err = qr.Query(f.db, QueryWithdrawable, drip.PrefixQueryMod, b.Bytes())
	assert.IsErr(t, errors.ErrInput, err)
	_, err = qr.Query(f.db, QueryWithdrawable, drip.KeyQueryMod, []byte("short"))
	assert.IsErr(t, errors.ErrInput, err)
}
