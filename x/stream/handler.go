package stream

import (
	"github.com/iov-one/drip"
	"github.com/iov-one/drip/errors"
	"github.com/iov-one/drip/gconf"
	"github.com/iov-one/drip/x"
)

const (
	createStreamCost  int64 = 200
	streamOpCost      int64 = 100
	accountOpCost     int64 = 50
	modifyStreamCost  int64 = 250
	withdrawPayerCost int64 = 100
)

// RegisterRoutes registers handlers of all stream messages.
func RegisterRoutes(r drip.Registry, auth x.Authenticator, ledger *Ledger) {
	r.Handle(pathCreateStreamMsg, &createStreamHandler{auth: auth, ledger: ledger})
	r.Handle(pathWithdrawMsg, &streamOpHandler{
		auth:   auth,
		cost:   streamOpCost,
		newMsg: func() idMsg { return &WithdrawMsg{} },
		signer: settlers,
		run:    ledger.Withdraw,
	})
	r.Handle(pathPauseStreamMsg, &streamOpHandler{
		auth:   auth,
		cost:   streamOpCost,
		newMsg: func() idMsg { return &PauseStreamMsg{} },
		signer: payerOnly,
		run:    ledger.PauseStream,
	})
	r.Handle(pathResumeStreamMsg, &streamOpHandler{
		auth:   auth,
		cost:   streamOpCost,
		newMsg: func() idMsg { return &ResumeStreamMsg{} },
		signer: payerOnly,
		run:    ledger.ResumeStream,
	})
	r.Handle(pathCancelStreamMsg, &streamOpHandler{
		auth:   auth,
		cost:   streamOpCost,
		newMsg: func() idMsg { return &CancelStreamMsg{} },
		signer: payerOnly,
		run:    ledger.CancelStream,
	})
	r.Handle(pathModifyStreamMsg, &modifyStreamHandler{auth: auth, ledger: ledger})
	r.Handle(pathDepositMsg, &depositHandler{auth: auth, ledger: ledger})
	r.Handle(pathWithdrawPayerMsg, &withdrawPayerHandler{auth: auth, ledger: ledger})
	r.Handle(pathWithdrawPayerAllMsg, &withdrawPayerAllHandler{auth: auth, ledger: ledger})
	r.Handle(pathUpdateConfigurationMsg, gconf.NewUpdateConfigurationHandler(ConfigPkg, &Configuration{}, auth))
}

// RegisterQuery exposes streams, payer accounts and the values a payee or a
// monitor needs to watch them: payer sufficiency and withdrawable amounts.
func RegisterQuery(qr drip.QueryRouter) {
	NewStreamBucket().Register("streams", qr)
	NewAccountBucket().Register("streamaccounts", qr)
	// Queries never move tokens.
	ledger := NewLedger(nil)
	qr.Register(QuerySufficiency, sufficiencyQuery{ledger: ledger})
	qr.Register(QueryWithdrawable, withdrawableQuery{ledger: ledger})
}

// eventResult returns the result of a delivered operation.
func eventResult(db drip.ReadOnlyKVStore, ev *Event) (*drip.DeliverResult, error) {
	raw, err := ev.Marshal()
	if err != nil {
		return nil, errors.Wrap(err, "event")
	}
	if conf, err := LoadConfiguration(db); err == nil {
		observe(conf.Ticker, ev)
	}
	return &drip.DeliverResult{Data: raw, Tags: ev.Tags()}, nil
}

type createStreamHandler struct {
	auth   x.Authenticator
	ledger *Ledger
}

var _ drip.Handler = (*createStreamHandler)(nil)

func (h *createStreamHandler) Check(ctx drip.Context, db drip.KVStore, tx drip.Tx) (*drip.CheckResult, error) {
	if _, err := h.validate(ctx, tx); err != nil {
		return nil, err
	}
	return &drip.CheckResult{GasAllocated: createStreamCost}, nil
}

func (h *createStreamHandler) Deliver(ctx drip.Context, db drip.KVStore, tx drip.Tx) (*drip.DeliverResult, error) {
	msg, err := h.validate(ctx, tx)
	if err != nil {
		return nil, err
	}
	ev, err := h.ledger.CreateStream(ctx, db, msg.Key(), msg.Deposit)
	if err != nil {
		return nil, err
	}
	return eventResult(db, ev)
}

func (h *createStreamHandler) validate(ctx drip.Context, tx drip.Tx) (*CreateStreamMsg, error) {
	var msg CreateStreamMsg
	if err := drip.LoadMsg(tx, &msg); err != nil {
		return nil, errors.Wrap(err, "load msg")
	}
	if !h.auth.HasAddress(ctx, msg.Payer) {
		return nil, errors.Wrap(errors.ErrUnauthorized, "payer signature missing")
	}
	return &msg, nil
}

// idMsg is a message that refers to a stream by its ID.
type idMsg interface {
	drip.Msg
	streamID() string
}

func (m *WithdrawMsg) streamID() string     { return m.StreamID }
func (m *PauseStreamMsg) streamID() string  { return m.StreamID }
func (m *ResumeStreamMsg) streamID() string { return m.StreamID }
func (m *CancelStreamMsg) streamID() string { return m.StreamID }

// signer returns the addresses of which at least one must sign an operation
// on given stream. Returning no addresses allows anybody.
type signer func(db drip.ReadOnlyKVStore, key StreamKey) ([]drip.Address, error)

func payerOnly(_ drip.ReadOnlyKVStore, key StreamKey) ([]drip.Address, error) {
	return []drip.Address{key.Payer()}, nil
}

// settlers allows both parties of a stream to settle it, or anybody when
// public settlement is enabled.
func settlers(db drip.ReadOnlyKVStore, key StreamKey) ([]drip.Address, error) {
	conf, err := LoadConfiguration(db)
	if err != nil {
		return nil, err
	}
	if conf.PublicSettlement {
		return nil, nil
	}
	return []drip.Address{key.Payer(), key.Payee()}, nil
}

// streamOpHandler handles messages that act on a single stream.
type streamOpHandler struct {
	auth   x.Authenticator
	cost   int64
	newMsg func() idMsg
	signer signer
	run    func(drip.Context, drip.KVStore, StreamKey) (*Event, error)
}

var _ drip.Handler = (*streamOpHandler)(nil)

func (h *streamOpHandler) Check(ctx drip.Context, db drip.KVStore, tx drip.Tx) (*drip.CheckResult, error) {
	if _, err := h.validate(ctx, db, tx); err != nil {
		return nil, err
	}
	return &drip.CheckResult{GasAllocated: h.cost}, nil
}

func (h *streamOpHandler) Deliver(ctx drip.Context, db drip.KVStore, tx drip.Tx) (*drip.DeliverResult, error) {
	key, err := h.validate(ctx, db, tx)
	if err != nil {
		return nil, err
	}
	ev, err := h.run(ctx, db, key)
	if err != nil {
		return nil, err
	}
	return eventResult(db, ev)
}

func (h *streamOpHandler) validate(ctx drip.Context, db drip.ReadOnlyKVStore, tx drip.Tx) (StreamKey, error) {
	msg := h.newMsg()
	if err := drip.LoadMsg(tx, msg); err != nil {
		return StreamKey{}, errors.Wrap(err, "load msg")
	}
	key, err := ParseStreamID(msg.streamID())
	if err != nil {
		return StreamKey{}, err
	}
	allowed, err := h.signer(db, key)
	if err != nil {
		return StreamKey{}, errors.Wrap(err, "signers")
	}
	if len(allowed) != 0 && !x.HasAnyAddress(ctx, h.auth, allowed...) {
		return StreamKey{}, errors.Wrap(errors.ErrUnauthorized, "stream party signature missing")
	}
	return key, nil
}

type modifyStreamHandler struct {
	auth   x.Authenticator
	ledger *Ledger
}

var _ drip.Handler = (*modifyStreamHandler)(nil)

func (h *modifyStreamHandler) Check(ctx drip.Context, db drip.KVStore, tx drip.Tx) (*drip.CheckResult, error) {
	if _, _, err := h.validate(ctx, tx); err != nil {
		return nil, err
	}
	return &drip.CheckResult{GasAllocated: modifyStreamCost}, nil
}

func (h *modifyStreamHandler) Deliver(ctx drip.Context, db drip.KVStore, tx drip.Tx) (*drip.DeliverResult, error) {
	msg, key, err := h.validate(ctx, tx)
	if err != nil {
		return nil, err
	}
	ev, err := h.ledger.ModifyStream(ctx, db, key, msg.Payee, msg.Rate, msg.End)
	if err != nil {
		return nil, err
	}
	return eventResult(db, ev)
}

func (h *modifyStreamHandler) validate(ctx drip.Context, tx drip.Tx) (*ModifyStreamMsg, StreamKey, error) {
	var msg ModifyStreamMsg
	if err := drip.LoadMsg(tx, &msg); err != nil {
		return nil, StreamKey{}, errors.Wrap(err, "load msg")
	}
	key, err := ParseStreamID(msg.StreamID)
	if err != nil {
		return nil, StreamKey{}, err
	}
	if !h.auth.HasAddress(ctx, key.Payer()) {
		return nil, StreamKey{}, errors.Wrap(errors.ErrUnauthorized, "payer signature missing")
	}
	return &msg, key, nil
}

type depositHandler struct {
	auth   x.Authenticator
	ledger *Ledger
}

var _ drip.Handler = (*depositHandler)(nil)

func (h *depositHandler) Check(ctx drip.Context, db drip.KVStore, tx drip.Tx) (*drip.CheckResult, error) {
	if _, err := h.validate(ctx, tx); err != nil {
		return nil, err
	}
	return &drip.CheckResult{GasAllocated: accountOpCost}, nil
}

func (h *depositHandler) Deliver(ctx drip.Context, db drip.KVStore, tx drip.Tx) (*drip.DeliverResult, error) {
	msg, err := h.validate(ctx, tx)
	if err != nil {
		return nil, err
	}
	ev, err := h.ledger.Deposit(ctx, db, msg.Payer, msg.Amount)
	if err != nil {
		return nil, err
	}
	return eventResult(db, ev)
}

func (h *depositHandler) validate(ctx drip.Context, tx drip.Tx) (*DepositMsg, error) {
	var msg DepositMsg
	if err := drip.LoadMsg(tx, &msg); err != nil {
		return nil, errors.Wrap(err, "load msg")
	}
	if !h.auth.HasAddress(ctx, msg.Payer) {
		return nil, errors.Wrap(errors.ErrUnauthorized, "payer signature missing")
	}
	return &msg, nil
}

type withdrawPayerHandler struct {
	auth   x.Authenticator
	ledger *Ledger
}

var _ drip.Handler = (*withdrawPayerHandler)(nil)

func (h *withdrawPayerHandler) Check(ctx drip.Context, db drip.KVStore, tx drip.Tx) (*drip.CheckResult, error) {
	if _, err := h.validate(ctx, tx); err != nil {
		return nil, err
	}
	return &drip.CheckResult{GasAllocated: withdrawPayerCost}, nil
}

func (h *withdrawPayerHandler) Deliver(ctx drip.Context, db drip.KVStore, tx drip.Tx) (*drip.DeliverResult, error) {
	msg, err := h.validate(ctx, tx)
	if err != nil {
		return nil, err
	}
	ev, err := h.ledger.WithdrawPayer(ctx, db, msg.Payer, msg.Amount)
	if err != nil {
		return nil, err
	}
	return eventResult(db, ev)
}

func (h *withdrawPayerHandler) validate(ctx drip.Context, tx drip.Tx) (*WithdrawPayerMsg, error) {
	var msg WithdrawPayerMsg
	if err := drip.LoadMsg(tx, &msg); err != nil {
		return nil, errors.Wrap(err, "load msg")
	}
	if !h.auth.HasAddress(ctx, msg.Payer) {
		return nil, errors.Wrap(errors.ErrUnauthorized, "payer signature missing")
	}
	return &msg, nil
}

type withdrawPayerAllHandler struct {
	auth   x.Authenticator
	ledger *Ledger
}

var _ drip.Handler = (*withdrawPayerAllHandler)(nil)

func (h *withdrawPayerAllHandler) Check(ctx drip.Context, db drip.KVStore, tx drip.Tx) (*drip.CheckResult, error) {
	if _, err := h.validate(ctx, tx); err != nil {
		return nil, err
	}
	return &drip.CheckResult{GasAllocated: withdrawPayerCost}, nil
}

func (h *withdrawPayerAllHandler) Deliver(ctx drip.Context, db drip.KVStore, tx drip.Tx) (*drip.DeliverResult, error) {
	msg, err := h.validate(ctx, tx)
	if err != nil {
		return nil, err
	}
	ev, err := h.ledger.WithdrawPayerAll(ctx, db, msg.Payer)
	if err != nil {
		return nil, err
	}
	return eventResult(db, ev)
}

func (h *withdrawPayerAllHandler) validate(ctx drip.Context, tx drip.Tx) (*WithdrawPayerAllMsg, error) {
	var msg WithdrawPayerAllMsg
	if err := drip.LoadMsg(tx, &msg); err != nil {
		return nil, errors.Wrap(err, "load msg")
	}
	if !h.auth.HasAddress(ctx, msg.Payer) {
		return nil, errors.Wrap(errors.ErrUnauthorized, "payer signature missing")
	}
	return &msg, nil
}
