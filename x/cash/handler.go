package cash

import (
	"github.com/iov-one/drip"
	"github.com/iov-one/drip/errors"
	"github.com/iov-one/drip/x"
)

const sendTxCost int64 = 100

// RegisterRoutes will instantiate and register
// all handlers in this package
func RegisterRoutes(r drip.Registry, auth x.Authenticator, control Controller) {
	r.Handle(SendMsg{}.Path(), NewSendHandler(auth, control))
}

// RegisterQuery will register this bucket as "/wallets"
func RegisterQuery(qr drip.QueryRouter) {
	NewWalletBucket().Register("wallets", qr)
}

// SendHandler will handle sending coins
type SendHandler struct {
	auth    x.Authenticator
	control Controller
}

var _ drip.Handler = SendHandler{}

// NewSendHandler creates a handler for SendMsg
func NewSendHandler(auth x.Authenticator, control Controller) SendHandler {
	return SendHandler{
		auth:    auth,
		control: control,
	}
}

// Check just verifies it is properly formed and returns
// the cost of executing it
func (h SendHandler) Check(ctx drip.Context, store drip.KVStore, tx drip.Tx) (*drip.CheckResult, error) {
	if _, err := h.validate(ctx, tx); err != nil {
		return nil, err
	}
	return &drip.CheckResult{GasAllocated: sendTxCost}, nil
}

// Deliver moves the tokens from source to receiver if
// all preconditions are met
func (h SendHandler) Deliver(ctx drip.Context, store drip.KVStore, tx drip.Tx) (*drip.DeliverResult, error) {
	msg, err := h.validate(ctx, tx)
	if err != nil {
		return nil, err
	}
	if err := h.control.MoveCoins(store, msg.Source, msg.Destination, *msg.Amount); err != nil {
		return nil, err
	}
	return &drip.DeliverResult{}, nil
}

func (h SendHandler) validate(ctx drip.Context, tx drip.Tx) (*SendMsg, error) {
	var msg SendMsg
	if err := drip.LoadMsg(tx, &msg); err != nil {
		return nil, errors.Wrap(err, "load msg")
	}
	if !h.auth.HasAddress(ctx, msg.Source) {
		return nil, errors.Wrap(errors.ErrUnauthorized, "account owner signature missing")
	}
	return &msg, nil
}
