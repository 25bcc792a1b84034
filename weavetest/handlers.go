package weavetest

import "github.com/iov-one/drip"

// Handler is a mock implementation of the drip.Handler interface that
// returns configured results and counts the calls.
type Handler struct {
	Counter
	CheckResult   drip.CheckResult
	CheckErr      error
	DeliverResult drip.DeliverResult
	DeliverErr    error
}

var _ drip.Handler = (*Handler)(nil)

func (h *Handler) Check(ctx drip.Context, db drip.KVStore, tx drip.Tx) (*drip.CheckResult, error) {
	h.checks++
	if h.CheckErr != nil {
		return nil, h.CheckErr
	}
	res := h.CheckResult
	return &res, nil
}

func (h *Handler) Deliver(ctx drip.Context, db drip.KVStore, tx drip.Tx) (*drip.DeliverResult, error) {
	h.delivers++
	if h.DeliverErr != nil {
		return nil, h.DeliverErr
	}
	res := h.DeliverResult
	return &res, nil
}

// WriteHandler writes the configured key value pair to the store on every
// call and then returns Err, if set.
type WriteHandler struct {
	Key   []byte
	Value []byte
	Err   error
}

var _ drip.Handler = (*WriteHandler)(nil)

func (h *WriteHandler) Check(ctx drip.Context, db drip.KVStore, tx drip.Tx) (*drip.CheckResult, error) {
	if err := db.Set(h.Key, h.Value); err != nil {
		return nil, err
	}
	if h.Err != nil {
		return nil, h.Err
	}
	return &drip.CheckResult{}, nil
}

func (h *WriteHandler) Deliver(ctx drip.Context, db drip.KVStore, tx drip.Tx) (*drip.DeliverResult, error) {
	if err := db.Set(h.Key, h.Value); err != nil {
		return nil, err
	}
	if h.Err != nil {
		return nil, h.Err
	}
	return &drip.DeliverResult{Data: h.Value}, nil
}

// PanicHandler panics on every call.
type PanicHandler struct {
	Msg string
}

var _ drip.Handler = PanicHandler{}

func (h PanicHandler) Check(drip.Context, drip.KVStore, drip.Tx) (*drip.CheckResult, error) {
	panic(h.Msg)
}

func (h PanicHandler) Deliver(drip.Context, drip.KVStore, drip.Tx) (*drip.DeliverResult, error) {
	panic(h.Msg)
}
