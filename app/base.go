package app

import (
	"context"

	"github.com/iov-one/drip"
	"github.com/iov-one/drip/errors"
	abci "github.com/tendermint/tendermint/abci/types"
	"github.com/tendermint/tendermint/libs/log"
)

// TxDecoder parses raw transaction bytes.
type TxDecoder func(raw []byte) (drip.Tx, error)

// BaseApp drives a handler block by block on top of a CommitStore and
// reports every call in the ABCI response format.
type BaseApp struct {
	store   *CommitStore
	decoder TxDecoder
	handler drip.Handler
	logger  log.Logger
	debug   bool

	block drip.BlockInfo
	begun bool
}

// NewBaseApp returns an application. With debug set, failure logs carry the
// full error including internal ones.
func NewBaseApp(store *CommitStore, decoder TxDecoder, handler drip.Handler, logger log.Logger, debug bool) *BaseApp {
	if logger == nil {
		logger = drip.DefaultLogger
	}
	return &BaseApp{
		store:   store,
		decoder: decoder,
		handler: handler,
		logger:  logger,
		debug:   debug,
	}
}

// BeginBlock sets the header every following transaction runs with, until
// the next Commit. The chain id is read from the state written at genesis.
// The block time is saved in the state for queries.
func (b *BaseApp) BeginBlock(header abci.Header) error {
	chainID, err := LoadChainID(b.store.DeliverStore())
	if err != nil {
		return err
	}
	info, err := drip.NewBlockInfo(header, chainID, b.logger)
	if err != nil {
		return errors.Wrap(err, "block info")
	}
	if err := drip.SaveBlockTime(b.store.DeliverStore(), info.UnixTime()); err != nil {
		return err
	}
	b.block, b.begun = info, true
	return nil
}

// DeliverTx runs the transaction against the deliver state. A failing
// transaction leaves no trace in the state.
func (b *BaseApp) DeliverTx(raw []byte) abci.ResponseDeliverTx {
	tx, err := b.loadTx(raw)
	if err != nil {
		return drip.DeliverTxError(err, b.debug)
	}
	ctx, err := b.context("deliver_tx", tx)
	if err != nil {
		return drip.DeliverTxError(err, b.debug)
	}
	db := b.store.DeliverStore().CacheWrap()
	res, err := b.handler.Deliver(ctx, db, tx)
	if err != nil {
		db.Discard()
		return drip.DeliverTxError(err, b.debug)
	}
	if err := db.Write(); err != nil {
		return drip.DeliverTxError(err, b.debug)
	}
	return drip.DeliverOrError(res, nil, b.debug)
}

// CheckTx validates the transaction against the check state, which holds
// the effects of transactions already checked in this block.
func (b *BaseApp) CheckTx(raw []byte) abci.ResponseCheckTx {
	tx, err := b.loadTx(raw)
	if err != nil {
		return drip.CheckTxError(err, b.debug)
	}
	ctx, err := b.context("check_tx", tx)
	if err != nil {
		return drip.CheckTxError(err, b.debug)
	}
	db := b.store.CheckStore().CacheWrap()
	res, err := b.handler.Check(ctx, db, tx)
	if err != nil {
		db.Discard()
		return drip.CheckTxError(err, b.debug)
	}
	if err := db.Write(); err != nil {
		return drip.CheckTxError(err, b.debug)
	}
	return drip.CheckOrError(res, nil, b.debug)
}

// Commit persists the delivered block and closes it.
func (b *BaseApp) Commit() (drip.CommitID, error) {
	id, err := b.store.Commit()
	if err != nil {
		return id, err
	}
	b.begun = false
	b.logger.Info("block committed", "height", id.Version)
	return id, nil
}

func (b *BaseApp) context(call string, tx drip.Tx) (drip.Context, error) {
	if !b.begun {
		return nil, errors.Wrap(errors.ErrState, "no block in progress")
	}
	info := b.block.WithLogInfo("call", call, "path", drip.GetPath(tx))
	return drip.WithBlockInfo(context.Background(), info), nil
}

// loadTx decodes raw, turning a decoder panic into an error.
func (b *BaseApp) loadTx(raw []byte) (tx drip.Tx, err error) {
	defer errors.Recover(&err)
	return b.decoder(raw)
}
