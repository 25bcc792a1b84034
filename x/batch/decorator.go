package batch

import (
	"strings"

	"github.com/iov-one/drip"
	"github.com/iov-one/drip/errors"
	"github.com/tendermint/tendermint/libs/common"
)

// Decorator iterates through batch transaction messages and passes them down
// the stack. Any other message is passed through unchanged.
type Decorator struct{}

var _ drip.Decorator = Decorator{}

// NewDecorator returns a batch transaction decorator
func NewDecorator() Decorator {
	return Decorator{}
}

// BatchTx is the transaction passed down the stack for every batch message.
// All other transaction data is shared with the batch transaction.
type BatchTx struct {
	drip.Tx
	Msg drip.Msg
}

func (tx *BatchTx) GetMsg() (drip.Msg, error) {
	return tx.Msg, nil
}

// Check iterates through messages in a batch transaction and passes them
// down the stack
func (d Decorator) Check(ctx drip.Context, store drip.KVStore, tx drip.Tx, next drip.Checker) (*drip.CheckResult, error) {
	batch, err := loadBatch(tx)
	if err != nil {
		return nil, err
	}
	if batch == nil {
		return next.Check(ctx, store, tx)
	}

	var allocated int64
	data, log, err := execute(store, batch, func(db drip.KVStore, msg drip.Msg) ([]byte, string, error) {
		res, err := next.Check(ctx, db, &BatchTx{Tx: tx, Msg: msg})
		if err != nil {
			return nil, "", err
		}
		allocated += res.GasAllocated
		return res.Data, res.Log, nil
	})
	if err != nil {
		return nil, err
	}
	return &drip.CheckResult{
		Data:         data,
		Log:          log,
		GasAllocated: allocated,
	}, nil
}

// Deliver iterates through messages in a batch transaction and passes them
// down the stack
func (d Decorator) Deliver(ctx drip.Context, store drip.KVStore, tx drip.Tx, next drip.Deliverer) (*drip.DeliverResult, error) {
	batch, err := loadBatch(tx)
	if err != nil {
		return nil, err
	}
	if batch == nil {
		return next.Deliver(ctx, store, tx)
	}

	var (
		used int64
		tags []common.KVPair
	)
	data, log, err := execute(store, batch, func(db drip.KVStore, msg drip.Msg) ([]byte, string, error) {
		res, err := next.Deliver(ctx, db, &BatchTx{Tx: tx, Msg: msg})
		if err != nil {
			return nil, "", err
		}
		used += res.GasUsed
		tags = append(tags, res.Tags...)
		return res.Data, res.Log, nil
	})
	if err != nil {
		return nil, err
	}
	return &drip.DeliverResult{
		Data:    data,
		Log:     log,
		GasUsed: used,
		Tags:    tags,
	}, nil
}

// loadBatch returns the batch message of the transaction or nil if the
// transaction carries any other message.
func loadBatch(tx drip.Tx) (*ExecuteBatchMsg, error) {
	msg, err := tx.GetMsg()
	if err != nil {
		return nil, errors.Wrap(err, "cannot load msg")
	}
	batch, ok := msg.(*ExecuteBatchMsg)
	if !ok {
		return nil, nil
	}
	if err := batch.Validate(); err != nil {
		return nil, errors.Wrap(err, "invalid batch")
	}
	return batch, nil
}

type callFn func(db drip.KVStore, msg drip.Msg) (data []byte, log string, err error)

// execute runs all batch messages in order on a cache wrap of the store.
//
// In atomic mode the first failure discards the whole cache and the error is
// returned. Otherwise every message runs in its own nested cache wrap that is
// discarded on failure, while successful messages are kept. The returned data
// is the encoded list of per message results and the log joins all logs.
func execute(store drip.KVStore, batch *ExecuteBatchMsg, call callFn) ([]byte, string, error) {
	cstore, ok := store.(drip.CacheableKVStore)
	if !ok {
		return nil, "", errors.Wrap(errors.ErrHuman, "batch requires a cacheable store")
	}
	cache := cstore.CacheWrap()

	results := make([]Result, len(batch.Messages))
	logs := make([]string, len(batch.Messages))
	for i, msg := range batch.Messages {
		if batch.RequireAllSucceed {
			data, log, err := call(cache, msg)
			if err != nil {
				cache.Discard()
				return nil, "", errors.Wrapf(err, "batch message %d", i)
			}
			results[i] = Result{Data: data, Log: log}
			logs[i] = log
			continue
		}

		nested := cache.CacheWrap()
		data, log, err := call(nested, msg)
		if err != nil {
			nested.Discard()
			results[i] = failure(err)
			logs[i] = results[i].Log
			continue
		}
		if err := nested.Write(); err != nil {
			cache.Discard()
			return nil, "", errors.Wrapf(err, "write batch message %d", i)
		}
		results[i] = Result{Data: data, Log: log}
		logs[i] = log
	}

	data, err := encodeResults(results)
	if err != nil {
		cache.Discard()
		return nil, "", err
	}
	if err := cache.Write(); err != nil {
		return nil, "", errors.Wrap(err, "write batch")
	}
	return data, strings.Join(logs, "\n"), nil
}
