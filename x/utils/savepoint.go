package utils

import (
	"github.com/iov-one/drip"
	"github.com/iov-one/drip/errors"
)

// Savepoint will isolate all data inside of the call,
// and commit/rollback to savepoint based on if error
type Savepoint struct {
	onCheck   bool
	onDeliver bool
}

var _ drip.Decorator = Savepoint{}

// NewSavepoint creates a Savepoint decorator,
// but you must call OnCheck/OnDeliver so it will be triggered
func NewSavepoint() Savepoint {
	return Savepoint{}
}

// OnCheck returns a savepoint that will trigger on CheckTx
func (s Savepoint) OnCheck() Savepoint {
	s.onCheck = true
	return s
}

// OnDeliver returns a savepoint that will trigger on DeliverTx
func (s Savepoint) OnDeliver() Savepoint {
	s.onDeliver = true
	return s
}

// Check will optionally set a checkpoint
func (s Savepoint) Check(ctx drip.Context, store drip.KVStore, tx drip.Tx, next drip.Checker) (*drip.CheckResult, error) {
	cache, ok := savepoint(store, s.onCheck)
	if !ok {
		return next.Check(ctx, store, tx)
	}
	res, err := next.Check(ctx, cache, tx)
	if err != nil {
		cache.Discard()
		return nil, err
	}
	if err := cache.Write(); err != nil {
		return nil, errors.Wrap(err, "writing savepoint")
	}
	return res, nil
}

// Deliver will optionally set a checkpoint
func (s Savepoint) Deliver(ctx drip.Context, store drip.KVStore, tx drip.Tx, next drip.Deliverer) (*drip.DeliverResult, error) {
	cache, ok := savepoint(store, s.onDeliver)
	if !ok {
		return next.Deliver(ctx, store, tx)
	}
	res, err := next.Deliver(ctx, cache, tx)
	if err != nil {
		cache.Discard()
		return nil, err
	}
	if err := cache.Write(); err != nil {
		return nil, errors.Wrap(err, "writing savepoint")
	}
	return res, nil
}

// savepoint returns a cache wrap of the store if enabled and the store
// supports it.
func savepoint(store drip.KVStore, enabled bool) (drip.KVCacheWrap, bool) {
	if !enabled {
		return nil, false
	}
	cstore, ok := store.(drip.CacheableKVStore)
	if !ok {
		return nil, false
	}
	return cstore.CacheWrap(), true
}
