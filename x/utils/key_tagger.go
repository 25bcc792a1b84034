package utils

import (
	"encoding/hex"
	"strings"

	"github.com/iov-one/drip"
	"github.com/iov-one/drip/store"
	"github.com/tendermint/tendermint/libs/common"
)

// KeyTagger is a decorator that records all Set/Delete operations performed
// by its children and adds all those keys as DeliverTx tags.
//
// Keys are hex encoded and the tag value is "s" for a set and "d" for a
// delete operation.
type KeyTagger struct{}

var _ drip.Decorator = KeyTagger{}

// NewKeyTagger creates a KeyTagger decorator
func NewKeyTagger() KeyTagger {
	return KeyTagger{}
}

// Check does nothing
func (KeyTagger) Check(ctx drip.Context, db drip.KVStore, tx drip.Tx, next drip.Checker) (*drip.CheckResult, error) {
	return next.Check(ctx, db, tx)
}

// Deliver passes in a recording KVStore into the child and
// uses that to calculate tags to add to DeliverResult
func (KeyTagger) Deliver(ctx drip.Context, db drip.KVStore, tx drip.Tx, next drip.Deliverer) (*drip.DeliverResult, error) {
	record := &recordingStore{KVStore: db, changes: make(map[string]bool)}
	res, err := next.Deliver(ctx, record, tx)
	if err != nil {
		return nil, err
	}
	res.Tags = append(res.Tags, record.tags()...)
	return res, nil
}

var (
	recordSet    = []byte("s")
	recordDelete = []byte("d")
)

// recordingStore remembers which keys were written. A key that was deleted
// last is recorded as false.
type recordingStore struct {
	drip.KVStore
	changes map[string]bool
}

var _ drip.CacheableKVStore = (*recordingStore)(nil)

func (r *recordingStore) Set(key, value []byte) error {
	if err := r.KVStore.Set(key, value); err != nil {
		return err
	}
	r.changes[string(key)] = true
	return nil
}

func (r *recordingStore) Delete(key []byte) error {
	if err := r.KVStore.Delete(key); err != nil {
		return err
	}
	r.changes[string(key)] = false
	return nil
}

// NewBatch returns a batch that writes through the recording store.
func (r *recordingStore) NewBatch() drip.Batch {
	return store.NewNonAtomicBatch(r)
}

func (r *recordingStore) CacheWrap() drip.KVCacheWrap {
	return store.NewBTreeCacheWrap(r, r.NewBatch(), nil)
}

func (r *recordingStore) tags() common.KVPairs {
	if len(r.changes) == 0 {
		return nil
	}
	res := make(common.KVPairs, 0, len(r.changes))
	for k, set := range r.changes {
		tag := recordSet
		if !set {
			tag = recordDelete
		}
		res = append(res, common.KVPair{
			Key:   []byte(strings.ToUpper(hex.EncodeToString([]byte(k)))),
			Value: tag,
		})
	}
	res.Sort()
	return res
}
