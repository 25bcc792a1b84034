package store

import (
	"bytes"

	"github.com/google/btree"
	"github.com/iov-one/drip/errors"
)

// DefaultFreeListSize is the number of btree nodes kept for reuse.
const DefaultFreeListSize = btree.DefaultFreeListSize

// BTreeCacheable gives any KVStore a btree backed CacheWrap.
type BTreeCacheable struct {
	KVStore
}

var _ CacheableKVStore = BTreeCacheable{}

// CacheWrap returns a savepoint over the store. Changes reach the store
// only on Write.
func (b BTreeCacheable) CacheWrap() KVCacheWrap {
	return NewBTreeCacheWrap(b.KVStore, b.NewBatch(), nil)
}

// MemStore returns an empty in-memory store. Nothing is persisted.
func MemStore() CacheableKVStore {
	e := EmptyKVStore{}
	return NewBTreeCacheWrap(e, e.NewBatch(), nil)
}

// ShowOpser lists the operations applied so far, in order.
type ShowOpser interface {
	ShowOps() []Op
}

// LogableStore returns an in-memory store together with the log of every
// write it received.
func LogableStore() (CacheableKVStore, ShowOpser) {
	e := EmptyKVStore{}
	b := NewNonAtomicBatch(e)
	kv := NewBTreeCacheWrap(e, b, nil)
	return kv, b
}

// BTreeCacheWrap keeps pending writes in a btree on top of a read only
// parent. Writes are mirrored into a batch that Write flushes.
type BTreeCacheWrap struct {
	bt    *btree.BTree
	free  *btree.FreeList
	back  ReadOnlyKVStore
	batch Batch
}

var _ KVCacheWrap = BTreeCacheWrap{}

// NewBTreeCacheWrap wraps kv. All writes go through batch, kv is only read.
// A nil free list allocates a new one.
func NewBTreeCacheWrap(kv ReadOnlyKVStore, batch Batch,
	free *btree.FreeList) BTreeCacheWrap {

	if free == nil {
		free = btree.NewFreeList(DefaultFreeListSize)
	}
	return BTreeCacheWrap{
		bt:    btree.NewWithFreeList(2, free),
		free:  free,
		back:  kv,
		batch: batch,
	}
}

// CacheWrap opens a nested savepoint sharing this wrap's free list.
func (b BTreeCacheWrap) CacheWrap() KVCacheWrap {
	return NewBTreeCacheWrap(b, b.NewBatch(), b.free)
}

// NewBatch returns a batch replaying its operations onto this wrap.
func (b BTreeCacheWrap) NewBatch() Batch {
	return NewNonAtomicBatch(b)
}

// Write flushes the pending writes to the parent and empties the wrap.
func (b BTreeCacheWrap) Write() error {
	err := b.batch.Write()
	b.Discard()
	return err
}

// Discard drops every pending write. The wrap stays usable.
func (b BTreeCacheWrap) Discard() {
	for b.bt.DeleteMin() != nil {
	}
	if nb, ok := b.batch.(*NonAtomicBatch); ok {
		nb.ops = nil
	}
}

func (b BTreeCacheWrap) Set(key, value []byte) error {
	b.bt.ReplaceOrInsert(entry{key: key, value: value})
	return b.batch.Set(key, value)
}

func (b BTreeCacheWrap) Delete(key []byte) error {
	b.bt.ReplaceOrInsert(entry{key: key, deleted: true})
	return b.batch.Delete(key)
}

// lookup returns the pending write for key, if any.
func (b BTreeCacheWrap) lookup(key []byte) (entry, bool) {
	item := b.bt.Get(entry{key: key})
	if item == nil {
		return entry{}, false
	}
	return item.(entry), true
}

func (b BTreeCacheWrap) Get(key []byte) ([]byte, error) {
	if e, ok := b.lookup(key); ok {
		if e.deleted {
			return nil, nil
		}
		return e.value, nil
	}
	return b.back.Get(key)
}

func (b BTreeCacheWrap) Has(key []byte) (bool, error) {
	if e, ok := b.lookup(key); ok {
		return !e.deleted, nil
	}
	return b.back.Has(key)
}

// Iterator merges the pending writes with the parent, in ascending order.
func (b BTreeCacheWrap) Iterator(start, end []byte) (Iterator, error) {
	parent, err := b.back.Iterator(start, end)
	if err != nil {
		return nil, errors.Wrap(err, "parent iterator")
	}
	return newItemIter(ascendBtree(b.bt, start, end), parent, false), nil
}

// ReverseIterator is Iterator in descending order.
func (b BTreeCacheWrap) ReverseIterator(start, end []byte) (Iterator, error) {
	parent, err := b.back.ReverseIterator(start, end)
	if err != nil {
		return nil, errors.Wrap(err, "parent iterator")
	}
	return newItemIter(descendBtree(b.bt, start, end), parent, true), nil
}

type keyer interface {
	Key() []byte
}

// entry is a pending write, or a tombstone when deleted is set. An entry
// holding only a key is used as a search pivot.
type entry struct {
	key     []byte
	value   []byte
	deleted bool
}

var _ btree.Item = entry{}

func (e entry) Key() []byte { return e.key }

func (e entry) Less(than btree.Item) bool {
	return bytes.Compare(e.key, than.(keyer).Key()) < 0
}

// justBelow sorts right before its key, so a descending walk started
// from it leaves the key out.
type justBelow []byte

var _ btree.Item = justBelow(nil)

func (k justBelow) Key() []byte { return k }

func (k justBelow) Less(than btree.Item) bool {
	return bytes.Compare(k, than.(keyer).Key()) <= 0
}
