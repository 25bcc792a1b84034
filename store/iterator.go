package store

import (
	"bytes"

	"github.com/google/btree"
	"github.com/iov-one/drip/errors"
)

// source marks where the current item comes from
type source int32

const (
	us source = iota
	parent
	both
	none
)

// ascendBtree collects all items within [start, end) in ascending order.
// Items are copied out of the tree so that the cache can be modified
// while an iterator is still in use.
func ascendBtree(bt *btree.BTree, start, end []byte) []entry {
	var res []entry
	insert := func(item btree.Item) bool {
		res = append(res, item.(entry))
		return true
	}
	switch {
	case start == nil && end == nil:
		bt.Ascend(insert)
	case start == nil:
		bt.AscendLessThan(entry{key: end}, insert)
	case end == nil:
		bt.AscendGreaterOrEqual(entry{key: start}, insert)
	default:
		bt.AscendRange(entry{key: start}, entry{key: end}, insert)
	}
	return res
}

// descendBtree collects all items within [start, end) in descending order.
func descendBtree(bt *btree.BTree, start, end []byte) []entry {
	var res []entry
	insert := func(item btree.Item) bool {
		res = append(res, item.(entry))
		return true
	}
	switch {
	case start == nil && end == nil:
		bt.Descend(insert)
	case start == nil:
		bt.DescendLessOrEqual(justBelow(end), insert)
	case end == nil:
		bt.DescendGreaterThan(justBelow(start), insert)
	default:
		bt.DescendRange(justBelow(end), justBelow(start), insert)
	}
	return res
}

// itemIter combines the items of a cache layer with the iterator of its
// parent, taking into consideration overwrites and deletes.
type itemIter struct {
	items   []entry
	idx     int
	reverse bool

	parent Iterator
	// the next element of the parent iterator, if loaded
	pKey, pValue []byte
	pLoaded      bool
	pDone        bool
}

var _ Iterator = (*itemIter)(nil)

func newItemIter(items []entry, parent Iterator, reverse bool) *itemIter {
	return &itemIter{
		items:   items,
		parent:  parent,
		reverse: reverse,
	}
}

// Next returns the next key value pair, skipping all entries deleted in
// this layer.
func (i *itemIter) Next() (key, value []byte, err error) {
	for {
		if err := i.loadParent(); err != nil {
			return nil, nil, err
		}

		switch i.firstKey() {
		case none:
			return nil, nil, errors.ErrIteratorDone
		case parent:
			i.pLoaded = false
			return i.pKey, i.pValue, nil
		case both:
			// our value shadows the parent one
			i.pLoaded = false
		}

		e := i.items[i.idx]
		i.idx++
		if !e.deleted {
			return e.key, e.value, nil
		}
	}
}

// Release releases the Iterator.
func (i *itemIter) Release() {
	if i.parent != nil {
		i.parent.Release()
	}
	i.items = nil
	i.idx = 0
	i.pDone = true
	i.pLoaded = false
}

func (i *itemIter) loadParent() error {
	if i.pLoaded || i.pDone || i.parent == nil {
		return nil
	}
	key, value, err := i.parent.Next()
	switch {
	case errors.ErrIteratorDone.Is(err):
		i.pDone = true
		return nil
	case err != nil:
		return err
	}
	i.pKey, i.pValue, i.pLoaded = key, value, true
	return nil
}

// firstKey selects the source that holds the next key in iteration order.
func (i *itemIter) firstKey() source {
	ours := i.idx < len(i.items)
	if !i.pLoaded {
		if !ours {
			return none
		}
		return us
	} else if !ours {
		return parent
	}

	cmp := bytes.Compare(i.pKey, i.items[i.idx].key)
	if i.reverse {
		cmp = -cmp
	}
	switch {
	case cmp < 0:
		return parent
	case cmp > 0:
		return us
	default:
		return both
	}
}
