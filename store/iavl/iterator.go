package iavl

import (
	"github.com/iov-one/drip/store"
	"github.com/tendermint/iavl"
)

// iterate loads all models within [start, end) from the working tree. The
// range is read up front so that the tree can be modified while the
// iterator is in use.
func iterate(tree *iavl.MutableTree, start, end []byte, ascending bool) store.Iterator {
	var res []store.Model
	add := func(key []byte, value []byte) bool {
		res = append(res, store.Pair(key, value))
		return false
	}
	tree.IterateRange(start, end, ascending, add)
	return store.NewSliceIterator(res)
}
