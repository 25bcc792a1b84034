package orm

import (
	"github.com/iov-one/drip"
	"github.com/iov-one/drip/errors"
)

// ModelIterator loads models one by one in the order of their primary key.
type ModelIterator interface {
	// Load loads the next model into dest and returns its primary key.
	// errors.ErrIteratorDone is returned once all models were read.
	Load(dest Model) ([]byte, error)
	// Release releases the underlying database iterator.
	Release()
}

type modelIterator struct {
	iter   drip.Iterator
	prefix []byte
}

func (it *modelIterator) Load(dest Model) ([]byte, error) {
	key, value, err := it.iter.Next()
	if err != nil {
		return nil, err
	}
	if err := dest.Unmarshal(value); err != nil {
		return nil, errors.Wrapf(err, "cannot unmarshal %T", dest)
	}
	return key[len(it.prefix):], nil
}

func (it *modelIterator) Release() {
	it.iter.Release()
}
