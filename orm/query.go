package orm

import (
	"github.com/iov-one/drip"
	"github.com/iov-one/drip/errors"
)

// Register exposes the bucket content under given query path. Key queries
// return a single model, prefix queries return all models sharing the key
// prefix. Keys of returned models are the primary keys without the bucket
// prefix.
func (mb *modelBucket) Register(path string, r drip.QueryRouter) {
	r.Register(path, bucketQuery{mb})
}

type bucketQuery struct {
	mb *modelBucket
}

func (q bucketQuery) Query(db drip.ReadOnlyKVStore, mod string, data []byte) ([]drip.Model, error) {
	switch mod {
	case drip.KeyQueryMod:
		raw, err := db.Get(q.mb.dbKey(data))
		if err != nil {
			return nil, err
		}
		if raw == nil {
			return nil, nil
		}
		return []drip.Model{drip.Pair(data, raw)}, nil
	case drip.PrefixQueryMod:
		start := q.mb.dbKey(data)
		it, err := db.Iterator(start, prefixEnd(start))
		if err != nil {
			return nil, err
		}
		defer it.Release()

		var res []drip.Model
		for {
			key, value, err := it.Next()
			if errors.ErrIteratorDone.Is(err) {
				return res, nil
			}
			if err != nil {
				return nil, err
			}
			res = append(res, drip.Pair(key[len(q.mb.prefix):], value))
		}
	default:
		return nil, errors.Wrapf(errors.ErrInput, "unknown query mod %q", mod)
	}
}
