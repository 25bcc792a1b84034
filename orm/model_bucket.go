package orm

import (
	"reflect"
	"regexp"

	"github.com/iov-one/drip"
	"github.com/iov-one/drip/errors"
)

var isBucketName = regexp.MustCompile(`^[a-z_]{3,10}$`).MatchString

// Model is implemented by any entity that can be stored using ModelBucket.
type Model interface {
	drip.Persistent
	Validate() error
}

// ModelBucket is implemented by buckets that operate on Models.
type ModelBucket interface {
	// One query the database for a single model instance. Lookup is done
	// by the primary index key. Result is loaded into given destination
	// model.
	// This method returns ErrNotFound if the entity does not exist in the
	// database.
	One(db drip.ReadOnlyKVStore, key []byte, dest Model) error

	// Has returns nil if an entity with given primary key value exists. It
	// returns ErrNotFound if no entity can be found.
	Has(db drip.ReadOnlyKVStore, key []byte) error

	// Put saves given model in the database. Model is validated before
	// saving.
	Put(db drip.KVStore, key []byte, m Model) error

	// Delete removes an entity with given primary key from the database.
	// It returns ErrNotFound if an entity with given key does not exist.
	Delete(db drip.KVStore, key []byte) error

	// PrefixScan returns an iterator over all entities which primary key
	// starts with given prefix. Nil prefix iterates over the whole bucket.
	PrefixScan(db drip.ReadOnlyKVStore, prefix []byte, reverse bool) (ModelIterator, error)

	// Register registers this bucket in the query router under given path.
	Register(path string, r drip.QueryRouter)
}

// NewModelBucket returns a ModelBucket instance. Name must be a short lower
// case identifier and is used as the key prefix of all stored entities.
// Example model is used to verify the destination type of loaded entities.
func NewModelBucket(name string, example Model) ModelBucket {
	if !isBucketName(name) {
		panic(errors.Wrapf(errors.ErrInput, "illegal bucket name: %q", name))
	}
	return &modelBucket{
		prefix: []byte(name + ":"),
		model:  reflect.TypeOf(example),
	}
}

type modelBucket struct {
	prefix []byte
	model  reflect.Type
}

var _ ModelBucket = (*modelBucket)(nil)

func (mb *modelBucket) dbKey(key []byte) []byte {
	return append(append([]byte{}, mb.prefix...), key...)
}

func (mb *modelBucket) One(db drip.ReadOnlyKVStore, key []byte, dest Model) error {
	if err := mb.checkType(dest); err != nil {
		return err
	}
	raw, err := db.Get(mb.dbKey(key))
	if err != nil {
		return errors.Wrap(err, "db get")
	}
	if raw == nil {
		return errors.Wrapf(errors.ErrNotFound, "%T not in the store", dest)
	}
	if err := dest.Unmarshal(raw); err != nil {
		return errors.Wrapf(err, "cannot unmarshal %T", dest)
	}
	return nil
}

func (mb *modelBucket) Has(db drip.ReadOnlyKVStore, key []byte) error {
	ok, err := db.Has(mb.dbKey(key))
	if err != nil {
		return errors.Wrap(err, "db has")
	}
	if !ok {
		return errors.ErrNotFound
	}
	return nil
}

func (mb *modelBucket) Put(db drip.KVStore, key []byte, m Model) error {
	if len(key) == 0 {
		return errors.Wrap(errors.ErrEmpty, "key")
	}
	if err := mb.checkType(m); err != nil {
		return err
	}
	if err := m.Validate(); err != nil {
		return errors.Wrap(err, "invalid model")
	}
	raw, err := m.Marshal()
	if err != nil {
		return errors.Wrap(err, "cannot serialize")
	}
	if err := db.Set(mb.dbKey(key), raw); err != nil {
		return errors.Wrap(err, "cannot store in the database")
	}
	return nil
}

func (mb *modelBucket) Delete(db drip.KVStore, key []byte) error {
	if err := mb.Has(db, key); err != nil {
		return err
	}
	if err := db.Delete(mb.dbKey(key)); err != nil {
		return errors.Wrap(err, "db delete")
	}
	return nil
}

func (mb *modelBucket) PrefixScan(db drip.ReadOnlyKVStore, prefix []byte, reverse bool) (ModelIterator, error) {
	start := mb.dbKey(prefix)
	end := prefixEnd(start)
	var (
		it  drip.Iterator
		err error
	)
	if reverse {
		it, err = db.ReverseIterator(start, end)
	} else {
		it, err = db.Iterator(start, end)
	}
	if err != nil {
		return nil, errors.Wrap(err, "cannot create iterator")
	}
	return &modelIterator{iter: it, prefix: mb.prefix}, nil
}

func (mb *modelBucket) checkType(m Model) error {
	if !reflect.TypeOf(m).AssignableTo(mb.model) {
		return errors.Wrapf(errors.ErrType, "%T cannot be represented as %s", m, mb.model)
	}
	return nil
}

// prefixEnd returns the first key that does not have given prefix. Nil is
// returned if no such key exists.
func prefixEnd(prefix []byte) []byte {
	end := append([]byte{}, prefix...)
	for i := len(end) - 1; i >= 0; i-- {
		if end[i] < 0xff {
			end[i]++
			return end[:i+1]
		}
	}
	return nil
}
