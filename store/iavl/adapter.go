package iavl

import (
	"github.com/iov-one/drip/errors"
	"github.com/iov-one/drip/store"
	"github.com/tendermint/iavl"
	dbm "github.com/tendermint/tendermint/libs/db"
)

const (
	// DefaultCacheSize is the number of tree nodes kept in memory.
	DefaultCacheSize = 10000
	// DefaultHistory is the number of committed versions kept on disk.
	DefaultHistory = 2
)

// CommitStore manages a iavl committed state
type CommitStore struct {
	tree       *iavl.MutableTree
	numHistory int64
}

var _ store.CommitKVStore = CommitStore{}

// NewCommitStore creates a new store with disk backing
func NewCommitStore(path, name string) (CommitStore, error) {
	db, err := dbm.NewGoLevelDB(name, path)
	if err != nil {
		return CommitStore{}, errors.Wrap(errors.ErrDatabase, err.Error())
	}
	return newCommitStore(db), nil
}

// NewMemCommitStore creates a new store that lives in memory only.
func NewMemCommitStore() CommitStore {
	return newCommitStore(dbm.NewMemDB())
}

func newCommitStore(db dbm.DB) CommitStore {
	return CommitStore{
		tree:       iavl.NewMutableTree(db, DefaultCacheSize),
		numHistory: DefaultHistory,
	}
}

// Get returns the value at last committed state
// returns nil iff key doesn't exist. Panics on nil key.
func (s CommitStore) Get(key []byte) ([]byte, error) {
	_, val := s.tree.GetVersioned(key, s.tree.Version())
	return val, nil
}

// Commit the next version to disk, and returns info
func (s CommitStore) Commit() (store.CommitID, error) {
	hash, version, err := s.tree.SaveVersion()
	if err != nil {
		return store.CommitID{}, errors.Wrap(errors.ErrDatabase, err.Error())
	}

	// release an old version of history, if not needed
	if s.numHistory > 0 && s.numHistory < version {
		toRelease := version - s.numHistory
		if s.tree.VersionExists(toRelease) {
			if err := s.tree.DeleteVersion(toRelease); err != nil {
				return store.CommitID{}, errors.Wrap(errors.ErrDatabase, err.Error())
			}
		}
	}

	return store.CommitID{
		Version: version,
		Hash:    hash,
	}, nil
}

// LoadLatestVersion loads the latest persisted version.
// If there was a crash during the last commit, it is guaranteed
// to return a stable state, even if older.
func (s CommitStore) LoadLatestVersion() error {
	if _, err := s.tree.Load(); err != nil {
		return errors.Wrap(errors.ErrDatabase, err.Error())
	}
	return nil
}

// LatestVersion returns info on the latest version saved to disk
func (s CommitStore) LatestVersion() (store.CommitID, error) {
	return store.CommitID{
		Version: s.tree.Version(),
		Hash:    s.tree.Hash(),
	}, nil
}

// Adapter returns a wrapped version of the tree.
//
// Data written here is stored in the tree but only persisted on Commit.
func (s CommitStore) Adapter() store.CacheableKVStore {
	return store.BTreeCacheable{KVStore: adapter{tree: s.tree}}
}

// CacheWrap gives us a savepoint to perform actions
func (s CommitStore) CacheWrap() store.KVCacheWrap {
	return s.Adapter().CacheWrap()
}

// adapter converts the working tree into a KVStore.
type adapter struct {
	tree *iavl.MutableTree
}

var _ store.KVStore = adapter{}

// Get returns nil iff key doesn't exist. Panics on nil key.
func (a adapter) Get(key []byte) ([]byte, error) {
	_, val := a.tree.Get(key)
	return val, nil
}

// Has checks if a key exists. Panics on nil key.
func (a adapter) Has(key []byte) (bool, error) {
	return a.tree.Has(key), nil
}

// Set adds a new value
func (a adapter) Set(key, value []byte) error {
	a.tree.Set(key, value)
	return nil
}

// Delete removes from the tree
func (a adapter) Delete(key []byte) error {
	a.tree.Remove(key)
	return nil
}

// NewBatch returns a batch that can write multiple ops atomically
func (a adapter) NewBatch() store.Batch {
	return store.NewNonAtomicBatch(a)
}

// Iterator over a domain of keys in ascending order. End is exclusive.
func (a adapter) Iterator(start, end []byte) (store.Iterator, error) {
	return iterate(a.tree, start, end, true), nil
}

// ReverseIterator over a domain of keys in descending order. End is exclusive.
func (a adapter) ReverseIterator(start, end []byte) (store.Iterator, error) {
	return iterate(a.tree, start, end, false), nil
}
