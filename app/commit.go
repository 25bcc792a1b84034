package app

import (
	"regexp"

	"github.com/iov-one/drip"
	"github.com/iov-one/drip/errors"
)

// CommitStore handles loading from a CommitKVStore, maintaining different
// CacheWraps for Deliver and Check, and returning useful state info.
type CommitStore struct {
	committed drip.CommitKVStore
	deliver   drip.KVCacheWrap
	check     drip.KVCacheWrap
}

// NewCommitStore loads the latest version of the store and sets up the
// deliver and check caches.
func NewCommitStore(store drip.CommitKVStore) (*CommitStore, error) {
	if err := store.LoadLatestVersion(); err != nil {
		return nil, errors.Wrap(err, "load latest version")
	}
	return &CommitStore{
		committed: store,
		deliver:   store.CacheWrap(),
		check:     store.CacheWrap(),
	}, nil
}

// CommitInfo returns the current height and hash
func (cs *CommitStore) CommitInfo() (drip.CommitID, error) {
	return cs.committed.LatestVersion()
}

// Commit will flush deliver to the underlying store and commit it
// to disk. It then regenerates new deliver/check caches
func (cs *CommitStore) Commit() (drip.CommitID, error) {
	// flush deliver to store and discard check
	if err := cs.deliver.Write(); err != nil {
		return drip.CommitID{}, errors.Wrap(err, "write deliver cache")
	}
	cs.check.Discard()

	res, err := cs.committed.Commit()
	if err != nil {
		return res, errors.Wrap(err, "commit")
	}

	cs.deliver = cs.committed.CacheWrap()
	cs.check = cs.committed.CacheWrap()
	return res, nil
}

// CheckStore returns a store implementation that must be used during the
// checking phase.
func (cs *CommitStore) CheckStore() drip.CacheableKVStore {
	return cs.check
}

// DeliverStore returns a store implementation that must be used during the
// delivery phase.
func (cs *CommitStore) DeliverStore() drip.CacheableKVStore {
	return cs.deliver
}

// QueryStore returns a read only view of the last committed state.
func (cs *CommitStore) QueryStore() drip.ReadOnlyKVStore {
	return cs.committed.CacheWrap()
}

// _d: is a prefix for internal data
const chainIDKey = "_d:chainID"

var isChainID = regexp.MustCompile(`^[a-zA-Z0-9_.-]{4,128}$`).MatchString

// LoadChainID returns the chain id stored if any.
func LoadChainID(kv drip.ReadOnlyKVStore) (string, error) {
	v, err := kv.Get([]byte(chainIDKey))
	if err != nil {
		return "", errors.Wrap(err, "load chain id")
	}
	return string(v), nil
}

// saveChainID stores a chain id in the kv store.
// Returns error if already set, or invalid name
func saveChainID(kv drip.KVStore, chainID string) error {
	if !isChainID(chainID) {
		return errors.Wrapf(errors.ErrInput, "chain id: %v", chainID)
	}
	k := []byte(chainIDKey)
	exists, err := kv.Has(k)
	if err != nil {
		return errors.Wrap(err, "load chain id")
	}
	if exists {
		return errors.Wrap(errors.ErrUnauthorized, "can't modify chain id after genesis init")
	}
	if err := kv.Set(k, []byte(chainID)); err != nil {
		return errors.Wrap(err, "save chain id")
	}
	return nil
}
