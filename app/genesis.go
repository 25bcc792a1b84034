package app

import (
	"encoding/json"
	"io/ioutil"

	"github.com/iov-one/drip"
	"github.com/iov-one/drip/errors"
)

// Genesis file format, designed to be overlayed with tendermint genesis
type Genesis struct {
	ChainID    string       `json:"chain_id"`
	AppOptions drip.Options `json:"app_state"`
}

// LoadGenesis tries to load a given file into a Genesis struct
func LoadGenesis(filePath string) (Genesis, error) {
	var gen Genesis
	raw, err := ioutil.ReadFile(filePath)
	if err != nil {
		return gen, errors.Wrap(errors.ErrInput, err.Error())
	}
	if err := json.Unmarshal(raw, &gen); err != nil {
		return gen, errors.Wrapf(errors.ErrInput, "unmarshal genesis: %s", err)
	}
	return gen, nil
}

// InitChain stores the chain id and runs the initializer over the deliver
// store. The state becomes visible after the next Commit.
func (cs *CommitStore) InitChain(gen Genesis, init drip.Initializer) error {
	db := cs.DeliverStore().CacheWrap()
	if err := saveChainID(db, gen.ChainID); err != nil {
		db.Discard()
		return err
	}
	if err := init.FromGenesis(gen.AppOptions, db); err != nil {
		db.Discard()
		return errors.Wrap(err, "initialize from genesis")
	}
	return db.Write()
}
