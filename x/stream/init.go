package stream

import (
	"github.com/iov-one/drip"
	"github.com/iov-one/drip/gconf"
)

// Initializer stores the configuration declared in the genesis file under
// conf.stream.
type Initializer struct{}

var _ drip.Initializer = (*Initializer)(nil)

// FromGenesis will parse initial configuration from genesis and save it to
// the database.
func (Initializer) FromGenesis(opts drip.Options, db drip.KVStore) error {
	return gconf.InitConfig(db, opts, ConfigPkg, &Configuration{})
}
