/*
Package dripapp assembles the stream ledger and the cash wallets into a
runnable application: the decorator chain every transaction passes through,
the message routes, the genesis loaders and the query routes.

Transaction encoding and signature verification belong to the host, which
provides them as an app.TxDecoder and an x.Authenticator.
*/
package dripapp

import (
	"github.com/iov-one/drip"
	"github.com/iov-one/drip/app"
	"github.com/iov-one/drip/errors"
	"github.com/iov-one/drip/store/iavl"
	"github.com/iov-one/drip/x"
	"github.com/iov-one/drip/x/batch"
	"github.com/iov-one/drip/x/cash"
	"github.com/iov-one/drip/x/stream"
	"github.com/iov-one/drip/x/utils"
	"github.com/tendermint/tendermint/libs/log"
)

// Chain returns the decorators wrapping every message handler. Batch
// sub-messages pass the action tagger one by one.
func Chain() app.Decorators {
	return app.ChainDecorators(
		utils.NewLogging(),
		utils.NewRecovery(),
		utils.NewKeyTagger(),
		utils.NewSavepoint().OnCheck(),
		batch.NewDecorator(),
		utils.NewActionTagger(),
	)
}

// Router registers the cash and stream handlers. Both share one cash
// controller, the stream vault moves coins through it.
func Router(auth x.Authenticator) *app.Router {
	r := app.NewRouter()
	ctrl := cash.NewController()
	cash.RegisterRoutes(r, auth, ctrl)
	stream.RegisterRoutes(r, auth, stream.NewLedger(ctrl))
	return r
}

// Stack is the full handler: Chain around Router.
func Stack(auth x.Authenticator) drip.Handler {
	return Chain().WithHandler(Router(auth))
}

// Initializer loads the genesis wallets and the stream configuration.
func Initializer() drip.Initializer {
	return drip.ChainInitializers(cash.Initializer{}, stream.Initializer{})
}

// Queries returns the read only query routes.
func Queries() drip.QueryRouter {
	qr := drip.NewQueryRouter()
	qr.RegisterAll(cash.RegisterQuery, stream.RegisterQuery)
	return qr
}

// App is a BaseApp running the Stack, with genesis and query support.
type App struct {
	*app.BaseApp
	store   *app.CommitStore
	queries drip.QueryRouter
}

// New opens the state kept in dir, or an in-memory state when dir is empty.
func New(dir string, decoder app.TxDecoder, auth x.Authenticator, logger log.Logger, debug bool) (*App, error) {
	var backend iavl.CommitStore
	if dir == "" {
		backend = iavl.NewMemCommitStore()
	} else {
		var err error
		if backend, err = iavl.NewCommitStore(dir, "drip"); err != nil {
			return nil, errors.Wrap(err, "open state")
		}
	}
	cs, err := app.NewCommitStore(backend)
	if err != nil {
		return nil, err
	}
	return &App{
		BaseApp: app.NewBaseApp(cs, decoder, Stack(auth), logger, debug),
		store:   cs,
		queries: Queries(),
	}, nil
}

// InitChain applies the genesis. It becomes visible after the first Commit.
func (a *App) InitChain(gen app.Genesis) error {
	return a.store.InitChain(gen, Initializer())
}

// Query runs a registered query against the last committed state.
func (a *App) Query(path, mod string, data []byte) ([]drip.Model, error) {
	return a.queries.Query(a.store.QueryStore(), path, mod, data)
}
