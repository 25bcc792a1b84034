package weavetest

import (
	"context"
	"testing"
	"time"

	"github.com/iov-one/drip"
	abci "github.com/tendermint/tendermint/abci/types"
	"github.com/tendermint/tendermint/libs/log"
)

// ChainID is used by all contexts created by this package.
const ChainID = "drip-testchain"

// BlockCtx returns a context carrying block information of given height and
// block time.
func BlockCtx(t testing.TB, height int64, now time.Time) drip.Context {
	t.Helper()
	info, err := drip.NewBlockInfo(abci.Header{Height: height, Time: now}, ChainID, log.NewNopLogger())
	if err != nil {
		t.Fatalf("cannot create block info: %s", err)
	}
	return drip.WithBlockInfo(context.Background(), info)
}

// UnixCtx is BlockCtx with the block time given in seconds since the epoch.
func UnixCtx(t testing.TB, height int64, now drip.UnixTime) drip.Context {
	t.Helper()
	return BlockCtx(t, height, now.Time())
}
