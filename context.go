package drip

import (
	"context"
	"encoding/binary"
	"regexp"
	"time"

	"github.com/iov-one/drip/errors"
	abci "github.com/tendermint/tendermint/abci/types"
	"github.com/tendermint/tendermint/libs/log"
)

// Context is passed down the decorator and handler stack. Framework wide
// information is stored as a BlockInfo.
type Context = context.Context

var (
	// DefaultLogger is used for all context that have not
	// set anything themselves
	DefaultLogger = log.NewNopLogger()

	// IsValidChainID is the RegExp to ensure valid chain IDs
	IsValidChainID = regexp.MustCompile(`^[a-zA-Z0-9_\-]{6,20}$`).MatchString
)

// BlockInfo holds the execution environment of the current call. Block time
// from the header is the only clock the ledger trusts.
type BlockInfo struct {
	header  abci.Header
	chainID string
	logger  log.Logger
}

// NewBlockInfo creates a BlockInfo struct with current context of where it is being executed
func NewBlockInfo(header abci.Header, chainID string, logger log.Logger) (BlockInfo, error) {
	if !IsValidChainID(chainID) {
		return BlockInfo{}, errors.Wrap(errors.ErrInput, "chainID invalid")
	}
	if logger == nil {
		logger = DefaultLogger
	}
	return BlockInfo{
		header:  header,
		chainID: chainID,
		logger:  logger,
	}, nil
}

func (b BlockInfo) Header() abci.Header {
	return b.header
}

func (b BlockInfo) ChainID() string {
	return b.chainID
}

func (b BlockInfo) Height() int64 {
	return b.header.Height
}

func (b BlockInfo) BlockTime() time.Time {
	return b.header.Time
}

func (b BlockInfo) UnixTime() UnixTime {
	return AsUnixTime(b.header.Time)
}

func (b BlockInfo) Logger() log.Logger {
	return b.logger
}

// WithLogInfo accepts keyvalue pairs, and returns another
// BlockInfo like this, after passing all the keyvals to the
// Logger
func (b BlockInfo) WithLogInfo(keyvals ...interface{}) BlockInfo {
	b.logger = b.logger.With(keyvals...)
	return b
}

// IsExpired returns true if given time is in the past as compared to the "now"
// as declared for the block. Expiration is inclusive, meaning that if current
// time is equal to the expiration time than this function returns true.
func (b BlockInfo) IsExpired(t UnixTime) bool {
	return t <= b.UnixTime()
}

type contextKey int

const (
	contextKeyBlockInfo contextKey = iota
)

// WithBlockInfo returns a context carrying given block information. Once set,
// block information cannot be replaced down the stack.
func WithBlockInfo(ctx Context, info BlockInfo) Context {
	if _, ok := GetBlockInfo(ctx); ok {
		panic("block info already set")
	}
	return context.WithValue(ctx, contextKeyBlockInfo, info)
}

// GetBlockInfo returns the block information stored in the context, if any.
func GetBlockInfo(ctx Context) (BlockInfo, bool) {
	info, ok := ctx.Value(contextKeyBlockInfo).(BlockInfo)
	return info, ok
}

// BlockTime returns the current block time as declared by the header. The
// ledger must never run without a clock, so a missing value is reported as
// a coding error.
func BlockTime(ctx Context) (UnixTime, error) {
	info, ok := GetBlockInfo(ctx)
	if !ok {
		return 0, errors.Wrap(errors.ErrHuman, "block info not present in the context")
	}
	if info.header.Time.IsZero() {
		return 0, errors.Wrap(errors.ErrHuman, "block time not set")
	}
	return info.UnixTime(), nil
}

// GetLogger returns the logger of the current block or the default (nop)
// logger.
func GetLogger(ctx Context) log.Logger {
	if info, ok := GetBlockInfo(ctx); ok && info.logger != nil {
		return info.logger
	}
	return DefaultLogger
}

// blockTimeKey holds the time of the latest block. _d: is a prefix for
// internal data.
const blockTimeKey = "_d:blockTime"

// SaveBlockTime records the time of the block being executed, so that read
// only queries against the committed state have a clock.
func SaveBlockTime(db KVStore, t UnixTime) error {
	raw := make([]byte, 8)
	binary.BigEndian.PutUint64(raw, uint64(t))
	return errors.Wrap(db.Set([]byte(blockTimeKey), raw), "save block time")
}

// LoadBlockTime returns the time recorded by SaveBlockTime.
func LoadBlockTime(db ReadOnlyKVStore) (UnixTime, error) {
	raw, err := db.Get([]byte(blockTimeKey))
	if err != nil {
		return 0, errors.Wrap(err, "load block time")
	}
	if len(raw) != 8 {
		return 0, errors.Wrap(errors.ErrNotFound, "no block executed")
	}
	return UnixTime(binary.BigEndian.Uint64(raw)), nil
}

// QueryContext returns a context whose clock is the time of the latest block
// recorded in db.
func QueryContext(db ReadOnlyKVStore) (Context, error) {
	now, err := LoadBlockTime(db)
	if err != nil {
		return nil, err
	}
	info := BlockInfo{
		header: abci.Header{Time: now.Time()},
		logger: DefaultLogger,
	}
	return WithBlockInfo(context.Background(), info), nil
}
