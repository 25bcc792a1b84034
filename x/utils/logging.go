package utils

import (
	"time"

	"github.com/iov-one/drip"
)

// Logging is a decorator to log messages as they pass through
type Logging struct{}

var _ drip.Decorator = Logging{}

// NewLogging creates a Logging decorator
func NewLogging() Logging {
	return Logging{}
}

// Check logs error -> error, success -> debug
func (r Logging) Check(ctx drip.Context, store drip.KVStore, tx drip.Tx, next drip.Checker) (*drip.CheckResult, error) {
	start := time.Now()
	res, err := next.Check(ctx, store, tx)
	var resLog string
	if err == nil && res != nil {
		resLog = res.Log
	}
	logDuration(ctx, tx, start, resLog, err, true)
	return res, err
}

// Deliver logs error -> error, success -> info
func (r Logging) Deliver(ctx drip.Context, store drip.KVStore, tx drip.Tx, next drip.Deliverer) (*drip.DeliverResult, error) {
	start := time.Now()
	res, err := next.Deliver(ctx, store, tx)
	var resLog string
	if err == nil && res != nil {
		resLog = res.Log
	}
	logDuration(ctx, tx, start, resLog, err, false)
	return res, err
}

// logDuration writes information about the time and result to the logger
func logDuration(ctx drip.Context, tx drip.Tx, start time.Time, msg string, err error, lowPrio bool) {
	logger := drip.GetLogger(ctx).With("duration", time.Since(start)/time.Microsecond)
	if tx != nil {
		logger = logger.With("path", drip.GetPath(tx))
	}

	// An empty message is still logged because the key/value pairs carry
	// the relevant information.
	switch {
	case err != nil:
		logger.With("err", err).Error(msg)
	case lowPrio:
		logger.Debug(msg)
	default:
		logger.Info(msg)
	}
}
