package drip

import (
	"fmt"

	"github.com/iov-one/drip/errors"
	abci "github.com/tendermint/tendermint/abci/types"
	"github.com/tendermint/tendermint/libs/common"
)

// DeliverResult is the outcome of a successful Deliver call.
type DeliverResult struct {
	// Data is the machine readable result, for example the encoded event
	// of a stream operation.
	Data []byte
	Log  string
	// Tags let indexers search the transaction history.
	Tags    []common.KVPair
	GasUsed int64
}

// ToABCI converts the result into the tendermint response.
func (d DeliverResult) ToABCI() abci.ResponseDeliverTx {
	return abci.ResponseDeliverTx{
		Data:    d.Data,
		Log:     d.Log,
		Tags:    d.Tags,
		GasUsed: d.GasUsed,
	}
}

// CheckResult is the outcome of a successful Check call.
type CheckResult struct {
	Data []byte
	Log  string
	// GasAllocated is the most work the transaction may perform.
	GasAllocated int64
}

// NewCheck returns a result with the gas allocation and log set.
func NewCheck(gasAllocated int64, log string) *CheckResult {
	return &CheckResult{GasAllocated: gasAllocated, Log: log}
}

// ToABCI converts the result into the tendermint response.
func (c CheckResult) ToABCI() abci.ResponseCheckTx {
	return abci.ResponseCheckTx{
		Data:      c.Data,
		Log:       c.Log,
		GasWanted: c.GasAllocated,
	}
}

// DeliverOrError returns the response for err when it is set, for result
// otherwise.
func DeliverOrError(result *DeliverResult, err error, debug bool) abci.ResponseDeliverTx {
	if err != nil {
		return DeliverTxError(err, debug)
	}
	return result.ToABCI()
}

// CheckOrError returns the response for err when it is set, for result
// otherwise.
func CheckOrError(result *CheckResult, err error, debug bool) abci.ResponseCheckTx {
	if err != nil {
		return CheckTxError(err, debug)
	}
	return result.ToABCI()
}

// DeliverTxError reports err as a failed deliver response. See
// errors.ABCIInfo for what debug reveals.
func DeliverTxError(err error, debug bool) abci.ResponseDeliverTx {
	code, log := errorInfo("deliver", err, debug)
	return abci.ResponseDeliverTx{Code: code, Log: log}
}

// CheckTxError reports err as a failed check response.
func CheckTxError(err error, debug bool) abci.ResponseCheckTx {
	code, log := errorInfo("check", err, debug)
	return abci.ResponseCheckTx{Code: code, Log: log}
}

func errorInfo(call string, err error, debug bool) (uint32, string) {
	code, log := errors.ABCIInfo(err, debug)
	if code == errors.SuccessABCICode {
		return code, log
	}
	return code, fmt.Sprintf("cannot %s tx: %s", call, log)
}
