package batch

import (
	"github.com/iov-one/drip/errors"
	amino "github.com/tendermint/go-amino"
)

// Result describes the outcome of a single batch message. Code is zero on
// success. A failed message has the ABCI code and the log of its error.
type Result struct {
	Code uint32
	Log  string
	Data []byte
}

// Failed returns true if the message was not applied.
func (r Result) Failed() bool {
	return r.Code != 0
}

func failure(err error) Result {
	code, log := errors.ABCIInfo(err, false)
	return Result{Code: code, Log: log}
}

type resultSet struct {
	Results []Result
}

// encodeResults serializes results as the data of the batch execution.
func encodeResults(results []Result) ([]byte, error) {
	raw, err := amino.MarshalBinaryBare(resultSet{Results: results})
	if err != nil {
		return nil, errors.Wrap(errors.ErrHuman, err.Error())
	}
	return raw, nil
}

// DecodeResults parses the data returned by a batch execution.
func DecodeResults(raw []byte) ([]Result, error) {
	var set resultSet
	if err := amino.UnmarshalBinaryBare(raw, &set); err != nil {
		return nil, errors.Wrap(errors.ErrInput, err.Error())
	}
	return set.Results, nil
}
