package drip

import (
	"encoding/json"
	"testing"

	"github.com/iov-one/drip/errors"
	"github.com/iov-one/drip/weavetest/assert"
)

func TestReadOptions(t *testing.T) {
	type cfg struct {
		Decimals int    `json:"decimals"`
		Ticker   string `json:"ticker"`
	}

	cases := map[string]struct {
		opts    Options
		wantErr *errors.Error
		want    cfg
	}{
		"happy path": {
			opts: Options{"stream": json.RawMessage(`{"decimals": 6, "ticker": "USDC"}`)},
			want: cfg{Decimals: 6, Ticker: "USDC"},
		},
		"missing key is a noop": {
			opts: Options{},
			want: cfg{},
		},
		"malformed json": {
			opts:    Options{"stream": json.RawMessage(`{"decimals": "six"}`)},
			wantErr: errors.ErrInput,
		},
	}

	for testName, tc := range cases {
		t.Run(testName, func(t *testing.T) {
			var got cfg
			err := tc.opts.ReadOptions("stream", &got)
			if !tc.wantErr.Is(err) {
				t.Fatalf("unexpected error: %+v", err)
			}
			if tc.wantErr == nil {
				assert.Equal(t, tc.want, got)
			}
		})
	}
}

type initFunc func(Options, KVStore) error

func (f initFunc) FromGenesis(o Options, kv KVStore) error { return f(o, kv) }

func TestChainInitializers(t *testing.T) {
	var calls []string
	first := initFunc(func(Options, KVStore) error {
		calls = append(calls, "first")
		return nil
	})
	failing := initFunc(func(Options, KVStore) error {
		calls = append(calls, "failing")
		return errors.ErrState
	})
	never := initFunc(func(Options, KVStore) error {
		calls = append(calls, "never")
		return nil
	})

	err := ChainInitializers(first, failing, never).FromGenesis(Options{}, nil)
	assert.IsErr(t, errors.ErrState, err)
	assert.Equal(t, []string{"first", "failing"}, calls)
}
