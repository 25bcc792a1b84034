package stream

import (
	"testing"

	"github.com/iov-one/drip/weavetest/assert"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestObserveCountsOnlyPayouts(t *testing.T) {
	const ticker = "MTR"
	cases := map[string]struct {
		Event *Event
		Want  float64
	}{
		"create with a deposit": {
			Event: accountEvent(ActionCreate, nil, native(40)),
		},
		"deposit": {
			Event: accountEvent(ActionDeposit, nil, native(40)),
		},
		"withdraw": {
			Event: accountEvent(ActionWithdraw, nil, native(7)),
			Want:  7,
		},
		"payer withdraw": {
			Event: accountEvent(ActionWithdrawPayer, nil, native(3)),
			Want:  3,
		},
	}

	for testName, tc := range cases {
		t.Run(testName, func(t *testing.T) {
			counter := payoutsTotal.WithLabelValues(ticker, tc.Event.Action)
			before := testutil.ToFloat64(counter)
			observe(ticker, tc.Event)
			assert.Equal(t, tc.Want, testutil.ToFloat64(counter)-before)
		})
	}
}
