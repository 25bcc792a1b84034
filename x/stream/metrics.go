package stream

import (
	"math/big"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	operationsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "drip_stream_operations_total",
		Help: "Number of delivered stream operations",
	}, []string{"action"})

	payoutsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "drip_stream_payouts_total",
		Help: "Native amount of tokens paid out of the vault",
	}, []string{"ticker", "action"})
)

// payouts are the actions whose amount leaves the vault.
var payouts = map[string]bool{
	ActionWithdraw:      true,
	ActionPause:         true,
	ActionCancel:        true,
	ActionModify:        true,
	ActionWithdrawPayer: true,
}

// observe records a delivered operation.
func observe(ticker string, e *Event) {
	operationsTotal.WithLabelValues(e.Action).Inc()
	if !payouts[e.Action] || e.Amount.IsZero() {
		return
	}
	amount, _ := new(big.Float).SetInt(e.Amount.ToBig()).Float64()
	payoutsTotal.WithLabelValues(ticker, e.Action).Add(amount)
}
