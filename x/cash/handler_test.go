package cash

import (
	"testing"
	"time"

	"github.com/iov-one/drip"
	"github.com/iov-one/drip/coin"
	"github.com/iov-one/drip/errors"
	"github.com/iov-one/drip/store"
	"github.com/iov-one/drip/weavetest"
	"github.com/iov-one/drip/weavetest/assert"
)

func TestSendHandler(t *testing.T) {
	perm := weavetest.NewCondition()
	perm2 := weavetest.NewCondition()

	cases := map[string]struct {
		Signers        []drip.Condition
		Msg            drip.Msg
		WantCheckErr   *errors.Error
		WantDeliverErr *errors.Error
		WantSource     coin.Coins
	}{
		"wrong message type": {
			Signers:        []drip.Condition{perm},
			Msg:            &weavetest.Msg{RoutePath: "cash/send"},
			WantCheckErr:   errors.ErrType,
			WantDeliverErr: errors.ErrType,
		},
		"invalid message": {
			Signers:        []drip.Condition{perm},
			Msg:            &SendMsg{Source: perm.Address(), Destination: perm2.Address()},
			WantCheckErr:   errors.ErrAmount,
			WantDeliverErr: errors.ErrAmount,
		},
		"missing signature": {
			Signers: []drip.Condition{perm2},
			Msg: &SendMsg{
				Source:      perm.Address(),
				Destination: perm2.Address(),
				Amount:      coin.NewCoinp(10, "IOV"),
			},
			WantCheckErr:   errors.ErrUnauthorized,
			WantDeliverErr: errors.ErrUnauthorized,
		},
		"not enough money": {
			Signers: []drip.Condition{perm},
			Msg: &SendMsg{
				Source:      perm.Address(),
				Destination: perm2.Address(),
				Amount:      coin.NewCoinp(1000, "IOV"),
			},
			WantDeliverErr: errors.ErrAmount,
		},
		"successful send": {
			Signers: []drip.Condition{perm},
			Msg: &SendMsg{
				Source:      perm.Address(),
				Destination: perm2.Address(),
				Amount:      coin.NewCoinp(40, "IOV"),
				Memo:        "rent",
			},
			WantSource: coin.Coins{coin.NewCoinp(60, "IOV")},
		},
	}

	for testName, tc := range cases {
		t.Run(testName, func(t *testing.T) {
			db := store.MemStore()
			ctrl := NewController()
			assert.Nil(t, ctrl.IssueCoins(db, perm.Address(), coin.NewCoin(100, "IOV")))

			auth := &weavetest.Auth{Signers: tc.Signers}
			h := NewSendHandler(auth, ctrl)
			ctx := weavetest.BlockCtx(t, 1, time.Now())
			tx := &weavetest.Tx{Msg: tc.Msg}

			cache := db.CacheWrap()
			if _, err := h.Check(ctx, cache, tx); !tc.WantCheckErr.Is(err) {
				t.Fatalf("unexpected check error: %+v", err)
			}
			cache.Discard()

			if _, err := h.Deliver(ctx, db, tx); !tc.WantDeliverErr.Is(err) {
				t.Fatalf("unexpected deliver error: %+v", err)
			}
			if tc.WantSource != nil {
				got, err := ctrl.Balance(db, perm.Address())
				assert.Nil(t, err)
				assert.Equal(t, tc.WantSource, got)
			}
		})
	}
}
