package x

import (
	"context"
	"testing"

	"github.com/iov-one/drip"
	"github.com/iov-one/drip/weavetest"
	"github.com/iov-one/drip/weavetest/assert"
)

func TestAuth(t *testing.T) {
	a := weavetest.NewCondition()
	b := weavetest.NewCondition()
	c := weavetest.NewCondition()

	ctxAuth := &weavetest.CtxAuth{Key: "foo"}

	cases := map[string]struct {
		ctx          drip.Context
		auth         Authenticator
		mainSigner   drip.Condition
		wantInCtx    drip.Condition
		wantNotInCtx drip.Condition
		wantAll      []drip.Condition
	}{
		"empty context": {
			ctx:          context.Background(),
			auth:         &weavetest.Auth{},
			wantNotInCtx: b,
		},
		"signer a": {
			ctx:          context.Background(),
			auth:         &weavetest.Auth{Signer: a},
			mainSigner:   a,
			wantInCtx:    a,
			wantNotInCtx: b,
			wantAll:      []drip.Condition{a},
		},
		"chained signers, duplicates dropped": {
			ctx: context.Background(),
			auth: ChainAuth(
				&weavetest.Auth{Signer: b},
				&weavetest.Auth{Signers: []drip.Condition{a, b}}),
			mainSigner:   b,
			wantInCtx:    a,
			wantNotInCtx: c,
			wantAll:      []drip.Condition{b, a},
		},
		"context auth": {
			ctx:          ctxAuth.SetConditions(context.Background(), c),
			auth:         ChainAuth(ctxAuth, &weavetest.Auth{}),
			mainSigner:   c,
			wantInCtx:    c,
			wantNotInCtx: a,
			wantAll:      []drip.Condition{c},
		},
	}

	for testName, tc := range cases {
		t.Run(testName, func(t *testing.T) {
			assert.Equal(t, tc.mainSigner, MainSigner(tc.ctx, tc.auth))
			if tc.wantInCtx != nil {
				assert.Equal(t, true, tc.auth.HasAddress(tc.ctx, tc.wantInCtx.Address()))
				assert.Equal(t, true, HasAnyAddress(tc.ctx, tc.auth, tc.wantNotInCtx.Address(), tc.wantInCtx.Address()))
			}
			assert.Equal(t, false, tc.auth.HasAddress(tc.ctx, tc.wantNotInCtx.Address()))
			assert.Equal(t, false, HasAnyAddress(tc.ctx, tc.auth, tc.wantNotInCtx.Address()))

			all := tc.auth.GetConditions(tc.ctx)
			assert.Equal(t, len(tc.wantAll), len(all))
			for i := range all {
				assert.Equal(t, tc.wantAll[i], all[i])
			}
			addrs := GetAddresses(tc.ctx, tc.auth)
			assert.Equal(t, true, HasAllAddresses(tc.ctx, tc.auth, addrs))
		})
	}
}
