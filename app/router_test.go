package app

import (
	"context"
	"testing"

	"github.com/iov-one/drip/errors"
	"github.com/iov-one/drip/weavetest"
	"github.com/iov-one/drip/weavetest/assert"
)

func TestRouterSuccess(t *testing.T) {
	r := NewRouter()

	var (
		msg     = &weavetest.Msg{RoutePath: "test/1"}
		handler = &weavetest.Handler{}
	)
	r.Handle(msg.Path(), handler)

	if _, err := r.Check(context.TODO(), nil, &weavetest.Tx{Msg: msg}); err != nil {
		t.Fatalf("check failed: %s", err)
	}
	if _, err := r.Deliver(context.TODO(), nil, &weavetest.Tx{Msg: msg}); err != nil {
		t.Fatalf("delivery failed: %s", err)
	}
	assert.Equal(t, 2, handler.CallCount())
}

func TestRouterNoHandler(t *testing.T) {
	r := NewRouter()
	tx := &weavetest.Tx{Msg: &weavetest.Msg{RoutePath: "test/1"}}

	_, err := r.Check(context.TODO(), nil, tx)
	assert.IsErr(t, errors.ErrNotFound, err)
	_, err = r.Deliver(context.TODO(), nil, tx)
	assert.IsErr(t, errors.ErrNotFound, err)
}

func TestRouterBrokenTx(t *testing.T) {
	r := NewRouter()
	_, err := r.Deliver(context.TODO(), nil, &weavetest.Tx{Err: errors.ErrMsg})
	assert.IsErr(t, errors.ErrMsg, err)
}

func TestRegisteringInvalidPath(t *testing.T) {
	cases := map[string]string{
		"empty":          "",
		"upper case":     "Stream/create",
		"trailing slash": "stream/",
		"colon":          "l:7",
	}
	for testName, path := range cases {
		t.Run(testName, func(t *testing.T) {
			assert.Panics(t, func() { NewRouter().Handle(path, &weavetest.Handler{}) })
		})
	}
}

func TestRegisteringDuplicatePath(t *testing.T) {
	r := NewRouter()
	r.Handle("stream/create", &weavetest.Handler{})
	assert.Panics(t, func() { r.Handle("stream/create", &weavetest.Handler{}) })
}
