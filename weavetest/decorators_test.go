package weavetest

import (
	"testing"

	"github.com/iov-one/drip"
	"github.com/iov-one/drip/errors"
)

func TestDecoratorPassesThrough(t *testing.T) {
	var (
		d Decorator
		h Handler
	)
	_, _ = d.Check(nil, nil, nil, &h)
	_, _ = d.Deliver(nil, nil, nil, &h)
	_, _ = d.Deliver(nil, nil, nil, &h)

	assertCounts(t, &d.Counter, 1, 2)
	assertCounts(t, &h.Counter, 1, 2)
}

func TestDecoratorFailure(t *testing.T) {
	d := Decorator{
		CheckErr:   errors.ErrUnauthorized,
		DeliverErr: errors.ErrNotFound,
	}
	// A failing decorator never reaches the handler, so nil is safe.
	var next drip.Handler

	if _, err := d.Check(nil, nil, nil, next); !errors.ErrUnauthorized.Is(err) {
		t.Errorf("check: %v", err)
	}
	if _, err := d.Deliver(nil, nil, nil, next); !errors.ErrNotFound.Is(err) {
		t.Errorf("deliver: %v", err)
	}
	assertCounts(t, &d.Counter, 1, 1)
}

func assertCounts(t *testing.T, c *Counter, checks, delivers int) {
	t.Helper()
	if got := c.CheckCallCount(); got != checks {
		t.Errorf("want %d checks, got %d", checks, got)
	}
	if got := c.DeliverCallCount(); got != delivers {
		t.Errorf("want %d delivers, got %d", delivers, got)
	}
	if got := c.CallCount(); got != checks+delivers {
		t.Errorf("want %d calls, got %d", checks+delivers, got)
	}
}
