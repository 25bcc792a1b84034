package weavetest

import "github.com/iov-one/drip"

// Counter counts Check and Deliver calls, failed ones included.
type Counter struct {
	checks   int
	delivers int
}

func (c *Counter) CheckCallCount() int   { return c.checks }
func (c *Counter) DeliverCallCount() int { return c.delivers }
func (c *Counter) CallCount() int        { return c.checks + c.delivers }

// Decorator is a drip.Decorator mock. With CheckErr or DeliverErr set the
// matching method fails without calling the next handler.
type Decorator struct {
	Counter
	CheckErr   error
	DeliverErr error
}

var _ drip.Decorator = (*Decorator)(nil)

func (d *Decorator) Check(ctx drip.Context, db drip.KVStore, tx drip.Tx, next drip.Checker) (*drip.CheckResult, error) {
	d.checks++
	if d.CheckErr != nil {
		return nil, d.CheckErr
	}
	return next.Check(ctx, db, tx)
}

func (d *Decorator) Deliver(ctx drip.Context, db drip.KVStore, tx drip.Tx, next drip.Deliverer) (*drip.DeliverResult, error) {
	d.delivers++
	if d.DeliverErr != nil {
		return nil, d.DeliverErr
	}
	return next.Deliver(ctx, db, tx)
}
