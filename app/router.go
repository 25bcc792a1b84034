package app

import (
	"fmt"
	"regexp"

	"github.com/iov-one/drip"
	"github.com/iov-one/drip/errors"
)

// isPath is the RegExp to ensure the routes make sense
var isPath = regexp.MustCompile(`^[a-z0-9_]+(/[a-z0-9_]+)*$`).MatchString

// Router allows us to register many handlers with different paths and then
// direct each message to the proper handler.
//
// Minimal interface modeled after net/http.ServeMux
type Router struct {
	routes map[string]drip.Handler
}

var _ drip.Registry = (*Router)(nil)
var _ drip.Handler = (*Router)(nil)

// NewRouter returns a new empty router instance.
func NewRouter() *Router {
	return &Router{
		routes: make(map[string]drip.Handler, 10),
	}
}

// Handle adds a new Handler for the given path. This function panics if a
// handler for given path is already registered or the path is invalid.
func (r *Router) Handle(path string, h drip.Handler) {
	if !isPath(path) {
		panic(fmt.Sprintf("invalid path: %q", path))
	}
	if _, ok := r.routes[path]; ok {
		panic(fmt.Sprintf("re-registering route: %s", path))
	}
	r.routes[path] = h
}

// handler returns the registered Handler for this path. If no path is found,
// returns a noSuchPath Handler. Always returns a non-nil Handler.
func (r *Router) handler(m drip.Msg) drip.Handler {
	path := m.Path()
	if h, ok := r.routes[path]; ok {
		return h
	}
	return notFoundHandler(path)
}

// Check dispatches to the proper handler based on path
func (r *Router) Check(ctx drip.Context, store drip.KVStore, tx drip.Tx) (*drip.CheckResult, error) {
	msg, err := tx.GetMsg()
	if err != nil {
		return nil, errors.Wrap(err, "cannot load msg")
	}
	return r.handler(msg).Check(ctx, store, tx)
}

// Deliver dispatches to the proper handler based on path
func (r *Router) Deliver(ctx drip.Context, store drip.KVStore, tx drip.Tx) (*drip.DeliverResult, error) {
	msg, err := tx.GetMsg()
	if err != nil {
		return nil, errors.Wrap(err, "cannot load msg")
	}
	return r.handler(msg).Deliver(ctx, store, tx)
}

// notFoundHandler always returns ErrNotFound error regardless of the
// arguments.
type notFoundHandler string

func (path notFoundHandler) Check(drip.Context, drip.KVStore, drip.Tx) (*drip.CheckResult, error) {
	return nil, errors.Wrapf(errors.ErrNotFound, "no handler for message path %q", path)
}

func (path notFoundHandler) Deliver(drip.Context, drip.KVStore, drip.Tx) (*drip.DeliverResult, error) {
	return nil, errors.Wrapf(errors.ErrNotFound, "no handler for message path %q", path)
}
