/*
Package errors implements the error kinds used across drip.

Every error returned by a handler or a ledger operation should wrap one of
the root errors registered in this package or in an extension package (see
x/stream for the streaming kinds). Root errors carry an ABCI code so that a
host can report them to clients without leaking internal details.

Register a custom root error with Register(code, description). Create
runtime instances with ErrXyz.New/Newf or Wrap/Wrapf. The first wrap attaches
a stack trace; print it with %+v.

	if !kind.Is(err) {
		// handle a different failure
	}
*/
package errors
