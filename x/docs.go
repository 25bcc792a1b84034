/*
Package x contains the extensions of the ledger.

Extensions implement common functionality (Handler, Decorator,
etc.) and can be combined together to construct an application.
This package holds the helpers shared by all of them, most notably
the Authenticator used by handlers to learn who signed a request.
*/
package x
