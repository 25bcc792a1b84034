/*
Package drip defines the interfaces shared by every part of the payment
streaming ledger: the key value store and its cache wraps, the handler and
decorator stack, addresses and conditions, and the block information passed
through the context.

Feature modules live in the x/ directory. x/stream implements the streaming
ledger itself, x/cash is the token wallet it moves value with and x/batch
groups several messages into one all-or-nothing unit.
*/
package drip
