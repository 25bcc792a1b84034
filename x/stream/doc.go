/*
Package stream implements payment streams.

A payer funds an account and opens any number of streams to payees. Each
stream accrues a fixed rate every second between its start and end time and
can be settled to its payee at any moment. Streams can be paused, resumed,
cancelled and modified by the payer.

Two funding models are supported. In the pool model all streams of a payer
share one balance and are paid only as long as the balance lasts. In the
escrow model the unaccrued value of every stream is committed when the stream
is started, so that an active stream is always fully funded.

Amounts are kept with 20 decimals of precision. Native tokens are converted
with truncation, so fractions of a token stay in the vault.
*/
package stream
