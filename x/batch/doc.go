/*
Package batch implements batch transactions.

A batch message holds an ordered list of messages that are executed one after
another against the same state, so each message sees the effects of the
messages before it. Depending on RequireAllSucceed the batch is either atomic
(the first failure reverts everything and is returned) or best-effort (each
failure reverts only its own message and is reported in the result list).

Extensions that do not rely on messages, such as signature checks, are applied
once for the whole transaction and not for every embedded message.
*/
package batch
