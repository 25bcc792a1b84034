/*
Package app contains the building blocks of a drip application: the message
Router, the decorator chain, the CommitStore that keeps separate check and
deliver caches on top of a versioned store, and BaseApp which runs decoded
transactions block by block.
*/
package app
