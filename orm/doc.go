/*
Package orm provides an easy to use db wrapper

Models are stored in buckets. A bucket owns a key prefix in the KVStore so
that each model kind lives in its own key space. Buckets expose single model
access by primary key as well as ordered scans over a key prefix, which
allows composite keys to be queried by their leading part.
*/
package orm
