// Package utils provides decorators shared by all extensions: savepoints,
// panic recovery, logging and result tagging.
package utils
