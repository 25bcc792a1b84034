/*
Package gconf implements a configuration store intended to be used as a global,
in-database configuration.

Each package keeps a single configuration object under the "_c:<package>"
key. The object is loaded from the genesis file (see InitConfig) and can later
be patched by its owner with the UpdateConfigurationHandler.
*/
package gconf
