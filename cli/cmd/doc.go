// Package cmd implements the cmf subcommands.
package cmd

var (
	// CacheIdentifier is the kong variable holding the runtime cache
	// directory.
	CacheIdentifier = "cache"

	// ConfigIdentifier is the kong variable holding the configuration file
	// path without its extension.
	ConfigIdentifier = "config"

	// ModesIdentifier is the kong variable holding the comma-separated merge
	// mode names.
	ModesIdentifier = "mergeModes"
)
