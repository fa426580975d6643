// Package cmd provides the docxform subcommands: transform, placeholders,
// check, eval, init and version.
package cmd

var (
	// CacheIdentifier is the kong variable identifier containing the path to
	// the runtime cache directory.
	CacheIdentifier = "cache"

	// ConfigIdentifier is the kong variable identifier containing the path of
	// the YAML configuration file.
	ConfigIdentifier = "config"

	// PathEnvIdentifier is the kong variable identifier containing the name
	// of the mapping search path environment variable.
	PathEnvIdentifier = "pathEnv"
)

// ConfigNamespace is the top-level key of the YAML configuration file
// holding flag values.
const ConfigNamespace = "config"
