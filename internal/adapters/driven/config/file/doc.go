// Package file provides TOML-backed configuration for the CLI.
//
// Configuration lives at ~/.kbsync/config.toml by default and is read
// once at startup. Saving rewrites the whole file with restricted
// permissions, since it carries API keys.
package file
