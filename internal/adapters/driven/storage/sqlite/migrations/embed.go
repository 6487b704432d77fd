// Package migrations holds the versioned schema for the metadata
// database.
package migrations

import "embed"

// FS exposes the numbered up/down migration scripts.
//
//go:embed *.sql
var FS embed.FS
