// Package migrations embeds the run ledger schema, one directory per database driver.
package migrations

import "embed"

//go:embed sqlite/*.sql postgres/*.sql
var FS embed.FS
