package appfs

import "embed"

// FS holds the SQL migrations, applied by goose from the "migrations" directory.
//
//go:embed migrations/*.sql
var FS embed.FS
