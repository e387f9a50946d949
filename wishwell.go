// Package wishwell holds module-level assets shared by the service binary,
// currently the embedded database migration files.
package wishwell

import "embed"

// Migrations contains the SQL migration files applied at startup.
//
//go:embed migrations/*.sql
var Migrations embed.FS
