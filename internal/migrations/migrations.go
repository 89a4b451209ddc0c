package migrations

import "github.com/uptrace/bun/migrate"

// Migrations is the collection every migration file registers into via its
// init function.
var Migrations = migrate.NewMigrations()
