package teammigrations

import "github.com/uptrace/bun/migrate"

// Migrations holds the team ledger migrations.
var Migrations = migrate.NewMigrations()
