package statementmigrations

import "github.com/uptrace/bun/migrate"

// Migrations holds the statement module migrations.
var Migrations = migrate.NewMigrations()
