package decisionmigrations

import "github.com/uptrace/bun/migrate"

// Migrations holds the decision module migrations.
var Migrations = migrate.NewMigrations()
