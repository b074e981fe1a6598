// Package scoringmigrations holds the bun migrations for the scoring tables.
package scoringmigrations

import "github.com/uptrace/bun/migrate"

// Migrations collects every scoring migration registered in this package.
var Migrations = migrate.NewMigrations()
