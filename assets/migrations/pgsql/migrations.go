// Package pgsql contains linear migrations of apps, templates and jobs table for PostgreSQL.
package pgsql

import "github.com/yusufsyaifudin/marathon/pkg/migration"

// TableName is where applied migration id is recorded.
const TableName = "marathon_migrations"

// All return migrations in the order they must be applied.
func All() []migration.Migrate {
	return []migration.Migrate{
		CreateUuidExtensions1595833918{},
		CreateAppsTable1595833942{},
		CreateTemplatesTable1600239931{},
		CreateJobsTable1624008564{},
	}
}
