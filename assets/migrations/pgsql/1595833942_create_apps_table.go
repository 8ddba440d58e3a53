package pgsql

import (
	"context"
	"fmt"
)

// CreateAppsTable1595833942 is struct to define a migration with ID 1595833942_create_apps_table
type CreateAppsTable1595833942 struct{}

// ID return unique identifier for each migration. The prefix is unix time when this migration is created.
func (m CreateAppsTable1595833942) ID(_ context.Context) string {
	return fmt.Sprintf("%d_%s.sql", m.SequenceNumber(context.TODO()), "create_apps_table")
}

// SequenceNumber return current time when the migration is created,
// this useful to see the current status of the migration.
func (m CreateAppsTable1595833942) SequenceNumber(_ context.Context) int {
	return 1595833942
}

// Up return sql migration for sync database
func (m CreateAppsTable1595833942) Up(_ context.Context) (sql string, err error) {
	sql = `
CREATE TABLE IF NOT EXISTS apps (
	id UUID NOT NULL PRIMARY KEY DEFAULT uuid_generate_v4(),
	key VARCHAR(255) NOT NULL,
	bundle_id VARCHAR(2000) NOT NULL,
	created_by VARCHAR(2000) NOT NULL,
	created_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT now(),
	updated_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT now()
);

CREATE UNIQUE INDEX IF NOT EXISTS unique_idx_apps_key ON apps (key);
CREATE UNIQUE INDEX IF NOT EXISTS unique_idx_apps_bundle_id ON apps (LOWER(bundle_id));
`
	return
}

// Down return sql migration for rollback database
func (m CreateAppsTable1595833942) Down(_ context.Context) (sql string, err error) {
	sql = `DROP TABLE IF EXISTS apps;`
	return
}
