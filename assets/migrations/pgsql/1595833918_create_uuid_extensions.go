package pgsql

import (
	"context"
	"fmt"
)

// CreateUuidExtensions1595833918 enable uuid-ossp so uuid column can have default value.
type CreateUuidExtensions1595833918 struct{}

func (m CreateUuidExtensions1595833918) ID(_ context.Context) string {
	return fmt.Sprintf("%d_%s.sql", m.SequenceNumber(context.TODO()), "create_uuid_extensions")
}

func (m CreateUuidExtensions1595833918) SequenceNumber(_ context.Context) int {
	return 1595833918
}

func (m CreateUuidExtensions1595833918) Up(_ context.Context) (sql string, err error) {
	sql = `CREATE EXTENSION IF NOT EXISTS "uuid-ossp";`
	return
}

// Down does nothing, other database object may still depend on the extension.
func (m CreateUuidExtensions1595833918) Down(_ context.Context) (sql string, err error) {
	sql = `SELECT 1;`
	return
}
