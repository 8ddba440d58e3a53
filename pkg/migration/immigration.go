package migration

import "context"

// Immigration applies Migrate list in SequenceNumber order.
type Immigration interface {
	// Up applies every pending migration, applied is the number of executed migration.
	Up(ctx context.Context) (applied int, err error)

	// Down reverts every applied migration.
	Down(ctx context.Context) (applied int, err error)
}

// Migrate is one schema change, i.e: one table.
type Migrate interface {
	// ID is stored in migration table, it must be prefixed by the unix time it was written.
	ID(ctx context.Context) string

	SequenceNumber(ctx context.Context) int
	Up(ctx context.Context) (sql string, err error)
	Down(ctx context.Context) (sql string, err error)
}
