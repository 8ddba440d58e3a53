package migration

import (
	"context"
	"database/sql"
	"fmt"
	"sort"

	migrate "github.com/rubenv/sql-migrate"
	"github.com/yusufsyaifudin/marathon/pkg/validator"
)

type SQLImmigrationConfig struct {
	Dialect        string    `validate:"required,oneof=postgres"`
	DB             *sql.DB   `validate:"required"`
	MigrationTable string    `validate:"required"`
	Migrations     []Migrate `validate:"required,min=1"`
}

type SQLImmigration struct {
	config SQLImmigrationConfig
	source migrate.MigrationSource
}

var _ Immigration = (*SQLImmigration)(nil)

func NewSQLImmigration(ctx context.Context, config SQLImmigrationConfig) (*SQLImmigration, error) {
	err := validator.Validate(config)
	if err != nil {
		return nil, err
	}

	migrations := append([]Migrate(nil), config.Migrations...)
	sort.SliceStable(migrations, func(i, j int) bool {
		return migrations[i].SequenceNumber(ctx) < migrations[j].SequenceNumber(ctx)
	})

	seen := map[int]string{}
	mig := make([]*migrate.Migration, 0, len(migrations))
	for _, m := range migrations {
		seq := m.SequenceNumber(ctx)
		if prev, ok := seen[seq]; ok {
			return nil, fmt.Errorf("migration %s and %s share sequence number %d", prev, m.ID(ctx), seq)
		}
		seen[seq] = m.ID(ctx)

		sqlUp, err := m.Up(ctx)
		if err != nil {
			return nil, fmt.Errorf("migration %s up: %w", m.ID(ctx), err)
		}

		sqlDown, err := m.Down(ctx)
		if err != nil {
			return nil, fmt.Errorf("migration %s down: %w", m.ID(ctx), err)
		}

		mig = append(mig, &migrate.Migration{
			Id:   m.ID(ctx),
			Up:   []string{sqlUp},
			Down: []string{sqlDown},
		})
	}

	return &SQLImmigration{
		config: config,
		source: &migrate.MemoryMigrationSource{Migrations: mig},
	}, nil
}

func (p *SQLImmigration) Up(_ context.Context) (int, error) {
	return p.exec(migrate.Up)
}

func (p *SQLImmigration) Down(_ context.Context) (int, error) {
	return p.exec(migrate.Down)
}

func (p *SQLImmigration) exec(dir migrate.MigrationDirection) (int, error) {
	ms := migrate.MigrationSet{TableName: p.config.MigrationTable}
	return ms.Exec(p.config.DB, p.config.Dialect, p.source, dir)
}
