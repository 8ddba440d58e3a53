package pgsql

import (
	"context"
	"fmt"
)

// CreateTemplatesTable1600239931 create templates, owned by apps and removed along with it.
type CreateTemplatesTable1600239931 struct{}

func (m CreateTemplatesTable1600239931) ID(_ context.Context) string {
	return fmt.Sprintf("%d_%s.sql", m.SequenceNumber(context.TODO()), "create_templates_table")
}

func (m CreateTemplatesTable1600239931) SequenceNumber(_ context.Context) int {
	return 1600239931
}

func (m CreateTemplatesTable1600239931) Up(_ context.Context) (sql string, err error) {
	sql = `
CREATE TABLE IF NOT EXISTS templates (
	id UUID NOT NULL PRIMARY KEY DEFAULT uuid_generate_v4(),
	name VARCHAR(255) NOT NULL,
	locale VARCHAR(10) NOT NULL DEFAULT 'en',
	defaults JSONB NOT NULL DEFAULT '{}'::jsonb,
	body JSONB NOT NULL,
	compiled_body TEXT NOT NULL,
	created_by VARCHAR(2000) NOT NULL,
	app_id UUID NOT NULL REFERENCES apps (id) ON DELETE CASCADE,
	created_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT now(),
	updated_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT now()
);

CREATE UNIQUE INDEX IF NOT EXISTS unique_idx_templates_app_name_locale ON templates (app_id, name, locale);
`
	return
}

func (m CreateTemplatesTable1600239931) Down(_ context.Context) (sql string, err error) {
	sql = `DROP TABLE IF EXISTS templates;`
	return
}
