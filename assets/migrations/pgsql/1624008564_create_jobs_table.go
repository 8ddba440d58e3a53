package pgsql

import (
	"context"
	"fmt"
)

// CreateJobsTable1624008564 create jobs. Exactly one of filters or csv_url is set.
type CreateJobsTable1624008564 struct{}

func (m CreateJobsTable1624008564) ID(_ context.Context) string {
	return fmt.Sprintf("%d_%s.sql", m.SequenceNumber(context.TODO()), "create_jobs_table")
}

func (m CreateJobsTable1624008564) SequenceNumber(_ context.Context) int {
	return 1624008564
}

func (m CreateJobsTable1624008564) Up(_ context.Context) (sql string, err error) {
	sql = `
CREATE TABLE IF NOT EXISTS jobs (
	id UUID NOT NULL PRIMARY KEY DEFAULT uuid_generate_v4(),
	total_batches INTEGER NULL CHECK (total_batches IS NULL OR total_batches >= 1),
	completed_batches INTEGER NOT NULL DEFAULT 0 CHECK (completed_batches >= 0),
	completed_at TIMESTAMP WITH TIME ZONE NULL,
	expire_at TIMESTAMP WITH TIME ZONE NULL,
	context JSONB NOT NULL,
	service VARCHAR(10) NOT NULL CHECK (service IN ('apns', 'gcm')),
	filters JSONB NULL,
	csv_url TEXT NULL,
	created_by VARCHAR(2000) NOT NULL,
	app_id UUID NOT NULL REFERENCES apps (id) ON DELETE CASCADE,
	template_id UUID NOT NULL REFERENCES templates (id) ON DELETE CASCADE,
	created_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT now(),
	updated_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT now(),
	CONSTRAINT jobs_filters_xor_csv_url CHECK ((filters IS NULL) <> (csv_url IS NULL))
);

CREATE INDEX IF NOT EXISTS idx_jobs_app_template ON jobs (app_id, template_id);
`
	return
}

func (m CreateJobsTable1624008564) Down(_ context.Context) (sql string, err error) {
	sql = `DROP TABLE IF EXISTS jobs;`
	return
}
