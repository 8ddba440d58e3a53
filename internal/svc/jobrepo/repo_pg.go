package jobrepo

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/yusufsyaifudin/marathon/internal/storage"
	"github.com/yusufsyaifudin/marathon/pkg/tracer"
	"github.com/yusufsyaifudin/marathon/pkg/validator"
)

const (
	sqlCreateJob = `INSERT INTO jobs (id, total_batches, completed_batches, completed_at, expire_at, context, service,
filters, csv_url, created_by, app_id, template_id, created_at, updated_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14) RETURNING *;`

	sqlGetJobByID            = `SELECT * FROM jobs WHERE id = $1 LIMIT 1;`
	sqlGetJobUnderTemplate   = `SELECT * FROM jobs WHERE id = $1 AND app_id = $2 AND template_id = $3 LIMIT 1;`
	sqlListJobsUnderTemplate = `SELECT * FROM jobs WHERE app_id = $1 AND template_id = $2 ORDER BY created_at ASC, id ASC LIMIT $3 OFFSET $4;`

	// right hand side of SET sees the row before update
	sqlIncrementProgress = `UPDATE jobs SET
	completed_batches = completed_batches + 1,
	total_batches = COALESCE(total_batches, 1),
	completed_at = CASE
		WHEN completed_batches + 1 >= COALESCE(total_batches, 1) THEN COALESCE(completed_at, $2)
		ELSE completed_at
	END,
	updated_at = $2
WHERE id = $1 RETURNING *;`

	sqlMarkCompleted = `UPDATE jobs SET completed_at = COALESCE(completed_at, $2), updated_at = $2 WHERE id = $1 RETURNING *;`
)

type RepoPostgresConfig struct {
	Connection sqlx.ExtContext `validate:"required"`
}

type RepoPostgres struct {
	Config RepoPostgresConfig
}

var _ Repo = (*RepoPostgres)(nil)

func Postgres(conf RepoPostgresConfig) (*RepoPostgres, error) {
	if err := validator.Validate(conf); err != nil {
		return nil, err
	}

	return &RepoPostgres{
		Config: conf,
	}, nil
}

func (p *RepoPostgres) Create(ctx context.Context, in InputCreate) (out OutCreate, err error) {
	ctx, span := tracer.StartSpan(ctx, "jobrepo.Create")
	defer span.End()

	err = validator.Validate(in)
	if err != nil {
		err = fmt.Errorf("%w: %s", ErrValidation, err)
		return
	}

	job := in.Job
	if !job.HasSingleAudience() {
		err = fmt.Errorf("%w: exactly one of filters or csv_url must be set", ErrValidation)
		return
	}

	inserted := Job{}
	err = sqlx.GetContext(ctx, p.Config.Connection, &inserted, sqlCreateJob,
		job.ID, job.TotalBatches, job.CompletedBatches, job.CompletedAt, job.ExpireAt, job.Context, job.Service,
		job.Filters, job.CsvURL, job.CreatedBy, job.AppID, job.TemplateID, job.CreatedAt, job.UpdatedAt,
	)
	if err != nil {
		err = fmt.Errorf("insert job: %w", storage.Translate(err))
		return
	}

	out = OutCreate{
		Job: inserted,
	}
	return
}

func (p *RepoPostgres) GetByID(ctx context.Context, in InputGetByID) (out OutGetByID, err error) {
	err = validator.Validate(in)
	if err != nil {
		err = fmt.Errorf("%w: %s", ErrValidation, err)
		return
	}

	job := Job{}
	err = sqlx.GetContext(ctx, p.Config.Connection, &job, sqlGetJobByID, in.ID)
	if err != nil {
		err = fmt.Errorf("get job %s: %w", in.ID, storage.Translate(err))
		return
	}

	out = OutGetByID{
		Job: job,
	}
	return
}

func (p *RepoPostgres) GetUnderTemplate(ctx context.Context, in InputGetUnderTemplate) (out OutGetByID, err error) {
	ctx, span := tracer.StartSpan(ctx, "jobrepo.GetUnderTemplate")
	defer span.End()

	err = validator.Validate(in)
	if err != nil {
		err = fmt.Errorf("%w: %s", ErrValidation, err)
		return
	}

	job := Job{}
	err = sqlx.GetContext(ctx, p.Config.Connection, &job, sqlGetJobUnderTemplate, in.ID, in.AppID, in.TemplateID)
	if err != nil {
		err = fmt.Errorf("get job %s: %w", in.ID, storage.Translate(err))
		return
	}

	out = OutGetByID{
		Job: job,
	}
	return
}

func (p *RepoPostgres) ListByTemplate(ctx context.Context, in InputListByTemplate) (out OutListByTemplate, err error) {
	err = validator.Validate(in)
	if err != nil {
		err = fmt.Errorf("%w: %s", ErrValidation, err)
		return
	}

	jobs := make([]Job, 0)
	err = sqlx.SelectContext(ctx, p.Config.Connection, &jobs, sqlListJobsUnderTemplate,
		in.AppID, in.TemplateID, storage.Limit(in.Limit), in.Offset,
	)
	if err != nil {
		err = fmt.Errorf("cannot get list of jobs: %w", err)
		return
	}

	out = OutListByTemplate{
		Jobs: jobs,
	}
	return
}

func (p *RepoPostgres) IncrementProgress(ctx context.Context, in InputIncrementProgress) (out OutIncrementProgress, err error) {
	err = validator.Validate(in)
	if err != nil {
		err = fmt.Errorf("%w: %s", ErrValidation, err)
		return
	}

	job := Job{}
	err = sqlx.GetContext(ctx, p.Config.Connection, &job, sqlIncrementProgress, in.ID, in.Now)
	if err != nil {
		err = fmt.Errorf("increment job %s progress: %w", in.ID, storage.Translate(err))
		return
	}

	out = OutIncrementProgress{
		Job: job,
	}
	return
}

func (p *RepoPostgres) MarkCompleted(ctx context.Context, in InputMarkCompleted) (out OutMarkCompleted, err error) {
	err = validator.Validate(in)
	if err != nil {
		err = fmt.Errorf("%w: %s", ErrValidation, err)
		return
	}

	job := Job{}
	err = sqlx.GetContext(ctx, p.Config.Connection, &job, sqlMarkCompleted, in.ID, in.Now)
	if err != nil {
		err = fmt.Errorf("mark job %s completed: %w", in.ID, storage.Translate(err))
		return
	}

	out = OutMarkCompleted{
		Job: job,
	}
	return
}
