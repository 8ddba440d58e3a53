package jobrepo_test

import (
	"context"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yusufsyaifudin/marathon/internal/storage"
	"github.com/yusufsyaifudin/marathon/internal/svc/jobrepo"
)

const (
	appID      = "0b5c1b4e-7c5d-4f5e-9d4a-8f2d3f3c1a11"
	templateID = "6f1f7a52-1d0e-4d8b-a0a4-2a4f8f7f0b22"
	jobID      = "9a3e2b1c-5d4f-4e6a-8b7c-1d2e3f4a5b33"
)

var jobColumns = []string{
	"id", "total_batches", "completed_batches", "completed_at", "expire_at", "context", "service",
	"filters", "csv_url", "created_by", "app_id", "template_id", "created_at", "updated_at",
}

func newRepo(t *testing.T) (*jobrepo.RepoPostgres, sqlmock.Sqlmock) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() {
		_ = db.Close()
	})

	repo, err := jobrepo.Postgres(jobrepo.RepoPostgresConfig{
		Connection: sqlx.NewDb(db, "postgres"),
	})
	require.NoError(t, err)
	return repo, mock
}

func sampleJob(now time.Time) jobrepo.Job {
	return jobrepo.Job{
		ID:         jobID,
		Context:    storage.JSON(`{"name":"bob"}`),
		Service:    "apns",
		Filters:    storage.JSON(`{"os":"ios"}`),
		CreatedBy:  "u@x.com",
		AppID:      appID,
		TemplateID: templateID,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
}

// jobRow mimic postgres returning row, completed batches and completed at are given explicitly.
func jobRow(job jobrepo.Job, total interface{}, completed int64, completedAt interface{}) *sqlmock.Rows {
	var filters interface{}
	if !job.Filters.IsNull() {
		filters = []byte(job.Filters)
	}

	var csvURL interface{}
	if job.CsvURL != nil {
		csvURL = *job.CsvURL
	}

	return sqlmock.NewRows(jobColumns).AddRow(
		job.ID, total, completed, completedAt, nil, []byte(job.Context), job.Service,
		filters, csvURL, job.CreatedBy, job.AppID, job.TemplateID, job.CreatedAt, job.UpdatedAt,
	)
}

func TestRepoPostgres_Create(t *testing.T) {
	now := time.Now().UTC()
	job := sampleJob(now)

	t.Run("ok", func(t *testing.T) {
		repo, mock := newRepo(t)
		mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO jobs")).
			WillReturnRows(jobRow(job, nil, 0, nil))

		out, err := repo.Create(context.Background(), jobrepo.InputCreate{Job: job})
		require.NoError(t, err)
		assert.Equal(t, job, out.Job)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("both audience", func(t *testing.T) {
		repo, _ := newRepo(t)
		invalid := job
		csv := "https://example.com/a.csv"
		invalid.CsvURL = &csv

		_, err := repo.Create(context.Background(), jobrepo.InputCreate{Job: invalid})
		assert.ErrorIs(t, err, jobrepo.ErrValidation)
	})

	t.Run("no audience", func(t *testing.T) {
		repo, _ := newRepo(t)
		invalid := job
		invalid.Filters = nil

		_, err := repo.Create(context.Background(), jobrepo.InputCreate{Job: invalid})
		assert.ErrorIs(t, err, jobrepo.ErrValidation)
	})

	t.Run("unknown service", func(t *testing.T) {
		repo, _ := newRepo(t)
		invalid := job
		invalid.Service = "sms"

		_, err := repo.Create(context.Background(), jobrepo.InputCreate{Job: invalid})
		assert.ErrorIs(t, err, jobrepo.ErrValidation)
	})

	t.Run("template missing", func(t *testing.T) {
		repo, mock := newRepo(t)
		mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO jobs")).
			WillReturnError(&pq.Error{Code: "23503", Constraint: "jobs_template_id_fkey"})

		_, err := repo.Create(context.Background(), jobrepo.InputCreate{Job: job})
		assert.ErrorIs(t, err, jobrepo.ErrForeignKey)
	})
}

func TestRepoPostgres_GetUnderTemplate(t *testing.T) {
	now := time.Now().UTC()

	t.Run("ok", func(t *testing.T) {
		repo, mock := newRepo(t)
		mock.ExpectQuery(regexp.QuoteMeta("SELECT * FROM jobs WHERE id = $1 AND app_id = $2 AND template_id = $3")).
			WithArgs(jobID, appID, templateID).
			WillReturnRows(jobRow(sampleJob(now), nil, 0, nil))

		out, err := repo.GetUnderTemplate(context.Background(), jobrepo.InputGetUnderTemplate{
			ID: jobID, AppID: appID, TemplateID: templateID,
		})
		require.NoError(t, err)
		assert.Equal(t, jobID, out.Job.ID)
		assert.Nil(t, out.Job.TotalBatches)
	})

	t.Run("not found", func(t *testing.T) {
		repo, mock := newRepo(t)
		mock.ExpectQuery(regexp.QuoteMeta("SELECT * FROM jobs WHERE id = $1 AND app_id = $2 AND template_id = $3")).
			WillReturnRows(sqlmock.NewRows(jobColumns))

		_, err := repo.GetUnderTemplate(context.Background(), jobrepo.InputGetUnderTemplate{
			ID: jobID, AppID: appID, TemplateID: templateID,
		})
		assert.ErrorIs(t, err, jobrepo.ErrNotFound)
	})
}

func TestRepoPostgres_GetByID(t *testing.T) {
	now := time.Now().UTC()
	repo, mock := newRepo(t)
	mock.ExpectQuery(regexp.QuoteMeta("SELECT * FROM jobs WHERE id = $1 LIMIT 1")).
		WithArgs(jobID).
		WillReturnRows(jobRow(sampleJob(now), nil, 0, nil))

	out, err := repo.GetByID(context.Background(), jobrepo.InputGetByID{ID: jobID})
	require.NoError(t, err)
	assert.Equal(t, `{"os":"ios"}`, string(out.Job.Filters))
}

func TestRepoPostgres_ListByTemplate(t *testing.T) {
	now := time.Now().UTC()
	repo, mock := newRepo(t)
	mock.ExpectQuery(regexp.QuoteMeta("SELECT * FROM jobs WHERE app_id = $1 AND template_id = $2")).
		WithArgs(appID, templateID, storage.DefaultLimit, 0).
		WillReturnRows(jobRow(sampleJob(now), int64(2), 1, nil))

	out, err := repo.ListByTemplate(context.Background(), jobrepo.InputListByTemplate{AppID: appID, TemplateID: templateID})
	require.NoError(t, err)
	require.Len(t, out.Jobs, 1)
	require.NotNil(t, out.Jobs[0].TotalBatches)
	assert.Equal(t, int64(2), *out.Jobs[0].TotalBatches)
	assert.Equal(t, int64(1), out.Jobs[0].CompletedBatches)
}

func TestRepoPostgres_IncrementProgress(t *testing.T) {
	now := time.Now().UTC()
	repo, mock := newRepo(t)
	mock.ExpectQuery(regexp.QuoteMeta("UPDATE jobs SET\n\tcompleted_batches = completed_batches + 1")).
		WithArgs(jobID, now).
		WillReturnRows(jobRow(sampleJob(now), int64(1), 1, now))

	out, err := repo.IncrementProgress(context.Background(), jobrepo.InputIncrementProgress{ID: jobID, Now: now})
	require.NoError(t, err)
	assert.True(t, out.Job.Completed())
	assert.Equal(t, int64(1), out.Job.CompletedBatches)
}

func TestRepoPostgres_MarkCompleted(t *testing.T) {
	now := time.Now().UTC()

	t.Run("ok", func(t *testing.T) {
		repo, mock := newRepo(t)
		mock.ExpectQuery(regexp.QuoteMeta("UPDATE jobs SET completed_at = COALESCE(completed_at, $2)")).
			WithArgs(jobID, now).
			WillReturnRows(jobRow(sampleJob(now), nil, 0, now))

		out, err := repo.MarkCompleted(context.Background(), jobrepo.InputMarkCompleted{ID: jobID, Now: now})
		require.NoError(t, err)
		assert.True(t, out.Job.Completed())
	})

	t.Run("gone", func(t *testing.T) {
		repo, mock := newRepo(t)
		mock.ExpectQuery(regexp.QuoteMeta("UPDATE jobs SET completed_at")).
			WillReturnRows(sqlmock.NewRows(jobColumns))

		_, err := repo.MarkCompleted(context.Background(), jobrepo.InputMarkCompleted{ID: jobID, Now: now})
		assert.ErrorIs(t, err, jobrepo.ErrNotFound)
	})
}

func TestJob(t *testing.T) {
	now := time.Now()
	job := sampleJob(now)
	assert.False(t, job.Expired(now))

	past := now.Add(-time.Minute)
	job.ExpireAt = &past
	assert.True(t, job.Expired(now))
	assert.True(t, job.HasSingleAudience())
}
