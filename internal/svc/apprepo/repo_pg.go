package apprepo

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/yusufsyaifudin/marathon/internal/storage"
	"github.com/yusufsyaifudin/marathon/pkg/tracer"
	"github.com/yusufsyaifudin/marathon/pkg/validator"
)

const (
	sqlCreateApp  = `INSERT INTO apps (id, key, bundle_id, created_by, created_at, updated_at) VALUES ($1, $2, $3, $4, $5, $6) RETURNING *;`
	sqlUpdateApp  = `UPDATE apps SET key = $2, bundle_id = $3, updated_at = $4 WHERE id = $1 RETURNING *;`
	sqlGetAppByID = `SELECT * FROM apps WHERE id = $1 LIMIT 1;`
	sqlListApps   = `SELECT * FROM apps ORDER BY created_at ASC, id ASC LIMIT $1 OFFSET $2;`
	sqlDeleteApp  = `DELETE FROM apps WHERE id = $1;`
)

type RepoPostgresConfig struct {
	Connection sqlx.ExtContext `validate:"required"`
}

type RepoPostgres struct {
	Config RepoPostgresConfig
}

var _ Repo = (*RepoPostgres)(nil)

// Postgres return repo interface which implements using PgSQL
func Postgres(conf RepoPostgresConfig) (service *RepoPostgres, err error) {
	err = validator.Validate(conf)
	if err != nil {
		return nil, err
	}

	service = &RepoPostgres{
		Config: conf,
	}
	return
}

func (p *RepoPostgres) Create(ctx context.Context, in InputCreate) (out OutCreate, err error) {
	ctx, span := tracer.StartSpan(ctx, "apprepo.Create")
	defer span.End()

	err = validator.Validate(in)
	if err != nil {
		err = fmt.Errorf("%w: %s", ErrValidation, err)
		return
	}

	app := in.App
	insertedApp := App{}
	err = sqlx.GetContext(ctx, p.Config.Connection, &insertedApp, sqlCreateApp,
		app.ID, app.Key, app.BundleID, app.CreatedBy, app.CreatedAt, app.UpdatedAt,
	)
	if err != nil {
		err = fmt.Errorf("insert app: %w", storage.Translate(err))
		return
	}

	out = OutCreate{
		App: insertedApp,
	}
	return
}

func (p *RepoPostgres) Update(ctx context.Context, in InputUpdate) (out OutUpdate, err error) {
	ctx, span := tracer.StartSpan(ctx, "apprepo.Update")
	defer span.End()

	err = validator.Validate(in)
	if err != nil {
		err = fmt.Errorf("%w: %s", ErrValidation, err)
		return
	}

	updatedApp := App{}
	err = sqlx.GetContext(ctx, p.Config.Connection, &updatedApp, sqlUpdateApp,
		in.ID, in.Key, in.BundleID, in.UpdatedAt,
	)
	if err != nil {
		err = fmt.Errorf("update app %s: %w", in.ID, storage.Translate(err))
		return
	}

	out = OutUpdate{
		App: updatedApp,
	}
	return
}

func (p *RepoPostgres) GetByID(ctx context.Context, in InputGetByID) (out OutGetByID, err error) {
	ctx, span := tracer.StartSpan(ctx, "apprepo.GetByID")
	defer span.End()

	err = validator.Validate(in)
	if err != nil {
		err = fmt.Errorf("%w: %s", ErrValidation, err)
		return
	}

	appData := App{}
	err = sqlx.GetContext(ctx, p.Config.Connection, &appData, sqlGetAppByID, in.ID)
	if err != nil {
		err = fmt.Errorf("get app %s: %w", in.ID, storage.Translate(err))
		return
	}

	out = OutGetByID{
		App: appData,
	}
	return
}

func (p *RepoPostgres) List(ctx context.Context, in InputList) (out OutList, err error) {
	err = validator.Validate(in)
	if err != nil {
		err = fmt.Errorf("%w: %s", ErrValidation, err)
		return
	}

	appData := make([]App, 0)
	err = sqlx.SelectContext(ctx, p.Config.Connection, &appData, sqlListApps, storage.Limit(in.Limit), in.Offset)
	if err != nil {
		err = fmt.Errorf("cannot get list of apps: %w", err)
		return
	}

	out = OutList{
		Apps: appData,
	}
	return
}

// DelByID also removes the app templates and jobs through cascading foreign key.
func (p *RepoPostgres) DelByID(ctx context.Context, in InputDelByID) (out OutDelByID, err error) {
	err = validator.Validate(in)
	if err != nil {
		err = fmt.Errorf("%w: %s", ErrValidation, err)
		return
	}

	res, err := p.Config.Connection.ExecContext(ctx, sqlDeleteApp, in.ID)
	if err != nil {
		err = fmt.Errorf("delete app %s: %w", in.ID, storage.Translate(err))
		return
	}

	affected, err := res.RowsAffected()
	if err != nil {
		err = fmt.Errorf("delete app %s rows affected: %w", in.ID, err)
		return
	}

	out = OutDelByID{
		Success: affected > 0,
	}
	return
}
