package templaterepo

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/yusufsyaifudin/marathon/internal/storage"
	"github.com/yusufsyaifudin/marathon/pkg/tracer"
	"github.com/yusufsyaifudin/marathon/pkg/validator"
)

const (
	sqlCreateTemplate = `INSERT INTO templates (id, name, locale, defaults, body, compiled_body, created_by, app_id, created_at, updated_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10) RETURNING *;`

	sqlUpdateTemplate = `UPDATE templates SET name = $3, locale = $4, defaults = $5, body = $6, compiled_body = $7, updated_at = $8
WHERE id = $1 AND app_id = $2 RETURNING *;`

	sqlGetTemplateByID    = `SELECT * FROM templates WHERE id = $1 AND app_id = $2 LIMIT 1;`
	sqlListTemplatesByApp = `SELECT * FROM templates WHERE app_id = $1 ORDER BY created_at ASC, id ASC LIMIT $2 OFFSET $3;`
	sqlDeleteTemplateByID = `DELETE FROM templates WHERE id = $1 AND app_id = $2;`
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
	ctx, span := tracer.StartSpan(ctx, "templaterepo.Create")
	defer span.End()

	err = validator.Validate(in)
	if err != nil {
		err = fmt.Errorf("%w: %s", ErrValidation, err)
		return
	}

	tpl := in.Template
	inserted := Template{}
	err = sqlx.GetContext(ctx, p.Config.Connection, &inserted, sqlCreateTemplate,
		tpl.ID, tpl.Name, tpl.Locale, tpl.Defaults, tpl.Body, tpl.CompiledBody,
		tpl.CreatedBy, tpl.AppID, tpl.CreatedAt, tpl.UpdatedAt,
	)
	if err != nil {
		err = fmt.Errorf("insert template: %w", storage.Translate(err))
		return
	}

	out = OutCreate{
		Template: inserted,
	}
	return
}

func (p *RepoPostgres) Update(ctx context.Context, in InputUpdate) (out OutUpdate, err error) {
	ctx, span := tracer.StartSpan(ctx, "templaterepo.Update")
	defer span.End()

	err = validator.Validate(in)
	if err != nil {
		err = fmt.Errorf("%w: %s", ErrValidation, err)
		return
	}

	updated := Template{}
	err = sqlx.GetContext(ctx, p.Config.Connection, &updated, sqlUpdateTemplate,
		in.ID, in.AppID, in.Name, in.Locale, in.Defaults, in.Body, in.CompiledBody, in.UpdatedAt,
	)
	if err != nil {
		err = fmt.Errorf("update template %s: %w", in.ID, storage.Translate(err))
		return
	}

	out = OutUpdate{
		Template: updated,
	}
	return
}

func (p *RepoPostgres) GetByID(ctx context.Context, in InputGetByID) (out OutGetByID, err error) {
	ctx, span := tracer.StartSpan(ctx, "templaterepo.GetByID")
	defer span.End()

	err = validator.Validate(in)
	if err != nil {
		err = fmt.Errorf("%w: %s", ErrValidation, err)
		return
	}

	tpl := Template{}
	err = sqlx.GetContext(ctx, p.Config.Connection, &tpl, sqlGetTemplateByID, in.ID, in.AppID)
	if err != nil {
		err = fmt.Errorf("get template %s: %w", in.ID, storage.Translate(err))
		return
	}

	out = OutGetByID{
		Template: tpl,
	}
	return
}

func (p *RepoPostgres) ListByApp(ctx context.Context, in InputListByApp) (out OutListByApp, err error) {
	err = validator.Validate(in)
	if err != nil {
		err = fmt.Errorf("%w: %s", ErrValidation, err)
		return
	}

	templates := make([]Template, 0)
	err = sqlx.SelectContext(ctx, p.Config.Connection, &templates, sqlListTemplatesByApp,
		in.AppID, storage.Limit(in.Limit), in.Offset,
	)
	if err != nil {
		err = fmt.Errorf("cannot get list of templates: %w", err)
		return
	}

	out = OutListByApp{
		Templates: templates,
	}
	return
}

func (p *RepoPostgres) DelByID(ctx context.Context, in InputDelByID) (out OutDelByID, err error) {
	err = validator.Validate(in)
	if err != nil {
		err = fmt.Errorf("%w: %s", ErrValidation, err)
		return
	}

	res, err := p.Config.Connection.ExecContext(ctx, sqlDeleteTemplateByID, in.ID, in.AppID)
	if err != nil {
		err = fmt.Errorf("delete template %s: %w", in.ID, storage.Translate(err))
		return
	}

	affected, err := res.RowsAffected()
	if err != nil {
		err = fmt.Errorf("delete template %s rows affected: %w", in.ID, err)
		return
	}

	out = OutDelByID{
		Success: affected > 0,
	}
	return
}
