package templatesvc

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/satori/uuid"
	"github.com/yusufsyaifudin/marathon/internal/storage"
	"github.com/yusufsyaifudin/marathon/internal/svc/svcerr"
	"github.com/yusufsyaifudin/marathon/internal/svc/templaterepo"
	"github.com/yusufsyaifudin/marathon/pkg/msgtemplate"
	"github.com/yusufsyaifudin/marathon/pkg/tracer"
	"github.com/yusufsyaifudin/marathon/pkg/validator"
)

type DefaultServiceConfig struct {
	TemplateRepo templaterepo.Repo `validate:"required"`
}

type DefaultService struct {
	Config DefaultServiceConfig
}

var _ Service = (*DefaultService)(nil)

func New(dep DefaultServiceConfig) (*DefaultService, error) {
	if err := validator.Validate(dep); err != nil {
		return nil, err
	}

	return &DefaultService{
		Config: dep,
	}, nil
}

// CreateTemplate compile the body with defaults before persisting.
// Missing app is reported by the repository as foreign key error.
func (d *DefaultService) CreateTemplate(ctx context.Context, input InputCreateTemplate) (out OutCreateTemplate, err error) {
	ctx, span := tracer.StartSpan(ctx, "templatesvc.CreateTemplate")
	defer span.End()

	if !svcerr.ValidID(input.AppID) {
		err = svcerr.NotFound("app", input.AppID)
		return
	}

	input.Name = strings.TrimSpace(input.Name)
	input.Locale = normalizeLocale(input.Locale)

	err = validator.Validate(input)
	if err != nil {
		err = svcerr.Validation(err)
		return
	}

	compiled, err := compile(input.Body, input.Defaults)
	if err != nil {
		return
	}

	now := time.Now().UTC()
	tplOut, err := d.Config.TemplateRepo.Create(ctx, templaterepo.InputCreate{
		Template: templaterepo.Template{
			ID:           uuid.NewV4().String(),
			Name:         input.Name,
			Locale:       input.Locale,
			Defaults:     storage.JSON(input.Defaults),
			Body:         storage.JSON(input.Body),
			CompiledBody: compiled,
			CreatedBy:    input.CreatedBy,
			AppID:        input.AppID,
			CreatedAt:    now,
			UpdatedAt:    now,
		},
	})
	if err != nil {
		return
	}

	out = OutCreateTemplate{
		Template: TemplateFromRepo(tplOut.Template),
	}
	return
}

// PutTemplate replace the template content, compiled body is always rebuilt.
func (d *DefaultService) PutTemplate(ctx context.Context, input InputPutTemplate) (out OutPutTemplate, err error) {
	ctx, span := tracer.StartSpan(ctx, "templatesvc.PutTemplate")
	defer span.End()

	if !svcerr.ValidID(input.AppID, input.ID) {
		err = svcerr.NotFound("template", input.ID)
		return
	}

	input.Name = strings.TrimSpace(input.Name)
	input.Locale = normalizeLocale(input.Locale)

	err = validator.Validate(input)
	if err != nil {
		err = svcerr.Validation(err)
		return
	}

	compiled, err := compile(input.Body, input.Defaults)
	if err != nil {
		return
	}

	tplOut, err := d.Config.TemplateRepo.Update(ctx, templaterepo.InputUpdate{
		ID:           input.ID,
		AppID:        input.AppID,
		Name:         input.Name,
		Locale:       input.Locale,
		Defaults:     storage.JSON(input.Defaults),
		Body:         storage.JSON(input.Body),
		CompiledBody: compiled,
		UpdatedAt:    time.Now().UTC(),
	})
	if err != nil {
		return
	}

	out = OutPutTemplate{
		Template: TemplateFromRepo(tplOut.Template),
	}
	return
}

func (d *DefaultService) GetTemplate(ctx context.Context, input InputGetTemplate) (out OutGetTemplate, err error) {
	if !svcerr.ValidID(input.AppID, input.ID) {
		err = svcerr.NotFound("template", input.ID)
		return
	}

	tplOut, err := d.Config.TemplateRepo.GetByID(ctx, templaterepo.InputGetByID{
		ID:    input.ID,
		AppID: input.AppID,
	})
	if err != nil {
		return
	}

	out = OutGetTemplate{
		Template: TemplateFromRepo(tplOut.Template),
	}
	return
}

func (d *DefaultService) ListTemplate(ctx context.Context, input InputListTemplate) (out OutListTemplate, err error) {
	if !svcerr.ValidID(input.AppID) {
		err = svcerr.NotFound("app", input.AppID)
		return
	}

	err = validator.Validate(input)
	if err != nil {
		err = svcerr.Validation(err)
		return
	}

	input.Limit = storage.Limit(input.Limit)
	listOut, err := d.Config.TemplateRepo.ListByApp(ctx, templaterepo.InputListByApp{
		AppID:  input.AppID,
		Limit:  input.Limit,
		Offset: input.Offset,
	})
	if err != nil {
		err = fmt.Errorf("list templates error: %w", err)
		return
	}

	templates := make([]Template, 0, len(listOut.Templates))
	for _, tpl := range listOut.Templates {
		templates = append(templates, TemplateFromRepo(tpl))
	}

	out = OutListTemplate{
		Limit:     input.Limit,
		Offset:    input.Offset,
		Templates: templates,
	}
	return
}

func (d *DefaultService) DelTemplate(ctx context.Context, input InputDelTemplate) (out OutDelTemplate, err error) {
	if !svcerr.ValidID(input.AppID, input.ID) {
		err = svcerr.NotFound("template", input.ID)
		return
	}

	delOut, err := d.Config.TemplateRepo.DelByID(ctx, templaterepo.InputDelByID{
		ID:    input.ID,
		AppID: input.AppID,
	})
	if err != nil {
		err = fmt.Errorf("db delete template '%s': %w", input.ID, err)
		return
	}

	if !delOut.Success {
		err = svcerr.NotFound("template", input.ID)
		return
	}

	out = OutDelTemplate{
		Success: true,
	}
	return
}

func TemplateFromRepo(tpl templaterepo.Template) Template {
	return Template{
		ID:           tpl.ID,
		Name:         tpl.Name,
		Locale:       tpl.Locale,
		Defaults:     tpl.Defaults,
		Body:         tpl.Body,
		CompiledBody: tpl.CompiledBody,
		AppID:        tpl.AppID,
		CreatedBy:    tpl.CreatedBy,
		CreatedAt:    tpl.CreatedAt.UTC(),
		UpdatedAt:    tpl.UpdatedAt.UTC(),
	}
}

func normalizeLocale(locale string) string {
	locale = strings.TrimSpace(locale)
	if locale == "" {
		return DefaultLocale
	}

	return locale
}

func compile(body, defaults []byte) (string, error) {
	compiled, err := msgtemplate.Compile(body, defaults)
	if err != nil {
		return "", svcerr.Fields(validator.FieldError{
			Field:   "body",
			Message: fmt.Sprintf("cannot be compiled: %s", err),
		})
	}

	return compiled, nil
}
