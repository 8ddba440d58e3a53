package appsvc

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/satori/uuid"
	"github.com/yusufsyaifudin/marathon/internal/storage"
	"github.com/yusufsyaifudin/marathon/internal/svc/apprepo"
	"github.com/yusufsyaifudin/marathon/internal/svc/svcerr"
	"github.com/yusufsyaifudin/marathon/pkg/tracer"
	"github.com/yusufsyaifudin/marathon/pkg/validator"
)

type DefaultServiceConfig struct {
	AppRepo apprepo.Repo `validate:"required"`
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

// CreateApp is a function that knows business logic.
// It doesn't know whether the input come from HTTP or GRPC or any input.
func (d *DefaultService) CreateApp(ctx context.Context, input InputCreateApp) (out OutCreateApp, err error) {
	ctx, span := tracer.StartSpan(ctx, "appsvc.CreateApp")
	defer span.End()

	input.Key = strings.TrimSpace(input.Key)
	input.BundleID = strings.TrimSpace(input.BundleID)

	err = validator.Validate(input)
	if err != nil {
		err = svcerr.Validation(err)
		return
	}

	now := time.Now().UTC()
	appOut, err := d.Config.AppRepo.Create(ctx, apprepo.InputCreate{
		App: apprepo.App{
			ID:        uuid.NewV4().String(),
			Key:       input.Key,
			BundleID:  input.BundleID,
			CreatedBy: input.CreatedBy,
			CreatedAt: now,
			UpdatedAt: now,
		},
	})
	if err != nil {
		return
	}

	out = OutCreateApp{
		App: AppFromRepo(appOut.App),
	}
	return
}

// PutApp replace key and bundle id of existing app.
func (d *DefaultService) PutApp(ctx context.Context, input InputPutApp) (out OutPutApp, err error) {
	if !svcerr.ValidID(input.ID) {
		err = svcerr.NotFound("app", input.ID)
		return
	}

	input.Key = strings.TrimSpace(input.Key)
	input.BundleID = strings.TrimSpace(input.BundleID)

	err = validator.Validate(input)
	if err != nil {
		err = svcerr.Validation(err)
		return
	}

	appOut, err := d.Config.AppRepo.Update(ctx, apprepo.InputUpdate{
		ID:        input.ID,
		Key:       input.Key,
		BundleID:  input.BundleID,
		UpdatedAt: time.Now().UTC(),
	})
	if err != nil {
		return
	}

	out = OutPutApp{
		App: AppFromRepo(appOut.App),
	}
	return
}

func (d *DefaultService) GetApp(ctx context.Context, input InputGetApp) (out OutGetApp, err error) {
	ctx, span := tracer.StartSpan(ctx, "appsvc.GetApp")
	defer span.End()

	if !svcerr.ValidID(input.ID) {
		err = svcerr.NotFound("app", input.ID)
		return
	}

	outGetApp, err := d.Config.AppRepo.GetByID(ctx, apprepo.InputGetByID{ID: input.ID})
	if err != nil {
		return
	}

	out = OutGetApp{
		App: AppFromRepo(outGetApp.App),
	}
	return
}

func (d *DefaultService) ListApp(ctx context.Context, in InputListApp) (out OutListApp, err error) {
	err = validator.Validate(in)
	if err != nil {
		err = svcerr.Validation(err)
		return
	}

	in.Limit = storage.Limit(in.Limit)
	outList, err := d.Config.AppRepo.List(ctx, apprepo.InputList{
		Limit:  in.Limit,
		Offset: in.Offset,
	})
	if err != nil {
		err = fmt.Errorf("list apps error: %w", err)
		return
	}

	apps := make([]App, 0, len(outList.Apps))
	for _, app := range outList.Apps {
		apps = append(apps, AppFromRepo(app))
	}

	out = OutListApp{
		Limit:  in.Limit,
		Offset: in.Offset,
		Apps:   apps,
	}
	return
}

func (d *DefaultService) DelApp(ctx context.Context, input InputDelApp) (out OutDelApp, err error) {
	if !svcerr.ValidID(input.ID) {
		err = svcerr.NotFound("app", input.ID)
		return
	}

	outDelApp, err := d.Config.AppRepo.DelByID(ctx, apprepo.InputDelByID{ID: input.ID})
	if err != nil {
		err = fmt.Errorf("db delete app '%s': %w", input.ID, err)
		return
	}

	if !outDelApp.Success {
		err = svcerr.NotFound("app", input.ID)
		return
	}

	out = OutDelApp{
		Success: true,
	}
	return
}
