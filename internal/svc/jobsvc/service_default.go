package jobsvc

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/satori/uuid"
	"github.com/yusufsyaifudin/marathon/internal/storage"
	"github.com/yusufsyaifudin/marathon/internal/svc/apprepo"
	"github.com/yusufsyaifudin/marathon/internal/svc/jobrepo"
	"github.com/yusufsyaifudin/marathon/internal/svc/mailsvc"
	"github.com/yusufsyaifudin/marathon/internal/svc/svcerr"
	"github.com/yusufsyaifudin/marathon/internal/svc/templaterepo"
	"github.com/yusufsyaifudin/marathon/pkg/metric"
	"github.com/yusufsyaifudin/marathon/pkg/pubsub"
	"github.com/yusufsyaifudin/marathon/pkg/tracer"
	"github.com/yusufsyaifudin/marathon/pkg/validator"
	"github.com/yusufsyaifudin/ylog"
)

type DefaultServiceConfig struct {
	AppRepo      apprepo.Repo      `validate:"required"`
	TemplateRepo templaterepo.Repo `validate:"required"`
	JobRepo      jobrepo.Repo      `validate:"required"`
	Publisher    pubsub.IPublisher `validate:"required"`

	// QueueName only used as metric label, i.e: kafka or redis
	QueueName string `validate:"required"`

	// Mail is optional, nil means no email is sent to the job creator.
	Mail mailsvc.Service `validate:"-"`
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

func (d *DefaultService) CreateJob(ctx context.Context, input InputCreateJob) (out OutCreateJob, err error) {
	ctx, span := tracer.StartSpan(ctx, "jobsvc.CreateJob")
	defer span.End()

	err = validateCreatedBy(input.CreatedBy)
	if err != nil {
		return
	}

	expireAt, err := validateBody(input)
	if err != nil {
		return
	}

	if !svcerr.ValidID(input.AppID, input.TemplateID) {
		err = svcerr.NotFound("template", input.TemplateID)
		return
	}

	app, tmpl, err := d.parent(ctx, input.AppID, input.TemplateID)
	if err != nil {
		return
	}

	job := jobrepo.Job{
		ID:           uuid.NewV4().String(),
		TotalBatches: input.TotalBatches,
		ExpireAt:     expireAt,
		Context:      storage.JSON(input.Context),
		Service:      input.Service,
		CreatedBy:    input.CreatedBy,
		AppID:        input.AppID,
		TemplateID:   input.TemplateID,
	}

	if !isNull(input.Filters) {
		job.Filters = storage.JSON(input.Filters)
	}

	if input.CsvURL != "" {
		csvURL := input.CsvURL
		job.CsvURL = &csvURL
	}

	now := time.Now().UTC()
	job.CreatedAt, job.UpdatedAt = now, now

	jobOut, err := d.Config.JobRepo.Create(ctx, jobrepo.InputCreate{Job: job})
	if err != nil {
		return
	}

	err = d.enqueue(ctx, jobOut.Job, app.BundleID)
	if err != nil {
		err = fmt.Errorf("job %s is saved but not enqueued: %w", jobOut.Job.ID, err)
		return
	}

	d.mailCreated(ctx, mailsvc.InputJobCreated{Job: jobOut.Job, App: app, Template: tmpl})

	out = OutCreateJob{
		Job: JobFromRepo(jobOut.Job),
	}
	return
}

// mailCreated only log the failure, the job is already enqueued.
func (d *DefaultService) mailCreated(ctx context.Context, in mailsvc.InputJobCreated) {
	if d.Config.Mail == nil {
		return
	}

	if err := d.Config.Mail.JobCreated(ctx, in); err != nil {
		ylog.Error(ctx, "send job created email error", ylog.KV("jobId", in.Job.ID), ylog.KV("error", err))
	}
}

// parent load app and make sure the template belongs to it.
// Missing parent is reported as foreign key error, the same as database would report on insert.
func (d *DefaultService) parent(ctx context.Context, appID, templateID string) (app apprepo.App, tmpl templaterepo.Template, err error) {
	appOut, err := d.Config.AppRepo.GetByID(ctx, apprepo.InputGetByID{ID: appID})
	if errors.Is(err, svcerr.ErrNotFound) {
		err = fmt.Errorf("%w: app '%s' does not exist", svcerr.ErrForeignKey, appID)
		return
	}

	if err != nil {
		err = fmt.Errorf("load app '%s': %w", appID, err)
		return
	}

	tmplOut, err := d.Config.TemplateRepo.GetByID(ctx, templaterepo.InputGetByID{ID: templateID, AppID: appID})
	if errors.Is(err, svcerr.ErrNotFound) {
		err = fmt.Errorf("%w: template '%s' does not exist in app '%s'", svcerr.ErrForeignKey, templateID, appID)
		return
	}

	if err != nil {
		err = fmt.Errorf("load template '%s': %w", templateID, err)
		return
	}

	app, tmpl = appOut.App, tmplOut.Template
	return
}

func (d *DefaultService) enqueue(ctx context.Context, job jobrepo.Job, bundleID string) (err error) {
	defer func() {
		metric.JobEnqueueTotal.WithLabelValues(d.Config.QueueName, metric.Result(err)).Inc()
	}()

	body, err := JobMessage{
		JobID:      job.ID,
		Context:    []byte(job.Context),
		BundleID:   bundleID,
		Service:    job.Service,
		Expiration: expiration(job.ExpireAt),
	}.Marshal()
	if err != nil {
		err = fmt.Errorf("marshal job message: %w", err)
		return
	}

	msg := &pubsub.Message{
		Key:  job.ID,
		Body: body,
	}

	err = d.Config.Publisher.Publish(ctx, msg)
	if err != nil {
		return
	}

	ylog.Info(ctx, "job enqueued",
		ylog.KV("jobId", job.ID),
		ylog.KV("queue", d.Config.QueueName),
		ylog.KV("messageId", msg.LoggableID),
	)
	return
}

func (d *DefaultService) GetJob(ctx context.Context, input InputGetJob) (out OutGetJob, err error) {
	if !svcerr.ValidID(input.AppID, input.TemplateID, input.ID) {
		err = svcerr.NotFound("job", input.ID)
		return
	}

	jobOut, err := d.Config.JobRepo.GetUnderTemplate(ctx, jobrepo.InputGetUnderTemplate{
		ID:         input.ID,
		AppID:      input.AppID,
		TemplateID: input.TemplateID,
	})
	if err != nil {
		return
	}

	out = OutGetJob{
		Job: JobFromRepo(jobOut.Job),
	}
	return
}

func (d *DefaultService) ListJob(ctx context.Context, input InputListJob) (out OutListJob, err error) {
	if !svcerr.ValidID(input.AppID, input.TemplateID) {
		err = svcerr.NotFound("template", input.TemplateID)
		return
	}

	err = validator.Validate(input)
	if err != nil {
		err = svcerr.Validation(err)
		return
	}

	input.Limit = storage.Limit(input.Limit)
	listOut, err := d.Config.JobRepo.ListByTemplate(ctx, jobrepo.InputListByTemplate{
		AppID:      input.AppID,
		TemplateID: input.TemplateID,
		Limit:      input.Limit,
		Offset:     input.Offset,
	})
	if err != nil {
		err = fmt.Errorf("list jobs error: %w", err)
		return
	}

	jobs := make([]Job, 0, len(listOut.Jobs))
	for _, job := range listOut.Jobs {
		jobs = append(jobs, JobFromRepo(job))
	}

	out = OutListJob{
		Limit:  input.Limit,
		Offset: input.Offset,
		Jobs:   jobs,
	}
	return
}

func JobFromRepo(job jobrepo.Job) Job {
	out := Job{
		ID:               job.ID,
		TotalBatches:     job.TotalBatches,
		CompletedBatches: job.CompletedBatches,
		CompletedAt:      job.CompletedAt,
		ExpireAt:         job.ExpireAt,
		Context:          job.Context,
		Service:          job.Service,
		Filters:          job.Filters,
		CreatedBy:        job.CreatedBy,
		AppID:            job.AppID,
		TemplateID:       job.TemplateID,
		CreatedAt:        job.CreatedAt.UTC(),
		UpdatedAt:        job.UpdatedAt.UTC(),
	}

	if job.CsvURL != nil {
		out.CsvURL = *job.CsvURL
	}

	return out
}
