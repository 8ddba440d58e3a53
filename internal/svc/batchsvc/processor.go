package batchsvc

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/yusufsyaifudin/marathon/backend"
	"github.com/yusufsyaifudin/marathon/internal/svc/jobrepo"
	"github.com/yusufsyaifudin/marathon/internal/svc/jobsvc"
	"github.com/yusufsyaifudin/marathon/internal/svc/mailsvc"
	"github.com/yusufsyaifudin/marathon/internal/svc/templaterepo"
	"github.com/yusufsyaifudin/marathon/pkg/metric"
	"github.com/yusufsyaifudin/marathon/pkg/msgtemplate"
	"github.com/yusufsyaifudin/marathon/pkg/tracer"
	"github.com/yusufsyaifudin/marathon/pkg/validator"
	"github.com/yusufsyaifudin/marathon/pkg/worker"
	"github.com/yusufsyaifudin/ylog"
)

// ErrDropped marks a message that can never succeed. It is acknowledged so the queue does not redeliver it.
var ErrDropped = errors.New("job message dropped")

type ProcessorConfig struct {
	JobRepo      jobrepo.Repo      `validate:"required"`
	TemplateRepo templaterepo.Repo `validate:"required"`
	SenderMux    backend.SenderMux `validate:"required"`

	// Mail is optional, nil means the job creator is not notified on completion.
	Mail mailsvc.Service `validate:"-"`

	// Clock default to time.Now
	Clock func() time.Time `validate:"-"`
}

// Processor render the job template and hand it to the sender of job service.
type Processor struct {
	config ProcessorConfig
}

var _ worker.Processor = (*Processor)(nil)

func NewProcessor(cfg ProcessorConfig) (*Processor, error) {
	if err := validator.Validate(cfg); err != nil {
		return nil, fmt.Errorf("batch processor config: %w", err)
	}

	if cfg.Clock == nil {
		cfg.Clock = time.Now
	}

	return &Processor{config: cfg}, nil
}

// ProcessJobBatch return true only when the batch is done and acknowledged.
// Failure is Nacked and only logged. No queue backend redelivers a Nacked batch:
// kafka commits past it on the next Ack, asynq archives it since tasks are enqueued with MaxRetry(0).
func (p *Processor) ProcessJobBatch(ctx context.Context, batch worker.Batch) bool {
	jobBatch, ok := batch.(*JobBatch)
	if !ok {
		ylog.Error(ctx, "unknown batch type", ylog.KV("batch", fmt.Sprintf("%T", batch)))
		return false
	}

	ctx, span := tracer.StartSpan(ctx, "batchsvc.ProcessJobBatch")
	defer span.End()

	t0 := time.Now()
	service, err := p.process(ctx, jobBatch)
	metric.BatchProcessDuration.WithLabelValues(service).Observe(time.Since(t0).Seconds())

	delivery := jobBatch.Delivery()
	switch {
	case errors.Is(err, ErrDropped):
		ylog.Error(ctx, "job batch dropped", ylog.KV("batchId", jobBatch.ID()), ylog.KV("error", err))
		if ackErr := delivery.Ack(ctx); ackErr != nil {
			ylog.Error(ctx, "ack dropped job batch error", ylog.KV("error", ackErr))
		}
		return false

	case err != nil:
		ylog.Error(ctx, "process job batch error", ylog.KV("batchId", jobBatch.ID()), ylog.KV("error", err))
		if nackErr := delivery.Nack(ctx, err); nackErr != nil {
			ylog.Error(ctx, "nack job batch error", ylog.KV("error", nackErr))
		}
		return false
	}

	if err = delivery.Ack(ctx); err != nil {
		ylog.Error(ctx, "ack job batch error", ylog.KV("batchId", jobBatch.ID()), ylog.KV("error", err))
		return false
	}

	return true
}

func (p *Processor) process(ctx context.Context, batch *JobBatch) (service string, err error) {
	service = "unknown"

	msg, err := jobsvc.UnmarshalJobMessage(batch.Delivery().Message.Body)
	if err != nil {
		err = fmt.Errorf("%w: %w", ErrDropped, err)
		return
	}

	jobOut, err := p.config.JobRepo.GetByID(ctx, jobrepo.InputGetByID{ID: msg.JobID})
	if errors.Is(err, jobrepo.ErrNotFound) || errors.Is(err, jobrepo.ErrValidation) {
		err = fmt.Errorf("%w: job %s: %w", ErrDropped, msg.JobID, err)
		return
	}

	if err != nil {
		err = fmt.Errorf("load job %s: %w", msg.JobID, err)
		return
	}

	job := jobOut.Job
	service = job.Service

	if job.Completed() {
		ylog.Info(ctx, "job already completed, skip", ylog.KV("jobId", job.ID))
		return
	}

	now := p.config.Clock()
	if job.Expired(now) || msg.Expired(now) {
		var marked jobrepo.OutMarkCompleted
		marked, err = p.config.JobRepo.MarkCompleted(ctx, jobrepo.InputMarkCompleted{ID: job.ID, Now: now})
		if err != nil {
			err = fmt.Errorf("mark expired job %s completed: %w", job.ID, err)
			return
		}

		ylog.Info(ctx, "job is expired, marked as completed without sending", ylog.KV("jobId", job.ID))
		p.mailCompleted(ctx, mailsvc.InputJobCompleted{Job: marked.Job, Expired: true})
		return
	}

	tmplOut, err := p.config.TemplateRepo.GetByID(ctx, templaterepo.InputGetByID{
		ID:    job.TemplateID,
		AppID: job.AppID,
	})
	if errors.Is(err, templaterepo.ErrNotFound) {
		err = fmt.Errorf("%w: template %s: %w", ErrDropped, job.TemplateID, err)
		return
	}

	if err != nil {
		err = fmt.Errorf("load template %s: %w", job.TemplateID, err)
		return
	}

	tmpl := tmplOut.Template
	payload, err := msgtemplate.Render(tmpl.Body, tmpl.Defaults, job.Context)
	if err != nil {
		err = fmt.Errorf("%w: render template %s: %w", ErrDropped, tmpl.ID, err)
		return
	}

	report, err := p.config.SenderMux.Send(ctx, &backend.Batch{
		ReferenceID: batch.ID(),
		JobID:       job.ID,
		BundleID:    msg.BundleID,
		Service:     job.Service,
		Payload:     []byte(payload),
	})
	if errors.Is(err, backend.ErrServiceNotRegistered) || errors.Is(err, backend.ErrInvalidBatch) {
		err = fmt.Errorf("%w: send job %s: %w", ErrDropped, job.ID, err)
		return
	}

	if err != nil {
		err = fmt.Errorf("send job %s: %w", job.ID, err)
		return
	}

	progress, err := p.config.JobRepo.IncrementProgress(ctx, jobrepo.InputIncrementProgress{ID: job.ID, Now: now})
	if err != nil {
		err = fmt.Errorf("record job %s progress: %w", job.ID, err)
		return
	}

	ylog.Info(ctx, "job batch sent",
		ylog.KV("jobId", job.ID),
		ylog.KV("report", report),
		ylog.KV("completedBatches", progress.Job.CompletedBatches),
		ylog.KV("completed", progress.Job.Completed()),
	)

	if reachedTotal(progress.Job) {
		p.mailCompleted(ctx, mailsvc.InputJobCompleted{Job: progress.Job})
	}

	return
}

// reachedTotal is true only for the increment that makes completed batches equal to total batches,
// so concurrent batches of the same job notify once.
func reachedTotal(job jobrepo.Job) bool {
	return job.Completed() && job.TotalBatches != nil && job.CompletedBatches == *job.TotalBatches
}

// mailCompleted only log the failure, the batch is already recorded.
func (p *Processor) mailCompleted(ctx context.Context, in mailsvc.InputJobCompleted) {
	if p.config.Mail == nil {
		return
	}

	if err := p.config.Mail.JobCompleted(ctx, in); err != nil {
		ylog.Error(ctx, "send job completed email error", ylog.KV("jobId", in.Job.ID), ylog.KV("error", err))
	}
}
