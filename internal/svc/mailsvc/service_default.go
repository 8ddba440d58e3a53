package mailsvc

import (
	"bytes"
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/segmentio/encoding/json"
	"github.com/yusufsyaifudin/marathon/backend"
	"github.com/yusufsyaifudin/marathon/pkg/mailclient"
	"github.com/yusufsyaifudin/marathon/pkg/tracer"
	"github.com/yusufsyaifudin/marathon/pkg/validator"
	"github.com/yusufsyaifudin/ylog"
)

type DefaultServiceConfig struct {
	Client mailclient.Client `validate:"required"`
	Sender string            `validate:"required,email"`
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

func (d *DefaultService) JobCreated(ctx context.Context, in InputJobCreated) error {
	ctx, span := tracer.StartSpan(ctx, "mailsvc.JobCreated")
	defer span.End()

	job := in.Job

	var audience string
	switch {
	case job.CsvURL != nil:
		audience = fmt.Sprintf("This job uses the following csvUrl: %s.", *job.CsvURL)
	case !job.Filters.IsNull():
		filters := bytes.NewBuffer(nil)
		if err := json.Indent(filters, job.Filters, "", "  "); err != nil {
			filters.Reset()
			filters.Write(job.Filters)
		}

		audience = fmt.Sprintf("This job uses the following filters:\n%s.", filters.String())
	}

	body := fmt.Sprintf(`Hi there, a new push job was created.

App: %s (%s)
Template: %s (%s)
Platform: %s
JobID: %s
CreatedBy: %s
ExpireAt: %s

%s
`, in.App.Key, in.App.BundleID, in.Template.Name, in.Template.Locale, platform(job.Service),
		job.ID, job.CreatedBy, formatTime(job.ExpireAt), audience)

	return d.send(ctx, job.ID, job.CreatedBy, "New push job created", body)
}

func (d *DefaultService) JobCompleted(ctx context.Context, in InputJobCompleted) error {
	ctx, span := tracer.StartSpan(ctx, "mailsvc.JobCompleted")
	defer span.End()

	job := in.Job

	var total int64
	if job.TotalBatches != nil {
		total = *job.TotalBatches
	}

	var percent float64
	if total > 0 {
		percent = float64(100*job.CompletedBatches) / float64(total)
	}

	note := "All batches are sent."
	if in.Expired {
		note = "This job expired before all batches were sent, the remaining batches are skipped."
	}

	body := fmt.Sprintf(`Hello, your push job is complete.

AppID: %s
TemplateID: %s
Platform: %s
JobID: %s
CreatedBy: %s
CompletedAt: %s

Batches: %.2f%% (%d/%d)
%s
`, job.AppID, job.TemplateID, platform(job.Service), job.ID, job.CreatedBy, formatTime(job.CompletedAt),
		percent, job.CompletedBatches, total, note)

	return d.send(ctx, job.ID, job.CreatedBy, "Push job completed", body)
}

func (d *DefaultService) send(ctx context.Context, trackingID, to, subject, body string) error {
	report := d.Config.Client.SendEmails(ctx, []mailclient.Email{
		{
			TrackingID: trackingID,
			SenderAddr: d.Config.Sender,
			Recipients: []string{to},
			Subject:    subject,
			Body:       body,
		},
	})

	if err := report.Err(); err != nil {
		return err
	}

	ylog.Debug(ctx, "email sent", ylog.KV("trackingId", trackingID), ylog.KV("subject", subject))
	return nil
}

func platform(service string) string {
	switch service {
	case backend.ServiceAPNS:
		return "iOS"
	case backend.ServiceGCM:
		return "Android"
	default:
		return fmt.Sprintf("unknown platform for service %s", strings.ToUpper(service))
	}
}

func formatTime(t *time.Time) string {
	if t == nil {
		return "-"
	}

	return t.UTC().Format(time.RFC1123)
}
