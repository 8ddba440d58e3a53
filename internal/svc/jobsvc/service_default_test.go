package jobsvc_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yusufsyaifudin/marathon/internal/svc/apprepo"
	"github.com/yusufsyaifudin/marathon/internal/svc/jobrepo"
	"github.com/yusufsyaifudin/marathon/internal/svc/jobsvc"
	"github.com/yusufsyaifudin/marathon/internal/svc/mailsvc"
	"github.com/yusufsyaifudin/marathon/internal/svc/svcerr"
	"github.com/yusufsyaifudin/marathon/internal/svc/templaterepo"
	"github.com/yusufsyaifudin/marathon/pkg/pubsub"
	"github.com/yusufsyaifudin/marathon/pkg/validator"
)

const (
	appID      = "0b5c1b4e-7c5d-4f5e-9d4a-8f2d3f3c1a11"
	templateID = "6f1f7a52-1d0e-4d8b-a0a4-2a4f8f7f0b22"
	missingID  = "9a3e2b1c-5d4f-4e6a-8b7c-1d2e3f4a5b33"
)

type appRepo struct {
	apprepo.Repo
}

func (appRepo) GetByID(_ context.Context, in apprepo.InputGetByID) (apprepo.OutGetByID, error) {
	if in.ID != appID {
		return apprepo.OutGetByID{}, apprepo.ErrNotFound
	}

	return apprepo.OutGetByID{App: apprepo.App{ID: appID, BundleID: "com.a.b"}}, nil
}

type templateRepo struct {
	templaterepo.Repo
}

func (templateRepo) GetByID(_ context.Context, in templaterepo.InputGetByID) (templaterepo.OutGetByID, error) {
	if in.ID != templateID || in.AppID != appID {
		return templaterepo.OutGetByID{}, templaterepo.ErrNotFound
	}

	return templaterepo.OutGetByID{Template: templaterepo.Template{ID: templateID, AppID: appID}}, nil
}

type jobRepo struct {
	jobrepo.Repo
	jobs map[string]jobrepo.Job
}

func (r *jobRepo) Create(_ context.Context, in jobrepo.InputCreate) (jobrepo.OutCreate, error) {
	r.jobs[in.Job.ID] = in.Job
	return jobrepo.OutCreate{Job: in.Job}, nil
}

func (r *jobRepo) GetUnderTemplate(_ context.Context, in jobrepo.InputGetUnderTemplate) (jobrepo.OutGetByID, error) {
	job, ok := r.jobs[in.ID]
	if !ok || job.AppID != in.AppID || job.TemplateID != in.TemplateID {
		return jobrepo.OutGetByID{}, jobrepo.ErrNotFound
	}
	return jobrepo.OutGetByID{Job: job}, nil
}

func (r *jobRepo) ListByTemplate(_ context.Context, in jobrepo.InputListByTemplate) (jobrepo.OutListByTemplate, error) {
	out := jobrepo.OutListByTemplate{Jobs: []jobrepo.Job{}}
	for _, job := range r.jobs {
		if job.AppID == in.AppID && job.TemplateID == in.TemplateID {
			out.Jobs = append(out.Jobs, job)
		}
	}
	return out, nil
}

type publisher struct {
	pubsub.IPublisher
	err      error
	messages []*pubsub.Message
}

func (p *publisher) Publish(_ context.Context, msg *pubsub.Message) error {
	if p.err != nil {
		return p.err
	}

	p.messages = append(p.messages, msg)
	return nil
}

type mailer struct {
	mailsvc.Service
	err     error
	created []mailsvc.InputJobCreated
}

func (m *mailer) JobCreated(_ context.Context, in mailsvc.InputJobCreated) error {
	m.created = append(m.created, in)
	return m.err
}

func newService(t *testing.T) (*jobsvc.DefaultService, *jobRepo, *publisher) {
	jobs := &jobRepo{jobs: map[string]jobrepo.Job{}}
	pub := &publisher{}

	svc, err := jobsvc.New(jobsvc.DefaultServiceConfig{
		AppRepo:      appRepo{},
		TemplateRepo: templateRepo{},
		JobRepo:      jobs,
		Publisher:    pub,
		QueueName:    "kafka",
	})
	require.NoError(t, err)
	return svc, jobs, pub
}

func validInput() jobsvc.InputCreateJob {
	return jobsvc.InputCreateJob{
		AppID:      appID,
		TemplateID: templateID,
		CreatedBy:  "u@x.com",
		Context:    []byte(`{"name":"bob"}`),
		Service:    "apns",
		Filters:    []byte(`{"os":"ios"}`),
		ExpireAt:   "2030-01-02T03:04:05Z",
	}
}

func TestDefaultService_CreateJob(t *testing.T) {
	svc, jobs, pub := newService(t)
	ctx := context.Background()

	out, err := svc.CreateJob(ctx, validInput())
	require.NoError(t, err)
	assert.Equal(t, "u@x.com", out.Job.CreatedBy)
	assert.Equal(t, int64(0), out.Job.CompletedBatches)
	assert.Contains(t, jobs.jobs, out.Job.ID)

	require.Len(t, pub.messages, 1)
	assert.Equal(t, out.Job.ID, pub.messages[0].Key)

	msg, err := jobsvc.UnmarshalJobMessage(pub.messages[0].Body)
	require.NoError(t, err)
	assert.Equal(t, out.Job.ID, msg.JobID)
	assert.Equal(t, "com.a.b", msg.BundleID)
	assert.Equal(t, "apns", msg.Service)
	assert.JSONEq(t, `{"name":"bob"}`, string(msg.Context))
	assert.Equal(t, time.Date(2030, 1, 2, 3, 4, 5, 0, time.UTC).UnixMilli(), msg.Expiration)
}

func TestDefaultService_CreateJob_Validation(t *testing.T) {
	svc, _, pub := newService(t)
	ctx := context.Background()

	fieldsOf := func(t *testing.T, err error) []string {
		require.ErrorIs(t, err, svcerr.ErrValidation)
		names := make([]string, 0)
		for _, f := range validator.Fields(err) {
			names = append(names, f.Field)
		}
		return names
	}

	t.Run("missing user email", func(t *testing.T) {
		in := validInput()
		in.CreatedBy = ""
		_, err := svc.CreateJob(ctx, in)
		fields := validator.Fields(err)
		require.Len(t, fields, 1)
		assert.Contains(t, fields[0].Message, "empty")
	})

	t.Run("bad user email", func(t *testing.T) {
		in := validInput()
		in.CreatedBy = "not-email"
		_, err := svc.CreateJob(ctx, in)
		fields := validator.Fields(err)
		require.Len(t, fields, 1)
		assert.Contains(t, fields[0].Message, "email format")
	})

	t.Run("both filters and csv url", func(t *testing.T) {
		in := validInput()
		in.CsvURL = "https://example.com/a.csv"
		_, err := svc.CreateJob(ctx, in)
		assert.Equal(t, []string{"filters", "csvUrl"}, fieldsOf(t, err))
	})

	t.Run("neither filters nor csv url", func(t *testing.T) {
		in := validInput()
		in.Filters = nil
		_, err := svc.CreateJob(ctx, in)
		assert.Equal(t, []string{"filters", "csvUrl"}, fieldsOf(t, err))
	})

	t.Run("null filters is absent", func(t *testing.T) {
		in := validInput()
		in.Filters = []byte("null")
		_, err := svc.CreateJob(ctx, in)
		assert.Equal(t, []string{"filters", "csvUrl"}, fieldsOf(t, err))
	})

	t.Run("empty value", func(t *testing.T) {
		testCases := []struct {
			name    string
			context []byte
			service string
		}{
			{name: "missing", context: nil, service: ""},
			{name: "json empty string", context: []byte(`""`), service: "  "},
			{name: "json null", context: []byte("null"), service: ""},
		}

		for _, testCase := range testCases {
			t.Run(testCase.name, func(t *testing.T) {
				in := validInput()
				in.Context = testCase.context
				in.Service = testCase.service

				_, err := svc.CreateJob(ctx, in)
				assert.Equal(t, []validator.FieldError{
					{Field: "context", Message: "should not be empty"},
					{Field: "service", Message: "should not be empty"},
				}, validator.Fields(err))
			})
		}
	})

	t.Run("every bad field is reported", func(t *testing.T) {
		in := validInput()
		in.Context = []byte(`"x"`)
		in.Service = "sms"
		in.Filters = nil
		in.CsvURL = "not a url"
		in.ExpireAt = "tomorrow"
		zero := int64(0)
		in.TotalBatches = &zero

		_, err := svc.CreateJob(ctx, in)
		assert.Equal(t, []validator.FieldError{
			{Field: "context", Message: "is not a json format"},
			{Field: "service", Message: "must be in [apns,gcm]"},
			{Field: "csvUrl", Message: "is not url format"},
			{Field: "expireAt", Message: "is not a date format"},
			{Field: "totalBatches", Message: "must be at least 1"},
		}, validator.Fields(err))
	})

	assert.Empty(t, pub.messages)
}

func TestDefaultService_CreateJob_Parent(t *testing.T) {
	svc, _, _ := newService(t)
	ctx := context.Background()

	t.Run("unknown app", func(t *testing.T) {
		in := validInput()
		in.AppID = missingID
		_, err := svc.CreateJob(ctx, in)
		assert.ErrorIs(t, err, svcerr.ErrForeignKey)
	})

	t.Run("unknown template", func(t *testing.T) {
		in := validInput()
		in.TemplateID = missingID
		_, err := svc.CreateJob(ctx, in)
		assert.ErrorIs(t, err, svcerr.ErrForeignKey)
	})

	t.Run("non uuid", func(t *testing.T) {
		in := validInput()
		in.TemplateID = "1"
		_, err := svc.CreateJob(ctx, in)
		assert.ErrorIs(t, err, svcerr.ErrNotFound)
	})
}

func TestDefaultService_CreateJob_EnqueueFailed(t *testing.T) {
	svc, jobs, pub := newService(t)
	pub.err = errors.New("broker down")

	_, err := svc.CreateJob(context.Background(), validInput())
	assert.ErrorIs(t, err, pub.err)
	assert.NotErrorIs(t, err, svcerr.ErrValidation)
	assert.Len(t, jobs.jobs, 1, "job row stays")
}

func TestDefaultService_GetListJob(t *testing.T) {
	svc, _, _ := newService(t)
	ctx := context.Background()

	created, err := svc.CreateJob(ctx, validInput())
	require.NoError(t, err)

	got, err := svc.GetJob(ctx, jobsvc.InputGetJob{AppID: appID, TemplateID: templateID, ID: created.Job.ID})
	require.NoError(t, err)
	assert.Equal(t, created.Job.ID, got.Job.ID)

	_, err = svc.GetJob(ctx, jobsvc.InputGetJob{AppID: appID, TemplateID: missingID, ID: created.Job.ID})
	assert.ErrorIs(t, err, svcerr.ErrNotFound)

	_, err = svc.GetJob(ctx, jobsvc.InputGetJob{AppID: appID, TemplateID: templateID, ID: missingID})
	assert.ErrorIs(t, err, svcerr.ErrNotFound)

	list, err := svc.ListJob(ctx, jobsvc.InputListJob{AppID: appID, TemplateID: templateID})
	require.NoError(t, err)
	assert.Len(t, list.Jobs, 1)
}

func TestJobMessage(t *testing.T) {
	now := time.Now()

	assert.False(t, jobsvc.JobMessage{JobID: "a"}.Expired(now))
	assert.True(t, jobsvc.JobMessage{JobID: "a", Expiration: now.Add(-time.Second).UnixMilli()}.Expired(now))

	_, err := jobsvc.UnmarshalJobMessage([]byte(`{}`))
	assert.Error(t, err)

	_, err = jobsvc.UnmarshalJobMessage([]byte(`{`))
	assert.Error(t, err)
}

func TestDefaultService_CreateJob_Mail(t *testing.T) {
	ctx := context.Background()

	t.Run("creator is notified after enqueue", func(t *testing.T) {
		svc, _, pub := newService(t)
		mail := &mailer{}
		svc.Config.Mail = mail

		out, err := svc.CreateJob(ctx, validInput())
		require.NoError(t, err)
		require.Len(t, pub.messages, 1)

		require.Len(t, mail.created, 1)
		assert.Equal(t, out.Job.ID, mail.created[0].Job.ID)
		assert.Equal(t, "u@x.com", mail.created[0].Job.CreatedBy)
		assert.Equal(t, "com.a.b", mail.created[0].App.BundleID)
		assert.Equal(t, templateID, mail.created[0].Template.ID)
	})

	t.Run("mail error does not fail the job", func(t *testing.T) {
		svc, jobs, _ := newService(t)
		svc.Config.Mail = &mailer{err: errors.New("smtp down")}

		out, err := svc.CreateJob(ctx, validInput())
		require.NoError(t, err)
		assert.Contains(t, jobs.jobs, out.Job.ID)
	})

	t.Run("no mail when enqueue fails", func(t *testing.T) {
		svc, _, pub := newService(t)
		pub.err = errors.New("broker down")
		mail := &mailer{}
		svc.Config.Mail = mail

		_, err := svc.CreateJob(ctx, validInput())
		require.Error(t, err)
		assert.Empty(t, mail.created)
	})
}
