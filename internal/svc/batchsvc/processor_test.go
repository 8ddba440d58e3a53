package batchsvc_test

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yusufsyaifudin/marathon/backend"
	"github.com/yusufsyaifudin/marathon/internal/storage"
	"github.com/yusufsyaifudin/marathon/internal/svc/batchsvc"
	"github.com/yusufsyaifudin/marathon/internal/svc/jobrepo"
	"github.com/yusufsyaifudin/marathon/internal/svc/mailsvc"
	"github.com/yusufsyaifudin/marathon/internal/svc/templaterepo"
	"github.com/yusufsyaifudin/marathon/pkg/pubsub"
)

const (
	appID      = "6c1a3a47-7a2b-4d6e-9b7e-1f6f0b2d1a01"
	templateID = "0b7f1e0c-3b1d-4a53-8a55-2c3b4d5e6f02"
	jobID      = "9d8c7b6a-5f4e-4d3c-8b2a-1a0b9c8d7e03"
)

var now = time.Date(2022, 3, 1, 10, 0, 0, 0, time.UTC)

type fakeJobRepo struct {
	jobrepo.Repo

	job        *jobrepo.Job
	getErr     error
	progressed int
	completed  int
}

func (f *fakeJobRepo) GetByID(_ context.Context, in jobrepo.InputGetByID) (out jobrepo.OutGetByID, err error) {
	if f.getErr != nil {
		err = f.getErr
		return
	}

	if f.job == nil || f.job.ID != in.ID {
		err = jobrepo.ErrNotFound
		return
	}

	out.Job = *f.job
	return
}

// IncrementProgress follow the update statement: total batches default to 1.
func (f *fakeJobRepo) IncrementProgress(_ context.Context, in jobrepo.InputIncrementProgress) (out jobrepo.OutIncrementProgress, err error) {
	f.progressed++
	f.job.CompletedBatches++
	if f.job.TotalBatches == nil {
		total := int64(1)
		f.job.TotalBatches = &total
	}

	if f.job.CompletedBatches >= *f.job.TotalBatches && f.job.CompletedAt == nil {
		f.job.CompletedAt = &in.Now
	}

	out.Job = *f.job
	return
}

func (f *fakeJobRepo) MarkCompleted(_ context.Context, in jobrepo.InputMarkCompleted) (out jobrepo.OutMarkCompleted, err error) {
	f.completed++
	f.job.CompletedAt = &in.Now
	out.Job = *f.job
	return
}

type fakeTemplateRepo struct {
	templaterepo.Repo

	template *templaterepo.Template
}

func (f *fakeTemplateRepo) GetByID(_ context.Context, in templaterepo.InputGetByID) (out templaterepo.OutGetByID, err error) {
	if f.template == nil || f.template.ID != in.ID || f.template.AppID != in.AppID {
		err = templaterepo.ErrNotFound
		return
	}

	out.Template = *f.template
	return
}

type recordSender struct {
	batches []*backend.Batch
	err     error
}

func (r *recordSender) Send(_ context.Context, batch *backend.Batch) (*backend.Report, error) {
	if r.err != nil {
		return nil, r.err
	}

	r.batches = append(r.batches, batch)
	return &backend.Report{ReferenceID: batch.ReferenceID, Service: batch.Service, SuccessCount: 1}, nil
}

func (r *recordSender) ValidatePayload(_ context.Context, _ []byte) error {
	return nil
}

type recordMail struct {
	mailsvc.Service
	completed []mailsvc.InputJobCompleted
	err       error
}

func (r *recordMail) JobCompleted(_ context.Context, in mailsvc.InputJobCompleted) error {
	r.completed = append(r.completed, in)
	return r.err
}

type testProcessor struct {
	processor *batchsvc.Processor
	jobs      *fakeJobRepo
	sender    *recordSender
	mail      *recordMail
}

func newTestProcessor(t *testing.T) testProcessor {
	jobs := &fakeJobRepo{
		job: &jobrepo.Job{
			ID:         jobID,
			Context:    storage.JSON(`{"name":"Alice"}`),
			Service:    backend.ServiceGCM,
			Filters:    storage.JSON(`{"region":"id"}`),
			CreatedBy:  "ops@example.com",
			AppID:      appID,
			TemplateID: templateID,
			CreatedAt:  now,
			UpdatedAt:  now,
		},
	}

	templates := &fakeTemplateRepo{
		template: &templaterepo.Template{
			ID:       templateID,
			AppID:    appID,
			Name:     "welcome",
			Locale:   "en",
			Defaults: storage.JSON(`{"name":"there"}`),
			Body:     storage.JSON(`{"alert":"Hello {{name}}"}`),
		},
	}

	sender := &recordSender{}
	mail := &recordMail{}
	mux := backend.NewSenderMux()
	mux.MustRegister(backend.ServiceGCM, sender)

	processor, err := batchsvc.NewProcessor(batchsvc.ProcessorConfig{
		JobRepo:      jobs,
		TemplateRepo: templates,
		SenderMux:    mux,
		Mail:         mail,
		Clock:        func() time.Time { return now },
	})
	require.NoError(t, err)

	return testProcessor{processor: processor, jobs: jobs, sender: sender, mail: mail}
}

func batchOf(t *testing.T, body string) (*batchsvc.JobBatch, *fakeSubscriber) {
	sub := newFakeSubscriber(&pubsub.Message{LoggableID: "m-1", Key: jobID, Body: []byte(body)})
	delivery, err := sub.Receive(context.Background())
	require.NoError(t, err)
	return batchsvc.NewJobBatch(context.Background(), delivery), sub
}

func jobMessage(expiration int64) string {
	return fmt.Sprintf(`{"jobId":%q,"context":{"name":"Alice"},"bundleId":"com.example.app","service":"gcm","expiration":%d}`, jobID, expiration)
}

func TestNewProcessor(t *testing.T) {
	processor, err := batchsvc.NewProcessor(batchsvc.ProcessorConfig{})
	assert.Error(t, err)
	assert.Nil(t, processor)
}

func TestProcessor_ProcessJobBatch(t *testing.T) {
	ctx := context.Background()

	t.Run("sent", func(t *testing.T) {
		p := newTestProcessor(t)
		batch, sub := batchOf(t, jobMessage(0))

		assert.True(t, p.processor.ProcessJobBatch(ctx, batch))
		require.Contains(t, sub.settled, "m-1")
		assert.NoError(t, sub.settled["m-1"])

		require.Len(t, p.sender.batches, 1)
		sent := p.sender.batches[0]
		assert.Equal(t, "m-1", sent.ReferenceID)
		assert.Equal(t, "com.example.app", sent.BundleID)
		assert.JSONEq(t, `{"alert":"Hello Alice"}`, string(sent.Payload))
		assert.Equal(t, 1, p.jobs.progressed)
	})

	t.Run("expired", func(t *testing.T) {
		p := newTestProcessor(t)
		batch, sub := batchOf(t, jobMessage(now.Add(-time.Minute).UnixMilli()))

		assert.True(t, p.processor.ProcessJobBatch(ctx, batch))
		assert.NoError(t, sub.settled["m-1"])
		assert.Empty(t, p.sender.batches)
		assert.Equal(t, 1, p.jobs.completed)
		assert.Equal(t, 0, p.jobs.progressed)
	})

	t.Run("already completed", func(t *testing.T) {
		p := newTestProcessor(t)
		p.jobs.job.CompletedAt = &now
		batch, sub := batchOf(t, jobMessage(0))

		assert.True(t, p.processor.ProcessJobBatch(ctx, batch))
		assert.NoError(t, sub.settled["m-1"])
		assert.Empty(t, p.sender.batches)
	})

	t.Run("malformed message is dropped", func(t *testing.T) {
		p := newTestProcessor(t)
		batch, sub := batchOf(t, `not json`)

		assert.False(t, p.processor.ProcessJobBatch(ctx, batch))
		require.Contains(t, sub.settled, "m-1")
		assert.NoError(t, sub.settled["m-1"])
	})

	t.Run("missing job is dropped", func(t *testing.T) {
		p := newTestProcessor(t)
		p.jobs.job.ID = templateID
		batch, sub := batchOf(t, jobMessage(0))

		assert.False(t, p.processor.ProcessJobBatch(ctx, batch))
		assert.NoError(t, sub.settled["m-1"])
	})

	t.Run("database error is nacked", func(t *testing.T) {
		p := newTestProcessor(t)
		p.jobs.getErr = fmt.Errorf("connection reset")
		batch, sub := batchOf(t, jobMessage(0))

		assert.False(t, p.processor.ProcessJobBatch(ctx, batch))
		require.Contains(t, sub.settled, "m-1")
		assert.Error(t, sub.settled["m-1"])
	})

	t.Run("sender error is nacked", func(t *testing.T) {
		p := newTestProcessor(t)
		p.sender.err = fmt.Errorf("gateway timeout")
		batch, sub := batchOf(t, jobMessage(0))

		assert.False(t, p.processor.ProcessJobBatch(ctx, batch))
		assert.Error(t, sub.settled["m-1"])
		assert.Equal(t, 0, p.jobs.progressed)
	})

	t.Run("unknown batch type", func(t *testing.T) {
		p := newTestProcessor(t)
		assert.False(t, p.processor.ProcessJobBatch(ctx, otherBatch{}))
	})
}

func TestProcessor_ProcessJobBatch_Mail(t *testing.T) {
	ctx := context.Background()

	t.Run("completed once on the last batch", func(t *testing.T) {
		p := newTestProcessor(t)
		total := int64(2)
		p.jobs.job.TotalBatches = &total

		batch, _ := batchOf(t, jobMessage(0))
		assert.True(t, p.processor.ProcessJobBatch(ctx, batch))
		assert.Empty(t, p.mail.completed)

		batch, _ = batchOf(t, jobMessage(0))
		assert.True(t, p.processor.ProcessJobBatch(ctx, batch))
		require.Len(t, p.mail.completed, 1)
		assert.False(t, p.mail.completed[0].Expired)
		assert.EqualValues(t, 2, p.mail.completed[0].Job.CompletedBatches)

		// redelivered batch of completed job is skipped without email
		batch, _ = batchOf(t, jobMessage(0))
		assert.True(t, p.processor.ProcessJobBatch(ctx, batch))
		assert.Len(t, p.mail.completed, 1)
	})

	t.Run("expired", func(t *testing.T) {
		p := newTestProcessor(t)
		batch, _ := batchOf(t, jobMessage(now.Add(-time.Minute).UnixMilli()))

		assert.True(t, p.processor.ProcessJobBatch(ctx, batch))
		require.Len(t, p.mail.completed, 1)
		assert.True(t, p.mail.completed[0].Expired)
		assert.Equal(t, jobID, p.mail.completed[0].Job.ID)
	})

	t.Run("mail error still acknowledge the batch", func(t *testing.T) {
		p := newTestProcessor(t)
		p.mail.err = fmt.Errorf("smtp down")
		batch, sub := batchOf(t, jobMessage(0))

		assert.True(t, p.processor.ProcessJobBatch(ctx, batch))
		require.Contains(t, sub.settled, "m-1")
		assert.NoError(t, sub.settled["m-1"])
		assert.Len(t, p.mail.completed, 1)
	})

	t.Run("failed batch is not mailed", func(t *testing.T) {
		p := newTestProcessor(t)
		p.sender.err = fmt.Errorf("gateway timeout")
		batch, _ := batchOf(t, jobMessage(0))

		assert.False(t, p.processor.ProcessJobBatch(ctx, batch))
		assert.Empty(t, p.mail.completed)
	})
}

type otherBatch struct{}

func (otherBatch) ID() string               { return "other" }
func (otherBatch) Context() context.Context { return context.Background() }
