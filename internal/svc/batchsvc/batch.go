package batchsvc

import (
	"context"

	"github.com/satori/uuid"
	"github.com/yusufsyaifudin/marathon/pkg/pubsub"
	"github.com/yusufsyaifudin/marathon/pkg/tracer"
	"github.com/yusufsyaifudin/marathon/pkg/worker"
	"github.com/yusufsyaifudin/ylog"
)

// JobBatch is one queue message. A submitted job is always sent as one batch.
type JobBatch struct {
	ctx      context.Context
	id       string
	delivery *pubsub.Delivery
}

var _ worker.Batch = (*JobBatch)(nil)

func NewJobBatch(ctx context.Context, delivery *pubsub.Delivery) *JobBatch {
	id := delivery.Message.LoggableID
	if id == "" {
		id = uuid.NewV4().String()
	}

	traceLog, err := ylog.NewTracer(tracer.LogData{
		TraceID: uuid.NewV4().String(),
		JobID:   delivery.Message.Key,
	}, ylog.WithTag("tracer"))
	if err == nil {
		ctx = ylog.Inject(ctx, traceLog)
	}

	return &JobBatch{
		ctx:      ctx,
		id:       id,
		delivery: delivery,
	}
}

func (b *JobBatch) ID() string {
	return b.id
}

func (b *JobBatch) Context() context.Context {
	return b.ctx
}

func (b *JobBatch) Delivery() *pubsub.Delivery {
	return b.delivery
}
