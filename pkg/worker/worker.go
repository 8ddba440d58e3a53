package worker

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/yusufsyaifudin/marathon/pkg/metric"
	"github.com/yusufsyaifudin/marathon/pkg/validator"
	"github.com/yusufsyaifudin/ylog"
)

// Batch is a unit of job work returned by Fetcher.
type Batch interface {
	ID() string
	Context() context.Context
}

type Fetcher interface {
	// NextJobBatch return nil batch and nil error when nothing to process yet.
	NextJobBatch(ctx context.Context) (Batch, error)
}

type Processor interface {
	// ProcessJobBatch return false when the batch was not processed, the loop then sleeps before next iteration.
	ProcessJobBatch(ctx context.Context, batch Batch) bool
}

type Config struct {
	LoopTimeout time.Duration `validate:"required"`
	Fetcher     Fetcher       `validate:"required"`
	Processor   Processor     `validate:"required"`
}

// Loop is single sequential fetch-process cycle. There is no worker pool, one batch is processed at a time.
type Loop struct {
	config Config
}

func NewLoop(cfg Config) (*Loop, error) {
	if err := validator.Validate(cfg); err != nil {
		return nil, fmt.Errorf("worker loop config: %w", err)
	}

	return &Loop{config: cfg}, nil
}

// Run blocks until ctx is done.
func (l *Loop) Run(ctx context.Context) error {
	ylog.Info(ctx, fmt.Sprintf("~ worker loop started, loop timeout %s", l.config.LoopTimeout))

	for {
		if ctx.Err() != nil {
			ylog.Info(ctx, "~ worker loop stopped")
			return nil
		}

		if l.iteration(ctx) {
			continue
		}

		if !sleep(ctx, l.config.LoopTimeout) {
			ylog.Info(ctx, "~ worker loop stopped")
			return nil
		}
	}
}

// iteration returns true when one batch is processed, so the next iteration can run without sleep.
func (l *Loop) iteration(ctx context.Context) (processed bool) {
	t0 := time.Now()
	defer func() {
		result := "idle"
		if processed {
			result = "processed"
		}

		metric.WorkerIterationTotal.WithLabelValues(result).Inc()
		ylog.Debug(ctx, "worker iteration done",
			ylog.KV("result", result),
			ylog.KV("duration", time.Since(t0).String()),
		)
	}()

	batch, err := l.config.Fetcher.NextJobBatch(ctx)
	if err != nil {
		if !errors.Is(err, context.Canceled) && !errors.Is(err, context.DeadlineExceeded) {
			ylog.Error(ctx, "fetch next job batch error", ylog.KV("error", err))
		}
		return false
	}

	if batch == nil {
		return false
	}

	batchCtx := batch.Context()
	if batchCtx == nil {
		batchCtx = ctx
	}

	return l.config.Processor.ProcessJobBatch(batchCtx, batch)
}

func sleep(ctx context.Context, d time.Duration) bool {
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return false
	case <-timer.C:
		return true
	}
}
