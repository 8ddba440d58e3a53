package batchsvc

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/yusufsyaifudin/marathon/pkg/pubsub"
	"github.com/yusufsyaifudin/marathon/pkg/validator"
	"github.com/yusufsyaifudin/marathon/pkg/worker"
)

type FetcherConfig struct {
	Subscriber  pubsub.ISubscriber `validate:"required"`
	PollTimeout time.Duration      `validate:"required"`
}

// Fetcher pull the next job message from the queue.
type Fetcher struct {
	config FetcherConfig
}

var _ worker.Fetcher = (*Fetcher)(nil)

func NewFetcher(cfg FetcherConfig) (*Fetcher, error) {
	if err := validator.Validate(cfg); err != nil {
		return nil, fmt.Errorf("batch fetcher config: %w", err)
	}

	return &Fetcher{config: cfg}, nil
}

// NextJobBatch waits at most poll timeout, then return nil batch when the queue is empty.
func (f *Fetcher) NextJobBatch(ctx context.Context) (worker.Batch, error) {
	pollCtx, cancel := context.WithTimeout(ctx, f.config.PollTimeout)
	defer cancel()

	delivery, err := f.config.Subscriber.Receive(pollCtx)
	if errors.Is(err, pubsub.ErrNoMessage) {
		return nil, nil
	}

	if err != nil {
		return nil, fmt.Errorf("receive job message: %w", err)
	}

	return NewJobBatch(ctx, delivery), nil
}
