package backend

import (
	"context"
	"fmt"

	"github.com/segmentio/encoding/json"
	"github.com/yusufsyaifudin/ylog"
)

// NoopSender accept every valid batch without delivering it anywhere.
type NoopSender struct {
	service string
}

var _ Sender = (*NoopSender)(nil)

func NewNoopSender(service string) *NoopSender {
	return &NoopSender{service: service}
}

func (b *NoopSender) Send(ctx context.Context, batch *Batch) (report *Report, err error) {
	ylog.Debug(ctx, "noop sender skip delivery",
		ylog.KV("service", b.service),
		ylog.KV("jobId", batch.JobID),
		ylog.KV("bundleId", batch.BundleID),
	)

	report = &Report{
		ReferenceID:  batch.ReferenceID,
		Service:      b.service,
		SuccessCount: 1,
		FailureCount: 0,
	}

	return
}

func (b *NoopSender) ValidatePayload(_ context.Context, payload []byte) (err error) {
	var message map[string]interface{}
	err = json.Unmarshal(payload, &message)
	if err != nil {
		err = fmt.Errorf("malformed %s payload: %w", b.service, err)
		return
	}

	return
}
