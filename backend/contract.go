package backend

import (
	"context"
	"fmt"
)

const (
	ServiceAPNS = "apns"
	ServiceGCM  = "gcm"
)

var (
	ErrServiceAlreadyRegistered = fmt.Errorf("service already registered")
	ErrServiceNotRegistered     = fmt.Errorf("service not registered")

	// ErrInvalidBatch means the batch or its payload can never be sent as is.
	ErrInvalidBatch = fmt.Errorf("invalid batch")
)

// Sender deliver one rendered batch to a push notification service.
type Sender interface {
	Send(ctx context.Context, batch *Batch) (report *Report, err error)

	// ValidatePayload only check the rendered payload, it must not call the remote service.
	ValidatePayload(ctx context.Context, payload []byte) (err error)
}

// SenderMux route a batch to the Sender registered for the batch service.
type SenderMux interface {
	Send(ctx context.Context, batch *Batch) (report *Report, err error)

	// Services return all registered service names, sorted.
	Services(ctx context.Context) (services []string)
}

type Batch struct {
	ReferenceID string `validate:"required"`
	JobID       string `validate:"required"`
	BundleID    string `validate:"required"`
	Service     string `validate:"required"`
	Payload     []byte `validate:"required"`
}

type Report struct {
	ReferenceID  string `json:"referenceId"`
	Service      string `json:"service"`
	SuccessCount int    `json:"successCount"`
	FailureCount int    `json:"failureCount"`
}
