// Package pubsub is the job queue used between API and worker.
// Publisher is push based, while subscriber is pull based so the caller controls the polling pace.
package pubsub

import (
	"context"
	"errors"
	"sync"
)

var (
	// ErrNoMessage returned by Receive when no message arrives until context is done.
	ErrNoMessage = errors.New("no message available")

	ErrClosed = errors.New("queue is closed")
)

type Message struct {
	// LoggableID will be set to an opaque message identifier for
	// received messages, useful for debug logging. No assumptions should
	// be made about the content.
	LoggableID string

	// Key is used as partition key (kafka) or unique task id (redis), empty is allowed.
	Key string

	// Body contains the content of the message.
	Body []byte
}

type IPublisher interface {
	Publish(ctx context.Context, msg *Message) (err error)
	Check(ctx context.Context) (err error)
	Shutdown(ctx context.Context) (err error)
}

type ISubscriber interface {
	// Receive blocks until one message arrives or ctx is done.
	// Every returned Delivery must be settled by Ack or Nack.
	Receive(ctx context.Context) (*Delivery, error)
	Shutdown(ctx context.Context) error
}

// Delivery is a received message waiting to be settled.
type Delivery struct {
	Message *Message

	once   sync.Once
	settle func(ctx context.Context, err error) error
}

func NewDelivery(msg *Message, settle func(ctx context.Context, err error) error) *Delivery {
	return &Delivery{
		Message: msg,
		settle:  settle,
	}
}

// Ack mark message as done. Only the first Ack or Nack takes effect.
func (d *Delivery) Ack(ctx context.Context) (err error) {
	d.once.Do(func() {
		if d.settle != nil {
			err = d.settle(ctx, nil)
		}
	})
	return
}

// Nack mark message as failed with reason. Only the first Ack or Nack takes effect.
func (d *Delivery) Nack(ctx context.Context, reason error) (err error) {
	if reason == nil {
		reason = errors.New("message is not acknowledged")
	}

	d.once.Do(func() {
		if d.settle != nil {
			err = d.settle(ctx, reason)
		}
	})
	return
}

func isTimeout(ctx context.Context, err error) bool {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return true
	}

	return ctx.Err() != nil
}
