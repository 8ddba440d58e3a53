package container

import (
	"context"
	"io"
)

type Closer interface {
	io.Closer

	Name() string
}

type NamedCloser struct {
	name   string
	closer func() error
}

var _ Closer = (*NamedCloser)(nil)

func NewNamedCloser(name string, closer io.Closer) *NamedCloser {
	return &NamedCloser{
		name:   name,
		closer: closer.Close,
	}
}

// NewShutdownCloser adapts component which stopped by Shutdown(ctx), i.e: queue publisher and subscriber.
func NewShutdownCloser(ctx context.Context, name string, fn func(ctx context.Context) error) *NamedCloser {
	return &NamedCloser{
		name: name,
		closer: func() error {
			return fn(ctx)
		},
	}
}

func (d *NamedCloser) Close() error {
	return d.closer()
}

func (d *NamedCloser) Name() string {
	return d.name
}
