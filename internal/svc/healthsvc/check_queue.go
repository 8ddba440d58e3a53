package healthsvc

import (
	"context"

	"github.com/yusufsyaifudin/marathon/pkg/pubsub"
)

// FuncChecker adapt a plain check function, such as kafka broker dial.
type FuncChecker struct {
	name string
	fn   func(ctx context.Context) error
}

var _ Checker = (*FuncChecker)(nil)

func NewFuncChecker(name string, fn func(ctx context.Context) error) *FuncChecker {
	return &FuncChecker{name: name, fn: fn}
}

func (f *FuncChecker) Name() string {
	return f.name
}

func (f *FuncChecker) Check(ctx context.Context) Report {
	if err := f.fn(ctx); err != nil {
		return down(err)
	}

	return up()
}

// NewPublisherChecker check the job queue publisher, kafka producer or redis job queue.
func NewPublisherChecker(name string, publisher pubsub.IPublisher) *FuncChecker {
	return NewFuncChecker(name, publisher.Check)
}

// NewKafkaClientChecker dial the brokers and read cluster metadata.
func NewKafkaClientChecker(name string, brokers []string) *FuncChecker {
	return NewFuncChecker(name, func(ctx context.Context) error {
		return pubsub.CheckKafkaBrokers(ctx, brokers)
	})
}
