package pubsub

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"

	"github.com/go-redis/redis/v8"
	"github.com/hibiken/asynq"
	"github.com/segmentio/encoding/json"
	"github.com/yusufsyaifudin/marathon/pkg/validator"
	"github.com/yusufsyaifudin/ylog"
)

// RedisTaskType MUST BE STATIC, DON'T CHANGE AT RUN TIME, the running worker will not recognize old task.
const RedisTaskType = "marathon:job"

type redisPayload struct {
	Key  string `json:"key"`
	Body []byte `json:"body"`
}

type RedisPublisherConfig struct {
	RedisClient redis.UniversalClient `validate:"required"`
	QueueName   string                `validate:"required"`
}

type RedisPublisher struct {
	config    RedisPublisherConfig
	publisher *asynq.Client
	closed    int32
}

var _ IPublisher = (*RedisPublisher)(nil)

func NewRedisPublisher(conf RedisPublisherConfig) (*RedisPublisher, error) {
	err := validator.Validate(conf)
	if err != nil {
		return nil, fmt.Errorf("redis publisher config: %w", err)
	}

	client := &redisUniversalClient{
		conn: conf.RedisClient,
	}

	return &RedisPublisher{
		config:    conf,
		publisher: asynq.NewClient(client),
	}, nil
}

// Publish enqueue message into queue without retry.
// Non-empty Key is used as task id, so the same key is never enqueued twice while the task still exists.
func (r *RedisPublisher) Publish(ctx context.Context, msg *Message) (err error) {
	if atomic.LoadInt32(&r.closed) == 1 {
		return ErrClosed
	}

	if msg == nil {
		return fmt.Errorf("nil message")
	}

	payload, err := json.Marshal(redisPayload{Key: msg.Key, Body: msg.Body})
	if err != nil {
		return fmt.Errorf("marshal task payload: %w", err)
	}

	opts := []asynq.Option{
		asynq.Queue(r.config.QueueName),
		asynq.MaxRetry(0),
	}

	if msg.Key != "" {
		opts = append(opts, asynq.TaskID(msg.Key))
	}

	task := asynq.NewTask(RedisTaskType, payload, opts...)
	info, err := r.publisher.EnqueueContext(ctx, task)
	if err != nil {
		return fmt.Errorf("enqueue task to %s: %w", r.config.QueueName, err)
	}

	msg.LoggableID = info.ID
	return nil
}

// Check ping the redis used by the queue.
func (r *RedisPublisher) Check(ctx context.Context) error {
	if atomic.LoadInt32(&r.closed) == 1 {
		return ErrClosed
	}

	return r.config.RedisClient.Ping(ctx).Err()
}

func (r *RedisPublisher) Shutdown(_ context.Context) (err error) {
	if !atomic.CompareAndSwapInt32(&r.closed, 0, 1) {
		return nil
	}

	return r.publisher.Close()
}

type RedisSubscriberConfig struct {
	RedisClient redis.UniversalClient `validate:"required"`
	QueueName   string                `validate:"required"`
}

// RedisSubscriber run asynq server in background and hand over each task to Receive caller.
// The task handler blocks until the delivery is settled, so only one task is in-flight.
type RedisSubscriber struct {
	config     RedisSubscriberConfig
	server     *asynq.Server
	deliveries chan *Delivery
	started    int32
}

var _ ISubscriber = (*RedisSubscriber)(nil)

func NewRedisSubscriber(conf RedisSubscriberConfig) (*RedisSubscriber, error) {
	err := validator.Validate(conf)
	if err != nil {
		return nil, fmt.Errorf("redis subscriber config: %w", err)
	}

	client := &redisUniversalClient{
		conn: conf.RedisClient,
	}

	server := asynq.NewServer(client, asynq.Config{
		Concurrency: 1,
		Queues: map[string]int{
			conf.QueueName: 1,
		},
		Logger:   &asynqLogger{},
		LogLevel: asynq.WarnLevel,
	})

	return &RedisSubscriber{
		config:     conf,
		server:     server,
		deliveries: make(chan *Delivery),
	}, nil
}

func (r *RedisSubscriber) start() error {
	if !atomic.CompareAndSwapInt32(&r.started, 0, 1) {
		return nil
	}

	mux := asynq.NewServeMux()
	mux.HandleFunc(RedisTaskType, r.handle)

	if err := r.server.Start(mux); err != nil {
		atomic.StoreInt32(&r.started, 0)
		return fmt.Errorf("start asynq server: %w", err)
	}

	return nil
}

func (r *RedisSubscriber) handle(ctx context.Context, task *asynq.Task) error {
	var payload redisPayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		return fmt.Errorf("json.Unmarshal failed: %v: %w", err, asynq.SkipRetry)
	}

	loggableID, _ := asynq.GetTaskID(ctx)
	done := make(chan error, 1)
	delivery := NewDelivery(&Message{
		LoggableID: loggableID,
		Key:        payload.Key,
		Body:       payload.Body,
	}, func(_ context.Context, reason error) error {
		done <- reason
		return nil
	})

	select {
	case r.deliveries <- delivery:
	case <-ctx.Done():
		return ctx.Err()
	}

	select {
	case err := <-done:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (r *RedisSubscriber) Receive(ctx context.Context) (*Delivery, error) {
	if err := r.start(); err != nil {
		return nil, err
	}

	select {
	case d := <-r.deliveries:
		return d, nil
	case <-ctx.Done():
		return nil, ErrNoMessage
	}
}

// Shutdown stops the asynq server, which also closes the redis client given in config.
func (r *RedisSubscriber) Shutdown(_ context.Context) error {
	if atomic.LoadInt32(&r.started) == 1 {
		r.server.Shutdown()
	}

	return nil
}

// --- helper

type redisUniversalClient struct {
	conn redis.UniversalClient
}

func (r *redisUniversalClient) MakeRedisClient() interface{} {
	return r.conn
}

type asynqLogger struct{}

var _ asynq.Logger = (*asynqLogger)(nil)

func (a *asynqLogger) Debug(args ...interface{}) {
	ylog.Debug(context.Background(), fmt.Sprint(args...))
}

func (a *asynqLogger) Info(args ...interface{}) {
	ylog.Info(context.Background(), fmt.Sprint(args...))
}

func (a *asynqLogger) Warn(args ...interface{}) {
	ylog.Info(context.Background(), fmt.Sprint(args...), ylog.KV("level", "warn"))
}

func (a *asynqLogger) Error(args ...interface{}) {
	ylog.Error(context.Background(), fmt.Sprint(args...))
}

func (a *asynqLogger) Fatal(args ...interface{}) {
	ylog.Error(context.Background(), fmt.Sprint(args...), ylog.KV("fatal", true))
}

// IsDuplicate reports whether publish failed because message with same key is still queued.
func IsDuplicate(err error) bool {
	return errors.Is(err, asynq.ErrTaskIDConflict)
}
