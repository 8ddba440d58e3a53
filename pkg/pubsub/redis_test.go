package pubsub

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redis/v8"
	"github.com/hibiken/asynq"
	"github.com/segmentio/encoding/json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func prepareMiniRedis(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	s := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{
		Addr: s.Addr(),
	})

	return s, client
}

func TestNewRedisPublisher(t *testing.T) {
	p, err := NewRedisPublisher(RedisPublisherConfig{})
	assert.Nil(t, p)
	assert.Error(t, err)
}

func TestRedisPublisher_Publish(t *testing.T) {
	s, conn := prepareMiniRedis(t)
	p, err := NewRedisPublisher(RedisPublisherConfig{
		RedisClient: conn,
		QueueName:   "marathonjobs",
	})
	require.NoError(t, err)

	msg := &Message{Key: "job-1", Body: []byte(`{"jobId":"job-1"}`)}
	err = p.Publish(context.Background(), msg)
	require.NoError(t, err)
	assert.Equal(t, "job-1", msg.LoggableID)

	pending, err := s.List("asynq:{marathonjobs}:pending")
	require.NoError(t, err)
	assert.Len(t, pending, 1)

	t.Run("task is never retried", func(t *testing.T) {
		inspector := asynq.NewInspector(asynq.RedisClientOpt{Addr: s.Addr()})
		defer inspector.Close()

		info, err := inspector.GetTaskInfo("marathonjobs", "job-1")
		require.NoError(t, err)
		assert.Equal(t, 0, info.MaxRetry)
	})

	t.Run("same key is rejected", func(t *testing.T) {
		err := p.Publish(context.Background(), &Message{Key: "job-1", Body: []byte(`{}`)})
		assert.True(t, IsDuplicate(err))
	})

	t.Run("check", func(t *testing.T) {
		assert.NoError(t, p.Check(context.Background()))
	})

	t.Run("closed", func(t *testing.T) {
		require.NoError(t, p.Shutdown(context.Background()))
		assert.ErrorIs(t, p.Publish(context.Background(), msg), ErrClosed)
	})
}

func TestRedisSubscriber_Handle(t *testing.T) {
	_, conn := prepareMiniRedis(t)
	sub, err := NewRedisSubscriber(RedisSubscriberConfig{
		RedisClient: conn,
		QueueName:   "marathonjobs",
	})
	require.NoError(t, err)

	// mark as started, so Receive does not spawn the real asynq server
	sub.started = 1

	payload, err := json.Marshal(redisPayload{Key: "job-1", Body: []byte(`{"a":1}`)})
	require.NoError(t, err)

	t.Run("ack", func(t *testing.T) {
		result := make(chan error, 1)
		go func() {
			result <- sub.handle(context.Background(), asynq.NewTask(RedisTaskType, payload))
		}()

		ctx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()

		d, err := sub.Receive(ctx)
		require.NoError(t, err)
		assert.Equal(t, "job-1", d.Message.Key)
		assert.Equal(t, []byte(`{"a":1}`), d.Message.Body)

		require.NoError(t, d.Ack(ctx))
		assert.NoError(t, <-result)
	})

	t.Run("nack", func(t *testing.T) {
		result := make(chan error, 1)
		go func() {
			result <- sub.handle(context.Background(), asynq.NewTask(RedisTaskType, payload))
		}()

		ctx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()

		d, err := sub.Receive(ctx)
		require.NoError(t, err)

		reason := errors.New("cannot process")
		require.NoError(t, d.Nack(ctx, reason))
		assert.ErrorIs(t, <-result, reason)
	})

	t.Run("broken payload", func(t *testing.T) {
		err := sub.handle(context.Background(), asynq.NewTask(RedisTaskType, []byte("{")))
		assert.ErrorIs(t, err, asynq.SkipRetry)
	})

	t.Run("no message", func(t *testing.T) {
		ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
		defer cancel()

		d, err := sub.Receive(ctx)
		assert.Nil(t, d)
		assert.ErrorIs(t, err, ErrNoMessage)
	})
}
