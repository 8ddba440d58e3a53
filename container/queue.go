package container

import (
	"context"
	"errors"
	"fmt"

	"github.com/go-redis/redis/v8"
	"github.com/yusufsyaifudin/marathon/pkg/pubsub"
	"go.uber.org/multierr"
)

// Publisher creates job queue publisher based on queue.type, it is closed by Container.Close.
// Redis publisher gets its own client because asynq closes the client on shutdown.
func (c *Container) Publisher() (publisher pubsub.IPublisher, err error) {
	conf := c.conf
	switch conf.Queue.Type {
	case QueueKafka:
		var kafkaPublisher *pubsub.KafkaPublisher
		kafkaPublisher, err = pubsub.NewKafkaPublisher(pubsub.KafkaPublisherConfig{
			Brokers:  conf.Kafka.Brokers,
			Topic:    conf.Kafka.Topic,
			ClientID: conf.Kafka.ClientID,
		})
		if err != nil {
			return
		}

		publisher = kafkaPublisher
		c.register(NewShutdownCloser(c.ctx, "queue publisher kafka", publisher.Shutdown))
		return

	case QueueRedis:
		redisClient, _err := c.redis.NewClient(conf.Queue.RedisLabel)
		if _err != nil {
			err = fmt.Errorf("queue redis label: %w", _err)
			return
		}

		var redisPublisher *pubsub.RedisPublisher
		redisPublisher, err = pubsub.NewRedisPublisher(pubsub.RedisPublisherConfig{
			RedisClient: redisClient,
			QueueName:   conf.Kafka.Topic,
		})
		if err != nil {
			_ = redisClient.Close()
			return
		}

		publisher = redisPublisher
		c.register(NewShutdownCloser(c.ctx, "queue publisher redis", shutdownWithClient(redisPublisher.Shutdown, redisClient)))
		return

	default:
		err = fmt.Errorf("unknown queue type '%s'", conf.Queue.Type)
		return
	}
}

// Subscriber creates job queue subscriber based on queue.type, it is closed by Container.Close.
func (c *Container) Subscriber() (subscriber pubsub.ISubscriber, err error) {
	conf := c.conf
	switch conf.Queue.Type {
	case QueueKafka:
		var kafkaSubscriber *pubsub.KafkaSubscriber
		kafkaSubscriber, err = pubsub.NewKafkaSubscriber(pubsub.KafkaSubscriberConfig{
			Brokers: conf.Kafka.Brokers,
			Topic:   conf.Kafka.Topic,
			GroupID: conf.Kafka.GroupID,
		})
		if err != nil {
			return
		}

		subscriber = kafkaSubscriber
		c.register(NewShutdownCloser(c.ctx, "queue subscriber kafka", subscriber.Shutdown))
		return

	case QueueRedis:
		redisClient, _err := c.redis.NewClient(conf.Queue.RedisLabel)
		if _err != nil {
			err = fmt.Errorf("queue redis label: %w", _err)
			return
		}

		var redisSubscriber *pubsub.RedisSubscriber
		redisSubscriber, err = pubsub.NewRedisSubscriber(pubsub.RedisSubscriberConfig{
			RedisClient: redisClient,
			QueueName:   conf.Kafka.Topic,
		})
		if err != nil {
			_ = redisClient.Close()
			return
		}

		subscriber = redisSubscriber
		c.register(NewShutdownCloser(c.ctx, "queue subscriber redis", shutdownWithClient(redisSubscriber.Shutdown, redisClient)))
		return

	default:
		err = fmt.Errorf("unknown queue type '%s'", conf.Queue.Type)
		return
	}
}

// shutdownWithClient stops asynq component then close its dedicated client.
// The client may already be closed by asynq, that is not an error.
func shutdownWithClient(shutdown func(ctx context.Context) error, client redis.UniversalClient) func(ctx context.Context) error {
	return func(ctx context.Context) error {
		err := shutdown(ctx)
		if _err := client.Close(); _err != nil && !errors.Is(_err, redis.ErrClosed) {
			err = multierr.Append(err, _err)
		}

		return err
	}
}
