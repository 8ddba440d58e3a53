package container

import (
	"fmt"

	"github.com/yusufsyaifudin/marathon/internal/svc/healthsvc"
	"github.com/yusufsyaifudin/marathon/pkg/pubsub"
)

// SetupHealth list connectors used by API process.
// Redis is checked using lock.redisLabel and postgres using the job db label.
func SetupHealth(conf Config, repos Repositories, redisConn *RedisConnMaker, publisher pubsub.IPublisher) (*healthsvc.DefaultService, error) {
	if repos == nil || redisConn == nil {
		return nil, fmt.Errorf("health service needs repositories and redis connection")
	}

	redisClient, err := redisConn.Get(conf.Lock.RedisLabel)
	if err != nil {
		return nil, fmt.Errorf("health redis: %w", err)
	}

	db, err := repos.SQL(conf.Services.Job.DBLabel)
	if err != nil {
		return nil, fmt.Errorf("health postgres: %w", err)
	}

	checkers := []healthsvc.Checker{
		healthsvc.NewRedisChecker(healthsvc.NameRedis, redisClient),
		healthsvc.NewPostgresChecker(healthsvc.NamePostgres, db),
	}

	switch conf.Queue.Type {
	case QueueKafka:
		checkers = append(checkers,
			healthsvc.NewKafkaClientChecker(healthsvc.NameAPIKafkaClient, conf.Kafka.Brokers),
			healthsvc.NewPublisherChecker(healthsvc.NameAPIKafkaProducer, publisher),
		)

	default:
		checkers = append(checkers, healthsvc.NewPublisherChecker(healthsvc.NameJobQueue, publisher))
	}

	return healthsvc.New(healthsvc.DefaultServiceConfig{
		Checkers: checkers,
	})
}
