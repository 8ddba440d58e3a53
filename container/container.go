package container

import (
	"context"
	"fmt"

	"github.com/yusufsyaifudin/ylog"
	"go.uber.org/multierr"
)

// Container holds every connection opened from Config.
// Components created later (queue publisher, subscriber) register their closer here,
// so one Close call releases everything in reverse order.
type Container struct {
	ctx    context.Context
	conf   Config
	redis  *RedisConnMaker
	repos  *RepositoryImpl
	closer []Closer
}

// Setup connects all redis and database resources listed in config.
func Setup(ctx context.Context, conf Config) (c *Container, err error) {
	c = &Container{
		ctx:    ctx,
		conf:   conf,
		closer: make([]Closer, 0),
	}

	defer func() {
		if err == nil {
			return
		}

		if _err := c.Close(); _err != nil {
			err = multierr.Append(err, _err)
		}

		c = nil
	}()

	c.redis, err = NewRedisConnMaker(ctx, conf.Redis)
	if err != nil {
		err = fmt.Errorf("setup redis: %w", err)
		return
	}

	ylog.Info(ctx, "~ redis connected")

	c.repos, err = SetupRepositories(ctx, conf.DatabaseResources)
	if err != nil {
		err = fmt.Errorf("setup repositories: %w", err)
		return
	}

	ylog.Info(ctx, "~ database connected")
	return
}

func (c *Container) Config() Config {
	return c.conf
}

func (c *Container) Redis() *RedisConnMaker {
	return c.redis
}

func (c *Container) Repositories() Repositories {
	return c.repos
}

func (c *Container) register(closer Closer) {
	c.closer = append(c.closer, closer)
}

// Close release registered components first, then the repositories and redis connections.
func (c *Container) Close() error {
	if c == nil {
		return nil
	}

	var err error
	for i := len(c.closer) - 1; i >= 0; i-- {
		closer := c.closer[i]
		if e := closer.Close(); e != nil {
			err = multierr.Append(err, fmt.Errorf("close %s: %w", closer.Name(), e))
			continue
		}

		ylog.Debug(c.ctx, fmt.Sprintf("%s: success to close", closer.Name()))
	}

	if c.repos != nil {
		err = multierr.Append(err, c.repos.Close())
	}

	if c.redis != nil {
		err = multierr.Append(err, c.redis.CloseAll())
	}

	return err
}
