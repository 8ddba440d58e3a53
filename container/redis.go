package container

import (
	"context"
	"fmt"
	"strings"

	"github.com/go-redis/redis/v8"
	"github.com/yusufsyaifudin/marathon/pkg/validator"
	"github.com/yusufsyaifudin/ylog"
	"go.uber.org/multierr"
)

// RedisConnMaker connects every configured redis label once and share the client.
type RedisConnMaker struct {
	ctx     context.Context
	conf    ConfigRedisResources
	clients map[string]redis.UniversalClient
	closer  []Closer
}

func NewRedisConnMaker(ctx context.Context, conf ConfigRedisResources) (*RedisConnMaker, error) {
	instance := &RedisConnMaker{
		ctx:     ctx,
		conf:    ConfigRedisResources{},
		clients: map[string]redis.UniversalClient{},
		closer:  make([]Closer, 0),
	}

	for key, connInfo := range conf {
		instance.conf[normalizeLabel(key)] = connInfo
	}

	err := instance.connect()
	if err != nil {
		// close previous opened connection if error happen
		if _err := instance.CloseAll(); _err != nil {
			err = fmt.Errorf("close redis error: %w: %s", err, _err)
		}

		return nil, err
	}

	return instance, nil
}

func (i *RedisConnMaker) connect() error {
	for key, connInfo := range i.conf {
		if err := validator.Var(key, "required,alphanum"); err != nil {
			return fmt.Errorf("error connecting to redis key '%s': %w", key, err)
		}

		redisClient, err := newRedisClient(connInfo)
		if err != nil {
			return fmt.Errorf("error connecting to redis key '%s': %w", key, err)
		}

		i.clients[key] = redisClient
		i.closer = append(i.closer, NewNamedCloser("redis "+key, redisClient)) // register the closer

		err = redisClient.Ping(i.ctx).Err()
		if err != nil {
			return fmt.Errorf("error ping redis %s: %w", key, err)
		}

		ylog.Debug(i.ctx, fmt.Sprintf("~ redis %s connected in %s mode", key, connInfo.Mode))
	}

	return nil
}

// Get return shared client, it is closed by CloseAll.
func (i *RedisConnMaker) Get(key string) (redis.UniversalClient, error) {
	key = normalizeLabel(key)
	v, ok := i.clients[key]
	if !ok {
		return nil, fmt.Errorf("key %s is not found in any redis topology", key)
	}

	return v, nil
}

// NewClient return new connection using the same config as key.
// The returned client is not shared and must be closed by the caller.
func (i *RedisConnMaker) NewClient(key string) (redis.UniversalClient, error) {
	key = normalizeLabel(key)
	connInfo, ok := i.conf[key]
	if !ok {
		return nil, fmt.Errorf("key %s is not found in any redis topology", key)
	}

	return newRedisClient(connInfo)
}

func (i *RedisConnMaker) CloseAll() error {
	ctx := i.ctx

	ylog.Debug(ctx, "redis: trying to close")

	var err error
	for _, closer := range i.closer {
		if closer == nil {
			continue
		}

		if e := closer.Close(); e != nil {
			err = multierr.Append(err, fmt.Errorf("%s: %w", closer.Name(), e))
			continue
		}

		ylog.Debug(ctx, fmt.Sprintf("redis: %s success to close", closer.Name()))
	}

	if err != nil {
		ylog.Error(ctx, "redis: some error occurred when closing dep", ylog.KV("error", err))
	}

	return err
}

func newRedisClient(connInfo ConfigRedisResource) (redis.UniversalClient, error) {
	if len(connInfo.Address) <= 0 {
		return nil, fmt.Errorf("empty redis address")
	}

	switch connInfo.Mode {
	case "single", "":
		return redis.NewClient(&redis.Options{
			Addr:     connInfo.Address[0],
			Username: connInfo.Username,
			Password: connInfo.Password,
			DB:       connInfo.DB,
		}), nil

	case "sentinel":
		return redis.NewFailoverClient(&redis.FailoverOptions{
			SentinelAddrs: connInfo.Address,
			Username:      connInfo.Username,
			Password:      connInfo.Password,
			DB:            connInfo.DB,
			MasterName:    connInfo.MasterName,
		}), nil

	case "cluster":
		// cluster mode is not support DB selection
		return redis.NewClusterClient(&redis.ClusterOptions{
			Addrs:    connInfo.Address,
			Username: connInfo.Username,
			Password: connInfo.Password,
		}), nil

	default:
		return nil, fmt.Errorf("unknown redis mode: %s", connInfo.Mode)
	}
}

func normalizeLabel(label string) string {
	return strings.TrimSpace(strings.ToLower(label))
}
