package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/segmentio/encoding/json"
	"github.com/yusufsyaifudin/marathon/pkg/validator"
)

type RedisConfig struct {
	DB        redis.UniversalClient `validate:"required"`
	KeyPrefix string                `validate:"-"`
}

type Redis struct {
	Conf RedisConfig
}

var _ Cache = (*Redis)(nil)

func NewRedis(conf RedisConfig) (*Redis, error) {
	err := validator.Validate(conf)
	if err != nil {
		err = fmt.Errorf("error validate cache redis: %w", err)
		return nil, err
	}

	return &Redis{Conf: conf}, nil
}

func (r *Redis) key(key string) string {
	if r.Conf.KeyPrefix == "" {
		return key
	}

	return r.Conf.KeyPrefix + key
}

func (r *Redis) GetAs(ctx context.Context, key string, out interface{}) error {
	val, err := r.Conf.DB.Get(ctx, r.key(key)).Bytes()
	if errors.Is(err, redis.Nil) {
		return fmt.Errorf("%w: %s", ErrKeyNotExist, key)
	}

	if err != nil {
		return fmt.Errorf("error occurred on redis: %w", err)
	}

	return json.Unmarshal(val, out)
}

func (r *Redis) SetExp(ctx context.Context, key string, inValue interface{}, expireDur time.Duration) error {
	val, err := json.Marshal(inValue)
	if err != nil {
		return fmt.Errorf("cannot marshal json value: %w", err)
	}

	if expireDur < 0 {
		expireDur = 0
	}

	return r.Conf.DB.Set(ctx, r.key(key), val, expireDur).Err()
}

func (r *Redis) Delete(ctx context.Context, key string) error {
	err := r.Conf.DB.Del(ctx, r.key(key)).Err()
	if err != nil {
		return fmt.Errorf("error occurred on redis: %w", err)
	}

	return nil
}
