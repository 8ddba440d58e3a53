package redislock

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/bsm/redislock"
	"github.com/go-redis/redis/v8"
	"github.com/yusufsyaifudin/marathon/pkg/validator"
	"github.com/yusufsyaifudin/ylog"
)

const (
	LockKey    = "lock::matchmaking"
	LockTTL    = 100 * time.Millisecond
	RetryCount = 50
	RetryDelay = 10 * time.Millisecond
)

var (
	ErrNotObtained = errors.New("cannot obtain lock")
)

type Config struct {
	Redis      redis.UniversalClient `validate:"required"`
	Key        string                `validate:"-"`
	TTL        time.Duration         `validate:"-"`
	RetryCount int                   `validate:"min=0"`
	RetryDelay time.Duration         `validate:"-"`
}

type Locker struct {
	client *redislock.Client
	key    string
	ttl    time.Duration
	retry  redislock.RetryStrategy
}

// New prepare Locker, zero value in config fallback to LockKey, LockTTL, RetryCount and RetryDelay.
func New(cfg Config) (*Locker, error) {
	if err := validator.Validate(cfg); err != nil {
		return nil, fmt.Errorf("redis lock config: %w", err)
	}

	if cfg.Key == "" {
		cfg.Key = LockKey
	}

	if cfg.TTL <= 0 {
		cfg.TTL = LockTTL
	}

	if cfg.RetryCount <= 0 {
		cfg.RetryCount = RetryCount
	}

	if cfg.RetryDelay <= 0 {
		cfg.RetryDelay = RetryDelay
	}

	return &Locker{
		client: redislock.New(cfg.Redis),
		key:    cfg.Key,
		ttl:    cfg.TTL,
		retry:  redislock.LimitRetry(redislock.LinearBackoff(cfg.RetryDelay), cfg.RetryCount),
	}, nil
}

// WithCriticalSection run fn only when the lock is acquired, the lock is always released after fn returns.
// Fn must finish before lock TTL, otherwise another process may enter the same section.
func (l *Locker) WithCriticalSection(ctx context.Context, fn func(ctx context.Context) error) (err error) {
	lock, err := l.client.Obtain(ctx, l.key, l.ttl, &redislock.Options{
		RetryStrategy: l.retry,
	})
	if errors.Is(err, redislock.ErrNotObtained) {
		err = fmt.Errorf("%w: %s", ErrNotObtained, l.key)
		return
	}

	if err != nil {
		err = fmt.Errorf("obtain lock %s: %w", l.key, err)
		return
	}

	defer func() {
		_err := lock.Release(ctx)
		if _err == nil || errors.Is(_err, redislock.ErrLockNotHeld) {
			return
		}

		ylog.Error(ctx, "release lock error", ylog.KV("key", l.key), ylog.KV("error", _err))
	}()

	err = fn(ctx)
	return
}
