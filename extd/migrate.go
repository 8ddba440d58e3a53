package extd

import (
	"context"
	"fmt"
	"time"

	"github.com/yusufsyaifudin/marathon/assets/migrations/pgsql"
	"github.com/yusufsyaifudin/marathon/container"
	"github.com/yusufsyaifudin/marathon/pkg/migration"
	"github.com/yusufsyaifudin/marathon/pkg/redislock"
	"github.com/yusufsyaifudin/ylog"
)

const migrationLockRetryDelay = 100 * time.Millisecond

// RunMigration applies (or reverts when down is true) every table migration on the job db label.
// The lock TTL comes from lock.ttl instead of redislock.LockTTL, migration may take longer than 100ms.
// Concurrent migrate process waits up to lock.ttl for the running one.
func RunMigration(ctx context.Context, cfg container.Config, down bool) (err error) {
	ctx, err = SetupLog(ctx, cfg.Log.Level)
	if err != nil {
		return
	}

	ylog.Info(ctx, "~ container preparation: starting")
	dep, err := container.Setup(ctx, cfg)
	if err != nil {
		ylog.Error(ctx, "~ container preparation: failed", ylog.KV("error", err))
		return
	}

	defer closeContainer(ctx, dep)

	db, err := dep.Repositories().SQL(cfg.Services.Job.DBLabel)
	if err != nil {
		ylog.Error(ctx, "~ migration db: failed", ylog.KV("error", err))
		return
	}

	redisClient, err := dep.Redis().Get(cfg.Lock.RedisLabel)
	if err != nil {
		ylog.Error(ctx, "~ migration lock: failed", ylog.KV("error", err))
		return
	}

	locker, err := redislock.New(redislock.Config{
		Redis:      redisClient,
		Key:        redislock.LockKey,
		TTL:        cfg.Lock.TTL,
		RetryCount: int(cfg.Lock.TTL / migrationLockRetryDelay),
		RetryDelay: migrationLockRetryDelay,
	})
	if err != nil {
		ylog.Error(ctx, "~ migration lock: failed", ylog.KV("error", err))
		return
	}

	immigration, err := migration.NewSQLImmigration(ctx, migration.SQLImmigrationConfig{
		Dialect:        "postgres",
		DB:             db.DB,
		MigrationTable: pgsql.TableName,
		Migrations:     pgsql.All(),
	})
	if err != nil {
		ylog.Error(ctx, "~ migration preparation: failed", ylog.KV("error", err))
		return
	}

	direction := "up"
	if down {
		direction = "down"
	}

	err = locker.WithCriticalSection(ctx, func(ctx context.Context) error {
		var n int
		var _err error
		if down {
			n, _err = immigration.Down(ctx)
		} else {
			n, _err = immigration.Up(ctx)
		}

		if _err != nil {
			return fmt.Errorf("migration %s: %w", direction, _err)
		}

		ylog.Info(ctx, fmt.Sprintf("~ migration %s: %d migrations applied", direction, n))
		return nil
	})
	if err != nil {
		ylog.Error(ctx, "~ migration: failed", ylog.KV("error", err))
		return
	}

	return
}
