package multidb

import (
	"context"

	sqldblogger "github.com/simukti/sqldb-logger"
	"github.com/yusufsyaifudin/ylog"
)

// QueryLogger pipe sqldb-logger output into ylog, so query log carry the same trace id as the request.
type QueryLogger struct{}

func (q *QueryLogger) Log(ctx context.Context, level sqldblogger.Level, msg string, data map[string]interface{}) {
	switch level {
	case sqldblogger.LevelError:
		ylog.Error(ctx, msg, ylog.KV("sql", data))
	default:
		ylog.Debug(ctx, msg, ylog.KV("level", level.String()), ylog.KV("sql", data))
	}
}

var _ sqldblogger.Logger = (*QueryLogger)(nil)
