package extd

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/satori/uuid"
	"github.com/yusufsyaifudin/marathon/pkg/tracer"
	"github.com/yusufsyaifudin/ylog"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// SetupLog set the global ylog logger and return ctx carrying the "system" tracer.
func SetupLog(ctx context.Context, level string) (context.Context, error) {
	return setupLog(ctx, os.Stdout, level)
}

func setupLog(ctx context.Context, w io.Writer, level string) (context.Context, error) {
	if ctx == nil {
		ctx = context.TODO()
	}

	var zapLevel zapcore.Level
	if err := zapLevel.UnmarshalText([]byte(strings.ToLower(level))); err != nil {
		return ctx, fmt.Errorf("unknown log level '%s': %w", level, err)
	}

	core := zapcore.NewCore(
		zapcore.NewJSONEncoder(zapcore.EncoderConfig{
			TimeKey:        "ts",
			MessageKey:     "msg",
			EncodeDuration: zapcore.MillisDurationEncoder,
			EncodeTime:     zapcore.RFC3339NanoTimeEncoder,
			LineEnding:     zapcore.DefaultLineEnding,
			LevelKey:       "level",
			EncodeLevel:    zapcore.LowercaseLevelEncoder,
		}),
		zapcore.NewMultiWriteSyncer(zapcore.AddSync(w)), // pipe to multiple writer
		zapLevel,
	)

	zapLog := zap.New(core)

	propagateData := tracer.LogData{
		RemoteAddr: "system",
		TraceID:    uuid.NewV4().String(),
	}

	traceLog, err := ylog.NewTracer(propagateData, ylog.WithTag("tracer"))
	if err != nil {
		return ctx, fmt.Errorf("error prepare tracer system data: %w", err)
	}

	// inject context
	ctx = ylog.Inject(ctx, traceLog)

	// ** set global logger
	ylog.SetGlobalLogger(ylog.NewZap(zapLog))
	return ctx, nil
}
