package extd

import (
	"context"
	"fmt"

	"github.com/yusufsyaifudin/marathon/container"
	"github.com/yusufsyaifudin/marathon/pkg/tracer"
	"github.com/yusufsyaifudin/ylog"
	jaegerPropagator "go.opentelemetry.io/contrib/propagators/jaeger"
	"go.opentelemetry.io/contrib/propagators/ot"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/jaeger"
	"go.opentelemetry.io/otel/propagation"
)

// setupTracer register jaeger exporter when endpoint is set, the returned func flush remaining spans.
// Propagator is always registered so incoming trace headers are kept.
func setupTracer(ctx context.Context, cfg container.Config) (shutdown func(), err error) {
	shutdown = func() {}

	// register ot propagator
	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(
		propagation.TraceContext{},
		&ot.OT{},
		&jaegerPropagator.Jaeger{},
	))

	if cfg.Tracer.JaegerEndpoint == "" {
		ylog.Info(ctx, "~ jaeger exporter disabled")
		return
	}

	exp, err := jaeger.New(
		jaeger.WithCollectorEndpoint(jaeger.WithEndpoint(cfg.Tracer.JaegerEndpoint)),
	)
	if err != nil {
		err = fmt.Errorf("cannot setup jaeger exporter: %w", err)
		return
	}

	tp := tracer.InitTraceProvider(exp, cfg.App.Env)
	shutdown = func() {
		if _err := tp.Shutdown(ctx); _err != nil {
			ylog.Error(ctx, "~ trace provider shutdown error", ylog.KV("error", _err))
		}
	}

	ylog.Info(ctx, fmt.Sprintf("~ jaeger exporter sending to %s", cfg.Tracer.JaegerEndpoint))
	return
}
