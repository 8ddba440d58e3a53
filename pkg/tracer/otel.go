package tracer

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"

	"github.com/yusufsyaifudin/marathon/pkg/validator"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.12.0"
	"go.opentelemetry.io/otel/trace"
)

// ServiceName is the name reported to the tracing backend.
const ServiceName = "marathon"

func StartSpan(ctx context.Context, spanName string, opts ...trace.SpanStartOption) (context.Context, trace.Span) {
	return otel.GetTracerProvider().Tracer(ServiceName).Start(ctx, spanName, opts...)
}

// InitTraceProvider set global tracer provider which batch every span into exp.
// The returned provider must be shutdown to flush the remaining spans.
func InitTraceProvider(exp sdktrace.SpanExporter, env string) *sdktrace.TracerProvider {
	if env == "" {
		env = "development"
	}

	tp := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exp),
		sdktrace.WithResource(resource.NewWithAttributes(
			semconv.SchemaURL,
			semconv.ServiceNameKey.String(ServiceName),
			attribute.String("environment", env),
		)),
	)

	otel.SetTracerProvider(tp)
	return tp
}

type MiddlewareConfig struct {
	TracerName     string                        `validate:"required"`
	ServiceName    string                        `validate:"required"`
	SkipFunc       func(r *http.Request) bool    `validate:"-"`
	TracerProvider trace.TracerProvider          `validate:"required"`
	TextPropagator propagation.TextMapPropagator `validate:"required"`
}

// Middleware start server span for each request and write the trace context back into response header.
// Invalid config makes it a pass-through middleware.
func Middleware(cfg MiddlewareConfig, next http.Handler) http.HandlerFunc {
	if err := validator.Validate(cfg); err != nil {
		return next.ServeHTTP
	}

	if cfg.SkipFunc == nil {
		cfg.SkipFunc = func(r *http.Request) bool {
			return false
		}
	}

	return func(w http.ResponseWriter, r *http.Request) {
		if cfg.SkipFunc(r) {
			next.ServeHTTP(w, r)
			return
		}

		ctx := cfg.TextPropagator.Extract(r.Context(), propagation.HeaderCarrier(r.Header))

		opts := []trace.SpanStartOption{
			trace.WithAttributes(semconv.NetAttributesFromHTTPRequest("tcp", r)...),
			trace.WithAttributes(semconv.EndUserAttributesFromHTTPRequest(r)...),
			trace.WithAttributes(semconv.HTTPServerAttributesFromHTTPRequest(cfg.ServiceName, r.URL.Path, r)...),
			trace.WithSpanKind(trace.SpanKindServer),
		}

		spanName := fmt.Sprintf("%s %s", r.Method, r.URL.Path)
		newCtx, span := cfg.TracerProvider.Tracer(cfg.TracerName).Start(ctx, spanName, opts...)
		defer span.End()

		rec := httptest.NewRecorder()
		next.ServeHTTP(rec, r.WithContext(newCtx))

		span.SetAttributes(semconv.HTTPAttributesFromHTTPStatusCode(rec.Code)...)
		span.SetStatus(semconv.SpanStatusFromHTTPStatusCodeAndSpanKind(rec.Code, trace.SpanKindServer))

		for k, v := range rec.Header() {
			w.Header()[k] = v
		}

		cfg.TextPropagator.Inject(newCtx, propagation.HeaderCarrier(w.Header()))

		w.WriteHeader(rec.Code)
		if _, err := bytes.NewReader(rec.Body.Bytes()).WriteTo(w); err != nil {
			span.RecordError(fmt.Errorf("write response body error: %w", err))
		}
	}
}
