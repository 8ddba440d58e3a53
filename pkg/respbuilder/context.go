package respbuilder

import "context"

type tracerCtxKey struct{}

// Tracer identifies the request in every response envelope and the Tracer-ID header.
type Tracer struct {
	RemoteAddr string
	TraceID    string
}

func Inject(ctx context.Context, t Tracer) context.Context {
	return context.WithValue(ctx, tracerCtxKey{}, t)
}

// TracerFrom returns zero Tracer when ctx has none, the response is still written without trace id.
func TracerFrom(ctx context.Context) Tracer {
	if ctx == nil {
		return Tracer{}
	}

	t, _ := ctx.Value(tracerCtxKey{}).(Tracer)
	return t
}
