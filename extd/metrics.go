package extd

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/yusufsyaifudin/marathon/pkg/metric"
	"github.com/yusufsyaifudin/ylog"
)

// serveMetrics listen on addr and serve GET /metrics in background.
// Listening is done before return, so a port conflict fails the caller immediately.
func serveMetrics(ctx context.Context, addr string) (listenAddr string, shutdown func(), err error) {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		err = fmt.Errorf("metrics listen %s: %w", addr, err)
		return
	}

	router := chi.NewRouter()
	router.Get("/metrics", metric.Handler().ServeHTTP)

	server := &http.Server{
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		if _err := server.Serve(ln); _err != nil && !errors.Is(_err, http.ErrServerClosed) {
			ylog.Error(ctx, "~ metrics server: error", ylog.KV("error", _err))
		}
	}()

	listenAddr = ln.Addr().String()
	shutdown = func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()

		if _err := server.Shutdown(shutdownCtx); _err != nil {
			ylog.Error(ctx, "~ metrics server: shutdown error", ylog.KV("error", _err))
		}
	}

	return
}
