package extd

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/yusufsyaifudin/marathon/container"
	"github.com/yusufsyaifudin/marathon/pkg/metric"
	"github.com/yusufsyaifudin/marathon/transport/restapi"
	"github.com/yusufsyaifudin/ylog"
	"golang.org/x/net/http2"
	"golang.org/x/net/http2/h2c"
)

const shutdownTimeout = 10 * time.Second

// RunServer located in extd (extended) so the bootstrap can be reused by custom main package.
// It blocks until SIGINT/SIGTERM or the HTTP server stops.
func RunServer(ctx context.Context, cfg container.Config) (err error) {
	ctx, err = SetupLog(ctx, cfg.Log.Level)
	if err != nil {
		return
	}

	shutdownTracer, err := setupTracer(ctx, cfg)
	if err != nil {
		ylog.Error(ctx, "~ tracer preparation: failed", ylog.KV("error", err))
		return
	}

	defer shutdownTracer()

	err = metric.Register(prometheus.DefaultRegisterer)
	if err != nil {
		ylog.Error(ctx, "~ metric registration: failed", ylog.KV("error", err))
		return
	}

	// ** setup container
	ylog.Info(ctx, "~ container preparation: starting")
	dep, err := container.Setup(ctx, cfg)
	if err != nil {
		ylog.Error(ctx, "~ container preparation: failed", ylog.KV("error", err))
		return
	}

	defer closeContainer(ctx, dep)

	publisher, err := dep.Publisher()
	if err != nil {
		ylog.Error(ctx, "~ queue publisher preparation: failed", ylog.KV("error", err))
		return
	}

	mail, err := dep.Mail()
	if err != nil {
		ylog.Error(ctx, "~ mail preparation: failed", ylog.KV("error", err))
		return
	}

	// ** START SERVICES using configured repositories
	ylog.Info(ctx, "~ services preparation: starting")
	services, err := container.SetupServices(cfg, dep.Repositories(), dep.Redis(), publisher, mail)
	if err != nil {
		ylog.Error(ctx, "~ services preparation: failed", ylog.KV("error", err))
		return
	}

	healthService, err := container.SetupHealth(cfg, dep.Repositories(), dep.Redis(), publisher)
	if err != nil {
		ylog.Error(ctx, "~ health service preparation: failed", ylog.KV("error", err))
		return
	}

	// ** HTTP TRANSPORT
	ylog.Info(ctx, "~ http transport: starting")
	server, err := restapi.NewHTTPTransport(restapi.Config{
		AppService:      services.App(),
		TemplateService: services.Template(),
		JobService:      services.Job(),
		HealthService:   healthService,
	})
	if err != nil {
		ylog.Error(ctx, "~ http transport: failed", ylog.KV("error", err))
		return
	}

	httpServer := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Transport.HTTP.Port),
		Handler:           h2c.NewHandler(server.Server(), &http2.Server{}), // HTTP/2 Cleartext handler
		ReadHeaderTimeout: 10 * time.Second,
	}

	var apiErrChan = make(chan error, 1)
	go func() {
		ylog.Info(ctx, fmt.Sprintf("~ http transport: running on port %d", cfg.Transport.HTTP.Port))
		apiErrChan <- httpServer.ListenAndServe()
	}()

	ylog.Info(ctx, "~ system: up and running...")

	// ** listen for sigterm signal
	var signalChan = make(chan os.Signal, 1)
	signal.Notify(signalChan, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(signalChan)

	select {
	case <-signalChan:
		ylog.Info(ctx, "~ system: exiting...")

		shutdownCtx, cancel := context.WithTimeout(ctx, shutdownTimeout)
		defer cancel()

		if _err := httpServer.Shutdown(shutdownCtx); _err != nil {
			ylog.Error(ctx, "~ http transport: shutdown error", ylog.KV("error", _err))
		}

	case _err := <-apiErrChan:
		if _err != nil && !errors.Is(_err, http.ErrServerClosed) {
			err = fmt.Errorf("http transport: %w", _err)
			ylog.Error(ctx, "~ http transport: error", ylog.KV("error", err))
		}
	}

	return
}

func closeContainer(ctx context.Context, dep *container.Container) {
	ylog.Info(ctx, "~ closing container: starting")
	if _err := dep.Close(); _err != nil {
		ylog.Error(ctx, "~ closing container: failed", ylog.KV("error", _err))
		return
	}

	ylog.Info(ctx, "~ closing container: done")
}
