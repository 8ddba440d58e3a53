package extd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/yusufsyaifudin/marathon/backend"
	"github.com/yusufsyaifudin/marathon/container"
	"github.com/yusufsyaifudin/marathon/internal/svc/batchsvc"
	"github.com/yusufsyaifudin/marathon/pkg/metric"
	"github.com/yusufsyaifudin/marathon/pkg/worker"
	"github.com/yusufsyaifudin/ylog"
)

// RunWorker polls the job queue until SIGINT/SIGTERM, metrics are served on worker.metricsPort meanwhile.
// Senders are no-op, register real backend in senderMux to deliver notification.
func RunWorker(ctx context.Context, cfg container.Config) (err error) {
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

	ylog.Info(ctx, "~ container preparation: starting")
	dep, err := container.Setup(ctx, cfg)
	if err != nil {
		ylog.Error(ctx, "~ container preparation: failed", ylog.KV("error", err))
		return
	}

	defer closeContainer(ctx, dep)

	jobRepo, err := dep.Repositories().JobRepo(cfg.Services.Job.DBLabel)
	if err != nil {
		ylog.Error(ctx, "~ job repo preparation: failed", ylog.KV("error", err))
		return
	}

	templateRepo, err := dep.Repositories().TemplateRepo(cfg.Services.Template.DBLabel)
	if err != nil {
		ylog.Error(ctx, "~ template repo preparation: failed", ylog.KV("error", err))
		return
	}

	subscriber, err := dep.Subscriber()
	if err != nil {
		ylog.Error(ctx, "~ queue subscriber preparation: failed", ylog.KV("error", err))
		return
	}

	fetcher, err := batchsvc.NewFetcher(batchsvc.FetcherConfig{
		Subscriber:  subscriber,
		PollTimeout: cfg.Worker.PollTimeout,
	})
	if err != nil {
		ylog.Error(ctx, "~ batch fetcher preparation: failed", ylog.KV("error", err))
		return
	}

	mail, err := dep.Mail()
	if err != nil {
		ylog.Error(ctx, "~ mail preparation: failed", ylog.KV("error", err))
		return
	}

	processor, err := batchsvc.NewProcessor(batchsvc.ProcessorConfig{
		JobRepo:      jobRepo,
		TemplateRepo: templateRepo,
		SenderMux:    backend.NewNoopSenderMux(),
		Mail:         mail,
	})
	if err != nil {
		ylog.Error(ctx, "~ batch processor preparation: failed", ylog.KV("error", err))
		return
	}

	loop, err := worker.NewLoop(worker.Config{
		LoopTimeout: cfg.Worker.LoopTimeout,
		Fetcher:     fetcher,
		Processor:   processor,
	})
	if err != nil {
		ylog.Error(ctx, "~ worker loop preparation: failed", ylog.KV("error", err))
		return
	}

	metricsAddr, shutdownMetrics, err := serveMetrics(ctx, fmt.Sprintf(":%d", cfg.Worker.MetricsPort))
	if err != nil {
		ylog.Error(ctx, "~ metrics server: failed", ylog.KV("error", err))
		return
	}

	defer shutdownMetrics()
	ylog.Info(ctx, fmt.Sprintf("~ metrics server: running on %s", metricsAddr))

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	ylog.Info(ctx, "~ system: worker up and running...")
	err = loop.Run(ctx)
	ylog.Info(ctx, "~ system: exiting...")
	return
}
