package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/hibiken/asynq"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/verandameister/quotedesk/internal/app"
	"github.com/verandameister/quotedesk/internal/document"
	jobmetrics "github.com/verandameister/quotedesk/internal/jobs"
	"github.com/verandameister/quotedesk/internal/quotes"
	"github.com/verandameister/quotedesk/jobs"
	"github.com/verandameister/quotedesk/report"
)

func main() {
	if app.InTestMode() {
		slog.Default().Info("test mode detected, skipping worker startup")
		return
	}

	_ = godotenv.Load()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := app.LoadConfig()
	if err != nil {
		slog.Default().Error("load config", slog.Any("error", err))
		os.Exit(1)
	}

	logger := app.NewLogger(cfg)
	metrics := jobmetrics.NewMetrics(nil)

	stores, err := app.OpenStores(ctx, cfg, logger, nil)
	if err != nil {
		logger.Error("open stores", slog.Any("error", err))
		os.Exit(1)
	}
	defer stores.Close()

	quoteService := quotes.NewService(stores.Fallback, logger)
	renderer := report.NewRenderer(document.DefaultCompany(), report.NewClient(cfg.GotenbergURL))
	archive := report.NewArchive(cfg.DocumentStorageDir)

	renderJob := jobs.NewDocumentRenderJob(quoteService, renderer, archive, logger, metrics)
	resyncJob := jobs.NewStoreResyncJob(stores.Fallback, logger, metrics)

	var cron []jobs.CronRegistration
	if cfg.ResyncCron != "" && cfg.RemoteEnabled() {
		resyncTask, err := jobs.NewStoreResyncTask()
		if err != nil {
			logger.Error("build resync task", slog.Any("error", err))
			os.Exit(1)
		}
		cron = append(cron, jobs.CronRegistration{Spec: cfg.ResyncCron, Task: resyncTask})
	}

	worker, err := jobs.NewWorker(jobs.WorkerConfig{
		RedisOpts: asynq.RedisClientOpt{Addr: cfg.RedisAddr},
		Logger:    logger,
		Handlers: []jobs.TaskHandler{
			{Type: jobs.TaskDocumentRender, Handler: renderJob.Handle},
			{Type: jobs.TaskStoreResync, Handler: resyncJob.Handle},
		},
		Cron: cron,
	})
	if err != nil {
		logger.Error("init worker", slog.Any("error", err))
		os.Exit(1)
	}

	if cfg.WorkerMetricsAddr != "" {
		metricsServer := &http.Server{Addr: cfg.WorkerMetricsAddr, Handler: promhttp.Handler(), ReadHeaderTimeout: cfg.AppReadTimeout}
		go func() {
			logger.Info("serving worker metrics", slog.String("addr", cfg.WorkerMetricsAddr))
			if err := metricsServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				logger.Warn("worker metrics server", slog.Any("error", err))
			}
		}()
		defer func() { _ = metricsServer.Close() }()
	}

	if err := worker.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("worker run", slog.Any("error", err))
		os.Exit(1)
	}
}
