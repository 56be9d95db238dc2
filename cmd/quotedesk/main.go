package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/hibiken/asynq"
	"github.com/joho/godotenv"

	"github.com/verandameister/quotedesk/internal/app"
	"github.com/verandameister/quotedesk/internal/auth"
	"github.com/verandameister/quotedesk/internal/catalog"
	"github.com/verandameister/quotedesk/internal/document"
	"github.com/verandameister/quotedesk/internal/observability"
	"github.com/verandameister/quotedesk/internal/platform/cache"
	"github.com/verandameister/quotedesk/internal/quotes"
	"github.com/verandameister/quotedesk/internal/shared"
	"github.com/verandameister/quotedesk/internal/view"
	"github.com/verandameister/quotedesk/jobs"
	"github.com/verandameister/quotedesk/report"
)

func main() {
	if app.InTestMode() {
		slog.Default().Info("test mode detected, skipping runtime startup")
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
	metrics := observability.NewMetrics()

	stores, err := app.OpenStores(ctx, cfg, logger, metrics)
	if err != nil {
		logger.Error("open stores", slog.Any("error", err))
		os.Exit(1)
	}
	defer stores.Close()

	redisClient, err := cache.New(ctx, cfg.RedisAddr, "", 0)
	if err != nil {
		logger.Error("connect redis", slog.Any("error", err))
		os.Exit(1)
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logger.Warn("redis close", slog.Any("error", err))
		}
	}()

	sessionManager := shared.NewSessionManager(redisClient, "quotedesk_session", cfg.SessionTTL, cfg.IsProduction())
	csrfManager := shared.NewCSRFManager(cfg.CSRFSecret)

	templates, err := view.NewEngine()
	if err != nil {
		logger.Error("parse templates", slog.Any("error", err))
		os.Exit(1)
	}

	catalogService := catalog.NewService(stores.Fallback, logger)
	if _, err := catalogService.Load(ctx); err != nil {
		logger.Error("load catalog", slog.Any("error", err))
		os.Exit(1)
	}
	quoteService := quotes.NewService(stores.Fallback, logger)
	if _, err := quoteService.Load(ctx); err != nil {
		logger.Error("load quotes", slog.Any("error", err))
		os.Exit(1)
	}

	authService := auth.NewService(auth.Credentials{
		Username:     cfg.AuthUsername,
		Password:     cfg.AuthPassword,
		PasswordHash: cfg.AuthPasswordHash,
	})
	authHandler := auth.NewHandler(logger, authService, templates, csrfManager)

	var converter report.PDFConverter
	if cfg.GotenbergURL != "" {
		converter = report.NewClient(cfg.GotenbergURL)
	}
	renderer := report.NewRenderer(document.DefaultCompany(), converter)
	reportHandler := report.NewHandler(quoteService, renderer, logger, metrics)

	quoteHandler := quotes.NewHandler(logger, quoteService, catalogService)
	quoteHandler.UseIdempotency(shared.NewIdempotencyStore(redisClient, 24*time.Hour))

	inspector := asynq.NewInspector(asynq.RedisClientOpt{Addr: cfg.RedisAddr})
	defer func() {
		if err := inspector.Close(); err != nil {
			logger.Warn("inspector close", slog.Any("error", err))
		}
	}()
	jobHandler := jobs.NewHandler(inspector, logger)

	jobClient, err := jobs.NewClient(asynq.RedisClientOpt{Addr: cfg.RedisAddr})
	if err != nil {
		logger.Error("init job client", slog.Any("error", err))
		os.Exit(1)
	}
	defer func() {
		if err := jobClient.Close(); err != nil {
			logger.Warn("job client close", slog.Any("error", err))
		}
	}()
	reportHandler.UseArchiveQueue(jobClient)

	router := app.NewRouter(app.RouterParams{
		Logger:         logger,
		Config:         cfg,
		Templates:      templates,
		SessionManager: sessionManager,
		CSRFManager:    csrfManager,
		Metrics:        metrics,
		AuthHandler:    authHandler,
		QuoteHandler:   quoteHandler,
		CatalogHandler: catalog.NewHandler(logger, catalogService),
		ReportHandler:  reportHandler,
		JobHandler:     jobHandler,
		Quotes:         quoteService,
		Catalog:        catalogService,
		Store:          stores.Fallback,
		Resync:         jobClient,
	})

	server := &http.Server{
		Addr:         cfg.AppAddr,
		Handler:      router,
		ReadTimeout:  cfg.AppReadTimeout,
		WriteTimeout: cfg.AppWriteTimeout,
	}

	go func() {
		logger.Info("starting http server", slog.String("addr", cfg.AppAddr))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("http server", slog.Any("error", err))
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown", slog.Any("error", err))
	}
}
