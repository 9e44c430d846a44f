package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"
	_ "time/tzdata"

	"go.uber.org/zap"

	"github.com/mamadbah2/landscaper/internal/bootstrap"
	"github.com/mamadbah2/landscaper/internal/config"
	"github.com/mamadbah2/landscaper/internal/scheduler"
	"github.com/mamadbah2/landscaper/internal/server/handlers"
	"github.com/mamadbah2/landscaper/internal/server/router"
	commandsvc "github.com/mamadbah2/landscaper/internal/service/commands"
	reportingsvc "github.com/mamadbah2/landscaper/internal/service/reporting"
	whatsappsvc "github.com/mamadbah2/landscaper/internal/service/whatsapp"
	whatsappclient "github.com/mamadbah2/landscaper/pkg/clients/whatsapp"
	"github.com/mamadbah2/landscaper/pkg/logger"
)

func main() {
	cfg, err := config.Load("")
	if err != nil {
		panic(err)
	}

	baseLogger := logger.Must(logger.New(cfg.Log.Level))
	defer func() { _ = baseLogger.Sync() }()

	zap.ReplaceGlobals(baseLogger)

	startupCtx, cancelStartup := context.WithTimeout(context.Background(), 30*time.Second)
	backends, err := bootstrap.Open(startupCtx, cfg, baseLogger.Named("bootstrap"))
	cancelStartup()
	if err != nil {
		baseLogger.Fatal("failed to open storage", zap.Error(err))
	}
	defer func() {
		if err := backends.Close(context.Background()); err != nil {
			baseLogger.Error("failed to close storage", zap.Error(err))
		}
	}()

	opts, err := bootstrap.ReportingOptions(cfg)
	if err != nil {
		baseLogger.Fatal("invalid analytics configuration", zap.Error(err))
	}

	reportingSvc := reportingsvc.NewService(backends.Store, backends.Snapshots, opts, baseLogger.Named("svc.reporting"))
	analyticsHandler := handlers.NewAnalyticsHandler(reportingSvc, backends.SnapshotReader, baseLogger.Named("handlers.analytics"))

	var (
		messagingSvc   whatsappsvc.MessagingService
		webhookHandler *handlers.WebhookHandler
	)
	if cfg.WhatsApp.Enabled() {
		commandDispatcher := commandsvc.NewService(reportingSvc, baseLogger.Named("svc.commands"))
		whatsClient := whatsappclient.NewClient(cfg.WhatsApp)
		metaSvc := whatsappsvc.NewMetaWhatsAppService(cfg.WhatsApp, whatsClient, commandDispatcher, baseLogger.Named("svc.whatsapp"))
		messagingSvc = metaSvc
		webhookHandler = handlers.NewWebhookHandler(metaSvc, reportingSvc, cfg.WhatsApp.OwnerNumber, baseLogger.Named("handlers.whatsapp"))
	} else {
		baseLogger.Warn("whatsapp token missing, chat commands and weekly digest disabled")
	}

	engine := router.New(webhookHandler, analyticsHandler, baseLogger.Named("router"))

	sched, err := scheduler.NewScheduler(*cfg, reportingSvc, messagingSvc, baseLogger.Named("scheduler"))
	if err != nil {
		baseLogger.Fatal("failed to init scheduler", zap.Error(err))
	}
	if err := sched.Start(); err != nil {
		baseLogger.Fatal("failed to start scheduler", zap.Error(err))
	}
	defer sched.Stop()

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      engine,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		baseLogger.Info("server starting", zap.String("port", cfg.Server.Port), zap.String("storage", cfg.Storage.Driver))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			baseLogger.Fatal("http server crashed", zap.Error(err))
		}
	}()

	<-ctx.Done()
	baseLogger.Info("shutdown signal received")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		baseLogger.Error("graceful shutdown failed", zap.Error(err))
	}
}
