package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/mamadbah2/cafepos/internal/config"
	"github.com/mamadbah2/cafepos/internal/locking"
	"github.com/mamadbah2/cafepos/internal/repository/mongodb"
	"github.com/mamadbah2/cafepos/internal/repository/sheets"
	"github.com/mamadbah2/cafepos/internal/scheduler"
	"github.com/mamadbah2/cafepos/internal/server/handlers"
	"github.com/mamadbah2/cafepos/internal/server/router"
	commandsvc "github.com/mamadbah2/cafepos/internal/service/commands"
	"github.com/mamadbah2/cafepos/internal/service/errtrack"
	inventorysvc "github.com/mamadbah2/cafepos/internal/service/inventory"
	reportingsvc "github.com/mamadbah2/cafepos/internal/service/reporting"
	staffsvc "github.com/mamadbah2/cafepos/internal/service/staff"
	"github.com/mamadbah2/cafepos/internal/service/timeaccounting"
	whatsappsvc "github.com/mamadbah2/cafepos/internal/service/whatsapp"
	whatsappclient "github.com/mamadbah2/cafepos/pkg/clients/whatsapp"
	"github.com/mamadbah2/cafepos/pkg/logger"
)

func main() {
	cfg, err := config.Load("")
	if err != nil {
		panic(err)
	}

	baseLogger := logger.Must(logger.New(cfg.Server.LogLevel))
	defer func() { _ = baseLogger.Sync() }()

	zap.ReplaceGlobals(baseLogger)

	// hour totals are served as JSON numbers
	decimal.MarshalJSONWithoutQuotes = true

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	location := cfg.Location()

	store, err := mongodb.NewStore(ctx, cfg.MongoDB.URI, cfg.MongoDB.DBName, cfg.MongoDB.Timeout, baseLogger.Named("repo.mongodb"))
	if err != nil {
		baseLogger.Fatal("failed to init mongodb store", zap.Error(err))
	}
	defer func() {
		if err := store.Close(context.Background()); err != nil {
			baseLogger.Error("failed to close mongodb connection", zap.Error(err))
		}
	}()

	var locker locking.Locker = locking.NewLocalLocker()
	if cfg.Redis.Addr != "" {
		redisClient, err := locking.Dial(ctx, cfg.Redis.Addr, cfg.Redis.Password)
		if err != nil {
			baseLogger.Fatal("failed to connect to redis", zap.Error(err))
		}
		defer func() { _ = redisClient.Close() }()
		locker = locking.NewRedisLocker(redisClient, cfg.Redis.LockTTL, baseLogger.Named("locking"))
		baseLogger.Info("distributed locking enabled", zap.String("addr", cfg.Redis.Addr))
	} else {
		baseLogger.Warn("redis address missing, entity locks are process-local")
	}

	var exporter reportingsvc.Exporter
	if cfg.Sheets.Enabled() {
		sheetsExporter, err := sheets.NewGoogleSheetExporter(ctx, cfg.Sheets, baseLogger.Named("repo.sheets"))
		if err != nil {
			baseLogger.Fatal("failed to init sheets exporter", zap.Error(err))
		}
		exporter = sheetsExporter
	} else {
		baseLogger.Warn("google sheets export disabled")
	}

	tracker := errtrack.NewMemoryTracker(errtrack.DefaultCapacity, baseLogger.Named("errtrack"))
	if err := tracker.Init(ctx); err != nil {
		baseLogger.Fatal("failed to init error tracker", zap.Error(err))
	}

	staffSvc := staffsvc.NewService(store, baseLogger.Named("svc.staff"))
	timeSvc := timeaccounting.NewService(store, staffSvc, locker, baseLogger.Named("svc.timeaccounting"))
	inventorySvc := inventorysvc.NewService(store, store, locker, inventorysvc.Options{
		AlertWindowDays: cfg.Inventory.AlertWindowDays,
		Location:        location,
	}, baseLogger.Named("svc.inventory"))
	reportingSvc := reportingsvc.NewService(store, timeSvc, inventorySvc, store, exporter, location, baseLogger.Named("svc.reporting"))
	commandDispatcher := commandsvc.NewService(reportingSvc, baseLogger.Named("svc.commands"))

	var messagingSvc whatsappsvc.MessagingService
	if cfg.WhatsApp.Enabled() {
		whatsClient := whatsappclient.NewClient(cfg.WhatsApp)
		messagingSvc = whatsappsvc.NewMetaWhatsAppService(cfg.WhatsApp, whatsClient, commandDispatcher, baseLogger.Named("svc.whatsapp"))
	} else {
		baseLogger.Warn("whatsapp credentials missing, manager notifications disabled")
		messagingSvc = whatsappsvc.NewDisabledService(baseLogger.Named("svc.whatsapp"))
	}

	engine := router.New(router.Handlers{
		Webhook:   handlers.NewWebhookHandler(messagingSvc, baseLogger.Named("handlers.whatsapp")),
		Staff:     handlers.NewStaffHandler(staffSvc, baseLogger.Named("handlers.staff")),
		TimeLogs:  handlers.NewTimeLogHandler(staffSvc, timeSvc, location, baseLogger.Named("handlers.timelogs")),
		Inventory: handlers.NewInventoryHandler(inventorySvc, baseLogger.Named("handlers.inventory")),
		Reports:   handlers.NewReportHandler(reportingSvc, location, baseLogger.Named("handlers.reports")),
		Errors:    handlers.NewErrorsHandler(tracker),
	}, tracker, baseLogger.Named("router"))

	sched := scheduler.NewScheduler(cfg.Reporting, location, reportingSvc, messagingSvc, tracker, baseLogger.Named("scheduler"))
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

	go func() {
		baseLogger.Info("server starting", zap.String("port", cfg.Server.Port))
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
