package main

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	attrCache "conversion-tracking-service/internal/attribution/adapters/cache"
	attrHttp "conversion-tracking-service/internal/attribution/adapters/http/fiber"
	attrMemory "conversion-tracking-service/internal/attribution/adapters/memory"
	attrRepoPg "conversion-tracking-service/internal/attribution/adapters/postgres"
	attrPorts "conversion-tracking-service/internal/attribution/core/ports"
	attrUsecase "conversion-tracking-service/internal/attribution/core/usecase"

	"conversion-tracking-service/internal/config"
	"conversion-tracking-service/internal/identity"
	"conversion-tracking-service/internal/logging"

	journalRepoPg "conversion-tracking-service/internal/journal/adapters/postgres"
	journalUsecase "conversion-tracking-service/internal/journal/core/usecase"

	metricsHttp "conversion-tracking-service/internal/metrics/adapters/http/fiber"
	metricsRepoPg "conversion-tracking-service/internal/metrics/adapters/postgres"
	metricsUsecase "conversion-tracking-service/internal/metrics/core/usecase"

	paymentBackend "conversion-tracking-service/internal/payment/adapters/backend"
	paymentHttp "conversion-tracking-service/internal/payment/adapters/http/fiber"
	paymentUsecase "conversion-tracking-service/internal/payment/core/usecase"

	"conversion-tracking-service/internal/tracking/adapters/collector"
	trackingHttp "conversion-tracking-service/internal/tracking/adapters/http/fiber"
	trackingProm "conversion-tracking-service/internal/tracking/adapters/prometheus"
	trackingDomain "conversion-tracking-service/internal/tracking/core/domain"
	trackingPorts "conversion-tracking-service/internal/tracking/core/ports"
	trackingUsecase "conversion-tracking-service/internal/tracking/core/usecase"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	_ "github.com/lib/pq"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	fiberSwagger "github.com/swaggo/fiber-swagger"
	"go.uber.org/zap"

	_ "conversion-tracking-service/docs"
)

// @title Conversion Tracking Service
// @version 1.0
// @description Ad attribution, conversion event dispatch and payment status checks.
// @BasePath /
func main() {
	// Config
	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = "configs/default.yaml"
	}
	cfg, err := config.Load(configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "load config: %v\n", err)
		os.Exit(1)
	}

	logger, err := logging.New(cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		fmt.Fprintf(os.Stderr, "init logger: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = logger.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// DB connection
	db, err := sql.Open("postgres", cfg.DatabaseURL)
	if err != nil {
		logger.Fatal("failed to open postgres", zap.Error(err))
	}
	defer db.Close()

	db.SetMaxOpenConns(20)
	db.SetMaxIdleConns(10)
	db.SetConnMaxLifetime(30 * time.Minute)

	if err := db.PingContext(ctx); err != nil {
		logger.Fatal("failed to ping postgres", zap.Error(err))
	}

	// Attribution stores: postgres is the durable per-visitor store, redis
	// (or process memory) the per-session one.
	durable := attrRepoPg.NewRecordRepository(attrRepoPg.NewSQLDB(db))
	var session attrPorts.RecordStorePort = attrMemory.NewRecordStore()
	if cfg.RedisURL != "" {
		client, err := attrCache.Connect(ctx, cfg.RedisURL)
		if err != nil {
			logger.Fatal("failed to connect redis", zap.Error(err))
		}
		defer client.Close()
		session = attrCache.NewSessionStore(client, cfg.SessionTTL)
	} else {
		logger.Warn("REDIS_URL not set, session attribution kept in process memory")
	}

	// Collector: the global handle queues until a sink is connected.
	global := collector.NewGlobal(logger)
	loaderCtx, cancelLoader := context.WithCancel(ctx)
	loaderDone := make(chan struct{})
	var closeSink func() error

	connect, closer, err := buildSink(cfg, logger)
	if err != nil {
		logger.Fatal("failed to build collector sink", zap.Error(err))
	}
	closeSink = closer
	if connect != nil {
		loader := collector.NewLoader(global, connect, collector.LoaderConfig{
			RetryInterval: cfg.RetryInterval,
			FlushInterval: cfg.FlushInterval,
		}, logger)
		go func() {
			defer close(loaderDone)
			loader.Run(loaderCtx)
		}()
	} else {
		close(loaderDone)
		logger.Warn("no collector sink configured, events stay queued in memory")
	}

	// Metrics registry
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	observer := trackingProm.NewObserver(reg)

	// Usecases
	resolveUC := attrUsecase.NewResolveAttributionUseCase(durable, session, logger)

	journalRepository := journalRepoPg.NewConversionRepository(journalRepoPg.NewSQLDB(db, 0))
	journalUC := journalUsecase.NewRecordConversionUseCase(journalRepository)

	dispatcher := trackingUsecase.NewDispatcher(global, observer, trackingUsecase.DispatcherConfig{
		ReadyTimeout: cfg.ReadyTimeout,
		PollInterval: cfg.PollInterval,
		SettleDelay:  cfg.SettleDelay,
	}, logger)

	reportUC := trackingUsecase.NewReportEventUseCase(
		resolveUC,
		dispatcher,
		journalUC,
		identity.NewHasher(logger),
		trackingUsecase.ReportEventConfig{
			Catalog:  catalogFrom(cfg),
			Currency: cfg.Currency,
		},
		logger,
	)

	paymentUC, err := paymentUsecase.NewCheckPaymentStatusUseCase(
		paymentBackend.NewClient(cfg.BackendTimeout),
		resolveUC,
		paymentUsecase.CheckPaymentStatusConfig{
			BackendBaseURL: cfg.BackendBaseURL,
			DeploymentRoot: cfg.DeploymentRoot,
		},
		logger,
	)
	if err != nil {
		logger.Fatal("invalid payment backend config", zap.Error(err))
	}

	statsRepository := metricsRepoPg.NewStatsRepository(metricsRepoPg.NewSQLDB(db, 0))
	statsUC := metricsUsecase.NewGetConversionStatsUseCase(statsRepository)

	// HTTP (Fiber) app + handlers
	app := fiber.New(fiber.Config{DisableStartupMessage: true})

	attributionHandler := attrHttp.NewAttributionHandler(resolveUC)
	app.Post("/attribution/resolve", attributionHandler.Resolve)

	eventHandler := trackingHttp.NewEventHandler(reportUC)
	app.Post("/events/checkout", eventHandler.ReportCheckout)
	app.Post("/events/purchase", eventHandler.ReportPurchase)
	app.Post("/events/view-content", eventHandler.ReportViewContent)
	app.Post("/events/page-view", eventHandler.ReportPageView)

	paymentHandler := paymentHttp.NewPaymentHandler(paymentUC)
	app.Post("/payments/status", paymentHandler.CheckStatus)
	app.Post("/payments/classify", paymentHandler.Classify)

	statsHandler := metricsHttp.NewStatsHandler(statsUC)
	app.Get("/stats/conversions", statsHandler.GetConversionStats)

	app.Get("/metrics", adaptor.HTTPHandler(promhttp.HandlerFor(reg, promhttp.HandlerOpts{})))
	app.Get("/healthz", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status":          "ok",
			"collector_ready": global.Ready(),
			"queued":          global.Len(),
		})
	})

	// Swagger
	app.Get("/docs/*", fiberSwagger.WrapHandler)

	// Graceful shutdown
	addr := fmt.Sprintf(":%d", cfg.HTTPPort)
	go func() {
		if err := app.Listen(addr); err != nil {
			logger.Error("fiber stopped", zap.Error(err))
		}
	}()

	logger.Info("server started", zap.String("addr", addr), zap.String("collector_sink", cfg.CollectorSink))

	<-ctx.Done()

	logger.Info("shutting down...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		logger.Error("fiber shutdown error", zap.Error(err))
	}

	// Let pending confirmations finish before the sink goes away; the
	// loader's final drain flushes whatever is still queued.
	waitCtx, cancelWait := context.WithTimeout(context.Background(), cfg.DeliveryDrainTimeout())
	defer cancelWait()
	if err := dispatcher.Wait(waitCtx); err != nil {
		logger.Warn("pending deliveries not confirmed before shutdown", zap.Error(err))
	}
	cancelLoader()
	<-loaderDone

	if closeSink != nil {
		if err := closeSink(); err != nil {
			logger.Error("collector sink close error", zap.Error(err))
		}
	}
	if n := global.Len(); n > 0 {
		logger.Error("CRITICAL: commands still queued at exit", zap.Int("queued", n))
	}
	if dead := global.DeadLetters(); len(dead) > 0 {
		logger.Error("commands rejected by the collector sink", zap.Int("dead_letters", len(dead)))
	}

	logger.Info("server exiting")
}

// buildSink returns the connect function for the configured sink, or nil
// when events should stay queued.
func buildSink(cfg config.Config, logger *zap.Logger) (collector.ConnectFunc, func() error, error) {
	switch cfg.CollectorSink {
	case config.SinkEventsAPI:
		client, err := collector.NewEventsAPIClient(collector.EventsAPIConfig{
			Endpoint:      cfg.TikTokEndpoint,
			PixelCode:     cfg.TikTokPixelCode,
			AccessToken:   cfg.TikTokAccessToken,
			TestEventCode: cfg.TikTokTestEventCode,
		}, logger)
		if err != nil {
			return nil, nil, err
		}
		connect := func(context.Context) (trackingPorts.DirectCollector, error) { return client, nil }
		return connect, nil, nil
	case config.SinkKafka:
		publisher := collector.NewKafkaPublisher(collector.NewKafkaWriter(cfg.KafkaBrokers, cfg.KafkaTopic), logger)
		return collector.KafkaConnect(cfg.KafkaBrokers, publisher), publisher.Close, nil
	case config.SinkNone:
		return nil, nil, nil
	default:
		return nil, nil, fmt.Errorf("unknown collector sink %q", cfg.CollectorSink)
	}
}

func catalogFrom(cfg config.Config) trackingDomain.Catalog {
	upsells := make(map[int]trackingDomain.Product, len(cfg.Upsells))
	for n, p := range cfg.Upsells {
		upsells[n] = trackingDomain.Product(p)
	}
	return trackingDomain.Catalog{
		Default:     trackingDomain.Product(cfg.DefaultProduct),
		Upsells:     upsells,
		ContentType: cfg.ContentType,
	}
}
