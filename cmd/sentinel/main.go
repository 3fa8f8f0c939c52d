package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/FairForge/sentinel/internal/alerting"
	"github.com/FairForge/sentinel/internal/api"
	"github.com/FairForge/sentinel/internal/category"
	"github.com/FairForge/sentinel/internal/config"
	"github.com/FairForge/sentinel/internal/logging"
	"github.com/FairForge/sentinel/internal/metrics"
	"github.com/FairForge/sentinel/internal/notify"
	"github.com/FairForge/sentinel/internal/scheduler"
	"github.com/FairForge/sentinel/internal/storage"
)

func main() {
	cfg := loadConfig()

	logger := buildLogger(cfg.Server.LogLevel)
	defer func() { _ = logger.Sync() }()

	// Durable store
	var logStore logging.Store
	var alertStore alerting.Store
	var pg *storage.Postgres
	switch cfg.Storage.Driver {
	case config.StorageDriverPostgres:
		var err error
		pg, err = storage.NewPostgres(cfg.Storage.DSN, logger)
		if err != nil {
			logger.Fatal("postgres init failed", zap.Error(err))
		}
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		if err := pg.EnsureSchema(ctx); err != nil {
			cancel()
			logger.Fatal("schema init failed", zap.Error(err))
		}
		cancel()
		logStore, alertStore = pg, pg
		logger.Info("using postgres storage")
	default:
		mem := storage.NewMemory()
		logStore, alertStore = mem, mem
		logger.Info("using in-memory storage")
	}

	m := metrics.NewMetrics()

	// Pipeline: logger -> categorizer -> alert engine
	pipeline := logging.NewLogger(&logging.LoggerConfig{
		BufferSize: cfg.Pipeline.BufferSize,
		FlushBatch: cfg.Pipeline.FlushBatch,
		DevMode:    cfg.Pipeline.DevMode,
	}, logStore, logger)

	patterns := category.NewSystem(pipeline, logger)

	webhooks := notify.NewWebhookSender(&notify.WebhookSenderConfig{
		RequestTimeout: cfg.Notify.WebhookTimeout,
	})
	emails := notify.NewEmailSender(logger)
	sink := notify.NewConsoleSink(logger)

	engine := alerting.NewEngine(nil, pipeline, patterns, sink, webhooks, emails, alertStore, logger)
	engine.SetFireHook(m.RecordAlert)

	// Every error-level entry feeds the categorizer; metrics observe everything.
	unsubscribe := pipeline.Subscribe(func(e *logging.LogEntry) {
		m.RecordEntry(e.Level, e.Component)
		if e.Level == logging.LevelError || e.Level == logging.LevelCritical {
			patterns.Track(e.Message, "", e.Component, e.Operation)
			m.RecordPattern(category.Categorize(e.Message, e.StackTrace, e.Component, e.Operation))
		}
	})
	defer unsubscribe()

	// Background loops
	sched := scheduler.NewScheduler(logger)
	if cfg.Pipeline.DevMode {
		sched.Every("flush", cfg.Pipeline.FlushInterval, func(ctx context.Context) {
			start := time.Now()
			pipeline.Flush(ctx)
			m.RecordFlush(time.Since(start).Seconds())
		})
	}
	sched.Every("sweep", cfg.Pipeline.SweepInterval, func(ctx context.Context) {
		patterns.Sweep()
		m.SetHealthScore(patterns.AutomationHealthScore().Score)
		m.SetBufferSize(len(pipeline.GetLogs(nil)))
	})
	sched.Every("evaluate", cfg.Pipeline.EvalInterval, func(ctx context.Context) {
		engine.EvaluateAll(ctx)
	})
	sched.Start(context.Background())

	bridge := logging.NewBridge(pipeline, cfg.Pipeline.DevMode)
	server := api.NewServer(cfg, logger, pipeline, bridge, patterns, engine, m)

	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		<-sigChan

		logger.Info("shutting down")
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		if err := server.Shutdown(ctx); err != nil {
			logger.Error("shutdown error", zap.Error(err))
		}
		sched.Stop()
		pipeline.Shutdown(ctx)
		if pg != nil {
			_ = pg.Close()
		}
		os.Exit(0)
	}()

	logger.Info("sentinel started",
		zap.Int("port", cfg.Server.Port),
		zap.String("storage", cfg.Storage.Driver),
		zap.Bool("dev_mode", cfg.Pipeline.DevMode))

	if err := server.Start(); err != nil {
		logger.Fatal("server failed", zap.Error(err))
	}
}

func loadConfig() *config.Config {
	var cfg *config.Config
	if path := os.Getenv("SENTINEL_CONFIG"); path != "" {
		loaded, err := config.LoadFile(path)
		if err != nil {
			fallback, _ := zap.NewProduction()
			fallback.Fatal("config load failed", zap.Error(err))
		}
		cfg = loaded
	} else {
		cfg = &config.Config{}
		cfg.ApplyDefaults()
	}
	config.LoadFromEnv(cfg)

	if err := cfg.Validate(); err != nil {
		fallback, _ := zap.NewProduction()
		fallback.Fatal("config invalid", zap.Error(err))
	}
	return cfg
}

func buildLogger(level string) *zap.Logger {
	zcfg := zap.NewProductionConfig()
	if parsed, err := zap.ParseAtomicLevel(level); err == nil {
		zcfg.Level = parsed
	}
	logger, err := zcfg.Build()
	if err != nil {
		logger, _ = zap.NewProduction()
	}
	return logger
}
