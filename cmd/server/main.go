package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/alecthomas/kong"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/ricirt/problem-interpretation/internal/api"
	"github.com/ricirt/problem-interpretation/internal/combase"
	"github.com/ricirt/problem-interpretation/internal/config"
	"github.com/ricirt/problem-interpretation/internal/db"
	"github.com/ricirt/problem-interpretation/internal/extraction"
	"github.com/ricirt/problem-interpretation/internal/health"
	"github.com/ricirt/problem-interpretation/internal/llm"
	"github.com/ricirt/problem-interpretation/internal/metrics"
	"github.com/ricirt/problem-interpretation/internal/repository"
	"github.com/ricirt/problem-interpretation/internal/service"
	"github.com/ricirt/problem-interpretation/internal/version"
)

// CLI flags override the matching environment variables.
var CLI struct {
	Host    string           `help:"listen host (overrides HOST)"`
	Port    string           `help:"listen port (overrides HTTP_PORT)"`
	EnvFile string           `help:"dotenv file to load (overrides ENV_FILE)" name:"env-file" type:"path"`
	Version kong.VersionFlag `help:"print version and exit"`
}

func main() {
	kong.Parse(&CLI,
		kong.Name(version.Name),
		kong.Description(version.Description),
		kong.Vars{"version": fmt.Sprintf("%s (%s, %s)", version.Version, version.Commit, version.Date)})

	if CLI.EnvFile != "" {
		_ = os.Setenv("ENV_FILE", CLI.EnvFile)
	}

	// ---- configuration ----
	cfg, err := config.Load()
	if err != nil {
		_, _ = io.WriteString(os.Stderr, "failed to load config: "+err.Error()+"\n")
		os.Exit(1)
	}
	if CLI.Host != "" {
		cfg.Host = CLI.Host
	}
	if CLI.Port != "" {
		cfg.HTTPPort = CLI.Port
	}

	// ---- logging ----
	logConfig := zap.NewProductionConfig()
	if err := logConfig.Level.UnmarshalText([]byte(cfg.LogLevel)); err != nil {
		_, _ = io.WriteString(os.Stderr, "invalid LOG_LEVEL, using info\n")
	}
	logConfig.Encoding = cfg.LogFormat
	logger, err := logConfig.Build()
	if err != nil {
		_, _ = io.WriteString(os.Stderr, "failure while building logger: "+err.Error()+"\n")
		os.Exit(1)
	}
	defer logger.Sync() //nolint:errcheck

	logger.Info("starting",
		zap.String("app", cfg.AppName),
		zap.String("version", version.Version),
		zap.Bool("debug", cfg.Debug),
	)

	ctx := context.Background()

	// ---- core dependencies ----
	reg := prometheus.NewRegistry()
	m := metrics.New(reg)

	engine := combase.NewEngine(m.EngineHooks(), logger)
	if n, err := engine.LoadModels(cfg.ComBaseModelsPath); err != nil {
		// The service still serves liveness and interpretation without models.
		logger.Warn("combase models not loaded, engine degraded",
			zap.String("engine", engine.Name()),
			zap.String("path", cfg.ComBaseModelsPath), zap.Error(err))
	} else {
		logger.Info("combase models loaded",
			zap.String("engine", engine.Name()), zap.Int("models", n))
	}

	llmClient := llm.NewClient(llm.Config{
		Model:       cfg.LLMModel,
		APIKey:      cfg.LLMAPIKey,
		APIBase:     cfg.LLMAPIBase,
		Temperature: cfg.LLMTemperature,
		MaxTokens:   cfg.LLMMaxTokens,
		Timeout:     cfg.LLMTimeout,
		RateLimit:   cfg.LLMRateLimit,
	}, m.LLMHooks(), logger)
	if !llmClient.Configured() {
		logger.Warn("LLM_API_KEY not set, interpretation endpoints will return 503",
			zap.String("llm_model", llmClient.Model()))
	} else {
		logger.Info("llm client configured", zap.String("llm_model", llmClient.Model()))
	}
	parser := extraction.NewParser(llmClient, logger)

	// ---- store ----
	repo, closeStore, err := openStore(ctx, cfg, logger)
	if err != nil {
		logger.Fatal("failed to open prediction store", zap.Error(err))
	}
	defer closeStore()

	onSuccess, onFailure := m.PredictionHooks()
	svc := service.NewPredictionService(repo, engine,
		service.Defaults{PH: cfg.DefaultPH, WaterActivity: cfg.DefaultWaterActivity},
		service.PredictionHooks{OnSuccess: onSuccess, OnFailure: onFailure},
		logger,
	)

	// ---- health monitor ----
	// Context for all background goroutines; cancelled on shutdown signal.
	bgCtx, cancelBackground := context.WithCancel(ctx)
	defer cancelBackground()

	monitor := health.NewMonitor(cfg.HealthCheckInterval, cfg.LLMTimeout, m.HealthHooks(), logger)
	monitor.Register("llm_client", llmClient.HealthCheck)
	monitor.Register("engine", engine.HealthCheck)
	monitor.Register("store", func(ctx context.Context) (bool, string, error) {
		if err := repo.Ping(ctx); err != nil {
			return false, "", err
		}
		return true, cfg.StoreDriver + " store reachable", nil
	})
	monitor.CheckNow(ctx)
	go monitor.Run(bgCtx)

	// ---- HTTP server ----
	router := api.NewRouter(api.Deps{
		Config:      cfg,
		Version:     version.Version,
		Predictions: svc,
		Parser:      parser,
		Health:      monitor,
		Metrics:     m,
		Gatherer:    reg,
		Logger:      logger,
	})
	srv := &http.Server{
		Addr:         cfg.Addr(),
		Handler:      router,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	}

	// Start server in a goroutine so it does not block the shutdown listener.
	go func() {
		logger.Info("server starting", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("server error", zap.Error(err))
		}
	}()

	// ---- graceful shutdown ----
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutdown signal received")

	// 1. Stop accepting new HTTP requests.
	shutdownCtx, shutdownCancel := context.WithTimeout(ctx, cfg.ShutdownTimeout)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("HTTP server shutdown error", zap.Error(err))
	}

	// 2. Stop the health monitor.
	cancelBackground()

	logger.Info("server stopped cleanly")
}

// openStore builds the prediction repository selected by STORE_DRIVER. The
// returned func releases its resources.
func openStore(ctx context.Context, cfg *config.Config, logger *zap.Logger) (repository.PredictionRepository, func(), error) {
	switch cfg.StoreDriver {
	case config.StorePostgres:
		pool, err := db.Connect(ctx, cfg)
		if err != nil {
			return nil, nil, fmt.Errorf("connect to database: %w", err)
		}
		if err := db.Migrate(cfg.DatabaseURL, cfg.MigrationsPath); err != nil {
			pool.Close()
			return nil, nil, fmt.Errorf("run migrations: %w", err)
		}
		logger.Info("database migrations applied")
		return repository.NewPgPredictionRepository(pool), pool.Close, nil

	case config.StoreSQLite:
		store, err := repository.NewSQLitePredictionRepository(ctx, cfg.SQLitePath)
		if err != nil {
			return nil, nil, err
		}
		logger.Info("sqlite store opened", zap.String("path", cfg.SQLitePath))
		return store, func() { _ = store.Close() }, nil

	default:
		logger.Info("using in-memory prediction store")
		return repository.NewMemoryPredictionRepository(), func() {}, nil
	}
}
