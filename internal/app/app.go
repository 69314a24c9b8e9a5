// Package app builds the shared object graph for both binaries: config,
// logger, tracing, the call ledger and the request adapter.
package app

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/Takita08/Marko-Docu-Ai/internal/config"
	"github.com/Takita08/Marko-Docu-Ai/internal/llm"
	"github.com/Takita08/Marko-Docu-Ai/internal/service"
	"github.com/Takita08/Marko-Docu-Ai/internal/storage"
	"github.com/Takita08/Marko-Docu-Ai/internal/trace"
)

// ServiceName tags logs and spans.
const ServiceName = "marko-docu-ai"

// ConfigPathEnv points at an explicit YAML config file.
const ConfigPathEnv = "MARKO_CONFIG_PATH"

// App is everything a binary needs after startup.
type App struct {
	Config   *config.Config
	Logger   *zap.Logger
	DB       *sqlx.DB
	Calls    storage.CallRepository
	Analyzer *service.Analyzer
}

// LoadConfig reads .env (if present) and then the YAML/env configuration.
// A missing .env is normal in production, so its error is ignored.
func LoadConfig(configPath string) (*config.Config, error) {
	_ = godotenv.Load()
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}
	return cfg, nil
}

// NewLogger returns a development logger for debug level and a JSON
// production logger otherwise.
func NewLogger(level string) (*zap.Logger, error) {
	var (
		logger *zap.Logger
		err    error
	)
	if level == "debug" {
		logger, err = zap.NewDevelopment()
	} else {
		logger, err = zap.NewProduction()
	}
	if err != nil {
		return nil, fmt.Errorf("creating logger: %w", err)
	}
	return logger.With(zap.String("service", ServiceName)), nil
}

// New wires tracing, storage and the AI backends. Call Close when done.
func New(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*App, error) {
	if err := trace.Init(cfg.Trace.Enabled, ServiceName); err != nil {
		// Tracing is optional; keep serving without it.
		logger.Warn("tracing disabled", zap.Error(err))
	}

	db, err := storage.NewDatabase(cfg.Storage.DatabasePath)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	clients, err := llm.NewPair(ctx, cfg.LLM)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("creating AI clients: %w", err)
	}
	logger.Info("AI backends ready",
		zap.String("document_provider", clients.Document.ProviderName()),
		zap.String("document_model", clients.Document.ModelName()),
		zap.String("market_provider", clients.Market.ProviderName()),
		zap.String("market_model", clients.Market.ModelName()),
	)

	calls := storage.NewCallRepository(db)
	analyzer := service.NewAnalyzer(clients, service.Options{
		RequestTimeout: cfg.LLM.RequestTimeout,
		RatePerMinute:  cfg.LLM.RatePerMinute,
	}, calls, logger)

	return &App{
		Config:   cfg,
		Logger:   logger,
		DB:       db,
		Calls:    calls,
		Analyzer: analyzer,
	}, nil
}

// Close flushes spans and closes the database.
func (a *App) Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := trace.Shutdown(ctx); err != nil {
		a.Logger.Warn("flushing spans", zap.Error(err))
	}
	return a.DB.Close()
}
