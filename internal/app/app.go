package app

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/bobmcallan/portfoliology/internal/clients/iex"
	"github.com/bobmcallan/portfoliology/internal/common"
	"github.com/bobmcallan/portfoliology/internal/interfaces"
	"github.com/bobmcallan/portfoliology/internal/services/portfolio"
	"github.com/bobmcallan/portfoliology/internal/services/refresh"
	"github.com/bobmcallan/portfoliology/internal/storage"
)

// App holds the initialized configuration, storage, quote client and services.
// It is the shared core used by both cmd/portfoliology-server and cmd/portfoliology.
type App struct {
	Config           *common.Config
	Logger           *common.Logger
	Storage          interfaces.StorageManager
	QuoteClient      interfaces.QuoteClient
	Fetcher          interfaces.PositionFetcher
	PortfolioService interfaces.PortfolioService
	StartupTime      time.Time
}

// getBinaryDir returns the directory containing the executable.
func getBinaryDir() string {
	exe, err := os.Executable()
	if err != nil {
		return "."
	}
	return filepath.Dir(exe)
}

// ResolveConfigPath picks the config file: the explicit path, PORTFOLIOLOGY_CONFIG,
// then portfoliology.toml next to the binary, then the development fallback.
func ResolveConfigPath(configPath string) string {
	if configPath == "" {
		configPath = os.Getenv("PORTFOLIOLOGY_CONFIG")
	}
	if configPath == "" {
		configPath = filepath.Join(getBinaryDir(), "portfoliology.toml")
		if _, err := os.Stat(configPath); os.IsNotExist(err) {
			configPath = "config/portfoliology.toml"
		}
	}
	return configPath
}

// NewApp loads and validates configuration, then builds storage, the quote
// client and the services. Invalid configuration is returned as an error.
func NewApp(configPath string) (*App, error) {
	config, err := common.LoadConfig(ResolveConfigPath(configPath))
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	return NewAppWithConfig(config)
}

// NewAppWithConfig builds the App from an already loaded configuration.
func NewAppWithConfig(config *common.Config) (*App, error) {
	startupStart := time.Now()

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	logger := common.NewLoggerFromConfig(config.Logging)

	storageManager, err := storage.NewManager(logger, config)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize storage: %w", err)
	}

	iexCfg := config.Clients.IEX
	quoteClient := iex.NewClient(iexCfg.Token,
		iex.WithBaseURL(iexCfg.BaseURL),
		iex.WithLogger(logger),
		iex.WithRateLimit(iexCfg.RateLimit),
		iex.WithTimeout(iexCfg.GetTimeout()),
		iex.WithRetryPolicy(
			config.Refresh.MaxRetries,
			config.Refresh.GetRetryDelay(),
			config.Refresh.GetRetryStep(),
		),
	)

	fetcher, err := refresh.NewFetcher(quoteClient, config.Refresh.Concurrency, logger)
	if err != nil {
		storageManager.Close()
		return nil, fmt.Errorf("failed to initialize fetcher: %w", err)
	}

	portfolioService := portfolio.NewService(storageManager, fetcher, logger)

	a := &App{
		Config:           config,
		Logger:           logger,
		Storage:          storageManager,
		QuoteClient:      quoteClient,
		Fetcher:          fetcher,
		PortfolioService: portfolioService,
		StartupTime:      startupStart,
	}

	logger.Info().Dur("startup", time.Since(startupStart)).Msg("App initialized")

	return a, nil
}

// Close releases all resources held by the App.
func (a *App) Close() {
	if a.Storage != nil {
		if err := a.Storage.Close(); err != nil {
			a.Logger.Warn().Err(err).Msg("Failed to close storage")
		}
		a.Storage = nil
	}
}
