// Package app wires configuration, storage and services into one value
// shared by the HTTP server and the CLI.
package app

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/bobmcallan/fundboard/internal/common"
	"github.com/bobmcallan/fundboard/internal/interfaces"
	"github.com/bobmcallan/fundboard/internal/services/movement"
	"github.com/bobmcallan/fundboard/internal/services/performance"
	"github.com/bobmcallan/fundboard/internal/services/summary"
	"github.com/bobmcallan/fundboard/internal/services/user"
	"github.com/bobmcallan/fundboard/internal/storage"
)

// App holds the loaded configuration, storage and services.
type App struct {
	Config             *common.Config
	Logger             *common.Logger
	Storage            interfaces.StorageManager
	SummaryService     interfaces.SummaryService
	PerformanceService interfaces.PerformanceService
	MovementService    interfaces.MovementService
	UserService        interfaces.UserService
	StartupTime        time.Time
}

// getBinaryDir returns the directory containing the executable.
func getBinaryDir() string {
	exe, err := os.Executable()
	if err != nil {
		return "."
	}
	return filepath.Dir(exe)
}

// LoadConfig resolves and loads the configuration. An empty configPath
// falls back to FUNDBOARD_CONFIG, then fundboard.toml next to the binary,
// then config/fundboard.toml. Relative ledger, log and version file paths
// are resolved against the binary directory, and the version file fills in
// build metadata that ldflags did not set.
func LoadConfig(configPath string) (*common.Config, error) {
	binDir := getBinaryDir()

	if configPath == "" {
		configPath = os.Getenv("FUNDBOARD_CONFIG")
	}
	if configPath == "" {
		configPath = filepath.Join(binDir, "fundboard.toml")
		if _, err := os.Stat(configPath); os.IsNotExist(err) {
			configPath = "config/fundboard.toml" // fallback for development
		}
	}

	config, err := common.LoadConfig(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	if config.Storage.Ledger.Path != "" && !filepath.IsAbs(config.Storage.Ledger.Path) {
		config.Storage.Ledger.Path = filepath.Join(binDir, config.Storage.Ledger.Path)
	}
	if config.Logging.FilePath != "" && !filepath.IsAbs(config.Logging.FilePath) {
		config.Logging.FilePath = filepath.Join(binDir, config.Logging.FilePath)
	}
	if config.VersionFile != "" && !filepath.IsAbs(config.VersionFile) {
		config.VersionFile = filepath.Join(binDir, config.VersionFile)
	}
	if err := common.ApplyVersionFile(config.VersionFile); err != nil {
		return nil, err
	}

	return config, nil
}

// NewApp loads configuration, connects both stores and builds the services.
func NewApp(ctx context.Context, configPath string) (*App, error) {
	startupStart := time.Now()

	config, err := LoadConfig(configPath)
	if err != nil {
		return nil, err
	}

	logger := common.NewLoggerFromConfig(config.Logging)

	storageManager, err := storage.NewManager(ctx, logger, config)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize storage: %w", err)
	}

	a := NewAppWithStorage(config, logger, storageManager)
	a.StartupTime = startupStart

	logger.Info().Dur("startup", time.Since(startupStart)).Msg("App initialized")
	return a, nil
}

// NewAppWithStorage builds the services over an already opened storage
// manager.
func NewAppWithStorage(config *common.Config, logger *common.Logger, storageManager interfaces.StorageManager) *App {
	return &App{
		Config:             config,
		Logger:             logger,
		Storage:            storageManager,
		SummaryService:     summary.NewService(storageManager, logger),
		PerformanceService: performance.NewService(storageManager, logger, config.Performance),
		MovementService:    movement.NewService(storageManager, logger),
		UserService:        user.NewService(storageManager, logger),
		StartupTime:        time.Now(),
	}
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
